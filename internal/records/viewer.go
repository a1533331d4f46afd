// Package records derives what a signed-in user sees from the raw record
// collections: role scoping, search and status filtering, ordering, and the
// optimistic local mutations applied before the server confirms them.
package records

import (
	"fmt"

	"health-portal/internal/models"
)

// Viewer is the signed-in user as seen by the record layer. It is either a
// PatientViewer or a ProviderViewer; no other implementations exist.
type Viewer interface {
	UserID() string
	DisplayName() string
	Role() models.Role
	// CanAuthorRecords reports whether the viewer may create clinical records and prescriptions.
	CanAuthorRecords() bool
	// CanRequestRenewal reports whether the viewer may ask for a prescription renewal.
	CanRequestRenewal() bool

	owns(patientID, providerID string) bool
	counterpart(a *models.Appointment) string
}

// PatientViewer sees records filed under their patient id.
type PatientViewer struct {
	ID   string
	Name string
}

func (p PatientViewer) UserID() string          { return p.ID }
func (p PatientViewer) DisplayName() string     { return p.Name }
func (p PatientViewer) Role() models.Role       { return models.RolePatient }
func (p PatientViewer) CanAuthorRecords() bool  { return false }
func (p PatientViewer) CanRequestRenewal() bool { return true }

func (p PatientViewer) owns(patientID, _ string) bool { return patientID == p.ID }

func (p PatientViewer) counterpart(a *models.Appointment) string { return a.ProviderName }

// ProviderViewer sees records where they are the provider.
type ProviderViewer struct {
	ID   string
	Name string
}

func (p ProviderViewer) UserID() string          { return p.ID }
func (p ProviderViewer) DisplayName() string     { return p.Name }
func (p ProviderViewer) Role() models.Role       { return models.RoleProvider }
func (p ProviderViewer) CanAuthorRecords() bool  { return true }
func (p ProviderViewer) CanRequestRenewal() bool { return false }

func (p ProviderViewer) owns(_, providerID string) bool { return providerID == p.ID }

func (p ProviderViewer) counterpart(a *models.Appointment) string { return a.PatientName }

// ViewerFor builds the viewer for u. A nil user yields a nil viewer and no
// error: the session is still loading. Roles without a scope yield ErrUnscopedRole.
func ViewerFor(u *models.User) (Viewer, error) {
	if u == nil {
		return nil, nil
	}
	switch u.Role {
	case models.RolePatient:
		return PatientViewer{ID: u.ID, Name: u.Name}, nil
	case models.RoleProvider:
		return ProviderViewer{ID: u.ID, Name: u.Name}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnscopedRole, u.Role)
}
