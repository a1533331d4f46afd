package records

import (
	"time"

	"health-portal/internal/models"
)

// DashboardLimit caps the appointment and record panels.
const DashboardLimit = 3

// Dashboard is the landing summary for a viewer.
type Dashboard struct {
	Upcoming            []*models.Appointment
	RecentRecords       []*models.MedicalRecord
	ActivePrescriptions []*models.Prescription
	Expiring            []*models.Prescription
	Unread              []*models.Message
}

// Collections is the raw record store content a dashboard is derived from.
type Collections struct {
	Appointments   []*models.Appointment
	MedicalRecords []*models.MedicalRecord
	Prescriptions  []*models.Prescription
	Messages       []*models.Message
}

// BuildDashboard derives the dashboard panels for v. Prescriptions are only
// listed for patients. Unread counts received messages.
func BuildDashboard(c Collections, v Viewer, now time.Time) Dashboard {
	var d Dashboard
	if v == nil {
		return d
	}

	d.Upcoming = head(SortAppointments(ScopeAppointments(c.Appointments, v), v, OrderDateAsc), DashboardLimit)
	d.RecentRecords = head(SortMedicalRecords(ScopeMedicalRecords(c.MedicalRecords, v), OrderDateDesc), DashboardLimit)

	if v.Role() == models.RolePatient {
		d.ActivePrescriptions = FilterPrescriptions(ScopePrescriptions(c.Prescriptions, v), Criteria{Status: string(models.PrescriptionActive)})
		d.Expiring = keep(d.ActivePrescriptions, func(p *models.Prescription) bool { return p.Expiring(now) })
	}

	id := v.UserID()
	d.Unread = keep(c.Messages, func(m *models.Message) bool { return m.RecipientID == id && !m.Read })
	return d
}

func head[T any](items []*T, n int) []*T {
	if len(items) > n {
		return items[:n]
	}
	return items
}
