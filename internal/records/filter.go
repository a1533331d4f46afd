package records

import (
	"strings"

	"health-portal/internal/models"
)

// StatusAll disables the status predicate.
const StatusAll = "all"

// Message pseudo-statuses accepted by FilterMessages.
const (
	MessageRead   = "read"
	MessageUnread = "unread"
	MessageUrgent = "urgent"
)

// Criteria is a conjunction of a status predicate and a free-text search.
// The zero value matches everything.
type Criteria struct {
	Status     string
	SearchTerm string
}

func (c Criteria) statusMatches(status string) bool {
	return c.Status == "" || c.Status == StatusAll || c.Status == status
}

// textMatches reports whether the search term is empty or is a
// case-insensitive substring of at least one field.
func (c Criteria) textMatches(fields ...string) bool {
	if c.SearchTerm == "" {
		return true
	}
	term := strings.ToLower(c.SearchTerm)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}

// FilterAppointments matches status exactly and searches the counterpart's
// name, the type and the reason. Patients search provider names, providers
// search patient names.
func FilterAppointments(items []*models.Appointment, v Viewer, c Criteria) []*models.Appointment {
	return keep(items, func(a *models.Appointment) bool {
		return c.statusMatches(string(a.Status)) &&
			c.textMatches(counterpartName(v, a), string(a.Type), a.Reason)
	})
}

// FilterMedicalRecords uses the record type as its status and searches
// title, description and provider name.
func FilterMedicalRecords(items []*models.MedicalRecord, c Criteria) []*models.MedicalRecord {
	return keep(items, func(r *models.MedicalRecord) bool {
		return c.statusMatches(string(r.Type)) &&
			c.textMatches(r.Title, r.Description, r.ProviderName)
	})
}

// FilterPrescriptions matches status exactly and searches medication and provider name.
func FilterPrescriptions(items []*models.Prescription, c Criteria) []*models.Prescription {
	return keep(items, func(p *models.Prescription) bool {
		return c.statusMatches(string(p.Status)) &&
			c.textMatches(p.Medication, p.ProviderName)
	})
}

// FilterMessages searches subject, content and both party names. Status is
// one of MessageRead, MessageUnread or MessageUrgent.
func FilterMessages(items []*models.Message, c Criteria) []*models.Message {
	return keep(items, func(m *models.Message) bool {
		return messageStatusMatches(m, c.Status) &&
			c.textMatches(m.Subject, m.Content, m.SenderName, m.RecipientName)
	})
}

func messageStatusMatches(m *models.Message, status string) bool {
	switch status {
	case "", StatusAll:
		return true
	case MessageRead:
		return m.Read
	case MessageUnread:
		return !m.Read
	case MessageUrgent:
		return m.Urgent
	}
	return false
}

func counterpartName(v Viewer, a *models.Appointment) string {
	if v == nil {
		return a.ProviderName
	}
	return v.counterpart(a)
}
