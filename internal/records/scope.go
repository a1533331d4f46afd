package records

import "health-portal/internal/models"

func keep[T any](items []*T, pred func(*T) bool) []*T {
	out := make([]*T, 0, len(items))
	for _, it := range items {
		if pred(it) {
			out = append(out, it)
		}
	}
	return out
}

// ScopeAppointments keeps the appointments v is a party to in their role.
// A nil viewer sees nothing.
func ScopeAppointments(items []*models.Appointment, v Viewer) []*models.Appointment {
	if v == nil {
		return []*models.Appointment{}
	}
	return keep(items, func(a *models.Appointment) bool { return v.owns(a.PatientID, a.ProviderID) })
}

// ScopeMedicalRecords keeps the medical records v owns in their role.
func ScopeMedicalRecords(items []*models.MedicalRecord, v Viewer) []*models.MedicalRecord {
	if v == nil {
		return []*models.MedicalRecord{}
	}
	return keep(items, func(r *models.MedicalRecord) bool { return v.owns(r.PatientID, r.ProviderID) })
}

// ScopePrescriptions keeps the prescriptions v owns in their role.
func ScopePrescriptions(items []*models.Prescription, v Viewer) []*models.Prescription {
	if v == nil {
		return []*models.Prescription{}
	}
	return keep(items, func(p *models.Prescription) bool { return v.owns(p.PatientID, p.ProviderID) })
}

// ScopeMessages keeps the messages v sent or received, whatever the role.
func ScopeMessages(items []*models.Message, v Viewer) []*models.Message {
	if v == nil {
		return []*models.Message{}
	}
	id := v.UserID()
	return keep(items, func(m *models.Message) bool { return m.Involves(id) })
}
