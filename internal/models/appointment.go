package models

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusScheduled AppointmentStatus = "scheduled"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusNoShow    AppointmentStatus = "no-show"
)

// CanTransitionTo reports whether an appointment in status s may move to next.
// Only scheduled appointments move, and only into a terminal state.
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	if s != StatusScheduled {
		return false
	}
	switch next {
	case StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// Terminal reports whether no further transition is possible.
func (s AppointmentStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusNoShow
}

// AppointmentType is the kind of visit booked.
type AppointmentType string

const (
	TypeCheckup      AppointmentType = "checkup"
	TypeFollowUp     AppointmentType = "follow-up"
	TypeConsultation AppointmentType = "consultation"
	TypeProcedure    AppointmentType = "procedure"
	TypeTest         AppointmentType = "test"
)

// Appointment represents a scheduled medical appointment
type Appointment struct {
	BaseModel
	PatientID    string            `gorm:"size:36;index" json:"patientId"`
	ProviderID   string            `gorm:"size:36;index" json:"providerId"`
	PatientName  string            `gorm:"size:200" json:"patientName"`
	ProviderName string            `gorm:"size:200" json:"providerName"`
	Date         string            `gorm:"size:10;index" json:"date"`
	Time         string            `gorm:"size:5" json:"time"`
	Duration     int               `json:"duration"`
	Type         AppointmentType   `gorm:"size:20" json:"type"`
	Status       AppointmentStatus `gorm:"size:20;default:'scheduled'" json:"status"`
	Reason       string            `gorm:"size:255" json:"reason"`
	Notes        string            `gorm:"type:text" json:"notes,omitempty"`
}
