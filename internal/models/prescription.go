package models

import (
	"math"
	"time"
)

// PrescriptionStatus represents the status of a prescription
type PrescriptionStatus string

const (
	PrescriptionActive    PrescriptionStatus = "active"
	PrescriptionCompleted PrescriptionStatus = "completed"
	PrescriptionCancelled PrescriptionStatus = "cancelled"
)

// ExpiringWindowDays is how close to its end date an active prescription counts as expiring.
const ExpiringWindowDays = 7

// Prescription represents a medication prescribed to a patient
type Prescription struct {
	BaseModel
	PatientID    string             `gorm:"size:36;index" json:"patientId"`
	ProviderID   string             `gorm:"size:36;index" json:"providerId"`
	ProviderName string             `gorm:"size:200" json:"providerName"`
	Medication   string             `gorm:"size:255;not null" json:"medication"`
	Dosage       string             `gorm:"size:100" json:"dosage"`
	Frequency    string             `gorm:"size:100" json:"frequency"`
	StartDate    string             `gorm:"size:10" json:"startDate"`
	EndDate      string             `gorm:"size:10" json:"endDate"`
	Instructions string             `gorm:"type:text" json:"instructions"`
	Refills      uint               `json:"refills"`
	Status       PrescriptionStatus `gorm:"size:20;default:'active'" json:"status"`
}

// DaysLeft returns the whole days remaining until the end date, rounded up.
// ok is false when the end date cannot be parsed.
func (p *Prescription) DaysLeft(now time.Time) (days int, ok bool) {
	end, err := time.ParseInLocation(DateLayout, p.EndDate, now.Location())
	if err != nil {
		return 0, false
	}
	return int(math.Ceil(end.Sub(now).Hours() / 24)), true
}

// Expiring reports whether the prescription is active and ends within the next week.
// It is derived on every call and never stored.
func (p *Prescription) Expiring(now time.Time) bool {
	if p.Status != PrescriptionActive {
		return false
	}
	days, ok := p.DaysLeft(now)
	return ok && days > 0 && days <= ExpiringWindowDays
}
