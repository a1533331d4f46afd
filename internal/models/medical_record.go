package models

// MedicalRecordType represents the category of a medical record
type MedicalRecordType string

const (
	RecordTypeExamination MedicalRecordType = "examination"
	RecordTypeTest        MedicalRecordType = "test"
	RecordTypeProcedure   MedicalRecordType = "procedure"
	RecordTypeNote        MedicalRecordType = "note"
)

// MedicalRecord represents a patient's medical record
type MedicalRecord struct {
	BaseModel
	PatientID    string            `gorm:"size:36;index" json:"patientId"`
	ProviderID   string            `gorm:"size:36;index" json:"providerId"`
	ProviderName string            `gorm:"size:200" json:"providerName"`
	Date         string            `gorm:"size:10;index" json:"date"`
	Type         MedicalRecordType `gorm:"size:20" json:"type"`
	Title        string            `gorm:"size:255;not null" json:"title"`
	Description  string            `gorm:"type:text" json:"description"`
	Attachments  []string          `gorm:"serializer:json" json:"attachments,omitempty"`
	Confidential bool              `gorm:"default:false" json:"confidential"`
}
