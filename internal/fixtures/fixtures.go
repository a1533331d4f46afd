// Package fixtures holds the demo data set: two patients, two providers and
// a handful of records linking them. Every call returns fresh copies.
package fixtures

import (
	"time"

	"health-portal/internal/models"
)

// DemoPassword is the password of every demo account.
const DemoPassword = "password"

func base(id string) models.BaseModel { return models.BaseModel{ID: id} }

// Patients returns p1 and p2.
func Patients() []*models.User {
	return []*models.User{
		{
			BaseModel:    base("p1"),
			Email:        "john.doe@example.com",
			Name:         "John Doe",
			Role:         models.RolePatient,
			DateOfBirth:  "1985-04-12",
			Gender:       "Male",
			Address:      "123 Main St, Anytown, USA",
			Phone:        "(555) 123-4567",
			ProfileImage: "/placeholder.svg",
		},
		{
			BaseModel:   base("p2"),
			Email:       "sarah.smith@example.com",
			Name:        "Sarah Smith",
			Role:        models.RolePatient,
			DateOfBirth: "1990-08-23",
			Gender:      "Female",
			Address:     "456 Oak Ave, Somecity, USA",
			Phone:       "(555) 234-5678",
		},
	}
}

// Providers returns dr1 and dr2.
func Providers() []*models.User {
	return []*models.User{
		{
			BaseModel:     base("dr1"),
			Email:         "dr.johnson@healthsystem.com",
			Name:          "Dr. Emily Johnson",
			Role:          models.RoleProvider,
			Specialty:     "Family Medicine",
			LicenseNumber: "MD12345",
			Department:    "Primary Care",
		},
		{
			BaseModel:     base("dr2"),
			Email:         "dr.patel@healthsystem.com",
			Name:          "Dr. Raj Patel",
			Role:          models.RoleProvider,
			Specialty:     "Cardiology",
			LicenseNumber: "MD67890",
			Department:    "Cardiology",
		},
	}
}

// Users returns patients followed by providers.
func Users() []*models.User {
	return append(Patients(), Providers()...)
}

// MedicalRecords returns mr1 through mr3.
func MedicalRecords() []*models.MedicalRecord {
	return []*models.MedicalRecord{
		{
			BaseModel:    base("mr1"),
			PatientID:    "p1",
			ProviderID:   "dr1",
			ProviderName: "Dr. Emily Johnson",
			Date:         "2023-06-15",
			Type:         models.RecordTypeExamination,
			Title:        "Annual Physical",
			Description:  "Patient is in good health. Blood pressure 120/80. Heart rate 72 BPM. Recommended continued exercise and healthy diet.",
		},
		{
			BaseModel:    base("mr2"),
			PatientID:    "p1",
			ProviderID:   "dr2",
			ProviderName: "Dr. Raj Patel",
			Date:         "2023-08-22",
			Type:         models.RecordTypeTest,
			Title:        "EKG Test Results",
			Description:  "EKG shows normal sinus rhythm. No abnormalities detected.",
		},
		{
			BaseModel:    base("mr3"),
			PatientID:    "p2",
			ProviderID:   "dr1",
			ProviderName: "Dr. Emily Johnson",
			Date:         "2023-07-10",
			Type:         models.RecordTypeExamination,
			Title:        "Follow-up Visit",
			Description:  "Patient reports allergies have improved with prescribed medication. Continuing current treatment plan.",
		},
	}
}

// Prescriptions returns rx1 and rx2.
func Prescriptions() []*models.Prescription {
	return []*models.Prescription{
		{
			BaseModel:    base("rx1"),
			PatientID:    "p1",
			ProviderID:   "dr1",
			ProviderName: "Dr. Emily Johnson",
			Medication:   "Lisinopril",
			Dosage:       "10mg",
			Frequency:    "Once daily",
			StartDate:    "2023-06-15",
			EndDate:      "2023-12-15",
			Instructions: "Take in the morning with food",
			Refills:      5,
			Status:       models.PrescriptionActive,
		},
		{
			BaseModel:    base("rx2"),
			PatientID:    "p2",
			ProviderID:   "dr1",
			ProviderName: "Dr. Emily Johnson",
			Medication:   "Cetirizine",
			Dosage:       "10mg",
			Frequency:    "Once daily",
			StartDate:    "2023-07-10",
			EndDate:      "2023-10-10",
			Instructions: "Take as needed for allergies",
			Refills:      2,
			Status:       models.PrescriptionActive,
		},
	}
}

// Appointments returns a1 through a3, all scheduled.
func Appointments() []*models.Appointment {
	return []*models.Appointment{
		{
			BaseModel:    base("a1"),
			PatientID:    "p1",
			ProviderID:   "dr1",
			ProviderName: "Dr. Emily Johnson",
			PatientName:  "John Doe",
			Date:         "2023-09-30",
			Time:         "10:00",
			Duration:     30,
			Type:         models.TypeCheckup,
			Status:       models.StatusScheduled,
			Reason:       "Annual physical examination",
		},
		{
			BaseModel:    base("a2"),
			PatientID:    "p2",
			ProviderID:   "dr1",
			ProviderName: "Dr. Emily Johnson",
			PatientName:  "Sarah Smith",
			Date:         "2023-09-28",
			Time:         "14:30",
			Duration:     30,
			Type:         models.TypeFollowUp,
			Status:       models.StatusScheduled,
			Reason:       "Follow-up on allergy treatment",
		},
		{
			BaseModel:    base("a3"),
			PatientID:    "p1",
			ProviderID:   "dr2",
			ProviderName: "Dr. Raj Patel",
			PatientName:  "John Doe",
			Date:         "2023-10-05",
			Time:         "11:15",
			Duration:     45,
			Type:         models.TypeConsultation,
			Status:       models.StatusScheduled,
			Reason:       "Cardiovascular consultation",
		},
	}
}

// Messages returns m1 through m3.
func Messages() []*models.Message {
	return []*models.Message{
		{
			BaseModel:     base("m1"),
			SenderID:      "dr1",
			SenderName:    "Dr. Emily Johnson",
			RecipientID:   "p1",
			RecipientName: "John Doe",
			Timestamp:     time.Date(2023, 9, 20, 14, 30, 0, 0, time.UTC),
			Subject:       "Your recent test results",
			Content:       "Hi John, I've reviewed your recent blood work and everything looks normal. Keep up the good work with your diet and exercise regimen.",
			Read:          true,
		},
		{
			BaseModel:     base("m2"),
			SenderID:      "p1",
			SenderName:    "John Doe",
			RecipientID:   "dr1",
			RecipientName: "Dr. Emily Johnson",
			Timestamp:     time.Date(2023, 9, 21, 9, 15, 0, 0, time.UTC),
			Subject:       "Question about medication",
			Content:       "Dr. Johnson, I've been experiencing some mild side effects from the new medication. Should I continue taking it or schedule an appointment?",
			Read:          true,
		},
		{
			BaseModel:     base("m3"),
			SenderID:      "dr2",
			SenderName:    "Dr. Raj Patel",
			RecipientID:   "p1",
			RecipientName: "John Doe",
			Timestamp:     time.Date(2023, 9, 22, 16, 45, 0, 0, time.UTC),
			Subject:       "Upcoming cardiology appointment",
			Content:       "Hello John, Just a reminder about your upcoming appointment on October 5th. Please remember to bring your list of current medications.",
		},
	}
}

// UserByEmail finds a demo account.
func UserByEmail(email string) *models.User {
	for _, u := range Users() {
		if u.Email == email {
			return u
		}
	}
	return nil
}
