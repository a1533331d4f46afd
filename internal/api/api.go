// Package api defines the wire contract shared by the server and the client:
// endpoint paths and request/response bodies.
package api

import (
	"health-portal/internal/models"
)

// BasePath prefixes every endpoint on the server.
const BasePath = "/api"

// Endpoint paths, relative to BasePath.
const (
	AuthLogin    = "/auth/login"
	AuthRegister = "/auth/register"
	AuthLogout   = "/auth/logout"
	AuthRefresh  = "/auth/refresh-token"

	Users        = "/users"
	UsersProfile = "/users/profile"
	Patients     = "/patients"
	Providers    = "/providers"

	Appointments   = "/appointments"
	MedicalRecords = "/medical-records"
	Prescriptions  = "/prescriptions"
	Messages       = "/messages"
)

func UserByID(id string) string          { return Users + "/" + id }
func AppointmentByID(id string) string   { return Appointments + "/" + id }
func AppointmentStatus(id string) string { return AppointmentByID(id) + "/status" }
func CancelAppointment(id string) string { return AppointmentByID(id) + "/cancel" }
func MedicalRecordByID(id string) string { return MedicalRecords + "/" + id }
func PatientByID(id string) string       { return Patients + "/" + id }
func PatientRecords(id string) string    { return PatientByID(id) + MedicalRecords }
func PrescriptionByID(id string) string  { return Prescriptions + "/" + id }
func RenewPrescription(id string) string { return PrescriptionByID(id) + "/renew" }
func MessageByID(id string) string       { return Messages + "/" + id }
func MarkMessageRead(id string) string   { return MessageByID(id) + "/read" }

// LoginRequest represents the request body for user login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest represents the request body for user registration.
type RegisterRequest struct {
	Email    string      `json:"email" binding:"required,email"`
	Password string      `json:"password" binding:"required,min=8"`
	Name     string      `json:"name" binding:"required"`
	Role     models.Role `json:"role" binding:"required,oneof=patient provider"`
}

// AuthResponse is returned by login and register.
type AuthResponse struct {
	User         models.UserSanitized `json:"user"`
	Token        string               `json:"token"`
	RefreshToken string               `json:"refreshToken,omitempty"`
}

// RefreshRequest exchanges a refresh token for a new token pair.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// LogoutRequest optionally names the refresh token to revoke; empty revokes all of the caller's.
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// UserRequest is an administrator creating an account of any role.
type UserRequest struct {
	Email         string      `json:"email" binding:"required,email"`
	Password      string      `json:"password" binding:"required,min=8"`
	Name          string      `json:"name" binding:"required"`
	Role          models.Role `json:"role" binding:"required,oneof=patient provider admin"`
	Specialty     string      `json:"specialty"`
	LicenseNumber string      `json:"licenseNumber"`
	Department    string      `json:"department"`
}

// UserUpdate is an administrator editing an account. Nil fields are left alone.
type UserUpdate struct {
	Email      *string      `json:"email,omitempty" binding:"omitempty,email"`
	Name       *string      `json:"name,omitempty"`
	Role       *models.Role `json:"role,omitempty" binding:"omitempty,oneof=patient provider admin"`
	Specialty  *string      `json:"specialty,omitempty"`
	Department *string      `json:"department,omitempty"`
}

// ProfileUpdate carries the editable profile fields. Nil fields are left alone.
type ProfileUpdate struct {
	Name    *string `json:"name,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Address *string `json:"address,omitempty"`
}

// AppointmentRequest creates an appointment.
type AppointmentRequest struct {
	PatientID  string                 `json:"patientId"`
	ProviderID string                 `json:"providerId"`
	Date       string                 `json:"date" binding:"required,datetime=2006-01-02"`
	Time       string                 `json:"time" binding:"required,datetime=15:04"`
	Duration   int                    `json:"duration" binding:"required,min=5,max=480"`
	Type       models.AppointmentType `json:"type" binding:"required,oneof=checkup follow-up consultation procedure test"`
	Reason     string                 `json:"reason" binding:"required"`
	Notes      string                 `json:"notes"`
}

// AppointmentUpdate edits scheduling details. Status changes go through the cancel endpoint.
type AppointmentUpdate struct {
	Date     *string `json:"date,omitempty" binding:"omitempty,datetime=2006-01-02"`
	Time     *string `json:"time,omitempty" binding:"omitempty,datetime=15:04"`
	Duration *int    `json:"duration,omitempty" binding:"omitempty,min=5,max=480"`
	Reason   *string `json:"reason,omitempty"`
	Notes    *string `json:"notes,omitempty"`
}

// AppointmentStatusRequest records the outcome of a scheduled appointment.
type AppointmentStatusRequest struct {
	Status models.AppointmentStatus `json:"status" binding:"required,oneof=completed cancelled no-show"`
	Notes  string                   `json:"notes"`
}

// MedicalRecordRequest creates a medical record.
type MedicalRecordRequest struct {
	PatientID    string                   `json:"patientId" binding:"required"`
	Date         string                   `json:"date" binding:"required,datetime=2006-01-02"`
	Type         models.MedicalRecordType `json:"type" binding:"required,oneof=examination test procedure note"`
	Title        string                   `json:"title" binding:"required"`
	Description  string                   `json:"description"`
	Attachments  []string                 `json:"attachments"`
	Confidential bool                     `json:"confidential"`
}

// MedicalRecordUpdate edits a medical record. Nil fields are left alone.
type MedicalRecordUpdate struct {
	Title        *string  `json:"title,omitempty"`
	Description  *string  `json:"description,omitempty"`
	Attachments  []string `json:"attachments,omitempty"`
	Confidential *bool    `json:"confidential,omitempty"`
}

// PrescriptionRequest creates a prescription.
type PrescriptionRequest struct {
	PatientID    string `json:"patientId" binding:"required"`
	Medication   string `json:"medication" binding:"required"`
	Dosage       string `json:"dosage" binding:"required"`
	Frequency    string `json:"frequency" binding:"required"`
	StartDate    string `json:"startDate" binding:"required,datetime=2006-01-02"`
	EndDate      string `json:"endDate" binding:"required,datetime=2006-01-02"`
	Instructions string `json:"instructions"`
	Refills      int    `json:"refills" binding:"min=0"`
}

// PrescriptionUpdate edits a prescription. Nil fields are left alone.
type PrescriptionUpdate struct {
	Dosage       *string                    `json:"dosage,omitempty"`
	Frequency    *string                    `json:"frequency,omitempty"`
	EndDate      *string                    `json:"endDate,omitempty" binding:"omitempty,datetime=2006-01-02"`
	Instructions *string                    `json:"instructions,omitempty"`
	Refills      *int                       `json:"refills,omitempty" binding:"omitempty,min=0"`
	Status       *models.PrescriptionStatus `json:"status,omitempty" binding:"omitempty,oneof=active completed cancelled"`
}

// RenewalResponse acknowledges a renewal request. The prescription is unchanged.
type RenewalResponse struct {
	Message      string               `json:"message"`
	Prescription *models.Prescription `json:"prescription"`
}

// SendMessageRequest represents the request body for sending a message.
type SendMessageRequest struct {
	RecipientID string `json:"recipientId" binding:"required"`
	Subject     string `json:"subject" binding:"required"`
	Content     string `json:"content" binding:"required"`
	Urgent      bool   `json:"urgent"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}
