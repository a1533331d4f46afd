package models

import (
	"golang.org/x/crypto/bcrypt"
)

// Role enum
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleProvider Role = "provider"
	RolePatient  Role = "patient"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleProvider, RolePatient:
		return true
	}
	return false
}

// User represents a user in the system. Role is fixed at creation.
type User struct {
	BaseModel
	Email         string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password      string `gorm:"size:255;not null" json:"-"` // Never send password in JSON
	Name          string `gorm:"size:200" json:"name"`
	Role          Role   `gorm:"size:20;default:'patient'" json:"role"`
	ProfileImage  string `json:"profileImage,omitempty"`
	DateOfBirth   string `gorm:"size:10" json:"dateOfBirth,omitempty"`
	Gender        string `gorm:"size:30" json:"gender,omitempty"`
	Address       string `json:"address,omitempty"`
	Phone         string `gorm:"size:40" json:"phone,omitempty"`
	Specialty     string `gorm:"size:100" json:"specialty,omitempty"`
	LicenseNumber string `gorm:"size:50" json:"licenseNumber,omitempty"`
	Department    string `gorm:"size:100" json:"department,omitempty"`
}

// UserSanitized represents the user data that is safe to send in API responses.
type UserSanitized struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	Name          string `json:"name"`
	Role          Role   `json:"role"`
	ProfileImage  string `json:"profileImage,omitempty"`
	DateOfBirth   string `json:"dateOfBirth,omitempty"`
	Gender        string `json:"gender,omitempty"`
	Address       string `json:"address,omitempty"`
	Phone         string `json:"phone,omitempty"`
	Specialty     string `json:"specialty,omitempty"`
	LicenseNumber string `json:"licenseNumber,omitempty"`
	Department    string `json:"department,omitempty"`
}

// SetPassword hashes a password and sets it on the user
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword compares a password with the user's hashed password
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// Sanitize creates a UserSanitized struct from a User model, excluding sensitive data.
func (u *User) Sanitize() UserSanitized {
	return UserSanitized{
		ID:            u.ID,
		Email:         u.Email,
		Name:          u.Name,
		Role:          u.Role,
		ProfileImage:  u.ProfileImage,
		DateOfBirth:   u.DateOfBirth,
		Gender:        u.Gender,
		Address:       u.Address,
		Phone:         u.Phone,
		Specialty:     u.Specialty,
		LicenseNumber: u.LicenseNumber,
		Department:    u.Department,
	}
}
