package client

import (
	"context"
	"errors"

	"health-portal/internal/api"
	"health-portal/internal/models"
)

// Login signs in and begins the session.
func (c *Client) Login(ctx context.Context, email, password string) (*models.User, error) {
	return c.authenticate(ctx, api.AuthLogin, api.LoginRequest{Email: email, Password: password})
}

// Register creates an account and begins the session.
func (c *Client) Register(ctx context.Context, req api.RegisterRequest) (*models.User, error) {
	return c.authenticate(ctx, api.AuthRegister, req)
}

func (c *Client) authenticate(ctx context.Context, path string, body any) (*models.User, error) {
	var resp api.AuthResponse
	if err := c.Post(ctx, path, body, &resp); err != nil {
		return nil, err
	}
	user := userFrom(resp.User)
	c.session.Begin(user, resp.Token)
	return user, nil
}

// Logout tells the server and always ends the local session, even when the call fails.
func (c *Client) Logout(ctx context.Context) error {
	defer c.session.End()
	if !c.session.Active() {
		return nil
	}
	return c.Post(ctx, api.AuthLogout, api.LogoutRequest{}, nil)
}

// CurrentUser fetches the profile. A failed fetch resolves to no user and no
// error; the transport has already notified. Only a rejected session ends the
// session, so a transient failure keeps the token.
func (c *Client) CurrentUser(ctx context.Context) (*models.User, error) {
	var u models.UserSanitized
	if err := c.Get(ctx, api.UsersProfile, nil, &u); err != nil {
		var rf *RequestFailed
		if !errors.As(err, &rf) {
			return nil, err
		}
		if errors.Is(err, ErrAuthRequired) {
			c.session.End()
		}
		c.logger.Debug().Err(err).Msg("no current user")
		return nil, nil
	}
	user := userFrom(u)
	c.session.SetUser(user)
	return user, nil
}

// UpdateProfile edits the signed-in user's profile.
func (c *Client) UpdateProfile(ctx context.Context, upd api.ProfileUpdate) (*models.User, error) {
	var u models.UserSanitized
	if err := c.Put(ctx, api.UsersProfile, upd, &u); err != nil {
		return nil, err
	}
	return userFrom(u), nil
}

// Providers lists provider accounts.
func (c *Client) Providers(ctx context.Context) ([]models.UserSanitized, error) {
	var out []models.UserSanitized
	err := c.Get(ctx, api.Providers, nil, &out)
	return out, err
}

// Patients lists patient accounts. Providers only.
func (c *Client) Patients(ctx context.Context) ([]models.UserSanitized, error) {
	var out []models.UserSanitized
	err := c.Get(ctx, api.Patients, nil, &out)
	return out, err
}

func userFrom(s models.UserSanitized) *models.User {
	return &models.User{
		BaseModel:     models.BaseModel{ID: s.ID},
		Email:         s.Email,
		Name:          s.Name,
		Role:          s.Role,
		ProfileImage:  s.ProfileImage,
		DateOfBirth:   s.DateOfBirth,
		Gender:        s.Gender,
		Address:       s.Address,
		Phone:         s.Phone,
		Specialty:     s.Specialty,
		LicenseNumber: s.LicenseNumber,
		Department:    s.Department,
	}
}

// Appointments

func (c *Client) ListAppointments(ctx context.Context) ([]*models.Appointment, error) {
	var out []*models.Appointment
	err := c.Get(ctx, api.Appointments, nil, &out)
	return out, err
}

func (c *Client) GetAppointment(ctx context.Context, id string) (*models.Appointment, error) {
	var out models.Appointment
	if err := c.Get(ctx, api.AppointmentByID(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateAppointment(ctx context.Context, req api.AppointmentRequest) (*models.Appointment, error) {
	var out models.Appointment
	if err := c.Post(ctx, api.Appointments, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateAppointment(ctx context.Context, id string, upd api.AppointmentUpdate) (*models.Appointment, error) {
	var out models.Appointment
	if err := c.Put(ctx, api.AppointmentByID(id), upd, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CancelAppointment(ctx context.Context, id string) (*models.Appointment, error) {
	var out models.Appointment
	if err := c.Post(ctx, api.CancelAppointment(id), struct{}{}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Medical records

func (c *Client) ListMedicalRecords(ctx context.Context) ([]*models.MedicalRecord, error) {
	var out []*models.MedicalRecord
	err := c.Get(ctx, api.MedicalRecords, nil, &out)
	return out, err
}

func (c *Client) GetMedicalRecord(ctx context.Context, id string) (*models.MedicalRecord, error) {
	var out models.MedicalRecord
	if err := c.Get(ctx, api.MedicalRecordByID(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) PatientMedicalRecords(ctx context.Context, patientID string) ([]*models.MedicalRecord, error) {
	var out []*models.MedicalRecord
	err := c.Get(ctx, api.PatientRecords(patientID), nil, &out)
	return out, err
}

func (c *Client) CreateMedicalRecord(ctx context.Context, req api.MedicalRecordRequest) (*models.MedicalRecord, error) {
	var out models.MedicalRecord
	if err := c.Post(ctx, api.MedicalRecords, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateMedicalRecord(ctx context.Context, id string, upd api.MedicalRecordUpdate) (*models.MedicalRecord, error) {
	var out models.MedicalRecord
	if err := c.Put(ctx, api.MedicalRecordByID(id), upd, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Prescriptions

func (c *Client) ListPrescriptions(ctx context.Context) ([]*models.Prescription, error) {
	var out []*models.Prescription
	err := c.Get(ctx, api.Prescriptions, nil, &out)
	return out, err
}

func (c *Client) GetPrescription(ctx context.Context, id string) (*models.Prescription, error) {
	var out models.Prescription
	if err := c.Get(ctx, api.PrescriptionByID(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreatePrescription(ctx context.Context, req api.PrescriptionRequest) (*models.Prescription, error) {
	var out models.Prescription
	if err := c.Post(ctx, api.Prescriptions, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdatePrescription(ctx context.Context, id string, upd api.PrescriptionUpdate) (*models.Prescription, error) {
	var out models.Prescription
	if err := c.Put(ctx, api.PrescriptionByID(id), upd, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RenewPrescription asks the prescriber for a renewal. The server acknowledges
// without changing the prescription.
func (c *Client) RenewPrescription(ctx context.Context, id string) (*models.Prescription, error) {
	var out api.RenewalResponse
	if err := c.Post(ctx, api.RenewPrescription(id), struct{}{}, &out); err != nil {
		return nil, err
	}
	return out.Prescription, nil
}

// Messages

func (c *Client) ListMessages(ctx context.Context) ([]*models.Message, error) {
	var out []*models.Message
	err := c.Get(ctx, api.Messages, nil, &out)
	return out, err
}

func (c *Client) GetMessage(ctx context.Context, id string) (*models.Message, error) {
	var out models.Message
	if err := c.Get(ctx, api.MessageByID(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SendMessage(ctx context.Context, req api.SendMessageRequest) (*models.Message, error) {
	var out models.Message
	if err := c.Post(ctx, api.Messages, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) MarkMessageRead(ctx context.Context, id string) (*models.Message, error) {
	var out models.Message
	if err := c.Post(ctx, api.MarkMessageRead(id), struct{}{}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
