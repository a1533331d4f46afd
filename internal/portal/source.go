package portal

import (
	"context"

	"health-portal/internal/api"
	"health-portal/internal/fixtures"
	"health-portal/internal/models"
)

// Source supplies the collections a Store loads. *client.Client is one.
type Source interface {
	ListAppointments(ctx context.Context) ([]*models.Appointment, error)
	ListMedicalRecords(ctx context.Context) ([]*models.MedicalRecord, error)
	ListPrescriptions(ctx context.Context) ([]*models.Prescription, error)
	ListMessages(ctx context.Context) ([]*models.Message, error)
}

// Remote receives the mutations a Store applies locally. *client.Client is one.
type Remote interface {
	CancelAppointment(ctx context.Context, id string) (*models.Appointment, error)
	MarkMessageRead(ctx context.Context, id string) (*models.Message, error)
	SendMessage(ctx context.Context, req api.SendMessageRequest) (*models.Message, error)
	RenewPrescription(ctx context.Context, id string) (*models.Prescription, error)
}

// FixtureSource serves the built-in demo data.
type FixtureSource struct{}

func (FixtureSource) ListAppointments(context.Context) ([]*models.Appointment, error) {
	return fixtures.Appointments(), nil
}

func (FixtureSource) ListMedicalRecords(context.Context) ([]*models.MedicalRecord, error) {
	return fixtures.MedicalRecords(), nil
}

func (FixtureSource) ListPrescriptions(context.Context) ([]*models.Prescription, error) {
	return fixtures.Prescriptions(), nil
}

func (FixtureSource) ListMessages(context.Context) ([]*models.Message, error) {
	return fixtures.Messages(), nil
}
