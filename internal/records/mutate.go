package records

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"health-portal/internal/models"
	"health-portal/internal/notify"
)

// Every mutation returns a fresh slice in which at most one pointer differs
// from the input; untouched records keep their identity.

func indexOf[T any](items []*T, id string, idOf func(*T) string) int {
	for i, it := range items {
		if idOf(it) == id {
			return i
		}
	}
	return -1
}

func replaceAt[T any](items []*T, i int, next *T) []*T {
	out := make([]*T, len(items))
	copy(out, items)
	out[i] = next
	return out
}

func appointmentID(a *models.Appointment) string { return a.ID }
func messageID(m *models.Message) string         { return m.ID }

// TransitionAppointment moves appointment id to status to. Only scheduled
// appointments move; anything else returns ErrInvalidTransition and the input unchanged.
func TransitionAppointment(items []*models.Appointment, id string, to models.AppointmentStatus) ([]*models.Appointment, error) {
	i := indexOf(items, id, appointmentID)
	if i < 0 {
		return items, fmt.Errorf("appointment %s: %w", id, ErrNotFound)
	}
	cur := items[i]
	if !cur.Status.CanTransitionTo(to) {
		return items, fmt.Errorf("appointment %s is %s, cannot become %s: %w", id, cur.Status, to, ErrInvalidTransition)
	}
	next := *cur
	next.Status = to
	return replaceAt(items, i, &next), nil
}

// CancelAppointment marks a scheduled appointment cancelled.
func CancelAppointment(items []*models.Appointment, id string) ([]*models.Appointment, error) {
	return TransitionAppointment(items, id, models.StatusCancelled)
}

// MarkMessageRead flips read on message id when actorID is its recipient and
// it is still unread. Otherwise it returns the input and false.
func MarkMessageRead(items []*models.Message, id, actorID string) ([]*models.Message, bool) {
	i := indexOf(items, id, messageID)
	if i < 0 {
		return items, false
	}
	cur := items[i]
	if cur.RecipientID != actorID || cur.Read {
		return items, false
	}
	next := *cur
	next.Read = true
	return replaceAt(items, i, &next), true
}

// Draft is a message being composed.
type Draft struct {
	RecipientID   string `validate:"required"`
	RecipientName string
	Subject       string `validate:"required"`
	Content       string `validate:"required"`
	Urgent        bool
}

var validate = validator.New()

// Validate returns ErrValidation naming every missing field.
func (d Draft) Validate() error {
	err := validate.Struct(d)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, strings.ToLower(fe.Field()))
	}
	return fmt.Errorf("%w: missing %s", ErrValidation, strings.Join(fields, ", "))
}

// ReplyDraft addresses a draft back to the sender of m.
func ReplyDraft(m *models.Message) Draft {
	subject := m.Subject
	if !strings.HasPrefix(subject, "Re: ") {
		subject = "Re: " + subject
	}
	return Draft{RecipientID: m.SenderID, RecipientName: m.SenderName, Subject: subject}
}

// NewMessage builds an unread message from sender with a fresh id.
func NewMessage(d Draft, sender Viewer, now time.Time) (*models.Message, error) {
	if sender == nil {
		return nil, fmt.Errorf("%w: no sender", ErrValidation)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &models.Message{
		BaseModel:     models.BaseModel{ID: uuid.NewString()},
		SenderID:      sender.UserID(),
		SenderName:    sender.DisplayName(),
		RecipientID:   d.RecipientID,
		RecipientName: d.RecipientName,
		Timestamp:     now,
		Subject:       d.Subject,
		Content:       d.Content,
		Read:          false,
		Urgent:        d.Urgent,
	}, nil
}

// Position says where a new record goes in its collection.
type Position int

const (
	NewestFirst Position = iota
	NewestLast
)

// InsertMessage adds m to a copy of items at pos.
func InsertMessage(items []*models.Message, m *models.Message, pos Position) []*models.Message {
	out := make([]*models.Message, 0, len(items)+1)
	if pos == NewestFirst {
		out = append(out, m)
		return append(out, items...)
	}
	out = append(out, items...)
	return append(out, m)
}

// ComposeMessage validates d and puts the new message first.
func ComposeMessage(items []*models.Message, d Draft, sender Viewer, now time.Time) ([]*models.Message, *models.Message, error) {
	m, err := NewMessage(d, sender, now)
	if err != nil {
		return items, nil, err
	}
	return InsertMessage(items, m, NewestFirst), m, nil
}

// Acknowledgments. These requests change no record state.

// RequestRenewal acknowledges a renewal request for an active prescription.
func RequestRenewal(p *models.Prescription) (notify.Notice, error) {
	if p.Status != models.PrescriptionActive {
		return notify.Notice{}, fmt.Errorf("prescription %s is %s: %w", p.ID, p.Status, ErrInvalidTransition)
	}
	return notify.Notice{
		Level: notify.LevelSuccess,
		Title: "Renewal Request Sent",
		Body:  fmt.Sprintf("Your renewal request for %s has been sent to %s.", p.Medication, p.ProviderName),
	}, nil
}

// RequestReschedule acknowledges a reschedule request for a scheduled appointment.
func RequestReschedule(a *models.Appointment) (notify.Notice, error) {
	if a.Status != models.StatusScheduled {
		return notify.Notice{}, fmt.Errorf("appointment %s is %s: %w", a.ID, a.Status, ErrInvalidTransition)
	}
	return notify.Notice{
		Level: notify.LevelInfo,
		Title: "Reschedule Request Initiated",
		Body:  "Please select a new date and time for your appointment.",
	}, nil
}

// Cancelled is the notice shown after a successful cancellation.
func Cancelled(a *models.Appointment) notify.Notice {
	return notify.Notice{
		Level: notify.LevelSuccess,
		Title: "Appointment Cancelled",
		Body:  fmt.Sprintf("Your appointment on %s has been cancelled.", a.Date),
	}
}

// Sent is the notice shown after a message goes out.
func Sent() notify.Notice {
	return notify.Notice{Level: notify.LevelSuccess, Title: "Message Sent", Body: "Your message has been sent successfully."}
}
