// Package portal is the record store behind the terminal front-end. It loads
// the signed-in user's collections, serves scoped views of them and applies
// mutations optimistically before confirming them with the server.
package portal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"health-portal/internal/api"
	"health-portal/internal/models"
	"health-portal/internal/notify"
	"health-portal/internal/records"
)

// ErrNotPermitted is returned when the viewer's role cannot perform an action.
var ErrNotPermitted = errors.New("action not available for this role")

// Policy decides what happens to an optimistic change the server rejects.
type Policy string

const (
	// Revert puts the record back the way it was.
	Revert Policy = "revert"
	// Keep leaves the optimistic change in place.
	Keep Policy = "keep"
)

// ParsePolicy accepts "revert", "keep" or "" (revert).
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return Revert, nil
	case Revert, Keep:
		return p, nil
	}
	return Revert, fmt.Errorf("unknown reconcile policy %q", s)
}

// Collection names one of the store's record lists.
type Collection string

const (
	CollectionAppointments   Collection = "appointments"
	CollectionMedicalRecords Collection = "medical-records"
	CollectionPrescriptions  Collection = "prescriptions"
	CollectionMessages       Collection = "messages"
)

// Store holds one viewer's records.
type Store struct {
	mu       sync.RWMutex
	viewer   records.Viewer
	data     records.Collections
	loadErrs map[Collection]error

	remote   Remote
	notifier notify.Notifier
	policy   Policy
	logger   zerolog.Logger
	now      func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithRemote sends confirmed mutations to r. Without one, mutations stay local.
func WithRemote(r Remote) Option { return func(s *Store) { s.remote = r } }

// WithNotifier sets where success notices go.
func WithNotifier(n notify.Notifier) Option { return func(s *Store) { s.notifier = n } }

// WithPolicy sets the reconcile policy.
func WithPolicy(p Policy) Option { return func(s *Store) { s.policy = p } }

// WithLogger sets the logger for reconcile warnings and load failures.
func WithLogger(l zerolog.Logger) Option { return func(s *Store) { s.logger = l } }

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option { return func(s *Store) { s.now = now } }

// NewStore returns an empty store for v. A nil viewer is the loading state and
// every view is empty.
func NewStore(v records.Viewer, opts ...Option) *Store {
	s := &Store{
		viewer:   v,
		loadErrs: map[Collection]error{},
		notifier: notify.Discard,
		policy:   Revert,
		logger:   zerolog.Nop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Viewer returns the viewer the store is scoped to.
func (s *Store) Viewer() records.Viewer { return s.viewer }

// Load replaces every collection with what src returns. A collection whose
// fetch fails is left empty and its error kept for LoadErrors; the transport
// has already told the user.
func (s *Store) Load(ctx context.Context, src Source) {
	var (
		data records.Collections
		errs = map[Collection]error{}
	)

	var err error
	if data.Appointments, err = src.ListAppointments(ctx); err != nil {
		errs[CollectionAppointments] = err
	}
	if data.MedicalRecords, err = src.ListMedicalRecords(ctx); err != nil {
		errs[CollectionMedicalRecords] = err
	}
	if data.Prescriptions, err = src.ListPrescriptions(ctx); err != nil {
		errs[CollectionPrescriptions] = err
	}
	if data.Messages, err = src.ListMessages(ctx); err != nil {
		errs[CollectionMessages] = err
	}

	for name, err := range errs {
		s.logger.Warn().Err(err).Str("collection", string(name)).Msg("load failed, collection left empty")
	}
	if errs[CollectionAppointments] != nil {
		data.Appointments = nil
	}
	if errs[CollectionMedicalRecords] != nil {
		data.MedicalRecords = nil
	}
	if errs[CollectionPrescriptions] != nil {
		data.Prescriptions = nil
	}
	if errs[CollectionMessages] != nil {
		data.Messages = nil
	}

	s.mu.Lock()
	s.data = data
	s.loadErrs = errs
	s.mu.Unlock()
}

// LoadErrors reports which collections failed during the last Load.
func (s *Store) LoadErrors() map[Collection]error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[Collection]error, len(s.loadErrs))
	for k, v := range s.loadErrs {
		out[k] = v
	}
	return out
}

func (s *Store) snapshot() records.Collections {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data
}

// Views. Each is scope, then filter, then sort.

func (s *Store) Appointments(c records.Criteria, o records.Order) []*models.Appointment {
	items := records.ScopeAppointments(s.snapshot().Appointments, s.viewer)
	return records.SortAppointments(records.FilterAppointments(items, s.viewer, c), s.viewer, o)
}

func (s *Store) MedicalRecords(c records.Criteria, o records.Order) []*models.MedicalRecord {
	items := records.ScopeMedicalRecords(s.snapshot().MedicalRecords, s.viewer)
	return records.SortMedicalRecords(records.FilterMedicalRecords(items, c), o)
}

func (s *Store) Prescriptions(c records.Criteria, o records.Order) []*models.Prescription {
	items := records.ScopePrescriptions(s.snapshot().Prescriptions, s.viewer)
	return records.SortPrescriptions(records.FilterPrescriptions(items, c), o)
}

func (s *Store) Messages(c records.Criteria, o records.Order) []*models.Message {
	items := records.ScopeMessages(s.snapshot().Messages, s.viewer)
	return records.SortMessages(records.FilterMessages(items, c), s.viewer, o)
}

// Dashboard summarises the store for the viewer at now.
func (s *Store) Dashboard(now time.Time) records.Dashboard {
	return records.BuildDashboard(s.snapshot(), s.viewer, now)
}

// Lookups by id within the viewer's scope.

func (s *Store) Appointment(id string) (*models.Appointment, error) {
	return find(s.Appointments(records.Criteria{}, records.OrderNone), id, func(a *models.Appointment) string { return a.ID })
}

func (s *Store) MedicalRecord(id string) (*models.MedicalRecord, error) {
	return find(s.MedicalRecords(records.Criteria{}, records.OrderNone), id, func(r *models.MedicalRecord) string { return r.ID })
}

func (s *Store) Prescription(id string) (*models.Prescription, error) {
	return find(s.Prescriptions(records.Criteria{}, records.OrderNone), id, func(p *models.Prescription) string { return p.ID })
}

func (s *Store) Message(id string) (*models.Message, error) {
	return find(s.Messages(records.Criteria{}, records.OrderNone), id, func(m *models.Message) string { return m.ID })
}

func find[T any](items []*T, id string, idOf func(*T) string) (*T, error) {
	for _, it := range items {
		if idOf(it) == id {
			return it, nil
		}
	}
	return nil, fmt.Errorf("%s: %w", id, records.ErrNotFound)
}

// swap replaces the element whose id matches with next, but only while the
// current element is still want. Later edits to the same record win.
func swap[T any](items []*T, id string, idOf func(*T) string, want, next *T) []*T {
	for i, it := range items {
		if idOf(it) == id && it == want {
			out := make([]*T, len(items))
			copy(out, items)
			out[i] = next
			return out
		}
	}
	return items
}

func (s *Store) reconcile(op string, err error, revert func()) error {
	s.logger.Warn().Err(err).Str("op", op).Str("policy", string(s.policy)).Msg("remote rejected change")
	if s.policy == Revert {
		revert()
	}
	return fmt.Errorf("%s: %w", op, err)
}

// CancelAppointment cancels a scheduled appointment in the viewer's scope.
func (s *Store) CancelAppointment(ctx context.Context, id string) error {
	cur, err := s.Appointment(id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	next, err := records.CancelAppointment(s.data.Appointments, id)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.data.Appointments = next
	optimistic, _ := find(next, id, appointmentID)
	s.mu.Unlock()

	if s.remote != nil {
		if _, err := s.remote.CancelAppointment(ctx, id); err != nil {
			return s.reconcile("cancel appointment", err, func() {
				s.mu.Lock()
				s.data.Appointments = swap(s.data.Appointments, id, appointmentID, optimistic, cur)
				s.mu.Unlock()
			})
		}
	}
	s.notifier.Notify(records.Cancelled(cur))
	return nil
}

// ViewMessage opens a message. The recipient opening an unread message marks it read.
func (s *Store) ViewMessage(ctx context.Context, id string) (*models.Message, error) {
	cur, err := s.Message(id)
	if err != nil {
		return nil, err
	}
	if s.viewer == nil {
		return cur, nil
	}

	s.mu.Lock()
	next, changed := records.MarkMessageRead(s.data.Messages, id, s.viewer.UserID())
	if !changed {
		s.mu.Unlock()
		return cur, nil
	}
	s.data.Messages = next
	optimistic, _ := find(next, id, messageID)
	s.mu.Unlock()

	if s.remote != nil {
		if _, err := s.remote.MarkMessageRead(ctx, id); err != nil {
			err = s.reconcile("mark message read", err, func() {
				s.mu.Lock()
				s.data.Messages = swap(s.data.Messages, id, messageID, optimistic, cur)
				s.mu.Unlock()
			})
			if s.policy == Revert {
				return cur, err
			}
			return optimistic, err
		}
	}
	return optimistic, nil
}

// SendMessage composes d from the viewer and puts it at the top of the inbox.
// When the server accepts it, the local copy is replaced by the server's.
func (s *Store) SendMessage(ctx context.Context, d records.Draft) (*models.Message, error) {
	if s.viewer == nil {
		return nil, ErrNotPermitted
	}

	s.mu.Lock()
	next, msg, err := records.ComposeMessage(s.data.Messages, d, s.viewer, s.now())
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.data.Messages = next
	s.mu.Unlock()

	if s.remote != nil {
		saved, err := s.remote.SendMessage(ctx, api.SendMessageRequest{
			RecipientID: d.RecipientID,
			Subject:     d.Subject,
			Content:     d.Content,
			Urgent:      d.Urgent,
		})
		if err != nil {
			return msg, s.reconcile("send message", err, func() {
				s.mu.Lock()
				s.data.Messages = without(s.data.Messages, msg)
				s.mu.Unlock()
			})
		}
		if saved != nil {
			s.mu.Lock()
			s.data.Messages = swap(s.data.Messages, msg.ID, messageID, msg, saved)
			s.mu.Unlock()
			msg = saved
		}
	}
	s.notifier.Notify(records.Sent())
	return msg, nil
}

// Reply sends a reply to message id.
func (s *Store) Reply(ctx context.Context, id, content string, urgent bool) (*models.Message, error) {
	orig, err := s.Message(id)
	if err != nil {
		return nil, err
	}
	d := records.ReplyDraft(orig)
	d.Content = content
	d.Urgent = urgent
	return s.SendMessage(ctx, d)
}

// RequestRenewal asks the prescriber to renew prescription id. No record changes.
func (s *Store) RequestRenewal(ctx context.Context, id string) (notify.Notice, error) {
	if s.viewer == nil || !s.viewer.CanRequestRenewal() {
		return notify.Notice{}, ErrNotPermitted
	}
	p, err := s.Prescription(id)
	if err != nil {
		return notify.Notice{}, err
	}
	notice, err := records.RequestRenewal(p)
	if err != nil {
		return notify.Notice{}, err
	}
	if s.remote != nil {
		if _, err := s.remote.RenewPrescription(ctx, id); err != nil {
			return notify.Notice{}, fmt.Errorf("renew prescription: %w", err)
		}
	}
	s.notifier.Notify(notice)
	return notice, nil
}

// RequestReschedule acknowledges a reschedule request. No record changes.
func (s *Store) RequestReschedule(_ context.Context, id string) (notify.Notice, error) {
	a, err := s.Appointment(id)
	if err != nil {
		return notify.Notice{}, err
	}
	notice, err := records.RequestReschedule(a)
	if err != nil {
		return notify.Notice{}, err
	}
	s.notifier.Notify(notice)
	return notice, nil
}

func appointmentID(a *models.Appointment) string { return a.ID }
func messageID(m *models.Message) string         { return m.ID }

func without(items []*models.Message, m *models.Message) []*models.Message {
	out := make([]*models.Message, 0, len(items))
	for _, it := range items {
		if it != m {
			out = append(out, it)
		}
	}
	return out
}
