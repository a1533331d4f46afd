package portal

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"health-portal/internal/api"
	"health-portal/internal/client"
	"health-portal/internal/fixtures"
	"health-portal/internal/models"
	"health-portal/internal/notify"
	"health-portal/internal/records"
)

var (
	john  = records.PatientViewer{ID: "p1", Name: "John Doe"}
	emily = records.ProviderViewer{ID: "dr1", Name: "Dr. Emily Johnson"}
)

var errRemote = errors.New("remote down")

type fakeRemote struct {
	err   error
	calls []string
}

func (f *fakeRemote) record(op, id string) { f.calls = append(f.calls, op+":"+id) }

func (f *fakeRemote) CancelAppointment(_ context.Context, id string) (*models.Appointment, error) {
	f.record("cancel", id)
	return nil, f.err
}

func (f *fakeRemote) MarkMessageRead(_ context.Context, id string) (*models.Message, error) {
	f.record("read", id)
	return nil, f.err
}

func (f *fakeRemote) SendMessage(_ context.Context, req api.SendMessageRequest) (*models.Message, error) {
	f.record("send", req.RecipientID)
	if f.err != nil {
		return nil, f.err
	}
	return &models.Message{BaseModel: models.BaseModel{ID: "srv-1"}, SenderID: "p1", RecipientID: req.RecipientID, Subject: req.Subject}, nil
}

func (f *fakeRemote) RenewPrescription(_ context.Context, id string) (*models.Prescription, error) {
	f.record("renew", id)
	return nil, f.err
}

func loaded(t *testing.T, v records.Viewer, opts ...Option) *Store {
	t.Helper()
	s := NewStore(v, opts...)
	s.Load(context.Background(), FixtureSource{})
	require.Empty(t, s.LoadErrors())
	return s
}

func ids[T any](items []*T, idOf func(*T) string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, idOf(it))
	}
	return out
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, Revert, p)

	p, err = ParsePolicy(" Keep ")
	require.NoError(t, err)
	assert.Equal(t, Keep, p)

	_, err = ParsePolicy("merge")
	assert.Error(t, err)
}

func TestViewsAreScoped(t *testing.T) {
	s := loaded(t, john)

	assert.Equal(t, []string{"a1", "a3"}, ids(s.Appointments(records.Criteria{}, records.OrderNone), appointmentID))
	assert.Len(t, s.Prescriptions(records.Criteria{}, records.OrderNone), 1)
	assert.Equal(t, []string{"m1", "m2", "m3"}, ids(s.Messages(records.Criteria{}, records.OrderNone), messageID))

	got := s.Appointments(records.Criteria{SearchTerm: "cardio"}, records.OrderNone)
	assert.Equal(t, []string{"a3"}, ids(got, appointmentID))

	_, err := s.Appointment("a2")
	assert.ErrorIs(t, err, records.ErrNotFound)
}

func TestNilViewerSeesNothing(t *testing.T) {
	s := NewStore(nil)
	s.Load(context.Background(), FixtureSource{})

	assert.Empty(t, s.Appointments(records.Criteria{}, records.OrderNone))
	assert.Empty(t, s.Messages(records.Criteria{}, records.OrderNone))
	assert.Equal(t, records.Dashboard{}, s.Dashboard(time.Now()))

	_, err := s.SendMessage(context.Background(), records.Draft{RecipientID: "p1", Subject: "s", Content: "c"})
	assert.ErrorIs(t, err, ErrNotPermitted)
}

func TestLoadFailureLeavesCollectionEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if strings.HasSuffix(r.URL.Path, api.MedicalRecords) {
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(api.ErrorResponse{Status: 500, Message: "records unavailable"})
			return
		}
		switch {
		case strings.HasSuffix(r.URL.Path, api.Appointments):
			_ = json.NewEncoder(w).Encode(fixtures.Appointments())
		case strings.HasSuffix(r.URL.Path, api.Prescriptions):
			_ = json.NewEncoder(w).Encode(fixtures.Prescriptions())
		default:
			_ = json.NewEncoder(w).Encode(fixtures.Messages())
		}
	}))
	defer srv.Close()

	rec := &notify.Recorder{}
	var logs bytes.Buffer
	c := client.New(srv.URL+api.BasePath, nil, client.WithNotifier(rec))
	s := NewStore(john, WithLogger(zerolog.New(&logs)))
	s.Load(context.Background(), c)

	assert.Empty(t, s.MedicalRecords(records.Criteria{}, records.OrderNone))
	assert.Len(t, s.Appointments(records.Criteria{}, records.OrderNone), 2)
	require.Equal(t, 1, rec.Len())
	assert.Equal(t, "records unavailable", rec.Notices()[0].Body)

	errs := s.LoadErrors()
	require.Len(t, errs, 1)
	var rf *client.RequestFailed
	assert.True(t, errors.As(errs[CollectionMedicalRecords], &rf))
	assert.Contains(t, logs.String(), `"collection":"medical-records"`)
	assert.Contains(t, logs.String(), "load failed")
}

func TestCancelAppointment(t *testing.T) {
	t.Run("success notifies and replaces one record", func(t *testing.T) {
		rec := &notify.Recorder{}
		remote := &fakeRemote{}
		s := loaded(t, john, WithRemote(remote), WithNotifier(rec))
		before := s.Appointments(records.Criteria{}, records.OrderNone)

		require.NoError(t, s.CancelAppointment(context.Background(), "a1"))

		after := s.Appointments(records.Criteria{}, records.OrderNone)
		assert.Equal(t, models.StatusCancelled, after[0].Status)
		assert.NotSame(t, before[0], after[0])
		assert.Same(t, before[1], after[1])
		assert.Equal(t, models.StatusScheduled, before[0].Status, "original untouched")
		assert.Equal(t, []string{"cancel:a1"}, remote.calls)
		require.Equal(t, 1, rec.Len())
		assert.Equal(t, "Your appointment on 2023-09-30 has been cancelled.", rec.Notices()[0].Body)
	})

	t.Run("cancelled twice is an invalid transition", func(t *testing.T) {
		s := loaded(t, john)
		require.NoError(t, s.CancelAppointment(context.Background(), "a1"))
		assert.ErrorIs(t, s.CancelAppointment(context.Background(), "a1"), records.ErrInvalidTransition)
	})

	t.Run("out of scope is not found", func(t *testing.T) {
		remote := &fakeRemote{}
		s := loaded(t, john, WithRemote(remote))
		assert.ErrorIs(t, s.CancelAppointment(context.Background(), "a2"), records.ErrNotFound)
		assert.Empty(t, remote.calls)
	})

	t.Run("revert restores the record", func(t *testing.T) {
		rec := &notify.Recorder{}
		s := loaded(t, john, WithRemote(&fakeRemote{err: errRemote}), WithNotifier(rec))
		before, _ := s.Appointment("a1")

		err := s.CancelAppointment(context.Background(), "a1")
		assert.ErrorIs(t, err, errRemote)

		after, _ := s.Appointment("a1")
		assert.Same(t, before, after)
		assert.Zero(t, rec.Len())
	})

	t.Run("keep leaves the optimistic change", func(t *testing.T) {
		s := loaded(t, john, WithRemote(&fakeRemote{err: errRemote}), WithPolicy(Keep))
		assert.ErrorIs(t, s.CancelAppointment(context.Background(), "a1"), errRemote)

		after, _ := s.Appointment("a1")
		assert.Equal(t, models.StatusCancelled, after.Status)
	})
}

func TestViewMessage(t *testing.T) {
	t.Run("recipient marks unread as read", func(t *testing.T) {
		remote := &fakeRemote{}
		s := loaded(t, john, WithRemote(remote))

		m, err := s.ViewMessage(context.Background(), "m3")
		require.NoError(t, err)
		assert.True(t, m.Read)
		assert.Equal(t, []string{"read:m3"}, remote.calls)
		assert.Empty(t, s.Dashboard(time.Now()).Unread)
	})

	t.Run("already read is a no-op", func(t *testing.T) {
		remote := &fakeRemote{}
		s := loaded(t, john, WithRemote(remote))
		before, _ := s.Message("m1")

		m, err := s.ViewMessage(context.Background(), "m1")
		require.NoError(t, err)
		assert.Same(t, before, m)
		assert.Empty(t, remote.calls)
	})

	t.Run("sender does not mark read", func(t *testing.T) {
		s := loaded(t, records.ProviderViewer{ID: "dr2", Name: "Dr. Raj Patel"})
		m, err := s.ViewMessage(context.Background(), "m3")
		require.NoError(t, err)
		assert.False(t, m.Read)
	})

	t.Run("revert on failure", func(t *testing.T) {
		s := loaded(t, john, WithRemote(&fakeRemote{err: errRemote}))
		m, err := s.ViewMessage(context.Background(), "m3")
		assert.ErrorIs(t, err, errRemote)
		assert.False(t, m.Read)

		stored, _ := s.Message("m3")
		assert.False(t, stored.Read)
	})
}

func TestSendMessage(t *testing.T) {
	now := time.Date(2023, 9, 25, 8, 0, 0, 0, time.UTC)
	draft := records.Draft{RecipientID: "dr1", RecipientName: "Dr. Emily Johnson", Subject: "Refill", Content: "Running low."}

	t.Run("local only", func(t *testing.T) {
		rec := &notify.Recorder{}
		s := loaded(t, john, WithNotifier(rec), WithClock(func() time.Time { return now }))

		m, err := s.SendMessage(context.Background(), draft)
		require.NoError(t, err)
		assert.Equal(t, "p1", m.SenderID)
		assert.Equal(t, now, m.Timestamp)
		assert.False(t, m.Read)

		msgs := s.Messages(records.Criteria{}, records.OrderNone)
		assert.Same(t, m, msgs[0])
		assert.Len(t, msgs, 4)
		require.Equal(t, 1, rec.Len())
		assert.Equal(t, "Message Sent", rec.Notices()[0].Title)
	})

	t.Run("server copy replaces the local one", func(t *testing.T) {
		s := loaded(t, john, WithRemote(&fakeRemote{}))
		m, err := s.SendMessage(context.Background(), draft)
		require.NoError(t, err)
		assert.Equal(t, "srv-1", m.ID)

		_, err = s.Message("srv-1")
		assert.NoError(t, err)
	})

	t.Run("invalid draft changes nothing", func(t *testing.T) {
		s := loaded(t, john)
		_, err := s.SendMessage(context.Background(), records.Draft{RecipientID: "dr1"})
		assert.ErrorIs(t, err, records.ErrValidation)
		assert.Len(t, s.Messages(records.Criteria{}, records.OrderNone), 3)
	})

	t.Run("revert removes the message", func(t *testing.T) {
		s := loaded(t, john, WithRemote(&fakeRemote{err: errRemote}))
		_, err := s.SendMessage(context.Background(), draft)
		assert.ErrorIs(t, err, errRemote)
		assert.Len(t, s.Messages(records.Criteria{}, records.OrderNone), 3)
	})

	t.Run("keep leaves the message", func(t *testing.T) {
		s := loaded(t, john, WithRemote(&fakeRemote{err: errRemote}), WithPolicy(Keep))
		_, err := s.SendMessage(context.Background(), draft)
		assert.ErrorIs(t, err, errRemote)
		assert.Len(t, s.Messages(records.Criteria{}, records.OrderNone), 4)
	})
}

func TestReply(t *testing.T) {
	s := loaded(t, john)
	m, err := s.Reply(context.Background(), "m3", "See you then.", false)
	require.NoError(t, err)
	assert.Equal(t, "dr2", m.RecipientID)
	assert.Equal(t, "Re: Upcoming cardiology appointment", m.Subject)
}

func TestRequestRenewal(t *testing.T) {
	rec := &notify.Recorder{}
	remote := &fakeRemote{}
	s := loaded(t, john, WithRemote(remote), WithNotifier(rec))
	before := s.Prescriptions(records.Criteria{}, records.OrderNone)

	n, err := s.RequestRenewal(context.Background(), "rx1")
	require.NoError(t, err)
	assert.Equal(t, "Your renewal request for Lisinopril has been sent to Dr. Emily Johnson.", n.Body)
	assert.Equal(t, []string{"renew:rx1"}, remote.calls)
	assert.Equal(t, 1, rec.Len())
	assert.Equal(t, before, s.Prescriptions(records.Criteria{}, records.OrderNone))

	_, err = loaded(t, emily).RequestRenewal(context.Background(), "rx1")
	assert.ErrorIs(t, err, ErrNotPermitted)
}

func TestRequestReschedule(t *testing.T) {
	rec := &notify.Recorder{}
	s := loaded(t, john, WithNotifier(rec))

	n, err := s.RequestReschedule(context.Background(), "a3")
	require.NoError(t, err)
	assert.Equal(t, "Reschedule Request Initiated", n.Title)
	assert.Equal(t, 1, rec.Len())

	require.NoError(t, s.CancelAppointment(context.Background(), "a3"))
	_, err = s.RequestReschedule(context.Background(), "a3")
	assert.ErrorIs(t, err, records.ErrInvalidTransition)
}

func TestDashboard(t *testing.T) {
	s := loaded(t, john)
	d := s.Dashboard(time.Date(2023, 12, 10, 12, 0, 0, 0, time.UTC))

	assert.Equal(t, []string{"a1", "a3"}, ids(d.Upcoming, appointmentID))
	assert.Len(t, d.ActivePrescriptions, 1)
	assert.Len(t, d.Expiring, 1)
	assert.Len(t, d.Unread, 1)

	pd := loaded(t, emily).Dashboard(time.Now())
	assert.Nil(t, pd.ActivePrescriptions)
}
