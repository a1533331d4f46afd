package cli

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"health-portal/internal/api"
	"health-portal/internal/config"
	"health-portal/internal/fixtures"
	"health-portal/internal/middleware"
	"health-portal/internal/models"
	"health-portal/internal/portal"
	"health-portal/internal/records"
	"health-portal/internal/session"
)

var testNow = time.Date(2023, 12, 10, 9, 0, 0, 0, time.UTC)

type harness struct {
	sessionFile string
	apiURL      string
	demo        bool
}

func newHarness(t *testing.T, demo bool) *harness {
	t.Helper()
	return &harness{sessionFile: filepath.Join(t.TempDir(), "session.json"), demo: demo}
}

func (h *harness) run(args ...string) (string, string, error) {
	cmd := newRootCmd(&app{now: func() time.Time { return testNow }})
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)

	base := []string{"--session-file", h.sessionFile}
	if h.demo {
		base = append(base, "--demo")
	}
	if h.apiURL != "" {
		base = append(base, "--api-url", h.apiURL)
	}
	cmd.SetArgs(append(base, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func (h *harness) login(t *testing.T, email string) {
	t.Helper()
	out, _, err := h.run("login", "--email", email, "--password", fixtures.DemoPassword)
	require.NoError(t, err)
	require.Contains(t, out, "Signed in as")
}

func TestDemoLoginRejectsBadPassword(t *testing.T) {
	h := newHarness(t, true)
	_, _, err := h.run("login", "--email", "john.doe@example.com", "--password", "nope")
	assert.ErrorIs(t, err, errBadCredentials)
	assert.NoFileExists(t, h.sessionFile)

	_, _, err = h.run("login", "--email", "nobody@example.com", "--password", fixtures.DemoPassword)
	assert.ErrorIs(t, err, errBadCredentials)
}

func TestDemoLoginRequiresFlags(t *testing.T) {
	h := newHarness(t, true)
	_, _, err := h.run("login", "--email", "john.doe@example.com")
	assert.ErrorContains(t, err, "password")
}

func TestSignedOut(t *testing.T) {
	h := newHarness(t, true)
	_, _, err := h.run("appointments", "list")
	assert.ErrorIs(t, err, errSignedOut)
	_, _, err = h.run("whoami")
	assert.ErrorIs(t, err, errSignedOut)
}

func TestDemoPatient(t *testing.T) {
	h := newHarness(t, true)

	out, _, err := h.run("login", "--email", "john.doe@example.com", "--password", fixtures.DemoPassword)
	require.NoError(t, err)
	assert.Contains(t, out, "Signed in as John Doe (patient)")
	assert.FileExists(t, h.sessionFile)

	t.Run("whoami", func(t *testing.T) {
		out, _, err := h.run("whoami")
		require.NoError(t, err)
		assert.Contains(t, out, "john.doe@example.com")
	})

	t.Run("appointments are scoped", func(t *testing.T) {
		out, _, err := h.run("appointments", "list")
		require.NoError(t, err)
		assert.Contains(t, out, "a1")
		assert.Contains(t, out, "a3")
		assert.NotContains(t, out, "a2")
		assert.Contains(t, out, "Dr. Emily Johnson")
	})

	t.Run("appointment search", func(t *testing.T) {
		out, _, err := h.run("appointments", "list", "--search", "cardio")
		require.NoError(t, err)
		assert.Contains(t, out, "a3")
		assert.NotContains(t, out, "a1")
	})

	t.Run("unknown sort", func(t *testing.T) {
		_, _, err := h.run("appointments", "list", "--sort", "sideways")
		assert.ErrorContains(t, err, "unknown sort order")
	})

	t.Run("cancel", func(t *testing.T) {
		_, notices, err := h.run("appointments", "cancel", "a1")
		require.NoError(t, err)
		assert.Contains(t, notices, "Appointment Cancelled")
	})

	t.Run("cancel out of scope", func(t *testing.T) {
		_, _, err := h.run("appointments", "cancel", "a2")
		assert.ErrorIs(t, err, records.ErrNotFound)
	})

	t.Run("reschedule", func(t *testing.T) {
		_, notices, err := h.run("appointments", "reschedule", "a3")
		require.NoError(t, err)
		assert.Contains(t, notices, "Reschedule Request Initiated")
	})

	t.Run("records", func(t *testing.T) {
		out, _, err := h.run("records", "list")
		require.NoError(t, err)
		assert.Contains(t, out, "mr1")
		assert.NotContains(t, out, "mr3")

		out, _, err = h.run("records", "show", "mr1")
		require.NoError(t, err)
		assert.Contains(t, out, "Annual Physical")

		_, _, err = h.run("records", "show", "mr3")
		assert.ErrorIs(t, err, records.ErrNotFound)
	})

	t.Run("prescriptions", func(t *testing.T) {
		out, _, err := h.run("prescriptions", "list")
		require.NoError(t, err)
		assert.Contains(t, out, "Lisinopril")
		assert.Contains(t, out, "expiring soon")
		assert.NotContains(t, out, "Cetirizine")

		_, notices, err := h.run("prescriptions", "renew", "rx1")
		require.NoError(t, err)
		assert.Contains(t, notices, "Renewal Request Sent")
	})

	t.Run("messages", func(t *testing.T) {
		out, _, err := h.run("messages", "list", "--status", "unread")
		require.NoError(t, err)
		assert.Contains(t, out, "m3")
		assert.NotContains(t, out, "m1")

		out, _, err = h.run("messages", "read", "m3")
		require.NoError(t, err)
		assert.Contains(t, out, "Upcoming cardiology appointment")
		assert.Contains(t, out, "Dr. Raj Patel")
	})

	t.Run("send", func(t *testing.T) {
		out, notices, err := h.run("messages", "send", "--to", "dr1", "--subject", "Refill", "--content", "Could I get a refill?")
		require.NoError(t, err)
		assert.Contains(t, out, "Sent ")
		assert.Contains(t, notices, "Message Sent")

		_, _, err = h.run("messages", "send", "--to", "dr1", "--content", "no subject")
		assert.ErrorIs(t, err, records.ErrValidation)

		out, _, err = h.run("messages", "reply", "m1", "--content", "Thank you")
		require.NoError(t, err)
		assert.Contains(t, out, "Sent ")
	})

	t.Run("dashboard", func(t *testing.T) {
		out, _, err := h.run("dashboard")
		require.NoError(t, err)
		assert.Contains(t, out, "Welcome, John Doe")
		assert.Contains(t, out, "Active prescriptions (1 expiring soon)")
		assert.Contains(t, out, "Unread messages: 1")
	})

	t.Run("api mode refuses a demo session", func(t *testing.T) {
		apiMode := &harness{sessionFile: h.sessionFile}
		_, _, err := apiMode.run("appointments", "list")
		assert.ErrorIs(t, err, errModeMismatch)
	})

	t.Run("logout", func(t *testing.T) {
		out, _, err := h.run("logout")
		require.NoError(t, err)
		assert.Contains(t, out, "Signed out")
		assert.NoFileExists(t, h.sessionFile)

		_, _, err = h.run("dashboard")
		assert.ErrorIs(t, err, errSignedOut)
	})
}

func TestDemoProvider(t *testing.T) {
	h := newHarness(t, true)
	h.login(t, "dr.johnson@healthsystem.com")

	out, _, err := h.run("appointments", "list", "--sort", "name")
	require.NoError(t, err)
	assert.Contains(t, out, "John Doe")
	assert.Contains(t, out, "Sarah Smith")
	assert.NotContains(t, out, "a3")

	_, _, err = h.run("prescriptions", "renew", "rx1")
	assert.ErrorIs(t, err, portal.ErrNotPermitted)

	out, _, err = h.run("dashboard")
	require.NoError(t, err)
	assert.NotContains(t, out, "Active prescriptions")
}

func TestBadReconcilePolicy(t *testing.T) {
	h := newHarness(t, true)
	h.login(t, "john.doe@example.com")
	_, _, err := h.run("--reconcile", "sometimes", "appointments", "list")
	assert.ErrorContains(t, err, "unknown reconcile policy")
}

func testServer(t *testing.T) (*httptest.Server, *config.Config) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := models.Open(sqlite.Open("file:" + uuid.NewString() + "?mode=memory&cache=shared"))
	require.NoError(t, err)
	require.NoError(t, fixtures.Seed(db))

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	srv := httptest.NewServer(newRouter(db, cfg, zerolog.Nop()))
	t.Cleanup(srv.Close)
	return srv, cfg
}

func TestRouter(t *testing.T) {
	srv, cfg := testServer(t)

	res, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.NotEmpty(t, res.Header.Get(middleware.RequestIDHeader))

	req, err := http.NewRequest(http.MethodOptions, srv.URL+api.BasePath+api.Appointments, nil)
	require.NoError(t, err)
	req.Header.Set("Origin", cfg.Origin)
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	res, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, cfg.Origin, res.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", res.Header.Get("Access-Control-Allow-Credentials"))
}

func TestAgainstServer(t *testing.T) {
	srv, _ := testServer(t)
	h := newHarness(t, false)
	h.apiURL = srv.URL + api.BasePath

	_, notices, err := h.run("login", "--email", "john.doe@example.com", "--password", "wrong")
	assert.ErrorIs(t, err, errBadCredentials)
	assert.NotEmpty(t, notices)

	h.login(t, "john.doe@example.com")

	out, _, err := h.run("whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "John Doe")

	out, _, err = h.run("appointments", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "a1")
	assert.NotContains(t, out, "a2")

	_, notices, err = h.run("appointments", "cancel", "a1")
	require.NoError(t, err)
	assert.Contains(t, notices, "Appointment Cancelled")

	out, _, err = h.run("appointments", "list", "--status", "cancelled")
	require.NoError(t, err)
	assert.Contains(t, out, "a1")

	_, _, err = h.run("appointments", "cancel", "a1")
	assert.ErrorIs(t, err, records.ErrInvalidTransition)

	_, _, err = h.run("messages", "read", "m3")
	require.NoError(t, err)
	out, _, err = h.run("messages", "list", "--status", "unread")
	require.NoError(t, err)
	assert.Contains(t, out, "No messages found.")

	out, _, err = h.run("messages", "send", "--to", "dr2", "--subject", "Parking", "--content", "Where do I park?")
	require.NoError(t, err)
	assert.Contains(t, out, "Sent ")
	out, _, err = h.run("messages", "list", "--search", "parking")
	require.NoError(t, err)
	assert.Contains(t, out, "to Dr. Raj Patel")

	_, notices, err = h.run("prescriptions", "renew", "rx1")
	require.NoError(t, err)
	assert.Contains(t, notices, "Renewal Request Sent")

	out, _, err = h.run("logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed out")
	_, err = os.Stat(h.sessionFile)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestProfileUnavailable(t *testing.T) {
	status := http.StatusInternalServerError
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"message":"db down"}`))
	}))
	t.Cleanup(srv.Close)

	h := newHarness(t, false)
	h.apiURL = srv.URL + api.BasePath
	s := &session.Session{}
	s.Begin(&models.User{Name: "John Doe", Role: models.RolePatient}, "tok")
	require.NoError(t, session.FileStore{Path: h.sessionFile}.Save(s))

	_, notices, err := h.run("whoami")
	assert.ErrorIs(t, err, errNoProfile)
	assert.Contains(t, notices, "db down")
	assert.FileExists(t, h.sessionFile)

	_, _, err = h.run("appointments", "list")
	assert.ErrorIs(t, err, errNoProfile)
	assert.FileExists(t, h.sessionFile)

	status = http.StatusUnauthorized
	_, _, err = h.run("whoami")
	assert.ErrorIs(t, err, errSignedOut)
	assert.NoFileExists(t, h.sessionFile)
}
