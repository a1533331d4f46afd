package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"health-portal/internal/api"
	"health-portal/internal/models"
	"health-portal/internal/notify"
	"health-portal/internal/session"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, *notify.Recorder) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	rec := &notify.Recorder{}
	return New(srv.URL+api.BasePath, &session.Session{}, WithNotifier(rec)), rec
}

func TestDo_AttachesBearerToken(t *testing.T) {
	var auth, contentType string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		contentType = r.Header.Get("Content-Type")
		writeJSON(w, http.StatusOK, []*models.Appointment{})
	})

	_, err := c.ListAppointments(context.Background())
	require.NoError(t, err)
	assert.Empty(t, auth, "no token, no header")
	assert.Equal(t, "application/json", contentType)

	c.Session().Begin(&models.User{Name: "John Doe"}, "tok-123")
	_, err = c.ListAppointments(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", auth)
}

func TestDo_NonSuccessBecomesRequestFailed(t *testing.T) {
	var calls atomic.Int32
	c, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusInternalServerError, api.ErrorResponse{Status: 500, Message: "database unavailable"})
	})

	_, err := c.ListMedicalRecords(context.Background())
	require.Error(t, err)

	var rf *RequestFailed
	require.True(t, errors.As(err, &rf))
	assert.Equal(t, http.MethodGet, rf.Method)
	assert.Equal(t, api.MedicalRecords, rf.Path)
	assert.Equal(t, http.StatusInternalServerError, rf.Status)
	assert.Equal(t, "database unavailable", rf.Message)

	assert.Equal(t, int32(1), calls.Load(), "no retry")
	require.Equal(t, 1, rec.Len())
	assert.Equal(t, notify.LevelError, rec.Notices()[0].Level)
	assert.Equal(t, "database unavailable", rec.Notices()[0].Body)
}

func TestDo_MessageFallbacks(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"error field", `{"status":400,"error":"bad input"}`, "bad input"},
		{"not json", `oops`, "Bad Request"},
		{"empty", ``, "Bad Request"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := c.ListMessages(context.Background())
			var rf *RequestFailed
			require.True(t, errors.As(err, &rf))
			assert.Equal(t, tt.want, rf.Message)
		})
	}
}

func TestDo_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	rec := &notify.Recorder{}
	c := New(url, nil, WithNotifier(rec))
	_, err := c.ListPrescriptions(context.Background())

	var rf *RequestFailed
	require.True(t, errors.As(err, &rf))
	assert.Zero(t, rf.Status)
	assert.NotNil(t, rf.Err)
	assert.Equal(t, 1, rec.Len())
}

func TestDo_UndecodableBodyFails(t *testing.T) {
	c, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"id":`))
	})
	_, err := c.GetMessage(context.Background(), "m1")

	var rf *RequestFailed
	require.True(t, errors.As(err, &rf))
	assert.Error(t, rf.Err)
	assert.Equal(t, 1, rec.Len())
}

func TestLogin_BeginsSession(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, api.BasePath+api.AuthLogin, r.URL.Path)
		var req api.LoginRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "john.doe@example.com", req.Email)
		writeJSON(w, http.StatusOK, api.AuthResponse{
			User:  models.UserSanitized{ID: "p1", Name: "John Doe", Role: models.RolePatient},
			Token: "tok",
		})
	})

	user, err := c.Login(context.Background(), "john.doe@example.com", "password")
	require.NoError(t, err)
	assert.Equal(t, "p1", user.ID)
	assert.Equal(t, "tok", c.Session().Token())
	assert.Equal(t, user, c.Session().User())
}

func TestLogin_FailureLeavesSessionEmpty(t *testing.T) {
	c, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, api.ErrorResponse{Status: 401, Message: "Invalid credentials"})
	})

	_, err := c.Login(context.Background(), "x@example.com", "nope")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAuthRequired))
	assert.False(t, c.Session().Active())
	assert.Equal(t, 1, rec.Len())
}

func TestLogout_EndsSessionEvenOnFailure(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, api.ErrorResponse{Message: "boom"})
	})
	c.Session().Begin(&models.User{}, "tok")

	err := c.Logout(context.Background())
	require.Error(t, err)
	assert.False(t, c.Session().Active())
	assert.Nil(t, c.Session().User())
}

func TestCurrentUser(t *testing.T) {
	t.Run("rejected session resolves to no user", func(t *testing.T) {
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusUnauthorized, api.ErrorResponse{Message: "Invalid token"})
		})
		c.Session().Begin(&models.User{}, "stale")

		user, err := c.CurrentUser(context.Background())
		assert.NoError(t, err)
		assert.Nil(t, user)
		assert.False(t, c.Session().Active())
	})

	t.Run("server failure resolves to no user and keeps the token", func(t *testing.T) {
		c, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusInternalServerError, api.ErrorResponse{Message: "db down"})
		})
		c.Session().Begin(&models.User{}, "tok")

		user, err := c.CurrentUser(context.Background())
		assert.NoError(t, err)
		assert.Nil(t, user)
		assert.Equal(t, "tok", c.Session().Token())
		assert.Equal(t, 1, rec.Len())
	})

	t.Run("network failure resolves to no user", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		rec := &notify.Recorder{}
		c := New(url, nil, WithNotifier(rec))
		c.Session().Begin(&models.User{}, "tok")

		user, err := c.CurrentUser(context.Background())
		assert.NoError(t, err)
		assert.Nil(t, user)
		assert.True(t, c.Session().Active())
		assert.Equal(t, 1, rec.Len())
	})

	t.Run("profile replaces session user", func(t *testing.T) {
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, models.UserSanitized{ID: "dr1", Name: "Dr. Emily Johnson", Role: models.RoleProvider})
		})
		c.Session().Begin(nil, "tok")

		user, err := c.CurrentUser(context.Background())
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, models.RoleProvider, user.Role)
		assert.Equal(t, user, c.Session().User())
		assert.Equal(t, "tok", c.Session().Token())
	})
}

func TestMarkMessageRead_Path(t *testing.T) {
	var method, path string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		writeJSON(w, http.StatusOK, models.Message{BaseModel: models.BaseModel{ID: "m3"}, Read: true})
	})

	m, err := c.MarkMessageRead(context.Background(), "m3")
	require.NoError(t, err)
	assert.True(t, m.Read)
	assert.Equal(t, http.MethodPost, method)
	assert.Equal(t, "/api/messages/m3/read", path)
}
