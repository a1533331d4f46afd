package utils

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"health-portal/internal/api"
	"health-portal/internal/config"
	"health-portal/internal/models"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:                 "access-secret",
		JWTRefreshSecret:          "refresh-secret",
		JWTExpirationMinutes:      15,
		JWTRefreshExpirationHours: 1,
	}
}

func TestGenerateAndValidateTokens(t *testing.T) {
	cfg := testConfig()
	user := &models.User{BaseModel: models.BaseModel{ID: "p1"}, Role: models.RolePatient}

	pair, err := GenerateTokens(user, cfg)
	require.NoError(t, err)

	claims, err := ValidateToken(pair.Access, cfg.JWTSecret)
	require.NoError(t, err)
	assert.Equal(t, "p1", claims.UserID)
	assert.Equal(t, models.RolePatient, claims.Role)

	_, err = ValidateToken(pair.Access, cfg.JWTRefreshSecret)
	assert.Error(t, err, "access token must not pass as refresh token")

	again, err := GenerateTokens(user, cfg)
	require.NoError(t, err)
	assert.NotEqual(t, pair.Refresh, again.Refresh)
}

func TestBindAndValidate(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		body   string
		ok     bool
		substr string
	}{
		{"valid", `{"email":"a@b.co","password":"pw"}`, true, ""},
		{"missing field", `{"email":"a@b.co"}`, false, "password is required"},
		{"bad email", `{"email":"nope","password":"pw"}`, false, "email must be a valid email"},
		{"malformed", `{`, false, "Invalid request payload"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			c.Request.Header.Set("Content-Type", "application/json")

			var req api.LoginRequest
			assert.Equal(t, tt.ok, BindAndValidate(c, &req))
			if tt.ok {
				return
			}
			assert.Equal(t, http.StatusBadRequest, w.Code)
			var er api.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &er))
			assert.Contains(t, er.Message, tt.substr)
			assert.Equal(t, http.StatusBadRequest, er.Status)
		})
	}
}
