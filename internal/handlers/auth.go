package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"health-portal/internal/api"
	"health-portal/internal/config"
	"health-portal/internal/models"
	"health-portal/internal/utils"
)

const refreshCookie = "refresh_token"

// AuthHandler handles authentication-related requests.
type AuthHandler struct {
	DB  *gorm.DB
	Cfg *config.Config
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(db *gorm.DB, cfg *config.Config) *AuthHandler {
	return &AuthHandler{DB: db, Cfg: cfg}
}

// Register creates a patient or provider account and signs it in.
func (h *AuthHandler) Register(c *gin.Context) {
	var req api.RegisterRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var existing models.User
	if err := h.DB.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		utils.Conflict(c, "User with this email already exists")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}

	user := models.User{Email: req.Email, Name: req.Name, Role: req.Role}
	if err := user.SetPassword(req.Password); err != nil {
		utils.InternalServerError(c, "Failed to hash password: "+err.Error())
		return
	}
	if err := h.DB.Create(&user).Error; err != nil {
		utils.InternalServerError(c, "Failed to create user: "+err.Error())
		return
	}

	resp, ok := h.issue(c, &user)
	if !ok {
		return
	}
	utils.Created(c, resp)
}

// Login handles user login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req api.LoginRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var user models.User
	if err := h.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Unauthorized(c, "Invalid email or password")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}
	if !user.CheckPassword(req.Password) {
		utils.Unauthorized(c, "Invalid email or password")
		return
	}

	resp, ok := h.issue(c, &user)
	if !ok {
		return
	}
	utils.Success(c, resp)
}

// mint signs a token pair for user and stores the refresh token through db.
func (h *AuthHandler) mint(db *gorm.DB, user *models.User) (api.AuthResponse, error) {
	pair, err := utils.GenerateTokens(user, h.Cfg)
	if err != nil {
		return api.AuthResponse{}, fmt.Errorf("generate tokens: %w", err)
	}
	stored := models.RefreshToken{
		UserID:    user.ID,
		Token:     pair.Refresh,
		ExpiresAt: pair.RefreshExpiresAt,
	}
	if err := db.Create(&stored).Error; err != nil {
		return api.AuthResponse{}, fmt.Errorf("store refresh token: %w", err)
	}
	return api.AuthResponse{User: user.Sanitize(), Token: pair.Access, RefreshToken: pair.Refresh}, nil
}

// issue mints a token pair for user and sets the refresh cookie.
func (h *AuthHandler) issue(c *gin.Context, user *models.User) (api.AuthResponse, bool) {
	resp, err := h.mint(h.DB, user)
	if err != nil {
		utils.InternalServerError(c, "Failed to issue tokens: "+err.Error())
		return api.AuthResponse{}, false
	}
	h.setRefreshCookie(c, resp.RefreshToken, h.Cfg.JWTRefreshExpirationHours*60*60)
	return resp, true
}

func (h *AuthHandler) setRefreshCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(refreshCookie, value, maxAge, "/", "", !h.Cfg.IsDevelopment(), true)
}

// RefreshToken rotates a refresh token: the presented one is revoked and a new pair issued.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	token, err := c.Cookie(refreshCookie)
	if err != nil || token == "" {
		var req api.RefreshRequest
		if !utils.BindAndValidate(c, &req) {
			return
		}
		token = req.RefreshToken
	}

	claims, err := utils.ValidateToken(token, h.Cfg.JWTRefreshSecret)
	if err != nil {
		utils.Unauthorized(c, "Invalid refresh token: "+err.Error())
		return
	}

	now := time.Now()
	var stored models.RefreshToken
	err = h.DB.Scopes(models.LiveRefreshTokens(claims.UserID, now)).Where("token = ?", token).First(&stored).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Unauthorized(c, "Refresh token not found, expired, or revoked")
		} else {
			utils.InternalServerError(c, "Database error checking refresh token: "+err.Error())
		}
		return
	}

	var user models.User
	if err := h.DB.First(&user, "id = ?", claims.UserID).Error; err != nil {
		utils.Unauthorized(c, "User for refresh token no longer exists")
		return
	}

	// Revoking the old token and storing the new one commit together.
	var resp api.AuthResponse
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := models.RevokeRefreshTokens(tx.Where("id = ?", stored.ID), now); err != nil {
			return fmt.Errorf("revoke refresh token: %w", err)
		}
		var err error
		resp, err = h.mint(tx, &user)
		return err
	})
	if err != nil {
		utils.InternalServerError(c, "Failed to rotate refresh token: "+err.Error())
		return
	}
	h.setRefreshCookie(c, resp.RefreshToken, h.Cfg.JWTRefreshExpirationHours*60*60)
	utils.Success(c, resp)
}

// Logout revokes the named refresh token, or every token of the caller when none is named.
func (h *AuthHandler) Logout(c *gin.Context) {
	a, ok := currentActor(c)
	if !ok {
		return
	}

	var req api.LogoutRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequest(c, "Invalid request payload: "+err.Error())
			return
		}
	}
	if req.RefreshToken == "" {
		req.RefreshToken, _ = c.Cookie(refreshCookie)
	}

	now := time.Now()
	q := h.DB.Scopes(models.LiveRefreshTokens(a.ID, now))
	if req.RefreshToken != "" {
		q = q.Where("token = ?", req.RefreshToken)
	}
	if err := models.RevokeRefreshTokens(q, now); err != nil {
		utils.InternalServerError(c, "Failed to revoke refresh token: "+err.Error())
		return
	}

	h.setRefreshCookie(c, "", -1)
	utils.Success(c, gin.H{"message": "Logout successful"})
}
