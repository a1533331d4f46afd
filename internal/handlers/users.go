package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"health-portal/internal/api"
	"health-portal/internal/models"
	"health-portal/internal/utils"
)

// UserHandler handles profile, directory and account management requests.
type UserHandler struct {
	DB *gorm.DB
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{DB: db}
}

// GetProfile returns the authenticated user.
func (h *UserHandler) GetProfile(c *gin.Context) {
	a, ok := currentActor(c)
	if !ok {
		return
	}
	var user models.User
	if err := h.DB.First(&user, "id = ?", a.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// The token outlived its account.
			utils.Unauthorized(c, "User profile not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}
	utils.Success(c, user.Sanitize())
}

// UpdateProfile edits the authenticated user's contact details.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	a, ok := currentActor(c)
	if !ok {
		return
	}
	var req api.ProfileUpdate
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var user models.User
	if !findByID(c, h.DB, &user, a.ID, "User") {
		return
	}
	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.Address != nil {
		user.Address = *req.Address
	}
	if err := h.DB.Save(&user).Error; err != nil {
		utils.InternalServerError(c, "Failed to update profile: "+err.Error())
		return
	}
	utils.Success(c, user.Sanitize())
}

// GetProviders lists providers. Any signed-in user may see the directory.
func (h *UserHandler) GetProviders(c *gin.Context) {
	h.listRole(c, models.RoleProvider)
}

// GetPatients lists patients. Providers and admins only.
func (h *UserHandler) GetPatients(c *gin.Context) {
	h.listRole(c, models.RolePatient)
}

func (h *UserHandler) listRole(c *gin.Context, role models.Role) {
	var users []models.User
	if err := h.DB.Where("role = ?", role).Order("name asc").Find(&users).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch users: "+err.Error())
		return
	}
	utils.Success(c, sanitizeAll(users))
}

// Admin account management.

// CreateUser creates an account of any role.
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req api.UserRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	var existing models.User
	if err := h.DB.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		utils.Conflict(c, "User with this email already exists")
		return
	}

	user := models.User{
		Email:         req.Email,
		Name:          req.Name,
		Role:          req.Role,
		Specialty:     req.Specialty,
		LicenseNumber: req.LicenseNumber,
		Department:    req.Department,
	}
	if err := user.SetPassword(req.Password); err != nil {
		utils.InternalServerError(c, "Failed to hash password: "+err.Error())
		return
	}
	if err := h.DB.Create(&user).Error; err != nil {
		utils.InternalServerError(c, "Failed to create user: "+err.Error())
		return
	}
	utils.Created(c, user.Sanitize())
}

// GetUsers lists every account.
func (h *UserHandler) GetUsers(c *gin.Context) {
	var users []models.User
	if err := h.DB.Order("name asc").Find(&users).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch users: "+err.Error())
		return
	}
	utils.Success(c, sanitizeAll(users))
}

// GetUserByID returns one account.
func (h *UserHandler) GetUserByID(c *gin.Context) {
	var user models.User
	if !findByID(c, h.DB, &user, c.Param("id"), "User") {
		return
	}
	utils.Success(c, user.Sanitize())
}

// UpdateUser edits an account.
func (h *UserHandler) UpdateUser(c *gin.Context) {
	var req api.UserUpdate
	if !utils.BindAndValidate(c, &req) {
		return
	}
	var user models.User
	if !findByID(c, h.DB, &user, c.Param("id"), "User") {
		return
	}

	if req.Email != nil && *req.Email != user.Email {
		var existing models.User
		if err := h.DB.Where("email = ? AND id != ?", *req.Email, user.ID).First(&existing).Error; err == nil {
			utils.Conflict(c, "Email already in use by another account")
			return
		}
		user.Email = *req.Email
	}
	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Role != nil {
		user.Role = *req.Role
	}
	if req.Specialty != nil {
		user.Specialty = *req.Specialty
	}
	if req.Department != nil {
		user.Department = *req.Department
	}
	if err := h.DB.Save(&user).Error; err != nil {
		utils.InternalServerError(c, "Failed to update user: "+err.Error())
		return
	}
	utils.Success(c, user.Sanitize())
}

// DeleteUser removes an account and its refresh tokens.
func (h *UserHandler) DeleteUser(c *gin.Context) {
	a, ok := currentActor(c)
	if !ok {
		return
	}
	id := c.Param("id")
	if id == a.ID {
		utils.BadRequest(c, "Administrators cannot delete their own account")
		return
	}
	var user models.User
	if !findByID(c, h.DB, &user, id, "User") {
		return
	}
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&models.RefreshToken{}).Error; err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
	if err != nil {
		utils.InternalServerError(c, "Failed to delete user: "+err.Error())
		return
	}
	c.Status(http.StatusNoContent)
}
