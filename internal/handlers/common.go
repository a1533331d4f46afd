package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"health-portal/internal/middleware"
	"health-portal/internal/models"
	"health-portal/internal/utils"
)

// actor is the authenticated caller.
type actor struct {
	ID   string
	Role models.Role
}

func (a actor) isAdmin() bool { return a.Role == models.RoleAdmin }

// involved reports whether the caller is one side of a patient/provider record.
func (a actor) involved(patientID, providerID string) bool {
	switch a.Role {
	case models.RoleAdmin:
		return true
	case models.RolePatient:
		return a.ID == patientID
	case models.RoleProvider:
		return a.ID == providerID
	}
	return false
}

// currentActor reads the caller from the context, answering 401 when absent.
func currentActor(c *gin.Context) (actor, bool) {
	id, ok := middleware.GetUserIDFromContext(c)
	if !ok || id == "" {
		utils.Unauthorized(c, "User not authenticated")
		return actor{}, false
	}
	role, _ := middleware.GetUserRoleFromContext(c)
	return actor{ID: id, Role: role}, true
}

// scoped narrows q to the caller's rows. Admins see everything.
func scoped(q *gorm.DB, a actor) *gorm.DB {
	switch a.Role {
	case models.RoleAdmin:
		return q
	case models.RolePatient:
		return q.Where("patient_id = ?", a.ID)
	case models.RoleProvider:
		return q.Where("provider_id = ?", a.ID)
	}
	return q.Where("1 = 0")
}

// findByID loads one row into dst, answering 404 or 500 itself.
func findByID(c *gin.Context, db *gorm.DB, dst any, id, what string) bool {
	if err := db.First(dst, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, what+" not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return false
	}
	return true
}

// findUserWithRole loads a user that must have role, answering 404 when it does not.
func findUserWithRole(c *gin.Context, db *gorm.DB, id string, role models.Role) (*models.User, bool) {
	var u models.User
	if err := db.Where("id = ? AND role = ?", id, role).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, string(role)+" not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return nil, false
	}
	return &u, true
}

func sanitizeAll(users []models.User) []models.UserSanitized {
	out := make([]models.UserSanitized, len(users))
	for i := range users {
		out[i] = users[i].Sanitize()
	}
	return out
}
