package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"health-portal/internal/api"
	"health-portal/internal/models"
	"health-portal/internal/utils"
)

// PrescriptionHandler handles prescription related requests.
type PrescriptionHandler struct {
	DB *gorm.DB
}

// NewPrescriptionHandler creates a new PrescriptionHandler.
func NewPrescriptionHandler(db *gorm.DB) *PrescriptionHandler {
	return &PrescriptionHandler{DB: db}
}

// CreatePrescription prescribes for a patient. Providers only.
func (h *PrescriptionHandler) CreatePrescription(c *gin.Context) {
	a, ok := currentActor(c)
	if !ok {
		return
	}
	var req api.PrescriptionRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	if !endsAfterStart(c, req.StartDate, req.EndDate) {
		return
	}
	if _, ok := findUserWithRole(c, h.DB, req.PatientID, models.RolePatient); !ok {
		return
	}
	var provider models.User
	if !findByID(c, h.DB, &provider, a.ID, "Provider") {
		return
	}

	p := models.Prescription{
		PatientID:    req.PatientID,
		ProviderID:   provider.ID,
		ProviderName: provider.Name,
		Medication:   req.Medication,
		Dosage:       req.Dosage,
		Frequency:    req.Frequency,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		Instructions: req.Instructions,
		Refills:      uint(req.Refills),
		Status:       models.PrescriptionActive,
	}
	if err := h.DB.Create(&p).Error; err != nil {
		utils.InternalServerError(c, "Failed to create prescription: "+err.Error())
		return
	}
	utils.Created(c, p)
}

func endsAfterStart(c *gin.Context, start, end string) bool {
	s, err1 := time.Parse(models.DateLayout, start)
	e, err2 := time.Parse(models.DateLayout, end)
	if err1 != nil || err2 != nil || e.Before(s) {
		utils.BadRequest(c, "Validation failed: endDate must not be before startDate")
		return false
	}
	return true
}

// GetPrescriptions lists the caller's prescriptions.
func (h *PrescriptionHandler) GetPrescriptions(c *gin.Context) {
	a, ok := currentActor(c)
	if !ok {
		return
	}
	q := scoped(h.DB.Model(&models.Prescription{}), a).Order("end_date asc")
	if status := c.Query("status"); status != "" && status != "all" {
		q = q.Where("status = ?", status)
	}
	out := []models.Prescription{}
	if err := q.Find(&out).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch prescriptions: "+err.Error())
		return
	}
	utils.Success(c, out)
}

func (h *PrescriptionHandler) load(c *gin.Context, a actor) (*models.Prescription, bool) {
	var p models.Prescription
	if !findByID(c, h.DB, &p, c.Param("id"), "Prescription") {
		return nil, false
	}
	if !a.involved(p.PatientID, p.ProviderID) {
		utils.NotFound(c, "Prescription not found")
		return nil, false
	}
	return &p, true
}

// GetPrescriptionByID returns one prescription the caller is part of.
func (h *PrescriptionHandler) GetPrescriptionByID(c *gin.Context) {
	a, ok := currentActor(c)
	if !ok {
		return
	}
	p, ok := h.load(c, a)
	if !ok {
		return
	}
	utils.Success(c, p)
}

// UpdatePrescription edits a prescription. Only the prescriber or an admin may.
func (h *PrescriptionHandler) UpdatePrescription(c *gin.Context) {
	a, ok := currentActor(c)
	if !ok {
		return
	}
	var req api.PrescriptionUpdate
	if !utils.BindAndValidate(c, &req) {
		return
	}
	p, ok := h.load(c, a)
	if !ok {
		return
	}
	if !a.isAdmin() && p.ProviderID != a.ID {
		utils.Forbidden(c, "Only the prescribing provider can edit this prescription")
		return
	}
	if p.Status != models.PrescriptionActive {
		utils.Conflict(c, "Prescription is "+string(p.Status)+" and can no longer be changed")
		return
	}

	if req.Dosage != nil {
		p.Dosage = *req.Dosage
	}
	if req.Frequency != nil {
		p.Frequency = *req.Frequency
	}
	if req.EndDate != nil {
		if !endsAfterStart(c, p.StartDate, *req.EndDate) {
			return
		}
		p.EndDate = *req.EndDate
	}
	if req.Instructions != nil {
		p.Instructions = *req.Instructions
	}
	if req.Refills != nil {
		p.Refills = uint(*req.Refills)
	}
	if req.Status != nil {
		p.Status = *req.Status
	}
	if err := h.DB.Save(p).Error; err != nil {
		utils.InternalServerError(c, "Failed to update prescription: "+err.Error())
		return
	}
	utils.Success(c, p)
}

// RenewPrescription acknowledges a patient's renewal request for an active
// prescription. Nothing is changed.
func (h *PrescriptionHandler) RenewPrescription(c *gin.Context) {
	a, ok := currentActor(c)
	if !ok {
		return
	}
	p, ok := h.load(c, a)
	if !ok {
		return
	}
	if a.Role != models.RolePatient {
		utils.Forbidden(c, "Only the patient can request a renewal")
		return
	}
	if p.Status != models.PrescriptionActive {
		utils.Conflict(c, "Only active prescriptions can be renewed")
		return
	}
	utils.Accepted(c, api.RenewalResponse{
		Message:      "Your renewal request for " + p.Medication + " has been sent to " + p.ProviderName + ".",
		Prescription: p,
	})
}
