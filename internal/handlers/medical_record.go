package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"health-portal/internal/api"
	"health-portal/internal/models"
	"health-portal/internal/utils"
)

// MedicalRecordHandler handles medical record related requests.
type MedicalRecordHandler struct {
	DB *gorm.DB
}

// NewMedicalRecordHandler creates a new MedicalRecordHandler.
func NewMedicalRecordHandler(db *gorm.DB) *MedicalRecordHandler {
	return &MedicalRecordHandler{DB: db}
}

// visible reports whether a can read r. Confidential records are limited to
// the patient and the provider who wrote them.
func visible(a actor, r *models.MedicalRecord) bool {
	switch a.Role {
	case models.RoleAdmin:
		return true
	case models.RolePatient:
		return r.PatientID == a.ID
	case models.RoleProvider:
		return r.ProviderID == a.ID || !r.Confidential
	}
	return false
}

// CreateMedicalRecord adds a record authored by the calling provider.
func (h *MedicalRecordHandler) CreateMedicalRecord(c *gin.Context) {
	a, ok := currentActor(c)
	if !ok {
		return
	}
	var req api.MedicalRecordRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	if _, ok := findUserWithRole(c, h.DB, req.PatientID, models.RolePatient); !ok {
		return
	}
	var provider models.User
	if !findByID(c, h.DB, &provider, a.ID, "Provider") {
		return
	}

	record := models.MedicalRecord{
		PatientID:    req.PatientID,
		ProviderID:   provider.ID,
		ProviderName: provider.Name,
		Date:         req.Date,
		Type:         req.Type,
		Title:        req.Title,
		Description:  req.Description,
		Attachments:  req.Attachments,
		Confidential: req.Confidential,
	}
	if err := h.DB.Create(&record).Error; err != nil {
		utils.InternalServerError(c, "Failed to create medical record: "+err.Error())
		return
	}
	utils.Created(c, record)
}

// GetMedicalRecords lists the caller's records, newest first.
func (h *MedicalRecordHandler) GetMedicalRecords(c *gin.Context) {
	a, ok := currentActor(c)
	if !ok {
		return
	}
	q := scoped(h.DB.Model(&models.MedicalRecord{}), a).Order("date desc")
	if t := c.Query("type"); t != "" && t != "all" {
		q = q.Where("type = ?", t)
	}
	records := []models.MedicalRecord{}
	if err := q.Find(&records).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch medical records: "+err.Error())
		return
	}
	utils.Success(c, records)
}

// GetMedicalRecordsForPatient lists one patient's chart. Patients may only
// read their own; providers see every record that is not another provider's
// confidential note.
func (h *MedicalRecordHandler) GetMedicalRecordsForPatient(c *gin.Context) {
	a, ok := currentActor(c)
	if !ok {
		return
	}
	patientID := c.Param("id")
	if a.Role == models.RolePatient && patientID != a.ID {
		utils.Forbidden(c, "You are not authorized to view these medical records")
		return
	}
	if _, ok := findUserWithRole(c, h.DB, patientID, models.RolePatient); !ok {
		return
	}

	q := h.DB.Where("patient_id = ?", patientID).Order("date desc")
	if a.Role == models.RoleProvider {
		q = q.Where("confidential = ? OR provider_id = ?", false, a.ID)
	}
	records := []models.MedicalRecord{}
	if err := q.Find(&records).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch medical records: "+err.Error())
		return
	}
	utils.Success(c, records)
}

// GetMedicalRecordByID returns one record the caller may read.
func (h *MedicalRecordHandler) GetMedicalRecordByID(c *gin.Context) {
	a, ok := currentActor(c)
	if !ok {
		return
	}
	var record models.MedicalRecord
	if !findByID(c, h.DB, &record, c.Param("id"), "Medical record") {
		return
	}
	if !visible(a, &record) {
		utils.NotFound(c, "Medical record not found")
		return
	}
	utils.Success(c, record)
}

// UpdateMedicalRecord edits a record. Only its author or an admin may.
func (h *MedicalRecordHandler) UpdateMedicalRecord(c *gin.Context) {
	a, ok := currentActor(c)
	if !ok {
		return
	}
	var req api.MedicalRecordUpdate
	if !utils.BindAndValidate(c, &req) {
		return
	}
	var record models.MedicalRecord
	if !findByID(c, h.DB, &record, c.Param("id"), "Medical record") {
		return
	}
	if !a.isAdmin() && record.ProviderID != a.ID {
		utils.Forbidden(c, "Only the authoring provider can edit this record")
		return
	}

	if req.Title != nil {
		record.Title = *req.Title
	}
	if req.Description != nil {
		record.Description = *req.Description
	}
	if req.Attachments != nil {
		record.Attachments = req.Attachments
	}
	if req.Confidential != nil {
		record.Confidential = *req.Confidential
	}
	if err := h.DB.Save(&record).Error; err != nil {
		utils.InternalServerError(c, "Failed to update medical record: "+err.Error())
		return
	}
	utils.Success(c, record)
}
