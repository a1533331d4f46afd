package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"health-portal/internal/api"
	"health-portal/internal/models"
	"health-portal/internal/utils"
)

// AppointmentHandler handles appointment related requests.
type AppointmentHandler struct {
	DB *gorm.DB
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(db *gorm.DB) *AppointmentHandler {
	return &AppointmentHandler{DB: db}
}

// CreateAppointment books a scheduled appointment. Patients book for
// themselves with a provider; providers book a patient with themselves.
func (h *AppointmentHandler) CreateAppointment(c *gin.Context) {
	a, ok := currentActor(c)
	if !ok {
		return
	}
	var req api.AppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	switch a.Role {
	case models.RolePatient:
		if req.PatientID != "" && req.PatientID != a.ID {
			utils.Forbidden(c, "Patients can only book appointments for themselves.")
			return
		}
		req.PatientID = a.ID
	case models.RoleProvider:
		if req.ProviderID != "" && req.ProviderID != a.ID {
			utils.Forbidden(c, "Providers can only book appointments with themselves.")
			return
		}
		req.ProviderID = a.ID
	}
	if req.PatientID == "" || req.ProviderID == "" {
		utils.BadRequest(c, "Validation failed: patientId and providerId are required")
		return
	}

	patient, ok := findUserWithRole(c, h.DB, req.PatientID, models.RolePatient)
	if !ok {
		return
	}
	provider, ok := findUserWithRole(c, h.DB, req.ProviderID, models.RoleProvider)
	if !ok {
		return
	}

	appointment := models.Appointment{
		PatientID:    patient.ID,
		ProviderID:   provider.ID,
		PatientName:  patient.Name,
		ProviderName: provider.Name,
		Date:         req.Date,
		Time:         req.Time,
		Duration:     req.Duration,
		Type:         req.Type,
		Status:       models.StatusScheduled,
		Reason:       req.Reason,
		Notes:        req.Notes,
	}
	if err := h.DB.Create(&appointment).Error; err != nil {
		utils.InternalServerError(c, "Failed to create appointment: "+err.Error())
		return
	}
	utils.Created(c, appointment)
}

// GetAppointmentsForUser lists the caller's appointments, soonest first.
func (h *AppointmentHandler) GetAppointmentsForUser(c *gin.Context) {
	a, ok := currentActor(c)
	if !ok {
		return
	}
	q := scoped(h.DB.Model(&models.Appointment{}), a).Order("date asc, time asc")
	if status := c.Query("status"); status != "" && status != "all" {
		q = q.Where("status = ?", status)
	}

	appointments := []models.Appointment{}
	if err := q.Find(&appointments).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch appointments: "+err.Error())
		return
	}
	utils.Success(c, appointments)
}

// load fetches appointment :id and checks the caller is part of it.
func (h *AppointmentHandler) load(c *gin.Context, a actor) (*models.Appointment, bool) {
	var appointment models.Appointment
	if !findByID(c, h.DB, &appointment, c.Param("id"), "Appointment") {
		return nil, false
	}
	if !a.involved(appointment.PatientID, appointment.ProviderID) {
		// Other people's appointments are reported as missing.
		utils.NotFound(c, "Appointment not found")
		return nil, false
	}
	return &appointment, true
}

// GetAppointmentByID returns one appointment the caller is part of.
func (h *AppointmentHandler) GetAppointmentByID(c *gin.Context) {
	a, ok := currentActor(c)
	if !ok {
		return
	}
	appointment, ok := h.load(c, a)
	if !ok {
		return
	}
	utils.Success(c, appointment)
}

// UpdateAppointment reschedules or annotates a scheduled appointment.
func (h *AppointmentHandler) UpdateAppointment(c *gin.Context) {
	a, ok := currentActor(c)
	if !ok {
		return
	}
	var req api.AppointmentUpdate
	if !utils.BindAndValidate(c, &req) {
		return
	}
	appointment, ok := h.load(c, a)
	if !ok {
		return
	}
	if appointment.Status != models.StatusScheduled {
		utils.Conflict(c, "Only scheduled appointments can be changed; this one is "+string(appointment.Status))
		return
	}

	if req.Date != nil {
		appointment.Date = *req.Date
	}
	if req.Time != nil {
		appointment.Time = *req.Time
	}
	if req.Duration != nil {
		appointment.Duration = *req.Duration
	}
	if req.Reason != nil {
		appointment.Reason = *req.Reason
	}
	if req.Notes != nil {
		appointment.Notes = *req.Notes
	}
	if err := h.DB.Save(appointment).Error; err != nil {
		utils.InternalServerError(c, "Failed to update appointment: "+err.Error())
		return
	}
	utils.Success(c, appointment)
}

// CancelAppointment cancels a scheduled appointment. Either party may cancel.
func (h *AppointmentHandler) CancelAppointment(c *gin.Context) {
	h.transition(c, models.StatusCancelled, "")
}

// UpdateAppointmentStatus records the outcome of an appointment. Providers only.
func (h *AppointmentHandler) UpdateAppointmentStatus(c *gin.Context) {
	var req api.AppointmentStatusRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	h.transition(c, req.Status, req.Notes)
}

func (h *AppointmentHandler) transition(c *gin.Context, to models.AppointmentStatus, notes string) {
	a, ok := currentActor(c)
	if !ok {
		return
	}
	appointment, ok := h.load(c, a)
	if !ok {
		return
	}
	if !appointment.Status.CanTransitionTo(to) {
		utils.Conflict(c, "Appointment is "+string(appointment.Status)+" and cannot become "+string(to))
		return
	}

	appointment.Status = to
	if notes != "" {
		appointment.Notes = notes
	}
	if err := h.DB.Save(appointment).Error; err != nil {
		utils.InternalServerError(c, "Failed to update appointment status: "+err.Error())
		return
	}
	utils.Success(c, appointment)
}
