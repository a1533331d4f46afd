package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"health-portal/internal/api"
	"health-portal/internal/config"
	"health-portal/internal/handlers"
	"health-portal/internal/middleware"
	"health-portal/internal/models"
)

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, db *gorm.DB, cfg *config.Config) {
	authHandler := handlers.NewAuthHandler(db, cfg)
	userHandler := handlers.NewUserHandler(db)
	appointmentHandler := handlers.NewAppointmentHandler(db)
	medicalRecordHandler := handlers.NewMedicalRecordHandler(db)
	prescriptionHandler := handlers.NewPrescriptionHandler(db)
	messageHandler := handlers.NewMessageHandler(db)

	providersOnly := middleware.RoleAuthMiddleware(models.RoleProvider)
	providersAndAdmins := middleware.RoleAuthMiddleware(models.RoleProvider, models.RoleAdmin)

	public := router.Group(api.BasePath)
	{
		authRoutes := public.Group("/auth")
		authRoutes.POST("/register", authHandler.Register)
		authRoutes.POST("/login", authHandler.Login)
		authRoutes.POST("/refresh-token", authHandler.RefreshToken)
	}

	private := router.Group(api.BasePath)
	private.Use(middleware.AuthMiddleware(cfg))
	{
		private.POST(api.AuthLogout, authHandler.Logout)

		userRoutes := private.Group(api.Users)
		{
			userRoutes.GET("/profile", userHandler.GetProfile)
			userRoutes.PUT("/profile", userHandler.UpdateProfile)

			adminRoutes := userRoutes.Group("")
			adminRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
			{
				adminRoutes.POST("", userHandler.CreateUser)
				adminRoutes.GET("", userHandler.GetUsers)
				adminRoutes.GET("/:id", userHandler.GetUserByID)
				adminRoutes.PUT("/:id", userHandler.UpdateUser)
				adminRoutes.DELETE("/:id", userHandler.DeleteUser)
			}
		}

		private.GET(api.Providers, userHandler.GetProviders)
		private.GET(api.Patients, providersAndAdmins, userHandler.GetPatients)
		private.GET(api.Patients+"/:id"+api.MedicalRecords, medicalRecordHandler.GetMedicalRecordsForPatient)

		appointmentRoutes := private.Group(api.Appointments)
		{
			appointmentRoutes.POST("", appointmentHandler.CreateAppointment)
			appointmentRoutes.GET("", appointmentHandler.GetAppointmentsForUser)
			appointmentRoutes.GET("/:id", appointmentHandler.GetAppointmentByID)
			appointmentRoutes.PUT("/:id", appointmentHandler.UpdateAppointment)
			appointmentRoutes.POST("/:id/cancel", appointmentHandler.CancelAppointment)
			appointmentRoutes.PATCH("/:id/status", providersAndAdmins, appointmentHandler.UpdateAppointmentStatus)
		}

		medicalRecordRoutes := private.Group(api.MedicalRecords)
		{
			medicalRecordRoutes.POST("", providersOnly, medicalRecordHandler.CreateMedicalRecord)
			medicalRecordRoutes.GET("", medicalRecordHandler.GetMedicalRecords)
			medicalRecordRoutes.GET("/:id", medicalRecordHandler.GetMedicalRecordByID)
			medicalRecordRoutes.PUT("/:id", providersAndAdmins, medicalRecordHandler.UpdateMedicalRecord)
		}

		prescriptionRoutes := private.Group(api.Prescriptions)
		{
			prescriptionRoutes.POST("", providersOnly, prescriptionHandler.CreatePrescription)
			prescriptionRoutes.GET("", prescriptionHandler.GetPrescriptions)
			prescriptionRoutes.GET("/:id", prescriptionHandler.GetPrescriptionByID)
			prescriptionRoutes.PUT("/:id", providersAndAdmins, prescriptionHandler.UpdatePrescription)
			prescriptionRoutes.POST("/:id/renew", prescriptionHandler.RenewPrescription)
		}

		messageRoutes := private.Group(api.Messages)
		{
			messageRoutes.POST("", messageHandler.SendMessage)
			messageRoutes.GET("", messageHandler.GetMessagesForUser)
			messageRoutes.GET("/conversations", messageHandler.GetConversations)
			messageRoutes.GET("/:id", messageHandler.GetMessageByID)
			messageRoutes.POST("/:id/read", messageHandler.MarkMessageAsRead)
		}
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP"})
	})
}
