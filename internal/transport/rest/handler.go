package rest

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"turnoplus/config"
	"turnoplus/internal/service"
)

type Handler struct {
	services *service.Services
	logger   *zap.Logger
	config   *config.Config
}

func NewHandler(services *service.Services, logger *zap.Logger, config *config.Config) *Handler {
	return &Handler{
		services: services,
		logger:   logger,
		config:   config,
	}
}

func (h *Handler) InitRoutes(router *gin.Engine) {
	router.Use(h.loggerMiddleware())

	router.Use(h.corsMiddleware())

	api := router.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", h.register)
			auth.POST("/login", h.login)
			auth.POST("/refresh", h.refreshTokens)
			auth.POST("/logout", h.logout)
		}

		users := api.Group("/users")
		users.Use(h.authMiddleware())
		{
			users.GET("/me", h.getCurrentUser)
			users.GET("/:id", h.getUserByID)
			users.PUT("/:id", h.updateUser)
			users.PUT("/:id/password", h.updatePassword)

			admin := users.Group("/")
			admin.Use(h.adminMiddleware())
			{
				admin.POST("/", h.createUser)
				admin.GET("/", h.getUsers)
				admin.DELETE("/:id", h.deleteUser)
			}
		}

		h.initAppointmentRoutes(api)

		records := api.Group("/medical-records")
		records.Use(h.authMiddleware())
		{
			records.GET("/", h.getMedicalRecords)
			records.GET("/:id", h.getMedicalRecordByID)

			doctor := records.Group("/")
			doctor.Use(h.doctorMiddleware())
			{
				doctor.POST("/", h.createMedicalRecord)
				doctor.PUT("/:id", h.updateMedicalRecord)
				doctor.POST("/:id/attachments", h.addRecordAttachment)
			}

			records.GET("/:id/attachments/:attachmentId/url", h.getRecordAttachmentURL)
		}

		patients := api.Group("/patients")
		patients.Use(h.authMiddleware())
		{
			patients.GET("/:id/medical-records", h.getPatientMedicalRecords)
		}

		offices := api.Group("/offices")
		offices.Use(h.authMiddleware())
		{
			offices.GET("/", h.getOffices)
			offices.GET("/:id", h.getOfficeByID)

			admin := offices.Group("/")
			admin.Use(h.adminMiddleware())
			{
				admin.POST("/", h.createOffice)
				admin.PUT("/:id", h.updateOffice)
				admin.DELETE("/:id", h.deleteOffice)
			}
		}

		adminGroup := api.Group("/admin")
		adminGroup.Use(h.authMiddleware(), h.adminMiddleware())
		{
			adminGroup.GET("/dashboard/summary", h.getDashboardSummary)
		}
	}
}

func (h *Handler) initAppointmentRoutes(api *gin.RouterGroup) {
	appointments := api.Group("/appointments")
	appointments.Use(h.authMiddleware())
	{
		appointments.POST("", h.bookAppointment)
		appointments.GET("/:id", h.getAppointmentByID)
		appointments.POST("/:id/cancel", h.cancelAppointment)
		appointments.POST("/:id/confirm", h.confirmAppointment)
		appointments.POST("/:id/complete", h.completeAppointment)

		appointments.GET("/patients/:id", h.getPatientAppointments)
		appointments.GET("/patients/:id/filtered", h.getPatientAppointmentsFiltered)
		appointments.GET("/doctors/:id", h.getDoctorAppointments)

		doctor := appointments.Group("/doctor")
		{
			doctor.GET("/:id/availability", h.getDoctorAvailability)
			doctor.GET("/:id/available-blocks", h.getAvailableBlocks)
			doctor.GET("/:id/available-blocks/day-counts", h.getAvailableBlockCounts)
			doctor.GET("/:id/availability/calendar", h.getAvailabilityCalendar)
		}

		availability := appointments.Group("/availability")
		availability.Use(h.doctorMiddleware())
		{
			availability.POST("", h.createAvailability)
			availability.PATCH("/:id", h.updateAvailability)
			availability.DELETE("/:id", h.deleteAvailability)
		}

		blocks := appointments.Group("/blocks")
		blocks.Use(h.doctorMiddleware())
		{
			blocks.DELETE("/:id", h.deleteBlock)
		}
	}
}
