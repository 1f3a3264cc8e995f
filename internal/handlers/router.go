package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/edubridge/engagement-service/internal/models"
	"github.com/edubridge/engagement-service/internal/services"
	"github.com/edubridge/engagement-service/internal/utils"
)

type HandlerManager struct {
	authHandler         *AuthHandler
	messageHandler      *MessageHandler
	notificationHandler *NotificationHandler
	studentHandler      *StudentHandler
	progressHandler     *ProgressHandler
	resourceHandler     *ResourceHandler
	authMiddleware      *JWTAuthMiddleware
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	logger utils.Logger,
	jwtSecret string,
) *HandlerManager {
	return &HandlerManager{
		authHandler:         NewAuthHandler(serviceManager.Auth(), logger),
		messageHandler:      NewMessageHandler(serviceManager.Message(), logger),
		notificationHandler: NewNotificationHandler(serviceManager.Notification(), logger),
		studentHandler:      NewStudentHandler(serviceManager.Student(), logger),
		progressHandler:     NewProgressHandler(serviceManager.Progress(), logger),
		resourceHandler:     NewResourceHandler(serviceManager.Resource(), logger),
		authMiddleware:      NewJWTAuthMiddleware(jwtSecret),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	api := router.Group("/api")
	{
		// Auth routes (register/login are public)
		auth := api.Group("/auth")
		{
			auth.POST("/register", hm.authHandler.Register)
			auth.POST("/login", hm.authHandler.Login)
			auth.GET("/profile", hm.authMiddleware.AuthMiddleware(), hm.authHandler.Profile)
			auth.PUT("/profile", hm.authMiddleware.AuthMiddleware(), hm.authHandler.UpdateProfile)
		}

		// Message routes
		messages := api.Group("/messages")
		messages.Use(hm.authMiddleware.AuthMiddleware())
		{
			messages.POST("", hm.messageHandler.Send)
			messages.GET("/conversations", hm.messageHandler.GetConversations)
			messages.GET("/unread-count", hm.messageHandler.UnreadCount)
			messages.GET("/:otherUserId", hm.messageHandler.GetConversation)
			messages.PUT("/:conversationId/read", hm.messageHandler.MarkConversationRead)
			messages.DELETE("/:id", hm.messageHandler.Delete)
		}

		// Notification routes - creation is Teachers and Admins only
		notifications := api.Group("/notifications")
		notifications.Use(hm.authMiddleware.AuthMiddleware())
		{
			notifications.POST("", hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RoleAdmin), hm.notificationHandler.Create)
			notifications.GET("", hm.notificationHandler.List)
			notifications.GET("/unread-count", hm.notificationHandler.UnreadCount)
			notifications.GET("/type/:type", hm.notificationHandler.ListByType)
			notifications.GET("/priority/:priority", hm.notificationHandler.ListByPriority)
			notifications.PUT("/read-all", hm.notificationHandler.MarkAllRead)
			notifications.PUT("/:id/read", hm.notificationHandler.MarkRead)
			notifications.DELETE("/:id", hm.notificationHandler.Delete)
		}

		// Student routes - registration is Parents and Admins only
		students := api.Group("/students")
		students.Use(hm.authMiddleware.AuthMiddleware())
		{
			students.POST("", hm.authMiddleware.RequireRoleMiddleware(models.RoleParent, models.RoleAdmin), hm.studentHandler.Create)
			students.GET("/mine", hm.studentHandler.Mine)
			students.GET("/:id", hm.studentHandler.GetByID)
		}

		// Progress routes - recording is Teachers and Admins only
		progress := api.Group("/progress")
		progress.Use(hm.authMiddleware.AuthMiddleware())
		{
			progress.POST("", hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RoleAdmin), hm.progressHandler.Record)
			progress.GET("/:studentId", hm.progressHandler.GetOverall)
			progress.GET("/:studentId/subject/:subject", hm.progressHandler.GetSubject)
			progress.GET("/:studentId/attendance", hm.progressHandler.GetAttendance)
			progress.GET("/:studentId/assessments", hm.progressHandler.GetAssessments)
			progress.GET("/:studentId/report/:term", hm.progressHandler.GetTermReport)
			progress.GET("/:studentId/report/:term/export", hm.progressHandler.ExportTermReport)
		}

		// Resource routes
		resources := api.Group("/resources")
		resources.Use(hm.authMiddleware.AuthMiddleware())
		{
			resources.POST("", hm.resourceHandler.Upload)
			resources.GET("", hm.resourceHandler.List)
			resources.GET("/search", hm.resourceHandler.Search)
			resources.GET("/popular", hm.resourceHandler.Popular)
			resources.GET("/:id", hm.resourceHandler.GetByID)
			resources.PUT("/:id", hm.resourceHandler.Update)
			resources.DELETE("/:id", hm.resourceHandler.Delete)
			resources.POST("/:id/download", hm.resourceHandler.Download)
			resources.POST("/:id/ratings", hm.resourceHandler.Rate)
		}
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "engagement-service",
		})
	})
}
