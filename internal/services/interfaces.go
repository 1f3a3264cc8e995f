package services

import (
	"context"

	"github.com/edubridge/engagement-service/internal/models"
)

// ===== SERVICE INTERFACES =====

type AuthService interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error)
	Profile(ctx context.Context, userID uint) (*models.User, error)
	UpdateProfile(ctx context.Context, userID uint, req *models.UpdateProfileRequest) (*models.User, error)
}

type MessageService interface {
	Send(ctx context.Context, senderID uint, req *models.SendMessageRequest) (*models.Message, error)

	// GetConversation returns the thread with otherUserID and, as a side
	// effect, marks messages addressed to userID as read.
	GetConversation(ctx context.Context, userID, otherUserID uint) ([]*models.Message, error)

	GetConversationSummaries(ctx context.Context, userID uint) ([]*models.ConversationSummary, error)
	MarkConversationRead(ctx context.Context, userID, otherUserID uint) (int64, error)

	// Delete soft-deletes the message on the caller's side only.
	Delete(ctx context.Context, messageID, userID uint) error

	UnreadCount(ctx context.Context, userID uint) (int64, error)
}

type NotificationService interface {
	Create(ctx context.Context, senderID uint, req *models.CreateNotificationRequest) (*models.Notification, error)
	List(ctx context.Context, userID uint) ([]*models.NotificationView, error)
	ListByType(ctx context.Context, userID uint, notificationType string) ([]*models.NotificationView, error)
	ListByPriority(ctx context.Context, userID uint, priority string) ([]*models.NotificationView, error)
	MarkRead(ctx context.Context, id, userID uint) error
	MarkAllRead(ctx context.Context, userID uint) (int64, error)
	Delete(ctx context.Context, id, userID uint) error
	UnreadCount(ctx context.Context, userID uint) (int64, error)
	PurgeExpired(ctx context.Context) (int64, error)
}

type StudentService interface {
	Create(ctx context.Context, req *models.CreateStudentRequest) (*models.Student, error)
	GetByID(ctx context.Context, userID, studentID uint) (*models.Student, error)
	ListByParent(ctx context.Context, parentID uint) ([]*models.Student, error)

	// CanViewStudent reports whether userID may read the student's
	// academic data. Teachers and admins are unrestricted; parents see
	// only their own children.
	CanViewStudent(ctx context.Context, userID, studentID uint) (bool, error)
}

type ProgressService interface {
	Record(ctx context.Context, teacherID uint, req *models.RecordProgressRequest) (*models.Progress, error)
	GetOverallProgress(ctx context.Context, userID, studentID uint) (*models.OverallProgressResponse, error)
	GetSubjectProgress(ctx context.Context, userID, studentID uint, subject string) (*models.SubjectProgressResponse, error)
	GetAttendance(ctx context.Context, userID, studentID uint) (*models.AttendanceResponse, error)
	GetAssessments(ctx context.Context, userID, studentID uint) (*models.AssessmentsResponse, error)
	GetTermReport(ctx context.Context, userID, studentID uint, term string) (*models.TermReportResponse, error)

	// ExportTermReport renders the term report as an xlsx workbook.
	ExportTermReport(ctx context.Context, userID, studentID uint, term string) ([]byte, error)
}

type ResourceService interface {
	Upload(ctx context.Context, uploaderID uint, req *models.UploadResourceRequest) (*models.Resource, error)
	GetByID(ctx context.Context, id uint) (*models.Resource, error)
	List(ctx context.Context, params *models.ListResourcesParams) ([]*models.Resource, int64, error)
	Update(ctx context.Context, id, userID uint, req *models.UpdateResourceRequest) (*models.Resource, error)
	Delete(ctx context.Context, id, userID uint) error
	Download(ctx context.Context, id uint) (*models.DownloadResponse, error)
	Rate(ctx context.Context, id, userID uint, req *models.RateResourceRequest) (*models.Resource, error)
	Popular(ctx context.Context, limit int) ([]*models.Resource, error)
}

type MaintenanceService interface {
	PurgeExpiredNotifications(ctx context.Context) (int64, error)
	RemoveDeletedMessages(ctx context.Context) (int64, error)

	// Run starts the periodic sweep; it returns when ctx is cancelled.
	Run(ctx context.Context)
}

// ServiceManager provides access to all services
type ServiceManager interface {
	Auth() AuthService
	Message() MessageService
	Notification() NotificationService
	Student() StudentService
	Progress() ProgressService
	Resource() ResourceService
	Maintenance() MaintenanceService

	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
