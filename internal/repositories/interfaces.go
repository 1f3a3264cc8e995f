package repositories

import (
	"context"
	"time"

	"github.com/edubridge/engagement-service/internal/models"
	"gorm.io/gorm"
)

// ===== SHARED FILTER STRUCTS =====

type ResourceFilters struct {
	Category  *models.ResourceCategory `json:"category"`
	Subject   *string                  `json:"subject"`
	Grade     *string                  `json:"grade"`
	Search    *string                  `json:"search"`
	Status    *models.ResourceStatus   `json:"status"`
	Limit     int                      `json:"limit"`
	Offset    int                      `json:"offset"`
	SortBy    string                   `json:"sort_by"`    // "created_at", "title", "downloads"
	SortOrder string                   `json:"sort_order"` // "asc", "desc"
}

type ProgressFilters struct {
	Subject *string      `json:"subject"`
	Term    *models.Term `json:"term"`
}

// ===== ENTITY REPOSITORIES =====

type UserRepository interface {
	Create(ctx context.Context, tx *gorm.DB, user *models.User) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error)
	Update(ctx context.Context, tx *gorm.DB, user *models.User) error
	UpdateLastLogin(ctx context.Context, tx *gorm.DB, id uint, at time.Time) error
	Exists(ctx context.Context, tx *gorm.DB, id uint) (bool, error)
	ExistsByEmail(ctx context.Context, tx *gorm.DB, email string) (bool, error)
}

type StudentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, student *models.Student) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Student, error)
	GetByParent(ctx context.Context, tx *gorm.DB, parentID uint) ([]*models.Student, error)
	IsChildOf(ctx context.Context, tx *gorm.DB, parentID, studentID uint) (bool, error)
	ExistsByCode(ctx context.Context, tx *gorm.DB, code string) (bool, error)
	Exists(ctx context.Context, tx *gorm.DB, id uint) (bool, error)
}

type MessageRepository interface {
	Create(ctx context.Context, tx *gorm.DB, message *models.Message) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Message, error)
	Update(ctx context.Context, tx *gorm.DB, message *models.Message) error

	// GetConversation returns messages between the two users still visible
	// to userID, ascending by created_at then id.
	GetConversation(ctx context.Context, tx *gorm.DB, userID, otherUserID uint) ([]*models.Message, error)

	// GetUserMessages returns every message involving userID that is still
	// visible to userID, ascending by created_at then id.
	GetUserMessages(ctx context.Context, tx *gorm.DB, userID uint) ([]*models.Message, error)

	// MarkConversationRead flips unread messages sent by otherUserID and
	// addressed to userID; returns rows affected.
	MarkConversationRead(ctx context.Context, tx *gorm.DB, userID, otherUserID uint, at time.Time) (int64, error)

	// UnreadCount counts unread messages addressed to userID that the
	// user has not deleted on their side.
	UnreadCount(ctx context.Context, tx *gorm.DB, userID uint) (int64, error)

	// DeleteRemovable hard-deletes rows both sides have soft-deleted.
	DeleteRemovable(ctx context.Context, tx *gorm.DB) (int64, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, tx *gorm.DB, notification *models.Notification) error

	// GetByIDForUser looks up by (id, recipient) so existence and
	// ownership collapse into one not-found outcome.
	GetByIDForUser(ctx context.Context, tx *gorm.DB, id, userID uint) (*models.Notification, error)

	List(ctx context.Context, tx *gorm.DB, userID uint) ([]*models.Notification, error)
	ListByType(ctx context.Context, tx *gorm.DB, userID uint, notificationType models.NotificationType) ([]*models.Notification, error)
	ListByPriority(ctx context.Context, tx *gorm.DB, userID uint, priority models.NotificationPriority) ([]*models.Notification, error)

	MarkRead(ctx context.Context, tx *gorm.DB, id, userID uint, at time.Time) (int64, error)
	MarkAllRead(ctx context.Context, tx *gorm.DB, userID uint, at time.Time) (int64, error)
	Delete(ctx context.Context, tx *gorm.DB, id, userID uint) (int64, error)
	UnreadCount(ctx context.Context, tx *gorm.DB, userID uint) (int64, error)

	// DeleteExpired removes notifications whose expiry is before now.
	DeleteExpired(ctx context.Context, tx *gorm.DB, now time.Time) (int64, error)
}

type ProgressRepository interface {
	Create(ctx context.Context, tx *gorm.DB, progress *models.Progress) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Progress, error)

	// GetByStudent returns records newest first, filtered by subject/term
	// when set.
	GetByStudent(ctx context.Context, tx *gorm.DB, studentID uint, filters ProgressFilters) ([]*models.Progress, error)
}

type ResourceRepository interface {
	Create(ctx context.Context, tx *gorm.DB, resource *models.Resource) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Resource, error)
	Update(ctx context.Context, tx *gorm.DB, resource *models.Resource) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
	List(ctx context.Context, tx *gorm.DB, filters ResourceFilters) ([]*models.Resource, int64, error)
	Popular(ctx context.Context, tx *gorm.DB, limit int) ([]*models.Resource, error)

	// IncrementDownloads bumps the counter atomically in SQL and returns
	// the new value.
	IncrementDownloads(ctx context.Context, tx *gorm.DB, id uint) (int64, error)

	// UpsertRating replaces the user's previous rating of the resource.
	UpsertRating(ctx context.Context, tx *gorm.DB, rating *models.ResourceRating) error
	GetRatings(ctx context.Context, tx *gorm.DB, resourceID uint) ([]*models.ResourceRating, error)
	UpdateRatingAggregate(ctx context.Context, tx *gorm.DB, resourceID uint, average float64, count int) error
}
