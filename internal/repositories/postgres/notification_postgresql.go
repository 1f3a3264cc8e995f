package postgres

import (
	"context"
	"time"

	"github.com/edubridge/engagement-service/internal/models"
	"github.com/edubridge/engagement-service/internal/repositories"
	"gorm.io/gorm"
)

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationPostgreSQL(db *gorm.DB) repositories.NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, tx *gorm.DB, notification *models.Notification) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Create(notification).Error; err != nil {
		return handleDBError(err, "create notification")
	}
	return nil
}

func (r *notificationRepository) GetByIDForUser(ctx context.Context, tx *gorm.DB, id, userID uint) (*models.Notification, error) {
	db := r.getDB(tx)
	var notification models.Notification

	if err := db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&notification).Error; err != nil {
		return nil, handleDBError(err, "get notification for user")
	}

	return &notification, nil
}

func (r *notificationRepository) List(ctx context.Context, tx *gorm.DB, userID uint) ([]*models.Notification, error) {
	db := r.getDB(tx)
	var notifications []*models.Notification

	if err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&notifications).Error; err != nil {
		return nil, handleDBError(err, "list notifications")
	}

	return notifications, nil
}

func (r *notificationRepository) ListByType(ctx context.Context, tx *gorm.DB, userID uint, notificationType models.NotificationType) ([]*models.Notification, error) {
	db := r.getDB(tx)
	var notifications []*models.Notification

	if err := db.WithContext(ctx).
		Where("user_id = ? AND type = ?", userID, notificationType).
		Order("created_at DESC, id DESC").
		Find(&notifications).Error; err != nil {
		return nil, handleDBError(err, "list notifications by type")
	}

	return notifications, nil
}

func (r *notificationRepository) ListByPriority(ctx context.Context, tx *gorm.DB, userID uint, priority models.NotificationPriority) ([]*models.Notification, error) {
	db := r.getDB(tx)
	var notifications []*models.Notification

	if err := db.WithContext(ctx).
		Where("user_id = ? AND priority = ?", userID, priority).
		Order("created_at DESC, id DESC").
		Find(&notifications).Error; err != nil {
		return nil, handleDBError(err, "list notifications by priority")
	}

	return notifications, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, tx *gorm.DB, id, userID uint, at time.Time) (int64, error) {
	db := r.getDB(tx)

	result := db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]interface{}{
			"read":    true,
			"read_at": at,
		})
	if result.Error != nil {
		return 0, handleDBError(result.Error, "mark notification read")
	}

	return result.RowsAffected, nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, tx *gorm.DB, userID uint, at time.Time) (int64, error) {
	db := r.getDB(tx)

	result := db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND read = false", userID).
		Updates(map[string]interface{}{
			"read":    true,
			"read_at": at,
		})
	if result.Error != nil {
		return 0, handleDBError(result.Error, "mark all notifications read")
	}

	return result.RowsAffected, nil
}

func (r *notificationRepository) Delete(ctx context.Context, tx *gorm.DB, id, userID uint) (int64, error) {
	db := r.getDB(tx)

	result := db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.Notification{})
	if result.Error != nil {
		return 0, handleDBError(result.Error, "delete notification")
	}

	return result.RowsAffected, nil
}

func (r *notificationRepository) UnreadCount(ctx context.Context, tx *gorm.DB, userID uint) (int64, error) {
	db := r.getDB(tx)
	var count int64

	if err := db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND read = false", userID).
		Count(&count).Error; err != nil {
		return 0, handleDBError(err, "count unread notifications")
	}

	return count, nil
}

func (r *notificationRepository) DeleteExpired(ctx context.Context, tx *gorm.DB, now time.Time) (int64, error) {
	db := r.getDB(tx)

	result := db.WithContext(ctx).
		Where("expires_at IS NOT NULL AND expires_at < ?", now).
		Delete(&models.Notification{})
	if result.Error != nil {
		return 0, handleDBError(result.Error, "delete expired notifications")
	}

	return result.RowsAffected, nil
}

func (r *notificationRepository) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}
