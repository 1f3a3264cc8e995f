package postgres

import (
	"context"
	"time"

	"github.com/edubridge/engagement-service/internal/models"
	"github.com/edubridge/engagement-service/internal/repositories"
	"gorm.io/gorm"
)

type messageRepository struct {
	db *gorm.DB
}

func NewMessagePostgreSQL(db *gorm.DB) repositories.MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, tx *gorm.DB, message *models.Message) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Create(message).Error; err != nil {
		return handleDBError(err, "create message")
	}
	return nil
}

func (r *messageRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Message, error) {
	db := r.getDB(tx)
	var message models.Message

	if err := db.WithContext(ctx).First(&message, id).Error; err != nil {
		return nil, handleDBError(err, "get message by id")
	}

	return &message, nil
}

func (r *messageRepository) Update(ctx context.Context, tx *gorm.DB, message *models.Message) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Save(message).Error; err != nil {
		return handleDBError(err, "update message")
	}
	return nil
}

func (r *messageRepository) GetConversation(ctx context.Context, tx *gorm.DB, userID, otherUserID uint) ([]*models.Message, error) {
	db := r.getDB(tx)
	var messages []*models.Message

	if err := db.WithContext(ctx).
		Where("(sender_id = ? AND receiver_id = ? AND deleted_by_sender = false) OR (sender_id = ? AND receiver_id = ? AND deleted_by_receiver = false)",
			userID, otherUserID, otherUserID, userID).
		Order("created_at ASC, id ASC").
		Find(&messages).Error; err != nil {
		return nil, handleDBError(err, "get conversation")
	}

	return messages, nil
}

func (r *messageRepository) GetUserMessages(ctx context.Context, tx *gorm.DB, userID uint) ([]*models.Message, error) {
	db := r.getDB(tx)
	var messages []*models.Message

	if err := db.WithContext(ctx).
		Where("(sender_id = ? AND deleted_by_sender = false) OR (receiver_id = ? AND deleted_by_receiver = false)",
			userID, userID).
		Order("created_at ASC, id ASC").
		Find(&messages).Error; err != nil {
		return nil, handleDBError(err, "get user messages")
	}

	return messages, nil
}

func (r *messageRepository) MarkConversationRead(ctx context.Context, tx *gorm.DB, userID, otherUserID uint, at time.Time) (int64, error) {
	db := r.getDB(tx)

	result := db.WithContext(ctx).
		Model(&models.Message{}).
		Where("receiver_id = ? AND sender_id = ? AND read = false", userID, otherUserID).
		Updates(map[string]interface{}{
			"read":    true,
			"read_at": at,
		})
	if result.Error != nil {
		return 0, handleDBError(result.Error, "mark conversation read")
	}

	return result.RowsAffected, nil
}

func (r *messageRepository) UnreadCount(ctx context.Context, tx *gorm.DB, userID uint) (int64, error) {
	db := r.getDB(tx)
	var count int64

	if err := db.WithContext(ctx).
		Model(&models.Message{}).
		Where("receiver_id = ? AND read = false AND deleted_by_receiver = false", userID).
		Count(&count).Error; err != nil {
		return 0, handleDBError(err, "count unread messages")
	}

	return count, nil
}

func (r *messageRepository) DeleteRemovable(ctx context.Context, tx *gorm.DB) (int64, error) {
	db := r.getDB(tx)

	result := db.WithContext(ctx).
		Where("deleted_by_sender = true AND deleted_by_receiver = true").
		Delete(&models.Message{})
	if result.Error != nil {
		return 0, handleDBError(result.Error, "delete removable messages")
	}

	return result.RowsAffected, nil
}

func (r *messageRepository) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}
