package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/edubridge/engagement-service/internal/cache"
	"github.com/edubridge/engagement-service/internal/events"
	"github.com/edubridge/engagement-service/internal/models"
	"github.com/edubridge/engagement-service/internal/repositories"
	"github.com/edubridge/engagement-service/internal/validator"
)

// notificationService implements NotificationService
type notificationService struct {
	repo           repositories.Repository
	logger         *slog.Logger
	validator      *validator.Validator
	eventPublisher events.EventPublisher
	cacheManager   *cache.CacheManager
}

// NewNotificationService creates a new notification service
func NewNotificationService(
	repo repositories.Repository,
	logger *slog.Logger,
	eventPublisher events.EventPublisher,
	cacheManager *cache.CacheManager,
) NotificationService {
	return &notificationService{
		repo:           repo,
		logger:         logger,
		validator:      validator.New(),
		eventPublisher: eventPublisher,
		cacheManager:   cacheManager,
	}
}

// Create stores a notification with defaults applied: general type,
// normal priority and a 30-day expiry when none is given.
func (s *notificationService) Create(ctx context.Context, senderID uint, req *models.CreateNotificationRequest) (*models.Notification, error) {
	if errs := s.validator.ValidateNotificationCreate(req); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, errs.Error())
	}

	exists, err := s.repo.User().Exists(ctx, nil, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to check recipient: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: user %d", ErrNotFound, req.UserID)
	}

	notificationType := req.Type
	if notificationType == "" {
		notificationType = models.NotificationGeneral
	}

	priority := req.Priority
	if priority == "" {
		priority = models.PriorityNormal
	}

	expiresAt := req.ExpiresAt
	if expiresAt == nil {
		t := time.Now().Add(models.DefaultNotificationTTL)
		expiresAt = &t
	}

	notification := &models.Notification{
		UserID:    req.UserID,
		SenderID:  &senderID,
		Title:     req.Title,
		Body:      req.Body,
		Type:      notificationType,
		Priority:  priority,
		Link:      req.Link,
		ExpiresAt: expiresAt,
	}

	if err := s.repo.Notification().Create(ctx, nil, notification); err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}

	cache.InvalidateNotificationUnread(ctx, s.cacheManager, req.UserID)

	event := events.NewEvent(events.EventNotificationCreated, events.NotificationCreatedEvent{
		NotificationID: notification.ID,
		UserID:         notification.UserID,
		Type:           string(notification.Type),
		Priority:       string(notification.Priority),
	})
	if err := s.eventPublisher.Publish(ctx, events.TopicNotifications, event); err != nil {
		s.logger.Error("Failed to publish notification.created event", "error", err, "notification_id", notification.ID)
	}

	s.logger.Info("Notification created",
		"notification_id", notification.ID,
		"user_id", notification.UserID,
		"type", notification.Type,
		"priority", notification.Priority)

	return notification, nil
}

// List returns the user's notifications decorated with display hints.
func (s *notificationService) List(ctx context.Context, userID uint) ([]*models.NotificationView, error) {
	notifications, err := s.repo.Notification().List(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return decorate(notifications), nil
}

// ListByType returns the user's notifications of one type.
func (s *notificationService) ListByType(ctx context.Context, userID uint, notificationType string) ([]*models.NotificationView, error) {
	if !models.ValidNotificationType(notificationType) {
		return nil, fmt.Errorf("%w: unknown notification type %q", ErrValidationFailed, notificationType)
	}

	notifications, err := s.repo.Notification().ListByType(ctx, nil, userID, models.NotificationType(notificationType))
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications by type: %w", err)
	}
	return decorate(notifications), nil
}

// ListByPriority returns the user's notifications of one priority.
func (s *notificationService) ListByPriority(ctx context.Context, userID uint, priority string) ([]*models.NotificationView, error) {
	if !models.ValidNotificationPriority(priority) {
		return nil, fmt.Errorf("%w: unknown priority %q", ErrValidationFailed, priority)
	}

	notifications, err := s.repo.Notification().ListByPriority(ctx, nil, userID, models.NotificationPriority(priority))
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications by priority: %w", err)
	}
	return decorate(notifications), nil
}

func decorate(notifications []*models.Notification) []*models.NotificationView {
	views := make([]*models.NotificationView, len(notifications))
	for i, n := range notifications {
		views[i] = &models.NotificationView{
			Notification:  *n,
			PriorityColor: n.PriorityColor(),
			TypeIcon:      n.TypeIcon(),
		}
	}
	return views
}

// MarkRead marks one notification read. A notification belonging to
// someone else looks the same as a missing one.
func (s *notificationService) MarkRead(ctx context.Context, id, userID uint) error {
	updated, err := s.repo.Notification().MarkRead(ctx, nil, id, userID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	if updated == 0 {
		// Already read or not the caller's; confirm it exists for them.
		if _, err := s.repo.Notification().GetByIDForUser(ctx, nil, id, userID); err != nil {
			if repositories.IsNotFoundError(err) {
				return fmt.Errorf("%w: notification %d", ErrNotFound, id)
			}
			return fmt.Errorf("failed to get notification: %w", err)
		}
		return nil
	}

	cache.InvalidateNotificationUnread(ctx, s.cacheManager, userID)
	return nil
}

// MarkAllRead marks everything unread as read and reports how many
// rows changed. Running it twice is harmless; the second pass is zero.
func (s *notificationService) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	updated, err := s.repo.Notification().MarkAllRead(ctx, nil, userID, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to mark all notifications read: %w", err)
	}

	if updated > 0 {
		cache.InvalidateNotificationUnread(ctx, s.cacheManager, userID)
	}

	return updated, nil
}

// Delete removes the caller's notification.
func (s *notificationService) Delete(ctx context.Context, id, userID uint) error {
	deleted, err := s.repo.Notification().Delete(ctx, nil, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	if deleted == 0 {
		return fmt.Errorf("%w: notification %d", ErrNotFound, id)
	}

	cache.InvalidateNotificationUnread(ctx, s.cacheManager, userID)
	return nil
}

// UnreadCount returns the unread notification count, cache-aside.
func (s *notificationService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	key := cache.NotificationUnreadKey(userID)

	var cached int64
	if err := s.cacheManager.Unread.Get(ctx, key, &cached); err == nil {
		return cached, nil
	}

	count, err := s.repo.Notification().UnreadCount(ctx, nil, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}

	if err := s.cacheManager.Unread.Set(ctx, key, count, cache.UnreadCacheConfig.TTL); err != nil {
		s.logger.Warn("Failed to cache unread count", "error", err, "user_id", userID)
	}

	return count, nil
}

// PurgeExpired removes every notification past its expiry.
func (s *notificationService) PurgeExpired(ctx context.Context) (int64, error) {
	purged, err := s.repo.Notification().DeleteExpired(ctx, nil, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired notifications: %w", err)
	}

	if purged > 0 {
		s.logger.Info("Purged expired notifications", "count", purged)
	}

	return purged, nil
}
