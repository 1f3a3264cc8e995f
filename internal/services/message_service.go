package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/edubridge/engagement-service/internal/cache"
	"github.com/edubridge/engagement-service/internal/events"
	"github.com/edubridge/engagement-service/internal/models"
	"github.com/edubridge/engagement-service/internal/repositories"
	"github.com/edubridge/engagement-service/internal/validator"
)

// messageService implements MessageService
type messageService struct {
	repo           repositories.Repository
	logger         *slog.Logger
	validator      *validator.Validator
	eventPublisher events.EventPublisher
	cacheManager   *cache.CacheManager
}

// NewMessageService creates a new message service
func NewMessageService(
	repo repositories.Repository,
	logger *slog.Logger,
	eventPublisher events.EventPublisher,
	cacheManager *cache.CacheManager,
) MessageService {
	return &messageService{
		repo:           repo,
		logger:         logger,
		validator:      validator.New(),
		eventPublisher: eventPublisher,
		cacheManager:   cacheManager,
	}
}

// Send delivers a message after checking the receiver exists.
func (s *messageService) Send(ctx context.Context, senderID uint, req *models.SendMessageRequest) (*models.Message, error) {
	s.logger.Info("Sending message", "sender_id", senderID, "receiver_id", req.ReceiverID)

	if errs := s.validator.ValidateSendMessage(req); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, errs.Error())
	}

	if senderID == req.ReceiverID {
		return nil, fmt.Errorf("%w: cannot message yourself", ErrValidationFailed)
	}

	exists, err := s.repo.User().Exists(ctx, nil, req.ReceiverID)
	if err != nil {
		return nil, fmt.Errorf("failed to check receiver: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: receiver %d", ErrNotFound, req.ReceiverID)
	}

	message := &models.Message{
		SenderID:   senderID,
		ReceiverID: req.ReceiverID,
		Content:    req.Content,
	}

	if err := s.repo.Message().Create(ctx, nil, message); err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}

	cache.InvalidateMessageUnread(ctx, s.cacheManager, req.ReceiverID)

	event := events.NewEvent(events.EventMessageSent, events.MessageSentEvent{
		MessageID:  message.ID,
		SenderID:   senderID,
		ReceiverID: req.ReceiverID,
	})
	if err := s.eventPublisher.Publish(ctx, events.TopicMessages, event); err != nil {
		s.logger.Error("Failed to publish message.sent event", "error", err, "message_id", message.ID)
	}

	return message, nil
}

// GetConversation returns the visible thread and marks the other side's
// messages as read. Fetching a conversation is the read receipt.
func (s *messageService) GetConversation(ctx context.Context, userID, otherUserID uint) ([]*models.Message, error) {
	messages, err := s.repo.Message().GetConversation(ctx, nil, userID, otherUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}

	updated, err := s.repo.Message().MarkConversationRead(ctx, nil, userID, otherUserID, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to mark conversation read: %w", err)
	}

	if updated > 0 {
		cache.InvalidateMessageUnread(ctx, s.cacheManager, userID)

		// Reflect the flip in the returned slice so the caller sees the
		// same state a refetch would.
		now := time.Now()
		for _, m := range messages {
			if m.ReceiverID == userID && !m.Read {
				m.Read = true
				m.ReadAt = &now
			}
		}
	}

	return messages, nil
}

// GetConversationSummaries lists one row per counterpart, newest
// conversation first.
func (s *messageService) GetConversationSummaries(ctx context.Context, userID uint) ([]*models.ConversationSummary, error) {
	messages, err := s.repo.Message().GetUserMessages(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user messages: %w", err)
	}

	type bucket struct {
		last   *models.Message
		unread int64
	}
	buckets := make(map[uint]*bucket)

	for _, m := range messages {
		otherID := m.SenderID
		if otherID == userID {
			otherID = m.ReceiverID
		}

		b, ok := buckets[otherID]
		if !ok {
			b = &bucket{}
			buckets[otherID] = b
		}

		// Messages arrive ascending; equal timestamps resolve to the
		// higher ID, so later rows always win.
		b.last = m

		if m.ReceiverID == userID && !m.Read {
			b.unread++
		}
	}

	summaries := make([]*models.ConversationSummary, 0, len(buckets))
	for otherID, b := range buckets {
		summary := &models.ConversationSummary{
			UserID:      otherID,
			LastMessage: b.last,
			UnreadCount: b.unread,
			UpdatedAt:   b.last.CreatedAt,
		}

		other, err := s.repo.User().GetByID(ctx, nil, otherID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				summary.UserName = "Deleted user"
			} else {
				return nil, fmt.Errorf("failed to load conversation user: %w", err)
			}
		} else {
			summary.UserName = other.Name
			summary.UserRole = other.Role
		}

		summaries = append(summaries, summary)
	}

	sort.Slice(summaries, func(i, j int) bool {
		a, b := summaries[i], summaries[j]
		if !a.UpdatedAt.Equal(b.UpdatedAt) {
			return a.UpdatedAt.After(b.UpdatedAt)
		}
		return a.LastMessage.ID > b.LastMessage.ID
	})

	return summaries, nil
}

// MarkConversationRead marks every unread message from otherUserID as read.
func (s *messageService) MarkConversationRead(ctx context.Context, userID, otherUserID uint) (int64, error) {
	updated, err := s.repo.Message().MarkConversationRead(ctx, nil, userID, otherUserID, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to mark conversation read: %w", err)
	}

	if updated > 0 {
		cache.InvalidateMessageUnread(ctx, s.cacheManager, userID)
	}

	return updated, nil
}

// Delete hides the message from the caller's side. The row is only
// removed once both participants have deleted it.
func (s *messageService) Delete(ctx context.Context, messageID, userID uint) error {
	message, err := s.repo.Message().GetByID(ctx, nil, messageID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return fmt.Errorf("%w: message %d", ErrNotFound, messageID)
		}
		return fmt.Errorf("failed to get message: %w", err)
	}

	switch userID {
	case message.SenderID:
		if message.DeletedBySender {
			return fmt.Errorf("%w: message %d", ErrNotFound, messageID)
		}
		message.DeletedBySender = true
	case message.ReceiverID:
		if message.DeletedByReceiver {
			return fmt.Errorf("%w: message %d", ErrNotFound, messageID)
		}
		message.DeletedByReceiver = true
	default:
		return fmt.Errorf("%w: not a participant of message %d", ErrForbidden, messageID)
	}

	if err := s.repo.Message().Update(ctx, nil, message); err != nil {
		return fmt.Errorf("failed to update message: %w", err)
	}

	cache.InvalidateMessageUnread(ctx, s.cacheManager, message.ReceiverID)

	s.logger.Info("Message deleted", "message_id", messageID, "user_id", userID, "removable", message.ShouldRemove())
	return nil
}

// UnreadCount returns the unread message count, cache-aside with a
// short TTL so the badge stays close to live.
func (s *messageService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	key := cache.MessageUnreadKey(userID)

	var cached int64
	if err := s.cacheManager.Unread.Get(ctx, key, &cached); err == nil {
		return cached, nil
	}

	count, err := s.repo.Message().UnreadCount(ctx, nil, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread messages: %w", err)
	}

	if err := s.cacheManager.Unread.Set(ctx, key, count, cache.UnreadCacheConfig.TTL); err != nil {
		s.logger.Warn("Failed to cache unread count", "error", err, "user_id", userID)
	}

	return count, nil
}
