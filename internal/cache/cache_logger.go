package cache

import (
	"context"
	"fmt"
	"log/slog"
)

// SafeInvalidatePattern safely invalidates cache pattern with logging
func SafeInvalidatePattern(ctx context.Context, helper *CacheHelper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate cache pattern",
			"error", err,
			"pattern", pattern)
	}
}

// SafeDelete safely deletes cache keys with logging
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

// BatchInvalidate invalidates multiple patterns in batch
func BatchInvalidate(ctx context.Context, helper *CacheHelper, patterns []string) error {
	var lastErr error
	for _, pattern := range patterns {
		if err := helper.InvalidatePattern(ctx, pattern); err != nil {
			lastErr = err
			slog.ErrorContext(ctx, "Failed to invalidate pattern in batch",
				"error", err,
				"pattern", pattern)
		}
	}
	return lastErr
}

// MessageUnreadKey is the per-user key for the cached message unread count.
func MessageUnreadKey(userID uint) string {
	return fmt.Sprintf("messages:%d", userID)
}

// NotificationUnreadKey is the per-user key for the cached notification unread count.
func NotificationUnreadKey(userID uint) string {
	return fmt.Sprintf("notifications:%d", userID)
}

// InvalidateMessageUnread drops the cached message unread count for each user.
// Called after sends, conversation reads and deletes.
func InvalidateMessageUnread(ctx context.Context, cm *CacheManager, userIDs ...uint) {
	keys := make([]string, len(userIDs))
	for i, id := range userIDs {
		keys[i] = MessageUnreadKey(id)
	}
	SafeDelete(ctx, cm.Unread, keys...)
}

// InvalidateNotificationUnread drops the cached notification unread count.
func InvalidateNotificationUnread(ctx context.Context, cm *CacheManager, userID uint) {
	SafeDelete(ctx, cm.Unread, NotificationUnreadKey(userID))
}

// InvalidateResourceCache invalidates listing and popular caches after a
// resource write.
func InvalidateResourceCache(ctx context.Context, cm *CacheManager, resourceID uint) {
	SafeDelete(ctx, cm.Resource, fmt.Sprintf("id:%d", resourceID))
	SafeInvalidatePattern(ctx, cm.Resource, "list:*")
	SafeInvalidatePattern(ctx, cm.Resource, "popular:*")
}

// InvalidateStudentStats invalidates cached progress aggregates for a student.
func InvalidateStudentStats(ctx context.Context, cm *CacheManager, studentID uint) {
	SafeInvalidatePattern(ctx, cm.Stats, fmt.Sprintf("student:%d:*", studentID))
}
