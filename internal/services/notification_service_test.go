package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/edubridge/engagement-service/internal/cache"
	"github.com/edubridge/engagement-service/internal/events"
	"github.com/edubridge/engagement-service/internal/models"
)

func setupNotificationService(t *testing.T) (NotificationService, *fakeRepository, *events.MockEventPublisher) {
	t.Helper()
	repo := newFakeRepository()
	publisher := events.NewMockEventPublisher(testLogger())
	svc := NewNotificationService(repo, testLogger(), publisher, cache.NewCacheManager(nil))
	return svc, repo, publisher
}

func TestNotificationCreateDefaults(t *testing.T) {
	svc, repo, publisher := setupNotificationService(t)
	ctx := context.Background()

	teacher := repo.addUser("teacher", models.RoleTeacher)
	parent := repo.addUser("parent", models.RoleParent)

	before := time.Now()
	n, err := svc.Create(ctx, teacher.ID, &models.CreateNotificationRequest{
		UserID: parent.ID,
		Title:  "Homework posted",
		Body:   "Math worksheet due Friday",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if n.Type != models.NotificationGeneral {
		t.Errorf("expected default type general, got %s", n.Type)
	}
	if n.Priority != models.PriorityNormal {
		t.Errorf("expected default priority normal, got %s", n.Priority)
	}
	if n.SenderID == nil || *n.SenderID != teacher.ID {
		t.Error("sender should be recorded")
	}

	// Default expiry lands 30 days out.
	if n.ExpiresAt == nil {
		t.Fatal("expected default expiry to be set")
	}
	want := before.Add(models.DefaultNotificationTTL)
	if n.ExpiresAt.Before(want.Add(-time.Minute)) || n.ExpiresAt.After(want.Add(time.Minute)) {
		t.Errorf("default expiry %v not near %v", n.ExpiresAt, want)
	}

	published := publisher.GetPublishedEvents()
	if len(published) != 1 || published[0].Type != events.EventNotificationCreated {
		t.Fatalf("expected one notification.created event, got %+v", published)
	}
}

func TestNotificationCreateRejectsPastExpiry(t *testing.T) {
	svc, repo, _ := setupNotificationService(t)
	ctx := context.Background()

	teacher := repo.addUser("teacher", models.RoleTeacher)
	parent := repo.addUser("parent", models.RoleParent)

	past := time.Now().Add(-time.Hour)
	_, err := svc.Create(ctx, teacher.ID, &models.CreateNotificationRequest{
		UserID:    parent.ID,
		Title:     "Too late",
		Body:      "already over",
		ExpiresAt: &past,
	})
	if !errors.Is(err, ErrValidationFailed) {
		t.Errorf("expected ErrValidationFailed, got %v", err)
	}
}

func TestNotificationListDecoration(t *testing.T) {
	svc, repo, _ := setupNotificationService(t)
	ctx := context.Background()

	teacher := repo.addUser("teacher", models.RoleTeacher)
	parent := repo.addUser("parent", models.RoleParent)

	if _, err := svc.Create(ctx, teacher.ID, &models.CreateNotificationRequest{
		UserID:   parent.ID,
		Title:    "Fees due",
		Body:     "Pay by month end",
		Type:     models.NotificationAcademic,
		Priority: models.PriorityUrgent,
	}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	views, err := svc.List(ctx, parent.ID)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(views))
	}
	if views[0].PriorityColor != "#dc3545" {
		t.Errorf("urgent color = %s, want #dc3545", views[0].PriorityColor)
	}
	if views[0].TypeIcon != "graduation-cap" {
		t.Errorf("academic icon = %s, want graduation-cap", views[0].TypeIcon)
	}
}

func TestNotificationListFilters(t *testing.T) {
	svc, repo, _ := setupNotificationService(t)
	ctx := context.Background()

	teacher := repo.addUser("teacher", models.RoleTeacher)
	parent := repo.addUser("parent", models.RoleParent)

	seed := []struct {
		typ      models.NotificationType
		priority models.NotificationPriority
	}{
		{models.NotificationHomework, models.PriorityHigh},
		{models.NotificationHomework, models.PriorityLow},
		{models.NotificationEvent, models.PriorityHigh},
	}
	for i, s := range seed {
		if _, err := svc.Create(ctx, teacher.ID, &models.CreateNotificationRequest{
			UserID:   parent.ID,
			Title:    "n",
			Body:     "b",
			Type:     s.typ,
			Priority: s.priority,
		}); err != nil {
			t.Fatalf("Create %d failed: %v", i, err)
		}
	}

	byType, err := svc.ListByType(ctx, parent.ID, "homework")
	if err != nil {
		t.Fatalf("ListByType failed: %v", err)
	}
	if len(byType) != 2 {
		t.Errorf("expected 2 homework notifications, got %d", len(byType))
	}

	byPriority, err := svc.ListByPriority(ctx, parent.ID, "high")
	if err != nil {
		t.Fatalf("ListByPriority failed: %v", err)
	}
	if len(byPriority) != 2 {
		t.Errorf("expected 2 high notifications, got %d", len(byPriority))
	}

	if _, err := svc.ListByType(ctx, parent.ID, "bogus"); !errors.Is(err, ErrValidationFailed) {
		t.Errorf("expected ErrValidationFailed for bogus type, got %v", err)
	}
	if _, err := svc.ListByPriority(ctx, parent.ID, "extreme"); !errors.Is(err, ErrValidationFailed) {
		t.Errorf("expected ErrValidationFailed for bogus priority, got %v", err)
	}
}

func TestNotificationMarkReadOwnership(t *testing.T) {
	svc, repo, _ := setupNotificationService(t)
	ctx := context.Background()

	teacher := repo.addUser("teacher", models.RoleTeacher)
	parent := repo.addUser("parent", models.RoleParent)
	other := repo.addUser("other", models.RoleParent)

	n, err := svc.Create(ctx, teacher.ID, &models.CreateNotificationRequest{
		UserID: parent.ID,
		Title:  "For parent only",
		Body:   "b",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Someone else's notification looks like a missing one.
	if err := svc.MarkRead(ctx, n.ID, other.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for foreign notification, got %v", err)
	}

	if err := svc.MarkRead(ctx, n.ID, parent.ID); err != nil {
		t.Fatalf("MarkRead failed: %v", err)
	}

	// Marking an already read notification is a quiet no-op.
	if err := svc.MarkRead(ctx, n.ID, parent.ID); err != nil {
		t.Errorf("second MarkRead should be a no-op, got %v", err)
	}
}

func TestNotificationMarkAllReadIdempotent(t *testing.T) {
	svc, repo, _ := setupNotificationService(t)
	ctx := context.Background()

	teacher := repo.addUser("teacher", models.RoleTeacher)
	parent := repo.addUser("parent", models.RoleParent)

	for i := 0; i < 3; i++ {
		if _, err := svc.Create(ctx, teacher.ID, &models.CreateNotificationRequest{
			UserID: parent.ID,
			Title:  "n",
			Body:   "b",
		}); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	updated, err := svc.MarkAllRead(ctx, parent.ID)
	if err != nil {
		t.Fatalf("MarkAllRead failed: %v", err)
	}
	if updated != 3 {
		t.Errorf("expected 3 updated, got %d", updated)
	}

	updated, err = svc.MarkAllRead(ctx, parent.ID)
	if err != nil {
		t.Fatalf("second MarkAllRead failed: %v", err)
	}
	if updated != 0 {
		t.Errorf("second pass should update 0, got %d", updated)
	}

	count, err := svc.UnreadCount(ctx, parent.ID)
	if err != nil {
		t.Fatalf("UnreadCount failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected 0 unread, got %d", count)
	}
}

func TestNotificationDelete(t *testing.T) {
	svc, repo, _ := setupNotificationService(t)
	ctx := context.Background()

	teacher := repo.addUser("teacher", models.RoleTeacher)
	parent := repo.addUser("parent", models.RoleParent)
	other := repo.addUser("other", models.RoleParent)

	n, err := svc.Create(ctx, teacher.ID, &models.CreateNotificationRequest{
		UserID: parent.ID,
		Title:  "n",
		Body:   "b",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := svc.Delete(ctx, n.ID, other.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for foreign delete, got %v", err)
	}
	if err := svc.Delete(ctx, n.ID, parent.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := svc.Delete(ctx, n.ID, parent.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestNotificationPurgeExpired(t *testing.T) {
	svc, repo, _ := setupNotificationService(t)
	ctx := context.Background()

	parent := repo.addUser("parent", models.RoleParent)

	// Seed directly: one expired, one live, one without expiry.
	expired := time.Now().Add(-time.Hour)
	live := time.Now().Add(time.Hour)
	for _, n := range []*models.Notification{
		{UserID: parent.ID, Title: "old", Body: "b", ExpiresAt: &expired},
		{UserID: parent.ID, Title: "new", Body: "b", ExpiresAt: &live},
		{UserID: parent.ID, Title: "forever", Body: "b"},
	} {
		if err := repo.Notification().Create(ctx, nil, n); err != nil {
			t.Fatal(err)
		}
	}

	purged, err := svc.PurgeExpired(ctx)
	if err != nil {
		t.Fatalf("PurgeExpired failed: %v", err)
	}
	if purged != 1 {
		t.Errorf("expected 1 purged, got %d", purged)
	}

	remaining, err := svc.List(ctx, parent.ID)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(remaining) != 2 {
		t.Errorf("expected 2 remaining, got %d", len(remaining))
	}
}
