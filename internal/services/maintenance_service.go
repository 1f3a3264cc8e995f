package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/edubridge/engagement-service/internal/repositories"
)

// DefaultSweepInterval is how often the background sweep runs.
const DefaultSweepInterval = time.Hour

// maintenanceService implements MaintenanceService
type maintenanceService struct {
	repo          repositories.Repository
	notifications NotificationService
	logger        *slog.Logger
	interval      time.Duration
}

// NewMaintenanceService creates the background cleanup service.
func NewMaintenanceService(
	repo repositories.Repository,
	notifications NotificationService,
	logger *slog.Logger,
	interval time.Duration,
) MaintenanceService {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}

	return &maintenanceService{
		repo:          repo,
		notifications: notifications,
		logger:        logger,
		interval:      interval,
	}
}

// PurgeExpiredNotifications removes notifications past their expiry.
func (s *maintenanceService) PurgeExpiredNotifications(ctx context.Context) (int64, error) {
	return s.notifications.PurgeExpired(ctx)
}

// RemoveDeletedMessages hard-deletes messages both sides have removed.
func (s *maintenanceService) RemoveDeletedMessages(ctx context.Context) (int64, error) {
	removed, err := s.repo.Message().DeleteRemovable(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to remove deleted messages: %w", err)
	}

	if removed > 0 {
		s.logger.Info("Removed fully deleted messages", "count", removed)
	}

	return removed, nil
}

// Run sweeps on a ticker until ctx is cancelled. One failing sweep
// never stops the loop.
func (s *maintenanceService) Run(ctx context.Context) {
	s.logger.Info("Maintenance sweep started", "interval", s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Maintenance sweep stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *maintenanceService) sweep(ctx context.Context) {
	sweepCtx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	if _, err := s.PurgeExpiredNotifications(sweepCtx); err != nil {
		s.logger.Error("Notification purge failed", "error", err)
	}

	if _, err := s.RemoveDeletedMessages(sweepCtx); err != nil {
		s.logger.Error("Message cleanup failed", "error", err)
	}
}
