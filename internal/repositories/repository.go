package repositories

import "context"

// Repository aggregates all entity repositories
type Repository interface {
	// Account domain
	User() UserRepository
	Student() StudentRepository

	// Engagement domain
	Message() MessageRepository
	Notification() NotificationRepository

	// Academics domain
	Progress() ProgressRepository

	// Library domain
	Resource() ResourceRepository

	// Transaction support
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager interface for managing repository lifecycle
type RepositoryManager interface {
	// Initialize repositories with database connections
	Initialize() error

	// Get repository instance
	GetRepository() Repository

	// Health check for all repositories
	HealthCheck(ctx context.Context) error

	// Graceful shutdown
	Shutdown(ctx context.Context) error
}
