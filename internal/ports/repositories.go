package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jobtrack/core/internal/domain/entities"
)

// ReminderRepository defines the interface for reminder data operations.
// GetByID returns soft-deleted rows too; List excludes them unless the filter
// says otherwise, so restore can still resolve a tombstoned reminder.
type ReminderRepository interface {
	Create(ctx context.Context, reminder *entities.Reminder) error
	GetByID(ctx context.Context, id int) (*entities.Reminder, error)
	Update(ctx context.Context, reminder *entities.Reminder) error
	HardDelete(ctx context.Context, id int) error
	List(ctx context.Context, filter ReminderFilter) ([]*entities.Reminder, int, error)
	GetByApplication(ctx context.Context, applicationID int) ([]*entities.Reminder, error)
	GetNotificationCandidates(ctx context.Context, now time.Time) ([]*entities.Reminder, error)
}

// ApplicationRepository defines the interface for application data operations
type ApplicationRepository interface {
	Create(ctx context.Context, app *entities.Application) error
	GetByID(ctx context.Context, id int) (*entities.Application, error)
	Update(ctx context.Context, app *entities.Application) error
	HardDelete(ctx context.Context, id int) error
	List(ctx context.Context, filter ApplicationFilter) ([]*entities.Application, int, error)
	AddStatusChange(ctx context.Context, change *entities.StatusChange) error
	GetStatusHistory(ctx context.Context, applicationID int) ([]*entities.StatusChange, error)
}

// NotificationLogRepository appends and reads delivery history
type NotificationLogRepository interface {
	Create(ctx context.Context, log *entities.NotificationLog) error
	GetByReminder(ctx context.Context, reminderID int) ([]*entities.NotificationLog, error)
}

// SyncQueue appends change records for best-effort remote synchronization.
// Enqueue failures must never be allowed to fail the triggering operation.
type SyncQueue interface {
	Enqueue(ctx context.Context, entityKind string, entityID int, operation string, payload []byte) error
	PendingCount(ctx context.Context) (int, error)
}

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *entities.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error)
	GetByEmail(ctx context.Context, email string) (*entities.User, error)
	Update(ctx context.Context, user *entities.User) error
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

// AuthRepository defines the interface for refresh-token storage
type AuthRepository interface {
	CreateRefreshToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error
	GetRefreshToken(ctx context.Context, tokenHash string) (*entities.RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, tokenHash string) error
	RevokeAllUserTokens(ctx context.Context, userID uuid.UUID) error
	CleanupExpiredTokens(ctx context.Context) error
}

// Filter types for repository queries

// ReminderFilter narrows reminder listings. When Overdue is set the query
// must match entities.Reminder.IsOverdue evaluated at Now, including the
// snooze exclusion, so store-level and in-memory overdue logic never drift.
type ReminderFilter struct {
	ApplicationID  *int
	Completed      *bool
	Priority       *entities.Priority
	Type           *entities.ReminderType
	DateFrom       *time.Time
	DateTo         *time.Time
	Overdue        bool
	Now            time.Time
	IncludeDeleted bool
	Limit          int
	Offset         int
}

type ApplicationFilter struct {
	Status   *entities.ApplicationStatus
	Company  *string
	Search   *string
	OpenOnly bool
	Limit    int
	Offset   int
}
