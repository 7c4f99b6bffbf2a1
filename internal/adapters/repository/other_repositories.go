package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jobtrack/core/internal/domain/entities"
	"github.com/jobtrack/core/internal/ports"
)

// NotificationLogRepositoryImpl implements the NotificationLogRepository interface
type NotificationLogRepositoryImpl struct {
	db *sqlx.DB
}

// NewNotificationLogRepository creates a new notification log repository
func NewNotificationLogRepository(db *sqlx.DB) ports.NotificationLogRepository {
	return &NotificationLogRepositoryImpl{db: db}
}

func (r *NotificationLogRepositoryImpl) Create(ctx context.Context, log *entities.NotificationLog) error {
	query := `
		INSERT INTO notification_log (reminder_id, channel, status, recipient, error, sent_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	err := r.db.QueryRowContext(ctx, query,
		log.ReminderID, log.Channel, log.Status, log.Recipient, log.Error, log.SentAt,
	).Scan(&log.ID)

	if err != nil {
		return fmt.Errorf("create notification log: %w", err)
	}

	return nil
}

func (r *NotificationLogRepositoryImpl) GetByReminder(ctx context.Context, reminderID int) ([]*entities.NotificationLog, error) {
	query := `
		SELECT id, reminder_id, channel, status, recipient, error, sent_at
		FROM notification_log
		WHERE reminder_id = $1
		ORDER BY sent_at DESC, id DESC`

	var logs []*entities.NotificationLog
	if err := r.db.SelectContext(ctx, &logs, query, reminderID); err != nil {
		return nil, fmt.Errorf("get notification log by reminder: %w", err)
	}

	return logs, nil
}

// SyncQueueRepositoryImpl implements the SyncQueue interface
type SyncQueueRepositoryImpl struct {
	db *sqlx.DB
}

// NewSyncQueueRepository creates a new sync queue repository
func NewSyncQueueRepository(db *sqlx.DB) ports.SyncQueue {
	return &SyncQueueRepositoryImpl{db: db}
}

func (r *SyncQueueRepositoryImpl) Enqueue(ctx context.Context, entityKind string, entityID int, operation string, payload []byte) error {
	query := `
		INSERT INTO sync_queue (entity_kind, entity_id, operation, payload, retry_count, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, 0, 'pending', $5, $5)`

	_, err := r.db.ExecContext(ctx, query, entityKind, entityID, operation, payload, time.Now())
	if err != nil {
		return fmt.Errorf("enqueue sync record: %w", err)
	}

	return nil
}

func (r *SyncQueueRepositoryImpl) PendingCount(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*) FROM sync_queue WHERE status = 'pending'`

	var count int
	if err := r.db.GetContext(ctx, &count, query); err != nil {
		return 0, fmt.Errorf("count pending sync records: %w", err)
	}

	return count, nil
}
