package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jobtrack/core/internal/domain/entities"
	"github.com/jobtrack/core/internal/ports"
)

const reminderColumns = `id, application_id, title, description, reminder_date, reminder_time,
		reminder_type, priority, is_completed, completed_at, completion_note, is_active,
		deleted_at, email_notification_enabled, notification_time, recurrence_pattern,
		parent_reminder_id, auto_generated, snooze_until, created_at, updated_at,
		sync_status, sync_version`

// ReminderRepositoryImpl implements the ReminderRepository interface
type ReminderRepositoryImpl struct {
	db *sqlx.DB
}

// NewReminderRepository creates a new reminder repository
func NewReminderRepository(db *sqlx.DB) ports.ReminderRepository {
	return &ReminderRepositoryImpl{db: db}
}

func (r *ReminderRepositoryImpl) Create(ctx context.Context, reminder *entities.Reminder) error {
	query := `
		INSERT INTO reminders (application_id, title, description, reminder_date, reminder_time,
			reminder_type, priority, is_completed, completed_at, completion_note, is_active,
			email_notification_enabled, notification_time, recurrence_pattern,
			parent_reminder_id, auto_generated, snooze_until, created_at, updated_at,
			sync_status, sync_version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
		RETURNING id`

	err := r.db.QueryRowContext(ctx, query,
		reminder.ApplicationID, reminder.Title, reminder.Description,
		reminder.ReminderDate, reminder.ReminderTime, reminder.Type, reminder.Priority,
		reminder.IsCompleted, reminder.CompletedAt, reminder.CompletionNote, reminder.IsActive,
		reminder.EmailNotificationEnabled, reminder.NotificationTime, reminder.RecurrencePattern,
		reminder.ParentReminderID, reminder.AutoGenerated, reminder.SnoozeUntil,
		reminder.CreatedAt, reminder.UpdatedAt, reminder.SyncStatus, reminder.SyncVersion,
	).Scan(&reminder.ID)

	if err != nil {
		return fmt.Errorf("create reminder: %w", err)
	}

	return nil
}

// GetByID resolves a reminder by primary key, soft-deleted rows included.
func (r *ReminderRepositoryImpl) GetByID(ctx context.Context, id int) (*entities.Reminder, error) {
	query := `
		SELECT ` + reminderColumns + `
		FROM reminders
		WHERE id = $1`

	var reminder entities.Reminder
	err := r.db.GetContext(ctx, &reminder, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, entities.ErrReminderNotFound
		}
		return nil, fmt.Errorf("get reminder by id: %w", err)
	}

	return &reminder, nil
}

func (r *ReminderRepositoryImpl) Update(ctx context.Context, reminder *entities.Reminder) error {
	query := `
		UPDATE reminders
		SET application_id = $2, title = $3, description = $4, reminder_date = $5,
			reminder_time = $6, reminder_type = $7, priority = $8, is_completed = $9,
			completed_at = $10, completion_note = $11, is_active = $12, deleted_at = $13,
			email_notification_enabled = $14, notification_time = $15, recurrence_pattern = $16,
			parent_reminder_id = $17, auto_generated = $18, snooze_until = $19,
			updated_at = $20, sync_status = $21, sync_version = $22
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query,
		reminder.ID, reminder.ApplicationID, reminder.Title, reminder.Description,
		reminder.ReminderDate, reminder.ReminderTime, reminder.Type, reminder.Priority,
		reminder.IsCompleted, reminder.CompletedAt, reminder.CompletionNote, reminder.IsActive,
		reminder.DeletedAt, reminder.EmailNotificationEnabled, reminder.NotificationTime,
		reminder.RecurrencePattern, reminder.ParentReminderID, reminder.AutoGenerated,
		reminder.SnoozeUntil, reminder.UpdatedAt, reminder.SyncStatus, reminder.SyncVersion,
	)
	if err != nil {
		return fmt.Errorf("update reminder: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return entities.ErrReminderNotFound
	}

	return nil
}

func (r *ReminderRepositoryImpl) HardDelete(ctx context.Context, id int) error {
	query := `DELETE FROM reminders WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("hard delete reminder: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return entities.ErrReminderNotFound
	}

	return nil
}

func (r *ReminderRepositoryImpl) List(ctx context.Context, filter ports.ReminderFilter) ([]*entities.Reminder, int, error) {
	conditions := []string{}
	args := []interface{}{}
	argIndex := 1

	if !filter.IncludeDeleted {
		conditions = append(conditions, "deleted_at IS NULL")
	}
	if filter.ApplicationID != nil {
		conditions = append(conditions, fmt.Sprintf("application_id = $%d", argIndex))
		args = append(args, *filter.ApplicationID)
		argIndex++
	}
	if filter.Completed != nil {
		conditions = append(conditions, fmt.Sprintf("is_completed = $%d", argIndex))
		args = append(args, *filter.Completed)
		argIndex++
	}
	if filter.Priority != nil {
		conditions = append(conditions, fmt.Sprintf("priority = $%d", argIndex))
		args = append(args, *filter.Priority)
		argIndex++
	}
	if filter.Type != nil {
		conditions = append(conditions, fmt.Sprintf("reminder_type = $%d", argIndex))
		args = append(args, *filter.Type)
		argIndex++
	}
	if filter.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("reminder_date >= $%d", argIndex))
		args = append(args, *filter.DateFrom)
		argIndex++
	}
	if filter.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("reminder_date <= $%d", argIndex))
		args = append(args, *filter.DateTo)
		argIndex++
	}
	if filter.Overdue {
		// Mirrors Reminder.IsOverdue: open, not snoozed, and either a past
		// calendar day or a today reminder whose wall-clock time has passed.
		now := filter.Now
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		conditions = append(conditions, "is_completed = FALSE")
		conditions = append(conditions, fmt.Sprintf("(snooze_until IS NULL OR snooze_until <= $%d)", argIndex))
		args = append(args, now)
		argIndex++
		conditions = append(conditions, fmt.Sprintf(
			"(reminder_date < $%d OR (reminder_date = $%d AND reminder_time IS NOT NULL AND reminder_time < $%d))",
			argIndex, argIndex, argIndex+1))
		args = append(args, today, now.Format(entities.TimeFormat))
		argIndex += 2
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM reminders %s", whereClause)

	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count reminders: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM reminders
		%s
		ORDER BY reminder_date ASC, reminder_time ASC NULLS FIRST, id ASC
		LIMIT $%d OFFSET $%d`, reminderColumns, whereClause, argIndex, argIndex+1)
	args = append(args, limit, filter.Offset)

	var reminders []*entities.Reminder
	if err := r.db.SelectContext(ctx, &reminders, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list reminders: %w", err)
	}

	return reminders, total, nil
}

func (r *ReminderRepositoryImpl) GetByApplication(ctx context.Context, applicationID int) ([]*entities.Reminder, error) {
	query := `
		SELECT ` + reminderColumns + `
		FROM reminders
		WHERE application_id = $1 AND deleted_at IS NULL
		ORDER BY reminder_date ASC, reminder_time ASC NULLS FIRST, id ASC`

	var reminders []*entities.Reminder
	if err := r.db.SelectContext(ctx, &reminders, query, applicationID); err != nil {
		return nil, fmt.Errorf("get reminders by application: %w", err)
	}

	return reminders, nil
}

// GetNotificationCandidates prefilters on the flags the store can check
// cheaply. The per-row notify-at instant depends on the reminder's own lead
// time, so the final ShouldNotifyNow cut happens in the service.
func (r *ReminderRepositoryImpl) GetNotificationCandidates(ctx context.Context, now time.Time) ([]*entities.Reminder, error) {
	query := `
		SELECT ` + reminderColumns + `
		FROM reminders
		WHERE deleted_at IS NULL
			AND is_active = TRUE
			AND is_completed = FALSE
			AND (snooze_until IS NULL OR snooze_until <= $1)
		ORDER BY reminder_date ASC, reminder_time ASC NULLS FIRST, id ASC`

	var reminders []*entities.Reminder
	if err := r.db.SelectContext(ctx, &reminders, query, now); err != nil {
		return nil, fmt.Errorf("get notification candidates: %w", err)
	}

	return reminders, nil
}
