package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jobtrack/core/internal/domain/entities"
	"github.com/jobtrack/core/internal/infrastructure/logger"
	"github.com/jobtrack/core/internal/ports"
)

const defaultNotificationLeadMinutes = 60

// ReminderService handles the reminder lifecycle
type ReminderService struct {
	reminderRepo ports.ReminderRepository
	appRepo      ports.ApplicationRepository
	notifLogRepo ports.NotificationLogRepository
	syncQueue    ports.SyncQueue
	logger       *logger.Logger
}

// NewReminderService creates a new reminder service
func NewReminderService(
	reminderRepo ports.ReminderRepository,
	appRepo ports.ApplicationRepository,
	notifLogRepo ports.NotificationLogRepository,
	syncQueue ports.SyncQueue,
	logger *logger.Logger,
) *ReminderService {
	return &ReminderService{
		reminderRepo: reminderRepo,
		appRepo:      appRepo,
		notifLogRepo: notifLogRepo,
		syncQueue:    syncQueue,
		logger:       logger,
	}
}

// CreateReminder validates and persists a new reminder
func (s *ReminderService) CreateReminder(ctx context.Context, req ports.CreateReminderRequest) (*entities.Reminder, error) {
	now := time.Now()

	// Verify the linked application exists if provided
	if req.ApplicationID != nil {
		if _, err := s.appRepo.GetByID(ctx, *req.ApplicationID); err != nil {
			return nil, fmt.Errorf("application not found: %w", err)
		}
	}

	reminder := &entities.Reminder{
		ApplicationID:            req.ApplicationID,
		Title:                    req.Title,
		Description:              req.Description,
		ReminderTime:             req.ReminderTime,
		Type:                     req.Type,
		Priority:                 req.Priority,
		IsActive:                 true,
		EmailNotificationEnabled: true,
		NotificationTime:         defaultNotificationLeadMinutes,
		RecurrencePattern:        normalizePattern(req.RecurrencePattern),
		CreatedAt:                now,
		UpdatedAt:                now,
	}

	if req.ReminderDate != "" {
		date, err := time.ParseInLocation(entities.DateFormat, req.ReminderDate, time.Local)
		if err != nil {
			return nil, entities.NewValidationError([]string{
				fmt.Sprintf("invalid reminder date %q (expected YYYY-MM-DD)", req.ReminderDate),
			})
		}
		reminder.ReminderDate = date
	}
	if req.IsActive != nil {
		reminder.IsActive = *req.IsActive
	}
	if req.EmailNotificationEnabled != nil {
		reminder.EmailNotificationEnabled = *req.EmailNotificationEnabled
	}
	if req.NotificationTime != nil {
		reminder.NotificationTime = *req.NotificationTime
	}

	reminder.ApplyDefaults(now)

	if errs := reminder.Validate(); len(errs) > 0 {
		return nil, entities.NewValidationError(errs)
	}

	if err := s.reminderRepo.Create(ctx, reminder); err != nil {
		return nil, fmt.Errorf("failed to create reminder: %w", err)
	}

	s.enqueueSync(ctx, reminder, entities.SyncOpCreate)
	s.logger.Info("Reminder created successfully", "reminder_id", reminder.ID, "title", reminder.Title)

	return reminder, nil
}

// GetReminder retrieves a reminder by ID. Soft-deleted reminders are hidden.
func (s *ReminderService) GetReminder(ctx context.Context, id int) (*entities.Reminder, error) {
	reminder, err := s.reminderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if reminder.DeletedAt != nil {
		return nil, entities.ErrReminderNotFound
	}

	return reminder, nil
}

// UpdateReminder merges the provided fields into the stored reminder and
// revalidates the result, so a partial update can never produce an invalid row.
func (s *ReminderService) UpdateReminder(ctx context.Context, id int, req ports.UpdateReminderRequest) (*entities.Reminder, error) {
	reminder, err := s.GetReminder(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.ApplicationID != nil {
		if _, err := s.appRepo.GetByID(ctx, *req.ApplicationID); err != nil {
			return nil, fmt.Errorf("application not found: %w", err)
		}
		reminder.ApplicationID = req.ApplicationID
	}
	if req.Title != nil {
		reminder.Title = *req.Title
	}
	if req.Description != nil {
		reminder.Description = req.Description
	}
	if req.ReminderDate != nil {
		date, err := time.ParseInLocation(entities.DateFormat, *req.ReminderDate, time.Local)
		if err != nil {
			return nil, entities.NewValidationError([]string{
				fmt.Sprintf("invalid reminder date %q (expected YYYY-MM-DD)", *req.ReminderDate),
			})
		}
		reminder.ReminderDate = date
	}
	if req.ReminderTime != nil {
		reminder.ReminderTime = req.ReminderTime
	}
	if req.Type != nil {
		reminder.Type = *req.Type
	}
	if req.Priority != nil {
		reminder.Priority = *req.Priority
	}
	if req.IsActive != nil {
		reminder.IsActive = *req.IsActive
	}
	if req.EmailNotificationEnabled != nil {
		reminder.EmailNotificationEnabled = *req.EmailNotificationEnabled
	}
	if req.NotificationTime != nil {
		reminder.NotificationTime = *req.NotificationTime
	}
	if req.RecurrencePattern != nil {
		reminder.RecurrencePattern = normalizePattern(req.RecurrencePattern)
	}

	if errs := reminder.Validate(); len(errs) > 0 {
		return nil, entities.NewValidationError(errs)
	}

	reminder.UpdatedAt = time.Now()
	reminder.SyncStatus = entities.SyncStatusPending
	reminder.SyncVersion++

	if err := s.reminderRepo.Update(ctx, reminder); err != nil {
		return nil, fmt.Errorf("failed to update reminder: %w", err)
	}

	s.enqueueSync(ctx, reminder, entities.SyncOpUpdate)
	s.logger.Info("Reminder updated successfully", "reminder_id", reminder.ID)

	return reminder, nil
}

// DeleteReminder tombstones a reminder; the row survives for restore.
func (s *ReminderService) DeleteReminder(ctx context.Context, id int) error {
	reminder, err := s.GetReminder(ctx, id)
	if err != nil {
		return err
	}

	reminder.SoftDelete(time.Now())
	reminder.SyncStatus = entities.SyncStatusPending
	reminder.SyncVersion++

	if err := s.reminderRepo.Update(ctx, reminder); err != nil {
		return fmt.Errorf("failed to delete reminder: %w", err)
	}

	s.enqueueSync(ctx, reminder, entities.SyncOpDelete)
	s.logger.Info("Reminder deleted successfully", "reminder_id", id)

	return nil
}

// HardDeleteReminder removes the row permanently
func (s *ReminderService) HardDeleteReminder(ctx context.Context, id int) error {
	reminder, err := s.reminderRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	// Queue the delete before the row disappears; the payload is the last
	// known state the remote side can reconcile against.
	s.enqueueSync(ctx, reminder, entities.SyncOpDelete)

	if err := s.reminderRepo.HardDelete(ctx, id); err != nil {
		return fmt.Errorf("failed to hard delete reminder: %w", err)
	}

	s.logger.Info("Reminder permanently deleted", "reminder_id", id)

	return nil
}

// RestoreReminder reverses a soft delete
func (s *ReminderService) RestoreReminder(ctx context.Context, id int) (*entities.Reminder, error) {
	reminder, err := s.reminderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if reminder.DeletedAt == nil {
		return reminder, nil
	}

	reminder.Restore(time.Now())
	reminder.SyncStatus = entities.SyncStatusPending
	reminder.SyncVersion++

	if err := s.reminderRepo.Update(ctx, reminder); err != nil {
		return nil, fmt.Errorf("failed to restore reminder: %w", err)
	}

	s.enqueueSync(ctx, reminder, entities.SyncOpUpdate)
	s.logger.Info("Reminder restored successfully", "reminder_id", id)

	return reminder, nil
}

// ListReminders retrieves reminders with filtering and pagination
func (s *ReminderService) ListReminders(ctx context.Context, filter ports.ReminderFilter) ([]*entities.Reminder, int, error) {
	if filter.Overdue && filter.Now.IsZero() {
		filter.Now = time.Now()
	}

	reminders, total, err := s.reminderRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list reminders: %w", err)
	}

	return reminders, total, nil
}

// GetUpcomingReminders returns open reminders due within the given number of
// days, today included.
func (s *ReminderService) GetUpcomingReminders(ctx context.Context, days int) ([]*entities.Reminder, error) {
	if days <= 0 {
		days = 7
	}

	now := time.Now()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	to := from.AddDate(0, 0, days)
	completed := false

	reminders, _, err := s.reminderRepo.List(ctx, ports.ReminderFilter{
		Completed: &completed,
		DateFrom:  &from,
		DateTo:    &to,
		Limit:     200,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get upcoming reminders: %w", err)
	}

	return reminders, nil
}

// GetOverdueReminders returns open, unsnoozed reminders whose due moment has passed
func (s *ReminderService) GetOverdueReminders(ctx context.Context) ([]*entities.Reminder, error) {
	reminders, _, err := s.reminderRepo.List(ctx, ports.ReminderFilter{
		Overdue: true,
		Now:     time.Now(),
		Limit:   200,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get overdue reminders: %w", err)
	}

	return reminders, nil
}

// GetTodayReminders returns open reminders falling on the current local day
func (s *ReminderService) GetTodayReminders(ctx context.Context) ([]*entities.Reminder, error) {
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	completed := false

	reminders, _, err := s.reminderRepo.List(ctx, ports.ReminderFilter{
		Completed: &completed,
		DateFrom:  &today,
		DateTo:    &today,
		Limit:     200,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get today reminders: %w", err)
	}

	return reminders, nil
}

// GetApplicationReminders returns all live reminders linked to an application
func (s *ReminderService) GetApplicationReminders(ctx context.Context, applicationID int) ([]*entities.Reminder, error) {
	if _, err := s.appRepo.GetByID(ctx, applicationID); err != nil {
		return nil, err
	}

	reminders, err := s.reminderRepo.GetByApplication(ctx, applicationID)
	if err != nil {
		return nil, fmt.Errorf("failed to get application reminders: %w", err)
	}

	return reminders, nil
}

// CompleteReminder marks a reminder done. Completing a recurring reminder
// spawns the next occurrence; a spawn failure is logged but never rolls back
// the completion itself.
func (s *ReminderService) CompleteReminder(ctx context.Context, id int, note *string) (*entities.Reminder, error) {
	reminder, err := s.GetReminder(ctx, id)
	if err != nil {
		return nil, err
	}
	if reminder.IsCompleted {
		return reminder, nil
	}

	now := time.Now()
	reminder.Complete(note, now)
	reminder.SyncStatus = entities.SyncStatusPending
	reminder.SyncVersion++

	if err := s.reminderRepo.Update(ctx, reminder); err != nil {
		return nil, fmt.Errorf("failed to complete reminder: %w", err)
	}

	s.enqueueSync(ctx, reminder, entities.SyncOpUpdate)
	s.logger.Info("Reminder completed successfully", "reminder_id", reminder.ID)

	s.spawnNextOccurrence(ctx, reminder, now)

	return reminder, nil
}

// spawnNextOccurrence creates the follow-up for a completed recurring
// reminder. Best effort: any failure here is reported through logs only.
func (s *ReminderService) spawnNextOccurrence(ctx context.Context, reminder *entities.Reminder, now time.Time) {
	pattern, err := reminder.Recurrence()
	if err != nil {
		s.logger.Warn("Skipping recurrence for malformed pattern", "reminder_id", reminder.ID, "error", err)
		return
	}
	if pattern == nil {
		return
	}

	nextDate := pattern.NextOccurrence(reminder.ReminderDate)
	if nextDate == nil {
		s.logger.Info("Recurrence series ended", "reminder_id", reminder.ID)
		return
	}

	next := reminder.NextOccurrence(*nextDate, now)
	if err := s.reminderRepo.Create(ctx, next); err != nil {
		s.logger.Warn("Failed to create next occurrence", "reminder_id", reminder.ID, "error", err)
		return
	}

	s.enqueueSync(ctx, next, entities.SyncOpCreate)
	s.logger.Info("Next occurrence created", "reminder_id", reminder.ID, "next_id", next.ID,
		"next_date", nextDate.Format(entities.DateFormat))
}

// ReopenReminder reverses a completion
func (s *ReminderService) ReopenReminder(ctx context.Context, id int) (*entities.Reminder, error) {
	reminder, err := s.GetReminder(ctx, id)
	if err != nil {
		return nil, err
	}
	if !reminder.IsCompleted {
		return reminder, nil
	}

	reminder.Reopen(time.Now())
	reminder.SyncStatus = entities.SyncStatusPending
	reminder.SyncVersion++

	if err := s.reminderRepo.Update(ctx, reminder); err != nil {
		return nil, fmt.Errorf("failed to reopen reminder: %w", err)
	}

	s.enqueueSync(ctx, reminder, entities.SyncOpUpdate)
	s.logger.Info("Reminder reopened successfully", "reminder_id", id)

	return reminder, nil
}

// SnoozeReminder defers a reminder for the given number of hours
func (s *ReminderService) SnoozeReminder(ctx context.Context, id int, hours int) (*entities.Reminder, error) {
	if hours <= 0 {
		return nil, entities.NewValidationError([]string{"snooze hours must be positive"})
	}

	reminder, err := s.GetReminder(ctx, id)
	if err != nil {
		return nil, err
	}

	reminder.Snooze(hours, time.Now())
	reminder.SyncStatus = entities.SyncStatusPending
	reminder.SyncVersion++

	if err := s.reminderRepo.Update(ctx, reminder); err != nil {
		return nil, fmt.Errorf("failed to snooze reminder: %w", err)
	}

	s.enqueueSync(ctx, reminder, entities.SyncOpUpdate)
	s.logger.Info("Reminder snoozed successfully", "reminder_id", id, "hours", hours)

	return reminder, nil
}

// UnsnoozeReminder clears an active snooze
func (s *ReminderService) UnsnoozeReminder(ctx context.Context, id int) (*entities.Reminder, error) {
	reminder, err := s.GetReminder(ctx, id)
	if err != nil {
		return nil, err
	}
	if reminder.SnoozeUntil == nil {
		return reminder, nil
	}

	reminder.Unsnooze(time.Now())
	reminder.SyncStatus = entities.SyncStatusPending
	reminder.SyncVersion++

	if err := s.reminderRepo.Update(ctx, reminder); err != nil {
		return nil, fmt.Errorf("failed to unsnooze reminder: %w", err)
	}

	s.enqueueSync(ctx, reminder, entities.SyncOpUpdate)
	s.logger.Info("Reminder unsnoozed successfully", "reminder_id", id)

	return reminder, nil
}

// AutoGenerateReminders evaluates the built-in templates against an
// application and creates the reminders that do not already exist. The call
// is idempotent: an open auto-generated reminder with the same application,
// type and title suppresses its template on later runs.
func (s *ReminderService) AutoGenerateReminders(ctx context.Context, applicationID int) ([]*entities.Reminder, error) {
	app, err := s.appRepo.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	existing, err := s.reminderRepo.GetByApplication(ctx, applicationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load existing reminders: %w", err)
	}

	now := time.Now()
	var created []*entities.Reminder

	for _, tmpl := range entities.DefaultReminderTemplates() {
		if !tmpl.Matches(app) {
			continue
		}
		due, ok := tmpl.DueDate(app, now)
		if !ok {
			continue
		}

		title := tmpl.Render(tmpl.Title, app)
		if hasOpenGenerated(existing, tmpl.Type, title) {
			continue
		}

		description := tmpl.Render(tmpl.Description, app)
		reminder := &entities.Reminder{
			ApplicationID:            &app.ID,
			Title:                    title,
			Description:              &description,
			ReminderDate:             due,
			Type:                     tmpl.Type,
			Priority:                 tmpl.Priority,
			IsActive:                 true,
			EmailNotificationEnabled: true,
			NotificationTime:         defaultNotificationLeadMinutes,
			AutoGenerated:            true,
			CreatedAt:                now,
			UpdatedAt:                now,
		}
		reminder.ApplyDefaults(now)

		if err := s.reminderRepo.Create(ctx, reminder); err != nil {
			s.logger.Warn("Failed to auto-generate reminder", "application_id", applicationID,
				"template", tmpl.Key, "error", err)
			continue
		}

		s.enqueueSync(ctx, reminder, entities.SyncOpCreate)
		created = append(created, reminder)
	}

	if len(created) > 0 {
		s.logger.Info("Reminders auto-generated successfully", "application_id", applicationID,
			"count", len(created))
	}

	return created, nil
}

func hasOpenGenerated(reminders []*entities.Reminder, reminderType entities.ReminderType, title string) bool {
	for _, r := range reminders {
		if r.AutoGenerated && !r.IsCompleted && r.DeletedAt == nil &&
			r.Type == reminderType && r.Title == title {
			return true
		}
	}
	return false
}

// GetRemindersNeedingNotification returns every reminder whose notify-at
// instant has been reached. The store prefilters on flags and snooze; the
// per-reminder lead-time arithmetic happens here.
func (s *ReminderService) GetRemindersNeedingNotification(ctx context.Context, now time.Time) ([]*entities.Reminder, error) {
	candidates, err := s.reminderRepo.GetNotificationCandidates(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("failed to get notification candidates: %w", err)
	}

	due := make([]*entities.Reminder, 0, len(candidates))
	for _, r := range candidates {
		if r.ShouldNotifyNow(now) {
			due = append(due, r)
		}
	}

	return due, nil
}

// LogNotification appends one delivery attempt to the notification history
func (s *ReminderService) LogNotification(ctx context.Context, req ports.LogNotificationRequest) error {
	log := &entities.NotificationLog{
		ReminderID: req.ReminderID,
		Channel:    req.Channel,
		Status:     req.Status,
		Recipient:  req.Recipient,
		Error:      req.Error,
		SentAt:     time.Now(),
	}

	if err := s.notifLogRepo.Create(ctx, log); err != nil {
		return fmt.Errorf("failed to log notification: %w", err)
	}

	return nil
}

// GetNotificationHistory returns the delivery attempts recorded for a reminder
func (s *ReminderService) GetNotificationHistory(ctx context.Context, reminderID int) ([]*entities.NotificationLog, error) {
	if _, err := s.reminderRepo.GetByID(ctx, reminderID); err != nil {
		return nil, err
	}

	logs, err := s.notifLogRepo.GetByReminder(ctx, reminderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get notification history: %w", err)
	}

	return logs, nil
}

// enqueueSync queues a change record for the remote copy. Sync is strictly
// best effort; a queue failure only produces a warning.
func (s *ReminderService) enqueueSync(ctx context.Context, reminder *entities.Reminder, op string) {
	payload, err := json.Marshal(reminder)
	if err != nil {
		s.logger.Warn("Failed to marshal reminder for sync", "reminder_id", reminder.ID, "error", err)
		return
	}

	if err := s.syncQueue.Enqueue(ctx, "reminder", reminder.ID, op, payload); err != nil {
		s.logger.Warn("Failed to enqueue sync record", "reminder_id", reminder.ID,
			"operation", op, "error", err)
	}
}

// normalizePattern treats an empty pattern string as "no recurrence"
func normalizePattern(pattern *string) *string {
	if pattern == nil || *pattern == "" {
		return nil
	}
	return pattern
}
