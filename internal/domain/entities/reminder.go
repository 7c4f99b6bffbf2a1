package entities

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Default hour for all-day reminders. A reminder without a wall-clock time is
// evaluated as due at 09:00 local for notification purposes.
const (
	AllDayHour   = 9
	AllDayMinute = 0
)

// Sync statuses carried opaquely for the remote-copy reconciliation that is
// out of scope here.
const (
	SyncStatusPending = "pending"
	SyncStatusSynced  = "synced"
)

// Reminder represents a reminder attached to the tracker, optionally linked
// to an application. The application link is a weak reference: a foreign-key
// id only, no ownership.
type Reminder struct {
	ID                       int          `json:"id" db:"id"`
	ApplicationID            *int         `json:"application_id" db:"application_id"`
	Title                    string       `json:"title" db:"title"`
	Description              *string      `json:"description" db:"description"`
	ReminderDate             time.Time    `json:"reminder_date" db:"reminder_date"`
	ReminderTime             *string      `json:"reminder_time" db:"reminder_time"` // HH:MM, nil = all-day
	Type                     ReminderType `json:"reminder_type" db:"reminder_type"`
	Priority                 Priority     `json:"priority" db:"priority"`
	IsCompleted              bool         `json:"is_completed" db:"is_completed"`
	CompletedAt              *time.Time   `json:"completed_at" db:"completed_at"`
	CompletionNote           *string      `json:"completion_note" db:"completion_note"`
	IsActive                 bool         `json:"is_active" db:"is_active"`
	DeletedAt                *time.Time   `json:"deleted_at" db:"deleted_at"`
	EmailNotificationEnabled bool         `json:"email_notification_enabled" db:"email_notification_enabled"`
	NotificationTime         int          `json:"notification_time" db:"notification_time"` // minutes before due
	RecurrencePattern        *string      `json:"recurrence_pattern" db:"recurrence_pattern"`
	ParentReminderID         *int         `json:"parent_reminder_id" db:"parent_reminder_id"`
	AutoGenerated            bool         `json:"auto_generated" db:"auto_generated"`
	SnoozeUntil              *time.Time   `json:"snooze_until" db:"snooze_until"`
	CreatedAt                time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt                time.Time    `json:"updated_at" db:"updated_at"`
	SyncStatus               string       `json:"sync_status" db:"sync_status"`
	SyncVersion              int          `json:"sync_version" db:"sync_version"`
}

// ApplyDefaults fills the zero-valued fields a partially constructed reminder
// is allowed to omit. Boolean and notification defaults (is_active, email
// notifications, 60-minute lead time) are applied at the request boundary
// where "unset" is still distinguishable from "false"/"zero".
func (r *Reminder) ApplyDefaults(now time.Time) {
	if r.Type == "" {
		r.Type = ReminderTypeCustom
	}
	if r.Priority == "" {
		r.Priority = PriorityMedium
	}
	if r.ReminderDate.IsZero() {
		r.ReminderDate = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	}
	if r.SyncStatus == "" {
		r.SyncStatus = SyncStatusPending
	}
	if r.SyncVersion == 0 {
		r.SyncVersion = 1
	}
}

// Validate checks every business rule and returns the full list of
// violations. An empty slice means the reminder is valid.
func (r *Reminder) Validate() []string {
	var errs []string

	if strings.TrimSpace(r.Title) == "" {
		errs = append(errs, "title is required")
	}
	if r.ReminderDate.IsZero() {
		errs = append(errs, "reminder date is required")
	}
	if r.ReminderTime != nil {
		if _, err := time.Parse(TimeFormat, *r.ReminderTime); err != nil {
			errs = append(errs, fmt.Sprintf("invalid reminder time %q (expected HH:MM)", *r.ReminderTime))
		}
	}
	if !r.Type.IsValid() {
		errs = append(errs, fmt.Sprintf("invalid reminder type %q", r.Type))
	}
	if !r.Priority.IsValid() {
		errs = append(errs, fmt.Sprintf("invalid priority %q", r.Priority))
	}
	if r.NotificationTime < 0 {
		errs = append(errs, "notification time must not be negative")
	}
	if r.RecurrencePattern != nil && *r.RecurrencePattern != "" {
		if _, err := ParseRecurrencePattern(*r.RecurrencePattern); err != nil {
			errs = append(errs, fmt.Sprintf("invalid recurrence pattern: %v", err))
		}
	}

	return errs
}

// IsRecurring reports whether a recurrence pattern is attached. The pattern
// may still fail to parse; Validate catches that case.
func (r *Reminder) IsRecurring() bool {
	return r.RecurrencePattern != nil && *r.RecurrencePattern != ""
}

// Recurrence returns the parsed recurrence pattern, or nil for non-recurring
// reminders. A malformed pattern is a validation error, never a silent
// fallback to non-recurring.
func (r *Reminder) Recurrence() (*RecurrencePattern, error) {
	if !r.IsRecurring() {
		return nil, nil
	}
	return ParseRecurrencePattern(*r.RecurrencePattern)
}

// EffectiveDate combines the reminder date with its wall-clock time. All-day
// reminders evaluate at the default 09:00 local.
func (r *Reminder) EffectiveDate() time.Time {
	hour, minute := AllDayHour, AllDayMinute
	if r.ReminderTime != nil {
		if t, err := time.Parse(TimeFormat, *r.ReminderTime); err == nil {
			hour, minute = t.Hour(), t.Minute()
		}
	}
	d := r.ReminderDate
	return time.Date(d.Year(), d.Month(), d.Day(), hour, minute, 0, 0, time.Local)
}

// NotificationDate is the instant the reminder becomes eligible for
// notification: the effective date minus the configured lead time.
func (r *Reminder) NotificationDate() time.Time {
	return r.EffectiveDate().Add(-time.Duration(r.NotificationTime) * time.Minute)
}

// IsSnoozed reports whether the reminder is deferred at the given instant.
func (r *Reminder) IsSnoozed(now time.Time) bool {
	return r.SnoozeUntil != nil && r.SnoozeUntil.After(now)
}

// IsOverdue reports whether the reminder's due moment has passed. Snoozed and
// completed reminders are never overdue. All-day reminders compare by
// calendar date only, so they do not become overdue during their own day.
func (r *Reminder) IsOverdue(now time.Time) bool {
	if r.IsCompleted || r.IsSnoozed(now) {
		return false
	}
	if r.ReminderTime != nil {
		return r.EffectiveDate().Before(now)
	}
	due := r.ReminderDate
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, due.Location())
	return time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, due.Location()).Before(today)
}

// IsDueToday reports whether the reminder falls on the same local calendar
// day as now, unless completed or snoozed.
func (r *Reminder) IsDueToday(now time.Time) bool {
	if r.IsCompleted || r.IsSnoozed(now) {
		return false
	}
	y1, m1, d1 := r.ReminderDate.Date()
	y2, m2, d2 := now.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// DaysUntilDue returns the ceiling of the remaining time in days. While
// snoozed the snooze deadline replaces the reminder date.
func (r *Reminder) DaysUntilDue(now time.Time) int {
	target := r.EffectiveDate()
	if r.IsSnoozed(now) {
		target = *r.SnoozeUntil
	}
	return int(math.Ceil(target.Sub(now).Hours() / 24))
}

// ShouldNotifyNow reports whether the notify-at instant has been reached for
// an active, open, non-snoozed reminder.
func (r *Reminder) ShouldNotifyNow(now time.Time) bool {
	if r.IsCompleted || !r.IsActive || r.IsSnoozed(now) {
		return false
	}
	return !now.Before(r.NotificationDate())
}

// Complete marks the reminder done and stamps the completion moment.
func (r *Reminder) Complete(note *string, now time.Time) {
	r.IsCompleted = true
	r.CompletedAt = &now
	r.CompletionNote = note
	r.UpdatedAt = now
}

// Reopen reverses Complete, clearing every completion field.
func (r *Reminder) Reopen(now time.Time) {
	r.IsCompleted = false
	r.CompletedAt = nil
	r.CompletionNote = nil
	r.UpdatedAt = now
}

// Snooze defers due/overdue/notification evaluation for the given number of
// hours from now.
func (r *Reminder) Snooze(hours int, now time.Time) {
	until := now.Add(time.Duration(hours) * time.Hour)
	r.SnoozeUntil = &until
	r.UpdatedAt = now
}

// Unsnooze clears an active snooze.
func (r *Reminder) Unsnooze(now time.Time) {
	r.SnoozeUntil = nil
	r.UpdatedAt = now
}

// SoftDelete tombstones the reminder without removing the row.
func (r *Reminder) SoftDelete(now time.Time) {
	r.DeletedAt = &now
	r.IsActive = false
	r.UpdatedAt = now
}

// Restore reverses a soft delete.
func (r *Reminder) Restore(now time.Time) {
	r.DeletedAt = nil
	r.IsActive = true
	r.UpdatedAt = now
}

// NextOccurrence builds the follow-up reminder spawned when a recurring
// reminder is completed: every field copied except identity, dates
// (advanced), completion state (reset) and the parent link, which always
// points at the root template so occurrences never chain.
func (r *Reminder) NextOccurrence(nextDate time.Time, now time.Time) *Reminder {
	parentID := r.ID
	if r.ParentReminderID != nil {
		parentID = *r.ParentReminderID
	}

	next := *r
	next.ID = 0
	next.ReminderDate = nextDate
	next.IsCompleted = false
	next.CompletedAt = nil
	next.CompletionNote = nil
	next.SnoozeUntil = nil
	next.ParentReminderID = &parentID
	next.AutoGenerated = true
	next.CreatedAt = now
	next.UpdatedAt = now
	next.SyncStatus = SyncStatusPending
	next.SyncVersion = 1
	return &next
}
