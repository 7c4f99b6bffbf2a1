package entities

import (
	"strings"
	"testing"
	"time"
)

func baseReminder() *Reminder {
	return &Reminder{
		ID:               7,
		Title:            "Follow up with recruiter",
		ReminderDate:     date(2025, time.March, 1),
		Type:             ReminderTypeFollowUp,
		Priority:         PriorityMedium,
		IsActive:         true,
		NotificationTime: 60,
		SyncStatus:       SyncStatusPending,
		SyncVersion:      1,
	}
}

func TestReminderValidateAggregatesAllViolations(t *testing.T) {
	badTime := "25:99"
	badPattern := "{not json"
	r := &Reminder{
		Title:             "   ",
		ReminderTime:      &badTime,
		Type:              "party",
		Priority:          "urgent-ish",
		NotificationTime:  -5,
		RecurrencePattern: &badPattern,
	}

	errs := r.Validate()
	if len(errs) != 7 {
		t.Fatalf("expected 7 violations, got %d: %v", len(errs), errs)
	}

	joined := strings.Join(errs, "; ")
	for _, want := range []string{
		"title is required",
		"reminder date is required",
		"invalid reminder time",
		"invalid reminder type",
		"invalid priority",
		"notification time must not be negative",
		"invalid recurrence pattern:",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("missing violation %q in %v", want, errs)
		}
	}
}

func TestReminderValidateAcceptsWellFormed(t *testing.T) {
	r := baseReminder()
	tm := "14:30"
	pattern := `{"type":"weekly","interval":1}`
	r.ReminderTime = &tm
	r.RecurrencePattern = &pattern

	if errs := r.Validate(); len(errs) != 0 {
		t.Fatalf("expected no violations, got %v", errs)
	}
}

func TestReminderApplyDefaults(t *testing.T) {
	now := time.Date(2025, time.March, 10, 16, 45, 0, 0, time.Local)
	r := &Reminder{Title: "Prep"}
	r.ApplyDefaults(now)

	if r.Type != ReminderTypeCustom {
		t.Errorf("expected default type custom, got %q", r.Type)
	}
	if r.Priority != PriorityMedium {
		t.Errorf("expected default priority medium, got %q", r.Priority)
	}
	if !r.ReminderDate.Equal(date(2025, time.March, 10)) {
		t.Errorf("expected default date to be today at midnight, got %v", r.ReminderDate)
	}
	if r.SyncStatus != SyncStatusPending || r.SyncVersion != 1 {
		t.Errorf("expected pending/v1 sync defaults, got %q/%d", r.SyncStatus, r.SyncVersion)
	}
}

func TestReminderCompleteReopenRoundTrip(t *testing.T) {
	r := baseReminder()
	now := time.Date(2025, time.March, 1, 10, 0, 0, 0, time.Local)
	note := "sent the email"

	r.Complete(&note, now)
	if !r.IsCompleted || r.CompletedAt == nil || r.CompletionNote == nil {
		t.Fatalf("complete did not stamp all fields: %+v", r)
	}
	if !r.CompletedAt.Equal(now) {
		t.Errorf("expected completed_at %v, got %v", now, r.CompletedAt)
	}

	later := now.Add(time.Hour)
	r.Reopen(later)
	if r.IsCompleted || r.CompletedAt != nil || r.CompletionNote != nil {
		t.Fatalf("reopen left completion state behind: %+v", r)
	}
	if !r.UpdatedAt.Equal(later) {
		t.Errorf("expected updated_at %v, got %v", later, r.UpdatedAt)
	}
}

func TestReminderOverdue(t *testing.T) {
	tm := "10:00"

	tests := []struct {
		name   string
		mutate func(*Reminder)
		now    time.Time
		want   bool
	}{
		{
			name:   "timed reminder past its minute is overdue",
			mutate: func(r *Reminder) { r.ReminderTime = &tm },
			now:    time.Date(2025, time.March, 1, 10, 1, 0, 0, time.Local),
			want:   true,
		},
		{
			name:   "timed reminder before its minute is not overdue",
			mutate: func(r *Reminder) { r.ReminderTime = &tm },
			now:    time.Date(2025, time.March, 1, 9, 59, 0, 0, time.Local),
			want:   false,
		},
		{
			name:   "all-day reminder is not overdue during its own day",
			mutate: func(r *Reminder) {},
			now:    time.Date(2025, time.March, 1, 23, 30, 0, 0, time.Local),
			want:   false,
		},
		{
			name:   "all-day reminder is overdue the next day",
			mutate: func(r *Reminder) {},
			now:    time.Date(2025, time.March, 2, 0, 30, 0, 0, time.Local),
			want:   true,
		},
		{
			name: "completed reminder is never overdue",
			mutate: func(r *Reminder) {
				r.ReminderTime = &tm
				r.IsCompleted = true
			},
			now:  time.Date(2025, time.March, 5, 12, 0, 0, 0, time.Local),
			want: false,
		},
		{
			name: "snoozed reminder is never overdue",
			mutate: func(r *Reminder) {
				r.ReminderTime = &tm
				until := time.Date(2025, time.March, 6, 0, 0, 0, 0, time.Local)
				r.SnoozeUntil = &until
			},
			now:  time.Date(2025, time.March, 5, 12, 0, 0, 0, time.Local),
			want: false,
		},
		{
			name: "expired snooze no longer shields the reminder",
			mutate: func(r *Reminder) {
				r.ReminderTime = &tm
				until := time.Date(2025, time.March, 2, 0, 0, 0, 0, time.Local)
				r.SnoozeUntil = &until
			},
			now:  time.Date(2025, time.March, 5, 12, 0, 0, 0, time.Local),
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := baseReminder()
			tt.mutate(r)
			if got := r.IsOverdue(tt.now); got != tt.want {
				t.Fatalf("IsOverdue(%v) = %t, want %t", tt.now, got, tt.want)
			}
		})
	}
}

func TestReminderDaysUntilDue(t *testing.T) {
	r := baseReminder()

	now := time.Date(2025, time.February, 28, 9, 0, 0, 0, time.Local)
	if got := r.DaysUntilDue(now); got != 1 {
		t.Fatalf("expected 1 day until the 09:00 all-day slot, got %d", got)
	}

	until := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.Local)
	r.SnoozeUntil = &until
	if got := r.DaysUntilDue(now); got != 10 {
		t.Fatalf("expected snooze deadline to drive the countdown, got %d", got)
	}
}

func TestReminderNotificationLifecycle(t *testing.T) {
	// All-day reminder on 2025-03-01 with a one-day lead becomes eligible at
	// 2025-02-28 09:00 local.
	r := baseReminder()
	r.NotificationTime = 1440

	wantNotifyAt := time.Date(2025, time.February, 28, 9, 0, 0, 0, time.Local)
	if got := r.NotificationDate(); !got.Equal(wantNotifyAt) {
		t.Fatalf("expected notification date %v, got %v", wantNotifyAt, got)
	}

	if r.ShouldNotifyNow(wantNotifyAt.Add(-time.Minute)) {
		t.Error("should not notify before the lead window opens")
	}
	if !r.ShouldNotifyNow(wantNotifyAt) {
		t.Error("should notify exactly at the lead boundary")
	}
	if !r.ShouldNotifyNow(wantNotifyAt.Add(3 * time.Hour)) {
		t.Error("should keep notifying after the boundary while open")
	}

	r.Snooze(24, wantNotifyAt)
	if r.ShouldNotifyNow(wantNotifyAt.Add(time.Hour)) {
		t.Error("snoozed reminder must not notify")
	}
	if !r.ShouldNotifyNow(wantNotifyAt.Add(25 * time.Hour)) {
		t.Error("expired snooze must notify again")
	}

	r.Unsnooze(wantNotifyAt)
	r.IsActive = false
	if r.ShouldNotifyNow(wantNotifyAt.Add(time.Hour)) {
		t.Error("inactive reminder must not notify")
	}

	r.IsActive = true
	r.Complete(nil, wantNotifyAt)
	if r.ShouldNotifyNow(wantNotifyAt.Add(time.Hour)) {
		t.Error("completed reminder must not notify")
	}
}

func TestReminderSoftDeleteRestore(t *testing.T) {
	r := baseReminder()
	now := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.Local)

	r.SoftDelete(now)
	if r.DeletedAt == nil || r.IsActive {
		t.Fatalf("soft delete should tombstone and deactivate: %+v", r)
	}

	r.Restore(now.Add(time.Hour))
	if r.DeletedAt != nil || !r.IsActive {
		t.Fatalf("restore should clear the tombstone and reactivate: %+v", r)
	}
}

func TestReminderNextOccurrence(t *testing.T) {
	pattern := `{"type":"weekly","interval":1}`
	note := "done"
	desc := "weekly check-in"
	appID := 42
	now := time.Date(2025, time.March, 8, 11, 0, 0, 0, time.Local)

	root := baseReminder()
	root.ApplicationID = &appID
	root.Description = &desc
	root.RecurrencePattern = &pattern
	root.Complete(&note, now)

	next := root.NextOccurrence(date(2025, time.March, 8), now)

	if next.ID != 0 {
		t.Errorf("next occurrence must not carry an id, got %d", next.ID)
	}
	if next.ParentReminderID == nil || *next.ParentReminderID != root.ID {
		t.Errorf("expected parent link to root %d, got %v", root.ID, next.ParentReminderID)
	}
	if next.IsCompleted || next.CompletedAt != nil || next.CompletionNote != nil {
		t.Errorf("completion state must reset: %+v", next)
	}
	if !next.AutoGenerated {
		t.Error("spawned occurrence must be marked auto-generated")
	}
	if next.ApplicationID == nil || *next.ApplicationID != appID {
		t.Errorf("application link must carry over, got %v", next.ApplicationID)
	}
	if next.RecurrencePattern == nil || *next.RecurrencePattern != pattern {
		t.Errorf("recurrence pattern must carry over, got %v", next.RecurrencePattern)
	}
	if next.SyncStatus != SyncStatusPending || next.SyncVersion != 1 {
		t.Errorf("sync state must reset to pending/v1, got %q/%d", next.SyncStatus, next.SyncVersion)
	}

	// A second-generation occurrence still points at the original root,
	// never at its immediate predecessor.
	next.ID = 99
	grandchild := next.NextOccurrence(date(2025, time.March, 15), now)
	if grandchild.ParentReminderID == nil || *grandchild.ParentReminderID != root.ID {
		t.Errorf("occurrences must not chain: expected parent %d, got %v", root.ID, grandchild.ParentReminderID)
	}
}
