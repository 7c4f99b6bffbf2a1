package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jobtrack/core/internal/domain/entities"
	"github.com/jobtrack/core/internal/infrastructure/logger"
	"github.com/jobtrack/core/internal/ports"
)

// In-memory fakes for the repository ports.

type fakeReminderRepo struct {
	reminders map[int]*entities.Reminder
	nextID    int

	createCalls     int
	failCreateAfter int // fail every Create once this many have succeeded; 0 = never
}

func newFakeReminderRepo() *fakeReminderRepo {
	return &fakeReminderRepo{reminders: make(map[int]*entities.Reminder), nextID: 1}
}

func (f *fakeReminderRepo) Create(ctx context.Context, r *entities.Reminder) error {
	if f.failCreateAfter > 0 && f.createCalls >= f.failCreateAfter {
		return errors.New("storage unavailable")
	}
	f.createCalls++
	r.ID = f.nextID
	f.nextID++
	clone := *r
	f.reminders[r.ID] = &clone
	return nil
}

func (f *fakeReminderRepo) GetByID(ctx context.Context, id int) (*entities.Reminder, error) {
	r, ok := f.reminders[id]
	if !ok {
		return nil, entities.ErrReminderNotFound
	}
	clone := *r
	return &clone, nil
}

func (f *fakeReminderRepo) Update(ctx context.Context, r *entities.Reminder) error {
	if _, ok := f.reminders[r.ID]; !ok {
		return entities.ErrReminderNotFound
	}
	clone := *r
	f.reminders[r.ID] = &clone
	return nil
}

func (f *fakeReminderRepo) HardDelete(ctx context.Context, id int) error {
	if _, ok := f.reminders[id]; !ok {
		return entities.ErrReminderNotFound
	}
	delete(f.reminders, id)
	return nil
}

func (f *fakeReminderRepo) List(ctx context.Context, filter ports.ReminderFilter) ([]*entities.Reminder, int, error) {
	var out []*entities.Reminder
	for _, r := range f.reminders {
		if r.DeletedAt != nil && !filter.IncludeDeleted {
			continue
		}
		if filter.Completed != nil && r.IsCompleted != *filter.Completed {
			continue
		}
		if filter.ApplicationID != nil && (r.ApplicationID == nil || *r.ApplicationID != *filter.ApplicationID) {
			continue
		}
		if filter.Overdue && !r.IsOverdue(filter.Now) {
			continue
		}
		clone := *r
		out = append(out, &clone)
	}
	return out, len(out), nil
}

func (f *fakeReminderRepo) GetByApplication(ctx context.Context, applicationID int) ([]*entities.Reminder, error) {
	var out []*entities.Reminder
	for _, r := range f.reminders {
		if r.ApplicationID != nil && *r.ApplicationID == applicationID {
			clone := *r
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (f *fakeReminderRepo) GetNotificationCandidates(ctx context.Context, now time.Time) ([]*entities.Reminder, error) {
	var out []*entities.Reminder
	for _, r := range f.reminders {
		if r.DeletedAt != nil || !r.IsActive || r.IsCompleted {
			continue
		}
		if r.SnoozeUntil != nil && r.SnoozeUntil.After(now) {
			continue
		}
		clone := *r
		out = append(out, &clone)
	}
	return out, nil
}

type fakeAppRepo struct {
	apps map[int]*entities.Application
}

func newFakeAppRepo(apps ...*entities.Application) *fakeAppRepo {
	f := &fakeAppRepo{apps: make(map[int]*entities.Application)}
	for _, a := range apps {
		f.apps[a.ID] = a
	}
	return f
}

func (f *fakeAppRepo) Create(ctx context.Context, app *entities.Application) error {
	f.apps[app.ID] = app
	return nil
}

func (f *fakeAppRepo) GetByID(ctx context.Context, id int) (*entities.Application, error) {
	a, ok := f.apps[id]
	if !ok {
		return nil, entities.ErrApplicationNotFound
	}
	return a, nil
}

func (f *fakeAppRepo) Update(ctx context.Context, app *entities.Application) error { return nil }
func (f *fakeAppRepo) HardDelete(ctx context.Context, id int) error                { return nil }

func (f *fakeAppRepo) List(ctx context.Context, filter ports.ApplicationFilter) ([]*entities.Application, int, error) {
	return nil, 0, nil
}

func (f *fakeAppRepo) AddStatusChange(ctx context.Context, change *entities.StatusChange) error {
	return nil
}

func (f *fakeAppRepo) GetStatusHistory(ctx context.Context, applicationID int) ([]*entities.StatusChange, error) {
	return nil, nil
}

type fakeNotifLogRepo struct {
	logs []*entities.NotificationLog
}

func (f *fakeNotifLogRepo) Create(ctx context.Context, log *entities.NotificationLog) error {
	f.logs = append(f.logs, log)
	return nil
}

func (f *fakeNotifLogRepo) GetByReminder(ctx context.Context, reminderID int) ([]*entities.NotificationLog, error) {
	var out []*entities.NotificationLog
	for _, l := range f.logs {
		if l.ReminderID == reminderID {
			out = append(out, l)
		}
	}
	return out, nil
}

type syncCall struct {
	entityKind string
	entityID   int
	operation  string
}

type fakeSyncQueue struct {
	calls []syncCall
	err   error
}

func (f *fakeSyncQueue) Enqueue(ctx context.Context, entityKind string, entityID int, operation string, payload []byte) error {
	if f.err != nil {
		return f.err
	}
	f.calls = append(f.calls, syncCall{entityKind, entityID, operation})
	return nil
}

func (f *fakeSyncQueue) PendingCount(ctx context.Context) (int, error) {
	return len(f.calls), nil
}

type serviceFixture struct {
	svc       *ReminderService
	reminders *fakeReminderRepo
	apps      *fakeAppRepo
	notifLogs *fakeNotifLogRepo
	sync      *fakeSyncQueue
}

func newServiceFixture(apps ...*entities.Application) *serviceFixture {
	f := &serviceFixture{
		reminders: newFakeReminderRepo(),
		apps:      newFakeAppRepo(apps...),
		notifLogs: &fakeNotifLogRepo{},
		sync:      &fakeSyncQueue{},
	}
	f.svc = NewReminderService(f.reminders, f.apps, f.notifLogs, f.sync, logger.NewNop())
	return f
}

func openApplication(id int) *entities.Application {
	applied := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.Local)
	return &entities.Application{
		ID:          id,
		Position:    "Backend Engineer",
		Company:     "Acme",
		Status:      entities.ApplicationStatusApplied,
		AppliedDate: &applied,
	}
}

func TestCreateReminderAppliesDefaults(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()

	created, err := f.svc.CreateReminder(ctx, ports.CreateReminderRequest{
		Title:        "Follow up",
		ReminderDate: "2025-03-15",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if created.ID == 0 {
		t.Error("expected an assigned id")
	}
	if created.Type != entities.ReminderTypeCustom || created.Priority != entities.PriorityMedium {
		t.Errorf("expected custom/medium defaults, got %q/%q", created.Type, created.Priority)
	}
	if !created.IsActive || !created.EmailNotificationEnabled {
		t.Error("expected active and email-enabled defaults")
	}
	if created.NotificationTime != defaultNotificationLeadMinutes {
		t.Errorf("expected %d-minute default lead, got %d", defaultNotificationLeadMinutes, created.NotificationTime)
	}
	if created.SyncStatus != entities.SyncStatusPending || created.SyncVersion != 1 {
		t.Errorf("expected pending/v1 sync state, got %q/%d", created.SyncStatus, created.SyncVersion)
	}

	if len(f.sync.calls) != 1 || f.sync.calls[0].operation != entities.SyncOpCreate {
		t.Fatalf("expected one create sync record, got %+v", f.sync.calls)
	}
	if f.sync.calls[0].entityKind != "reminder" || f.sync.calls[0].entityID != created.ID {
		t.Fatalf("sync record targets the wrong entity: %+v", f.sync.calls[0])
	}
}

func TestCreateReminderExplicitFalseOverridesDefaults(t *testing.T) {
	f := newServiceFixture()
	off := false
	lead := 0

	created, err := f.svc.CreateReminder(context.Background(), ports.CreateReminderRequest{
		Title:                    "Quiet reminder",
		ReminderDate:             "2025-03-15",
		IsActive:                 &off,
		EmailNotificationEnabled: &off,
		NotificationTime:         &lead,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if created.IsActive || created.EmailNotificationEnabled {
		t.Error("explicit false must survive default application")
	}
	if created.NotificationTime != 0 {
		t.Errorf("explicit zero lead must survive, got %d", created.NotificationTime)
	}
}

func TestCreateReminderValidation(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()

	badPattern := `{"type":"hourly","interval":1}`
	_, err := f.svc.CreateReminder(ctx, ports.CreateReminderRequest{
		Title:             "  ",
		ReminderDate:      "2025-03-15",
		RecurrencePattern: &badPattern,
	})

	var vErr *entities.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected *entities.ValidationError, got %T: %v", err, err)
	}
	if len(vErr.Messages) != 2 {
		t.Fatalf("expected 2 violations, got %v", vErr.Messages)
	}

	if len(f.reminders.reminders) != 0 {
		t.Error("invalid reminder must not be persisted")
	}
	if len(f.sync.calls) != 0 {
		t.Error("invalid reminder must not be queued for sync")
	}
}

func TestCreateReminderRejectsBadDate(t *testing.T) {
	f := newServiceFixture()

	_, err := f.svc.CreateReminder(context.Background(), ports.CreateReminderRequest{
		Title:        "Follow up",
		ReminderDate: "15.03.2025",
	})

	var vErr *entities.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected *entities.ValidationError, got %T: %v", err, err)
	}
}

func TestCreateReminderRequiresExistingApplication(t *testing.T) {
	f := newServiceFixture()
	missing := 404

	_, err := f.svc.CreateReminder(context.Background(), ports.CreateReminderRequest{
		Title:         "Follow up",
		ReminderDate:  "2025-03-15",
		ApplicationID: &missing,
	})
	if !errors.Is(err, entities.ErrApplicationNotFound) {
		t.Fatalf("expected ErrApplicationNotFound, got %v", err)
	}
}

func TestCompleteReminderSpawnsNextOccurrence(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()

	pattern := `{"type":"weekly","interval":1}`
	created, err := f.svc.CreateReminder(ctx, ports.CreateReminderRequest{
		Title:             "Weekly check-in",
		ReminderDate:      "2025-03-08",
		RecurrencePattern: &pattern,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	note := "called them"
	completed, err := f.svc.CompleteReminder(ctx, created.ID, &note)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !completed.IsCompleted || completed.CompletedAt == nil {
		t.Fatal("completion state not set")
	}

	if len(f.reminders.reminders) != 2 {
		t.Fatalf("expected exactly one spawned occurrence, have %d reminders", len(f.reminders.reminders))
	}

	var next *entities.Reminder
	for _, r := range f.reminders.reminders {
		if r.ID != created.ID {
			next = r
		}
	}
	if next == nil {
		t.Fatal("spawned occurrence not found")
	}
	if next.ParentReminderID == nil || *next.ParentReminderID != created.ID {
		t.Errorf("expected parent link to %d, got %v", created.ID, next.ParentReminderID)
	}
	if next.IsCompleted || next.CompletedAt != nil {
		t.Error("spawned occurrence must be open")
	}
	wantDate := time.Date(2025, time.March, 15, 0, 0, 0, 0, time.Local)
	if !next.ReminderDate.Equal(wantDate) {
		t.Errorf("expected next date %v, got %v", wantDate, next.ReminderDate)
	}

	// Completing the occurrence keeps pointing at the original root.
	_, err = f.svc.CompleteReminder(ctx, next.ID, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var grandchild *entities.Reminder
	for _, r := range f.reminders.reminders {
		if r.ID != created.ID && r.ID != next.ID {
			grandchild = r
		}
	}
	if grandchild == nil {
		t.Fatal("second occurrence not spawned")
	}
	if grandchild.ParentReminderID == nil || *grandchild.ParentReminderID != created.ID {
		t.Errorf("occurrences must not chain: expected parent %d, got %v", created.ID, grandchild.ParentReminderID)
	}
}

func TestCompleteReminderSurvivesSpawnFailure(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()

	pattern := `{"type":"daily","interval":1}`
	created, err := f.svc.CreateReminder(ctx, ports.CreateReminderRequest{
		Title:             "Daily standup prep",
		ReminderDate:      "2025-03-08",
		RecurrencePattern: &pattern,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Every Create after the first one fails, so the spawn cannot persist.
	f.reminders.failCreateAfter = 1

	completed, err := f.svc.CompleteReminder(ctx, created.ID, nil)
	if err != nil {
		t.Fatalf("completion must not fail when the spawn does: %v", err)
	}
	if !completed.IsCompleted {
		t.Fatal("completion state not set")
	}

	stored, err := f.reminders.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !stored.IsCompleted {
		t.Fatal("completion must be persisted even when the spawn fails")
	}
	if len(f.reminders.reminders) != 1 {
		t.Fatalf("no occurrence should exist after a failed spawn, have %d", len(f.reminders.reminders))
	}
}

func TestCompleteReminderIsIdempotent(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()

	pattern := `{"type":"weekly","interval":1}`
	created, err := f.svc.CreateReminder(ctx, ports.CreateReminderRequest{
		Title:             "Weekly check-in",
		ReminderDate:      "2025-03-08",
		RecurrencePattern: &pattern,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := f.svc.CompleteReminder(ctx, created.ID, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.svc.CompleteReminder(ctx, created.ID, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(f.reminders.reminders) != 2 {
		t.Fatalf("repeat completion must not spawn again, have %d reminders", len(f.reminders.reminders))
	}
}

func TestSnoozeReminderRejectsNonPositiveHours(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()

	created, err := f.svc.CreateReminder(ctx, ports.CreateReminderRequest{
		Title:        "Follow up",
		ReminderDate: "2025-03-15",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, hours := range []int{0, -4} {
		_, err := f.svc.SnoozeReminder(ctx, created.ID, hours)
		var vErr *entities.ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("hours=%d: expected *entities.ValidationError, got %T: %v", hours, err, err)
		}
	}

	snoozed, err := f.svc.SnoozeReminder(ctx, created.ID, 24)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snoozed.SnoozeUntil == nil {
		t.Fatal("snooze deadline not set")
	}

	unsnoozed, err := f.svc.UnsnoozeReminder(ctx, created.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if unsnoozed.SnoozeUntil != nil {
		t.Fatal("snooze deadline not cleared")
	}
}

func TestDeleteReminderHidesAndRestoreRevives(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()

	created, err := f.svc.CreateReminder(ctx, ports.CreateReminderRequest{
		Title:        "Follow up",
		ReminderDate: "2025-03-15",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := f.svc.DeleteReminder(ctx, created.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := f.svc.GetReminder(ctx, created.ID); !errors.Is(err, entities.ErrReminderNotFound) {
		t.Fatalf("soft-deleted reminder must be hidden, got %v", err)
	}

	restored, err := f.svc.RestoreReminder(ctx, created.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if restored.DeletedAt != nil || !restored.IsActive {
		t.Fatalf("restore left tombstone state: %+v", restored)
	}

	if _, err := f.svc.GetReminder(ctx, created.ID); err != nil {
		t.Fatalf("restored reminder must resolve, got %v", err)
	}
}

func TestHardDeleteQueuesSyncBeforeRemoval(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()

	created, err := f.svc.CreateReminder(ctx, ports.CreateReminderRequest{
		Title:        "Follow up",
		ReminderDate: "2025-03-15",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := f.svc.HardDeleteReminder(ctx, created.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(f.reminders.reminders) != 0 {
		t.Fatal("row must be gone after hard delete")
	}

	last := f.sync.calls[len(f.sync.calls)-1]
	if last.operation != entities.SyncOpDelete || last.entityID != created.ID {
		t.Fatalf("expected a delete sync record for %d, got %+v", created.ID, last)
	}
}

func TestSyncFailureDoesNotFailOperation(t *testing.T) {
	f := newServiceFixture()
	f.sync.err = errors.New("queue unavailable")

	created, err := f.svc.CreateReminder(context.Background(), ports.CreateReminderRequest{
		Title:        "Follow up",
		ReminderDate: "2025-03-15",
	})
	if err != nil {
		t.Fatalf("sync failure must not fail the create: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("reminder not persisted")
	}
}

func TestAutoGenerateRemindersIsIdempotent(t *testing.T) {
	app := openApplication(1)
	dl := time.Date(2025, time.December, 1, 0, 0, 0, 0, time.Local)
	app.Deadline = &dl

	f := newServiceFixture(app)
	ctx := context.Background()

	created, err := f.svc.AutoGenerateReminders(ctx, app.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(created) != 2 {
		t.Fatalf("expected follow-up and deadline reminders, got %d", len(created))
	}
	for _, r := range created {
		if !r.AutoGenerated {
			t.Errorf("reminder %d not marked auto-generated", r.ID)
		}
		if r.ApplicationID == nil || *r.ApplicationID != app.ID {
			t.Errorf("reminder %d not linked to application", r.ID)
		}
	}

	again, err := f.svc.AutoGenerateReminders(ctx, app.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(again) != 0 {
		t.Fatalf("second run must create nothing, got %d", len(again))
	}

	// Completing the follow-up frees its template for regeneration.
	var followUp *entities.Reminder
	for _, r := range created {
		if r.Type == entities.ReminderTypeFollowUp {
			followUp = r
		}
	}
	if followUp == nil {
		t.Fatal("follow-up reminder not created")
	}
	if _, err := f.svc.CompleteReminder(ctx, followUp.ID, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	third, err := f.svc.AutoGenerateReminders(ctx, app.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(third) != 1 || third[0].Type != entities.ReminderTypeFollowUp {
		t.Fatalf("expected the follow-up to regenerate, got %+v", third)
	}
}

func TestAutoGenerateRemindersUnknownApplication(t *testing.T) {
	f := newServiceFixture()

	_, err := f.svc.AutoGenerateReminders(context.Background(), 404)
	if !errors.Is(err, entities.ErrApplicationNotFound) {
		t.Fatalf("expected ErrApplicationNotFound, got %v", err)
	}
}

func TestGetRemindersNeedingNotification(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	now := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.Local)

	add := func(mutate func(*entities.Reminder)) int {
		r := &entities.Reminder{
			Title:                    "r",
			ReminderDate:             time.Date(2025, time.March, 10, 0, 0, 0, 0, time.Local),
			Type:                     entities.ReminderTypeCustom,
			Priority:                 entities.PriorityMedium,
			IsActive:                 true,
			EmailNotificationEnabled: true,
			NotificationTime:         60,
			SyncStatus:               entities.SyncStatusPending,
			SyncVersion:              1,
		}
		mutate(r)
		if err := f.reminders.Create(ctx, r); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return r.ID
	}

	// Due at 09:00 with a 60-minute lead: eligible since 08:00.
	dueID := add(func(r *entities.Reminder) {})
	add(func(r *entities.Reminder) { r.IsCompleted = true })
	add(func(r *entities.Reminder) { r.IsActive = false })
	add(func(r *entities.Reminder) {
		until := now.Add(2 * time.Hour)
		r.SnoozeUntil = &until
	})
	add(func(r *entities.Reminder) {
		// Far date, lead window not open yet.
		r.ReminderDate = time.Date(2025, time.March, 20, 0, 0, 0, 0, time.Local)
	})

	due, err := f.svc.GetRemindersNeedingNotification(ctx, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(due) != 1 || due[0].ID != dueID {
		ids := make([]int, 0, len(due))
		for _, r := range due {
			ids = append(ids, r.ID)
		}
		t.Fatalf("expected only reminder %d to be due, got %v", dueID, ids)
	}
}

func TestUpdateReminderMergeKeepsValidity(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()

	created, err := f.svc.CreateReminder(ctx, ports.CreateReminderRequest{
		Title:        "Follow up",
		ReminderDate: "2025-03-15",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	empty := ""
	if _, err := f.svc.UpdateReminder(ctx, created.ID, ports.UpdateReminderRequest{Title: &empty}); err == nil {
		t.Fatal("blanking the title must fail validation")
	}

	newTitle := "Follow up again"
	prio := entities.PriorityHigh
	updated, err := f.svc.UpdateReminder(ctx, created.ID, ports.UpdateReminderRequest{
		Title:    &newTitle,
		Priority: &prio,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Title != newTitle || updated.Priority != prio {
		t.Fatalf("merge lost fields: %+v", updated)
	}
	if updated.SyncVersion != created.SyncVersion+1 {
		t.Errorf("expected sync version bump, got %d", updated.SyncVersion)
	}
	if updated.ReminderDate.IsZero() {
		t.Error("untouched fields must survive the merge")
	}
}
