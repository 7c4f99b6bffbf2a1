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

// stubReminderService satisfies ports.ReminderService for the two methods the
// notifier touches; everything else panics if reached.
type stubReminderService struct {
	ports.ReminderService

	due    []*entities.Reminder
	dueErr error
	logs   []ports.LogNotificationRequest
}

func (s *stubReminderService) GetRemindersNeedingNotification(ctx context.Context, now time.Time) ([]*entities.Reminder, error) {
	return s.due, s.dueErr
}

func (s *stubReminderService) LogNotification(ctx context.Context, req ports.LogNotificationRequest) error {
	s.logs = append(s.logs, req)
	return nil
}

type stubSender struct {
	channel   string
	recipient *string
	err       error
	sent      []int
}

func (s *stubSender) Channel() string { return s.channel }

func (s *stubSender) Send(_ context.Context, reminder *entities.Reminder) (*string, error) {
	s.sent = append(s.sent, reminder.ID)
	return s.recipient, s.err
}

func dueReminder(id int, emailEnabled bool) *entities.Reminder {
	return &entities.Reminder{
		ID:                       id,
		Title:                    "Follow up",
		ReminderDate:             time.Date(2025, time.March, 10, 0, 0, 0, 0, time.Local),
		Type:                     entities.ReminderTypeFollowUp,
		Priority:                 entities.PriorityMedium,
		IsActive:                 true,
		EmailNotificationEnabled: emailEnabled,
		NotificationTime:         60,
	}
}

func TestNotifierRunOnceDeliversAndLogs(t *testing.T) {
	stub := &stubReminderService{due: []*entities.Reminder{dueReminder(1, true), dueReminder(2, true)}}
	sender := &stubSender{channel: "log"}

	n := NewNotifierService(stub, []ports.NotificationSender{sender}, time.Minute, logger.NewNop())

	count, err := n.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 due reminders, got %d", count)
	}
	if len(sender.sent) != 2 {
		t.Fatalf("expected 2 deliveries, got %v", sender.sent)
	}
	if len(stub.logs) != 2 {
		t.Fatalf("expected 2 log entries, got %d", len(stub.logs))
	}
	for _, l := range stub.logs {
		if l.Status != "sent" || l.Channel != "log" {
			t.Errorf("unexpected log entry: %+v", l)
		}
	}
}

func TestNotifierRecordsFailedDeliveries(t *testing.T) {
	stub := &stubReminderService{due: []*entities.Reminder{dueReminder(1, true)}}
	sender := &stubSender{channel: "log", err: errors.New("smtp down")}

	n := NewNotifierService(stub, []ports.NotificationSender{sender}, time.Minute, logger.NewNop())

	if _, err := n.RunOnce(context.Background()); err != nil {
		t.Fatalf("a failed delivery must not fail the pass: %v", err)
	}
	if len(stub.logs) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(stub.logs))
	}
	l := stub.logs[0]
	if l.Status != "failed" || l.Error == nil || *l.Error != "smtp down" {
		t.Fatalf("unexpected log entry: %+v", l)
	}
}

func TestNotifierSkipsEmailWhenDisabled(t *testing.T) {
	stub := &stubReminderService{due: []*entities.Reminder{dueReminder(1, false)}}
	email := &stubSender{channel: emailChannel}
	logCh := &stubSender{channel: "log"}

	n := NewNotifierService(stub, []ports.NotificationSender{email, logCh}, time.Minute, logger.NewNop())

	if _, err := n.RunOnce(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(email.sent) != 0 {
		t.Fatalf("email sender must be skipped, got %v", email.sent)
	}
	if len(logCh.sent) != 1 {
		t.Fatalf("log sender must still run, got %v", logCh.sent)
	}
	if len(stub.logs) != 1 {
		t.Fatalf("only the log channel attempt should be recorded, got %d", len(stub.logs))
	}
}

func TestNotifierRunOncePropagatesPollError(t *testing.T) {
	stub := &stubReminderService{dueErr: errors.New("store down")}
	n := NewNotifierService(stub, nil, time.Minute, logger.NewNop())

	if _, err := n.RunOnce(context.Background()); err == nil {
		t.Fatal("expected the poll error to propagate")
	}
}

func TestNotifierStartStopsOnContextCancel(t *testing.T) {
	stub := &stubReminderService{}
	n := NewNotifierService(stub, nil, 5*time.Millisecond, logger.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		n.Start(ctx)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("notifier did not stop after cancel")
	}
}
