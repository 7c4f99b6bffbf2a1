package services

import (
	"context"
	"time"

	"github.com/jobtrack/core/internal/domain/entities"
	"github.com/jobtrack/core/internal/infrastructure/logger"
	"github.com/jobtrack/core/internal/ports"
)

const emailChannel = "email"

// NotifierService polls for due reminders and pushes them through the
// registered senders, recording every attempt in the notification log.
type NotifierService struct {
	reminderService ports.ReminderService
	senders         []ports.NotificationSender
	interval        time.Duration
	logger          *logger.Logger
}

// NewNotifierService creates a new notifier service
func NewNotifierService(reminderService ports.ReminderService, senders []ports.NotificationSender, interval time.Duration, logger *logger.Logger) *NotifierService {
	if interval <= 0 {
		interval = time.Minute
	}
	return &NotifierService{
		reminderService: reminderService,
		senders:         senders,
		interval:        interval,
		logger:          logger,
	}
}

// Start runs the poll loop until the context is cancelled. One failed pass
// never stops the loop.
func (s *NotifierService) Start(ctx context.Context) {
	s.logger.Info("Notifier started", "interval", s.interval.String())

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Notifier stopped")
			return
		case <-ticker.C:
			if _, err := s.RunOnce(ctx); err != nil {
				s.logger.Error("Notification pass failed", "error", err)
			}
		}
	}
}

// RunOnce performs a single poll-and-deliver pass and returns the number of
// reminders that were due.
func (s *NotifierService) RunOnce(ctx context.Context) (int, error) {
	now := time.Now()

	due, err := s.reminderService.GetRemindersNeedingNotification(ctx, now)
	if err != nil {
		return 0, err
	}

	for _, reminder := range due {
		s.deliver(ctx, reminder)
	}

	if len(due) > 0 {
		s.logger.Info("Notification pass finished", "due", len(due))
	}

	return len(due), nil
}

func (s *NotifierService) deliver(ctx context.Context, reminder *entities.Reminder) {
	for _, sender := range s.senders {
		if sender.Channel() == emailChannel && !reminder.EmailNotificationEnabled {
			continue
		}

		recipient, err := sender.Send(ctx, reminder)

		log := ports.LogNotificationRequest{
			ReminderID: reminder.ID,
			Channel:    sender.Channel(),
			Status:     "sent",
			Recipient:  recipient,
		}
		if err != nil {
			errMsg := err.Error()
			log.Status = "failed"
			log.Error = &errMsg
			s.logger.Warn("Notification delivery failed", "reminder_id", reminder.ID,
				"channel", sender.Channel(), "error", err)
		}

		if logErr := s.reminderService.LogNotification(ctx, log); logErr != nil {
			s.logger.Warn("Failed to record notification attempt", "reminder_id", reminder.ID,
				"channel", sender.Channel(), "error", logErr)
		}
	}
}

// LogSender writes due reminders to the application log. It is the default
// sender when no external channel is configured.
type LogSender struct {
	logger *logger.Logger
}

// NewLogSender creates a new log sender
func NewLogSender(logger *logger.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Channel() string {
	return "log"
}

func (s *LogSender) Send(_ context.Context, reminder *entities.Reminder) (*string, error) {
	s.logger.Info("Reminder due",
		"reminder_id", reminder.ID,
		"title", reminder.Title,
		"priority", reminder.Priority,
		"due", reminder.EffectiveDate().Format(time.RFC3339),
	)
	return nil, nil
}
