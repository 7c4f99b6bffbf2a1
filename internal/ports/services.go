package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jobtrack/core/internal/domain/entities"
)

// AuthService interface for authentication operations
type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error)
	Logout(ctx context.Context, userID uuid.UUID) error
	ValidateToken(tokenString string) (*Claims, error)
}

// ReminderService interface for reminder lifecycle operations
type ReminderService interface {
	CreateReminder(ctx context.Context, req CreateReminderRequest) (*entities.Reminder, error)
	GetReminder(ctx context.Context, id int) (*entities.Reminder, error)
	UpdateReminder(ctx context.Context, id int, req UpdateReminderRequest) (*entities.Reminder, error)
	DeleteReminder(ctx context.Context, id int) error
	HardDeleteReminder(ctx context.Context, id int) error
	RestoreReminder(ctx context.Context, id int) (*entities.Reminder, error)
	ListReminders(ctx context.Context, filter ReminderFilter) ([]*entities.Reminder, int, error)
	GetUpcomingReminders(ctx context.Context, days int) ([]*entities.Reminder, error)
	GetOverdueReminders(ctx context.Context) ([]*entities.Reminder, error)
	GetTodayReminders(ctx context.Context) ([]*entities.Reminder, error)
	GetApplicationReminders(ctx context.Context, applicationID int) ([]*entities.Reminder, error)
	CompleteReminder(ctx context.Context, id int, note *string) (*entities.Reminder, error)
	ReopenReminder(ctx context.Context, id int) (*entities.Reminder, error)
	SnoozeReminder(ctx context.Context, id int, hours int) (*entities.Reminder, error)
	UnsnoozeReminder(ctx context.Context, id int) (*entities.Reminder, error)
	AutoGenerateReminders(ctx context.Context, applicationID int) ([]*entities.Reminder, error)
	GetRemindersNeedingNotification(ctx context.Context, now time.Time) ([]*entities.Reminder, error)
	LogNotification(ctx context.Context, req LogNotificationRequest) error
	GetNotificationHistory(ctx context.Context, reminderID int) ([]*entities.NotificationLog, error)
}

// ApplicationService interface for job application operations
type ApplicationService interface {
	CreateApplication(ctx context.Context, req CreateApplicationRequest) (*entities.Application, error)
	GetApplication(ctx context.Context, id int) (*entities.Application, error)
	UpdateApplication(ctx context.Context, id int, req UpdateApplicationRequest) (*entities.Application, error)
	DeleteApplication(ctx context.Context, id int) error
	ListApplications(ctx context.Context, filter ApplicationFilter) ([]*entities.Application, int, error)
	UpdateApplicationStatus(ctx context.Context, id int, req UpdateApplicationStatusRequest) (*entities.Application, error)
	GetStatusHistory(ctx context.Context, applicationID int) ([]*entities.StatusChange, error)
}

// Notifier drives periodic delivery of due reminders. Start blocks until the
// context is cancelled; RunOnce performs a single poll-and-deliver pass.
type Notifier interface {
	Start(ctx context.Context)
	RunOnce(ctx context.Context) (int, error)
}

// NotificationSender delivers a single due reminder over one channel.
type NotificationSender interface {
	Channel() string
	Send(ctx context.Context, reminder *entities.Reminder) (recipient *string, err error)
}

// Request/Response Types

// Auth related types
type RegisterRequest struct {
	Email       string  `json:"email" validate:"required,email"`
	Password    string  `json:"password" validate:"required,min=8"`
	DisplayName *string `json:"display_name" validate:"omitempty,max=100"`
	Timezone    string  `json:"timezone" validate:"omitempty,max=64"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	TokenType    string         `json:"token_type"`
	ExpiresIn    int64          `json:"expires_in"`
	User         *entities.User `json:"user"`
}

type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// Reminder related types. Optional fields are pointers so "absent" stays
// distinguishable from a deliberate zero value; defaults for absent fields
// (active, email notifications on, 60-minute lead time) are applied in the
// service, not the entity.
type CreateReminderRequest struct {
	ApplicationID            *int                  `json:"application_id"`
	Title                    string                `json:"title" validate:"required,max=500"`
	Description              *string               `json:"description" validate:"omitempty,max=2000"`
	ReminderDate             string                `json:"reminder_date" validate:"omitempty,datetime=2006-01-02"`
	ReminderTime             *string               `json:"reminder_time" validate:"omitempty,datetime=15:04"`
	Type                     entities.ReminderType `json:"reminder_type" validate:"omitempty"`
	Priority                 entities.Priority     `json:"priority" validate:"omitempty"`
	IsActive                 *bool                 `json:"is_active"`
	EmailNotificationEnabled *bool                 `json:"email_notification_enabled"`
	NotificationTime         *int                  `json:"notification_time" validate:"omitempty,min=0"`
	RecurrencePattern        *string               `json:"recurrence_pattern"`
}

type UpdateReminderRequest struct {
	ApplicationID            *int                   `json:"application_id"`
	Title                    *string                `json:"title" validate:"omitempty,max=500"`
	Description              *string                `json:"description" validate:"omitempty,max=2000"`
	ReminderDate             *string                `json:"reminder_date" validate:"omitempty,datetime=2006-01-02"`
	ReminderTime             *string                `json:"reminder_time" validate:"omitempty,datetime=15:04"`
	Type                     *entities.ReminderType `json:"reminder_type" validate:"omitempty"`
	Priority                 *entities.Priority     `json:"priority" validate:"omitempty"`
	IsActive                 *bool                  `json:"is_active"`
	EmailNotificationEnabled *bool                  `json:"email_notification_enabled"`
	NotificationTime         *int                   `json:"notification_time" validate:"omitempty,min=0"`
	RecurrencePattern        *string                `json:"recurrence_pattern"`
}

type CompleteReminderRequest struct {
	Note *string `json:"note" validate:"omitempty,max=2000"`
}

type SnoozeReminderRequest struct {
	Hours int `json:"hours" validate:"required,min=1,max=720"`
}

type LogNotificationRequest struct {
	ReminderID int     `json:"reminder_id" validate:"required"`
	Channel    string  `json:"channel" validate:"required,max=50"`
	Status     string  `json:"status" validate:"required,oneof=sent failed"`
	Recipient  *string `json:"recipient" validate:"omitempty,max=255"`
	Error      *string `json:"error" validate:"omitempty,max=2000"`
}

// Application related types
type CreateApplicationRequest struct {
	Position      string     `json:"position" validate:"required,max=200"`
	Company       string     `json:"company" validate:"required,max=200"`
	Location      *string    `json:"location" validate:"omitempty,max=200"`
	URL           *string    `json:"url" validate:"omitempty,url,max=2000"`
	AppliedDate   *time.Time `json:"applied_date"`
	Deadline      *time.Time `json:"deadline"`
	InterviewDate *time.Time `json:"interview_date"`
	Notes         *string    `json:"notes" validate:"omitempty,max=5000"`
}

type UpdateApplicationRequest struct {
	Position      *string    `json:"position" validate:"omitempty,max=200"`
	Company       *string    `json:"company" validate:"omitempty,max=200"`
	Location      *string    `json:"location" validate:"omitempty,max=200"`
	URL           *string    `json:"url" validate:"omitempty,url,max=2000"`
	AppliedDate   *time.Time `json:"applied_date"`
	Deadline      *time.Time `json:"deadline"`
	InterviewDate *time.Time `json:"interview_date"`
	Notes         *string    `json:"notes" validate:"omitempty,max=5000"`
}

type UpdateApplicationStatusRequest struct {
	Status entities.ApplicationStatus `json:"status" validate:"required"`
	Note   *string                    `json:"note" validate:"omitempty,max=2000"`
}

// Response types for pagination and common structures
type PaginatedResponse[T any] struct {
	Data   []T `json:"data"`
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

type DueSummaryResponse struct {
	Today    []*entities.Reminder `json:"today"`
	Upcoming []*entities.Reminder `json:"upcoming"`
	Overdue  []*entities.Reminder `json:"overdue"`
	Days     int                  `json:"days"`
}
