package entities

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrReminderNotFound    = errors.New("reminder not found")
	ErrApplicationNotFound = errors.New("application not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrAccountInactive     = errors.New("account is inactive")
)

// ValidationError aggregates business-rule violations so the caller can show
// every failing rule at once instead of the first one found.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages, "; ")
}

// NewValidationError wraps a non-empty message list.
func NewValidationError(messages []string) *ValidationError {
	return &ValidationError{Messages: messages}
}

// Date and clock formats used across the domain. Reminder dates are calendar
// dates; reminder times are wall-clock HH:MM strings with no zone attached.
const (
	DateFormat = "2006-01-02"
	TimeFormat = "15:04"
)

// Enums and types
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

type ReminderType string

const (
	ReminderTypeDeadline  ReminderType = "deadline"
	ReminderTypeFollowUp  ReminderType = "follow_up"
	ReminderTypeInterview ReminderType = "interview"
	ReminderTypeCustom    ReminderType = "custom"
)

type ApplicationStatus string

const (
	ApplicationStatusApplied   ApplicationStatus = "applied"
	ApplicationStatusScreening ApplicationStatus = "screening"
	ApplicationStatusInterview ApplicationStatus = "interview"
	ApplicationStatusOffer     ApplicationStatus = "offer"
	ApplicationStatusRejected  ApplicationStatus = "rejected"
	ApplicationStatusAccepted  ApplicationStatus = "accepted"
	ApplicationStatusWithdrawn ApplicationStatus = "withdrawn"
)

// Application represents a tracked job application
type Application struct {
	ID            int               `json:"id" db:"id"`
	Position      string            `json:"position" db:"position"`
	Company       string            `json:"company" db:"company"`
	Location      *string           `json:"location" db:"location"`
	URL           *string           `json:"url" db:"url"`
	Status        ApplicationStatus `json:"status" db:"status"`
	AppliedDate   *time.Time        `json:"applied_date" db:"applied_date"`
	Deadline      *time.Time        `json:"deadline" db:"deadline"`
	InterviewDate *time.Time        `json:"interview_date" db:"interview_date"`
	Notes         *string           `json:"notes" db:"notes"`
	CreatedAt     time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at" db:"updated_at"`
	DeletedAt     *time.Time        `json:"deleted_at" db:"deleted_at"`
}

// StatusChange is one row of an application's immutable status history.
type StatusChange struct {
	ID            int               `json:"id" db:"id"`
	ApplicationID int               `json:"application_id" db:"application_id"`
	FromStatus    ApplicationStatus `json:"from_status" db:"from_status"`
	ToStatus      ApplicationStatus `json:"to_status" db:"to_status"`
	Note          *string           `json:"note" db:"note"`
	ChangedAt     time.Time         `json:"changed_at" db:"changed_at"`
}

// NotificationLog is an append-only record of one delivery attempt. It never
// feeds back into reminder state.
type NotificationLog struct {
	ID         int       `json:"id" db:"id"`
	ReminderID int       `json:"reminder_id" db:"reminder_id"`
	Channel    string    `json:"channel" db:"channel"`
	Status     string    `json:"status" db:"status"`
	Recipient  *string   `json:"recipient" db:"recipient"`
	Error      *string   `json:"error" db:"error"`
	SentAt     time.Time `json:"sent_at" db:"sent_at"`
}

// SyncRecord is one pending change queued for best-effort remote
// synchronization. This layer only appends; reconciliation lives elsewhere.
type SyncRecord struct {
	ID         int       `json:"id" db:"id"`
	EntityKind string    `json:"entity_kind" db:"entity_kind"`
	EntityID   int       `json:"entity_id" db:"entity_id"`
	Operation  string    `json:"operation" db:"operation"`
	Payload    []byte    `json:"payload" db:"payload"`
	RetryCount int       `json:"retry_count" db:"retry_count"`
	Status     string    `json:"status" db:"status"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// Sync queue operations
const (
	SyncOpCreate = "create"
	SyncOpUpdate = "update"
	SyncOpDelete = "delete"
)

// User represents an account that owns the tracked data
type User struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	Email        string     `json:"email" db:"email"`
	PasswordHash string     `json:"-" db:"password_hash"`
	DisplayName  *string    `json:"display_name" db:"display_name"`
	Timezone     string     `json:"timezone" db:"timezone"`
	IsActive     bool       `json:"is_active" db:"is_active"`
	LastLoginAt  *time.Time `json:"last_login_at" db:"last_login_at"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// RefreshToken represents a stored refresh token hash
type RefreshToken struct {
	ID        int        `json:"id" db:"id"`
	UserID    uuid.UUID  `json:"user_id" db:"user_id"`
	TokenHash string     `json:"token_hash" db:"token_hash"`
	ExpiresAt time.Time  `json:"expires_at" db:"expires_at"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	RevokedAt *time.Time `json:"revoked_at" db:"revoked_at"`
}

// Business logic methods for Application
func (a *Application) IsOpen() bool {
	switch a.Status {
	case ApplicationStatusRejected, ApplicationStatusAccepted, ApplicationStatusWithdrawn:
		return false
	default:
		return true
	}
}

func (a *Application) HasDeadline() bool {
	return a.Deadline != nil
}

func (a *Application) DaysSinceApplied(now time.Time) int {
	if a.AppliedDate == nil {
		return 0
	}
	return int(now.Sub(*a.AppliedDate).Hours() / 24)
}

// Title renders the application as "position at company" for display and
// template substitution.
func (a *Application) Title() string {
	return fmt.Sprintf("%s at %s", a.Position, a.Company)
}

// Business logic methods for RefreshToken
func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsValid() bool {
	return !rt.IsExpired() && !rt.IsRevoked()
}

// Utility methods
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	default:
		return false
	}
}

func (rt ReminderType) IsValid() bool {
	switch rt {
	case ReminderTypeDeadline, ReminderTypeFollowUp, ReminderTypeInterview, ReminderTypeCustom:
		return true
	default:
		return false
	}
}

func (as ApplicationStatus) IsValid() bool {
	switch as {
	case ApplicationStatusApplied, ApplicationStatusScreening, ApplicationStatusInterview,
		ApplicationStatusOffer, ApplicationStatusRejected, ApplicationStatusAccepted, ApplicationStatusWithdrawn:
		return true
	default:
		return false
	}
}
