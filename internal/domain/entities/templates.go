package entities

import (
	"strings"
	"time"
)

type TemplateTrigger string

const (
	TriggerAfterApplied   TemplateTrigger = "after_applied"
	TriggerBeforeDeadline TemplateTrigger = "before_deadline"
	TriggerOnStatus       TemplateTrigger = "on_status"
)

// ReminderTemplate describes one machine-generated reminder bound to an
// application lifecycle event. Title and description carry {position},
// {company}, {title}, {location} and {status} placeholders.
type ReminderTemplate struct {
	Key         string
	Type        ReminderType
	Priority    Priority
	Trigger     TemplateTrigger
	OffsetDays  int
	Status      ApplicationStatus // only for TriggerOnStatus
	Title       string
	Description string
}

// DefaultReminderTemplates returns the built-in template set evaluated when
// reminders are auto-generated for an application.
func DefaultReminderTemplates() []ReminderTemplate {
	return []ReminderTemplate{
		{
			Key:         "follow_up_after_applying",
			Type:        ReminderTypeFollowUp,
			Priority:    PriorityMedium,
			Trigger:     TriggerAfterApplied,
			OffsetDays:  7,
			Title:       "Follow up on {position} at {company}",
			Description: "Check in with {company} about the {position} role. Current status: {status}.",
		},
		{
			Key:         "deadline_approaching",
			Type:        ReminderTypeDeadline,
			Priority:    PriorityHigh,
			Trigger:     TriggerBeforeDeadline,
			OffsetDays:  3,
			Title:       "Application deadline for {title}",
			Description: "The application deadline for {position} at {company} is approaching.",
		},
		{
			Key:         "interview_preparation",
			Type:        ReminderTypeInterview,
			Priority:    PriorityUrgent,
			Trigger:     TriggerOnStatus,
			Status:      ApplicationStatusInterview,
			OffsetDays:  1,
			Title:       "Prepare for interview: {title}",
			Description: "Interview for {position} at {company} ({location}). Review notes and research the company.",
		},
	}
}

// Matches reports whether the template's trigger condition holds for the
// application. A matching template still needs a resolvable due date.
func (t ReminderTemplate) Matches(app *Application) bool {
	switch t.Trigger {
	case TriggerAfterApplied:
		return app.AppliedDate != nil && app.IsOpen()
	case TriggerBeforeDeadline:
		return app.Deadline != nil && app.IsOpen()
	case TriggerOnStatus:
		return app.Status == t.Status
	default:
		return false
	}
}

// DueDate resolves the reminder date for a matching template. The second
// return value is false when the template cannot produce a useful date, e.g.
// a deadline reminder whose lead time has already passed.
func (t ReminderTemplate) DueDate(app *Application, now time.Time) (time.Time, bool) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch t.Trigger {
	case TriggerAfterApplied:
		if app.AppliedDate == nil {
			return time.Time{}, false
		}
		return app.AppliedDate.AddDate(0, 0, t.OffsetDays), true
	case TriggerBeforeDeadline:
		if app.Deadline == nil {
			return time.Time{}, false
		}
		due := app.Deadline.AddDate(0, 0, -t.OffsetDays)
		if due.Before(today) {
			return time.Time{}, false
		}
		return due, true
	case TriggerOnStatus:
		if app.InterviewDate != nil {
			due := app.InterviewDate.AddDate(0, 0, -t.OffsetDays)
			if due.Before(today) {
				due = today
			}
			return due, true
		}
		return today, true
	default:
		return time.Time{}, false
	}
}

// Render substitutes the application's fields into a template string.
func (t ReminderTemplate) Render(text string, app *Application) string {
	location := ""
	if app.Location != nil {
		location = *app.Location
	}
	replacer := strings.NewReplacer(
		"{position}", app.Position,
		"{company}", app.Company,
		"{title}", app.Title(),
		"{location}", location,
		"{status}", string(app.Status),
	)
	return replacer.Replace(text)
}
