package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/jobtrack/core/internal/application/services"
	"github.com/jobtrack/core/internal/domain/entities"
	"github.com/jobtrack/core/internal/infrastructure/logger"
	"github.com/jobtrack/core/internal/ports"
)

// ReminderHandler handles reminder-related requests
type ReminderHandler struct {
	reminderService *services.ReminderService
	logger          *logger.Logger
}

// NewReminderHandler creates a new reminder handler
func NewReminderHandler(reminderService *services.ReminderService, logger *logger.Logger) *ReminderHandler {
	return &ReminderHandler{
		reminderService: reminderService,
		logger:          logger,
	}
}

// CreateReminder handles reminder creation
// @Summary Create a reminder
// @Tags reminders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ports.CreateReminderRequest true "Reminder details"
// @Success 201 {object} entities.Reminder
// @Router /reminders [post]
func (h *ReminderHandler) CreateReminder(c echo.Context) error {
	var req ports.CreateReminderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return err
	}

	reminder, err := h.reminderService.CreateReminder(c.Request().Context(), req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, reminder)
}

// GetReminder handles getting a reminder by ID
// @Summary Get a reminder
// @Tags reminders
// @Produce json
// @Security BearerAuth
// @Param id path int true "Reminder ID"
// @Success 200 {object} entities.Reminder
// @Router /reminders/{id} [get]
func (h *ReminderHandler) GetReminder(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	reminder, err := h.reminderService.GetReminder(c.Request().Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, reminder)
}

// UpdateReminder handles partial reminder updates
// @Summary Update a reminder
// @Tags reminders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Reminder ID"
// @Param request body ports.UpdateReminderRequest true "Fields to update"
// @Success 200 {object} entities.Reminder
// @Router /reminders/{id} [put]
func (h *ReminderHandler) UpdateReminder(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var req ports.UpdateReminderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return err
	}

	reminder, err := h.reminderService.UpdateReminder(c.Request().Context(), id, req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, reminder)
}

// DeleteReminder handles soft deletion
// @Summary Delete a reminder
// @Tags reminders
// @Produce json
// @Security BearerAuth
// @Param id path int true "Reminder ID"
// @Success 200 {object} ports.MessageResponse
// @Router /reminders/{id} [delete]
func (h *ReminderHandler) DeleteReminder(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	if err := h.reminderService.DeleteReminder(c.Request().Context(), id); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, ports.MessageResponse{Message: "Reminder deleted successfully"})
}

// HardDeleteReminder removes a reminder permanently
// @Summary Permanently delete a reminder
// @Tags reminders
// @Produce json
// @Security BearerAuth
// @Param id path int true "Reminder ID"
// @Success 200 {object} ports.MessageResponse
// @Router /reminders/{id}/permanent [delete]
func (h *ReminderHandler) HardDeleteReminder(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	if err := h.reminderService.HardDeleteReminder(c.Request().Context(), id); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, ports.MessageResponse{Message: "Reminder permanently deleted"})
}

// RestoreReminder reverses a soft delete
// @Summary Restore a deleted reminder
// @Tags reminders
// @Produce json
// @Security BearerAuth
// @Param id path int true "Reminder ID"
// @Success 200 {object} entities.Reminder
// @Router /reminders/{id}/restore [post]
func (h *ReminderHandler) RestoreReminder(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	reminder, err := h.reminderService.RestoreReminder(c.Request().Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, reminder)
}

// ListReminders handles listing reminders with filters
// @Summary List reminders
// @Tags reminders
// @Produce json
// @Security BearerAuth
// @Param application_id query int false "Filter by application"
// @Param completed query bool false "Filter by completion"
// @Param priority query string false "Filter by priority"
// @Param type query string false "Filter by type"
// @Param overdue query bool false "Only overdue reminders"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} ports.PaginatedResponse[entities.Reminder]
// @Router /reminders [get]
func (h *ReminderHandler) ListReminders(c echo.Context) error {
	filter := ports.ReminderFilter{}

	if appID, err := queryInt(c, "application_id", 0); err != nil {
		return err
	} else if appID > 0 {
		filter.ApplicationID = &appID
	}

	completed, err := queryBool(c, "completed")
	if err != nil {
		return err
	}
	filter.Completed = completed

	if raw := c.QueryParam("priority"); raw != "" {
		priority := entities.Priority(raw)
		if !priority.IsValid() {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid priority parameter")
		}
		filter.Priority = &priority
	}

	if raw := c.QueryParam("type"); raw != "" {
		reminderType := entities.ReminderType(raw)
		if !reminderType.IsValid() {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid type parameter")
		}
		filter.Type = &reminderType
	}

	if raw := c.QueryParam("from"); raw != "" {
		from, err := time.ParseInLocation(entities.DateFormat, raw, time.Local)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid from parameter")
		}
		filter.DateFrom = &from
	}

	if raw := c.QueryParam("to"); raw != "" {
		to, err := time.ParseInLocation(entities.DateFormat, raw, time.Local)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid to parameter")
		}
		filter.DateTo = &to
	}

	if overdue, err := queryBool(c, "overdue"); err != nil {
		return err
	} else if overdue != nil && *overdue {
		filter.Overdue = true
		filter.Now = time.Now()
	}

	if filter.Limit, err = queryInt(c, "limit", 50); err != nil {
		return err
	}
	if filter.Offset, err = queryInt(c, "offset", 0); err != nil {
		return err
	}

	reminders, total, err := h.reminderService.ListReminders(c.Request().Context(), filter)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, ports.PaginatedResponse[*entities.Reminder]{
		Data:   reminders,
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	})
}

// GetUpcomingReminders lists open reminders due within a window of days
// @Summary List upcoming reminders
// @Tags reminders
// @Produce json
// @Security BearerAuth
// @Param days query int false "Window in days (default 7)"
// @Success 200 {array} entities.Reminder
// @Router /reminders/upcoming [get]
func (h *ReminderHandler) GetUpcomingReminders(c echo.Context) error {
	days, err := queryInt(c, "days", 7)
	if err != nil {
		return err
	}

	reminders, err := h.reminderService.GetUpcomingReminders(c.Request().Context(), days)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, reminders)
}

// GetOverdueReminders lists open reminders past their due moment
// @Summary List overdue reminders
// @Tags reminders
// @Produce json
// @Security BearerAuth
// @Success 200 {array} entities.Reminder
// @Router /reminders/overdue [get]
func (h *ReminderHandler) GetOverdueReminders(c echo.Context) error {
	reminders, err := h.reminderService.GetOverdueReminders(c.Request().Context())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, reminders)
}

// GetTodayReminders lists open reminders falling on the current day
// @Summary List today's reminders
// @Tags reminders
// @Produce json
// @Security BearerAuth
// @Success 200 {array} entities.Reminder
// @Router /reminders/today [get]
func (h *ReminderHandler) GetTodayReminders(c echo.Context) error {
	reminders, err := h.reminderService.GetTodayReminders(c.Request().Context())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, reminders)
}

// CompleteReminder marks a reminder done
// @Summary Complete a reminder
// @Tags reminders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Reminder ID"
// @Param request body ports.CompleteReminderRequest false "Completion note"
// @Success 200 {object} entities.Reminder
// @Router /reminders/{id}/complete [post]
func (h *ReminderHandler) CompleteReminder(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var req ports.CompleteReminderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	reminder, err := h.reminderService.CompleteReminder(c.Request().Context(), id, req.Note)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, reminder)
}

// ReopenReminder reverses a completion
// @Summary Reopen a completed reminder
// @Tags reminders
// @Produce json
// @Security BearerAuth
// @Param id path int true "Reminder ID"
// @Success 200 {object} entities.Reminder
// @Router /reminders/{id}/reopen [post]
func (h *ReminderHandler) ReopenReminder(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	reminder, err := h.reminderService.ReopenReminder(c.Request().Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, reminder)
}

// SnoozeReminder defers a reminder
// @Summary Snooze a reminder
// @Tags reminders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Reminder ID"
// @Param request body ports.SnoozeReminderRequest true "Snooze duration"
// @Success 200 {object} entities.Reminder
// @Router /reminders/{id}/snooze [post]
func (h *ReminderHandler) SnoozeReminder(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var req ports.SnoozeReminderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return err
	}

	reminder, err := h.reminderService.SnoozeReminder(c.Request().Context(), id, req.Hours)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, reminder)
}

// UnsnoozeReminder clears an active snooze
// @Summary Unsnooze a reminder
// @Tags reminders
// @Produce json
// @Security BearerAuth
// @Param id path int true "Reminder ID"
// @Success 200 {object} entities.Reminder
// @Router /reminders/{id}/unsnooze [post]
func (h *ReminderHandler) UnsnoozeReminder(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	reminder, err := h.reminderService.UnsnoozeReminder(c.Request().Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, reminder)
}

// GetNotificationHistory lists the delivery attempts for a reminder
// @Summary Get notification history
// @Tags reminders
// @Produce json
// @Security BearerAuth
// @Param id path int true "Reminder ID"
// @Success 200 {array} entities.NotificationLog
// @Router /reminders/{id}/notifications [get]
func (h *ReminderHandler) GetNotificationHistory(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	logs, err := h.reminderService.GetNotificationHistory(c.Request().Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, logs)
}
