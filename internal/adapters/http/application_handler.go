package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jobtrack/core/internal/application/services"
	"github.com/jobtrack/core/internal/domain/entities"
	"github.com/jobtrack/core/internal/infrastructure/logger"
	"github.com/jobtrack/core/internal/ports"
)

// ApplicationHandler handles job application requests
type ApplicationHandler struct {
	applicationService *services.ApplicationService
	reminderService    *services.ReminderService
	logger             *logger.Logger
}

// NewApplicationHandler creates a new application handler
func NewApplicationHandler(applicationService *services.ApplicationService, reminderService *services.ReminderService, logger *logger.Logger) *ApplicationHandler {
	return &ApplicationHandler{
		applicationService: applicationService,
		reminderService:    reminderService,
		logger:             logger,
	}
}

// CreateApplication handles application creation
// @Summary Create a job application
// @Tags applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ports.CreateApplicationRequest true "Application details"
// @Success 201 {object} entities.Application
// @Router /applications [post]
func (h *ApplicationHandler) CreateApplication(c echo.Context) error {
	var req ports.CreateApplicationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return err
	}

	app, err := h.applicationService.CreateApplication(c.Request().Context(), req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, app)
}

// GetApplication handles getting an application by ID
// @Summary Get a job application
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Success 200 {object} entities.Application
// @Router /applications/{id} [get]
func (h *ApplicationHandler) GetApplication(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	app, err := h.applicationService.GetApplication(c.Request().Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, app)
}

// UpdateApplication handles partial application updates
// @Summary Update a job application
// @Tags applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Param request body ports.UpdateApplicationRequest true "Fields to update"
// @Success 200 {object} entities.Application
// @Router /applications/{id} [put]
func (h *ApplicationHandler) UpdateApplication(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var req ports.UpdateApplicationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return err
	}

	app, err := h.applicationService.UpdateApplication(c.Request().Context(), id, req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, app)
}

// DeleteApplication handles application deletion
// @Summary Delete a job application
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Success 200 {object} ports.MessageResponse
// @Router /applications/{id} [delete]
func (h *ApplicationHandler) DeleteApplication(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	if err := h.applicationService.DeleteApplication(c.Request().Context(), id); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, ports.MessageResponse{Message: "Application deleted successfully"})
}

// ListApplications handles listing applications with filters
// @Summary List job applications
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status"
// @Param company query string false "Filter by company"
// @Param search query string false "Search position and company"
// @Param open query bool false "Only open applications"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} ports.PaginatedResponse[entities.Application]
// @Router /applications [get]
func (h *ApplicationHandler) ListApplications(c echo.Context) error {
	filter := ports.ApplicationFilter{}

	if raw := c.QueryParam("status"); raw != "" {
		status := entities.ApplicationStatus(raw)
		if !status.IsValid() {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid status parameter")
		}
		filter.Status = &status
	}

	if raw := c.QueryParam("company"); raw != "" {
		filter.Company = &raw
	}

	if raw := c.QueryParam("search"); raw != "" {
		filter.Search = &raw
	}

	open, err := queryBool(c, "open")
	if err != nil {
		return err
	}
	filter.OpenOnly = open != nil && *open

	if filter.Limit, err = queryInt(c, "limit", 50); err != nil {
		return err
	}
	if filter.Offset, err = queryInt(c, "offset", 0); err != nil {
		return err
	}

	apps, total, err := h.applicationService.ListApplications(c.Request().Context(), filter)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, ports.PaginatedResponse[*entities.Application]{
		Data:   apps,
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	})
}

// UpdateApplicationStatus transitions an application and records the change
// @Summary Update application status
// @Tags applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Param request body ports.UpdateApplicationStatusRequest true "New status"
// @Success 200 {object} entities.Application
// @Router /applications/{id}/status [put]
func (h *ApplicationHandler) UpdateApplicationStatus(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var req ports.UpdateApplicationStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return err
	}

	app, err := h.applicationService.UpdateApplicationStatus(c.Request().Context(), id, req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, app)
}

// GetStatusHistory lists the recorded status transitions
// @Summary Get application status history
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Success 200 {array} entities.StatusChange
// @Router /applications/{id}/history [get]
func (h *ApplicationHandler) GetStatusHistory(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	history, err := h.applicationService.GetStatusHistory(c.Request().Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, history)
}

// GetApplicationReminders lists the reminders linked to an application
// @Summary Get application reminders
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Success 200 {array} entities.Reminder
// @Router /applications/{id}/reminders [get]
func (h *ApplicationHandler) GetApplicationReminders(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	reminders, err := h.reminderService.GetApplicationReminders(c.Request().Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, reminders)
}

// GenerateReminders re-evaluates the reminder templates for an application
// @Summary Auto-generate reminders
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Success 201 {array} entities.Reminder
// @Router /applications/{id}/reminders/generate [post]
func (h *ApplicationHandler) GenerateReminders(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	created, err := h.reminderService.AutoGenerateReminders(c.Request().Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, created)
}
