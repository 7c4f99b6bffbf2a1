package services

import (
	"context"
	"fmt"
	"time"

	"github.com/jobtrack/core/internal/domain/entities"
	"github.com/jobtrack/core/internal/infrastructure/logger"
	"github.com/jobtrack/core/internal/ports"
)

// ApplicationService handles job application operations
type ApplicationService struct {
	appRepo         ports.ApplicationRepository
	reminderService ports.ReminderService
	logger          *logger.Logger
}

// NewApplicationService creates a new application service
func NewApplicationService(appRepo ports.ApplicationRepository, reminderService ports.ReminderService, logger *logger.Logger) *ApplicationService {
	return &ApplicationService{
		appRepo:         appRepo,
		reminderService: reminderService,
		logger:          logger,
	}
}

// CreateApplication creates a new application in the applied state and seeds
// its auto-generated reminders.
func (s *ApplicationService) CreateApplication(ctx context.Context, req ports.CreateApplicationRequest) (*entities.Application, error) {
	now := time.Now()

	app := &entities.Application{
		Position:      req.Position,
		Company:       req.Company,
		Location:      req.Location,
		URL:           req.URL,
		Status:        entities.ApplicationStatusApplied,
		AppliedDate:   req.AppliedDate,
		Deadline:      req.Deadline,
		InterviewDate: req.InterviewDate,
		Notes:         req.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if app.AppliedDate == nil {
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		app.AppliedDate = &today
	}

	if err := s.appRepo.Create(ctx, app); err != nil {
		return nil, fmt.Errorf("failed to create application: %w", err)
	}

	s.logger.Info("Application created successfully", "application_id", app.ID,
		"position", app.Position, "company", app.Company)

	// Template reminders are a convenience, not part of the create contract
	if _, err := s.reminderService.AutoGenerateReminders(ctx, app.ID); err != nil {
		s.logger.Warn("Failed to auto-generate reminders", "application_id", app.ID, "error", err)
	}

	return app, nil
}

// GetApplication retrieves an application by ID
func (s *ApplicationService) GetApplication(ctx context.Context, id int) (*entities.Application, error) {
	app, err := s.appRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return app, nil
}

// UpdateApplication updates an application's details. Status is excluded
// here; UpdateApplicationStatus owns status transitions and their history.
func (s *ApplicationService) UpdateApplication(ctx context.Context, id int, req ports.UpdateApplicationRequest) (*entities.Application, error) {
	app, err := s.appRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Position != nil {
		app.Position = *req.Position
	}
	if req.Company != nil {
		app.Company = *req.Company
	}
	if req.Location != nil {
		app.Location = req.Location
	}
	if req.URL != nil {
		app.URL = req.URL
	}
	if req.AppliedDate != nil {
		app.AppliedDate = req.AppliedDate
	}
	if req.Deadline != nil {
		app.Deadline = req.Deadline
	}
	if req.InterviewDate != nil {
		app.InterviewDate = req.InterviewDate
	}
	if req.Notes != nil {
		app.Notes = req.Notes
	}

	app.UpdatedAt = time.Now()

	if err := s.appRepo.Update(ctx, app); err != nil {
		return nil, fmt.Errorf("failed to update application: %w", err)
	}

	s.logger.Info("Application updated successfully", "application_id", app.ID)

	return app, nil
}

// DeleteApplication removes an application. Linked reminders keep their weak
// reference; they are not cascaded from here.
func (s *ApplicationService) DeleteApplication(ctx context.Context, id int) error {
	if _, err := s.appRepo.GetByID(ctx, id); err != nil {
		return err
	}

	if err := s.appRepo.HardDelete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete application: %w", err)
	}

	s.logger.Info("Application deleted successfully", "application_id", id)

	return nil
}

// ListApplications retrieves applications with filtering and pagination
func (s *ApplicationService) ListApplications(ctx context.Context, filter ports.ApplicationFilter) ([]*entities.Application, int, error) {
	apps, total, err := s.appRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list applications: %w", err)
	}

	return apps, total, nil
}

// UpdateApplicationStatus transitions an application to a new status,
// appends the change to the immutable history, and re-evaluates the reminder
// templates against the new state.
func (s *ApplicationService) UpdateApplicationStatus(ctx context.Context, id int, req ports.UpdateApplicationStatusRequest) (*entities.Application, error) {
	if !req.Status.IsValid() {
		return nil, entities.NewValidationError([]string{
			fmt.Sprintf("invalid application status %q", req.Status),
		})
	}

	app, err := s.appRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if app.Status == req.Status {
		return app, nil
	}

	now := time.Now()
	change := &entities.StatusChange{
		ApplicationID: app.ID,
		FromStatus:    app.Status,
		ToStatus:      req.Status,
		Note:          req.Note,
		ChangedAt:     now,
	}

	app.Status = req.Status
	app.UpdatedAt = now

	if err := s.appRepo.Update(ctx, app); err != nil {
		return nil, fmt.Errorf("failed to update application status: %w", err)
	}

	if err := s.appRepo.AddStatusChange(ctx, change); err != nil {
		s.logger.Warn("Failed to record status change", "application_id", app.ID, "error", err)
	}

	s.logger.Info("Application status updated successfully", "application_id", app.ID,
		"from", change.FromStatus, "to", change.ToStatus)

	if _, err := s.reminderService.AutoGenerateReminders(ctx, app.ID); err != nil {
		s.logger.Warn("Failed to auto-generate reminders", "application_id", app.ID, "error", err)
	}

	return app, nil
}

// GetStatusHistory returns the status transitions recorded for an application
func (s *ApplicationService) GetStatusHistory(ctx context.Context, applicationID int) ([]*entities.StatusChange, error) {
	if _, err := s.appRepo.GetByID(ctx, applicationID); err != nil {
		return nil, err
	}

	history, err := s.appRepo.GetStatusHistory(ctx, applicationID)
	if err != nil {
		return nil, fmt.Errorf("failed to get status history: %w", err)
	}

	return history, nil
}
