package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/jobtrack/core/internal/domain/entities"
	"github.com/jobtrack/core/internal/ports"
)

const applicationColumns = `id, position, company, location, url, status, applied_date,
		deadline, interview_date, notes, created_at, updated_at, deleted_at`

// ApplicationRepositoryImpl implements the ApplicationRepository interface
type ApplicationRepositoryImpl struct {
	db *sqlx.DB
}

// NewApplicationRepository creates a new application repository
func NewApplicationRepository(db *sqlx.DB) ports.ApplicationRepository {
	return &ApplicationRepositoryImpl{db: db}
}

func (r *ApplicationRepositoryImpl) Create(ctx context.Context, app *entities.Application) error {
	query := `
		INSERT INTO applications (position, company, location, url, status, applied_date,
			deadline, interview_date, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`

	err := r.db.QueryRowContext(ctx, query,
		app.Position, app.Company, app.Location, app.URL, app.Status,
		app.AppliedDate, app.Deadline, app.InterviewDate, app.Notes,
		app.CreatedAt, app.UpdatedAt,
	).Scan(&app.ID)

	if err != nil {
		return fmt.Errorf("create application: %w", err)
	}

	return nil
}

func (r *ApplicationRepositoryImpl) GetByID(ctx context.Context, id int) (*entities.Application, error) {
	query := `
		SELECT ` + applicationColumns + `
		FROM applications
		WHERE id = $1 AND deleted_at IS NULL`

	var app entities.Application
	err := r.db.GetContext(ctx, &app, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, entities.ErrApplicationNotFound
		}
		return nil, fmt.Errorf("get application by id: %w", err)
	}

	return &app, nil
}

func (r *ApplicationRepositoryImpl) Update(ctx context.Context, app *entities.Application) error {
	query := `
		UPDATE applications
		SET position = $2, company = $3, location = $4, url = $5, status = $6,
			applied_date = $7, deadline = $8, interview_date = $9, notes = $10,
			updated_at = $11
		WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query,
		app.ID, app.Position, app.Company, app.Location, app.URL, app.Status,
		app.AppliedDate, app.Deadline, app.InterviewDate, app.Notes, app.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update application: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return entities.ErrApplicationNotFound
	}

	return nil
}

func (r *ApplicationRepositoryImpl) HardDelete(ctx context.Context, id int) error {
	query := `DELETE FROM applications WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete application: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return entities.ErrApplicationNotFound
	}

	return nil
}

func (r *ApplicationRepositoryImpl) List(ctx context.Context, filter ports.ApplicationFilter) ([]*entities.Application, int, error) {
	conditions := []string{"deleted_at IS NULL"}
	args := []interface{}{}
	argIndex := 1

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIndex))
		args = append(args, *filter.Status)
		argIndex++
	}
	if filter.Company != nil {
		conditions = append(conditions, fmt.Sprintf("company = $%d", argIndex))
		args = append(args, *filter.Company)
		argIndex++
	}
	if filter.Search != nil {
		conditions = append(conditions, fmt.Sprintf("(position LIKE $%d OR company LIKE $%d)", argIndex, argIndex))
		args = append(args, "%"+*filter.Search+"%")
		argIndex++
	}
	if filter.OpenOnly {
		conditions = append(conditions, "status NOT IN ('rejected', 'accepted', 'withdrawn')")
	}

	whereClause := "WHERE " + strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM applications %s", whereClause)

	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count applications: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM applications
		%s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d`, applicationColumns, whereClause, argIndex, argIndex+1)
	args = append(args, limit, filter.Offset)

	var apps []*entities.Application
	if err := r.db.SelectContext(ctx, &apps, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list applications: %w", err)
	}

	return apps, total, nil
}

func (r *ApplicationRepositoryImpl) AddStatusChange(ctx context.Context, change *entities.StatusChange) error {
	query := `
		INSERT INTO status_changes (application_id, from_status, to_status, note, changed_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	err := r.db.QueryRowContext(ctx, query,
		change.ApplicationID, change.FromStatus, change.ToStatus, change.Note, change.ChangedAt,
	).Scan(&change.ID)

	if err != nil {
		return fmt.Errorf("add status change: %w", err)
	}

	return nil
}

func (r *ApplicationRepositoryImpl) GetStatusHistory(ctx context.Context, applicationID int) ([]*entities.StatusChange, error) {
	query := `
		SELECT id, application_id, from_status, to_status, note, changed_at
		FROM status_changes
		WHERE application_id = $1
		ORDER BY changed_at ASC, id ASC`

	var changes []*entities.StatusChange
	if err := r.db.SelectContext(ctx, &changes, query, applicationID); err != nil {
		return nil, fmt.Errorf("get status history: %w", err)
	}

	return changes, nil
}
