package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yigit/campusdesk/internal/app/models"
	"github.com/yigit/campusdesk/internal/pkg/apperrors"
	"github.com/yigit/campusdesk/internal/pkg/dberrors"
	"github.com/yigit/campusdesk/internal/pkg/logger"
)

// IPlacementRepository manages placement drives
type IPlacementRepository interface {
	Create(ctx context.Context, placement *models.Placement) error
	GetByID(ctx context.Context, id int64) (*models.Placement, error)
	// List returns drives by deadline. A non-empty enrollment fills HasApplied.
	List(ctx context.Context, enrollment string, limit, offset int) ([]*models.Placement, int64, error)
	Delete(ctx context.Context, id int64) error
}

// IPlacementApplicationRepository manages applications to drives
type IPlacementApplicationRepository interface {
	// Create fails with ErrAlreadyApplied on a second application to the same drive.
	Create(ctx context.Context, application *models.PlacementApplication) error
	ListByPlacement(ctx context.Context, placementID int64) ([]*models.PlacementApplication, error)
	ListByEnrollment(ctx context.Context, enrollment string) ([]*models.PlacementApplication, error)
	UpdateStatus(ctx context.Context, id int64, status models.ApplicationStatus) (*models.PlacementApplication, error)
}

// PlacementRepository handles placement database operations
type PlacementRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewPlacementRepository creates a new PlacementRepository
func NewPlacementRepository(db *pgxpool.Pool) *PlacementRepository {
	return &PlacementRepository{db: db, sb: newBuilder()}
}

var placementColumns = []string{
	"p.id", "p.company_name", "p.role", "p.description", "p.package", "p.location",
	"p.eligibility", "p.deadline", "p.created_by", "p.created_at",
}

func scanPlacement(row pgx.Row, extra ...any) (*models.Placement, error) {
	var p models.Placement
	var createdBy *int64
	dest := []any{&p.ID, &p.CompanyName, &p.Role, &p.Description, &p.Package, &p.Location,
		&p.Eligibility, &p.Deadline, &createdBy, &p.CreatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrPlacementNotFound
		}
		return nil, err
	}
	if createdBy != nil {
		p.CreatedBy = *createdBy
	}
	return &p, nil
}

// Create inserts a drive. Its insert trigger feeds the placements stream.
func (r *PlacementRepository) Create(ctx context.Context, p *models.Placement) error {
	sql, args, err := r.sb.Insert("placements").
		Columns("company_name", "role", "description", "package", "location", "eligibility", "deadline", "created_by").
		Values(p.CompanyName, p.Role, p.Description, p.Package, p.Location, p.Eligibility, p.Deadline, p.CreatedBy).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create placement SQL")
		return fmt.Errorf("failed to build create placement query: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&p.ID, &p.CreatedAt); err != nil {
		logger.Error().Err(err).Str("company", p.CompanyName).Msg("Error executing create placement query")
		return fmt.Errorf("error creating placement: %w", err)
	}
	return nil
}

// GetByID retrieves a drive
func (r *PlacementRepository) GetByID(ctx context.Context, id int64) (*models.Placement, error) {
	sql, args, err := r.sb.Select(placementColumns...).From("placements p").Where(squirrel.Eq{"p.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get placement query: %w", err)
	}
	return scanPlacement(r.db.QueryRow(ctx, sql, args...))
}

// List returns drives, soonest deadline first
func (r *PlacementRepository) List(ctx context.Context, enrollment string, limit, offset int) ([]*models.Placement, int64, error) {
	total, err := count(ctx, r.db, r.sb.Select("count(*)").From("placements"))
	if err != nil {
		logger.Error().Err(err).Msg("Error counting placements")
		return nil, 0, fmt.Errorf("error counting placements: %w", err)
	}
	if total == 0 {
		return []*models.Placement{}, 0, nil
	}

	b := r.sb.Select(placementColumns...).From("placements p")
	withApplied := enrollment != ""
	if withApplied {
		b = b.Column(squirrel.Expr(
			"EXISTS (SELECT 1 FROM placement_applications a WHERE a.placement_id = p.id AND a.enrollment_number = ?)",
			enrollment))
	}
	sql, args, err := page(b.OrderBy("p.deadline DESC", "p.id DESC"), limit, offset).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list placements query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing placements")
		return nil, 0, fmt.Errorf("error listing placements: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Placement, 0)
	for rows.Next() {
		var hasApplied bool
		var extra []any
		if withApplied {
			extra = append(extra, &hasApplied)
		}
		p, err := scanPlacement(rows, extra...)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning placement: %w", err)
		}
		p.HasApplied = hasApplied
		out = append(out, p)
	}
	return out, total, rows.Err()
}

// Delete removes a drive and its applications
func (r *PlacementRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM placements WHERE id = $1`, id)
	if err != nil {
		logger.Error().Err(err).Int64("id", id).Msg("Error deleting placement")
		return fmt.Errorf("error deleting placement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrPlacementNotFound
	}
	return nil
}

// PlacementApplicationRepository handles application database operations
type PlacementApplicationRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewPlacementApplicationRepository creates a new PlacementApplicationRepository
func NewPlacementApplicationRepository(db *pgxpool.Pool) *PlacementApplicationRepository {
	return &PlacementApplicationRepository{db: db, sb: newBuilder()}
}

func (r *PlacementApplicationRepository) selectQuery() squirrel.SelectBuilder {
	return r.sb.Select("a.id", "a.placement_id", "a.enrollment_number", "a.status", "a.resume_url",
		"a.applied_at", "a.updated_at", "p.company_name", "p.role").
		From("placement_applications a").
		Join("placements p ON p.id = a.placement_id")
}

func scanApplication(row pgx.Row) (*models.PlacementApplication, error) {
	var a models.PlacementApplication
	err := row.Scan(&a.ID, &a.PlacementID, &a.EnrollmentNumber, &a.Status, &a.ResumeURL,
		&a.AppliedAt, &a.UpdatedAt, &a.CompanyName, &a.Role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrApplicationNotFound
		}
		return nil, err
	}
	return &a, nil
}

// Create records an application
func (r *PlacementApplicationRepository) Create(ctx context.Context, a *models.PlacementApplication) error {
	if a.Status == "" {
		a.Status = models.ApplicationApplied
	}
	sql, args, err := r.sb.Insert("placement_applications").
		Columns("placement_id", "enrollment_number", "status", "resume_url").
		Values(a.PlacementID, a.EnrollmentNumber, a.Status, a.ResumeURL).
		Suffix("RETURNING id, applied_at, updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create application SQL")
		return fmt.Errorf("failed to build create application query: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&a.ID, &a.AppliedAt, &a.UpdatedAt); err != nil {
		switch {
		case dberrors.IsDuplicateConstraintError(err, "placement_applications_placement_id_enrollment_number_key"):
			return apperrors.ErrAlreadyApplied
		case dberrors.IsForeignKeyViolation(err):
			return apperrors.ErrPlacementNotFound
		}
		logger.Error().Err(err).Int64("placementID", a.PlacementID).Msg("Error executing create application query")
		return fmt.Errorf("error creating application: %w", err)
	}
	return nil
}

func (r *PlacementApplicationRepository) list(ctx context.Context, where squirrel.Sqlizer, orderBy ...string) ([]*models.PlacementApplication, error) {
	sql, args, err := r.selectQuery().Where(where).OrderBy(orderBy...).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list applications query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing applications")
		return nil, fmt.Errorf("error listing applications: %w", err)
	}
	defer rows.Close()

	out := make([]*models.PlacementApplication, 0)
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning application: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// ListByPlacement returns a drive's applicants in application order
func (r *PlacementApplicationRepository) ListByPlacement(ctx context.Context, placementID int64) ([]*models.PlacementApplication, error) {
	return r.list(ctx, squirrel.Eq{"a.placement_id": placementID}, "a.applied_at", "a.id")
}

// ListByEnrollment returns a student's applications, newest first
func (r *PlacementApplicationRepository) ListByEnrollment(ctx context.Context, enrollment string) ([]*models.PlacementApplication, error) {
	return r.list(ctx, squirrel.Eq{"a.enrollment_number": enrollment}, "a.applied_at DESC", "a.id DESC")
}

// UpdateStatus sets an application's status
func (r *PlacementApplicationRepository) UpdateStatus(ctx context.Context, id int64, status models.ApplicationStatus) (*models.PlacementApplication, error) {
	sql, args, err := r.sb.Update("placement_applications").
		Set("status", status).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build update application query: %w", err)
	}
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("id", id).Msg("Error updating application status")
		return nil, fmt.Errorf("error updating application: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, apperrors.ErrApplicationNotFound
	}

	sql, args, err = r.selectQuery().Where(squirrel.Eq{"a.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get application query: %w", err)
	}
	return scanApplication(r.db.QueryRow(ctx, sql, args...))
}
