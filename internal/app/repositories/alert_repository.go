package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yigit/campusdesk/internal/app/models"
	"github.com/yigit/campusdesk/internal/pkg/apperrors"
	"github.com/yigit/campusdesk/internal/pkg/dberrors"
	"github.com/yigit/campusdesk/internal/pkg/logger"
)

// IAlertRepository manages faculty-issued alerts (the notifications table)
type IAlertRepository interface {
	Create(ctx context.Context, alert *models.Alert) error
	// List returns alerts newest first. A non-empty enrollment returns that
	// student's alerts plus broadcasts.
	List(ctx context.Context, enrollment string, limit, offset int) ([]*models.Alert, int64, error)
	Delete(ctx context.Context, id int64) error
}

// AlertRepository handles alert database operations
type AlertRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewAlertRepository creates a new AlertRepository
func NewAlertRepository(db *pgxpool.Pool) *AlertRepository {
	return &AlertRepository{db: db, sb: newBuilder()}
}

// Create inserts an alert. Its insert trigger feeds the alerts stream.
func (r *AlertRepository) Create(ctx context.Context, a *models.Alert) error {
	sql, args, err := r.sb.Insert("notifications").
		Columns("title", "message", "type", "enrollment_number", "created_by").
		Values(a.Title, a.Message, a.Type, a.EnrollmentNumber, a.CreatedBy).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create alert SQL")
		return fmt.Errorf("failed to build create alert query: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&a.ID, &a.CreatedAt); err != nil {
		if dberrors.IsCheckViolation(err) {
			return apperrors.NewValidationError("type", "unknown alert type")
		}
		logger.Error().Err(err).Msg("Error executing create alert query")
		return fmt.Errorf("error creating alert: %w", err)
	}
	return nil
}

// List returns alerts newest first
func (r *AlertRepository) List(ctx context.Context, enrollment string, limit, offset int) ([]*models.Alert, int64, error) {
	where := squirrel.And{}
	if enrollment != "" {
		where = append(where, squirrel.Or{
			squirrel.Eq{"enrollment_number": nil},
			squirrel.Eq{"enrollment_number": enrollment},
		})
	}

	total, err := count(ctx, r.db, r.sb.Select("count(*)").From("notifications").Where(where))
	if err != nil {
		logger.Error().Err(err).Msg("Error counting alerts")
		return nil, 0, fmt.Errorf("error counting alerts: %w", err)
	}
	if total == 0 {
		return []*models.Alert{}, 0, nil
	}

	b := r.sb.Select("id", "title", "message", "type", "enrollment_number", "created_by", "created_at").
		From("notifications").Where(where).OrderBy("created_at DESC", "id DESC")
	sql, args, err := page(b, limit, offset).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list alerts query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing alerts")
		return nil, 0, fmt.Errorf("error listing alerts: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Alert, 0)
	for rows.Next() {
		var a models.Alert
		var createdBy *int64
		if err := rows.Scan(&a.ID, &a.Title, &a.Message, &a.Type, &a.EnrollmentNumber, &createdBy, &a.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("error scanning alert: %w", err)
		}
		if createdBy != nil {
			a.CreatedBy = *createdBy
		}
		out = append(out, &a)
	}
	return out, total, rows.Err()
}

// Delete removes an alert
func (r *AlertRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM notifications WHERE id = $1`, id)
	if err != nil {
		logger.Error().Err(err).Int64("id", id).Msg("Error deleting alert")
		return fmt.Errorf("error deleting alert: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrAlertNotFound
	}
	return nil
}
