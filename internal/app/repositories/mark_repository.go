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

// IMarkRepository manages marks
type IMarkRepository interface {
	Create(ctx context.Context, mark *models.Mark) error
	GetByID(ctx context.Context, id int64) (*models.Mark, error)
	Update(ctx context.Context, mark *models.Mark) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter models.MarkFilter) ([]*models.Mark, int64, error)
}

// MarkRepository handles marks database operations
type MarkRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewMarkRepository creates a new MarkRepository
func NewMarkRepository(db *pgxpool.Pool) *MarkRepository {
	return &MarkRepository{db: db, sb: newBuilder()}
}

var markColumns = []string{
	"id", "enrollment_number", "subject", "exam_type", "marks_obtained", "max_marks",
	"semester", "remarks", "created_by", "created_at", "updated_at",
}

func scanMark(row pgx.Row) (*models.Mark, error) {
	var m models.Mark
	var createdBy *int64
	err := row.Scan(&m.ID, &m.EnrollmentNumber, &m.Subject, &m.ExamType, &m.MarksObtained, &m.MaxMarks,
		&m.Semester, &m.Remarks, &createdBy, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrMarkNotFound
		}
		return nil, err
	}
	if createdBy != nil {
		m.CreatedBy = *createdBy
	}
	return &m, nil
}

func markWriteError(err error) error {
	switch {
	case dberrors.IsForeignKeyViolation(err):
		return apperrors.ErrProfileNotFound.WithDetails(map[string]interface{}{"reason": "unknown enrollment number"})
	case dberrors.IsCheckViolation(err):
		return apperrors.NewValidationError("marksObtained", "marks must be between 0 and the maximum")
	}
	return nil
}

// Create inserts a mark. Its insert trigger feeds the marks stream.
func (r *MarkRepository) Create(ctx context.Context, m *models.Mark) error {
	sql, args, err := r.sb.Insert("marks").
		Columns("enrollment_number", "subject", "exam_type", "marks_obtained", "max_marks", "semester", "remarks", "created_by").
		Values(m.EnrollmentNumber, m.Subject, m.ExamType, m.MarksObtained, m.MaxMarks, m.Semester, m.Remarks, m.CreatedBy).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create mark SQL")
		return fmt.Errorf("failed to build create mark query: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt); err != nil {
		if mapped := markWriteError(err); mapped != nil {
			return mapped
		}
		logger.Error().Err(err).Str("enrollment", m.EnrollmentNumber).Msg("Error executing create mark query")
		return fmt.Errorf("error creating mark: %w", err)
	}
	return nil
}

// GetByID retrieves a mark
func (r *MarkRepository) GetByID(ctx context.Context, id int64) (*models.Mark, error) {
	sql, args, err := r.sb.Select(markColumns...).From("marks").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get mark query: %w", err)
	}
	return scanMark(r.db.QueryRow(ctx, sql, args...))
}

// Update rewrites the score fields of a mark
func (r *MarkRepository) Update(ctx context.Context, m *models.Mark) error {
	sql, args, err := r.sb.Update("marks").
		Set("subject", m.Subject).
		Set("exam_type", m.ExamType).
		Set("marks_obtained", m.MarksObtained).
		Set("max_marks", m.MaxMarks).
		Set("semester", m.Semester).
		Set("remarks", m.Remarks).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": m.ID}).
		Suffix("RETURNING enrollment_number, created_by, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update mark query: %w", err)
	}

	var createdBy *int64
	err = r.db.QueryRow(ctx, sql, args...).Scan(&m.EnrollmentNumber, &createdBy, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrMarkNotFound
		}
		if mapped := markWriteError(err); mapped != nil {
			return mapped
		}
		logger.Error().Err(err).Int64("id", m.ID).Msg("Error updating mark")
		return fmt.Errorf("error updating mark: %w", err)
	}
	if createdBy != nil {
		m.CreatedBy = *createdBy
	}
	return nil
}

// Delete removes a mark
func (r *MarkRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM marks WHERE id = $1`, id)
	if err != nil {
		logger.Error().Err(err).Int64("id", id).Msg("Error deleting mark")
		return fmt.Errorf("error deleting mark: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrMarkNotFound
	}
	return nil
}

// List returns marks newest first
func (r *MarkRepository) List(ctx context.Context, f models.MarkFilter) ([]*models.Mark, int64, error) {
	where := squirrel.And{}
	if f.EnrollmentNumber != "" {
		where = append(where, squirrel.Eq{"enrollment_number": f.EnrollmentNumber})
	}
	if f.Subject != "" {
		where = append(where, squirrel.Eq{"subject": f.Subject})
	}
	if f.Semester > 0 {
		where = append(where, squirrel.Eq{"semester": f.Semester})
	}

	total, err := count(ctx, r.db, r.sb.Select("count(*)").From("marks").Where(where))
	if err != nil {
		logger.Error().Err(err).Msg("Error counting marks")
		return nil, 0, fmt.Errorf("error counting marks: %w", err)
	}
	if total == 0 {
		return []*models.Mark{}, 0, nil
	}

	b := r.sb.Select(markColumns...).From("marks").Where(where).OrderBy("created_at DESC", "id DESC")
	sql, args, err := page(b, f.Limit, f.Offset).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list marks query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing marks")
		return nil, 0, fmt.Errorf("error listing marks: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Mark, 0)
	for rows.Next() {
		m, err := scanMark(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning mark: %w", err)
		}
		out = append(out, m)
	}
	return out, total, rows.Err()
}
