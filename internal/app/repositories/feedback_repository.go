package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yigit/campusdesk/internal/app/models"
	"github.com/yigit/campusdesk/internal/pkg/apperrors"
	"github.com/yigit/campusdesk/internal/pkg/logger"
)

// IFeedbackRepository manages feedback submissions
type IFeedbackRepository interface {
	Create(ctx context.Context, feedback *models.Feedback) error
	List(ctx context.Context, category string, limit, offset int) ([]*models.Feedback, int64, error)
	Delete(ctx context.Context, id int64) error
}

// FeedbackRepository handles feedback database operations
type FeedbackRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewFeedbackRepository creates a new FeedbackRepository
func NewFeedbackRepository(db *pgxpool.Pool) *FeedbackRepository {
	return &FeedbackRepository{db: db, sb: newBuilder()}
}

// Create stores a submission. A nil EnrollmentNumber keeps it anonymous.
func (r *FeedbackRepository) Create(ctx context.Context, f *models.Feedback) error {
	sql, args, err := r.sb.Insert("feedback").
		Columns("enrollment_number", "category", "subject", "message", "rating").
		Values(f.EnrollmentNumber, f.Category, f.Subject, f.Message, f.Rating).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create feedback query: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&f.ID, &f.CreatedAt); err != nil {
		logger.Error().Err(err).Msg("Error creating feedback")
		return fmt.Errorf("error creating feedback: %w", err)
	}
	return nil
}

// List returns submissions newest first
func (r *FeedbackRepository) List(ctx context.Context, category string, limit, offset int) ([]*models.Feedback, int64, error) {
	where := squirrel.And{}
	if category != "" {
		where = append(where, squirrel.Eq{"category": category})
	}

	total, err := count(ctx, r.db, r.sb.Select("count(*)").From("feedback").Where(where))
	if err != nil {
		logger.Error().Err(err).Msg("Error counting feedback")
		return nil, 0, fmt.Errorf("error counting feedback: %w", err)
	}
	if total == 0 {
		return []*models.Feedback{}, 0, nil
	}

	b := r.sb.Select("id", "enrollment_number", "category", "subject", "message", "rating", "created_at").
		From("feedback").Where(where).OrderBy("created_at DESC", "id DESC")
	sql, args, err := page(b, limit, offset).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list feedback query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing feedback")
		return nil, 0, fmt.Errorf("error listing feedback: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Feedback, 0)
	for rows.Next() {
		var f models.Feedback
		if err := rows.Scan(&f.ID, &f.EnrollmentNumber, &f.Category, &f.Subject, &f.Message, &f.Rating, &f.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("error scanning feedback: %w", err)
		}
		out = append(out, &f)
	}
	return out, total, rows.Err()
}

// Delete removes a submission
func (r *FeedbackRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM feedback WHERE id = $1`, id)
	if err != nil {
		logger.Error().Err(err).Int64("id", id).Msg("Error deleting feedback")
		return fmt.Errorf("error deleting feedback: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrFeedbackNotFound
	}
	return nil
}
