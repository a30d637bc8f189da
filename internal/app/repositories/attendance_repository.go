package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yigit/campusdesk/internal/app/models"
	"github.com/yigit/campusdesk/internal/pkg/apperrors"
	"github.com/yigit/campusdesk/internal/pkg/dberrors"
	"github.com/yigit/campusdesk/internal/pkg/logger"
)

// IAttendanceRepository manages attendance records
type IAttendanceRepository interface {
	// Upsert writes every record, replacing the status of existing (enrollment, subject, date) rows.
	Upsert(ctx context.Context, records []*models.Attendance) error
	List(ctx context.Context, filter models.AttendanceFilter) ([]*models.Attendance, int64, error)
	Delete(ctx context.Context, id int64) error
	// SummaryByEnrollment counts statuses per subject. Percentage is left to the caller.
	SummaryByEnrollment(ctx context.Context, enrollment string) ([]*models.AttendanceSummary, error)
}

// AttendanceRepository handles attendance database operations
type AttendanceRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewAttendanceRepository creates a new AttendanceRepository
func NewAttendanceRepository(db *pgxpool.Pool) *AttendanceRepository {
	return &AttendanceRepository{db: db, sb: newBuilder()}
}

// Upsert writes a batch in a single statement
func (r *AttendanceRepository) Upsert(ctx context.Context, records []*models.Attendance) error {
	if len(records) == 0 {
		return nil
	}

	b := r.sb.Insert("attendance").Columns("enrollment_number", "subject", "date", "status", "marked_by")
	for _, rec := range records {
		b = b.Values(rec.EnrollmentNumber, rec.Subject, rec.Date, rec.Status, rec.MarkedBy)
	}
	sql, args, err := b.Suffix(`ON CONFLICT ON CONSTRAINT attendance_enrollment_number_subject_date_key
		DO UPDATE SET status = EXCLUDED.status, marked_by = EXCLUDED.marked_by
		RETURNING id, created_at`).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building upsert attendance SQL")
		return fmt.Errorf("failed to build upsert attendance query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return r.mapWriteError(err)
	}
	defer rows.Close()

	// RETURNING preserves VALUES order for a single-statement insert.
	i := 0
	for rows.Next() && i < len(records) {
		if err := rows.Scan(&records[i].ID, &records[i].CreatedAt); err != nil {
			return fmt.Errorf("error scanning attendance id: %w", err)
		}
		i++
	}
	if err := rows.Err(); err != nil {
		return r.mapWriteError(err)
	}
	return nil
}

func (r *AttendanceRepository) mapWriteError(err error) error {
	switch {
	case dberrors.IsForeignKeyViolation(err):
		return apperrors.ErrProfileNotFound.WithDetails(map[string]interface{}{"reason": "unknown enrollment number"})
	case dberrors.IsUniqueViolation(err):
		// ON CONFLICT cannot resolve the same key twice in one statement
		return apperrors.NewValidationError("records", "duplicate enrollment number in batch")
	}
	logger.Error().Err(err).Msg("Error executing upsert attendance query")
	return fmt.Errorf("error saving attendance: %w", err)
}

func attendanceFilter(f models.AttendanceFilter) squirrel.And {
	where := squirrel.And{}
	if f.EnrollmentNumber != "" {
		where = append(where, squirrel.Eq{"enrollment_number": f.EnrollmentNumber})
	}
	if f.Subject != "" {
		where = append(where, squirrel.Eq{"subject": f.Subject})
	}
	if f.From != nil {
		where = append(where, squirrel.GtOrEq{"date": *f.From})
	}
	if f.To != nil {
		where = append(where, squirrel.LtOrEq{"date": *f.To})
	}
	return where
}

func scanAttendance(row pgx.Row) (*models.Attendance, error) {
	var a models.Attendance
	var markedBy *int64
	if err := row.Scan(&a.ID, &a.EnrollmentNumber, &a.Subject, &a.Date, &a.Status, &markedBy, &a.CreatedAt); err != nil {
		return nil, err
	}
	if markedBy != nil {
		a.MarkedBy = *markedBy
	}
	return &a, nil
}

// List returns records newest date first
func (r *AttendanceRepository) List(ctx context.Context, f models.AttendanceFilter) ([]*models.Attendance, int64, error) {
	where := attendanceFilter(f)

	total, err := count(ctx, r.db, r.sb.Select("count(*)").From("attendance").Where(where))
	if err != nil {
		logger.Error().Err(err).Msg("Error counting attendance")
		return nil, 0, fmt.Errorf("error counting attendance: %w", err)
	}
	if total == 0 {
		return []*models.Attendance{}, 0, nil
	}

	b := r.sb.Select("id", "enrollment_number", "subject", "date", "status", "marked_by", "created_at").
		From("attendance").
		Where(where).
		OrderBy("date DESC", "subject", "enrollment_number")
	sql, args, err := page(b, f.Limit, f.Offset).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list attendance query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing attendance")
		return nil, 0, fmt.Errorf("error listing attendance: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Attendance, 0)
	for rows.Next() {
		a, err := scanAttendance(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning attendance: %w", err)
		}
		out = append(out, a)
	}
	return out, total, rows.Err()
}

// Delete removes one record
func (r *AttendanceRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM attendance WHERE id = $1`, id)
	if err != nil {
		logger.Error().Err(err).Int64("id", id).Msg("Error deleting attendance")
		return fmt.Errorf("error deleting attendance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrAttendanceNotFound
	}
	return nil
}

// SummaryByEnrollment aggregates a student's records per subject
func (r *AttendanceRepository) SummaryByEnrollment(ctx context.Context, enrollment string) ([]*models.AttendanceSummary, error) {
	sql, args, err := r.sb.Select(
		"subject",
		"count(*)",
		"count(*) FILTER (WHERE status = 'present')",
		"count(*) FILTER (WHERE status = 'late')",
		"count(*) FILTER (WHERE status = 'absent')",
	).
		From("attendance").
		Where(squirrel.Eq{"enrollment_number": enrollment}).
		GroupBy("subject").
		OrderBy("subject").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build attendance summary query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("enrollment", enrollment).Msg("Error summarizing attendance")
		return nil, fmt.Errorf("error summarizing attendance: %w", err)
	}
	defer rows.Close()

	out := make([]*models.AttendanceSummary, 0)
	for rows.Next() {
		var s models.AttendanceSummary
		if err := rows.Scan(&s.Subject, &s.Total, &s.Present, &s.Late, &s.Absent); err != nil {
			return nil, fmt.Errorf("error scanning attendance summary: %w", err)
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}
