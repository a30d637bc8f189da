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

// IPerformanceReportRepository manages performance reports
type IPerformanceReportRepository interface {
	Create(ctx context.Context, report *models.PerformanceReport) error
	List(ctx context.Context, enrollment string, semester int) ([]*models.PerformanceReport, error)
	Delete(ctx context.Context, id int64) error
}

// IClassRepresentativeRepository manages class representatives
type IClassRepresentativeRepository interface {
	// Create fails with ErrClassRepExists when the class already has one for the year.
	Create(ctx context.Context, rep *models.ClassRepresentative) error
	List(ctx context.Context, filter models.ClassFilter, academicYear string) ([]*models.ClassRepresentative, error)
	Delete(ctx context.Context, id int64) error
}

// PerformanceReportRepository handles performance report database operations
type PerformanceReportRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewPerformanceReportRepository creates a new PerformanceReportRepository
func NewPerformanceReportRepository(db *pgxpool.Pool) *PerformanceReportRepository {
	return &PerformanceReportRepository{db: db, sb: newBuilder()}
}

// Create inserts a report
func (r *PerformanceReportRepository) Create(ctx context.Context, rep *models.PerformanceReport) error {
	sql, args, err := r.sb.Insert("performance_reports").
		Columns("enrollment_number", "semester", "summary", "strengths", "improvements", "grade", "created_by").
		Values(rep.EnrollmentNumber, rep.Semester, rep.Summary, rep.Strengths, rep.Improvements, rep.Grade, rep.CreatedBy).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create report query: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&rep.ID, &rep.CreatedAt); err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrProfileNotFound
		}
		logger.Error().Err(err).Str("enrollment", rep.EnrollmentNumber).Msg("Error creating performance report")
		return fmt.Errorf("error creating performance report: %w", err)
	}
	return nil
}

// List returns reports newest first, optionally for one student and semester
func (r *PerformanceReportRepository) List(ctx context.Context, enrollment string, semester int) ([]*models.PerformanceReport, error) {
	b := r.sb.Select("id", "enrollment_number", "semester", "summary", "strengths", "improvements", "grade", "created_by", "created_at").
		From("performance_reports")
	if enrollment != "" {
		b = b.Where(squirrel.Eq{"enrollment_number": enrollment})
	}
	if semester > 0 {
		b = b.Where(squirrel.Eq{"semester": semester})
	}
	sql, args, err := b.OrderBy("created_at DESC", "id DESC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list reports query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing performance reports")
		return nil, fmt.Errorf("error listing performance reports: %w", err)
	}
	defer rows.Close()

	out := make([]*models.PerformanceReport, 0)
	for rows.Next() {
		var rep models.PerformanceReport
		var createdBy *int64
		if err := rows.Scan(&rep.ID, &rep.EnrollmentNumber, &rep.Semester, &rep.Summary, &rep.Strengths,
			&rep.Improvements, &rep.Grade, &createdBy, &rep.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning performance report: %w", err)
		}
		if createdBy != nil {
			rep.CreatedBy = *createdBy
		}
		out = append(out, &rep)
	}
	return out, rows.Err()
}

// Delete removes a report
func (r *PerformanceReportRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM performance_reports WHERE id = $1`, id)
	if err != nil {
		logger.Error().Err(err).Int64("id", id).Msg("Error deleting performance report")
		return fmt.Errorf("error deleting performance report: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrReportNotFound
	}
	return nil
}

// ClassRepresentativeRepository handles class representative database operations
type ClassRepresentativeRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewClassRepresentativeRepository creates a new ClassRepresentativeRepository
func NewClassRepresentativeRepository(db *pgxpool.Pool) *ClassRepresentativeRepository {
	return &ClassRepresentativeRepository{db: db, sb: newBuilder()}
}

// Create assigns a representative
func (r *ClassRepresentativeRepository) Create(ctx context.Context, rep *models.ClassRepresentative) error {
	sql, args, err := r.sb.Insert("class_representatives").
		Columns("enrollment_number", "department", "semester", "section", "academic_year", "assigned_by").
		Values(rep.EnrollmentNumber, rep.Department, rep.Semester, rep.Section, rep.AcademicYear, rep.AssignedBy).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create class representative query: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&rep.ID, &rep.CreatedAt); err != nil {
		switch {
		case dberrors.IsDuplicateConstraintError(err, "class_representatives_class_year_key"):
			return apperrors.ErrClassRepExists
		case dberrors.IsForeignKeyViolation(err):
			return apperrors.ErrProfileNotFound
		}
		logger.Error().Err(err).Str("enrollment", rep.EnrollmentNumber).Msg("Error creating class representative")
		return fmt.Errorf("error creating class representative: %w", err)
	}
	return nil
}

// List returns representatives joined with the student's name
func (r *ClassRepresentativeRepository) List(ctx context.Context, f models.ClassFilter, academicYear string) ([]*models.ClassRepresentative, error) {
	b := r.sb.Select("cr.id", "cr.enrollment_number", "p.full_name", "cr.department", "cr.semester",
		"cr.section", "cr.academic_year", "cr.assigned_by", "cr.created_at").
		From("class_representatives cr").
		Join("profiles p ON p.enrollment_number = cr.enrollment_number")
	if f.Department != "" {
		b = b.Where(squirrel.Eq{"cr.department": f.Department})
	}
	if f.Semester > 0 {
		b = b.Where(squirrel.Eq{"cr.semester": f.Semester})
	}
	if f.Section != "" {
		b = b.Where(squirrel.Eq{"cr.section": f.Section})
	}
	if academicYear != "" {
		b = b.Where(squirrel.Eq{"cr.academic_year": academicYear})
	}
	sql, args, err := b.OrderBy("cr.academic_year DESC", "cr.department", "cr.semester", "cr.section").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list class representatives query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing class representatives")
		return nil, fmt.Errorf("error listing class representatives: %w", err)
	}
	defer rows.Close()

	out := make([]*models.ClassRepresentative, 0)
	for rows.Next() {
		var rep models.ClassRepresentative
		var assignedBy *int64
		if err := rows.Scan(&rep.ID, &rep.EnrollmentNumber, &rep.StudentName, &rep.Department, &rep.Semester,
			&rep.Section, &rep.AcademicYear, &assignedBy, &rep.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning class representative: %w", err)
		}
		if assignedBy != nil {
			rep.AssignedBy = *assignedBy
		}
		out = append(out, &rep)
	}
	return out, rows.Err()
}

// Delete removes a representative
func (r *ClassRepresentativeRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM class_representatives WHERE id = $1`, id)
	if err != nil {
		logger.Error().Err(err).Int64("id", id).Msg("Error deleting class representative")
		return fmt.Errorf("error deleting class representative: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrClassRepNotFound
	}
	return nil
}
