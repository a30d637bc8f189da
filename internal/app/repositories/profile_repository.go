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

// IProfileRepository manages student profiles
type IProfileRepository interface {
	GetByUserID(ctx context.Context, userID int64) (*models.Profile, error)
	GetByEnrollment(ctx context.Context, enrollment string) (*models.Profile, error)
	List(ctx context.Context, filter models.ProfileFilter) ([]*models.Profile, int64, error)
	Update(ctx context.Context, profile *models.Profile) error
	SetVerify(ctx context.Context, userID int64, verify bool) (*models.Profile, error)
	EnrollmentExists(ctx context.Context, enrollment string) (bool, error)
}

// IFacultyProfileRepository manages faculty profiles
type IFacultyProfileRepository interface {
	GetByUserID(ctx context.Context, userID int64) (*models.FacultyProfile, error)
	List(ctx context.Context, verify *bool, limit, offset int) ([]*models.FacultyProfile, int64, error)
	Update(ctx context.Context, profile *models.FacultyProfile) error
	SetVerify(ctx context.Context, userID int64, verify bool) (*models.FacultyProfile, error)
}

var profileColumns = []string{
	"id", "user_id", "enrollment_number", "full_name", "email", "department",
	"semester", "section", "phone", "verify", "created_at", "updated_at",
}

func scanProfile(row pgx.Row) (*models.Profile, error) {
	var p models.Profile
	err := row.Scan(&p.ID, &p.UserID, &p.EnrollmentNumber, &p.FullName, &p.Email, &p.Department,
		&p.Semester, &p.Section, &p.Phone, &p.Verify, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrProfileNotFound
		}
		return nil, err
	}
	return &p, nil
}

func insertProfile(ctx context.Context, q querier, sb squirrel.StatementBuilderType, p *models.Profile) error {
	sql, args, err := sb.Insert("profiles").
		Columns("user_id", "enrollment_number", "full_name", "email", "department", "semester", "section", "phone", "verify").
		Values(p.UserID, p.EnrollmentNumber, p.FullName, p.Email, p.Department, p.Semester, p.Section, p.Phone, p.Verify).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create profile query: %w", err)
	}
	if err := q.QueryRow(ctx, sql, args...).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "profiles_enrollment_number_key") {
			return apperrors.ErrEnrollmentNumberExists
		}
		logger.Error().Err(err).Int64("userID", p.UserID).Msg("Error creating profile")
		return fmt.Errorf("error creating profile: %w", err)
	}
	return nil
}

// ProfileRepository handles student profile database operations
type ProfileRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewProfileRepository creates a new ProfileRepository
func NewProfileRepository(db *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{db: db, sb: newBuilder()}
}

func (r *ProfileRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*models.Profile, error) {
	sql, args, err := r.sb.Select(profileColumns...).From("profiles").Where(where).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get profile query: %w", err)
	}
	p, err := scanProfile(r.db.QueryRow(ctx, sql, args...))
	if err != nil && !errors.Is(err, apperrors.ErrProfileNotFound) {
		logger.Error().Err(err).Msg("Error retrieving profile")
	}
	return p, err
}

// GetByUserID retrieves the profile owned by a user
func (r *ProfileRepository) GetByUserID(ctx context.Context, userID int64) (*models.Profile, error) {
	return r.getOne(ctx, squirrel.Eq{"user_id": userID})
}

// GetByEnrollment retrieves a profile by enrollment number
func (r *ProfileRepository) GetByEnrollment(ctx context.Context, enrollment string) (*models.Profile, error) {
	return r.getOne(ctx, squirrel.Eq{"enrollment_number": enrollment})
}

// profileFilter builds the WHERE clause shared by List and its count
func profileFilter(f models.ProfileFilter) squirrel.And {
	where := squirrel.And{}
	if f.Department != "" {
		where = append(where, squirrel.Eq{"department": f.Department})
	}
	if f.Semester > 0 {
		where = append(where, squirrel.Eq{"semester": f.Semester})
	}
	if f.Section != "" {
		where = append(where, squirrel.Eq{"section": f.Section})
	}
	if f.Verify != nil {
		where = append(where, squirrel.Eq{"verify": *f.Verify})
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		where = append(where, squirrel.Or{
			squirrel.ILike{"full_name": like},
			squirrel.ILike{"enrollment_number": like},
		})
	}
	return where
}

// List returns profiles matching the filter, ordered by enrollment number
func (r *ProfileRepository) List(ctx context.Context, f models.ProfileFilter) ([]*models.Profile, int64, error) {
	where := profileFilter(f)

	total, err := count(ctx, r.db, r.sb.Select("count(*)").From("profiles").Where(where))
	if err != nil {
		logger.Error().Err(err).Msg("Error counting profiles")
		return nil, 0, fmt.Errorf("error counting profiles: %w", err)
	}
	if total == 0 {
		return []*models.Profile{}, 0, nil
	}

	b := r.sb.Select(profileColumns...).From("profiles").Where(where).OrderBy("enrollment_number")
	sql, args, err := page(b, f.Limit, f.Offset).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list profiles query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing profiles")
		return nil, 0, fmt.Errorf("error listing profiles: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Profile, 0)
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning profile: %w", err)
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

// Update writes the editable profile fields
func (r *ProfileRepository) Update(ctx context.Context, p *models.Profile) error {
	sql, args, err := r.sb.Update("profiles").
		Set("full_name", p.FullName).
		Set("department", p.Department).
		Set("semester", p.Semester).
		Set("section", p.Section).
		Set("phone", p.Phone).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"user_id": p.UserID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update profile query: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrProfileNotFound
		}
		logger.Error().Err(err).Int64("userID", p.UserID).Msg("Error updating profile")
		return fmt.Errorf("error updating profile: %w", err)
	}
	return nil
}

// SetVerify flips the verification flag and returns the updated profile
func (r *ProfileRepository) SetVerify(ctx context.Context, userID int64, verify bool) (*models.Profile, error) {
	sql, args, err := r.sb.Update("profiles").
		Set("verify", verify).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"user_id": userID}).
		Suffix("RETURNING " + joinColumns(profileColumns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build verify profile query: %w", err)
	}
	return scanProfile(r.db.QueryRow(ctx, sql, args...))
}

// EnrollmentExists checks if an enrollment number is registered
func (r *ProfileRepository) EnrollmentExists(ctx context.Context, enrollment string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM profiles WHERE enrollment_number = $1)`, enrollment).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking enrollment number: %w", err)
	}
	return exists, nil
}

var facultyProfileColumns = []string{
	"id", "user_id", "full_name", "email", "department", "designation", "phone", "verify", "created_at", "updated_at",
}

func scanFacultyProfile(row pgx.Row) (*models.FacultyProfile, error) {
	var p models.FacultyProfile
	err := row.Scan(&p.ID, &p.UserID, &p.FullName, &p.Email, &p.Department, &p.Designation,
		&p.Phone, &p.Verify, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrProfileNotFound
		}
		return nil, err
	}
	return &p, nil
}

func insertFacultyProfile(ctx context.Context, q querier, sb squirrel.StatementBuilderType, p *models.FacultyProfile) error {
	sql, args, err := sb.Insert("faculty_profiles").
		Columns("user_id", "full_name", "email", "department", "designation", "phone", "verify").
		Values(p.UserID, p.FullName, p.Email, p.Department, p.Designation, p.Phone, p.Verify).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create faculty profile query: %w", err)
	}
	if err := q.QueryRow(ctx, sql, args...).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		logger.Error().Err(err).Int64("userID", p.UserID).Msg("Error creating faculty profile")
		return fmt.Errorf("error creating faculty profile: %w", err)
	}
	return nil
}

// FacultyProfileRepository handles faculty profile database operations
type FacultyProfileRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewFacultyProfileRepository creates a new FacultyProfileRepository
func NewFacultyProfileRepository(db *pgxpool.Pool) *FacultyProfileRepository {
	return &FacultyProfileRepository{db: db, sb: newBuilder()}
}

// GetByUserID retrieves the faculty profile owned by a user
func (r *FacultyProfileRepository) GetByUserID(ctx context.Context, userID int64) (*models.FacultyProfile, error) {
	sql, args, err := r.sb.Select(facultyProfileColumns...).From("faculty_profiles").
		Where(squirrel.Eq{"user_id": userID}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get faculty profile query: %w", err)
	}
	p, err := scanFacultyProfile(r.db.QueryRow(ctx, sql, args...))
	if err != nil && !errors.Is(err, apperrors.ErrProfileNotFound) {
		logger.Error().Err(err).Int64("userID", userID).Msg("Error retrieving faculty profile")
	}
	return p, err
}

// List returns faculty profiles, optionally filtered by verification state
func (r *FacultyProfileRepository) List(ctx context.Context, verify *bool, limit, offset int) ([]*models.FacultyProfile, int64, error) {
	where := squirrel.And{}
	if verify != nil {
		where = append(where, squirrel.Eq{"verify": *verify})
	}

	total, err := count(ctx, r.db, r.sb.Select("count(*)").From("faculty_profiles").Where(where))
	if err != nil {
		logger.Error().Err(err).Msg("Error counting faculty profiles")
		return nil, 0, fmt.Errorf("error counting faculty profiles: %w", err)
	}
	if total == 0 {
		return []*models.FacultyProfile{}, 0, nil
	}

	b := r.sb.Select(facultyProfileColumns...).From("faculty_profiles").Where(where).OrderBy("full_name")
	sql, args, err := page(b, limit, offset).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list faculty profiles query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing faculty profiles")
		return nil, 0, fmt.Errorf("error listing faculty profiles: %w", err)
	}
	defer rows.Close()

	out := make([]*models.FacultyProfile, 0)
	for rows.Next() {
		p, err := scanFacultyProfile(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning faculty profile: %w", err)
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

// Update writes the editable faculty profile fields
func (r *FacultyProfileRepository) Update(ctx context.Context, p *models.FacultyProfile) error {
	sql, args, err := r.sb.Update("faculty_profiles").
		Set("full_name", p.FullName).
		Set("department", p.Department).
		Set("designation", p.Designation).
		Set("phone", p.Phone).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"user_id": p.UserID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update faculty profile query: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrProfileNotFound
		}
		logger.Error().Err(err).Int64("userID", p.UserID).Msg("Error updating faculty profile")
		return fmt.Errorf("error updating faculty profile: %w", err)
	}
	return nil
}

// SetVerify flips the verification flag and returns the updated profile
func (r *FacultyProfileRepository) SetVerify(ctx context.Context, userID int64, verify bool) (*models.FacultyProfile, error) {
	sql, args, err := r.sb.Update("faculty_profiles").
		Set("verify", verify).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"user_id": userID}).
		Suffix("RETURNING " + joinColumns(facultyProfileColumns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build verify faculty profile query: %w", err)
	}
	return scanFacultyProfile(r.db.QueryRow(ctx, sql, args...))
}
