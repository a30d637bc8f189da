package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yigit/campusdesk/internal/app/models"
	"github.com/yigit/campusdesk/internal/pkg/apperrors"
	"github.com/yigit/campusdesk/internal/pkg/logger"
)

// INoticeRepository manages notices
type INoticeRepository interface {
	Create(ctx context.Context, notice *models.Notice) error
	GetByID(ctx context.Context, id int64) (*models.Notice, error)
	List(ctx context.Context, filter models.NoticeFilter) ([]*models.Notice, int64, error)
	// Delete returns the deleted row so its attachment can be removed.
	Delete(ctx context.Context, id int64) (*models.Notice, error)
}

// IStudyMaterialRepository manages study materials
type IStudyMaterialRepository interface {
	Create(ctx context.Context, material *models.StudyMaterial) error
	GetByID(ctx context.Context, id int64) (*models.StudyMaterial, error)
	List(ctx context.Context, filter models.MaterialFilter) ([]*models.StudyMaterial, int64, error)
	Delete(ctx context.Context, id int64) (*models.StudyMaterial, error)
}

// NoticeRepository handles notice database operations
type NoticeRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewNoticeRepository creates a new NoticeRepository
func NewNoticeRepository(db *pgxpool.Pool) *NoticeRepository {
	return &NoticeRepository{db: db, sb: newBuilder()}
}

var noticeColumns = []string{
	"id", "title", "content", "category", "audience", "attachment_key", "attachment_name", "created_by", "created_at",
}

func scanNotice(row pgx.Row) (*models.Notice, error) {
	var n models.Notice
	var createdBy *int64
	err := row.Scan(&n.ID, &n.Title, &n.Content, &n.Category, &n.Audience,
		&n.AttachmentKey, &n.AttachmentName, &createdBy, &n.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNoticeNotFound
		}
		return nil, err
	}
	if createdBy != nil {
		n.CreatedBy = *createdBy
	}
	return &n, nil
}

// Create inserts a notice. Its insert trigger feeds the notices stream.
func (r *NoticeRepository) Create(ctx context.Context, n *models.Notice) error {
	sql, args, err := r.sb.Insert("notices").
		Columns("title", "content", "category", "audience", "attachment_key", "attachment_name", "created_by").
		Values(n.Title, n.Content, n.Category, n.Audience, n.AttachmentKey, n.AttachmentName, n.CreatedBy).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create notice SQL")
		return fmt.Errorf("failed to build create notice query: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&n.ID, &n.CreatedAt); err != nil {
		logger.Error().Err(err).Msg("Error executing create notice query")
		return fmt.Errorf("error creating notice: %w", err)
	}
	return nil
}

// GetByID retrieves a notice
func (r *NoticeRepository) GetByID(ctx context.Context, id int64) (*models.Notice, error) {
	sql, args, err := r.sb.Select(noticeColumns...).From("notices").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get notice query: %w", err)
	}
	return scanNotice(r.db.QueryRow(ctx, sql, args...))
}

// List returns notices newest first
func (r *NoticeRepository) List(ctx context.Context, f models.NoticeFilter) ([]*models.Notice, int64, error) {
	where := squirrel.And{}
	if len(f.Audiences) > 0 {
		where = append(where, squirrel.Eq{"audience": f.Audiences})
	}
	if f.Category != "" {
		where = append(where, squirrel.Eq{"category": f.Category})
	}

	total, err := count(ctx, r.db, r.sb.Select("count(*)").From("notices").Where(where))
	if err != nil {
		logger.Error().Err(err).Msg("Error counting notices")
		return nil, 0, fmt.Errorf("error counting notices: %w", err)
	}
	if total == 0 {
		return []*models.Notice{}, 0, nil
	}

	b := r.sb.Select(noticeColumns...).From("notices").Where(where).OrderBy("created_at DESC", "id DESC")
	sql, args, err := page(b, f.Limit, f.Offset).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list notices query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing notices")
		return nil, 0, fmt.Errorf("error listing notices: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Notice, 0)
	for rows.Next() {
		n, err := scanNotice(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning notice: %w", err)
		}
		out = append(out, n)
	}
	return out, total, rows.Err()
}

// Delete removes a notice
func (r *NoticeRepository) Delete(ctx context.Context, id int64) (*models.Notice, error) {
	sql, args, err := r.sb.Delete("notices").
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + joinColumns(noticeColumns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build delete notice query: %w", err)
	}
	return scanNotice(r.db.QueryRow(ctx, sql, args...))
}

// StudyMaterialRepository handles study material database operations
type StudyMaterialRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewStudyMaterialRepository creates a new StudyMaterialRepository
func NewStudyMaterialRepository(db *pgxpool.Pool) *StudyMaterialRepository {
	return &StudyMaterialRepository{db: db, sb: newBuilder()}
}

var materialColumns = []string{
	"id", "title", "description", "subject", "semester", "department",
	"file_key", "file_name", "content_type", "file_size", "uploaded_by", "created_at",
}

func scanMaterial(row pgx.Row) (*models.StudyMaterial, error) {
	var m models.StudyMaterial
	var uploadedBy *int64
	err := row.Scan(&m.ID, &m.Title, &m.Description, &m.Subject, &m.Semester, &m.Department,
		&m.FileKey, &m.FileName, &m.ContentType, &m.FileSize, &uploadedBy, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrStudyMaterialNotFound
		}
		return nil, err
	}
	if uploadedBy != nil {
		m.UploadedBy = *uploadedBy
	}
	return &m, nil
}

// Create inserts a study material
func (r *StudyMaterialRepository) Create(ctx context.Context, m *models.StudyMaterial) error {
	sql, args, err := r.sb.Insert("study_materials").
		Columns("title", "description", "subject", "semester", "department",
			"file_key", "file_name", "content_type", "file_size", "uploaded_by").
		Values(m.Title, m.Description, m.Subject, m.Semester, m.Department,
			m.FileKey, m.FileName, m.ContentType, m.FileSize, m.UploadedBy).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create study material SQL")
		return fmt.Errorf("failed to build create study material query: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&m.ID, &m.CreatedAt); err != nil {
		logger.Error().Err(err).Msg("Error executing create study material query")
		return fmt.Errorf("error creating study material: %w", err)
	}
	return nil
}

// GetByID retrieves a study material
func (r *StudyMaterialRepository) GetByID(ctx context.Context, id int64) (*models.StudyMaterial, error) {
	sql, args, err := r.sb.Select(materialColumns...).From("study_materials").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get study material query: %w", err)
	}
	return scanMaterial(r.db.QueryRow(ctx, sql, args...))
}

// List returns study materials newest first
func (r *StudyMaterialRepository) List(ctx context.Context, f models.MaterialFilter) ([]*models.StudyMaterial, int64, error) {
	where := squirrel.And{}
	if f.Subject != "" {
		where = append(where, squirrel.Eq{"subject": f.Subject})
	}
	if f.Semester > 0 {
		where = append(where, squirrel.Eq{"semester": f.Semester})
	}
	if f.Department != "" {
		where = append(where, squirrel.Eq{"department": f.Department})
	}

	total, err := count(ctx, r.db, r.sb.Select("count(*)").From("study_materials").Where(where))
	if err != nil {
		logger.Error().Err(err).Msg("Error counting study materials")
		return nil, 0, fmt.Errorf("error counting study materials: %w", err)
	}
	if total == 0 {
		return []*models.StudyMaterial{}, 0, nil
	}

	b := r.sb.Select(materialColumns...).From("study_materials").Where(where).OrderBy("created_at DESC", "id DESC")
	sql, args, err := page(b, f.Limit, f.Offset).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list study materials query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing study materials")
		return nil, 0, fmt.Errorf("error listing study materials: %w", err)
	}
	defer rows.Close()

	out := make([]*models.StudyMaterial, 0)
	for rows.Next() {
		m, err := scanMaterial(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning study material: %w", err)
		}
		out = append(out, m)
	}
	return out, total, rows.Err()
}

// Delete removes a study material
func (r *StudyMaterialRepository) Delete(ctx context.Context, id int64) (*models.StudyMaterial, error) {
	sql, args, err := r.sb.Delete("study_materials").
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + joinColumns(materialColumns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build delete study material query: %w", err)
	}
	return scanMaterial(r.db.QueryRow(ctx, sql, args...))
}
