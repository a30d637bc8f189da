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

// IRoleRepository manages user_roles rows
type IRoleRepository interface {
	ListByUser(ctx context.Context, userID int64) ([]models.Role, error)
	List(ctx context.Context, role models.Role, limit, offset int) ([]*models.UserRole, int64, error)
	Grant(ctx context.Context, userID int64, role models.Role) (*models.UserRole, error)
	Revoke(ctx context.Context, userID int64, role models.Role) error
}

// RoleRepository handles user_roles database operations
type RoleRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewRoleRepository creates a new RoleRepository
func NewRoleRepository(db *pgxpool.Pool) *RoleRepository {
	return &RoleRepository{db: db, sb: newBuilder()}
}

// ListByUser returns every role granted to the user
func (r *RoleRepository) ListByUser(ctx context.Context, userID int64) ([]models.Role, error) {
	sql, args, err := r.sb.Select("role").From("user_roles").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("role").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list roles query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("userID", userID).Msg("Error listing user roles")
		return nil, fmt.Errorf("error listing roles: %w", err)
	}
	defer rows.Close()

	roles := make([]models.Role, 0, 2)
	for rows.Next() {
		var role models.Role
		if err := rows.Scan(&role); err != nil {
			return nil, fmt.Errorf("error scanning role: %w", err)
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

// List returns role assignments joined with the user's email. An empty role lists all.
func (r *RoleRepository) List(ctx context.Context, role models.Role, limit, offset int) ([]*models.UserRole, int64, error) {
	where := squirrel.And{}
	if role != "" {
		where = append(where, squirrel.Eq{"ur.role": role})
	}

	total, err := count(ctx, r.db, r.sb.Select("count(*)").From("user_roles ur").Where(where))
	if err != nil {
		logger.Error().Err(err).Msg("Error counting user roles")
		return nil, 0, fmt.Errorf("error counting roles: %w", err)
	}
	if total == 0 {
		return []*models.UserRole{}, 0, nil
	}

	b := r.sb.Select("ur.id", "ur.user_id", "ur.role", "u.email", "ur.created_at").
		From("user_roles ur").
		Join("users u ON u.id = ur.user_id").
		Where(where).
		OrderBy("ur.created_at DESC", "ur.id DESC")
	sql, args, err := page(b, limit, offset).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list roles query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing user roles")
		return nil, 0, fmt.Errorf("error listing roles: %w", err)
	}
	defer rows.Close()

	out := make([]*models.UserRole, 0)
	for rows.Next() {
		var ur models.UserRole
		if err := rows.Scan(&ur.ID, &ur.UserID, &ur.Role, &ur.Email, &ur.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("error scanning user role: %w", err)
		}
		out = append(out, &ur)
	}
	return out, total, rows.Err()
}

// Grant adds a role to a user
func (r *RoleRepository) Grant(ctx context.Context, userID int64, role models.Role) (*models.UserRole, error) {
	sql, args, err := r.sb.Insert("user_roles").
		Columns("user_id", "role").
		Values(userID, role).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build grant role query: %w", err)
	}

	ur := &models.UserRole{UserID: userID, Role: role}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&ur.ID, &ur.CreatedAt); err != nil {
		switch {
		case dberrors.IsDuplicateConstraintError(err, "user_roles_user_id_role_key"):
			return nil, apperrors.ErrRoleAlreadyGranted
		case dberrors.IsForeignKeyViolation(err):
			return nil, apperrors.ErrUserNotFound
		}
		logger.Error().Err(err).Int64("userID", userID).Str("role", string(role)).Msg("Error granting role")
		return nil, fmt.Errorf("error granting role: %w", err)
	}
	return ur, nil
}

// Revoke removes a role from a user
func (r *RoleRepository) Revoke(ctx context.Context, userID int64, role models.Role) error {
	sql, args, err := r.sb.Delete("user_roles").
		Where(squirrel.Eq{"user_id": userID, "role": role}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build revoke role query: %w", err)
	}
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("userID", userID).Msg("Error revoking role")
		return fmt.Errorf("error revoking role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrRoleNotFound
	}
	return nil
}
