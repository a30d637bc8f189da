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
	"github.com/yigit/campusdesk/internal/db"
	"github.com/yigit/campusdesk/internal/pkg/apperrors"
	"github.com/yigit/campusdesk/internal/pkg/logger"
)

// IPasswordResetTokenRepository stores one-time password reset tokens
type IPasswordResetTokenRepository interface {
	CreateToken(ctx context.Context, userID int64, token string, expiresAt time.Time) error
	GetToken(ctx context.Context, token string) (*models.PasswordResetToken, error)
	// Consume checks the token, stores the new hash, marks the token used and
	// revokes the user's refresh tokens in one transaction. It returns the user id.
	Consume(ctx context.Context, token, passwordHash string) (int64, error)
}

// PasswordResetTokenRepository manages password reset tokens in the database
type PasswordResetTokenRepository struct {
	db  *pgxpool.Pool
	sb  squirrel.StatementBuilderType
	now func() time.Time
}

// NewPasswordResetTokenRepository creates a new PasswordResetTokenRepository
func NewPasswordResetTokenRepository(db *pgxpool.Pool) *PasswordResetTokenRepository {
	return &PasswordResetTokenRepository{db: db, sb: newBuilder(), now: time.Now}
}

// CreateToken stores a new password reset token in the database
func (r *PasswordResetTokenRepository) CreateToken(ctx context.Context, userID int64, token string, expiresAt time.Time) error {
	sql, args, err := r.sb.Insert("password_reset_tokens").
		Columns("user_id", "token", "expiry_date").
		Values(userID, token, expiresAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create reset token query: %w", err)
	}
	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).Int64("userID", userID).Msg("Error creating password reset token")
		return fmt.Errorf("error creating password reset token: %w", err)
	}
	return nil
}

func getResetToken(ctx context.Context, q querier, sb squirrel.StatementBuilderType, token string, lock bool) (*models.PasswordResetToken, error) {
	b := sb.Select("id", "user_id", "token", "expiry_date", "used", "created_at").
		From("password_reset_tokens").
		Where(squirrel.Eq{"token": token})
	if lock {
		b = b.Suffix("FOR UPDATE")
	}
	sql, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get reset token query: %w", err)
	}

	var t models.PasswordResetToken
	err = q.QueryRow(ctx, sql, args...).Scan(&t.ID, &t.UserID, &t.Token, &t.ExpiresAt, &t.Used, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrInvalidPasswordResetToken
		}
		return nil, fmt.Errorf("error retrieving password reset token: %w", err)
	}
	return &t, nil
}

// GetToken retrieves a token regardless of its state
func (r *PasswordResetTokenRepository) GetToken(ctx context.Context, token string) (*models.PasswordResetToken, error) {
	return getResetToken(ctx, r.db, r.sb, token, false)
}

// Consume redeems a token
func (r *PasswordResetTokenRepository) Consume(ctx context.Context, token, passwordHash string) (int64, error) {
	var userID int64
	err := db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		t, err := getResetToken(ctx, tx, r.sb, token, true)
		if err != nil {
			return err
		}
		if t.Used {
			return apperrors.ErrPasswordResetTokenUsed
		}
		if t.ExpiresAt.Before(r.now()) {
			return apperrors.ErrInvalidPasswordResetToken
		}

		if _, err := tx.Exec(ctx, `UPDATE password_reset_tokens SET used = true WHERE id = $1`, t.ID); err != nil {
			return fmt.Errorf("error marking token as used: %w", err)
		}
		if err := updatePassword(ctx, tx, r.sb, t.UserID, passwordHash); err != nil {
			return err
		}
		if err := revokeAllUserTokens(ctx, tx, r.sb, t.UserID); err != nil {
			return err
		}
		userID = t.UserID
		return nil
	})
	if err != nil {
		return 0, err
	}
	return userID, nil
}
