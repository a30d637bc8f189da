package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	appModels "github.com/yigit/campusdesk/internal/app/models"
	appRepos "github.com/yigit/campusdesk/internal/app/repositories"
	"github.com/yigit/campusdesk/internal/pkg/apperrors"
	"github.com/yigit/campusdesk/internal/pkg/auth"
	"github.com/yigit/campusdesk/internal/pkg/validation"
)

// AdminAccount is the administrator created on first start
type AdminAccount struct {
	Email    string
	Password string
}

// CreateDefaultData creates the administrator account if it does not exist yet.
// An empty email or password disables seeding.
func CreateDefaultData(ctx context.Context, users appRepos.IUserRepository, admin AdminAccount, lgr zerolog.Logger) error {
	if admin.Email == "" || admin.Password == "" {
		lgr.Info().Msg("No seed administrator configured, skipping default data")
		return nil
	}

	email := validation.NormalizeEmail(admin.Email)
	if err := validation.ValidateEmail(email); err != nil {
		return fmt.Errorf("seed admin email: %w", err)
	}
	if err := validation.ValidatePassword(admin.Password); err != nil {
		return fmt.Errorf("seed admin password: %w", err)
	}

	exists, err := users.EmailExists(ctx, email)
	if err != nil {
		lgr.Error().Err(err).Msg("Error checking if admin user exists")
		return err
	}
	if exists {
		lgr.Info().Msg("Admin user already exists, skipping creation")
		return nil
	}

	lgr.Info().Msg("Creating default admin user...")
	hash, err := auth.HashPassword(admin.Password)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	account := &appModels.Account{User: &appModels.User{
		Email:        email,
		PasswordHash: hash,
		Role:         appModels.RoleAdmin,
	}}
	if err := users.CreateAccount(ctx, account); err != nil {
		// Another instance may have seeded concurrently
		if errors.Is(err, apperrors.ErrEmailAlreadyExists) {
			return nil
		}
		lgr.Error().Err(err).Msg("Error creating admin user")
		return err
	}

	lgr.Info().Int64("adminID", account.User.ID).Msg("Default admin user created successfully")
	return nil
}
