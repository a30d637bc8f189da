package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/yigit/campusdesk/internal/app/models"
	"github.com/yigit/campusdesk/internal/app/models/dto"
	"github.com/yigit/campusdesk/internal/app/repositories"
	"github.com/yigit/campusdesk/internal/pkg/apperrors"
)

// IRoleService defines role grant operations
type IRoleService interface {
	List(ctx context.Context, role models.Role, page PageRequest) ([]*models.UserRole, dto.PaginationInfo, error)
	Grant(ctx context.Context, userID int64, role models.Role) (*models.UserRole, error)
	Revoke(ctx context.Context, userID int64, role models.Role) error
}

// RoleService administers user_roles
type RoleService struct {
	roleRepo  repositories.IRoleRepository
	publisher AuthEventPublisher
	logger    zerolog.Logger
}

// NewRoleService creates a new RoleService
func NewRoleService(roleRepo repositories.IRoleRepository, publisher AuthEventPublisher, logger zerolog.Logger) *RoleService {
	return &RoleService{roleRepo: roleRepo, publisher: publisher, logger: logger}
}

// List returns grants, optionally of one role
func (s *RoleService) List(ctx context.Context, role models.Role, page PageRequest) ([]*models.UserRole, dto.PaginationInfo, error) {
	if role != "" && !role.Valid() {
		return nil, dto.PaginationInfo{}, apperrors.NewValidationError("role", "unknown role")
	}
	limit, offset := page.window()
	items, total, err := s.roleRepo.List(ctx, role, limit, offset)
	if err != nil {
		return nil, dto.PaginationInfo{}, err
	}
	return items, page.info(total), nil
}

// Grant adds a role to a user
func (s *RoleService) Grant(ctx context.Context, userID int64, role models.Role) (*models.UserRole, error) {
	if !role.Valid() {
		return nil, apperrors.NewValidationError("role", "unknown role")
	}
	ur, err := s.roleRepo.Grant(ctx, userID, role)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Int64("userID", userID).Str("role", string(role)).Msg("Role granted")
	s.userUpdated(userID)
	return ur, nil
}

// Revoke removes a role from a user
func (s *RoleService) Revoke(ctx context.Context, userID int64, role models.Role) error {
	if !role.Valid() {
		return apperrors.NewValidationError("role", "unknown role")
	}
	if err := s.roleRepo.Revoke(ctx, userID, role); err != nil {
		return err
	}
	s.logger.Info().Int64("userID", userID).Str("role", string(role)).Msg("Role revoked")
	s.userUpdated(userID)
	return nil
}

func (s *RoleService) userUpdated(userID int64) {
	if s.publisher != nil {
		s.publisher.PublishAuthEvent(userID, dto.AuthEvent{Event: EventUserUpdated})
	}
}
