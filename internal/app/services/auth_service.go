package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/yigit/campusdesk/internal/app/models"
	"github.com/yigit/campusdesk/internal/app/models/dto"
	"github.com/yigit/campusdesk/internal/app/repositories"
	"github.com/yigit/campusdesk/internal/pkg/apperrors"
	"github.com/yigit/campusdesk/internal/pkg/auth"
	"github.com/yigit/campusdesk/internal/pkg/email"
	"github.com/yigit/campusdesk/internal/pkg/validation"
)

// Auth state change events pushed to a user's sockets
const (
	EventSignedIn         = "SIGNED_IN"
	EventSignedOut        = "SIGNED_OUT"
	EventTokenRefreshed   = "TOKEN_REFRESHED"
	EventPasswordRecovery = "PASSWORD_RECOVERY"
	EventUserUpdated      = "USER_UPDATED"
)

const passwordResetTTL = time.Hour

// AuthEventPublisher delivers auth events to a user's live sessions
type AuthEventPublisher interface {
	PublishAuthEvent(userID int64, event dto.AuthEvent)
	// DisconnectUser closes every live session of the user
	DisconnectUser(userID int64)
}

// IAuthService defines the authentication operations
type IAuthService interface {
	SignUp(ctx context.Context, req *dto.SignUpRequest) (*dto.AuthResponse, error)
	SignIn(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	SignOut(ctx context.Context, claims *auth.Claims) error
	Refresh(ctx context.Context, refreshToken string) (*dto.AuthResponse, error)
	RequestPasswordReset(ctx context.Context, emailAddr string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	Session(ctx context.Context, userID int64) (*dto.SessionResponse, error)
	// IsVerified reports whether the user's profile for role has verify = true.
	// Admins are always verified.
	IsVerified(ctx context.Context, userID int64, role models.Role) (bool, error)
}

// AuthService handles authentication operations
type AuthService struct {
	userRepo        repositories.IUserRepository
	roleRepo        repositories.IRoleRepository
	profileRepo     repositories.IProfileRepository
	facultyRepo     repositories.IFacultyProfileRepository
	tokenRepo       repositories.ITokenRepository
	resetRepo       repositories.IPasswordResetTokenRepository
	jwtService      *auth.JWTService
	denylist        auth.Denylist
	emailService    email.EmailService
	publisher       AuthEventPublisher
	logger          zerolog.Logger
	now             func() time.Time
	generateResetID func() (string, error)
}

// AuthDeps groups the collaborators of AuthService
type AuthDeps struct {
	Users     repositories.IUserRepository
	Roles     repositories.IRoleRepository
	Profiles  repositories.IProfileRepository
	Faculty   repositories.IFacultyProfileRepository
	Tokens    repositories.ITokenRepository
	Resets    repositories.IPasswordResetTokenRepository
	JWT       *auth.JWTService
	Denylist  auth.Denylist
	Email     email.EmailService
	Publisher AuthEventPublisher
}

// NewAuthService creates a new AuthService
func NewAuthService(deps AuthDeps, logger zerolog.Logger) *AuthService {
	return &AuthService{
		userRepo:        deps.Users,
		roleRepo:        deps.Roles,
		profileRepo:     deps.Profiles,
		facultyRepo:     deps.Faculty,
		tokenRepo:       deps.Tokens,
		resetRepo:       deps.Resets,
		jwtService:      deps.JWT,
		denylist:        deps.Denylist,
		emailService:    deps.Email,
		publisher:       deps.Publisher,
		logger:          logger,
		now:             time.Now,
		generateResetID: email.GenerateToken,
	}
}

// SignUp registers a student or faculty account with an unverified profile
func (s *AuthService) SignUp(ctx context.Context, req *dto.SignUpRequest) (*dto.AuthResponse, error) {
	emailAddr := validation.NormalizeEmail(req.Email)
	if err := validation.ValidateEmail(emailAddr); err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(req.Password); err != nil {
		return nil, err
	}
	if err := validation.ValidateName("fullName", req.FullName); err != nil {
		return nil, err
	}

	role := models.Role(req.Role)
	if role != models.RoleStudent && role != models.RoleFaculty {
		return nil, apperrors.NewValidationError("role", "role must be student or faculty")
	}

	exists, err := s.userRepo.EmailExists(ctx, emailAddr)
	if err != nil {
		return nil, fmt.Errorf("error checking if email exists: %w", err)
	}
	if exists {
		return nil, apperrors.ErrEmailAlreadyExists
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	account := &models.Account{
		User: &models.User{Email: emailAddr, PasswordHash: hash, Role: role},
	}

	switch role {
	case models.RoleStudent:
		enrollment := validation.NormalizeEnrollmentNumber(req.EnrollmentNumber)
		if err := validation.ValidateEnrollmentNumber(enrollment); err != nil {
			return nil, err
		}
		taken, err := s.profileRepo.EnrollmentExists(ctx, enrollment)
		if err != nil {
			return nil, fmt.Errorf("error checking enrollment number: %w", err)
		}
		if taken {
			return nil, apperrors.ErrEnrollmentNumberExists
		}
		semester := req.Semester
		if semester == 0 {
			semester = 1
		}
		account.Profile = &models.Profile{
			EnrollmentNumber: enrollment,
			FullName:         req.FullName,
			Email:            emailAddr,
			Department:       req.Department,
			Semester:         semester,
			Section:          req.Section,
			Phone:            req.Phone,
		}
	case models.RoleFaculty:
		account.FacultyProfile = &models.FacultyProfile{
			FullName:    req.FullName,
			Email:       emailAddr,
			Department:  req.Department,
			Designation: req.Designation,
			Phone:       req.Phone,
		}
	}

	if err := s.userRepo.CreateAccount(ctx, account); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("userID", account.User.ID).Str("role", string(role)).Msg("Account created")

	session := &dto.SessionResponse{
		User:           account.User,
		Roles:          []models.Role{role},
		Profile:        account.Profile,
		FacultyProfile: account.FacultyProfile,
	}
	session.Verified, session.RedirectTo = verification(session)

	token, err := s.issueTokens(ctx, session)
	if err != nil {
		return nil, err
	}
	return &dto.AuthResponse{Token: *token, Session: session}, nil
}

// SignIn checks credentials and opens a session
func (s *AuthService) SignIn(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, validation.NormalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		s.logger.Warn().Int64("userID", user.ID).Msg("Sign-in with wrong password")
		return nil, apperrors.ErrInvalidCredentials
	}

	if err := s.userRepo.TouchLastSignIn(ctx, user.ID); err != nil {
		s.logger.Warn().Err(err).Int64("userID", user.ID).Msg("Failed to record sign-in time")
	}

	session, err := s.buildSession(ctx, user)
	if err != nil {
		return nil, err
	}
	token, err := s.issueTokens(ctx, session)
	if err != nil {
		return nil, err
	}

	s.publish(user.ID, EventSignedIn, session)
	return &dto.AuthResponse{Token: *token, Session: session}, nil
}

// SignOut revokes the user's refresh tokens and denylists the presented access token
func (s *AuthService) SignOut(ctx context.Context, claims *auth.Claims) error {
	if claims == nil {
		return apperrors.ErrTokenInvalid
	}

	if err := s.tokenRepo.RevokeAllUserTokens(ctx, claims.UserID); err != nil {
		return err
	}
	if ttl := claims.Remaining(s.now()); ttl > 0 && claims.TokenID() != "" {
		if err := s.denylist.Add(ctx, claims.TokenID(), ttl); err != nil {
			s.logger.Error().Err(err).Int64("userID", claims.UserID).Msg("Failed to denylist access token")
			return fmt.Errorf("failed to revoke access token: %w", err)
		}
	}

	s.publish(claims.UserID, EventSignedOut, nil)
	if s.publisher != nil {
		s.publisher.DisconnectUser(claims.UserID)
	}
	s.logger.Info().Int64("userID", claims.UserID).Msg("User signed out")
	return nil
}

// Refresh rotates a refresh token
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*dto.AuthResponse, error) {
	stored, err := s.tokenRepo.GetToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if err := s.tokenRepo.RevokeToken(ctx, refreshToken); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, stored.UserID)
	if err != nil {
		return nil, err
	}
	session, err := s.buildSession(ctx, user)
	if err != nil {
		return nil, err
	}
	token, err := s.issueTokens(ctx, session)
	if err != nil {
		return nil, err
	}

	s.publish(user.ID, EventTokenRefreshed, session)
	return &dto.AuthResponse{Token: *token, Session: session}, nil
}

// RequestPasswordReset emails a one-hour reset link. Unknown addresses succeed silently.
func (s *AuthService) RequestPasswordReset(ctx context.Context, emailAddr string) error {
	user, err := s.userRepo.GetByEmail(ctx, validation.NormalizeEmail(emailAddr))
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			s.logger.Debug().Msg("Password reset requested for unknown email")
			return nil
		}
		return err
	}

	token, err := s.generateResetID()
	if err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}
	if err := s.resetRepo.CreateToken(ctx, user.ID, token, s.now().Add(passwordResetTTL)); err != nil {
		return err
	}

	name := user.Email
	if session, err := s.buildSession(ctx, user); err == nil {
		name = displayName(session, name)
	}
	if err := s.emailService.SendPasswordResetEmail(user.Email, name, token); err != nil {
		s.logger.Error().Err(err).Int64("userID", user.ID).Msg("Failed to send password reset email")
		return apperrors.ErrServiceUnavailable
	}

	s.publish(user.ID, EventPasswordRecovery, nil)
	return nil
}

// ResetPassword redeems a reset token and ends every existing session of the user
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if err := validation.ValidatePassword(newPassword); err != nil {
		return err
	}
	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}

	userID, err := s.resetRepo.Consume(ctx, token, hash)
	if err != nil {
		return err
	}

	s.logger.Info().Int64("userID", userID).Msg("Password reset")
	s.publish(userID, EventUserUpdated, nil)
	if s.publisher != nil {
		s.publisher.DisconnectUser(userID)
	}
	return nil
}

// Session returns the user with roles and profile
func (s *AuthService) Session(ctx context.Context, userID int64) (*dto.SessionResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.buildSession(ctx, user)
}

// IsVerified checks the verify flag of the profile matching role
func (s *AuthService) IsVerified(ctx context.Context, userID int64, role models.Role) (bool, error) {
	switch role {
	case models.RoleAdmin:
		return true, nil
	case models.RoleStudent:
		p, err := s.profileRepo.GetByUserID(ctx, userID)
		if errors.Is(err, apperrors.ErrProfileNotFound) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		return p.Verify, nil
	case models.RoleFaculty:
		p, err := s.facultyRepo.GetByUserID(ctx, userID)
		if errors.Is(err, apperrors.ErrProfileNotFound) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		return p.Verify, nil
	}
	return false, nil
}

func (s *AuthService) buildSession(ctx context.Context, user *models.User) (*dto.SessionResponse, error) {
	roles, err := s.roleRepo.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if len(roles) == 0 {
		roles = []models.Role{user.Role}
	}

	session := &dto.SessionResponse{User: user, Roles: roles}
	switch user.Role {
	case models.RoleStudent:
		p, err := s.profileRepo.GetByUserID(ctx, user.ID)
		if err != nil && !errors.Is(err, apperrors.ErrProfileNotFound) {
			return nil, err
		}
		session.Profile = p
	case models.RoleFaculty, models.RoleAdmin:
		p, err := s.facultyRepo.GetByUserID(ctx, user.ID)
		if err != nil && !errors.Is(err, apperrors.ErrProfileNotFound) {
			return nil, err
		}
		session.FacultyProfile = p
	}
	session.Verified, session.RedirectTo = verification(session)
	return session, nil
}

func (s *AuthService) issueTokens(ctx context.Context, session *dto.SessionResponse) (*dto.TokenResponse, error) {
	subject := auth.Subject{
		UserID: session.User.ID,
		Email:  session.User.Email,
		Role:   string(session.User.Role),
	}
	for _, r := range session.Roles {
		subject.Roles = append(subject.Roles, string(r))
	}
	if session.Profile != nil {
		subject.EnrollmentNumber = session.Profile.EnrollmentNumber
	}

	pair, err := s.jwtService.GenerateTokenPair(subject)
	if err != nil {
		return nil, err
	}
	if err := s.tokenRepo.CreateToken(ctx, pair.RefreshToken, session.User.ID, pair.RefreshExpiry); err != nil {
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:           pair.AccessToken,
		TokenType:             "Bearer",
		ExpiresIn:             int64(pair.ExpiresIn),
		RefreshToken:          pair.RefreshToken,
		RefreshTokenExpiresIn: int64(pair.RefreshExpiresIn),
	}, nil
}

func (s *AuthService) publish(userID int64, event string, session *dto.SessionResponse) {
	if s.publisher == nil {
		return
	}
	s.publisher.PublishAuthEvent(userID, dto.AuthEvent{Event: event, Session: session})
}

// AuthPage is where an unverified user of role is sent
func AuthPage(role models.Role) string {
	if role == models.RoleFaculty {
		return "/auth/faculty"
	}
	return "/auth/student"
}

// verification derives the verify flag and landing route of a session
func verification(session *dto.SessionResponse) (bool, string) {
	switch session.User.Role {
	case models.RoleAdmin:
		return true, "/admin/dashboard"
	case models.RoleFaculty:
		if session.FacultyProfile != nil && session.FacultyProfile.Verify {
			return true, "/faculty/dashboard"
		}
		return false, AuthPage(models.RoleFaculty)
	default:
		if session.Profile != nil && session.Profile.Verify {
			return true, "/student/dashboard"
		}
		return false, AuthPage(models.RoleStudent)
	}
}

func displayName(session *dto.SessionResponse, fallback string) string {
	switch {
	case session.Profile != nil && session.Profile.FullName != "":
		return session.Profile.FullName
	case session.FacultyProfile != nil && session.FacultyProfile.FullName != "":
		return session.FacultyProfile.FullName
	}
	return fallback
}
