package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/yigit/campusdesk/internal/app/models"
	"github.com/yigit/campusdesk/internal/app/models/dto"
	"github.com/yigit/campusdesk/internal/app/repositories"
	"github.com/yigit/campusdesk/internal/pkg/email"
	"github.com/yigit/campusdesk/internal/pkg/validation"
)

// IProfileService defines profile operations
type IProfileService interface {
	GetStudentProfile(ctx context.Context, userID int64) (*models.Profile, error)
	GetFacultyProfile(ctx context.Context, userID int64) (*models.FacultyProfile, error)
	UpdateStudentProfile(ctx context.Context, userID int64, req *dto.UpdateProfileRequest) (*models.Profile, error)
	UpdateFacultyProfile(ctx context.Context, userID int64, req *dto.UpdateProfileRequest) (*models.FacultyProfile, error)
	ListStudents(ctx context.Context, query dto.ProfileListQuery, page PageRequest) ([]*models.Profile, dto.PaginationInfo, error)
	VerifyStudent(ctx context.Context, userID int64, verify bool) (*models.Profile, error)
	ListFaculty(ctx context.Context, verify *bool, page PageRequest) ([]*models.FacultyProfile, dto.PaginationInfo, error)
	VerifyFaculty(ctx context.Context, userID int64, verify bool) (*models.FacultyProfile, error)
}

// ProfileService handles student and faculty profiles
type ProfileService struct {
	profileRepo  repositories.IProfileRepository
	facultyRepo  repositories.IFacultyProfileRepository
	emailService email.EmailService
	publisher    AuthEventPublisher
	logger       zerolog.Logger
}

// NewProfileService creates a new ProfileService
func NewProfileService(
	profileRepo repositories.IProfileRepository,
	facultyRepo repositories.IFacultyProfileRepository,
	emailService email.EmailService,
	publisher AuthEventPublisher,
	logger zerolog.Logger,
) *ProfileService {
	return &ProfileService{
		profileRepo:  profileRepo,
		facultyRepo:  facultyRepo,
		emailService: emailService,
		publisher:    publisher,
		logger:       logger,
	}
}

// GetStudentProfile returns the caller's student profile
func (s *ProfileService) GetStudentProfile(ctx context.Context, userID int64) (*models.Profile, error) {
	return s.profileRepo.GetByUserID(ctx, userID)
}

// GetFacultyProfile returns the caller's faculty profile
func (s *ProfileService) GetFacultyProfile(ctx context.Context, userID int64) (*models.FacultyProfile, error) {
	return s.facultyRepo.GetByUserID(ctx, userID)
}

// UpdateStudentProfile edits the caller's student profile. Empty fields are left unchanged.
func (s *ProfileService) UpdateStudentProfile(ctx context.Context, userID int64, req *dto.UpdateProfileRequest) (*models.Profile, error) {
	p, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if name := strings.TrimSpace(req.FullName); name != "" {
		if err := validation.ValidateName("fullName", name); err != nil {
			return nil, err
		}
		p.FullName = name
	}
	if req.Phone != "" {
		p.Phone = strings.TrimSpace(req.Phone)
	}
	if req.Section != "" {
		p.Section = strings.TrimSpace(req.Section)
	}

	if err := s.profileRepo.Update(ctx, p); err != nil {
		return nil, err
	}
	s.userUpdated(userID)
	return p, nil
}

// UpdateFacultyProfile edits the caller's faculty profile. Empty fields are left unchanged.
func (s *ProfileService) UpdateFacultyProfile(ctx context.Context, userID int64, req *dto.UpdateProfileRequest) (*models.FacultyProfile, error) {
	p, err := s.facultyRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if name := strings.TrimSpace(req.FullName); name != "" {
		if err := validation.ValidateName("fullName", name); err != nil {
			return nil, err
		}
		p.FullName = name
	}
	if req.Phone != "" {
		p.Phone = strings.TrimSpace(req.Phone)
	}
	if req.Designation != "" {
		p.Designation = strings.TrimSpace(req.Designation)
	}

	if err := s.facultyRepo.Update(ctx, p); err != nil {
		return nil, err
	}
	s.userUpdated(userID)
	return p, nil
}

// ListStudents lists the student directory
func (s *ProfileService) ListStudents(ctx context.Context, q dto.ProfileListQuery, page PageRequest) ([]*models.Profile, dto.PaginationInfo, error) {
	limit, offset := page.window()
	items, total, err := s.profileRepo.List(ctx, models.ProfileFilter{
		Department: q.Department,
		Semester:   q.Semester,
		Section:    q.Section,
		Verify:     q.Verify,
		Search:     strings.TrimSpace(q.Search),
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		return nil, dto.PaginationInfo{}, err
	}
	return items, page.info(total), nil
}

// VerifyStudent sets a student's verify flag and emails them when it is granted
func (s *ProfileService) VerifyStudent(ctx context.Context, userID int64, verify bool) (*models.Profile, error) {
	p, err := s.profileRepo.SetVerify(ctx, userID, verify)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Int64("userID", userID).Bool("verify", verify).Msg("Student profile verification changed")
	if verify {
		s.notifyVerified(p.Email, p.FullName, string(models.RoleStudent))
	}
	s.userUpdated(userID)
	return p, nil
}

// ListFaculty lists faculty profiles, optionally by verification state
func (s *ProfileService) ListFaculty(ctx context.Context, verify *bool, page PageRequest) ([]*models.FacultyProfile, dto.PaginationInfo, error) {
	limit, offset := page.window()
	items, total, err := s.facultyRepo.List(ctx, verify, limit, offset)
	if err != nil {
		return nil, dto.PaginationInfo{}, err
	}
	return items, page.info(total), nil
}

// VerifyFaculty sets a faculty member's verify flag and emails them when it is granted
func (s *ProfileService) VerifyFaculty(ctx context.Context, userID int64, verify bool) (*models.FacultyProfile, error) {
	p, err := s.facultyRepo.SetVerify(ctx, userID, verify)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Int64("userID", userID).Bool("verify", verify).Msg("Faculty profile verification changed")
	if verify {
		s.notifyVerified(p.Email, p.FullName, string(models.RoleFaculty))
	}
	s.userUpdated(userID)
	return p, nil
}

// Email failures never undo a verification.
func (s *ProfileService) notifyVerified(to, name, role string) {
	if s.emailService == nil {
		return
	}
	if err := s.emailService.SendProfileVerifiedEmail(to, name, role); err != nil {
		s.logger.Error().Err(err).Str("email", to).Msg("Failed to send verification email")
	}
}

func (s *ProfileService) userUpdated(userID int64) {
	if s.publisher != nil {
		s.publisher.PublishAuthEvent(userID, dto.AuthEvent{Event: EventUserUpdated})
	}
}
