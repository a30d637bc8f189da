package services

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/yigit/campusdesk/internal/app/models"
	"github.com/yigit/campusdesk/internal/app/models/dto"
	"github.com/yigit/campusdesk/internal/app/repositories"
	"github.com/yigit/campusdesk/internal/pkg/apperrors"
	"github.com/yigit/campusdesk/internal/pkg/validation"
)

// IPlacementService defines placement operations
type IPlacementService interface {
	Create(ctx context.Context, createdBy int64, req *dto.CreatePlacementRequest) (*models.Placement, error)
	Get(ctx context.Context, id int64) (*models.Placement, error)
	List(ctx context.Context, enrollment string, page PageRequest) ([]*models.Placement, dto.PaginationInfo, error)
	Delete(ctx context.Context, id int64) error
	Apply(ctx context.Context, placementID int64, enrollment string, req *dto.ApplyPlacementRequest) (*models.PlacementApplication, error)
	ListApplications(ctx context.Context, placementID int64) ([]*models.PlacementApplication, error)
	MyApplications(ctx context.Context, enrollment string) ([]*models.PlacementApplication, error)
	UpdateApplicationStatus(ctx context.Context, id int64, status models.ApplicationStatus) (*models.PlacementApplication, error)
}

// PlacementService manages recruitment drives and applications
type PlacementService struct {
	placementRepo   repositories.IPlacementRepository
	applicationRepo repositories.IPlacementApplicationRepository
	logger          zerolog.Logger
	now             func() time.Time
}

// NewPlacementService creates a new PlacementService
func NewPlacementService(
	placementRepo repositories.IPlacementRepository,
	applicationRepo repositories.IPlacementApplicationRepository,
	logger zerolog.Logger,
) *PlacementService {
	return &PlacementService{
		placementRepo:   placementRepo,
		applicationRepo: applicationRepo,
		logger:          logger,
		now:             time.Now,
	}
}

// Create announces a drive. The insert is broadcast on the placements stream.
func (s *PlacementService) Create(ctx context.Context, createdBy int64, req *dto.CreatePlacementRequest) (*models.Placement, error) {
	if !req.Deadline.After(s.now()) {
		return nil, apperrors.NewValidationError("deadline", "deadline must be in the future")
	}
	p := &models.Placement{
		CompanyName: strings.TrimSpace(req.CompanyName),
		Role:        strings.TrimSpace(req.Role),
		Description: strings.TrimSpace(req.Description),
		Package:     strings.TrimSpace(req.Package),
		Location:    strings.TrimSpace(req.Location),
		Eligibility: strings.TrimSpace(req.Eligibility),
		Deadline:    req.Deadline,
		CreatedBy:   createdBy,
	}
	if err := s.placementRepo.Create(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("placementID", p.ID).Str("company", p.CompanyName).Msg("Placement created")
	return p, nil
}

// Get returns one drive
func (s *PlacementService) Get(ctx context.Context, id int64) (*models.Placement, error) {
	return s.placementRepo.GetByID(ctx, id)
}

// List returns drives. For a student, HasApplied marks drives they applied to.
func (s *PlacementService) List(ctx context.Context, enrollment string, page PageRequest) ([]*models.Placement, dto.PaginationInfo, error) {
	limit, offset := page.window()
	items, total, err := s.placementRepo.List(ctx, validation.NormalizeEnrollmentNumber(enrollment), limit, offset)
	if err != nil {
		return nil, dto.PaginationInfo{}, err
	}
	return items, page.info(total), nil
}

// Delete removes a drive and its applications
func (s *PlacementService) Delete(ctx context.Context, id int64) error {
	return s.placementRepo.Delete(ctx, id)
}

// Apply records a student's application. A second application to the same
// drive fails with ErrAlreadyApplied; a passed deadline with ErrPlacementClosed.
func (s *PlacementService) Apply(ctx context.Context, placementID int64, enrollment string, req *dto.ApplyPlacementRequest) (*models.PlacementApplication, error) {
	enrollment = validation.NormalizeEnrollmentNumber(enrollment)
	if enrollment == "" {
		return nil, apperrors.ErrProfileNotFound
	}
	p, err := s.placementRepo.GetByID(ctx, placementID)
	if err != nil {
		return nil, err
	}
	if s.now().After(p.Deadline) {
		return nil, apperrors.ErrPlacementClosed
	}

	app := &models.PlacementApplication{
		PlacementID:      placementID,
		EnrollmentNumber: enrollment,
		Status:           models.ApplicationApplied,
		CompanyName:      p.CompanyName,
		Role:             p.Role,
	}
	if req != nil {
		app.ResumeURL = strings.TrimSpace(req.ResumeURL)
	}
	if err := s.applicationRepo.Create(ctx, app); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("placementID", placementID).Str("enrollment", enrollment).Msg("Placement application submitted")
	return app, nil
}

// ListApplications returns a drive's applications
func (s *PlacementService) ListApplications(ctx context.Context, placementID int64) ([]*models.PlacementApplication, error) {
	if _, err := s.placementRepo.GetByID(ctx, placementID); err != nil {
		return nil, err
	}
	return s.applicationRepo.ListByPlacement(ctx, placementID)
}

// MyApplications returns the student's applications with drive details
func (s *PlacementService) MyApplications(ctx context.Context, enrollment string) ([]*models.PlacementApplication, error) {
	return s.applicationRepo.ListByEnrollment(ctx, validation.NormalizeEnrollmentNumber(enrollment))
}

// UpdateApplicationStatus moves an application through the hiring pipeline
func (s *PlacementService) UpdateApplicationStatus(ctx context.Context, id int64, status models.ApplicationStatus) (*models.PlacementApplication, error) {
	if !status.Valid() {
		return nil, apperrors.NewValidationError("status", "unknown application status")
	}
	return s.applicationRepo.UpdateStatus(ctx, id, status)
}
