package services

import (
	"context"
	"mime/multipart"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/yigit/campusdesk/internal/app/models"
	"github.com/yigit/campusdesk/internal/app/models/dto"
	"github.com/yigit/campusdesk/internal/app/repositories"
	"github.com/yigit/campusdesk/internal/pkg/apperrors"
	"github.com/yigit/campusdesk/internal/pkg/filestorage"
	"github.com/yigit/campusdesk/internal/pkg/validation"
)

const maxCandidatePhotoSize = 5 << 20

// IElectionService defines election operations
type IElectionService interface {
	CreateElection(ctx context.Context, createdBy int64, req *dto.CreateElectionRequest) (*models.Election, error)
	GetElection(ctx context.Context, id int64) (*models.Election, error)
	ListElections(ctx context.Context, status models.ElectionStatus, voterEnrollment string) ([]*models.Election, error)
	UpdateStatus(ctx context.Context, id int64, status models.ElectionStatus) (*models.Election, error)
	DeleteElection(ctx context.Context, id int64) error

	Nominate(ctx context.Context, electionID int64, req *dto.NominateCandidateRequest, photo *multipart.FileHeader) (*models.Candidate, error)
	ListCandidates(ctx context.Context, electionID int64, approvedOnly bool) ([]*models.Candidate, error)
	ApproveCandidate(ctx context.Context, id int64, approved bool) (*models.Candidate, error)
	DeleteCandidate(ctx context.Context, id int64) error

	Vote(ctx context.Context, electionID int64, voterEnrollment string, candidateID int64) (*models.Vote, error)
	HasVoted(ctx context.Context, electionID int64, voterEnrollment string) (bool, error)
	Results(ctx context.Context, electionID int64) (*dto.ElectionResultsResponse, error)
}

// ElectionService runs student elections
type ElectionService struct {
	electionRepo  repositories.IElectionRepository
	candidateRepo repositories.ICandidateRepository
	voteRepo      repositories.IVoteRepository
	storage       filestorage.Storage
	logger        zerolog.Logger
	now           func() time.Time
}

// NewElectionService creates a new ElectionService
func NewElectionService(
	electionRepo repositories.IElectionRepository,
	candidateRepo repositories.ICandidateRepository,
	voteRepo repositories.IVoteRepository,
	storage filestorage.Storage,
	logger zerolog.Logger,
) *ElectionService {
	return &ElectionService{
		electionRepo:  electionRepo,
		candidateRepo: candidateRepo,
		voteRepo:      voteRepo,
		storage:       storage,
		logger:        logger,
		now:           time.Now,
	}
}

// CreateElection opens an election in the upcoming state
func (s *ElectionService) CreateElection(ctx context.Context, createdBy int64, req *dto.CreateElectionRequest) (*models.Election, error) {
	if !req.EndDate.After(req.StartDate) {
		return nil, apperrors.NewValidationError("endDate", "endDate must be after startDate")
	}
	e := &models.Election{
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Position:    strings.TrimSpace(req.Position),
		Status:      models.ElectionUpcoming,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		CreatedBy:   createdBy,
	}
	if err := s.electionRepo.Create(ctx, e); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("electionID", e.ID).Str("position", e.Position).Msg("Election created")
	return e, nil
}

// GetElection returns one election
func (s *ElectionService) GetElection(ctx context.Context, id int64) (*models.Election, error) {
	return s.electionRepo.GetByID(ctx, id)
}

// ListElections returns elections; HasVoted is filled when a voter is given
func (s *ElectionService) ListElections(ctx context.Context, status models.ElectionStatus, voterEnrollment string) ([]*models.Election, error) {
	return s.electionRepo.List(ctx, status, validation.NormalizeEnrollmentNumber(voterEnrollment))
}

// UpdateStatus moves an election to another state
func (s *ElectionService) UpdateStatus(ctx context.Context, id int64, status models.ElectionStatus) (*models.Election, error) {
	switch status {
	case models.ElectionUpcoming, models.ElectionActive, models.ElectionClosed:
	default:
		return nil, apperrors.NewValidationError("status", "unknown election status")
	}
	e, err := s.electionRepo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Int64("electionID", id).Str("status", string(status)).Msg("Election status changed")
	return e, nil
}

// DeleteElection removes an election with its candidates, votes and photos
func (s *ElectionService) DeleteElection(ctx context.Context, id int64) error {
	candidates, err := s.candidateRepo.ListByElection(ctx, id, false)
	if err != nil {
		return err
	}
	if err := s.electionRepo.Delete(ctx, id); err != nil {
		return err
	}
	for _, c := range candidates {
		s.removePhoto(ctx, c.PhotoKey)
	}
	return nil
}

// Nominate adds a candidate pending approval. The photo is optional and must be an image.
func (s *ElectionService) Nominate(ctx context.Context, electionID int64, req *dto.NominateCandidateRequest, photo *multipart.FileHeader) (*models.Candidate, error) {
	enrollment := validation.NormalizeEnrollmentNumber(req.EnrollmentNumber)
	if err := validation.ValidateEnrollmentNumber(enrollment); err != nil {
		return nil, err
	}
	election, err := s.electionRepo.GetByID(ctx, electionID)
	if err != nil {
		return nil, err
	}
	if election.Status == models.ElectionClosed {
		return nil, apperrors.ErrElectionNotActive
	}

	c := &models.Candidate{
		ElectionID:       electionID,
		EnrollmentNumber: enrollment,
		Name:             strings.TrimSpace(req.Name),
		Manifesto:        strings.TrimSpace(req.Manifesto),
	}

	if photo != nil {
		if photo.Size > maxCandidatePhotoSize {
			return nil, apperrors.ErrFileTooLarge
		}
		contentType, err := filestorage.DetectContentType(photo)
		if err != nil {
			return nil, err
		}
		if !filestorage.IsImage(contentType) {
			return nil, apperrors.ErrUnsupportedFileType.WithDetails(map[string]interface{}{"contentType": contentType})
		}
		obj, err := s.storage.Save(ctx, filestorage.BucketCandidatePhotos, photo)
		if err != nil {
			return nil, err
		}
		c.PhotoKey = &obj.Key
	}

	if err := s.candidateRepo.Create(ctx, c); err != nil {
		s.removePhoto(ctx, c.PhotoKey)
		return nil, err
	}
	s.withPhotoURL(c)
	s.logger.Info().Int64("electionID", electionID).Str("enrollment", enrollment).Msg("Candidate nominated")
	return c, nil
}

// ListCandidates returns an election's candidates
func (s *ElectionService) ListCandidates(ctx context.Context, electionID int64, approvedOnly bool) ([]*models.Candidate, error) {
	if _, err := s.electionRepo.GetByID(ctx, electionID); err != nil {
		return nil, err
	}
	candidates, err := s.candidateRepo.ListByElection(ctx, electionID, approvedOnly)
	if err != nil {
		return nil, err
	}
	for _, c := range candidates {
		s.withPhotoURL(c)
	}
	return candidates, nil
}

// ApproveCandidate sets whether a candidate appears on the ballot
func (s *ElectionService) ApproveCandidate(ctx context.Context, id int64, approved bool) (*models.Candidate, error) {
	c, err := s.candidateRepo.SetApproved(ctx, id, approved)
	if err != nil {
		return nil, err
	}
	s.withPhotoURL(c)
	return c, nil
}

// DeleteCandidate removes a candidate and their photo
func (s *ElectionService) DeleteCandidate(ctx context.Context, id int64) error {
	c, err := s.candidateRepo.Delete(ctx, id)
	if err != nil {
		return err
	}
	s.removePhoto(ctx, c.PhotoKey)
	return nil
}

// Vote casts the voter's single ballot. The election must be active and the
// candidate approved in that same election.
func (s *ElectionService) Vote(ctx context.Context, electionID int64, voterEnrollment string, candidateID int64) (*models.Vote, error) {
	voter := validation.NormalizeEnrollmentNumber(voterEnrollment)
	if voter == "" {
		return nil, apperrors.ErrProfileNotFound
	}

	election, err := s.electionRepo.GetByID(ctx, electionID)
	if err != nil {
		return nil, err
	}
	if !s.open(election) {
		return nil, apperrors.ErrElectionNotActive
	}

	candidate, err := s.candidateRepo.GetByID(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	if candidate.ElectionID != electionID {
		return nil, apperrors.ErrCandidateNotFound
	}
	if !candidate.Approved {
		return nil, apperrors.ErrCandidateNotApproved
	}

	v := &models.Vote{
		ElectionID:      electionID,
		CandidateID:     candidateID,
		VoterEnrollment: voter,
	}
	if err := s.voteRepo.Cast(ctx, v); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("electionID", electionID).Str("voter", voter).Msg("Vote cast")
	return v, nil
}

// HasVoted reports whether the voter already cast a ballot
func (s *ElectionService) HasVoted(ctx context.Context, electionID int64, voterEnrollment string) (bool, error) {
	return s.voteRepo.HasVoted(ctx, electionID, validation.NormalizeEnrollmentNumber(voterEnrollment))
}

// Results returns the tally of approved candidates
func (s *ElectionService) Results(ctx context.Context, electionID int64) (*dto.ElectionResultsResponse, error) {
	election, err := s.electionRepo.GetByID(ctx, electionID)
	if err != nil {
		return nil, err
	}
	results, err := s.voteRepo.Results(ctx, electionID)
	if err != nil {
		return nil, err
	}
	total := 0
	for _, r := range results {
		total += r.Votes
	}
	return &dto.ElectionResultsResponse{Election: election, Results: results, TotalVotes: total}, nil
}

func (s *ElectionService) open(e *models.Election) bool {
	return e.Status == models.ElectionActive && s.now().Before(e.EndDate)
}

func (s *ElectionService) withPhotoURL(c *models.Candidate) {
	if c.PhotoKey != nil && s.storage != nil {
		c.PhotoURL = s.storage.URL(filestorage.BucketCandidatePhotos, *c.PhotoKey)
	}
}

func (s *ElectionService) removePhoto(ctx context.Context, key *string) {
	if key == nil || s.storage == nil {
		return
	}
	if err := s.storage.Delete(ctx, filestorage.BucketCandidatePhotos, *key); err != nil {
		s.logger.Warn().Err(err).Str("key", *key).Msg("Failed to delete candidate photo")
	}
}
