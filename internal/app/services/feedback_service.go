package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/yigit/campusdesk/internal/app/models"
	"github.com/yigit/campusdesk/internal/app/models/dto"
	"github.com/yigit/campusdesk/internal/app/repositories"
	"github.com/yigit/campusdesk/internal/pkg/validation"
)

// IFeedbackService defines feedback operations
type IFeedbackService interface {
	Submit(ctx context.Context, enrollment string, req *dto.FeedbackRequest) (*models.Feedback, error)
	List(ctx context.Context, category string, page PageRequest) ([]*models.Feedback, dto.PaginationInfo, error)
	Delete(ctx context.Context, id int64) error
}

// FeedbackService collects student feedback
type FeedbackService struct {
	feedbackRepo repositories.IFeedbackRepository
	logger       zerolog.Logger
}

// NewFeedbackService creates a new FeedbackService
func NewFeedbackService(feedbackRepo repositories.IFeedbackRepository, logger zerolog.Logger) *FeedbackService {
	return &FeedbackService{feedbackRepo: feedbackRepo, logger: logger}
}

// Submit stores feedback. Anonymous submissions carry no enrollment number.
func (s *FeedbackService) Submit(ctx context.Context, enrollment string, req *dto.FeedbackRequest) (*models.Feedback, error) {
	f := &models.Feedback{
		Category: req.Category,
		Subject:  strings.TrimSpace(req.Subject),
		Message:  strings.TrimSpace(req.Message),
		Rating:   req.Rating,
	}
	if e := validation.NormalizeEnrollmentNumber(enrollment); !req.Anonymous && e != "" {
		f.EnrollmentNumber = &e
	}
	if err := s.feedbackRepo.Create(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

// List returns feedback newest first
func (s *FeedbackService) List(ctx context.Context, category string, page PageRequest) ([]*models.Feedback, dto.PaginationInfo, error) {
	limit, offset := page.window()
	items, total, err := s.feedbackRepo.List(ctx, strings.TrimSpace(category), limit, offset)
	if err != nil {
		return nil, dto.PaginationInfo{}, err
	}
	return items, page.info(total), nil
}

// Delete removes a submission
func (s *FeedbackService) Delete(ctx context.Context, id int64) error {
	return s.feedbackRepo.Delete(ctx, id)
}
