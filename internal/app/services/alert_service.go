package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/yigit/campusdesk/internal/app/models"
	"github.com/yigit/campusdesk/internal/app/models/dto"
	"github.com/yigit/campusdesk/internal/app/repositories"
	"github.com/yigit/campusdesk/internal/pkg/notifications"
	"github.com/yigit/campusdesk/internal/pkg/validation"
)

// IAlertService defines alert operations
type IAlertService interface {
	Create(ctx context.Context, createdBy int64, req *dto.AlertRequest) (*models.Alert, error)
	List(ctx context.Context, enrollment string, page PageRequest) ([]*models.Alert, dto.PaginationInfo, error)
	Delete(ctx context.Context, id int64) error
}

// AlertService issues faculty alerts. Inserted alerts reach connected users
// through the alerts change stream.
type AlertService struct {
	alertRepo repositories.IAlertRepository
	logger    zerolog.Logger
}

// NewAlertService creates a new AlertService
func NewAlertService(alertRepo repositories.IAlertRepository, logger zerolog.Logger) *AlertService {
	return &AlertService{alertRepo: alertRepo, logger: logger}
}

// Create issues an alert to one student or, without an enrollment number, to everyone
func (s *AlertService) Create(ctx context.Context, createdBy int64, req *dto.AlertRequest) (*models.Alert, error) {
	a := &models.Alert{
		Title:     strings.TrimSpace(req.Title),
		Message:   strings.TrimSpace(req.Message),
		Type:      req.Type,
		CreatedBy: createdBy,
	}
	if a.Type == "" {
		a.Type = string(notifications.TypeNotice)
	}
	if e := validation.NormalizeEnrollmentNumber(req.EnrollmentNumber); e != "" {
		if err := validation.ValidateEnrollmentNumber(e); err != nil {
			return nil, err
		}
		a.EnrollmentNumber = &e
	}
	if err := s.alertRepo.Create(ctx, a); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("alertID", a.ID).Str("type", a.Type).Bool("broadcast", a.EnrollmentNumber == nil).Msg("Alert issued")
	return a, nil
}

// List returns alerts. A student sees their own alerts and broadcasts.
func (s *AlertService) List(ctx context.Context, enrollment string, page PageRequest) ([]*models.Alert, dto.PaginationInfo, error) {
	limit, offset := page.window()
	items, total, err := s.alertRepo.List(ctx, validation.NormalizeEnrollmentNumber(enrollment), limit, offset)
	if err != nil {
		return nil, dto.PaginationInfo{}, err
	}
	return items, page.info(total), nil
}

// Delete removes an alert
func (s *AlertService) Delete(ctx context.Context, id int64) error {
	return s.alertRepo.Delete(ctx, id)
}
