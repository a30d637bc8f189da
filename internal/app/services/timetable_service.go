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
)

const clockLayout = "15:04"

// ITimetableService defines timetable operations
type ITimetableService interface {
	Upsert(ctx context.Context, req *dto.TimetableRequest) (*models.Timetable, error)
	List(ctx context.Context, query dto.TimetableQuery) ([]*models.Timetable, error)
	Delete(ctx context.Context, id int64) error
}

// TimetableService maintains class schedules
type TimetableService struct {
	timetableRepo repositories.ITimetableRepository
	logger        zerolog.Logger
}

// NewTimetableService creates a new TimetableService
func NewTimetableService(timetableRepo repositories.ITimetableRepository, logger zerolog.Logger) *TimetableService {
	return &TimetableService{timetableRepo: timetableRepo, logger: logger}
}

// Upsert writes one slot, replacing whatever the class had in that period
func (s *TimetableService) Upsert(ctx context.Context, req *dto.TimetableRequest) (*models.Timetable, error) {
	start, err := time.Parse(clockLayout, req.StartTime)
	if err != nil {
		return nil, apperrors.NewValidationError("startTime", "startTime must be HH:MM")
	}
	end, err := time.Parse(clockLayout, req.EndTime)
	if err != nil {
		return nil, apperrors.NewValidationError("endTime", "endTime must be HH:MM")
	}
	if !end.After(start) {
		return nil, apperrors.NewValidationError("endTime", "endTime must be after startTime")
	}

	slot := &models.Timetable{
		Department:  strings.TrimSpace(req.Department),
		Semester:    req.Semester,
		Section:     strings.ToUpper(strings.TrimSpace(req.Section)),
		DayOfWeek:   strings.ToLower(req.DayOfWeek),
		Period:      req.Period,
		Subject:     strings.TrimSpace(req.Subject),
		FacultyName: strings.TrimSpace(req.FacultyName),
		Room:        strings.TrimSpace(req.Room),
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
	}
	if err := s.timetableRepo.Upsert(ctx, slot); err != nil {
		return nil, err
	}
	return slot, nil
}

// List returns a class's week ordered by day and period
func (s *TimetableService) List(ctx context.Context, q dto.TimetableQuery) ([]*models.Timetable, error) {
	return s.timetableRepo.List(ctx, models.ClassFilter{
		Department: strings.TrimSpace(q.Department),
		Semester:   q.Semester,
		Section:    strings.ToUpper(strings.TrimSpace(q.Section)),
	})
}

// Delete removes a slot
func (s *TimetableService) Delete(ctx context.Context, id int64) error {
	return s.timetableRepo.Delete(ctx, id)
}
