package services

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/yigit/campusdesk/internal/app/models"
	"github.com/yigit/campusdesk/internal/app/models/dto"
	"github.com/yigit/campusdesk/internal/app/repositories"
	"github.com/yigit/campusdesk/internal/pkg/apperrors"
	"github.com/yigit/campusdesk/internal/pkg/helpers"
	"github.com/yigit/campusdesk/internal/pkg/validation"
)

// IAttendanceService defines attendance operations
type IAttendanceService interface {
	MarkAttendance(ctx context.Context, markedBy int64, req *dto.MarkAttendanceRequest) ([]*models.Attendance, error)
	List(ctx context.Context, query dto.AttendanceQuery, page PageRequest) ([]*models.Attendance, dto.PaginationInfo, error)
	Delete(ctx context.Context, id int64) error
	Summary(ctx context.Context, enrollment string) ([]*models.AttendanceSummary, error)
}

// AttendanceService records and reports class attendance
type AttendanceService struct {
	attendanceRepo repositories.IAttendanceRepository
	logger         zerolog.Logger
}

// NewAttendanceService creates a new AttendanceService
func NewAttendanceService(attendanceRepo repositories.IAttendanceRepository, logger zerolog.Logger) *AttendanceService {
	return &AttendanceService{attendanceRepo: attendanceRepo, logger: logger}
}

// MarkAttendance writes a whole class for one subject and date.
// A student listed twice keeps the last status given.
func (s *AttendanceService) MarkAttendance(ctx context.Context, markedBy int64, req *dto.MarkAttendanceRequest) ([]*models.Attendance, error) {
	date, err := helpers.ParseDate(req.Date)
	if err != nil {
		return nil, apperrors.NewValidationError("date", "date must be YYYY-MM-DD")
	}
	subject := strings.TrimSpace(req.Subject)
	if subject == "" {
		return nil, apperrors.NewValidationError("subject", "subject is required")
	}

	byEnrollment := make(map[string]int, len(req.Records))
	records := make([]*models.Attendance, 0, len(req.Records))
	for _, rec := range req.Records {
		enrollment := validation.NormalizeEnrollmentNumber(rec.EnrollmentNumber)
		if err := validation.ValidateEnrollmentNumber(enrollment); err != nil {
			return nil, err
		}
		a := &models.Attendance{
			EnrollmentNumber: enrollment,
			Subject:          subject,
			Date:             date,
			Status:           models.AttendanceStatus(rec.Status),
			MarkedBy:         markedBy,
		}
		if i, dup := byEnrollment[enrollment]; dup {
			records[i] = a
			continue
		}
		byEnrollment[enrollment] = len(records)
		records = append(records, a)
	}

	if err := s.attendanceRepo.Upsert(ctx, records); err != nil {
		return nil, err
	}
	s.logger.Info().Str("subject", subject).Str("date", req.Date).Int("count", len(records)).Msg("Attendance marked")
	return records, nil
}

// List returns attendance matching the query, newest first
func (s *AttendanceService) List(ctx context.Context, q dto.AttendanceQuery, page PageRequest) ([]*models.Attendance, dto.PaginationInfo, error) {
	filter := models.AttendanceFilter{
		EnrollmentNumber: validation.NormalizeEnrollmentNumber(q.EnrollmentNumber),
		Subject:          strings.TrimSpace(q.Subject),
	}
	if q.From != "" {
		from, err := helpers.ParseDate(q.From)
		if err != nil {
			return nil, dto.PaginationInfo{}, apperrors.NewValidationError("from", "from must be YYYY-MM-DD")
		}
		filter.From = &from
	}
	if q.To != "" {
		to, err := helpers.ParseDate(q.To)
		if err != nil {
			return nil, dto.PaginationInfo{}, apperrors.NewValidationError("to", "to must be YYYY-MM-DD")
		}
		filter.To = &to
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, dto.PaginationInfo{}, apperrors.NewValidationError("to", "to must not be before from")
	}

	filter.Limit, filter.Offset = page.window()
	items, total, err := s.attendanceRepo.List(ctx, filter)
	if err != nil {
		return nil, dto.PaginationInfo{}, err
	}
	return items, page.info(total), nil
}

// Delete removes one attendance entry
func (s *AttendanceService) Delete(ctx context.Context, id int64) error {
	return s.attendanceRepo.Delete(ctx, id)
}

// Summary returns per-subject counts with the attended percentage (present or late)
func (s *AttendanceService) Summary(ctx context.Context, enrollment string) ([]*models.AttendanceSummary, error) {
	rows, err := s.attendanceRepo.SummaryByEnrollment(ctx, validation.NormalizeEnrollmentNumber(enrollment))
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		r.Percentage = attendancePercentage(r.Present+r.Late, r.Total)
	}
	return rows, nil
}

func attendancePercentage(attended, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(attended)*10000/float64(total)) / 100
}

// IMarkService defines mark operations
type IMarkService interface {
	Create(ctx context.Context, createdBy int64, req *dto.MarkRequest) (*models.Mark, error)
	Update(ctx context.Context, id int64, req *dto.MarkRequest) (*models.Mark, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, query dto.MarkQuery, page PageRequest) ([]*models.Mark, dto.PaginationInfo, error)
}

// MarkService manages assessment marks
type MarkService struct {
	markRepo repositories.IMarkRepository
	logger   zerolog.Logger
}

// NewMarkService creates a new MarkService
func NewMarkService(markRepo repositories.IMarkRepository, logger zerolog.Logger) *MarkService {
	return &MarkService{markRepo: markRepo, logger: logger}
}

func validateScore(req *dto.MarkRequest) error {
	if req.MaxMarks <= 0 {
		return apperrors.NewValidationError("maxMarks", "maxMarks must be positive")
	}
	if req.MarksObtained < 0 || req.MarksObtained > req.MaxMarks {
		return apperrors.NewValidationError("marksObtained", "marksObtained must be between 0 and maxMarks")
	}
	return nil
}

// Create records a mark. The insert is announced to the student on the marks stream.
func (s *MarkService) Create(ctx context.Context, createdBy int64, req *dto.MarkRequest) (*models.Mark, error) {
	if err := validateScore(req); err != nil {
		return nil, err
	}
	enrollment := validation.NormalizeEnrollmentNumber(req.EnrollmentNumber)
	if err := validation.ValidateEnrollmentNumber(enrollment); err != nil {
		return nil, err
	}

	m := &models.Mark{
		EnrollmentNumber: enrollment,
		Subject:          strings.TrimSpace(req.Subject),
		ExamType:         strings.TrimSpace(req.ExamType),
		MarksObtained:    req.MarksObtained,
		MaxMarks:         req.MaxMarks,
		Semester:         req.Semester,
		Remarks:          strings.TrimSpace(req.Remarks),
		CreatedBy:        createdBy,
	}
	if err := s.markRepo.Create(ctx, m); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("markID", m.ID).Str("enrollment", enrollment).Str("subject", m.Subject).Msg("Mark recorded")
	return m, nil
}

// Update replaces the scored fields of a mark
func (s *MarkService) Update(ctx context.Context, id int64, req *dto.MarkRequest) (*models.Mark, error) {
	if err := validateScore(req); err != nil {
		return nil, err
	}
	m, err := s.markRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	m.Subject = strings.TrimSpace(req.Subject)
	m.ExamType = strings.TrimSpace(req.ExamType)
	m.MarksObtained = req.MarksObtained
	m.MaxMarks = req.MaxMarks
	m.Semester = req.Semester
	m.Remarks = strings.TrimSpace(req.Remarks)
	m.UpdatedAt = time.Now()

	if err := s.markRepo.Update(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Delete removes a mark
func (s *MarkService) Delete(ctx context.Context, id int64) error {
	return s.markRepo.Delete(ctx, id)
}

// List returns marks matching the query
func (s *MarkService) List(ctx context.Context, q dto.MarkQuery, page PageRequest) ([]*models.Mark, dto.PaginationInfo, error) {
	limit, offset := page.window()
	items, total, err := s.markRepo.List(ctx, models.MarkFilter{
		EnrollmentNumber: validation.NormalizeEnrollmentNumber(q.EnrollmentNumber),
		Subject:          strings.TrimSpace(q.Subject),
		Semester:         q.Semester,
		Limit:            limit,
		Offset:           offset,
	})
	if err != nil {
		return nil, dto.PaginationInfo{}, err
	}
	return items, page.info(total), nil
}
