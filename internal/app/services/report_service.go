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

// IReportService defines performance report and class representative operations
type IReportService interface {
	CreateReport(ctx context.Context, createdBy int64, req *dto.PerformanceReportRequest) (*models.PerformanceReport, error)
	ListReports(ctx context.Context, enrollment string, semester int) ([]*models.PerformanceReport, error)
	DeleteReport(ctx context.Context, id int64) error

	AssignClassRep(ctx context.Context, assignedBy int64, req *dto.ClassRepresentativeRequest) (*models.ClassRepresentative, error)
	ListClassReps(ctx context.Context, filter models.ClassFilter, academicYear string) ([]*models.ClassRepresentative, error)
	RemoveClassRep(ctx context.Context, id int64) error
}

// ReportService manages performance reports and class representatives
type ReportService struct {
	reportRepo   repositories.IPerformanceReportRepository
	classRepRepo repositories.IClassRepresentativeRepository
	logger       zerolog.Logger
}

// NewReportService creates a new ReportService
func NewReportService(
	reportRepo repositories.IPerformanceReportRepository,
	classRepRepo repositories.IClassRepresentativeRepository,
	logger zerolog.Logger,
) *ReportService {
	return &ReportService{reportRepo: reportRepo, classRepRepo: classRepRepo, logger: logger}
}

// CreateReport records a semester review for a student
func (s *ReportService) CreateReport(ctx context.Context, createdBy int64, req *dto.PerformanceReportRequest) (*models.PerformanceReport, error) {
	enrollment := validation.NormalizeEnrollmentNumber(req.EnrollmentNumber)
	if err := validation.ValidateEnrollmentNumber(enrollment); err != nil {
		return nil, err
	}
	r := &models.PerformanceReport{
		EnrollmentNumber: enrollment,
		Semester:         req.Semester,
		Summary:          strings.TrimSpace(req.Summary),
		Strengths:        strings.TrimSpace(req.Strengths),
		Improvements:     strings.TrimSpace(req.Improvements),
		Grade:            strings.ToUpper(strings.TrimSpace(req.Grade)),
		CreatedBy:        createdBy,
	}
	if err := s.reportRepo.Create(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// ListReports returns reports, optionally for one student and semester
func (s *ReportService) ListReports(ctx context.Context, enrollment string, semester int) ([]*models.PerformanceReport, error) {
	return s.reportRepo.List(ctx, validation.NormalizeEnrollmentNumber(enrollment), semester)
}

// DeleteReport removes a report
func (s *ReportService) DeleteReport(ctx context.Context, id int64) error {
	return s.reportRepo.Delete(ctx, id)
}

// AssignClassRep appoints a class representative for an academic year
func (s *ReportService) AssignClassRep(ctx context.Context, assignedBy int64, req *dto.ClassRepresentativeRequest) (*models.ClassRepresentative, error) {
	enrollment := validation.NormalizeEnrollmentNumber(req.EnrollmentNumber)
	if err := validation.ValidateEnrollmentNumber(enrollment); err != nil {
		return nil, err
	}
	rep := &models.ClassRepresentative{
		EnrollmentNumber: enrollment,
		Department:       strings.TrimSpace(req.Department),
		Semester:         req.Semester,
		Section:          strings.ToUpper(strings.TrimSpace(req.Section)),
		AcademicYear:     strings.TrimSpace(req.AcademicYear),
		AssignedBy:       assignedBy,
	}
	if err := s.classRepRepo.Create(ctx, rep); err != nil {
		return nil, err
	}
	s.logger.Info().Str("enrollment", enrollment).Str("year", rep.AcademicYear).Msg("Class representative assigned")
	return rep, nil
}

// ListClassReps returns representatives matching the filter
func (s *ReportService) ListClassReps(ctx context.Context, filter models.ClassFilter, academicYear string) ([]*models.ClassRepresentative, error) {
	filter.Section = strings.ToUpper(strings.TrimSpace(filter.Section))
	return s.classRepRepo.List(ctx, filter, strings.TrimSpace(academicYear))
}

// RemoveClassRep removes a representative
func (s *ReportService) RemoveClassRep(ctx context.Context, id int64) error {
	return s.classRepRepo.Delete(ctx, id)
}
