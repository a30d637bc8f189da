package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/yigit/campusdesk/internal/app/models"
	"github.com/yigit/campusdesk/internal/app/models/dto"
	"github.com/yigit/campusdesk/internal/app/repositories"
	"github.com/yigit/campusdesk/internal/pkg/assistant"
	"github.com/yigit/campusdesk/internal/pkg/helpers"
	"github.com/yigit/campusdesk/internal/pkg/validation"
)

// recommendationMarkLimit bounds how many recent marks are sent to the gateway
const recommendationMarkLimit = 100

// AssistantClient invokes the LLM gateway
type AssistantClient interface {
	Invoke(ctx context.Context, action assistant.Action, data interface{}) (string, error)
}

// IAssistantService defines assistant operations
type IAssistantService interface {
	Chat(ctx context.Context, req *dto.AssistantChatRequest) (*dto.AssistantResponse, error)
	StudyRecommendations(ctx context.Context, enrollment string) (*dto.AssistantResponse, error)
	DraftNotice(ctx context.Context, req *dto.DraftNoticeRequest) (*dto.AssistantResponse, error)
	AttendanceInsights(ctx context.Context, enrollment string) (*dto.AssistantResponse, error)
}

// AssistantService assembles gateway payloads from campus data
type AssistantService struct {
	client         AssistantClient
	markRepo       repositories.IMarkRepository
	attendanceRepo repositories.IAttendanceRepository
	logger         zerolog.Logger
	now            func() time.Time
}

// NewAssistantService creates a new AssistantService
func NewAssistantService(
	client AssistantClient,
	markRepo repositories.IMarkRepository,
	attendanceRepo repositories.IAttendanceRepository,
	logger zerolog.Logger,
) *AssistantService {
	return &AssistantService{
		client:         client,
		markRepo:       markRepo,
		attendanceRepo: attendanceRepo,
		logger:         logger,
		now:            time.Now,
	}
}

// Chat continues a conversation
func (s *AssistantService) Chat(ctx context.Context, req *dto.AssistantChatRequest) (*dto.AssistantResponse, error) {
	return s.invoke(ctx, assistant.ActionChat, map[string]interface{}{
		"messages": req.Messages,
	})
}

// StudyRecommendations sends the student's recent marks and attendance summary
func (s *AssistantService) StudyRecommendations(ctx context.Context, enrollment string) (*dto.AssistantResponse, error) {
	enrollment = validation.NormalizeEnrollmentNumber(enrollment)
	marks, _, err := s.markRepo.List(ctx, models.MarkFilter{
		EnrollmentNumber: enrollment,
		Limit:            recommendationMarkLimit,
	})
	if err != nil {
		return nil, err
	}
	summary, err := s.summary(ctx, enrollment)
	if err != nil {
		return nil, err
	}
	return s.invoke(ctx, assistant.ActionStudyRecommendations, map[string]interface{}{
		"marks":      marks,
		"attendance": summary,
		"asOf":       helpers.FormatDate(s.now()),
	})
}

// DraftNotice asks for a notice draft on a topic
func (s *AssistantService) DraftNotice(ctx context.Context, req *dto.DraftNoticeRequest) (*dto.AssistantResponse, error) {
	audience := req.Audience
	if audience == "" {
		audience = "all"
	}
	tone := req.Tone
	if tone == "" {
		tone = "formal"
	}
	return s.invoke(ctx, assistant.ActionDraftNotice, map[string]interface{}{
		"topic":    req.Topic,
		"audience": audience,
		"tone":     tone,
	})
}

// AttendanceInsights sends the student's attendance summary
func (s *AssistantService) AttendanceInsights(ctx context.Context, enrollment string) (*dto.AssistantResponse, error) {
	summary, err := s.summary(ctx, validation.NormalizeEnrollmentNumber(enrollment))
	if err != nil {
		return nil, err
	}
	return s.invoke(ctx, assistant.ActionAttendanceInsights, map[string]interface{}{
		"attendance": summary,
		"asOf":       helpers.FormatDate(s.now()),
	})
}

func (s *AssistantService) summary(ctx context.Context, enrollment string) ([]*models.AttendanceSummary, error) {
	rows, err := s.attendanceRepo.SummaryByEnrollment(ctx, enrollment)
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		r.Percentage = attendancePercentage(r.Present+r.Late, r.Total)
	}
	return rows, nil
}

func (s *AssistantService) invoke(ctx context.Context, action assistant.Action, data interface{}) (*dto.AssistantResponse, error) {
	text, err := s.client.Invoke(ctx, action, data)
	if err != nil {
		s.logger.Error().Err(err).Str("action", string(action)).Msg("Assistant request failed")
		return nil, err
	}
	return &dto.AssistantResponse{Action: string(action), Response: text}, nil
}
