package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/campusdesk/internal/app/models"
	"github.com/yigit/campusdesk/internal/app/models/dto"
	"github.com/yigit/campusdesk/internal/pkg/apperrors"
	"github.com/yigit/campusdesk/internal/pkg/assistant"
)

type recordingClient struct {
	action assistant.Action
	data   interface{}
	reply  string
	err    error
}

func (c *recordingClient) Invoke(_ context.Context, action assistant.Action, data interface{}) (string, error) {
	c.action = action
	c.data = data
	return c.reply, c.err
}

func newAssistantService(client AssistantClient) (*AssistantService, *MockMarkRepository, *MockAttendanceRepository) {
	marks := new(MockMarkRepository)
	attendance := new(MockAttendanceRepository)
	svc := NewAssistantService(client, marks, attendance, zerolog.Nop())
	svc.now = func() time.Time { return time.Date(2025, 10, 3, 9, 0, 0, 0, time.UTC) }
	return svc, marks, attendance
}

func TestAssistantStudyRecommendations_SendsMarksAndAttendance(t *testing.T) {
	client := &recordingClient{reply: "Focus on DBMS"}
	svc, marks, attendance := newAssistantService(client)
	ctx := context.Background()

	recent := []*models.Mark{{ID: 1, EnrollmentNumber: "CS2021001", Subject: "DBMS", MarksObtained: 12, MaxMarks: 30}}
	marks.On("List", ctx, models.MarkFilter{EnrollmentNumber: "CS2021001", Limit: recommendationMarkLimit}).
		Return(recent, int64(1), nil)
	attendance.On("SummaryByEnrollment", ctx, "CS2021001").Return([]*models.AttendanceSummary{
		{Subject: "DBMS", Total: 4, Present: 2, Late: 1, Absent: 1},
	}, nil)

	resp, err := svc.StudyRecommendations(ctx, " cs2021001 ")
	require.NoError(t, err)
	assert.Equal(t, &dto.AssistantResponse{Action: "study_recommendations", Response: "Focus on DBMS"}, resp)

	assert.Equal(t, assistant.ActionStudyRecommendations, client.action)
	payload := client.data.(map[string]interface{})
	assert.Equal(t, recent, payload["marks"])
	assert.Equal(t, "2025-10-03", payload["asOf"])
	summary := payload["attendance"].([]*models.AttendanceSummary)
	require.Len(t, summary, 1)
	assert.Equal(t, 75.0, summary[0].Percentage)
}

func TestAssistantDraftNotice_Defaults(t *testing.T) {
	client := &recordingClient{reply: "Dear students"}
	svc, _, _ := newAssistantService(client)

	_, err := svc.DraftNotice(context.Background(), &dto.DraftNoticeRequest{Topic: "Library hours"})
	require.NoError(t, err)

	assert.Equal(t, map[string]interface{}{
		"topic":    "Library hours",
		"audience": "all",
		"tone":     "formal",
	}, client.data)
}

func TestAssistantChat_PropagatesGatewayError(t *testing.T) {
	client := &recordingClient{err: apperrors.ErrAssistantFailed}
	svc, _, _ := newAssistantService(client)

	resp, err := svc.Chat(context.Background(), &dto.AssistantChatRequest{
		Messages: []dto.ChatMessage{{Role: "user", Content: "hello"}},
	})
	assert.Nil(t, resp)
	assert.ErrorIs(t, err, apperrors.ErrServiceUnavailable)
}

func TestAssistantAttendanceInsights_RepositoryError(t *testing.T) {
	client := &recordingClient{}
	svc, _, attendance := newAssistantService(client)
	ctx := context.Background()

	attendance.On("SummaryByEnrollment", ctx, "CS2021001").Return(nil, assert.AnError)

	_, err := svc.AttendanceInsights(ctx, "CS2021001")
	assert.ErrorIs(t, err, assert.AnError)
	assert.Empty(t, client.action)
}
