package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yigit/campusdesk/internal/app/models"
	"github.com/yigit/campusdesk/internal/app/models/dto"
	"github.com/yigit/campusdesk/internal/pkg/apperrors"
)

func newPlacementFixture(now time.Time) (*PlacementService, *MockPlacementRepository, *MockApplicationRepository) {
	placements := new(MockPlacementRepository)
	applications := new(MockApplicationRepository)
	svc := NewPlacementService(placements, applications, zerolog.Nop())
	svc.now = func() time.Time { return now }
	return svc, placements, applications
}

func TestApply_SecondAttemptIsRejected(t *testing.T) {
	now := time.Date(2025, 10, 1, 9, 0, 0, 0, time.UTC)
	svc, placements, applications := newPlacementFixture(now)
	ctx := context.Background()

	placements.On("GetByID", ctx, int64(4)).Return(&models.Placement{ID: 4, CompanyName: "Acme", Role: "SDE", Deadline: now.Add(48 * time.Hour)}, nil)
	applications.On("Create", ctx, mock.AnythingOfType("*models.PlacementApplication")).Return(nil).Once()
	applications.On("Create", ctx, mock.AnythingOfType("*models.PlacementApplication")).Return(apperrors.ErrAlreadyApplied).Once()

	app, err := svc.Apply(ctx, 4, "21cs1042", &dto.ApplyPlacementRequest{})
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationApplied, app.Status)
	assert.Equal(t, "21CS1042", app.EnrollmentNumber)
	assert.Equal(t, "Acme", app.CompanyName)

	_, err = svc.Apply(ctx, 4, "21CS1042", nil)
	require.ErrorIs(t, err, apperrors.ErrAlreadyApplied)
	assert.Equal(t, "ALREADY_APPLIED", apperrors.ErrAlreadyApplied.Code)
}

func TestApply_AfterDeadline(t *testing.T) {
	now := time.Date(2025, 10, 1, 9, 0, 0, 0, time.UTC)
	svc, placements, applications := newPlacementFixture(now)
	ctx := context.Background()

	placements.On("GetByID", ctx, int64(4)).Return(&models.Placement{ID: 4, Deadline: now.Add(-time.Second)}, nil)

	_, err := svc.Apply(ctx, 4, "21CS1042", nil)
	assert.ErrorIs(t, err, apperrors.ErrPlacementClosed)
	applications.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestPlacementList_PassesEnrollmentForHasApplied(t *testing.T) {
	svc, placements, _ := newPlacementFixture(time.Now())
	ctx := context.Background()

	placements.On("List", ctx, "21CS1042", 10, 0).
		Return([]*models.Placement{{ID: 4, HasApplied: true}, {ID: 5}}, int64(2), nil)

	items, info, err := svc.List(ctx, "21cs1042", PageRequest{Page: 1})
	require.NoError(t, err)
	assert.True(t, items[0].HasApplied)
	assert.False(t, items[1].HasApplied)
	assert.Equal(t, int64(2), info.TotalItems)
}

func TestCreatePlacement_DeadlineMustBeAhead(t *testing.T) {
	now := time.Date(2025, 10, 1, 9, 0, 0, 0, time.UTC)
	svc, _, _ := newPlacementFixture(now)

	_, err := svc.Create(context.Background(), 5, &dto.CreatePlacementRequest{CompanyName: "Acme", Role: "SDE", Deadline: now.Add(-time.Hour)})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestUpdateApplicationStatus_Unknown(t *testing.T) {
	svc, _, _ := newPlacementFixture(time.Now())
	_, err := svc.UpdateApplicationStatus(context.Background(), 1, models.ApplicationStatus("hired"))
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}
