package services

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yigit/campusdesk/internal/app/models"
	"github.com/yigit/campusdesk/internal/app/models/dto"
	"github.com/yigit/campusdesk/internal/pkg/apperrors"
)

func TestVerifyStudent_EmailsOnGrant(t *testing.T) {
	profiles := new(MockProfileRepository)
	mailer := new(MockEmailService)
	publisher := &recordingPublisher{}
	svc := NewProfileService(profiles, new(MockFacultyProfileRepository), mailer, publisher, zerolog.Nop())
	ctx := context.Background()

	p := &models.Profile{UserID: 7, FullName: "Asha Kumar", Email: "asha@campus.edu", Verify: true}
	profiles.On("SetVerify", ctx, int64(7), true).Return(p, nil)
	mailer.On("SendProfileVerifiedEmail", "asha@campus.edu", "Asha Kumar", "student").Return(errors.New("smtp down"))

	got, err := svc.VerifyStudent(ctx, 7, true)
	require.NoError(t, err, "mail failure does not undo verification")
	assert.True(t, got.Verify)
	assert.Equal(t, []string{EventUserUpdated}, publisher.events)
	mailer.AssertExpectations(t)
}

func TestVerifyFaculty_RevokeSendsNoEmail(t *testing.T) {
	faculty := new(MockFacultyProfileRepository)
	mailer := new(MockEmailService)
	svc := NewProfileService(new(MockProfileRepository), faculty, mailer, nil, zerolog.Nop())
	ctx := context.Background()

	faculty.On("SetVerify", ctx, int64(9), false).Return(&models.FacultyProfile{UserID: 9}, nil)

	_, err := svc.VerifyFaculty(ctx, 9, false)
	require.NoError(t, err)
	mailer.AssertNotCalled(t, "SendProfileVerifiedEmail", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateStudentProfile_KeepsEmptyFields(t *testing.T) {
	profiles := new(MockProfileRepository)
	svc := NewProfileService(profiles, new(MockFacultyProfileRepository), nil, nil, zerolog.Nop())
	ctx := context.Background()

	profiles.On("GetByUserID", ctx, int64(7)).Return(&models.Profile{UserID: 7, FullName: "Asha Kumar", Section: "A", Phone: "111"}, nil)
	profiles.On("Update", ctx, mock.AnythingOfType("*models.Profile")).Return(nil)

	p, err := svc.UpdateStudentProfile(ctx, 7, &dto.UpdateProfileRequest{Phone: " 222 "})
	require.NoError(t, err)
	assert.Equal(t, "Asha Kumar", p.FullName)
	assert.Equal(t, "A", p.Section)
	assert.Equal(t, "222", p.Phone)

	_, err = svc.UpdateStudentProfile(ctx, 7, &dto.UpdateProfileRequest{FullName: "A"})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestListStudents_Filters(t *testing.T) {
	profiles := new(MockProfileRepository)
	svc := NewProfileService(profiles, new(MockFacultyProfileRepository), nil, nil, zerolog.Nop())
	ctx := context.Background()
	unverified := false

	profiles.On("List", ctx, models.ProfileFilter{Department: "CS", Verify: &unverified, Search: "asha", Limit: 10}).
		Return([]*models.Profile{{UserID: 7}}, int64(1), nil)

	items, info, err := svc.ListStudents(ctx, dto.ProfileListQuery{Department: "CS", Verify: &unverified, Search: " asha "}, PageRequest{})
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, 1, info.TotalPages)
}

func TestFeedback_AnonymousDropsEnrollment(t *testing.T) {
	repo := new(MockFeedbackRepository)
	svc := NewFeedbackService(repo, zerolog.Nop())
	ctx := context.Background()

	repo.On("Create", ctx, mock.AnythingOfType("*models.Feedback")).Return(nil)

	f, err := svc.Submit(ctx, "21CS1042", &dto.FeedbackRequest{Category: "course", Message: "Great pace", Rating: 5, Anonymous: true})
	require.NoError(t, err)
	assert.Nil(t, f.EnrollmentNumber)

	f, err = svc.Submit(ctx, "21cs1042", &dto.FeedbackRequest{Category: "course", Message: "Great pace", Rating: 5})
	require.NoError(t, err)
	require.NotNil(t, f.EnrollmentNumber)
	assert.Equal(t, "21CS1042", *f.EnrollmentNumber)
}

func TestRoleService_GrantPublishesUpdate(t *testing.T) {
	roles := new(MockRoleRepository)
	publisher := &recordingPublisher{}
	svc := NewRoleService(roles, publisher, zerolog.Nop())
	ctx := context.Background()

	_, err := svc.Grant(ctx, 7, models.Role("root"))
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	roles.On("Grant", ctx, int64(7), models.RoleAdmin).Return(&models.UserRole{UserID: 7, Role: models.RoleAdmin}, nil)
	roles.On("Revoke", ctx, int64(7), models.RoleFaculty).Return(apperrors.ErrRoleNotFound)

	_, err = svc.Grant(ctx, 7, models.RoleAdmin)
	require.NoError(t, err)
	assert.ErrorIs(t, svc.Revoke(ctx, 7, models.RoleFaculty), apperrors.ErrRoleNotFound)
	assert.Equal(t, []string{EventUserUpdated}, publisher.events)
}
