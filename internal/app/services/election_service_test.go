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
	"github.com/yigit/campusdesk/internal/pkg/filestorage"
)

type electionFixture struct {
	elections  *MockElectionRepository
	candidates *MockCandidateRepository
	votes      *MockVoteRepository
	storage    *MockStorage
	svc        *ElectionService
	now        time.Time
}

func newElectionFixture() *electionFixture {
	f := &electionFixture{
		elections:  new(MockElectionRepository),
		candidates: new(MockCandidateRepository),
		votes:      new(MockVoteRepository),
		storage:    new(MockStorage),
		now:        time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC),
	}
	f.svc = NewElectionService(f.elections, f.candidates, f.votes, f.storage, zerolog.Nop())
	f.svc.now = func() time.Time { return f.now }
	return f
}

func (f *electionFixture) election(status models.ElectionStatus) *models.Election {
	return &models.Election{
		ID:        1,
		Status:    status,
		StartDate: f.now.Add(-time.Hour),
		EndDate:   f.now.Add(time.Hour),
	}
}

func TestVote_Rules(t *testing.T) {
	ctx := context.Background()

	t.Run("election not active", func(t *testing.T) {
		f := newElectionFixture()
		f.elections.On("GetByID", ctx, int64(1)).Return(f.election(models.ElectionUpcoming), nil)

		_, err := f.svc.Vote(ctx, 1, "21CS1042", 10)
		assert.ErrorIs(t, err, apperrors.ErrElectionNotActive)
		f.votes.AssertNotCalled(t, "Cast", mock.Anything, mock.Anything)
	})

	t.Run("election past its end date", func(t *testing.T) {
		f := newElectionFixture()
		e := f.election(models.ElectionActive)
		e.EndDate = f.now.Add(-time.Minute)
		f.elections.On("GetByID", ctx, int64(1)).Return(e, nil)

		_, err := f.svc.Vote(ctx, 1, "21CS1042", 10)
		assert.ErrorIs(t, err, apperrors.ErrElectionNotActive)
	})

	t.Run("candidate from another election", func(t *testing.T) {
		f := newElectionFixture()
		f.elections.On("GetByID", ctx, int64(1)).Return(f.election(models.ElectionActive), nil)
		f.candidates.On("GetByID", ctx, int64(10)).Return(&models.Candidate{ID: 10, ElectionID: 2, Approved: true}, nil)

		_, err := f.svc.Vote(ctx, 1, "21CS1042", 10)
		assert.ErrorIs(t, err, apperrors.ErrCandidateNotFound)
	})

	t.Run("candidate not approved", func(t *testing.T) {
		f := newElectionFixture()
		f.elections.On("GetByID", ctx, int64(1)).Return(f.election(models.ElectionActive), nil)
		f.candidates.On("GetByID", ctx, int64(10)).Return(&models.Candidate{ID: 10, ElectionID: 1}, nil)

		_, err := f.svc.Vote(ctx, 1, "21CS1042", 10)
		assert.ErrorIs(t, err, apperrors.ErrCandidateNotApproved)
	})

	t.Run("second ballot", func(t *testing.T) {
		f := newElectionFixture()
		f.elections.On("GetByID", ctx, int64(1)).Return(f.election(models.ElectionActive), nil)
		f.candidates.On("GetByID", ctx, int64(10)).Return(&models.Candidate{ID: 10, ElectionID: 1, Approved: true}, nil)
		f.votes.On("Cast", ctx, mock.AnythingOfType("*models.Vote")).Return(nil).Once()
		f.votes.On("Cast", ctx, mock.AnythingOfType("*models.Vote")).Return(apperrors.ErrAlreadyVoted).Once()

		v, err := f.svc.Vote(ctx, 1, "21cs1042", 10)
		require.NoError(t, err)
		assert.Equal(t, "21CS1042", v.VoterEnrollment)

		_, err = f.svc.Vote(ctx, 1, "21CS1042", 10)
		assert.ErrorIs(t, err, apperrors.ErrAlreadyVoted)
	})

	t.Run("caller without enrollment", func(t *testing.T) {
		f := newElectionFixture()
		_, err := f.svc.Vote(ctx, 1, "", 10)
		assert.ErrorIs(t, err, apperrors.ErrProfileNotFound)
	})
}

func TestResults_TotalsVotes(t *testing.T) {
	f := newElectionFixture()
	ctx := context.Background()

	f.elections.On("GetByID", ctx, int64(1)).Return(f.election(models.ElectionClosed), nil)
	f.votes.On("Results", ctx, int64(1)).Return([]*models.CandidateResult{
		{CandidateID: 10, Votes: 12},
		{CandidateID: 11, Votes: 7},
		{CandidateID: 12, Votes: 0},
	}, nil)

	res, err := f.svc.Results(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 19, res.TotalVotes)
	assert.Len(t, res.Results, 3)
}

func TestCreateElection_EndBeforeStart(t *testing.T) {
	f := newElectionFixture()

	_, err := f.svc.CreateElection(context.Background(), 5, &dto.CreateElectionRequest{
		Title:     "Council",
		Position:  "President",
		StartDate: f.now,
		EndDate:   f.now.Add(-time.Hour),
	})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestNominate_RejectsNonImagePhoto(t *testing.T) {
	f := newElectionFixture()
	ctx := context.Background()
	f.elections.On("GetByID", ctx, int64(1)).Return(f.election(models.ElectionUpcoming), nil)

	photo := formFile(t, "photo", "manifesto.pdf", samplePDF)
	_, err := f.svc.Nominate(ctx, 1, &dto.NominateCandidateRequest{EnrollmentNumber: "21CS1042", Name: "Asha"}, photo)
	assert.ErrorIs(t, err, apperrors.ErrUnsupportedFileType)
	f.storage.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
}

func TestNominate_RemovesPhotoWhenInsertFails(t *testing.T) {
	f := newElectionFixture()
	ctx := context.Background()
	f.elections.On("GetByID", ctx, int64(1)).Return(f.election(models.ElectionUpcoming), nil)
	f.storage.On("Save", ctx, filestorage.BucketCandidatePhotos, mock.Anything).
		Return(&filestorage.Object{Bucket: filestorage.BucketCandidatePhotos, Key: "p.png"}, nil)
	f.candidates.On("Create", ctx, mock.AnythingOfType("*models.Candidate")).Return(apperrors.ErrCandidateExists)
	f.storage.On("Delete", ctx, filestorage.BucketCandidatePhotos, "p.png").Return(nil)

	photo := formFile(t, "photo", "me.png", samplePNG)
	_, err := f.svc.Nominate(ctx, 1, &dto.NominateCandidateRequest{EnrollmentNumber: "21CS1042", Name: "Asha"}, photo)
	assert.ErrorIs(t, err, apperrors.ErrCandidateExists)
	f.storage.AssertExpectations(t)
}

func TestDeleteCandidate_RemovesPhoto(t *testing.T) {
	f := newElectionFixture()
	ctx := context.Background()
	key := "p.png"
	f.candidates.On("Delete", ctx, int64(10)).Return(&models.Candidate{ID: 10, PhotoKey: &key}, nil)
	f.storage.On("Delete", ctx, filestorage.BucketCandidatePhotos, key).Return(nil)

	require.NoError(t, f.svc.DeleteCandidate(ctx, 10))
	f.storage.AssertExpectations(t)
}
