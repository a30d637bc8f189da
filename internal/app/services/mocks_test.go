package services

import (
	"context"
	"io"
	"mime/multipart"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/yigit/campusdesk/internal/app/models"
	"github.com/yigit/campusdesk/internal/app/models/dto"
	"github.com/yigit/campusdesk/internal/app/repositories"
	"github.com/yigit/campusdesk/internal/pkg/filestorage"
)

// MockUserRepository is a mock implementation of IUserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateAccount(ctx context.Context, account *models.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	args := m.Called(ctx, userID, passwordHash)
	return args.Error(0)
}

func (m *MockUserRepository) TouchLastSignIn(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockRoleRepository is a mock implementation of IRoleRepository.
type MockRoleRepository struct {
	mock.Mock
}

func (m *MockRoleRepository) ListByUser(ctx context.Context, userID int64) ([]models.Role, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Role), args.Error(1)
}

func (m *MockRoleRepository) List(ctx context.Context, role models.Role, limit, offset int) ([]*models.UserRole, int64, error) {
	args := m.Called(ctx, role, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*models.UserRole), args.Get(1).(int64), args.Error(2)
}

func (m *MockRoleRepository) Grant(ctx context.Context, userID int64, role models.Role) (*models.UserRole, error) {
	args := m.Called(ctx, userID, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserRole), args.Error(1)
}

func (m *MockRoleRepository) Revoke(ctx context.Context, userID int64, role models.Role) error {
	args := m.Called(ctx, userID, role)
	return args.Error(0)
}

// MockProfileRepository is a mock implementation of IProfileRepository.
type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) GetByUserID(ctx context.Context, userID int64) (*models.Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockProfileRepository) GetByEnrollment(ctx context.Context, enrollment string) (*models.Profile, error) {
	args := m.Called(ctx, enrollment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockProfileRepository) List(ctx context.Context, filter models.ProfileFilter) ([]*models.Profile, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*models.Profile), args.Get(1).(int64), args.Error(2)
}

func (m *MockProfileRepository) Update(ctx context.Context, profile *models.Profile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *MockProfileRepository) SetVerify(ctx context.Context, userID int64, verify bool) (*models.Profile, error) {
	args := m.Called(ctx, userID, verify)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockProfileRepository) EnrollmentExists(ctx context.Context, enrollment string) (bool, error) {
	args := m.Called(ctx, enrollment)
	return args.Bool(0), args.Error(1)
}

// MockFacultyProfileRepository is a mock implementation of IFacultyProfileRepository.
type MockFacultyProfileRepository struct {
	mock.Mock
}

func (m *MockFacultyProfileRepository) GetByUserID(ctx context.Context, userID int64) (*models.FacultyProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FacultyProfile), args.Error(1)
}

func (m *MockFacultyProfileRepository) List(ctx context.Context, verify *bool, limit, offset int) ([]*models.FacultyProfile, int64, error) {
	args := m.Called(ctx, verify, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*models.FacultyProfile), args.Get(1).(int64), args.Error(2)
}

func (m *MockFacultyProfileRepository) Update(ctx context.Context, profile *models.FacultyProfile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *MockFacultyProfileRepository) SetVerify(ctx context.Context, userID int64, verify bool) (*models.FacultyProfile, error) {
	args := m.Called(ctx, userID, verify)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FacultyProfile), args.Error(1)
}

// MockTokenRepository is a mock implementation of ITokenRepository.
type MockTokenRepository struct {
	mock.Mock
}

func (m *MockTokenRepository) CreateToken(ctx context.Context, token string, userID int64, expiresAt time.Time) error {
	args := m.Called(ctx, token, userID, expiresAt)
	return args.Error(0)
}

func (m *MockTokenRepository) GetToken(ctx context.Context, token string) (*repositories.RefreshToken, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repositories.RefreshToken), args.Error(1)
}

func (m *MockTokenRepository) RevokeToken(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockTokenRepository) RevokeAllUserTokens(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockTokenRepository) CleanupExpiredTokens(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockPasswordResetRepository is a mock implementation of IPasswordResetTokenRepository.
type MockPasswordResetRepository struct {
	mock.Mock
}

func (m *MockPasswordResetRepository) CreateToken(ctx context.Context, userID int64, token string, expiresAt time.Time) error {
	args := m.Called(ctx, userID, token, expiresAt)
	return args.Error(0)
}

func (m *MockPasswordResetRepository) GetToken(ctx context.Context, token string) (*models.PasswordResetToken, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PasswordResetToken), args.Error(1)
}

func (m *MockPasswordResetRepository) Consume(ctx context.Context, token, passwordHash string) (int64, error) {
	args := m.Called(ctx, token, passwordHash)
	return args.Get(0).(int64), args.Error(1)
}

// MockAttendanceRepository is a mock implementation of IAttendanceRepository.
type MockAttendanceRepository struct {
	mock.Mock
}

func (m *MockAttendanceRepository) Upsert(ctx context.Context, records []*models.Attendance) error {
	args := m.Called(ctx, records)
	return args.Error(0)
}

func (m *MockAttendanceRepository) List(ctx context.Context, filter models.AttendanceFilter) ([]*models.Attendance, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*models.Attendance), args.Get(1).(int64), args.Error(2)
}

func (m *MockAttendanceRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAttendanceRepository) SummaryByEnrollment(ctx context.Context, enrollment string) ([]*models.AttendanceSummary, error) {
	args := m.Called(ctx, enrollment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.AttendanceSummary), args.Error(1)
}

// MockMarkRepository is a mock implementation of IMarkRepository.
type MockMarkRepository struct {
	mock.Mock
}

func (m *MockMarkRepository) Create(ctx context.Context, mark *models.Mark) error {
	args := m.Called(ctx, mark)
	return args.Error(0)
}

func (m *MockMarkRepository) GetByID(ctx context.Context, id int64) (*models.Mark, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Mark), args.Error(1)
}

func (m *MockMarkRepository) Update(ctx context.Context, mark *models.Mark) error {
	args := m.Called(ctx, mark)
	return args.Error(0)
}

func (m *MockMarkRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockMarkRepository) List(ctx context.Context, filter models.MarkFilter) ([]*models.Mark, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*models.Mark), args.Get(1).(int64), args.Error(2)
}

// MockElectionRepository is a mock implementation of IElectionRepository.
type MockElectionRepository struct {
	mock.Mock
}

func (m *MockElectionRepository) Create(ctx context.Context, election *models.Election) error {
	args := m.Called(ctx, election)
	return args.Error(0)
}

func (m *MockElectionRepository) GetByID(ctx context.Context, id int64) (*models.Election, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Election), args.Error(1)
}

func (m *MockElectionRepository) List(ctx context.Context, status models.ElectionStatus, voterEnrollment string) ([]*models.Election, error) {
	args := m.Called(ctx, status, voterEnrollment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Election), args.Error(1)
}

func (m *MockElectionRepository) UpdateStatus(ctx context.Context, id int64, status models.ElectionStatus) (*models.Election, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Election), args.Error(1)
}

func (m *MockElectionRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockCandidateRepository is a mock implementation of ICandidateRepository.
type MockCandidateRepository struct {
	mock.Mock
}

func (m *MockCandidateRepository) Create(ctx context.Context, candidate *models.Candidate) error {
	args := m.Called(ctx, candidate)
	return args.Error(0)
}

func (m *MockCandidateRepository) GetByID(ctx context.Context, id int64) (*models.Candidate, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Candidate), args.Error(1)
}

func (m *MockCandidateRepository) ListByElection(ctx context.Context, electionID int64, approvedOnly bool) ([]*models.Candidate, error) {
	args := m.Called(ctx, electionID, approvedOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Candidate), args.Error(1)
}

func (m *MockCandidateRepository) SetApproved(ctx context.Context, id int64, approved bool) (*models.Candidate, error) {
	args := m.Called(ctx, id, approved)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Candidate), args.Error(1)
}

func (m *MockCandidateRepository) Delete(ctx context.Context, id int64) (*models.Candidate, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Candidate), args.Error(1)
}

// MockVoteRepository is a mock implementation of IVoteRepository.
type MockVoteRepository struct {
	mock.Mock
}

func (m *MockVoteRepository) Cast(ctx context.Context, vote *models.Vote) error {
	args := m.Called(ctx, vote)
	return args.Error(0)
}

func (m *MockVoteRepository) HasVoted(ctx context.Context, electionID int64, enrollment string) (bool, error) {
	args := m.Called(ctx, electionID, enrollment)
	return args.Bool(0), args.Error(1)
}

func (m *MockVoteRepository) Results(ctx context.Context, electionID int64) ([]*models.CandidateResult, error) {
	args := m.Called(ctx, electionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.CandidateResult), args.Error(1)
}

// MockPlacementRepository is a mock implementation of IPlacementRepository.
type MockPlacementRepository struct {
	mock.Mock
}

func (m *MockPlacementRepository) Create(ctx context.Context, placement *models.Placement) error {
	args := m.Called(ctx, placement)
	return args.Error(0)
}

func (m *MockPlacementRepository) GetByID(ctx context.Context, id int64) (*models.Placement, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Placement), args.Error(1)
}

func (m *MockPlacementRepository) List(ctx context.Context, enrollment string, limit, offset int) ([]*models.Placement, int64, error) {
	args := m.Called(ctx, enrollment, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*models.Placement), args.Get(1).(int64), args.Error(2)
}

func (m *MockPlacementRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockApplicationRepository is a mock implementation of IPlacementApplicationRepository.
type MockApplicationRepository struct {
	mock.Mock
}

func (m *MockApplicationRepository) Create(ctx context.Context, application *models.PlacementApplication) error {
	args := m.Called(ctx, application)
	return args.Error(0)
}

func (m *MockApplicationRepository) ListByPlacement(ctx context.Context, placementID int64) ([]*models.PlacementApplication, error) {
	args := m.Called(ctx, placementID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.PlacementApplication), args.Error(1)
}

func (m *MockApplicationRepository) ListByEnrollment(ctx context.Context, enrollment string) ([]*models.PlacementApplication, error) {
	args := m.Called(ctx, enrollment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.PlacementApplication), args.Error(1)
}

func (m *MockApplicationRepository) UpdateStatus(ctx context.Context, id int64, status models.ApplicationStatus) (*models.PlacementApplication, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PlacementApplication), args.Error(1)
}

// MockNoticeRepository is a mock implementation of INoticeRepository.
type MockNoticeRepository struct {
	mock.Mock
}

func (m *MockNoticeRepository) Create(ctx context.Context, notice *models.Notice) error {
	args := m.Called(ctx, notice)
	return args.Error(0)
}

func (m *MockNoticeRepository) GetByID(ctx context.Context, id int64) (*models.Notice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Notice), args.Error(1)
}

func (m *MockNoticeRepository) List(ctx context.Context, filter models.NoticeFilter) ([]*models.Notice, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*models.Notice), args.Get(1).(int64), args.Error(2)
}

func (m *MockNoticeRepository) Delete(ctx context.Context, id int64) (*models.Notice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Notice), args.Error(1)
}

// MockStudyMaterialRepository is a mock implementation of IStudyMaterialRepository.
type MockStudyMaterialRepository struct {
	mock.Mock
}

func (m *MockStudyMaterialRepository) Create(ctx context.Context, material *models.StudyMaterial) error {
	args := m.Called(ctx, material)
	return args.Error(0)
}

func (m *MockStudyMaterialRepository) GetByID(ctx context.Context, id int64) (*models.StudyMaterial, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StudyMaterial), args.Error(1)
}

func (m *MockStudyMaterialRepository) List(ctx context.Context, filter models.MaterialFilter) ([]*models.StudyMaterial, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*models.StudyMaterial), args.Get(1).(int64), args.Error(2)
}

func (m *MockStudyMaterialRepository) Delete(ctx context.Context, id int64) (*models.StudyMaterial, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StudyMaterial), args.Error(1)
}

// MockFeedbackRepository is a mock implementation of IFeedbackRepository.
type MockFeedbackRepository struct {
	mock.Mock
}

func (m *MockFeedbackRepository) Create(ctx context.Context, feedback *models.Feedback) error {
	args := m.Called(ctx, feedback)
	return args.Error(0)
}

func (m *MockFeedbackRepository) List(ctx context.Context, category string, limit, offset int) ([]*models.Feedback, int64, error) {
	args := m.Called(ctx, category, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*models.Feedback), args.Get(1).(int64), args.Error(2)
}

func (m *MockFeedbackRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockEmailService is a mock implementation of email.EmailService.
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendPasswordResetEmail(toEmail, toName, token string) error {
	args := m.Called(toEmail, toName, token)
	return args.Error(0)
}

func (m *MockEmailService) SendProfileVerifiedEmail(toEmail, toName, role string) error {
	args := m.Called(toEmail, toName, role)
	return args.Error(0)
}

// MockStorage is a mock implementation of filestorage.Storage.
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Save(ctx context.Context, bucket string, fileHeader *multipart.FileHeader) (*filestorage.Object, error) {
	args := m.Called(ctx, bucket, fileHeader)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*filestorage.Object), args.Error(1)
}

func (m *MockStorage) Open(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	args := m.Called(ctx, bucket, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *MockStorage) Delete(ctx context.Context, bucket, key string) error {
	args := m.Called(ctx, bucket, key)
	return args.Error(0)
}

func (m *MockStorage) URL(bucket, key string) string {
	return "/uploads/" + bucket + "/" + key
}

// recordingPublisher captures auth events in order.
type recordingPublisher struct {
	mu           sync.Mutex
	events       []string
	disconnected []int64
}

func (p *recordingPublisher) PublishAuthEvent(userID int64, ev dto.AuthEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev.Event)
}

func (p *recordingPublisher) DisconnectUser(userID int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.disconnected = append(p.disconnected, userID)
}
