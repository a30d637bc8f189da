package repositories

import (
	"context"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository           IUserRepository
	RoleRepository           IRoleRepository
	ProfileRepository        IProfileRepository
	FacultyProfileRepository IFacultyProfileRepository
	TokenRepository          ITokenRepository
	PasswordResetRepository  IPasswordResetTokenRepository
	AttendanceRepository     IAttendanceRepository
	MarkRepository           IMarkRepository
	ElectionRepository       IElectionRepository
	CandidateRepository      ICandidateRepository
	VoteRepository           IVoteRepository
	PlacementRepository      IPlacementRepository
	ApplicationRepository    IPlacementApplicationRepository
	NoticeRepository         INoticeRepository
	StudyMaterialRepository  IStudyMaterialRepository
	TimetableRepository      ITimetableRepository
	FeedbackRepository       IFeedbackRepository
	ReportRepository         IPerformanceReportRepository
	ClassRepRepository       IClassRepresentativeRepository
	AlertRepository          IAlertRepository
	RealtimeLoader           *RealtimeLoader
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		UserRepository:           NewUserRepository(db),
		RoleRepository:           NewRoleRepository(db),
		ProfileRepository:        NewProfileRepository(db),
		FacultyProfileRepository: NewFacultyProfileRepository(db),
		TokenRepository:          NewTokenRepository(db),
		PasswordResetRepository:  NewPasswordResetTokenRepository(db),
		AttendanceRepository:     NewAttendanceRepository(db),
		MarkRepository:           NewMarkRepository(db),
		ElectionRepository:       NewElectionRepository(db),
		CandidateRepository:      NewCandidateRepository(db),
		VoteRepository:           NewVoteRepository(db),
		PlacementRepository:      NewPlacementRepository(db),
		ApplicationRepository:    NewPlacementApplicationRepository(db),
		NoticeRepository:         NewNoticeRepository(db),
		StudyMaterialRepository:  NewStudyMaterialRepository(db),
		TimetableRepository:      NewTimetableRepository(db),
		FeedbackRepository:       NewFeedbackRepository(db),
		ReportRepository:         NewPerformanceReportRepository(db),
		ClassRepRepository:       NewClassRepresentativeRepository(db),
		AlertRepository:          NewAlertRepository(db),
		RealtimeLoader:           NewRealtimeLoader(db),
	}
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func newBuilder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// page applies limit/offset when a limit is set
func page(b squirrel.SelectBuilder, limit, offset int) squirrel.SelectBuilder {
	if limit > 0 {
		b = b.Limit(uint64(limit))
	}
	if offset > 0 {
		b = b.Offset(uint64(offset))
	}
	return b
}

// count runs a select count(*) builder
func count(ctx context.Context, q querier, b squirrel.SelectBuilder) (int64, error) {
	sql, args, err := b.ToSql()
	if err != nil {
		return 0, err
	}
	var total int64
	if err := q.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func joinColumns(cols []string) string {
	return strings.Join(cols, ", ")
}
