package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yigit/campusdesk/internal/app/models"
	"github.com/yigit/campusdesk/internal/pkg/apperrors"
	"github.com/yigit/campusdesk/internal/pkg/dberrors"
	"github.com/yigit/campusdesk/internal/pkg/logger"
)

// IElectionRepository manages elections
type IElectionRepository interface {
	Create(ctx context.Context, election *models.Election) error
	GetByID(ctx context.Context, id int64) (*models.Election, error)
	// List returns elections, newest first. A non-empty voterEnrollment fills HasVoted.
	List(ctx context.Context, status models.ElectionStatus, voterEnrollment string) ([]*models.Election, error)
	UpdateStatus(ctx context.Context, id int64, status models.ElectionStatus) (*models.Election, error)
	Delete(ctx context.Context, id int64) error
}

// ICandidateRepository manages election candidates
type ICandidateRepository interface {
	Create(ctx context.Context, candidate *models.Candidate) error
	GetByID(ctx context.Context, id int64) (*models.Candidate, error)
	ListByElection(ctx context.Context, electionID int64, approvedOnly bool) ([]*models.Candidate, error)
	SetApproved(ctx context.Context, id int64, approved bool) (*models.Candidate, error)
	// Delete removes the candidate and returns the deleted row so its photo can be cleaned up.
	Delete(ctx context.Context, id int64) (*models.Candidate, error)
}

// IVoteRepository records ballots
type IVoteRepository interface {
	Cast(ctx context.Context, vote *models.Vote) error
	HasVoted(ctx context.Context, electionID int64, enrollment string) (bool, error)
	Results(ctx context.Context, electionID int64) ([]*models.CandidateResult, error)
}

// ElectionRepository handles election database operations
type ElectionRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewElectionRepository creates a new ElectionRepository
func NewElectionRepository(db *pgxpool.Pool) *ElectionRepository {
	return &ElectionRepository{db: db, sb: newBuilder()}
}

var electionColumns = []string{
	"e.id", "e.title", "e.description", "e.position", "e.status", "e.start_date", "e.end_date", "e.created_by", "e.created_at",
}

func scanElection(row pgx.Row, extra ...any) (*models.Election, error) {
	var e models.Election
	var createdBy *int64
	dest := []any{&e.ID, &e.Title, &e.Description, &e.Position, &e.Status, &e.StartDate, &e.EndDate, &createdBy, &e.CreatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrElectionNotFound
		}
		return nil, err
	}
	if createdBy != nil {
		e.CreatedBy = *createdBy
	}
	return &e, nil
}

// Create inserts an election
func (r *ElectionRepository) Create(ctx context.Context, e *models.Election) error {
	if e.Status == "" {
		e.Status = models.ElectionUpcoming
	}
	sql, args, err := r.sb.Insert("elections").
		Columns("title", "description", "position", "status", "start_date", "end_date", "created_by").
		Values(e.Title, e.Description, e.Position, e.Status, e.StartDate, e.EndDate, e.CreatedBy).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create election SQL")
		return fmt.Errorf("failed to build create election query: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&e.ID, &e.CreatedAt); err != nil {
		if dberrors.IsCheckViolation(err) {
			return apperrors.NewValidationError("endDate", "end date must be after start date")
		}
		logger.Error().Err(err).Msg("Error executing create election query")
		return fmt.Errorf("error creating election: %w", err)
	}
	return nil
}

// GetByID retrieves an election
func (r *ElectionRepository) GetByID(ctx context.Context, id int64) (*models.Election, error) {
	sql, args, err := r.sb.Select(electionColumns...).From("elections e").Where(squirrel.Eq{"e.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get election query: %w", err)
	}
	return scanElection(r.db.QueryRow(ctx, sql, args...))
}

// List returns elections newest first
func (r *ElectionRepository) List(ctx context.Context, status models.ElectionStatus, voterEnrollment string) ([]*models.Election, error) {
	b := r.sb.Select(electionColumns...).From("elections e")
	withVote := voterEnrollment != ""
	if withVote {
		b = b.Column(squirrel.Expr("EXISTS (SELECT 1 FROM votes v WHERE v.election_id = e.id AND v.voter_enrollment = ?)", voterEnrollment))
	}
	if status != "" {
		b = b.Where(squirrel.Eq{"e.status": status})
	}
	sql, args, err := b.OrderBy("e.start_date DESC", "e.id DESC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list elections query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing elections")
		return nil, fmt.Errorf("error listing elections: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Election, 0)
	for rows.Next() {
		var hasVoted bool
		var extra []any
		if withVote {
			extra = append(extra, &hasVoted)
		}
		e, err := scanElection(rows, extra...)
		if err != nil {
			return nil, fmt.Errorf("error scanning election: %w", err)
		}
		e.HasVoted = hasVoted
		out = append(out, e)
	}
	return out, rows.Err()
}

// UpdateStatus moves an election to a new status
func (r *ElectionRepository) UpdateStatus(ctx context.Context, id int64, status models.ElectionStatus) (*models.Election, error) {
	sql, args, err := r.sb.Update("elections e").
		Set("status", status).
		Where(squirrel.Eq{"e.id": id}).
		Suffix("RETURNING " + joinColumns(electionColumns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build update election status query: %w", err)
	}
	return scanElection(r.db.QueryRow(ctx, sql, args...))
}

// Delete removes an election together with its candidates and votes
func (r *ElectionRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM elections WHERE id = $1`, id)
	if err != nil {
		logger.Error().Err(err).Int64("id", id).Msg("Error deleting election")
		return fmt.Errorf("error deleting election: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrElectionNotFound
	}
	return nil
}

// CandidateRepository handles candidate database operations
type CandidateRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewCandidateRepository creates a new CandidateRepository
func NewCandidateRepository(db *pgxpool.Pool) *CandidateRepository {
	return &CandidateRepository{db: db, sb: newBuilder()}
}

var candidateColumns = []string{
	"id", "election_id", "enrollment_number", "name", "manifesto", "photo_key", "approved", "created_at",
}

func scanCandidate(row pgx.Row) (*models.Candidate, error) {
	var c models.Candidate
	err := row.Scan(&c.ID, &c.ElectionID, &c.EnrollmentNumber, &c.Name, &c.Manifesto, &c.PhotoKey, &c.Approved, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrCandidateNotFound
		}
		return nil, err
	}
	return &c, nil
}

// Create inserts a candidate
func (r *CandidateRepository) Create(ctx context.Context, c *models.Candidate) error {
	sql, args, err := r.sb.Insert("candidates").
		Columns("election_id", "enrollment_number", "name", "manifesto", "photo_key", "approved").
		Values(c.ElectionID, c.EnrollmentNumber, c.Name, c.Manifesto, c.PhotoKey, c.Approved).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create candidate SQL")
		return fmt.Errorf("failed to build create candidate query: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&c.ID, &c.CreatedAt); err != nil {
		switch {
		case dberrors.IsDuplicateConstraintError(err, "candidates_election_id_enrollment_number_key"):
			return apperrors.ErrCandidateExists
		case dberrors.IsForeignKeyViolation(err):
			return apperrors.NewResourceNotFoundError("election or student not found")
		}
		logger.Error().Err(err).Int64("electionID", c.ElectionID).Msg("Error executing create candidate query")
		return fmt.Errorf("error creating candidate: %w", err)
	}
	return nil
}

// GetByID retrieves a candidate
func (r *CandidateRepository) GetByID(ctx context.Context, id int64) (*models.Candidate, error) {
	sql, args, err := r.sb.Select(candidateColumns...).From("candidates").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get candidate query: %w", err)
	}
	return scanCandidate(r.db.QueryRow(ctx, sql, args...))
}

// ListByElection returns an election's candidates by name
func (r *CandidateRepository) ListByElection(ctx context.Context, electionID int64, approvedOnly bool) ([]*models.Candidate, error) {
	b := r.sb.Select(candidateColumns...).From("candidates").Where(squirrel.Eq{"election_id": electionID})
	if approvedOnly {
		b = b.Where(squirrel.Eq{"approved": true})
	}
	sql, args, err := b.OrderBy("name", "id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list candidates query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("electionID", electionID).Msg("Error listing candidates")
		return nil, fmt.Errorf("error listing candidates: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Candidate, 0)
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning candidate: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// SetApproved approves or withdraws approval of a candidate
func (r *CandidateRepository) SetApproved(ctx context.Context, id int64, approved bool) (*models.Candidate, error) {
	sql, args, err := r.sb.Update("candidates").
		Set("approved", approved).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + joinColumns(candidateColumns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build approve candidate query: %w", err)
	}
	return scanCandidate(r.db.QueryRow(ctx, sql, args...))
}

// Delete removes a candidate
func (r *CandidateRepository) Delete(ctx context.Context, id int64) (*models.Candidate, error) {
	sql, args, err := r.sb.Delete("candidates").
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + joinColumns(candidateColumns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build delete candidate query: %w", err)
	}
	return scanCandidate(r.db.QueryRow(ctx, sql, args...))
}

// VoteRepository handles vote database operations
type VoteRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewVoteRepository creates a new VoteRepository
func NewVoteRepository(db *pgxpool.Pool) *VoteRepository {
	return &VoteRepository{db: db, sb: newBuilder()}
}

// Cast records a ballot. The unique key enforces one vote per voter per election.
func (r *VoteRepository) Cast(ctx context.Context, v *models.Vote) error {
	sql, args, err := r.sb.Insert("votes").
		Columns("election_id", "candidate_id", "voter_enrollment").
		Values(v.ElectionID, v.CandidateID, v.VoterEnrollment).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build cast vote query: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&v.ID, &v.CreatedAt); err != nil {
		switch {
		case dberrors.IsDuplicateConstraintError(err, "votes_election_id_voter_enrollment_key"):
			return apperrors.ErrAlreadyVoted
		case dberrors.IsForeignKeyViolation(err):
			return apperrors.ErrCandidateNotFound
		}
		logger.Error().Err(err).Int64("electionID", v.ElectionID).Msg("Error casting vote")
		return fmt.Errorf("error casting vote: %w", err)
	}
	return nil
}

// HasVoted reports whether the voter already cast a ballot in the election
func (r *VoteRepository) HasVoted(ctx context.Context, electionID int64, enrollment string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM votes WHERE election_id = $1 AND voter_enrollment = $2)`,
		electionID, enrollment).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking vote: %w", err)
	}
	return exists, nil
}

// Results tallies votes per approved candidate, highest first
func (r *VoteRepository) Results(ctx context.Context, electionID int64) ([]*models.CandidateResult, error) {
	sql, args, err := r.sb.Select("c.id", "c.name", "c.enrollment_number", "count(v.id)").
		From("candidates c").
		LeftJoin("votes v ON v.candidate_id = c.id").
		Where(squirrel.Eq{"c.election_id": electionID, "c.approved": true}).
		GroupBy("c.id", "c.name", "c.enrollment_number").
		OrderBy("count(v.id) DESC", "c.name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build election results query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("electionID", electionID).Msg("Error tallying votes")
		return nil, fmt.Errorf("error tallying votes: %w", err)
	}
	defer rows.Close()

	out := make([]*models.CandidateResult, 0)
	for rows.Next() {
		var res models.CandidateResult
		if err := rows.Scan(&res.CandidateID, &res.Name, &res.EnrollmentNumber, &res.Votes); err != nil {
			return nil, fmt.Errorf("error scanning result: %w", err)
		}
		out = append(out, &res)
	}
	return out, rows.Err()
}
