package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yigit/campusdesk/internal/app/models"
	"github.com/yigit/campusdesk/internal/pkg/apperrors"
	"github.com/yigit/campusdesk/internal/pkg/logger"
)

// ITimetableRepository manages timetable slots
type ITimetableRepository interface {
	// Upsert replaces the slot keyed by (department, semester, section, day, period).
	Upsert(ctx context.Context, slot *models.Timetable) error
	List(ctx context.Context, filter models.ClassFilter) ([]*models.Timetable, error)
	Delete(ctx context.Context, id int64) error
}

// TimetableRepository handles timetable database operations
type TimetableRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewTimetableRepository creates a new TimetableRepository
func NewTimetableRepository(db *pgxpool.Pool) *TimetableRepository {
	return &TimetableRepository{db: db, sb: newBuilder()}
}

// Upsert writes a slot
func (r *TimetableRepository) Upsert(ctx context.Context, t *models.Timetable) error {
	sql, args, err := r.sb.Insert("timetables").
		Columns("department", "semester", "section", "day_of_week", "period",
			"subject", "faculty_name", "room", "start_time", "end_time").
		Values(t.Department, t.Semester, t.Section, t.DayOfWeek, t.Period,
			t.Subject, t.FacultyName, t.Room, t.StartTime, t.EndTime).
		Suffix(`ON CONFLICT ON CONSTRAINT timetables_slot_key DO UPDATE SET
			subject = EXCLUDED.subject, faculty_name = EXCLUDED.faculty_name, room = EXCLUDED.room,
			start_time = EXCLUDED.start_time, end_time = EXCLUDED.end_time
			RETURNING id, created_at`).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building upsert timetable SQL")
		return fmt.Errorf("failed to build upsert timetable query: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&t.ID, &t.CreatedAt); err != nil {
		logger.Error().Err(err).Str("department", t.Department).Msg("Error executing upsert timetable query")
		return fmt.Errorf("error saving timetable slot: %w", err)
	}
	return nil
}

// List returns a class's slots in weekday and period order
func (r *TimetableRepository) List(ctx context.Context, f models.ClassFilter) ([]*models.Timetable, error) {
	where := squirrel.And{}
	if f.Department != "" {
		where = append(where, squirrel.Eq{"department": f.Department})
	}
	if f.Semester > 0 {
		where = append(where, squirrel.Eq{"semester": f.Semester})
	}
	if f.Section != "" {
		where = append(where, squirrel.Eq{"section": f.Section})
	}

	sql, args, err := r.sb.Select("id", "department", "semester", "section", "day_of_week", "period",
		"subject", "faculty_name", "room", "start_time", "end_time", "created_at").
		From("timetables").
		Where(where).
		OrderBy(`CASE day_of_week
			WHEN 'monday' THEN 1 WHEN 'tuesday' THEN 2 WHEN 'wednesday' THEN 3
			WHEN 'thursday' THEN 4 WHEN 'friday' THEN 5 WHEN 'saturday' THEN 6 ELSE 7 END`, "period").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list timetable query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing timetable")
		return nil, fmt.Errorf("error listing timetable: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Timetable, 0)
	for rows.Next() {
		var t models.Timetable
		if err := rows.Scan(&t.ID, &t.Department, &t.Semester, &t.Section, &t.DayOfWeek, &t.Period,
			&t.Subject, &t.FacultyName, &t.Room, &t.StartTime, &t.EndTime, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning timetable slot: %w", err)
		}
		out = append(out, &t)
	}
	return out, rows.Err()
}

// Delete removes a slot
func (r *TimetableRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM timetables WHERE id = $1`, id)
	if err != nil {
		logger.Error().Err(err).Int64("id", id).Msg("Error deleting timetable slot")
		return fmt.Errorf("error deleting timetable slot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrTimetableNotFound
	}
	return nil
}
