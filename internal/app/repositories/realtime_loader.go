package repositories

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yigit/campusdesk/internal/pkg/apperrors"
	"github.com/yigit/campusdesk/internal/pkg/notifications"
	"github.com/yigit/campusdesk/internal/pkg/realtime"
)

// streamSource describes how rows of one followed table become events
type streamSource struct {
	columns []string
	scan    func(row pgx.Row) (realtime.Event, error)
}

var streamSources = map[realtime.Stream]streamSource{
	realtime.StreamNotices: {
		columns: []string{"id", "created_at", "audience", "title"},
		scan: func(row pgx.Row) (realtime.Event, error) {
			ev := realtime.Event{Stream: realtime.StreamNotices}
			err := row.Scan(&ev.RowID, &ev.CreatedAt, &ev.Audience, &ev.Title)
			return ev, err
		},
	},
	realtime.StreamMarks: {
		columns: []string{"id", "created_at", "enrollment_number", "subject", "exam_type", "marks_obtained", "max_marks"},
		scan: func(row pgx.Row) (realtime.Event, error) {
			ev := realtime.Event{Stream: realtime.StreamMarks}
			var examType string
			var obtained, max float64
			if err := row.Scan(&ev.RowID, &ev.CreatedAt, &ev.EnrollmentNumber, &ev.Title, &examType, &obtained, &max); err != nil {
				return ev, err
			}
			ev.Body = fmt.Sprintf("%s: %s/%s", examType, formatScore(obtained), formatScore(max))
			return ev, nil
		},
	},
	realtime.StreamPlacements: {
		columns: []string{"id", "created_at", "company_name", "role"},
		scan: func(row pgx.Row) (realtime.Event, error) {
			ev := realtime.Event{Stream: realtime.StreamPlacements}
			err := row.Scan(&ev.RowID, &ev.CreatedAt, &ev.Title, &ev.Body)
			return ev, err
		},
	},
	realtime.StreamAlerts: {
		columns: []string{"id", "created_at", "COALESCE(enrollment_number, '')", "title", "message", "type"},
		scan: func(row pgx.Row) (realtime.Event, error) {
			ev := realtime.Event{Stream: realtime.StreamAlerts}
			var alertType string
			err := row.Scan(&ev.RowID, &ev.CreatedAt, &ev.EnrollmentNumber, &ev.Title, &ev.Body, &alertType)
			ev.AlertType = notifications.Type(alertType)
			return ev, err
		},
	},
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// RealtimeLoader reads rows announced on the change stream back from their tables.
type RealtimeLoader struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewRealtimeLoader creates a loader over the pool
func NewRealtimeLoader(db *pgxpool.Pool) *RealtimeLoader {
	return &RealtimeLoader{db: db, sb: newBuilder()}
}

func sourceFor(stream realtime.Stream) (streamSource, error) {
	src, ok := streamSources[stream]
	if !ok {
		return streamSource{}, fmt.Errorf("unknown realtime stream %q", stream)
	}
	return src, nil
}

// Load implements realtime.Loader.
func (l *RealtimeLoader) Load(ctx context.Context, stream realtime.Stream, id int64) (realtime.Event, error) {
	src, err := sourceFor(stream)
	if err != nil {
		return realtime.Event{}, err
	}
	sql, args, err := l.sb.Select(src.columns...).From(string(stream)).Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return realtime.Event{}, fmt.Errorf("failed to build load %s query: %w", stream, err)
	}

	ev, err := src.scan(l.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return realtime.Event{}, apperrors.ErrResourceNotFound
		}
		return realtime.Event{}, fmt.Errorf("load %s row %d: %w", stream, id, err)
	}
	return ev, nil
}

// Since implements realtime.Loader.
func (l *RealtimeLoader) Since(ctx context.Context, stream realtime.Stream, afterID int64, limit int) ([]realtime.Event, error) {
	src, err := sourceFor(stream)
	if err != nil {
		return nil, err
	}
	b := l.sb.Select(src.columns...).From(string(stream)).
		Where(squirrel.Gt{"id": afterID}).
		OrderBy("id")
	if limit > 0 {
		b = b.Limit(uint64(limit))
	}
	sql, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build replay %s query: %w", stream, err)
	}

	rows, err := l.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("replay %s: %w", stream, err)
	}
	defer rows.Close()

	var out []realtime.Event
	for rows.Next() {
		ev, err := src.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s row: %w", stream, err)
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

// LatestID implements realtime.Loader.
func (l *RealtimeLoader) LatestID(ctx context.Context, stream realtime.Stream) (int64, error) {
	if _, err := sourceFor(stream); err != nil {
		return 0, err
	}
	sql, args, err := l.sb.Select("COALESCE(MAX(id), 0)").From(string(stream)).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build latest %s id query: %w", stream, err)
	}
	var id int64
	if err := l.db.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("latest %s id: %w", stream, err)
	}
	return id, nil
}
