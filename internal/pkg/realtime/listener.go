package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// PgListener follows a Postgres NOTIFY channel on a connection taken out of the pool.
// Insert triggers publish {"table": "...", "id": N} payloads on that channel.
type PgListener struct {
	pool    *pgxpool.Pool
	channel string
	logger  zerolog.Logger
}

// NewPgListener creates a listener for channel.
func NewPgListener(pool *pgxpool.Pool, channel string, logger zerolog.Logger) *PgListener {
	return &PgListener{pool: pool, channel: channel, logger: logger}
}

// Listen implements Listener.
func (l *PgListener) Listen(ctx context.Context, ready func(context.Context) error, handle func(context.Context, RowRef)) error {
	pooled, err := l.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire listener connection: %w", err)
	}
	// LISTEN state must not leak back into the pool.
	conn := pooled.Hijack()
	defer conn.Close(context.Background())

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{l.channel}.Sanitize()); err != nil {
		return fmt.Errorf("listen on %s: %w", l.channel, err)
	}

	if err := ready(ctx); err != nil {
		return fmt.Errorf("prepare realtime session: %w", err)
	}

	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			return fmt.Errorf("wait for notification: %w", err)
		}

		ref, err := decodeRowRef(n.Payload)
		if err != nil {
			l.logger.Warn().Err(err).Str("payload", n.Payload).Msg("Discarding malformed realtime payload")
			continue
		}
		handle(ctx, ref)
	}
}

func decodeRowRef(payload string) (RowRef, error) {
	var ref RowRef
	if err := json.Unmarshal([]byte(payload), &ref); err != nil {
		return RowRef{}, err
	}
	if ref.Stream == "" || ref.ID <= 0 {
		return RowRef{}, fmt.Errorf("payload missing table or id")
	}
	return ref, nil
}
