package realtime

import (
	"context"
	"errors"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/yigit/campusdesk/internal/pkg/apperrors"
	"github.com/yigit/campusdesk/internal/pkg/metrics"
)

// Listener follows the change stream over one connection.
type Listener interface {
	// Listen blocks until ctx ends or the connection fails. ready runs once the
	// subscription is established and before any row is handed to handle; an
	// error from ready aborts the session.
	Listen(ctx context.Context, ready func(context.Context) error, handle func(context.Context, RowRef)) error
}

// Loader reads inserted rows back from their tables.
type Loader interface {
	// Load fetches one row. apperrors.ErrResourceNotFound means it is gone.
	Load(ctx context.Context, stream Stream, id int64) (Event, error)
	// Since returns rows with id > afterID in ascending id order, at most limit.
	Since(ctx context.Context, stream Stream, afterID int64, limit int) ([]Event, error)
	// LatestID returns the current highest row id, 0 for an empty table.
	LatestID(ctx context.Context, stream Stream) (int64, error)
}

// Dispatcher receives events in delivery order.
type Dispatcher interface {
	Dispatch(ev Event) int
	SetStatus(connected bool)
}

// Backoff configures the reconnect delay.
type Backoff struct {
	Min time.Duration
	Max time.Duration
}

// Delay returns the wait before reconnect attempt n (1-based): Min doubled per
// attempt and capped at Max.
func (b Backoff) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := b.Min
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= b.Max || d <= 0 {
			return b.Max
		}
	}
	if d > b.Max {
		return b.Max
	}
	return d
}

const (
	defaultReplayLimit = 500
	recentWindow       = 256
)

// Option customizes a Supervisor.
type Option func(*Supervisor)

// WithReplayLimit sets the page size used when reading missed rows back.
func WithReplayLimit(n int) Option {
	return func(s *Supervisor) {
		if n > 0 {
			s.replayLimit = n
		}
	}
}

// WithJitter replaces the jitter applied to each backoff delay.
func WithJitter(fn func(time.Duration) time.Duration) Option {
	return func(s *Supervisor) { s.jitter = fn }
}

// WithSleep replaces the wait between attempts. It returns false when ctx ends first.
func WithSleep(fn func(ctx context.Context, d time.Duration) bool) Option {
	return func(s *Supervisor) { s.sleep = fn }
}

// Supervisor keeps a Listener running and guarantees that rows inserted while
// it was disconnected are replayed exactly once.
type Supervisor struct {
	listener   Listener
	loader     Loader
	dispatcher Dispatcher
	backoff    Backoff
	logger     zerolog.Logger

	replayLimit int
	jitter      func(time.Duration) time.Duration
	sleep       func(ctx context.Context, d time.Duration) bool

	mu          sync.Mutex
	cursors     map[Stream]*cursor
	initialized bool
	attempt     int
}

// NewSupervisor wires a supervisor. Nothing runs until Run is called.
func NewSupervisor(listener Listener, loader Loader, dispatcher Dispatcher, backoff Backoff, logger zerolog.Logger, opts ...Option) *Supervisor {
	s := &Supervisor{
		listener:    listener,
		loader:      loader,
		dispatcher:  dispatcher,
		backoff:     backoff,
		logger:      logger,
		replayLimit: defaultReplayLimit,
		jitter:      equalJitter,
		sleep:       sleepContext,
		cursors:     make(map[Stream]*cursor, len(Streams)),
	}
	for _, stream := range Streams {
		s.cursors[stream] = newCursor()
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run blocks until ctx is cancelled, reconnecting the listener whenever it fails.
func (s *Supervisor) Run(ctx context.Context) error {
	for {
		err := s.session(ctx)
		if ctx.Err() != nil {
			s.dispatcher.SetStatus(false)
			return nil
		}

		s.dispatcher.SetStatus(false)

		s.mu.Lock()
		s.attempt++
		attempt := s.attempt
		s.mu.Unlock()

		delay := s.jitter(s.backoff.Delay(attempt))
		metrics.RealtimeReconnects.Inc()
		s.logger.Warn().Err(err).Int("attempt", attempt).Dur("retryIn", delay).Msg("Realtime listener disconnected")

		if !s.sleep(ctx, delay) {
			return nil
		}
	}
}

// Watermark returns the highest row id delivered for stream.
func (s *Supervisor) Watermark(stream Stream) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.cursors[stream]; ok {
		return c.high
	}
	return 0
}

func (s *Supervisor) session(ctx context.Context) error {
	if err := s.initWatermarks(ctx); err != nil {
		return err
	}
	err := s.listener.Listen(ctx, s.onReady, s.onRow)
	if err == nil && ctx.Err() == nil {
		err = errors.New("listener returned without error")
	}
	return err
}

// Watermarks start at the current table heads so history is not replayed on boot.
// Taking them before LISTEN means the first replay covers rows inserted in between.
func (s *Supervisor) initWatermarks(ctx context.Context) error {
	s.mu.Lock()
	done := s.initialized
	s.mu.Unlock()
	if done {
		return nil
	}

	heads := make(map[Stream]int64, len(Streams))
	for _, stream := range Streams {
		id, err := s.loader.LatestID(ctx, stream)
		if err != nil {
			return err
		}
		heads[stream] = id
	}

	s.mu.Lock()
	for stream, id := range heads {
		s.cursors[stream].high = id
	}
	s.initialized = true
	s.mu.Unlock()

	s.logger.Info().Interface("watermarks", heads).Msg("Realtime watermarks initialized")
	return nil
}

func (s *Supervisor) onReady(ctx context.Context) error {
	replayed, err := s.replay(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.attempt = 0
	s.mu.Unlock()

	s.dispatcher.SetStatus(true)
	s.logger.Info().Int("replayed", replayed).Msg("Realtime listener connected")
	return nil
}

// replay delivers rows above each watermark, merged across streams in
// created_at order with row id breaking ties.
func (s *Supervisor) replay(ctx context.Context) (int, error) {
	var batch []Event
	for _, stream := range Streams {
		events, err := s.missed(ctx, stream)
		if err != nil {
			return 0, err
		}
		batch = append(batch, events...)
	}

	sort.SliceStable(batch, func(i, j int) bool {
		if !batch[i].CreatedAt.Equal(batch[j].CreatedAt) {
			return batch[i].CreatedAt.Before(batch[j].CreatedAt)
		}
		return batch[i].RowID < batch[j].RowID
	})

	replayed := 0
	for _, ev := range batch {
		if s.deliver(ev, "replayed") {
			replayed++
		}
	}
	return replayed, nil
}

// missed pages through every row above the stream's watermark.
func (s *Supervisor) missed(ctx context.Context, stream Stream) ([]Event, error) {
	var out []Event
	afterID := s.Watermark(stream)
	for {
		page, err := s.loader.Since(ctx, stream, afterID, s.replayLimit)
		if err != nil {
			return nil, err
		}
		out = append(out, page...)
		if len(page) < s.replayLimit {
			return out, nil
		}
		afterID = page[len(page)-1].RowID
	}
}

func (s *Supervisor) onRow(ctx context.Context, ref RowRef) {
	if !ref.Stream.Valid() {
		s.logger.Warn().Str("stream", string(ref.Stream)).Msg("Ignoring notification for unknown stream")
		return
	}
	if s.seen(ref.Stream, ref.ID) {
		metrics.RealtimeEvents.WithLabelValues(string(ref.Stream), "duplicate").Inc()
		return
	}

	ev, err := s.loader.Load(ctx, ref.Stream, ref.ID)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			metrics.RealtimeEvents.WithLabelValues(string(ref.Stream), "dropped").Inc()
			return
		}
		s.logger.Error().Err(err).Str("stream", string(ref.Stream)).Int64("id", ref.ID).Msg("Failed to load realtime row")
		metrics.RealtimeEvents.WithLabelValues(string(ref.Stream), "dropped").Inc()
		return
	}
	s.deliver(ev, "delivered")
}

func (s *Supervisor) seen(stream Stream, id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursors[stream].has(id)
}

// deliver records the row on its cursor and dispatches it unless it was
// already delivered.
func (s *Supervisor) deliver(ev Event, outcome string) bool {
	s.mu.Lock()
	c := s.cursors[ev.Stream]
	if c == nil || c.has(ev.RowID) {
		s.mu.Unlock()
		metrics.RealtimeEvents.WithLabelValues(string(ev.Stream), "duplicate").Inc()
		return false
	}
	c.add(ev.RowID)
	s.mu.Unlock()

	s.dispatcher.Dispatch(ev)
	metrics.RealtimeEvents.WithLabelValues(string(ev.Stream), outcome).Inc()
	return true
}

// cursor tracks the watermark of one stream plus recently delivered ids.
// Live notifications arrive in commit order, which may differ from id order,
// so duplicates are detected by id membership rather than by the watermark.
type cursor struct {
	high   int64
	recent []int64
	set    map[int64]struct{}
	next   int
}

func newCursor() *cursor {
	return &cursor{
		recent: make([]int64, 0, recentWindow),
		set:    make(map[int64]struct{}, recentWindow),
	}
}

func (c *cursor) has(id int64) bool {
	_, ok := c.set[id]
	return ok
}

func (c *cursor) add(id int64) {
	if len(c.recent) < recentWindow {
		c.recent = append(c.recent, id)
	} else {
		delete(c.set, c.recent[c.next])
		c.recent[c.next] = id
		c.next = (c.next + 1) % recentWindow
	}
	c.set[id] = struct{}{}
	if id > c.high {
		c.high = id
	}
}

func equalJitter(d time.Duration) time.Duration {
	if d <= 1 {
		return d
	}
	half := d / 2
	return half + time.Duration(rand.Int63n(int64(half)+1))
}

func sleepContext(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
