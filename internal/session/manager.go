// Package session runs live workout sessions. Each session is owned by one
// goroutine that applies commands and rest-timer ticks to its runtime in
// order; nothing else touches the runtime.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/claude/reprx/internal/metrics"
	"github.com/claude/reprx/internal/models"
	"github.com/claude/reprx/internal/workout"
	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned for unknown or already finished sessions.
	ErrNotFound = errors.New("session not found")

	// ErrAlreadyActive is returned by Start while another session is running.
	ErrAlreadyActive = errors.New("a session is already active")

	// ErrClosed is returned once the manager has shut down.
	ErrClosed = errors.New("session manager closed")
)

const finishTimeout = 30 * time.Second

// Store loads plans and records session lifecycle rows.
type Store interface {
	LoadPlan(ctx context.Context, templateID uuid.UUID) (workout.Plan, error)
	GetPriorBests(ctx context.Context, slugs []string) (map[string]float64, error)
	CreateSession(ctx context.Context, s models.SessionRow) error
	AbandonSession(ctx context.Context, id uuid.UUID, at time.Time) error
}

// Finisher receives every completed session.
type Finisher interface {
	Finish(ctx context.Context, r Result) error
}

// Result is a completed session handed to the Finisher.
type Result struct {
	SessionID  uuid.UUID
	TemplateID uuid.UUID
	StartedAt  time.Time
	EndedAt    time.Time
	Plan       workout.Plan
	Log        []workout.SetLogEntry
}

// Snapshot is the externally visible state of a running session.
type Snapshot struct {
	ID         uuid.UUID       `json:"id"`
	TemplateID uuid.UUID       `json:"template_id"`
	StartedAt  time.Time       `json:"started_at"`
	Plan       workout.Plan    `json:"plan"`
	State      workout.State   `json:"state"`
	Target     *workout.Target `json:"target,omitempty"`
}

// Options configures a Manager. Store and Metrics are required.
type Options struct {
	Store        Store
	Finisher     Finisher
	Ticks        TickSource
	TickInterval time.Duration
	Metrics      *metrics.Manager
	Log          *slog.Logger
	Now          func() time.Time
}

// Manager owns the live sessions.
type Manager struct {
	store    Store
	finisher Finisher
	ticks    TickSource
	interval time.Duration
	metrics  *metrics.Manager
	log      *slog.Logger
	now      func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	sessions map[uuid.UUID]*actor
	closed   bool
}

// NewManager creates a Manager. Call Shutdown to stop every session.
func NewManager(opts Options) *Manager {
	if opts.Ticks == nil {
		opts.Ticks = ClockTicks{}
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = time.Second
	}
	if opts.Log == nil {
		opts.Log = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		store:    opts.Store,
		finisher: opts.Finisher,
		ticks:    opts.Ticks,
		interval: opts.TickInterval,
		metrics:  opts.Metrics,
		log:      opts.Log,
		now:      opts.Now,
		ctx:      ctx,
		cancel:   cancel,
		sessions: make(map[uuid.UUID]*actor),
	}
}

// Start loads the template's plan and begins a session.
func (m *Manager) Start(ctx context.Context, templateID uuid.UUID) (Snapshot, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return Snapshot{}, ErrClosed
	}
	if len(m.sessions) > 0 {
		m.mu.Unlock()
		return Snapshot{}, ErrAlreadyActive
	}
	m.mu.Unlock()

	plan, err := m.store.LoadPlan(ctx, templateID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("loading plan: %w", err)
	}

	slugs := make([]string, 0, len(plan))
	for _, ex := range plan {
		slugs = append(slugs, ex.ExerciseID)
	}
	bests, err := m.store.GetPriorBests(ctx, slugs)
	if err != nil {
		m.log.Warn("prior bests unavailable, records disabled for session", "error", err)
		bests = nil
	}

	a := newActor(uuid.New(), templateID, m.now())
	rt, err := workout.Start(plan,
		workout.WithPriorBests(bests),
		workout.WithObserver(func(e workout.Event) { m.observe(a, e) }),
		workout.WithClock(m.now),
	)
	if err != nil {
		return Snapshot{}, fmt.Errorf("starting session: %w", err)
	}

	if err := m.store.CreateSession(ctx, models.SessionRow{
		ID:         a.id,
		TemplateID: &templateID,
		StartedAt:  a.startedAt,
	}); err != nil {
		return Snapshot{}, fmt.Errorf("recording session: %w", err)
	}

	m.mu.Lock()
	if m.closed || len(m.sessions) > 0 {
		m.mu.Unlock()
		if err := m.store.AbandonSession(ctx, a.id, m.now()); err != nil {
			m.log.Warn("failed to abandon raced session", "session", a.id, "error", err)
		}
		if m.closed {
			return Snapshot{}, ErrClosed
		}
		return Snapshot{}, ErrAlreadyActive
	}
	m.sessions[a.id] = a
	snap := a.snapshot(rt)
	m.wg.Add(1)
	m.mu.Unlock()

	m.metrics.CounterSessions.WithLabelValues(metrics.OutcomeStarted).Inc()
	m.metrics.GaugeActiveSessions.Inc()
	m.log.Info("session started", "session", a.id, "template", templateID, "exercises", len(plan))

	go m.run(a, rt)
	return snap, nil
}

// Active returns the running session's ID, if any.
func (m *Manager) Active() (uuid.UUID, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id := range m.sessions {
		return id, true
	}
	return uuid.Nil, false
}

// LogSet records a set on the current exercise.
func (m *Manager) LogSet(ctx context.Context, id uuid.UUID, weightKg float64, reps int) (workout.SetLogEntry, Snapshot, error) {
	var entry workout.SetLogEntry
	snap, err := m.do(ctx, id, true, func(rt *workout.Runtime) error {
		var err error
		entry, err = rt.LogSet(weightKg, reps)
		return err
	})
	return entry, snap, err
}

// DismissRest ends the current rest early.
func (m *Manager) DismissRest(ctx context.Context, id uuid.UUID) (Snapshot, error) {
	return m.do(ctx, id, false, func(rt *workout.Runtime) error {
		rt.DismissRest()
		return nil
	})
}

// Advance moves to the next exercise. It reports true when the session
// completed; the session is then handed to the Finisher and no longer found.
func (m *Manager) Advance(ctx context.Context, id uuid.UUID) (bool, Snapshot, error) {
	var completed bool
	snap, err := m.do(ctx, id, false, func(rt *workout.Runtime) error {
		var err error
		completed, err = rt.Advance()
		return err
	})
	return completed, snap, err
}

// Snapshot returns the session's current state.
func (m *Manager) Snapshot(ctx context.Context, id uuid.UUID) (Snapshot, error) {
	return m.do(ctx, id, false, func(*workout.Runtime) error { return nil })
}

// Abandon stops a session without logging it.
func (m *Manager) Abandon(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	a, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()
	if !ok {
		return ErrNotFound
	}

	a.stop()
	select {
	case <-a.done:
	case <-ctx.Done():
		return ctx.Err()
	}

	m.metrics.CounterSessions.WithLabelValues(metrics.OutcomeAbandoned).Inc()
	m.metrics.GaugeActiveSessions.Dec()
	m.log.Info("session abandoned", "session", id)

	if err := m.store.AbandonSession(ctx, id, m.now()); err != nil {
		return fmt.Errorf("recording abandon: %w", err)
	}
	return nil
}

// Subscribe streams the session's events. The channel is closed when the
// session ends or when the subscriber falls too far behind; call the
// returned func to stop listening earlier.
func (m *Manager) Subscribe(id uuid.UUID) (<-chan workout.Event, func(), error) {
	a, err := m.get(id)
	if err != nil {
		return nil, nil, err
	}
	ch, ok := a.subscribe()
	if !ok {
		return nil, nil, ErrNotFound
	}
	return ch, func() { a.unsubscribe(ch) }, nil
}

// Shutdown stops every session and waits for running finishers. Sessions in
// progress are left in_progress in the store.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	m.closed = true
	stopped := len(m.sessions)
	m.sessions = make(map[uuid.UUID]*actor)
	m.mu.Unlock()

	m.metrics.GaugeActiveSessions.Sub(float64(stopped))

	m.cancel()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Manager) get(id uuid.UUID) (*actor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}
	a, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return a, nil
}

// do runs fn on the session's goroutine and returns the state after it.
func (m *Manager) do(ctx context.Context, id uuid.UUID, restartsRest bool, fn func(*workout.Runtime) error) (Snapshot, error) {
	a, err := m.get(id)
	if err != nil {
		return Snapshot{}, err
	}

	cmd := command{fn: fn, restartsRest: restartsRest, reply: make(chan reply, 1)}
	select {
	case a.cmds <- cmd:
	case <-a.done:
		return Snapshot{}, ErrNotFound
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}

	select {
	case r := <-cmd.reply:
		return r.snap, r.err
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
}

func (m *Manager) observe(a *actor, e workout.Event) {
	if e.Type == workout.EventSetLogged && e.Entry != nil {
		m.metrics.CounterSetsLogged.Inc()
		if e.Entry.IsPersonalRecord {
			m.metrics.CounterPersonalRecords.Inc()
		}
	}
	if n := a.broadcast(e); n > 0 {
		m.log.Debug("dropped lagging subscribers", "session", a.id, "event", e.Type, "count", n)
	}
}

// run is the session goroutine. Every exit path stops the tick subscription
// and closes subscriber channels.
func (m *Manager) run(a *actor, rt *workout.Runtime) {
	defer m.wg.Done()
	defer a.finish()

	var sub Subscription
	var tickC <-chan time.Time
	stopTicks := func() {
		if sub != nil {
			sub.Stop()
			sub = nil
			tickC = nil
		}
	}
	defer stopTicks()

	syncTicks := func(restart bool) {
		if !rt.RestActive() {
			stopTicks()
			return
		}
		if restart {
			stopTicks()
		}
		if sub == nil {
			sub = m.ticks.Subscribe(m.interval)
			tickC = sub.C()
		}
	}

	for {
		select {
		case cmd := <-a.cmds:
			err := cmd.fn(rt)
			syncTicks(cmd.restartsRest && err == nil)
			cmd.reply <- reply{snap: a.snapshot(rt), err: err}
			if rt.Complete() {
				m.complete(a, rt)
				return
			}
		case <-tickC:
			rt.Tick()
			syncTicks(false)
		case <-a.quit:
			return
		case <-m.ctx.Done():
			return
		}
	}
}

// complete unregisters a finished session and hands it to the Finisher.
func (m *Manager) complete(a *actor, rt *workout.Runtime) {
	m.mu.Lock()
	_, owned := m.sessions[a.id]
	delete(m.sessions, a.id)
	m.mu.Unlock()
	if !owned {
		// Abandoned or shut down while the final command was in flight.
		return
	}

	m.metrics.CounterSessions.WithLabelValues(metrics.OutcomeCompleted).Inc()
	m.metrics.GaugeActiveSessions.Dec()

	res := Result{
		SessionID:  a.id,
		TemplateID: a.templateID,
		StartedAt:  a.startedAt,
		EndedAt:    m.now(),
		Plan:       rt.Plan(),
		Log:        rt.Log(),
	}
	m.log.Info("session completed", "session", a.id, "sets", len(res.Log))

	if m.finisher == nil {
		return
	}
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), finishTimeout)
		defer cancel()
		if err := m.finisher.Finish(ctx, res); err != nil {
			m.log.Error("session finish failed", "session", res.SessionID, "error", err)
		}
	}()
}
