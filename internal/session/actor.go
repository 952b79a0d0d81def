package session

import (
	"sync"
	"time"

	"github.com/claude/reprx/internal/workout"
	"github.com/google/uuid"
)

type command struct {
	fn           func(*workout.Runtime) error
	restartsRest bool
	reply        chan reply
}

type reply struct {
	snap Snapshot
	err  error
}

// actor is the per-session mailbox and subscriber list. The runtime itself
// lives only on the run goroutine.
type actor struct {
	id         uuid.UUID
	templateID uuid.UUID
	startedAt  time.Time

	cmds     chan command
	quit     chan struct{}
	quitOnce sync.Once
	done     chan struct{}

	subsMu sync.Mutex
	subs   map[chan workout.Event]struct{}
	ended  bool
}

func newActor(id, templateID uuid.UUID, startedAt time.Time) *actor {
	return &actor{
		id:         id,
		templateID: templateID,
		startedAt:  startedAt,
		cmds:       make(chan command),
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
		subs:       make(map[chan workout.Event]struct{}),
	}
}

func (a *actor) snapshot(rt *workout.Runtime) Snapshot {
	s := Snapshot{
		ID:         a.id,
		TemplateID: a.templateID,
		StartedAt:  a.startedAt,
		Plan:       rt.Plan(),
		State:      rt.State(),
	}
	if t, ok := rt.CurrentTarget(); ok {
		s.Target = &t
	}
	return s
}

func (a *actor) stop() {
	a.quitOnce.Do(func() { close(a.quit) })
}

// finish closes done and every subscriber channel. Called once by run.
func (a *actor) finish() {
	a.subsMu.Lock()
	a.ended = true
	for ch := range a.subs {
		close(ch)
	}
	a.subs = nil
	a.subsMu.Unlock()
	close(a.done)
}

// subscriberBuffer is how many events a subscriber may fall behind before it
// is dropped.
const subscriberBuffer = 32

// broadcast delivers e to every subscriber. A subscriber whose buffer is full
// has missed an event, so its channel is closed and removed; it can
// resubscribe and re-read the snapshot. It returns how many were dropped.
func (a *actor) broadcast(e workout.Event) int {
	a.subsMu.Lock()
	defer a.subsMu.Unlock()
	dropped := 0
	for ch := range a.subs {
		select {
		case ch <- e:
		default:
			delete(a.subs, ch)
			close(ch)
			dropped++
		}
	}
	return dropped
}

func (a *actor) subscribe() (chan workout.Event, bool) {
	a.subsMu.Lock()
	defer a.subsMu.Unlock()
	if a.ended {
		return nil, false
	}
	ch := make(chan workout.Event, subscriberBuffer)
	a.subs[ch] = struct{}{}
	return ch, true
}

func (a *actor) unsubscribe(ch chan workout.Event) {
	a.subsMu.Lock()
	defer a.subsMu.Unlock()
	if _, ok := a.subs[ch]; ok {
		delete(a.subs, ch)
		close(ch)
	}
}
