package session

import "time"

// TickSource hands out periodic tick subscriptions.
type TickSource interface {
	Subscribe(interval time.Duration) Subscription
}

// Subscription delivers ticks on C until Stop is called. After Stop no
// further ticks are delivered.
type Subscription interface {
	C() <-chan time.Time
	Stop()
}

// ClockTicks is the wall-clock TickSource backed by time.Ticker.
type ClockTicks struct{}

// Subscribe starts a ticker firing every interval.
func (ClockTicks) Subscribe(interval time.Duration) Subscription {
	return &tickerSubscription{t: time.NewTicker(interval)}
}

type tickerSubscription struct {
	t *time.Ticker
}

func (s *tickerSubscription) C() <-chan time.Time { return s.t.C }
func (s *tickerSubscription) Stop()               { s.t.Stop() }
