package workout

// RestTimer counts down the rest between sets. It is driven by an external
// one-second tick and is not safe for concurrent use.
type RestTimer struct {
	active    bool
	remaining int
	total     int
}

// Start begins a countdown of total seconds. A zero or negative total leaves
// the timer inactive.
func (t *RestTimer) Start(total int) {
	if total <= 0 {
		t.active = false
		t.remaining = 0
		t.total = 0
		return
	}
	t.active = true
	t.remaining = total
	t.total = total
}

// Tick advances the countdown by one second and reports whether this tick
// ended the rest. Inactive timers ignore ticks.
func (t *RestTimer) Tick() bool {
	if !t.active {
		return false
	}
	if t.remaining <= 1 {
		t.remaining = 0
		t.active = false
		return true
	}
	t.remaining--
	return false
}

// Dismiss ends the rest immediately.
func (t *RestTimer) Dismiss() {
	t.active = false
}

// Active reports whether a countdown is running.
func (t *RestTimer) Active() bool { return t.active }

// Remaining returns the seconds left.
func (t *RestTimer) Remaining() int { return t.remaining }

// Total returns the length of the current or last countdown.
func (t *RestTimer) Total() int { return t.total }

// Progress is remaining/total, or 0 when there is no countdown length.
func (t *RestTimer) Progress() float64 {
	if t.total <= 0 {
		return 0
	}
	return float64(t.remaining) / float64(t.total)
}
