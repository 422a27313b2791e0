package service

import "time"

// DefaultCooldown is the minimum interval between two audit-worthy
// decisions for the same identity.
const DefaultCooldown = 5 * time.Second

// Cooldown suppresses repeat decisions for a key within a fixed window so a
// continuously visible face doesn't spam the audit log and the notification
// layer.
//
// Single-writer: the map is unguarded on purpose. A Cooldown belongs to one
// Recognizer, which is only ever driven by the one recognition loop; do not
// share it across goroutines.
type Cooldown struct {
	window time.Duration
	now    func() time.Time
	last   map[string]time.Time
}

// NewCooldown builds a Cooldown. Non-positive windows fall back to
// DefaultCooldown; a nil clock means time.Now.
func NewCooldown(window time.Duration, clock func() time.Time) *Cooldown {
	if window <= 0 {
		window = DefaultCooldown
	}
	if clock == nil {
		clock = time.Now
	}
	return &Cooldown{
		window: window,
		now:    clock,
		last:   make(map[string]time.Time),
	}
}

// Allow reports whether a decision for key is due: either the key has never
// produced one, or the last one is at least a full window old.
func (c *Cooldown) Allow(key string) bool {
	last, ok := c.last[key]
	if !ok {
		return true
	}
	return c.now().Sub(last) >= c.window
}

// Mark records a decision for key at the current time.
func (c *Cooldown) Mark(key string) {
	c.last[key] = c.now()
}
