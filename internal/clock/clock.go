// Package clock provides the time source used for all "what week is it"
// decisions. Code that derives week numbers or statuses takes a Clock (or a
// time value read from one) instead of calling time.Now directly, so tests and
// the test-date setting can freeze or shift time.
package clock

import (
	"sync"
	"time"
)

// Clock provides the current time.
type Clock interface {
	Now() time.Time
}

// Real returns the wall-clock time.
type Real struct{}

// Now returns time.Now().
func (Real) Now() time.Time { return time.Now() }

// Fixed always returns T.
type Fixed struct {
	T time.Time
}

// Now returns the fixed time.
func (c Fixed) Now() time.Time { return c.T }

// Offset shifts another clock by a constant duration.
type Offset struct {
	Base  Clock
	Shift time.Duration
}

// Now returns Base.Now() shifted by Shift.
func (c Offset) Now() time.Time { return c.Base.Now().Add(c.Shift) }

// Override is a process-wide switchable clock. Without an override it
// delegates to its base clock; Set replaces the active source and Clear
// restores the base. The active source is read on every call.
type Override struct {
	mu     sync.RWMutex
	base   Clock
	active Clock
}

// NewOverride returns an Override delegating to base. A nil base means Real.
func NewOverride(base Clock) *Override {
	if base == nil {
		base = Real{}
	}
	return &Override{base: base}
}

// Now returns the overridden time if one is set, otherwise the base time.
func (o *Override) Now() time.Time {
	o.mu.RLock()
	c := o.active
	o.mu.RUnlock()
	if c == nil {
		return o.base.Now()
	}
	return c.Now()
}

// Base returns the clock used when no override is installed.
func (o *Override) Base() Clock {
	return o.base
}

// Set installs c as the active time source.
func (o *Override) Set(c Clock) {
	o.mu.Lock()
	o.active = c
	o.mu.Unlock()
}

// Clear removes any active override.
func (o *Override) Clear() {
	o.Set(nil)
}

// Active reports whether an override is installed.
func (o *Override) Active() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.active != nil
}

// AtDate returns a Clock pinned to the given calendar date while keeping the
// base clock's time of day. Useful for "pretend today is 2025-02-10".
func AtDate(base Clock, date time.Time) Clock {
	if base == nil {
		base = Real{}
	}
	y, m, d := date.Date()
	return dateClock{base: base, year: y, month: m, day: d}
}

type dateClock struct {
	base  Clock
	year  int
	month time.Month
	day   int
}

func (c dateClock) Now() time.Time {
	n := c.base.Now()
	return time.Date(c.year, c.month, c.day, n.Hour(), n.Minute(), n.Second(), n.Nanosecond(), n.Location())
}
