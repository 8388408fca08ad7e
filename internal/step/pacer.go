package step

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"
)

// SuspendPoint names the places where a pass may block.
type SuspendPoint int

const (
	PointStep SuspendPoint = iota
	PointSwap
	PointFound
	// PointEnd is reported to observers when a pass finishes; nothing waits on it.
	PointEnd
)

func (p SuspendPoint) String() string {
	switch p {
	case PointStep:
		return "step"
	case PointSwap:
		return "swap"
	case PointFound:
		return "found"
	case PointEnd:
		return "end"
	}
	return fmt.Sprintf("point(%d)", int(p))
}

// Pacer blocks a pass at a suspension point.
type Pacer interface {
	Wait(ctx context.Context, p SuspendPoint) error
}

// Speed is a bounded pacing control. A higher value means a shorter delay:
// the delay is (Max + Min - Value) milliseconds. The value may be changed
// from another goroutine while a pass is running.
type Speed struct {
	min, max int64
	value    atomic.Int64
}

func NewSpeed(min, max, value int) (*Speed, error) {
	if min < 0 || max < min {
		return nil, fmt.Errorf("%w: min %d max %d", ErrInvalidSpeed, min, max)
	}
	s := &Speed{min: int64(min), max: int64(max)}
	s.Set(value)
	return s, nil
}

func (s *Speed) Min() int { return int(s.min) }

func (s *Speed) Max() int { return int(s.max) }

func (s *Speed) Value() int { return int(s.value.Load()) }

// Set clamps v into [Min, Max] and returns the stored value.
func (s *Speed) Set(v int) int {
	c := min(max(int64(v), s.min), s.max)
	s.value.Store(c)
	return int(c)
}

// Adjust moves the value by delta, clamped.
func (s *Speed) Adjust(delta int) int {
	for {
		old := s.value.Load()
		c := min(max(old+int64(delta), s.min), s.max)
		if s.value.CompareAndSwap(old, c) {
			return int(c)
		}
	}
}

func (s *Speed) Delay() time.Duration {
	return time.Duration(s.max+s.min-s.value.Load()) * time.Millisecond
}

const pausePoll = 50 * time.Millisecond

// Clock is the wall-clock Pacer. It reads the speed afresh at every
// suspension point and holds the pass while paused.
type Clock struct {
	speed  *Speed
	paused atomic.Bool
}

func NewClock(speed *Speed) *Clock {
	return &Clock{speed: speed}
}

func (c *Clock) Speed() *Speed { return c.speed }

func (c *Clock) Paused() bool { return c.paused.Load() }

func (c *Clock) SetPaused(p bool) { c.paused.Store(p) }

// TogglePause flips the pause state and returns the new one.
func (c *Clock) TogglePause() bool {
	for {
		old := c.paused.Load()
		if c.paused.CompareAndSwap(old, !old) {
			return !old
		}
	}
}

func (c *Clock) Wait(ctx context.Context, _ SuspendPoint) error {
	for c.paused.Load() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pausePoll):
		}
	}

	d := c.speed.Delay()
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Instant never blocks; it only reports cancellation.
type Instant struct{}

func (Instant) Wait(ctx context.Context, _ SuspendPoint) error { return ctx.Err() }
