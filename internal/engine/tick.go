package engine

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"time"
)

// Engine drives a tick callback from a wall clock.
type Engine struct {
	Interval time.Duration       // Base tick interval (default 250ms)
	OnTick   func(delta float64) // Called once per tick with the interval in seconds

	mu    sync.Mutex
	speed float64 // Multiplier: 1.0 = real-time, 0 = paused
	tick  uint64
}

// NewEngine creates an engine with default settings.
func NewEngine() *Engine {
	return &Engine{
		Interval: 250 * time.Millisecond,
		speed:    1.0,
	}
}

// Speed returns the current speed multiplier.
func (e *Engine) Speed() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.speed
}

// SetSpeed changes the speed multiplier; values <= 0 pause the clock.
func (e *Engine) SetSpeed(speed float64) {
	if math.IsNaN(speed) {
		return
	}
	e.mu.Lock()
	e.speed = speed
	e.mu.Unlock()
}

// Tick returns the number of ticks run so far.
func (e *Engine) Tick() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tick
}

// Run ticks until ctx is cancelled.
func (e *Engine) Run(ctx context.Context) {
	slog.Info("tick engine started", "interval", e.Interval, "speed", e.Speed())
	defer func() { slog.Info("tick engine stopped", "tick", e.Tick()) }()

	for {
		speed := e.Speed()
		wait := 100 * time.Millisecond
		if speed > 0 {
			start := time.Now()
			e.Step()
			// Sleep for the remainder of the interval, adjusted for speed.
			target := time.Duration(float64(e.Interval) / speed)
			wait = target - time.Since(start)
		}

		timer := time.NewTimer(max(wait, 0))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// Step runs one tick immediately.
func (e *Engine) Step() {
	e.mu.Lock()
	e.tick++
	e.mu.Unlock()

	if e.OnTick != nil {
		e.OnTick(e.Interval.Seconds())
	}
}
