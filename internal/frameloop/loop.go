// Package frameloop drives the callback registry once per host frame.
//
// Each frame runs zero or more FixedUpdate passes paid for by a
// fixed-timestep accumulator, then Update, then LateUpdate, then DebugDraw
// when development mode is on. The loop is the host's top-level handler for
// callback panics: it recovers them and returns a *CallbackPanicError.
package frameloop

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync/atomic"
	"time"

	"github.com/specialistvlad/tickgrid/internal/phase"
)

// Dispatcher is the part of the registry the loop drives.
type Dispatcher interface {
	Dispatch(p phase.Phase) int
}

// Config holds the loop timing.
type Config struct {
	// TickRate is the wall-clock interval between frames in Run.
	TickRate time.Duration
	// FixedStep is the simulated time consumed by one FixedUpdate pass.
	FixedStep time.Duration
	// MaxFixedSteps caps FixedUpdate passes per frame. Time still owed
	// after the cap is dropped.
	MaxFixedSteps int
	// DevMode enables the DebugDraw phase.
	DevMode bool
}

// DefaultConfig returns 60 frames per second with a 50 Hz fixed step.
func DefaultConfig() Config {
	return Config{
		TickRate:      time.Second / 60,
		FixedStep:     20 * time.Millisecond,
		MaxFixedSteps: 5,
	}
}

// CallbackPanicError reports a panic raised by a dispatched callback.
type CallbackPanicError struct {
	Phase phase.Phase
	Frame uint64
	Value any
	Stack []byte
}

func (e *CallbackPanicError) Error() string {
	return fmt.Sprintf("callback panicked during %s of frame %d: %v", e.Phase, e.Frame, e.Value)
}

// Unwrap exposes the panic value when it is an error.
func (e *CallbackPanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// Stats is a point-in-time view of the loop counters.
type Stats struct {
	Frames     uint64
	FixedSteps uint64
	Invoked    uint64
}

// Loop runs frames against a Dispatcher. Step and Run must be called from a
// single goroutine; Stats may be read from any goroutine.
type Loop struct {
	dispatcher Dispatcher
	cfg        Config
	logger     *slog.Logger

	accumulator time.Duration

	frames     atomic.Uint64
	fixedSteps atomic.Uint64
	invoked    atomic.Uint64
}

// New creates a Loop. A non-positive FixedStep or MaxFixedSteps is a
// configuration bug and panics.
func New(d Dispatcher, cfg Config, logger *slog.Logger) *Loop {
	if d == nil {
		panic("frameloop: dispatcher must not be nil")
	}
	if cfg.FixedStep <= 0 || cfg.MaxFixedSteps <= 0 {
		panic(fmt.Sprintf("frameloop: invalid fixed step config (step=%s, max=%d)", cfg.FixedStep, cfg.MaxFixedSteps))
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Loop{dispatcher: d, cfg: cfg, logger: logger}
}

// Config returns the loop timing.
func (l *Loop) Config() Config { return l.cfg }

// Stats returns the current counters.
func (l *Loop) Stats() Stats {
	return Stats{
		Frames:     l.frames.Load(),
		FixedSteps: l.fixedSteps.Load(),
		Invoked:    l.invoked.Load(),
	}
}

// Step runs one frame that advanced simulated time by dt. A frame whose
// callback panicked is not counted.
func (l *Loop) Step(dt time.Duration) (err error) {
	frame := l.frames.Load() + 1
	current := phase.FixedUpdate
	defer func() {
		if r := recover(); r != nil {
			err = &CallbackPanicError{Phase: current, Frame: frame, Value: r, Stack: debug.Stack()}
		}
	}()

	if dt > 0 {
		l.accumulator += dt
	}
	steps := 0
	for l.accumulator >= l.cfg.FixedStep && steps < l.cfg.MaxFixedSteps {
		l.invoked.Add(uint64(l.dispatcher.Dispatch(phase.FixedUpdate)))
		l.accumulator -= l.cfg.FixedStep
		l.fixedSteps.Add(1)
		steps++
	}
	if l.accumulator >= l.cfg.FixedStep {
		l.logger.Warn("Fixed-step budget exhausted; dropping owed simulation time.",
			"frame", frame, "steps", steps, "dropped", l.accumulator)
		l.accumulator = 0
	}

	current = phase.Update
	l.invoked.Add(uint64(l.dispatcher.Dispatch(phase.Update)))
	current = phase.LateUpdate
	l.invoked.Add(uint64(l.dispatcher.Dispatch(phase.LateUpdate)))
	if l.cfg.DevMode {
		current = phase.DebugDraw
		l.invoked.Add(uint64(l.dispatcher.Dispatch(phase.DebugDraw)))
	}

	l.frames.Add(1)
	return nil
}

// Run steps the loop every TickRate until frames frames have run, ctx is
// done, or a callback panics. frames <= 0 runs until ctx is done. The time
// between ticks is fed to Step as dt.
func (l *Loop) Run(ctx context.Context, frames int) error {
	if l.cfg.TickRate <= 0 {
		return fmt.Errorf("frameloop: tick rate must be positive, got %s", l.cfg.TickRate)
	}
	ticker := time.NewTicker(l.cfg.TickRate)
	defer ticker.Stop()

	l.logger.Debug("Frame loop started.", "frames", frames, "tick_rate", l.cfg.TickRate, "fixed_step", l.cfg.FixedStep, "dev", l.cfg.DevMode)
	last := time.Now()
	for ran := 0; frames <= 0 || ran < frames; ran++ {
		select {
		case <-ctx.Done():
			l.logger.Debug("Frame loop stopped by context.", "ran", ran)
			return ctx.Err()
		case now := <-ticker.C:
			dt := now.Sub(last)
			last = now
			if err := l.Step(dt); err != nil {
				return err
			}
		}
	}
	l.logger.Debug("Frame loop finished.", "frames", frames)
	return nil
}
