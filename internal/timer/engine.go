// Package timer holds the countdown state machine driving the study
// timer. The engine derives the remaining time from an absolute target
// instant on every observation instead of decrementing a counter per
// tick, so a host whose callbacks were delayed or suspended catches up
// on the next call.
package timer

import (
	"time"

	"studytimer/backend/internal/model"
)

// Clock supplies the current time. Tests inject a fake; a nil Clock
// means time.Now.
type Clock func() time.Time

// Durations are the nominal lengths of each mode in seconds.
type Durations struct {
	FocusSeconds      int
	ShortBreakSeconds int
	LongBreakSeconds  int
}

func DefaultDurations() Durations {
	return Durations{
		FocusSeconds:      model.DefaultFocusDurationSeconds,
		ShortBreakSeconds: model.DefaultShortBreakDurationSeconds,
		LongBreakSeconds:  model.DefaultLongBreakDurationSeconds,
	}
}

// Completion is emitted exactly once per focus interval that ends,
// whether by natural expiry or a manual skip. DurationSeconds is the
// nominal focus length: a skipped interval still counts as a full
// completed session.
type Completion struct {
	Mode            string
	DurationSeconds int
	CompletedAt     time.Time
}

// Engine is the per-session timer core. It is not safe for concurrent
// use; the host serializes all commands and observations.
type Engine struct {
	durations  Durations
	clock      Clock
	onComplete func(Completion)

	mode             string
	remainingSeconds int
	running          bool
	targetEnd        *time.Time
	completedFocus   int
}

// New returns an engine in focus mode, full countdown, not running.
// onComplete may be nil when nobody consumes completions.
func New(durations Durations, clock Clock, onComplete func(Completion)) *Engine {
	if durations.FocusSeconds <= 0 {
		durations.FocusSeconds = model.DefaultFocusDurationSeconds
	}
	if durations.ShortBreakSeconds <= 0 {
		durations.ShortBreakSeconds = model.DefaultShortBreakDurationSeconds
	}
	if durations.LongBreakSeconds <= 0 {
		durations.LongBreakSeconds = model.DefaultLongBreakDurationSeconds
	}
	if clock == nil {
		clock = time.Now
	}
	return &Engine{
		durations:        durations,
		clock:            clock,
		onComplete:       onComplete,
		mode:             model.ModeFocus,
		remainingSeconds: durations.FocusSeconds,
	}
}

// ComputeRemaining returns the whole seconds left until target, rounded
// up and clamped at zero. It is the only place elapsed time is turned
// into a countdown value.
func ComputeRemaining(target, now time.Time) int {
	left := target.Sub(now)
	if left <= 0 {
		return 0
	}
	seconds := int(left / time.Second)
	if left%time.Second != 0 {
		seconds++
	}
	return seconds
}

// Observe recomputes the countdown from the wall clock. It is
// idempotent and may be called at any frequency; the first call at or
// past the target processes expiry exactly once.
func (e *Engine) Observe() {
	if !e.running || e.targetEnd == nil {
		return
	}
	now := e.clock()
	remaining := ComputeRemaining(*e.targetEnd, now)
	if limit := e.durationFor(e.mode); remaining > limit {
		remaining = limit
	}
	e.remainingSeconds = remaining
	if remaining > 0 {
		return
	}
	// Clear running before advancing so a reentrant observation cannot
	// emit a second completion.
	e.running = false
	e.targetEnd = nil
	e.advance(now)
}

// Start begins or resumes the countdown. A no-op while running.
func (e *Engine) Start() {
	e.Observe()
	if e.running {
		return
	}
	now := e.clock()
	target := now.Add(time.Duration(e.remainingSeconds) * time.Second)
	e.targetEnd = &target
	e.running = true
}

// Pause freezes the countdown at its current value. A no-op while
// already paused.
func (e *Engine) Pause() {
	e.Observe()
	if !e.running {
		return
	}
	e.remainingSeconds = ComputeRemaining(*e.targetEnd, e.clock())
	e.targetEnd = nil
	e.running = false
}

// Reset restores the current mode's full duration, stopped.
func (e *Engine) Reset() {
	e.Observe()
	e.running = false
	e.targetEnd = nil
	e.remainingSeconds = e.durationFor(e.mode)
}

// ChangeMode switches to the given mode, stopped, full duration. A
// manual switch never emits a completion and never counts toward the
// long-break cadence. Unknown modes are ignored.
func (e *Engine) ChangeMode(mode string) {
	if !model.ValidMode(mode) {
		return
	}
	e.Observe()
	e.running = false
	e.targetEnd = nil
	e.mode = mode
	e.remainingSeconds = e.durationFor(mode)
}

// Skip ends the current interval immediately, with the same effect as
// natural expiry: a focus interval counts as completed and emits.
func (e *Engine) Skip() {
	now := e.clock()
	e.running = false
	e.targetEnd = nil
	e.advance(now)
}

// advance applies the end-of-interval transition. Callers must have
// stopped the countdown first.
func (e *Engine) advance(at time.Time) {
	if e.mode == model.ModeFocus {
		e.completedFocus++
		if e.onComplete != nil {
			e.onComplete(Completion{
				Mode:            model.ModeFocus,
				DurationSeconds: e.durations.FocusSeconds,
				CompletedAt:     at,
			})
		}
		if e.completedFocus%4 == 0 {
			e.mode = model.ModeLongBreak
		} else {
			e.mode = model.ModeShortBreak
		}
	} else {
		e.mode = model.ModeFocus
	}
	e.remainingSeconds = e.durationFor(e.mode)
}

func (e *Engine) durationFor(mode string) int {
	switch mode {
	case model.ModeShortBreak:
		return e.durations.ShortBreakSeconds
	case model.ModeLongBreak:
		return e.durations.LongBreakSeconds
	default:
		return e.durations.FocusSeconds
	}
}

// Snapshot is a read-only view of the engine state.
type Snapshot struct {
	Mode                string
	RemainingSeconds    int
	Running             bool
	TargetEnd           *time.Time
	CompletedFocusCount int
}

// Snapshot returns the current state. It does not recompute; call
// Observe first when a fresh countdown value is needed.
func (e *Engine) Snapshot() Snapshot {
	var target *time.Time
	if e.targetEnd != nil {
		copied := *e.targetEnd
		target = &copied
	}
	return Snapshot{
		Mode:                e.mode,
		RemainingSeconds:    e.remainingSeconds,
		Running:             e.running,
		TargetEnd:           target,
		CompletedFocusCount: e.completedFocus,
	}
}
