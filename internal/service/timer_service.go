package service

import (
	"context"
	"sync"
	"time"

	apperrors "studytimer/backend/internal/errors"
	"studytimer/backend/internal/model"
	"studytimer/backend/internal/reporter"
	"studytimer/backend/internal/timer"
)

// TimerService hosts one in-memory timer engine per signed-in user.
// Engines are created lazily on the first timer request, released when
// the client unmounts the timer view, and never persisted: after a
// restart every user is back at a fresh focus countdown.
//
// The engine itself is single-caller; the per-user mutex here is what
// serializes concurrent HTTP requests onto it.
type TimerService struct {
	mu     sync.Mutex
	timers map[string]*userTimer

	durations timer.Durations
	clock     timer.Clock
	reporter  *reporter.Reporter
}

type userTimer struct {
	mu        sync.Mutex
	engine    *timer.Engine
	taskLabel string
}

func NewTimerService(durations timer.Durations, clock timer.Clock, r *reporter.Reporter) *TimerService {
	if clock == nil {
		clock = time.Now
	}
	if durations.FocusSeconds <= 0 {
		durations.FocusSeconds = model.DefaultFocusDurationSeconds
	}
	if durations.ShortBreakSeconds <= 0 {
		durations.ShortBreakSeconds = model.DefaultShortBreakDurationSeconds
	}
	if durations.LongBreakSeconds <= 0 {
		durations.LongBreakSeconds = model.DefaultLongBreakDurationSeconds
	}
	return &TimerService{
		timers:    make(map[string]*userTimer),
		durations: durations,
		clock:     clock,
		reporter:  r,
	}
}

// TimerStateView is the JSON shape of the timer returned to the UI.
type TimerStateView struct {
	Mode                string     `json:"mode"`
	RemainingSeconds    int        `json:"remainingSeconds"`
	Running             bool       `json:"running"`
	TargetEnd           *time.Time `json:"targetEnd,omitempty"`
	CompletedFocusCount int        `json:"completedFocusCount"`
	TaskLabel           string     `json:"taskLabel,omitempty"`

	FocusDurationSeconds      int `json:"focusDurationSeconds"`
	ShortBreakDurationSeconds int `json:"shortBreakDurationSeconds"`
	LongBreakDurationSeconds  int `json:"longBreakDurationSeconds"`

	ServerTime time.Time `json:"serverTime"`
}

// State recomputes the countdown from the wall clock and returns a
// snapshot. The UI calls this on every poll and on regaining
// foreground visibility, so time lost while backgrounded is reconciled
// here, including any expiry that happened in between.
func (s *TimerService) State(userID string) *TimerStateView {
	ut := s.timerFor(userID)
	ut.mu.Lock()
	defer ut.mu.Unlock()

	ut.engine.Observe()
	return s.view(ut)
}

func (s *TimerService) Start(userID string) *TimerStateView {
	ut := s.timerFor(userID)
	ut.mu.Lock()
	defer ut.mu.Unlock()

	ut.engine.Start()
	return s.view(ut)
}

func (s *TimerService) Pause(userID string) *TimerStateView {
	ut := s.timerFor(userID)
	ut.mu.Lock()
	defer ut.mu.Unlock()

	ut.engine.Pause()
	return s.view(ut)
}

func (s *TimerService) Reset(userID string) *TimerStateView {
	ut := s.timerFor(userID)
	ut.mu.Lock()
	defer ut.mu.Unlock()

	ut.engine.Reset()
	return s.view(ut)
}

func (s *TimerService) Skip(userID string) *TimerStateView {
	ut := s.timerFor(userID)
	ut.mu.Lock()
	defer ut.mu.Unlock()

	ut.engine.Skip()
	return s.view(ut)
}

func (s *TimerService) SwitchMode(userID, mode string) (*TimerStateView, *apperrors.APIError) {
	if !model.ValidMode(mode) {
		return nil, apperrors.BadRequest("invalid_mode", "mode must be one of focus, short_break, long_break")
	}

	ut := s.timerFor(userID)
	ut.mu.Lock()
	defer ut.mu.Unlock()

	ut.engine.ChangeMode(mode)
	return s.view(ut), nil
}

// SetTask records the task label attached to subsequent focus
// completions. The label rides along on session records only; it does
// not affect the countdown.
func (s *TimerService) SetTask(userID, label string) *TimerStateView {
	ut := s.timerFor(userID)
	ut.mu.Lock()
	defer ut.mu.Unlock()

	ut.taskLabel = label
	ut.engine.Observe()
	return s.view(ut)
}

// Release drops the user's engine, matching the timer view unmounting.
// In-flight countdown state is intentionally lost.
func (s *TimerService) Release(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.timers, userID)
}

func (s *TimerService) timerFor(userID string) *userTimer {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ut, ok := s.timers[userID]; ok {
		return ut
	}

	ut := &userTimer{}
	ut.engine = timer.New(s.durations, s.clock, func(c timer.Completion) {
		// Persisting the record is fire and forget: the engine never
		// waits on the write and a failure never touches timer state.
		label := ut.taskLabel
		ctx := reporter.WithOwner(context.Background(), userID)
		go s.reporter.Report(ctx, c, label)
	})
	s.timers[userID] = ut
	return ut
}

func (s *TimerService) view(ut *userTimer) *TimerStateView {
	snap := ut.engine.Snapshot()
	return &TimerStateView{
		Mode:                snap.Mode,
		RemainingSeconds:    snap.RemainingSeconds,
		Running:             snap.Running,
		TargetEnd:           snap.TargetEnd,
		CompletedFocusCount: snap.CompletedFocusCount,
		TaskLabel:           ut.taskLabel,

		FocusDurationSeconds:      s.durations.FocusSeconds,
		ShortBreakDurationSeconds: s.durations.ShortBreakSeconds,
		LongBreakDurationSeconds:  s.durations.LongBreakSeconds,

		ServerTime: s.clock().UTC(),
	}
}
