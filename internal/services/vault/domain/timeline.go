package domain

import (
	"strconv"
	"time"

	apperrors "github.com/ANISH-SR/StreamVault/internal/errors"
)

// MaxPauseResumeActions caps the combined number of pause and resume actions
// per sprint. Six actions allow three completed pause/resume cycles; the
// fourth pause attempt after three full cycles is rejected.
const MaxPauseResumeActions = 6

// Timeline tracks the pause-aware clock of a sprint. Paused intervals extend
// the effective end of the sprint and are excluded from active elapsed time.
type Timeline struct {
	StartTime           time.Time
	EndTime             time.Time
	IsPaused            bool
	PauseTime           time.Time // zero unless paused
	TotalPausedDuration time.Duration
	PauseResumeCount    uint8
}

// Duration returns the scheduled sprint duration, excluding pauses.
func (t Timeline) Duration() time.Duration {
	return t.EndTime.Sub(t.StartTime)
}

// EffectiveEnd returns the wall-clock instant at which the sprint completes,
// shifted by all accumulated paused time.
func (t Timeline) EffectiveEnd() time.Time {
	return t.EndTime.Add(t.TotalPausedDuration)
}

// ActiveElapsed returns wall-clock time since start excluding paused
// intervals, clamped to [0, Duration]. While paused the clock is frozen at
// the pause instant.
func (t Timeline) ActiveElapsed(now time.Time) time.Duration {
	if now.Before(t.StartTime) {
		return 0
	}

	effective := now
	if t.IsPaused {
		effective = t.PauseTime
	}
	if end := t.EffectiveEnd(); effective.After(end) {
		effective = end
	}

	elapsed := effective.Sub(t.StartTime) - t.TotalPausedDuration
	if elapsed < 0 {
		return 0
	}
	if d := t.Duration(); elapsed > d {
		return d
	}
	return elapsed
}

// Ended reports whether the sprint has run its full pause-adjusted course.
func (t Timeline) Ended(now time.Time) bool {
	if t.IsPaused {
		return t.AutoClosed(now)
	}
	return !now.Before(t.EffectiveEnd())
}

// AutoClosed reports whether an open-ended pause has consumed the entire
// remaining sprint window. Once true the state is terminal: the pause can
// never be resumed and the beneficiary is entitled to the full remaining
// balance.
func (t Timeline) AutoClosed(now time.Time) bool {
	if !t.IsPaused {
		return false
	}
	remaining := t.EffectiveEnd().Sub(t.PauseTime)
	return now.Sub(t.PauseTime) >= remaining
}

// Pause freezes the timeline at now.
func (t *Timeline) Pause(now time.Time) error {
	if t.IsPaused {
		return apperrors.New(apperrors.CodeAlreadyPaused, "sprint is already paused")
	}
	if t.PauseResumeCount >= MaxPauseResumeActions {
		return apperrors.WithMetadata(apperrors.CodeMaxPauseResumeExceeded,
			"maximum pause/resume count exceeded",
			map[string]string{"Count": strconv.Itoa(int(t.PauseResumeCount))})
	}
	t.IsPaused = true
	t.PauseTime = now
	t.PauseResumeCount++
	return nil
}

// Resume unfreezes the timeline, accumulating the paused gap. If the pause
// consumed the entire remaining window the sprint is irrevocably settled and
// Resume fails with a terminal error.
func (t *Timeline) Resume(now time.Time) error {
	if !t.IsPaused {
		return apperrors.New(apperrors.CodeNotPaused, "sprint is not paused")
	}
	if t.AutoClosed(now) {
		return apperrors.New(apperrors.CodeSprintAutoClosed,
			"pause consumed the remaining sprint window; sprint is settled")
	}
	if t.PauseResumeCount >= MaxPauseResumeActions {
		return apperrors.WithMetadata(apperrors.CodeMaxPauseResumeExceeded,
			"maximum pause/resume count exceeded",
			map[string]string{"Count": strconv.Itoa(int(t.PauseResumeCount))})
	}
	t.TotalPausedDuration += now.Sub(t.PauseTime)
	t.IsPaused = false
	t.PauseTime = time.Time{}
	t.PauseResumeCount++
	return nil
}
