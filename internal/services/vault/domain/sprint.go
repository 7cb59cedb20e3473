package domain

import (
	"strconv"
	"time"

	apperrors "github.com/ANISH-SR/StreamVault/internal/errors"
)

// Sprint duration bounds.
const (
	MinSprintDuration = time.Hour
	MaxSprintDuration = 365 * 24 * time.Hour
)

// Named sprint duration presets carried over from the hosted deployment.
const (
	DurationOneWeek     = 7 * 24 * time.Hour
	DurationTwoWeeks    = 2 * DurationOneWeek
	DurationFourWeeks   = 4 * DurationOneWeek
	DurationSixWeeks    = 6 * DurationOneWeek
	DurationEightWeeks  = 8 * DurationOneWeek
	DurationTwelveWeeks = 12 * DurationOneWeek
)

// Sprint is a single employer-to-freelancer scheduled disbursement record.
// One exists per (employer, sprint id) pair.
type Sprint struct {
	Employer        string
	Freelancer      string
	SprintID        uint64
	Mint            string
	Vault           string // vault token account, funds-owned by the sprint record
	TotalAmount     uint64
	WithdrawnAmount uint64
	Timeline        Timeline
	Acceleration    AccelerationType
	IsFunded        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// CreateSprintInput describes the parameters for a new sprint.
type CreateSprintInput struct {
	Employer     string
	Freelancer   string
	SprintID     uint64
	Mint         string
	TotalAmount  uint64
	StartTime    time.Time
	Duration     time.Duration
	Acceleration AccelerationType
}

// NewSprint validates input and constructs an unfunded sprint. Mint support
// is policy-dependent and checked by the caller against the vault config.
func NewSprint(input CreateSprintInput, now time.Time) (Sprint, error) {
	if input.Employer == "" || input.Freelancer == "" {
		return Sprint{}, apperrors.New(apperrors.CodeInvalidAmount, "employer and freelancer are required")
	}
	if input.TotalAmount == 0 {
		return Sprint{}, apperrors.New(apperrors.CodeInvalidAmount, "total amount must be greater than zero")
	}
	if input.Duration < MinSprintDuration {
		return Sprint{}, apperrors.WithMetadata(apperrors.CodeSprintTooShort,
			"sprint duration below minimum",
			map[string]string{"Min": MinSprintDuration.String()})
	}
	if input.Duration > MaxSprintDuration {
		return Sprint{}, apperrors.WithMetadata(apperrors.CodeSprintTooLong,
			"sprint duration above maximum",
			map[string]string{"Max": MaxSprintDuration.String()})
	}
	if !input.StartTime.After(now) {
		return Sprint{}, apperrors.New(apperrors.CodeInvalidTimeRange, "start time must be in the future")
	}
	if !input.Acceleration.Valid() {
		return Sprint{}, apperrors.New(apperrors.CodeInvalidTimeRange, "unknown acceleration type")
	}

	created := now.UTC()
	return Sprint{
		Employer:     input.Employer,
		Freelancer:   input.Freelancer,
		SprintID:     input.SprintID,
		Mint:         input.Mint,
		TotalAmount:  input.TotalAmount,
		Acceleration: input.Acceleration,
		Timeline: Timeline{
			StartTime: input.StartTime,
			EndTime:   input.StartTime.Add(input.Duration),
		},
		CreatedAt: created,
		UpdatedAt: created,
	}, nil
}

// RemainingAmount returns the unreleased balance.
func (s *Sprint) RemainingAmount() uint64 {
	return s.TotalAmount - s.WithdrawnAmount
}

// EarnedAmount returns the total vested at now per the acceleration curve,
// excluding paused intervals.
func (s *Sprint) EarnedAmount(now time.Time) uint64 {
	if s.Timeline.AutoClosed(now) {
		// Terminal settlement: the full balance is unlocked.
		return s.TotalAmount
	}
	elapsed := int64(s.Timeline.ActiveElapsed(now) / time.Second)
	duration := int64(s.Timeline.Duration() / time.Second)
	return Vested(s.TotalAmount, elapsed, duration, s.Acceleration)
}

// WithdrawableAmount returns earned minus already withdrawn.
func (s *Sprint) WithdrawableAmount(now time.Time) uint64 {
	earned := s.EarnedAmount(now)
	if earned <= s.WithdrawnAmount {
		return 0
	}
	return earned - s.WithdrawnAmount
}

// Fund marks the sprint funded. It accepts exactly one full-amount deposit
// and only before the sprint window opens.
func (s *Sprint) Fund(now time.Time, amount uint64) error {
	if s.IsFunded {
		return apperrors.New(apperrors.CodeSprintAlreadyStarted, "sprint is already funded")
	}
	if !now.Before(s.Timeline.StartTime) {
		return apperrors.New(apperrors.CodeSprintAlreadyStarted, "sprint window has already opened")
	}
	if amount != s.TotalAmount {
		return apperrors.WithMetadata(apperrors.CodeInvalidAmount,
			"deposit must equal the exact sprint total",
			map[string]string{
				"Expected": strconv.FormatUint(s.TotalAmount, 10),
				"Received": strconv.FormatUint(amount, 10),
			})
	}
	s.IsFunded = true
	s.UpdatedAt = now.UTC()
	return nil
}

// Withdraw computes and applies a streamed withdrawal at now. cap limits the
// transfer when non-zero. minWithdrawal is the per-mint dust threshold; a
// below-threshold transfer is rejected unless it drains the entire remaining
// balance or the sprint has fully elapsed.
func (s *Sprint) Withdraw(now time.Time, cap uint64, minWithdrawal uint64) (uint64, error) {
	if !s.IsFunded {
		return 0, apperrors.New(apperrors.CodeSprintNotFunded, "sprint has not been funded")
	}
	if now.Before(s.Timeline.StartTime) {
		return 0, apperrors.New(apperrors.CodeSprintNotStarted, "sprint has not started")
	}
	if s.Timeline.IsPaused && !s.Timeline.AutoClosed(now) {
		return 0, apperrors.New(apperrors.CodeSprintPaused, "sprint is paused")
	}

	available := s.WithdrawableAmount(now)
	if available == 0 {
		return 0, apperrors.New(apperrors.CodeNoFundsAvailable, "no funds available for withdrawal")
	}

	amount := available
	if cap != 0 && cap < amount {
		amount = cap
	}

	finalSettlement := amount == s.RemainingAmount()
	if !s.Timeline.Ended(now) && amount < minWithdrawal && !finalSettlement {
		return 0, apperrors.WithMetadata(apperrors.CodeBelowMinimumWithdrawal,
			"amount below minimum withdrawal threshold",
			map[string]string{
				"Amount":  strconv.FormatUint(amount, 10),
				"Minimum": strconv.FormatUint(minWithdrawal, 10),
			})
	}

	s.WithdrawnAmount += amount
	s.UpdatedAt = now.UTC()
	return amount, nil
}

// Pause freezes the sprint clock. Employer authorization is the app layer's
// responsibility.
func (s *Sprint) Pause(now time.Time) error {
	if !s.IsFunded {
		return apperrors.New(apperrors.CodeSprintNotFunded, "sprint has not been funded")
	}
	if err := s.Timeline.Pause(now); err != nil {
		return err
	}
	s.UpdatedAt = now.UTC()
	return nil
}

// Resume unfreezes the sprint clock.
func (s *Sprint) Resume(now time.Time) error {
	if !s.IsFunded {
		return apperrors.New(apperrors.CodeSprintNotFunded, "sprint has not been funded")
	}
	if err := s.Timeline.Resume(now); err != nil {
		return err
	}
	s.UpdatedAt = now.UTC()
	return nil
}

// CloseEligible reports whether the employer may close the sprint: before
// funding, after full withdrawal, or after the pause-adjusted end.
func (s *Sprint) CloseEligible(now time.Time) error {
	if !s.IsFunded {
		return nil
	}
	if s.WithdrawnAmount == s.TotalAmount {
		return nil
	}
	if s.Timeline.Ended(now) {
		return nil
	}
	return apperrors.New(apperrors.CodeSprintEnded, "sprint has not ended")
}
