package domain

import (
	"strconv"
	"time"

	apperrors "github.com/ANISH-SR/StreamVault/internal/errors"
)

// ReleaseScheduleKind discriminates the release schedule union.
type ReleaseScheduleKind int

const (
	// ScheduleImmediate unlocks the entire balance as soon as it is deposited.
	ScheduleImmediate ReleaseScheduleKind = 1
	// ScheduleLinear unlocks continuously between a start and end instant.
	ScheduleLinear ReleaseScheduleKind = 2
	// ScheduleMilestone unlocks discrete amounts as milestones are approved.
	ScheduleMilestone ReleaseScheduleKind = 3
	// ScheduleHybrid composes a linear portion with a milestone portion.
	ScheduleHybrid ReleaseScheduleKind = 4
)

// LinearConfig bounds a continuously vesting window.
type LinearConfig struct {
	Start        time.Time
	End          time.Time
	Acceleration AccelerationType
}

// MilestoneCondition is a discrete release gate. Its amount becomes
// withdrawable only after the required-approval identity completes it.
type MilestoneCondition struct {
	ID               uint32
	Amount           uint64
	RequiredApproval string
	IsCompleted      bool
}

// HybridConfig splits the escrow total between a vesting window and
// milestone gates.
type HybridConfig struct {
	LinearPortion    uint64
	MilestonePortion uint64
	Linear           LinearConfig
	Conditions       []MilestoneCondition
}

// ReleaseSchedule is the tagged union of release strategies. Exactly the
// field matching Kind is populated.
type ReleaseSchedule struct {
	Kind       ReleaseScheduleKind
	Linear     *LinearConfig        `json:",omitempty"`
	Conditions []MilestoneCondition `json:",omitempty"`
	Hybrid     *HybridConfig        `json:",omitempty"`
}

// Validate checks schedule-specific structural constraints against the
// escrow total and the configured maximum duration.
func (r ReleaseSchedule) Validate(total uint64, maxDuration time.Duration) error {
	switch r.Kind {
	case ScheduleImmediate:
		return nil

	case ScheduleLinear:
		if r.Linear == nil {
			return apperrors.New(apperrors.CodeInvalidTimeRange, "linear schedule requires bounds")
		}
		return r.Linear.validate(maxDuration)

	case ScheduleMilestone:
		sum, err := milestoneSum(r.Conditions)
		if err != nil {
			return err
		}
		if sum != total {
			return apperrors.WithMetadata(apperrors.CodeInvalidMilestoneConfig,
				"milestone amounts must sum to the escrow total",
				map[string]string{
					"Sum":   strconv.FormatUint(sum, 10),
					"Total": strconv.FormatUint(total, 10),
				})
		}
		return nil

	case ScheduleHybrid:
		if r.Hybrid == nil {
			return apperrors.New(apperrors.CodeInvalidMilestoneConfig, "hybrid schedule requires configuration")
		}
		h := r.Hybrid
		if err := h.Linear.validate(maxDuration); err != nil {
			return err
		}
		combined := h.LinearPortion + h.MilestonePortion
		if combined < h.LinearPortion {
			return apperrors.New(apperrors.CodeInvalidAmount, "portion sum overflows")
		}
		sum, err := milestoneSum(h.Conditions)
		if err != nil {
			return err
		}
		if combined != total || sum != h.MilestonePortion {
			return apperrors.New(apperrors.CodeInvalidMilestoneConfig,
				"hybrid portions must sum to the escrow total")
		}
		return nil

	default:
		return apperrors.New(apperrors.CodeInvalidMilestoneConfig, "unknown release schedule kind")
	}
}

func (l LinearConfig) validate(maxDuration time.Duration) error {
	if !l.Start.Before(l.End) {
		return apperrors.New(apperrors.CodeInvalidTimeRange, "linear schedule end must be after start")
	}
	if maxDuration > 0 && l.End.Sub(l.Start) > maxDuration {
		return apperrors.New(apperrors.CodeInvalidTimeRange, "linear schedule exceeds maximum escrow duration")
	}
	if !l.Acceleration.Valid() {
		return apperrors.New(apperrors.CodeInvalidTimeRange, "unknown acceleration type")
	}
	return nil
}

func milestoneSum(conditions []MilestoneCondition) (uint64, error) {
	var sum uint64
	seen := make(map[uint32]struct{}, len(conditions))
	for _, c := range conditions {
		if c.Amount == 0 {
			return 0, apperrors.New(apperrors.CodeInvalidMilestoneConfig, "milestone amount must be greater than zero")
		}
		if c.RequiredApproval == "" {
			return 0, apperrors.New(apperrors.CodeInvalidMilestoneConfig, "milestone requires an approval identity")
		}
		if _, dup := seen[c.ID]; dup {
			return 0, apperrors.New(apperrors.CodeInvalidMilestoneConfig, "duplicate milestone id")
		}
		seen[c.ID] = struct{}{}
		next := sum + c.Amount
		if next < sum {
			return 0, apperrors.New(apperrors.CodeInvalidAmount, "milestone sum overflows")
		}
		sum = next
	}
	return sum, nil
}

// Available returns the schedule-unlocked amount at now, before subtracting
// withdrawals.
func (r ReleaseSchedule) Available(total uint64, now time.Time) uint64 {
	switch r.Kind {
	case ScheduleImmediate:
		return total

	case ScheduleLinear:
		if r.Linear == nil {
			return 0
		}
		return r.Linear.vested(total, now)

	case ScheduleMilestone:
		return completedSum(r.Conditions)

	case ScheduleHybrid:
		if r.Hybrid == nil {
			return 0
		}
		linear := r.Hybrid.Linear.vested(r.Hybrid.LinearPortion, now)
		return linear + completedSum(r.Hybrid.Conditions)

	default:
		return 0
	}
}

func (l LinearConfig) vested(portion uint64, now time.Time) uint64 {
	elapsed := int64(now.Sub(l.Start) / time.Second)
	duration := int64(l.End.Sub(l.Start) / time.Second)
	return Vested(portion, elapsed, duration, l.Acceleration)
}

func completedSum(conditions []MilestoneCondition) uint64 {
	var sum uint64
	for _, c := range conditions {
		if c.IsCompleted {
			sum += c.Amount
		}
	}
	return sum
}

// ReleaseMilestone marks the identified milestone completed after verifying
// the caller is its required-approval identity. Releasing a completed
// milestone is an error.
func (r *ReleaseSchedule) ReleaseMilestone(id uint32, caller string) error {
	var conditions []MilestoneCondition
	switch r.Kind {
	case ScheduleMilestone:
		conditions = r.Conditions
	case ScheduleHybrid:
		if r.Hybrid != nil {
			conditions = r.Hybrid.Conditions
		}
	default:
		return apperrors.New(apperrors.CodeInvalidMilestoneConfig, "schedule has no milestones")
	}

	for i := range conditions {
		if conditions[i].ID != id {
			continue
		}
		if conditions[i].IsCompleted {
			return apperrors.WithMetadata(apperrors.CodeMilestoneAlreadyCompleted,
				"milestone is already completed",
				map[string]string{"MilestoneID": strconv.FormatUint(uint64(id), 10)})
		}
		if caller != conditions[i].RequiredApproval {
			return apperrors.New(apperrors.CodeUnauthorized, "caller may not approve this milestone")
		}
		conditions[i].IsCompleted = true
		return nil
	}
	return apperrors.WithMetadata(apperrors.CodeMilestoneNotFound,
		"milestone not found",
		map[string]string{"MilestoneID": strconv.FormatUint(uint64(id), 10)})
}

// Clone returns a deep copy so stored records are never aliased.
func (r ReleaseSchedule) Clone() ReleaseSchedule {
	out := ReleaseSchedule{Kind: r.Kind}
	if r.Linear != nil {
		linear := *r.Linear
		out.Linear = &linear
	}
	if r.Conditions != nil {
		out.Conditions = append([]MilestoneCondition(nil), r.Conditions...)
	}
	if r.Hybrid != nil {
		hybrid := *r.Hybrid
		hybrid.Conditions = append([]MilestoneCondition(nil), r.Hybrid.Conditions...)
		out.Hybrid = &hybrid
	}
	return out
}
