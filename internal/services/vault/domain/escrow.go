package domain

import (
	"strconv"
	"time"

	apperrors "github.com/ANISH-SR/StreamVault/internal/errors"
)

// ReleaseAuthority selects who may withdraw available escrow funds.
type ReleaseAuthority int

const (
	// AuthorityBeneficiary allows only the beneficiary to withdraw.
	AuthorityBeneficiary ReleaseAuthority = 1
	// AuthorityDepositor allows only the depositor to withdraw.
	AuthorityDepositor ReleaseAuthority = 2
	// AuthorityEither allows the beneficiary or the depositor to withdraw.
	AuthorityEither ReleaseAuthority = 3
)

// Valid reports whether the authority value is known.
func (a ReleaseAuthority) Valid() bool {
	switch a {
	case AuthorityBeneficiary, AuthorityDepositor, AuthorityEither:
		return true
	}
	return false
}

// EscrowStatus tracks the escrow lifecycle.
type EscrowStatus int

const (
	// EscrowInitialized means the record exists but holds no funds.
	EscrowInitialized EscrowStatus = 1
	// EscrowFunded means funds are partially deposited.
	EscrowFunded EscrowStatus = 2
	// EscrowActive means the full amount is deposited and releasing.
	EscrowActive EscrowStatus = 3
	// EscrowCompleted means the full amount has been withdrawn.
	EscrowCompleted EscrowStatus = 4
	// EscrowCancelled means the depositor cancelled the escrow.
	EscrowCancelled EscrowStatus = 5
)

// Escrow is a generic reusable escrow record. Control is delegated to the
// (OwnerProgram, OwnerAccount) pair: any caller invoking through a program
// context must present the matching pair, checked by equality, never by
// dispatch. Funds remain owned by the vault token account.
type Escrow struct {
	VaultID           uint64
	OwnerProgram      string
	OwnerAccount      string
	Depositor         string
	Beneficiary       string
	Arbiter           string // optional
	TokenMint         string
	VaultTokenAccount string
	TotalAmount       uint64
	DepositedAmount   uint64
	WithdrawnAmount   uint64
	Schedule          ReleaseSchedule
	Authority         ReleaseAuthority
	Status            EscrowStatus
	CreatedAt         time.Time
	UpdatedAt         time.Time
	ExpiresAt         time.Time // zero means no expiry
}

// CreateEscrowInput describes the parameters for a new escrow vault.
type CreateEscrowInput struct {
	VaultID      uint64
	OwnerProgram string
	OwnerAccount string
	Depositor    string
	Beneficiary  string
	Arbiter      string
	TokenMint    string
	TotalAmount  uint64
	Schedule     ReleaseSchedule
	Authority    ReleaseAuthority
	ExpiresAt    time.Time
}

// NewEscrow validates input against the config record and constructs an
// initialized escrow.
func NewEscrow(input CreateEscrowInput, cfg Config, now time.Time) (Escrow, error) {
	if cfg.Paused {
		return Escrow{}, apperrors.New(apperrors.CodeEscrowPaused, "escrow operations are paused")
	}
	if input.Depositor == "" || input.Beneficiary == "" {
		return Escrow{}, apperrors.New(apperrors.CodeInvalidAmount, "depositor and beneficiary are required")
	}
	if input.OwnerProgram == "" || input.OwnerAccount == "" {
		return Escrow{}, apperrors.New(apperrors.CodeUnauthorized, "delegated owner pair is required")
	}
	if input.TotalAmount == 0 || input.TotalAmount < cfg.MinEscrowAmount {
		return Escrow{}, apperrors.WithMetadata(apperrors.CodeInvalidAmount,
			"escrow amount below configured minimum",
			map[string]string{"Minimum": strconv.FormatUint(cfg.MinEscrowAmount, 10)})
	}
	if !input.Authority.Valid() {
		return Escrow{}, apperrors.New(apperrors.CodeUnauthorized, "unknown release authority")
	}
	if !input.ExpiresAt.IsZero() && !input.ExpiresAt.After(now) {
		return Escrow{}, apperrors.New(apperrors.CodeInvalidTimeRange, "expiry must be in the future")
	}
	if err := input.Schedule.Validate(input.TotalAmount, cfg.MaxEscrowDuration); err != nil {
		return Escrow{}, err
	}

	created := now.UTC()
	return Escrow{
		VaultID:      input.VaultID,
		OwnerProgram: input.OwnerProgram,
		OwnerAccount: input.OwnerAccount,
		Depositor:    input.Depositor,
		Beneficiary:  input.Beneficiary,
		Arbiter:      input.Arbiter,
		TokenMint:    input.TokenMint,
		TotalAmount:  input.TotalAmount,
		Schedule:     input.Schedule.Clone(),
		Authority:    input.Authority,
		Status:       EscrowInitialized,
		CreatedAt:    created,
		UpdatedAt:    created,
		ExpiresAt:    input.ExpiresAt,
	}, nil
}

// AuthorizeOwner verifies a delegated caller against the stored control pair.
func (e *Escrow) AuthorizeOwner(program, account string) error {
	if program != e.OwnerProgram || account != e.OwnerAccount {
		return apperrors.New(apperrors.CodeUnauthorized, "delegated owner pair mismatch")
	}
	return nil
}

// CanWithdraw reports whether the caller identity is allowed to withdraw
// under the configured release authority.
func (e *Escrow) CanWithdraw(caller string) bool {
	switch e.Authority {
	case AuthorityBeneficiary:
		return caller == e.Beneficiary
	case AuthorityDepositor:
		return caller == e.Depositor
	case AuthorityEither:
		return caller == e.Beneficiary || caller == e.Depositor
	default:
		return false
	}
}

// RemainingAmount returns the unwithdrawn balance.
func (e *Escrow) RemainingAmount() uint64 {
	return e.TotalAmount - e.WithdrawnAmount
}

// Deposit records an incoming deposit. Cumulative deposits may never exceed
// the escrow total; a full deposit activates the release schedule.
func (e *Escrow) Deposit(now time.Time, amount uint64) error {
	if e.Status != EscrowInitialized && e.Status != EscrowFunded {
		return apperrors.New(apperrors.CodeInvalidEscrowStatus, "escrow does not accept deposits")
	}
	if amount == 0 {
		return apperrors.New(apperrors.CodeInvalidAmount, "deposit amount must be greater than zero")
	}
	next := e.DepositedAmount + amount
	if next < e.DepositedAmount || next > e.TotalAmount {
		return apperrors.WithMetadata(apperrors.CodeInvalidAmount,
			"cumulative deposits may not exceed the escrow total",
			map[string]string{"Total": strconv.FormatUint(e.TotalAmount, 10)})
	}
	e.DepositedAmount = next
	if e.DepositedAmount == e.TotalAmount {
		e.Status = EscrowActive
	} else {
		e.Status = EscrowFunded
	}
	e.UpdatedAt = now.UTC()
	return nil
}

// AvailableAmount returns the withdrawable balance at now: the schedule
// unlock minus prior withdrawals, never exceeding deposited funds.
func (e *Escrow) AvailableAmount(now time.Time) (uint64, error) {
	if e.Status != EscrowActive && e.Status != EscrowFunded {
		return 0, apperrors.New(apperrors.CodeInvalidEscrowStatus, "escrow is not releasing funds")
	}
	if !e.ExpiresAt.IsZero() && now.After(e.ExpiresAt) {
		return 0, apperrors.New(apperrors.CodeVaultExpired, "escrow vault has expired")
	}

	unlocked := e.Schedule.Available(e.TotalAmount, now)
	if unlocked > e.TotalAmount {
		unlocked = e.TotalAmount
	}
	if unlocked <= e.WithdrawnAmount {
		return 0, nil
	}
	available := unlocked - e.WithdrawnAmount

	// Funds that were never deposited cannot be released.
	if deposited := e.DepositedAmount - e.WithdrawnAmount; available > deposited {
		available = deposited
	}
	return available, nil
}

// Withdraw applies a withdrawal at now, optionally capped. The caller's
// authority must already be verified.
func (e *Escrow) Withdraw(now time.Time, cap uint64) (uint64, error) {
	available, err := e.AvailableAmount(now)
	if err != nil {
		return 0, err
	}
	if available == 0 {
		return 0, apperrors.New(apperrors.CodeNoFundsAvailable, "no funds available for withdrawal")
	}

	amount := available
	if cap != 0 && cap < amount {
		amount = cap
	}
	e.WithdrawnAmount += amount
	if e.WithdrawnAmount == e.TotalAmount {
		e.Status = EscrowCompleted
	}
	e.UpdatedAt = now.UTC()
	return amount, nil
}

// UpdateSchedule replaces the release schedule. The new schedule must pass
// the same structural validation as creation and may not make currently
// available funds smaller than what has already been withdrawn.
func (e *Escrow) UpdateSchedule(newSchedule ReleaseSchedule, cfg Config, now time.Time) error {
	if cfg.Paused {
		return apperrors.New(apperrors.CodeEscrowPaused, "escrow operations are paused")
	}
	switch e.Status {
	case EscrowInitialized, EscrowFunded, EscrowActive:
	default:
		return apperrors.New(apperrors.CodeInvalidEscrowStatus, "escrow schedule can no longer change")
	}
	if err := newSchedule.Validate(e.TotalAmount, cfg.MaxEscrowDuration); err != nil {
		return err
	}
	if unlocked := newSchedule.Available(e.TotalAmount, now); unlocked < e.WithdrawnAmount {
		return apperrors.New(apperrors.CodeInvalidScheduleUpdate,
			"new schedule would unlock less than already withdrawn")
	}
	e.Schedule = newSchedule.Clone()
	e.UpdatedAt = now.UTC()
	return nil
}

// CloseRefund returns the balance refunded to the depositor on close.
func (e *Escrow) CloseRefund() uint64 {
	return e.DepositedAmount - e.WithdrawnAmount
}
