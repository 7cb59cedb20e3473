// Package errors provides structured error handling for the vault services.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Sprint validation errors
	CodeInvalidAmount       Code = "INVALID_AMOUNT"
	CodeInvalidTimeRange    Code = "INVALID_TIME_RANGE"
	CodeSprintTooShort      Code = "SPRINT_TOO_SHORT"
	CodeSprintTooLong       Code = "SPRINT_TOO_LONG"
	CodeUnsupportedMint     Code = "UNSUPPORTED_MINT"
	CodeSprintAlreadyExists Code = "SPRINT_ALREADY_EXISTS"

	// Sprint state errors
	CodeSprintNotFunded         Code = "SPRINT_NOT_FUNDED"
	CodeSprintAlreadyStarted    Code = "SPRINT_ALREADY_STARTED"
	CodeSprintNotStarted        Code = "SPRINT_NOT_STARTED"
	CodeSprintEnded             Code = "SPRINT_NOT_ENDED"
	CodeSprintPaused            Code = "SPRINT_PAUSED"
	CodeAlreadyPaused           Code = "ALREADY_PAUSED"
	CodeNotPaused               Code = "NOT_PAUSED"
	CodeMaxPauseResumeExceeded  Code = "MAX_PAUSE_RESUME_EXCEEDED"
	CodeSprintAutoClosed        Code = "SPRINT_AUTO_CLOSED_DUE_TO_EXCESSIVE_PAUSE"
	CodeBelowMinimumWithdrawal  Code = "BELOW_MINIMUM_WITHDRAWAL"
	CodeNoFundsAvailable        Code = "NO_FUNDS_AVAILABLE"

	// Token ledger errors
	CodeFrozenTokenAccount Code = "FROZEN_TOKEN_ACCOUNT"
	CodeInsufficientFunds  Code = "INSUFFICIENT_FUNDS"

	// Escrow errors
	CodeEscrowPaused              Code = "ESCROW_CONFIG_PAUSED"
	CodeInvalidEscrowStatus       Code = "ESCROW_INVALID_STATUS"
	CodeVaultExpired              Code = "VAULT_EXPIRED"
	CodeMilestoneNotFound         Code = "MILESTONE_NOT_FOUND"
	CodeMilestoneAlreadyCompleted Code = "MILESTONE_ALREADY_COMPLETED"
	CodeInvalidMilestoneConfig    Code = "INVALID_MILESTONE_CONFIG"
	CodeInvalidScheduleUpdate     Code = "INVALID_SCHEDULE_UPDATE"

	// Access control errors
	CodeUnauthorized Code = "UNAUTHORIZED"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// InvalidArgument - validation failures, bad input
	case CodeInvalidAmount,
		CodeInvalidTimeRange,
		CodeSprintTooShort,
		CodeSprintTooLong,
		CodeUnsupportedMint,
		CodeInvalidMilestoneConfig,
		CodeInvalidScheduleUpdate:
		return codes.InvalidArgument

	// FailedPrecondition - state doesn't allow operation
	case CodeSprintNotFunded,
		CodeSprintAlreadyStarted,
		CodeSprintNotStarted,
		CodeSprintEnded,
		CodeSprintPaused,
		CodeAlreadyPaused,
		CodeNotPaused,
		CodeMaxPauseResumeExceeded,
		CodeSprintAutoClosed,
		CodeBelowMinimumWithdrawal,
		CodeNoFundsAvailable,
		CodeFrozenTokenAccount,
		CodeInsufficientFunds,
		CodeEscrowPaused,
		CodeInvalidEscrowStatus,
		CodeVaultExpired,
		CodeMilestoneAlreadyCompleted:
		return codes.FailedPrecondition

	// AlreadyExists - duplicate record creation
	case CodeSprintAlreadyExists:
		return codes.AlreadyExists

	// PermissionDenied - access-control violations
	case CodeUnauthorized:
		return codes.PermissionDenied

	// NotFound - resource doesn't exist
	case CodeNotFound,
		CodeMilestoneNotFound:
		return codes.NotFound

	default:
		return codes.Internal
	}
}
