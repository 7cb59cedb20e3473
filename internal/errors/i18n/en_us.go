package i18n

// Error codes must match the codes defined in internal/errors/codes.go.
const (
	CodeInvalidAmount       = "INVALID_AMOUNT"
	CodeInvalidTimeRange    = "INVALID_TIME_RANGE"
	CodeSprintTooShort      = "SPRINT_TOO_SHORT"
	CodeSprintTooLong       = "SPRINT_TOO_LONG"
	CodeUnsupportedMint     = "UNSUPPORTED_MINT"
	CodeSprintAlreadyExists = "SPRINT_ALREADY_EXISTS"

	CodeSprintNotFunded        = "SPRINT_NOT_FUNDED"
	CodeSprintAlreadyStarted   = "SPRINT_ALREADY_STARTED"
	CodeSprintNotStarted       = "SPRINT_NOT_STARTED"
	CodeSprintEnded            = "SPRINT_NOT_ENDED"
	CodeSprintPaused           = "SPRINT_PAUSED"
	CodeAlreadyPaused          = "ALREADY_PAUSED"
	CodeNotPaused              = "NOT_PAUSED"
	CodeMaxPauseResumeExceeded = "MAX_PAUSE_RESUME_EXCEEDED"
	CodeSprintAutoClosed       = "SPRINT_AUTO_CLOSED_DUE_TO_EXCESSIVE_PAUSE"
	CodeBelowMinimumWithdrawal = "BELOW_MINIMUM_WITHDRAWAL"
	CodeNoFundsAvailable       = "NO_FUNDS_AVAILABLE"

	CodeFrozenTokenAccount = "FROZEN_TOKEN_ACCOUNT"
	CodeInsufficientFunds  = "INSUFFICIENT_FUNDS"

	CodeEscrowPaused              = "ESCROW_CONFIG_PAUSED"
	CodeInvalidEscrowStatus       = "ESCROW_INVALID_STATUS"
	CodeVaultExpired              = "VAULT_EXPIRED"
	CodeMilestoneNotFound         = "MILESTONE_NOT_FOUND"
	CodeMilestoneAlreadyCompleted = "MILESTONE_ALREADY_COMPLETED"
	CodeInvalidMilestoneConfig    = "INVALID_MILESTONE_CONFIG"
	CodeInvalidScheduleUpdate     = "INVALID_SCHEDULE_UPDATE"

	CodeUnauthorized = "UNAUTHORIZED"
	CodeNotFound     = "NOT_FOUND"
)

var enUSCatalog = &Catalog{
	locale: "en-US",
	messages: map[Code]string{
		// Sprint validation errors
		CodeInvalidAmount:       "Invalid amount",
		CodeInvalidTimeRange:    "Invalid time range",
		CodeSprintTooShort:      "Sprint duration must be at least {{.Min}}",
		CodeSprintTooLong:       "Sprint duration must be at most {{.Max}}",
		CodeUnsupportedMint:     "Token mint {{.Mint}} is not supported",
		CodeSprintAlreadyExists: "A sprint with this id already exists for this employer",

		// Sprint state errors
		CodeSprintNotFunded:        "Sprint has not been funded",
		CodeSprintAlreadyStarted:   "Sprint has already started",
		CodeSprintNotStarted:       "Sprint has not started yet",
		CodeSprintEnded:            "Sprint has not ended",
		CodeSprintPaused:           "Sprint is currently paused",
		CodeAlreadyPaused:          "Sprint is already paused",
		CodeNotPaused:              "Sprint is not paused",
		CodeMaxPauseResumeExceeded: "Maximum pause/resume count exceeded",
		CodeSprintAutoClosed:       "Sprint auto-closed due to excessive pause duration",
		CodeBelowMinimumWithdrawal: "Amount {{.Amount}} is below the minimum withdrawal threshold {{.Minimum}}",
		CodeNoFundsAvailable:       "No funds available for withdrawal",

		// Token ledger errors
		CodeFrozenTokenAccount: "Token account is frozen",
		CodeInsufficientFunds:  "Insufficient token balance",

		// Escrow errors
		CodeEscrowPaused:              "Escrow operations are paused",
		CodeInvalidEscrowStatus:       "Invalid escrow status for this operation",
		CodeVaultExpired:              "Escrow vault has expired",
		CodeMilestoneNotFound:         "Milestone {{.MilestoneID}} not found",
		CodeMilestoneAlreadyCompleted: "Milestone {{.MilestoneID}} is already completed",
		CodeInvalidMilestoneConfig:    "Invalid milestone configuration",
		CodeInvalidScheduleUpdate:     "Schedule update would reduce already-available funds",

		// Access control errors
		CodeUnauthorized: "Unauthorized access",

		// Storage errors
		CodeNotFound: "The requested resource was not found",
	},
}
