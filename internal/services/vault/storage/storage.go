// Package storage defines persistence and ledger contracts for the vault service.
package storage

import (
	"context"
	"errors"

	"github.com/ANISH-SR/StreamVault/internal/services/vault/domain"
)

// ErrNotFound indicates a requested record is missing.
var ErrNotFound = errors.New("record not found")

// SprintStore persists sprint records keyed by (employer, sprint id).
type SprintStore interface {
	PutSprint(ctx context.Context, sprint domain.Sprint) error
	GetSprint(ctx context.Context, employer string, sprintID uint64) (domain.Sprint, error)
	DeleteSprint(ctx context.Context, employer string, sprintID uint64) error
	ListSprints(ctx context.Context, employer string) ([]domain.Sprint, error)
}

// EscrowStore persists escrow records keyed by (owner program, vault id).
type EscrowStore interface {
	PutEscrow(ctx context.Context, escrow domain.Escrow) error
	GetEscrow(ctx context.Context, ownerProgram string, vaultID uint64) (domain.Escrow, error)
	DeleteEscrow(ctx context.Context, ownerProgram string, vaultID uint64) error
	ListEscrows(ctx context.Context, depositor string) ([]domain.Escrow, error)
}

// ConfigStore persists the singleton config record.
type ConfigStore interface {
	PutConfig(ctx context.Context, cfg domain.Config) error
	GetConfig(ctx context.Context) (domain.Config, error)
}

// TokenLedger models the external token ledger collaborator. Transfers
// fail with typed domain errors when either side is frozen or the source
// balance is insufficient, without moving any value.
type TokenLedger interface {
	CreateAccount(ctx context.Context, id, owner, mint string) error
	DeleteAccount(ctx context.Context, id string) error
	Transfer(ctx context.Context, from, to string, amount uint64) error
	Credit(ctx context.Context, id string, amount uint64) error
	Balance(ctx context.Context, id string) (uint64, error)
	IsFrozen(ctx context.Context, id string) (bool, error)
	SetFrozen(ctx context.Context, id string, frozen bool) error
}

// Store bundles every persistence concern behind one transactional boundary.
// InTx runs fn against a transaction-scoped store: either every write and
// ledger movement inside fn commits, or none do.
type Store interface {
	SprintStore
	EscrowStore
	ConfigStore
	TokenLedger

	InTx(ctx context.Context, fn func(tx Store) error) error
}
