package domain

import (
	"time"

	apperrors "github.com/ANISH-SR/StreamVault/internal/errors"
)

// DefaultMinWithdrawal is the dust threshold applied to mints that do not
// override it (10 units at 6 decimals).
const DefaultMinWithdrawal uint64 = 10_000_000

// MintInfo describes one supported token mint.
type MintInfo struct {
	Address       string
	Decimals      uint8
	MinWithdrawal uint64
}

// Config is the global singleton configuration record. It is initialized
// once by the configured authority and read on every creation call; it is
// never implicit global state.
type Config struct {
	Authority         string
	Mints             []MintInfo
	MinEscrowAmount   uint64
	MaxEscrowDuration time.Duration
	Paused            bool
	Version           uint32
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// NewConfig validates and constructs the singleton config record.
func NewConfig(authority string, mints []MintInfo, minEscrowAmount uint64, maxEscrowDuration time.Duration, now time.Time) (Config, error) {
	if authority == "" {
		return Config{}, apperrors.New(apperrors.CodeUnauthorized, "config authority is required")
	}
	if maxEscrowDuration <= 0 {
		return Config{}, apperrors.New(apperrors.CodeInvalidTimeRange, "maximum escrow duration must be positive")
	}
	if len(mints) == 0 {
		return Config{}, apperrors.New(apperrors.CodeUnsupportedMint, "at least one supported mint is required")
	}
	normalized := make([]MintInfo, 0, len(mints))
	for _, m := range mints {
		if m.Address == "" {
			return Config{}, apperrors.New(apperrors.CodeUnsupportedMint, "mint address is required")
		}
		if m.MinWithdrawal == 0 {
			m.MinWithdrawal = DefaultMinWithdrawal
		}
		normalized = append(normalized, m)
	}

	created := now.UTC()
	return Config{
		Authority:         authority,
		Mints:             normalized,
		MinEscrowAmount:   minEscrowAmount,
		MaxEscrowDuration: maxEscrowDuration,
		Version:           1,
		CreatedAt:         created,
		UpdatedAt:         created,
	}, nil
}

// MintInfo returns the policy entry for a mint address.
func (c Config) MintInfo(address string) (MintInfo, bool) {
	for _, m := range c.Mints {
		if m.Address == address {
			return m, true
		}
	}
	return MintInfo{}, false
}

// SupportsMint reports whether the mint is on the allow-list.
func (c Config) SupportsMint(address string) bool {
	_, ok := c.MintInfo(address)
	return ok
}

// MinWithdrawal returns the dust threshold for a mint, falling back to the
// default for unknown mints.
func (c Config) MinWithdrawal(address string) uint64 {
	if m, ok := c.MintInfo(address); ok {
		return m.MinWithdrawal
	}
	return DefaultMinWithdrawal
}
