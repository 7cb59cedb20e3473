package domain

import (
	"testing"
	"time"

	apperrors "github.com/ANISH-SR/StreamVault/internal/errors"
)

func TestNewConfigValidation(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	mints := []MintInfo{{Address: "usdc", Decimals: 6, MinWithdrawal: 5}}

	if _, err := NewConfig("", mints, 100, time.Hour, base); !apperrors.IsCode(err, apperrors.CodeUnauthorized) {
		t.Fatalf("missing authority: got %v, want %s", err, apperrors.CodeUnauthorized)
	}
	if _, err := NewConfig("auth", nil, 100, time.Hour, base); !apperrors.IsCode(err, apperrors.CodeUnsupportedMint) {
		t.Fatalf("no mints: got %v, want %s", err, apperrors.CodeUnsupportedMint)
	}
	if _, err := NewConfig("auth", mints, 100, 0, base); !apperrors.IsCode(err, apperrors.CodeInvalidTimeRange) {
		t.Fatalf("zero duration: got %v, want %s", err, apperrors.CodeInvalidTimeRange)
	}

	cfg, err := NewConfig("auth", mints, 100, time.Hour, base)
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if cfg.Version != 1 {
		t.Fatalf("version = %d, want 1", cfg.Version)
	}
}

func TestConfigMintLookups(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	cfg, err := NewConfig("auth", []MintInfo{
		{Address: "usdc", Decimals: 6, MinWithdrawal: 5},
		{Address: "sol", Decimals: 9},
	}, 100, time.Hour, base)
	if err != nil {
		t.Fatalf("new config: %v", err)
	}

	if !cfg.SupportsMint("usdc") || !cfg.SupportsMint("sol") {
		t.Fatal("configured mints must be supported")
	}
	if cfg.SupportsMint("doge") {
		t.Fatal("unconfigured mint must not be supported")
	}
	if got := cfg.MinWithdrawal("usdc"); got != 5 {
		t.Fatalf("usdc min withdrawal = %d, want 5", got)
	}
	// Zero-valued entries and unknown mints fall back to the default.
	if got := cfg.MinWithdrawal("sol"); got != DefaultMinWithdrawal {
		t.Fatalf("sol min withdrawal = %d, want default %d", got, DefaultMinWithdrawal)
	}
	if got := cfg.MinWithdrawal("doge"); got != DefaultMinWithdrawal {
		t.Fatalf("unknown mint min withdrawal = %d, want default %d", got, DefaultMinWithdrawal)
	}
}

func TestNewID(t *testing.T) {
	t.Parallel()

	seen := make(map[string]struct{})
	for i := 0; i < 64; i++ {
		id, err := NewID()
		if err != nil {
			t.Fatalf("new id: %v", err)
		}
		if len(id) != 26 {
			t.Fatalf("id length = %d, want 26", len(id))
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = struct{}{}
	}
}
