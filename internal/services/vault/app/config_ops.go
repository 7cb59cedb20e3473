package app

import (
	"context"
	"errors"
	"log"
	"time"

	apperrors "github.com/ANISH-SR/StreamVault/internal/errors"
	"github.com/ANISH-SR/StreamVault/internal/services/vault/domain"
	"github.com/ANISH-SR/StreamVault/internal/services/vault/storage"
)

const configKey = "config"

// InitializeConfig creates the singleton config record. It may only happen
// once; later policy changes go through the authority-gated mutators.
func (s *Service) InitializeConfig(ctx context.Context, authority string, mints []domain.MintInfo, minEscrowAmount uint64, maxEscrowDuration time.Duration) (domain.Config, error) {
	if err := s.ready(); err != nil {
		return domain.Config{}, err
	}
	ctx, span := s.tracer.Start(ctx, "vault.InitializeConfig")
	defer span.End()

	release := s.locks.acquire(configKey)
	defer release()

	var cfg domain.Config
	err := s.store.InTx(ctx, func(tx storage.Store) error {
		if _, err := tx.GetConfig(ctx); err == nil {
			return apperrors.New(apperrors.CodeInvalidEscrowStatus, "vault config is already initialized")
		} else if !errors.Is(err, storage.ErrNotFound) {
			return err
		}
		created, err := domain.NewConfig(authority, mints, minEscrowAmount, maxEscrowDuration, s.now())
		if err != nil {
			return err
		}
		if err := tx.PutConfig(ctx, created); err != nil {
			return err
		}
		cfg = created
		return nil
	})
	if err != nil {
		return domain.Config{}, err
	}

	log.Printf("vault config initialized authority=%s mints=%d min_escrow=%d", authority, len(mints), minEscrowAmount)
	return cfg, nil
}

// SetConfigPaused flips the global escrow pause switch. Authority only.
func (s *Service) SetConfigPaused(ctx context.Context, caller Caller, paused bool) (domain.Config, error) {
	cfg, err := s.mutateConfig(ctx, "vault.SetConfigPaused", caller, func(cfg *domain.Config) error {
		cfg.Paused = paused
		return nil
	})
	if err != nil {
		return domain.Config{}, err
	}
	log.Printf("vault config pause toggled paused=%t version=%d", cfg.Paused, cfg.Version)
	return cfg, nil
}

// AddMint adds or replaces a mint on the allow list. Authority only.
func (s *Service) AddMint(ctx context.Context, caller Caller, mint domain.MintInfo) (domain.Config, error) {
	cfg, err := s.mutateConfig(ctx, "vault.AddMint", caller, func(cfg *domain.Config) error {
		if mint.Address == "" {
			return apperrors.New(apperrors.CodeUnsupportedMint, "mint address is required")
		}
		for i := range cfg.Mints {
			if cfg.Mints[i].Address == mint.Address {
				cfg.Mints[i] = mint
				return nil
			}
		}
		cfg.Mints = append(cfg.Mints, mint)
		return nil
	})
	if err != nil {
		return domain.Config{}, err
	}
	log.Printf("vault config mint added mint=%s version=%d", mint.Address, cfg.Version)
	return cfg, nil
}

func (s *Service) mutateConfig(ctx context.Context, spanName string, caller Caller, mutate func(*domain.Config) error) (domain.Config, error) {
	if err := s.ready(); err != nil {
		return domain.Config{}, err
	}
	ctx, span := s.tracer.Start(ctx, spanName)
	defer span.End()

	release := s.locks.acquire(configKey)
	defer release()

	var cfg domain.Config
	err := s.store.InTx(ctx, func(tx storage.Store) error {
		loaded, err := loadConfig(ctx, tx)
		if err != nil {
			return err
		}
		if caller.Account != loaded.Authority {
			return apperrors.New(apperrors.CodeUnauthorized, "only the config authority may change policy")
		}
		if err := mutate(&loaded); err != nil {
			return err
		}
		loaded.Version++
		loaded.UpdatedAt = s.now()
		if err := tx.PutConfig(ctx, loaded); err != nil {
			return err
		}
		cfg = loaded
		return nil
	})
	if err != nil {
		return domain.Config{}, err
	}
	return cfg, nil
}

// GetConfig returns the singleton config record.
func (s *Service) GetConfig(ctx context.Context) (domain.Config, error) {
	if err := s.ready(); err != nil {
		return domain.Config{}, err
	}
	return loadConfig(ctx, s.store)
}
