package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ANISH-SR/StreamVault/internal/services/vault/domain"
	"github.com/ANISH-SR/StreamVault/internal/services/vault/storage"
)

// PutConfig upserts the singleton config record.
func (s *Store) PutConfig(ctx context.Context, cfg domain.Config) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.q == nil {
		return fmt.Errorf("storage is not configured")
	}

	mints, err := json.Marshal(cfg.Mints)
	if err != nil {
		return fmt.Errorf("encode mint list: %w", err)
	}

	_, err = s.q.ExecContext(
		ctx,
		`INSERT INTO vault_config (
		   id, authority, mints, min_escrow_amount, max_escrow_duration_ms,
		   paused, version, created_at, updated_at)
		 VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   authority = excluded.authority,
		   mints = excluded.mints,
		   min_escrow_amount = excluded.min_escrow_amount,
		   max_escrow_duration_ms = excluded.max_escrow_duration_ms,
		   paused = excluded.paused,
		   version = excluded.version,
		   updated_at = excluded.updated_at`,
		cfg.Authority,
		string(mints),
		int64(cfg.MinEscrowAmount),
		cfg.MaxEscrowDuration.Milliseconds(),
		boolToInt(cfg.Paused),
		int64(cfg.Version),
		toMillis(cfg.CreatedAt),
		toMillis(cfg.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("put config: %w", err)
	}
	return nil
}

// GetConfig returns the singleton config record.
func (s *Store) GetConfig(ctx context.Context) (domain.Config, error) {
	if err := ctx.Err(); err != nil {
		return domain.Config{}, err
	}
	if s == nil || s.q == nil {
		return domain.Config{}, fmt.Errorf("storage is not configured")
	}

	var (
		cfg                   domain.Config
		mints                 string
		minEscrow, durationMs int64
		paused, version       int64
		createdMs, updatedMs  int64
	)
	err := s.q.QueryRowContext(
		ctx,
		`SELECT authority, mints, min_escrow_amount, max_escrow_duration_ms,
		        paused, version, created_at, updated_at
		 FROM vault_config
		 WHERE id = 1`,
	).Scan(&cfg.Authority, &mints, &minEscrow, &durationMs, &paused, &version, &createdMs, &updatedMs)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Config{}, storage.ErrNotFound
		}
		return domain.Config{}, fmt.Errorf("get config: %w", err)
	}

	if err := json.Unmarshal([]byte(mints), &cfg.Mints); err != nil {
		return domain.Config{}, fmt.Errorf("decode mint list: %w", err)
	}
	cfg.MinEscrowAmount = uint64(minEscrow)
	cfg.MaxEscrowDuration = time.Duration(durationMs) * time.Millisecond
	cfg.Paused = paused != 0
	cfg.Version = uint32(version)
	cfg.CreatedAt = fromMillis(createdMs)
	cfg.UpdatedAt = fromMillis(updatedMs)
	return cfg, nil
}
