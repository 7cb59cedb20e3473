package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ANISH-SR/StreamVault/internal/services/vault/domain"
	"github.com/ANISH-SR/StreamVault/internal/services/vault/storage"
)

// PutEscrow upserts one escrow record. The release schedule is stored as a
// JSON document in the schedule column.
func (s *Store) PutEscrow(ctx context.Context, escrow domain.Escrow) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.q == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(escrow.OwnerProgram) == "" {
		return fmt.Errorf("owner program is required")
	}

	schedule, err := json.Marshal(escrow.Schedule)
	if err != nil {
		return fmt.Errorf("encode release schedule: %w", err)
	}
	var expiresAt any
	if !escrow.ExpiresAt.IsZero() {
		expiresAt = toMillis(escrow.ExpiresAt)
	}

	_, err = s.q.ExecContext(
		ctx,
		`INSERT INTO escrows (
		   owner_program, vault_id, owner_account, depositor, beneficiary,
		   arbiter, token_mint, vault_token_account,
		   total_amount, deposited_amount, withdrawn_amount,
		   schedule, authority, status, created_at, updated_at, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(owner_program, vault_id) DO UPDATE SET
		   deposited_amount = excluded.deposited_amount,
		   withdrawn_amount = excluded.withdrawn_amount,
		   schedule = excluded.schedule,
		   status = excluded.status,
		   updated_at = excluded.updated_at`,
		escrow.OwnerProgram,
		int64(escrow.VaultID),
		escrow.OwnerAccount,
		escrow.Depositor,
		escrow.Beneficiary,
		escrow.Arbiter,
		escrow.TokenMint,
		escrow.VaultTokenAccount,
		int64(escrow.TotalAmount),
		int64(escrow.DepositedAmount),
		int64(escrow.WithdrawnAmount),
		string(schedule),
		int64(escrow.Authority),
		int64(escrow.Status),
		toMillis(escrow.CreatedAt),
		toMillis(escrow.UpdatedAt),
		expiresAt,
	)
	if err != nil {
		return fmt.Errorf("put escrow: %w", err)
	}
	return nil
}

// GetEscrow returns one escrow record.
func (s *Store) GetEscrow(ctx context.Context, ownerProgram string, vaultID uint64) (domain.Escrow, error) {
	if err := ctx.Err(); err != nil {
		return domain.Escrow{}, err
	}
	if s == nil || s.q == nil {
		return domain.Escrow{}, fmt.Errorf("storage is not configured")
	}

	row := s.q.QueryRowContext(
		ctx,
		`SELECT owner_program, vault_id, owner_account, depositor, beneficiary,
		        arbiter, token_mint, vault_token_account,
		        total_amount, deposited_amount, withdrawn_amount,
		        schedule, authority, status, created_at, updated_at, expires_at
		 FROM escrows
		 WHERE owner_program = ? AND vault_id = ?`,
		ownerProgram,
		int64(vaultID),
	)
	return scanEscrow(row)
}

// DeleteEscrow removes one escrow record.
func (s *Store) DeleteEscrow(ctx context.Context, ownerProgram string, vaultID uint64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.q == nil {
		return fmt.Errorf("storage is not configured")
	}

	result, err := s.q.ExecContext(
		ctx,
		`DELETE FROM escrows WHERE owner_program = ? AND vault_id = ?`,
		ownerProgram,
		int64(vaultID),
	)
	if err != nil {
		return fmt.Errorf("delete escrow: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete escrow rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ListEscrows returns all escrows funded by a depositor ordered by id.
func (s *Store) ListEscrows(ctx context.Context, depositor string) ([]domain.Escrow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.q == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.q.QueryContext(
		ctx,
		`SELECT owner_program, vault_id, owner_account, depositor, beneficiary,
		        arbiter, token_mint, vault_token_account,
		        total_amount, deposited_amount, withdrawn_amount,
		        schedule, authority, status, created_at, updated_at, expires_at
		 FROM escrows
		 WHERE depositor = ?
		 ORDER BY owner_program, vault_id`,
		depositor,
	)
	if err != nil {
		return nil, fmt.Errorf("list escrows: %w", err)
	}
	defer rows.Close()

	var escrows []domain.Escrow
	for rows.Next() {
		escrow, err := scanEscrow(rows)
		if err != nil {
			return nil, err
		}
		escrows = append(escrows, escrow)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate escrows: %w", err)
	}
	return escrows, nil
}

func scanEscrow(row rowScanner) (domain.Escrow, error) {
	var (
		escrow                      domain.Escrow
		vaultID                     int64
		total, deposited, withdrawn int64
		schedule                    string
		authority, status           int64
		createdMs, updatedMs        int64
		expiresMs                   sql.NullInt64
	)
	err := row.Scan(
		&escrow.OwnerProgram,
		&vaultID,
		&escrow.OwnerAccount,
		&escrow.Depositor,
		&escrow.Beneficiary,
		&escrow.Arbiter,
		&escrow.TokenMint,
		&escrow.VaultTokenAccount,
		&total,
		&deposited,
		&withdrawn,
		&schedule,
		&authority,
		&status,
		&createdMs,
		&updatedMs,
		&expiresMs,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Escrow{}, storage.ErrNotFound
		}
		return domain.Escrow{}, fmt.Errorf("scan escrow: %w", err)
	}

	if err := json.Unmarshal([]byte(schedule), &escrow.Schedule); err != nil {
		return domain.Escrow{}, fmt.Errorf("decode release schedule: %w", err)
	}
	escrow.VaultID = uint64(vaultID)
	escrow.TotalAmount = uint64(total)
	escrow.DepositedAmount = uint64(deposited)
	escrow.WithdrawnAmount = uint64(withdrawn)
	escrow.Authority = domain.ReleaseAuthority(authority)
	escrow.Status = domain.EscrowStatus(status)
	escrow.CreatedAt = fromMillis(createdMs)
	escrow.UpdatedAt = fromMillis(updatedMs)
	if expiresMs.Valid {
		escrow.ExpiresAt = fromMillis(expiresMs.Int64)
	}
	return escrow, nil
}
