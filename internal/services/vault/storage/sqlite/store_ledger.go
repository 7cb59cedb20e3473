package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/ANISH-SR/StreamVault/internal/errors"
	"github.com/ANISH-SR/StreamVault/internal/services/vault/storage"
)

// CreateAccount registers a token account with a zero balance.
func (s *Store) CreateAccount(ctx context.Context, id, owner, mint string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.q == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("account id is required")
	}

	_, err := s.q.ExecContext(
		ctx,
		`INSERT INTO token_accounts (id, owner, mint, balance, frozen, created_at)
		 VALUES (?, ?, ?, 0, 0, ?)`,
		id,
		owner,
		mint,
		toMillis(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("create token account: %w", err)
	}
	return nil
}

// DeleteAccount removes an empty token account. Deleting an account that
// still carries a balance is a caller bug and is rejected.
func (s *Store) DeleteAccount(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.q == nil {
		return fmt.Errorf("storage is not configured")
	}

	balance, _, err := s.accountState(ctx, id)
	if err != nil {
		return err
	}
	if balance != 0 {
		return apperrors.WithMetadata(apperrors.CodeInsufficientFunds,
			"token account still carries a balance",
			map[string]string{"Account": id, "Balance": strconv.FormatUint(balance, 10)})
	}

	if _, err := s.q.ExecContext(ctx, `DELETE FROM token_accounts WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete token account: %w", err)
	}
	return nil
}

// Transfer moves value between two token accounts. Either side being frozen
// or the source balance falling short fails the transfer without moving
// anything.
func (s *Store) Transfer(ctx context.Context, from, to string, amount uint64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.q == nil {
		return fmt.Errorf("storage is not configured")
	}
	if amount == 0 {
		return apperrors.New(apperrors.CodeInvalidAmount, "transfer amount must be positive")
	}

	fromBalance, fromFrozen, err := s.accountState(ctx, from)
	if err != nil {
		return err
	}
	_, toFrozen, err := s.accountState(ctx, to)
	if err != nil {
		return err
	}
	if fromFrozen || toFrozen {
		frozen := from
		if toFrozen {
			frozen = to
		}
		return apperrors.WithMetadata(apperrors.CodeFrozenTokenAccount,
			"token account is frozen",
			map[string]string{"Account": frozen})
	}
	if fromBalance < amount {
		return apperrors.WithMetadata(apperrors.CodeInsufficientFunds,
			"source balance is below the transfer amount",
			map[string]string{
				"Account": from,
				"Balance": strconv.FormatUint(fromBalance, 10),
				"Amount":  strconv.FormatUint(amount, 10),
			})
	}

	if _, err := s.q.ExecContext(
		ctx,
		`UPDATE token_accounts SET balance = balance - ? WHERE id = ?`,
		int64(amount), from,
	); err != nil {
		return fmt.Errorf("debit token account: %w", err)
	}
	if _, err := s.q.ExecContext(
		ctx,
		`UPDATE token_accounts SET balance = balance + ? WHERE id = ?`,
		int64(amount), to,
	); err != nil {
		return fmt.Errorf("credit token account: %w", err)
	}
	return nil
}

// Credit mints value into a token account. It exists for funding flows and
// tests; real deposits arrive by Transfer.
func (s *Store) Credit(ctx context.Context, id string, amount uint64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.q == nil {
		return fmt.Errorf("storage is not configured")
	}

	result, err := s.q.ExecContext(
		ctx,
		`UPDATE token_accounts SET balance = balance + ? WHERE id = ?`,
		int64(amount), id,
	)
	if err != nil {
		return fmt.Errorf("credit token account: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("credit rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("token account %s: %w", id, storage.ErrNotFound)
	}
	return nil
}

// Balance returns the current balance of a token account.
func (s *Store) Balance(ctx context.Context, id string) (uint64, error) {
	balance, _, err := s.accountState(ctx, id)
	return balance, err
}

// IsFrozen reports whether a token account is frozen.
func (s *Store) IsFrozen(ctx context.Context, id string) (bool, error) {
	_, frozen, err := s.accountState(ctx, id)
	return frozen, err
}

// SetFrozen freezes or thaws a token account.
func (s *Store) SetFrozen(ctx context.Context, id string, frozen bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.q == nil {
		return fmt.Errorf("storage is not configured")
	}

	result, err := s.q.ExecContext(
		ctx,
		`UPDATE token_accounts SET frozen = ? WHERE id = ?`,
		boolToInt(frozen), id,
	)
	if err != nil {
		return fmt.Errorf("set frozen: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set frozen rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("token account %s: %w", id, storage.ErrNotFound)
	}
	return nil
}

func (s *Store) accountState(ctx context.Context, id string) (uint64, bool, error) {
	if err := ctx.Err(); err != nil {
		return 0, false, err
	}
	if s == nil || s.q == nil {
		return 0, false, fmt.Errorf("storage is not configured")
	}

	var (
		balance int64
		frozen  int64
	)
	err := s.q.QueryRowContext(
		ctx,
		`SELECT balance, frozen FROM token_accounts WHERE id = ?`,
		id,
	).Scan(&balance, &frozen)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, fmt.Errorf("token account %s: %w", id, storage.ErrNotFound)
		}
		return 0, false, fmt.Errorf("load token account: %w", err)
	}
	return uint64(balance), frozen != 0, nil
}
