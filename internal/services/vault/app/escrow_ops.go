package app

import (
	"context"
	"errors"
	"fmt"
	"log"

	apperrors "github.com/ANISH-SR/StreamVault/internal/errors"
	"github.com/ANISH-SR/StreamVault/internal/services/vault/domain"
	"github.com/ANISH-SR/StreamVault/internal/services/vault/storage"
)

func escrowKey(ownerProgram string, vaultID uint64) string {
	return fmt.Sprintf("escrow/%s/%d", ownerProgram, vaultID)
}

func loadEscrow(ctx context.Context, tx storage.Store, ownerProgram string, vaultID uint64) (domain.Escrow, error) {
	escrow, err := tx.GetEscrow(ctx, ownerProgram, vaultID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return domain.Escrow{}, apperrors.New(apperrors.CodeNotFound, "escrow vault not found")
		}
		return domain.Escrow{}, err
	}
	return escrow, nil
}

// authorizeEscrowCaller enforces the delegated-control pair when the call
// arrives through a program context. A caller without a program bypasses
// the pair check; per-role checks still apply afterwards.
func authorizeEscrowCaller(escrow *domain.Escrow, caller Caller) error {
	if caller.Program == "" {
		return nil
	}
	return escrow.AuthorizeOwner(caller.Program, caller.Account)
}

// CreateEscrow validates input against the config record, provisions the
// vault token account, and persists the initialized escrow.
func (s *Service) CreateEscrow(ctx context.Context, input domain.CreateEscrowInput) (domain.Escrow, error) {
	if err := s.ready(); err != nil {
		return domain.Escrow{}, err
	}
	ctx, span := s.tracer.Start(ctx, "vault.CreateEscrow")
	defer span.End()

	release := s.locks.acquire(escrowKey(input.OwnerProgram, input.VaultID))
	defer release()

	var escrow domain.Escrow
	err := s.store.InTx(ctx, func(tx storage.Store) error {
		cfg, err := loadConfig(ctx, tx)
		if err != nil {
			return err
		}
		if _, err := tx.GetEscrow(ctx, input.OwnerProgram, input.VaultID); err == nil {
			return apperrors.New(apperrors.CodeInvalidEscrowStatus, "escrow vault already exists")
		} else if !errors.Is(err, storage.ErrNotFound) {
			return err
		}

		created, err := domain.NewEscrow(input, cfg, s.now())
		if err != nil {
			return err
		}
		vaultAccount, err := domain.NewID()
		if err != nil {
			return fmt.Errorf("new vault account id: %w", err)
		}
		created.VaultTokenAccount = vaultAccount
		if err := tx.CreateAccount(ctx, vaultAccount, escrowKey(created.OwnerProgram, created.VaultID), created.TokenMint); err != nil {
			return err
		}
		if err := tx.PutEscrow(ctx, created); err != nil {
			return err
		}
		escrow = created
		return nil
	})
	if err != nil {
		return domain.Escrow{}, err
	}

	log.Printf("escrow created owner_program=%s vault_id=%d depositor=%s beneficiary=%s total=%d schedule=%d",
		escrow.OwnerProgram, escrow.VaultID, escrow.Depositor, escrow.Beneficiary, escrow.TotalAmount, escrow.Schedule.Kind)
	return escrow, nil
}

// DepositFunds moves a deposit from the depositor's token account into the
// escrow vault. Full funding activates the release schedule.
func (s *Service) DepositFunds(ctx context.Context, caller Caller, ownerProgram string, vaultID uint64, fromAccount string, amount uint64) (domain.Escrow, error) {
	if err := s.ready(); err != nil {
		return domain.Escrow{}, err
	}
	ctx, span := s.tracer.Start(ctx, "vault.DepositFunds")
	defer span.End()

	release := s.locks.acquire(escrowKey(ownerProgram, vaultID))
	defer release()

	var escrow domain.Escrow
	err := s.store.InTx(ctx, func(tx storage.Store) error {
		loaded, err := loadEscrow(ctx, tx, ownerProgram, vaultID)
		if err != nil {
			return err
		}
		if err := authorizeEscrowCaller(&loaded, caller); err != nil {
			return err
		}
		if caller.Account != loaded.Depositor {
			return apperrors.New(apperrors.CodeUnauthorized, "only the depositor may fund the escrow")
		}
		if err := loaded.Deposit(s.now(), amount); err != nil {
			return err
		}
		if err := tx.Transfer(ctx, fromAccount, loaded.VaultTokenAccount, amount); err != nil {
			return err
		}
		if err := tx.PutEscrow(ctx, loaded); err != nil {
			return err
		}
		escrow = loaded
		return nil
	})
	if err != nil {
		return domain.Escrow{}, err
	}

	log.Printf("escrow deposit owner_program=%s vault_id=%d amount=%d status=%d",
		ownerProgram, vaultID, amount, escrow.Status)
	return escrow, nil
}

// WithdrawAvailable transfers the schedule-unlocked balance to the caller's
// token account. cap limits the transfer when non-zero. Returns the amount
// moved.
func (s *Service) WithdrawAvailable(ctx context.Context, caller Caller, ownerProgram string, vaultID uint64, toAccount string, cap uint64) (uint64, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}
	ctx, span := s.tracer.Start(ctx, "vault.WithdrawAvailable")
	defer span.End()

	release := s.locks.acquire(escrowKey(ownerProgram, vaultID))
	defer release()

	var amount uint64
	err := s.store.InTx(ctx, func(tx storage.Store) error {
		escrow, err := loadEscrow(ctx, tx, ownerProgram, vaultID)
		if err != nil {
			return err
		}
		if err := authorizeEscrowCaller(&escrow, caller); err != nil {
			return err
		}
		if !escrow.CanWithdraw(caller.Account) {
			return apperrors.New(apperrors.CodeUnauthorized, "caller is not a release authority for this escrow")
		}

		moved, err := escrow.Withdraw(s.now(), cap)
		if err != nil {
			return err
		}
		if err := tx.Transfer(ctx, escrow.VaultTokenAccount, toAccount, moved); err != nil {
			return err
		}
		if err := tx.PutEscrow(ctx, escrow); err != nil {
			return err
		}
		amount = moved
		return nil
	})
	if err != nil {
		return 0, err
	}

	log.Printf("escrow withdrawal owner_program=%s vault_id=%d amount=%d", ownerProgram, vaultID, amount)
	return amount, nil
}

// ReleaseMilestone marks a milestone completed, unlocking its amount. Only
// the milestone's required-approval identity may release it.
func (s *Service) ReleaseMilestone(ctx context.Context, caller Caller, ownerProgram string, vaultID uint64, milestoneID uint32) (domain.Escrow, error) {
	if err := s.ready(); err != nil {
		return domain.Escrow{}, err
	}
	ctx, span := s.tracer.Start(ctx, "vault.ReleaseMilestone")
	defer span.End()

	release := s.locks.acquire(escrowKey(ownerProgram, vaultID))
	defer release()

	var escrow domain.Escrow
	err := s.store.InTx(ctx, func(tx storage.Store) error {
		loaded, err := loadEscrow(ctx, tx, ownerProgram, vaultID)
		if err != nil {
			return err
		}
		if err := authorizeEscrowCaller(&loaded, caller); err != nil {
			return err
		}

		schedule := loaded.Schedule.Clone()
		if err := schedule.ReleaseMilestone(milestoneID, caller.Account); err != nil {
			return err
		}
		loaded.Schedule = schedule
		loaded.UpdatedAt = s.now()
		if err := tx.PutEscrow(ctx, loaded); err != nil {
			return err
		}
		escrow = loaded
		return nil
	})
	if err != nil {
		return domain.Escrow{}, err
	}

	log.Printf("escrow milestone released owner_program=%s vault_id=%d milestone=%d",
		ownerProgram, vaultID, milestoneID)
	return escrow, nil
}

// UpdateReleaseSchedule replaces the escrow's release schedule. Depositor
// or arbiter only.
func (s *Service) UpdateReleaseSchedule(ctx context.Context, caller Caller, ownerProgram string, vaultID uint64, schedule domain.ReleaseSchedule) (domain.Escrow, error) {
	if err := s.ready(); err != nil {
		return domain.Escrow{}, err
	}
	ctx, span := s.tracer.Start(ctx, "vault.UpdateReleaseSchedule")
	defer span.End()

	release := s.locks.acquire(escrowKey(ownerProgram, vaultID))
	defer release()

	var escrow domain.Escrow
	err := s.store.InTx(ctx, func(tx storage.Store) error {
		loaded, err := loadEscrow(ctx, tx, ownerProgram, vaultID)
		if err != nil {
			return err
		}
		if err := authorizeEscrowCaller(&loaded, caller); err != nil {
			return err
		}
		if caller.Account != loaded.Depositor && (loaded.Arbiter == "" || caller.Account != loaded.Arbiter) {
			return apperrors.New(apperrors.CodeUnauthorized, "only the depositor or arbiter may change the schedule")
		}
		cfg, err := loadConfig(ctx, tx)
		if err != nil {
			return err
		}
		if err := loaded.UpdateSchedule(schedule, cfg, s.now()); err != nil {
			return err
		}
		if err := tx.PutEscrow(ctx, loaded); err != nil {
			return err
		}
		escrow = loaded
		return nil
	})
	if err != nil {
		return domain.Escrow{}, err
	}

	log.Printf("escrow schedule updated owner_program=%s vault_id=%d kind=%d",
		ownerProgram, vaultID, escrow.Schedule.Kind)
	return escrow, nil
}

// CloseEscrow refunds the undistributed balance to the depositor's account
// and deletes the record plus its vault token account. Returns the refund.
func (s *Service) CloseEscrow(ctx context.Context, caller Caller, ownerProgram string, vaultID uint64, refundAccount string) (uint64, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}
	ctx, span := s.tracer.Start(ctx, "vault.CloseEscrow")
	defer span.End()

	release := s.locks.acquire(escrowKey(ownerProgram, vaultID))
	defer release()

	var refund uint64
	err := s.store.InTx(ctx, func(tx storage.Store) error {
		escrow, err := loadEscrow(ctx, tx, ownerProgram, vaultID)
		if err != nil {
			return err
		}
		if err := authorizeEscrowCaller(&escrow, caller); err != nil {
			return err
		}
		if caller.Account != escrow.Depositor {
			return apperrors.New(apperrors.CodeUnauthorized, "only the depositor may close the escrow")
		}

		residual := escrow.CloseRefund()
		if residual > 0 {
			if err := tx.Transfer(ctx, escrow.VaultTokenAccount, refundAccount, residual); err != nil {
				return err
			}
		}
		if err := tx.DeleteAccount(ctx, escrow.VaultTokenAccount); err != nil {
			return err
		}
		if err := tx.DeleteEscrow(ctx, ownerProgram, vaultID); err != nil {
			return err
		}
		refund = residual
		return nil
	})
	if err != nil {
		return 0, err
	}

	log.Printf("escrow closed owner_program=%s vault_id=%d refund=%d", ownerProgram, vaultID, refund)
	return refund, nil
}

// GetEscrow returns one escrow record.
func (s *Service) GetEscrow(ctx context.Context, ownerProgram string, vaultID uint64) (domain.Escrow, error) {
	if err := s.ready(); err != nil {
		return domain.Escrow{}, err
	}
	return loadEscrow(ctx, s.store, ownerProgram, vaultID)
}

// ListEscrows returns all escrows funded by a depositor.
func (s *Service) ListEscrows(ctx context.Context, depositor string) ([]domain.Escrow, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.store.ListEscrows(ctx, depositor)
}
