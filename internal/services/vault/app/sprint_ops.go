package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	apperrors "github.com/ANISH-SR/StreamVault/internal/errors"
	"github.com/ANISH-SR/StreamVault/internal/services/vault/domain"
	"github.com/ANISH-SR/StreamVault/internal/services/vault/storage"
)

func sprintKey(employer string, sprintID uint64) string {
	return fmt.Sprintf("sprint/%s/%d", employer, sprintID)
}

func loadSprint(ctx context.Context, tx storage.Store, employer string, sprintID uint64) (domain.Sprint, error) {
	sprint, err := tx.GetSprint(ctx, employer, sprintID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return domain.Sprint{}, apperrors.New(apperrors.CodeNotFound, "sprint not found")
		}
		return domain.Sprint{}, err
	}
	return sprint, nil
}

func loadConfig(ctx context.Context, tx storage.Store) (domain.Config, error) {
	cfg, err := tx.GetConfig(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return domain.Config{}, apperrors.New(apperrors.CodeNotFound, "vault config is not initialized")
		}
		return domain.Config{}, err
	}
	return cfg, nil
}

// CreateSprint validates input against the vault config, provisions the
// sprint's vault token account, and persists the unfunded record.
func (s *Service) CreateSprint(ctx context.Context, input domain.CreateSprintInput) (domain.Sprint, error) {
	if err := s.ready(); err != nil {
		return domain.Sprint{}, err
	}
	ctx, span := s.tracer.Start(ctx, "vault.CreateSprint")
	defer span.End()

	release := s.locks.acquire(sprintKey(input.Employer, input.SprintID))
	defer release()

	var sprint domain.Sprint
	err := s.store.InTx(ctx, func(tx storage.Store) error {
		cfg, err := loadConfig(ctx, tx)
		if err != nil {
			return err
		}
		if !cfg.SupportsMint(input.Mint) {
			return apperrors.WithMetadata(apperrors.CodeUnsupportedMint,
				"mint is not on the allow list",
				map[string]string{"Mint": input.Mint})
		}
		if _, err := tx.GetSprint(ctx, input.Employer, input.SprintID); err == nil {
			return apperrors.New(apperrors.CodeSprintAlreadyExists, "sprint already exists")
		} else if !errors.Is(err, storage.ErrNotFound) {
			return err
		}

		created, err := domain.NewSprint(input, s.now())
		if err != nil {
			return err
		}
		vaultAccount, err := domain.NewID()
		if err != nil {
			return fmt.Errorf("new vault account id: %w", err)
		}
		created.Vault = vaultAccount
		if err := tx.CreateAccount(ctx, vaultAccount, sprintKey(created.Employer, created.SprintID), created.Mint); err != nil {
			return err
		}
		if err := tx.PutSprint(ctx, created); err != nil {
			return err
		}
		sprint = created
		return nil
	})
	if err != nil {
		return domain.Sprint{}, err
	}

	log.Printf("sprint created employer=%s sprint_id=%d freelancer=%s total=%d curve=%s",
		sprint.Employer, sprint.SprintID, sprint.Freelancer, sprint.TotalAmount, sprint.Acceleration)
	return sprint, nil
}

// FundSprint moves the exact sprint total from the employer's token account
// into the sprint vault. A sprint accepts a single deposit before its window
// opens.
func (s *Service) FundSprint(ctx context.Context, caller Caller, employer string, sprintID uint64, fromAccount string, amount uint64) (domain.Sprint, error) {
	if err := s.ready(); err != nil {
		return domain.Sprint{}, err
	}
	ctx, span := s.tracer.Start(ctx, "vault.FundSprint")
	defer span.End()

	release := s.locks.acquire(sprintKey(employer, sprintID))
	defer release()

	var sprint domain.Sprint
	err := s.store.InTx(ctx, func(tx storage.Store) error {
		loaded, err := loadSprint(ctx, tx, employer, sprintID)
		if err != nil {
			return err
		}
		if caller.Account != loaded.Employer {
			return apperrors.New(apperrors.CodeUnauthorized, "only the employer may fund the sprint")
		}
		if err := loaded.Fund(s.now(), amount); err != nil {
			return err
		}
		if err := tx.Transfer(ctx, fromAccount, loaded.Vault, amount); err != nil {
			return err
		}
		if err := tx.PutSprint(ctx, loaded); err != nil {
			return err
		}
		sprint = loaded
		return nil
	})
	if err != nil {
		return domain.Sprint{}, err
	}

	log.Printf("sprint funded employer=%s sprint_id=%d amount=%d", employer, sprintID, amount)
	return sprint, nil
}

// WithdrawStreamed transfers the vested, unwithdrawn balance to the
// freelancer. cap limits the transfer when non-zero. Returns the amount
// moved.
func (s *Service) WithdrawStreamed(ctx context.Context, caller Caller, employer string, sprintID uint64, toAccount string, cap uint64) (uint64, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}
	ctx, span := s.tracer.Start(ctx, "vault.WithdrawStreamed")
	defer span.End()

	release := s.locks.acquire(sprintKey(employer, sprintID))
	defer release()

	var amount uint64
	err := s.store.InTx(ctx, func(tx storage.Store) error {
		sprint, err := loadSprint(ctx, tx, employer, sprintID)
		if err != nil {
			return err
		}
		if caller.Account != sprint.Freelancer {
			return apperrors.New(apperrors.CodeUnauthorized, "only the freelancer may withdraw streamed funds")
		}
		cfg, err := loadConfig(ctx, tx)
		if err != nil {
			return err
		}

		moved, err := sprint.Withdraw(s.now(), cap, cfg.MinWithdrawal(sprint.Mint))
		if err != nil {
			return err
		}
		if err := tx.Transfer(ctx, sprint.Vault, toAccount, moved); err != nil {
			return err
		}
		if err := tx.PutSprint(ctx, sprint); err != nil {
			return err
		}
		amount = moved
		return nil
	})
	if err != nil {
		return 0, err
	}

	log.Printf("sprint withdrawal employer=%s sprint_id=%d amount=%d", employer, sprintID, amount)
	return amount, nil
}

// PauseStream freezes the sprint clock. Employer only.
func (s *Service) PauseStream(ctx context.Context, caller Caller, employer string, sprintID uint64) (domain.Sprint, error) {
	return s.toggleStream(ctx, "vault.PauseStream", caller, employer, sprintID, (*domain.Sprint).Pause)
}

// ResumeStream unfreezes the sprint clock. Employer only.
func (s *Service) ResumeStream(ctx context.Context, caller Caller, employer string, sprintID uint64) (domain.Sprint, error) {
	return s.toggleStream(ctx, "vault.ResumeStream", caller, employer, sprintID, (*domain.Sprint).Resume)
}

func (s *Service) toggleStream(ctx context.Context, spanName string, caller Caller, employer string, sprintID uint64, apply func(*domain.Sprint, time.Time) error) (domain.Sprint, error) {
	if err := s.ready(); err != nil {
		return domain.Sprint{}, err
	}
	ctx, span := s.tracer.Start(ctx, spanName)
	defer span.End()

	release := s.locks.acquire(sprintKey(employer, sprintID))
	defer release()

	var sprint domain.Sprint
	err := s.store.InTx(ctx, func(tx storage.Store) error {
		loaded, err := loadSprint(ctx, tx, employer, sprintID)
		if err != nil {
			return err
		}
		if caller.Account != loaded.Employer {
			return apperrors.New(apperrors.CodeUnauthorized, "only the employer may pause or resume the stream")
		}
		if err := apply(&loaded, s.now()); err != nil {
			return err
		}
		if err := tx.PutSprint(ctx, loaded); err != nil {
			return err
		}
		sprint = loaded
		return nil
	})
	if err != nil {
		return domain.Sprint{}, err
	}

	log.Printf("sprint clock toggled employer=%s sprint_id=%d paused=%t count=%d",
		employer, sprintID, sprint.Timeline.IsPaused, sprint.Timeline.PauseResumeCount)
	return sprint, nil
}

// CloseSprint refunds the residual vault balance to the employer's account
// and deletes the record plus its vault token account. Returns the refund.
func (s *Service) CloseSprint(ctx context.Context, caller Caller, employer string, sprintID uint64, refundAccount string) (uint64, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}
	ctx, span := s.tracer.Start(ctx, "vault.CloseSprint")
	defer span.End()

	release := s.locks.acquire(sprintKey(employer, sprintID))
	defer release()

	var refund uint64
	err := s.store.InTx(ctx, func(tx storage.Store) error {
		sprint, err := loadSprint(ctx, tx, employer, sprintID)
		if err != nil {
			return err
		}
		if caller.Account != sprint.Employer {
			return apperrors.New(apperrors.CodeUnauthorized, "only the employer may close the sprint")
		}
		if err := sprint.CloseEligible(s.now()); err != nil {
			return err
		}

		residual, err := tx.Balance(ctx, sprint.Vault)
		if err != nil {
			return err
		}
		if residual > 0 {
			if err := tx.Transfer(ctx, sprint.Vault, refundAccount, residual); err != nil {
				return err
			}
		}
		if err := tx.DeleteAccount(ctx, sprint.Vault); err != nil {
			return err
		}
		if err := tx.DeleteSprint(ctx, employer, sprintID); err != nil {
			return err
		}
		refund = residual
		return nil
	})
	if err != nil {
		return 0, err
	}

	log.Printf("sprint closed employer=%s sprint_id=%d refund=%d", employer, sprintID, refund)
	return refund, nil
}

// GetSprint returns one sprint record.
func (s *Service) GetSprint(ctx context.Context, employer string, sprintID uint64) (domain.Sprint, error) {
	if err := s.ready(); err != nil {
		return domain.Sprint{}, err
	}
	return loadSprint(ctx, s.store, employer, sprintID)
}

// ListSprints returns all sprints for an employer.
func (s *Service) ListSprints(ctx context.Context, employer string) ([]domain.Sprint, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.store.ListSprints(ctx, employer)
}
