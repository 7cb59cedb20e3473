package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	apperrors "github.com/ANISH-SR/StreamVault/internal/errors"
	"github.com/ANISH-SR/StreamVault/internal/services/vault/domain"
	vaultsqlite "github.com/ANISH-SR/StreamVault/internal/services/vault/storage/sqlite"
)

const (
	employer   = "employer-1"
	freelancer = "freelancer-1"
	authority  = "authority-1"
	mint       = "usdc"
)

type fixture struct {
	service *Service
	store   *vaultsqlite.Store
	now     time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store, err := vaultsqlite.Open(filepath.Join(t.TempDir(), "vault.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})

	f := &fixture{
		store: store,
		now:   time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC),
	}
	f.service = NewService(store)
	f.service.clock = func() time.Time { return f.now }
	return f
}

func (f *fixture) advance(d time.Duration) {
	f.now = f.now.Add(d)
}

func (f *fixture) initConfig(t *testing.T) {
	t.Helper()
	_, err := f.service.InitializeConfig(context.Background(), authority, []domain.MintInfo{
		{Address: mint, Decimals: 6, MinWithdrawal: 10_000_000},
	}, 1_000, 90*24*time.Hour)
	if err != nil {
		t.Fatalf("initialize config: %v", err)
	}
}

func (f *fixture) fundAccount(t *testing.T, id string, amount uint64) {
	t.Helper()
	ctx := context.Background()
	if err := f.store.CreateAccount(ctx, id, id, mint); err != nil {
		t.Fatalf("create account %s: %v", id, err)
	}
	if amount > 0 {
		if err := f.store.Credit(ctx, id, amount); err != nil {
			t.Fatalf("credit %s: %v", id, err)
		}
	}
}

func (f *fixture) createSprint(t *testing.T) domain.Sprint {
	t.Helper()
	sprint, err := f.service.CreateSprint(context.Background(), domain.CreateSprintInput{
		Employer:     employer,
		Freelancer:   freelancer,
		SprintID:     1,
		Mint:         mint,
		TotalAmount:  100_000_000,
		StartTime:    f.now.Add(time.Hour),
		Duration:     domain.DurationOneWeek,
		Acceleration: domain.AccelerationLinear,
	})
	if err != nil {
		t.Fatalf("create sprint: %v", err)
	}
	return sprint
}

func TestSprintLifecycle(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	f.initConfig(t)
	f.fundAccount(t, employer, 100_000_000)
	f.fundAccount(t, freelancer, 0)

	sprint := f.createSprint(t)
	if sprint.Vault == "" {
		t.Fatal("sprint vault account was not provisioned")
	}

	if _, err := f.service.FundSprint(ctx, Caller{Account: employer}, employer, 1, employer, 100_000_000); err != nil {
		t.Fatalf("fund sprint: %v", err)
	}
	vaultBalance, err := f.store.Balance(ctx, sprint.Vault)
	if err != nil {
		t.Fatalf("vault balance: %v", err)
	}
	if vaultBalance != 100_000_000 {
		t.Fatalf("vault balance = %d, want full deposit", vaultBalance)
	}

	// 10% of the week has elapsed: exactly the dust threshold is vested.
	f.advance(time.Hour + domain.DurationOneWeek/10)
	got, err := f.service.WithdrawStreamed(ctx, Caller{Account: freelancer}, employer, 1, freelancer, 0)
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if got != 10_000_000 {
		t.Fatalf("withdrawn = %d, want 10000000", got)
	}
	freelancerBalance, err := f.store.Balance(ctx, freelancer)
	if err != nil {
		t.Fatalf("freelancer balance: %v", err)
	}
	if freelancerBalance != 10_000_000 {
		t.Fatalf("freelancer balance = %d, want 10000000", freelancerBalance)
	}

	// Pause for an hour: the effective end shifts by the same amount.
	if _, err := f.service.PauseStream(ctx, Caller{Account: employer}, employer, 1); err != nil {
		t.Fatalf("pause: %v", err)
	}
	f.advance(time.Hour)
	resumed, err := f.service.ResumeStream(ctx, Caller{Account: employer}, employer, 1)
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if resumed.Timeline.TotalPausedDuration != time.Hour {
		t.Fatalf("total paused = %v, want 1h", resumed.Timeline.TotalPausedDuration)
	}

	// Run past the pause-adjusted end and settle the remainder.
	f.advance(domain.DurationOneWeek)
	got, err = f.service.WithdrawStreamed(ctx, Caller{Account: freelancer}, employer, 1, freelancer, 0)
	if err != nil {
		t.Fatalf("final withdraw: %v", err)
	}
	if got != 90_000_000 {
		t.Fatalf("final withdrawn = %d, want 90000000", got)
	}

	refund, err := f.service.CloseSprint(ctx, Caller{Account: employer}, employer, 1, employer)
	if err != nil {
		t.Fatalf("close sprint: %v", err)
	}
	if refund != 0 {
		t.Fatalf("refund = %d, want 0 after full withdrawal", refund)
	}
	if _, err := f.service.GetSprint(ctx, employer, 1); !apperrors.IsCode(err, apperrors.CodeNotFound) {
		t.Fatalf("get closed sprint: got %v, want %s", err, apperrors.CodeNotFound)
	}
}

func TestSprintAuthorization(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	f.initConfig(t)
	f.fundAccount(t, employer, 100_000_000)
	f.createSprint(t)

	if _, err := f.service.FundSprint(ctx, Caller{Account: freelancer}, employer, 1, employer, 100_000_000); !apperrors.IsCode(err, apperrors.CodeUnauthorized) {
		t.Fatalf("fund by freelancer: got %v, want %s", err, apperrors.CodeUnauthorized)
	}
	if _, err := f.service.FundSprint(ctx, Caller{Account: employer}, employer, 1, employer, 100_000_000); err != nil {
		t.Fatalf("fund: %v", err)
	}

	if _, err := f.service.PauseStream(ctx, Caller{Account: freelancer}, employer, 1); !apperrors.IsCode(err, apperrors.CodeUnauthorized) {
		t.Fatalf("pause by freelancer: got %v, want %s", err, apperrors.CodeUnauthorized)
	}
	f.advance(2 * time.Hour)
	if _, err := f.service.WithdrawStreamed(ctx, Caller{Account: employer}, employer, 1, employer, 0); !apperrors.IsCode(err, apperrors.CodeUnauthorized) {
		t.Fatalf("withdraw by employer: got %v, want %s", err, apperrors.CodeUnauthorized)
	}
	if _, err := f.service.CloseSprint(ctx, Caller{Account: "stranger"}, employer, 1, employer); !apperrors.IsCode(err, apperrors.CodeUnauthorized) {
		t.Fatalf("close by stranger: got %v, want %s", err, apperrors.CodeUnauthorized)
	}
}

func TestSprintCreateGuards(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	input := domain.CreateSprintInput{
		Employer:     employer,
		Freelancer:   freelancer,
		SprintID:     1,
		Mint:         mint,
		TotalAmount:  100_000_000,
		StartTime:    f.now.Add(time.Hour),
		Duration:     domain.DurationOneWeek,
		Acceleration: domain.AccelerationLinear,
	}

	if _, err := f.service.CreateSprint(ctx, input); !apperrors.IsCode(err, apperrors.CodeNotFound) {
		t.Fatalf("create before config: got %v, want %s", err, apperrors.CodeNotFound)
	}

	f.initConfig(t)
	unsupported := input
	unsupported.Mint = "doge"
	if _, err := f.service.CreateSprint(ctx, unsupported); !apperrors.IsCode(err, apperrors.CodeUnsupportedMint) {
		t.Fatalf("unsupported mint: got %v, want %s", err, apperrors.CodeUnsupportedMint)
	}

	if _, err := f.service.CreateSprint(ctx, input); err != nil {
		t.Fatalf("create sprint: %v", err)
	}
	if _, err := f.service.CreateSprint(ctx, input); !apperrors.IsCode(err, apperrors.CodeSprintAlreadyExists) {
		t.Fatalf("duplicate sprint: got %v, want %s", err, apperrors.CodeSprintAlreadyExists)
	}
}

func TestWithdrawFrozenAccountRollsBack(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	f.initConfig(t)
	f.fundAccount(t, employer, 100_000_000)
	f.fundAccount(t, freelancer, 0)
	f.createSprint(t)
	if _, err := f.service.FundSprint(ctx, Caller{Account: employer}, employer, 1, employer, 100_000_000); err != nil {
		t.Fatalf("fund: %v", err)
	}

	if err := f.store.SetFrozen(ctx, freelancer, true); err != nil {
		t.Fatalf("freeze: %v", err)
	}
	f.advance(time.Hour + domain.DurationOneWeek/2)
	if _, err := f.service.WithdrawStreamed(ctx, Caller{Account: freelancer}, employer, 1, freelancer, 0); !apperrors.IsCode(err, apperrors.CodeFrozenTokenAccount) {
		t.Fatalf("frozen withdraw: got %v, want %s", err, apperrors.CodeFrozenTokenAccount)
	}

	// The failed transfer must not have burned the withdrawal entitlement.
	sprint, err := f.service.GetSprint(ctx, employer, 1)
	if err != nil {
		t.Fatalf("get sprint: %v", err)
	}
	if sprint.WithdrawnAmount != 0 {
		t.Fatalf("withdrawn after rollback = %d, want 0", sprint.WithdrawnAmount)
	}

	if err := f.store.SetFrozen(ctx, freelancer, false); err != nil {
		t.Fatalf("thaw: %v", err)
	}
	got, err := f.service.WithdrawStreamed(ctx, Caller{Account: freelancer}, employer, 1, freelancer, 0)
	if err != nil {
		t.Fatalf("withdraw after thaw: %v", err)
	}
	if got != 50_000_000 {
		t.Fatalf("withdrawn = %d, want 50000000", got)
	}
}

func TestConfigOps(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	f.initConfig(t)

	if _, err := f.service.InitializeConfig(ctx, authority, []domain.MintInfo{{Address: mint}}, 1, time.Hour); !apperrors.IsCode(err, apperrors.CodeInvalidEscrowStatus) {
		t.Fatalf("double init: got %v, want %s", err, apperrors.CodeInvalidEscrowStatus)
	}
	if _, err := f.service.SetConfigPaused(ctx, Caller{Account: "stranger"}, true); !apperrors.IsCode(err, apperrors.CodeUnauthorized) {
		t.Fatalf("pause by stranger: got %v, want %s", err, apperrors.CodeUnauthorized)
	}

	cfg, err := f.service.AddMint(ctx, Caller{Account: authority}, domain.MintInfo{Address: "sol", Decimals: 9, MinWithdrawal: 1})
	if err != nil {
		t.Fatalf("add mint: %v", err)
	}
	if !cfg.SupportsMint("sol") || cfg.Version != 2 {
		t.Fatalf("config after add mint = %+v", cfg)
	}

	cfg, err = f.service.SetConfigPaused(ctx, Caller{Account: authority}, true)
	if err != nil {
		t.Fatalf("set paused: %v", err)
	}
	if !cfg.Paused {
		t.Fatal("config should be paused")
	}
}

func TestEscrowLifecycle(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	f.initConfig(t)
	f.fundAccount(t, "depositor-1", 10_000)
	f.fundAccount(t, "beneficiary-1", 0)

	if _, err := f.service.CreateEscrow(ctx, domain.CreateEscrowInput{
		VaultID:      7,
		OwnerProgram: "program-1",
		OwnerAccount: "owner-1",
		Depositor:    "depositor-1",
		Beneficiary:  "beneficiary-1",
		Arbiter:      "arbiter-1",
		TokenMint:    mint,
		TotalAmount:  10_000,
		Schedule: domain.ReleaseSchedule{Kind: domain.ScheduleMilestone, Conditions: []domain.MilestoneCondition{
			{ID: 1, Amount: 6_000, RequiredApproval: "arbiter-1"},
			{ID: 2, Amount: 4_000, RequiredApproval: "arbiter-1"},
		}},
		Authority: domain.AuthorityBeneficiary,
	}); err != nil {
		t.Fatalf("create escrow: %v", err)
	}

	if _, err := f.service.DepositFunds(ctx, Caller{Account: "beneficiary-1"}, "program-1", 7, "depositor-1", 10_000); !apperrors.IsCode(err, apperrors.CodeUnauthorized) {
		t.Fatalf("deposit by beneficiary: got %v, want %s", err, apperrors.CodeUnauthorized)
	}
	updated, err := f.service.DepositFunds(ctx, Caller{Account: "depositor-1"}, "program-1", 7, "depositor-1", 10_000)
	if err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if updated.Status != domain.EscrowActive {
		t.Fatalf("status = %v, want active", updated.Status)
	}

	// Nothing is unlocked before the first milestone completes.
	if _, err := f.service.WithdrawAvailable(ctx, Caller{Account: "beneficiary-1"}, "program-1", 7, "beneficiary-1", 0); !apperrors.IsCode(err, apperrors.CodeNoFundsAvailable) {
		t.Fatalf("withdraw before milestone: got %v, want %s", err, apperrors.CodeNoFundsAvailable)
	}

	if _, err := f.service.ReleaseMilestone(ctx, Caller{Account: "depositor-1"}, "program-1", 7, 1); !apperrors.IsCode(err, apperrors.CodeUnauthorized) {
		t.Fatalf("release by depositor: got %v, want %s", err, apperrors.CodeUnauthorized)
	}
	if _, err := f.service.ReleaseMilestone(ctx, Caller{Account: "arbiter-1"}, "program-1", 7, 1); err != nil {
		t.Fatalf("release milestone: %v", err)
	}

	got, err := f.service.WithdrawAvailable(ctx, Caller{Account: "beneficiary-1"}, "program-1", 7, "beneficiary-1", 0)
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if got != 6_000 {
		t.Fatalf("withdrawn = %d, want 6000", got)
	}

	refund, err := f.service.CloseEscrow(ctx, Caller{Account: "depositor-1"}, "program-1", 7, "depositor-1")
	if err != nil {
		t.Fatalf("close escrow: %v", err)
	}
	if refund != 4_000 {
		t.Fatalf("refund = %d, want 4000", refund)
	}
	balance, err := f.store.Balance(ctx, "depositor-1")
	if err != nil {
		t.Fatalf("depositor balance: %v", err)
	}
	if balance != 4_000 {
		t.Fatalf("depositor balance = %d, want 4000", balance)
	}
	if _, err := f.service.GetEscrow(ctx, "program-1", 7); !apperrors.IsCode(err, apperrors.CodeNotFound) {
		t.Fatalf("get closed escrow: got %v, want %s", err, apperrors.CodeNotFound)
	}
}

func TestEscrowDelegatedOwnerPair(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	f.initConfig(t)
	f.fundAccount(t, "depositor-1", 10_000)

	if _, err := f.service.CreateEscrow(ctx, domain.CreateEscrowInput{
		VaultID:      7,
		OwnerProgram: "program-1",
		OwnerAccount: "owner-1",
		Depositor:    "depositor-1",
		Beneficiary:  "beneficiary-1",
		TokenMint:    mint,
		TotalAmount:  10_000,
		Schedule:     domain.ReleaseSchedule{Kind: domain.ScheduleImmediate},
		Authority:    domain.AuthorityBeneficiary,
	}); err != nil {
		t.Fatalf("create escrow: %v", err)
	}

	// A caller presenting a program context must match the stored pair.
	wrongPair := Caller{Program: "program-1", Account: "depositor-1"}
	if _, err := f.service.DepositFunds(ctx, wrongPair, "program-1", 7, "depositor-1", 10_000); !apperrors.IsCode(err, apperrors.CodeUnauthorized) {
		t.Fatalf("wrong pair deposit: got %v, want %s", err, apperrors.CodeUnauthorized)
	}
}

func TestEscrowPausedConfigBlocksCreate(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	f.initConfig(t)
	if _, err := f.service.SetConfigPaused(ctx, Caller{Account: authority}, true); err != nil {
		t.Fatalf("set paused: %v", err)
	}

	_, err := f.service.CreateEscrow(ctx, domain.CreateEscrowInput{
		VaultID:      1,
		OwnerProgram: "program-1",
		OwnerAccount: "owner-1",
		Depositor:    "depositor-1",
		Beneficiary:  "beneficiary-1",
		TokenMint:    mint,
		TotalAmount:  10_000,
		Schedule:     domain.ReleaseSchedule{Kind: domain.ScheduleImmediate},
		Authority:    domain.AuthorityBeneficiary,
	})
	if !apperrors.IsCode(err, apperrors.CodeEscrowPaused) {
		t.Fatalf("create while paused: got %v, want %s", err, apperrors.CodeEscrowPaused)
	}
}

func TestEscrowScheduleUpdateAuthorization(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	f.initConfig(t)
	f.fundAccount(t, "depositor-1", 10_000)

	if _, err := f.service.CreateEscrow(ctx, domain.CreateEscrowInput{
		VaultID:      7,
		OwnerProgram: "program-1",
		OwnerAccount: "owner-1",
		Depositor:    "depositor-1",
		Beneficiary:  "beneficiary-1",
		Arbiter:      "arbiter-1",
		TokenMint:    mint,
		TotalAmount:  10_000,
		Schedule:     domain.ReleaseSchedule{Kind: domain.ScheduleImmediate},
		Authority:    domain.AuthorityBeneficiary,
	}); err != nil {
		t.Fatalf("create escrow: %v", err)
	}

	replacement := domain.ReleaseSchedule{Kind: domain.ScheduleLinear, Linear: &domain.LinearConfig{
		Start:        f.now,
		End:          f.now.Add(time.Hour),
		Acceleration: domain.AccelerationLinear,
	}}

	if _, err := f.service.UpdateReleaseSchedule(ctx, Caller{Account: "beneficiary-1"}, "program-1", 7, replacement); !apperrors.IsCode(err, apperrors.CodeUnauthorized) {
		t.Fatalf("update by beneficiary: got %v, want %s", err, apperrors.CodeUnauthorized)
	}
	if _, err := f.service.UpdateReleaseSchedule(ctx, Caller{Account: "arbiter-1"}, "program-1", 7, replacement); err != nil {
		t.Fatalf("update by arbiter: %v", err)
	}
}
