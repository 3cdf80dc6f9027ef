package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"gigledger/internal/asset"
	"gigledger/internal/model"
	"gigledger/internal/registry"
	"gigledger/internal/vault"
)

const (
	adminAddr    = model.Address("addr:admin")
	custodyAddr  = model.Address("ledger:custody")
	employerAddr = model.Address("addr:employer")
	workerAddr   = model.Address("addr:worker")
	tokenAddr    = model.Address("asset:usd")
)

// flakyVault fails deposits or withdrawals on demand, for exercising the
// rollback paths around external vault calls.
type flakyVault struct {
	*vault.Memory
	failDeposit  bool
	failWithdraw bool
}

var errVaultDown = errors.New("vault unavailable")

func (v *flakyVault) Deposit(ctx context.Context, amount uint64, asset, owner model.Address) error {
	if v.failDeposit {
		return errVaultDown
	}
	return v.Memory.Deposit(ctx, amount, asset, owner)
}

func (v *flakyVault) Withdraw(ctx context.Context, amount uint64, asset, owner model.Address) error {
	if v.failWithdraw {
		return errVaultDown
	}
	return v.Memory.Withdraw(ctx, amount, asset, owner)
}

// flakyToken rejects transfers out of failFrom, for exercising the payment
// failure restore path.
type flakyToken struct {
	*asset.MemoryToken
	failFrom model.Address
}

var errTransferRejected = errors.New("transfer rejected")

func (tk *flakyToken) Transfer(ctx context.Context, assetAddr, from, to model.Address, amount uint64) error {
	if !tk.failFrom.IsZero() && from == tk.failFrom {
		return errTransferRejected
	}
	return tk.MemoryToken.Transfer(ctx, assetAddr, from, to, amount)
}

func newTestLedger(t *testing.T, svc asset.TransferService, vlt vault.Service, cfg Config) (*Ledger, *registry.Registry) {
	t.Helper()
	logger := zap.NewNop()
	reg := registry.New(custodyAddr, logger)
	if cfg.Admin.IsZero() {
		cfg.Admin = adminAddr
	}
	account := asset.NewTokenAccount(svc, custodyAddr)
	return New(reg, account, vlt, cfg, logger), reg
}

func defaultFixture(t *testing.T) (*Ledger, *registry.Registry, *asset.MemoryToken, *vault.Memory) {
	t.Helper()
	tokens := asset.NewMemoryToken()
	tokens.Mint(tokenAddr, employerAddr, 10_000)
	vlt := vault.NewMemory()
	led, reg := newTestLedger(t, tokens, vlt, Config{})
	return led, reg, tokens, vlt
}

func registerWorker(t *testing.T, reg *registry.Registry, addr model.Address) {
	t.Helper()
	_, err := reg.Register(addr, "Worker", "backend dev", nil, "go,sql")
	require.NoError(t, err)
}

// postAssigned posts a job, registers the worker, bids and assigns, leaving
// the job ready for milestone confirmation.
func postAssigned(t *testing.T, led *Ledger, reg *registry.Registry, amount uint64, milestones uint32) model.Job {
	t.Helper()
	ctx := context.Background()

	job, err := led.PostJob(ctx, employerAddr, amount, tokenAddr, milestones, "build the thing", false)
	require.NoError(t, err)

	registerWorker(t, reg, workerAddr)
	_, err = led.Bid(workerAddr, job.ID, amount)
	require.NoError(t, err)
	job, err = led.Assign(employerAddr, job.ID, workerAddr)
	require.NoError(t, err)
	return job
}

func TestPostJobValidation(t *testing.T) {
	led, _, _, _ := defaultFixture(t)
	ctx := context.Background()

	cases := []struct {
		name       string
		employer   model.Address
		amount     uint64
		asset      model.Address
		milestones uint32
		want       error
	}{
		{"zero employer", model.ZeroAddress, 300, tokenAddr, 3, ErrInvalidAddress},
		{"custody as employer", custodyAddr, 300, tokenAddr, 3, ErrInvalidAddress},
		{"zero asset", employerAddr, 300, model.ZeroAddress, 3, ErrInvalidAddress},
		{"custody as asset", employerAddr, 300, custodyAddr, 3, ErrInvalidAddress},
		{"zero amount", employerAddr, 0, tokenAddr, 3, ErrInvalidAmount},
		{"zero milestones", employerAddr, 300, tokenAddr, 0, ErrInvalidAmount},
		{"amount below milestone count", employerAddr, 2, tokenAddr, 3, ErrInvalidAmount},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := led.PostJob(ctx, tc.employer, tc.amount, tc.asset, tc.milestones, "desc", false)
			require.ErrorIs(t, err, tc.want)
		})
	}
	require.EqualValues(t, 0, led.JobCount())
}

func TestPostJobInsufficientBalance(t *testing.T) {
	led, _, _, _ := defaultFixture(t)

	_, err := led.PostJob(context.Background(), employerAddr, 20_000, tokenAddr, 4, "too rich", false)
	require.ErrorIs(t, err, asset.ErrInsufficientBalance)
	require.EqualValues(t, 0, led.JobCount())
}

func TestPostJobMovesDepositIntoCustody(t *testing.T) {
	led, _, tokens, _ := defaultFixture(t)
	ctx := context.Background()

	job, err := led.PostJob(ctx, employerAddr, 300, tokenAddr, 3, "site redesign", false)
	require.NoError(t, err)

	require.EqualValues(t, 1, job.ID)
	require.Equal(t, employerAddr, job.Employer)
	require.Equal(t, tokenAddr, job.Asset)
	require.EqualValues(t, 300, job.TotalDeposited)
	require.EqualValues(t, 100, job.AmountPerMilestone)
	require.EqualValues(t, 3, job.MilestoneCount)
	require.EqualValues(t, 1, job.CurrentMilestone)
	require.EqualValues(t, 0, job.AmountReleased)
	require.EqualValues(t, 300, job.RemainingBalance)
	require.True(t, job.Active)
	require.False(t, job.Staked)
	require.False(t, job.Assigned())

	held, err := tokens.BalanceOf(ctx, tokenAddr, custodyAddr)
	require.NoError(t, err)
	require.EqualValues(t, 300, held)

	left, err := tokens.BalanceOf(ctx, tokenAddr, employerAddr)
	require.NoError(t, err)
	require.EqualValues(t, 9_700, left)
}

func TestPostJobStakedForwardsDepositToVault(t *testing.T) {
	led, _, _, vlt := defaultFixture(t)
	ctx := context.Background()

	job, err := led.PostJob(ctx, employerAddr, 400, tokenAddr, 4, "staked job", true)
	require.NoError(t, err)
	require.True(t, job.Staked)

	staked, err := vlt.BalanceOf(ctx, custodyAddr)
	require.NoError(t, err)
	require.EqualValues(t, 400, staked)
}

func TestPostJobVaultFailureReturnsDeposit(t *testing.T) {
	tokens := asset.NewMemoryToken()
	tokens.Mint(tokenAddr, employerAddr, 500)
	vlt := &flakyVault{Memory: vault.NewMemory(), failDeposit: true}
	led, _ := newTestLedger(t, tokens, vlt, Config{})
	ctx := context.Background()

	_, err := led.PostJob(ctx, employerAddr, 400, tokenAddr, 4, "staked job", true)
	require.ErrorIs(t, err, errVaultDown)
	require.EqualValues(t, 0, led.JobCount())

	left, err := tokens.BalanceOf(ctx, tokenAddr, employerAddr)
	require.NoError(t, err)
	require.EqualValues(t, 500, left)
}

func TestBid(t *testing.T) {
	led, reg, _, _ := defaultFixture(t)
	ctx := context.Background()

	job, err := led.PostJob(ctx, employerAddr, 300, tokenAddr, 3, "api work", false)
	require.NoError(t, err)

	_, err = led.Bid(workerAddr, 99, 300)
	require.ErrorIs(t, err, ErrJobNotFound)

	_, err = led.Bid(workerAddr, job.ID, 300)
	require.ErrorIs(t, err, ErrUnauthorized)

	registerWorker(t, reg, workerAddr)
	_, err = led.Bid(workerAddr, job.ID, 280)
	require.NoError(t, err)

	_, err = led.Bid(workerAddr, job.ID, 250)
	require.ErrorIs(t, err, ErrAlreadyRegistered)

	bids, err := led.Bids(job.ID)
	require.NoError(t, err)
	require.Len(t, bids, 1)
	require.Equal(t, workerAddr, bids[0].Freelancer)
	require.EqualValues(t, 280, bids[0].Amount)
}

func TestBidOnAssignedJobRejected(t *testing.T) {
	led, reg, _, _ := defaultFixture(t)
	job := postAssigned(t, led, reg, 300, 3)

	other := model.Address("addr:other")
	_, err := reg.Register(other, "Other", "", nil, "")
	require.NoError(t, err)

	_, err = led.Bid(other, job.ID, 200)
	require.ErrorIs(t, err, ErrJobAlreadyAssigned)
}

func TestAssign(t *testing.T) {
	led, reg, _, _ := defaultFixture(t)
	ctx := context.Background()

	job, err := led.PostJob(ctx, employerAddr, 300, tokenAddr, 3, "api work", false)
	require.NoError(t, err)
	registerWorker(t, reg, workerAddr)
	_, err = led.Bid(workerAddr, job.ID, 300)
	require.NoError(t, err)

	_, err = led.Assign(model.Address("addr:not-employer"), job.ID, workerAddr)
	require.ErrorIs(t, err, ErrUnauthorized)

	other := model.Address("addr:other")
	_, err = reg.Register(other, "Other", "", nil, "")
	require.NoError(t, err)
	_, err = led.Assign(employerAddr, job.ID, other)
	require.ErrorIs(t, err, ErrNotBid)

	job, err = led.Assign(employerAddr, job.ID, workerAddr)
	require.NoError(t, err)
	require.Equal(t, workerAddr, job.Freelancer)

	// completed count is bumped at assignment
	rec, err := reg.Detail(reg.IDOf(workerAddr))
	require.NoError(t, err)
	require.EqualValues(t, 1, rec.CompletedJobs)

	_, err = led.Assign(employerAddr, job.ID, workerAddr)
	require.ErrorIs(t, err, ErrJobAlreadyAssigned)
}

func TestConfirmMilestoneRequiresAssignment(t *testing.T) {
	led, _, _, _ := defaultFixture(t)
	ctx := context.Background()

	job, err := led.PostJob(ctx, employerAddr, 300, tokenAddr, 3, "api work", false)
	require.NoError(t, err)

	_, err = led.ConfirmMilestone(employerAddr, job.ID, 1)
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestConfirmMilestoneSequence(t *testing.T) {
	led, reg, _, _ := defaultFixture(t)
	job := postAssigned(t, led, reg, 300, 3)

	_, err := led.ConfirmMilestone(workerAddr, job.ID, 1)
	require.ErrorIs(t, err, ErrUnauthorized)

	// skipping ahead is rejected
	_, err = led.ConfirmMilestone(employerAddr, job.ID, 2)
	require.ErrorIs(t, err, ErrInvalidMilestone)

	job, err = led.ConfirmMilestone(employerAddr, job.ID, 1)
	require.NoError(t, err)
	require.EqualValues(t, 100, job.AmountReleased)
	require.EqualValues(t, 200, job.RemainingBalance)
	require.EqualValues(t, 2, job.CurrentMilestone)
	require.True(t, job.Active)

	// re-confirming a settled milestone is rejected
	_, err = led.ConfirmMilestone(employerAddr, job.ID, 1)
	require.ErrorIs(t, err, ErrInvalidMilestone)
}

func TestConfirmFinalMilestoneDeactivatesJob(t *testing.T) {
	led, reg, _, _ := defaultFixture(t)
	job := postAssigned(t, led, reg, 300, 3)

	for m := uint32(1); m <= 3; m++ {
		var err error
		job, err = led.ConfirmMilestone(employerAddr, job.ID, m)
		require.NoError(t, err)
	}
	require.False(t, job.Active)
	require.EqualValues(t, 300, job.AmountReleased)
	require.EqualValues(t, 0, job.RemainingBalance)
	require.EqualValues(t, 3, job.CurrentMilestone)

	_, err := led.ConfirmMilestone(employerAddr, job.ID, 3)
	require.ErrorIs(t, err, ErrJobNotActive)
}

func TestFullLifecyclePaysDepositInFull(t *testing.T) {
	led, reg, tokens, _ := defaultFixture(t)
	job := postAssigned(t, led, reg, 300, 3)
	ctx := context.Background()

	_, err := led.ConfirmMilestone(employerAddr, job.ID, 1)
	require.NoError(t, err)
	paid, _, err := led.ReceivePayment(ctx, workerAddr, job.ID)
	require.NoError(t, err)
	require.EqualValues(t, 200, paid)

	_, err = led.ConfirmMilestone(employerAddr, job.ID, 2)
	require.NoError(t, err)
	paid, _, err = led.ReceivePayment(ctx, workerAddr, job.ID)
	require.NoError(t, err)
	require.EqualValues(t, 100, paid)

	job, err = led.ConfirmMilestone(employerAddr, job.ID, 3)
	require.NoError(t, err)
	require.False(t, job.Active)
	require.EqualValues(t, 0, job.RemainingBalance)

	_, _, err = led.ReceivePayment(ctx, workerAddr, job.ID)
	require.ErrorIs(t, err, ErrNoFundsAvailable)

	earned, err := tokens.BalanceOf(ctx, tokenAddr, workerAddr)
	require.NoError(t, err)
	require.EqualValues(t, 300, earned)

	held, err := tokens.BalanceOf(ctx, tokenAddr, custodyAddr)
	require.NoError(t, err)
	require.EqualValues(t, 0, held)
}

func TestOddDepositLosesFloorRemainder(t *testing.T) {
	led, reg, tokens, _ := defaultFixture(t)
	job := postAssigned(t, led, reg, 100, 3)
	ctx := context.Background()

	require.EqualValues(t, 33, job.AmountPerMilestone)

	var earned uint64
	for m := uint32(1); m <= 3; m++ {
		_, err := led.ConfirmMilestone(employerAddr, job.ID, m)
		require.NoError(t, err)
		paid, _, err := led.ReceivePayment(ctx, workerAddr, job.ID)
		if m == 3 {
			require.ErrorIs(t, err, ErrNoFundsAvailable)
			continue
		}
		require.NoError(t, err)
		earned += paid
	}
	require.EqualValues(t, 99, earned)

	// the division remainder stays in custody
	held, err := tokens.BalanceOf(ctx, tokenAddr, custodyAddr)
	require.NoError(t, err)
	require.EqualValues(t, 1, held)

	swept, err := led.EmergencyWithdraw(ctx, adminAddr, tokenAddr)
	require.NoError(t, err)
	require.EqualValues(t, 1, swept)
}

func TestReceivePaymentAuthorization(t *testing.T) {
	led, reg, _, _ := defaultFixture(t)
	job := postAssigned(t, led, reg, 300, 3)
	ctx := context.Background()

	_, err := led.ConfirmMilestone(employerAddr, job.ID, 1)
	require.NoError(t, err)

	_, _, err = led.ReceivePayment(ctx, employerAddr, job.ID)
	require.ErrorIs(t, err, ErrUnauthorized)

	_, _, err = led.ReceivePayment(ctx, model.Address("addr:stranger"), job.ID)
	require.ErrorIs(t, err, ErrUnauthorized)

	_, _, err = led.ReceivePayment(ctx, workerAddr, 42)
	require.ErrorIs(t, err, ErrJobNotFound)
}

func TestReceivePaymentFailureRestoresState(t *testing.T) {
	tokens := &flakyToken{MemoryToken: asset.NewMemoryToken()}
	tokens.Mint(tokenAddr, employerAddr, 1_000)
	vlt := vault.NewMemory()
	led, reg := newTestLedger(t, tokens, vlt, Config{})
	job := postAssigned(t, led, reg, 300, 3)
	ctx := context.Background()

	_, err := led.ConfirmMilestone(employerAddr, job.ID, 1)
	require.NoError(t, err)
	_, err = led.StakePayment(ctx, workerAddr, job.ID)
	require.NoError(t, err)

	tokens.failFrom = custodyAddr
	_, _, err = led.ReceivePayment(ctx, workerAddr, job.ID)
	require.ErrorIs(t, err, errTransferRejected)

	// bookkeeping and stake both restored
	job, err = led.Job(job.ID)
	require.NoError(t, err)
	require.EqualValues(t, 200, job.RemainingBalance)
	require.True(t, job.Staked)

	staked, err := vlt.BalanceOf(ctx, custodyAddr)
	require.NoError(t, err)
	require.EqualValues(t, 200, staked)

	// once the transfer service recovers the payment goes through
	tokens.failFrom = model.ZeroAddress
	paid, job, err := led.ReceivePayment(ctx, workerAddr, job.ID)
	require.NoError(t, err)
	require.EqualValues(t, 200, paid)
	require.False(t, job.Staked)
	require.EqualValues(t, 0, job.RemainingBalance)
}

func TestStakeUnstakeCycle(t *testing.T) {
	led, reg, tokens, vlt := defaultFixture(t)
	job := postAssigned(t, led, reg, 300, 3)
	ctx := context.Background()

	_, err := led.ConfirmMilestone(employerAddr, job.ID, 1)
	require.NoError(t, err)

	_, _, err = led.UnstakePayment(ctx, workerAddr, job.ID)
	require.ErrorIs(t, err, ErrUnauthorized)

	job, err = led.StakePayment(ctx, workerAddr, job.ID)
	require.NoError(t, err)
	require.True(t, job.Staked)
	// staking marks the job, it does not consume the balance
	require.EqualValues(t, 200, job.RemainingBalance)

	staked, err := vlt.BalanceOf(ctx, custodyAddr)
	require.NoError(t, err)
	require.EqualValues(t, 200, staked)

	_, err = led.StakePayment(ctx, workerAddr, job.ID)
	require.ErrorIs(t, err, ErrUnauthorized)

	paid, job, err := led.UnstakePayment(ctx, workerAddr, job.ID)
	require.NoError(t, err)
	require.EqualValues(t, 200, paid)
	require.False(t, job.Staked)
	require.EqualValues(t, 0, job.RemainingBalance)

	staked, err = vlt.BalanceOf(ctx, custodyAddr)
	require.NoError(t, err)
	require.EqualValues(t, 0, staked)

	earned, err := tokens.BalanceOf(ctx, tokenAddr, workerAddr)
	require.NoError(t, err)
	require.EqualValues(t, 200, earned)
}

func TestStakeWithNothingRemaining(t *testing.T) {
	led, reg, _, _ := defaultFixture(t)
	job := postAssigned(t, led, reg, 300, 3)
	ctx := context.Background()

	for m := uint32(1); m <= 3; m++ {
		_, err := led.ConfirmMilestone(employerAddr, job.ID, m)
		require.NoError(t, err)
		_, _, _ = led.ReceivePayment(ctx, workerAddr, job.ID)
	}

	_, err := led.StakePayment(ctx, workerAddr, job.ID)
	require.ErrorIs(t, err, ErrNoFundsAvailable)
}

func TestReceivePaymentWithdrawsStakeFirst(t *testing.T) {
	led, reg, tokens, vlt := defaultFixture(t)
	job := postAssigned(t, led, reg, 300, 3)
	ctx := context.Background()

	_, err := led.ConfirmMilestone(employerAddr, job.ID, 1)
	require.NoError(t, err)
	_, err = led.StakePayment(ctx, workerAddr, job.ID)
	require.NoError(t, err)

	paid, job, err := led.ReceivePayment(ctx, workerAddr, job.ID)
	require.NoError(t, err)
	require.EqualValues(t, 200, paid)
	require.False(t, job.Staked)

	staked, err := vlt.BalanceOf(ctx, custodyAddr)
	require.NoError(t, err)
	require.EqualValues(t, 0, staked)

	earned, err := tokens.BalanceOf(ctx, tokenAddr, workerAddr)
	require.NoError(t, err)
	require.EqualValues(t, 200, earned)
}

func TestUnstakePaymentFailureRestoresStake(t *testing.T) {
	tokens := &flakyToken{MemoryToken: asset.NewMemoryToken()}
	tokens.Mint(tokenAddr, employerAddr, 1_000)
	vlt := vault.NewMemory()
	led, reg := newTestLedger(t, tokens, vlt, Config{})
	job := postAssigned(t, led, reg, 300, 3)
	ctx := context.Background()

	_, err := led.ConfirmMilestone(employerAddr, job.ID, 1)
	require.NoError(t, err)
	_, err = led.StakePayment(ctx, workerAddr, job.ID)
	require.NoError(t, err)

	tokens.failFrom = custodyAddr
	_, _, err = led.UnstakePayment(ctx, workerAddr, job.ID)
	require.ErrorIs(t, err, errTransferRejected)

	job, err = led.Job(job.ID)
	require.NoError(t, err)
	require.True(t, job.Staked)
	require.EqualValues(t, 200, job.RemainingBalance)

	staked, err := vlt.BalanceOf(ctx, custodyAddr)
	require.NoError(t, err)
	require.EqualValues(t, 200, staked)
}

func TestEmergencyWithdraw(t *testing.T) {
	led, _, tokens, _ := defaultFixture(t)
	ctx := context.Background()

	_, err := led.EmergencyWithdraw(ctx, employerAddr, tokenAddr)
	require.ErrorIs(t, err, ErrUnauthorized)

	_, err = led.EmergencyWithdraw(ctx, adminAddr, tokenAddr)
	require.ErrorIs(t, err, ErrNoFundsAvailable)

	_, err = led.PostJob(ctx, employerAddr, 300, tokenAddr, 3, "sweep me", false)
	require.NoError(t, err)

	_, err = led.EmergencyWithdraw(ctx, adminAddr, custodyAddr)
	require.ErrorIs(t, err, ErrInvalidAddress)

	swept, err := led.EmergencyWithdraw(ctx, adminAddr, tokenAddr)
	require.NoError(t, err)
	require.EqualValues(t, 300, swept)

	got, err := tokens.BalanceOf(ctx, tokenAddr, adminAddr)
	require.NoError(t, err)
	require.EqualValues(t, 300, got)
}

func TestAvailableJobs(t *testing.T) {
	led, reg, _, _ := defaultFixture(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := led.PostJob(ctx, employerAddr, 300, tokenAddr, 3, fmt.Sprintf("job %d", i), false)
		require.NoError(t, err)
	}
	registerWorker(t, reg, workerAddr)
	_, err := led.Bid(workerAddr, 2, 300)
	require.NoError(t, err)
	_, err = led.Assign(employerAddr, 2, workerAddr)
	require.NoError(t, err)

	open := led.AvailableJobs(0)
	require.Len(t, open, 2)
	require.EqualValues(t, 1, open[0].ID)
	require.EqualValues(t, 3, open[1].ID)

	open = led.AvailableJobs(1)
	require.Len(t, open, 1)
	require.EqualValues(t, 1, open[0].ID)
}

func TestJobsPagination(t *testing.T) {
	led, _, _, _ := defaultFixture(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := led.PostJob(ctx, employerAddr, 100, tokenAddr, 1, fmt.Sprintf("job %d", i), false)
		require.NoError(t, err)
	}

	page := led.Jobs(1, 2)
	require.Len(t, page, 2)
	require.EqualValues(t, 2, page[0].ID)
	require.EqualValues(t, 3, page[1].ID)

	require.Empty(t, led.Jobs(10, 5))
	require.EqualValues(t, 5, led.JobCount())
}

func TestRestoreRebuildsArena(t *testing.T) {
	led, reg, _, _ := defaultFixture(t)
	registerWorker(t, reg, workerAddr)

	placed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	jobs := []model.Job{
		{
			ID: 1, Employer: employerAddr, Asset: tokenAddr,
			TotalDeposited: 300, AmountPerMilestone: 100,
			MilestoneCount: 3, CurrentMilestone: 2,
			AmountReleased: 100, RemainingBalance: 200,
			Active: true, Freelancer: workerAddr,
		},
	}
	bids := map[uint64][]model.Bid{
		1: {{Freelancer: workerAddr, Amount: 280, PlacedAt: placed}},
	}
	led.Restore(jobs, bids)

	job, err := led.Job(1)
	require.NoError(t, err)
	require.EqualValues(t, 2, job.CurrentMilestone)
	require.EqualValues(t, 200, job.RemainingBalance)

	got, err := led.Bids(1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, placed, got[0].PlacedAt)

	// progression picks up where the mirror left off
	job, err = led.ConfirmMilestone(employerAddr, 1, 2)
	require.NoError(t, err)
	require.EqualValues(t, 200, job.AmountReleased)
	require.EqualValues(t, 100, job.RemainingBalance)
}

func TestDoubleCompletionCountToggle(t *testing.T) {
	for _, double := range []bool{true, false} {
		t.Run(fmt.Sprintf("double=%v", double), func(t *testing.T) {
			tokens := asset.NewMemoryToken()
			tokens.Mint(tokenAddr, custodyAddr, 1_000)
			led, reg := newTestLedger(t, tokens, vault.NewMemory(), Config{DoubleCompletionCount: double})
			registerWorker(t, reg, workerAddr)

			// a completed job rehydrated with an unclaimed payout
			led.Restore([]model.Job{{
				ID: 1, Employer: employerAddr, Freelancer: workerAddr,
				Asset: tokenAddr, TotalDeposited: 300, AmountPerMilestone: 100,
				MilestoneCount: 3, CurrentMilestone: 3,
				AmountReleased: 300, RemainingBalance: 100,
				Active: false,
			}}, nil)

			paid, _, err := led.ReceivePayment(context.Background(), workerAddr, 1)
			require.NoError(t, err)
			require.EqualValues(t, 100, paid)

			rec, err := reg.Detail(reg.IDOf(workerAddr))
			require.NoError(t, err)
			if double {
				require.EqualValues(t, 1, rec.CompletedJobs)
			} else {
				require.EqualValues(t, 0, rec.CompletedJobs)
			}
		})
	}
}

func TestConcurrentBidsSerialize(t *testing.T) {
	led, reg, _, _ := defaultFixture(t)
	ctx := context.Background()

	job, err := led.PostJob(ctx, employerAddr, 300, tokenAddr, 3, "popular job", false)
	require.NoError(t, err)

	const n = 32
	addrs := make([]model.Address, n)
	for i := range addrs {
		addrs[i] = model.Address(fmt.Sprintf("addr:worker-%d", i))
		registerWorker(t, reg, addrs[i])
	}

	errs := make(chan error, n)
	var wg sync.WaitGroup
	for _, addr := range addrs {
		wg.Add(1)
		go func(a model.Address) {
			defer wg.Done()
			_, err := led.Bid(a, job.ID, 250)
			errs <- err
		}(addr)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	bids, err := led.Bids(job.ID)
	require.NoError(t, err)
	require.Len(t, bids, n)
}
