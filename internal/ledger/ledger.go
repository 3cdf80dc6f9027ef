package ledger

import (
	"context"
	"sync"
	"time"

	"gigledger/internal/asset"
	"gigledger/internal/model"
	"gigledger/internal/registry"
	"gigledger/internal/vault"

	"go.uber.org/zap"
)

const defaultPageLimit = 10

// Config carries the ledger's construction-time identity and quirk toggles.
type Config struct {
	// Admin is the single privileged principal allowed to EmergencyWithdraw.
	Admin model.Address
	// DoubleCompletionCount keeps the historical behavior of bumping a
	// freelancer's completed-job counter both at assignment and again on the
	// final payout. On by default; off counts once (at assignment).
	DoubleCompletionCount bool
}

// Ledger owns job records, bidding, assignment, milestone progression and
// fund release. Jobs live in an arena indexed by id-1; ids are monotonic
// starting at 1 and records are never deleted.
//
// A single RWMutex serializes every mutating entry point for its full
// duration, external asset/vault calls included. That lock is the reentrancy
// guard: no nested mutation can proceed while one is executing. Reads take
// the read lock and return copies, never interior pointers.
type Ledger struct {
	mu       sync.RWMutex
	jobs     []*jobEntry
	registry *registry.Registry
	account  *asset.TokenAccount
	vault    vault.Service
	cfg      Config
	logger   *zap.Logger
	now      func() time.Time
}

type jobEntry struct {
	job  model.Job
	bids *BidBook
}

func New(reg *registry.Registry, account *asset.TokenAccount, vlt vault.Service, cfg Config, logger *zap.Logger) *Ledger {
	return &Ledger{
		registry: reg,
		account:  account,
		vault:    vlt,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// Registry exposes the freelancer registry the ledger validates against.
func (l *Ledger) Registry() *registry.Registry {
	return l.registry
}

// PostJob pulls amount of assetAddr from the employer into ledger custody and
// creates the job in the open state. With stakeFlag the whole deposit is
// forwarded to the yield vault before the record is committed; a vault
// failure returns the funds and fails the operation, so no job is ever
// created with an inconsistent staked flag.
//
// The floor remainder of amount/milestoneCount stays in ledger custody and is
// never released to anyone. Accepted rounding-loss policy.
func (l *Ledger) PostJob(ctx context.Context, employer model.Address, amount uint64, assetAddr model.Address, milestoneCount uint32, description string, stakeFlag bool) (model.Job, error) {
	if employer.IsZero() || employer == l.account.Owner() {
		return model.Job{}, ErrInvalidAddress
	}
	if assetAddr.IsZero() || assetAddr == l.account.Owner() {
		return model.Job{}, ErrInvalidAddress
	}
	if amount == 0 || milestoneCount == 0 {
		return model.Job{}, ErrInvalidAmount
	}
	perMilestone := amount / uint64(milestoneCount)
	if perMilestone == 0 {
		return model.Job{}, ErrInvalidAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.account.Pull(ctx, assetAddr, employer, amount); err != nil {
		return model.Job{}, err
	}
	if stakeFlag {
		if err := l.vault.Deposit(ctx, amount, assetAddr, l.account.Owner()); err != nil {
			// Return the pulled deposit so the failed post leaves no trace.
			if payErr := l.account.Pay(ctx, assetAddr, employer, amount); payErr != nil {
				l.logger.Error("Failed to return deposit after vault failure",
					zap.String("employer", string(employer)),
					zap.Error(payErr),
				)
			}
			return model.Job{}, err
		}
	}

	job := model.Job{
		ID:                 uint64(len(l.jobs)) + 1,
		Employer:           employer,
		Asset:              assetAddr,
		Description:        description,
		TotalDeposited:     amount,
		AmountPerMilestone: perMilestone,
		MilestoneCount:     milestoneCount,
		CurrentMilestone:   1,
		RemainingBalance:   amount,
		Active:             true,
		Staked:             stakeFlag,
		UpdatedAt:          l.now(),
	}
	l.jobs = append(l.jobs, &jobEntry{job: job, bids: newBidBook()})

	l.logger.Info("Job posted",
		zap.Uint64("job_id", job.ID),
		zap.String("employer", string(employer)),
		zap.Uint64("amount", amount),
		zap.Uint32("milestones", milestoneCount),
		zap.Bool("staked", stakeFlag),
	)
	return job, nil
}

// Bid records a freelancer's bid on an open job. Only mutates local storage;
// still runs under the write lock like every other mutation.
func (l *Ledger) Bid(freelancer model.Address, jobID uint64, amount uint64) (model.Job, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, err := l.entry(jobID)
	if err != nil {
		return model.Job{}, err
	}
	if !entry.job.Active {
		return model.Job{}, ErrJobNotActive
	}
	if entry.job.Assigned() {
		return model.Job{}, ErrJobAlreadyAssigned
	}
	if !l.registry.IsValid(freelancer) {
		return model.Job{}, ErrUnauthorized
	}
	// Duplicate bids reuse the registration error, matching the historical
	// surface.
	if !entry.bids.place(freelancer, amount, l.now()) {
		return model.Job{}, ErrAlreadyRegistered
	}

	l.logger.Info("Bid placed",
		zap.Uint64("job_id", jobID),
		zap.String("freelancer", string(freelancer)),
		zap.Uint64("amount", amount),
	)
	return entry.job, nil
}

// Assign sets the job's freelancer. The freelancer must have bid on the job
// and can be set at most once. The completed-job counter is bumped here, at
// assignment time, before any work happens; historical behavior, kept as is.
func (l *Ledger) Assign(employer model.Address, jobID uint64, freelancer model.Address) (model.Job, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, err := l.entry(jobID)
	if err != nil {
		return model.Job{}, err
	}
	if entry.job.Employer != employer {
		return model.Job{}, ErrUnauthorized
	}
	if !entry.job.Active {
		return model.Job{}, ErrJobNotActive
	}
	if entry.job.Assigned() {
		return model.Job{}, ErrJobAlreadyAssigned
	}
	if !l.registry.IsValid(freelancer) {
		return model.Job{}, ErrUnauthorized
	}
	if !entry.bids.has(freelancer) {
		return model.Job{}, ErrNotBid
	}

	entry.job.Freelancer = freelancer
	entry.job.UpdatedAt = l.now()
	l.registry.BumpCompleted(freelancer)

	l.logger.Info("Job assigned",
		zap.Uint64("job_id", jobID),
		zap.String("freelancer", string(freelancer)),
	)
	return entry.job, nil
}

// ConfirmMilestone releases one milestone's worth of the deposit. The
// milestone number must equal the job's current index exactly: no skipping,
// no re-confirming. Confirming the final milestone deactivates the job and
// leaves the remaining balance at zero.
func (l *Ledger) ConfirmMilestone(employer model.Address, jobID uint64, milestone uint32) (model.Job, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, err := l.entry(jobID)
	if err != nil {
		return model.Job{}, err
	}
	if entry.job.Employer != employer {
		return model.Job{}, ErrUnauthorized
	}
	if !entry.job.Active {
		return model.Job{}, ErrJobNotActive
	}
	if !entry.job.Assigned() {
		return model.Job{}, ErrUnauthorized
	}
	if milestone != entry.job.CurrentMilestone || milestone > entry.job.MilestoneCount {
		return model.Job{}, ErrInvalidMilestone
	}

	job := &entry.job
	job.AmountReleased += job.AmountPerMilestone
	// Remaining balance is computed against the pre-increment index, so the
	// final confirmation lands on exactly zero.
	job.RemainingBalance = job.AmountPerMilestone * uint64(job.MilestoneCount-job.CurrentMilestone)
	if job.CurrentMilestone == job.MilestoneCount {
		job.Active = false
	} else {
		job.CurrentMilestone++
	}
	job.UpdatedAt = l.now()

	l.logger.Info("Milestone confirmed",
		zap.Uint64("job_id", jobID),
		zap.Uint32("milestone", milestone),
		zap.Uint64("remaining", job.RemainingBalance),
		zap.Bool("active", job.Active),
	)
	return *job, nil
}

// ReceivePayment pays the job's remaining balance out to the assigned
// freelancer. The balance is zeroed before any external call; on an external
// failure the bookkeeping is restored so the operation stays all-or-nothing.
// When the job is staked the funds are first withdrawn from the vault.
func (l *Ledger) ReceivePayment(ctx context.Context, caller model.Address, jobID uint64) (uint64, model.Job, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, err := l.entry(jobID)
	if err != nil {
		return 0, model.Job{}, err
	}
	job := &entry.job
	if !job.Assigned() || job.Freelancer != caller {
		return 0, model.Job{}, ErrUnauthorized
	}
	if job.RemainingBalance == 0 {
		return 0, model.Job{}, ErrNoFundsAvailable
	}

	amount := job.RemainingBalance
	wasStaked := job.Staked
	job.RemainingBalance = 0
	job.Staked = false

	restore := func() {
		job.RemainingBalance = amount
		job.Staked = wasStaked
	}

	if wasStaked {
		if err := l.vault.Withdraw(ctx, amount, job.Asset, l.account.Owner()); err != nil {
			restore()
			return 0, model.Job{}, err
		}
	}
	if err := l.account.Pay(ctx, job.Asset, caller, amount); err != nil {
		restore()
		if wasStaked {
			if depErr := l.vault.Deposit(ctx, amount, job.Asset, l.account.Owner()); depErr != nil {
				l.logger.Error("Failed to restake after payment failure",
					zap.Uint64("job_id", jobID),
					zap.Error(depErr),
				)
			}
		}
		return 0, model.Job{}, err
	}

	job.UpdatedAt = l.now()
	if !job.Active && l.cfg.DoubleCompletionCount {
		// Second bump for the same job; the first happened at assignment.
		l.registry.BumpCompleted(caller)
	}

	l.logger.Info("Payment released",
		zap.Uint64("job_id", jobID),
		zap.String("freelancer", string(caller)),
		zap.Uint64("amount", amount),
		zap.Bool("was_staked", wasStaked),
	)
	return amount, *job, nil
}

// StakePayment forwards the job's unreleased remaining balance to the yield
// vault. The balance bookkeeping is untouched: staking only marks the job
// and moves custody, it does not consume the balance.
func (l *Ledger) StakePayment(ctx context.Context, caller model.Address, jobID uint64) (model.Job, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, err := l.entry(jobID)
	if err != nil {
		return model.Job{}, err
	}
	job := &entry.job
	if !job.Assigned() || job.Freelancer != caller {
		return model.Job{}, ErrUnauthorized
	}
	if job.RemainingBalance == 0 {
		return model.Job{}, ErrNoFundsAvailable
	}
	if job.Staked {
		return model.Job{}, ErrUnauthorized
	}

	if err := l.vault.Deposit(ctx, job.RemainingBalance, job.Asset, l.account.Owner()); err != nil {
		return model.Job{}, err
	}
	job.Staked = true
	job.UpdatedAt = l.now()

	l.logger.Info("Balance staked",
		zap.Uint64("job_id", jobID),
		zap.Uint64("amount", job.RemainingBalance),
	)
	return *job, nil
}

// UnstakePayment pulls the staked remaining balance back from the vault and
// pays it straight to the freelancer in the same call. Unstaking and
// withdrawal are deliberately coupled; there is no unstake-and-hold.
func (l *Ledger) UnstakePayment(ctx context.Context, caller model.Address, jobID uint64) (uint64, model.Job, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, err := l.entry(jobID)
	if err != nil {
		return 0, model.Job{}, err
	}
	job := &entry.job
	if !job.Assigned() || job.Freelancer != caller {
		return 0, model.Job{}, ErrUnauthorized
	}
	if job.RemainingBalance == 0 {
		return 0, model.Job{}, ErrNoFundsAvailable
	}
	if !job.Staked {
		return 0, model.Job{}, ErrUnauthorized
	}

	amount := job.RemainingBalance
	if err := l.vault.Withdraw(ctx, amount, job.Asset, l.account.Owner()); err != nil {
		return 0, model.Job{}, err
	}

	job.RemainingBalance = 0
	job.Staked = false
	if err := l.account.Pay(ctx, job.Asset, caller, amount); err != nil {
		job.RemainingBalance = amount
		job.Staked = true
		if depErr := l.vault.Deposit(ctx, amount, job.Asset, l.account.Owner()); depErr != nil {
			l.logger.Error("Failed to restake after unstake payment failure",
				zap.Uint64("job_id", jobID),
				zap.Error(depErr),
			)
		}
		return 0, model.Job{}, err
	}
	job.UpdatedAt = l.now()

	l.logger.Info("Balance unstaked and paid",
		zap.Uint64("job_id", jobID),
		zap.String("freelancer", string(caller)),
		zap.Uint64("amount", amount),
	)
	return amount, *job, nil
}

// EmergencyWithdraw sweeps the ledger's entire holding of assetAddr to the
// administrator. Break-glass escape valve, not part of the normal flow.
func (l *Ledger) EmergencyWithdraw(ctx context.Context, caller, assetAddr model.Address) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if caller != l.cfg.Admin || l.cfg.Admin.IsZero() {
		return 0, ErrUnauthorized
	}
	if assetAddr.IsZero() || assetAddr == l.account.Owner() {
		return 0, ErrInvalidAddress
	}

	balance, err := l.account.Balance(ctx, assetAddr)
	if err != nil {
		return 0, err
	}
	if balance == 0 {
		return 0, ErrNoFundsAvailable
	}
	if err := l.account.Pay(ctx, assetAddr, l.cfg.Admin, balance); err != nil {
		return 0, err
	}

	l.logger.Warn("Emergency withdraw executed",
		zap.String("asset", string(assetAddr)),
		zap.Uint64("amount", balance),
	)
	return balance, nil
}

// AvailableJobs returns up to limit open jobs (active, no freelancer) in
// ascending id order. A zero limit defaults to 10.
func (l *Ledger) AvailableJobs(limit int) []model.Job {
	if limit <= 0 {
		limit = defaultPageLimit
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	out := []model.Job{}
	for _, entry := range l.jobs {
		if len(out) == limit {
			break
		}
		if entry.job.Active && !entry.job.Assigned() {
			out = append(out, entry.job)
		}
	}
	return out
}

// Job returns a snapshot of the job record.
func (l *Ledger) Job(jobID uint64) (model.Job, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	entry, err := l.entry(jobID)
	if err != nil {
		return model.Job{}, err
	}
	return entry.job, nil
}

// Bids returns the job's bids in placement order.
func (l *Ledger) Bids(jobID uint64) ([]model.Bid, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	entry, err := l.entry(jobID)
	if err != nil {
		return nil, err
	}
	return entry.bids.list(), nil
}

// JobCount returns the number of jobs ever posted.
func (l *Ledger) JobCount() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return uint64(len(l.jobs))
}

// Jobs returns a skip/limit page of job snapshots in id order.
func (l *Ledger) Jobs(skip, limit int) []model.Job {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := []model.Job{}
	for i := skip; i < len(l.jobs) && len(out) < limit; i++ {
		out = append(out, l.jobs[i].job)
	}
	return out
}

// Restore reloads jobs and bids from the durable mirror at boot. Jobs must
// be in id order starting at 1.
func (l *Ledger) Restore(jobs []model.Job, bids map[uint64][]model.Bid) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.jobs = make([]*jobEntry, 0, len(jobs))
	for _, job := range jobs {
		book := newBidBook()
		for _, b := range bids[job.ID] {
			book.place(b.Freelancer, b.Amount, b.PlacedAt)
		}
		l.jobs = append(l.jobs, &jobEntry{job: job, bids: book})
	}
}

// entry must be called with at least the read lock held.
func (l *Ledger) entry(jobID uint64) (*jobEntry, error) {
	if jobID == 0 || jobID > uint64(len(l.jobs)) {
		return nil, ErrJobNotFound
	}
	return l.jobs[jobID-1], nil
}
