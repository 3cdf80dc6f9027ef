package service

import (
	"context"

	"go.uber.org/zap"

	"gigledger/internal/ledger"
	"gigledger/internal/model"
	"gigledger/internal/mq"
	"gigledger/internal/repository"
	"gigledger/pkg/metrics"
)

// EventPublisher is satisfied by mq.Publisher; tests run without a broker.
type EventPublisher interface {
	Publish(eventType string, payload any) error
}

// LedgerService fronts the core ledger: it runs the operation, mirrors the
// committed state to Postgres and publishes the corresponding event. The
// in-memory arena is authoritative; mirror and publish failures are logged
// and counted but do not undo a committed operation.
type LedgerService struct {
	ledger         *ledger.Ledger
	publisher      EventPublisher
	jobRepo        *repository.JobRepository
	freelancerRepo *repository.FreelancerRepository
	bidRepo        *repository.BidRepository
	logger         *zap.Logger
}

func NewLedgerService(
	l *ledger.Ledger,
	publisher EventPublisher,
	jobRepo *repository.JobRepository,
	freelancerRepo *repository.FreelancerRepository,
	bidRepo *repository.BidRepository,
	logger *zap.Logger,
) *LedgerService {
	return &LedgerService{
		ledger:         l,
		publisher:      publisher,
		jobRepo:        jobRepo,
		freelancerRepo: freelancerRepo,
		bidRepo:        bidRepo,
		logger:         logger,
	}
}

// Rehydrate loads the arena from the Postgres mirror at boot.
func (s *LedgerService) Rehydrate(ctx context.Context) error {
	if s.jobRepo == nil {
		return nil
	}

	freelancers, err := s.freelancerRepo.ListAll(ctx)
	if err != nil {
		return err
	}
	jobs, err := s.jobRepo.ListAll(ctx)
	if err != nil {
		return err
	}
	bids, err := s.bidRepo.ListAll(ctx)
	if err != nil {
		return err
	}

	s.ledger.Registry().Restore(freelancers)
	s.ledger.Restore(jobs, bids)

	s.logger.Info("Ledger rehydrated from mirror",
		zap.Int("jobs", len(jobs)),
		zap.Int("freelancers", len(freelancers)),
	)
	return nil
}

// RegisterFreelancer creates the identity record and emits the creation event.
func (s *LedgerService) RegisterFreelancer(ctx context.Context, caller model.Address, name, description string, achievements []string, skills string) (model.Freelancer, error) {
	f, err := s.ledger.Registry().Register(caller, name, description, achievements, skills)
	if err != nil {
		return model.Freelancer{}, err
	}

	s.mirrorFreelancer(ctx, &f)
	s.publish(mq.EventFreelancerRegistered, mq.FreelancerRegisteredPayload{
		FreelancerID: f.ID,
		Address:      f.Address,
		Name:         f.Name,
		RegisteredAt: f.RegisteredAt,
	})
	return f, nil
}

func (s *LedgerService) PostJob(ctx context.Context, employer model.Address, amount uint64, asset model.Address, milestoneCount uint32, description string, stakeFlag bool) (model.Job, error) {
	job, err := s.ledger.PostJob(ctx, employer, amount, asset, milestoneCount, description, stakeFlag)
	if err != nil {
		return model.Job{}, err
	}

	metrics.JobsPosted.Inc()
	s.mirrorJob(ctx, &job)
	// Event reflects final state after any staking side effect.
	s.publish(mq.EventJobPosted, mq.JobPostedPayload{
		JobID:          job.ID,
		Employer:       job.Employer,
		Asset:          job.Asset,
		Amount:         job.TotalDeposited,
		MilestoneCount: job.MilestoneCount,
		Staked:         job.Staked,
		PostedAt:       job.UpdatedAt,
	})
	return job, nil
}

func (s *LedgerService) Bid(ctx context.Context, freelancer model.Address, jobID uint64, amount uint64) error {
	_, err := s.ledger.Bid(freelancer, jobID, amount)
	if err != nil {
		return err
	}

	metrics.BidsPlaced.Inc()
	if s.bidRepo != nil {
		bids, lookupErr := s.ledger.Bids(jobID)
		if lookupErr == nil && len(bids) > 0 {
			last := bids[len(bids)-1]
			if mirrorErr := s.bidRepo.Insert(ctx, jobID, &last); mirrorErr != nil {
				s.mirrorFailed("bids", mirrorErr)
			}
		}
	}
	s.publish(mq.EventJobBid, mq.JobBidPayload{
		JobID:      jobID,
		Freelancer: freelancer,
		Amount:     amount,
	})
	return nil
}

func (s *LedgerService) Assign(ctx context.Context, employer model.Address, jobID uint64, freelancer model.Address) (model.Job, error) {
	job, err := s.ledger.Assign(employer, jobID, freelancer)
	if err != nil {
		return model.Job{}, err
	}

	s.mirrorJob(ctx, &job)
	s.mirrorFreelancerByAddress(ctx, freelancer)
	s.publish(mq.EventJobAssigned, mq.JobAssignedPayload{
		JobID:      job.ID,
		Employer:   job.Employer,
		Freelancer: job.Freelancer,
	})
	return job, nil
}

func (s *LedgerService) ConfirmMilestone(ctx context.Context, employer model.Address, jobID uint64, milestone uint32) (model.Job, error) {
	job, err := s.ledger.ConfirmMilestone(employer, jobID, milestone)
	if err != nil {
		return model.Job{}, err
	}

	metrics.MilestonesConfirmed.Inc()
	s.mirrorJob(ctx, &job)
	s.publish(mq.EventMilestoneCompleted, mq.MilestoneCompletedPayload{
		JobID:            job.ID,
		Milestone:        milestone,
		RemainingBalance: job.RemainingBalance,
		Active:           job.Active,
	})
	return job, nil
}

func (s *LedgerService) ReceivePayment(ctx context.Context, freelancer model.Address, jobID uint64) (uint64, error) {
	amount, job, err := s.ledger.ReceivePayment(ctx, freelancer, jobID)
	if err != nil {
		return 0, err
	}

	metrics.RecordPaymentReleased("direct", amount)
	s.mirrorJob(ctx, &job)
	s.mirrorFreelancerByAddress(ctx, freelancer)
	s.publish(mq.EventPaymentReleased, mq.PaymentReleasedPayload{
		JobID:      job.ID,
		Freelancer: freelancer,
		Amount:     amount,
		Path:       "direct",
		Completed:  !job.Active,
	})
	return amount, nil
}

func (s *LedgerService) StakePayment(ctx context.Context, freelancer model.Address, jobID uint64) (model.Job, error) {
	job, err := s.ledger.StakePayment(ctx, freelancer, jobID)
	if err != nil {
		return model.Job{}, err
	}

	s.mirrorJob(ctx, &job)
	s.publish(mq.EventJobStaked, mq.JobStakeChangedPayload{
		JobID:  job.ID,
		Amount: job.RemainingBalance,
		Staked: true,
	})
	return job, nil
}

func (s *LedgerService) UnstakePayment(ctx context.Context, freelancer model.Address, jobID uint64) (uint64, error) {
	amount, job, err := s.ledger.UnstakePayment(ctx, freelancer, jobID)
	if err != nil {
		return 0, err
	}

	metrics.RecordPaymentReleased("unstake", amount)
	s.mirrorJob(ctx, &job)
	s.publish(mq.EventJobUnstaked, mq.JobStakeChangedPayload{
		JobID:  job.ID,
		Amount: amount,
		Staked: false,
	})
	s.publish(mq.EventPaymentReleased, mq.PaymentReleasedPayload{
		JobID:      job.ID,
		Freelancer: freelancer,
		Amount:     amount,
		Path:       "unstake",
		Completed:  !job.Active,
	})
	return amount, nil
}

func (s *LedgerService) EmergencyWithdraw(ctx context.Context, caller, asset model.Address) (uint64, error) {
	amount, err := s.ledger.EmergencyWithdraw(ctx, caller, asset)
	if err != nil {
		return 0, err
	}

	s.publish(mq.EventEmergencyWithdraw, mq.EmergencyWithdrawPayload{
		Asset:  asset,
		Amount: amount,
	})
	return amount, nil
}

func (s *LedgerService) publish(eventType string, payload any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(eventType, payload); err != nil {
		s.logger.Error("Failed to publish event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}

func (s *LedgerService) mirrorJob(ctx context.Context, job *model.Job) {
	if s.jobRepo == nil {
		return
	}
	if err := s.jobRepo.Upsert(ctx, job); err != nil {
		s.mirrorFailed("jobs", err)
	}
}

func (s *LedgerService) mirrorFreelancer(ctx context.Context, f *model.Freelancer) {
	if s.freelancerRepo == nil {
		return
	}
	if err := s.freelancerRepo.Upsert(ctx, f); err != nil {
		s.mirrorFailed("freelancers", err)
	}
}

func (s *LedgerService) mirrorFreelancerByAddress(ctx context.Context, addr model.Address) {
	reg := s.ledger.Registry()
	if id := reg.IDOf(addr); id != 0 {
		if f, err := reg.Detail(id); err == nil {
			s.mirrorFreelancer(ctx, &f)
		}
	}
}

func (s *LedgerService) mirrorFailed(table string, err error) {
	metrics.MirrorWriteFailures.WithLabelValues(table).Inc()
	s.logger.Error("Mirror write failed", zap.String("table", table), zap.Error(err))
}
