package mq

import (
	"time"

	"gigledger/internal/model"
)

// Routing keys / event types emitted by the ledger. Events always carry the
// final state after any staking side effect.
const (
	EventFreelancerRegistered = "freelancer.registered"
	EventJobPosted            = "job.posted"
	EventJobBid               = "job.bid"
	EventJobAssigned          = "job.assigned"
	EventMilestoneCompleted   = "job.milestone_completed"
	EventPaymentReleased      = "job.payment_released"
	EventJobStaked            = "job.staked"
	EventJobUnstaked          = "job.unstaked"
	EventEmergencyWithdraw    = "ledger.emergency_withdraw"
)

type FreelancerRegisteredPayload struct {
	FreelancerID uint64        `json:"freelancer_id"`
	Address      model.Address `json:"address"`
	Name         string        `json:"name"`
	RegisteredAt time.Time     `json:"registered_at"`
}

type JobPostedPayload struct {
	JobID          uint64        `json:"job_id"`
	Employer       model.Address `json:"employer"`
	Asset          model.Address `json:"asset"`
	Amount         uint64        `json:"amount"`
	MilestoneCount uint32        `json:"milestone_count"`
	Staked         bool          `json:"staked"`
	PostedAt       time.Time     `json:"posted_at"`
}

type JobBidPayload struct {
	JobID      uint64        `json:"job_id"`
	Freelancer model.Address `json:"freelancer"`
	Amount     uint64        `json:"amount"`
}

type JobAssignedPayload struct {
	JobID      uint64        `json:"job_id"`
	Employer   model.Address `json:"employer"`
	Freelancer model.Address `json:"freelancer"`
}

type MilestoneCompletedPayload struct {
	JobID            uint64 `json:"job_id"`
	Milestone        uint32 `json:"milestone"`
	RemainingBalance uint64 `json:"remaining_balance"`
	Active           bool   `json:"active"`
}

type PaymentReleasedPayload struct {
	JobID      uint64        `json:"job_id"`
	Freelancer model.Address `json:"freelancer"`
	Amount     uint64        `json:"amount"`
	// Path is "direct" for receivePayment, "unstake" for the coupled
	// unstake-and-withdraw release.
	Path      string `json:"path"`
	Completed bool   `json:"completed"`
}

type JobStakeChangedPayload struct {
	JobID  uint64 `json:"job_id"`
	Amount uint64 `json:"amount"`
	Staked bool   `json:"staked"`
}

type EmergencyWithdrawPayload struct {
	Asset  model.Address `json:"asset"`
	Amount uint64        `json:"amount"`
}
