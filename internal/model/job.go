package model

import "time"

type Job struct {
	ID                 uint64    `json:"id"`
	Employer           Address   `json:"employer"`
	Freelancer         Address   `json:"freelancer"` // empty until assigned, set once
	Asset              Address   `json:"asset"`
	Description        string    `json:"description"`
	TotalDeposited     uint64    `json:"total_deposited"`
	AmountPerMilestone uint64    `json:"amount_per_milestone"`
	MilestoneCount     uint32    `json:"milestone_count"`
	CurrentMilestone   uint32    `json:"current_milestone"` // 1-based
	AmountReleased     uint64    `json:"amount_released"`
	RemainingBalance   uint64    `json:"remaining_balance"`
	Active             bool      `json:"active"`
	Staked             bool      `json:"staked"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// Assigned reports whether a freelancer has been set on the job.
func (j *Job) Assigned() bool {
	return !j.Freelancer.IsZero()
}
