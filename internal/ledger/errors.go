package ledger

import "errors"

// Error taxonomy surfaced by the ledger and the freelancer registry. All
// mutating operations are atomic: on any of these, no state change has been
// committed and no asset has moved.
var (
	ErrInvalidAddress     = errors.New("invalid address")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrJobNotFound        = errors.New("job not found")
	ErrJobNotActive       = errors.New("job not active")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrJobAlreadyAssigned = errors.New("job already assigned")
	ErrAlreadyRegistered  = errors.New("already registered")
	ErrInvalidMilestone   = errors.New("invalid milestone")
	ErrNoFundsAvailable   = errors.New("no funds available")
	ErrFreelancerNotFound = errors.New("freelancer not found")
	ErrNotBid             = errors.New("freelancer has not bid on this job")
)
