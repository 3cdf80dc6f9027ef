package query

import (
	"gigledger/internal/ledger"
	"gigledger/internal/model"
	"gigledger/internal/registry"
)

const defaultLimit = 10

// Service provides paginated read views over jobs, freelancers and bids.
// Skip/limit semantics: a zero limit defaults to 10, a skip past the end
// yields an empty collection rather than an error. Reads observe consistent
// snapshots; they never see a record mid-mutation.
type Service struct {
	ledger   *ledger.Ledger
	registry *registry.Registry
}

func NewService(l *ledger.Ledger, r *registry.Registry) *Service {
	return &Service{ledger: l, registry: r}
}

func page(skip, limit int) (int, int) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	return skip, limit
}

// Jobs returns a page of job records in ascending id order.
func (s *Service) Jobs(skip, limit int) []model.Job {
	skip, limit = page(skip, limit)
	return s.ledger.Jobs(skip, limit)
}

// Job returns a single job record.
func (s *Service) Job(id uint64) (model.Job, error) {
	return s.ledger.Job(id)
}

// AvailableJobs returns open jobs (active, unassigned) in ascending id order.
func (s *Service) AvailableJobs(limit int) []model.Job {
	return s.ledger.AvailableJobs(limit)
}

// Bids returns the bids placed on a job, in placement order.
func (s *Service) Bids(jobID uint64) ([]model.Bid, error) {
	return s.ledger.Bids(jobID)
}

// Freelancers returns a page of freelancer records in ascending id order.
func (s *Service) Freelancers(skip, limit int) []model.Freelancer {
	skip, limit = page(skip, limit)
	return s.registry.List(skip, limit)
}

// Freelancer returns a single freelancer record.
func (s *Service) Freelancer(id uint64) (model.Freelancer, error) {
	return s.registry.Detail(id)
}
