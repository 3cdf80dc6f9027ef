package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"gigledger/internal/model"
)

type JobRepository struct {
	db *pgxpool.Pool
}

func NewJobRepository(db *pgxpool.Pool) *JobRepository {
	return &JobRepository{db: db}
}

// Upsert mirrors the full job record. Jobs are keyed by their arena id; the
// ledger only ever writes the latest state.
func (r *JobRepository) Upsert(ctx context.Context, j *model.Job) error {
	query := `
        INSERT INTO jobs (
            id, employer, freelancer, asset, description,
            total_deposited, amount_per_milestone, milestone_count,
            current_milestone, amount_released, remaining_balance,
            active, staked, updated_at
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
        ON CONFLICT (id) DO UPDATE SET
            freelancer = EXCLUDED.freelancer,
            current_milestone = EXCLUDED.current_milestone,
            amount_released = EXCLUDED.amount_released,
            remaining_balance = EXCLUDED.remaining_balance,
            active = EXCLUDED.active,
            staked = EXCLUDED.staked,
            updated_at = EXCLUDED.updated_at
    `
	_, err := r.db.Exec(ctx, query,
		int64(j.ID),
		string(j.Employer),
		string(j.Freelancer),
		string(j.Asset),
		j.Description,
		int64(j.TotalDeposited),
		int64(j.AmountPerMilestone),
		int32(j.MilestoneCount),
		int32(j.CurrentMilestone),
		int64(j.AmountReleased),
		int64(j.RemainingBalance),
		j.Active,
		j.Staked,
		j.UpdatedAt,
	)
	return err
}

// ListAll returns every job in id order, for arena rehydration at boot.
func (r *JobRepository) ListAll(ctx context.Context) ([]model.Job, error) {
	query := `
        SELECT id, employer, freelancer, asset, description,
               total_deposited, amount_per_milestone, milestone_count,
               current_milestone, amount_released, remaining_balance,
               active, staked, updated_at
        FROM jobs
        ORDER BY id ASC
    `

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []model.Job
	for rows.Next() {
		var (
			j                                    model.Job
			id, total, per, released, remaining  int64
			milestoneCount, currentMilestone     int32
			employer, freelancer, assetAddr      string
		)
		if err := rows.Scan(
			&id,
			&employer,
			&freelancer,
			&assetAddr,
			&j.Description,
			&total,
			&per,
			&milestoneCount,
			&currentMilestone,
			&released,
			&remaining,
			&j.Active,
			&j.Staked,
			&j.UpdatedAt,
		); err != nil {
			return nil, err
		}
		j.ID = uint64(id)
		j.Employer = model.Address(employer)
		j.Freelancer = model.Address(freelancer)
		j.Asset = model.Address(assetAddr)
		j.TotalDeposited = uint64(total)
		j.AmountPerMilestone = uint64(per)
		j.MilestoneCount = uint32(milestoneCount)
		j.CurrentMilestone = uint32(currentMilestone)
		j.AmountReleased = uint64(released)
		j.RemainingBalance = uint64(remaining)
		jobs = append(jobs, j)
	}

	return jobs, rows.Err()
}
