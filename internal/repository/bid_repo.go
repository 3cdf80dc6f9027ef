package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"gigledger/internal/model"
)

type BidRepository struct {
	db *pgxpool.Pool
}

func NewBidRepository(db *pgxpool.Pool) *BidRepository {
	return &BidRepository{db: db}
}

// Insert mirrors one bid. Bids are immutable; conflicts mean the mirror
// already has it (redelivery) and are ignored.
func (r *BidRepository) Insert(ctx context.Context, jobID uint64, b *model.Bid) error {
	query := `
        INSERT INTO bids (job_id, freelancer, amount, placed_at)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (job_id, freelancer) DO NOTHING
    `
	_, err := r.db.Exec(ctx, query,
		int64(jobID),
		string(b.Freelancer),
		int64(b.Amount),
		b.PlacedAt,
	)
	return err
}

// ListAll returns every bid grouped by job id in placement order, for arena
// rehydration at boot.
func (r *BidRepository) ListAll(ctx context.Context) (map[uint64][]model.Bid, error) {
	query := `
        SELECT job_id, freelancer, amount, placed_at
        FROM bids
        ORDER BY job_id ASC, placed_at ASC
    `

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[uint64][]model.Bid)
	for rows.Next() {
		var (
			jobID, amount int64
			freelancer    string
			b             model.Bid
		)
		if err := rows.Scan(&jobID, &freelancer, &amount, &b.PlacedAt); err != nil {
			return nil, err
		}
		b.Freelancer = model.Address(freelancer)
		b.Amount = uint64(amount)
		out[uint64(jobID)] = append(out[uint64(jobID)], b)
	}

	return out, rows.Err()
}
