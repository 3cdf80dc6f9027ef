package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"gigledger/internal/model"
)

type FreelancerRepository struct {
	db *pgxpool.Pool
}

func NewFreelancerRepository(db *pgxpool.Pool) *FreelancerRepository {
	return &FreelancerRepository{db: db}
}

// Upsert mirrors a freelancer record, keyed by its registry id.
func (r *FreelancerRepository) Upsert(ctx context.Context, f *model.Freelancer) error {
	query := `
        INSERT INTO freelancers (
            id, address, name, description, rating,
            completed_jobs, skills, achievements, registered_at
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        ON CONFLICT (id) DO UPDATE SET
            completed_jobs = EXCLUDED.completed_jobs,
            rating = EXCLUDED.rating
    `
	_, err := r.db.Exec(ctx, query,
		int64(f.ID),
		string(f.Address),
		f.Name,
		f.Description,
		int32(f.Rating),
		int32(f.CompletedJobs),
		f.Skills,
		f.Achievements,
		f.RegisteredAt,
	)
	return err
}

// ListAll returns every freelancer in id order, for registry rehydration.
func (r *FreelancerRepository) ListAll(ctx context.Context) ([]model.Freelancer, error) {
	query := `
        SELECT id, address, name, description, rating,
               completed_jobs, skills, achievements, registered_at
        FROM freelancers
        ORDER BY id ASC
    `

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Freelancer
	for rows.Next() {
		var (
			f                       model.Freelancer
			id                      int64
			rating, completed       int32
			address                 string
		)
		if err := rows.Scan(
			&id,
			&address,
			&f.Name,
			&f.Description,
			&rating,
			&completed,
			&f.Skills,
			&f.Achievements,
			&f.RegisteredAt,
		); err != nil {
			return nil, err
		}
		f.ID = uint64(id)
		f.Address = model.Address(address)
		f.Rating = uint32(rating)
		f.CompletedJobs = uint32(completed)
		out = append(out, f)
	}

	return out, rows.Err()
}
