package repository

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"
)

// JobEventRepository is the worker-side audit log: one row per consumed
// ledger event.
type JobEventRepository struct {
	db *pgxpool.Pool
}

func NewJobEventRepository(db *pgxpool.Pool) *JobEventRepository {
	return &JobEventRepository{db: db}
}

func (r *JobEventRepository) Insert(ctx context.Context, eventType string, jobID uint64, payload json.RawMessage) error {
	query := `
        INSERT INTO job_events (event_type, job_id, payload, created_at)
        VALUES ($1, $2, $3, NOW())
    `
	_, err := r.db.Exec(ctx, query, eventType, int64(jobID), payload)
	return err
}

// CountByType returns audit row counts per event type.
func (r *JobEventRepository) CountByType(ctx context.Context) (map[string]int64, error) {
	query := `
        SELECT event_type, COUNT(*)
        FROM job_events
        GROUP BY event_type
    `

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int64)
	for rows.Next() {
		var (
			t string
			n int64
		)
		if err := rows.Scan(&t, &n); err != nil {
			return nil, err
		}
		out[t] = n
	}

	return out, rows.Err()
}
