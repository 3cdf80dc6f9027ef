package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"gigledger/internal/model"
)

// Notification is an in-app message for a participant, produced by the
// worker from consumed ledger events.
type Notification struct {
	ID        int           `json:"id"`
	Recipient model.Address `json:"recipient"`
	Type      string        `json:"type"`
	Content   string        `json:"content"`
}

type NotificationRepository struct {
	db *pgxpool.Pool
}

func NewNotificationRepository(db *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Insert(ctx context.Context, n *Notification) error {
	query := `
        INSERT INTO notifications (recipient, type, content, created_at)
        VALUES ($1, $2, $3, NOW())
        RETURNING id
    `
	return r.db.QueryRow(ctx, query, string(n.Recipient), n.Type, n.Content).Scan(&n.ID)
}
