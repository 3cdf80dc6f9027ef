package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"gigledger/internal/model"
)

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// CreateUser inserts a new participant account.
func (r *UserRepository) CreateUser(ctx context.Context, u *model.User) error {
	query := `
        INSERT INTO users (address, password_hash, created_at)
        VALUES ($1, $2, NOW())
        RETURNING id
    `
	return r.db.QueryRow(ctx, query, string(u.Address), u.PasswordHash).Scan(&u.ID)
}

// FindByAddress returns the participant bound to address.
func (r *UserRepository) FindByAddress(ctx context.Context, address model.Address) (*model.User, error) {
	query := `
        SELECT id, address, password_hash, created_at
        FROM users
        WHERE address = $1
    `
	var (
		u    model.User
		addr string
	)
	err := r.db.QueryRow(ctx, query, string(address)).Scan(
		&u.ID, &addr, &u.PasswordHash, &u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	u.Address = model.Address(addr)
	return &u, nil
}
