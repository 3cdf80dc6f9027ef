package vault

import (
	"context"

	"gigledger/internal/model"
)

// Service is the yield-vault boundary. Only success/failure matters to the
// ledger; a failed call aborts the enclosing operation and is never retried
// here (retry policy belongs to the caller).
type Service interface {
	Deposit(ctx context.Context, amount uint64, asset, owner model.Address) error
	Withdraw(ctx context.Context, amount uint64, asset, owner model.Address) error
	BalanceOf(ctx context.Context, owner model.Address) (uint64, error)
}
