package asset

import (
	"context"

	"gigledger/internal/model"
)

// TransferService is the external asset-registry boundary. A failed call
// aborts the enclosing ledger operation; nothing is retried here.
type TransferService interface {
	Transfer(ctx context.Context, asset, from, to model.Address, amount uint64) error
	BalanceOf(ctx context.Context, asset, holder model.Address) (uint64, error)
}

// TokenAccount wraps a TransferService with the ledger's custody identity.
type TokenAccount struct {
	svc   TransferService
	owner model.Address
}

func NewTokenAccount(svc TransferService, owner model.Address) *TokenAccount {
	return &TokenAccount{svc: svc, owner: owner}
}

// Owner returns the custody identity the account moves funds under.
func (a *TokenAccount) Owner() model.Address {
	return a.owner
}

// Pull moves amount of asset from a participant into ledger custody.
func (a *TokenAccount) Pull(ctx context.Context, asset, from model.Address, amount uint64) error {
	return a.svc.Transfer(ctx, asset, from, a.owner, amount)
}

// Pay moves amount of asset out of ledger custody to a participant.
func (a *TokenAccount) Pay(ctx context.Context, asset, to model.Address, amount uint64) error {
	return a.svc.Transfer(ctx, asset, a.owner, to, amount)
}

// Balance returns the ledger's own holdings of asset.
func (a *TokenAccount) Balance(ctx context.Context, asset model.Address) (uint64, error) {
	return a.svc.BalanceOf(ctx, asset, a.owner)
}
