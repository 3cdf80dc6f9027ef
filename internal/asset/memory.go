package asset

import (
	"context"
	"errors"
	"sync"

	"gigledger/internal/model"
)

var ErrInsufficientBalance = errors.New("insufficient balance")

// MemoryToken is an in-process TransferService standing in for the external
// token registry. Balances are per asset per holder.
type MemoryToken struct {
	mu       sync.Mutex
	balances map[model.Address]map[model.Address]uint64
}

func NewMemoryToken() *MemoryToken {
	return &MemoryToken{
		balances: make(map[model.Address]map[model.Address]uint64),
	}
}

// Mint credits amount of asset to holder. Dev/test seeding only.
func (t *MemoryToken) Mint(asset, holder model.Address, amount uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.credit(asset, holder, amount)
}

func (t *MemoryToken) Transfer(ctx context.Context, asset, from, to model.Address, amount uint64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	held := t.balances[asset][from]
	if held < amount {
		return ErrInsufficientBalance
	}
	t.balances[asset][from] = held - amount
	t.credit(asset, to, amount)
	return nil
}

func (t *MemoryToken) BalanceOf(ctx context.Context, asset, holder model.Address) (uint64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.balances[asset][holder], nil
}

func (t *MemoryToken) credit(asset, holder model.Address, amount uint64) {
	holders, ok := t.balances[asset]
	if !ok {
		holders = make(map[model.Address]uint64)
		t.balances[asset] = holders
	}
	holders[holder] += amount
}
