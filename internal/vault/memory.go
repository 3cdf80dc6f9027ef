package vault

import (
	"context"
	"errors"
	"sync"

	"gigledger/internal/model"
)

var ErrInsufficientStake = errors.New("insufficient staked balance")

// Memory is an in-process vault used when no external vault is configured,
// and in tests.
type Memory struct {
	mu       sync.Mutex
	balances map[model.Address]uint64
}

func NewMemory() *Memory {
	return &Memory{balances: make(map[model.Address]uint64)}
}

func (m *Memory) Deposit(ctx context.Context, amount uint64, asset, owner model.Address) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[owner] += amount
	return nil
}

func (m *Memory) Withdraw(ctx context.Context, amount uint64, asset, owner model.Address) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.balances[owner] < amount {
		return ErrInsufficientStake
	}
	m.balances[owner] -= amount
	return nil
}

func (m *Memory) BalanceOf(ctx context.Context, owner model.Address) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balances[owner], nil
}
