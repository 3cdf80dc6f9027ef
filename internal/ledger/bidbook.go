package ledger

import (
	"time"

	"gigledger/internal/model"
)

// BidBook holds the bids placed on one job: insertion-ordered freelancer
// addresses plus the amount each declared. Bids are immutable once placed;
// there is no withdraw-bid operation and entries survive assignment for
// audit queries.
type BidBook struct {
	order   []model.Address
	amounts map[model.Address]uint64
	placed  map[model.Address]time.Time
}

func newBidBook() *BidBook {
	return &BidBook{
		amounts: make(map[model.Address]uint64),
		placed:  make(map[model.Address]time.Time),
	}
}

// place appends a bid. Returns false when the freelancer already bid.
func (b *BidBook) place(freelancer model.Address, amount uint64, at time.Time) bool {
	if _, dup := b.amounts[freelancer]; dup {
		return false
	}
	b.order = append(b.order, freelancer)
	b.amounts[freelancer] = amount
	b.placed[freelancer] = at
	return true
}

// has reports whether freelancer placed a bid.
func (b *BidBook) has(freelancer model.Address) bool {
	_, ok := b.amounts[freelancer]
	return ok
}

// list returns the bids in placement order.
func (b *BidBook) list() []model.Bid {
	out := make([]model.Bid, 0, len(b.order))
	for _, addr := range b.order {
		out = append(out, model.Bid{
			Freelancer: addr,
			Amount:     b.amounts[addr],
			PlacedAt:   b.placed[addr],
		})
	}
	return out
}

func (b *BidBook) len() int {
	return len(b.order)
}
