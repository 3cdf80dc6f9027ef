package model

import "time"

type Freelancer struct {
	ID          uint64    `json:"id"`
	Address     Address   `json:"address"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	// Rating is stored but no operation mutates it.
	Rating        uint32    `json:"rating"`
	CompletedJobs uint32    `json:"completed_jobs"`
	Skills        string    `json:"skills"`
	Achievements  []string  `json:"achievements"`
	RegisteredAt  time.Time `json:"registered_at"`
}

type Bid struct {
	Freelancer Address   `json:"freelancer"`
	Amount     uint64    `json:"amount"`
	PlacedAt   time.Time `json:"placed_at"`
}
