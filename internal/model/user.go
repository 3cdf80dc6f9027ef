package model

import "time"

// User is an authenticated API participant. Auth state lives outside the
// ledger proper; the JWT address claim is the caller identity for every
// ledger operation.
type User struct {
	ID           int       `json:"id"`
	Address      Address   `json:"address"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
