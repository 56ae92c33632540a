package domain

import "time"

// Match pairs an account with an assigned penpal. Matches are append-only:
// a row is written once per successful assignment and never updated.
type Match struct {
	ID        string
	AccountID string
	PenpalID  string
	MatchedAt time.Time
}
