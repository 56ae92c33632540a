package domain

import "time"

// Penpal types accepted by the reservation intake.
const (
	PenpalTypeUnicorn = "Unicorn"
	PenpalTypePuppy   = "Puppy"
)

// Reservation is a penpal reservation from a retail store event or a direct
// website submission. Only the attribute pair matching PenpalType is set;
// the other pair stays empty and is stored as NULL.
type Reservation struct {
	CustomerID      string
	PenpalEmail     string
	PenpalType      string
	UnicornType     string
	UnicornSecretID string
	PuppyType       string
	PuppySecretID   string
	CreatedAt       time.Time
}

// Kind returns the type-specific penpal kind used in the confirmation
// message shown to the customer.
func (r Reservation) Kind() string {
	if r.PenpalType == PenpalTypeUnicorn {
		return r.UnicornType
	}
	return r.PuppyType
}
