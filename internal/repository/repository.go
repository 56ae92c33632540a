package repository

import (
	"context"

	"github.com/TaraScho/gameday-demo-app-services/internal/domain"
)

// AccountRepository persists accounts for the user management service.
type AccountRepository interface {
	// CreateAccount inserts an account and returns ErrConflict when the
	// account identifier is already registered.
	CreateAccount(ctx context.Context, account *domain.Account) error
	GetAccountByID(ctx context.Context, id string) (*domain.Account, error)
}

// ProfileRepository persists match-form profile attributes.
type ProfileRepository interface {
	// UpsertProfile merges a partial update into the stored profile. Only
	// fields present in the update are written.
	UpsertProfile(ctx context.Context, accountID string, update domain.ProfileUpdate) error
	GetProfile(ctx context.Context, accountID string) (*domain.Profile, error)
}

// PenpalRepository reads the pre-seeded penpal candidates.
type PenpalRepository interface {
	ListAvailablePenpals(ctx context.Context) ([]domain.Penpal, error)
}

// MatchRepository records penpal assignments.
type MatchRepository interface {
	// RecordMatch atomically merges the profile update, claims the chosen
	// penpal with a conditional write (available must still be true), and
	// appends the match row. Returns ErrNotFound when the penpal was
	// claimed by a concurrent assignment in the meantime; nothing is
	// written in that case.
	RecordMatch(ctx context.Context, update domain.ProfileUpdate, match *domain.Match) error
	ListMatchesByAccount(ctx context.Context, accountID string) ([]domain.Match, error)
}

// ReservationRepository stores penpal reservations.
type ReservationRepository interface {
	// PutReservation writes one reservation record, replacing any previous
	// record for the same customer.
	PutReservation(ctx context.Context, reservation *domain.Reservation) error
}
