package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/TaraScho/gameday-demo-app-services/internal/domain"
	"github.com/TaraScho/gameday-demo-app-services/internal/repository"
)

const uniqueViolation = "23505"

// Repository implements persistence interfaces on PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// New constructs a Repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ensure Repository satisfies interfaces.
var (
	_ repository.AccountRepository     = (*Repository)(nil)
	_ repository.ProfileRepository     = (*Repository)(nil)
	_ repository.PenpalRepository      = (*Repository)(nil)
	_ repository.MatchRepository       = (*Repository)(nil)
	_ repository.ReservationRepository = (*Repository)(nil)
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx so single-statement
// helpers can run inside or outside a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// CreateAccount inserts an account record.
func (r *Repository) CreateAccount(ctx context.Context, account *domain.Account) error {
	const query = `INSERT INTO accounts (account_id, display_name, password_hash, created_at)
		VALUES ($1, $2, $3, $4)`
	_, err := r.pool.Exec(ctx, query, account.ID, account.DisplayName, account.PasswordHash, account.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return repository.ErrConflict
		}
		return err
	}
	return nil
}

// GetAccountByID fetches an account by its identifier (email).
func (r *Repository) GetAccountByID(ctx context.Context, id string) (*domain.Account, error) {
	const query = `SELECT account_id, display_name, password_hash, created_at FROM accounts WHERE account_id = $1`
	row := r.pool.QueryRow(ctx, query, id)
	var a domain.Account
	if err := row.Scan(&a.ID, &a.DisplayName, &a.PasswordHash, &a.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// UpsertProfile merges a partial update into the stored profile.
func (r *Repository) UpsertProfile(ctx context.Context, accountID string, update domain.ProfileUpdate) error {
	return upsertProfile(ctx, r.pool, accountID, update)
}

// upsertProfile writes only the fields present in the update; absent (nil)
// fields keep their stored value via COALESCE.
func upsertProfile(ctx context.Context, q querier, accountID string, update domain.ProfileUpdate) error {
	const query = `INSERT INTO profiles (account_id, hobbies, favorite_color, favorite_quote, external_profile_url, external_photo_url, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		ON CONFLICT (account_id) DO UPDATE SET
			hobbies = COALESCE(EXCLUDED.hobbies, profiles.hobbies),
			favorite_color = COALESCE(EXCLUDED.favorite_color, profiles.favorite_color),
			favorite_quote = COALESCE(EXCLUDED.favorite_quote, profiles.favorite_quote),
			external_profile_url = COALESCE(EXCLUDED.external_profile_url, profiles.external_profile_url),
			external_photo_url = COALESCE(EXCLUDED.external_photo_url, profiles.external_photo_url),
			updated_at = now()`
	_, err := q.Exec(ctx, query, accountID,
		update.Hobbies, update.FavoriteColor, update.FavoriteQuote,
		update.ExternalProfileURL, update.ExternalPhotoURL)
	return err
}

// GetProfile fetches the stored profile for an account.
func (r *Repository) GetProfile(ctx context.Context, accountID string) (*domain.Profile, error) {
	const query = `SELECT account_id,
			COALESCE(hobbies, ''),
			COALESCE(favorite_color, ''),
			COALESCE(favorite_quote, ''),
			COALESCE(external_profile_url, ''),
			COALESCE(external_photo_url, '')
		FROM profiles WHERE account_id = $1`
	row := r.pool.QueryRow(ctx, query, accountID)
	var p domain.Profile
	if err := row.Scan(&p.AccountID, &p.Hobbies, &p.FavoriteColor, &p.FavoriteQuote, &p.ExternalProfileURL, &p.ExternalPhotoURL); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// ListAvailablePenpals returns penpals still open for assignment.
func (r *Repository) ListAvailablePenpals(ctx context.Context) ([]domain.Penpal, error) {
	const query = `SELECT penpal_id, penpal_name, available FROM penpals WHERE available ORDER BY penpal_id`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	penpals := make([]domain.Penpal, 0)
	for rows.Next() {
		var p domain.Penpal
		if err := rows.Scan(&p.ID, &p.Name, &p.Available); err != nil {
			return nil, err
		}
		penpals = append(penpals, p)
	}
	return penpals, rows.Err()
}

// RecordMatch merges the profile update, claims the penpal, and appends the
// match row in one transaction. The claim is a conditional write: it only
// succeeds while the penpal is still marked available, which closes the
// read-then-write race between concurrent assignments.
func (r *Repository) RecordMatch(ctx context.Context, update domain.ProfileUpdate, match *domain.Match) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin assignment: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := upsertProfile(ctx, tx, match.AccountID, update); err != nil {
		return fmt.Errorf("merge profile: %w", err)
	}

	const claim = `UPDATE penpals SET available = FALSE WHERE penpal_id = $1 AND available`
	tag, err := tx.Exec(ctx, claim, match.PenpalID)
	if err != nil {
		return fmt.Errorf("claim penpal: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	const insert = `INSERT INTO matches (match_id, account_id, penpal_id, matched_at)
		VALUES ($1, $2, $3, $4)`
	if _, err := tx.Exec(ctx, insert, match.ID, match.AccountID, match.PenpalID, match.MatchedAt); err != nil {
		return fmt.Errorf("append match: %w", err)
	}

	return tx.Commit(ctx)
}

// ListMatchesByAccount returns the match history for an account, newest first.
func (r *Repository) ListMatchesByAccount(ctx context.Context, accountID string) ([]domain.Match, error) {
	const query = `SELECT match_id, account_id, penpal_id, matched_at FROM matches
		WHERE account_id = $1 ORDER BY matched_at DESC`
	rows, err := r.pool.Query(ctx, query, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := make([]domain.Match, 0)
	for rows.Next() {
		var m domain.Match
		if err := rows.Scan(&m.ID, &m.AccountID, &m.PenpalID, &m.MatchedAt); err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// PutReservation writes one reservation record, replacing any previous
// record for the same customer.
func (r *Repository) PutReservation(ctx context.Context, reservation *domain.Reservation) error {
	const query = `INSERT INTO reservations (customer_id, penpal_email, penpal_type, unicorn_type, unicorn_secret_id, puppy_type, puppy_secret_id, created_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''), $8)
		ON CONFLICT (customer_id) DO UPDATE SET
			penpal_email = EXCLUDED.penpal_email,
			penpal_type = EXCLUDED.penpal_type,
			unicorn_type = EXCLUDED.unicorn_type,
			unicorn_secret_id = EXCLUDED.unicorn_secret_id,
			puppy_type = EXCLUDED.puppy_type,
			puppy_secret_id = EXCLUDED.puppy_secret_id,
			created_at = EXCLUDED.created_at`
	_, err := r.pool.Exec(ctx, query,
		reservation.CustomerID, reservation.PenpalEmail, reservation.PenpalType,
		reservation.UnicornType, reservation.UnicornSecretID,
		reservation.PuppyType, reservation.PuppySecretID,
		reservation.CreatedAt)
	return err
}
