// Package match implements the penpal assignment engine: merge the
// submitted profile attributes, pick an available penpal at random, and
// persist the match.
package match

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"github.com/TaraScho/gameday-demo-app-services/internal/domain"
	"github.com/TaraScho/gameday-demo-app-services/internal/repository"
)

// ErrNoPenpalAvailable indicates the available penpal set is empty. The
// profile update is still persisted.
var ErrNoPenpalAvailable = errors.New("match: no penpal available")

// URLAnalyzer handles the optional, best-effort side effects of a match
// request: fetching the external profile URL for analysis and registering
// the photo URL for later ingestion.
type URLAnalyzer interface {
	AnalyzeExternal(ctx context.Context, url string)
	RegisterPhoto(ctx context.Context, url string)
}

// Service assigns penpals to authenticated users.
type Service struct {
	penpals  repository.PenpalRepository
	matches  repository.MatchRepository
	profiles repository.ProfileRepository
	analyzer URLAnalyzer
	logger   *slog.Logger
	perm     func(n int) []int
}

// New constructs a Service.
func New(penpals repository.PenpalRepository, matches repository.MatchRepository, profiles repository.ProfileRepository, analyzer URLAnalyzer, logger *slog.Logger) *Service {
	return &Service{
		penpals:  penpals,
		matches:  matches,
		profiles: profiles,
		analyzer: analyzer,
		logger:   logger,
		perm:     rand.Perm,
	}
}

// AssignPenpal merges the profile update for the account and assigns one
// available penpal chosen uniformly at random. There is deliberately no
// preference matching or weighting. The claim of the chosen penpal is a
// conditional write, so two concurrent assignments can never land on the
// same penpal; when a claim loses that race the next candidate from the
// random order is tried.
func (s *Service) AssignPenpal(ctx context.Context, accountID string, update domain.ProfileUpdate) (*domain.Penpal, error) {
	s.logger.Info("activity.request_match", "usr.id", accountID)

	if update.ExternalProfileURL != nil && *update.ExternalProfileURL != "" {
		s.analyzer.AnalyzeExternal(ctx, *update.ExternalProfileURL)
	}
	if update.ExternalPhotoURL != nil && *update.ExternalPhotoURL != "" {
		s.analyzer.RegisterPhoto(ctx, *update.ExternalPhotoURL)
	}

	candidates, err := s.penpals.ListAvailablePenpals(ctx)
	if err != nil {
		return nil, fmt.Errorf("list penpals: %w", err)
	}
	s.logger.Info("fetched available penpals", "count", len(candidates))

	for _, idx := range s.perm(len(candidates)) {
		penpal := candidates[idx]
		m := &domain.Match{
			ID:        uuid.NewString(),
			AccountID: accountID,
			PenpalID:  penpal.ID,
			MatchedAt: time.Now().UTC(),
		}
		err := s.matches.RecordMatch(ctx, update, m)
		if errors.Is(err, repository.ErrNotFound) {
			// Lost the claim race; the penpal is no longer available.
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("record match: %w", err)
		}
		s.logger.Info("penpal matched", "usr.id", accountID, "penpal_id", penpal.ID, "match_id", m.ID)
		return &penpal, nil
	}

	// Nothing assignable. The submitted profile attributes are kept anyway.
	if err := s.profiles.UpsertProfile(ctx, accountID, update); err != nil {
		return nil, fmt.Errorf("merge profile: %w", err)
	}
	return nil, ErrNoPenpalAvailable
}

// Profile returns the stored profile for the account. An account that has
// never submitted the match form gets an empty profile, not an error.
func (s *Service) Profile(ctx context.Context, accountID string) (*domain.Profile, error) {
	profile, err := s.profiles.GetProfile(ctx, accountID)
	if errors.Is(err, repository.ErrNotFound) {
		return &domain.Profile{AccountID: accountID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	return profile, nil
}

// History returns the account's past matches, newest first.
func (s *Service) History(ctx context.Context, accountID string) ([]domain.Match, error) {
	matches, err := s.matches.ListMatchesByAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	return matches, nil
}
