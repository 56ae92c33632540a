package match

import (
	"context"
	"errors"
	"io"
	"testing"

	"log/slog"

	"github.com/TaraScho/gameday-demo-app-services/internal/domain"
	"github.com/TaraScho/gameday-demo-app-services/internal/repository"
)

// stubStore implements the penpal, match and profile repositories. Penpals
// in stale are returned by the scan but fail the conditional claim, like a
// candidate grabbed by a concurrent assignment.
type stubStore struct {
	available      []domain.Penpal
	stale          map[string]bool
	matches        []domain.Match
	updates        []domain.ProfileUpdate
	profile        *domain.Profile
	profileUpserts int
	listErr        error
}

func newStubStore(penpals ...domain.Penpal) *stubStore {
	return &stubStore{available: penpals, stale: make(map[string]bool)}
}

func (s *stubStore) ListAvailablePenpals(_ context.Context) ([]domain.Penpal, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return append([]domain.Penpal(nil), s.available...), nil
}

func (s *stubStore) RecordMatch(_ context.Context, update domain.ProfileUpdate, match *domain.Match) error {
	if s.stale[match.PenpalID] {
		return repository.ErrNotFound
	}
	s.updates = append(s.updates, update)
	s.matches = append(s.matches, *match)
	return nil
}

func (s *stubStore) ListMatchesByAccount(_ context.Context, accountID string) ([]domain.Match, error) {
	out := make([]domain.Match, 0)
	for _, m := range s.matches {
		if m.AccountID == accountID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *stubStore) UpsertProfile(_ context.Context, _ string, update domain.ProfileUpdate) error {
	s.updates = append(s.updates, update)
	s.profileUpserts++
	return nil
}

func (s *stubStore) GetProfile(_ context.Context, accountID string) (*domain.Profile, error) {
	if s.profile == nil {
		return nil, repository.ErrNotFound
	}
	return s.profile, nil
}

type recordingAnalyzer struct {
	analyzed []string
	photos   []string
}

func (a *recordingAnalyzer) AnalyzeExternal(_ context.Context, url string) {
	a.analyzed = append(a.analyzed, url)
}

func (a *recordingAnalyzer) RegisterPhoto(_ context.Context, url string) {
	a.photos = append(a.photos, url)
}

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func strptr(s string) *string { return &s }

func identityPerm(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func TestAssignPenpalSingleCandidate(t *testing.T) {
	store := newStubStore(domain.Penpal{ID: "p1", Name: "Sparkle the Unicorn", Available: true})
	svc := New(store, store, store, &recordingAnalyzer{}, newLogger())

	penpal, err := svc.AssignPenpal(context.Background(), "a@x.com", domain.ProfileUpdate{Hobbies: strptr("chess")})
	if err != nil {
		t.Fatalf("assign penpal: %v", err)
	}
	if penpal.ID != "p1" {
		t.Fatalf("expected p1, got %q", penpal.ID)
	}
	if len(store.matches) != 1 {
		t.Fatalf("expected exactly one match written, got %d", len(store.matches))
	}
	m := store.matches[0]
	if m.ID == "" {
		t.Fatalf("expected generated match id")
	}
	if m.AccountID != "a@x.com" || m.PenpalID != "p1" {
		t.Fatalf("unexpected match row: %+v", m)
	}
	if m.MatchedAt.IsZero() {
		t.Fatalf("expected match timestamp")
	}
}

func TestAssignPenpalEmptySet(t *testing.T) {
	store := newStubStore()
	svc := New(store, store, store, &recordingAnalyzer{}, newLogger())

	_, err := svc.AssignPenpal(context.Background(), "a@x.com", domain.ProfileUpdate{Hobbies: strptr("chess")})
	if !errors.Is(err, ErrNoPenpalAvailable) {
		t.Fatalf("expected ErrNoPenpalAvailable, got %v", err)
	}
	if len(store.matches) != 0 {
		t.Fatalf("expected zero match records, got %d", len(store.matches))
	}
	if store.profileUpserts != 1 {
		t.Fatalf("expected profile update persisted anyway, got %d upserts", store.profileUpserts)
	}
}

func TestAssignPenpalFallsBackOnLostClaim(t *testing.T) {
	store := newStubStore(
		domain.Penpal{ID: "p1", Name: "Sparkle the Unicorn", Available: true},
		domain.Penpal{ID: "p2", Name: "Biscuit the Puppy", Available: true},
	)
	// p1 is claimed by a concurrent assignment between our scan and claim.
	store.stale["p1"] = true

	svc := New(store, store, store, &recordingAnalyzer{}, newLogger())
	svc.perm = identityPerm

	penpal, err := svc.AssignPenpal(context.Background(), "a@x.com", domain.ProfileUpdate{})
	if err != nil {
		t.Fatalf("assign penpal: %v", err)
	}
	if penpal.ID != "p2" {
		t.Fatalf("expected fallback to p2, got %q", penpal.ID)
	}
	if len(store.matches) != 1 {
		t.Fatalf("expected exactly one match written, got %d", len(store.matches))
	}
}

func TestAssignPenpalAllClaimsLost(t *testing.T) {
	store := newStubStore(domain.Penpal{ID: "p1", Name: "Sparkle the Unicorn", Available: true})
	store.stale["p1"] = true

	svc := New(store, store, store, &recordingAnalyzer{}, newLogger())
	_, err := svc.AssignPenpal(context.Background(), "a@x.com", domain.ProfileUpdate{Hobbies: strptr("chess")})
	if !errors.Is(err, ErrNoPenpalAvailable) {
		t.Fatalf("expected ErrNoPenpalAvailable, got %v", err)
	}
	if len(store.matches) != 0 {
		t.Fatalf("expected no match written, got %d", len(store.matches))
	}
	if store.profileUpserts != 1 {
		t.Fatalf("expected profile update still persisted")
	}
}

func TestAssignPenpalRunsBestEffortSideEffects(t *testing.T) {
	store := newStubStore(domain.Penpal{ID: "p1", Name: "Sparkle the Unicorn", Available: true})
	analyzer := &recordingAnalyzer{}
	svc := New(store, store, store, analyzer, newLogger())

	update := domain.ProfileUpdate{
		Hobbies:            strptr("chess"),
		ExternalProfileURL: strptr("https://blog.example.com"),
		ExternalPhotoURL:   strptr("https://img.example.com/me.png"),
	}
	if _, err := svc.AssignPenpal(context.Background(), "a@x.com", update); err != nil {
		t.Fatalf("assign penpal: %v", err)
	}
	if len(analyzer.analyzed) != 1 || analyzer.analyzed[0] != "https://blog.example.com" {
		t.Fatalf("expected profile url analyzed, got %v", analyzer.analyzed)
	}
	if len(analyzer.photos) != 1 || analyzer.photos[0] != "https://img.example.com/me.png" {
		t.Fatalf("expected photo url registered, got %v", analyzer.photos)
	}
	if len(store.updates) != 1 {
		t.Fatalf("expected one profile merge, got %d", len(store.updates))
	}
	if store.updates[0].FavoriteColor != nil {
		t.Fatalf("absent fields must stay nil in the update")
	}
}

func TestProfileDefaultsToEmpty(t *testing.T) {
	store := newStubStore()
	svc := New(store, store, store, &recordingAnalyzer{}, newLogger())

	profile, err := svc.Profile(context.Background(), "a@x.com")
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if profile.AccountID != "a@x.com" || profile.Hobbies != "" {
		t.Fatalf("expected empty profile, got %+v", profile)
	}
}

func TestProfileReturnsStoredAttributes(t *testing.T) {
	store := newStubStore()
	store.profile = &domain.Profile{AccountID: "a@x.com", Hobbies: "chess"}
	svc := New(store, store, store, &recordingAnalyzer{}, newLogger())

	profile, err := svc.Profile(context.Background(), "a@x.com")
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if profile.Hobbies != "chess" {
		t.Fatalf("expected stored hobbies, got %+v", profile)
	}
}

func TestHistoryFiltersByAccount(t *testing.T) {
	store := newStubStore(
		domain.Penpal{ID: "p1", Name: "Sparkle the Unicorn", Available: true},
	)
	svc := New(store, store, store, &recordingAnalyzer{}, newLogger())

	if _, err := svc.AssignPenpal(context.Background(), "a@x.com", domain.ProfileUpdate{}); err != nil {
		t.Fatalf("assign penpal: %v", err)
	}

	history, err := svc.History(context.Background(), "a@x.com")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1 || history[0].PenpalID != "p1" {
		t.Fatalf("unexpected history: %+v", history)
	}

	other, err := svc.History(context.Background(), "someone-else")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(other) != 0 {
		t.Fatalf("expected empty history for other account, got %+v", other)
	}
}

func TestAssignPenpalListFailurePropagates(t *testing.T) {
	store := newStubStore()
	store.listErr = errors.New("store unavailable")
	svc := New(store, store, store, &recordingAnalyzer{}, newLogger())

	if _, err := svc.AssignPenpal(context.Background(), "a@x.com", domain.ProfileUpdate{}); err == nil {
		t.Fatalf("expected transient store error to propagate")
	}
	if len(store.matches) != 0 {
		t.Fatalf("expected no match written")
	}
}
