package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/TaraScho/gameday-demo-app-services/internal/service/reservation"
)

type reservationStub struct {
	message string
	err     error
	raw     []byte
}

func (s *reservationStub) Process(_ context.Context, raw []byte) (string, error) {
	s.raw = raw
	if s.err != nil {
		return "", s.err
	}
	return s.message, nil
}

func postReservation(t *testing.T, handler http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/reservations", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestReserveSuccessWithCORS(t *testing.T) {
	stub := &reservationStub{message: "We have reserved a Sparkle penpal for you!  Write them today at e@x.com. Your new bestie can't wait to hear from you."}
	router := NewReservationsRouter(stub, NewMemoryRateLimiter(), nil, testLogger())
	defer router.Close()

	rec := postReservation(t, router, `{"detail": {"penpal_type": "Unicorn"}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("Access-Control-Allow-Origin = %q", got)
	}
	if got := rec.Header().Get("Cache-Control"); got != "no-store" {
		t.Fatalf("Cache-Control = %q", got)
	}
	// The body is a bare JSON string, not an object.
	var got string
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode confirmation string: %v", err)
	}
	if got != stub.message {
		t.Fatalf("message = %q", got)
	}
}

func TestReserveUnrecognizedSource(t *testing.T) {
	stub := &reservationStub{err: reservation.ErrUnrecognizedSource}
	router := NewReservationsRouter(stub, NewMemoryRateLimiter(), nil, testLogger())
	defer router.Close()

	rec := postReservation(t, router, `resignation letter`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := decodeBody(t, rec)["error"]; got != "Event source not recognized." {
		t.Fatalf("error = %q", got)
	}
}

func TestReserveStoreFailure(t *testing.T) {
	stub := &reservationStub{err: errors.New("table unavailable")}
	router := NewReservationsRouter(stub, NewMemoryRateLimiter(), nil, testLogger())
	defer router.Close()

	rec := postReservation(t, router, `{"detail": {"penpal_type": "Unicorn"}}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatal("CORS headers missing on error response")
	}
}

func TestReservePreflight(t *testing.T) {
	router := NewReservationsRouter(&reservationStub{}, NewMemoryRateLimiter(), nil, testLogger())
	defer router.Close()

	req := httptest.NewRequest(http.MethodOptions, "/reservations", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Methods"); !strings.Contains(got, "POST") {
		t.Fatalf("Access-Control-Allow-Methods = %q", got)
	}
}
