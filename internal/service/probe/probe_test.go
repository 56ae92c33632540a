package probe

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"log/slog"
)

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCheckReachableOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := New(time.Second, newLogger())
	status, err := p.CheckReachable(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("expected reachable, got %v", err)
	}
	if status != http.StatusOK {
		t.Fatalf("unexpected status: %d", status)
	}
}

func TestCheckReachableNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	p := New(time.Second, newLogger())
	status, err := p.CheckReachable(context.Background(), srv.URL)
	if err != ErrUnreachable {
		t.Fatalf("expected ErrUnreachable, got %v", err)
	}
	if status != http.StatusForbidden {
		t.Fatalf("expected status passed through, got %d", status)
	}
}

func TestCheckReachableNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	p := New(time.Second, newLogger())
	status, err := p.CheckReachable(context.Background(), srv.URL)
	if err != ErrUnreachable {
		t.Fatalf("expected ErrUnreachable, got %v", err)
	}
	if status != 0 {
		t.Fatalf("expected zero status for failed request, got %d", status)
	}
}

func TestAnalyzeContentReturnsCannedVibe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>hello</html>"))
	}))
	defer srv.Close()

	p := New(time.Second, newLogger())
	p.pick = func(n int) int { return 1 }

	summary, err := p.AnalyzeContent(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("analyze content: %v", err)
	}
	if summary != staticVibes[1] {
		t.Fatalf("unexpected summary: %q", summary)
	}
}

func TestAnalyzeContentUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := New(time.Second, newLogger())
	if _, err := p.AnalyzeContent(context.Background(), srv.URL); err != ErrUnreachable {
		t.Fatalf("expected ErrUnreachable, got %v", err)
	}
}

func TestAnalyzeExternalSwallowsFailures(t *testing.T) {
	p := New(time.Second, newLogger())
	// Must not panic or propagate anything.
	p.AnalyzeExternal(context.Background(), "http://127.0.0.1:1")
	p.RegisterPhoto(context.Background(), "http://127.0.0.1:1/photo.png")
}
