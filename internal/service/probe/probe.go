// Package probe checks user-submitted URLs before the match form accepts
// them, and produces the canned "vibe" summaries shown in the demo UI.
package probe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"time"

	"log/slog"
)

// ErrUnreachable indicates the URL could not be fetched or returned a
// non-2xx status.
var ErrUnreachable = errors.New("probe: url unreachable")

// vibe summaries returned in place of a real content analysis. The demo
// picks one at random.
var staticVibes = []string{
	"This content seems very positive and uplifting!",
	"We will find a penpal as clever as you!",
	"We will find the perfect techy penpal to match you techy vibe!",
	"We will find a penpal that matches your adventurous spirit!",
	"Based on this URL, we will find a penpal that matches your air of mystery!",
}

// maxProbeBody bounds how much of a probed page is read.
const maxProbeBody = 1 << 20

// Prober fetches user-submitted URLs with a bounded timeout. A single GET,
// no retries; redirect handling is whatever the underlying client does by
// default, callers must not rely on it.
type Prober struct {
	client *http.Client
	logger *slog.Logger
	pick   func(n int) int
}

// New constructs a Prober with the given fetch timeout.
func New(timeout time.Duration, logger *slog.Logger) *Prober {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Prober{
		client: &http.Client{Timeout: timeout},
		logger: logger,
		pick:   rand.Intn,
	}
}

// CheckReachable issues a single GET and reports ErrUnreachable for any
// network failure or non-2xx status. The returned status code is zero when
// the request never completed.
func (p *Prober) CheckReachable(ctx context.Context, url string) (int, error) {
	resp, err := p.fetch(ctx, url)
	if err != nil {
		return 0, ErrUnreachable
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, ErrUnreachable
	}
	return resp.StatusCode, nil
}

// AnalyzeContent fetches the URL and returns a vibe summary of its content.
func (p *Prober) AnalyzeContent(ctx context.Context, url string) (string, error) {
	resp, err := p.fetch(ctx, url)
	if err != nil {
		return "", ErrUnreachable
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", ErrUnreachable
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxProbeBody))
	if err != nil {
		return "", ErrUnreachable
	}
	return p.summarizeVibes(string(body)), nil
}

// AnalyzeExternal fetches profile data for side-effect analysis during match
// assignment. Best effort: failures are logged and swallowed so they never
// abort an assignment.
func (p *Prober) AnalyzeExternal(ctx context.Context, url string) {
	resp, err := p.fetch(ctx, url)
	if err != nil {
		p.logger.Warn("external profile fetch failed", "url", url, "error", err)
		return
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxProbeBody))
	p.logger.Info("analyzed external profile data", "url", url, "status", resp.StatusCode)
}

// RegisterPhoto records a photo URL for later ingestion. Best effort; no
// validation is required to succeed.
func (p *Prober) RegisterPhoto(_ context.Context, url string) {
	p.logger.Info("registered photo url for upload", "url", url)
}

// summarizeVibes returns an AI-flavored summary of the fetched content. The
// demo substitutes a uniform random canned response for the model call.
func (p *Prober) summarizeVibes(content string) string {
	p.logger.Info("summarizing url vibes", "content_bytes", len(content))
	return staticVibes[p.pick(len(staticVibes))]
}

func (p *Prober) fetch(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build probe request: %w", err)
	}
	return p.client.Do(req)
}
