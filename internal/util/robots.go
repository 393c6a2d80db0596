package util

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/temoto/robotstxt"
)

// RobotsGate checks whether the configured search URL may be crawled. The
// runner hits one host only, so there is no per-domain cache to keep.
type RobotsGate struct {
	httpClient *http.Client
	userAgent  string
}

// NewRobotsGate creates a gate using the given user agent.
func NewRobotsGate(userAgent string, timeout time.Duration) *RobotsGate {
	return &RobotsGate{
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  userAgent,
	}
}

// Allowed reports whether rawURL may be fetched according to the host's
// robots.txt. An unreachable or missing robots.txt allows by default.
func (g *RobotsGate) Allowed(ctx context.Context, rawURL string) (bool, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false, fmt.Errorf("parse URL: %w", err)
	}

	robotsURL := fmt.Sprintf("%s://%s/robots.txt", parsed.Scheme, parsed.Host)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", g.userAgent)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return true, nil
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := robotstxt.FromResponse(resp)
	if err != nil {
		return true, nil
	}

	group := data.FindGroup(g.userAgent)
	if group == nil {
		return true, nil
	}
	return group.Test(parsed.Path), nil
}
