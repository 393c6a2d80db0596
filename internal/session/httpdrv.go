package session

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/minsucho/passagetrace/internal/model"
	"github.com/minsucho/passagetrace/internal/util"
)

// HTTPSession queries the search UI with a plain GET. It serves deployments
// whose result page is rendered server-side; the echo-validation and
// block-extraction contract is identical to the chrome driver.
type HTTPSession struct {
	cfg     model.SearchConfig
	verbose bool
	client  *http.Client
}

// NewHTTPSession creates an unopened http-driver session.
func NewHTTPSession(cfg model.SearchConfig, verbose bool) *HTTPSession {
	return &HTTPSession{cfg: cfg, verbose: verbose}
}

// Open validates the configured URL and builds the client.
func (s *HTTPSession) Open(ctx context.Context) error {
	if _, err := url.Parse(s.cfg.URL); err != nil || s.cfg.URL == "" {
		return fmt.Errorf("%w: bad search url %q", ErrSessionCreate, s.cfg.URL)
	}

	s.client = &http.Client{
		Timeout: s.cfg.ReadyTimeout,
		Transport: &http.Transport{
			Proxy: util.NewProxyFunc(s.cfg.HTTPProxy, s.cfg.HTTPSProxy),
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 3 {
				return fmt.Errorf("stopped after 3 redirects")
			}
			return nil
		},
	}
	return nil
}

// Query performs the search request and parses the response page.
func (s *HTTPSession) Query(ctx context.Context, sentence string) ([]model.MatchRecord, error) {
	if s.client == nil {
		return nil, ErrNotOpen
	}

	u, err := url.Parse(s.cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse search url: %w", err)
	}
	q := u.Query()
	q.Set(s.cfg.QueryParam, sentence)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", s.cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := s.client.Do(req)
	if err != nil {
		if ue, ok := err.(*url.Error); ok && ue.Timeout() {
			return nil, fmt.Errorf("%w: %v", ErrUITimeout, err)
		}
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.cfg.MaxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return matchPage(string(body), s.cfg, sentence)
}

// Close drops idle connections and enforces the cooldown.
func (s *HTTPSession) Close() {
	if s.client != nil {
		s.client.CloseIdleConnections()
		s.client = nil
	}
	time.Sleep(s.cfg.Cooldown)
}
