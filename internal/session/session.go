package session

import (
	"context"
	"errors"

	"github.com/minsucho/passagetrace/internal/model"
)

// Session owns one live connection to the remote search UI. A session is
// stateful and expensive to create; it is not safe for concurrent queries.
type Session interface {
	// Open creates a fresh connection. Failures wrap ErrSessionCreate.
	Open(ctx context.Context) error

	// Query submits sentence to the search UI and returns the structured
	// matches from the result page. Zero matches with a nil error means the
	// sentence is simply absent from the corpus. The echoed query text must
	// equal sentence exactly; otherwise ErrEchoMismatch is returned.
	Query(ctx context.Context, sentence string) ([]model.MatchRecord, error)

	// Close tears the connection down best-effort and then sleeps a fixed
	// cooldown so the underlying resource is released before reuse.
	Close()
}

var (
	// ErrSessionCreate marks a driver/process failure while opening.
	ErrSessionCreate = errors.New("session create failed")

	// ErrNotOpen is returned by Query on a session that was never opened
	// or has been closed.
	ErrNotOpen = errors.New("session not open")

	// ErrUITimeout means the search widget never became interactive within
	// the bounded wait.
	ErrUITimeout = errors.New("search widget not ready")

	// ErrEchoMismatch means the result page echoed a different query text
	// than the submitted sentence. Recoverable, not a transport error.
	ErrEchoMismatch = errors.New("echoed query text mismatch")
)

// New constructs the configured session driver.
func New(cfg model.SearchConfig, verbose bool) Session {
	if cfg.Driver == "http" {
		return NewHTTPSession(cfg, verbose)
	}
	return NewChromeSession(cfg, verbose)
}
