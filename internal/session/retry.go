package session

import (
	"context"
	"fmt"
	"os"

	"github.com/minsucho/passagetrace/internal/model"
)

// QueryCache lets the policy skip remote queries for sentences already
// resolved during this run.
type QueryCache interface {
	Get(sentence string) ([]model.MatchRecord, bool)
	Set(sentence string, records []model.MatchRecord)
}

// Limiter gates outgoing queries.
type Limiter interface {
	Wait(ctx context.Context) error
}

// RecoveryPolicy wraps Session.Query with bounded retry and forced session
// teardown/restart. Every failed attempt (echo mismatch, timeout, transport
// fault) closes the current session and opens a fresh one, so the caller
// always holds a usable session for subsequent sentences. Exhausting the
// attempt budget is a terminal per-sentence outcome, never a panic, and
// never stops the surrounding document loop.
type RecoveryPolicy struct {
	maxAttempts int
	limiter     Limiter    // optional
	cache       QueryCache // optional
	verbose     bool
}

// NewRecoveryPolicy creates a policy with the given attempt budget.
func NewRecoveryPolicy(maxAttempts int, limiter Limiter, cache QueryCache, verbose bool) *RecoveryPolicy {
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	return &RecoveryPolicy{
		maxAttempts: maxAttempts,
		limiter:     limiter,
		cache:       cache,
		verbose:     verbose,
	}
}

// Do resolves one sentence through sess, recycling it on failure. The
// returned records may be empty: a sentence absent from the corpus is a
// valid outcome.
func (p *RecoveryPolicy) Do(ctx context.Context, sess Session, sentence string) ([]model.MatchRecord, error) {
	if p.cache != nil {
		if records, ok := p.cache.Get(sentence); ok {
			return records, nil
		}
	}

	var lastErr error
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		if p.limiter != nil {
			if err := p.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		records, err := sess.Query(ctx, sentence)
		if err == nil {
			if p.cache != nil {
				p.cache.Set(sentence, records)
			}
			return records, nil
		}
		lastErr = err

		if p.verbose {
			fmt.Fprintf(os.Stderr, "retry %d/%d for %q: %v\n", attempt, p.maxAttempts, sentence, err)
		}

		// Recycle the session. The replacement is opened even after the
		// final attempt so the next sentence starts from a live session.
		sess.Close()
		if openErr := sess.Open(ctx); openErr != nil {
			lastErr = openErr
		}
	}

	return nil, fmt.Errorf("attempts exhausted (%d): %w", p.maxAttempts, lastErr)
}
