package session

import (
	"context"
	"errors"
	"testing"

	"github.com/minsucho/passagetrace/internal/model"
)

// fakeSession scripts Query outcomes and records lifecycle calls.
type fakeSession struct {
	queryErrs  []error // error per attempt; nil means success
	records    []model.MatchRecord
	openErr    error
	queries    int
	opens      int
	closes     int
	openFailed bool
}

func (f *fakeSession) Open(ctx context.Context) error {
	f.opens++
	if f.openErr != nil {
		f.openFailed = true
		return f.openErr
	}
	return nil
}

func (f *fakeSession) Query(ctx context.Context, sentence string) ([]model.MatchRecord, error) {
	idx := f.queries
	f.queries++
	if idx < len(f.queryErrs) && f.queryErrs[idx] != nil {
		return nil, f.queryErrs[idx]
	}
	return f.records, nil
}

func (f *fakeSession) Close() {
	f.closes++
}

type fakeCache struct {
	store map[string][]model.MatchRecord
	hits  int
}

func newFakeCache() *fakeCache {
	return &fakeCache{store: make(map[string][]model.MatchRecord)}
}

func (c *fakeCache) Get(sentence string) ([]model.MatchRecord, bool) {
	records, ok := c.store[sentence]
	if ok {
		c.hits++
	}
	return records, ok
}

func (c *fakeCache) Set(sentence string, records []model.MatchRecord) {
	c.store[sentence] = records
}

func TestRecoveryPolicy_SuccessFirstAttempt(t *testing.T) {
	sess := &fakeSession{records: []model.MatchRecord{{Key1: "A", Key2: "B", Key3: "1", Passage: "x"}}}
	policy := NewRecoveryPolicy(3, nil, nil, false)

	records, err := policy.Do(context.Background(), sess, "The cat sat on the mat")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(records) != 1 {
		t.Errorf("expected 1 record, got %d", len(records))
	}
	if sess.queries != 1 {
		t.Errorf("expected 1 query, got %d", sess.queries)
	}
	if sess.closes != 0 || sess.opens != 0 {
		t.Errorf("expected no session recycling, got %d closes %d opens", sess.closes, sess.opens)
	}
}

func TestRecoveryPolicy_RetryCeiling(t *testing.T) {
	// Echo mismatch on every attempt.
	sess := &fakeSession{
		queryErrs: []error{ErrEchoMismatch, ErrEchoMismatch, ErrEchoMismatch, ErrEchoMismatch},
	}
	policy := NewRecoveryPolicy(3, nil, nil, false)

	records, err := policy.Do(context.Background(), sess, "The cat sat on the mat")
	if err == nil {
		t.Fatal("expected exhaustion error")
	}
	if !errors.Is(err, ErrEchoMismatch) {
		t.Errorf("expected final fault wrapped, got %v", err)
	}
	if records != nil {
		t.Errorf("expected no records, got %v", records)
	}
	if sess.queries != 3 {
		t.Errorf("expected exactly 3 query attempts, got %d", sess.queries)
	}
	// Every failure recycles the session, including the last.
	if sess.closes != 3 || sess.opens != 3 {
		t.Errorf("expected 3 closes and 3 opens, got %d and %d", sess.closes, sess.opens)
	}
}

func TestRecoveryPolicy_RecoversAfterMismatch(t *testing.T) {
	sess := &fakeSession{
		queryErrs: []error{ErrEchoMismatch, nil},
		records:   []model.MatchRecord{{Key1: "A", Key2: "B", Key3: "1", Passage: "x"}},
	}
	policy := NewRecoveryPolicy(3, nil, nil, false)

	records, err := policy.Do(context.Background(), sess, "The cat sat on the mat")
	if err != nil {
		t.Fatalf("expected recovery, got %v", err)
	}
	if len(records) != 1 {
		t.Errorf("expected 1 record, got %d", len(records))
	}
	if sess.closes != 1 || sess.opens != 1 {
		t.Errorf("expected one recycle, got %d closes %d opens", sess.closes, sess.opens)
	}
}

func TestRecoveryPolicy_OpenFailureCounts(t *testing.T) {
	sess := &fakeSession{
		queryErrs: []error{ErrUITimeout, ErrUITimeout, ErrUITimeout},
		openErr:   ErrSessionCreate,
	}
	policy := NewRecoveryPolicy(3, nil, nil, false)

	_, err := policy.Do(context.Background(), sess, "The cat sat on the mat")
	if err == nil {
		t.Fatal("expected exhaustion error")
	}
	if !errors.Is(err, ErrSessionCreate) {
		t.Errorf("expected reopen failure as final fault, got %v", err)
	}
}

func TestRecoveryPolicy_ZeroMatchIsSuccess(t *testing.T) {
	sess := &fakeSession{} // Query returns (nil, nil)
	policy := NewRecoveryPolicy(3, nil, nil, false)

	records, err := policy.Do(context.Background(), sess, "The cat sat on the mat")
	if err != nil {
		t.Fatalf("expected no error for zero matches, got %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected no records, got %d", len(records))
	}
	if sess.queries != 1 {
		t.Errorf("expected single attempt, got %d", sess.queries)
	}
}

func TestRecoveryPolicy_CacheSkipsQuery(t *testing.T) {
	cache := newFakeCache()
	sess := &fakeSession{records: []model.MatchRecord{{Key1: "A", Key2: "B", Key3: "1", Passage: "x"}}}
	policy := NewRecoveryPolicy(3, nil, cache, false)

	if _, err := policy.Do(context.Background(), sess, "The cat sat on the mat"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, err := policy.Do(context.Background(), sess, "The cat sat on the mat"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if sess.queries != 1 {
		t.Errorf("expected the second resolution served from cache, got %d queries", sess.queries)
	}
	if cache.hits != 1 {
		t.Errorf("expected 1 cache hit, got %d", cache.hits)
	}
}
