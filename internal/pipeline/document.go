package pipeline

import (
	"context"
	"fmt"
	"os"

	"github.com/minsucho/passagetrace/internal/model"
	"github.com/minsucho/passagetrace/internal/session"
)

// Extractor produces the searchable sentences of one document.
type Extractor interface {
	Sentences(path string) ([]string, error)
}

// DocumentWorker drives one document through extraction and the per-sentence
// search loop. One worker owns one session; sentences are processed strictly
// sequentially because a session is not safe for concurrent queries.
type DocumentWorker struct {
	extractor  Extractor
	newSession func() session.Session
	policy     *session.RecoveryPolicy
	verbose    bool
}

// NewDocumentWorker wires a worker from its collaborators.
func NewDocumentWorker(extractor Extractor, newSession func() session.Session, policy *session.RecoveryPolicy, verbose bool) *DocumentWorker {
	return &DocumentWorker{
		extractor:  extractor,
		newSession: newSession,
		policy:     policy,
		verbose:    verbose,
	}
}

// Process resolves every sentence of the document at path into the returned
// partial. Per-sentence failures become ErrorEntry values and never abort
// the remaining sentences; an extraction failure becomes a whole-document
// ErrorEntry. The session is force-closed on return.
func (w *DocumentWorker) Process(ctx context.Context, path string) model.PartialResult {
	partial := model.NewPartialResult(path)

	sentences, err := w.extractor.Sentences(path)
	if err != nil {
		partial.Errors = append(partial.Errors, model.ErrorEntry{
			Document: path,
			Error:    fmt.Sprintf("extract: %v", err),
		})
		return partial
	}
	partial.Sentences = len(sentences)
	if len(sentences) == 0 {
		return partial
	}

	sess := w.newSession()
	defer sess.Close()

	if err := sess.Open(ctx); err != nil && w.verbose {
		// Recoverable: the policy recycles the session on the first query
		// failure.
		fmt.Fprintf(os.Stderr, "%s: initial session open: %v\n", path, err)
	}

	for _, sentence := range sentences {
		records, err := w.resolve(ctx, sess, sentence)
		if err != nil {
			partial.Errors = append(partial.Errors, model.ErrorEntry{
				Document: path,
				Sentence: sentence,
				Error:    err.Error(),
			})
			continue
		}
		for _, rec := range records {
			partial.Results.Put(rec)
		}
	}

	return partial
}

// resolve runs the recovery policy for one sentence with a catch-all so a
// panicking driver cannot take the rest of the document down with it.
func (w *DocumentWorker) resolve(ctx context.Context, sess session.Session, sentence string) (records []model.MatchRecord, err error) {
	defer func() {
		if r := recover(); r != nil {
			records, err = nil, fmt.Errorf("panic during query: %v", r)
		}
	}()
	return w.policy.Do(ctx, sess, sentence)
}
