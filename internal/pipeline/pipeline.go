package pipeline

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/minsucho/passagetrace/internal/cache"
	"github.com/minsucho/passagetrace/internal/extract"
	"github.com/minsucho/passagetrace/internal/model"
	"github.com/minsucho/passagetrace/internal/session"
	"github.com/minsucho/passagetrace/internal/util"
	"github.com/minsucho/passagetrace/internal/worker"
)

// Orchestrator discovers input documents, fans them out across a fixed-size
// worker pool, and merges the partial results deterministically.
type Orchestrator struct {
	cfg        *model.Config
	extractor  Extractor
	newSession func() session.Session
	robots     *util.RobotsGate
}

// RunStats summarizes a completed run.
type RunStats struct {
	Documents int
	Sentences int
	Passages  int
	Errors    int
}

// New builds an orchestrator from configuration.
func New(cfg *model.Config) (*Orchestrator, error) {
	extractor, err := extract.NewSentenceExtractor(cfg.Extract)
	if err != nil {
		return nil, err
	}
	return &Orchestrator{
		cfg:       cfg,
		extractor: extractor,
		newSession: func() session.Session {
			return session.New(cfg.Search, cfg.Output.Verbose)
		},
		robots: util.NewRobotsGate(cfg.Search.UserAgent, cfg.Search.ReadyTimeout),
	}, nil
}

// Run processes every document under root and returns the merged results,
// the concatenated error log, and run totals. Partial results are merged in
// document-path order so reruns over the same tree produce identical output.
func (o *Orchestrator) Run(ctx context.Context, root string) (model.ResultMap, []model.ErrorEntry, RunStats, error) {
	stats := RunStats{}

	docs, err := Discover(root, o.cfg.Crawl.Extension)
	if err != nil {
		return nil, nil, stats, fmt.Errorf("discover documents: %w", err)
	}
	stats.Documents = len(docs)

	if o.cfg.Search.RespectRobots {
		allowed, err := o.robots.Allowed(ctx, o.cfg.Search.URL)
		if err != nil {
			return nil, nil, stats, fmt.Errorf("robots check: %w", err)
		}
		if !allowed {
			return nil, nil, stats, fmt.Errorf("robots.txt disallows crawling %s", o.cfg.Search.URL)
		}
	}

	// Shared across workers; both are safe for concurrent use.
	queryCache := cache.NewQueryCache(o.cfg.Search.CacheTTL)
	limiter := worker.NewQueryLimiter(o.cfg.Search.RequestsPerSecond, o.cfg.Search.Burst)
	policy := session.NewRecoveryPolicy(o.cfg.Search.MaxAttempts, limiter, queryCache, o.cfg.Output.Verbose)

	pool := worker.NewPool[model.PartialResult](ctx, o.cfg.Crawl.PoolSize)
	pool.Start()

	for _, doc := range docs {
		doc := doc
		w := NewDocumentWorker(o.extractor, o.newSession, policy, o.cfg.Output.Verbose)
		pool.Submit(func(ctx context.Context) model.PartialResult {
			return w.Process(ctx, doc)
		})
	}

	partials := pool.Wait()

	// Completion order is nondeterministic; sort by document path so the
	// last-write-wins merge is reproducible across runs.
	sort.Slice(partials, func(i, j int) bool {
		return partials[i].Document < partials[j].Document
	})

	results := make(model.ResultMap)
	var errLog []model.ErrorEntry
	for _, partial := range partials {
		results.Merge(partial.Results)
		errLog = append(errLog, partial.Errors...)
		stats.Sentences += partial.Sentences
	}

	stats.Passages = countLeaves(results)
	stats.Errors = len(errLog)
	return results, errLog, stats, nil
}

// Discover walks root recursively and returns all files with the given
// extension, sorted by path.
func Discover(root, extension string) ([]string, error) {
	var docs []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), extension) {
			docs = append(docs, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(docs)
	return docs, nil
}

func countLeaves(m model.ResultMap) int {
	n := 0
	for _, inner := range m {
		for _, leaf := range inner {
			n += len(leaf)
		}
	}
	return n
}
