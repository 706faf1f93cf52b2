// Package pool implements the bounded worker pool that fans (title, catalog)
// lookups across per-worker rendering sessions and aggregates results in
// completion order.
package pool

import (
	"context"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/shelfscan/shelfscan/internal/catalog"
	"github.com/shelfscan/shelfscan/internal/progress"
)

// PageFetcher loads a URL in the session owned by workerID and returns the
// rendered page text. The session manager implements it.
type PageFetcher interface {
	Fetch(ctx context.Context, workerID int, url string) (string, error)
}

// Config controls pool behavior.
type Config struct {
	// Workers is the fixed number of concurrent workers (default 16).
	Workers int
	// CacheSize bounds the render cache; duplicate search URLs reuse the
	// first classification instead of re-rendering (default 256).
	CacheSize int
}

const (
	defaultWorkers   = 16
	defaultCacheSize = 256
)

// Pool executes lookup tasks over a fixed set of workers. Each worker pulls
// the next unclaimed task from a shared FIFO queue, runs fetch and classify
// with its own session, and emits exactly one result, so the result count
// always equals the task count whatever order workers finish in.
type Pool struct {
	cfg     Config
	fetcher PageFetcher
	tracker *progress.Tracker
	logger  *zap.Logger
	cache   *lru.Cache[string, catalog.Classification]
}

// New constructs a Pool. The tracker may be nil.
func New(cfg Config, fetcher PageFetcher, tracker *progress.Tracker, logger *zap.Logger) (*Pool, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("page fetcher is required")
	}
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkers
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = defaultCacheSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	cache, err := lru.New[string, catalog.Classification](cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("init render cache: %w", err)
	}
	return &Pool{
		cfg:     cfg,
		fetcher: fetcher,
		tracker: tracker,
		logger:  logger,
		cache:   cache,
	}, nil
}

// Run executes every task and blocks until all results have been collected.
// Results arrive in completion order, not submission order. Task failures
// are downgraded to Unknown results at this boundary; a single failed lookup
// never aborts the pool or other tasks, and nothing is retried.
func (p *Pool) Run(ctx context.Context, tasks []catalog.Task) []catalog.Result {
	if len(tasks) == 0 {
		return nil
	}

	queue := make(chan catalog.Task, len(tasks))
	for _, task := range tasks {
		queue <- task
	}
	close(queue)

	results := make(chan catalog.Result)
	var wg sync.WaitGroup
	for id := range p.cfg.Workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.worker(ctx, id, queue, results)
		}()
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	out := make([]catalog.Result, 0, len(tasks))
	for res := range results {
		out = append(out, res)
	}
	return out
}

// worker drains the queue even after ctx expires: canceled fetches fail fast
// and come back as Unknown, keeping the one-result-per-task invariant.
func (p *Pool) worker(ctx context.Context, id int, queue <-chan catalog.Task, results chan<- catalog.Result) {
	for task := range queue {
		results <- p.runTask(ctx, id, task)
	}
}

func (p *Pool) runTask(ctx context.Context, workerID int, task catalog.Task) catalog.Result {
	start := time.Now()
	cls, note := p.classifyURL(ctx, workerID, task)

	if note != "" {
		p.logger.Warn("lookup downgraded",
			zap.Int("worker", workerID),
			zap.String("catalog", task.Catalog),
			zap.String("title", task.Title),
			zap.String("error", note),
		)
	} else {
		p.logger.Debug("lookup completed",
			zap.Int("worker", workerID),
			zap.String("catalog", task.Catalog),
			zap.String("title", task.Title),
			zap.String("availability", string(cls.Availability)),
		)
	}

	p.tracker.TaskDone(ctx, task.Catalog, cls.Availability, time.Since(start))

	return catalog.Result{
		Title:        task.Title,
		Author:       task.Author,
		Catalog:      task.Catalog,
		Availability: cls.Availability,
		Audiobook:    cls.Audiobook,
		Ebook:        cls.Ebook,
		URL:          task.URL,
		Note:         note,
	}
}

func (p *Pool) classifyURL(ctx context.Context, workerID int, task catalog.Task) (catalog.Classification, string) {
	if cls, ok := p.cache.Get(task.URL); ok {
		return cls, ""
	}
	text, err := p.fetcher.Fetch(ctx, workerID, task.URL)
	if err != nil {
		return catalog.Classification{Availability: catalog.Unknown}, err.Error()
	}
	cls := catalog.Classify(text)
	p.cache.Add(task.URL, cls)
	return cls, ""
}
