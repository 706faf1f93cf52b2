// Package session manages worker-owned headless rendering sessions. Each
// worker of the pool holds exactly one browser for its whole lifetime,
// tracked in an explicit registry indexed by worker id so session lifetime
// stays auditable.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Config controls session creation and page readiness.
type Config struct {
	// UserAgent overrides the browser user agent when non-empty.
	UserAgent string
	// SettleTimeout bounds navigation plus the readiness wait; expiry
	// surfaces as a NavigationError.
	SettleTimeout time.Duration
	// PollInterval spaces out the rendered-text stabilization samples.
	PollInterval time.Duration
	// CatalogQPS enables a per-catalog-host rate limit when > 0. The
	// baseline contract has no adaptive slowdown, so it defaults to off.
	CatalogQPS float64
}

const (
	defaultSettleTimeout = 15 * time.Second
	defaultPollInterval  = 250 * time.Millisecond
)

// Manager lazily creates and caches one rendering session per worker.
// Sessions are never shared or migrated between workers; Close releases
// every created session exactly once.
type Manager struct {
	cfg         Config
	logger      *zap.Logger
	allocCtx    context.Context
	allocCancel context.CancelFunc

	mu       sync.Mutex
	sessions map[int]*session
	closed   bool

	limiters sync.Map
}

type session struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// NewManager builds a Manager backed by a shared headless Chrome allocator.
// Browsers start lazily on each worker's first fetch.
func NewManager(cfg Config, logger *zap.Logger) *Manager {
	if cfg.SettleTimeout <= 0 {
		cfg.SettleTimeout = defaultSettleTimeout
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", "new"),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("hide-scrollbars", true),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)

	return &Manager{
		cfg:         cfg,
		logger:      logger,
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
		sessions:    make(map[int]*session),
	}
}

// Fetch drives the worker's session to rawURL, waits until the rendered page
// settles, and returns the visible page text. Creation failures surface as
// SessionCreationError and load failures as NavigationError; both are meant
// to be caught at the task boundary.
func (m *Manager) Fetch(ctx context.Context, workerID int, rawURL string) (string, error) {
	sess, err := m.acquire(workerID)
	if err != nil {
		return "", err
	}

	if err := m.waitCatalogBudget(ctx, rawURL); err != nil {
		return "", &NavigationError{URL: rawURL, Err: err}
	}

	navCtx, cancel := context.WithTimeout(sess.ctx, m.cfg.SettleTimeout)
	defer cancel()
	stopForward := forwardCancel(ctx, cancel)
	defer stopForward()

	html, err := m.render(navCtx, rawURL)
	if err != nil {
		return "", &NavigationError{URL: rawURL, Err: err}
	}
	return pageText(html)
}

// acquire returns workerID's session, creating it on first use. A worker
// processes one task at a time, so acquire is never called concurrently for
// the same id; only the registry itself needs the lock.
func (m *Manager) acquire(workerID int) (*session, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, &SessionCreationError{Worker: workerID, Err: errors.New("session manager closed")}
	}
	if s, ok := m.sessions[workerID]; ok {
		m.mu.Unlock()
		return s, nil
	}
	m.mu.Unlock()

	tabCtx, cancel := chromedp.NewContext(m.allocCtx)
	if err := chromedp.Run(tabCtx); err != nil {
		cancel()
		return nil, &SessionCreationError{Worker: workerID, Err: err}
	}
	s := &session{ctx: tabCtx, cancel: cancel}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		cancel()
		return nil, &SessionCreationError{Worker: workerID, Err: errors.New("session manager closed")}
	}
	m.sessions[workerID] = s
	m.logger.Debug("session created", zap.Int("worker", workerID))
	return s, nil
}

// Close releases every session and the browser allocator. Safe to call more
// than once; only the first call tears anything down.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	for id, s := range m.sessions {
		s.cancel()
		delete(m.sessions, id)
		m.logger.Debug("session released", zap.Int("worker", id))
	}
	m.allocCancel()
}

func (m *Manager) render(ctx context.Context, rawURL string) (string, error) {
	var html string
	tasks := chromedp.Tasks{
		chromedp.Navigate(rawURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		waitStable(m.cfg.PollInterval),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	}
	if m.cfg.UserAgent != "" {
		tasks = append(chromedp.Tasks{emulation.SetUserAgentOverride(m.cfg.UserAgent)}, tasks...)
	}
	if err := chromedp.Run(ctx, tasks); err != nil {
		return "", fmt.Errorf("chromedp run: %w", err)
	}
	return html, nil
}

// waitStable polls the rendered text length until two consecutive samples
// agree on a non-empty page. Client-side rendering on catalog pages fills the
// result list well after the document is ready, so readiness is judged by
// content stabilization rather than a fixed sleep.
func waitStable(interval time.Duration) chromedp.ActionFunc {
	const lengthExpr = `document.body && document.body.innerText ? document.body.innerText.length : 0`
	return func(ctx context.Context) error {
		prev := -1
		for {
			var n int
			if err := chromedp.Evaluate(lengthExpr, &n).Do(ctx); err != nil {
				return fmt.Errorf("sample rendered text: %w", err)
			}
			if n > 0 && n == prev {
				return nil
			}
			prev = n
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(interval):
			}
		}
	}
}

func (m *Manager) waitCatalogBudget(ctx context.Context, rawURL string) error {
	if m.cfg.CatalogQPS <= 0 {
		return nil
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parse url: %w", err)
	}
	host := strings.ToLower(parsed.Host)
	val, _ := m.limiters.LoadOrStore(host, rate.NewLimiter(rate.Limit(m.cfg.CatalogQPS), 1))
	limiter, ok := val.(*rate.Limiter)
	if !ok {
		return fmt.Errorf("unexpected limiter type %T", val)
	}
	if err := limiter.Wait(ctx); err != nil {
		return fmt.Errorf("wait catalog budget: %w", err)
	}
	return nil
}

// pageText extracts the visible text of a rendered document, the same view
// of the page the marker classifier reads.
func pageText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parse rendered page: %w", err)
	}
	return doc.Text(), nil
}

func forwardCancel(parent context.Context, cancel context.CancelFunc) func() {
	if parent == nil {
		return func() {}
	}
	done := make(chan struct{})
	go func() {
		select {
		case <-parent.Done():
			cancel()
		case <-done:
		}
	}()
	return func() { close(done) }
}
