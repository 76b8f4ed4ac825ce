package engine

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"

	"github.com/scrapedeck/scrapedeck/config"
	"github.com/scrapedeck/scrapedeck/models"
)

// Manager owns the Chrome processes and their page pools. Browsers
// launch lazily and are kept per headless mode, since every run can
// toggle visibility. It is safe for concurrent use.
type Manager struct {
	cfg      config.BrowserConfig
	fetchCfg config.FetchConfig

	mu       sync.Mutex
	browsers map[bool]*browserHandle

	activePages atomic.Int32
}

type browserHandle struct {
	browser *rod.Browser
	pool    rod.Pool[rod.Page]

	mu     sync.Mutex
	health map[*rod.Page]*pageMeta
}

// pageMeta tracks how worn a pooled tab is. Long-lived tabs accumulate
// state and leak memory, so they are retired after enough uses or errors.
type pageMeta struct {
	uses   int
	errors int
}

const (
	pageMaxUses   = 50
	pageMaxErrors = 3
)

// NewManager creates a Manager. No browser is launched until the first
// browser-strategy fetch needs one.
func NewManager(cfg config.BrowserConfig, fetchCfg config.FetchConfig) *Manager {
	return &Manager{
		cfg:      cfg,
		fetchCfg: fetchCfg,
		browsers: make(map[bool]*browserHandle),
	}
}

// browserFor returns the browser handle for the given headless mode,
// launching and connecting one on first use.
func (m *Manager) browserFor(headless bool) (*browserHandle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if h, ok := m.browsers[headless]; ok {
		return h, nil
	}

	l := launcher.New().
		Headless(headless).
		NoSandbox(m.cfg.NoSandbox)

	if m.cfg.BrowserBin != "" {
		l = l.Bin(m.cfg.BrowserBin)
	}
	if m.cfg.DefaultProxy != "" {
		l = l.Proxy(m.cfg.DefaultProxy)
	}

	// ── Hardening flags ──────────────────────────────────────────────
	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-features"), "AudioServiceOutOfProcess,TranslateUI")
	l.Set(flags.Flag("disable-ipc-flooding-protection"))
	l.Set(flags.Flag("disable-popup-blocking"))
	l.Set(flags.Flag("disable-prompt-on-repost"))
	l.Set(flags.Flag("disable-renderer-backgrounding"))
	l.Set(flags.Flag("disable-background-timer-throttling"))
	l.Set(flags.Flag("disable-backgrounding-occluded-windows"))
	l.Set(flags.Flag("disable-component-update"))
	l.Set(flags.Flag("disable-default-apps"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("no-first-run"))

	controlURL, err := l.Launch()
	if err != nil {
		return nil, models.NewScrapeError(
			models.ErrCodeBrowserCrash,
			"failed to launch browser",
			err,
		)
	}
	slog.Info("browser launched", "headless", headless, "controlURL", controlURL)

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, models.NewScrapeError(
			models.ErrCodeBrowserCrash,
			"failed to connect to browser",
			err,
		)
	}

	h := &browserHandle{
		browser: browser,
		pool:    rod.NewPagePool(m.cfg.MaxPages),
		health:  make(map[*rod.Page]*pageMeta),
	}
	m.browsers[headless] = h
	slog.Info("page pool created", "headless", headless, "maxPages", m.cfg.MaxPages)
	return h, nil
}

// acquire borrows a tab from the pool for the given headless mode.
func (m *Manager) acquire(headless bool) (*browserHandle, *rod.Page, error) {
	h, err := m.browserFor(headless)
	if err != nil {
		return nil, nil, err
	}

	page, err := h.pool.Get(func() (*rod.Page, error) {
		return h.browser.Page(proto.TargetCreateTarget{})
	})
	if err != nil {
		return nil, nil, models.NewScrapeError(
			models.ErrCodeBrowserCrash,
			"failed to acquire page from pool",
			err,
		)
	}
	m.activePages.Add(1)
	return h, page, nil
}

// release returns a tab to the pool, or retires it when it has seen too
// many uses or errors. Retired slots are refilled lazily by the pool.
func (m *Manager) release(h *browserHandle, page *rod.Page, failed bool) {
	defer m.activePages.Add(-1)

	h.mu.Lock()
	meta := h.health[page]
	if meta == nil {
		meta = &pageMeta{}
		h.health[page] = meta
	}
	meta.uses++
	if failed {
		meta.errors++
	}
	retire := meta.errors >= pageMaxErrors || meta.uses >= pageMaxUses
	if retire {
		delete(h.health, page)
	}
	h.mu.Unlock()

	if retire {
		_ = page.Close()
		h.pool.Put(nil)
		return
	}

	// Blank the tab before pooling it so detached DOM trees get collected.
	if err := page.Navigate("about:blank"); err != nil {
		slog.Warn("cleanup: failed to navigate to about:blank", "error", err)
	}
	h.pool.Put(page)
}

// Stats returns a snapshot of the pools' current state.
func (m *Manager) Stats() models.PoolStats {
	m.mu.Lock()
	browsers := len(m.browsers)
	m.mu.Unlock()

	return models.PoolStats{
		MaxPages:    m.cfg.MaxPages,
		ActivePages: int(m.activePages.Load()),
		Browsers:    browsers,
	}
}

// Close drains the page pools and kills the browser processes.
// Call this on graceful shutdown to prevent zombie Chrome processes.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for headless, h := range m.browsers {
		slog.Info("browser shutting down: draining page pool", "headless", headless)
		h.pool.Cleanup(func(p *rod.Page) {
			_ = p.Close()
		})
		h.browser.MustClose()
		delete(m.browsers, headless)
	}
	slog.Info("browser shutdown complete")
}
