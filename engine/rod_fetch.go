package engine

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/ysmood/gson"

	"github.com/scrapedeck/scrapedeck/models"
)

// rodOptions are the per-strategy knobs of the shared rod fetch.
type rodOptions struct {
	stealth         bool
	solveCloudflare bool
}

// fetch runs the full browser fetch lifecycle on a pooled tab.
//
// Lifecycle (numbered steps match the inline comments):
//
//  1. Timeout guard          – hard deadline on the entire operation
//  2. Acquire page           – borrow a tab from the pool (or create one)
//  3. DEFER: release         – blank + return to pool, or retire on wear
//  4. Stealth injection      – mask navigator.webdriver etc. (before navigation!)
//  5. Hijack mount           – block configured resource types (before navigation!)
//  6. Context binding        – propagate timeout to all Rod operations
//  7. Idle listener setup    – MUST be registered before Navigate to capture all requests
//  8. Navigate               – triggers page load
//  9. Wait                   – network idle or DOM stable, then challenge/selector waits
//  10. Extract               – page.HTML() + document.title
//
// Steps 4-5 and 7 must precede step 8: stealth JS and resource blocking
// only apply to later navigations, and an idle listener registered after
// Navigate misses in-flight requests and reports a false idle.
func (m *Manager) fetch(ctx context.Context, req *FetchRequest, opts rodOptions) (res *FetchResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = models.NewScrapeError(
				models.ErrCodeBrowserCrash,
				"browser fetch panicked",
				fmt.Errorf("%v", r),
			)
		}
	}()

	// ── 1. Timeout guard ──────────────────────────────────────────────
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = m.fetchCfg.DefaultTimeout
	}
	if timeout > m.fetchCfg.MaxTimeout {
		timeout = m.fetchCfg.MaxTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// ── 2. Acquire page from pool ─────────────────────────────────────
	h, page, acquireErr := m.acquire(req.Headless)
	if acquireErr != nil {
		return nil, acquireErr
	}

	// ── 3. CRITICAL DEFER: guarantee pool return (or retirement) ─────
	failed := true
	defer func() { m.release(h, page, failed) }()

	// ── 4. Stealth injection ──────────────────────────────────────────
	if opts.stealth {
		if _, evalErr := page.EvalOnNewDocument(stealth.JS); evalErr != nil {
			return nil, models.NewScrapeError(
				models.ErrCodeBrowserCrash,
				"stealth injection failed",
				evalErr,
			)
		}
	}

	// ── 4b. Build extra headers ──────────────────────────────────────
	extraHeaders := make(map[string]string, len(req.Headers)+1)
	if opts.stealth {
		// Arrive "from" a Google search unless the caller set a referer.
		if _, hasReferer := req.Headers["Referer"]; !hasReferer {
			if u, parseErr := url.Parse(req.URL); parseErr == nil {
				extraHeaders["Referer"] = "https://www.google.com/search?q=" + url.QueryEscape(u.Hostname())
			}
		}
	}
	for k, v := range req.Headers {
		extraHeaders[k] = v
	}
	if len(extraHeaders) > 0 {
		_ = proto.NetworkSetExtraHTTPHeaders{
			Headers: toHeadersMap(extraHeaders),
		}.Call(page)
	}

	// ── 4c. Custom cookies ──────────────────────────────────────────
	for i := range req.Cookies {
		cookie := req.Cookies[i]
		domain := cookie.Domain
		if domain == "" {
			if u, parseErr := url.Parse(req.URL); parseErr == nil {
				domain = u.Host
			}
		}
		path := cookie.Path
		if path == "" {
			path = "/"
		}
		_, _ = proto.NetworkSetCookie{
			Name:   cookie.Name,
			Value:  cookie.Value,
			Domain: domain,
			Path:   path,
		}.Call(page)
	}

	// ── 5. Mount hijack router (blocks configured resource types) ────
	router := setupHijack(page, m.fetchCfg.BlockedResourceTypes)
	if router != nil {
		defer func() { _ = router.Stop() }()
	}

	// ── 6. Bind request context to page ───────────────────────────────
	p := page.Context(ctx)

	// ── 7. Set up network idle waiter BEFORE navigation ───────────────
	// NOTE: WaitRequestIdle uses the Fetch domain, which conflicts with
	// HijackRequests on Chromium 145+. With a router mounted we fall back
	// to WaitDOMStable instead.
	var waitIdle func()
	if req.NetworkIdle && router == nil {
		waitIdle = p.WaitRequestIdle(300*time.Millisecond, nil, nil, nil)
	}

	// ── 8. Navigate ───────────────────────────────────────────────────
	nav := p
	if m.fetchCfg.NavigationTimeout > 0 && m.fetchCfg.NavigationTimeout < timeout {
		nav = p.Timeout(m.fetchCfg.NavigationTimeout)
	}
	if navErr := nav.Navigate(req.URL); navErr != nil {
		return nil, categorizeError(navErr, "navigation to target URL failed")
	}

	// ── 9. Wait strategy ──────────────────────────────────────────────
	if waitIdle != nil {
		waitIdle()
	} else if stableErr := p.WaitDOMStable(300*time.Millisecond, 0.1); stableErr != nil {
		return nil, categorizeError(stableErr, "page did not settle")
	}

	// ── 9b. Cloudflare challenge wait ────────────────────────────────
	if opts.solveCloudflare {
		if cfErr := waitCloudflare(ctx, p); cfErr != nil {
			return nil, cfErr
		}
		// The page reloads once the challenge clears; let it settle again.
		_ = p.WaitDOMStable(300*time.Millisecond, 0.1)
	}

	// ── 9c. Wait for a caller-specified element ──────────────────────
	if req.WaitSelector != "" {
		if _, selErr := p.Element(req.WaitSelector); selErr != nil {
			return nil, categorizeError(selErr, fmt.Sprintf("wait selector %q did not appear", req.WaitSelector))
		}
	}

	// ── 9d. Collect status code via JS (best-effort) ────────────────
	// performance.getEntriesByType("navigation") exposes the HTTP status
	// without CDP event listeners, which conflict with the hijack router.
	var statusCode int
	if evalRes, evalErr := p.Eval(`() => {
		try {
			const entries = performance.getEntriesByType("navigation");
			if (entries.length > 0) return entries[0].responseStatus || 0;
		} catch(e) {}
		return 0;
	}`); evalErr == nil {
		statusCode = evalRes.Value.Int()
	}

	// ── 10. Extract rendered HTML ─────────────────────────────────────
	rawHTML, htmlErr := p.HTML()
	if htmlErr != nil {
		return nil, categorizeError(htmlErr, "failed to extract page HTML")
	}

	// ── 11. Extract title and final URL (best-effort) ────────────────
	title := evalStringOrEmpty(p, `() => document.title`)
	finalURL := evalStringOrEmpty(p, `() => window.location.href`)
	if finalURL == "" {
		finalURL = req.URL
	}

	failed = false
	return &FetchResult{
		HTML:       rawHTML,
		Title:      title,
		StatusCode: statusCode,
		FinalURL:   finalURL,
	}, nil
}

// cloudflareProbe matches the markers of an unsolved challenge page.
const cloudflareProbe = `() => {
	const title = (document.title || "").toLowerCase();
	if (title.includes("just a moment") || title.includes("attention required")) return true;
	if (document.querySelector("#challenge-form, #challenge-running, #cf-challenge-running")) return true;
	if (document.querySelector('script[src*="challenge-platform"]')) return true;
	return false;
}`

// waitCloudflare polls until the page no longer looks like a Cloudflare
// interstitial. The stealth-patched browser passes non-interactive
// checks on its own; this just gives the challenge time to clear.
func waitCloudflare(ctx context.Context, p *rod.Page) error {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		res, err := p.Eval(cloudflareProbe)
		if err != nil {
			return categorizeError(err, "cloudflare challenge check failed")
		}
		if !res.Value.Bool() {
			return nil
		}
		select {
		case <-ctx.Done():
			return models.NewScrapeError(
				models.ErrCodeTimeout,
				"cloudflare challenge did not clear in time",
				ctx.Err(),
			)
		case <-ticker.C:
		}
	}
}

// evalStringOrEmpty evaluates a JS expression and returns the string result,
// swallowing any errors (useful for optional metadata extraction).
func evalStringOrEmpty(page *rod.Page, js string) string {
	res, err := page.Eval(js)
	if err != nil {
		return ""
	}
	return res.Value.Str()
}

// toHeadersMap converts a plain string map to the proto.NetworkHeaders type
// (map[string]gson.JSON) required by NetworkSetExtraHTTPHeaders.
func toHeadersMap(headers map[string]string) proto.NetworkHeaders {
	m := make(proto.NetworkHeaders, len(headers))
	for k, v := range headers {
		m[k] = gson.New(v)
	}
	return m
}

// categorizeError wraps raw errors into typed ScrapeErrors so the API layer
// can map them to appropriate HTTP status codes.
func categorizeError(err error, msg string) *models.ScrapeError {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewScrapeError(models.ErrCodeTimeout, msg, err)
	case errors.Is(err, context.Canceled):
		return models.NewScrapeError(models.ErrCodeTimeout, "request canceled", err)
	default:
		return models.NewScrapeError(models.ErrCodeNavigation, msg, err)
	}
}
