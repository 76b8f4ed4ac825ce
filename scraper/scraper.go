// Package scraper orchestrates one scrape run: resolve the fetch
// strategy, fetch the page, apply the selector, shape the matches into
// flat records.
package scraper

import (
	"context"
	"net/http"
	"time"

	"github.com/scrapedeck/scrapedeck/config"
	"github.com/scrapedeck/scrapedeck/engine"
	"github.com/scrapedeck/scrapedeck/models"
	"github.com/scrapedeck/scrapedeck/selector"
)

// Scraper wires the fetch strategies to the selector pipeline.
// It is safe for concurrent use.
type Scraper struct {
	registry *engine.Registry
	fetchCfg config.FetchConfig
}

// New creates a Scraper over a strategy registry.
func New(registry *engine.Registry, fetchCfg config.FetchConfig) *Scraper {
	return &Scraper{registry: registry, fetchCfg: fetchCfg}
}

// RunResult is the outcome of one successful scrape run. A valid
// selector matching nothing is a success with zero records.
type RunResult struct {
	Records    []models.Record
	Shape      models.Shape
	Columns    []string
	Count      int
	Title      string
	StatusCode int
	FinalURL   string
	EngineUsed string
}

// Run executes one scrape. Failures at any stage return a typed error
// and no records; partial results are never produced.
func (s *Scraper) Run(ctx context.Context, req *models.ScrapeRequest) (*RunResult, error) {
	// ── 1. Parse and validate the selector before fetching ──────────
	parsed := selector.Parse(req.Selector, req.SelectorType)
	if err := selector.Validate(parsed, req.SelectorType); err != nil {
		return nil, err
	}

	// ── 2. Resolve the fetch strategy ────────────────────────────────
	eng, err := s.registry.Get(req.Fetcher)
	if err != nil {
		return nil, err
	}

	// ── 3. Fetch ─────────────────────────────────────────────────────
	result, err := eng.Fetch(ctx, s.buildFetchRequest(req))
	if err != nil {
		return nil, err
	}

	// ── 4. Select and shape ──────────────────────────────────────────
	elements, err := selector.Run(result.HTML, parsed, req.SelectorType)
	if err != nil {
		return nil, err
	}
	records := shapeRecords(elements, parsed)

	return &RunResult{
		Records:    records,
		Shape:      parsed.Shape,
		Columns:    parsed.Shape.Columns(),
		Count:      len(records),
		Title:      result.Title,
		StatusCode: result.StatusCode,
		FinalURL:   result.FinalURL,
		EngineUsed: result.EngineName,
	}, nil
}

func (s *Scraper) buildFetchRequest(req *models.ScrapeRequest) *engine.FetchRequest {
	timeout := time.Duration(req.Timeout) * time.Second
	if timeout <= 0 {
		timeout = s.fetchCfg.DefaultTimeout
	}
	if timeout > s.fetchCfg.MaxTimeout {
		timeout = s.fetchCfg.MaxTimeout
	}

	cookies := make([]http.Cookie, 0, len(req.Cookies))
	for name, value := range req.Cookies {
		cookies = append(cookies, http.Cookie{Name: name, Value: value})
	}

	fetchReq := &engine.FetchRequest{
		URL:             req.URL,
		Headers:         req.Headers,
		Cookies:         cookies,
		Timeout:         timeout,
		SolveCloudflare: req.SolveCloudflare,
		WaitSelector:    req.WaitSelector,
	}
	if req.Headless != nil {
		fetchReq.Headless = *req.Headless
	}
	if req.NetworkIdle != nil {
		fetchReq.NetworkIdle = *req.NetworkIdle
	}
	return fetchReq
}
