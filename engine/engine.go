// Package engine implements the three fetch strategies behind the
// panel: a direct HTTP client with a Chrome TLS fingerprint, a
// JavaScript-rendering headless browser, and a hardened anti-bot
// browser variant. Strategies share one interface and are picked by
// name per request.
package engine

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/scrapedeck/scrapedeck/models"
)

// Engine is the interface all fetch strategies implement.
type Engine interface {
	// Name returns the strategy identifier ("http", "dynamic", "stealth").
	Name() string

	// Fetch retrieves the page content for the given request.
	Fetch(ctx context.Context, req *FetchRequest) (*FetchResult, error)
}

// FetchRequest contains everything an engine needs to fetch a page.
type FetchRequest struct {
	URL     string
	Headers map[string]string
	Cookies []http.Cookie
	Timeout time.Duration

	// Browser-only options. The http engine ignores them.
	Headless        bool
	NetworkIdle     bool
	SolveCloudflare bool
	WaitSelector    string
}

// FetchResult is the output of a successful engine fetch.
type FetchResult struct {
	HTML       string
	Title      string
	StatusCode int
	FinalURL   string
	EngineName string
}

// Registry resolves fetch strategies by their API names.
type Registry struct {
	engines map[string]Engine
}

// NewRegistry indexes the given engines by name.
func NewRegistry(engines ...Engine) *Registry {
	m := make(map[string]Engine, len(engines))
	for _, e := range engines {
		m[e.Name()] = e
	}
	return &Registry{engines: m}
}

// Get returns the engine registered under name.
func (r *Registry) Get(name string) (Engine, error) {
	e, ok := r.engines[name]
	if !ok {
		return nil, models.NewScrapeError(
			models.ErrCodeInvalidInput,
			fmt.Sprintf("unknown fetcher type: %s", name),
			nil,
		)
	}
	return e, nil
}
