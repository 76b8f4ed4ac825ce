// Package preview renders a fetched page as reader-mode Markdown so a
// selector can be written against legible content instead of raw markup.
package preview

import (
	"context"
	"strings"
	"time"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"

	"github.com/scrapedeck/scrapedeck/config"
	"github.com/scrapedeck/scrapedeck/engine"
	"github.com/scrapedeck/scrapedeck/models"
)

// Previewer fetches a page and reduces it to article Markdown.
type Previewer struct {
	registry *engine.Registry
	fetchCfg config.FetchConfig
	conv     *converter.Converter
}

// Result is a rendered preview.
type Result struct {
	Title      string
	Byline     string
	Excerpt    string
	Markdown   string
	WordCount  int
	EngineUsed string
}

// New creates a Previewer on top of the shared engine registry. The
// Markdown converter is goroutine safe and reused across requests.
func New(registry *engine.Registry, fetchCfg config.FetchConfig) *Previewer {
	return &Previewer{
		registry: registry,
		fetchCfg: fetchCfg,
		conv:     newMarkdownConverter(),
	}
}

// Run fetches the page with the requested engine and renders it.
func (p *Previewer) Run(ctx context.Context, req *models.PreviewRequest) (*Result, error) {
	// ── 1. Resolve the engine ──
	eng, err := p.registry.Get(req.Fetcher)
	if err != nil {
		return nil, err
	}

	// ── 2. Fetch the page ──
	fetched, err := eng.Fetch(ctx, p.buildFetchRequest(req))
	if err != nil {
		return nil, err
	}

	// ── 3. Reader-mode extraction with raw HTML fallback ──
	article, _ := extractArticle(fetched.HTML, fetched.FinalURL)

	// ── 4. Markdown conversion, relative links resolved against the page ──
	markdown, err := p.conv.ConvertString(article.Content, converter.WithDomain(fetched.FinalURL))
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeInternal, "markdown conversion failed", err)
	}

	title := article.Title
	if title == "" {
		title = fetched.Title
	}

	return &Result{
		Title:      title,
		Byline:     article.Byline,
		Excerpt:    article.Excerpt,
		Markdown:   strings.TrimSpace(markdown),
		WordCount:  len(strings.Fields(article.TextContent)),
		EngineUsed: fetched.EngineName,
	}, nil
}

func (p *Previewer) buildFetchRequest(req *models.PreviewRequest) *engine.FetchRequest {
	timeout := p.fetchCfg.DefaultTimeout
	if req.Timeout > 0 {
		timeout = time.Duration(req.Timeout) * time.Second
		if timeout > p.fetchCfg.MaxTimeout {
			timeout = p.fetchCfg.MaxTimeout
		}
	}
	return &engine.FetchRequest{
		URL:         req.URL,
		Timeout:     timeout,
		Headless:    true,
		NetworkIdle: true,
	}
}
