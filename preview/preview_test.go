package preview

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/scrapedeck/scrapedeck/config"
	"github.com/scrapedeck/scrapedeck/engine"
	"github.com/scrapedeck/scrapedeck/models"
)

const articleHTML = `<html><head><title>Page Title</title></head><body>
<article>
<h1>Why Scrapers Need Previews</h1>
<p>Writing a selector against raw markup is slow because the page is full of
navigation chrome, inline scripts and tracking pixels that hide the content
you actually care about when you are exploring a site for the first time.</p>
<p>A reader-mode preview strips all of that away and leaves the article body,
so the structure you need to target becomes obvious at a glance and the
selector almost writes itself once the noise is gone.</p>
</article>
</body></html>`

type stubEngine struct {
	name string
	html string
}

func (s *stubEngine) Name() string { return s.name }
func (s *stubEngine) Fetch(ctx context.Context, req *engine.FetchRequest) (*engine.FetchResult, error) {
	return &engine.FetchResult{
		HTML:       s.html,
		Title:      "Stub Title",
		StatusCode: 200,
		FinalURL:   req.URL,
		EngineName: s.name,
	}, nil
}

func newTestPreviewer(stub *stubEngine) *Previewer {
	return New(engine.NewRegistry(stub), config.FetchConfig{
		DefaultTimeout: 30 * time.Second,
		MaxTimeout:     120 * time.Second,
	})
}

func previewReq(fetcher string) *models.PreviewRequest {
	req := &models.PreviewRequest{URL: "https://example.com/post", Fetcher: fetcher}
	req.Defaults()
	return req
}

func TestRun_RendersArticleMarkdown(t *testing.T) {
	p := newTestPreviewer(&stubEngine{name: "http", html: articleHTML})

	res, err := p.Run(context.Background(), previewReq("http"))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !strings.Contains(res.Markdown, "Why Scrapers Need Previews") {
		t.Errorf("markdown lost the heading: %q", res.Markdown)
	}
	if strings.Contains(res.Markdown, "<p>") {
		t.Error("markdown still contains HTML tags")
	}
	if res.WordCount == 0 {
		t.Error("word count is zero for a real article")
	}
	if res.EngineUsed != "http" {
		t.Errorf("engine = %q", res.EngineUsed)
	}
}

func TestRun_FallsBackOnThinPages(t *testing.T) {
	p := newTestPreviewer(&stubEngine{name: "http", html: "<html><body><p>hi</p></body></html>"})

	res, err := p.Run(context.Background(), previewReq("http"))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	// Extraction bails on short content, so the fetched title stands in.
	if res.Title != "Stub Title" {
		t.Errorf("title = %q", res.Title)
	}
	if !strings.Contains(res.Markdown, "hi") {
		t.Errorf("fallback markdown lost the body: %q", res.Markdown)
	}
}

func TestRun_UnknownFetcher(t *testing.T) {
	p := newTestPreviewer(&stubEngine{name: "http", html: articleHTML})

	_, err := p.Run(context.Background(), previewReq("warp"))
	if err == nil {
		t.Fatal("expected an error")
	}
	var se *models.ScrapeError
	if !errors.As(err, &se) || se.Code != models.ErrCodeInvalidInput {
		t.Errorf("expected %s, got %v", models.ErrCodeInvalidInput, err)
	}
}
