package scraper

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

const quotesHTML = `<html><head><title>Quotes</title></head><body>
<div class="quote"><span class="text">The world as we have created it</span>
<a href="/author/einstein">about</a></div>
<div class="quote"><span class="text">   </span><a>anchor without href</a></div>
<div class="quote"><span class="text">It is our choices</span>
<a href="/author/rowling">about</a></div>
</body></html>`

// stubEngine returns canned HTML and records whether it was called.
type stubEngine struct {
	name    string
	html    string
	err     error
	calls   int
	lastReq *engine.FetchRequest
}

func (s *stubEngine) Name() string { return s.name }
func (s *stubEngine) Fetch(ctx context.Context, req *engine.FetchRequest) (*engine.FetchResult, error) {
	s.calls++
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return &engine.FetchResult{
		HTML:       s.html,
		Title:      "Quotes",
		StatusCode: 200,
		FinalURL:   req.URL,
		EngineName: s.name,
	}, nil
}

func newTestScraper(stub *stubEngine) *Scraper {
	return New(engine.NewRegistry(stub), config.FetchConfig{
		DefaultTimeout: 30 * time.Second,
		MaxTimeout:     120 * time.Second,
	})
}

func runReq(selector, selectorType string) *models.ScrapeRequest {
	req := &models.ScrapeRequest{
		URL:          "https://quotes.toscrape.com",
		Fetcher:      "http",
		Selector:     selector,
		SelectorType: selectorType,
	}
	req.Defaults()
	return req
}

func TestRun_TextShape(t *testing.T) {
	stub := &stubEngine{name: "http", html: quotesHTML}
	s := newTestScraper(stub)

	res, err := s.Run(context.Background(), runReq(".quote .text::text", "css"))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	// The whitespace-only span must be dropped.
	if res.Count != 2 {
		t.Fatalf("expected 2 records, got %d", res.Count)
	}
	for i, rec := range res.Records {
		if len(rec) != 1 {
			t.Errorf("record %d has keys %v, want only text", i, rec)
		}
		if strings.TrimSpace(rec["text"]) == "" {
			t.Errorf("record %d has empty text", i)
		}
	}
	if res.Shape != models.ShapeText {
		t.Errorf("shape = %q, want %q", res.Shape, models.ShapeText)
	}
}

func TestRun_AttrShape(t *testing.T) {
	stub := &stubEngine{name: "http", html: quotesHTML}
	s := newTestScraper(stub)

	res, err := s.Run(context.Background(), runReq("a::attr(href)", "css"))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	// The anchor without href must be dropped.
	if res.Count != 2 {
		t.Fatalf("expected 2 records, got %d", res.Count)
	}
	if res.Records[0]["value"] != "/author/einstein" {
		t.Errorf("first value = %q", res.Records[0]["value"])
	}
	for i, rec := range res.Records {
		if len(rec) != 1 || rec["value"] == "" {
			t.Errorf("record %d shape wrong: %v", i, rec)
		}
	}
}

func TestRun_DefaultShape(t *testing.T) {
	stub := &stubEngine{name: "http", html: quotesHTML}
	s := newTestScraper(stub)

	res, err := s.Run(context.Background(), runReq(".quote", "css"))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if res.Count != 3 {
		t.Fatalf("expected 3 records, got %d", res.Count)
	}
	for i, rec := range res.Records {
		if _, ok := rec["text"]; !ok {
			t.Errorf("record %d missing text key", i)
		}
		if _, ok := rec["html"]; !ok {
			t.Errorf("record %d missing html key", i)
		}
		if n := len([]rune(rec["html"])); n > 200 {
			t.Errorf("record %d html exceeds 200 chars: %d", i, n)
		}
	}
	if got := res.Columns; len(got) != 2 || got[0] != "text" || got[1] != "html" {
		t.Errorf("columns = %v", got)
	}
}

func TestRun_XPath(t *testing.T) {
	stub := &stubEngine{name: "http", html: quotesHTML}
	s := newTestScraper(stub)

	res, err := s.Run(context.Background(), runReq("//a/@href", "xpath"))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if res.Count != 2 {
		t.Fatalf("expected 2 records, got %d", res.Count)
	}
	if res.Records[0]["text"] != "/author/einstein" {
		t.Errorf("first text = %q", res.Records[0]["text"])
	}
}

func TestRun_NoMatchesIsSuccess(t *testing.T) {
	stub := &stubEngine{name: "http", html: quotesHTML}
	s := newTestScraper(stub)

	res, err := s.Run(context.Background(), runReq("article.missing", "css"))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if res.Count != 0 || len(res.Records) != 0 {
		t.Errorf("expected empty success, got count=%d", res.Count)
	}
}

func TestRun_InvalidSelectorSkipsFetch(t *testing.T) {
	stub := &stubEngine{name: "http", html: quotesHTML}
	s := newTestScraper(stub)

	_, err := s.Run(context.Background(), runReq("div[unclosed", "css"))
	if err == nil {
		t.Fatal("expected selector error")
	}
	if stub.calls != 0 {
		t.Errorf("fetch ran %d times for an invalid selector", stub.calls)
	}

	var se *models.ScrapeError
	if !errors.As(err, &se) || se.Code != models.ErrCodeSelector {
		t.Errorf("expected %s, got %v", models.ErrCodeSelector, err)
	}
}

func TestRun_UnknownFetcher(t *testing.T) {
	stub := &stubEngine{name: "http", html: quotesHTML}
	s := newTestScraper(stub)

	req := runReq("p", "css")
	req.Fetcher = "warp"
	_, err := s.Run(context.Background(), req)
	if err == nil {
		t.Fatal("expected unknown fetcher error")
	}

	var se *models.ScrapeError
	if !errors.As(err, &se) || se.Code != models.ErrCodeInvalidInput {
		t.Errorf("expected %s, got %v", models.ErrCodeInvalidInput, err)
	}
}

func TestRun_FetchFailure(t *testing.T) {
	stub := &stubEngine{
		name: "http",
		err:  models.NewScrapeError(models.ErrCodeFetch, "connection refused", nil),
	}
	s := newTestScraper(stub)

	res, err := s.Run(context.Background(), runReq("p::text", "css"))
	if err == nil {
		t.Fatal("expected fetch error")
	}
	if res != nil {
		t.Errorf("failed run must not return partial results, got %+v", res)
	}
}

func TestRun_FetchRequestCarriesOptions(t *testing.T) {
	stub := &stubEngine{name: "stealth", html: quotesHTML}
	s := newTestScraper(stub)

	headless := false
	req := &models.ScrapeRequest{
		URL:             "https://example.com",
		Fetcher:         "stealth",
		Selector:        "p::text",
		SelectorType:    "css",
		Timeout:         45,
		Headless:        &headless,
		SolveCloudflare: true,
	}
	req.Defaults()

	if _, err := s.Run(context.Background(), req); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	fr := stub.lastReq
	if fr.Timeout != 45*time.Second {
		t.Errorf("timeout = %s", fr.Timeout)
	}
	if fr.Headless {
		t.Error("headless override lost")
	}
	if !fr.SolveCloudflare {
		t.Error("solve_cloudflare lost")
	}
	if !fr.NetworkIdle {
		t.Error("stealth must force network idle")
	}
}

func TestTruncate_MultibyteSafety(t *testing.T) {
	s := strings.Repeat("é", 300)
	got := truncate(s, 200)

	if n := len([]rune(got)); n != 200 {
		t.Errorf("truncated to %d runes, want 200", n)
	}
	if strings.Contains(got, "�") {
		t.Error("truncation split a multibyte character")
	}
}
