package session

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/scrapedeck/scrapedeck/models"
	"github.com/scrapedeck/scrapedeck/scraper"
)

func sampleResult(count int) *scraper.RunResult {
	records := make([]models.Record, count)
	for i := range records {
		records[i] = models.Record{"text": fmt.Sprintf("item %d", i)}
	}
	return &scraper.RunResult{
		Records: records,
		Shape:   models.ShapeText,
		Columns: models.ShapeText.Columns(),
		Count:   count,
	}
}

func sampleRequest(url string) *models.ScrapeRequest {
	req := &models.ScrapeRequest{
		URL:      url,
		Fetcher:  models.FetcherHTTP,
		Selector: ".quote .text::text",
	}
	req.Defaults()
	return req
}

func TestApply_SuccessUpdatesSnapshot(t *testing.T) {
	sess := newSession("s1")
	sess.Apply(sampleRequest("https://example.com"), sampleResult(3), nil)

	snap, ok := sess.Snapshot()
	if !ok {
		t.Fatal("expected a snapshot after a successful run")
	}
	if len(snap.Records) != 3 || snap.URL != "https://example.com" {
		t.Errorf("snapshot = %+v", snap)
	}

	hist := sess.History()
	if len(hist) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(hist))
	}
	if hist[0].Count != 3 || hist[0].Status != models.HistoryStatusOK {
		t.Errorf("entry = %+v", hist[0])
	}
	if _, err := time.Parse("15:04:05", hist[0].Time); err != nil {
		t.Errorf("time %q not HH:MM:SS", hist[0].Time)
	}
}

func TestApply_FailureLeavesSnapshot(t *testing.T) {
	sess := newSession("s1")
	sess.Apply(sampleRequest("https://example.com"), sampleResult(3), nil)
	sess.Apply(sampleRequest("https://broken.example"), nil, errors.New("navigation failed"))

	snap, ok := sess.Snapshot()
	if !ok || snap.URL != "https://example.com" {
		t.Errorf("failed run must not touch the snapshot, got %+v", snap)
	}

	hist := sess.History()
	if len(hist) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(hist))
	}
	if hist[0].Count != 0 || hist[0].Status != models.HistoryStatusFailed {
		t.Errorf("failure entry = %+v", hist[0])
	}
}

func TestApply_EmptySuccessReplacesSnapshot(t *testing.T) {
	sess := newSession("s1")
	sess.Apply(sampleRequest("https://example.com"), sampleResult(3), nil)
	sess.Apply(sampleRequest("https://empty.example"), sampleResult(0), nil)

	snap, ok := sess.Snapshot()
	if !ok {
		t.Fatal("expected a snapshot")
	}
	if snap.URL != "https://empty.example" || len(snap.Records) != 0 {
		t.Errorf("empty success must replace the snapshot, got %+v", snap)
	}
	if hist := sess.History(); hist[0].Status != models.HistoryStatusOK {
		t.Errorf("empty success entry = %+v", hist[0])
	}
}

func TestHistory_CappedNewestFirst(t *testing.T) {
	sess := newSession("s1")
	for i := 0; i < 25; i++ {
		sess.Apply(sampleRequest(fmt.Sprintf("https://example.com/page/%d", i)), sampleResult(i), nil)
	}

	hist := sess.History()
	if len(hist) != historyCap {
		t.Fatalf("expected %d entries, got %d", historyCap, len(hist))
	}
	if hist[0].Count != 24 {
		t.Errorf("newest entry count = %d, want 24", hist[0].Count)
	}
	if hist[historyCap-1].Count != 5 {
		t.Errorf("oldest surviving entry count = %d, want 5", hist[historyCap-1].Count)
	}
}

func TestHistory_TruncatesLongLabels(t *testing.T) {
	longURL := "https://example.com/" + strings.Repeat("a", 100)
	req := sampleRequest(longURL)
	req.Selector = strings.Repeat("div > ", 10) + "span"

	sess := newSession("s1")
	sess.Apply(req, sampleResult(1), nil)

	entry := sess.History()[0]
	if len([]rune(entry.URL)) != urlDisplayMax+3 || !strings.HasSuffix(entry.URL, "...") {
		t.Errorf("url label = %q", entry.URL)
	}
	if len([]rune(entry.Selector)) != selectorDisplayMax+3 || !strings.HasSuffix(entry.Selector, "...") {
		t.Errorf("selector label = %q", entry.Selector)
	}

	snap, _ := sess.Snapshot()
	if snap.URL != longURL {
		t.Error("snapshot must keep the full URL")
	}
}

func TestStore_GetOrCreate(t *testing.T) {
	st := NewStore(time.Hour)
	defer st.Stop()

	sess := st.GetOrCreate("")
	if sess.ID == "" {
		t.Fatal("new session has no ID")
	}
	if len(sess.ID) != 32 {
		t.Errorf("ID %q is not 16 random bytes hex encoded", sess.ID)
	}

	again := st.GetOrCreate(sess.ID)
	if again != sess {
		t.Error("existing ID must return the same session")
	}

	other := st.GetOrCreate("unknown-id")
	if other == sess {
		t.Error("unknown ID must mint a fresh session")
	}
	if other.ID == "unknown-id" {
		t.Error("client-supplied IDs must not be adopted")
	}
}

func TestStore_ExpiresIdleSessions(t *testing.T) {
	st := NewStore(time.Hour)
	defer st.Stop()

	sess := st.GetOrCreate("")
	sess.mu.Lock()
	sess.lastSeen = time.Now().Add(-2 * time.Hour)
	sess.mu.Unlock()

	if _, ok := st.Get(sess.ID); ok {
		t.Error("idle session past TTL must be treated as expired")
	}
}
