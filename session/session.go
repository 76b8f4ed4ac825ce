// Package session keeps per-client panel state: the latest result set,
// a short job history and a lock that serializes runs for one client.
package session

import (
	"sync"
	"time"

	"github.com/scrapedeck/scrapedeck/models"
	"github.com/scrapedeck/scrapedeck/scraper"
)

const (
	historyCap         = 20
	urlDisplayMax      = 50
	selectorDisplayMax = 30
)

// Snapshot is the result set of the most recent successful run.
// It is replaced wholesale and never mutated in place, so callers may
// hold the returned pointer without copying.
type Snapshot struct {
	Records   []models.Record
	Shape     models.Shape
	Columns   []string
	URL       string
	Selector  string
	ScrapedAt time.Time
}

// Session holds the state of one panel client.
type Session struct {
	ID string

	runMu sync.Mutex // serializes scrape runs for this session

	mu       sync.RWMutex
	snapshot *Snapshot
	history  []models.HistoryEntry
	lastSeen time.Time
}

func newSession(id string) *Session {
	return &Session{
		ID:       id,
		lastSeen: time.Now(),
	}
}

// LockRun blocks until no other scrape is running for this session.
func (s *Session) LockRun() { s.runMu.Lock() }

// UnlockRun releases the run lock.
func (s *Session) UnlockRun() { s.runMu.Unlock() }

// Apply records the outcome of a run. A successful run replaces the
// snapshot, even when it matched nothing. A failed run leaves the
// snapshot alone and is logged to history with a zero count.
func (s *Session) Apply(req *models.ScrapeRequest, res *scraper.RunResult, runErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := models.HistoryEntry{
		URL:      truncateLabel(req.URL, urlDisplayMax),
		Fetcher:  req.Fetcher,
		Selector: truncateLabel(req.Selector, selectorDisplayMax),
		Time:     time.Now().Format("15:04:05"),
	}

	if runErr == nil {
		entry.Count = res.Count
		entry.Status = models.HistoryStatusOK
		s.snapshot = &Snapshot{
			Records:   res.Records,
			Shape:     res.Shape,
			Columns:   res.Columns,
			URL:       req.URL,
			Selector:  req.Selector,
			ScrapedAt: time.Now(),
		}
	} else {
		entry.Count = 0
		entry.Status = models.HistoryStatusFailed
	}

	s.history = append([]models.HistoryEntry{entry}, s.history...)
	if len(s.history) > historyCap {
		s.history = s.history[:historyCap]
	}
}

// Snapshot returns the latest successful result set, or false when no
// run has succeeded yet.
func (s *Session) Snapshot() (*Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil {
		return nil, false
	}
	return s.snapshot, true
}

// History returns the recorded jobs, newest first.
func (s *Session) History() []models.HistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.HistoryEntry, len(s.history))
	copy(out, s.history)
	return out
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastSeen = time.Now()
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSeen
}

// truncateLabel shortens a display label, marking the cut with an
// ellipsis the way the history sidebar renders it.
func truncateLabel(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
