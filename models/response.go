package models

import "time"

// ScrapeResponse is the response for POST /api/v1/scrape.
type ScrapeResponse struct {
	// Success indicates whether the scrape completed without errors.
	Success bool `json:"success"`

	// Count is the number of records produced. A valid selector that
	// matches nothing yields success with count 0.
	Count int `json:"count"`

	// Shape identifies the record layout of this run.
	Shape Shape `json:"shape,omitempty"`

	// Columns lists the record keys in table order.
	Columns []string `json:"columns,omitempty"`

	// Records are the matched elements, flattened.
	Records []Record `json:"records,omitempty"`

	// Title is the scraped page's title, when available.
	Title string `json:"title,omitempty"`

	// StatusCode is the HTTP status code from the scraped page.
	StatusCode int `json:"status_code,omitempty"`

	// FinalURL is the URL after following all redirects.
	FinalURL string `json:"final_url,omitempty"`

	// EngineUsed names the fetch strategy that produced the result.
	EngineUsed string `json:"engine_used,omitempty"`

	// ElapsedMs is the end-to-end wall-clock duration in milliseconds.
	ElapsedMs int64 `json:"elapsed_ms"`

	// CacheStatus indicates whether the records were served from cache.
	// Values: "hit", "miss", or empty (reuse not requested).
	CacheStatus string `json:"cache_status,omitempty"`

	// Error is populated only when Success is false.
	Error *ErrorDetail `json:"error,omitempty"`
}

// Status glyphs recorded in history entries.
const (
	HistoryStatusOK     = "✅"
	HistoryStatusFailed = "❌"
)

// HistoryEntry is one row of the recent-runs list. URL and selector are
// truncated for display; Time is wall-clock HH:MM:SS.
type HistoryEntry struct {
	URL      string `json:"url"`
	Fetcher  string `json:"fetcher"`
	Selector string `json:"selector"`
	Count    int    `json:"count"`
	Status   string `json:"status"`
	Time     string `json:"time"`
}

// HistoryResponse is the response for GET /api/v1/history,
// newest entry first.
type HistoryResponse struct {
	Entries []HistoryEntry `json:"entries"`
}

// ResultsResponse is the response for GET /api/v1/results: the current
// session snapshot. An empty session yields count 0 and no records.
type ResultsResponse struct {
	Count     int       `json:"count"`
	Shape     Shape     `json:"shape,omitempty"`
	Columns   []string  `json:"columns,omitempty"`
	Records   []Record  `json:"records,omitempty"`
	URL       string    `json:"url,omitempty"`
	Selector  string    `json:"selector,omitempty"`
	ScrapedAt time.Time `json:"scraped_at,omitempty"`
}

// Preset is a named quick selector offered by the UI.
type Preset struct {
	Name     string `json:"name"`
	Selector string `json:"selector"`
}

// PresetsResponse is the response for GET /api/v1/presets. Order matters
// to the UI, so presets travel as an array, not a map.
type PresetsResponse struct {
	Presets []Preset `json:"presets"`
}

// PreviewResponse is the response for POST /api/v1/preview.
type PreviewResponse struct {
	Success    bool         `json:"success"`
	Title      string       `json:"title,omitempty"`
	Byline     string       `json:"byline,omitempty"`
	Excerpt    string       `json:"excerpt,omitempty"`
	Markdown   string       `json:"markdown,omitempty"`
	WordCount  int          `json:"word_count,omitempty"`
	EngineUsed string       `json:"engine_used,omitempty"`
	ElapsedMs  int64        `json:"elapsed_ms"`
	Error      *ErrorDetail `json:"error,omitempty"`
}

// HealthResponse is the response for GET /health.
type HealthResponse struct {
	Status    string    `json:"status"` // "healthy" or "degraded"
	Uptime    string    `json:"uptime"`
	PoolStats PoolStats `json:"pool_stats"`
	Version   string    `json:"version"`
}

// PoolStats reports the state of the browser page pools.
type PoolStats struct {
	MaxPages    int `json:"max_pages"`
	ActivePages int `json:"active_pages"`
	Browsers    int `json:"browsers"`
}
