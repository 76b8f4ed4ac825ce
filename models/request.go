package models

// Fetch strategy names accepted by the API.
const (
	FetcherHTTP    = "http"
	FetcherDynamic = "dynamic"
	FetcherStealth = "stealth"
)

// Selector languages accepted by the API.
const (
	SelectorCSS   = "css"
	SelectorXPath = "xpath"
)

// ScrapeRequest is the payload for POST /api/v1/scrape.
type ScrapeRequest struct {
	// URL is the target page to scrape. Required.
	URL string `json:"url" binding:"required,url"`

	// Fetcher selects the fetch strategy.
	// "http" (default): direct HTTP fetch, fastest, no JS execution.
	// "dynamic": headless Chrome, renders JavaScript.
	// "stealth": headless Chrome with anti-bot evasions.
	Fetcher string `json:"fetcher,omitempty" binding:"omitempty,oneof=http dynamic stealth"`

	// Selector is the CSS or XPath expression to run against the page.
	// CSS selectors support the ::text and ::attr(name) extraction
	// suffixes. Required.
	Selector string `json:"selector" binding:"required"`

	// SelectorType chooses the selector language. Default: "css".
	SelectorType string `json:"selector_type,omitempty" binding:"omitempty,oneof=css xpath"`

	// Timeout is the maximum duration in seconds for the entire
	// scrape operation. Default: 30. Max: 120.
	Timeout int `json:"timeout,omitempty" binding:"omitempty,min=1,max=120"`

	// Headless controls browser visibility for the dynamic and stealth
	// strategies. Default: true. Ignored by the http strategy.
	Headless *bool `json:"headless,omitempty"`

	// NetworkIdle makes browser strategies wait for network traffic to
	// settle before extracting. Default: true. Always on for stealth.
	// Ignored by the http strategy.
	NetworkIdle *bool `json:"network_idle,omitempty"`

	// SolveCloudflare makes the stealth strategy wait for a Cloudflare
	// challenge to clear before extracting. Default: false.
	SolveCloudflare bool `json:"solve_cloudflare,omitempty"`

	// WaitSelector is an optional CSS selector browser strategies wait
	// for before extracting. Useful when the target content is injected
	// late by scripts.
	WaitSelector string `json:"wait_selector,omitempty"`

	// Headers are extra request headers applied by every strategy.
	Headers map[string]string `json:"headers,omitempty"`

	// Cookies are applied to the page before navigation.
	Cookies map[string]string `json:"cookies,omitempty"`

	// CacheMaxAge, in milliseconds, allows reusing the records of a recent
	// identical run instead of fetching again. 0 (default) disables reuse.
	CacheMaxAge int `json:"cache_max_age,omitempty" binding:"omitempty,min=0"`
}

// Defaults applies default values to unset fields.
func (r *ScrapeRequest) Defaults() {
	if r.Fetcher == "" {
		r.Fetcher = FetcherHTTP
	}
	if r.SelectorType == "" {
		r.SelectorType = SelectorCSS
	}
	if r.Timeout == 0 {
		r.Timeout = 30
	}
	if r.Headless == nil {
		t := true
		r.Headless = &t
	}
	if r.NetworkIdle == nil || r.Fetcher == FetcherStealth {
		t := true
		r.NetworkIdle = &t
	}
}

// PreviewRequest is the payload for POST /api/v1/preview.
type PreviewRequest struct {
	// URL is the page to preview. Required.
	URL string `json:"url" binding:"required,url"`

	// Fetcher selects the fetch strategy. Default: "http".
	Fetcher string `json:"fetcher,omitempty" binding:"omitempty,oneof=http dynamic stealth"`

	// Timeout is the maximum duration in seconds. Default: 30. Max: 120.
	Timeout int `json:"timeout,omitempty" binding:"omitempty,min=1,max=120"`
}

// Defaults applies default values to unset fields.
func (r *PreviewRequest) Defaults() {
	if r.Fetcher == "" {
		r.Fetcher = FetcherHTTP
	}
	if r.Timeout == 0 {
		r.Timeout = 30
	}
}
