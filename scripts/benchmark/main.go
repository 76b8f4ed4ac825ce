package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"
	"time"
)

// CLI flags
var (
	apiURL   = flag.String("api-url", "http://localhost:8090", "ScrapeDeck API base URL")
	apiKey   = flag.String("api-key", "", "API key for authenticated requests")
	runs     = flag.Int("runs", 3, "Number of runs per case for averaging")
	fetchers = flag.String("fetchers", "http,dynamic,stealth", "Comma-separated fetch strategies to compare")
	output   = flag.String("output", "benchmark-results.json", "JSON output file path")
)

// Test cases covering the three record shapes on scraping practice sites.
var testCases = []struct {
	Label    string
	URL      string
	Selector string
}{
	{"Text", "https://quotes.toscrape.com", ".quote .text::text"},
	{"Attr", "https://books.toscrape.com", "article.product_pod h3 a::attr(title)"},
	{"Default", "https://example.com", "p"},
}

// --- Request / Response types (mirrors models package) ---

type scrapeRequest struct {
	URL          string `json:"url"`
	Fetcher      string `json:"fetcher"`
	Selector     string `json:"selector"`
	SelectorType string `json:"selector_type"`
	Timeout      int    `json:"timeout"`
}

type scrapeResponse struct {
	Success    bool         `json:"success"`
	Count      int          `json:"count"`
	StatusCode int          `json:"status_code"`
	EngineUsed string       `json:"engine_used"`
	ElapsedMs  int64        `json:"elapsed_ms"`
	Error      *errorDetail `json:"error,omitempty"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// --- Benchmark result types ---

type runResult struct {
	Run        int    `json:"run"`
	ElapsedMs  int64  `json:"elapsed_ms"`
	Count      int    `json:"count"`
	StatusCode int    `json:"status_code"`
	Success    bool   `json:"success"`
	Error      string `json:"error,omitempty"`
}

type caseAverages struct {
	ElapsedMs float64 `json:"elapsed_ms"`
	Count     float64 `json:"count"`
}

type caseResult struct {
	Fetcher  string        `json:"fetcher"`
	Label    string        `json:"label"`
	URL      string        `json:"url"`
	Selector string        `json:"selector"`
	Runs     []runResult   `json:"runs"`
	Averages *caseAverages `json:"averages,omitempty"`
}

type benchmarkReport struct {
	Timestamp  string       `json:"timestamp"`
	APIURL     string       `json:"api_url"`
	RunsPerURL int          `json:"runs_per_case"`
	Results    []caseResult `json:"results"`
}

func main() {
	flag.Parse()

	fmt.Println("=== ScrapeDeck Fetcher Benchmark ===")
	fmt.Printf("API URL:   %s\n", *apiURL)
	fmt.Printf("Fetchers:  %s\n", *fetchers)
	fmt.Printf("Runs/case: %d\n", *runs)
	fmt.Printf("Output:    %s\n", *output)
	fmt.Println()

	// Quick connectivity check.
	if err := checkAPI(*apiURL); err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot reach API at %s: %v\n", *apiURL, err)
		fmt.Fprintf(os.Stderr, "Make sure ScrapeDeck is running\n")
		os.Exit(1)
	}

	report := benchmarkReport{
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		APIURL:     *apiURL,
		RunsPerURL: *runs,
	}

	for _, fetcher := range strings.Split(*fetchers, ",") {
		fetcher = strings.TrimSpace(fetcher)
		if fetcher == "" {
			continue
		}
		for _, tc := range testCases {
			fmt.Printf("Benchmarking [%s/%s] %s ...\n", fetcher, tc.Label, tc.URL)
			cr := caseResult{Fetcher: fetcher, Label: tc.Label, URL: tc.URL, Selector: tc.Selector}

			for i := 1; i <= *runs; i++ {
				fmt.Printf("  Run %d/%d ... ", i, *runs)
				rr := benchmarkCase(fetcher, tc.URL, tc.Selector, i)
				if rr.Success {
					fmt.Printf("OK  %dms  %d records\n", rr.ElapsedMs, rr.Count)
				} else {
					fmt.Printf("FAILED: %s\n", rr.Error)
				}
				cr.Runs = append(cr.Runs, rr)
			}

			cr.Averages = computeAverages(cr.Runs)
			report.Results = append(report.Results, cr)
			fmt.Println()
		}
	}

	// Print summary table.
	printTable(report.Results)

	// Write JSON report.
	if err := writeJSON(*output, report); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing JSON output: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("\nDetailed results written to %s\n", *output)
}

func checkAPI(baseURL string) error {
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

func benchmarkCase(fetcher, url, selector string, run int) runResult {
	rr := runResult{Run: run}

	reqBody := scrapeRequest{
		URL:          url,
		Fetcher:      fetcher,
		Selector:     selector,
		SelectorType: "css",
		Timeout:      60,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		rr.Error = fmt.Sprintf("marshal error: %v", err)
		return rr
	}

	req, err := http.NewRequest("POST", *apiURL+"/api/v1/scrape", bytes.NewReader(bodyBytes))
	if err != nil {
		rr.Error = fmt.Sprintf("request error: %v", err)
		return rr
	}
	req.Header.Set("Content-Type", "application/json")
	if *apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+*apiKey)
	}

	client := &http.Client{Timeout: 90 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		rr.Error = fmt.Sprintf("request failed: %v", err)
		return rr
	}
	defer resp.Body.Close()

	var sr scrapeResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		rr.Error = fmt.Sprintf("decode error: %v", err)
		return rr
	}

	rr.Success = sr.Success
	rr.StatusCode = sr.StatusCode
	rr.ElapsedMs = sr.ElapsedMs
	rr.Count = sr.Count

	if sr.Error != nil {
		rr.Error = sr.Error.Message
	}

	return rr
}

func computeAverages(runs []runResult) *caseAverages {
	var successCount int
	var avg caseAverages

	for _, r := range runs {
		if !r.Success {
			continue
		}
		successCount++
		avg.ElapsedMs += float64(r.ElapsedMs)
		avg.Count += float64(r.Count)
	}

	if successCount == 0 {
		return nil
	}

	n := float64(successCount)
	avg.ElapsedMs /= n
	avg.Count /= n
	return &avg
}

func printTable(results []caseResult) {
	fmt.Println(strings.Repeat("─", 75))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Fetcher\tCase\tAvg Latency\tAvg Records\tStatus\n")
	fmt.Fprintf(w, "───────\t────\t───────────\t───────────\t──────\n")

	for _, r := range results {
		if r.Averages == nil {
			fmt.Fprintf(w, "%s\t%s\tFAILED\t-\t-\n", r.Fetcher, r.Label)
			continue
		}

		fmt.Fprintf(w, "%s\t%s\t%dms\t%.1f\t%d\n",
			r.Fetcher,
			r.Label,
			int64(r.Averages.ElapsedMs),
			r.Averages.Count,
			dominantStatus(r.Runs),
		)
	}

	w.Flush()
	fmt.Println(strings.Repeat("─", 75))
}

func dominantStatus(runs []runResult) int {
	counts := map[int]int{}
	for _, r := range runs {
		if r.Success {
			counts[r.StatusCode]++
		}
	}
	best, bestCount := 0, 0
	for code, count := range counts {
		if count > bestCount {
			best = code
			bestCount = count
		}
	}
	return best
}

func writeJSON(path string, report benchmarkReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
