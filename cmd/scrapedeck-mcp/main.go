package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// scrapeRequest mirrors the ScrapeDeck API request model.
type scrapeRequest struct {
	URL          string `json:"url"`
	Fetcher      string `json:"fetcher,omitempty"`
	Selector     string `json:"selector"`
	SelectorType string `json:"selector_type,omitempty"`
	Timeout      int    `json:"timeout,omitempty"`
}

// scrapeResponse mirrors the ScrapeDeck API response model.
type scrapeResponse struct {
	Success    bool                `json:"success"`
	Count      int                 `json:"count"`
	Columns    []string            `json:"columns"`
	Records    []map[string]string `json:"records"`
	Title      string              `json:"title"`
	EngineUsed string              `json:"engine_used"`
	Error      *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// presetsResponse mirrors the ScrapeDeck presets API response.
type presetsResponse struct {
	Presets []struct {
		Name     string `json:"name"`
		Selector string `json:"selector"`
	} `json:"presets"`
}

// previewResponse mirrors the ScrapeDeck preview API response.
type previewResponse struct {
	Success  bool   `json:"success"`
	Title    string `json:"title"`
	Markdown string `json:"markdown"`
	Error    *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func main() {
	apiURL := os.Getenv("SCRAPEDECK_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8090"
	}
	apiKey := os.Getenv("SCRAPEDECK_API_KEY")

	// One cookie-jarred client for all tools, so scrape_page and a later
	// export_results land in the same panel session.
	jar, err := cookiejar.New(nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cookie jar: %v\n", err)
		os.Exit(1)
	}
	client := &http.Client{Timeout: 150 * time.Second, Jar: jar}

	s := server.NewMCPServer(
		"scrapedeck",
		"0.1.0",
		server.WithToolCapabilities(false),
	)

	scrapePageTool := mcp.NewTool("scrape_page",
		mcp.WithDescription("Scrape a web page with a CSS or XPath selector and return the matched elements as records. Selectors support Scrapy-style ::text and ::attr(name) suffixes."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL of the web page to scrape"),
		),
		mcp.WithString("selector",
			mcp.Required(),
			mcp.Description("CSS or XPath selector, e.g. '.quote .text::text' or 'a::attr(href)'"),
		),
		mcp.WithString("selector_type",
			mcp.Description("Selector language: 'css' (default) or 'xpath'"),
			mcp.Enum("css", "xpath"),
		),
		mcp.WithString("fetcher",
			mcp.Description("Fetch strategy: 'http' (default, fast), 'dynamic' (renders JavaScript), or 'stealth' (anti-bot hardened browser)"),
			mcp.Enum("http", "dynamic", "stealth"),
		),
		mcp.WithNumber("timeout",
			mcp.Description("Fetch timeout in seconds (default: 30)"),
		),
	)
	s.AddTool(scrapePageTool, handleScrapePage(client, apiURL, apiKey))

	listPresetsTool := mcp.NewTool("list_presets",
		mcp.WithDescription("List the built-in quick selector presets (links, images, paragraphs, headings, table cells)."),
	)
	s.AddTool(listPresetsTool, handleListPresets(client, apiURL, apiKey))

	previewPageTool := mcp.NewTool("preview_page",
		mcp.WithDescription("Fetch a page and return its main content as Markdown. Useful for understanding a page's structure before writing a selector."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL of the web page to preview"),
		),
		mcp.WithString("fetcher",
			mcp.Description("Fetch strategy: 'http' (default), 'dynamic', or 'stealth'"),
			mcp.Enum("http", "dynamic", "stealth"),
		),
	)
	s.AddTool(previewPageTool, handlePreviewPage(client, apiURL, apiKey))

	exportResultsTool := mcp.NewTool("export_results",
		mcp.WithDescription("Export the records of the most recent scrape_page call as CSV or JSON text."),
		mcp.WithString("format",
			mcp.Required(),
			mcp.Description("Export format: 'csv' or 'json'"),
			mcp.Enum("csv", "json"),
		),
	)
	s.AddTool(exportResultsTool, handleExportResults(client, apiURL, apiKey))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

// apiPost sends a POST request to the ScrapeDeck API and returns the
// response body.
func apiPost(ctx context.Context, client *http.Client, apiURL, apiKey, path string, payload interface{}) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}

// apiGet sends a GET request to the ScrapeDeck API and returns the
// response body.
func apiGet(ctx context.Context, client *http.Client, apiURL, apiKey, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}

func handleScrapePage(client *http.Client, apiURL, apiKey string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}
		selector, err := request.RequireString("selector")
		if err != nil {
			return mcp.NewToolResultError("selector is required"), nil
		}

		reqBody := scrapeRequest{
			URL:          url,
			Selector:     selector,
			SelectorType: request.GetString("selector_type", ""),
			Fetcher:      request.GetString("fetcher", ""),
			Timeout:      request.GetInt("timeout", 0),
		}

		respBody, err := apiPost(ctx, client, apiURL, apiKey, "/api/v1/scrape", reqBody)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("scrape request failed: %v", err)), nil
		}

		var scrapeResp scrapeResponse
		if err := json.Unmarshal(respBody, &scrapeResp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}

		if !scrapeResp.Success {
			errMsg := "scrape failed"
			if scrapeResp.Error != nil {
				errMsg = fmt.Sprintf("[%s] %s", scrapeResp.Error.Code, scrapeResp.Error.Message)
			}
			return mcp.NewToolResultError(errMsg), nil
		}

		records, err := json.MarshalIndent(scrapeResp.Records, "", "  ")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to format records: %v", err)), nil
		}

		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("Found %d items on %q (engine: %s)\n",
			scrapeResp.Count, scrapeResp.Title, scrapeResp.EngineUsed))
		sb.WriteString(fmt.Sprintf("Columns: %s\n\n", strings.Join(scrapeResp.Columns, ", ")))
		sb.Write(records)

		return mcp.NewToolResultText(sb.String()), nil
	}
}

func handleListPresets(client *http.Client, apiURL, apiKey string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		respBody, err := apiGet(ctx, client, apiURL, apiKey, "/api/v1/presets")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("presets request failed: %v", err)), nil
		}

		var presetsResp presetsResponse
		if err := json.Unmarshal(respBody, &presetsResp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}

		var sb strings.Builder
		sb.WriteString("Quick selector presets:\n\n")
		for _, p := range presetsResp.Presets {
			sb.WriteString(fmt.Sprintf("%-16s %s\n", p.Name, p.Selector))
		}

		return mcp.NewToolResultText(sb.String()), nil
	}
}

func handlePreviewPage(client *http.Client, apiURL, apiKey string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}

		payload := map[string]interface{}{"url": url}
		if fetcher := request.GetString("fetcher", ""); fetcher != "" {
			payload["fetcher"] = fetcher
		}

		respBody, err := apiPost(ctx, client, apiURL, apiKey, "/api/v1/preview", payload)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("preview request failed: %v", err)), nil
		}

		var previewResp previewResponse
		if err := json.Unmarshal(respBody, &previewResp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}

		if !previewResp.Success {
			errMsg := "preview failed"
			if previewResp.Error != nil {
				errMsg = fmt.Sprintf("[%s] %s", previewResp.Error.Code, previewResp.Error.Message)
			}
			return mcp.NewToolResultError(errMsg), nil
		}

		result := previewResp.Markdown
		if previewResp.Title != "" {
			result = fmt.Sprintf("Title: %s\n\n%s", previewResp.Title, result)
		}

		return mcp.NewToolResultText(result), nil
	}
}

func handleExportResults(client *http.Client, apiURL, apiKey string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		format, err := request.RequireString("format")
		if err != nil {
			return mcp.NewToolResultError("format is required"), nil
		}

		respBody, err := apiGet(ctx, client, apiURL, apiKey, "/api/v1/export/"+format)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("export request failed: %v", err)), nil
		}

		// Errors come back as JSON envelopes instead of file payloads.
		var envelope struct {
			Success *bool `json:"success"`
			Error   *struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if err := json.Unmarshal(respBody, &envelope); err == nil && envelope.Error != nil {
			return mcp.NewToolResultError(fmt.Sprintf("[%s] %s", envelope.Error.Code, envelope.Error.Message)), nil
		}

		return mcp.NewToolResultText(string(respBody)), nil
	}
}
