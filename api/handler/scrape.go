package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/scrapedeck/scrapedeck/api/middleware"
	"github.com/scrapedeck/scrapedeck/cache"
	"github.com/scrapedeck/scrapedeck/models"
	"github.com/scrapedeck/scrapedeck/scraper"
)

// Scrape returns a handler for POST /api/v1/scrape.
//
// Orchestration flow:
//  1. Parse & validate request, apply defaults.
//  2. Take the session run lock so one client scrapes one page at a time.
//  3. Cache lookup (only when the request asks for reuse).
//  4. Scraper.Run → shaped records.
//  5. Record the outcome in the session, hit or miss or failure.
func Scrape(sc *scraper.Scraper, cc *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		// ── 1. Parse request ────────────────────────────────────────
		var req models.ScrapeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ScrapeResponse{
				Success: false,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: err.Error(),
				},
			})
			return
		}
		req.Defaults()

		// ── 2. Serialize runs within the session ────────────────────
		sess := middleware.CurrentSession(c)
		sess.LockRun()
		defer sess.UnlockRun()

		// ── 3. Cache lookup ─────────────────────────────────────────
		key := cache.Key(req.URL, req.Fetcher, req.Selector, req.SelectorType)
		var (
			result      *scraper.RunResult
			cacheStatus string
		)
		if cc != nil && req.CacheMaxAge > 0 {
			if cached, hit := cc.Get(key, req.CacheMaxAge); hit {
				result = cached
				cacheStatus = "hit"
			}
		}

		// ── 4. Run the scrape ───────────────────────────────────────
		if result == nil {
			var err error
			result, err = sc.Run(c.Request.Context(), &req)
			if err != nil {
				sess.Apply(&req, nil, err)
				respondError(c, err)
				return
			}
			if cc != nil && req.CacheMaxAge > 0 {
				cc.Set(key, result)
				cacheStatus = "miss"
			}
		}

		// ── 5. Record the run and respond ───────────────────────────
		sess.Apply(&req, result, nil)

		c.JSON(http.StatusOK, models.ScrapeResponse{
			Success:     true,
			Count:       result.Count,
			Shape:       result.Shape,
			Columns:     result.Columns,
			Records:     result.Records,
			Title:       result.Title,
			StatusCode:  result.StatusCode,
			FinalURL:    result.FinalURL,
			EngineUsed:  result.EngineUsed,
			ElapsedMs:   time.Since(start).Milliseconds(),
			CacheStatus: cacheStatus,
		})
	}
}

// respondError maps a ScrapeError to the correct HTTP status code and
// writes a structured JSON error response.
func respondError(c *gin.Context, err error) {
	var scrapeErr *models.ScrapeError
	if !errors.As(err, &scrapeErr) {
		scrapeErr = models.NewScrapeError(models.ErrCodeInternal, err.Error(), err)
	}

	c.JSON(mapErrorToStatus(scrapeErr), models.ScrapeResponse{
		Success: false,
		Error:   scrapeErr.ToDetail(),
	})
}

// mapErrorToStatus translates error codes to HTTP status codes.
func mapErrorToStatus(e *models.ScrapeError) int {
	switch e.Code {
	case models.ErrCodeTimeout:
		return http.StatusGatewayTimeout // 504
	case models.ErrCodeNavigation, models.ErrCodeFetch:
		return http.StatusBadGateway // 502
	case models.ErrCodeInvalidInput, models.ErrCodeSelector:
		return http.StatusBadRequest // 400
	case models.ErrCodeNoResults:
		return http.StatusNotFound // 404
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests // 429
	case models.ErrCodeUnauthorized:
		return http.StatusUnauthorized // 401
	default:
		return http.StatusInternalServerError // 500
	}
}
