package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/scrapedeck/scrapedeck/api/middleware"
	"github.com/scrapedeck/scrapedeck/models"
)

// Results returns a handler for GET /api/v1/results.
//
// Serves the session's latest successful result set. An empty set is
// treated the same as no set at all, mirroring the panel hiding its
// results table until something matched.
func Results() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := middleware.CurrentSession(c)

		snap, ok := sess.Snapshot()
		if !ok || len(snap.Records) == 0 {
			respondError(c, models.NewScrapeError(models.ErrCodeNoResults,
				"no results yet: run a scrape first", nil))
			return
		}

		c.JSON(http.StatusOK, models.ResultsResponse{
			Count:     len(snap.Records),
			Shape:     snap.Shape,
			Columns:   snap.Columns,
			Records:   snap.Records,
			URL:       snap.URL,
			Selector:  snap.Selector,
			ScrapedAt: snap.ScrapedAt,
		})
	}
}
