package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/scrapedeck/scrapedeck/api/middleware"
	"github.com/scrapedeck/scrapedeck/export"
	"github.com/scrapedeck/scrapedeck/models"
)

// Export returns a handler for GET /api/v1/export/:format.
//
// Streams the session's latest result set as a file download. With
// nothing to export the panel would not show the button, so a direct
// call gets a 404.
func Export() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := middleware.CurrentSession(c)

		snap, ok := sess.Snapshot()
		if !ok || len(snap.Records) == 0 {
			respondError(c, models.NewScrapeError(models.ErrCodeNoResults,
				"no results to export: run a scrape first", nil))
			return
		}

		data, filename, contentType, err := export.Encode(c.Param("format"), snap.Records, snap.Columns)
		if err != nil {
			respondError(c, err)
			return
		}

		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		c.Data(http.StatusOK, contentType, data)
	}
}
