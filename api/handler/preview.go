package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/scrapedeck/scrapedeck/models"
	"github.com/scrapedeck/scrapedeck/preview"
)

// Preview returns a handler for POST /api/v1/preview.
func Preview(pv *preview.Previewer) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		var req models.PreviewRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.PreviewResponse{
				Success: false,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: err.Error(),
				},
			})
			return
		}
		req.Defaults()

		res, err := pv.Run(c.Request.Context(), &req)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.PreviewResponse{
			Success:    true,
			Title:      res.Title,
			Byline:     res.Byline,
			Excerpt:    res.Excerpt,
			Markdown:   res.Markdown,
			WordCount:  res.WordCount,
			EngineUsed: res.EngineUsed,
			ElapsedMs:  time.Since(start).Milliseconds(),
		})
	}
}
