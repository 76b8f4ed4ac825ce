package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/scrapedeck/scrapedeck/api/middleware"
	"github.com/scrapedeck/scrapedeck/models"
)

// History returns a handler for GET /api/v1/history.
func History() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := middleware.CurrentSession(c)
		c.JSON(http.StatusOK, models.HistoryResponse{Entries: sess.History()})
	}
}
