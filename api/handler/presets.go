package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/scrapedeck/scrapedeck/models"
)

// Presets returns a handler for GET /api/v1/presets.
func Presets() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, models.PresetsResponse{Presets: models.Presets()})
	}
}
