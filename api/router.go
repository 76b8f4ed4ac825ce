package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/scrapedeck/scrapedeck/api/handler"
	"github.com/scrapedeck/scrapedeck/api/middleware"
	"github.com/scrapedeck/scrapedeck/cache"
	"github.com/scrapedeck/scrapedeck/config"
	"github.com/scrapedeck/scrapedeck/engine"
	"github.com/scrapedeck/scrapedeck/preview"
	"github.com/scrapedeck/scrapedeck/scraper"
	"github.com/scrapedeck/scrapedeck/session"
	"github.com/scrapedeck/scrapedeck/web"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	API:     Session → Auth (if enabled) → RateLimit
//
// The health endpoint and the UI are outside the API chain so probes
// work and the panel always loads.
func NewRouter(sc *scraper.Scraper, pv *preview.Previewer, mgr *engine.Manager, store *session.Store, cc *cache.Cache, cfg *config.Config, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	// Panel UI, embedded in the binary.
	web.Register(r)

	// Health, no auth required.
	r.GET("/health", handler.Health(mgr, startTime))

	v1 := r.Group("/api/v1")
	v1.Use(middleware.Session(store, cfg.Session.TTL))
	if cfg.Auth.Enabled {
		v1.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	v1.Use(middleware.RateLimit(cfg.RateLimit))

	// Scraping
	v1.POST("/scrape", handler.Scrape(sc, cc))

	// Session state
	v1.GET("/results", handler.Results())
	v1.GET("/history", handler.History())

	// Downloads
	v1.GET("/export/:format", handler.Export())

	// Helpers
	v1.GET("/presets", handler.Presets())
	v1.POST("/preview", handler.Preview(pv))

	return r
}
