package engine

import (
	"context"

	"github.com/scrapedeck/scrapedeck/models"
)

// StealthEngine is the anti-bot strategy: the rod pipeline plus stealth
// JS patches, a search-referer warmup, and optional waiting out of
// Cloudflare challenges.
type StealthEngine struct {
	mgr *Manager
}

// NewStealthEngine creates a StealthEngine backed by the browser manager.
func NewStealthEngine(mgr *Manager) *StealthEngine {
	return &StealthEngine{mgr: mgr}
}

func (e *StealthEngine) Name() string { return models.FetcherStealth }

func (e *StealthEngine) Fetch(ctx context.Context, req *FetchRequest) (*FetchResult, error) {
	res, err := e.mgr.fetch(ctx, req, rodOptions{
		stealth:         true,
		solveCloudflare: req.SolveCloudflare,
	})
	if err != nil {
		return nil, err
	}
	res.EngineName = e.Name()
	return res, nil
}
