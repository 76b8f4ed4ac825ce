package engine

import (
	"context"

	"github.com/scrapedeck/scrapedeck/models"
)

// DynamicEngine renders JavaScript in a pooled Chrome tab before
// extraction. It is the strategy for pages that build their content
// client-side.
type DynamicEngine struct {
	mgr *Manager
}

// NewDynamicEngine creates a DynamicEngine backed by the browser manager.
func NewDynamicEngine(mgr *Manager) *DynamicEngine {
	return &DynamicEngine{mgr: mgr}
}

func (e *DynamicEngine) Name() string { return models.FetcherDynamic }

func (e *DynamicEngine) Fetch(ctx context.Context, req *FetchRequest) (*FetchResult, error) {
	res, err := e.mgr.fetch(ctx, req, rodOptions{})
	if err != nil {
		return nil, err
	}
	res.EngineName = e.Name()
	return res, nil
}
