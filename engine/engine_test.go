package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/scrapedeck/scrapedeck/models"
)

type fakeEngine struct {
	name string
}

func (f *fakeEngine) Name() string { return f.name }
func (f *fakeEngine) Fetch(ctx context.Context, req *FetchRequest) (*FetchResult, error) {
	return &FetchResult{EngineName: f.name}, nil
}

func TestRegistry_Get(t *testing.T) {
	reg := NewRegistry(&fakeEngine{name: "http"}, &fakeEngine{name: "dynamic"})

	e, err := reg.Get("http")
	if err != nil {
		t.Fatalf("Get(http) failed: %v", err)
	}
	if e.Name() != "http" {
		t.Errorf("Get(http).Name() = %q", e.Name())
	}
}

func TestRegistry_UnknownEngine(t *testing.T) {
	reg := NewRegistry(&fakeEngine{name: "http"})

	_, err := reg.Get("teleport")
	if err == nil {
		t.Fatal("expected error for unknown engine")
	}

	var se *models.ScrapeError
	if !errors.As(err, &se) || se.Code != models.ErrCodeInvalidInput {
		t.Errorf("expected %s error, got %v", models.ErrCodeInvalidInput, err)
	}
}

func TestCategorizeError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{"deadline", context.DeadlineExceeded, models.ErrCodeTimeout},
		{"canceled", context.Canceled, models.ErrCodeTimeout},
		{"other", errors.New("net::ERR_NAME_NOT_RESOLVED"), models.ErrCodeNavigation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			se := categorizeError(tt.err, "boom")
			if se.Code != tt.wantCode {
				t.Errorf("categorizeError(%v).Code = %q, want %q", tt.err, se.Code, tt.wantCode)
			}
		})
	}
}
