package scraper

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/cdp"

	"github.com/use-agent/topchart/extract"
	"github.com/use-agent/topchart/models"
)

func TestIsTrackerHost(t *testing.T) {
	tests := []struct {
		host string
		want bool
	}{
		{"doubleclick.net", true},
		{"securepubads.g.doubleclick.net", true},
		{"WWW.GOOGLE-ANALYTICS.COM", true},
		{"www.imdb.com", false},
		{"m.media-amazon.com", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := isTrackerHost(tt.host); got != tt.want {
			t.Errorf("isTrackerHost(%q) = %v, want %v", tt.host, got, tt.want)
		}
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"deadline", context.DeadlineExceeded, extract.ErrDetached},
		{"canceled", context.Canceled, extract.ErrDetached},
		{"object gone", &rod.ObjectNotFoundError{}, extract.ErrDetached},
		{"stale node", &cdp.Error{Code: -32000, Message: "Could not find node with given id"}, extract.ErrDetached},
		{"bad selector", &cdp.Error{Code: -32000, Message: "DOM Error while querying"}, extract.ErrNotFound},
		{"other", errors.New("boom"), extract.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classify(tt.err); !errors.Is(got, tt.want) {
				t.Errorf("classify(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestCategorizeError(t *testing.T) {
	if got := categorizeError(context.DeadlineExceeded, "x"); got.Code != models.ErrCodeTimeout {
		t.Errorf("deadline code = %s", got.Code)
	}
	if got := categorizeError(errors.New("net::ERR_NAME_NOT_RESOLVED"), "x"); got.Code != models.ErrCodeNavigation {
		t.Errorf("navigation code = %s", got.Code)
	}
}

func TestSleepCtx(t *testing.T) {
	if err := sleepCtx(context.Background(), 0); err != nil {
		t.Errorf("zero sleep: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	if err := sleepCtx(ctx, time.Minute); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if time.Since(start) > time.Second {
		t.Error("sleepCtx did not return promptly on cancellation")
	}
}
