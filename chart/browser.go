package chart

import (
	"context"
	"log/slog"
	"sync"

	"github.com/use-agent/topchart/config"
	"github.com/use-agent/topchart/engine"
	"github.com/use-agent/topchart/scraper"
)

// LazyBrowser launches Chromium on first use, so http-only runs never pay
// for a browser.
type LazyBrowser struct {
	browserCfg config.BrowserConfig
	scraperCfg config.ScraperConfig

	mu      sync.Mutex
	browser *scraper.Browser
}

// NewLazyBrowser returns a handle that launches with the given settings.
func NewLazyBrowser(browserCfg config.BrowserConfig, scraperCfg config.ScraperConfig) *LazyBrowser {
	return &LazyBrowser{browserCfg: browserCfg, scraperCfg: scraperCfg}
}

// Get returns the running browser, launching it if needed. A failed launch
// is retried on the next call.
func (l *LazyBrowser) Get() (*scraper.Browser, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.browser != nil {
		return l.browser, nil
	}
	b, err := scraper.Launch(l.browserCfg, l.scraperCfg)
	if err != nil {
		return nil, err
	}
	l.browser = b
	return b, nil
}

// ActivePages reports open tabs, zero when the browser never started.
func (l *LazyBrowser) ActivePages() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.browser == nil {
		return 0
	}
	return l.browser.ActivePages()
}

// Close shuts the browser down if it was started.
func (l *LazyBrowser) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.browser != nil {
		l.browser.Close()
		l.browser = nil
	}
}

// screenshotError carries the path of a diagnostic captured before a fetch
// failed.
type screenshotError struct {
	path string
	err  error
}

func (e *screenshotError) Error() string { return e.err.Error() }

func (e *screenshotError) Unwrap() error { return e.err }

// RodFetch loads pages in the lazily started browser. When loading fails the
// page is captured to errorShot before it is closed.
func RodFetch(l *LazyBrowser, errorShot string) engine.RodFetchFunc {
	return func(ctx context.Context, req *engine.FetchRequest) (*engine.Snapshot, error) {
		b, err := l.Get()
		if err != nil {
			return nil, err
		}
		page, err := b.NewPage(ctx, req.Stealth)
		if err != nil {
			return nil, err
		}

		if err := page.Load(req.URL); err != nil {
			defer page.Close()
			if errorShot == "" {
				return nil, err
			}
			if shotErr := page.Screenshot(errorShot); shotErr != nil {
				slog.Warn("error screenshot failed", "path", errorShot, "error", shotErr)
				return nil, err
			}
			return nil, &screenshotError{path: errorShot, err: err}
		}

		finalURL := page.FinalURL()
		if finalURL == "" {
			finalURL = req.URL
		}
		shoot := func(path string) (string, error) {
			return path, page.Screenshot(path)
		}
		return engine.NewSnapshot(page.Document(), finalURL, shoot, page.Close), nil
	}
}
