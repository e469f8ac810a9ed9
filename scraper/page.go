package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/ysmood/gson"

	"github.com/use-agent/topchart/config"
	"github.com/use-agent/topchart/extract"
	"github.com/use-agent/topchart/models"
)

// screenshotTimeout bounds a diagnostic capture, which may run after the
// request context has expired.
const screenshotTimeout = 15 * time.Second

// Page is one browser tab bound to a request context.
//
// Lifecycle:
//
//  1. NewPage   – open a tab, inject stealth, mount the hijack router
//  2. Load      – navigate, wait for readiness, settle, scroll
//  3. Document  – hand the live DOM to the extractor
//  4. Close     – stop the router and close the tab
//
// Stealth JS and request blocking only affect navigations that happen after
// they are installed, so NewPage must finish before Load.
type Page struct {
	owner  *Browser
	page   *rod.Page // unbound; used for cleanup and diagnostics
	p      *rod.Page // bound to the request context
	router *rod.HijackRouter
	cfg    config.ScraperConfig
}

// NewPage opens a tab prepared for the chart page.
func (b *Browser) NewPage(ctx context.Context, stealthOn bool) (*Page, error) {
	page, err := b.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, models.NewScrapeError(
			models.ErrCodeBrowserCrash,
			"failed to open page",
			err,
		)
	}
	b.activePages.Add(1)

	if stealthOn {
		if _, evalErr := page.EvalOnNewDocument(stealth.JS); evalErr != nil {
			slog.Warn("stealth injection failed, proceeding without stealth",
				"error", evalErr,
			)
		}
	}

	_ = proto.NetworkSetExtraHTTPHeaders{
		Headers: toHeadersMap(map[string]string{
			"Accept-Language": "en-US,en;q=0.9",
		}),
	}.Call(page)

	if b.browserCfg.UserAgent != "" {
		_ = proto.NetworkSetUserAgentOverride{
			UserAgent:      b.browserCfg.UserAgent,
			AcceptLanguage: "en-US,en;q=0.9",
		}.Call(page)
	}

	return &Page{
		owner:  b,
		page:   page,
		p:      page.Context(ctx),
		router: setupHijack(page, b.scraperCfg.BlockedResourceTypes, b.scraperCfg.BlockAds),
		cfg:    b.scraperCfg,
	}, nil
}

// Load navigates to url and prepares the DOM for extraction. A missing
// readiness marker is logged, not returned: the row collector decides
// whether the page is usable.
func (p *Page) Load(url string) error {
	slog.Info("loading chart page", "url", url)
	if err := p.p.Navigate(url); err != nil {
		return categorizeError(err, "navigation to chart page failed")
	}
	if err := p.p.WaitLoad(); err != nil {
		slog.Debug("load event did not fire, continuing", "error", err)
	}

	if loc, ok := p.waitReady(); ok {
		slog.Debug("page ready", "locator", loc)
	} else {
		slog.Warn("no readiness locator appeared, continuing with current DOM",
			"locators", p.cfg.ReadyLocators,
			"timeout", p.cfg.ReadyTimeout,
		)
	}

	if err := sleepCtx(p.p.GetContext(), p.cfg.SettleDelay); err != nil {
		return categorizeError(err, "settle wait interrupted")
	}
	if err := scrollToBottom(p.p, p.cfg.ScrollLimit, p.cfg.ScrollPause); err != nil {
		return categorizeError(err, "scrolling the chart page failed")
	}
	return nil
}

// waitReady waits for each readiness locator in turn and reports the first
// one that appeared.
func (p *Page) waitReady() (string, bool) {
	for _, loc := range p.cfg.ReadyLocators {
		tp := p.p.Timeout(p.cfg.ReadyTimeout)
		err := tp.WaitElementsMoreThan(loc, 0)
		tp.CancelTimeout()
		if err == nil {
			return loc, true
		}
		if ctxErr := p.p.GetContext().Err(); ctxErr != nil {
			return "", false
		}
		slog.Debug("readiness locator not found", "locator", loc, "error", err)
	}
	return "", false
}

// Document exposes the live DOM to the extractor.
func (p *Page) Document() extract.Document {
	return document{page: p.p}
}

// FinalURL returns the address after redirects, or "" when unknown.
func (p *Page) FinalURL() string {
	info, err := p.p.Info()
	if err != nil {
		return ""
	}
	return info.URL
}

// Screenshot writes a full-page PNG to path. It runs on the unbound page so
// a timed-out run can still be captured.
func (p *Page) Screenshot(path string) error {
	data, err := p.page.Timeout(screenshotTimeout).Screenshot(true, nil)
	if err != nil {
		return fmt.Errorf("scraper: capture screenshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("scraper: write screenshot: %w", err)
	}
	slog.Info("screenshot saved", "path", path)
	return nil
}

// Close stops request interception and closes the tab.
func (p *Page) Close() {
	if p.router != nil {
		_ = p.router.Stop()
	}
	if err := p.page.Close(); err != nil {
		slog.Warn("cleanup: failed to close page", "error", err)
	}
	p.owner.activePages.Add(-1)
}

// toHeadersMap converts a plain string map to the proto.NetworkHeaders type
// (map[string]gson.JSON) required by NetworkSetExtraHTTPHeaders.
func toHeadersMap(headers map[string]string) proto.NetworkHeaders {
	m := make(proto.NetworkHeaders, len(headers))
	for k, v := range headers {
		m[k] = gson.New(v)
	}
	return m
}

// categorizeError wraps raw errors into typed ScrapeErrors so the API layer
// can map them to appropriate HTTP status codes.
func categorizeError(err error, msg string) *models.ScrapeError {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewScrapeError(models.ErrCodeTimeout, msg, err)
	case errors.Is(err, context.Canceled):
		return models.NewScrapeError(models.ErrCodeTimeout, "request canceled", err)
	default:
		return models.NewScrapeError(models.ErrCodeNavigation, msg, err)
	}
}
