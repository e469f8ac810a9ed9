package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/use-agent/topchart/cache"
	"github.com/use-agent/topchart/chart"
	"github.com/use-agent/topchart/config"
	"github.com/use-agent/topchart/engine"
	"github.com/use-agent/topchart/extract"
	"github.com/use-agent/topchart/output"
	"github.com/use-agent/topchart/webhook"
)

// app holds the collaborators shared by scrape and serve.
type app struct {
	browser  *chart.LazyBrowser
	sink     output.Sink
	cache    *cache.Cache
	notifier *webhook.Notifier
	service  *chart.Service
}

// newApp wires engines, sink, notifier and the chart service. The browser
// is launched on the first run that needs it.
func newApp(cfg *config.Config, withCache bool) (*app, error) {
	if len(cfg.Scraper.RowLocators) > 0 {
		if err := extract.ValidateLocators(cfg.Scraper.RowLocators); err != nil {
			return nil, fmt.Errorf("row locators: %w", err)
		}
	}
	if err := extract.ValidateLocators(cfg.Scraper.ReadyLocators); err != nil {
		return nil, fmt.Errorf("ready locators: %w", err)
	}

	sink, err := output.New(cfg.Output.Format, cfg.Output.ResolvedPath())
	if err != nil {
		return nil, err
	}

	a := &app{
		browser:  chart.NewLazyBrowser(cfg.Browser, cfg.Scraper),
		sink:     sink,
		notifier: webhook.New(cfg.Webhook.URL, cfg.Webhook.Secret, cfg.Webhook.Timeout),
	}
	if withCache {
		a.cache = cache.New(cfg.Cache.MaxEntries, cfg.Cache.TTL)
	}

	// The rod callback keeps engine/ free of any browser import.
	httpEngine := engine.NewHTTPEngine(cfg.Browser.Proxy)
	rodEngine := engine.NewRodEngine(chart.RodFetch(a.browser, cfg.Output.ErrorScreenshot))
	dispatcher := engine.NewDispatcher(httpEngine, rodEngine, engine.NewDomainMemory(24*time.Hour))

	a.service = chart.NewService(dispatcher, chart.Options{
		Scraper:  cfg.Scraper,
		Output:   cfg.Output,
		Sink:     sink,
		Notifier: a.notifier,
		Cache:    a.cache,
		Logger:   slog.Default(),
	})
	return a, nil
}

// Close waits for pending webhooks, then releases the browser and sink.
func (a *app) Close() {
	a.notifier.Wait()
	if a.cache != nil {
		a.cache.Stop()
	}
	a.browser.Close()
	if err := a.sink.Close(); err != nil {
		slog.Warn("failed to close output", "path", a.sink.Path(), "error", err)
	}
}
