// Package chart runs one extraction end to end: fetch the chart page,
// collect rows, extract fields, then persist, summarize and notify.
package chart

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/use-agent/topchart/cache"
	"github.com/use-agent/topchart/config"
	"github.com/use-agent/topchart/engine"
	"github.com/use-agent/topchart/extract"
	"github.com/use-agent/topchart/models"
	"github.com/use-agent/topchart/output"
	"github.com/use-agent/topchart/summary"
	"github.com/use-agent/topchart/webhook"
)

// sinkWriteTimeout bounds persisting one run.
const sinkWriteTimeout = 30 * time.Second

// Fetcher loads the chart page. *engine.Dispatcher implements it.
type Fetcher interface {
	Dispatch(ctx context.Context, mode string, req *engine.FetchRequest, accept engine.AcceptFunc) (*engine.Snapshot, error)
}

// Options wires the optional collaborators of a Service.
type Options struct {
	Scraper config.ScraperConfig
	Output  config.OutputConfig

	// Sink persists completed runs. Nil skips persistence.
	Sink output.Sink

	// Notifier receives one event per run. Nil disables it.
	Notifier *webhook.Notifier

	// Cache replays recent completed runs. Nil disables it.
	Cache *cache.Cache

	Logger *slog.Logger
}

// Service executes scrape runs. It is safe for concurrent use.
type Service struct {
	fetcher  Fetcher
	opts     Options
	log      *slog.Logger
	active   atomic.Int32
	mu       sync.RWMutex
	latest   *models.ScrapeResponse
	lastStat string
}

// NewService creates a Service fetching through f.
func NewService(f Fetcher, opts Options) *Service {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Service{fetcher: f, opts: opts, log: log}
}

// ActiveRuns reports runs currently in flight.
func (s *Service) ActiveRuns() int { return int(s.active.Load()) }

// Latest returns the most recent completed run, or nil.
func (s *Service) Latest() *models.ScrapeResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}

// LastStatus returns the status of the most recent run, or "".
func (s *Service) LastStatus() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastStat
}

// Scrape performs one run. The response is always non-nil; the error is
// non-nil only for run-level failures and is then a *models.ScrapeError.
// A page without rows is not an error: the response has status "empty".
func (s *Service) Scrape(ctx context.Context, req *models.ScrapeRequest) (*models.ScrapeResponse, error) {
	s.fillFromConfig(req)
	req.Defaults(s.opts.Scraper.ChartURL)
	start := time.Now()

	var cacheKey string
	if s.opts.Cache != nil && req.MaxAge > 0 {
		cacheKey = cache.Key(req.URL, req.FetchMode, req.MaxRows)
		if cached, ok := s.opts.Cache.Get(cacheKey, req.MaxAge); ok {
			s.log.Info("cache hit", "url", req.URL)
			hit := *cached
			hit.CacheStatus = "hit"
			return &hit, nil
		}
	}

	s.active.Add(1)
	defer s.active.Add(-1)

	resp, err := s.run(ctx, req)
	resp.Timing.TotalMs = time.Since(start).Milliseconds()
	if cacheKey != "" {
		resp.CacheStatus = "miss"
		s.opts.Cache.Set(cacheKey, resp)
	}

	s.mu.Lock()
	s.lastStat = resp.Status
	if resp.Status == models.StatusCompleted {
		s.latest = resp
	}
	s.mu.Unlock()

	s.opts.Notifier.Notify(webhook.EventFor(resp))
	s.log.Info("run finished",
		"status", resp.Status,
		"engine", resp.EngineUsed,
		"movies", len(resp.Movies),
		"skipped", resp.Skipped,
		"total_ms", resp.Timing.TotalMs,
	)
	return resp, err
}

// fillFromConfig copies configured run settings into fields the caller left
// unset. Request-level defaults cover whatever is still zero afterwards.
func (s *Service) fillFromConfig(req *models.ScrapeRequest) {
	cfg := s.opts.Scraper
	if req.FetchMode == "" {
		req.FetchMode = cfg.FetchMode
	}
	if req.Timeout == 0 && cfg.Timeout > 0 {
		req.Timeout = int(math.Ceil(cfg.Timeout.Seconds()))
	}
	if req.MaxRows == 0 {
		req.MaxRows = cfg.MaxRows
	}
}

func (s *Service) run(ctx context.Context, req *models.ScrapeRequest) (*models.ScrapeResponse, error) {
	resp := &models.ScrapeResponse{
		SourceURL: req.URL,
		Movies:    []models.Movie{},
	}

	timeout := time.Duration(req.Timeout) * time.Second
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ex := extract.New(extract.Options{
		MaxRows:     req.MaxRows,
		RowLocators: s.opts.Scraper.RowLocators,
		Logger:      s.log,
	})

	// ── Fetch ─────────────────────────────────────────────────────────
	fetchStart := time.Now()
	snap, err := s.fetcher.Dispatch(ctx, req.FetchMode, &engine.FetchRequest{
		URL:     req.URL,
		Timeout: timeout,
		Stealth: req.Stealth == nil || *req.Stealth,
	}, func(snap *engine.Snapshot) bool {
		return ex.HasRows(snap.Document)
	})
	resp.Timing.FetchMs = time.Since(fetchStart).Milliseconds()
	if err != nil {
		var shot *screenshotError
		if errors.As(err, &shot) {
			resp.Screenshot = shot.path
		}
		return s.fail(resp, categorize(err, "failed to load chart page"))
	}
	defer snap.Release()
	resp.EngineUsed = snap.EngineName
	if snap.FinalURL != "" {
		resp.SourceURL = snap.FinalURL
	}

	// ── Extract ───────────────────────────────────────────────────────
	extractStart := time.Now()
	batch, err := ex.Extract(snap.Document)
	resp.Timing.ExtractMs = time.Since(extractStart).Milliseconds()

	switch {
	case errors.Is(err, extract.ErrNoRows):
		s.log.Warn("no movie rows found", "url", resp.SourceURL, "engine", resp.EngineUsed)
		resp.Success = true
		resp.Status = models.StatusEmpty
		resp.Screenshot = s.capture(snap, s.opts.Output.DebugScreenshot)
		return resp, nil
	case err != nil:
		resp.Screenshot = s.capture(snap, s.opts.Output.ErrorScreenshot)
		return s.fail(resp, categorize(err, "extraction failed"))
	}

	resp.Success = true
	resp.RowLocator = batch.Locator
	resp.RowsFound = batch.RowsFound
	resp.Skipped = batch.Skipped
	resp.LayoutFingerprint = batch.LayoutFingerprint
	resp.Movies = batch.Movies
	resp.Summary = summary.Compute(batch.Movies)

	if len(batch.Movies) == 0 {
		resp.Status = models.StatusEmpty
		return resp, nil
	}
	resp.Status = models.StatusCompleted

	// ── Persist ───────────────────────────────────────────────────────
	if sink := s.opts.Sink; sink != nil {
		// The page load may have used up the run deadline; saving gets its own.
		wctx, wcancel := context.WithTimeout(context.WithoutCancel(ctx), sinkWriteTimeout)
		werr := sink.Write(wctx, resp)
		wcancel()
		if werr != nil {
			// The movies are still returned; only the file is missing.
			s.log.Error("failed to save results", "path", sink.Path(), "error", werr)
			resp.Error = models.NewScrapeError(models.ErrCodeOutput, "failed to save results", werr).ToDetail()
		} else {
			resp.OutputPath = sink.Path()
			s.log.Info("results saved", "path", sink.Path(), "movies", len(resp.Movies))
		}
	}
	return resp, nil
}

// capture saves a diagnostic of snap to path and returns the path, or ""
// when nothing was written.
func (s *Service) capture(snap *engine.Snapshot, path string) string {
	if path == "" {
		return ""
	}
	written, err := snap.Capture(path)
	if err != nil {
		s.log.Warn("diagnostic capture failed", "path", path, "error", err)
		return ""
	}
	return written
}

func (s *Service) fail(resp *models.ScrapeResponse, err *models.ScrapeError) (*models.ScrapeResponse, error) {
	s.log.Error("run failed", "url", resp.SourceURL, "code", err.Code, "error", err)
	resp.Success = false
	resp.Status = models.StatusFailed
	resp.Error = err.ToDetail()
	return resp, err
}

// categorize keeps typed errors and maps the rest onto error codes.
func categorize(err error, msg string) *models.ScrapeError {
	var se *models.ScrapeError
	if errors.As(err, &se) {
		return se
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return models.NewScrapeError(models.ErrCodeTimeout, msg, err)
	case errors.Is(err, extract.ErrDetached):
		return models.NewScrapeError(models.ErrCodeBrowserCrash, msg, err)
	default:
		return models.NewScrapeError(models.ErrCodeNavigation, msg, err)
	}
}
