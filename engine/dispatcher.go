package engine

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/use-agent/topchart/models"
)

// AcceptFunc decides whether a snapshot is good enough to stop escalating.
type AcceptFunc func(*Snapshot) bool

// Dispatcher picks the engine for a fetch mode. In auto mode it escalates
// sequentially from the cheap HTTP engine to the browser whenever the
// cheaper snapshot is rejected, starting with whichever engine last worked
// for the host.
type Dispatcher struct {
	http   Engine
	rod    Engine
	memory *DomainMemory
}

// NewDispatcher creates a Dispatcher. Either engine may be nil when its mode
// is never requested.
func NewDispatcher(httpEngine, rodEngine Engine, memory *DomainMemory) *Dispatcher {
	return &Dispatcher{http: httpEngine, rod: rodEngine, memory: memory}
}

// Dispatch fetches req.URL according to mode. When every engine's snapshot is
// rejected, the last rejected snapshot is returned so the caller can report an
// empty run and capture diagnostics.
func (d *Dispatcher) Dispatch(ctx context.Context, mode string, req *FetchRequest, accept AcceptFunc) (*Snapshot, error) {
	domain := extractDomain(req.URL)
	engines, err := d.plan(mode, domain)
	if err != nil {
		return nil, err
	}

	var (
		fallback *Snapshot
		lastErr  error
	)
	for _, eng := range engines {
		if ctx.Err() != nil {
			lastErr = ctx.Err()
			break
		}
		slog.Debug("engine starting", "engine", eng.Name(), "url", req.URL)
		snap, err := eng.Fetch(ctx, req)
		if err != nil {
			slog.Warn("engine failed", "engine", eng.Name(), "url", req.URL, "error", err)
			lastErr = err
			continue
		}
		if accept == nil || accept(snap) {
			if fallback != nil {
				fallback.Release()
			}
			if len(engines) > 1 {
				d.memory.Set(domain, eng.Name())
			}
			slog.Info("engine selected", "engine", eng.Name(), "url", req.URL)
			return snap, nil
		}

		slog.Info("engine snapshot rejected, escalating", "engine", eng.Name(), "url", req.URL)
		if d.memory.Get(domain) == eng.Name() {
			d.memory.Delete(domain)
		}
		if fallback != nil {
			fallback.Release()
		}
		fallback = snap
	}

	if fallback != nil {
		return fallback, nil
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("dispatcher: all engines failed for %s", req.URL)
	}
	return nil, lastErr
}

// plan orders the engines to try for mode.
func (d *Dispatcher) plan(mode, domain string) ([]Engine, error) {
	var engines []Engine
	switch mode {
	case models.FetchModeHTTP:
		engines = []Engine{d.http}
	case models.FetchModeBrowser, "":
		engines = []Engine{d.rod}
	case models.FetchModeAuto:
		engines = []Engine{d.http, d.rod}
		if d.memory.Get(domain) == "rod" {
			slog.Debug("domain memory hit", "domain", domain, "engine", "rod")
			engines = []Engine{d.rod, d.http}
		}
	default:
		return nil, models.NewScrapeError(models.ErrCodeInvalidInput,
			fmt.Sprintf("unknown fetch mode %q", mode), nil)
	}

	out := engines[:0]
	for _, e := range engines {
		if e != nil {
			out = append(out, e)
		}
	}
	if len(out) == 0 {
		return nil, models.NewScrapeError(models.ErrCodeInvalidInput,
			fmt.Sprintf("no engine configured for fetch mode %q", mode), nil)
	}
	return out, nil
}

// extractDomain parses the hostname from a URL string.
func extractDomain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Hostname()
}
