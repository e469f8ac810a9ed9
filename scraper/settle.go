package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
)

// sleepCtx waits for d or until ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// scrollToBottom scrolls to the end of the document up to limit times,
// pausing after each step, and stops early once the document height no
// longer grows. Lazily rendered rows are attached along the way.
func scrollToBottom(p *rod.Page, limit int, pause time.Duration) error {
	last, err := scrollHeight(p)
	if err != nil {
		return err
	}

	for i := 0; i < limit; i++ {
		if _, err := p.Eval(`() => window.scrollTo(0, document.body.scrollHeight)`); err != nil {
			return fmt.Errorf("scroll step %d failed: %w", i, err)
		}
		if err := sleepCtx(p.GetContext(), pause); err != nil {
			return err
		}
		height, err := scrollHeight(p)
		if err != nil {
			return err
		}
		slog.Debug("scrolled", "step", i+1, "height", height)
		if height == last {
			break
		}
		last = height
	}
	return nil
}

func scrollHeight(p *rod.Page) (int, error) {
	res, err := p.Eval(`() => document.body ? document.body.scrollHeight : 0`)
	if err != nil {
		return 0, fmt.Errorf("failed to read scroll height: %w", err)
	}
	return res.Value.Int(), nil
}
