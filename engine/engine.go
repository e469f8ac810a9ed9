package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/use-agent/topchart/extract"
)

// ErrNoCapture is returned by Snapshot.Capture when the engine that produced
// the snapshot cannot save diagnostics.
var ErrNoCapture = errors.New("engine: snapshot cannot be captured")

// Engine is the interface that all fetch engines must implement.
type Engine interface {
	// Name returns the engine identifier ("http" or "rod").
	Name() string

	// Fetch loads the page and returns a queryable snapshot of it.
	Fetch(ctx context.Context, req *FetchRequest) (*Snapshot, error)
}

// FetchRequest contains everything an engine needs to fetch a page.
type FetchRequest struct {
	URL     string
	Headers map[string]string
	Timeout time.Duration
	Stealth bool
}

// Snapshot is a loaded page. Its Document stays valid until Release.
type Snapshot struct {
	Document   extract.Document
	Title      string
	FinalURL   string
	EngineName string

	capture func(path string) (string, error)
	release func()
	once    sync.Once
}

// NewSnapshot builds a Snapshot. capture and release may be nil.
// capture returns the path it actually wrote.
func NewSnapshot(doc extract.Document, finalURL string, capture func(string) (string, error), release func()) *Snapshot {
	return &Snapshot{
		Document: doc,
		FinalURL: finalURL,
		capture:  capture,
		release:  release,
	}
}

// Capture saves a diagnostic image (or markup dump) of the page near path
// and returns the file written.
func (s *Snapshot) Capture(path string) (string, error) {
	if s.capture == nil {
		return "", ErrNoCapture
	}
	return s.capture(path)
}

// Release frees the underlying page. It is safe to call more than once.
func (s *Snapshot) Release() {
	s.once.Do(func() {
		if s.release != nil {
			s.release()
		}
	})
}
