package engine

import (
	"context"
	"fmt"
)

// RodFetchFunc loads a page in the browser. It is injected by the caller so
// this package does not depend on the browser lifecycle.
type RodFetchFunc func(ctx context.Context, req *FetchRequest) (*Snapshot, error)

// RodEngine renders the page in headless Chrome.
type RodEngine struct {
	fetchFunc RodFetchFunc
}

// NewRodEngine creates a RodEngine backed by fetchFunc.
func NewRodEngine(fetchFunc RodFetchFunc) *RodEngine {
	return &RodEngine{fetchFunc: fetchFunc}
}

func (e *RodEngine) Name() string { return "rod" }

func (e *RodEngine) Fetch(ctx context.Context, req *FetchRequest) (*Snapshot, error) {
	if e.fetchFunc == nil {
		return nil, fmt.Errorf("%s: fetchFunc not configured", e.Name())
	}

	snap, err := e.fetchFunc(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", e.Name(), err)
	}
	snap.EngineName = e.Name()
	return snap, nil
}
