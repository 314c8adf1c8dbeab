// Package store persists the orchestrator's single "is running" flag.
package store

import "context"

// RunStateStore is the persisted running-flag store injected into the
// orchestrator before start/stop.
type RunStateStore interface {
	// GetRunning reports whether the engine was persisted as running.
	GetRunning(ctx context.Context) (bool, error)
	// SetRunning persists the running flag.
	SetRunning(ctx context.Context, running bool) error
}
