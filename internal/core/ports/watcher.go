package ports

import (
	"context"
	"iter"
)

// WatchOp is the kind of change observed on the settings file.
type WatchOp uint8

// Watch operations. Chmod-only changes are never reported.
const (
	OpCreate WatchOp = iota
	OpWrite
	OpRemove
	OpRename
)

// WatchEvent is one observed change to the watched file.
type WatchEvent struct {
	Path      string
	Operation WatchOp
}

// Watcher follows a single file for hot reloading.
//
//go:generate go run go.uber.org/mock/mockgen -source=watcher.go -destination=mocks/mock_watcher.go -package=mocks
type Watcher interface {
	// Start watches path until ctx ends or Stop is called.
	Start(ctx context.Context, path string) error
	Stop() error
	// Events yields changes to the watched file. The sequence ends when watching stops.
	Events() iter.Seq[WatchEvent]
}
