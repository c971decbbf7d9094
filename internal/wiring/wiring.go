// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/qcache/internal/adapters/config"
	_ "go.trai.ch/qcache/internal/adapters/logger"
	_ "go.trai.ch/qcache/internal/adapters/metrics"
	_ "go.trai.ch/qcache/internal/adapters/storage"
	_ "go.trai.ch/qcache/internal/adapters/telemetry"
	_ "go.trai.ch/qcache/internal/adapters/watcher"
	// Register app nodes.
	_ "go.trai.ch/qcache/internal/app"
)
