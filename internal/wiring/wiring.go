// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/kcache/internal/adapters/config"
	_ "go.trai.ch/kcache/internal/adapters/executor"
	_ "go.trai.ch/kcache/internal/adapters/logger"
	_ "go.trai.ch/kcache/internal/adapters/telemetry"
	_ "go.trai.ch/kcache/internal/adapters/trace"
	// Register app nodes.
	_ "go.trai.ch/kcache/internal/app"
)
