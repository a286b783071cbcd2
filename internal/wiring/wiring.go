// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/mend/internal/adapters/config"
	_ "go.trai.ch/mend/internal/adapters/harness"
	_ "go.trai.ch/mend/internal/adapters/logger"
	_ "go.trai.ch/mend/internal/adapters/manifest"
	_ "go.trai.ch/mend/internal/adapters/proc"
	_ "go.trai.ch/mend/internal/adapters/report"
	_ "go.trai.ch/mend/internal/adapters/state"
	_ "go.trai.ch/mend/internal/adapters/telemetry"
	// Register app and engine nodes.
	_ "go.trai.ch/mend/internal/app"
	_ "go.trai.ch/mend/internal/engine/loop"
	_ "go.trai.ch/mend/internal/engine/pool"
)
