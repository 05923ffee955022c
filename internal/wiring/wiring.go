// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/selfie/internal/adapters/config"
	_ "go.trai.ch/selfie/internal/adapters/logger"
	_ "go.trai.ch/selfie/internal/adapters/receipts"
	_ "go.trai.ch/selfie/internal/adapters/repository"
	_ "go.trai.ch/selfie/internal/adapters/shell"
	_ "go.trai.ch/selfie/internal/adapters/telemetry"
	// Register app and engine nodes.
	_ "go.trai.ch/selfie/internal/app"
	_ "go.trai.ch/selfie/internal/engine/installer"
)
