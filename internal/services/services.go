// Package services provides the built-in capabilities the CLI registers so a
// plan can run end to end without an external tool layer: a clock, text
// utilities, and an HTTP client, plus the shell-command authenticator.
package services

import (
	"github.com/charmbracelet/log"

	"github.com/planrun/planrun/internal/config"
	"github.com/planrun/planrun/internal/registry"
)

// Register installs every built-in capability into the registry.
func Register(reg *registry.Registry, cfg *config.EngineConfig, logger *log.Logger) {
	if logger == nil {
		logger = log.Default()
	}
	reg.Register(clockCapability())
	reg.Register(textCapability())
	reg.Register(httpCapability(cfg.HTTP, logger))
}
