// Package services bundles the cross-cutting collaborators every component
// needs — logging, configuration, metrics, and time — into one struct built
// once in cmd/lcindex and threaded through constructors. This replaces the
// package-level globals a smaller tool might reach for: every component
// that needs to log, read config, record a metric, or check the time takes
// a Services (or the one field it needs) as a constructor argument instead
// of importing a singleton.
package services

import (
	"log/slog"

	"github.com/lcindex/lcindex/internal/config"
)

// Services is the dependency bundle threaded through the indexing and
// query pipelines.
type Services struct {
	Logger  *slog.Logger
	Config  *config.Config
	Metrics Metrics
	Clock   Clock
}

// New builds a Services with the given logger and config, defaulting
// Metrics to a no-op recorder and Clock to the real wall clock. Callers
// that want metrics recorded (e.g. into the metadata store's query log)
// replace Metrics after construction.
func New(logger *slog.Logger, cfg *config.Config) *Services {
	if logger == nil {
		logger = slog.Default()
	}
	return &Services{
		Logger:  logger,
		Config:  cfg,
		Metrics: NoopMetrics{},
		Clock:   RealClock{},
	}
}
