package services

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lcindex/lcindex/internal/config"
)

func TestNew_DefaultsMetricsAndClock(t *testing.T) {
	cfg := config.NewConfig()
	s := New(slog.Default(), cfg)

	require.NotNil(t, s.Logger)
	require.NotNil(t, s.Metrics)
	require.NotNil(t, s.Clock)
	assert.Same(t, cfg, s.Config)

	// Noop metrics never panic.
	s.Metrics.Count("queries", 1, "type=lexical")
	s.Metrics.Observe("latency_ms", 12.5)
}

func TestNew_NilLoggerFallsBackToDefault(t *testing.T) {
	s := New(nil, config.NewConfig())
	assert.NotNil(t, s.Logger)
}

func TestFixedClock(t *testing.T) {
	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := FixedClock{At: at}
	assert.Equal(t, at, c.Now())
}
