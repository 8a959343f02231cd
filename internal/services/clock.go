package services

import "time"

// Clock abstracts wall-clock access so components that stamp records with
// the current time (checkpoints, cache TTLs, query log entries) can be
// tested without racing against real time. No suitable third-party clock
// library appears anywhere in the example pack's actual source (only in
// unrelated repos' dependency manifests), so this is a minimal stdlib
// interface rather than an adopted dependency.
type Clock interface {
	Now() time.Time
}

// RealClock is the production Clock, backed by time.Now.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// FixedClock is a test Clock that always returns the same instant.
type FixedClock struct {
	At time.Time
}

func (f FixedClock) Now() time.Time { return f.At }
