// internal/app/system/timeouts/timeouts.go
package timeouts

// Package timeouts holds the context deadlines used by handlers, services
// and background jobs. Tiers:
//   - Ping:   health checks
//   - Short:  single-document reads and writes
//   - Medium: list queries, dashboard fan-out, multi-document writes
//   - Long:   uploads and outbound email
//   - Batch:  background sweeps over whole collections

import (
	"context"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultPing   = 2 * time.Second
	DefaultShort  = 5 * time.Second
	DefaultMedium = 10 * time.Second
	DefaultLong   = 30 * time.Second
	DefaultBatch  = 5 * time.Minute
)

// Config overrides tiers; zero fields keep the current value.
type Config struct {
	Ping   time.Duration
	Short  time.Duration
	Medium time.Duration
	Long   time.Duration
	Batch  time.Duration
}

var (
	mu      sync.RWMutex
	current = defaults()
)

func defaults() Config {
	return Config{
		Ping:   DefaultPing,
		Short:  DefaultShort,
		Medium: DefaultMedium,
		Long:   DefaultLong,
		Batch:  DefaultBatch,
	}
}

func Ping() time.Duration   { return Current().Ping }
func Short() time.Duration  { return Current().Short }
func Medium() time.Duration { return Current().Medium }
func Long() time.Duration   { return Current().Long }
func Batch() time.Duration  { return Current().Batch }

// Current returns a copy of the active tiers.
func Current() Config {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// Configure applies the non-zero fields of cfg.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	apply(&current.Ping, cfg.Ping)
	apply(&current.Short, cfg.Short)
	apply(&current.Medium, cfg.Medium)
	apply(&current.Long, cfg.Long)
	apply(&current.Batch, cfg.Batch)
}

// Reset restores the defaults. Used by tests.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	current = defaults()
}

// ConfigureFromEnv reads JOURNALHUB_TIMEOUT_{PING,SHORT,MEDIUM,LONG,BATCH}
// as Go durations and returns how many were applied. Invalid values are
// ignored.
func ConfigureFromEnv() int {
	var cfg Config
	n := 0
	for name, dst := range map[string]*time.Duration{
		"JOURNALHUB_TIMEOUT_PING":   &cfg.Ping,
		"JOURNALHUB_TIMEOUT_SHORT":  &cfg.Short,
		"JOURNALHUB_TIMEOUT_MEDIUM": &cfg.Medium,
		"JOURNALHUB_TIMEOUT_LONG":   &cfg.Long,
		"JOURNALHUB_TIMEOUT_BATCH":  &cfg.Batch,
	} {
		if d, err := time.ParseDuration(os.Getenv(name)); err == nil && d > 0 {
			*dst = d
			n++
		}
	}
	Configure(cfg)
	return n
}

func apply(dst *time.Duration, v time.Duration) {
	if v > 0 {
		*dst = v
	}
}

// WithTimeout derives a context with the given timeout. The returned cancel
// logs a warning when the deadline was what ended the operation.
//
//	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "dashboard build")
//	defer cancel()
func WithTimeout(parent context.Context, timeout time.Duration, log *zap.Logger, operation string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	return ctx, func() {
		if ctx.Err() == context.DeadlineExceeded && log != nil {
			log.Warn("operation timed out",
				zap.String("operation", operation),
				zap.Duration("timeout", timeout),
			)
		}
		cancel()
	}
}
