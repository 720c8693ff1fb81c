// Package parallel provides generic parallel processing utilities used
// outside the engine's hot path: bulk verification by the verify command.
package parallel

import (
	"context"
	"runtime"
	"sync"
)

// PoolConfig configures parallel execution.
type PoolConfig struct {
	// MaxWorkers is the maximum number of concurrent workers.
	// Default: runtime.NumCPU().
	MaxWorkers int
}

// DefaultPoolConfig returns a default pool configuration.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{MaxWorkers: runtime.NumCPU()}
}

// WithWorkers returns a new config with the specified number of workers.
func (c PoolConfig) WithWorkers(n int) PoolConfig {
	c.MaxWorkers = n
	return c
}

// ForEach runs fn for every index in [0, n) across the configured
// number of workers and blocks until all complete or the context is
// cancelled. It returns the context error, if any.
func ForEach(ctx context.Context, cfg PoolConfig, n int, fn func(i int)) error {
	if n <= 0 {
		return nil
	}
	workers := cfg.MaxWorkers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	workers = min(workers, n)

	idx := make(chan int, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range idx {
				fn(i)
			}
		}()
	}

	var err error
feed:
	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
			err = ctx.Err()
			break feed
		case idx <- i:
		}
	}
	close(idx)
	wg.Wait()
	return err
}

// Map applies fn to every input across the configured workers and
// returns outputs in input order.
func Map[T any, R any](ctx context.Context, cfg PoolConfig, inputs []T, fn func(ctx context.Context, in T) R) ([]R, error) {
	out := make([]R, len(inputs))
	err := ForEach(ctx, cfg, len(inputs), func(i int) {
		out[i] = fn(ctx, inputs[i])
	})
	return out, err
}
