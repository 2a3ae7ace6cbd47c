package icosphere

import "time"

// BuilderOption is a functional option for configuring a Builder.
type BuilderOption func(*builder)

// WithWorkers sets the maximum number of pool workers. Values <= 0 keep the default.
//
// Parameters:
//   - n: maximum concurrent generations
//
// Returns:
//   - BuilderOption: option function to apply
func WithWorkers(n int) BuilderOption {
	return func(b *builder) {
		if n > 0 {
			b.workers = n
		}
	}
}

// WithQueueSize sets the pool's task queue capacity. Values <= 0 keep the default.
//
// Parameters:
//   - n: number of tasks that can wait for a worker
//
// Returns:
//   - BuilderOption: option function to apply
func WithQueueSize(n int) BuilderOption {
	return func(b *builder) {
		if n > 0 {
			b.queueSize = n
		}
	}
}

// WithIdleTimeout sets how long an idle pool worker lingers.
//
// Parameters:
//   - d: idle timeout duration
//
// Returns:
//   - BuilderOption: option function to apply
func WithIdleTimeout(d time.Duration) BuilderOption {
	return func(b *builder) {
		b.idleTimeout = d
	}
}

// WithCache keeps every generated mesh so repeated builds of the same sphere are free.
//
// Parameters:
//   - enabled: true to cache generated meshes
//
// Returns:
//   - BuilderOption: option function to apply
func WithCache(enabled bool) BuilderOption {
	return func(b *builder) {
		b.cacheEnabled = enabled
	}
}
