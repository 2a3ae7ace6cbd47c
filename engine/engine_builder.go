package engine

import (
	"time"

	"github.com/Carmen-Shannon/oxy-fireball/engine/controls"
	"github.com/Carmen-Shannon/oxy-fireball/engine/driver"
	"github.com/Carmen-Shannon/oxy-fireball/engine/profiler"
	"github.com/Carmen-Shannon/oxy-fireball/engine/window"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithProfiler replaces the default profiler.
func WithProfiler(p *profiler.Profiler) EngineBuilderOption {
	return func(e *engine) {
		e.profiler = p
	}
}

// WithWindow sets the window whose message loop drives the engine.
//
// Parameters:
//   - w: the window to use
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithDriver sets the frame driver ticked once per loop iteration.
//
// Parameters:
//   - d: the driver
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithDriver(d driver.Driver) EngineBuilderOption {
	return func(e *engine) {
		e.driver = d
	}
}

// WithControls routes key presses to c. Without it keys other than the quit key are ignored.
func WithControls(c controls.Controls) EngineBuilderOption {
	return func(e *engine) {
		e.controls = c
	}
}

// WithQuitKey sets the key that ends the loop. Defaults to Escape.
func WithQuitKey(keyCode uint32) EngineBuilderOption {
	return func(e *engine) {
		e.quitKey = keyCode
	}
}

// WithRenderFrameLimit sets an optional frame rate cap in frames per second.
// Pass 0 to uncap the loop (default).
//
// Parameters:
//   - fps: maximum frames per second (0 = uncapped)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		e.renderFrameLimit = frameDuration(fps)
	}
}

// WithSleep replaces time.Sleep for the frame cap.
func WithSleep(sleep func(time.Duration)) EngineBuilderOption {
	return func(e *engine) {
		e.sleep = sleep
	}
}

// WithBeforeClose sets a hook Run calls after the driver stops and before the window is
// destroyed. GPU resources tied to the window surface are released here.
//
// Parameters:
//   - hook: the function to call once on shutdown
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithBeforeClose(hook func()) EngineBuilderOption {
	return func(e *engine) {
		e.beforeClose = hook
	}
}
