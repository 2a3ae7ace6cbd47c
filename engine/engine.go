package engine

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-fireball/common"
	"github.com/Carmen-Shannon/oxy-fireball/engine/controls"
	"github.com/Carmen-Shannon/oxy-fireball/engine/driver"
	"github.com/Carmen-Shannon/oxy-fireball/engine/profiler"
	"github.com/Carmen-Shannon/oxy-fireball/engine/window"
)

// engine implements the Engine interface.
// Everything runs on the window's message loop goroutine: input and resize callbacks
// fire while events are polled, and each update callback runs exactly one frame.
type engine struct {
	mu *sync.Mutex

	window   window.Window
	driver   driver.Driver
	controls controls.Controls

	profiler         *profiler.Profiler
	profilingEnabled bool

	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped
	sleep            func(time.Duration)
	now              func() time.Time

	beforeClose func()

	quitKey  uint32
	quitOnce sync.Once
	fatalErr error
	frames   uint64
}

// Engine is the main entry point. It owns the frame loop and routes window events to the
// driver and the controls.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Driver returns the frame driver ticked by the loop.
	Driver() driver.Driver

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetRenderFrameLimit sets an optional frame rate cap in frames per second.
	// Pass 0 to uncap the loop (default).
	//
	// Parameters:
	//   - fps: maximum frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// Frames returns the number of update callbacks run so far.
	Frames() uint64

	// Run wires the window callbacks and blocks in the message loop until the window closes
	// or Quit is called. The driver is stopped, the before-close hook runs and the window
	// is destroyed, in that order, before it returns.
	//
	// Returns:
	//   - error: the fatal error that ended the loop, or nil on a normal close
	Run() error

	// Quit asks the message loop to exit after the current iteration.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()
}

var _ Engine = &engine{}

// NewEngine creates a new Engine from the provided options. A window and a driver are required.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
//   - error: an error wrapping common.ErrFatalInit if the window or driver is missing
func NewEngine(options ...EngineBuilderOption) (Engine, error) {
	e := &engine{
		mu:       &sync.Mutex{},
		profiler: profiler.NewProfiler(),
		sleep:    time.Sleep,
		now:      time.Now,
		quitKey:  common.KeyEsc,
	}
	for _, opt := range options {
		opt(e)
	}

	if e.window == nil {
		return nil, fmt.Errorf("engine: no window: %w", common.ErrFatalInit)
	}
	if e.driver == nil {
		return nil, fmt.Errorf("engine: no driver: %w", common.ErrFatalInit)
	}
	return e, nil
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Driver() driver.Driver {
	return e.driver
}

func (e *engine) Run() error {
	e.window.SetResizeCallback(e.driver.Resize)
	e.window.SetKeyDownCallback(e.handleKey)
	e.window.SetUpdateCallback(e.frame)

	e.window.ProcessMessages()

	e.driver.Stop()
	if e.beforeClose != nil {
		e.beforeClose()
	}
	if err := e.window.Close(); err != nil {
		log.Printf("[Engine] closing window: %v", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.fatalErr
}

// frame runs one scheduler iteration: a driver tick, then the profiler, then the frame cap.
func (e *engine) frame() {
	start := e.now()

	if err := e.driver.Tick(); err != nil {
		log.Printf("[Engine] fatal: %v", err)
		e.mu.Lock()
		e.fatalErr = err
		e.mu.Unlock()
		e.Quit()
		return
	}

	e.mu.Lock()
	e.frames++
	profiling := e.profilingEnabled
	limit := e.renderFrameLimit
	e.mu.Unlock()

	if profiling && e.profiler != nil {
		e.profiler.Tick()
	}

	if limit > 0 {
		if remaining := limit - e.now().Sub(start); remaining > 0 {
			e.sleep(remaining)
		}
	}
}

func (e *engine) handleKey(keyCode uint32) {
	if keyCode == e.quitKey {
		e.Quit()
		return
	}
	if e.controls != nil {
		e.controls.HandleKey(keyCode)
	}
}

// Quit requests the window to close. The message loop exits after the current iteration.
func (e *engine) Quit() {
	e.quitOnce.Do(func() {
		e.window.RequestClose()
	})
}

func (e *engine) EnableProfiler() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.profilingEnabled = true
}

func (e *engine) DisableProfiler() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.profilingEnabled = false
}

func (e *engine) SetRenderFrameLimit(fps float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.renderFrameLimit = frameDuration(fps)
}

func (e *engine) Frames() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.frames
}

// frameDuration converts a frame rate cap to the minimum frame duration, 0 for uncapped.
func frameDuration(fps float64) time.Duration {
	if fps <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / fps)
}
