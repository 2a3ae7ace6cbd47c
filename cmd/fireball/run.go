package main

import (
	"fmt"
	"log"

	"github.com/Carmen-Shannon/oxy-fireball/common"
	"github.com/Carmen-Shannon/oxy-fireball/config"
	"github.com/Carmen-Shannon/oxy-fireball/engine"
	"github.com/Carmen-Shannon/oxy-fireball/engine/camera"
	"github.com/Carmen-Shannon/oxy-fireball/engine/controls"
	"github.com/Carmen-Shannon/oxy-fireball/engine/driver"
	"github.com/Carmen-Shannon/oxy-fireball/engine/icosphere"
	"github.com/Carmen-Shannon/oxy-fireball/engine/params"
	"github.com/Carmen-Shannon/oxy-fireball/engine/renderer"
	"github.com/Carmen-Shannon/oxy-fireball/engine/scene"
	"github.com/Carmen-Shannon/oxy-fireball/engine/window"
	"github.com/spf13/cobra"
)

// runFireball builds the window, renderer and frame driver from the configuration and
// blocks in the frame loop until the window closes.
func runFireball(cmd *cobra.Command, f *flags) error {
	cfg, err := loadConfig(cmd, f)
	if err != nil {
		return err
	}

	state := params.NewState()
	if err := cfg.Apply(state); err != nil {
		return err
	}

	win, err := window.NewWindow(
		window.WithTitle(cfg.Window.Title),
		window.WithSize(cfg.Window.Width, cfg.Window.Height),
		window.WithSizeLimits(
			common.Coalesce(cfg.Window.MinWidth, 320),
			common.Coalesce(cfg.Window.MinHeight, 240),
			common.Coalesce(cfg.Window.MaxWidth, 3840),
			common.Coalesce(cfg.Window.MaxHeight, 2160),
		),
	)
	if err != nil {
		return err
	}

	eng, err := assemble(cfg, state, win)
	if err != nil {
		_ = win.Close()
		return err
	}

	log.Printf("[Fireball] starting: %s", state.Get())
	return eng.Run()
}

// assemble wires the GPU side, the driver and the controls onto an open window.
// They are released in reverse order by the engine once the loop exits, before the window
// and its surface are destroyed.
func assemble(cfg config.Config, state params.State, win window.Window) (engine.Engine, error) {
	var releases []func()
	cleanup := func() {
		for i := len(releases) - 1; i >= 0; i-- {
			releases[i]()
		}
	}
	fail := func(err error) (engine.Engine, error) {
		cleanup()
		return nil, err
	}

	presentMode := renderer.PresentModeVSync
	if !cfg.Renderer.VSync {
		presentMode = renderer.PresentModeUncapped
	}
	r, err := renderer.NewRenderer(renderer.BackendTypeWGPU, win,
		renderer.WithPresentMode(presentMode),
		renderer.WithMSAA(renderer.MSAASampleCount(cfg.Renderer.MSAA)),
		renderer.WithForceSoftwareRenderer(cfg.Renderer.Software),
	)
	if err != nil {
		return fail(err)
	}
	releases = append(releases, r.Release)

	sc, err := scene.NewScene("Fireball", r)
	if err != nil {
		return fail(err)
	}
	releases = append(releases, sc.Release)

	builder := icosphere.NewBuilder(
		icosphere.WithWorkers(cfg.Workers.Count),
		icosphere.WithQueueSize(cfg.Workers.QueueSize),
	)
	releases = append(releases, builder.Close)

	cam := camera.NewCamera(
		camera.WithAspect(float32(win.Width()) / float32(win.Height())),
	)

	drv, err := driver.New(driver.Context{
		Params:  state,
		Builder: builder,
		Target:  sc,
		Camera:  cam,
	}, driver.WithRadius(cfg.Fireball.Radius))
	if err != nil {
		return fail(err)
	}

	ctl, err := controls.NewControls(state)
	if err != nil {
		return fail(err)
	}
	releases = append(releases, ctl.Close)

	eng, err := engine.NewEngine(
		engine.WithWindow(win),
		engine.WithDriver(drv),
		engine.WithControls(ctl),
		engine.WithProfiling(cfg.Engine.Profiling),
		engine.WithRenderFrameLimit(cfg.Engine.FrameLimit),
		engine.WithBeforeClose(cleanup),
	)
	if err != nil {
		return fail(fmt.Errorf("fireball: %w", err))
	}
	return eng, nil
}
