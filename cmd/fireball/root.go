package main

import (
	"github.com/Carmen-Shannon/oxy-fireball/config"
	"github.com/Carmen-Shannon/oxy-fireball/engine/params"
	"github.com/spf13/cobra"
)

// flags are the command line overrides shared by every subcommand.
type flags struct {
	configPath string
	level      int
	profile    bool
	vsync      bool
	software   bool
	width      int
	height     int
}

func newRootCommand() *cobra.Command {
	f := &flags{}
	root := &cobra.Command{
		Use:           "fireball",
		Short:         "Render an animated procedural fireball",
		Long:          "fireball renders a subdivided icosphere shaded by an animated, posterized noise effect.\nKeys: [ ] level, Q/A sharpness, W/S color steps, C palette, R reset, Esc quit.",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFireball(cmd, f)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&f.configPath, "config", "fireball.yaml", "path to the YAML configuration")
	pf.IntVar(&f.level, "level", params.DefaultLevel, "initial subdivision level (0-8)")
	pf.BoolVar(&f.profile, "profile", false, "log frame rate and memory statistics every second")
	pf.BoolVar(&f.vsync, "vsync", true, "synchronize presentation with the display")
	pf.BoolVar(&f.software, "software", false, "force the software (fallback) adapter")
	pf.IntVar(&f.width, "width", config.DefaultWidth, "window width in pixels")
	pf.IntVar(&f.height, "height", config.DefaultHeight, "window height in pixels")

	root.AddCommand(
		newRunCommand(f),
		newMeshCommand(f),
		newDefaultsCommand(),
	)
	return root
}

func newRunCommand(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Open the window and render until it is closed (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFireball(cmd, f)
		},
	}
}

// loadConfig reads the configuration file and applies the flags the user set explicitly.
func loadConfig(cmd *cobra.Command, f *flags) (config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return config.Config{}, err
	}

	set := cmd.Flags().Changed
	if set("level") {
		cfg.Fireball.Level = f.level
	}
	if set("profile") {
		cfg.Engine.Profiling = f.profile
	}
	if set("vsync") {
		cfg.Renderer.VSync = f.vsync
	}
	if set("software") {
		cfg.Renderer.Software = f.software
	}
	if set("width") {
		cfg.Window.Width = f.width
	}
	if set("height") {
		cfg.Window.Height = f.height
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}
