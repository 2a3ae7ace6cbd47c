// Package config loads the fireball's YAML configuration.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/Carmen-Shannon/oxy-fireball/common"
	"github.com/Carmen-Shannon/oxy-fireball/engine/params"
	"gopkg.in/yaml.v3"
)

const (
	DefaultTitle  = "oxy-fireball"
	DefaultWidth  = 1280
	DefaultHeight = 720
	DefaultRadius = 1.0
)

// Config is the complete on-disk configuration.
type Config struct {
	Window   WindowConfig   `yaml:"window"`
	Renderer RendererConfig `yaml:"renderer"`
	Engine   EngineConfig   `yaml:"engine"`
	Fireball FireballConfig `yaml:"fireball"`
	Workers  WorkerConfig   `yaml:"workers"`
}

// WindowConfig sizes the window. Zero min/max limits mean unconstrained.
type WindowConfig struct {
	Title     string `yaml:"title"`
	Width     int    `yaml:"width"`
	Height    int    `yaml:"height"`
	MinWidth  int    `yaml:"min_width,omitempty"`
	MinHeight int    `yaml:"min_height,omitempty"`
	MaxWidth  int    `yaml:"max_width,omitempty"`
	MaxHeight int    `yaml:"max_height,omitempty"`
}

type RendererConfig struct {
	VSync    bool `yaml:"vsync"`
	MSAA     int  `yaml:"msaa"`
	Software bool `yaml:"software"`
}

type EngineConfig struct {
	Profiling  bool    `yaml:"profiling"`
	FrameLimit float64 `yaml:"frame_limit"`
}

// FireballConfig holds the initial parameter values and the sphere radius.
type FireballConfig struct {
	Level          int        `yaml:"level"`
	MainColor      params.RGB `yaml:"main_color"`
	SecondaryColor params.RGB `yaml:"secondary_color"`
	Sharpness      float32    `yaml:"sharpness"`
	ColorSteps     float32    `yaml:"color_steps"`
	Radius         float32    `yaml:"radius"`
}

// WorkerConfig sizes the mesh build pool. Zero values take the builder defaults.
type WorkerConfig struct {
	Count     int `yaml:"count"`
	QueueSize int `yaml:"queue_size"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	d := params.Defaults()
	return Config{
		Window: WindowConfig{
			Title:  DefaultTitle,
			Width:  DefaultWidth,
			Height: DefaultHeight,
		},
		Renderer: RendererConfig{
			VSync: true,
			MSAA:  4,
		},
		Fireball: FireballConfig{
			Level:          d.Level,
			MainColor:      d.MainColor,
			SecondaryColor: d.SecondaryColor,
			Sharpness:      d.Sharpness,
			ColorSteps:     d.ColorSteps,
			Radius:         DefaultRadius,
		},
	}
}

// Load reads a YAML configuration on top of Default. A missing file yields the defaults;
// unknown keys and malformed YAML are errors. The result is validated.
//
// Parameters:
//   - path: the file to read
//
// Returns:
//   - Config: the loaded configuration
//   - error: an error if the file cannot be read, parsed or validated
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the configuration as YAML.
//
// Parameters:
//   - path: the destination file, created or truncated
//
// Returns:
//   - error: an error if marshaling or writing fails
func (c Config) Save(path string) error {
	data, err := c.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Marshal encodes the configuration as YAML.
func (c Config) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return buf.Bytes(), nil
}

// normalize fills fields left empty in the file.
func (c *Config) normalize() {
	c.Window.Title = common.Coalesce(c.Window.Title, DefaultTitle)
	c.Window.Width = common.Coalesce(c.Window.Width, DefaultWidth)
	c.Window.Height = common.Coalesce(c.Window.Height, DefaultHeight)
	c.Renderer.MSAA = common.Coalesce(c.Renderer.MSAA, 1)
	c.Fireball.Radius = common.Coalesce(c.Fireball.Radius, DefaultRadius)
}

// Validate checks every field against its bounds. Fireball parameters use the same
// ranges as the parameter state.
//
// Returns:
//   - error: every violation joined, each wrapping common.ErrInvalidParameter
func (c Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), common.ErrInvalidParameter))
	}

	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		bad("window size %dx%d must be positive", c.Window.Width, c.Window.Height)
	}
	if c.Window.MaxWidth > 0 && c.Window.MinWidth > c.Window.MaxWidth {
		bad("window min_width %d exceeds max_width %d", c.Window.MinWidth, c.Window.MaxWidth)
	}
	if c.Window.MaxHeight > 0 && c.Window.MinHeight > c.Window.MaxHeight {
		bad("window min_height %d exceeds max_height %d", c.Window.MinHeight, c.Window.MaxHeight)
	}
	if c.Renderer.MSAA != 1 && c.Renderer.MSAA != 4 {
		bad("renderer msaa %d must be 1 or 4", c.Renderer.MSAA)
	}
	if c.Engine.FrameLimit < 0 {
		bad("engine frame_limit %v must not be negative", c.Engine.FrameLimit)
	}

	f := c.Fireball
	if f.Level < params.MinLevel || f.Level > params.MaxLevel {
		bad("fireball level %d outside [%d, %d]", f.Level, params.MinLevel, params.MaxLevel)
	}
	colors := []struct {
		name string
		rgb  params.RGB
	}{{"main_color", f.MainColor}, {"secondary_color", f.SecondaryColor}}
	for _, col := range colors {
		for _, ch := range col.rgb {
			if ch < params.MinChannel || ch > params.MaxChannel {
				bad("fireball %s %v channel outside [%d, %d]", col.name, col.rgb, params.MinChannel, params.MaxChannel)
				break
			}
		}
	}
	if f.Sharpness < params.MinSharpness || f.Sharpness > params.MaxSharpness {
		bad("fireball sharpness %v outside [%v, %v]", f.Sharpness, params.MinSharpness, params.MaxSharpness)
	}
	if f.ColorSteps < params.MinColorSteps || f.ColorSteps > params.MaxColorSteps {
		bad("fireball color_steps %v outside [%v, %v]", f.ColorSteps, params.MinColorSteps, params.MaxColorSteps)
	}
	if !(f.Radius > 0) {
		bad("fireball radius %v must be positive", f.Radius)
	}
	if c.Workers.Count < 0 || c.Workers.QueueSize < 0 {
		bad("workers count %d queue_size %d must not be negative", c.Workers.Count, c.Workers.QueueSize)
	}
	return errors.Join(errs...)
}

// Apply pushes the fireball parameters into state through its validating setters.
//
// Parameters:
//   - state: the parameter state to update
//
// Returns:
//   - error: the joined setter errors; fields that were accepted stay applied
func (c Config) Apply(state params.State) error {
	f := c.Fireball
	return errors.Join(
		state.SetLevel(f.Level),
		state.SetMainColor(f.MainColor),
		state.SetSecondaryColor(f.SecondaryColor),
		state.SetSharpness(f.Sharpness),
		state.SetColorSteps(f.ColorSteps),
	)
}
