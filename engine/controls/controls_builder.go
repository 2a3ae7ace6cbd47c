package controls

// ControlsBuilderOption is a functional option for configuring Controls.
type ControlsBuilderOption func(*controlsImpl)

// WithBindings replaces the key layout.
//
// Parameters:
//   - b: the key to action map
//
// Returns:
//   - ControlsBuilderOption: option function to apply
func WithBindings(b Bindings) ControlsBuilderOption {
	return func(c *controlsImpl) {
		c.bindings = b
	}
}

// WithPalettes replaces the palettes cycled by ActionNextPalette.
//
// Parameters:
//   - palettes: the palettes in cycle order
//
// Returns:
//   - ControlsBuilderOption: option function to apply
func WithPalettes(palettes ...Palette) ControlsBuilderOption {
	return func(c *controlsImpl) {
		c.palettes = palettes
	}
}

// WithDisplay toggles logging of the parameter values after every change.
func WithDisplay(enabled bool) ControlsBuilderOption {
	return func(c *controlsImpl) {
		c.display = enabled
	}
}
