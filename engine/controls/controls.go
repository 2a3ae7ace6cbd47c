// Package controls maps keyboard input onto the parameter store.
package controls

import (
	"fmt"
	"log"
	"sync"

	"github.com/Carmen-Shannon/oxy-fireball/common"
	"github.com/Carmen-Shannon/oxy-fireball/engine/params"
)

// Action is one adjustment the control surface can make.
type Action int

const (
	ActionNone Action = iota
	ActionLevelDown
	ActionLevelUp
	ActionSharpnessUp
	ActionSharpnessDown
	ActionColorStepsUp
	ActionColorStepsDown
	ActionNextPalette
	ActionReset
)

// String returns the action name used in log output.
func (a Action) String() string {
	switch a {
	case ActionLevelDown:
		return "level-"
	case ActionLevelUp:
		return "level+"
	case ActionSharpnessUp:
		return "sharpness+"
	case ActionSharpnessDown:
		return "sharpness-"
	case ActionColorStepsUp:
		return "colorSteps+"
	case ActionColorStepsDown:
		return "colorSteps-"
	case ActionNextPalette:
		return "palette"
	case ActionReset:
		return "reset"
	default:
		return "none"
	}
}

// Bindings maps key codes to actions.
type Bindings map[uint32]Action

// DefaultBindings returns the standard key layout.
//
// Returns:
//   - Bindings: [ and ] for level, Q/A for sharpness, W/S for color steps, C for palettes, R for reset
func DefaultBindings() Bindings {
	return Bindings{
		common.KeyLeftBracket:  ActionLevelDown,
		common.KeyRightBracket: ActionLevelUp,
		common.KeyQ:            ActionSharpnessUp,
		common.KeyA:            ActionSharpnessDown,
		common.KeyW:            ActionColorStepsUp,
		common.KeyS:            ActionColorStepsDown,
		common.KeyC:            ActionNextPalette,
		common.KeyR:            ActionReset,
	}
}

// Palette is a main/secondary color pair.
type Palette struct {
	Name      string
	Main      params.RGB
	Secondary params.RGB
}

// DefaultPalettes returns the built-in palettes. The first one is the parameter default.
func DefaultPalettes() []Palette {
	return []Palette{
		{Name: "fire", Main: params.DefaultMainColor, Secondary: params.DefaultSecondaryColor},
		{Name: "plasma", Main: params.RGB{40, 0, 200}, Secondary: params.RGB{120, 255, 255}},
		{Name: "toxic", Main: params.RGB{0, 120, 20}, Secondary: params.RGB{200, 255, 0}},
		{Name: "ember", Main: params.RGB{60, 10, 0}, Secondary: params.RGB{255, 140, 0}},
	}
}

// controlsImpl is the implementation of the Controls interface.
type controlsImpl struct {
	mu          *sync.Mutex
	state       params.State
	bindings    Bindings
	palettes    []Palette
	palette     int
	display     bool
	unsubscribe func()
}

// Controls translates key presses into validated parameter writes.
type Controls interface {
	// HandleKey applies the action bound to keyCode, if any.
	// Rejected writes are logged and leave the parameters unchanged.
	//
	// Parameters:
	//   - keyCode: the pressed key
	//
	// Returns:
	//   - bool: true if the key is bound
	HandleKey(keyCode uint32) bool

	// Apply performs one action against the parameter store.
	//
	// Parameters:
	//   - action: the action to perform
	//
	// Returns:
	//   - error: an error wrapping common.ErrInvalidParameter if the resulting value is out of bounds
	Apply(action Action) error

	// Palette returns the index of the palette applied last. Reset returns it to 0.
	Palette() int

	// Close removes the display observer.
	Close()
}

var _ Controls = &controlsImpl{}

// NewControls creates a control surface bound to a parameter store.
// By default the current values are logged after every change.
//
// Parameters:
//   - state: the parameter store to write to
//   - options: functional options to configure the controls
//
// Returns:
//   - Controls: the control surface
//   - error: an error if state is nil or no palettes are configured
func NewControls(state params.State, options ...ControlsBuilderOption) (Controls, error) {
	if state == nil {
		return nil, fmt.Errorf("controls: parameter state is required")
	}
	c := &controlsImpl{
		mu:       &sync.Mutex{},
		state:    state,
		bindings: DefaultBindings(),
		palettes: DefaultPalettes(),
		display:  true,
	}
	for _, opt := range options {
		opt(c)
	}
	if len(c.palettes) == 0 {
		return nil, fmt.Errorf("controls: at least one palette is required")
	}

	if c.display {
		c.unsubscribe = state.Subscribe(func(s params.Snapshot) {
			log.Printf("[Controls] %s", s)
		})
	}
	return c, nil
}

func (c *controlsImpl) HandleKey(keyCode uint32) bool {
	action, ok := c.bindings[keyCode]
	if !ok || action == ActionNone {
		return false
	}
	if err := c.Apply(action); err != nil {
		log.Printf("[Controls] %s rejected: %v", action, err)
	}
	return true
}

func (c *controlsImpl) Apply(action Action) error {
	snap := c.state.Get()
	switch action {
	case ActionLevelDown:
		return c.state.SetLevel(snap.Level - 1)
	case ActionLevelUp:
		return c.state.SetLevel(snap.Level + 1)
	case ActionSharpnessUp:
		return c.state.SetSharpness(snap.Sharpness + params.SharpnessStep)
	case ActionSharpnessDown:
		return c.state.SetSharpness(snap.Sharpness - params.SharpnessStep)
	case ActionColorStepsUp:
		return c.state.SetColorSteps(snap.ColorSteps + params.ColorStepsStep)
	case ActionColorStepsDown:
		return c.state.SetColorSteps(snap.ColorSteps - params.ColorStepsStep)
	case ActionNextPalette:
		return c.nextPalette()
	case ActionReset:
		c.mu.Lock()
		c.palette = 0
		c.mu.Unlock()
		c.state.Reset()
		return nil
	default:
		return fmt.Errorf("controls: unknown action %d: %w", action, common.ErrInvalidParameter)
	}
}

func (c *controlsImpl) Palette() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.palette
}

func (c *controlsImpl) Close() {
	if c.unsubscribe != nil {
		c.unsubscribe()
	}
}

// nextPalette advances to the next palette, wrapping around.
func (c *controlsImpl) nextPalette() error {
	c.mu.Lock()
	next := (c.palette + 1) % len(c.palettes)
	p := c.palettes[next]
	c.mu.Unlock()

	if err := c.state.SetMainColor(p.Main); err != nil {
		return fmt.Errorf("palette %q: %w", p.Name, err)
	}
	if err := c.state.SetSecondaryColor(p.Secondary); err != nil {
		return fmt.Errorf("palette %q: %w", p.Name, err)
	}

	c.mu.Lock()
	c.palette = next
	c.mu.Unlock()
	return nil
}
