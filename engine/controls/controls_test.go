package controls_test

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-fireball/common"
	"github.com/Carmen-Shannon/oxy-fireball/engine/controls"
	"github.com/Carmen-Shannon/oxy-fireball/engine/params"
	"github.com/chewxy/math32"
)

func newControls(t *testing.T, opts ...controls.ControlsBuilderOption) (controls.Controls, params.State) {
	t.Helper()
	state := params.NewState()
	opts = append([]controls.ControlsBuilderOption{controls.WithDisplay(false)}, opts...)
	c, err := controls.NewControls(state, opts...)
	if err != nil {
		t.Fatalf("NewControls: %v", err)
	}
	t.Cleanup(c.Close)
	return c, state
}

func TestNewControlsRequiresState(t *testing.T) {
	if _, err := controls.NewControls(nil); err == nil {
		t.Fatal("expected error for nil state")
	}
	if _, err := controls.NewControls(params.NewState(), controls.WithPalettes()); err == nil {
		t.Fatal("expected error for empty palettes")
	}
}

func TestKeyBindings(t *testing.T) {
	tests := []struct {
		name  string
		key   uint32
		check func(s params.Snapshot) bool
	}{
		{"level down", common.KeyLeftBracket, func(s params.Snapshot) bool { return s.Level == 5 }},
		{"level up", common.KeyRightBracket, func(s params.Snapshot) bool { return s.Level == 7 }},
		{"sharpness up", common.KeyQ, func(s params.Snapshot) bool { return math32.Abs(s.Sharpness-3.3) < 1e-5 }},
		{"sharpness down", common.KeyA, func(s params.Snapshot) bool { return math32.Abs(s.Sharpness-3.1) < 1e-5 }},
		{"color steps up", common.KeyW, func(s params.Snapshot) bool { return s.ColorSteps == 6 }},
		{"color steps down", common.KeyS, func(s params.Snapshot) bool { return s.ColorSteps == 4 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, state := newControls(t)
			if !c.HandleKey(tt.key) {
				t.Fatal("key not handled")
			}
			if got := state.Get(); !tt.check(got) {
				t.Errorf("unexpected state after key: %s", got)
			}
		})
	}
}

func TestUnboundKeyIgnored(t *testing.T) {
	c, state := newControls(t)
	if c.HandleKey(common.KeyEsc) {
		t.Error("escape should not be bound")
	}
	if state.Get() != params.Defaults() {
		t.Error("state changed on unbound key")
	}
}

func TestLevelStopsAtBounds(t *testing.T) {
	c, state := newControls(t)
	for range 20 {
		c.HandleKey(common.KeyRightBracket)
	}
	if got := state.Get().Level; got != params.MaxLevel {
		t.Errorf("level = %d, want %d", got, params.MaxLevel)
	}

	err := c.Apply(controls.ActionLevelUp)
	if !errors.Is(err, common.ErrInvalidParameter) {
		t.Errorf("Apply past max: err = %v, want ErrInvalidParameter", err)
	}

	for range 20 {
		c.HandleKey(common.KeyLeftBracket)
	}
	if got := state.Get().Level; got != params.MinLevel {
		t.Errorf("level = %d, want %d", got, params.MinLevel)
	}
}

func TestSharpnessStopsAtBounds(t *testing.T) {
	c, state := newControls(t)
	for range 30 {
		c.HandleKey(common.KeyQ)
	}
	if got := state.Get().Sharpness; math32.Abs(got-params.MaxSharpness) > 1e-5 {
		t.Errorf("sharpness = %v, want %v", got, params.MaxSharpness)
	}
	for range 30 {
		c.HandleKey(common.KeyA)
	}
	if got := state.Get().Sharpness; math32.Abs(got-params.MinSharpness) > 1e-5 {
		t.Errorf("sharpness = %v, want %v", got, params.MinSharpness)
	}
}

func TestPaletteCycleAndReset(t *testing.T) {
	palettes := controls.DefaultPalettes()
	c, state := newControls(t)

	for i := 1; i <= len(palettes); i++ {
		if !c.HandleKey(common.KeyC) {
			t.Fatal("C not handled")
		}
		want := palettes[i%len(palettes)]
		got := state.Get()
		if got.MainColor != want.Main || got.SecondaryColor != want.Secondary {
			t.Fatalf("step %d: colors = %s/%s, want %s", i, got.MainColor, got.SecondaryColor, want.Name)
		}
		if c.Palette() != i%len(palettes) {
			t.Fatalf("step %d: palette index = %d", i, c.Palette())
		}
	}

	c.HandleKey(common.KeyC)
	c.HandleKey(common.KeyRightBracket)
	c.HandleKey(common.KeyR)
	if state.Get() != params.Defaults() {
		t.Errorf("reset state = %s", state.Get())
	}
	if c.Palette() != 0 {
		t.Errorf("palette index after reset = %d", c.Palette())
	}
}

func TestInvalidPaletteRejected(t *testing.T) {
	bad := controls.Palette{Name: "bad", Main: params.RGB{300, 0, 0}}
	c, state := newControls(t, controls.WithPalettes(controls.DefaultPalettes()[0], bad))

	err := c.Apply(controls.ActionNextPalette)
	if !errors.Is(err, common.ErrInvalidParameter) {
		t.Fatalf("err = %v, want ErrInvalidParameter", err)
	}
	if c.Palette() != 0 {
		t.Errorf("palette index = %d, want 0", c.Palette())
	}
	if state.Get() != params.Defaults() {
		t.Errorf("state changed: %s", state.Get())
	}
}

func TestCustomBindings(t *testing.T) {
	c, state := newControls(t, controls.WithBindings(controls.Bindings{common.KeyW: controls.ActionLevelUp}))
	if c.HandleKey(common.KeyRightBracket) {
		t.Error("default binding still active")
	}
	c.HandleKey(common.KeyW)
	if got := state.Get().Level; got != params.DefaultLevel+1 {
		t.Errorf("level = %d", got)
	}
}

func TestDisplayObserverRemovedOnClose(t *testing.T) {
	state := params.NewState()
	c, err := controls.NewControls(state)
	if err != nil {
		t.Fatal(err)
	}
	c.Close()
	c.Close()
	if err := state.SetLevel(3); err != nil {
		t.Fatal(err)
	}
}

func TestUnknownAction(t *testing.T) {
	c, _ := newControls(t)
	if err := c.Apply(controls.Action(99)); !errors.Is(err, common.ErrInvalidParameter) {
		t.Errorf("err = %v", err)
	}
	if controls.Action(99).String() != "none" || controls.ActionReset.String() != "reset" {
		t.Error("unexpected action names")
	}
}
