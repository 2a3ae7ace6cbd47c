// Package params holds the user-tunable fireball parameters. All writes are validated
// against declared bounds; rejected writes leave the current value untouched.
package params

import (
	"fmt"
	"math"
	"sync"

	"github.com/Carmen-Shannon/oxy-fireball/common"
)

// Observer receives the full parameter snapshot after every successful change.
type Observer func(Snapshot)

// observerEntry pairs an observer with the id used to unsubscribe it.
type observerEntry struct {
	id int
	fn Observer
}

// stateImpl is the implementation of the State interface.
type stateImpl struct {
	mu        *sync.Mutex
	current   Snapshot
	observers []observerEntry
	nextID    int
}

// State is the parameter store shared by the control surface and the frame driver.
// It is safe for concurrent use; observers are always invoked outside the internal lock.
type State interface {
	// Get returns a copy of the current parameters.
	Get() Snapshot

	// Set validates and applies one field. value must be of the field's type:
	// int for FieldLevel, RGB or [3]int for the colors, float32 or float64 for the rest.
	//
	// Parameters:
	//   - field: the field to update
	//   - value: the new value
	//
	// Returns:
	//   - error: an error wrapping common.ErrInvalidParameter if the type or value is rejected
	Set(field Field, value any) error

	// SetLevel sets the subdivision level, which must be in [MinLevel, MaxLevel].
	SetLevel(level int) error

	// SetMainColor sets the main color. Every channel must be in [0, 255].
	SetMainColor(c RGB) error

	// SetSecondaryColor sets the secondary color. Every channel must be in [0, 255].
	SetSecondaryColor(c RGB) error

	// SetSharpness sets the band edge sharpness, snapped to the nearest SharpnessStep.
	SetSharpness(v float32) error

	// SetColorSteps sets the number of color bands, snapped to the nearest whole step.
	SetColorSteps(v float32) error

	// Reset restores every field to its default in one step and notifies observers.
	Reset()

	// Subscribe registers an observer.
	//
	// Parameters:
	//   - fn: called with the new snapshot after every successful Set and every Reset
	//
	// Returns:
	//   - func(): removes the observer; safe to call more than once
	Subscribe(fn Observer) func()
}

var _ State = &stateImpl{}

// NewState creates a parameter store holding the default values.
//
// Parameters:
//   - options: functional options applied after the defaults
//
// Returns:
//   - State: the new parameter store
func NewState(options ...StateBuilderOption) State {
	s := &stateImpl{
		mu:      &sync.Mutex{},
		current: Defaults(),
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

func (s *stateImpl) Get() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *stateImpl) Set(field Field, value any) error {
	switch field {
	case FieldLevel:
		v, ok := value.(int)
		if !ok {
			return typeError(field, value)
		}
		return s.SetLevel(v)
	case FieldMainColor, FieldSecondaryColor:
		var c RGB
		switch v := value.(type) {
		case RGB:
			c = v
		case [3]int:
			c = RGB(v)
		default:
			return typeError(field, value)
		}
		if field == FieldMainColor {
			return s.SetMainColor(c)
		}
		return s.SetSecondaryColor(c)
	case FieldSharpness, FieldColorSteps:
		var f float32
		switch v := value.(type) {
		case float32:
			f = v
		case float64:
			f = float32(v)
		default:
			return typeError(field, value)
		}
		if field == FieldSharpness {
			return s.SetSharpness(f)
		}
		return s.SetColorSteps(f)
	default:
		return fmt.Errorf("params: unknown field %s: %w", field, common.ErrInvalidParameter)
	}
}

func (s *stateImpl) SetLevel(level int) error {
	if level < MinLevel || level > MaxLevel {
		return rangeError(FieldLevel, level, MinLevel, MaxLevel)
	}
	s.apply(func(snap *Snapshot) { snap.Level = level })
	return nil
}

func (s *stateImpl) SetMainColor(c RGB) error {
	if err := validateColor(FieldMainColor, c); err != nil {
		return err
	}
	s.apply(func(snap *Snapshot) { snap.MainColor = c })
	return nil
}

func (s *stateImpl) SetSecondaryColor(c RGB) error {
	if err := validateColor(FieldSecondaryColor, c); err != nil {
		return err
	}
	s.apply(func(snap *Snapshot) { snap.SecondaryColor = c })
	return nil
}

func (s *stateImpl) SetSharpness(v float32) error {
	snapped, err := snapFloat(FieldSharpness, v, MinSharpness, MaxSharpness, SharpnessStep)
	if err != nil {
		return err
	}
	s.apply(func(snap *Snapshot) { snap.Sharpness = snapped })
	return nil
}

func (s *stateImpl) SetColorSteps(v float32) error {
	snapped, err := snapFloat(FieldColorSteps, v, MinColorSteps, MaxColorSteps, ColorStepsStep)
	if err != nil {
		return err
	}
	s.apply(func(snap *Snapshot) { snap.ColorSteps = snapped })
	return nil
}

func (s *stateImpl) Reset() {
	s.apply(func(snap *Snapshot) { *snap = Defaults() })
}

func (s *stateImpl) Subscribe(fn Observer) func() {
	if fn == nil {
		return func() {}
	}
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.observers = append(s.observers, observerEntry{id: id, fn: fn})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, o := range s.observers {
			if o.id == id {
				s.observers = append(s.observers[:i], s.observers[i+1:]...)
				return
			}
		}
	}
}

// apply mutates the snapshot under the lock, then notifies observers with the result.
func (s *stateImpl) apply(mutate func(*Snapshot)) {
	s.mu.Lock()
	mutate(&s.current)
	snap := s.current
	observers := make([]Observer, len(s.observers))
	for i, o := range s.observers {
		observers[i] = o.fn
	}
	s.mu.Unlock()

	for _, fn := range observers {
		fn(snap)
	}
}

func validateColor(field Field, c RGB) error {
	for i, ch := range c {
		if ch < MinChannel || ch > MaxChannel {
			return fmt.Errorf("params: %s channel %d value %d outside [%d, %d]: %w",
				field, i, ch, MinChannel, MaxChannel, common.ErrInvalidParameter)
		}
	}
	return nil
}

// driftULPs is how many float32 steps past a bound still count as the bound itself.
const driftULPs = 4

// snapFloat range-checks v and rounds it to the nearest multiple of step above lo.
// Values a few float32 ULPs outside the range come from float32 stepping and are clamped.
func snapFloat(field Field, v float32, lo, hi, step float64) (float32, error) {
	f := float64(v)
	if math.IsNaN(f) || f < lo-ulpTolerance(lo) || f > hi+ulpTolerance(hi) {
		return 0, rangeError(field, v, lo, hi)
	}
	k := math.Round((f - lo) / step)
	return float32(math.Max(lo, math.Min(lo+k*step, hi))), nil
}

func ulpTolerance(bound float64) float64 {
	b := float32(bound)
	return driftULPs * float64(math.Nextafter32(b, float32(math.Inf(1)))-b)
}

func rangeError(field Field, v, lo, hi any) error {
	return fmt.Errorf("params: %s value %v outside [%v, %v]: %w", field, v, lo, hi, common.ErrInvalidParameter)
}

func typeError(field Field, value any) error {
	return fmt.Errorf("params: %s does not accept %T: %w", field, value, common.ErrInvalidParameter)
}
