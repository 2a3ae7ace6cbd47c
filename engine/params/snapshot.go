package params

import "fmt"

// RGB is a color with 8-bit channels stored as ints in [0, 255].
type RGB [3]int

// RGBA returns the color normalized to [0, 1] with alpha 1, the layout the shader expects.
func (c RGB) RGBA() [4]float32 {
	return [4]float32{
		float32(c[0]) / 255.0,
		float32(c[1]) / 255.0,
		float32(c[2]) / 255.0,
		1,
	}
}

// String formats the color as r,g,b.
func (c RGB) String() string {
	return fmt.Sprintf("%d,%d,%d", c[0], c[1], c[2])
}

// Snapshot is a value copy of every parameter at one point in time.
type Snapshot struct {
	Level          int
	MainColor      RGB
	SecondaryColor RGB
	Sharpness      float32
	ColorSteps     float32
}

// Defaults returns the documented default parameters.
func Defaults() Snapshot {
	return Snapshot{
		Level:          DefaultLevel,
		MainColor:      DefaultMainColor,
		SecondaryColor: DefaultSecondaryColor,
		Sharpness:      DefaultSharpness,
		ColorSteps:     DefaultColorSteps,
	}
}

// MainColorRGBA returns the main color normalized to [0, 1] with alpha 1.
func (s Snapshot) MainColorRGBA() [4]float32 {
	return s.MainColor.RGBA()
}

// SecondaryColorRGBA returns the secondary color normalized to [0, 1] with alpha 1.
func (s Snapshot) SecondaryColorRGBA() [4]float32 {
	return s.SecondaryColor.RGBA()
}

// String formats the snapshot for log output.
func (s Snapshot) String() string {
	return fmt.Sprintf("level=%d mainColor=%s secondaryColor=%s sharpness=%.1f colorSteps=%.0f",
		s.Level, s.MainColor, s.SecondaryColor, s.Sharpness, s.ColorSteps)
}
