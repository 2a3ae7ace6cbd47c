package params

import "fmt"

// Field identifies one tunable fireball parameter.
type Field int

const (
	FieldLevel Field = iota
	FieldMainColor
	FieldSecondaryColor
	FieldSharpness
	FieldColorSteps
)

// String returns the field's display name.
func (f Field) String() string {
	switch f {
	case FieldLevel:
		return "level"
	case FieldMainColor:
		return "mainColor"
	case FieldSecondaryColor:
		return "secondaryColor"
	case FieldSharpness:
		return "sharpness"
	case FieldColorSteps:
		return "colorSteps"
	default:
		return fmt.Sprintf("Field(%d)", int(f))
	}
}

// Bounds and steps for every field.
const (
	MinLevel  = 0
	MaxLevel  = 8
	LevelStep = 1

	MinChannel = 0
	MaxChannel = 255

	MinSharpness  = 2.0
	MaxSharpness  = 4.0
	SharpnessStep = 0.1

	MinColorSteps  = 3.0
	MaxColorSteps  = 8.0
	ColorStepsStep = 1.0
)

// Documented defaults.
const (
	DefaultLevel      = 6
	DefaultSharpness  = 3.2
	DefaultColorSteps = 5.0
)

var (
	DefaultMainColor      = RGB{200, 0, 0}
	DefaultSecondaryColor = RGB{220, 255, 40}
)

// FieldSpec describes the declared range of a field so control surfaces can render and step it.
// Color fields report the per-channel range.
type FieldSpec struct {
	Field Field
	Name  string
	Min   float64
	Max   float64
	Step  float64
}

// Fields returns the declared bounds and step of every field, in Field order.
//
// Returns:
//   - []FieldSpec: one entry per field
func Fields() []FieldSpec {
	return []FieldSpec{
		{Field: FieldLevel, Name: FieldLevel.String(), Min: MinLevel, Max: MaxLevel, Step: LevelStep},
		{Field: FieldMainColor, Name: FieldMainColor.String(), Min: MinChannel, Max: MaxChannel, Step: 1},
		{Field: FieldSecondaryColor, Name: FieldSecondaryColor.String(), Min: MinChannel, Max: MaxChannel, Step: 1},
		{Field: FieldSharpness, Name: FieldSharpness.String(), Min: MinSharpness, Max: MaxSharpness, Step: SharpnessStep},
		{Field: FieldColorSteps, Name: FieldColorSteps.String(), Min: MinColorSteps, Max: MaxColorSteps, Step: ColorStepsStep},
	}
}
