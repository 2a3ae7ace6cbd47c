package common

import "errors"

// Error taxonomy shared by every fireball component. Callers wrap these with
// fmt.Errorf("...: %w", err) and match them with errors.Is.
var (
	// ErrFatalInit marks a startup failure that aborts the program: a missing or
	// unsupported graphics context, or a shader that fails to parse or compile.
	ErrFatalInit = errors.New("fatal init")

	// ErrInvalidParameter marks a control value outside its declared bounds.
	// The rejected value is never applied.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrGeometryInput marks an invalid radius, center or subdivision level passed
	// to the icosphere generator. No partial mesh is produced.
	ErrGeometryInput = errors.New("geometry input error")
)
