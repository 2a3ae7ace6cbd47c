package driver

import "github.com/go-gl/mathgl/mgl32"

// DriverBuilderOption is a functional option for configuring a Driver.
type DriverBuilderOption func(*driverImpl)

// WithCenter sets the sphere center in model space.
//
// Parameters:
//   - center: the sphere center
//
// Returns:
//   - DriverBuilderOption: option function to apply
func WithCenter(center mgl32.Vec3) DriverBuilderOption {
	return func(d *driverImpl) {
		d.center = center
	}
}

// WithRadius sets the sphere radius.
//
// Parameters:
//   - radius: the sphere radius, must be > 0
//
// Returns:
//   - DriverBuilderOption: option function to apply
func WithRadius(radius float32) DriverBuilderOption {
	return func(d *driverImpl) {
		d.radius = radius
	}
}

// WithInitialLevel sets the level the driver considers already built before the first tick.
// Any parameter change to a different level triggers a rebuild; the first tick builds regardless.
//
// Parameters:
//   - level: the initial tracked level
//
// Returns:
//   - DriverBuilderOption: option function to apply
func WithInitialLevel(level int) DriverBuilderOption {
	return func(d *driverImpl) {
		d.trackedLevel = level
	}
}

// WithStartFrame sets the frame counter the first tick increments from.
//
// Parameters:
//   - frame: the initial frame counter
//
// Returns:
//   - DriverBuilderOption: option function to apply
func WithStartFrame(frame uint64) DriverBuilderOption {
	return func(d *driverImpl) {
		d.frameTime = frame
	}
}

// WithModelMatrix sets the model transform uploaded with every frame.
//
// Parameters:
//   - model: the model matrix
//
// Returns:
//   - DriverBuilderOption: option function to apply
func WithModelMatrix(model mgl32.Mat4) DriverBuilderOption {
	return func(d *driverImpl) {
		d.model = model
	}
}
