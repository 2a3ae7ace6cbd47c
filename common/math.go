package common

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Perspective builds a right-handed perspective projection for WebGPU clip space,
// where depth maps to [0, 1] instead of OpenGL's [-1, 1].
//
// Parameters:
//   - fovY: vertical field of view in radians
//   - aspect: viewport aspect ratio (width/height)
//   - near: near clipping plane distance (must be > 0)
//   - far: far clipping plane distance (must be > near)
//
// Returns:
//   - mgl32.Mat4: the column-major projection matrix
func Perspective(fovY, aspect, near, far float32) mgl32.Mat4 {
	f := 1.0 / math32.Tan(fovY/2.0)
	var out mgl32.Mat4
	out[0] = f / aspect
	out[5] = f
	out[10] = far / (near - far)
	out[11] = -1.0
	out[14] = (near * far) / (near - far)
	return out
}

// LookAt builds a view matrix for an eye at eye looking at target.
//
// Parameters:
//   - eye: camera position in world space
//   - target: point the camera looks at
//   - up: up direction, typically +Y
//
// Returns:
//   - mgl32.Mat4: the column-major view matrix
func LookAt(eye, target, up mgl32.Vec3) mgl32.Mat4 {
	if eye.ApproxEqual(target) {
		return mgl32.Ident4()
	}
	return mgl32.LookAtV(eye, target, up)
}

// IsFiniteVec3 reports whether every component of v is a finite number.
func IsFiniteVec3(v mgl32.Vec3) bool {
	for _, c := range v {
		if math32.IsNaN(c) || math32.IsInf(c, 0) {
			return false
		}
	}
	return true
}
