// Package shading defines the per-frame shading contract of the fireball: the uniform block
// handed to the GPU, the WGSL stages that consume it, and a CPU reference of the same surface
// function so the contract can be checked without a GPU.
package shading

import (
	"math"

	"github.com/Carmen-Shannon/oxy-fireball/engine/params"
	"github.com/go-gl/mathgl/mgl32"
)

// NewUniforms assembles the uniform block for one frame.
//
// Parameters:
//   - frameTime: the frame counter, incremented once per tick; it is folded into
//     [0, math.MaxInt32] so the shader time restarts at zero instead of going negative
//   - s: the parameter snapshot read at the start of the tick
//   - view: the camera view matrix
//   - projection: the camera projection matrix
//   - model: the fireball model matrix
//
// Returns:
//   - GPUFireballUniforms: the populated uniform block
func NewUniforms(frameTime uint64, s params.Snapshot, view, projection, model mgl32.Mat4) GPUFireballUniforms {
	return GPUFireballUniforms{
		View:           view,
		Projection:     projection,
		Model:          model,
		MainColor:      s.MainColorRGBA(),
		SecondaryColor: s.SecondaryColorRGBA(),
		Time:           int32(frameTime & math.MaxInt32),
		Sharpness:      s.Sharpness,
		ColorSteps:     s.ColorSteps,
	}
}
