package shading

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUFireballUniformsSource is the canonical WGSL definition of the FireballUniforms struct.
// Matches GPUFireballUniforms layout exactly (240 bytes, uniform address space aligned).
//
//go:embed assets/fireball_uniforms.wgsl
var GPUFireballUniformsSource string

// NoiseSource holds the WGSL noise, displacement, blend and posterize functions shared by
// the fireball vertex and fragment shaders. The Go functions in this package mirror it.
//
//go:embed assets/noise.wgsl
var NoiseSource string

// VertexShaderSource is the annotated WGSL source of the fireball vertex stage.
//
//go:embed assets/fireball_vertex.wgsl
var VertexShaderSource string

// FragmentShaderSource is the annotated WGSL source of the fireball fragment stage.
//
//go:embed assets/fireball_fragment.wgsl
var FragmentShaderSource string

// GPUFireballUniforms is the per-frame uniform block consumed by both fireball shader stages.
// Matches the WGSL FireballUniforms struct layout exactly (see GPUFireballUniformsSource).
// Matrices are column-major, as produced by mgl32.
// Size: 240 bytes.
type GPUFireballUniforms struct {
	View           [16]float32 // offset   0: world to view transform (64 bytes)
	Projection     [16]float32 // offset  64: view to clip transform (64 bytes)
	Model          [16]float32 // offset 128: model to world transform (64 bytes)
	MainColor      [4]float32  // offset 192: normalized RGBA main color (16 bytes)
	SecondaryColor [4]float32  // offset 208: normalized RGBA secondary color (16 bytes)
	Time           int32       // offset 224: frame counter (4 bytes)
	Sharpness      float32     // offset 228: band edge sharpness (4 bytes)
	ColorSteps     float32     // offset 232: number of color bands (4 bytes)
	_              float32     // offset 236: padding to 16-byte struct alignment (4 bytes)
}

// Size returns the size of the GPUFireballUniforms struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUFireballUniforms) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUFireballUniforms struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 240-byte buffer ready for GPU upload.
func (g *GPUFireballUniforms) Marshal() []byte {
	buf := make([]byte, g.Size())
	putFloats(buf[0:], g.View[:])
	putFloats(buf[64:], g.Projection[:])
	putFloats(buf[128:], g.Model[:])
	putFloats(buf[192:], g.MainColor[:])
	putFloats(buf[208:], g.SecondaryColor[:])
	binary.LittleEndian.PutUint32(buf[224:228], uint32(g.Time))
	binary.LittleEndian.PutUint32(buf[228:232], math.Float32bits(g.Sharpness))
	binary.LittleEndian.PutUint32(buf[232:236], math.Float32bits(g.ColorSteps))
	return buf
}

func putFloats(buf []byte, values []float32) {
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
}
