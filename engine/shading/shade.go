package shading

import (
	"github.com/Carmen-Shannon/oxy-fireball/engine/params"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Constants shared with assets/noise.wgsl.
const (
	TimeScale         = 0.01
	ColorFrequency    = 2.0
	DisplaceFrequency = 1.5
	DisplaceAmount    = 0.15
	fbmOctaves        = 3
	fbmNormalization  = 0.875
	noiseWeight       = 0.7
	rimWeight         = 0.3
	hashScale         = 43758.5453
)

var hashDir = mgl32.Vec3{127.1, 311.7, 74.7}

// Shade returns the surface color at a model-space point for the given frame.
// The result depends only on its arguments.
//
// Parameters:
//   - position: undisplaced model-space position
//   - normal: unit surface normal
//   - frameTime: the frame counter
//   - s: the parameter snapshot for the frame
//
// Returns:
//   - [4]float32: RGBA color in [0, 1] with alpha 1
func Shade(position, normal mgl32.Vec3, frameTime int32, s params.Snapshot) [4]float32 {
	t := float32(frameTime) * TimeScale
	band := Posterize(Blend(position, normal, t), s.ColorSteps, s.Sharpness)
	main := s.MainColorRGBA()
	secondary := s.SecondaryColorRGBA()
	return [4]float32{
		mix(main[0], secondary[0], band),
		mix(main[1], secondary[1], band),
		mix(main[2], secondary[2], band),
		1,
	}
}

// Displace returns the animated vertex position: the input moved along its normal by a
// time-varying noise offset of at most DisplaceAmount/2 in either direction.
//
// Parameters:
//   - position: model-space vertex position
//   - normal: unit vertex normal
//   - frameTime: the frame counter
//
// Returns:
//   - mgl32.Vec3: the displaced position
func Displace(position, normal mgl32.Vec3, frameTime int32) mgl32.Vec3 {
	t := float32(frameTime) * TimeScale
	n := fbm(position.Mul(DisplaceFrequency).Add(mgl32.Vec3{t, t, t}))
	return position.Add(normal.Mul(DisplaceAmount * (n - 0.5)))
}

// Blend returns the unquantized palette weight in [0, 1] at a point, t being scaled time.
func Blend(position, normal mgl32.Vec3, t float32) float32 {
	n := fbm(position.Mul(ColorFrequency).Add(mgl32.Vec3{0, -t, 0}))
	rim := 0.5 + 0.5*normal.Y()
	return clamp(n*noiseWeight+rim*rimWeight, 0, 1)
}

// Posterize quantizes a blend weight into steps flat bands spread evenly over [0, 1].
// sharpness controls how abruptly one band gives way to the next; the transition
// zone narrows with its square.
//
// Parameters:
//   - blend: weight in [0, 1]
//   - steps: number of bands, values below 2 collapse to a single transition
//   - sharpness: band edge steepness
//
// Returns:
//   - float32: the quantized weight in [0, 1]
func Posterize(blend, steps, sharpness float32) float32 {
	levels := math32.Max(steps-1, 1)
	x := blend * levels
	i := math32.Floor(x)
	f := x - i
	k := clamp((f-0.5)*sharpness*sharpness+0.5, 0, 1)
	return clamp((i+smoothstep(k))/levels, 0, 1)
}

func hash(p mgl32.Vec3) float32 {
	return fract(math32.Sin(p.Dot(hashDir)) * hashScale)
}

func valueNoise(p mgl32.Vec3) float32 {
	i := mgl32.Vec3{math32.Floor(p[0]), math32.Floor(p[1]), math32.Floor(p[2])}
	f := p.Sub(i)
	var u mgl32.Vec3
	for c := range 3 {
		u[c] = f[c] * f[c] * (3 - 2*f[c])
	}

	corner := func(x, y, z float32) float32 {
		return hash(i.Add(mgl32.Vec3{x, y, z}))
	}
	x00 := mix(corner(0, 0, 0), corner(1, 0, 0), u[0])
	x10 := mix(corner(0, 1, 0), corner(1, 1, 0), u[0])
	x01 := mix(corner(0, 0, 1), corner(1, 0, 1), u[0])
	x11 := mix(corner(0, 1, 1), corner(1, 1, 1), u[0])
	y0 := mix(x00, x10, u[1])
	y1 := mix(x01, x11, u[1])
	return mix(y0, y1, u[2])
}

func fbm(p mgl32.Vec3) float32 {
	var sum float32
	amp := float32(0.5)
	for range fbmOctaves {
		sum += amp * valueNoise(p)
		p = p.Mul(2)
		amp *= 0.5
	}
	return sum / fbmNormalization
}

func fract(x float32) float32 {
	return x - math32.Floor(x)
}

func mix(a, b, t float32) float32 {
	return a*(1-t) + b*t
}

func clamp(x, lo, hi float32) float32 {
	return math32.Max(lo, math32.Min(hi, x))
}

// smoothstep is the WGSL smoothstep(0, 1, x) for x already in [0, 1].
func smoothstep(x float32) float32 {
	return x * x * (3 - 2*x)
}
