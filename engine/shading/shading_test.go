package shading_test

import (
	"encoding/binary"
	"math"
	"testing"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-fireball/engine/icosphere"
	"github.com/Carmen-Shannon/oxy-fireball/engine/params"
	"github.com/Carmen-Shannon/oxy-fireball/engine/shading"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

const eps = 1e-5

func TestUniformLayout(t *testing.T) {
	var u shading.GPUFireballUniforms
	if u.Size() != 240 {
		t.Fatalf("Size = %d, want 240", u.Size())
	}
	offsets := map[string]uintptr{
		"Projection":     unsafe.Offsetof(u.Projection),
		"Model":          unsafe.Offsetof(u.Model),
		"MainColor":      unsafe.Offsetof(u.MainColor),
		"SecondaryColor": unsafe.Offsetof(u.SecondaryColor),
		"Time":           unsafe.Offsetof(u.Time),
		"Sharpness":      unsafe.Offsetof(u.Sharpness),
		"ColorSteps":     unsafe.Offsetof(u.ColorSteps),
	}
	want := map[string]uintptr{
		"Projection": 64, "Model": 128, "MainColor": 192, "SecondaryColor": 208,
		"Time": 224, "Sharpness": 228, "ColorSteps": 232,
	}
	for name, off := range offsets {
		if off != want[name] {
			t.Errorf("%s offset = %d, want %d", name, off, want[name])
		}
	}
}

func TestNewUniformsAndMarshal(t *testing.T) {
	view := mgl32.Translate3D(0, 0, -5)
	proj := mgl32.Perspective(mgl32.DegToRad(45), 1.5, 0.1, 100)
	model := mgl32.Ident4()
	s := params.Defaults()

	u := shading.NewUniforms(42, s, view, proj, model)
	if u.Time != 42 || u.Sharpness != s.Sharpness || u.ColorSteps != s.ColorSteps {
		t.Fatalf("scalars not copied: %+v", u)
	}
	if u.MainColor != s.MainColorRGBA() || u.SecondaryColor != s.SecondaryColorRGBA() {
		t.Fatalf("colors not normalized: %v %v", u.MainColor, u.SecondaryColor)
	}

	buf := u.Marshal()
	if len(buf) != 240 {
		t.Fatalf("len(Marshal) = %d, want 240", len(buf))
	}
	readF := func(off int) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(buf[off:])) }

	// column-major: translation z lives at element 14
	if got := readF(14 * 4); got != -5 {
		t.Errorf("view[14] = %v, want -5", got)
	}
	if got := readF(64); got != proj[0] {
		t.Errorf("projection[0] = %v, want %v", got, proj[0])
	}
	if got := readF(128); got != 1 {
		t.Errorf("model[0] = %v, want 1", got)
	}
	if got := readF(192); got != s.MainColorRGBA()[0] {
		t.Errorf("main_color.r = %v", got)
	}
	if got := readF(208 + 12); got != 1 {
		t.Errorf("secondary_color.a = %v, want 1", got)
	}
	if got := int32(binary.LittleEndian.Uint32(buf[224:])); got != 42 {
		t.Errorf("time = %d, want 42", got)
	}
	if got := readF(228); got != s.Sharpness {
		t.Errorf("sharpness = %v", got)
	}
	if got := readF(232); got != s.ColorSteps {
		t.Errorf("color_steps = %v", got)
	}
}

func TestNegativeTimeRoundTrips(t *testing.T) {
	u := shading.GPUFireballUniforms{Time: -3}
	buf := u.Marshal()
	if got := int32(binary.LittleEndian.Uint32(buf[224:])); got != -3 {
		t.Errorf("time = %d, want -3", got)
	}
}

func TestPosterizePlateaus(t *testing.T) {
	for _, steps := range []float32{3, 5, 8} {
		levels := steps - 1
		for i := float32(0); i < levels; i++ {
			low := shading.Posterize((i+0.2)/levels, steps, 4)
			high := shading.Posterize((i+0.8)/levels, steps, 4)
			if math32.Abs(low-i/levels) > eps {
				t.Errorf("steps %v band %v: low = %v, want %v", steps, i, low, i/levels)
			}
			if math32.Abs(high-(i+1)/levels) > eps {
				t.Errorf("steps %v band %v: high = %v, want %v", steps, i, high, (i+1)/levels)
			}
		}
	}
}

func TestPosterizeDistinctBands(t *testing.T) {
	for _, steps := range []float32{3, 4, 5, 6, 7, 8} {
		seen := map[int]bool{}
		for i := 0; i <= 1000; i++ {
			v := shading.Posterize(float32(i)/1000, steps, 4)
			// only count plateau values
			scaled := v * (steps - 1)
			if math32.Abs(scaled-math32.Round(scaled)) < eps {
				seen[int(math32.Round(scaled))] = true
			}
		}
		if len(seen) != int(steps) {
			t.Errorf("steps %v produced %d plateaus, want %v", steps, len(seen), steps)
		}
	}
}

func TestPosterizeMonotonicAndBounded(t *testing.T) {
	prev := float32(-1)
	for i := 0; i <= 500; i++ {
		v := shading.Posterize(float32(i)/500, 5, 3.2)
		if v < 0 || v > 1 {
			t.Fatalf("Posterize out of range: %v", v)
		}
		if v < prev-eps {
			t.Fatalf("Posterize not monotonic at %d: %v < %v", i, v, prev)
		}
		prev = v
	}
}

func TestSharpnessSteepensEdges(t *testing.T) {
	// just below the midpoint of the first band transition
	b := float32(0.45) / 4
	soft := shading.Posterize(b, 5, 2)
	sharp := shading.Posterize(b, 5, 4)
	if !(sharp < soft) {
		t.Errorf("sharpness 4 gave %v, sharpness 2 gave %v; want sharper edge to stay closer to the plateau", sharp, soft)
	}
	if sharp != 0 {
		t.Errorf("sharpness 4 value = %v, want 0", sharp)
	}
}

func TestShadeIsDeterministicAndInPalette(t *testing.T) {
	m, err := icosphere.Generate(mgl32.Vec3{}, 1, 2)
	if err != nil {
		t.Fatal(err)
	}
	s := params.Defaults()
	main := s.MainColorRGBA()
	secondary := s.SecondaryColorRGBA()

	for _, v := range m.Vertices {
		a := shading.Shade(v.Position, v.Normal, 17, s)
		b := shading.Shade(v.Position, v.Normal, 17, s)
		if a != b {
			t.Fatalf("Shade not deterministic at %v: %v vs %v", v.Position, a, b)
		}
		if a[3] != 1 {
			t.Fatalf("alpha = %v, want 1", a[3])
		}
		for c := range 3 {
			lo := math32.Min(main[c], secondary[c]) - eps
			hi := math32.Max(main[c], secondary[c]) + eps
			if a[c] < lo || a[c] > hi {
				t.Fatalf("channel %d = %v outside palette [%v, %v]", c, a[c], lo, hi)
			}
		}
	}
}

func TestShadeUniformPalette(t *testing.T) {
	s := params.Defaults()
	s.SecondaryColor = s.MainColor
	want := s.MainColorRGBA()
	got := shading.Shade(mgl32.Vec3{0.3, 0.4, 0.5}, mgl32.Vec3{0, 1, 0}, 99, s)
	for c := range 4 {
		if math32.Abs(got[c]-want[c]) > eps {
			t.Fatalf("Shade = %v, want %v", got, want)
		}
	}
}

func TestShadeAnimatesWithFrameTime(t *testing.T) {
	m, err := icosphere.Generate(mgl32.Vec3{}, 1, 3)
	if err != nil {
		t.Fatal(err)
	}
	s := params.Defaults()
	changed := 0
	for _, v := range m.Vertices {
		if shading.Shade(v.Position, v.Normal, 0, s) != shading.Shade(v.Position, v.Normal, 150, s) {
			changed++
		}
	}
	if changed == 0 {
		t.Error("no vertex changed color between frame 0 and frame 150")
	}
}

func TestDisplaceStaysAlongNormal(t *testing.T) {
	m, err := icosphere.Generate(mgl32.Vec3{}, 1, 2)
	if err != nil {
		t.Fatal(err)
	}
	limit := float32(shading.DisplaceAmount)/2 + eps
	for _, v := range m.Vertices {
		d := shading.Displace(v.Position, v.Normal, 30).Sub(v.Position)
		if d.Len() > limit {
			t.Fatalf("displacement %v exceeds %v", d.Len(), limit)
		}
		if d.Len() > 1e-3 && math32.Abs(math32.Abs(d.Normalize().Dot(v.Normal))-1) > 1e-3 {
			t.Fatalf("displacement %v not along normal %v", d, v.Normal)
		}
	}
}

func TestBlendBounded(t *testing.T) {
	for i := 0; i < 200; i++ {
		p := mgl32.Vec3{float32(i) * 0.37, float32(i) * -0.11, float32(i) * 0.05}
		b := shading.Blend(p, mgl32.Vec3{0, 1, 0}, float32(i)*0.01)
		if b < 0 || b > 1 {
			t.Fatalf("Blend(%v) = %v outside [0, 1]", p, b)
		}
	}
}
