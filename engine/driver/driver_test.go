package driver_test

import (
	"errors"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-fireball/common"
	"github.com/Carmen-Shannon/oxy-fireball/engine/camera"
	"github.com/Carmen-Shannon/oxy-fireball/engine/driver"
	"github.com/Carmen-Shannon/oxy-fireball/engine/icosphere"
	"github.com/Carmen-Shannon/oxy-fireball/engine/mesh"
	"github.com/Carmen-Shannon/oxy-fireball/engine/params"
	"github.com/Carmen-Shannon/oxy-fireball/engine/shading"
	"github.com/go-gl/mathgl/mgl32"
)

// fakeTarget records everything the driver hands to the GPU side.
type fakeTarget struct {
	uploads   []*mesh.Mesh
	draws     []shading.GPUFireballUniforms
	resizes   [][2]int
	uploadErr error
	drawErr   error
}

func (f *fakeTarget) UploadMesh(m *mesh.Mesh) error {
	if f.uploadErr != nil {
		return f.uploadErr
	}
	f.uploads = append(f.uploads, m)
	return nil
}

func (f *fakeTarget) Draw(u shading.GPUFireballUniforms) error {
	f.draws = append(f.draws, u)
	return f.drawErr
}

func (f *fakeTarget) Resize(width, height int) error {
	f.resizes = append(f.resizes, [2]int{width, height})
	return nil
}

// countingBuilder wraps the synchronous generator and counts calls per level.
type countingBuilder struct {
	calls []int
	gen   icosphere.Generator
}

func (b *countingBuilder) Build(center mgl32.Vec3, radius float32, level int) (*mesh.Mesh, error) {
	b.calls = append(b.calls, level)
	return b.gen.Build(center, radius, level)
}

type fixture struct {
	params  params.State
	builder *countingBuilder
	target  *fakeTarget
	camera  camera.Camera
	driver  driver.Driver
}

func newFixture(t *testing.T, options ...driver.DriverBuilderOption) *fixture {
	t.Helper()
	f := &fixture{
		params:  params.NewState(),
		builder: &countingBuilder{},
		target:  &fakeTarget{},
		camera:  camera.NewCamera(),
	}
	d, err := driver.New(driver.Context{
		Params:  f.params,
		Builder: f.builder,
		Target:  f.target,
		Camera:  f.camera,
	}, options...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	f.driver = d
	return f
}

func (f *fixture) tick(t *testing.T, n int) {
	t.Helper()
	for range n {
		if err := f.driver.Tick(); err != nil {
			t.Fatalf("Tick: %v", err)
		}
	}
}

func TestNewRequiresCollaborators(t *testing.T) {
	full := driver.Context{
		Params:  params.NewState(),
		Builder: icosphere.Generator{},
		Target:  &fakeTarget{},
		Camera:  camera.NewCamera(),
	}
	cases := map[string]func(c *driver.Context){
		"params":  func(c *driver.Context) { c.Params = nil },
		"builder": func(c *driver.Context) { c.Builder = nil },
		"target":  func(c *driver.Context) { c.Target = nil },
		"camera":  func(c *driver.Context) { c.Camera = nil },
	}
	for name, strip := range cases {
		t.Run(name, func(t *testing.T) {
			ctx := full
			strip(&ctx)
			if _, err := driver.New(ctx); !errors.Is(err, common.ErrFatalInit) {
				t.Fatalf("err = %v, want ErrFatalInit", err)
			}
		})
	}
}

func TestNewRejectsInvalidSphere(t *testing.T) {
	ctx := driver.Context{
		Params:  params.NewState(),
		Builder: icosphere.Generator{},
		Target:  &fakeTarget{},
		Camera:  camera.NewCamera(),
	}
	_, err := driver.New(ctx, driver.WithRadius(0))
	if !errors.Is(err, common.ErrFatalInit) || !errors.Is(err, common.ErrGeometryInput) {
		t.Fatalf("err = %v, want ErrFatalInit and ErrGeometryInput", err)
	}
}

func TestFirstTickBuildsDefaultLevel(t *testing.T) {
	f := newFixture(t)
	if f.driver.State() != driver.StateIdle {
		t.Fatalf("state = %v, want idle", f.driver.State())
	}
	if f.driver.Mesh() != nil || f.driver.Level() != -1 {
		t.Fatal("mesh present before first tick")
	}

	f.tick(t, 1)

	if f.driver.State() != driver.StateRendering {
		t.Errorf("state = %v, want rendering", f.driver.State())
	}
	if len(f.builder.calls) != 1 || f.builder.calls[0] != params.DefaultLevel {
		t.Fatalf("builder calls = %v, want [%d]", f.builder.calls, params.DefaultLevel)
	}
	if f.driver.Level() != 6 || f.driver.Rebuilds() != 1 {
		t.Errorf("level %d rebuilds %d, want 6 and 1", f.driver.Level(), f.driver.Rebuilds())
	}
	if got := f.driver.Mesh().TriangleCount(); got != icosphere.TriangleCount(6) {
		t.Errorf("triangles = %d, want %d", got, icosphere.TriangleCount(6))
	}
	if len(f.target.uploads) != 1 || f.target.uploads[0] != f.driver.Mesh() {
		t.Error("mesh not uploaded to target")
	}
}

func TestFirstTickBuildsEvenWhenLevelMatchesTracker(t *testing.T) {
	f := newFixture(t)
	if err := f.params.SetLevel(params.DefaultLevel + 1); err != nil {
		t.Fatal(err)
	}
	f.tick(t, 1)
	if f.driver.Level() != params.DefaultLevel+1 {
		t.Fatalf("level = %d, want %d", f.driver.Level(), params.DefaultLevel+1)
	}
}

func TestSteadyTicksDoNotRebuild(t *testing.T) {
	f := newFixture(t)
	f.tick(t, 10)
	if len(f.builder.calls) != 1 {
		t.Errorf("builder calls = %v, want one", f.builder.calls)
	}
	if f.driver.FrameTime() != 10 {
		t.Errorf("frameTime = %d, want 10", f.driver.FrameTime())
	}
	if len(f.target.draws) != 10 {
		t.Errorf("draws = %d, want 10", len(f.target.draws))
	}
	for i, u := range f.target.draws {
		if u.Time != int32(i+1) {
			t.Fatalf("draw %d time = %d, want %d", i, u.Time, i+1)
		}
	}
}

func TestLevelChangeRebuildsOnceWithoutAffectingFrameTime(t *testing.T) {
	f := newFixture(t)
	f.tick(t, 3)
	before := f.driver.FrameTime()

	if err := f.params.SetLevel(2); err != nil {
		t.Fatal(err)
	}
	f.tick(t, 1)

	if got := f.driver.FrameTime(); got != before+1 {
		t.Errorf("frameTime = %d, want %d", got, before+1)
	}
	if len(f.builder.calls) != 2 || f.builder.calls[1] != 2 {
		t.Fatalf("builder calls = %v, want [6 2]", f.builder.calls)
	}
	if f.driver.Rebuilds() != 2 {
		t.Errorf("rebuilds = %d, want 2", f.driver.Rebuilds())
	}
	m := f.driver.Mesh()
	if m.TriangleCount() != 320 || m.VertexCount() != 162 {
		t.Errorf("level 2 mesh has %d triangles %d vertices, want 320 and 162", m.TriangleCount(), m.VertexCount())
	}

	f.tick(t, 5)
	if len(f.builder.calls) != 2 {
		t.Errorf("builder calls after steady ticks = %v", f.builder.calls)
	}
}

func TestFrameTimeKeepsIncreasingPastInt32(t *testing.T) {
	f := newFixture(t, driver.WithStartFrame(math.MaxInt32-1))
	f.tick(t, 3)
	if got, want := f.driver.FrameTime(), uint64(math.MaxInt32)+2; got != want {
		t.Errorf("frameTime = %d, want %d", got, want)
	}
	want := []int32{math.MaxInt32, 0, 1}
	for i, u := range f.target.draws {
		if u.Time != want[i] {
			t.Errorf("draw %d time = %d, want %d", i, u.Time, want[i])
		}
	}
}

func TestUniformsCarryParameters(t *testing.T) {
	f := newFixture(t, driver.WithModelMatrix(mgl32.Scale3D(2, 2, 2)))
	_ = f.params.SetMainColor(params.RGB{255, 0, 0})
	_ = f.params.SetSharpness(2.5)
	f.tick(t, 1)

	u := f.target.draws[0]
	if u.MainColor != [4]float32{1, 0, 0, 1} {
		t.Errorf("main color = %v", u.MainColor)
	}
	if u.Sharpness != 2.5 {
		t.Errorf("sharpness = %v", u.Sharpness)
	}
	if mgl32.Mat4(u.Model) != mgl32.Scale3D(2, 2, 2) {
		t.Errorf("model = %v", u.Model)
	}
	if mgl32.Mat4(u.View) != f.camera.ViewMatrix() || mgl32.Mat4(u.Projection) != f.camera.ProjectionMatrix() {
		t.Error("camera matrices not forwarded")
	}
}

// failingBuilder fails for one level and delegates otherwise.
type failingBuilder struct {
	failLevel int
	gen       icosphere.Generator
}

func (b failingBuilder) Build(center mgl32.Vec3, radius float32, level int) (*mesh.Mesh, error) {
	if level == b.failLevel {
		return nil, common.ErrGeometryInput
	}
	return b.gen.Build(center, radius, level)
}

func TestFailedRebuildKeepsPreviousMesh(t *testing.T) {
	target := &fakeTarget{}
	state := params.NewState()
	d, err := driver.New(driver.Context{
		Params:  state,
		Builder: failingBuilder{failLevel: 3},
		Target:  target,
		Camera:  camera.NewCamera(),
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Tick(); err != nil {
		t.Fatal(err)
	}
	previous := d.Mesh()

	_ = state.SetLevel(3)
	if err := d.Tick(); err != nil {
		t.Fatalf("Tick after failed rebuild: %v", err)
	}
	if d.Mesh() != previous || d.Level() != 6 {
		t.Errorf("mesh replaced after failed rebuild (level %d)", d.Level())
	}
	if d.FrameTime() != 2 || len(target.draws) != 2 {
		t.Errorf("frameTime %d draws %d, want 2 and 2", d.FrameTime(), len(target.draws))
	}
}

func TestInitialBuildFailureIsFatal(t *testing.T) {
	d, err := driver.New(driver.Context{
		Params:  params.NewState(),
		Builder: failingBuilder{failLevel: params.DefaultLevel},
		Target:  &fakeTarget{},
		Camera:  camera.NewCamera(),
	})
	if err != nil {
		t.Fatal(err)
	}
	err = d.Tick()
	if !errors.Is(err, common.ErrFatalInit) || !errors.Is(err, common.ErrGeometryInput) {
		t.Fatalf("err = %v, want ErrFatalInit wrapping ErrGeometryInput", err)
	}
}

func TestUploadFailureKeepsPreviousMesh(t *testing.T) {
	f := newFixture(t)
	f.tick(t, 1)
	previous := f.driver.Mesh()

	f.target.uploadErr = errors.New("out of memory")
	_ = f.params.SetLevel(1)
	f.tick(t, 1)

	if f.driver.Mesh() != previous || f.driver.Rebuilds() != 1 {
		t.Error("mesh swapped despite upload failure")
	}
}

func TestDrawErrorsAreIgnored(t *testing.T) {
	f := newFixture(t)
	f.target.drawErr = errors.New("surface lost")
	f.tick(t, 3)
	if f.driver.FrameTime() != 3 {
		t.Errorf("frameTime = %d, want 3", f.driver.FrameTime())
	}
}

func TestStopIsTerminal(t *testing.T) {
	f := newFixture(t)
	f.tick(t, 2)
	f.driver.Stop()
	f.tick(t, 3)
	if f.driver.State() != driver.StateStopped {
		t.Errorf("state = %v, want stopped", f.driver.State())
	}
	if f.driver.FrameTime() != 2 || len(f.target.draws) != 2 {
		t.Errorf("ticks after Stop had effect: frameTime %d draws %d", f.driver.FrameTime(), len(f.target.draws))
	}
}

func TestResize(t *testing.T) {
	f := newFixture(t)
	f.driver.Resize(1600, 800)
	f.driver.Resize(0, 600)
	if f.camera.Aspect() != 2 {
		t.Errorf("aspect = %v, want 2", f.camera.Aspect())
	}
	if len(f.target.resizes) != 1 || f.target.resizes[0] != [2]int{1600, 800} {
		t.Errorf("target resizes = %v", f.target.resizes)
	}
}

func TestWorksWithPooledBuilder(t *testing.T) {
	b := icosphere.NewBuilder(icosphere.WithWorkers(1))
	defer b.Close()
	target := &fakeTarget{}
	state := params.NewState()
	d, err := driver.New(driver.Context{Params: state, Builder: b, Target: target, Camera: camera.NewCamera()},
		driver.WithCenter(mgl32.Vec3{1, 0, 0}), driver.WithRadius(2))
	if err != nil {
		t.Fatal(err)
	}
	_ = state.SetLevel(1)
	if err := d.Tick(); err != nil {
		t.Fatal(err)
	}
	m := d.Mesh()
	if m == nil || m.VertexCount() != 42 {
		t.Fatalf("mesh = %v, want 42 vertices", m)
	}
	if got := m.Vertices[0].Position.Sub(mgl32.Vec3{1, 0, 0}).Len(); got < 1.999 || got > 2.001 {
		t.Errorf("vertex distance = %v, want 2", got)
	}
}

func TestStateString(t *testing.T) {
	for s, want := range map[driver.State]string{
		driver.StateIdle: "idle", driver.StateRendering: "rendering", driver.StateStopped: "stopped",
	} {
		if s.String() != want {
			t.Errorf("%d.String() = %q, want %q", int(s), s.String(), want)
		}
	}
}
