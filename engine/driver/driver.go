// Package driver runs the per-frame fireball loop: read the parameters, regenerate the
// icosphere when the subdivision level changed, advance the frame counter and hand the
// frame's uniforms to the render target.
package driver

import (
	"fmt"
	"log"
	"sync"

	"github.com/Carmen-Shannon/oxy-fireball/common"
	"github.com/Carmen-Shannon/oxy-fireball/engine/mesh"
	"github.com/Carmen-Shannon/oxy-fireball/engine/params"
	"github.com/Carmen-Shannon/oxy-fireball/engine/shading"
	"github.com/go-gl/mathgl/mgl32"
)

// State is the lifecycle state of a Driver.
type State int

const (
	// StateIdle is the state before the first tick.
	StateIdle State = iota

	// StateRendering is entered on the first tick and held until Stop.
	StateRendering

	// StateStopped is terminal. Ticks after Stop do nothing.
	StateStopped
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRendering:
		return "rendering"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// ParamSource supplies the parameter snapshot read at the start of every tick.
type ParamSource interface {
	Get() params.Snapshot
}

// MeshBuilder generates an icosphere. Build must not return until the mesh is complete.
type MeshBuilder interface {
	Build(center mgl32.Vec3, radius float32, level int) (*mesh.Mesh, error)
}

// Target receives meshes and per-frame uniforms and puts them on screen.
type Target interface {
	// UploadMesh replaces the drawn mesh. On error the previous mesh stays in use.
	UploadMesh(m *mesh.Mesh) error

	// Draw renders one frame with the given uniforms.
	Draw(u shading.GPUFireballUniforms) error

	// Resize reconfigures the drawing surface.
	Resize(width, height int) error
}

// Camera supplies the view and projection matrices and follows viewport resizes.
type Camera interface {
	ViewMatrix() mgl32.Mat4
	ProjectionMatrix() mgl32.Mat4
	SetAspect(aspect float32)
}

// Context bundles the collaborators a Driver needs. All fields are required.
type Context struct {
	Params  ParamSource
	Builder MeshBuilder
	Target  Target
	Camera  Camera
}

type driverImpl struct {
	mu *sync.Mutex

	ctx Context

	center mgl32.Vec3
	radius float32
	model  mgl32.Mat4

	state        State
	frameTime    uint64
	trackedLevel int
	mesh         *mesh.Mesh
	meshLevel    int
	rebuilds     int
}

// Driver advances the fireball one frame per Tick. It is driven from a single goroutine;
// Resize and Stop are expected between ticks, on the same goroutine.
type Driver interface {
	// Tick runs one frame: snapshot the parameters, rebuild the mesh if the level changed,
	// increment the frame counter by one and draw. Rebuild and draw failures are logged
	// and do not stop the loop.
	//
	// Returns:
	//   - error: non-nil only when the very first mesh could not be built, wrapping
	//     common.ErrFatalInit, since there is nothing to draw
	Tick() error

	// Resize updates the camera aspect ratio and the target surface.
	// Zero or negative dimensions (a minimized window) are ignored.
	//
	// Parameters:
	//   - width: new framebuffer width in pixels
	//   - height: new framebuffer height in pixels
	Resize(width, height int)

	// Stop moves the driver to StateStopped.
	Stop()

	// State returns the current lifecycle state.
	State() State

	// FrameTime returns the number of ticks run so far. It never wraps; the value
	// uploaded to the GPU is folded into int32 range by shading.NewUniforms.
	FrameTime() uint64

	// Mesh returns the mesh currently in use, or nil before the first successful build.
	Mesh() *mesh.Mesh

	// Level returns the subdivision level of the mesh currently in use, or -1 if none.
	Level() int

	// Rebuilds returns the number of successful mesh builds.
	Rebuilds() int
}

var _ Driver = &driverImpl{}

// New creates a Driver in StateIdle. The sphere defaults to the origin with radius 1 and an
// identity model matrix. The tracked level starts one above params.DefaultLevel, so the
// first tick always builds.
//
// Parameters:
//   - ctx: the collaborators; every field must be set
//   - options: functional options for the sphere placement
//
// Returns:
//   - Driver: the new driver
//   - error: an error wrapping common.ErrFatalInit if a collaborator is missing or the sphere is invalid
func New(ctx Context, options ...DriverBuilderOption) (Driver, error) {
	switch {
	case ctx.Params == nil:
		return nil, fmt.Errorf("driver: missing parameter source: %w", common.ErrFatalInit)
	case ctx.Builder == nil:
		return nil, fmt.Errorf("driver: missing mesh builder: %w", common.ErrFatalInit)
	case ctx.Target == nil:
		return nil, fmt.Errorf("driver: missing render target: %w", common.ErrFatalInit)
	case ctx.Camera == nil:
		return nil, fmt.Errorf("driver: missing camera: %w", common.ErrFatalInit)
	}

	d := &driverImpl{
		mu:           &sync.Mutex{},
		ctx:          ctx,
		radius:       1,
		model:        mgl32.Ident4(),
		state:        StateIdle,
		trackedLevel: params.DefaultLevel + 1,
		meshLevel:    -1,
	}
	for _, opt := range options {
		opt(d)
	}

	if !(d.radius > 0) || !common.IsFiniteVec3(d.center) {
		return nil, fmt.Errorf("driver: sphere center %v radius %v: %w: %w",
			d.center, d.radius, common.ErrFatalInit, common.ErrGeometryInput)
	}
	return d, nil
}

func (d *driverImpl) Tick() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state == StateStopped {
		return nil
	}
	first := d.state == StateIdle
	d.state = StateRendering

	snap := d.ctx.Params.Get()

	if first || snap.Level != d.trackedLevel {
		d.trackedLevel = snap.Level
		if err := d.rebuild(snap.Level); err != nil {
			if first {
				return fmt.Errorf("driver: initial mesh: %w: %w", common.ErrFatalInit, err)
			}
			log.Printf("[Driver] frame %d: keeping level %d mesh: %v", d.frameTime, d.meshLevel, err)
		}
	}

	d.frameTime++

	u := shading.NewUniforms(d.frameTime, snap,
		d.ctx.Camera.ViewMatrix(), d.ctx.Camera.ProjectionMatrix(), d.model)
	if err := d.ctx.Target.Draw(u); err != nil {
		log.Printf("[Driver] frame %d: draw failed: %v", d.frameTime, err)
	}
	return nil
}

// rebuild builds and uploads a mesh for level, swapping it in only when both succeed.
// Caller must hold the mutex.
func (d *driverImpl) rebuild(level int) error {
	m, err := d.ctx.Builder.Build(d.center, d.radius, level)
	if err != nil {
		return err
	}
	if err := d.ctx.Target.UploadMesh(m); err != nil {
		return fmt.Errorf("upload level %d: %w", level, err)
	}
	d.mesh = m
	d.meshLevel = level
	d.rebuilds++
	return nil
}

func (d *driverImpl) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ctx.Camera.SetAspect(float32(width) / float32(height))
	if err := d.ctx.Target.Resize(width, height); err != nil {
		log.Printf("[Driver] resize to %dx%d failed: %v", width, height, err)
	}
}

func (d *driverImpl) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state = StateStopped
}

func (d *driverImpl) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

func (d *driverImpl) FrameTime() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.frameTime
}

func (d *driverImpl) Mesh() *mesh.Mesh {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.mesh
}

func (d *driverImpl) Level() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.meshLevel
}

func (d *driverImpl) Rebuilds() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.rebuilds
}
