package scene_test

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-fireball/common"
	"github.com/Carmen-Shannon/oxy-fireball/engine/icosphere"
	"github.com/Carmen-Shannon/oxy-fireball/engine/params"
	"github.com/Carmen-Shannon/oxy-fireball/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-fireball/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-fireball/engine/scene"
	"github.com/Carmen-Shannon/oxy-fireball/engine/shading"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

// fakeRenderer records the calls a scene makes without touching a GPU.
type fakeRenderer struct {
	registered []string
	bindGroups []wgpu.BindGroupLayoutDescriptor
	meshes     int
	writes     []bind_group_provider.BufferWrite
	calls      []string
	resizes    [][2]int

	registerErr error
	uploadErr   error
	beginErr    error
	drawErr     error
}

func (f *fakeRenderer) RegisterPipelines(pipelines ...pipeline.Pipeline) error {
	if f.registerErr != nil {
		return f.registerErr
	}
	for _, p := range pipelines {
		f.registered = append(f.registered, p.PipelineKey())
	}
	return nil
}

func (f *fakeRenderer) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error {
	if f.uploadErr != nil {
		return f.uploadErr
	}
	f.meshes++
	provider.SetIndexCount(indexCount)
	return nil
}

func (f *fakeRenderer) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor) error {
	f.bindGroups = append(f.bindGroups, descriptor)
	return nil
}

func (f *fakeRenderer) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	f.writes = append(f.writes, writes...)
}

func (f *fakeRenderer) BeginFrame() error {
	f.calls = append(f.calls, "begin")
	return f.beginErr
}

func (f *fakeRenderer) DrawCall(pipelineKey string, meshProvider bind_group_provider.BindGroupProvider, bindGroups []bind_group_provider.BindGroupProvider) error {
	f.calls = append(f.calls, "draw:"+pipelineKey)
	return f.drawErr
}

func (f *fakeRenderer) EndFrame() error {
	f.calls = append(f.calls, "end")
	return nil
}

func (f *fakeRenderer) Present() {
	f.calls = append(f.calls, "present")
}

func (f *fakeRenderer) Resize(width, height int) error {
	f.resizes = append(f.resizes, [2]int{width, height})
	return nil
}

func newScene(t *testing.T, r *fakeRenderer) scene.Scene {
	t.Helper()
	s, err := scene.NewScene("test", r)
	if err != nil {
		t.Fatalf("NewScene: %v", err)
	}
	return s
}

func uniforms() shading.GPUFireballUniforms {
	return shading.NewUniforms(1, params.Defaults(), mgl32.Ident4(), mgl32.Ident4(), mgl32.Ident4())
}

func TestNewSceneRegistersPipelineAndUniforms(t *testing.T) {
	r := &fakeRenderer{}
	s := newScene(t, r)

	if len(r.registered) != 1 || r.registered[0] != scene.FireballPipelineKey {
		t.Fatalf("registered = %v, want [%s]", r.registered, scene.FireballPipelineKey)
	}
	if len(r.bindGroups) != 1 {
		t.Fatalf("bind groups initialized = %d, want 1", len(r.bindGroups))
	}
	entries := r.bindGroups[0].Entries
	var u shading.GPUFireballUniforms
	if len(entries) != 1 || entries[0].Buffer.MinBindingSize != uint64(u.Size()) {
		t.Errorf("uniform entries = %+v, want one binding of %d bytes", entries, u.Size())
	}
	if s.MeshLoaded() {
		t.Error("fresh scene reports a mesh")
	}
}

func TestNewSceneFailures(t *testing.T) {
	if _, err := scene.NewScene("nil", nil); !errors.Is(err, common.ErrFatalInit) {
		t.Errorf("nil renderer: err = %v, want ErrFatalInit", err)
	}
	r := &fakeRenderer{registerErr: errors.New("compile failed")}
	if _, err := scene.NewScene("bad", r); err == nil {
		t.Error("expected registration error")
	}
}

func TestDrawWithoutMeshFails(t *testing.T) {
	r := &fakeRenderer{}
	s := newScene(t, r)
	if err := s.Draw(uniforms()); err == nil {
		t.Fatal("expected error drawing before a mesh is uploaded")
	}
	if len(r.calls) != 0 {
		t.Errorf("renderer calls = %v, want none", r.calls)
	}
}

func TestUploadAndDraw(t *testing.T) {
	r := &fakeRenderer{}
	s := newScene(t, r)

	m, err := icosphere.Generate(mgl32.Vec3{}, 1, 2)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.UploadMesh(m); err != nil {
		t.Fatalf("UploadMesh: %v", err)
	}
	if got, want := s.IndexCount(), 3*320; got != want {
		t.Errorf("IndexCount = %d, want %d", got, want)
	}

	u := uniforms()
	if err := s.Draw(u); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	want := []string{"begin", "draw:" + scene.FireballPipelineKey, "end", "present"}
	if len(r.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", r.calls, want)
	}
	for i := range want {
		if r.calls[i] != want[i] {
			t.Errorf("calls[%d] = %s, want %s", i, r.calls[i], want[i])
		}
	}
	if len(r.writes) != 1 || len(r.writes[0].Data) != u.Size() {
		t.Errorf("uniform writes = %d, want one write of %d bytes", len(r.writes), u.Size())
	}
}

func TestFailedUploadKeepsPreviousMesh(t *testing.T) {
	r := &fakeRenderer{}
	s := newScene(t, r)

	small, _ := icosphere.Generate(mgl32.Vec3{}, 1, 0)
	if err := s.UploadMesh(small); err != nil {
		t.Fatal(err)
	}
	r.uploadErr = errors.New("out of memory")
	big, _ := icosphere.Generate(mgl32.Vec3{}, 1, 3)
	if err := s.UploadMesh(big); err == nil {
		t.Fatal("expected upload error")
	}
	if got := s.IndexCount(); got != 60 {
		t.Errorf("IndexCount = %d, want 60 from the level 0 mesh", got)
	}
}

func TestUploadRejectsNilMesh(t *testing.T) {
	s := newScene(t, &fakeRenderer{})
	if err := s.UploadMesh(nil); !errors.Is(err, common.ErrGeometryInput) {
		t.Errorf("err = %v, want ErrGeometryInput", err)
	}
}

func TestDrawErrorStillClosesFrame(t *testing.T) {
	r := &fakeRenderer{drawErr: errors.New("lost device")}
	s := newScene(t, r)
	m, _ := icosphere.Generate(mgl32.Vec3{}, 1, 0)
	if err := s.UploadMesh(m); err != nil {
		t.Fatal(err)
	}
	if err := s.Draw(uniforms()); err == nil {
		t.Fatal("expected draw error")
	}
	if n := len(r.calls); n != 4 || r.calls[n-1] != "present" {
		t.Errorf("calls = %v, want the frame to be ended and presented", r.calls)
	}
}

func TestBeginFrameErrorSkipsDraw(t *testing.T) {
	r := &fakeRenderer{beginErr: errors.New("surface outdated")}
	s := newScene(t, r)
	m, _ := icosphere.Generate(mgl32.Vec3{}, 1, 0)
	_ = s.UploadMesh(m)
	if err := s.Draw(uniforms()); err == nil {
		t.Fatal("expected begin error")
	}
	if len(r.calls) != 1 {
		t.Errorf("calls = %v, want only begin", r.calls)
	}
}

func TestReleaseStopsDrawing(t *testing.T) {
	r := &fakeRenderer{}
	s := newScene(t, r)
	m, _ := icosphere.Generate(mgl32.Vec3{}, 1, 0)
	_ = s.UploadMesh(m)

	s.Release()
	s.Release()
	if s.MeshLoaded() {
		t.Error("mesh still loaded after Release")
	}
	if err := s.Draw(uniforms()); err == nil {
		t.Error("expected error drawing a released scene")
	}
}

func TestResizeForwards(t *testing.T) {
	r := &fakeRenderer{}
	s := newScene(t, r)
	if err := s.Resize(640, 480); err != nil {
		t.Fatal(err)
	}
	if len(r.resizes) != 1 || r.resizes[0] != [2]int{640, 480} {
		t.Errorf("resizes = %v", r.resizes)
	}
}
