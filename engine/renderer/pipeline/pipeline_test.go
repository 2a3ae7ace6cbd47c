package pipeline_test

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-fireball/common"
	"github.com/Carmen-Shannon/oxy-fireball/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-fireball/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-fireball/engine/shading"
	"github.com/cogentcore/webgpu/wgpu"
)

func fireballShaders(t *testing.T) (shader.Shader, shader.Shader) {
	t.Helper()
	vs, err := shader.NewShader("vs", shader.ShaderTypeVertex, shading.VertexShaderSource)
	if err != nil {
		t.Fatal(err)
	}
	fs, err := shader.NewShader("fs", shader.ShaderTypeFragment, shading.FragmentShaderSource)
	if err != nil {
		t.Fatal(err)
	}
	return vs, fs
}

func TestNewPipelineDefaults(t *testing.T) {
	vs, fs := fireballShaders(t)
	p, err := pipeline.NewPipeline("fireball", pipeline.WithVertexShader(vs), pipeline.WithFragmentShader(fs))
	if err != nil {
		t.Fatal(err)
	}
	if p.PipelineKey() != "fireball" {
		t.Errorf("key = %q", p.PipelineKey())
	}
	if !p.DepthTestEnabled() || !p.DepthWriteEnabled() {
		t.Error("depth test and write should default on")
	}
	if p.BlendEnabled() || p.CullMode() != wgpu.CullModeNone {
		t.Error("blending and culling should default off")
	}
	if p.Topology() != wgpu.PrimitiveTopologyTriangleList || p.FrontFace() != wgpu.FrontFaceCCW {
		t.Error("unexpected primitive defaults")
	}
	if p.Shader(shader.ShaderTypeVertex) != vs || p.Shader(shader.ShaderTypeFragment) != fs {
		t.Error("shader lookup mismatch")
	}
	if len(p.VertexLayouts()) != 1 {
		t.Errorf("vertex layouts = %d", len(p.VertexLayouts()))
	}
	if p.RenderPipeline() != nil {
		t.Error("render pipeline set before registration")
	}
	p.Release()
}

func TestUniformVisibleToBothStages(t *testing.T) {
	vs, fs := fireballShaders(t)
	p, err := pipeline.NewPipeline("fireball",
		pipeline.WithVertexShader(vs),
		pipeline.WithFragmentShader(fs),
		pipeline.WithCullMode(wgpu.CullModeBack),
	)
	if err != nil {
		t.Fatal(err)
	}
	layouts := p.BindGroupLayouts()
	if len(layouts) != 1 {
		t.Fatalf("groups = %d, want 1", len(layouts))
	}
	entries := layouts[0].Entries
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	want := wgpu.ShaderStageVertex | wgpu.ShaderStageFragment
	if entries[0].Visibility != want {
		t.Errorf("visibility = %v, want %v", entries[0].Visibility, want)
	}
	if p.CullMode() != wgpu.CullModeBack {
		t.Error("cull mode option ignored")
	}
}

func TestNewPipelineRequiresStages(t *testing.T) {
	vs, fs := fireballShaders(t)
	cases := map[string][]pipeline.PipelineBuilderOption{
		"none":          nil,
		"vertex only":   {pipeline.WithVertexShader(vs)},
		"fragment only": {pipeline.WithFragmentShader(fs)},
		"swapped":       {pipeline.WithVertexShader(fs), pipeline.WithFragmentShader(vs)},
	}
	for name, opts := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := pipeline.NewPipeline("bad", opts...)
			if !errors.Is(err, common.ErrFatalInit) {
				t.Errorf("err = %v, want ErrFatalInit", err)
			}
		})
	}
}

func TestMergeBindGroupLayouts(t *testing.T) {
	vertex := map[int]wgpu.BindGroupLayoutDescriptor{
		0: {Entries: []wgpu.BindGroupLayoutEntry{
			{Binding: 1, Visibility: wgpu.ShaderStageVertex},
			{Binding: 0, Visibility: wgpu.ShaderStageVertex},
		}},
		1: {Entries: []wgpu.BindGroupLayoutEntry{{Binding: 0, Visibility: wgpu.ShaderStageVertex}}},
	}
	fragment := map[int]wgpu.BindGroupLayoutDescriptor{
		0: {Entries: []wgpu.BindGroupLayoutEntry{
			{Binding: 0, Visibility: wgpu.ShaderStageFragment},
			{Binding: 2, Visibility: wgpu.ShaderStageFragment},
		}},
		2: {Entries: []wgpu.BindGroupLayoutEntry{{Binding: 3, Visibility: wgpu.ShaderStageFragment}}},
	}

	merged := pipeline.MergeBindGroupLayouts(vertex, fragment)
	if len(merged) != 3 {
		t.Fatalf("groups = %d, want 3", len(merged))
	}

	g0 := merged[0].Entries
	if len(g0) != 3 {
		t.Fatalf("group 0 entries = %d, want 3", len(g0))
	}
	for i, want := range []struct {
		binding uint32
		vis     wgpu.ShaderStage
	}{
		{0, wgpu.ShaderStageVertex | wgpu.ShaderStageFragment},
		{1, wgpu.ShaderStageVertex},
		{2, wgpu.ShaderStageFragment},
	} {
		if g0[i].Binding != want.binding || g0[i].Visibility != want.vis {
			t.Errorf("group 0 entry %d = %+v, want binding %d visibility %v", i, g0[i], want.binding, want.vis)
		}
	}
	if merged[1].Entries[0].Visibility != wgpu.ShaderStageVertex {
		t.Error("vertex-only group changed")
	}
	if merged[2].Entries[0].Binding != 3 {
		t.Error("fragment-only group changed")
	}
}
