package pipeline

import (
	"fmt"
	"sort"

	"github.com/Carmen-Shannon/oxy-fireball/common"
	"github.com/Carmen-Shannon/oxy-fireball/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// pipeline is the implementation of the Pipeline interface.
type pipeline struct {
	pipelineKey string

	vertexShader, fragmentShader shader.Shader

	// bindGroupLayouts merges the layouts declared by both stages, keyed by group index.
	bindGroupLayouts map[int]wgpu.BindGroupLayoutDescriptor

	// renderPipeline is set by the renderer once the GPU object exists.
	renderPipeline *wgpu.RenderPipeline

	depthTestEnabled  bool
	depthWriteEnabled bool
	blendEnabled      bool
	cullMode          wgpu.CullMode
	topology          wgpu.PrimitiveTopology
	frontFace         wgpu.FrontFace
	writeMask         wgpu.ColorWriteMask
	blendState        *wgpu.BlendState
}

// Pipeline describes a render pipeline: a vertex and a fragment shader plus the fixed-function
// state the renderer needs to create the GPU pipeline object.
type Pipeline interface {
	// PipelineKey returns the unique key used to cache this pipeline.
	PipelineKey() string

	// Shader returns the shader for a stage.
	//
	// Parameters:
	//   - shaderType: the stage
	//
	// Returns:
	//   - shader.Shader: the shader, or nil for an unknown stage
	Shader(shaderType shader.ShaderType) shader.Shader

	// BindGroupLayouts returns the bind group layouts of both stages merged by group index.
	// A binding declared by both stages is visible to both.
	BindGroupLayouts() map[int]wgpu.BindGroupLayoutDescriptor

	// VertexLayouts returns the vertex buffer layouts of the vertex stage.
	VertexLayouts() []wgpu.VertexBufferLayout

	// RenderPipeline returns the GPU pipeline, or nil before registration.
	RenderPipeline() *wgpu.RenderPipeline

	// SetRenderPipeline stores the GPU pipeline created by the renderer.
	SetRenderPipeline(p *wgpu.RenderPipeline)

	// DepthTestEnabled reports whether fragments are depth tested.
	DepthTestEnabled() bool

	// DepthWriteEnabled reports whether fragments write depth.
	DepthWriteEnabled() bool

	// BlendEnabled reports whether BlendState is applied to the color target.
	BlendEnabled() bool

	CullMode() wgpu.CullMode
	Topology() wgpu.PrimitiveTopology
	FrontFace() wgpu.FrontFace
	WriteMask() wgpu.ColorWriteMask
	BlendState() *wgpu.BlendState

	// Release frees the GPU pipeline, if any.
	Release()
}

var _ Pipeline = &pipeline{}

// NewPipeline creates a render pipeline description. Depth testing and depth writes are on,
// blending and culling are off, and triangles are counter-clockwise.
//
// Parameters:
//   - pipelineKey: the unique key for this pipeline
//   - opts: functional options; WithVertexShader and WithFragmentShader are required
//
// Returns:
//   - Pipeline: the pipeline description
//   - error: an error wrapping common.ErrFatalInit if a stage is missing or of the wrong type
func NewPipeline(pipelineKey string, opts ...PipelineBuilderOption) (Pipeline, error) {
	p := &pipeline{
		pipelineKey:       pipelineKey,
		depthTestEnabled:  true,
		depthWriteEnabled: true,
		cullMode:          wgpu.CullModeNone,
		topology:          wgpu.PrimitiveTopologyTriangleList,
		frontFace:         wgpu.FrontFaceCCW,
		writeMask:         wgpu.ColorWriteMaskAll,
		blendState: &wgpu.BlendState{
			Color: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorSrcAlpha,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
			Alpha: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
		},
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.vertexShader == nil || p.fragmentShader == nil {
		return nil, fmt.Errorf("pipeline %s: vertex and fragment shaders are required: %w", pipelineKey, common.ErrFatalInit)
	}
	if p.vertexShader.ShaderType() != shader.ShaderTypeVertex || p.fragmentShader.ShaderType() != shader.ShaderTypeFragment {
		return nil, fmt.Errorf("pipeline %s: shader stage mismatch: %w", pipelineKey, common.ErrFatalInit)
	}

	p.bindGroupLayouts = MergeBindGroupLayouts(
		p.vertexShader.BindGroupLayoutDescriptors(),
		p.fragmentShader.BindGroupLayoutDescriptors(),
	)
	return p, nil
}

func (p *pipeline) PipelineKey() string {
	return p.pipelineKey
}

func (p *pipeline) Shader(shaderType shader.ShaderType) shader.Shader {
	switch shaderType {
	case shader.ShaderTypeVertex:
		return p.vertexShader
	case shader.ShaderTypeFragment:
		return p.fragmentShader
	default:
		return nil
	}
}

func (p *pipeline) BindGroupLayouts() map[int]wgpu.BindGroupLayoutDescriptor {
	return p.bindGroupLayouts
}

func (p *pipeline) VertexLayouts() []wgpu.VertexBufferLayout {
	return p.vertexShader.VertexLayouts()
}

func (p *pipeline) RenderPipeline() *wgpu.RenderPipeline {
	return p.renderPipeline
}

func (p *pipeline) SetRenderPipeline(rp *wgpu.RenderPipeline) {
	p.renderPipeline = rp
}

func (p *pipeline) DepthTestEnabled() bool {
	return p.depthTestEnabled
}

func (p *pipeline) DepthWriteEnabled() bool {
	return p.depthWriteEnabled
}

func (p *pipeline) BlendEnabled() bool {
	return p.blendEnabled
}

func (p *pipeline) CullMode() wgpu.CullMode {
	return p.cullMode
}

func (p *pipeline) Topology() wgpu.PrimitiveTopology {
	return p.topology
}

func (p *pipeline) FrontFace() wgpu.FrontFace {
	return p.frontFace
}

func (p *pipeline) WriteMask() wgpu.ColorWriteMask {
	return p.writeMask
}

func (p *pipeline) BlendState() *wgpu.BlendState {
	return p.blendState
}

func (p *pipeline) Release() {
	if p.renderPipeline != nil {
		p.renderPipeline.Release()
		p.renderPipeline = nil
	}
}

// MergeBindGroupLayouts combines per-stage bind group layouts. Groups declared by one stage are
// kept as-is; groups declared by both are merged by binding, OR-ing the visibility of bindings
// both stages declare. Entries come out sorted by binding.
//
// Parameters:
//   - vertexLayouts: layouts declared by the vertex stage
//   - fragmentLayouts: layouts declared by the fragment stage
//
// Returns:
//   - map[int]wgpu.BindGroupLayoutDescriptor: the merged layouts keyed by group index
func MergeBindGroupLayouts(vertexLayouts, fragmentLayouts map[int]wgpu.BindGroupLayoutDescriptor) map[int]wgpu.BindGroupLayoutDescriptor {
	merged := make(map[int]wgpu.BindGroupLayoutDescriptor, len(vertexLayouts)+len(fragmentLayouts))
	for g, desc := range vertexLayouts {
		merged[g] = desc
	}
	for g, fDesc := range fragmentLayouts {
		vDesc, ok := merged[g]
		if !ok {
			merged[g] = fDesc
			continue
		}

		byBinding := make(map[uint32]wgpu.BindGroupLayoutEntry, len(vDesc.Entries)+len(fDesc.Entries))
		for _, e := range vDesc.Entries {
			byBinding[e.Binding] = e
		}
		for _, e := range fDesc.Entries {
			if existing, ok := byBinding[e.Binding]; ok {
				existing.Visibility |= e.Visibility
				if e.Buffer.MinBindingSize > existing.Buffer.MinBindingSize {
					existing.Buffer.MinBindingSize = e.Buffer.MinBindingSize
				}
				e = existing
			}
			byBinding[e.Binding] = e
		}

		entries := make([]wgpu.BindGroupLayoutEntry, 0, len(byBinding))
		for _, e := range byBinding {
			entries = append(entries, e)
		}
		sort.Slice(entries, func(i, j int) bool {
			return entries[i].Binding < entries[j].Binding
		})
		merged[g] = wgpu.BindGroupLayoutDescriptor{Label: vDesc.Label, Entries: entries}
	}
	return merged
}
