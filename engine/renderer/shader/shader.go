package shader

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-fireball/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// ShaderType identifies the pipeline stage a shader is written for.
type ShaderType int

const (
	// ShaderTypeVertex is a shader with a @vertex entry point.
	ShaderTypeVertex ShaderType = iota

	// ShaderTypeFragment is a shader with a @fragment entry point.
	ShaderTypeFragment
)

// String returns the stage name.
func (t ShaderType) String() string {
	switch t {
	case ShaderTypeVertex:
		return "vertex"
	case ShaderTypeFragment:
		return "fragment"
	default:
		return fmt.Sprintf("ShaderType(%d)", int(t))
	}
}

// shader is the implementation of the Shader interface.
type shader struct {
	key                        string
	source                     string
	shaderType                 ShaderType
	bindGroupLayoutDescriptors map[int]wgpu.BindGroupLayoutDescriptor
	bindingVarNames            map[int]map[int]string
	vertexLayouts              []wgpu.VertexBufferLayout
	entryPoint                 string
	declarations               []Annotation
}

// Shader is a pre-processed and parsed WGSL shader stage. It carries everything the renderer
// needs to build a pipeline: the expanded source, the entry point, the vertex buffer layouts
// and the bind group layout descriptors derived from the source.
type Shader interface {
	// Key returns the unique identifier of the shader.
	Key() string

	// Source returns the expanded WGSL source.
	Source() string

	// ShaderType returns the stage the shader is written for.
	ShaderType() ShaderType

	// EntryPoint returns the name of the stage's entry function.
	EntryPoint() string

	// VertexLayouts returns the vertex buffer layouts of a vertex shader, one per input struct.
	// Fragment shaders return nil.
	VertexLayouts() []wgpu.VertexBufferLayout

	// BindGroupLayoutDescriptor returns the layout descriptor of one bind group.
	//
	// Parameters:
	//   - group: the @group index
	//
	// Returns:
	//   - wgpu.BindGroupLayoutDescriptor: the descriptor, empty if the group is not declared
	BindGroupLayoutDescriptor(group int) wgpu.BindGroupLayoutDescriptor

	// BindGroupLayoutDescriptors returns every declared bind group layout keyed by group index.
	BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor

	// BindGroupVarName returns the variable declared at a group and binding, or "".
	BindGroupVarName(group, binding int) string

	// Declarations returns the group annotations found while pre-processing.
	Declarations() []Annotation

	// Module returns a shader module descriptor for the expanded source.
	Module() *wgpu.ShaderModuleDescriptor
}

var _ Shader = &shader{}

// NewShader pre-processes and parses WGSL source for one pipeline stage.
//
// Parameters:
//   - key: a unique identifier for the shader
//   - shaderType: the stage the source is written for
//   - source: annotated WGSL source
//
// Returns:
//   - Shader: the parsed shader
//   - error: an error wrapping common.ErrFatalInit if the source is empty, an annotation is
//     invalid, or no entry point for the stage exists
func NewShader(key string, shaderType ShaderType, source string) (Shader, error) {
	if source == "" {
		return nil, fmt.Errorf("shader %s: empty source: %w", key, common.ErrFatalInit)
	}

	pp := NewPreProcessor()
	expanded, err := pp.Process(source)
	if err != nil {
		return nil, fmt.Errorf("shader %s: %w: %w", key, common.ErrFatalInit, err)
	}

	s := &shader{
		key:          key,
		source:       expanded,
		shaderType:   shaderType,
		declarations: pp.Declarations(),
	}

	s.entryPoint = parseEntryPoint(expanded, shaderType)
	if s.entryPoint == "" {
		return nil, fmt.Errorf("shader %s: no %s entry point: %w", key, shaderType, common.ErrFatalInit)
	}

	var visibility wgpu.ShaderStage
	switch shaderType {
	case ShaderTypeVertex:
		visibility = wgpu.ShaderStageVertex
		s.vertexLayouts = parseVertexLayouts(expanded)
	case ShaderTypeFragment:
		visibility = wgpu.ShaderStageFragment
	}
	s.bindGroupLayoutDescriptors, s.bindingVarNames = parseBindGroupLayouts(expanded, visibility)

	return s, nil
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) ShaderType() ShaderType {
	return s.shaderType
}

func (s *shader) EntryPoint() string {
	return s.entryPoint
}

func (s *shader) VertexLayouts() []wgpu.VertexBufferLayout {
	return s.vertexLayouts
}

func (s *shader) BindGroupLayoutDescriptor(group int) wgpu.BindGroupLayoutDescriptor {
	return s.bindGroupLayoutDescriptors[group]
}

func (s *shader) BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor {
	return s.bindGroupLayoutDescriptors
}

func (s *shader) BindGroupVarName(group, binding int) string {
	return s.bindingVarNames[group][binding]
}

func (s *shader) Declarations() []Annotation {
	return s.declarations
}

func (s *shader) Module() *wgpu.ShaderModuleDescriptor {
	return &wgpu.ShaderModuleDescriptor{
		Label: s.key,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: s.source,
		},
	}
}
