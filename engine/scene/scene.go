package scene

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/Carmen-Shannon/oxy-fireball/common"
	"github.com/Carmen-Shannon/oxy-fireball/engine/driver"
	"github.com/Carmen-Shannon/oxy-fireball/engine/mesh"
	"github.com/Carmen-Shannon/oxy-fireball/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-fireball/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-fireball/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-fireball/engine/shading"
	"github.com/cogentcore/webgpu/wgpu"
)

// FireballPipelineKey is the cache key of the default fireball render pipeline.
const FireballPipelineKey = "fireball"

// uniformBinding is the binding of the FireballUniforms buffer in group 0.
const uniformBinding = 0

// Renderer is the subset of renderer.Renderer a Scene draws through.
type Renderer interface {
	RegisterPipelines(pipelines ...pipeline.Pipeline) error
	InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error
	InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor) error
	WriteBuffers(writes []bind_group_provider.BufferWrite)
	BeginFrame() error
	DrawCall(pipelineKey string, meshProvider bind_group_provider.BindGroupProvider, bindGroups []bind_group_provider.BindGroupProvider) error
	EndFrame() error
	Present()
	Resize(width, height int) error
}

// Scene owns the GPU-side state of one fireball: the render pipeline, the uniform
// buffer and the mesh buffers. It is the render target the frame driver draws into.
type Scene interface {
	driver.Target

	// Name returns the scene's identifier, used as the prefix of GPU resource labels.
	Name() string

	// Pipeline returns the render pipeline the scene draws with.
	Pipeline() pipeline.Pipeline

	// MeshLoaded reports whether a mesh has been uploaded.
	MeshLoaded() bool

	// IndexCount returns the number of indices of the uploaded mesh, or 0.
	IndexCount() int

	// Release frees the mesh and uniform buffers. The scene must not be drawn afterwards.
	Release()
}

type scene struct {
	mu *sync.Mutex

	name     string
	renderer Renderer
	pipeline pipeline.Pipeline

	uniforms     bind_group_provider.BindGroupProvider
	meshProvider bind_group_provider.BindGroupProvider
	uploads      int
	released     bool
}

var _ Scene = &scene{}

// NewFireballPipeline builds the fireball render pipeline from the embedded vertex and
// fragment shaders. The pipeline is not registered with any renderer.
//
// Parameters:
//   - key: the pipeline cache key
//   - opts: additional pipeline options applied after the shaders
//
// Returns:
//   - pipeline.Pipeline: the pipeline description
//   - error: an error wrapping common.ErrFatalInit if a shader does not preprocess
func NewFireballPipeline(key string, opts ...pipeline.PipelineBuilderOption) (pipeline.Pipeline, error) {
	vs, err := shader.NewShader(key+"_vertex", shader.ShaderTypeVertex, shading.VertexShaderSource)
	if err != nil {
		return nil, err
	}
	fs, err := shader.NewShader(key+"_fragment", shader.ShaderTypeFragment, shading.FragmentShaderSource)
	if err != nil {
		return nil, err
	}
	all := append([]pipeline.PipelineBuilderOption{
		pipeline.WithVertexShader(vs),
		pipeline.WithFragmentShader(fs),
		pipeline.WithBlendEnabled(false),
	}, opts...)
	return pipeline.NewPipeline(key, all...)
}

// NewScene creates a Scene, registers its pipeline with r and allocates the uniform buffer.
// Without WithPipeline the pipeline comes from NewFireballPipeline.
//
// Parameters:
//   - name: the scene's identifier
//   - r: the renderer to draw through
//   - options: functional options
//
// Returns:
//   - Scene: the new scene, with no mesh loaded
//   - error: an error wrapping common.ErrFatalInit if the pipeline or uniform buffer cannot be created
func NewScene(name string, r Renderer, options ...SceneBuilderOption) (Scene, error) {
	if r == nil {
		return nil, fmt.Errorf("scene %s: no renderer: %w", name, common.ErrFatalInit)
	}
	s := &scene{
		mu:       &sync.Mutex{},
		name:     name,
		renderer: r,
	}
	for _, opt := range options {
		opt(s)
	}

	if s.pipeline == nil {
		p, err := NewFireballPipeline(FireballPipelineKey)
		if err != nil {
			return nil, fmt.Errorf("scene %s: %w", name, err)
		}
		s.pipeline = p
	}
	if err := r.RegisterPipelines(s.pipeline); err != nil {
		return nil, fmt.Errorf("scene %s: %w", name, err)
	}

	desc, ok := s.pipeline.BindGroupLayouts()[0]
	if !ok {
		return nil, fmt.Errorf("scene %s: pipeline %s declares no uniform group: %w",
			name, s.pipeline.PipelineKey(), common.ErrFatalInit)
	}
	s.uniforms = bind_group_provider.NewBindGroupProvider(name + " Uniforms")
	if err := r.InitBindGroup(s.uniforms, desc); err != nil {
		return nil, fmt.Errorf("scene %s: uniforms: %w: %w", name, common.ErrFatalInit, err)
	}
	return s, nil
}

func (s *scene) Name() string {
	return s.name
}

func (s *scene) Pipeline() pipeline.Pipeline {
	return s.pipeline
}

func (s *scene) MeshLoaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.meshProvider != nil
}

func (s *scene) IndexCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.meshProvider == nil {
		return 0
	}
	return s.meshProvider.IndexCount()
}

func (s *scene) UploadMesh(m *mesh.Mesh) error {
	if m == nil {
		return fmt.Errorf("scene %s: nil mesh: %w", s.name, common.ErrGeometryInput)
	}
	if err := m.Validate(); err != nil {
		return fmt.Errorf("scene %s: %w", s.name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return fmt.Errorf("scene %s: released", s.name)
	}

	s.uploads++
	provider := bind_group_provider.NewBindGroupProvider(fmt.Sprintf("%s Mesh %d", s.name, s.uploads))
	if err := s.renderer.InitMeshBuffers(provider, m.VertexData(), m.IndexData(), m.IndexCount()); err != nil {
		provider.Release()
		return fmt.Errorf("scene %s: upload: %w", s.name, err)
	}

	if s.meshProvider != nil {
		s.meshProvider.Release()
	}
	s.meshProvider = provider
	log.Printf("[Scene] %s: uploaded %d vertices, %d triangles", s.name, m.VertexCount(), m.TriangleCount())
	return nil
}

func (s *scene) Draw(u shading.GPUFireballUniforms) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.released {
		return fmt.Errorf("scene %s: released", s.name)
	}
	if s.meshProvider == nil {
		return fmt.Errorf("scene %s: no mesh uploaded", s.name)
	}

	s.renderer.WriteBuffers([]bind_group_provider.BufferWrite{{
		Provider: s.uniforms,
		Binding:  uniformBinding,
		Data:     u.Marshal(),
	}})

	if err := s.renderer.BeginFrame(); err != nil {
		return fmt.Errorf("scene %s: begin frame: %w", s.name, err)
	}
	drawErr := s.renderer.DrawCall(s.pipeline.PipelineKey(), s.meshProvider,
		[]bind_group_provider.BindGroupProvider{s.uniforms})
	// The frame is always closed so the surface texture is handed back.
	endErr := s.renderer.EndFrame()
	s.renderer.Present()
	return errors.Join(drawErr, endErr)
}

func (s *scene) Resize(width, height int) error {
	return s.renderer.Resize(width, height)
}

func (s *scene) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.released {
		return
	}
	s.released = true
	if s.meshProvider != nil {
		s.meshProvider.Release()
		s.meshProvider = nil
	}
	if s.uniforms != nil {
		s.uniforms.Release()
	}
}
