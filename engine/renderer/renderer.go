package renderer

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-fireball/common"
	"github.com/Carmen-Shannon/oxy-fireball/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-fireball/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

// Surface is the window side of the renderer: a platform surface descriptor and the
// framebuffer size. window.Window satisfies it.
type Surface interface {
	SurfaceDescriptor() *wgpu.SurfaceDescriptor
	Width() int
	Height() int
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	pipelineCache map[string]pipeline.Pipeline

	backendType RendererBackendType
	backend     RendererBackend

	// Configuration collected from builder options before the backend exists.
	forceFallbackAdapter bool
	presentMode          PresentMode
	sampleCount          MSAASampleCount
	clearColor           wgpu.Color
}

// Renderer is the high-level drawing API. It owns the GPU device and surface, caches pipelines
// by key, creates buffers and bind groups for providers, and records one render pass per frame.
//
// A frame is BeginFrame, any number of DrawCall, EndFrame, then Present.
type Renderer interface {
	// Pipeline returns the cached pipeline for key, or nil.
	Pipeline(key string) pipeline.Pipeline

	// RegisterPipelines creates the GPU objects of each pipeline and caches it by key.
	// Pipelines whose key is already cached are skipped.
	//
	// Parameters:
	//   - pipelines: the pipelines to register
	//
	// Returns:
	//   - error: an error wrapping common.ErrFatalInit if shader compilation or pipeline creation fails
	RegisterPipelines(pipelines ...pipeline.Pipeline) error

	// Resize reconfigures the surface and the attachments for a new framebuffer size.
	// Zero or negative sizes (a minimized window) are ignored.
	//
	// Parameters:
	//   - width: the new width in pixels
	//   - height: the new height in pixels
	//
	// Returns:
	//   - error: an error if the attachments could not be recreated
	Resize(width, height int) error

	// SetPresentMode changes the present mode. Takes effect on the next Resize.
	SetPresentMode(mode PresentMode)

	// SetClearColor changes the color frames are cleared to.
	SetClearColor(c wgpu.Color)

	// ClearColor returns the current clear color.
	ClearColor() wgpu.Color

	// InitMeshBuffers uploads vertex and index data into new GPU buffers stored on provider.
	//
	// Parameters:
	//   - provider: receives the vertex buffer, index buffer and index count
	//   - vertexData: raw vertex bytes
	//   - indexData: raw uint32 index bytes
	//   - indexCount: the number of indices in indexData
	//
	// Returns:
	//   - error: an error if buffer creation fails; provider is left without buffers
	InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error

	// InitBindGroup creates the buffers and bind group described by descriptor on provider.
	// Buffers are sized from each entry's MinBindingSize.
	//
	// Parameters:
	//   - provider: receives the layout, buffers and bind group
	//   - descriptor: the layout of the group, as parsed from the shaders
	//
	// Returns:
	//   - error: an error if resource creation fails
	InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor) error

	// WriteBuffers queues every staged write. Writes to unknown bindings are skipped.
	WriteBuffers(writes []bind_group_provider.BufferWrite)

	// BeginFrame acquires the next surface texture and begins the render pass.
	//
	// Returns:
	//   - error: an error if the surface texture could not be acquired
	BeginFrame() error

	// DrawCall draws the mesh held by meshProvider with the cached pipeline.
	// bindGroups are bound in order starting at group 0.
	//
	// Parameters:
	//   - pipelineKey: the key of a registered pipeline
	//   - meshProvider: holds the vertex and index buffers
	//   - bindGroups: providers whose bind groups are set on the pass
	//
	// Returns:
	//   - error: an error if the pipeline is unknown, no frame is open, or the mesh has no buffers
	DrawCall(pipelineKey string, meshProvider bind_group_provider.BindGroupProvider, bindGroups []bind_group_provider.BindGroupProvider) error

	// EndFrame ends the render pass and submits the recorded commands.
	EndFrame() error

	// Present shows the frame and releases the surface texture.
	Present()

	// Release frees the device, the surface and every cached pipeline.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a renderer drawing into the given surface.
//
// Parameters:
//   - backendType: the GPU backend (only BackendTypeWGPU exists)
//   - surface: the window to draw into
//   - options: functional options to configure the renderer
//
// Returns:
//   - Renderer: the renderer with its surface configured at the window size
//   - error: an error wrapping common.ErrFatalInit if no adapter, device or surface is available
func NewRenderer(backendType RendererBackendType, surface Surface, options ...RendererBuilderOption) (Renderer, error) {
	if surface == nil || surface.SurfaceDescriptor() == nil {
		return nil, fmt.Errorf("renderer: no surface to draw into: %w", common.ErrFatalInit)
	}

	r := &renderer{
		mu:            &sync.Mutex{},
		pipelineCache: make(map[string]pipeline.Pipeline),
		backendType:   backendType,
		presentMode:   PresentModeVSync,
		sampleCount:   MSAA4x,
		clearColor:    DefaultClearColor,
	}

	// Options are applied first so the adapter request sees forceFallbackAdapter.
	for _, opt := range options {
		opt(r)
	}

	switch backendType {
	case BackendTypeWGPU:
		backend, err := newWGPURendererBackend(surface.SurfaceDescriptor(), r.forceFallbackAdapter, r.sampleCount)
		if err != nil {
			return nil, fmt.Errorf("renderer: %w: %w", common.ErrFatalInit, err)
		}
		r.backend = backend
	default:
		return nil, fmt.Errorf("renderer: unknown backend %d: %w", backendType, common.ErrFatalInit)
	}

	r.backend.SetPresentMode(r.presentMode)
	r.backend.SetClearColor(r.clearColor)
	if err := r.backend.ConfigureSurface(surface.Width(), surface.Height()); err != nil {
		r.backend.Release()
		return nil, fmt.Errorf("renderer: %w: %w", common.ErrFatalInit, err)
	}
	return r, nil
}

func (r *renderer) Pipeline(key string) pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipelineCache[key]
}

func (r *renderer) RegisterPipelines(pipelines ...pipeline.Pipeline) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range pipelines {
		key := p.PipelineKey()
		if _, exists := r.pipelineCache[key]; exists {
			continue
		}
		if err := r.backend.RegisterRenderPipeline(p); err != nil {
			return fmt.Errorf("renderer: pipeline %s: %w: %w", key, common.ErrFatalInit, err)
		}
		r.pipelineCache[key] = p
	}
	return nil
}

func (r *renderer) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return nil
	}
	return r.backend.ConfigureSurface(width, height)
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.backend.SetPresentMode(mode)
}

func (r *renderer) SetClearColor(c wgpu.Color) {
	r.mu.Lock()
	r.clearColor = c
	r.mu.Unlock()
	r.backend.SetClearColor(c)
}

func (r *renderer) ClearColor() wgpu.Color {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.clearColor
}

func (r *renderer) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error {
	return r.backend.InitMeshBuffers(provider, vertexData, indexData, indexCount)
}

func (r *renderer) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor) error {
	return r.backend.InitBindGroup(provider, descriptor)
}

func (r *renderer) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	r.backend.WriteBuffers(writes)
}

func (r *renderer) BeginFrame() error {
	return r.backend.BeginFrame()
}

func (r *renderer) DrawCall(pipelineKey string, meshProvider bind_group_provider.BindGroupProvider, bindGroups []bind_group_provider.BindGroupProvider) error {
	r.mu.Lock()
	p, exists := r.pipelineCache[pipelineKey]
	r.mu.Unlock()

	if !exists {
		return fmt.Errorf("render pipeline %q not found in cache", pipelineKey)
	}
	return r.backend.DrawCall(p, meshProvider, bindGroups)
}

func (r *renderer) EndFrame() error {
	return r.backend.EndFrame()
}

func (r *renderer) Present() {
	r.backend.Present()
}

func (r *renderer) Release() {
	r.mu.Lock()
	for key, p := range r.pipelineCache {
		p.Release()
		delete(r.pipelineCache, key)
	}
	r.mu.Unlock()
	r.backend.Release()
}
