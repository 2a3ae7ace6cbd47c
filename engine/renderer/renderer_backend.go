package renderer

import "github.com/cogentcore/webgpu/wgpu"

// RendererBackendType identifies the GPU backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based rendering backend.
	BackendTypeWGPU RendererBackendType = iota
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately. May tear.
	PresentModeUncapped
)

// MSAASampleCount is the number of samples per pixel used for multisample anti-aliasing.
// WebGPU guarantees support for 1 and 4.
type MSAASampleCount uint32

const (
	// MSAAOff disables multisampling.
	MSAAOff MSAASampleCount = 1

	// MSAA4x enables 4x multisampling. This is the default.
	MSAA4x MSAASampleCount = 4
)

// DefaultClearColor is the near-black blue behind the fireball.
var DefaultClearColor = wgpu.Color{R: 0, G: 0, B: 0.05, A: 1}

// RendererBackend is the top-level backend interface for the Renderer.
type RendererBackend interface {
	wgpuRendererBackend
}
