package renderer

import (
	"github.com/Carmen-Shannon/oxy-widget/engine/renderer/texture"
)

// RendererBackendType identifies the GPU backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based rendering backend.
	BackendTypeWGPU RendererBackendType = iota
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// DefaultBufferSize is the byte size of each of the fixed vertex and index buffers.
const DefaultBufferSize = 1024 * 128

// RendererBackend is the GPU API behind the Renderer. A frame is BeginFrame, then either
// ClearFrame or one DrawBatch per batch, then Present. DiscardFrame abandons an acquired frame.
type RendererBackend interface {
	texture.Factory

	// ConfigureSurface (re)configures the swapchain for a framebuffer size.
	//
	// Parameters:
	//   - width: the framebuffer width in pixels
	//   - height: the framebuffer height in pixels
	ConfigureSurface(width, height int)

	// SetPresentMode sets the present mode used by the next ConfigureSurface.
	//
	// Parameters:
	//   - mode: the PresentMode to use
	SetPresentMode(mode PresentMode)

	// WriteUniform uploads the encoded scaling uniform.
	//
	// Parameters:
	//   - data: GPUScalingUniformSize bytes
	WriteUniform(data []byte)

	// BeginFrame acquires the next surface texture.
	//
	// Returns:
	//   - error: ErrSurfaceLost, ErrSurfaceOutdated or ErrOutOfMemory wrapped with the cause
	BeginFrame() error

	// ClearFrame encodes and submits a pass that only clears the frame to transparent.
	//
	// Returns:
	//   - error: an error if encoding failed
	ClearFrame() error

	// DrawBatch uploads one batch into the fixed buffers, then encodes and submits a render pass
	// with a single indexed draw.
	//
	// Parameters:
	//   - vertexData: the padded vertex bytes
	//   - indexData: the padded uint16 index bytes
	//   - indexCount: the number of indices to draw, before padding
	//   - tex: the resource created by CreateTexture for the batch texture
	//   - clear: true to clear the frame to transparent first, false to load the previous contents
	//
	// Returns:
	//   - error: ErrBatchTooLarge when the data does not fit, or an encoding error
	DrawBatch(vertexData, indexData []byte, indexCount uint32, tex texture.Resource, clear bool) error

	// Present shows the acquired frame and releases it.
	Present()

	// DiscardFrame releases the acquired frame without presenting it.
	DiscardFrame()

	// Release frees every GPU object owned by the backend.
	Release()
}
