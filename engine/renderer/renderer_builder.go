package renderer

import "time"

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithPresentMode sets the surface present mode which controls how frames are delivered to the display.
//
// Parameters:
//   - mode: the PresentMode to use (VSync or Uncapped)
//
// Returns:
//   - RendererBuilderOption: a function that applies the present mode option to a renderer
func WithPresentMode(mode PresentMode) RendererBuilderOption {
	return func(r *renderer) {
		r.pendingPresentMode = &mode
	}
}

// WithForceSoftwareRenderer forces WGPU to use a CPU/software fallback adapter instead of
// hardware GPU acceleration. This requires a software Vulkan ICD to be installed on the system
// (e.g. SwiftShader or lavapipe).
//
// Parameters:
//   - force: true to force the software fallback adapter, false to use hardware (default)
//
// Returns:
//   - RendererBuilderOption: a function that applies the force software renderer option to a renderer
func WithForceSoftwareRenderer(force bool) RendererBuilderOption {
	return func(r *renderer) {
		r.forceFallbackAdapter = force
	}
}

// WithBackend uses b instead of creating a backend for the backend type.
//
// Parameters:
//   - b: the backend to render with
//
// Returns:
//   - RendererBuilderOption: a function that applies the backend option to a renderer
func WithBackend(b RendererBackend) RendererBuilderOption {
	return func(r *renderer) {
		r.backend = b
	}
}

// WithScale sets the initial skeleton scale.
func WithScale(scale float32) RendererBuilderOption {
	return func(r *renderer) {
		r.scale = scale
	}
}

// WithBottomOffset sets the initial distance in pixels from the window bottom to the skeleton origin.
func WithBottomOffset(offset float32) RendererBuilderOption {
	return func(r *renderer) {
		r.bottomOffset = offset
	}
}

// WithBufferSize sets the byte size of each fixed GPU buffer. A batch larger than this fails
// with ErrBatchTooLarge. Defaults to DefaultBufferSize.
//
// Parameters:
//   - size: the buffer size in bytes, rounded up to a multiple of 4
//
// Returns:
//   - RendererBuilderOption: a function that applies the buffer size option to a renderer
func WithBufferSize(size uint64) RendererBuilderOption {
	return func(r *renderer) {
		if size > 0 {
			r.bufferSize = (size + 3) &^ 3
		}
	}
}

// WithClock replaces the wall clock used to measure frame deltas.
func WithClock(now func() time.Time) RendererBuilderOption {
	return func(r *renderer) {
		if now != nil {
			r.clock = now
		}
	}
}
