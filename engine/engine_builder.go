package engine

import (
	"github.com/Carmen-Shannon/oxy-widget/engine/animator"
	"github.com/Carmen-Shannon/oxy-widget/engine/config"
	"github.com/Carmen-Shannon/oxy-widget/engine/hook"
	"github.com/Carmen-Shannon/oxy-widget/engine/profiler"
	"github.com/Carmen-Shannon/oxy-widget/engine/renderer"
	"github.com/Carmen-Shannon/oxy-widget/engine/window"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithProfiler replaces the default profiler.
func WithProfiler(p *profiler.Profiler) EngineBuilderOption {
	return func(e *engine) {
		e.profiler = p
	}
}

// WithWindow sets the window the engine polls and renders into.
//
// Parameters:
//   - w: a pre-configured Window instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithRenderer sets the renderer that presents the pose to the window surface.
func WithRenderer(r renderer.Renderer) EngineBuilderOption {
	return func(e *engine) {
		e.renderer = r
	}
}

// WithPose sets the skeleton drawn every frame.
func WithPose(source renderer.FrameSource) EngineBuilderOption {
	return func(e *engine) {
		e.pose = source
	}
}

// WithSequencer sets the sequencer receiving window and global key input.
func WithSequencer(s animator.Sequencer) EngineBuilderOption {
	return func(e *engine) {
		e.sequencer = s
	}
}

// WithGlobalKeys sets the channel of global hook events drained at the start of every frame.
//
// Parameters:
//   - events: the channel passed to hook.Install
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithGlobalKeys(events <-chan hook.Event) EngineBuilderOption {
	return func(e *engine) {
		e.globalKeys = events
	}
}

// WithOpacity sets the initial opacity percentage, clamped to [10, 100].
func WithOpacity(percent int) EngineBuilderOption {
	return func(e *engine) {
		e.opacity = config.ClampOpacity(percent)
	}
}

// WithEvictInterval sets how many frames pass between texture eviction passes. 0 disables eviction.
func WithEvictInterval(frames int) EngineBuilderOption {
	return func(e *engine) {
		e.evictInterval = max(frames, 0)
	}
}

// WithRenderFrameLimit sets an optional render frame rate cap in frames per second.
// Pass 0 to uncap the render loop (default).
//
// Parameters:
//   - fps: maximum render frames per second (0 = uncapped)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		e.renderFrameLimit = frameDuration(fps)
	}
}
