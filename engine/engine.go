package engine

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-widget/common"
	"github.com/Carmen-Shannon/oxy-widget/engine/animator"
	"github.com/Carmen-Shannon/oxy-widget/engine/config"
	"github.com/Carmen-Shannon/oxy-widget/engine/hook"
	"github.com/Carmen-Shannon/oxy-widget/engine/profiler"
	"github.com/Carmen-Shannon/oxy-widget/engine/renderer"
	"github.com/Carmen-Shannon/oxy-widget/engine/window"
)

// DefaultEvictInterval is the number of frames between texture cache eviction passes.
const DefaultEvictInterval = 600

// engine implements the Engine interface.
// Everything runs on the window thread inside the window's update callback.
type engine struct {
	window    window.Window
	renderer  renderer.Renderer
	pose      renderer.FrameSource
	sequencer animator.Sequencer

	globalKeys <-chan hook.Event

	opacity int

	profiler         *profiler.Profiler
	profilingEnabled bool

	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped
	evictInterval    int
	frames           int

	quitOnce sync.Once
	err      error
}

// Engine runs the widget: it feeds key input to the sequencer and renders the pose every frame.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Renderer returns the renderer drawing the pose.
	Renderer() renderer.Renderer

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetRenderFrameLimit sets an optional render frame rate cap in frames per second.
	// Pass 0 to uncap the render loop (default).
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// SetOpacity sets the global opacity percentage, clamped to [10, 100].
	SetOpacity(percent int)

	// Opacity returns the global opacity percentage.
	Opacity() int

	// Run processes window messages and renders until the window closes or Quit is called.
	Run()

	// Quit asks the window to close. Safe to call multiple times.
	Quit()

	// Err returns the fatal error that stopped the loop, or nil.
	Err() error
}

var _ Engine = &engine{}

// NewEngine creates a new Engine and wires the window callbacks to the sequencer and renderer.
// A window and a renderer are required.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		opacity:       100,
		profiler:      profiler.NewProfiler(),
		evictInterval: DefaultEvictInterval,
	}

	for _, opt := range options {
		opt(e)
	}

	if e.window == nil || e.renderer == nil {
		panic("engine: a window and a renderer are required")
	}

	e.window.SetResizeCallback(func(width, height int) {
		e.renderer.Resize(width, height)
	})
	if e.sequencer != nil {
		e.window.SetKeyDownCallback(func(key common.Key) {
			e.sequencer.KeyDown(key)
		})
		e.window.SetKeyUpCallback(func(key common.Key) {
			e.sequencer.KeyUp(key)
		})
		e.window.SetModifiersCallback(e.sequencer.SetModifiers)
	}
	e.window.SetUpdateCallback(e.frame)

	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Renderer() renderer.Renderer {
	return e.renderer
}

func (e *engine) Run() {
	e.window.ProcessMessages()
}

// Quit requests the window to close.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.quitOnce.Do(e.window.RequestClose)
}

func (e *engine) Err() error {
	return e.err
}

// frame runs one loop iteration after the window has polled its events.
// Recovers from panics to avoid crashing the process and quits on recovery.
func (e *engine) frame() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("render loop recovered from panic: %v", r)
			e.err = fmt.Errorf("render loop panic: %v", r)
			e.Quit()
		}
	}()

	start := time.Now()

	e.drainGlobalKeys()

	e.renderer.Update()
	if e.pose != nil {
		e.handleFrameError(e.renderer.RenderFrame(e.pose, float32(e.opacity)/100))
	}

	if e.profilingEnabled && e.profiler != nil {
		e.profiler.Tick(e.renderer.LastDrawCalls())
	}

	e.frames++
	if e.evictInterval > 0 && e.frames%e.evictInterval == 0 {
		if n := e.renderer.EvictTextures(); n > 0 {
			log.Printf("evicted %d textures", n)
		}
	}

	// Frame rate limiting
	if e.renderFrameLimit > 0 {
		if remaining := e.renderFrameLimit - time.Since(start); remaining > 0 {
			time.Sleep(remaining)
		}
	}
}

// drainGlobalKeys forwards every pending global hook event to the sequencer without blocking.
func (e *engine) drainGlobalKeys() {
	if e.globalKeys == nil {
		return
	}
	for {
		select {
		case ev, ok := <-e.globalKeys:
			if !ok {
				e.globalKeys = nil
				return
			}
			if e.sequencer != nil {
				e.sequencer.HandleEvent(ev)
			}
		default:
			return
		}
	}
}

// handleFrameError applies the frame failure policy: recoverable surface errors reconfigure the
// surface, fatal errors stop the loop and everything else drops the frame.
func (e *engine) handleFrameError(err error) {
	switch {
	case err == nil:
	case renderer.IsFatal(err):
		log.Printf("fatal render error: %v", err)
		e.err = err
		e.Quit()
	case renderer.IsRecoverable(err):
		e.renderer.Resize(e.window.Width(), e.window.Height())
	default:
		log.Printf("dropped frame: %v", err)
	}
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

// SetRenderFrameLimit sets an optional render frame rate cap.
// Pass 0 to uncap the render loop.
func (e *engine) SetRenderFrameLimit(fps float64) {
	e.renderFrameLimit = frameDuration(fps)
}

func (e *engine) SetOpacity(percent int) {
	e.opacity = config.ClampOpacity(percent)
}

func (e *engine) Opacity() int {
	return e.opacity
}

func frameDuration(fps float64) time.Duration {
	if fps <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / fps)
}
