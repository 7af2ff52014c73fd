package renderer

import (
	"errors"
	"fmt"
	"time"

	"github.com/Carmen-Shannon/oxy-widget/engine/renderer/buffer"
	"github.com/Carmen-Shannon/oxy-widget/engine/renderer/tessellator"
	"github.com/Carmen-Shannon/oxy-widget/engine/renderer/texture"
	"github.com/cogentcore/webgpu/wgpu"
	"honnef.co/go/safeish"
)

// FrameState is the stage a frame reached inside RenderFrame.
type FrameState int

// Frame states in the order RenderFrame visits them.
const (
	FrameIdle FrameState = iota
	FramePosing
	FrameTessellating
	FramePadding
	FrameSubmitting
	FramePresented
)

func (s FrameState) String() string {
	switch s {
	case FrameIdle:
		return "idle"
	case FramePosing:
		return "posing"
	case FrameTessellating:
		return "tessellating"
	case FramePadding:
		return "padding"
	case FrameSubmitting:
		return "submitting"
	case FramePresented:
		return "presented"
	default:
		return fmt.Sprintf("FrameState(%d)", int(s))
	}
}

// FrameSource is a pose provider that can be advanced in time.
type FrameSource interface {
	tessellator.PoseSource

	// Advance moves the pose forward by delta seconds.
	Advance(delta float32)
}

// Surface is the window the renderer presents to.
type Surface interface {
	SurfaceDescriptor() *wgpu.SurfaceDescriptor
	Width() int
	Height() int
	ContentScale() float32
}

// errReleased is returned by RenderFrame after Release.
var errReleased = errors.New("renderer released")

// renderer is the implementation of the Renderer interface.
type renderer struct {
	backendType RendererBackendType
	backend     RendererBackend
	surface     Surface

	textures *texture.Cache
	buffers  *buffer.ScratchBuffers
	tess     *tessellator.Tessellator
	scaling  *ScalingState

	state         FrameState
	clock         func() time.Time
	lastFrame     time.Time
	lastDrawCalls int
	lastEmitted   int
	pending       []pendingDraw
	released      bool

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	pendingPresentMode   *PresentMode
	bufferSize           uint64
	scale                float32
	bottomOffset         float32
}

// pendingDraw is one padded batch ready for submission.
type pendingDraw struct {
	vertexData []byte
	indexData  []byte
	indexCount uint32
	resource   texture.Resource
}

// Renderer draws a posed skeleton onto a transparent window surface.
//
// Every frame walks the states Idle, Posing, Tessellating, Padding, Submitting and Presented.
// Geometry is grouped by texture; each group becomes its own upload, render pass and submission
// through fixed-size GPU buffers.
//
// Renderer is not safe for concurrent use.
type Renderer interface {
	// RenderFrame advances source by the time since the previous frame, tessellates it and
	// presents the result. On failure the acquired surface texture is released unpresented.
	//
	// Parameters:
	//   - source: the skeleton to draw
	//   - opacity: the global opacity factor in [0, 1]
	//
	// Returns:
	//   - error: a wrapped ErrSurfaceLost, ErrSurfaceOutdated, ErrOutOfMemory, ErrBatchTooLarge or backend error
	RenderFrame(source FrameSource, opacity float32) error

	// State returns the last state reached by RenderFrame.
	//
	// Returns:
	//   - FrameState: FramePresented after a successful frame, or the state where a frame failed
	State() FrameState

	// Update uploads the scaling uniform if it changed.
	Update()

	// Resize reconfigures the surface for a new framebuffer size and updates the logical window
	// size in the scaling uniform. Zero sizes, as reported for minimized windows, are ignored.
	//
	// Parameters:
	//   - width: the new framebuffer width in pixels
	//   - height: the new framebuffer height in pixels
	Resize(width, height int)

	// Scaling returns the scaling uniform state.
	//
	// Returns:
	//   - *ScalingState: the scaling state; mutations are uploaded on the next frame
	Scaling() *ScalingState

	// Textures returns the texture cache.
	//
	// Returns:
	//   - *texture.Cache: the cache holding the GPU resources of every registered texture
	Textures() *texture.Cache

	// LastDrawCalls returns the number of draw calls submitted by the last presented frame.
	LastDrawCalls() int

	// LastAttachments returns the number of attachments tessellated by the last frame.
	LastAttachments() int

	// EvictTextures releases the GPU resources of textures whose images were collected.
	//
	// Returns:
	//   - int: the number of evicted textures
	EvictTextures() int

	// Release frees the texture cache and the backend.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a Renderer presenting to surface.
//
// Parameters:
//   - backendType: the type of rendering backend to use (e.g., WGPU)
//   - surface: the window to present to
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: the configured renderer
//   - error: an error if no GPU adapter or device could be obtained
func NewRenderer(backendType RendererBackendType, surface Surface, options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		backendType: backendType,
		surface:     surface,
		buffers:     buffer.NewScratchBuffers(),
		clock:       time.Now,
		bufferSize:  DefaultBufferSize,
		scale:       1,
	}

	// Apply options first so config flags (e.g. forceFallbackAdapter) are
	// available before the backend requests a GPU adapter.
	for _, opt := range options {
		opt(r)
	}

	if r.backend == nil {
		switch backendType {
		case BackendTypeWGPU:
			fallthrough
		default:
			b, err := newWGPURendererBackend(surface.SurfaceDescriptor(), r.forceFallbackAdapter, r.bufferSize)
			if err != nil {
				return nil, fmt.Errorf("failed to create wgpu backend: %w", err)
			}
			r.backend = b
		}
	}

	if r.pendingPresentMode != nil {
		r.backend.SetPresentMode(*r.pendingPresentMode)
	}

	r.scaling = NewScalingState(r.scale, r.bottomOffset)
	r.textures = texture.NewCache(r.backend)
	r.tess = tessellator.NewTessellator(r.textures, r.buffers)
	r.Resize(surface.Width(), surface.Height())
	r.Update()
	return r, nil
}

func (r *renderer) RenderFrame(source FrameSource, opacity float32) error {
	if r.released {
		return errReleased
	}

	r.state = FramePosing
	now := r.clock()
	var dt float32
	if !r.lastFrame.IsZero() {
		dt = float32(now.Sub(r.lastFrame).Seconds())
	}
	r.lastFrame = now
	source.Advance(dt)

	r.state = FrameTessellating
	r.lastEmitted = r.tess.Tessellate(source, opacity)

	r.state = FramePadding
	r.pending = r.pending[:0]
	for batch := range r.buffers.All() {
		buffer.Pad4(batch.Vertices)
		count := buffer.Pad4(batch.Indices)
		res, ok := r.textures.Resource(batch.TextureID)
		if !ok {
			continue
		}
		r.pending = append(r.pending, pendingDraw{
			vertexData: safeish.SliceCast[[]byte](*batch.Vertices),
			indexData:  safeish.SliceCast[[]byte](*batch.Indices),
			indexCount: uint32(count),
			resource:   res,
		})
	}

	r.state = FrameSubmitting
	r.Update()
	if err := r.backend.BeginFrame(); err != nil {
		r.buffers.Clear()
		return fmt.Errorf("failed to acquire frame: %w", err)
	}
	if len(r.pending) == 0 {
		if err := r.backend.ClearFrame(); err != nil {
			return r.abandon(fmt.Errorf("failed to clear frame: %w", err))
		}
	}
	for i, draw := range r.pending {
		if err := r.backend.DrawBatch(draw.vertexData, draw.indexData, draw.indexCount, draw.resource, i == 0); err != nil {
			return r.abandon(fmt.Errorf("failed to draw batch %d of %d: %w", i+1, len(r.pending), err))
		}
	}

	r.backend.Present()
	r.state = FramePresented
	r.lastDrawCalls = len(r.pending)
	r.pending = r.pending[:0]
	r.buffers.Clear()
	return nil
}

// abandon discards the acquired frame and the tessellated geometry.
func (r *renderer) abandon(err error) error {
	r.backend.DiscardFrame()
	r.pending = r.pending[:0]
	r.buffers.Clear()
	return err
}

func (r *renderer) State() FrameState {
	return r.state
}

func (r *renderer) Update() {
	r.scaling.Flush(r.backend.WriteUniform)
}

func (r *renderer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	r.backend.ConfigureSurface(width, height)
	r.scaling.Resize(width, height, r.surface.ContentScale())
}

func (r *renderer) Scaling() *ScalingState {
	return r.scaling
}

func (r *renderer) Textures() *texture.Cache {
	return r.textures
}

func (r *renderer) LastDrawCalls() int {
	return r.lastDrawCalls
}

func (r *renderer) LastAttachments() int {
	return r.lastEmitted
}

func (r *renderer) EvictTextures() int {
	return r.textures.Evict()
}

func (r *renderer) Release() {
	if r.released {
		return
	}
	r.released = true
	r.textures.Release()
	r.backend.Release()
}
