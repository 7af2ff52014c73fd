package renderer

import (
	"errors"
	"iter"
	"slices"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-widget/common"
	"github.com/Carmen-Shannon/oxy-widget/engine/pose"
	"github.com/Carmen-Shannon/oxy-widget/engine/renderer/texture"
	"github.com/cogentcore/webgpu/wgpu"
)

type fakeResource struct {
	label    string
	released int
}

func (r *fakeResource) Release() { r.released++ }

type drawCall struct {
	vertexBytes int
	indexBytes  int
	indexCount  uint32
	label       string
	clear       bool
}

type fakeBackend struct {
	calls       []string
	draws       []drawCall
	uniforms    [][]byte
	configured  [][2]int
	presentMode PresentMode
	resources   []*fakeResource

	beginErr error
	drawErr  error
	released int
}

func (b *fakeBackend) CreateTexture(label string, _ common.TextureStagingData, _ common.SamplerStagingData) (texture.Resource, error) {
	res := &fakeResource{label: label}
	b.resources = append(b.resources, res)
	return res, nil
}

func (b *fakeBackend) ConfigureSurface(width, height int) {
	b.configured = append(b.configured, [2]int{width, height})
}

func (b *fakeBackend) SetPresentMode(mode PresentMode) { b.presentMode = mode }

func (b *fakeBackend) WriteUniform(data []byte) {
	b.uniforms = append(b.uniforms, slices.Clone(data))
}

func (b *fakeBackend) BeginFrame() error {
	b.calls = append(b.calls, "begin")
	return b.beginErr
}

func (b *fakeBackend) ClearFrame() error {
	b.calls = append(b.calls, "clear")
	return nil
}

func (b *fakeBackend) DrawBatch(vertexData, indexData []byte, indexCount uint32, tex texture.Resource, clear bool) error {
	b.calls = append(b.calls, "draw")
	if b.drawErr != nil {
		return b.drawErr
	}
	b.draws = append(b.draws, drawCall{
		vertexBytes: len(vertexData),
		indexBytes:  len(indexData),
		indexCount:  indexCount,
		label:       tex.(*fakeResource).label,
		clear:       clear,
	})
	return nil
}

func (b *fakeBackend) Present()      { b.calls = append(b.calls, "present") }
func (b *fakeBackend) DiscardFrame() { b.calls = append(b.calls, "discard") }
func (b *fakeBackend) Release()      { b.released++ }

type fakeSurface struct {
	width, height int
	contentScale  float32
}

func (s *fakeSurface) SurfaceDescriptor() *wgpu.SurfaceDescriptor { return nil }
func (s *fakeSurface) Width() int                                 { return s.width }
func (s *fakeSurface) Height() int                                { return s.height }
func (s *fakeSurface) ContentScale() float32                      { return s.contentScale }

type fakeSource struct {
	slots    []pose.PosedSlot
	advanced []float32
}

func (s *fakeSource) Tint() [4]float32                { return [4]float32{1, 1, 1, 1} }
func (s *fakeSource) Slots() iter.Seq[pose.PosedSlot] { return slices.Values(s.slots) }
func (s *fakeSource) Advance(delta float32)           { s.advanced = append(s.advanced, delta) }

func newTex(label string) *texture.Texture {
	img := &texture.Image{Pixels: make([]byte, 4), Width: 1, Height: 1}
	return texture.NewTexture(label, img, texture.DefaultTextureConfig)
}

func regionSlot(tex *texture.Texture) pose.PosedSlot {
	return pose.PosedSlot{
		Name: tex.Label(),
		Tint: [4]float32{1, 1, 1, 1},
		Attachment: &pose.PosedAttachment{
			Kind:          pose.AttachmentRegion,
			Texture:       tex,
			WorldVertices: []float32{0, 0, 0, 1, 1, 1, 1, 0},
			UVs:           []float32{0, 1, 0, 0, 1, 0, 1, 1},
		},
	}
}

// steppingClock advances by step on every call.
func steppingClock(step time.Duration) func() time.Time {
	now := time.Unix(1000, 0)
	return func() time.Time {
		now = now.Add(step)
		return now
	}
}

func newTestRenderer(t *testing.T, opts ...RendererBuilderOption) (Renderer, *fakeBackend) {
	t.Helper()
	b := &fakeBackend{}
	r, err := NewRenderer(BackendTypeWGPU, &fakeSurface{width: 400, height: 300, contentScale: 2}, append([]RendererBuilderOption{WithBackend(b)}, opts...)...)
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	return r, b
}

func TestNewRendererConfiguresSurface(t *testing.T) {
	r, b := newTestRenderer(t, WithPresentMode(PresentModeUncapped), WithScale(2), WithBottomOffset(10))

	if !slices.Equal(b.configured, [][2]int{{400, 300}}) {
		t.Errorf("got configure calls %v", b.configured)
	}
	if b.presentMode != PresentModeUncapped {
		t.Errorf("got present mode %d", b.presentMode)
	}
	if len(b.uniforms) != 1 {
		t.Fatalf("got %d uniform writes, want 1", len(b.uniforms))
	}
	want := GPUScalingUniform{WindowWidth: 200, WindowHeight: 150, Scale: 2, BottomOffset: 10}
	if got := r.Scaling().Uniform(); got != want {
		t.Errorf("got uniform %+v, want %+v", got, want)
	}
	if !slices.Equal(b.uniforms[0], want.Marshal()) {
		t.Errorf("uploaded bytes do not match the uniform")
	}
}

func TestRenderFrameBatches(t *testing.T) {
	r, b := newTestRenderer(t)
	a, c := newTex("a"), newTex("c")
	src := &fakeSource{slots: []pose.PosedSlot{regionSlot(a), regionSlot(a), regionSlot(c), regionSlot(a)}}

	if err := r.RenderFrame(src, 1); err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}
	if r.State() != FramePresented {
		t.Errorf("got state %s, want presented", r.State())
	}
	wantCalls := []string{"begin", "draw", "draw", "draw", "present"}
	if !slices.Equal(b.calls, wantCalls) {
		t.Fatalf("got calls %v, want %v", b.calls, wantCalls)
	}
	want := []drawCall{
		{vertexBytes: 8 * common.VertexSize, indexBytes: 12 * 2, indexCount: 12, label: "a", clear: true},
		{vertexBytes: 4 * common.VertexSize, indexBytes: 8 * 2, indexCount: 6, label: "c", clear: false},
		{vertexBytes: 4 * common.VertexSize, indexBytes: 8 * 2, indexCount: 6, label: "a", clear: false},
	}
	if !slices.Equal(b.draws, want) {
		t.Errorf("got draws %+v, want %+v", b.draws, want)
	}
	if r.LastDrawCalls() != 3 || r.LastAttachments() != 4 {
		t.Errorf("got %d draw calls and %d attachments", r.LastDrawCalls(), r.LastAttachments())
	}
	if r.Textures().Len() != 2 {
		t.Errorf("got %d cached textures, want 2", r.Textures().Len())
	}
}

func TestRenderFrameEmptyClears(t *testing.T) {
	r, b := newTestRenderer(t)
	if err := r.RenderFrame(&fakeSource{}, 1); err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}
	if want := []string{"begin", "clear", "present"}; !slices.Equal(b.calls, want) {
		t.Errorf("got calls %v, want %v", b.calls, want)
	}
	if r.LastDrawCalls() != 0 {
		t.Errorf("got %d draw calls", r.LastDrawCalls())
	}
}

func TestRenderFrameDelta(t *testing.T) {
	r, _ := newTestRenderer(t, WithClock(steppingClock(250*time.Millisecond)))
	src := &fakeSource{}
	for range 3 {
		if err := r.RenderFrame(src, 1); err != nil {
			t.Fatalf("RenderFrame: %v", err)
		}
	}
	if want := []float32{0, 0.25, 0.25}; !slices.Equal(src.advanced, want) {
		t.Errorf("got deltas %v, want %v", src.advanced, want)
	}
}

func TestRenderFrameAcquireErrors(t *testing.T) {
	tests := map[string]struct {
		cause       error
		recoverable bool
		fatal       bool
	}{
		"lost":     {cause: errors.New("Surface Lost"), recoverable: true},
		"outdated": {cause: errors.New("surface outdated"), recoverable: true},
		"timeout":  {cause: errors.New("Timeout"), recoverable: true},
		"memory":   {cause: errors.New("Out of memory"), fatal: true},
		"unknown":  {cause: errors.New("weird"), recoverable: true},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			r, b := newTestRenderer(t)
			b.beginErr = classifySurfaceError(tt.cause)

			err := r.RenderFrame(&fakeSource{slots: []pose.PosedSlot{regionSlot(newTex("a"))}}, 1)
			if err == nil {
				t.Fatal("expected an error")
			}
			if IsRecoverable(err) != tt.recoverable || IsFatal(err) != tt.fatal {
				t.Errorf("got recoverable=%v fatal=%v for %v", IsRecoverable(err), IsFatal(err), err)
			}
			if !errors.Is(err, tt.cause) {
				t.Errorf("error %v does not wrap its cause", err)
			}
			if r.State() != FrameSubmitting {
				t.Errorf("got state %s, want submitting", r.State())
			}
			if want := []string{"begin"}; !slices.Equal(b.calls, want) {
				t.Errorf("got calls %v, want %v", b.calls, want)
			}
		})
	}
}

func TestRenderFrameDrawErrorDiscards(t *testing.T) {
	r, b := newTestRenderer(t)
	b.drawErr = ErrBatchTooLarge

	err := r.RenderFrame(&fakeSource{slots: []pose.PosedSlot{regionSlot(newTex("a"))}}, 1)
	if !errors.Is(err, ErrBatchTooLarge) {
		t.Fatalf("got %v, want ErrBatchTooLarge", err)
	}
	if want := []string{"begin", "draw", "discard"}; !slices.Equal(b.calls, want) {
		t.Errorf("got calls %v, want %v", b.calls, want)
	}

	// the next frame starts from empty buffers
	b.drawErr = nil
	b.calls = nil
	if err := r.RenderFrame(&fakeSource{}, 1); err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}
	if want := []string{"begin", "clear", "present"}; !slices.Equal(b.calls, want) {
		t.Errorf("got calls %v, want %v", b.calls, want)
	}
}

func TestUpdateUploadsOnlyWhenDirty(t *testing.T) {
	r, b := newTestRenderer(t)
	r.Update()
	if len(b.uniforms) != 1 {
		t.Fatalf("got %d uniform writes, want 1", len(b.uniforms))
	}

	r.Scaling().AdjustScale(0.5)
	if err := r.RenderFrame(&fakeSource{}, 1); err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}
	if len(b.uniforms) != 2 {
		t.Fatalf("got %d uniform writes, want 2", len(b.uniforms))
	}
}

func TestResizeIgnoresZero(t *testing.T) {
	r, b := newTestRenderer(t)
	r.Resize(0, 300)
	r.Resize(400, 0)
	if len(b.configured) != 1 {
		t.Errorf("got %d configure calls, want 1", len(b.configured))
	}
	r.Resize(800, 600)
	if got := r.Scaling().Uniform(); got.WindowWidth != 400 || got.WindowHeight != 300 {
		t.Errorf("got window size %vx%v", got.WindowWidth, got.WindowHeight)
	}
}

func TestReleaseIsIdempotent(t *testing.T) {
	r, b := newTestRenderer(t)
	if err := r.RenderFrame(&fakeSource{slots: []pose.PosedSlot{regionSlot(newTex("a"))}}, 1); err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}
	r.Release()
	r.Release()
	if b.released != 1 {
		t.Errorf("backend released %d times", b.released)
	}
	if b.resources[0].released != 1 {
		t.Errorf("texture released %d times", b.resources[0].released)
	}
	if err := r.RenderFrame(&fakeSource{}, 1); !errors.Is(err, errReleased) {
		t.Errorf("got %v after release", err)
	}
}

func TestScalingState(t *testing.T) {
	s := NewScalingState(0.05, 0)
	if s.Scale() != MinScale {
		t.Errorf("got scale %v, want clamp to %v", s.Scale(), MinScale)
	}
	if !s.Dirty() {
		t.Error("new state should be dirty")
	}
	if !s.Flush(func([]byte) {}) || s.Flush(func([]byte) {}) {
		t.Error("flush should write once")
	}
	if got := s.AdjustScale(-1); got != MinScale {
		t.Errorf("got %v after shrinking past the minimum", got)
	}
	s.Resize(100, 50, 0)
	if u := s.Uniform(); u.WindowWidth != 100 || u.WindowHeight != 50 {
		t.Errorf("content scale 0 should act as 1, got %+v", u)
	}
}

func TestPickAlphaMode(t *testing.T) {
	tests := map[string]struct {
		modes []wgpu.CompositeAlphaMode
		want  wgpu.CompositeAlphaMode
	}{
		"premultiplied": {
			modes: []wgpu.CompositeAlphaMode{wgpu.CompositeAlphaModeOpaque, wgpu.CompositeAlphaModeUnpremultiplied, wgpu.CompositeAlphaModePremultiplied},
			want:  wgpu.CompositeAlphaModePremultiplied,
		},
		"unpremultiplied": {
			modes: []wgpu.CompositeAlphaMode{wgpu.CompositeAlphaModeOpaque, wgpu.CompositeAlphaModeUnpremultiplied},
			want:  wgpu.CompositeAlphaModeUnpremultiplied,
		},
		"first": {
			modes: []wgpu.CompositeAlphaMode{wgpu.CompositeAlphaModeOpaque},
			want:  wgpu.CompositeAlphaModeOpaque,
		},
		"none": {want: wgpu.CompositeAlphaModeAuto},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := pickAlphaMode(tt.modes); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}
