package tessellator

import (
	"errors"
	"iter"
	"slices"
	"testing"

	"github.com/Carmen-Shannon/oxy-widget/common"
	"github.com/Carmen-Shannon/oxy-widget/engine/pose"
	"github.com/Carmen-Shannon/oxy-widget/engine/renderer/buffer"
	"github.com/Carmen-Shannon/oxy-widget/engine/renderer/texture"
)

type nopResource struct{}

func (nopResource) Release() {}

type countingFactory struct {
	calls int
	fail  bool
}

func (f *countingFactory) CreateTexture(string, common.TextureStagingData, common.SamplerStagingData) (texture.Resource, error) {
	f.calls++
	if f.fail {
		return nil, errors.New("device lost")
	}
	return nopResource{}, nil
}

type fakeSkeleton struct {
	tint  [4]float32
	slots []pose.PosedSlot
}

func (s *fakeSkeleton) Tint() [4]float32 { return s.tint }

func (s *fakeSkeleton) Slots() iter.Seq[pose.PosedSlot] { return slices.Values(s.slots) }

func newTex(label string) *texture.Texture {
	img := &texture.Image{Pixels: make([]byte, 4), Width: 1, Height: 1}
	return texture.NewTexture(label, img, texture.DefaultTextureConfig)
}

func region(tex *texture.Texture, x float32) *pose.PosedAttachment {
	return &pose.PosedAttachment{
		Kind:          pose.AttachmentRegion,
		Texture:       tex,
		WorldVertices: []float32{x, 0, x, 1, x + 1, 1, x + 1, 0},
		UVs:           []float32{0, 1, 0, 0, 1, 0, 1, 1},
	}
}

func white() [4]float32 { return [4]float32{1, 1, 1, 1} }

func collect(b *buffer.ScratchBuffers) []buffer.Batch {
	var out []buffer.Batch
	for batch := range b.All() {
		out = append(out, batch)
	}
	return out
}

func TestTint(t *testing.T) {
	got := Tint([4]float32{1, 0.5, 1, 0.8}, [4]float32{0.5, 1, 0, 0.5}, 0.5)
	want := [4]float32{0.5, 0.5, 0, 0.2}
	for i := range got {
		if d := got[i] - want[i]; d > 1e-6 || d < -1e-6 {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestRegionGeometry(t *testing.T) {
	tex := newTex("a")
	buffers := buffer.NewScratchBuffers()
	tess := NewTessellator(texture.NewCache(&countingFactory{}), buffers)

	skel := &fakeSkeleton{tint: white(), slots: []pose.PosedSlot{
		{Name: "one", Tint: white(), Attachment: region(tex, 0)},
		{Name: "two", Tint: [4]float32{1, 0, 0, 0.5}, Attachment: region(tex, 5)},
	}}
	if n := tess.Tessellate(skel, 1); n != 2 {
		t.Fatalf("emitted %d attachments, want 2", n)
	}

	batches := collect(buffers)
	if len(batches) != 1 {
		t.Fatalf("got %d batches, want 1", len(batches))
	}
	b := batches[0]
	if b.TextureID != tex.ID() {
		t.Errorf("got texture %d, want %d", b.TextureID, tex.ID())
	}
	wantIdx := []uint16{0, 1, 2, 2, 3, 0, 4, 5, 6, 6, 7, 4}
	if !slices.Equal(*b.Indices, wantIdx) {
		t.Errorf("got indices %v, want %v", *b.Indices, wantIdx)
	}
	verts := *b.Vertices
	if len(verts) != 8 {
		t.Fatalf("got %d vertices, want 8", len(verts))
	}
	if verts[5].Position != [2]float32{5, 1} || verts[5].TexCoords != [2]float32{0, 0} {
		t.Errorf("got vertex %+v", verts[5])
	}
	if verts[6].Tint != [4]float32{1, 0, 0, 0.5} {
		t.Errorf("got tint %v for second slot", verts[6].Tint)
	}
}

func TestMeshGeometryOffsetsTriangles(t *testing.T) {
	tex := newTex("a")
	buffers := buffer.NewScratchBuffers()
	tess := NewTessellator(texture.NewCache(&countingFactory{}), buffers)

	mesh := &pose.PosedAttachment{
		Kind:          pose.AttachmentMesh,
		Texture:       tex,
		WorldVertices: []float32{0, 0, 1, 0, 1, 1, 0, 1, 0.5, 2},
		UVs:           []float32{0, 1, 1, 1, 1, 0, 0, 0, 0.5, 0},
		Triangles:     []uint16{0, 1, 2, 2, 3, 0, 3, 2, 4},
	}
	skel := &fakeSkeleton{tint: white(), slots: []pose.PosedSlot{
		{Tint: white(), Attachment: region(tex, 0)},
		{Tint: white(), Attachment: mesh},
	}}
	tess.Tessellate(skel, 1)

	b := collect(buffers)[0]
	if len(*b.Vertices) != 9 {
		t.Fatalf("got %d vertices, want 9", len(*b.Vertices))
	}
	wantIdx := []uint16{0, 1, 2, 2, 3, 0, 4, 5, 6, 6, 7, 4, 7, 6, 8}
	if !slices.Equal(*b.Indices, wantIdx) {
		t.Errorf("got indices %v, want %v", *b.Indices, wantIdx)
	}
	if (*b.Vertices)[8].TexCoords != [2]float32{0.5, 0} {
		t.Errorf("got uv %v", (*b.Vertices)[8].TexCoords)
	}
}

func TestTextureChangesSplitBatches(t *testing.T) {
	a, b := newTex("a"), newTex("b")
	buffers := buffer.NewScratchBuffers()
	factory := &countingFactory{}
	tess := NewTessellator(texture.NewCache(factory), buffers)

	skel := &fakeSkeleton{tint: white(), slots: []pose.PosedSlot{
		{Tint: white(), Attachment: region(a, 0)},
		{Tint: white(), Attachment: region(b, 1)},
		{Tint: white(), Attachment: region(a, 2)},
	}}
	tess.Tessellate(skel, 1)

	var ids []texture.TextureID
	for _, batch := range collect(buffers) {
		ids = append(ids, batch.TextureID)
		if (*batch.Indices)[0] != 0 {
			t.Errorf("batch indices must start at 0, got %v", *batch.Indices)
		}
	}
	want := []texture.TextureID{a.ID(), b.ID(), a.ID()}
	if !slices.Equal(ids, want) {
		t.Errorf("got batch textures %v, want %v", ids, want)
	}
	if factory.calls != 2 {
		t.Errorf("created %d GPU textures, want 2", factory.calls)
	}
}

func TestSkippedAttachments(t *testing.T) {
	tex := newTex("a")
	released := newTex("gone")
	released.Release()

	short := region(tex, 0)
	short.WorldVertices = short.WorldVertices[:6]

	tests := map[string]pose.PosedSlot{
		"no attachment": {Tint: white()},
		"other kind":    {Tint: white(), Attachment: &pose.PosedAttachment{Kind: pose.AttachmentOther, Texture: tex}},
		"no texture":    {Tint: white(), Attachment: &pose.PosedAttachment{Kind: pose.AttachmentRegion, WorldVertices: make([]float32, 8), UVs: make([]float32, 8)}},
		"lost image":    {Tint: white(), Attachment: region(released, 0)},
		"short region":  {Tint: white(), Attachment: short},
	}
	for name, slot := range tests {
		t.Run(name, func(t *testing.T) {
			buffers := buffer.NewScratchBuffers()
			tess := NewTessellator(texture.NewCache(&countingFactory{}), buffers)
			skel := &fakeSkeleton{tint: white(), slots: []pose.PosedSlot{slot}}
			if n := tess.Tessellate(skel, 1); n != 0 {
				t.Errorf("emitted %d attachments, want 0", n)
			}
			if len(collect(buffers)) != 0 {
				t.Errorf("expected no batches")
			}
		})
	}
}

func TestFactoryErrorIsSoftSkip(t *testing.T) {
	buffers := buffer.NewScratchBuffers()
	tess := NewTessellator(texture.NewCache(&countingFactory{fail: true}), buffers)
	skel := &fakeSkeleton{tint: white(), slots: []pose.PosedSlot{
		{Tint: white(), Attachment: region(newTex("a"), 0)},
	}}
	if n := tess.Tessellate(skel, 1); n != 0 {
		t.Errorf("emitted %d attachments, want 0", n)
	}
}

func TestOpacityScalesAlphaOnly(t *testing.T) {
	buffers := buffer.NewScratchBuffers()
	tess := NewTessellator(texture.NewCache(&countingFactory{}), buffers)
	skel := &fakeSkeleton{tint: [4]float32{1, 1, 1, 0.5}, slots: []pose.PosedSlot{
		{Tint: [4]float32{0.5, 0.5, 0.5, 1}, Attachment: region(newTex("a"), 0)},
	}}
	tess.Tessellate(skel, 0.5)

	v := (*collect(buffers)[0].Vertices)[0]
	if v.Tint != [4]float32{0.5, 0.5, 0.5, 0.25} {
		t.Errorf("got tint %v", v.Tint)
	}
}
