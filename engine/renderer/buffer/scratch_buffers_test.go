package buffer

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-widget/common"
	"github.com/Carmen-Shannon/oxy-widget/engine/renderer/texture"
)

func appendQuad(b Batch) {
	base := uint16(len(*b.Vertices))
	*b.Vertices = append(*b.Vertices, make([]common.Vertex, 4)...)
	for _, i := range []uint16{0, 1, 2, 2, 3, 0} {
		*b.Indices = append(*b.Indices, base+i)
	}
}

func collect(s *ScratchBuffers) []Batch {
	var out []Batch
	for b := range s.All() {
		out = append(out, b)
	}
	return out
}

func TestBatchRunsFollowTextureChanges(t *testing.T) {
	a, b := texture.NewTextureID(), texture.NewTextureID()
	tests := []struct {
		name  string
		order []texture.TextureID
		want  []texture.TextureID
	}{
		{"single texture", []texture.TextureID{a, a, a}, []texture.TextureID{a}},
		{"two runs", []texture.TextureID{a, a, b}, []texture.TextureID{a, b}},
		{"non-contiguous reappearance", []texture.TextureID{a, b, a}, []texture.TextureID{a, b, a}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScratchBuffers()
			for _, id := range tt.order {
				appendQuad(s.Batch(id))
			}
			got := collect(s)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d batches, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i].TextureID != tt.want[i] {
					t.Errorf("batch %d: got texture %d, want %d", i, got[i].TextureID, tt.want[i])
				}
			}
		})
	}
}

func TestBatchIndicesAreLocal(t *testing.T) {
	a, b := texture.NewTextureID(), texture.NewTextureID()
	s := NewScratchBuffers()
	appendQuad(s.Batch(a))
	appendQuad(s.Batch(a))
	appendQuad(s.Batch(b))

	got := collect(s)
	wantFirst := []uint16{0, 1, 2, 2, 3, 0, 4, 5, 6, 6, 7, 4}
	if len(*got[0].Indices) != len(wantFirst) {
		t.Fatalf("got %d indices, want %d", len(*got[0].Indices), len(wantFirst))
	}
	for i, idx := range *got[0].Indices {
		if idx != wantFirst[i] {
			t.Errorf("index %d: got %d, want %d", i, idx, wantFirst[i])
		}
	}
	if (*got[1].Indices)[0] != 0 {
		t.Errorf("second batch must start at local index 0, got %d", (*got[1].Indices)[0])
	}
}

func TestClearReusesSlots(t *testing.T) {
	a, b, c := texture.NewTextureID(), texture.NewTextureID(), texture.NewTextureID()
	s := NewScratchBuffers()
	for _, id := range []texture.TextureID{a, b, c} {
		appendQuad(s.Batch(id))
	}
	if s.Len() != 3 {
		t.Fatalf("got %d slots, want 3", s.Len())
	}
	capBefore := cap(*s.Batch(c).Vertices)

	s.Clear()
	if len(collect(s)) != 0 {
		t.Fatalf("cleared buffers must yield no batches")
	}
	for _, id := range []texture.TextureID{a, b, c} {
		appendQuad(s.Batch(id))
	}
	if s.Len() != 3 {
		t.Errorf("got %d slots after reuse, want 3", s.Len())
	}
	if got := cap(*s.Batch(c).Vertices); got < capBefore {
		t.Errorf("capacity shrank from %d to %d", capBefore, got)
	}
}

func TestClearedSlotsAreRelabelled(t *testing.T) {
	a, b := texture.NewTextureID(), texture.NewTextureID()
	s := NewScratchBuffers()
	appendQuad(s.Batch(a))
	appendQuad(s.Batch(b))
	s.Clear()

	appendQuad(s.Batch(b))
	got := collect(s)
	if len(got) != 1 || got[0].TextureID != b {
		t.Fatalf("got %+v, want a single batch for texture %d", got, b)
	}
	if s.Len() != 2 {
		t.Errorf("got %d slots, want 2 (second slot kept empty)", s.Len())
	}
}

func TestAllSkipsEmptyBatches(t *testing.T) {
	a, b := texture.NewTextureID(), texture.NewTextureID()
	s := NewScratchBuffers()
	s.Batch(a)
	appendQuad(s.Batch(b))

	got := collect(s)
	if len(got) != 1 || got[0].TextureID != b {
		t.Fatalf("empty batch was not skipped: %+v", got)
	}
}

func TestReusingNonEmptySlotPanics(t *testing.T) {
	a, b := texture.NewTextureID(), texture.NewTextureID()
	s := NewScratchBuffers()
	appendQuad(s.Batch(a))
	appendQuad(s.Batch(b))
	// rewind without clearing so the next advance lands on a filled slot
	s.cursor = 0
	s.vertexSlots[0].textureID = b
	s.indexSlots[0].textureID = b

	defer func() {
		if recover() == nil {
			t.Errorf("expected panic when relabelling a non-empty slot")
		}
	}()
	s.Batch(a)
}

func TestSlotDesyncPanics(t *testing.T) {
	a := texture.NewTextureID()
	s := NewScratchBuffers()
	appendQuad(s.Batch(a))
	s.indexSlots[0].textureID = texture.NewTextureID()

	defer func() {
		if recover() == nil {
			t.Errorf("expected panic on vertex/index slot mismatch")
		}
	}()
	s.Batch(a)
}

func TestPad4(t *testing.T) {
	for n := range 9 {
		data := make([]uint16, n)
		before := Pad4(&data)
		if before != n {
			t.Errorf("got pre-padding length %d, want %d", before, n)
		}
		if len(data)%4 != 0 || len(data) < n || len(data)-n > 3 {
			t.Errorf("length %d padded to %d", n, len(data))
		}
	}
}
