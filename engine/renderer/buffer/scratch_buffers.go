package buffer

import (
	"fmt"
	"iter"

	"github.com/Carmen-Shannon/oxy-widget/common"
	"github.com/Carmen-Shannon/oxy-widget/engine/renderer/texture"
)

// Batch is one contiguous run of geometry that shares a single texture and becomes one draw call.
// Vertices and Indices point into the ScratchBuffers storage so callers append in place; they stay
// valid until the next call to ScratchBuffers.Batch.
// Indices are local to the batch: index 0 is the first vertex of this batch.
type Batch struct {
	TextureID texture.TextureID
	Vertices  *[]common.Vertex
	Indices   *[]uint16
}

type vertexSlot struct {
	textureID texture.TextureID
	data      []common.Vertex
}

type indexSlot struct {
	textureID texture.TextureID
	data      []uint16
}

// ScratchBuffers accumulates per-frame geometry grouped into texture batches.
// It keeps two parallel slot sequences, one for vertices and one for indices, with a cursor that
// marks the batch currently being filled. Slots survive Clear so their capacity is reused frame
// after frame.
//
// A texture that reappears after a different texture starts a new batch; draw order is preserved.
type ScratchBuffers struct {
	vertexSlots []vertexSlot
	indexSlots  []indexSlot
	cursor      int
	started     bool
}

// NewScratchBuffers creates an empty batcher.
func NewScratchBuffers() *ScratchBuffers {
	return &ScratchBuffers{}
}

// Batch returns the append targets for geometry drawn with the given texture.
// When the texture differs from the current batch the cursor advances, reusing the existing slot at
// the new position (relabelled to id) or allocating a new one.
//
// Reusing a slot that still holds data, or finding the vertex and index sequences out of step,
// indicates an internal fault and panics.
//
// Parameters:
//   - id: the texture the geometry is drawn with
//
// Returns:
//   - Batch: pointers to the vertex and index storage of the current batch
func (s *ScratchBuffers) Batch(id texture.TextureID) Batch {
	switch {
	case !s.started:
		s.started = true
		s.cursor = 0
		s.claim(id)
	case s.vertexSlots[s.cursor].textureID != id:
		s.cursor++
		s.claim(id)
	}

	vs := &s.vertexSlots[s.cursor]
	is := &s.indexSlots[s.cursor]
	if vs.textureID != is.textureID {
		panic(fmt.Sprintf("buffer: slot %d texture mismatch: vertices %d, indices %d", s.cursor, vs.textureID, is.textureID))
	}

	return Batch{
		TextureID: id,
		Vertices:  &vs.data,
		Indices:   &is.data,
	}
}

// claim labels the slot at the cursor with id, appending new slots when the cursor is past the end.
func (s *ScratchBuffers) claim(id texture.TextureID) {
	if len(s.vertexSlots) != len(s.indexSlots) {
		panic(fmt.Sprintf("buffer: slot count mismatch: %d vertex slots, %d index slots", len(s.vertexSlots), len(s.indexSlots)))
	}
	if s.cursor == len(s.vertexSlots) {
		s.vertexSlots = append(s.vertexSlots, vertexSlot{textureID: id})
		s.indexSlots = append(s.indexSlots, indexSlot{textureID: id})
		return
	}

	vs := &s.vertexSlots[s.cursor]
	is := &s.indexSlots[s.cursor]
	if len(vs.data) != 0 || len(is.data) != 0 {
		panic(fmt.Sprintf("buffer: reusing non-empty slot %d for texture %d", s.cursor, id))
	}
	vs.textureID = id
	is.textureID = id
}

// All yields every batch in creation order, skipping batches without vertices or indices.
func (s *ScratchBuffers) All() iter.Seq[Batch] {
	return func(yield func(Batch) bool) {
		if len(s.vertexSlots) != len(s.indexSlots) {
			panic(fmt.Sprintf("buffer: slot count mismatch: %d vertex slots, %d index slots", len(s.vertexSlots), len(s.indexSlots)))
		}
		for i := range s.vertexSlots {
			vs := &s.vertexSlots[i]
			is := &s.indexSlots[i]
			if len(vs.data) == 0 || len(is.data) == 0 {
				continue
			}
			if !yield(Batch{TextureID: vs.textureID, Vertices: &vs.data, Indices: &is.data}) {
				return
			}
		}
	}
}

// Clear empties every batch while keeping the allocated slots and their capacity.
func (s *ScratchBuffers) Clear() {
	for i := range s.vertexSlots {
		s.vertexSlots[i].data = s.vertexSlots[i].data[:0]
	}
	for i := range s.indexSlots {
		s.indexSlots[i].data = s.indexSlots[i].data[:0]
	}
	s.cursor = 0
	s.started = false
}

// Len returns the number of allocated slots, including empty ones kept for reuse.
func (s *ScratchBuffers) Len() int {
	return len(s.vertexSlots)
}

// Pad4 extends a slice with zero values until its length is a multiple of four.
//
// Returns:
//   - int: the length before padding
func Pad4[T any](data *[]T) int {
	n := len(*data)
	var zero T
	for len(*data)%4 != 0 {
		*data = append(*data, zero)
	}
	return n
}
