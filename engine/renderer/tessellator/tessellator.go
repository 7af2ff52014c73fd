// Package tessellator converts posed skeleton slots into textured triangles inside the per-frame
// scratch buffers.
package tessellator

import (
	"iter"

	"github.com/Carmen-Shannon/oxy-widget/common"
	"github.com/Carmen-Shannon/oxy-widget/engine/pose"
	"github.com/Carmen-Shannon/oxy-widget/engine/renderer/buffer"
	"github.com/Carmen-Shannon/oxy-widget/engine/renderer/texture"
)

// quadIndices triangulates a region quad in BL, UL, UR, BR order.
var quadIndices = [6]uint16{0, 1, 2, 2, 3, 0}

// PoseSource is anything that can report a posed skeleton.
type PoseSource interface {
	// Tint returns the skeleton-wide RGBA multiplier.
	Tint() [4]float32
	// Slots yields the posed slots in draw order.
	Slots() iter.Seq[pose.PosedSlot]
}

// Tessellator walks a posed skeleton and appends geometry to the batch of each attachment's texture.
type Tessellator struct {
	cache   *texture.Cache
	buffers *buffer.ScratchBuffers
}

// NewTessellator creates a tessellator that resolves textures through cache and emits into buffers.
//
// Parameters:
//   - cache: the texture cache used to register attachment textures
//   - buffers: the scratch buffers receiving the geometry
//
// Returns:
//   - *Tessellator: the tessellator
func NewTessellator(cache *texture.Cache, buffers *buffer.ScratchBuffers) *Tessellator {
	return &Tessellator{cache: cache, buffers: buffers}
}

// Tessellate appends the geometry of every drawable attachment of source in draw order.
// Slots without an attachment, attachments of other kinds and attachments whose texture cannot be
// registered are skipped without error.
//
// Parameters:
//   - source: the posed skeleton
//   - opacity: the global opacity factor multiplied into every vertex alpha
//
// Returns:
//   - int: the number of attachments emitted
func (t *Tessellator) Tessellate(source PoseSource, opacity float32) int {
	skel := source.Tint()
	emitted := 0
	for slot := range source.Slots() {
		att := slot.Attachment
		if att == nil || att.Texture == nil {
			continue
		}
		if att.Kind != pose.AttachmentRegion && att.Kind != pose.AttachmentMesh {
			continue
		}
		if att.Kind == pose.AttachmentRegion && (len(att.WorldVertices) != 8 || len(att.UVs) != 8) {
			continue
		}
		id, err := t.cache.Register(att.Texture)
		if err != nil {
			continue
		}

		tint := Tint(skel, slot.Tint, opacity)
		batch := t.buffers.Batch(id)
		switch att.Kind {
		case pose.AttachmentRegion:
			emitRegion(batch, att, tint)
		case pose.AttachmentMesh:
			emitMesh(batch, att, tint)
		}
		emitted++
	}
	return emitted
}

// Tint combines the skeleton color, the slot color and the global opacity. Color channels multiply;
// the opacity only scales alpha.
func Tint(skeleton, slot [4]float32, opacity float32) [4]float32 {
	return [4]float32{
		skeleton[0] * slot[0],
		skeleton[1] * slot[1],
		skeleton[2] * slot[2],
		skeleton[3] * slot[3] * opacity,
	}
}

func emitRegion(batch buffer.Batch, att *pose.PosedAttachment, tint [4]float32) {
	base := uint16(len(*batch.Vertices))
	for i := 0; i < 8; i += 2 {
		*batch.Vertices = append(*batch.Vertices, common.Vertex{
			Position:  [2]float32{att.WorldVertices[i], att.WorldVertices[i+1]},
			TexCoords: [2]float32{att.UVs[i], att.UVs[i+1]},
			Tint:      tint,
		})
	}
	for _, idx := range quadIndices {
		*batch.Indices = append(*batch.Indices, base+idx)
	}
}

func emitMesh(batch buffer.Batch, att *pose.PosedAttachment, tint [4]float32) {
	base := uint16(len(*batch.Vertices))
	count := min(len(att.WorldVertices), len(att.UVs)) / 2
	for i := range count {
		*batch.Vertices = append(*batch.Vertices, common.Vertex{
			Position:  [2]float32{att.WorldVertices[2*i], att.WorldVertices[2*i+1]},
			TexCoords: [2]float32{att.UVs[2*i], att.UVs[2*i+1]},
			Tint:      tint,
		})
	}
	for _, idx := range att.Triangles {
		*batch.Indices = append(*batch.Indices, base+idx)
	}
}
