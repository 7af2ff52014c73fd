package pose

import "github.com/Carmen-Shannon/oxy-widget/engine/renderer/texture"

// AttachmentKind classifies what a posed attachment contributes to a frame.
type AttachmentKind int

const (
	// AttachmentRegion is a textured quad with exactly four world vertices.
	AttachmentRegion AttachmentKind = iota

	// AttachmentMesh is a textured triangle mesh with its own index list.
	AttachmentMesh

	// AttachmentOther covers attachments without geometry such as points and bounding boxes.
	AttachmentOther
)

// PosedAttachment is the geometry of one attachment for the current frame.
// WorldVertices and UVs are flat x,y and u,v pairs with one pair per vertex.
type PosedAttachment struct {
	Kind          AttachmentKind
	Texture       *texture.Texture
	WorldVertices []float32
	UVs           []float32
	// Triangles is set for meshes only and indexes into the vertex pairs.
	Triangles []uint16
}

// PosedSlot is one entry of the skeleton draw order for the current frame.
type PosedSlot struct {
	Name       string
	Tint       [4]float32
	Attachment *PosedAttachment
}
