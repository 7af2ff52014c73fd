package pose

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// RigData is the YAML rig document: a bone hierarchy, slots in draw order, per-slot attachments
// and keyframed animations.
type RigData struct {
	Bones       []BoneData                           `yaml:"bones"`
	Slots       []SlotData                           `yaml:"slots"`
	Attachments map[string]map[string]AttachmentData `yaml:"attachments"`
	Animations  map[string]AnimationData             `yaml:"animations"`
}

type BoneData struct {
	Name     string  `yaml:"name"`
	Parent   string  `yaml:"parent,omitempty"`
	X        float32 `yaml:"x,omitempty"`
	Y        float32 `yaml:"y,omitempty"`
	Rotation float32 `yaml:"rotation,omitempty"`
	ScaleX   float32 `yaml:"scale_x,omitempty"`
	ScaleY   float32 `yaml:"scale_y,omitempty"`
}

type SlotData struct {
	Name       string      `yaml:"name"`
	Bone       string      `yaml:"bone"`
	Color      *[4]float32 `yaml:"color,omitempty"`
	Attachment string      `yaml:"attachment,omitempty"`
}

// AttachmentData describes one attachment. Type is "region" (default), "mesh", "point",
// "boundingbox" or "clipping"; only regions and meshes produce geometry.
type AttachmentData struct {
	Type string `yaml:"type,omitempty"`
	// Path names the atlas region; defaults to the attachment name.
	Path string `yaml:"path,omitempty"`

	X        float32 `yaml:"x,omitempty"`
	Y        float32 `yaml:"y,omitempty"`
	Rotation float32 `yaml:"rotation,omitempty"`
	ScaleX   float32 `yaml:"scale_x,omitempty"`
	ScaleY   float32 `yaml:"scale_y,omitempty"`
	Width    float32 `yaml:"width,omitempty"`
	Height   float32 `yaml:"height,omitempty"`

	// Vertices are bone-local x,y pairs; UVs are region-relative u,v pairs.
	Vertices  []float32 `yaml:"vertices,omitempty"`
	UVs       []float32 `yaml:"uvs,omitempty"`
	Triangles []uint16  `yaml:"triangles,omitempty"`
}

type AnimationData struct {
	// Duration overrides the duration derived from the last keyframe.
	Duration float32                     `yaml:"duration,omitempty"`
	Bones    map[string]BoneTimelineData `yaml:"bones,omitempty"`
	Slots    map[string]SlotTimelineData `yaml:"slots,omitempty"`
}

type BoneTimelineData struct {
	Rotate    []ScalarKey `yaml:"rotate,omitempty"`
	Translate []VectorKey `yaml:"translate,omitempty"`
	Scale     []VectorKey `yaml:"scale,omitempty"`
}

type SlotTimelineData struct {
	Color      []ColorKey      `yaml:"color,omitempty"`
	Attachment []AttachmentKey `yaml:"attachment,omitempty"`
}

type ScalarKey struct {
	Time  float32 `yaml:"time"`
	Value float32 `yaml:"value"`
}

type VectorKey struct {
	Time float32 `yaml:"time"`
	X    float32 `yaml:"x"`
	Y    float32 `yaml:"y"`
}

type ColorKey struct {
	Time  float32    `yaml:"time"`
	Color [4]float32 `yaml:"color"`
}

// AttachmentKey switches the slot attachment; an empty Name hides the slot.
type AttachmentKey struct {
	Time float32 `yaml:"time"`
	Name string  `yaml:"name"`
}

// ParseRigData decodes a YAML rig document.
func ParseRigData(r io.Reader) (*RigData, error) {
	var doc RigData
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode rig: %w", err)
	}
	return &doc, nil
}
