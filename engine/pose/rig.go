package pose

import (
	"cmp"
	"fmt"
	"iter"
	"slices"

	"github.com/Carmen-Shannon/oxy-widget/common"
	"github.com/Carmen-Shannon/oxy-widget/engine/renderer/texture"
	"github.com/go-gl/mathgl/mgl32"
)

type bone struct {
	name   string
	parent int
	setup  BoneData

	x, y, rotation, scaleX, scaleY float32
	world                          mgl32.Mat3
}

type attachment struct {
	name    string
	kind    AttachmentKind
	texture *texture.Texture

	// region attachments
	local   mgl32.Mat3
	corners [8]float32

	// shared by regions (4 pairs) and meshes
	uvs []float32

	// mesh attachments
	vertices  []float32
	triangles []uint16
}

type slot struct {
	name            string
	bone            int
	setupColor      [4]float32
	setupAttachment string
	attachments     map[string]*attachment

	color      [4]float32
	attachment *attachment
	posed      PosedAttachment
}

type boneTimeline struct {
	bone      int
	rotate    []ScalarKey
	translate []VectorKey
	scale     []VectorKey
}

type slotTimeline struct {
	slot       int
	color      []ColorKey
	attachment []AttachmentKey
}

type animation struct {
	name     string
	duration float32
	bones    []boneTimeline
	slots    []slotTimeline
}

// Rig is a keyframed 2D skeleton bound to an atlas. It poses the skeleton from its animation
// tracks and exposes the result as an ordered sequence of posed slots.
//
// Rig is not safe for concurrent use.
type Rig struct {
	atlas      *common.Shared[*Atlas]
	bones      []bone
	slots      []slot
	animations map[string]*animation
	tracks     []*track
	tint       [4]float32
}

// NewRig binds a rig document to an atlas. The rig takes ownership of the atlas handle and
// releases it in Release.
//
// Parameters:
//   - doc: the decoded rig document
//   - atlas: a shared handle to the atlas providing attachment regions
//
// Returns:
//   - *Rig: the rig in its setup pose
//   - error: an error if the document references unknown bones, slots or regions
func NewRig(doc *RigData, atlas *common.Shared[*Atlas]) (*Rig, error) {
	r := &Rig{
		atlas:      atlas,
		animations: make(map[string]*animation),
		tint:       [4]float32{1, 1, 1, 1},
	}
	boneIndex := make(map[string]int, len(doc.Bones))
	for i, bd := range doc.Bones {
		if _, dup := boneIndex[bd.Name]; dup {
			return nil, fmt.Errorf("duplicate bone %q", bd.Name)
		}
		parent := -1
		if bd.Parent != "" {
			p, ok := boneIndex[bd.Parent]
			if !ok {
				return nil, fmt.Errorf("bone %q: parent %q must be declared before it", bd.Name, bd.Parent)
			}
			parent = p
		}
		// zero scale in the document means unscaled
		bd.ScaleX = common.Coalesce(bd.ScaleX, 1)
		bd.ScaleY = common.Coalesce(bd.ScaleY, 1)
		boneIndex[bd.Name] = i
		r.bones = append(r.bones, bone{name: bd.Name, parent: parent, setup: bd})
	}

	slotIndex := make(map[string]int, len(doc.Slots))
	for i, sd := range doc.Slots {
		b, ok := boneIndex[sd.Bone]
		if !ok {
			return nil, fmt.Errorf("slot %q: unknown bone %q", sd.Name, sd.Bone)
		}
		color := [4]float32{1, 1, 1, 1}
		if sd.Color != nil {
			color = *sd.Color
		}
		s := slot{
			name:            sd.Name,
			bone:            b,
			setupColor:      color,
			setupAttachment: sd.Attachment,
			attachments:     make(map[string]*attachment),
		}
		for name, ad := range doc.Attachments[sd.Name] {
			att, err := buildAttachment(name, ad, atlas.Value())
			if err != nil {
				return nil, fmt.Errorf("slot %q: %w", sd.Name, err)
			}
			s.attachments[name] = att
		}
		slotIndex[sd.Name] = i
		r.slots = append(r.slots, s)
	}

	for name, ad := range doc.Animations {
		anim, err := buildAnimation(name, ad, boneIndex, slotIndex)
		if err != nil {
			return nil, err
		}
		r.animations[name] = anim
	}

	r.pose()
	return r, nil
}

func buildAttachment(name string, ad AttachmentData, atlas *Atlas) (*attachment, error) {
	att := &attachment{name: name}
	switch ad.Type {
	case "", "region":
		att.kind = AttachmentRegion
	case "mesh":
		att.kind = AttachmentMesh
	case "point", "boundingbox", "clipping", "path":
		att.kind = AttachmentOther
		return att, nil
	default:
		return nil, fmt.Errorf("attachment %q: unknown type %q", name, ad.Type)
	}

	path := common.Coalesce(ad.Path, name)
	region, ok := atlas.Region(path)
	if !ok {
		return nil, fmt.Errorf("attachment %q: atlas has no region %q", name, path)
	}
	att.texture = region.Page.Texture()

	if att.kind == AttachmentRegion {
		w := common.Coalesce(ad.Width, float32(region.Width))
		h := common.Coalesce(ad.Height, float32(region.Height))
		att.local = mgl32.Translate2D(ad.X, ad.Y).
			Mul3(mgl32.HomogRotate2D(mgl32.DegToRad(ad.Rotation))).
			Mul3(mgl32.Scale2D(common.Coalesce(ad.ScaleX, 1), common.Coalesce(ad.ScaleY, 1)))
		att.corners = [8]float32{-w / 2, -h / 2, -w / 2, h / 2, w / 2, h / 2, w / 2, -h / 2}
		uvs := region.QuadUVs()
		att.uvs = uvs[:]
		return att, nil
	}

	if len(ad.Vertices)%2 != 0 || len(ad.Vertices) != len(ad.UVs) {
		return nil, fmt.Errorf("mesh %q: %d vertex values and %d uv values", name, len(ad.Vertices), len(ad.UVs))
	}
	count := len(ad.Vertices) / 2
	for _, idx := range ad.Triangles {
		if int(idx) >= count {
			return nil, fmt.Errorf("mesh %q: triangle index %d out of range", name, idx)
		}
	}
	att.vertices = slices.Clone(ad.Vertices)
	att.triangles = slices.Clone(ad.Triangles)
	att.uvs = make([]float32, len(ad.UVs))
	for i := 0; i < len(ad.UVs); i += 2 {
		att.uvs[i], att.uvs[i+1] = region.MapUV(ad.UVs[i], ad.UVs[i+1])
	}
	return att, nil
}

func buildAnimation(name string, ad AnimationData, boneIndex, slotIndex map[string]int) (*animation, error) {
	anim := &animation{name: name}
	var last float32
	extend := func(t float32) { last = max(last, t) }

	for boneName, tl := range ad.Bones {
		b, ok := boneIndex[boneName]
		if !ok {
			return nil, fmt.Errorf("animation %q: unknown bone %q", name, boneName)
		}
		bt := boneTimeline{
			bone:      b,
			rotate:    sortedKeys(tl.Rotate, func(k ScalarKey) float32 { return k.Time }),
			translate: sortedKeys(tl.Translate, func(k VectorKey) float32 { return k.Time }),
			scale:     sortedKeys(tl.Scale, func(k VectorKey) float32 { return k.Time }),
		}
		for _, k := range bt.rotate {
			extend(k.Time)
		}
		for _, k := range bt.translate {
			extend(k.Time)
		}
		for _, k := range bt.scale {
			extend(k.Time)
		}
		anim.bones = append(anim.bones, bt)
	}

	for slotName, tl := range ad.Slots {
		s, ok := slotIndex[slotName]
		if !ok {
			return nil, fmt.Errorf("animation %q: unknown slot %q", name, slotName)
		}
		st := slotTimeline{
			slot:       s,
			color:      sortedKeys(tl.Color, func(k ColorKey) float32 { return k.Time }),
			attachment: sortedKeys(tl.Attachment, func(k AttachmentKey) float32 { return k.Time }),
		}
		for _, k := range st.color {
			extend(k.Time)
		}
		for _, k := range st.attachment {
			extend(k.Time)
		}
		anim.slots = append(anim.slots, st)
	}

	// map iteration order is random; keep application order stable
	slices.SortFunc(anim.bones, func(a, b boneTimeline) int { return cmp.Compare(a.bone, b.bone) })
	slices.SortFunc(anim.slots, func(a, b slotTimeline) int { return cmp.Compare(a.slot, b.slot) })

	anim.duration = common.Coalesce(ad.Duration, last)
	return anim, nil
}

func sortedKeys[K any](keys []K, timeOf func(K) float32) []K {
	out := slices.Clone(keys)
	slices.SortStableFunc(out, func(a, b K) int { return cmp.Compare(timeOf(a), timeOf(b)) })
	return out
}

// sample locates t between two keys. It returns the index of the key at or before t and the
// interpolation factor towards the following key.
func sample[K any](keys []K, t float32, timeOf func(K) float32) (int, float32) {
	if t <= timeOf(keys[0]) {
		return 0, 0
	}
	last := len(keys) - 1
	if t >= timeOf(keys[last]) {
		return last, 0
	}
	i, _ := slices.BinarySearchFunc(keys, t, func(k K, t float32) int { return cmp.Compare(timeOf(k), t) })
	// keys[i-1].time < t <= keys[i].time
	i--
	t0, t1 := timeOf(keys[i]), timeOf(keys[i+1])
	if t1 <= t0 {
		return i + 1, 0
	}
	return i, (t - t0) / (t1 - t0)
}

func lerp(a, b, alpha float32) float32 {
	return a + (b-a)*alpha
}

func sampleScalar(keys []ScalarKey, t float32) float32 {
	i, alpha := sample(keys, t, func(k ScalarKey) float32 { return k.Time })
	if alpha == 0 {
		return keys[i].Value
	}
	return lerp(keys[i].Value, keys[i+1].Value, alpha)
}

func sampleVector(keys []VectorKey, t float32) (float32, float32) {
	i, alpha := sample(keys, t, func(k VectorKey) float32 { return k.Time })
	if alpha == 0 {
		return keys[i].X, keys[i].Y
	}
	return lerp(keys[i].X, keys[i+1].X, alpha), lerp(keys[i].Y, keys[i+1].Y, alpha)
}

func sampleColor(keys []ColorKey, t float32) [4]float32 {
	i, alpha := sample(keys, t, func(k ColorKey) float32 { return k.Time })
	if alpha == 0 {
		return keys[i].Color
	}
	var c [4]float32
	for j := range c {
		c[j] = lerp(keys[i].Color[j], keys[i+1].Color[j], alpha)
	}
	return c
}

// stepAttachment returns the attachment key in effect at t; before the first key there is none.
func stepAttachment(keys []AttachmentKey, t float32) (string, bool) {
	found := -1
	for i, k := range keys {
		if k.Time > t {
			break
		}
		found = i
	}
	if found < 0 {
		return "", false
	}
	return keys[found].Name, true
}

func (r *Rig) trackAt(index int) *track {
	for len(r.tracks) <= index {
		r.tracks = append(r.tracks, &track{})
	}
	return r.tracks[index]
}

// SetTrack replaces whatever plays on the track with the named animation and drops queued entries.
// Unknown animation names are ignored.
func (r *Rig) SetTrack(index int, name string, loop bool) {
	anim, ok := r.animations[name]
	if !ok || index < 0 {
		return
	}
	r.trackAt(index).set(anim, loop)
}

// AddTrack queues the named animation after the entries already on the track. The delay is
// measured from the start of the previous entry; a delay <= 0 starts it when the previous entry ends.
// Unknown animation names are ignored.
func (r *Rig) AddTrack(index int, name string, loop bool, delay float32) {
	anim, ok := r.animations[name]
	if !ok || index < 0 {
		return
	}
	r.trackAt(index).add(anim, loop, delay)
}

// Current returns the name of the animation playing on the track.
func (r *Rig) Current(index int) (string, bool) {
	if index < 0 || index >= len(r.tracks) || r.tracks[index].current == nil {
		return "", false
	}
	return r.tracks[index].current.anim.name, true
}

// HasAnimation reports whether the rig defines the named animation.
func (r *Rig) HasAnimation(name string) bool {
	_, ok := r.animations[name]
	return ok
}

// Animations returns the defined animation names in sorted order.
func (r *Rig) Animations() []string {
	names := make([]string, 0, len(r.animations))
	for name := range r.animations {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Tint returns the skeleton-wide color multiplier.
func (r *Rig) Tint() [4]float32 {
	return r.tint
}

// SetTint sets the skeleton-wide color multiplier.
func (r *Rig) SetTint(c [4]float32) {
	r.tint = c
}

// Advance moves every track forward by delta seconds and recomputes the pose.
func (r *Rig) Advance(delta float32) {
	for _, t := range r.tracks {
		t.advance(delta)
	}
	r.pose()
}

// Slots yields the posed slots in draw order. The yielded attachments are reused across frames and
// stay valid until the next Advance.
func (r *Rig) Slots() iter.Seq[PosedSlot] {
	return func(yield func(PosedSlot) bool) {
		for i := range r.slots {
			s := &r.slots[i]
			ps := PosedSlot{Name: s.name, Tint: s.color}
			if s.attachment != nil {
				ps.Attachment = &s.posed
			}
			if !yield(ps) {
				return
			}
		}
	}
}

// Release drops the rig's handle on its atlas.
func (r *Rig) Release() {
	if r.atlas != nil {
		r.atlas.Release()
		r.atlas = nil
	}
}

// pose resets to the setup pose, applies the current entry of every track in index order and
// recomputes world transforms and attachment geometry.
func (r *Rig) pose() {
	for i := range r.bones {
		b := &r.bones[i]
		b.x, b.y, b.rotation = b.setup.X, b.setup.Y, b.setup.Rotation
		b.scaleX, b.scaleY = b.setup.ScaleX, b.setup.ScaleY
	}
	for i := range r.slots {
		s := &r.slots[i]
		s.color = s.setupColor
		s.attachment = s.attachments[s.setupAttachment]
	}

	for _, t := range r.tracks {
		if t.current != nil {
			r.apply(t.current.anim, t.current.localTime())
		}
	}

	for i := range r.bones {
		b := &r.bones[i]
		local := mgl32.Translate2D(b.x, b.y).
			Mul3(mgl32.HomogRotate2D(mgl32.DegToRad(b.rotation))).
			Mul3(mgl32.Scale2D(b.scaleX, b.scaleY))
		if b.parent < 0 {
			b.world = local
		} else {
			b.world = r.bones[b.parent].world.Mul3(local)
		}
	}

	for i := range r.slots {
		r.poseSlot(&r.slots[i])
	}
}

func (r *Rig) apply(anim *animation, t float32) {
	for _, tl := range anim.bones {
		b := &r.bones[tl.bone]
		if len(tl.rotate) > 0 {
			b.rotation = b.setup.Rotation + sampleScalar(tl.rotate, t)
		}
		if len(tl.translate) > 0 {
			x, y := sampleVector(tl.translate, t)
			b.x, b.y = b.setup.X+x, b.setup.Y+y
		}
		if len(tl.scale) > 0 {
			x, y := sampleVector(tl.scale, t)
			b.scaleX, b.scaleY = b.setup.ScaleX*x, b.setup.ScaleY*y
		}
	}
	for _, tl := range anim.slots {
		s := &r.slots[tl.slot]
		if len(tl.color) > 0 {
			s.color = sampleColor(tl.color, t)
		}
		if name, ok := stepAttachment(tl.attachment, t); ok {
			s.attachment = s.attachments[name]
		}
	}
}

func (r *Rig) poseSlot(s *slot) {
	att := s.attachment
	if att == nil {
		return
	}
	p := &s.posed
	p.Kind = att.kind
	p.Texture = att.texture
	p.UVs = att.uvs
	p.Triangles = att.triangles
	p.WorldVertices = p.WorldVertices[:0]

	world := r.bones[s.bone].world
	switch att.kind {
	case AttachmentRegion:
		m := world.Mul3(att.local)
		for i := 0; i < len(att.corners); i += 2 {
			v := m.Mul3x1(mgl32.Vec3{att.corners[i], att.corners[i+1], 1})
			p.WorldVertices = append(p.WorldVertices, v[0], v[1])
		}
	case AttachmentMesh:
		for i := 0; i < len(att.vertices); i += 2 {
			v := world.Mul3x1(mgl32.Vec3{att.vertices[i], att.vertices[i+1], 1})
			p.WorldVertices = append(p.WorldVertices, v[0], v[1])
		}
	}
}
