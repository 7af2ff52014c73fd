package pose

import (
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-widget/common"
	"github.com/Carmen-Shannon/oxy-widget/engine/renderer/texture"
)

const rigAtlas = `rig.png
size: 128, 128
body
bounds: 0, 0, 64, 32
arm
bounds: 64, 0, 32, 32
`

const rigDoc = `
bones:
  - name: root
  - name: arm
    parent: root
    x: 10
slots:
  - name: body
    bone: root
    attachment: body
  - name: arm
    bone: arm
    color: [1, 0.5, 0.5, 1]
    attachment: arm
  - name: marker
    bone: root
    attachment: tip
attachments:
  body:
    body:
      width: 4
      height: 2
  arm:
    arm:
      type: mesh
      vertices: [0, 0, 1, 0, 0, 1]
      uvs: [0, 0, 1, 0, 0, 1]
      triangles: [0, 1, 2]
  marker:
    tip:
      type: point
animations:
  Wave:
    bones:
      root:
        rotate:
          - {time: 0, value: 0}
          - {time: 1, value: 90}
    slots:
      arm:
        attachment:
          - {time: 0.5, name: ""}
  Idle:
    duration: 2
    slots:
      body:
        color:
          - {time: 0, color: [1, 1, 1, 1]}
          - {time: 2, color: [0, 0, 0, 1]}
`

func newTestRig(t *testing.T) (*Rig, *texture.Texture, *int) {
	t.Helper()
	atlas, err := ParseAtlas(strings.NewReader(rigAtlas))
	if err != nil {
		t.Fatalf("ParseAtlas: %v", err)
	}
	tex := texture.NewTexture("rig.png", &texture.Image{Pixels: make([]byte, 4), Width: 1, Height: 1}, atlas.Pages()[0].Config)
	atlas.Pages()[0].SetTexture(tex)

	doc, err := ParseRigData(strings.NewReader(rigDoc))
	if err != nil {
		t.Fatalf("ParseRigData: %v", err)
	}
	released := 0
	handle := common.NewShared(atlas, func(a *Atlas) {
		released++
		a.Release()
	})
	rig, err := NewRig(doc, handle)
	if err != nil {
		t.Fatalf("NewRig: %v", err)
	}
	return rig, tex, &released
}

func slotsByName(r *Rig) map[string]PosedSlot {
	out := make(map[string]PosedSlot)
	for s := range r.Slots() {
		out[s.Name] = s
	}
	return out
}

func assertVertices(t *testing.T, got, want []float32) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d vertex values, want %d", len(got), len(want))
	}
	for i := range got {
		if !nearTol(got[i], want[i], 1e-4) {
			t.Errorf("value %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func nearTol(a, b, tol float32) bool {
	d := a - b
	return d < tol && d > -tol
}

func TestRigSetupPose(t *testing.T) {
	rig, tex, _ := newTestRig(t)

	var order []string
	for s := range rig.Slots() {
		order = append(order, s.Name)
	}
	if strings.Join(order, ",") != "body,arm,marker" {
		t.Fatalf("got draw order %v", order)
	}

	slots := slotsByName(rig)
	body := slots["body"].Attachment
	if body == nil || body.Kind != AttachmentRegion || body.Texture != tex {
		t.Fatalf("got body attachment %+v", body)
	}
	assertVertices(t, body.WorldVertices, []float32{-2, -1, -2, 1, 2, 1, 2, -1})
	assertVertices(t, body.UVs, []float32{0, 0.25, 0, 0, 0.5, 0, 0.5, 0.25})

	arm := slots["arm"]
	if arm.Tint != [4]float32{1, 0.5, 0.5, 1} {
		t.Errorf("got arm tint %v", arm.Tint)
	}
	if arm.Attachment.Kind != AttachmentMesh {
		t.Fatalf("got arm kind %v, want mesh", arm.Attachment.Kind)
	}
	assertVertices(t, arm.Attachment.WorldVertices, []float32{10, 0, 11, 0, 10, 1})
	assertVertices(t, arm.Attachment.UVs, []float32{0.5, 0, 0.75, 0, 0.5, 0.25})
	if len(arm.Attachment.Triangles) != 3 {
		t.Errorf("got %d triangle indices, want 3", len(arm.Attachment.Triangles))
	}

	if slots["marker"].Attachment.Kind != AttachmentOther {
		t.Errorf("point attachment must be classified as other")
	}
}

func TestRigAnimationApplies(t *testing.T) {
	rig, _, _ := newTestRig(t)
	rig.SetTrack(0, "Wave", false)

	rig.Advance(0.25)
	if slotsByName(rig)["arm"].Attachment == nil {
		t.Fatalf("arm hidden before its attachment key")
	}

	rig.Advance(1.0)
	slots := slotsByName(rig)
	if slots["arm"].Attachment != nil {
		t.Errorf("arm attachment should be hidden after 0.5s")
	}
	// root rotated by 90 degrees counter-clockwise, clamped at the end of the one-shot
	assertVertices(t, slots["body"].Attachment.WorldVertices, []float32{1, -2, -1, -2, -1, 2, 1, 2})
}

func TestRigColorTimelineLoops(t *testing.T) {
	rig, _, _ := newTestRig(t)
	rig.SetTrack(0, "Idle", true)
	rig.Advance(3)

	got := slotsByName(rig)["body"].Tint
	want := [4]float32{0.5, 0.5, 0.5, 1}
	for i := range got {
		if !nearTol(got[i], want[i], 1e-4) {
			t.Fatalf("got tint %v, want %v", got, want)
		}
	}
}

func TestRigTracksAndUnknownNames(t *testing.T) {
	rig, _, _ := newTestRig(t)
	rig.SetTrack(0, "Idle", true)
	rig.SetTrack(0, "Missing", false)
	rig.AddTrack(0, "Missing", false, 0)

	name, ok := rig.Current(0)
	if !ok || name != "Idle" {
		t.Fatalf("unknown names must be ignored, got %q", name)
	}

	rig.AddTrack(0, "Wave", false, 0.5)
	rig.Advance(0.6)
	if name, _ := rig.Current(0); name != "Wave" {
		t.Errorf("got %q after delay, want Wave", name)
	}

	if got := rig.Animations(); strings.Join(got, ",") != "Idle,Wave" {
		t.Errorf("got animations %v", got)
	}
}

func TestRigReleaseDropsAtlas(t *testing.T) {
	rig, tex, released := newTestRig(t)
	rig.Release()
	rig.Release()
	if *released != 1 {
		t.Fatalf("atlas disposed %d times, want 1", *released)
	}
	if tex.Image() != nil {
		t.Errorf("page texture still holds its image after release")
	}
}

func TestNewRigErrors(t *testing.T) {
	atlas, _ := ParseAtlas(strings.NewReader(rigAtlas))
	tests := map[string]string{
		"parent after child": "bones:\n  - name: a\n    parent: b\n  - name: b\n",
		"unknown slot bone":  "bones:\n  - name: a\nslots:\n  - name: s\n    bone: x\n",
		"missing region":     "bones:\n  - name: a\nslots:\n  - name: s\n    bone: a\nattachments:\n  s:\n    nope: {}\n",
		"bad mesh":           "bones:\n  - name: a\nslots:\n  - name: s\n    bone: a\nattachments:\n  s:\n    body: {type: mesh, vertices: [0, 0], uvs: [0]}\n",
		"unknown anim bone":  "bones:\n  - name: a\nanimations:\n  X:\n    bones:\n      zz:\n        rotate: [{time: 0, value: 1}]\n",
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			doc, err := ParseRigData(strings.NewReader(src))
			if err != nil {
				t.Fatalf("ParseRigData: %v", err)
			}
			if _, err := NewRig(doc, common.NewShared(atlas, nil)); err == nil {
				t.Errorf("expected error")
			}
		})
	}
}
