package animator

import (
	"fmt"
	"slices"
	"testing"

	"github.com/Carmen-Shannon/oxy-widget/common"
	"github.com/Carmen-Shannon/oxy-widget/engine/config"
	"github.com/Carmen-Shannon/oxy-widget/engine/hook"
)

type recordingTracks struct {
	calls []string
}

func (r *recordingTracks) SetTrack(track int, name string, loop bool) {
	r.calls = append(r.calls, fmt.Sprintf("set(%d,%s,%t)", track, name, loop))
}

func (r *recordingTracks) AddTrack(track int, name string, loop bool, delay float32) {
	r.calls = append(r.calls, fmt.Sprintf("add(%d,%s,%t,%g)", track, name, loop, delay))
}

type recordingScaler struct {
	deltas []float32
}

func (s *recordingScaler) AdjustScale(delta float32) float32 {
	s.deltas = append(s.deltas, delta)
	return 1 + delta
}

func length(v float32) *float32 { return &v }

func waveAction() config.Action {
	return config.Action{
		Trigger: common.KeyW,
		Sequence: []config.AnimationItem{
			{Name: "Wave", Length: length(1.2)},
			{Name: "Idle2", Loop: true},
		},
		ReturnToIdle: true,
	}
}

func TestKeyDownSequence(t *testing.T) {
	tests := map[string]struct {
		action config.Action
		idle   string
		want   []string
	}{
		"return to idle": {
			action: waveAction(),
			idle:   "Idle",
			want:   []string{"set(0,Wave,false)", "add(0,Idle2,true,1.2)", "add(0,Idle,true,0)"},
		},
		"no idle configured": {
			action: waveAction(),
			want:   []string{"set(0,Wave,false)", "add(0,Idle2,true,1.2)"},
		},
		"return disabled": {
			action: config.Action{Trigger: common.KeyW, Sequence: []config.AnimationItem{{Name: "Sit", Loop: true, Length: length(3)}}},
			idle:   "Idle",
			want:   []string{"set(0,Sit,true)"},
		},
		"idle after length": {
			action: config.Action{Trigger: common.KeyW, Sequence: []config.AnimationItem{{Name: "Jump", Length: length(0.5)}}, ReturnToIdle: true},
			idle:   "Idle",
			want:   []string{"set(0,Jump,false)", "add(0,Idle,true,0.5)"},
		},
		"unknown names pass through": {
			action: config.Action{Trigger: common.KeyW, Sequence: []config.AnimationItem{{Name: "Nope"}}, ReturnToIdle: true},
			idle:   "AlsoNope",
			want:   []string{"set(0,Nope,false)", "add(0,AlsoNope,true,0)"},
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			tracks := &recordingTracks{}
			s := NewSequencer(tracks, WithActions([]config.Action{tt.action}), WithIdleAnimation(tt.idle))
			if !s.KeyDown(common.KeyW) {
				t.Error("key not consumed")
			}
			if !slices.Equal(tracks.calls, tt.want) {
				t.Errorf("got %v, want %v", tracks.calls, tt.want)
			}
		})
	}
}

func TestKeyRepeatSuppressed(t *testing.T) {
	tracks := &recordingTracks{}
	s := NewSequencer(tracks, WithActions([]config.Action{waveAction()}))

	s.KeyDown(common.KeyW)
	if !s.KeyDown(common.KeyW) {
		t.Error("repeat not consumed")
	}
	if len(tracks.calls) != 2 {
		t.Fatalf("holding the key fired %d commands, want 2", len(tracks.calls))
	}
	if !s.Pressed(common.KeyW) {
		t.Error("key should be held")
	}

	if !s.KeyUp(common.KeyW) || s.KeyUp(common.KeyW) {
		t.Error("KeyUp should report the held key once")
	}
	s.KeyDown(common.KeyW)
	if len(tracks.calls) != 4 {
		t.Errorf("release then press fired %d commands in total, want 4", len(tracks.calls))
	}
}

func TestMultipleActionsShareTrigger(t *testing.T) {
	tracks := &recordingTracks{}
	second := config.Action{Trigger: common.KeyW, Sequence: []config.AnimationItem{{Name: "Blink"}}}
	s := NewSequencer(tracks, WithActions([]config.Action{waveAction(), second}), WithTrack(2))

	s.KeyDown(common.KeyW)
	want := []string{"set(2,Wave,false)", "add(2,Idle2,true,1.2)", "set(2,Blink,false)"}
	if !slices.Equal(tracks.calls, want) {
		t.Errorf("got %v, want %v", tracks.calls, want)
	}
}

func TestUnboundKeyNotConsumed(t *testing.T) {
	tracks := &recordingTracks{}
	s := NewSequencer(tracks, WithActions([]config.Action{waveAction()}))
	if s.KeyDown(common.KeyQ) {
		t.Error("unbound key consumed")
	}
	if len(tracks.calls) != 0 {
		t.Errorf("got %v", tracks.calls)
	}
}

func TestScaleShortcuts(t *testing.T) {
	tests := map[string]struct {
		mods  common.Modifiers
		key   common.Key
		want  []float32
		calls int
	}{
		"ctrl equals":      {mods: common.ModControl, key: common.KeyEqual, want: []float32{0.1}},
		"ctrl minus":       {mods: common.ModControl, key: common.KeyMinus, want: []float32{-0.1}},
		"ctrl shift equal": {mods: common.ModControl | common.ModShift, key: common.KeyEqual, calls: 1},
		"no modifier":      {key: common.KeyMinus, calls: 1},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			tracks := &recordingTracks{}
			scaler := &recordingScaler{}
			action := config.Action{Trigger: tt.key, Sequence: []config.AnimationItem{{Name: "Bound"}}}
			s := NewSequencer(tracks, WithScaler(scaler), WithActions([]config.Action{action}))
			s.SetModifiers(tt.mods)

			if !s.KeyDown(tt.key) {
				t.Error("key not consumed")
			}
			if !slices.Equal(scaler.deltas, tt.want) {
				t.Errorf("got scale deltas %v, want %v", scaler.deltas, tt.want)
			}
			if len(tracks.calls) != tt.calls {
				t.Errorf("got %d track commands, want %d", len(tracks.calls), tt.calls)
			}
		})
	}
}

func TestHandleEvent(t *testing.T) {
	tracks := &recordingTracks{}
	scaler := &recordingScaler{}
	s := NewSequencer(tracks, WithScaler(scaler), WithScaleStep(0.25), WithActions([]config.Action{waveAction()}))

	s.HandleEvent(hook.Event{State: hook.KeyPressed, Key: common.KeyEqual, Modifiers: common.ModControl})
	if !slices.Equal(scaler.deltas, []float32{0.25}) {
		t.Errorf("got scale deltas %v", scaler.deltas)
	}
	if s.Modifiers() != common.ModControl {
		t.Errorf("got modifiers %v", s.Modifiers())
	}

	s.HandleEvent(hook.Event{State: hook.KeyPressed, Key: common.KeyW})
	s.HandleEvent(hook.Event{State: hook.KeyReleased, Key: common.KeyW})
	s.HandleEvent(hook.Event{State: hook.KeyPressed, Key: common.KeyUnknown, VKCode: 0xFF})
	if s.Pressed(common.KeyW) || len(tracks.calls) != 2 {
		t.Errorf("got pressed=%v calls=%v", s.Pressed(common.KeyW), tracks.calls)
	}
}

func TestSetActionsAndIdle(t *testing.T) {
	tracks := &recordingTracks{}
	s := NewSequencer(tracks)
	s.SetActions([]config.Action{waveAction()})
	s.SetIdleAnimation("Idle")
	s.KeyDown(common.KeyW)
	if len(tracks.calls) != 3 {
		t.Errorf("got %v", tracks.calls)
	}
}
