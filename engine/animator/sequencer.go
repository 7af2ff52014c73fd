// Package animator turns key triggers into animation track commands.
package animator

import (
	"github.com/Carmen-Shannon/oxy-widget/common"
	"github.com/Carmen-Shannon/oxy-widget/engine/config"
	"github.com/Carmen-Shannon/oxy-widget/engine/hook"
)

// DefaultScaleStep is the scale change applied by the Ctrl+= and Ctrl+- shortcuts.
const DefaultScaleStep = 0.1

// TrackController is the animation state the sequencer drives.
type TrackController interface {
	// SetTrack replaces the track's current animation and drops its queue.
	SetTrack(track int, name string, loop bool)
	// AddTrack queues an animation after the track's last entry. A delay <= 0 means the end of
	// the previous entry.
	AddTrack(track int, name string, loop bool, delay float32)
}

// Scaler receives the scale shortcuts.
type Scaler interface {
	AdjustScale(delta float32) float32
}

// sequencer is the implementation of the Sequencer interface.
type sequencer struct {
	tracks    TrackController
	scaler    Scaler
	actions   []config.Action
	idle      string
	track     int
	scaleStep float32
	modifiers common.Modifiers
	pressed   map[common.Key]struct{}
}

// Sequencer maps key presses onto animation sequences according to the configured actions.
//
// Holding a key fires its actions once; the key must be released before it fires again.
// Sequencer is not safe for concurrent use.
type Sequencer interface {
	// KeyDown handles a key press.
	//
	// Parameters:
	//   - key: the pressed key
	//
	// Returns:
	//   - bool: true if the key was a repeat, a scale shortcut or triggered at least one action
	KeyDown(key common.Key) bool

	// KeyUp handles a key release.
	//
	// Parameters:
	//   - key: the released key
	//
	// Returns:
	//   - bool: true if the key was held
	KeyUp(key common.Key) bool

	// SetModifiers records the modifier keys currently held.
	SetModifiers(mods common.Modifiers)

	// Modifiers returns the modifier keys currently held.
	Modifiers() common.Modifiers

	// Pressed reports whether key is held.
	Pressed(key common.Key) bool

	// Trigger plays an action's sequence regardless of its trigger key.
	//
	// Parameters:
	//   - action: the action to play
	Trigger(action config.Action)

	// SetActions replaces the action table.
	SetActions(actions []config.Action)

	// SetIdleAnimation sets the animation queued after actions that return to idle. An empty name
	// disables the return.
	SetIdleAnimation(name string)

	// HandleEvent applies a global hook event with its modifier snapshot.
	//
	// Parameters:
	//   - e: the hook event
	HandleEvent(e hook.Event)
}

var _ Sequencer = &sequencer{}

// NewSequencer creates a Sequencer driving tracks.
//
// Parameters:
//   - tracks: the animation state to command
//   - opts: variadic list of SequencerBuilderOption functions
//
// Returns:
//   - Sequencer: the configured sequencer
func NewSequencer(tracks TrackController, opts ...SequencerBuilderOption) Sequencer {
	if tracks == nil {
		panic("animator: nil TrackController")
	}
	s := &sequencer{
		tracks:    tracks,
		scaleStep: DefaultScaleStep,
		pressed:   make(map[common.Key]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *sequencer) KeyDown(key common.Key) bool {
	if _, held := s.pressed[key]; held {
		return true
	}
	s.pressed[key] = struct{}{}

	if s.modifiers == common.ModControl {
		switch key {
		case common.KeyEqual:
			s.adjustScale(s.scaleStep)
			return true
		case common.KeyMinus:
			s.adjustScale(-s.scaleStep)
			return true
		}
	}

	consumed := false
	for _, action := range s.actions {
		if action.Trigger == key {
			s.Trigger(action)
			consumed = true
		}
	}
	return consumed
}

func (s *sequencer) adjustScale(delta float32) {
	if s.scaler != nil {
		s.scaler.AdjustScale(delta)
	}
}

func (s *sequencer) KeyUp(key common.Key) bool {
	if _, held := s.pressed[key]; !held {
		return false
	}
	delete(s.pressed, key)
	return true
}

func (s *sequencer) SetModifiers(mods common.Modifiers) {
	s.modifiers = mods
}

func (s *sequencer) Modifiers() common.Modifiers {
	return s.modifiers
}

func (s *sequencer) Pressed(key common.Key) bool {
	_, held := s.pressed[key]
	return held
}

func (s *sequencer) Trigger(action config.Action) {
	var lastDelay float32
	for i, item := range action.Sequence {
		if i == 0 {
			s.tracks.SetTrack(s.track, item.Name, item.Loop)
		} else {
			s.tracks.AddTrack(s.track, item.Name, item.Loop, lastDelay)
		}
		lastDelay = item.Delay()
	}
	if action.ReturnToIdle && s.idle != "" {
		s.tracks.AddTrack(s.track, s.idle, true, lastDelay)
	}
}

func (s *sequencer) SetActions(actions []config.Action) {
	s.actions = actions
}

func (s *sequencer) SetIdleAnimation(name string) {
	s.idle = name
}

func (s *sequencer) HandleEvent(e hook.Event) {
	if e.Key == common.KeyUnknown {
		return
	}
	s.SetModifiers(e.Modifiers)
	switch e.State {
	case hook.KeyPressed:
		s.KeyDown(e.Key)
	case hook.KeyReleased:
		s.KeyUp(e.Key)
	}
}
