package animator

import "github.com/Carmen-Shannon/oxy-widget/engine/config"

// SequencerBuilderOption is a functional option applied to a sequencer during construction via NewSequencer.
type SequencerBuilderOption func(*sequencer)

// WithActions sets the action table.
//
// Parameters:
//   - actions: the configured actions
//
// Returns:
//   - SequencerBuilderOption: a function that applies the actions option to a sequencer
func WithActions(actions []config.Action) SequencerBuilderOption {
	return func(s *sequencer) {
		s.actions = actions
	}
}

// WithIdleAnimation sets the animation queued after actions that return to idle.
func WithIdleAnimation(name string) SequencerBuilderOption {
	return func(s *sequencer) {
		s.idle = name
	}
}

// WithTrack sets the track index commanded by the sequencer. The default is 0.
func WithTrack(track int) SequencerBuilderOption {
	return func(s *sequencer) {
		s.track = track
	}
}

// WithScaler sets the receiver of the Ctrl+= and Ctrl+- shortcuts.
func WithScaler(scaler Scaler) SequencerBuilderOption {
	return func(s *sequencer) {
		s.scaler = scaler
	}
}

// WithScaleStep sets the scale change per shortcut press.
func WithScaleStep(step float32) SequencerBuilderOption {
	return func(s *sequencer) {
		s.scaleStep = step
	}
}
