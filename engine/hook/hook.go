// Package hook delivers process-wide keyboard events, including keys pressed while another
// application has focus.
//
// The OS callback runs outside the main loop. Events cross into the loop through a single
// buffered channel registered once per process; nothing else is shared.
package hook

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-widget/common"
)

// KeyState distinguishes presses from releases.
type KeyState int

const (
	KeyPressed KeyState = iota
	KeyReleased
)

func (s KeyState) String() string {
	if s == KeyReleased {
		return "released"
	}
	return "pressed"
}

// Event is one global key transition.
type Event struct {
	State KeyState
	// Key is the platform independent key, KeyUnknown when the virtual key has no mapping.
	Key common.Key
	// VKCode is the raw OS virtual key code.
	VKCode uint32
	// Modifiers is the modifier state at the time of the event.
	Modifiers common.Modifiers
}

// ErrAlreadyInstalled is returned by Install after the first call.
var ErrAlreadyInstalled = errors.New("global key hook already installed")

var (
	sinkOnce sync.Once
	sink     chan<- Event
)

// claimSink stores events as the process-wide sink on the first call only.
func claimSink(events chan<- Event) bool {
	claimed := false
	sinkOnce.Do(func() {
		sink = events
		claimed = true
	})
	return claimed
}

// deliver hands e to the sink without blocking. The event is dropped when the channel is full.
func deliver(e Event) bool {
	select {
	case sink <- e:
		return true
	default:
		return false
	}
}

// Hook is an armed OS keyboard hook.
type Hook struct {
	closeOnce sync.Once
	disarm    func() error
	closeErr  error
}

// Install registers events as the destination of global key events and arms the OS hook.
// The sink can be set once per process; it stays in place after Close.
//
// Parameters:
//   - events: the buffered channel drained by the main loop
//
// Returns:
//   - *Hook: the armed hook
//   - error: ErrAlreadyInstalled on a second call, errors.ErrUnsupported on platforms without a
//     global hook, or the OS error
func Install(events chan<- Event) (*Hook, error) {
	if events == nil {
		return nil, errors.New("nil event channel")
	}
	if !claimSink(events) {
		return nil, ErrAlreadyInstalled
	}
	disarm, err := arm()
	if err != nil {
		return nil, fmt.Errorf("failed to arm keyboard hook: %w", err)
	}
	return &Hook{disarm: disarm}, nil
}

// Close disarms the OS hook. Calling it again returns the first result.
func (h *Hook) Close() error {
	h.closeOnce.Do(func() {
		if h.disarm != nil {
			h.closeErr = h.disarm()
		}
	})
	return h.closeErr
}
