package pose

import "math"

// trackEntry is one animation scheduled on a track.
type trackEntry struct {
	anim *animation
	loop bool
	// delay is measured from the start of the previous entry on the same track.
	delay float32
	// time is the playback position of the entry in seconds.
	time float32
}

// end returns the time at which the entry finishes its current play-through:
// the duration for one-shots, the end of the current loop iteration for looping entries.
func (e *trackEntry) end() float32 {
	d := e.anim.duration
	if d <= 0 {
		return 0
	}
	if !e.loop {
		return d
	}
	return d * (1 + float32(math.Floor(float64(e.time/d))))
}

// localTime returns the position within the animation timelines.
func (e *trackEntry) localTime() float32 {
	d := e.anim.duration
	if d <= 0 {
		return 0
	}
	if e.loop {
		return float32(math.Mod(float64(e.time), float64(d)))
	}
	return min(e.time, d)
}

// track is a queue of entries: the one playing plus the ones waiting for their delay to elapse.
type track struct {
	current *trackEntry
	queue   []*trackEntry
}

func (t *track) set(anim *animation, loop bool) {
	t.current = &trackEntry{anim: anim, loop: loop}
	t.queue = t.queue[:0]
}

// add queues an entry. A delay <= 0 resolves to the end of the previous entry.
func (t *track) add(anim *animation, loop bool, delay float32) {
	if t.current == nil {
		t.current = &trackEntry{anim: anim, loop: loop}
		return
	}
	prev := t.current
	if n := len(t.queue); n > 0 {
		prev = t.queue[n-1]
	}
	if delay <= 0 {
		delay = prev.end()
	}
	t.queue = append(t.queue, &trackEntry{anim: anim, loop: loop, delay: delay})
}

// advance moves playback forward, promoting queued entries whose delay has elapsed and carrying
// over the excess time.
func (t *track) advance(dt float32) {
	if t.current == nil {
		return
	}
	t.current.time += dt
	for len(t.queue) > 0 {
		next := t.queue[0]
		if t.current.time < next.delay {
			break
		}
		next.time = t.current.time - next.delay
		t.current = next
		t.queue = t.queue[1:]
	}
}
