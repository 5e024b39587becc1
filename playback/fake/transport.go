// Package fake provides a simulated audio transport. Time only moves when the
// caller advances it, which makes the clock's behavior reproducible in tests
// and in the headless demo mode.
package fake

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/milk9111/listeningjourney/playback"
)

const eventBuffer = 64

// Transport is a playback.Transport driven by Advance.
type Transport struct {
	mu sync.Mutex

	// RejectPlay, when set, is returned by the next Play call, as a browser
	// does when autoplay is blocked.
	RejectPlay error
	// FailLoad, when set, is returned by Load and reported as an error event.
	FailLoad error
	// DeferPlaying holds back the playing event until ConfirmPlaying.
	DeferPlaying bool
	// LagSeeks queues seek targets until ApplySeek, like a transport that
	// applies seeks asynchronously and in order.
	LagSeeks bool
	// Realtime makes Poll advance the position by wall-clock time, for demos
	// without an audio device.
	Realtime bool

	events   chan playback.Event
	duration float64
	position float64
	volume   float64
	src      string
	loaded   bool
	playing  bool
	stalled  bool
	closed   bool

	seeks []float64

	lastPoll time.Time
}

func New(duration float64) *Transport {
	return &Transport{
		duration: duration,
		events:   make(chan playback.Event, eventBuffer),
	}
}

func (t *Transport) Load(src string, volume float64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return playback.ErrClosed
	}
	if t.FailLoad != nil {
		err := t.FailLoad
		t.emit(playback.Event{Kind: playback.EventError, Err: err})
		return err
	}
	t.src = src
	t.volume = volume
	t.loaded = true
	t.playing = false
	t.stalled = false
	t.position = 0
	t.seeks = nil
	t.emit(playback.Event{Kind: playback.EventLoaded, Duration: t.duration})
	return nil
}

func (t *Transport) Play() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.loaded {
		return playback.ErrNotLoaded
	}
	if err := t.RejectPlay; err != nil {
		t.RejectPlay = nil
		return err
	}
	t.playing = true
	t.lastPoll = time.Time{}
	if !t.DeferPlaying {
		t.emit(playback.Event{Kind: playback.EventPlaying, Position: t.position})
	}
	return nil
}

// ConfirmPlaying emits the playing event held back by DeferPlaying.
func (t *Transport) ConfirmPlaying() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.playing {
		t.emit(playback.Event{Kind: playback.EventPlaying, Position: t.position})
	}
}

func (t *Transport) Pause() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.loaded {
		return playback.ErrNotLoaded
	}
	t.playing = false
	t.emit(playback.Event{Kind: playback.EventPaused, Position: t.position})
	return nil
}

func (t *Transport) Seek(seconds float64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.loaded {
		return playback.ErrNotLoaded
	}
	if t.LagSeeks {
		t.seeks = append(t.seeks, seconds)
		return nil
	}
	t.position = seconds
	t.emit(playback.Event{Kind: playback.EventSeeked, Position: seconds})
	return nil
}

// ApplySeek lands the oldest seek held by LagSeeks and reports whether one
// was waiting.
func (t *Transport) ApplySeek() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.seeks) == 0 {
		return false
	}
	t.position = t.seeks[0]
	t.seeks = t.seeks[1:]
	t.emit(playback.Event{Kind: playback.EventSeeked, Position: t.position})
	return true
}

// PendingSeeks is the number of seeks LagSeeks is still holding.
func (t *Transport) PendingSeeks() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.seeks)
}

func (t *Transport) Position() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.position
}

func (t *Transport) Duration() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.duration
}

func (t *Transport) Events() <-chan playback.Event {
	return t.events
}

func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	t.playing = false
	close(t.events)
	return nil
}

// Advance moves the position by dt seconds while playing and not stalled.
// The position stops at the duration; reaching it does not emit an event.
func (t *Transport) Advance(dt float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.playing || t.stalled || dt <= 0 {
		return
	}
	t.position += dt
	if t.duration > 0 && t.position > t.duration {
		t.position = t.duration
	}
}

// Poll advances a Realtime transport by the time since the previous poll and
// reports the end of the track.
func (t *Transport) Poll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.Realtime || !t.playing || t.stalled {
		t.lastPoll = time.Time{}
		return
	}
	now := time.Now()
	if !t.lastPoll.IsZero() {
		t.position += now.Sub(t.lastPoll).Seconds()
	}
	t.lastPoll = now
	if t.duration > 0 && t.position >= t.duration {
		t.position = t.duration
		t.playing = false
		t.emit(playback.Event{Kind: playback.EventEnded, Position: t.position})
	}
}

// Stall simulates buffering: the position freezes and a stalled event is sent.
func (t *Transport) Stall() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.playing {
		return
	}
	t.stalled = true
	t.emit(playback.Event{Kind: playback.EventStalled, Position: t.position})
}

// Recover ends a stall.
func (t *Transport) Recover() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.stalled {
		return
	}
	t.stalled = false
	if t.playing {
		t.emit(playback.Event{Kind: playback.EventPlaying, Position: t.position})
	}
}

// End emits an ended event as a transport reaching the end of its stream would.
func (t *Transport) End() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.playing = false
	t.position = t.duration
	t.emit(playback.Event{Kind: playback.EventEnded, Position: t.position})
}

// Fail reports a transport error, such as a decode failure mid-stream.
func (t *Transport) Fail(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.playing = false
	t.emit(playback.Event{Kind: playback.EventError, Err: err, Position: t.position})
}

func (t *Transport) Playing() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.playing
}

func (t *Transport) Source() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.src
}

// Deliver drains pending events into h without blocking and returns how many
// were delivered.
func (t *Transport) Deliver(h interface{ HandleEvent(playback.Event) }) int {
	n := 0
	for {
		select {
		case ev, ok := <-t.events:
			if !ok {
				return n
			}
			h.HandleEvent(ev)
			n++
		default:
			return n
		}
	}
}

func (t *Transport) emit(ev playback.Event) {
	if t.closed {
		return
	}
	select {
	case t.events <- ev:
	default:
		log.Warn().Str("component", "fake-transport").Str("event", string(ev.Kind)).Msg("event buffer full, dropping")
	}
}
