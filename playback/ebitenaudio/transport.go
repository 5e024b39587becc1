// Package ebitenaudio plays journey audio through ebiten's audio package.
package ebitenaudio

import (
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/rs/zerolog/log"

	"github.com/milk9111/listeningjourney/assets"
	"github.com/milk9111/listeningjourney/playback"
)

const (
	// StallFrames is how many polls the position may stay put while the
	// player claims to be playing before a stall is reported.
	StallFrames = 20

	eventBuffer = 64
	endEpsilon  = 0.02
)

// Transport wraps an *audio.Player. Ebiten players do not report lifecycle
// events, so the transport synthesizes them: Play, Pause and Seek report
// immediately and Poll detects end of stream and stalls once per frame.
type Transport struct {
	mu sync.Mutex

	player   *audio.Player
	events   chan playback.Event
	duration float64
	wantPlay bool
	closed   bool

	lastPos    float64
	stillPolls int
	stalled    bool
}

func New() *Transport {
	return &Transport{events: make(chan playback.Event, eventBuffer)}
}

func (t *Transport) Load(src string, volume float64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return playback.ErrClosed
	}
	t.release()

	track, err := assets.LoadTrack(src)
	if err != nil {
		t.emit(playback.Event{Kind: playback.EventError, Err: err})
		return err
	}
	player, err := assets.AudioContext().NewPlayer(track.Stream)
	if err != nil {
		t.emit(playback.Event{Kind: playback.EventError, Err: err})
		return err
	}
	player.SetVolume(volume)

	t.player = player
	t.duration = track.Duration
	t.emit(playback.Event{Kind: playback.EventLoaded, Duration: t.duration})
	log.Info().Str("component", "audio").Str("src", src).Float64("duration", t.duration).Msg("track loaded")
	return nil
}

func (t *Transport) Play() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.player == nil {
		return playback.ErrNotLoaded
	}
	t.player.Play()
	t.wantPlay = true
	t.stalled = false
	t.stillPolls = 0
	t.lastPos = t.position()
	t.emit(playback.Event{Kind: playback.EventPlaying, Position: t.lastPos})
	return nil
}

func (t *Transport) Pause() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.player == nil {
		return playback.ErrNotLoaded
	}
	t.player.Pause()
	t.wantPlay = false
	t.stalled = false
	t.emit(playback.Event{Kind: playback.EventPaused, Position: t.position()})
	return nil
}

func (t *Transport) Seek(seconds float64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.player == nil {
		return playback.ErrNotLoaded
	}
	if err := t.player.SetPosition(time.Duration(seconds * float64(time.Second))); err != nil {
		return err
	}
	t.lastPos = seconds
	t.stillPolls = 0
	t.emit(playback.Event{Kind: playback.EventSeeked, Position: seconds})
	return nil
}

func (t *Transport) Position() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.position()
}

func (t *Transport) Duration() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.duration
}

func (t *Transport) Events() <-chan playback.Event {
	return t.events
}

// Poll must be called once per frame by the owner of the transport.
func (t *Transport) Poll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.player == nil || !t.wantPlay {
		return
	}

	pos := t.position()
	if t.duration > 0 && pos >= t.duration-endEpsilon {
		t.wantPlay = false
		t.emit(playback.Event{Kind: playback.EventEnded, Position: pos})
		return
	}

	if pos == t.lastPos {
		t.stillPolls++
		if !t.stalled && t.stillPolls >= StallFrames {
			t.stalled = true
			t.emit(playback.Event{Kind: playback.EventStalled, Position: pos})
		}
		return
	}

	t.lastPos = pos
	t.stillPolls = 0
	if t.stalled {
		t.stalled = false
		t.emit(playback.Event{Kind: playback.EventPlaying, Position: pos})
	}
}

func (t *Transport) SetVolume(volume float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.player != nil {
		t.player.SetVolume(volume)
	}
}

func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	t.release()
	close(t.events)
	return nil
}

func (t *Transport) position() float64 {
	if t.player == nil {
		return 0
	}
	return t.player.Position().Seconds()
}

func (t *Transport) release() {
	if t.player == nil {
		return
	}
	t.player.Pause()
	if err := t.player.Close(); err != nil {
		log.Warn().Str("component", "audio").Err(err).Msg("close player")
	}
	t.player = nil
	t.wantPlay = false
	t.stalled = false
}

func (t *Transport) emit(ev playback.Event) {
	if t.closed {
		return
	}
	select {
	case t.events <- ev:
	default:
		log.Warn().Str("component", "audio").Str("event", string(ev.Kind)).Msg("event buffer full, dropping")
	}
}
