package playback

import "errors"

var (
	ErrNotLoaded = errors.New("playback: no media loaded")
	ErrClosed    = errors.New("playback: transport closed")
)

// EventKind names a transport lifecycle signal.
type EventKind string

const (
	EventLoaded  EventKind = "loaded"
	EventPlaying EventKind = "playing"
	EventPaused  EventKind = "paused"
	EventEnded   EventKind = "ended"
	EventStalled EventKind = "stalled"
	EventSeeked  EventKind = "seeked"
	EventError   EventKind = "error"
)

// Event is one lifecycle signal from a transport. Events are delivered in the
// order the transport produced them.
type Event struct {
	Kind     EventKind
	Position float64
	Duration float64
	Err      error
}

// Transport is an audio resource whose real position is the only clock the
// engine trusts. Play, Pause and Seek are requests; their outcome is reported
// on Events.
type Transport interface {
	Load(src string, volume float64) error
	Play() error
	Pause() error
	Seek(seconds float64) error
	Position() float64
	Duration() float64
	Events() <-chan Event
	Close() error
}
