// Package engine runs a journey frame by frame. A World owns the session,
// the playback clock and the derived frame state; every mutation reaches it
// as a Command applied on the world's own goroutine.
package engine

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/milk9111/listeningjourney/journey"
	"github.com/milk9111/listeningjourney/playback"
)

const commandBuffer = 64

// Poller is implemented by transports that synthesize their events by
// inspecting the player once per frame.
type Poller interface {
	Poll()
}

type World struct {
	session   *journey.Session
	transport playback.Transport
	clock     *playback.Clock
	pipeline  Pipeline
	events    EventQueue

	commands chan Command
	stopped  chan struct{}
	stopOnce sync.Once

	frame   FrameState
	inFrame bool
	frames  uint64

	pubMu      sync.RWMutex
	published  FrameState
	publishers []Publisher
}

// NewWorld builds a world around session. The clock drives loop; pass a
// playback.ManualLoop when the host already has a frame callback.
func NewWorld(session *journey.Session, tr playback.Transport, loop playback.FrameLoop) *World {
	w := &World{
		session:   session,
		transport: tr,
		commands:  make(chan Command, commandBuffer),
		stopped:   make(chan struct{}),
	}
	w.clock = playback.NewClock(tr, loop, playback.Hooks{
		OnStateChange: w.onStateChange,
		OnLoaded:      w.onLoaded,
		OnEnded:       w.onEnded,
	})
	return w
}

func (w *World) Session() *journey.Session {
	return w.session
}

func (w *World) Clock() *playback.Clock {
	return w.clock
}

func (w *World) Transport() playback.Transport {
	return w.transport
}

// Frame is the frame under construction. Only systems write to it.
func (w *World) Frame() *FrameState {
	return &w.frame
}

// Events returns the world notice queue.
func (w *World) Events() *EventQueue {
	return &w.events
}

// InFrame reports whether the systems are running for a real frame rather
// than a refresh after a command.
func (w *World) InFrame() bool {
	return w.inFrame
}

// AddSystem appends a named system to the update order.
func (w *World) AddSystem(name string, s System) {
	w.pipeline.Add(name, s)
}

// Systems lists the installed systems in update order.
func (w *World) Systems() []string {
	return w.pipeline.Names()
}

func (w *World) AddPublisher(p Publisher) {
	if p == nil {
		return
	}
	w.pubMu.Lock()
	w.publishers = append(w.publishers, p)
	w.pubMu.Unlock()
}

// Publish stores fs as the latest frame and hands it to every publisher.
func (w *World) Publish(fs FrameState) {
	w.pubMu.Lock()
	w.published = fs
	pubs := append([]Publisher(nil), w.publishers...)
	w.pubMu.Unlock()
	for _, p := range pubs {
		p.Publish(fs)
	}
}

// Snapshot returns the last published frame. Safe from any goroutine.
func (w *World) Snapshot() FrameState {
	w.pubMu.RLock()
	defer w.pubMu.RUnlock()
	return w.published
}

// Update runs one frame: queued commands, transport events, then every
// system in order.
func (w *World) Update() {
	if w == nil {
		return
	}
	w.drainCommands()
	w.DrainTransport()
	w.frames++
	w.inFrame = true
	w.runSystems()
}

// Refresh re-derives the frame without advancing the clock. Used after a
// command or event arrives while no frame loop is running.
func (w *World) Refresh() {
	w.inFrame = false
	w.runSystems()
}

func (w *World) runSystems() {
	w.frame.Frame = w.frames
	w.pipeline.Run(w)
}

// HandleTransportEvent passes one transport event to the clock.
func (w *World) HandleTransportEvent(ev playback.Event) {
	w.clock.HandleEvent(ev)
}

// DrainTransport applies every transport event waiting in the channel.
func (w *World) DrainTransport() {
	events := w.transport.Events()
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			w.HandleTransportEvent(ev)
		default:
			return
		}
	}
}

func (w *World) onStateChange(from, to playback.State) {
	log.Debug().Str("component", "engine").Str("from", string(from)).Str("to", string(to)).Msg("playback state")
	w.events.Push(Notice{Type: NoticeState, Message: string(to)})
}

func (w *World) onLoaded(duration float64) {
	if duration > 0 {
		w.session.SetTotalDuration(duration)
	}
	w.events.Push(Notice{Type: NoticeLoaded, Data: duration})
}

func (w *World) onEnded() {
	w.events.Push(Notice{Type: NoticeEnded})
}
