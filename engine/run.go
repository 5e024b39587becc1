package engine

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/milk9111/listeningjourney/playback"
)

// idlePoll is how often a Poller transport is inspected while no frame loop
// runs, so a stalled track can report its recovery.
const idlePoll = 100 * time.Millisecond

// ErrNoTicker is returned by Run for a world whose clock does not drive a
// playback.TickerLoop.
var ErrNoTicker = errors.New("engine: run needs a ticker frame loop")

// Run drives the world without a window. Frames come from the clock's ticker
// loop, which the clock starts and stops; commands and transport events are
// applied as they arrive. Run returns when ctx is done.
func (w *World) Run(ctx context.Context) error {
	loop, ok := w.clock.Loop().(*playback.TickerLoop)
	if !ok {
		return ErrNoTicker
	}
	defer w.Stop()
	defer loop.Stop()

	idle := time.NewTicker(idlePoll)
	defer idle.Stop()

	events := w.transport.Events()
	w.Refresh()
	log.Info().Str("component", "engine").Msg("run loop started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("component", "engine").Msg("run loop stopped")
			return ctx.Err()

		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			w.HandleTransportEvent(ev)
			if !loop.Active() {
				w.Refresh()
			}

		case cmd := <-w.commands:
			w.apply(cmd)
			w.DrainTransport()
			if !loop.Active() {
				w.Refresh()
			}

		case <-loop.C():
			w.Update()

		case <-idle.C:
			if loop.Active() {
				continue
			}
			if p, ok := w.transport.(Poller); ok {
				p.Poll()
			}
		}
	}
}
