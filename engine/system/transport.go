package system

import (
	"github.com/milk9111/listeningjourney/engine"
)

// TransportSystem lets polling transports inspect their player once per
// frame and applies whatever they reported before the clock ticks.
type TransportSystem struct{}

func NewTransportSystem() *TransportSystem {
	return &TransportSystem{}
}

func (s *TransportSystem) Update(w *engine.World) {
	if w == nil || !w.InFrame() {
		return
	}
	if p, ok := w.Transport().(engine.Poller); ok {
		p.Poll()
		w.DrainTransport()
	}
}
