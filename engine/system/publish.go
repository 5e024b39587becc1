package system

import (
	"github.com/milk9111/listeningjourney/engine"
)

// PublishSystem hands the finished frame and the notices raised since the
// previous one to the world's publishers. It runs last.
type PublishSystem struct{}

func NewPublishSystem() *PublishSystem {
	return &PublishSystem{}
}

func (s *PublishSystem) Update(w *engine.World) {
	if w == nil {
		return
	}
	f := w.Frame()
	f.Notices = w.Events().Drain()
	out := *f
	out.Overlays = append(out.Overlays[:0:0], f.Overlays...)
	w.Publish(out)
}
