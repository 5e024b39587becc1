package system

import (
	"github.com/milk9111/listeningjourney/engine"
)

// OverlaySystem places the items visible at the playhead.
type OverlaySystem struct{}

func NewOverlaySystem() *OverlaySystem {
	return &OverlaySystem{}
}

func (s *OverlaySystem) Update(w *engine.World) {
	if w == nil {
		return
	}
	f := w.Frame()
	session := w.Session()
	f.Overlays = session.Overlays().Placements(f.CurrentTime, f.ScrollOffset, session.TotalDuration(), session.Mode())
}
