package system

import (
	"github.com/milk9111/listeningjourney/engine"
	"github.com/milk9111/listeningjourney/timeline"
)

// ScrollSystem derives the scroll offset from the playhead. The offset is a
// pure function of time, so seeking backwards scrolls backwards.
type ScrollSystem struct{}

func NewScrollSystem() *ScrollSystem {
	return &ScrollSystem{}
}

func (s *ScrollSystem) Update(w *engine.World) {
	if w == nil {
		return
	}
	f := w.Frame()
	f.ScrollOffset = timeline.OffsetAtTime(f.CurrentTime, w.Session().Sections())
}
