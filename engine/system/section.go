package system

import (
	"github.com/milk9111/listeningjourney/engine"
	"github.com/milk9111/listeningjourney/timeline"
)

type SectionSystem struct{}

func NewSectionSystem() *SectionSystem {
	return &SectionSystem{}
}

func (s *SectionSystem) Update(w *engine.World) {
	if w == nil {
		return
	}
	f := w.Frame()
	sections := w.Session().Sections()
	f.CurrentSectionIndex = timeline.CurrentSectionIndex(f.CurrentTime, sections)
	f.Section = nil
	if f.CurrentSectionIndex < len(sections) {
		sec := sections[f.CurrentSectionIndex]
		f.Section = &sec
	}
}
