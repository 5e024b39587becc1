package system

import (
	"github.com/milk9111/listeningjourney/engine"
	"github.com/milk9111/listeningjourney/timeline"
)

// SpriteFrames is the number of frames in a traveller sprite cycle.
const SpriteFrames = 8

type SpriteSystem struct {
	frames int
}

func NewSpriteSystem(frames int) *SpriteSystem {
	if frames <= 0 {
		frames = SpriteFrames
	}
	return &SpriteSystem{frames: frames}
}

func (s *SpriteSystem) Update(w *engine.World) {
	if w == nil {
		return
	}
	f := w.Frame()
	f.Sprite = timeline.SpriteAt(f.CurrentTime, w.Session().Sections(), s.frames)
}
