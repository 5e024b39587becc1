package system

import (
	"github.com/milk9111/listeningjourney/engine"
)

// ClockSystem copies the transport position into the clock and publishes the
// clock's view of playback into the frame.
type ClockSystem struct{}

func NewClockSystem() *ClockSystem {
	return &ClockSystem{}
}

func (s *ClockSystem) Update(w *engine.World) {
	if w == nil {
		return
	}
	clock := w.Clock()
	if w.InFrame() {
		clock.Tick()
	}

	f := w.Frame()
	f.CurrentTime = clock.CurrentTime()
	f.TotalDuration = w.Session().TotalDuration()
	f.IsPlaying = clock.IsPlaying()
	f.Status = clock.State()
	f.Error = ""
	if err := clock.Err(); err != nil {
		f.Error = err.Error()
	}
	f.Mode = w.Session().Mode().String()
}
