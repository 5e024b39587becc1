package timeline

import (
	"math"

	"github.com/milk9111/listeningjourney/common"
)

// Sprite is the animation state of the traveller at one instant. It is derived
// from the playhead, so it freezes whenever the audio does.
type Sprite struct {
	Section  int     `json:"section"`
	Movement string  `json:"movement"`
	Phase    float64 `json:"phase"`
	Frame    int     `json:"frame"`
	Scale    float64 `json:"scale"`
}

// SpriteAt returns the sprite state at t for a sheet of frames frames.
func SpriteAt(t float64, sections []Section, frames int) Sprite {
	i, ok := sectionAt(t, sections)
	if !ok {
		return Sprite{Movement: MovementStill, Scale: 1}
	}
	s := sections[i]
	out := Sprite{Section: i, Movement: s.Movement, Scale: DynamicsScale(s.Dynamics)}

	cycle := CycleDuration(s.Movement)
	if cycle <= 0 || frames <= 0 {
		return out
	}
	out.Phase = common.Fract(SectionElapsed(t, s) / cycle)
	out.Frame = int(math.Floor(out.Phase * float64(frames)))
	if out.Frame >= frames {
		out.Frame = frames - 1
	}
	return out
}
