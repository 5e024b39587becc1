package engine

import (
	"github.com/milk9111/listeningjourney/overlay"
	"github.com/milk9111/listeningjourney/playback"
	"github.com/milk9111/listeningjourney/timeline"
)

// FrameState is everything a renderer needs for one frame. It is derived
// from the clock and the session; renderers never compute it themselves.
type FrameState struct {
	Frame               uint64              `json:"frame"`
	CurrentTime         float64             `json:"currentTime"`
	TotalDuration       float64             `json:"totalDuration"`
	IsPlaying           bool                `json:"isPlaying"`
	Status              playback.State      `json:"status"`
	Error               string              `json:"error,omitempty"`
	Mode                string              `json:"mode"`
	CurrentSectionIndex int                 `json:"currentSectionIndex"`
	Section             *timeline.Section   `json:"section,omitempty"`
	ScrollOffset        float64             `json:"scrollOffset"`
	Sprite              timeline.Sprite     `json:"sprite"`
	Overlays            []overlay.Placement `json:"overlays"`
	Notices             []Notice            `json:"notices,omitempty"`
}

// Publisher receives every published frame. Publish is called on the world's
// goroutine and must not block.
type Publisher interface {
	Publish(FrameState)
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(FrameState)

func (f PublisherFunc) Publish(fs FrameState) {
	f(fs)
}
