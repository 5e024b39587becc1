package render

import (
	"image"

	"github.com/milk9111/listeningjourney/overlay"
	"github.com/milk9111/listeningjourney/timeline"
)

const (
	TrackHeight   = 96
	sectionStrip  = 28
	laneHeight    = 11
	trackPaddingX = 12
)

// Span is a horizontal run of the track in pixels.
type Span struct {
	X0, X1 float64
}

// Track maps seconds onto the timeline track drawn along the bottom of the
// screen.
type Track struct {
	Bounds image.Rectangle
	Total  float64
}

// NewTrack places the track at the bottom of a screen of the given size.
func NewTrack(screenW, screenH int, total float64) Track {
	return Track{
		Bounds: image.Rect(trackPaddingX, screenH-TrackHeight, screenW-trackPaddingX, screenH),
		Total:  total,
	}
}

// X returns the pixel column of t. Times outside the piece are clamped.
func (tr Track) X(t float64) float64 {
	w := float64(tr.Bounds.Dx())
	if tr.Total <= 0 {
		return float64(tr.Bounds.Min.X)
	}
	f := t / tr.Total
	if f < 0 {
		f = 0
	} else if f > 1 {
		f = 1
	}
	return float64(tr.Bounds.Min.X) + f*w
}

// Time is the inverse of X, used for clicks on the track.
func (tr Track) Time(x float64) float64 {
	w := float64(tr.Bounds.Dx())
	if w <= 0 || tr.Total <= 0 {
		return 0
	}
	f := (x - float64(tr.Bounds.Min.X)) / w
	if f < 0 {
		f = 0
	} else if f > 1 {
		f = 1
	}
	return f * tr.Total
}

func (tr Track) Section(s timeline.Section) Span {
	return Span{X0: tr.X(s.StartTime), X1: tr.X(s.EndTime)}
}

// LaneY is the top pixel row of lane l in the item strip.
func (tr Track) LaneY(l int) float64 {
	return float64(tr.Bounds.Min.Y) + sectionStrip + 6 + float64(l*laneHeight)
}

// Contains reports whether p lies on the track.
func (tr Track) Contains(p image.Point) bool {
	return p.In(tr.Bounds)
}

// BoundaryAt returns the index of the section boundary within tolerance
// pixels of x, for dragging. The last edge reports len(sections)-1.
func (tr Track) BoundaryAt(x float64, sections []timeline.Section, tolerance float64) (int, bool) {
	for i, s := range sections {
		dx := tr.X(s.EndTime) - x
		if dx < 0 {
			dx = -dx
		}
		if dx <= tolerance {
			return i, true
		}
	}
	return 0, false
}

// ItemAt returns the item whose lane bar is under p.
func (tr Track) ItemAt(p image.Point, items []overlay.Item) (string, bool) {
	for _, l := range overlay.AssignLanes(items, tr.Total) {
		y := tr.LaneY(l.Lane)
		if float64(p.Y) < y || float64(p.Y) >= y+laneHeight-2 {
			continue
		}
		x0, x1 := tr.X(l.Start), tr.X(l.End)
		if x1-x0 < 4 {
			x1 = x0 + 4
		}
		if float64(p.X) >= x0 && float64(p.X) <= x1 {
			return l.ItemID, true
		}
	}
	return "", false
}
