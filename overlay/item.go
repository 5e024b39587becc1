package overlay

import (
	"errors"
	"math"

	"github.com/milk9111/listeningjourney/common"
)

const (
	// EntryWindow is how long a presented item takes to slide into place.
	EntryWindow = 3.0
	// EntryMargin is how far past the right viewport edge a slide starts.
	EntryMargin = 0.1
)

var (
	ErrItemNotFound = errors.New("overlay: item not found")
	ErrInvalidKind  = errors.New("overlay: invalid item kind")
)

type Kind string

const (
	KindSticker Kind = "sticker"
	KindText    Kind = "text"
)

func (k Kind) Valid() bool {
	return k == KindSticker || k == KindText
}

// Mode selects whether overlays animate in (presentation) or sit still (build).
type Mode int

const (
	ModeBuild Mode = iota
	ModePresentation
)

func (m Mode) String() string {
	if m == ModePresentation {
		return "presentation"
	}
	return "build"
}

// ParseMode maps "build" and "presentation" back to a Mode.
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "build":
		return ModeBuild, true
	case "presentation":
		return ModePresentation, true
	}
	return ModeBuild, false
}

// Position is a point normalized to the viewport, both axes in [0,1].
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

func (p Position) Clamped() Position {
	return Position{X: common.Clamp(p.X, 0, 1), Y: common.Clamp(p.Y, 0, 1)}
}

// Item is a sticker or text overlay visible during [Timestamp, Timestamp+Duration).
// A Duration <= 0 keeps the item up until the end of the piece.
type Item struct {
	ID             string   `json:"id" yaml:"id"`
	Kind           Kind     `json:"type" yaml:"type"`
	Content        string   `json:"content" yaml:"content"`
	Timestamp      float64  `json:"timestamp" yaml:"timestamp"`
	Duration       float64  `json:"duration" yaml:"duration"`
	Position       Position `json:"position" yaml:"position"`
	PlacedAtOffset float64  `json:"placedAtOffset" yaml:"placedAtOffset"`
	EntryOffsetX   float64  `json:"entryOffsetX" yaml:"entryOffsetX"`
	Scale          float64  `json:"scale" yaml:"scale"`
}

// End returns the exclusive end of the visible window.
func (it Item) End(total float64) float64 {
	if it.Duration <= 0 {
		if total <= it.Timestamp {
			return math.Inf(1)
		}
		return total
	}
	return it.Timestamp + it.Duration
}

// VisibleAt reports whether t falls in [Timestamp, End).
func (it Item) VisibleAt(t, total float64) bool {
	return t >= it.Timestamp && t < it.End(total)
}

// Drift is the horizontal displacement keeping the item pinned to the
// background as it scrolls from the offset it was placed at.
func (it Item) Drift(offsetNow float64) float64 {
	return -(offsetNow - it.PlacedAtOffset)
}

// EntryOffset is the extra slide-in displacement at t. It falls linearly from
// EntryOffsetX to 0 over EntryWindow and is always 0 in build mode.
func (it Item) EntryOffset(t float64, mode Mode) float64 {
	if mode != ModePresentation {
		return 0
	}
	elapsed := t - it.Timestamp
	if elapsed < 0 || elapsed >= EntryWindow {
		return 0
	}
	return common.Lerp(it.EntryOffsetX, 0, elapsed/EntryWindow)
}

// EntryOffsetFor returns the slide distance that starts an item placed at pos
// just beyond the right edge of the viewport.
func EntryOffsetFor(pos Position) float64 {
	return 1 - pos.X + EntryMargin
}

// Placement is where an item is drawn this frame, in viewport units.
type Placement struct {
	Item
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func place(it Item, t, offsetNow float64, mode Mode) Placement {
	return Placement{
		Item: it,
		X:    it.Position.X + it.Drift(offsetNow) + it.EntryOffset(t, mode),
		Y:    it.Position.Y,
	}
}
