package overlay

import (
	"fmt"
	"math"

	"github.com/milk9111/listeningjourney/common"
	"github.com/milk9111/listeningjourney/ids"
	"github.com/milk9111/listeningjourney/timeline"
)

// PlaceRequest describes a click in placement mode.
type PlaceRequest struct {
	Kind      Kind
	Content   string
	Timestamp float64
	Duration  float64
	Position  Position
	Scale     float64
}

// Set holds the overlay items of one editing session. Like the timeline it
// has a single writer.
type Set struct {
	items []Item
	ids   ids.Source
}

func NewSet(src ids.Source) *Set {
	if src == nil {
		src = ids.NewCounter("item")
	}
	return &Set{ids: src}
}

func (s *Set) Len() int {
	return len(s.items)
}

// Items returns a copy of the items in placement order.
func (s *Set) Items() []Item {
	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Set) Get(id string) (Item, bool) {
	if i := s.index(id); i >= 0 {
		return s.items[i], true
	}
	return Item{}, false
}

// Place creates an item anchored to the scroll offset at its timestamp.
func (s *Set) Place(req PlaceRequest, sections []timeline.Section, total float64) (Item, error) {
	if !req.Kind.Valid() {
		return Item{}, fmt.Errorf("%w: %q", ErrInvalidKind, req.Kind)
	}
	pos := req.Position.Clamped()
	ts := clampTime(req.Timestamp, total)
	scale := req.Scale
	if scale <= 0 || math.IsNaN(scale) {
		scale = 1
	}
	dur := req.Duration
	if dur < 0 || math.IsNaN(dur) {
		dur = 0
	}

	it := Item{
		ID:             s.ids.NextID(),
		Kind:           req.Kind,
		Content:        req.Content,
		Timestamp:      ts,
		Duration:       dur,
		Position:       pos,
		PlacedAtOffset: timeline.OffsetAtTime(ts, sections),
		EntryOffsetX:   EntryOffsetFor(pos),
		Scale:          scale,
	}
	s.items = append(s.items, it)
	return it, nil
}

// Move changes an item's timestamp and position. The offset anchor is
// recomputed for the new timestamp so drift starts from zero there again.
func (s *Set) Move(id string, timestamp float64, pos Position, sections []timeline.Section, total float64) (Item, error) {
	i := s.index(id)
	if i < 0 {
		return Item{}, fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	it := s.items[i]
	it.Timestamp = clampTime(timestamp, total)
	it.Position = pos.Clamped()
	it.PlacedAtOffset = timeline.OffsetAtTime(it.Timestamp, sections)
	it.EntryOffsetX = EntryOffsetFor(it.Position)
	s.items[i] = it
	return it, nil
}

// Resize sets the visible window length; values <= 0 mean until the end.
func (s *Set) Resize(id string, duration float64) (Item, error) {
	i := s.index(id)
	if i < 0 {
		return Item{}, fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	if duration < 0 || math.IsNaN(duration) {
		duration = 0
	}
	s.items[i].Duration = duration
	return s.items[i], nil
}

// SetContent replaces the sticker id or text of an item.
func (s *Set) SetContent(id, content string) (Item, error) {
	i := s.index(id)
	if i < 0 {
		return Item{}, fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	s.items[i].Content = content
	return s.items[i], nil
}

func (s *Set) Remove(id string) error {
	i := s.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	s.items = append(s.items[:i:i], s.items[i+1:]...)
	return nil
}

func (s *Set) Clear() {
	s.items = nil
}

// Replace swaps in a stored item list as-is, anchors included.
func (s *Set) Replace(items []Item) error {
	next := make([]Item, len(items))
	for i, it := range items {
		if !it.Kind.Valid() {
			return fmt.Errorf("%w: item %s has kind %q", ErrInvalidKind, it.ID, it.Kind)
		}
		next[i] = it
	}
	s.items = next
	return nil
}

// Visible returns the items whose window contains t, in placement order.
func (s *Set) Visible(t, total float64) []Item {
	var out []Item
	for _, it := range s.items {
		if it.VisibleAt(t, total) {
			out = append(out, it)
		}
	}
	return out
}

// Placements positions every visible item for the frame at t.
func (s *Set) Placements(t, offsetNow, total float64, mode Mode) []Placement {
	var out []Placement
	for _, it := range s.items {
		if it.VisibleAt(t, total) {
			out = append(out, place(it, t, offsetNow, mode))
		}
	}
	return out
}

func (s *Set) index(id string) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

func clampTime(t, total float64) float64 {
	if math.IsNaN(t) {
		return 0
	}
	if total <= 0 {
		return math.Max(t, 0)
	}
	return common.Clamp(t, 0, total)
}
