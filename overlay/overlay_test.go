package overlay

import (
	"errors"
	"math"
	"testing"

	"github.com/milk9111/listeningjourney/ids"
	"github.com/milk9111/listeningjourney/timeline"
)

func sections() []timeline.Section {
	return []timeline.Section{
		{ID: "a", StartTime: 0, EndTime: 10, Tempo: timeline.TempoAndante},
		{ID: "b", StartTime: 10, EndTime: 20, Tempo: timeline.TempoPresto},
	}
}

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestVisibilityWindow(t *testing.T) {
	it := Item{Timestamp: 10, Duration: 5}
	cases := []struct {
		t    float64
		want bool
	}{
		{9.999, false}, {10, true}, {14.999, true}, {15, false},
	}
	for _, c := range cases {
		if got := it.VisibleAt(c.t, 60); got != c.want {
			t.Fatalf("t=%v: expected %v, got %v", c.t, c.want, got)
		}
	}
}

func TestVisibleUntilEndOfPiece(t *testing.T) {
	it := Item{Timestamp: 10}
	if !it.VisibleAt(59.9, 60) {
		t.Fatalf("zero duration must stay visible until the end")
	}
	if it.VisibleAt(60, 60) {
		t.Fatalf("item must not be visible at the end of the piece")
	}
	if !it.VisibleAt(100, 0) {
		t.Fatalf("unknown total keeps the item visible")
	}
}

func TestEntryOffset(t *testing.T) {
	it := Item{Timestamp: 10, EntryOffsetX: 0.6}
	cases := []struct {
		name string
		t    float64
		mode Mode
		want float64
	}{
		{"start", 10, ModePresentation, 0.6},
		{"half", 11.5, ModePresentation, 0.3},
		{"done", 13, ModePresentation, 0},
		{"before", 9, ModePresentation, 0},
		{"build_suppressed", 10, ModeBuild, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := it.EntryOffset(c.t, c.mode); !near(got, c.want) {
				t.Fatalf("expected %v, got %v", c.want, got)
			}
		})
	}
}

func TestPlaceAnchorsOffset(t *testing.T) {
	s := NewSet(ids.NewCounter("item"))
	secs := sections()
	it, err := s.Place(PlaceRequest{Kind: KindSticker, Content: "star", Timestamp: 15, Position: Position{X: 0.4, Y: 1.7}}, secs, 20)
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	if it.ID != "item-1" {
		t.Fatalf("expected id item-1, got %s", it.ID)
	}
	if !near(it.PlacedAtOffset, timeline.OffsetAtTime(15, secs)) {
		t.Fatalf("expected anchor at offset of timestamp, got %v", it.PlacedAtOffset)
	}
	if it.Position.Y != 1 {
		t.Fatalf("position must be clamped to the viewport, got %v", it.Position)
	}
	if !near(it.EntryOffsetX, 0.7) {
		t.Fatalf("expected entry offset 0.7, got %v", it.EntryOffsetX)
	}
	if it.Scale != 1 {
		t.Fatalf("expected default scale 1, got %v", it.Scale)
	}

	if _, err := s.Place(PlaceRequest{Kind: "emoji"}, secs, 20); !errors.Is(err, ErrInvalidKind) {
		t.Fatalf("expected ErrInvalidKind, got %v", err)
	}
	if s.Len() != 1 {
		t.Fatalf("rejected placement must not add an item")
	}
}

func TestMoveReanchors(t *testing.T) {
	s := NewSet(nil)
	secs := sections()
	it, _ := s.Place(PlaceRequest{Kind: KindText, Content: "hello", Timestamp: 2, Position: Position{X: 0.5, Y: 0.5}}, secs, 20)

	moved, err := s.Move(it.ID, 15, Position{X: 0.2, Y: 0.3}, secs, 20)
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if !near(moved.PlacedAtOffset, timeline.OffsetAtTime(15, secs)) {
		t.Fatalf("anchor not recomputed: %v", moved.PlacedAtOffset)
	}
	if d := moved.Drift(timeline.OffsetAtTime(15, secs)); d != 0 {
		t.Fatalf("drift at the new timestamp must be zero, got %v", d)
	}
	if d := moved.Drift(timeline.OffsetAtTime(18, secs)); d >= 0 {
		t.Fatalf("drift must move left as the background scrolls, got %v", d)
	}

	if _, err := s.Move("missing", 1, Position{}, secs, 20); !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
}

func TestPlacements(t *testing.T) {
	s := NewSet(nil)
	secs := sections()
	it, _ := s.Place(PlaceRequest{Kind: KindSticker, Timestamp: 5, Duration: 10, Position: Position{X: 0.5, Y: 0.25}}, secs, 20)

	now := 6.5
	offset := timeline.OffsetAtTime(now, secs)
	build := s.Placements(now, offset, 20, ModeBuild)
	if len(build) != 1 {
		t.Fatalf("expected one placement, got %d", len(build))
	}
	wantX := 0.5 + it.Drift(offset)
	if !near(build[0].X, wantX) || build[0].Y != 0.25 {
		t.Fatalf("expected (%v, 0.25), got (%v, %v)", wantX, build[0].X, build[0].Y)
	}

	pres := s.Placements(now, offset, 20, ModePresentation)
	if !near(pres[0].X, wantX+it.EntryOffset(now, ModePresentation)) || pres[0].X <= build[0].X {
		t.Fatalf("presentation placement must include the slide-in, got %v", pres[0].X)
	}

	if got := s.Placements(16, timeline.OffsetAtTime(16, secs), 20, ModeBuild); len(got) != 0 {
		t.Fatalf("expired item must not be placed")
	}
}

func TestResizeRemoveClear(t *testing.T) {
	s := NewSet(nil)
	a, _ := s.Place(PlaceRequest{Kind: KindSticker, Timestamp: 1}, nil, 20)
	b, _ := s.Place(PlaceRequest{Kind: KindSticker, Timestamp: 2}, nil, 20)

	if it, err := s.Resize(a.ID, -4); err != nil || it.Duration != 0 {
		t.Fatalf("negative duration must mean until end, got %v %v", it.Duration, err)
	}
	if err := s.Remove(a.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, ok := s.Get(a.ID); ok {
		t.Fatalf("removed item still present")
	}
	if _, ok := s.Get(b.ID); !ok {
		t.Fatalf("remove dropped the wrong item")
	}
	if err := s.Remove(a.ID); !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
	s.Clear()
	if s.Len() != 0 {
		t.Fatalf("clear left %d items", s.Len())
	}
}

func TestAssignLanesGreedy(t *testing.T) {
	items := []Item{
		{ID: "late", Timestamp: 12, Duration: 2},
		{ID: "a", Timestamp: 0, Duration: 10},
		{ID: "b", Timestamp: 1, Duration: 3},
		{ID: "c", Timestamp: 4, Duration: 2},
		{ID: "d", Timestamp: 5, Duration: 1},
	}
	lanes := AssignLanes(items, 60)
	got := map[string]int{}
	for _, l := range lanes {
		got[l.ItemID] = l.Lane
	}
	want := map[string]int{"a": 0, "b": 1, "c": 1, "d": 2, "late": 0}
	for id, lane := range want {
		if got[id] != lane {
			t.Fatalf("item %s: expected lane %d, got %d (all=%v)", id, lane, got[id], got)
		}
	}
	if lanes[0].ItemID != "a" {
		t.Fatalf("lanes must be returned in timestamp order, first=%s", lanes[0].ItemID)
	}
}

func TestAssignLanesOverflow(t *testing.T) {
	var items []Item
	for i := 0; i < MaxLanes+3; i++ {
		items = append(items, Item{ID: string(rune('a' + i)), Timestamp: float64(i) * 0.1})
	}
	lanes := AssignLanes(items, 60)
	for i, l := range lanes {
		want := i
		if want >= MaxLanes {
			want = MaxLanes - 1
		}
		if l.Lane != want {
			t.Fatalf("item %d: expected lane %d, got %d", i, want, l.Lane)
		}
	}
}

func TestParseMode(t *testing.T) {
	for _, m := range []Mode{ModeBuild, ModePresentation} {
		got, ok := ParseMode(m.String())
		if !ok || got != m {
			t.Fatalf("ParseMode(%q) = %v, %v", m.String(), got, ok)
		}
	}
	if _, ok := ParseMode("edit"); ok {
		t.Fatalf("ParseMode accepted an unknown mode")
	}
}
