package render

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/milk9111/listeningjourney/overlay"
	"github.com/milk9111/listeningjourney/timeline"
)

func TestSilhouetteRepeatsAndStaysInRange(t *testing.T) {
	shapes := []string{"hills", "dunes", "waves", "peaks", "trees", "towers", "clouds", "nebula", "fields", "unknown"}
	for _, shape := range shapes {
		t.Run(shape, func(t *testing.T) {
			for i := 0; i < 200; i++ {
				u := float64(i) / 200
				h := Silhouette(shape, u)
				if h < 0 || h > 1 || math.IsNaN(h) {
					t.Fatalf("Silhouette(%q, %v) = %v out of [0,1]", shape, u, h)
				}
				if d := math.Abs(h - Silhouette(shape, u+1)); d > 1e-9 {
					t.Fatalf("Silhouette(%q) not periodic at %v: %v", shape, u, d)
				}
			}
		})
	}
}

func TestParseHex(t *testing.T) {
	tests := []struct {
		in   string
		want color.RGBA
		ok   bool
	}{
		{"#8fd3f4", color.RGBA{R: 0x8f, G: 0xd3, B: 0xf4, A: 0xff}, true},
		{"#fff", color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}, true},
		{" #000000 ", color.RGBA{A: 0xff}, true},
		{"red", color.RGBA{R: 0xff, A: 0xff}, true},
		{"#12345", color.RGBA{}, false},
		{"#gggggg", color.RGBA{}, false},
		{"nocolor", color.RGBA{}, false},
	}
	for _, tt := range tests {
		got, ok := ParseHex(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Fatalf("ParseHex(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestTrackMapping(t *testing.T) {
	tr := NewTrack(1024, 600, 120)
	if tr.Bounds.Min.Y != 600-TrackHeight {
		t.Fatalf("track top = %d", tr.Bounds.Min.Y)
	}
	if got := tr.X(0); got != float64(tr.Bounds.Min.X) {
		t.Fatalf("X(0) = %v", got)
	}
	if got := tr.X(500); got != float64(tr.Bounds.Max.X) {
		t.Fatalf("X past the end = %v", got)
	}
	for _, sec := range []float64{0, 7.5, 60, 119} {
		if got := tr.Time(tr.X(sec)); math.Abs(got-sec) > 1e-9 {
			t.Fatalf("Time(X(%v)) = %v", sec, got)
		}
	}
	if got := (Track{}).Time(10); got != 0 {
		t.Fatalf("empty track time = %v", got)
	}
}

func TestTrackHitTesting(t *testing.T) {
	tr := NewTrack(1224, 600, 120)
	sections := []timeline.Section{
		{StartTime: 0, EndTime: 30},
		{StartTime: 30, EndTime: 120},
	}
	if i, ok := tr.BoundaryAt(tr.X(30)+2, sections, 4); !ok || i != 0 {
		t.Fatalf("BoundaryAt near 30 = %d, %v", i, ok)
	}
	if i, ok := tr.BoundaryAt(tr.X(120)-1, sections, 4); !ok || i != 1 {
		t.Fatalf("BoundaryAt last edge = %d, %v", i, ok)
	}
	if _, ok := tr.BoundaryAt(tr.X(60), sections, 4); ok {
		t.Fatalf("BoundaryAt found an edge mid-section")
	}

	items := []overlay.Item{
		{ID: "a", Timestamp: 10, Duration: 20},
		{ID: "b", Timestamp: 15, Duration: 5},
	}
	p := image.Pt(int(tr.X(17)), int(tr.LaneY(1))+2)
	if id, ok := tr.ItemAt(p, items); !ok || id != "b" {
		t.Fatalf("ItemAt lane 1 = %q, %v", id, ok)
	}
	p = image.Pt(int(tr.X(50)), int(tr.LaneY(0))+2)
	if _, ok := tr.ItemAt(p, items); ok {
		t.Fatalf("ItemAt found an item past its end")
	}
	if !tr.Contains(p) {
		t.Fatalf("lane point not on track")
	}
}

func TestClock(t *testing.T) {
	tests := map[float64]string{0: "0:00", 9.9: "0:09", 65: "1:05", 600: "10:00", -3: "0:00"}
	for in, want := range tests {
		if got := Clock(in); got != want {
			t.Fatalf("Clock(%v) = %q want %q", in, got, want)
		}
	}
}

func TestStageHeight(t *testing.T) {
	if got := StageHeight(720, true); got != 720-TrackHeight {
		t.Fatalf("with track = %v", got)
	}
	if got := StageHeight(720, false); got != 720 {
		t.Fatalf("without track = %v", got)
	}
}
