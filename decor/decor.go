// Package decor lays out the decorative scenery of a journey. Layouts are
// seeded, so the same ground and sky are drawn on every run and every frame.
package decor

import (
	"math"

	"github.com/milk9111/listeningjourney/common"
)

const (
	TuftSeed = 42
	StarSeed = 1337

	DefaultTufts = 24
	DefaultStars = 60
)

// Tuft is a clump of ground detail. X is in tile widths [0,1); Height is a
// fraction of the ground band.
type Tuft struct {
	X      float64 `json:"x"`
	Height float64 `json:"height"`
	Blades int     `json:"blades"`
}

// Star is a point of the night sky in viewport units. Y stays in the upper
// part of the sky.
type Star struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Size       float64 `json:"size"`
	Brightness float64 `json:"brightness"`
}

// Tufts returns count tufts generated from seed.
func Tufts(seed int64, count int) []Tuft {
	if count <= 0 {
		return nil
	}
	rng := common.NewLCG(seed)
	out := make([]Tuft, count)
	for i := range out {
		out[i] = Tuft{
			X:      rng.Float(),
			Height: rng.Range(0.2, 0.6),
			Blades: 2 + int(rng.Float()*4),
		}
	}
	return out
}

// Stars returns count stars generated from seed.
func Stars(seed int64, count int) []Star {
	if count <= 0 {
		return nil
	}
	rng := common.NewLCG(seed)
	out := make([]Star, count)
	for i := range out {
		out[i] = Star{
			X:          rng.Float(),
			Y:          rng.Range(0, 0.6),
			Size:       rng.Range(1, 3),
			Brightness: rng.Range(0.4, 1),
		}
	}
	return out
}

// TileOffsets returns the left edges, in viewport widths, of the three copies
// of a repeating layer that scrolls speed times as fast as offset. The copies
// always cover [0,1].
func TileOffsets(offset, speed float64) [3]float64 {
	shift := common.Fract(offset * speed)
	if math.IsNaN(shift) {
		shift = 0
	}
	return [3]float64{-shift, 1 - shift, 2 - shift}
}
