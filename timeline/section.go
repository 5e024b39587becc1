package timeline

import (
	"fmt"
	"image/color"

	"golang.org/x/image/colornames"
)

// Tempo is the categorical speed of a section.
type Tempo string

const (
	TempoLargo    Tempo = "largo"
	TempoAdagio   Tempo = "adagio"
	TempoAndante  Tempo = "andante"
	TempoModerato Tempo = "moderato"
	TempoAllegro  Tempo = "allegro"
	TempoPresto   Tempo = "presto"
)

var tempoSpeeds = map[Tempo]float64{
	TempoLargo:    0.3,
	TempoAdagio:   0.6,
	TempoAndante:  1.0,
	TempoModerato: 1.5,
	TempoAllegro:  2.0,
	TempoPresto:   3.0,
}

// Speed returns the scroll multiplier for a tempo. Unknown tempos scroll at 1.0.
func Speed(t Tempo) float64 {
	if s, ok := tempoSpeeds[t]; ok {
		return s
	}
	return 1.0
}

// Valid reports whether t is one of the known tempos.
func (t Tempo) Valid() bool {
	_, ok := tempoSpeeds[t]
	return ok
}

// Tempos lists the known tempos from slowest to fastest.
func Tempos() []Tempo {
	return []Tempo{TempoLargo, TempoAdagio, TempoAndante, TempoModerato, TempoAllegro, TempoPresto}
}

const (
	MovementStill = "still"
	MovementWalk  = "walk"
	MovementMarch = "march"
	MovementSkip  = "skip"
	MovementRun   = "run"
	MovementSwim  = "swim"
	MovementFly   = "fly"
	MovementGlide = "glide"
)

// seconds per sprite cycle at tempo speed 1.0
var movementCycles = map[string]float64{
	MovementStill: 0,
	MovementWalk:  1.0,
	MovementMarch: 0.8,
	MovementSkip:  0.7,
	MovementRun:   0.5,
	MovementSwim:  1.6,
	MovementFly:   1.2,
	MovementGlide: 2.0,
}

// CycleDuration returns the seconds one sprite cycle of movement takes.
// Zero means the sprite holds its first frame.
func CycleDuration(movement string) float64 {
	if c, ok := movementCycles[movement]; ok {
		return c
	}
	return 1.0
}

var sceneGrounds = map[string]string{
	"meadow":    "grass",
	"forest":    "grass",
	"farm":      "grass",
	"desert":    "sand",
	"beach":     "sand",
	"ocean":     "water",
	"mountains": "rock",
	"city":      "pavement",
	"arctic":    "snow",
	"space":     "none",
}

// GroundFor returns the ground paired with a scene.
func GroundFor(scene string) string {
	if g, ok := sceneGrounds[scene]; ok {
		return g
	}
	return "grass"
}

var dynamicsScales = map[string]float64{
	"pp": 0.7,
	"p":  0.8,
	"mp": 0.9,
	"mf": 1.0,
	"f":  1.15,
	"ff": 1.3,
}

// DynamicsScale maps a dynamics marking to a sprite scale factor.
func DynamicsScale(dynamics string) float64 {
	if s, ok := dynamicsScales[dynamics]; ok {
		return s
	}
	return 1.0
}

var palette = []color.RGBA{
	colornames.Tomato,
	colornames.Gold,
	colornames.Mediumseagreen,
	colornames.Cornflowerblue,
	colornames.Orchid,
	colornames.Darkorange,
	colornames.Turquoise,
	colornames.Slateblue,
}

// LabelFor returns the positional label for index i: A..Z, then wrapping.
func LabelFor(i int) string {
	if i < 0 {
		i = 0
	}
	return string(rune('A' + i%26))
}

// ColorFor returns the positional color for index i as #rrggbb.
func ColorFor(i int) string {
	if i < 0 {
		i = 0
	}
	c := palette[i%len(palette)]
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Section is one interval of the timeline.
type Section struct {
	ID           string  `json:"id" yaml:"id"`
	Label        string  `json:"label" yaml:"label"`
	Color        string  `json:"color" yaml:"color"`
	StartTime    float64 `json:"startTime" yaml:"startTime"`
	EndTime      float64 `json:"endTime" yaml:"endTime"`
	Tempo        Tempo   `json:"tempo" yaml:"tempo"`
	Dynamics     string  `json:"dynamics" yaml:"dynamics"`
	Articulation string  `json:"articulation" yaml:"articulation"`
	Movement     string  `json:"movement" yaml:"movement"`
	Weather      string  `json:"weather" yaml:"weather"`
	NightMode    bool    `json:"nightMode" yaml:"nightMode"`
	Scene        string  `json:"scene" yaml:"scene"`
	Sky          string  `json:"sky" yaml:"sky"`
	Ground       string  `json:"ground" yaml:"ground"`
}

func (s Section) Duration() float64 {
	return s.EndTime - s.StartTime
}

// Contains reports whether t falls in [StartTime, EndTime).
func (s Section) Contains(t float64) bool {
	return t >= s.StartTime && t < s.EndTime
}

// IsPlaceholder reports whether the section still waits for a scene.
func (s Section) IsPlaceholder() bool {
	return s.Scene == ""
}

func defaultSection(id, scene string, start, end float64) Section {
	return Section{
		ID:           id,
		StartTime:    start,
		EndTime:      end,
		Tempo:        TempoAndante,
		Dynamics:     "mf",
		Articulation: "legato",
		Movement:     MovementWalk,
		Weather:      "clear",
		Scene:        scene,
		Sky:          "day",
		Ground:       GroundFor(scene),
	}
}
