package presets

import (
	"errors"
	"fmt"
	"math"

	"gopkg.in/yaml.v3"

	"github.com/milk9111/listeningjourney/timeline"
)

var (
	ErrInvalidPreset  = errors.New("presets: invalid preset")
	ErrUnknownJourney = errors.New("presets: unknown journey")
	ErrScriptPanic    = errors.New("presets: script panicked")
)

// LayerSpec is one parallax band of a scene.
type LayerSpec struct {
	Color  string  `yaml:"color"`
	Speed  float64 `yaml:"speed"`
	Height float64 `yaml:"height"`
	Shape  string  `yaml:"shape"`
}

type SceneSpec struct {
	ID          string      `yaml:"id"`
	Name        string      `yaml:"name"`
	Sky         string      `yaml:"sky"`
	NightSky    string      `yaml:"night_sky"`
	Ground      string      `yaml:"ground"`
	GroundColor string      `yaml:"ground_color"`
	Layers      []LayerSpec `yaml:"layers"`
}

type scenesDoc struct {
	Scenes []SceneSpec `yaml:"scenes"`
}

// SectionSpec describes one section of a journey preset. Duration is in
// seconds; when it is zero the section takes a Weight share of the time the
// fixed-length sections leave over.
type SectionSpec struct {
	Weight       float64 `yaml:"weight"`
	Duration     float64 `yaml:"duration"`
	Scene        string  `yaml:"scene"`
	Tempo        string  `yaml:"tempo"`
	Dynamics     string  `yaml:"dynamics"`
	Articulation string  `yaml:"articulation"`
	Movement     string  `yaml:"movement"`
	Weather      string  `yaml:"weather"`
	NightMode    bool    `yaml:"night_mode"`
	Sky          string  `yaml:"sky"`
}

type JourneySpec struct {
	ID       string        `yaml:"id"`
	Name     string        `yaml:"name"`
	Script   string        `yaml:"script"`
	Sections []SectionSpec `yaml:"sections"`
}

type journeysDoc struct {
	Journeys []JourneySpec `yaml:"journeys"`
}

func LoadSpec[T any](dir, filename string) (T, error) {
	var zero T
	data, err := Load(dir, filename)
	if err != nil {
		return zero, fmt.Errorf("presets: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("presets: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

// DecodeSpec converts loosely typed data, such as a script result, into T by
// way of its YAML form.
func DecodeSpec[T any](raw any) (T, error) {
	var zero T
	if raw == nil {
		return zero, nil
	}
	b, err := yaml.Marshal(raw)
	if err != nil {
		return zero, err
	}
	var out T
	if err := yaml.Unmarshal(b, &out); err != nil {
		return zero, err
	}
	return out, nil
}

// Layout turns section specs into contiguous timeline sections over
// [0, total]. Sections that would come out shorter than the minimum section
// length are merged into the one before them; anything past total is dropped.
func Layout(specs []SectionSpec, total float64) ([]timeline.Section, error) {
	if total <= 0 || math.IsNaN(total) || len(specs) == 0 {
		return nil, nil
	}

	var fixed, weights float64
	for i, sp := range specs {
		if sp.Tempo != "" && !timeline.Tempo(sp.Tempo).Valid() {
			return nil, fmt.Errorf("%w: section %d has tempo %q", ErrInvalidPreset, i, sp.Tempo)
		}
		if sp.Duration < 0 || math.IsNaN(sp.Duration) {
			return nil, fmt.Errorf("%w: section %d has duration %v", ErrInvalidPreset, i, sp.Duration)
		}
		if sp.Duration > 0 {
			fixed += sp.Duration
		} else {
			weights += weightOf(sp)
		}
	}
	remain := math.Max(total-fixed, 0)

	var out []timeline.Section
	start := 0.0
	for i, sp := range specs {
		if start >= total {
			break
		}
		length := sp.Duration
		if length <= 0 {
			length = remain * weightOf(sp) / weights
		}
		end := math.Min(start+length, total)
		// last weighted section absorbs rounding
		if i == len(specs)-1 && sp.Duration <= 0 {
			end = total
		}
		if end <= start {
			continue
		}
		if end-start < timeline.MinSectionDuration && len(out) > 0 {
			out[len(out)-1].EndTime = end
			start = end
			continue
		}
		out = append(out, section(sp, start, end))
		start = end
	}
	return out, nil
}

func weightOf(sp SectionSpec) float64 {
	if sp.Weight <= 0 || math.IsNaN(sp.Weight) {
		return 1
	}
	return sp.Weight
}

func section(sp SectionSpec, start, end float64) timeline.Section {
	s := timeline.Section{
		StartTime:    start,
		EndTime:      end,
		Tempo:        timeline.Tempo(sp.Tempo),
		Dynamics:     sp.Dynamics,
		Articulation: sp.Articulation,
		Movement:     sp.Movement,
		Weather:      sp.Weather,
		NightMode:    sp.NightMode,
		Scene:        sp.Scene,
		Sky:          sp.Sky,
		Ground:       timeline.GroundFor(sp.Scene),
	}
	if s.Tempo == "" {
		s.Tempo = timeline.TempoAndante
	}
	if s.Dynamics == "" {
		s.Dynamics = "mf"
	}
	if s.Articulation == "" {
		s.Articulation = "legato"
	}
	if s.Movement == "" {
		s.Movement = timeline.MovementWalk
	}
	if s.Weather == "" {
		s.Weather = "clear"
	}
	if s.Sky == "" {
		s.Sky = "day"
		if s.NightMode {
			s.Sky = "night"
		}
	}
	return s
}
