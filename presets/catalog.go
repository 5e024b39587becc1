package presets

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/milk9111/listeningjourney/timeline"
)

const (
	ScenesFile   = "scenes.yaml"
	JourneysFile = "journeys.yaml"
)

// fallbackScene is drawn for unknown or empty scene ids.
var fallbackScene = SceneSpec{
	ID:          "",
	Name:        "Blank",
	Sky:         "#dfe9f3",
	NightSky:    "#141a2a",
	Ground:      "grass",
	GroundColor: "#7aa36a",
}

// Catalog holds the scene and journey presets. It is safe for concurrent use
// so a watcher goroutine can reload it while frames are drawn.
type Catalog struct {
	dir string

	mu       sync.RWMutex
	scenes   map[string]SceneSpec
	journeys map[string]JourneySpec
	order    []string
}

// LoadCatalog loads presets from dir, falling back to the embedded files.
func LoadCatalog(dir string) (*Catalog, error) {
	c := &Catalog{dir: dir}
	if err := c.Reload(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalog) Dir() string {
	return c.dir
}

// Reload re-reads both preset files. On error the previous presets stay.
func (c *Catalog) Reload() error {
	sceneDoc, err := LoadSpec[scenesDoc](c.dir, ScenesFile)
	if err != nil {
		return err
	}
	journeyDoc, err := LoadSpec[journeysDoc](c.dir, JourneysFile)
	if err != nil {
		return err
	}

	scenes := make(map[string]SceneSpec, len(sceneDoc.Scenes))
	for _, s := range sceneDoc.Scenes {
		if s.ID == "" {
			return fmt.Errorf("%w: scene without id in %s", ErrInvalidPreset, ScenesFile)
		}
		sort.SliceStable(s.Layers, func(i, j int) bool { return s.Layers[i].Speed < s.Layers[j].Speed })
		scenes[s.ID] = s
	}
	journeys := make(map[string]JourneySpec, len(journeyDoc.Journeys))
	order := make([]string, 0, len(journeyDoc.Journeys))
	for _, j := range journeyDoc.Journeys {
		if j.ID == "" {
			return fmt.Errorf("%w: journey without id in %s", ErrInvalidPreset, JourneysFile)
		}
		if _, dup := journeys[j.ID]; !dup {
			order = append(order, j.ID)
		}
		journeys[j.ID] = j
	}

	c.mu.Lock()
	c.scenes = scenes
	c.journeys = journeys
	c.order = order
	c.mu.Unlock()

	log.Debug().Str("component", "presets").Int("scenes", len(scenes)).Int("journeys", len(journeys)).Msg("presets loaded")
	return nil
}

// Scene returns the scene for id, or a plain fallback scene when id is
// unknown. The bool reports whether id was found.
func (c *Catalog) Scene(id string) (SceneSpec, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if s, ok := c.scenes[id]; ok {
		return s, true
	}
	return fallbackScene, false
}

// SceneIDs lists the known scenes in name order.
func (c *Catalog) SceneIDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.scenes))
	for id := range c.scenes {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Journeys returns the journey presets in file order.
func (c *Catalog) Journeys() []JourneySpec {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]JourneySpec, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.journeys[id])
	}
	return out
}

// Sections lays out journey preset id over a track of total seconds.
func (c *Catalog) Sections(id string, total float64) ([]timeline.Section, error) {
	c.mu.RLock()
	j, ok := c.journeys[id]
	c.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownJourney, id)
	}

	specs := j.Sections
	if j.Script != "" {
		var err error
		specs, err = RunScript(c.dir, j.Script, total)
		if err != nil {
			return nil, err
		}
	}
	return Layout(specs, total)
}
