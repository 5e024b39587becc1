package presets

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milk9111/listeningjourney/timeline"
)

func TestEmbeddedCatalog(t *testing.T) {
	c, err := LoadCatalog("")
	require.NoError(t, err)

	meadow, ok := c.Scene("meadow")
	require.True(t, ok)
	assert.Equal(t, "Meadow", meadow.Name)
	for i := 1; i < len(meadow.Layers); i++ {
		assert.LessOrEqual(t, meadow.Layers[i-1].Speed, meadow.Layers[i].Speed, "layers sorted back to front")
	}

	blank, ok := c.Scene("volcano")
	assert.False(t, ok)
	assert.Equal(t, fallbackScene, blank)

	journeys := c.Journeys()
	require.NotEmpty(t, journeys)
	assert.Equal(t, "four-seasons", journeys[0].ID)
}

func TestSceneGroundsMatchTimeline(t *testing.T) {
	c, err := LoadCatalog("")
	require.NoError(t, err)

	for _, id := range c.SceneIDs() {
		s, _ := c.Scene(id)
		assert.Equal(t, timeline.GroundFor(id), s.Ground, "scene %s", id)
	}
}

func TestLayout(t *testing.T) {
	cases := []struct {
		name  string
		specs []SectionSpec
		total float64
		ends  []float64
	}{
		{"equal weights", []SectionSpec{{}, {}, {}}, 60, []float64{20, 40, 60}},
		{"uneven weights", []SectionSpec{{Weight: 2}, {Weight: 3}, {Weight: 1}}, 60, []float64{20, 50, 60}},
		{"short tail merged", []SectionSpec{{Weight: 20}, {Weight: 1}}, 42, []float64{42}},
		{"fixed then weighted", []SectionSpec{{Duration: 10}, {Weight: 1}}, 30, []float64{10, 30}},
		{"fixed overflow trimmed", []SectionSpec{{Duration: 40}, {Duration: 40}, {Duration: 40}}, 50, []float64{40, 50}},
		{"fixed underfill", []SectionSpec{{Duration: 10}, {Duration: 10}}, 60, []float64{10, 20}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Layout(tc.specs, tc.total)
			require.NoError(t, err)
			require.Len(t, got, len(tc.ends))

			tl := timeline.New(tc.total, nil)
			require.NoError(t, tl.Replace(got))

			for i, s := range got {
				assert.Equal(t, tc.ends[i], s.EndTime, "section %d", i)
			}
		})
	}
}

func TestLayoutDefaults(t *testing.T) {
	got, err := Layout([]SectionSpec{{Scene: "desert"}, {NightMode: true}}, 30)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, timeline.TempoAndante, got[0].Tempo)
	assert.Equal(t, timeline.MovementWalk, got[0].Movement)
	assert.Equal(t, "sand", got[0].Ground)
	assert.Equal(t, "day", got[0].Sky)
	assert.Equal(t, "night", got[1].Sky)
	assert.True(t, got[1].IsPlaceholder())
}

func TestLayoutRejects(t *testing.T) {
	_, err := Layout([]SectionSpec{{Tempo: "lento"}}, 30)
	require.ErrorIs(t, err, ErrInvalidPreset)

	_, err = Layout([]SectionSpec{{Duration: -1}}, 30)
	require.ErrorIs(t, err, ErrInvalidPreset)

	got, err := Layout([]SectionSpec{{}}, 0)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestScriptedPresets(t *testing.T) {
	c, err := LoadCatalog("")
	require.NoError(t, err)

	t.Run("crescendo long", func(t *testing.T) {
		got, err := c.Sections("crescendo", 120)
		require.NoError(t, err)
		require.Len(t, got, 6)
		want := timeline.Tempos()
		for i, s := range got {
			assert.Equal(t, want[i], s.Tempo)
			assert.Equal(t, float64(i+1)*20, s.EndTime)
		}
		assert.Equal(t, "pp", got[0].Dynamics)
		assert.Equal(t, "ff", got[5].Dynamics)
		assert.Equal(t, timeline.MovementRun, got[5].Movement)
	})

	t.Run("crescendo short", func(t *testing.T) {
		got, err := c.Sections("crescendo", 30)
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, []timeline.Tempo{timeline.TempoLargo, timeline.TempoAndante, timeline.TempoAllegro},
			[]timeline.Tempo{got[0].Tempo, got[1].Tempo, got[2].Tempo})
	})

	t.Run("rondo", func(t *testing.T) {
		got, err := c.Sections("rondo", 100)
		require.NoError(t, err)
		require.Len(t, got, 5)
		scenes := make([]string, len(got))
		for i, s := range got {
			scenes[i] = s.Scene
		}
		assert.Equal(t, []string{"meadow", "city", "meadow", "ocean", "meadow"}, scenes)
		assert.Equal(t, 100.0, got[4].EndTime)
	})
}

func TestUnknownJourney(t *testing.T) {
	c, err := LoadCatalog("")
	require.NoError(t, err)
	_, err = c.Sections("missing", 60)
	require.ErrorIs(t, err, ErrUnknownJourney)
}

func TestBadScripts(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{"no sections", `x := 1`},
		{"not an array", `sections := 5`},
		{"syntax", `sections := [`},
		{"runtime", `sections := [1 / 0]`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := runScriptSource(tc.name, []byte(tc.src), 60)
			require.Error(t, err)
		})
	}

	_, err := runScriptSource("sections", []byte(`sections := 5`), 60)
	require.ErrorIs(t, err, ErrInvalidPreset)

	_, err = runScriptSource("divide", []byte(`sections := [1 / 0]`), 60)
	require.ErrorIs(t, err, ErrScriptPanic)
}

func TestScriptFaultFromCatalog(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "scripts"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scripts", "boom.tengo"),
		[]byte("n := total_duration - total_duration\nsections := [{weight: 1 / int(n)}]\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, JourneysFile),
		[]byte("journeys:\n  - id: boom\n    script: boom.tengo\n"), 0644))

	c, err := LoadCatalog(dir)
	require.NoError(t, err)

	var sections []timeline.Section
	require.NotPanics(t, func() {
		sections, err = c.Sections("boom", 60)
	})
	require.ErrorIs(t, err, ErrScriptPanic)
	assert.Empty(t, sections)
}

func TestDiskOverridesEmbedded(t *testing.T) {
	dir := t.TempDir()
	write := func(body string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, JourneysFile), []byte(body), 0644))
	}
	write("journeys:\n  - id: solo\n    sections:\n      - { weight: 1, scene: city }\n")

	c, err := LoadCatalog(dir)
	require.NoError(t, err)
	require.Len(t, c.Journeys(), 1)
	_, ok := c.Scene("meadow")
	assert.True(t, ok, "scenes fall back to the embedded file")

	write("journeys:\n  - id: solo\n  - id: duo\n")
	require.NoError(t, c.Reload())
	assert.Len(t, c.Journeys(), 2)

	write("journeys: [")
	require.Error(t, c.Reload())
	assert.Len(t, c.Journeys(), 2, "a bad reload keeps the previous presets")
}

func TestWatcherReportsPresetChanges(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ScenesFile), []byte("scenes: []\n"), 0644))

	select {
	case c := <-w.Changes():
		assert.True(t, strings.HasSuffix(c.Path, ScenesFile), "got %s", c.Path)
		assert.Equal(t, ChangeSpec, c.Kind)
		assert.False(t, c.Removed)
	case err := <-w.Errors():
		t.Fatalf("watcher error: %v", err)
	case <-time.After(3 * time.Second):
		t.Fatalf("no event for %s", ScenesFile)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		ev      fsnotify.Event
		ok      bool
		kind    ChangeKind
		removed bool
	}{
		{fsnotify.Event{Name: "scenes.yaml", Op: fsnotify.Write}, true, ChangeSpec, false},
		{fsnotify.Event{Name: "a.YML", Op: fsnotify.Create}, true, ChangeSpec, false},
		{fsnotify.Event{Name: "scripts/rondo.tengo", Op: fsnotify.Remove}, true, ChangeScript, true},
		{fsnotify.Event{Name: "journeys.yaml", Op: fsnotify.Chmod}, false, 0, false},
		{fsnotify.Event{Name: "notes.txt", Op: fsnotify.Write}, false, 0, false},
	}
	for _, tt := range tests {
		c, ok := classify(tt.ev)
		assert.Equal(t, tt.ok, ok, tt.ev.Name)
		if !ok {
			continue
		}
		assert.Equal(t, tt.kind, c.Kind, tt.ev.Name)
		assert.Equal(t, tt.removed, c.Removed, tt.ev.Name)
	}
}

func TestCleanScriptPath(t *testing.T) {
	for _, in := range []string{"rondo.tengo", "scripts/rondo.tengo", "presets/scripts/rondo.tengo"} {
		assert.Equal(t, "scripts/rondo.tengo", cleanScriptPath(in))
	}
}
