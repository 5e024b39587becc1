package journey

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milk9111/listeningjourney/overlay"
	"github.com/milk9111/listeningjourney/timeline"
)

func sampleSession(t *testing.T) *Session {
	t.Helper()
	s := NewSession("j1", "Morning walk", 60, nil)
	s.AudioSrc = "music/morning.ogg"

	for _, scene := range []string{"meadow", "ocean", ""} {
		_, err := s.AddSection(scene)
		require.NoError(t, err)
	}
	require.NoError(t, s.UpdateSectionAttribute(1, timeline.FieldTempo, "allegro"))
	require.NoError(t, s.UpdateSectionAttribute(1, timeline.FieldNightMode, "true"))

	_, err := s.PlaceItem(overlay.PlaceRequest{
		Kind:      overlay.KindSticker,
		Content:   "star",
		Timestamp: 20,
		Position:  overlay.Position{X: 0.5, Y: 0.25},
	})
	require.NoError(t, err)
	_, err = s.PlaceItem(overlay.PlaceRequest{
		Kind:      overlay.KindText,
		Content:   "the tide comes in",
		Timestamp: 35,
		Duration:  5,
		Position:  overlay.Position{X: 0.2, Y: 0.7},
		Scale:     1.5,
	})
	require.NoError(t, err)
	return s
}

func TestDocumentRoundTrip(t *testing.T) {
	s := sampleSession(t)
	doc := s.Document()

	restored, err := FromDocument(doc, nil)
	require.NoError(t, err)
	assert.Equal(t, doc, restored.Document())
	assert.Equal(t, s.Items(), restored.Items())
}

func TestDocumentFileRoundTrip(t *testing.T) {
	doc := sampleSession(t).Document()

	for _, name := range []string{"journey.yaml", "journey.json"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)
			require.NoError(t, SaveFile(path, doc))

			loaded, err := LoadFile(path)
			require.NoError(t, err)
			assert.Equal(t, doc, loaded)

			s, err := FromDocument(loaded, nil)
			require.NoError(t, err)
			assert.Equal(t, doc.Items[0].PlacedAtOffset, s.Items()[0].PlacedAtOffset)
		})
	}
}

func TestDocumentIsACopy(t *testing.T) {
	s := sampleSession(t)
	doc := s.Document()
	doc.Sections[0].Tempo = timeline.TempoPresto
	doc.Items[0].Content = "heart"

	assert.Equal(t, timeline.TempoAndante, s.Sections()[0].Tempo)
	assert.Equal(t, "star", s.Items()[0].Content)
}

func TestFromDocumentSeedsIDs(t *testing.T) {
	doc := sampleSession(t).Document()
	s, err := FromDocument(doc, nil)
	require.NoError(t, err)

	it, err := s.PlaceItem(overlay.PlaceRequest{Kind: overlay.KindSticker, Content: "moon", Timestamp: 1})
	require.NoError(t, err)
	for _, sec := range doc.Sections {
		assert.NotEqual(t, sec.ID, it.ID)
	}
	for _, old := range doc.Items {
		assert.NotEqual(t, old.ID, it.ID)
	}
}

func TestFromDocumentRejectsBrokenTimeline(t *testing.T) {
	doc := sampleSession(t).Document()
	doc.Sections[1].StartTime += 2

	_, err := FromDocument(doc, nil)
	require.ErrorIs(t, err, timeline.ErrNotContiguous)
}

func TestPlaceholderFilledBeforeAppend(t *testing.T) {
	s := sampleSession(t)
	i, err := s.AddSection("forest")
	require.NoError(t, err)
	assert.Equal(t, 2, i)
	assert.Len(t, s.Sections(), 3)
	assert.Equal(t, "grass", s.Sections()[2].Ground)
}

func TestApplyPreset(t *testing.T) {
	s := sampleSession(t)
	err := s.ApplyPreset([]timeline.Section{
		{StartTime: 0, EndTime: 40, Tempo: timeline.TempoLargo, Scene: "desert"},
		{StartTime: 40, EndTime: 60, Tempo: timeline.TempoPresto, Scene: "space"},
	})
	require.NoError(t, err)

	got := s.Sections()
	require.Len(t, got, 2)
	assert.NotEmpty(t, got[0].ID)
	assert.NotEqual(t, got[0].ID, got[1].ID)
	assert.Equal(t, "sand", got[0].Ground)
	assert.Equal(t, "B", got[1].Label)
	assert.Len(t, s.Items(), 2, "presets keep items")
}

func TestApplyPresetInvalidLeavesSections(t *testing.T) {
	s := sampleSession(t)
	before := s.Sections()

	err := s.ApplyPreset([]timeline.Section{{StartTime: 0, EndTime: 90, Scene: "desert"}})
	require.ErrorIs(t, err, timeline.ErrNotContiguous)
	assert.Equal(t, before, s.Sections())
}

func TestRevertPreset(t *testing.T) {
	s := sampleSession(t)
	require.ErrorIs(t, s.RevertPreset(), ErrNothingToRevert)

	before := s.Sections()
	require.NoError(t, s.ApplyPreset([]timeline.Section{{StartTime: 0, EndTime: 60, Scene: "arctic"}}))
	require.True(t, s.CanRevertPreset())

	require.NoError(t, s.RevertPreset())
	assert.Equal(t, before, s.Sections())
	assert.False(t, s.CanRevertPreset())
	require.ErrorIs(t, s.RevertPreset(), ErrNothingToRevert)
}

func TestRevertPresetDroppedByEdits(t *testing.T) {
	s := sampleSession(t)
	require.NoError(t, s.ApplyPreset([]timeline.Section{
		{StartTime: 0, EndTime: 30, Scene: "arctic"},
		{StartTime: 30, EndTime: 60, Scene: "city"},
	}))

	require.Error(t, s.RemoveSection(7))
	assert.True(t, s.CanRevertPreset(), "a failed edit keeps the snapshot")

	require.NoError(t, s.UpdateSectionAttribute(0, timeline.FieldTempo, "presto"))
	assert.False(t, s.CanRevertPreset())
	require.ErrorIs(t, s.RevertPreset(), ErrNothingToRevert)
}

func TestReset(t *testing.T) {
	s := sampleSession(t)
	s.Reset()
	assert.Empty(t, s.Sections())
	assert.Empty(t, s.Items())
	assert.Equal(t, 60.0, s.TotalDuration())
}

func TestMoveItemReanchors(t *testing.T) {
	s := sampleSession(t)
	id := s.Items()[0].ID

	it, err := s.MoveItem(id, 40, overlay.Position{X: 0.3, Y: 0.3})
	require.NoError(t, err)
	assert.Equal(t, timeline.OffsetAtTime(40, s.Sections()), it.PlacedAtOffset)
	assert.Equal(t, 0.0, it.Drift(timeline.OffsetAtTime(40, s.Sections())))
}
