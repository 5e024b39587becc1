// Package journey ties a timeline and its overlay items into one editing
// session and converts sessions to and from plain documents.
package journey

import (
	"errors"

	"github.com/milk9111/listeningjourney/ids"
	"github.com/milk9111/listeningjourney/overlay"
	"github.com/milk9111/listeningjourney/timeline"
)

// ErrNothingToRevert is returned by RevertPreset when no preset was applied
// since the last section edit.
var ErrNothingToRevert = errors.New("journey: no preset to revert")

// Session is one journey being edited or presented. A Session has a single
// writer; the engine applies every mutation on its own goroutine.
type Session struct {
	ID       string
	Name     string
	AudioSrc string

	mode     overlay.Mode
	timeline *timeline.Timeline
	items    *overlay.Set
	ids      ids.Source

	// sections as they were before the last ApplyPreset
	beforePreset *timeline.Timeline
}

// NewSession returns an empty session. Sections and items draw their IDs
// from src; a nil src gets a fresh counter.
func NewSession(id, name string, totalDuration float64, src ids.Source) *Session {
	if src == nil {
		src = ids.NewCounter("id")
	}
	return &Session{
		ID:       id,
		Name:     name,
		timeline: timeline.New(totalDuration, src),
		items:    overlay.NewSet(src),
		ids:      src,
	}
}

func (s *Session) Mode() overlay.Mode {
	return s.mode
}

func (s *Session) SetMode(m overlay.Mode) {
	s.mode = m
}

func (s *Session) TotalDuration() float64 {
	return s.timeline.TotalDuration()
}

// Sections returns a copy of the current sections.
func (s *Session) Sections() []timeline.Section {
	return s.timeline.Sections()
}

// Items returns a copy of the current overlay items.
func (s *Session) Items() []overlay.Item {
	return s.items.Items()
}

func (s *Session) Item(id string) (overlay.Item, bool) {
	return s.items.Get(id)
}

func (s *Session) Timeline() *timeline.Timeline {
	return s.timeline
}

func (s *Session) Overlays() *overlay.Set {
	return s.items
}

func (s *Session) AddSection(scene string) (int, error) {
	i, err := s.timeline.AddSection(scene)
	s.edited(err)
	return i, err
}

func (s *Session) RemoveSection(i int) error {
	err := s.timeline.RemoveSection(i)
	s.edited(err)
	return err
}

func (s *Session) ResizeBoundary(i int, t float64) (float64, error) {
	at, err := s.timeline.ResizeBoundary(i, t)
	s.edited(err)
	return at, err
}

func (s *Session) ExtendLastEdge(t float64) (float64, error) {
	at, err := s.timeline.ExtendLastEdge(t)
	s.edited(err)
	return at, err
}

func (s *Session) UpdateSectionAttribute(i int, field timeline.Field, value string) error {
	err := s.timeline.UpdateSectionAttribute(i, field, value)
	s.edited(err)
	return err
}

// edited drops the preset snapshot once the sections were changed by hand.
func (s *Session) edited(err error) {
	if err == nil {
		s.beforePreset = nil
	}
}

// PlaceItem anchors a new item to the scroll offset of the current sections.
func (s *Session) PlaceItem(req overlay.PlaceRequest) (overlay.Item, error) {
	return s.items.Place(req, s.timeline.Sections(), s.timeline.TotalDuration())
}

func (s *Session) MoveItem(id string, timestamp float64, pos overlay.Position) (overlay.Item, error) {
	return s.items.Move(id, timestamp, pos, s.timeline.Sections(), s.timeline.TotalDuration())
}

func (s *Session) ResizeItem(id string, duration float64) (overlay.Item, error) {
	return s.items.Resize(id, duration)
}

func (s *Session) SetItemContent(id, content string) (overlay.Item, error) {
	return s.items.SetContent(id, content)
}

func (s *Session) RemoveItem(id string) error {
	return s.items.Remove(id)
}

// Reset clears sections and items. The duration and audio source stay.
func (s *Session) Reset() {
	s.timeline.Reset()
	s.items.Clear()
	s.beforePreset = nil
}

// SetTotalDuration is called once the media reports its length.
func (s *Session) SetTotalDuration(d float64) {
	s.timeline.SetTotalDuration(d)
}

// ApplyPreset replaces the sections with a prepared layout. Sections without
// an ID get one from the session's source. Items are kept.
func (s *Session) ApplyPreset(sections []timeline.Section) error {
	next := make([]timeline.Section, len(sections))
	copy(next, sections)
	for i := range next {
		if next[i].ID == "" {
			next[i].ID = s.ids.NextID()
		}
		if next[i].Ground == "" {
			next[i].Ground = timeline.GroundFor(next[i].Scene)
		}
	}
	before := s.timeline.Clone()
	if err := s.timeline.Replace(next); err != nil {
		return err
	}
	s.beforePreset = before
	return nil
}

// CanRevertPreset reports whether RevertPreset has a snapshot to restore.
func (s *Session) CanRevertPreset() bool {
	return s.beforePreset != nil
}

// RevertPreset restores the sections replaced by the last ApplyPreset.
// Items are untouched.
func (s *Session) RevertPreset() error {
	if s.beforePreset == nil {
		return ErrNothingToRevert
	}
	if err := s.timeline.Replace(s.beforePreset.Sections()); err != nil {
		return err
	}
	s.beforePreset = nil
	return nil
}
