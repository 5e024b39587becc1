package timeline

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/jinzhu/copier"
	"github.com/milk9111/listeningjourney/ids"
)

const (
	DefaultSectionDuration = 15.0
	MinSectionDuration     = 5.0

	validateEpsilon = 1e-9
)

var (
	ErrIndexOutOfRange = errors.New("timeline: section index out of range")
	ErrNoBoundary      = errors.New("timeline: no boundary at index")
	ErrTimelineFull    = errors.New("timeline: timeline is fully covered")
	ErrEmptyTimeline   = errors.New("timeline: timeline has no sections")
	ErrNoRoom          = errors.New("timeline: no room to keep minimum section duration")
	ErrUnknownField    = errors.New("timeline: unknown section field")
	ErrInvalidValue    = errors.New("timeline: invalid value")
	ErrNotContiguous   = errors.New("timeline: sections are not contiguous")
)

// Field names a descriptive section attribute.
type Field string

const (
	FieldTempo        Field = "tempo"
	FieldDynamics     Field = "dynamics"
	FieldArticulation Field = "articulation"
	FieldMovement     Field = "movement"
	FieldWeather      Field = "weather"
	FieldNightMode    Field = "nightMode"
	FieldScene        Field = "scene"
	FieldSky          Field = "sky"
	FieldGround       Field = "ground"
)

// Timeline is the ordered, contiguous list of sections covering
// [0, CoveredEnd] with CoveredEnd <= TotalDuration. Every mutating method
// either succeeds or returns an error and leaves the timeline untouched.
//
// A Timeline has a single writer; readers get copies from Sections.
type Timeline struct {
	sections []Section
	total    float64
	ids      ids.Source
}

func New(totalDuration float64, src ids.Source) *Timeline {
	if src == nil {
		src = ids.NewCounter("section")
	}
	if totalDuration < 0 || math.IsNaN(totalDuration) {
		totalDuration = 0
	}
	return &Timeline{total: totalDuration, ids: src}
}

func (tl *Timeline) Len() int {
	return len(tl.sections)
}

func (tl *Timeline) TotalDuration() float64 {
	return tl.total
}

// Sections returns a copy of the section list.
func (tl *Timeline) Sections() []Section {
	out := make([]Section, len(tl.sections))
	copy(out, tl.sections)
	return out
}

func (tl *Timeline) Section(i int) (Section, bool) {
	if i < 0 || i >= len(tl.sections) {
		return Section{}, false
	}
	return tl.sections[i], true
}

// CoveredEnd is the end of the last section, or 0 when empty.
func (tl *Timeline) CoveredEnd() float64 {
	if len(tl.sections) == 0 {
		return 0
	}
	return tl.sections[len(tl.sections)-1].EndTime
}

// AddSection fills the first placeholder section with sceneID, or appends a
// new section after the last one. It returns the index of the touched section.
func (tl *Timeline) AddSection(sceneID string) (int, error) {
	for i := range tl.sections {
		if tl.sections[i].IsPlaceholder() && sceneID != "" {
			tl.sections[i].Scene = sceneID
			tl.sections[i].Ground = GroundFor(sceneID)
			return i, nil
		}
	}

	start := tl.CoveredEnd()
	if start >= tl.total {
		return -1, ErrTimelineFull
	}
	end := math.Min(start+DefaultSectionDuration, tl.total)

	tl.sections = append(tl.sections, defaultSection(tl.ids.NextID(), sceneID, start, end))
	tl.relabel()
	return len(tl.sections) - 1, nil
}

// RemoveSection deletes section i and hands its interval to a neighbor.
func (tl *Timeline) RemoveSection(i int) error {
	n := len(tl.sections)
	if i < 0 || i >= n {
		return ErrIndexOutOfRange
	}
	removed := tl.sections[i]

	next := make([]Section, 0, n-1)
	next = append(next, tl.sections[:i]...)
	next = append(next, tl.sections[i+1:]...)

	switch {
	case len(next) == 0:
	case i == 0:
		next[0].StartTime = 0
	case i == n-1:
		next[len(next)-1].EndTime = tl.total
	default:
		next[i-1].EndTime = removed.EndTime
	}

	tl.sections = next
	tl.relabel()
	return nil
}

// ResizeBoundary moves the edge shared by sections i and i+1 to proposed,
// clamped so both keep MinSectionDuration. It returns the applied time.
func (tl *Timeline) ResizeBoundary(i int, proposed float64) (float64, error) {
	if i < 0 || i >= len(tl.sections)-1 {
		return 0, ErrNoBoundary
	}
	if math.IsNaN(proposed) {
		return 0, ErrInvalidValue
	}
	left, right := &tl.sections[i], &tl.sections[i+1]
	lo := left.StartTime + MinSectionDuration
	hi := right.EndTime - MinSectionDuration
	if lo > hi {
		return left.EndTime, ErrNoRoom
	}

	clamped := math.Min(math.Max(proposed, lo), hi)
	left.EndTime = clamped
	right.StartTime = clamped
	return clamped, nil
}

// ExtendLastEdge moves the end of the last section, clamped to
// [last.StartTime+MinSectionDuration, TotalDuration].
func (tl *Timeline) ExtendLastEdge(newEnd float64) (float64, error) {
	if len(tl.sections) == 0 {
		return 0, ErrEmptyTimeline
	}
	if math.IsNaN(newEnd) {
		return 0, ErrInvalidValue
	}
	last := &tl.sections[len(tl.sections)-1]
	lo := last.StartTime + MinSectionDuration
	hi := tl.total
	if lo > hi {
		return last.EndTime, ErrNoRoom
	}

	last.EndTime = math.Min(math.Max(newEnd, lo), hi)
	return last.EndTime, nil
}

// UpdateSectionAttribute sets one descriptive field of section i. Setting the
// scene also sets the paired ground.
func (tl *Timeline) UpdateSectionAttribute(i int, field Field, value string) error {
	if i < 0 || i >= len(tl.sections) {
		return ErrIndexOutOfRange
	}
	s := tl.sections[i]
	switch field {
	case FieldTempo:
		t := Tempo(value)
		if !t.Valid() {
			return fmt.Errorf("%w: tempo %q", ErrInvalidValue, value)
		}
		s.Tempo = t
	case FieldDynamics:
		s.Dynamics = value
	case FieldArticulation:
		s.Articulation = value
	case FieldMovement:
		s.Movement = value
	case FieldWeather:
		s.Weather = value
	case FieldNightMode:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: nightMode %q", ErrInvalidValue, value)
		}
		s.NightMode = b
	case FieldScene:
		s.Scene = value
		s.Ground = GroundFor(value)
	case FieldSky:
		s.Sky = value
	case FieldGround:
		s.Ground = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	tl.sections[i] = s
	return nil
}

// SetTotalDuration changes the length of the piece. Sections past the new end
// are dropped and the last one is trimmed; the covered region never grows.
func (tl *Timeline) SetTotalDuration(d float64) {
	if d < 0 || math.IsNaN(d) {
		d = 0
	}
	tl.total = d

	keep := tl.sections[:0:0]
	for _, s := range tl.sections {
		if s.StartTime >= d {
			break
		}
		keep = append(keep, s)
	}
	if len(keep) > 0 && keep[len(keep)-1].EndTime > d {
		keep[len(keep)-1].EndTime = d
	}
	tl.sections = keep
	tl.relabel()
}

// Reset removes every section.
func (tl *Timeline) Reset() {
	tl.sections = nil
}

// Replace swaps in a section list after checking the contiguity invariant.
// Labels and colors are re-derived by position.
func (tl *Timeline) Replace(sections []Section) error {
	next := make([]Section, len(sections))
	copy(next, sections)
	if err := validate(next, tl.total); err != nil {
		return err
	}
	tl.sections = next
	tl.relabel()
	return nil
}

// Validate checks the contiguity invariant of the current sections.
func (tl *Timeline) Validate() error {
	return validate(tl.sections, tl.total)
}

// Clone returns an independent deep copy sharing the ID source.
func (tl *Timeline) Clone() *Timeline {
	out := &Timeline{total: tl.total, ids: tl.ids}
	if len(tl.sections) > 0 {
		if err := copier.CopyWithOption(&out.sections, &tl.sections, copier.Option{DeepCopy: true}); err != nil {
			out.sections = tl.Sections()
		}
	}
	return out
}

func (tl *Timeline) relabel() {
	for i := range tl.sections {
		tl.sections[i].Label = LabelFor(i)
		tl.sections[i].Color = ColorFor(i)
	}
}

func validate(sections []Section, total float64) error {
	for i, s := range sections {
		if !(s.StartTime < s.EndTime) {
			return fmt.Errorf("%w: section %d has start %.3f >= end %.3f", ErrNotContiguous, i, s.StartTime, s.EndTime)
		}
		if i == 0 && math.Abs(s.StartTime) > validateEpsilon {
			return fmt.Errorf("%w: first section starts at %.3f", ErrNotContiguous, s.StartTime)
		}
		if i > 0 && math.Abs(sections[i-1].EndTime-s.StartTime) > validateEpsilon {
			return fmt.Errorf("%w: gap between sections %d and %d", ErrNotContiguous, i-1, i)
		}
	}
	if n := len(sections); n > 0 && sections[n-1].EndTime > total+validateEpsilon {
		return fmt.Errorf("%w: covered end %.3f exceeds total %.3f", ErrNotContiguous, sections[n-1].EndTime, total)
	}
	return nil
}

// CurrentSectionIndex returns the first section whose interval contains t,
// or 0 when none does.
func CurrentSectionIndex(t float64, sections []Section) int {
	if i, ok := sectionAt(t, sections); ok {
		return i
	}
	return 0
}

func sectionAt(t float64, sections []Section) (int, bool) {
	for i, s := range sections {
		if s.Contains(t) {
			return i, true
		}
	}
	return 0, false
}
