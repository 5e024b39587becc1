package timeline

import "github.com/milk9111/listeningjourney/common"

const (
	// BaseRate is background copies scrolled per second at speed 1.0.
	BaseRate = 0.15
	// OffsetScale halves the integrated distance so layers drift gently.
	OffsetScale = 0.5
)

// OffsetAtTime integrates each section's tempo-scaled scroll rate from 0 up to
// t. It is pure: the same arguments always give the same result, and for a
// fixed section list it never decreases as t grows. Time past the covered end
// adds nothing.
func OffsetAtTime(t float64, sections []Section) float64 {
	offset := 0.0
	for _, s := range sections {
		if t <= s.StartTime {
			break
		}
		end := s.EndTime
		if t < end {
			end = t
		}
		offset += BaseRate * Speed(s.Tempo) * (end - s.StartTime)
	}
	return offset * OffsetScale
}

// RateAtTime is the derivative of OffsetAtTime at t, in offset units per second.
func RateAtTime(t float64, sections []Section) float64 {
	i, ok := sectionAt(t, sections)
	if !ok {
		return 0
	}
	return BaseRate * Speed(sections[i].Tempo) * OffsetScale
}

// TimeAtOffset inverts OffsetAtTime over the covered region. Offsets at or
// beyond the covered total map to the covered end; negative offsets map to 0.
func TimeAtOffset(offset float64, sections []Section) float64 {
	if offset <= 0 || len(sections) == 0 {
		return 0
	}
	acc := 0.0
	for _, s := range sections {
		rate := BaseRate * Speed(s.Tempo) * OffsetScale
		span := rate * s.Duration()
		if offset <= acc+span {
			if rate <= 0 {
				return s.StartTime
			}
			return s.StartTime + (offset-acc)/rate
		}
		acc += span
	}
	return sections[len(sections)-1].EndTime
}

// SectionElapsed is the tempo-scaled time spent inside s by t.
func SectionElapsed(t float64, s Section) float64 {
	elapsed := common.Clamp(t-s.StartTime, 0, s.Duration())
	return elapsed * Speed(s.Tempo)
}
