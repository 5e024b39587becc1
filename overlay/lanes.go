package overlay

import "sort"

// MaxLanes is the number of rows in the timeline item track.
const MaxLanes = 5

// Lane pairs an item with the track row it is drawn in.
type Lane struct {
	ItemID string  `json:"itemId"`
	Lane   int     `json:"lane"`
	Start  float64 `json:"start"`
	End    float64 `json:"end"`
}

// AssignLanes lays items out first-fit: items are taken in timestamp order and
// each goes to the lowest lane whose previous occupant has ended. When every
// lane is busy the item shares the last lane. This is a greedy layout, not a
// minimum coloring, and is kept that way so tracks look the same everywhere.
func AssignLanes(items []Item, total float64) []Lane {
	sorted := make([]Item, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp < sorted[j].Timestamp
	})

	var ends [MaxLanes]float64
	var used [MaxLanes]bool
	out := make([]Lane, 0, len(sorted))
	for _, it := range sorted {
		end := it.End(total)
		lane := MaxLanes - 1
		for l := 0; l < MaxLanes; l++ {
			if !used[l] || ends[l] <= it.Timestamp {
				lane = l
				break
			}
		}
		used[lane] = true
		ends[lane] = end
		out = append(out, Lane{ItemID: it.ID, Lane: lane, Start: it.Timestamp, End: end})
	}
	return out
}
