package common

const (
	lcgMultiplier = 16807
	lcgModulus    = 2147483647
)

// LCG is the Park-Miller minimal standard generator. It is used for decorative
// layout that must render identically on every run, so it never reads a
// global random source.
type LCG struct {
	seed int64
}

func NewLCG(seed int64) *LCG {
	s := seed % lcgModulus
	if s <= 0 {
		s += lcgModulus - 1
	}
	return &LCG{seed: s}
}

// Next advances the generator and returns the new state in [1, 2147483646].
func (g *LCG) Next() int64 {
	g.seed = (g.seed * lcgMultiplier) % lcgModulus
	return g.seed
}

// Float returns a value in [0, 1).
func (g *LCG) Float() float64 {
	return float64(g.Next()-1) / float64(lcgModulus-1)
}

// Range returns a value in [lo, hi).
func (g *LCG) Range(lo, hi float64) float64 {
	return lo + g.Float()*(hi-lo)
}
