// Package ids provides the ID sources an editing session threads into its
// timeline and overlay set. Sources are values owned by the session; there is
// no package-level counter.
package ids

import (
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
)

type Source interface {
	NextID() string
}

// Counter yields prefix-1, prefix-2, ... and is safe for concurrent use.
type Counter struct {
	mu     sync.Mutex
	prefix string
	n      uint64
}

func NewCounter(prefix string) *Counter {
	return &Counter{prefix: prefix}
}

// Seed moves the counter so the next ID is strictly after n. Used after
// loading a document whose IDs came from an earlier counter.
func (c *Counter) Seed(n uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n > c.n {
		c.n = n
	}
}

// SeedFrom seeds the counter past every id in existing that carries its
// prefix. Other ids are ignored.
func (c *Counter) SeedFrom(existing ...string) {
	var max uint64
	for _, id := range existing {
		rest, ok := strings.CutPrefix(id, c.prefix+"-")
		if !ok {
			continue
		}
		n, err := strconv.ParseUint(rest, 10, 64)
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}
	c.Seed(max)
}

func (c *Counter) NextID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n++
	return c.prefix + "-" + strconv.FormatUint(c.n, 10)
}

// UUID yields random version 4 UUIDs.
type UUID struct{}

func (UUID) NextID() string {
	return uuid.NewString()
}
