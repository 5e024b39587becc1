package engine

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// slowSystem is the per-system frame time above which a debug line is logged.
const slowSystem = 4 * time.Millisecond

// System derives part of the frame from the world.
type System interface {
	Update(w *World)
}

// SystemFunc adapts a function to System.
type SystemFunc func(w *World)

func (f SystemFunc) Update(w *World) { f(w) }

type stage struct {
	name   string
	system System
}

// Pipeline runs systems in the order they were added. Each stage carries a
// name for logging and introspection.
type Pipeline struct {
	stages []stage
}

// Add appends system under name. An empty name falls back to the system's
// type.
func (p *Pipeline) Add(name string, system System) {
	if system == nil {
		return
	}
	if name == "" {
		name = fmt.Sprintf("%T", system)
	}
	p.stages = append(p.stages, stage{name: name, system: system})
}

// Run updates every stage once.
func (p *Pipeline) Run(w *World) {
	for _, st := range p.stages {
		start := time.Now()
		st.system.Update(w)
		if d := time.Since(start); d > slowSystem {
			log.Debug().Str("component", "engine").Str("system", st.name).Dur("took", d).Uint64("frame", w.frames).Msg("slow system")
		}
	}
}

// Names lists the stages in run order.
func (p *Pipeline) Names() []string {
	names := make([]string, len(p.stages))
	for i, st := range p.stages {
		names[i] = st.name
	}
	return names
}
