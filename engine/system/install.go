package system

import (
	"github.com/milk9111/listeningjourney/engine"
)

type named struct {
	name   string
	system engine.System
}

// Install adds the default frame pipeline to w.
func Install(w *engine.World) {
	for _, n := range pipeline() {
		w.AddSystem(n.name, n.system)
	}
}

func pipeline() []named {
	return []named{
		{"transport", NewTransportSystem()},
		{"clock", NewClockSystem()},
		{"section", NewSectionSystem()},
		{"scroll", NewScrollSystem()},
		{"sprite", NewSpriteSystem(SpriteFrames)},
		{"overlay", NewOverlaySystem()},
		{"publish", NewPublishSystem()},
	}
}
