package engine

import (
	"github.com/milk9111/listeningjourney/overlay"
	"github.com/milk9111/listeningjourney/timeline"
)

func Play() Command {
	return Command{Name: "play", Apply: func(w *World) error { return w.clock.Play() }}
}

func Pause() Command {
	return Command{Name: "pause", Apply: func(w *World) error { return w.clock.Pause() }}
}

func TogglePlay() Command {
	return Command{Name: "toggle", Apply: func(w *World) error { return w.clock.TogglePlay() }}
}

func Rewind() Command {
	return Command{Name: "rewind", Apply: func(w *World) error { return w.clock.Rewind() }}
}

func Seek(t float64) Command {
	return Command{Name: "seek", Apply: func(w *World) error { return w.clock.SeekTo(t) }}
}

// LoadAudio replaces the session's media.
func LoadAudio(src string, volume float64) Command {
	return Command{Name: "load_audio", Edit: true, Apply: func(w *World) error {
		w.session.AudioSrc = src
		return w.clock.Load(src, volume)
	}}
}

func SetMode(m overlay.Mode) Command {
	return Command{Name: "set_mode", Apply: func(w *World) error {
		w.session.SetMode(m)
		return nil
	}}
}

func AddSection(scene string) Command {
	return Command{Name: "add_section", Edit: true, Apply: func(w *World) error {
		_, err := w.session.AddSection(scene)
		return err
	}}
}

func RemoveSection(i int) Command {
	return Command{Name: "remove_section", Edit: true, Apply: func(w *World) error {
		return w.session.RemoveSection(i)
	}}
}

func ResizeBoundary(i int, t float64) Command {
	return Command{Name: "resize_boundary", Edit: true, Apply: func(w *World) error {
		_, err := w.session.ResizeBoundary(i, t)
		return err
	}}
}

func ExtendLastEdge(t float64) Command {
	return Command{Name: "extend_last_edge", Edit: true, Apply: func(w *World) error {
		_, err := w.session.ExtendLastEdge(t)
		return err
	}}
}

func UpdateSection(i int, field timeline.Field, value string) Command {
	return Command{Name: "update_section", Edit: true, Apply: func(w *World) error {
		return w.session.UpdateSectionAttribute(i, field, value)
	}}
}

func PlaceItem(req overlay.PlaceRequest) Command {
	return Command{Name: "place_item", Edit: true, Apply: func(w *World) error {
		_, err := w.session.PlaceItem(req)
		return err
	}}
}

func MoveItem(id string, timestamp float64, pos overlay.Position) Command {
	return Command{Name: "move_item", Edit: true, Apply: func(w *World) error {
		_, err := w.session.MoveItem(id, timestamp, pos)
		return err
	}}
}

func ResizeItem(id string, duration float64) Command {
	return Command{Name: "resize_item", Edit: true, Apply: func(w *World) error {
		_, err := w.session.ResizeItem(id, duration)
		return err
	}}
}

func SetItemContent(id, content string) Command {
	return Command{Name: "set_item_content", Edit: true, Apply: func(w *World) error {
		_, err := w.session.SetItemContent(id, content)
		return err
	}}
}

func RemoveItem(id string) Command {
	return Command{Name: "remove_item", Edit: true, Apply: func(w *World) error {
		return w.session.RemoveItem(id)
	}}
}

func ApplyPreset(sections []timeline.Section) Command {
	return Command{Name: "apply_preset", Edit: true, Apply: func(w *World) error {
		return w.session.ApplyPreset(sections)
	}}
}

// RevertPreset restores the sections from before the last ApplyPreset.
func RevertPreset() Command {
	return Command{Name: "revert_preset", Edit: true, Apply: func(w *World) error {
		return w.session.RevertPreset()
	}}
}

func Reset() Command {
	return Command{Name: "reset", Edit: true, Apply: func(w *World) error {
		w.session.Reset()
		return nil
	}}
}
