package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.design/x/clipboard"

	"github.com/milk9111/listeningjourney/overlay"
)

var errNoClipboard = errors.New("clipboard unavailable")

// clipItem is the clipboard form of an overlay item. Anchors are left out:
// a pasted item is anchored where it lands.
type clipItem struct {
	Type     overlay.Kind     `json:"type"`
	Content  string           `json:"content"`
	Duration float64          `json:"duration"`
	Position overlay.Position `json:"position"`
	Scale    float64          `json:"scale,omitempty"`
}

func encodeClip(it overlay.Item) ([]byte, error) {
	return json.Marshal(clipItem{
		Type:     it.Kind,
		Content:  it.Content,
		Duration: it.Duration,
		Position: it.Position,
		Scale:    it.Scale,
	})
}

// decodeClip turns clipboard text into a placement at timestamp now.
func decodeClip(b []byte, now float64) (overlay.PlaceRequest, error) {
	var c clipItem
	if err := json.Unmarshal(b, &c); err != nil {
		return overlay.PlaceRequest{}, fmt.Errorf("clipboard holds no item: %w", err)
	}
	if !c.Type.Valid() {
		return overlay.PlaceRequest{}, fmt.Errorf("%w: %q", overlay.ErrInvalidKind, c.Type)
	}
	return overlay.PlaceRequest{
		Kind:      c.Type,
		Content:   c.Content,
		Timestamp: now,
		Duration:  c.Duration,
		Position:  c.Position,
		Scale:     c.Scale,
	}, nil
}

type clipboardBridge struct {
	ok bool
}

func newClipboardBridge() *clipboardBridge {
	if err := clipboard.Init(); err != nil {
		log.Warn().Str("component", "clipboard").Err(err).Msg("copy and paste disabled")
		return &clipboardBridge{}
	}
	return &clipboardBridge{ok: true}
}

func (c *clipboardBridge) Copy(it overlay.Item) error {
	if !c.ok {
		return errNoClipboard
	}
	b, err := encodeClip(it)
	if err != nil {
		return err
	}
	clipboard.Write(clipboard.FmtText, b)
	return nil
}

func (c *clipboardBridge) Paste(now float64) (overlay.PlaceRequest, error) {
	if !c.ok {
		return overlay.PlaceRequest{}, errNoClipboard
	}
	return decodeClip(clipboard.Read(clipboard.FmtText), now)
}
