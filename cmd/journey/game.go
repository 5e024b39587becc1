package main

import (
	"context"
	"image"
	"math"
	"time"
	"unicode/utf8"

	"github.com/ebitenui/ebitenui"
	"github.com/ebitenui/ebitenui/widget"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/rs/zerolog/log"

	"github.com/milk9111/listeningjourney/assets"
	"github.com/milk9111/listeningjourney/engine"
	"github.com/milk9111/listeningjourney/journey"
	"github.com/milk9111/listeningjourney/overlay"
	"github.com/milk9111/listeningjourney/presets"
	"github.com/milk9111/listeningjourney/render"
	"github.com/milk9111/listeningjourney/storage"
)

const (
	seekStep      = 5.0
	edgeTolerance = 5.0
	hitRadius     = 24.0
	statusTTL     = 3 * time.Second
)

type tool int

const (
	toolSticker tool = iota
	toolText
)

func (t tool) String() string {
	if t == toolText {
		return "text"
	}
	return "sticker"
}

type Game struct {
	world    *engine.World
	session  *journey.Session
	catalog  *presets.Catalog
	store    storage.Store
	renderer *render.Renderer
	ui       *ebitenui.UI
	toolbar  *widget.Container
	clip     *clipboardBridge

	width, height int

	tool     tool
	sticker  int
	scene    int
	preset   int
	selected string
	dragItem bool
	dragEdge int

	status      string
	statusUntil time.Time
}

func NewGame(w *engine.World, catalog *presets.Catalog, store storage.Store, r *render.Renderer) *Game {
	g := &Game{
		world:    w,
		session:  w.Session(),
		catalog:  catalog,
		store:    store,
		renderer: r,
		clip:     newClipboardBridge(),
		dragEdge: -1,
	}
	g.ui, g.toolbar = newToolbar(g)
	return g
}

func (g *Game) Update() error {
	if !g.editingText() {
		g.handleKeys()
	} else {
		g.handleTyping()
	}
	if g.ui != nil {
		g.ui.Update()
	}
	g.handleMouse()

	g.world.Update()
	for _, n := range g.world.Snapshot().Notices {
		if n.Type == engine.NoticeCommandFailed {
			g.say(n.Message)
		}
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.renderer.Draw(screen, render.View{
		Frame:     g.world.Snapshot(),
		Sections:  g.session.Sections(),
		Items:     g.session.Items(),
		Selected:  g.selected,
		ShowTrack: g.building(),
	})
	if g.ui != nil {
		g.ui.Draw(screen)
	}
	if g.status != "" && time.Now().Before(g.statusUntil) {
		g.renderer.Caption(screen, g.status)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.width, g.height = outsideWidth, outsideHeight
	return outsideWidth, outsideHeight
}

func (g *Game) post(cmd engine.Command) {
	if err := g.world.Post(context.Background(), cmd); err != nil {
		log.Warn().Str("component", "game").Str("command", cmd.Name).Err(err).Msg("post")
	}
}

func (g *Game) say(msg string) {
	g.status = msg
	g.statusUntil = time.Now().Add(statusTTL)
}

func (g *Game) building() bool {
	return g.session.Mode() == overlay.ModeBuild
}

func (g *Game) stageHeight() float64 {
	return render.StageHeight(g.height, g.building())
}

func (g *Game) editingText() bool {
	if g.selected == "" {
		return false
	}
	it, ok := g.session.Item(g.selected)
	return ok && it.Kind == overlay.KindText
}

func ctrl() bool {
	return ebiten.IsKeyPressed(ebiten.KeyControl) || ebiten.IsKeyPressed(ebiten.KeyMeta)
}

func (g *Game) handleKeys() {
	now := g.world.Clock().CurrentTime()
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		g.post(engine.TogglePlay())
	case inpututil.IsKeyJustPressed(ebiten.KeyLeft):
		g.post(engine.Seek(now - seekStep))
	case inpututil.IsKeyJustPressed(ebiten.KeyRight):
		g.post(engine.Seek(now + seekStep))
	case inpututil.IsKeyJustPressed(ebiten.KeyHome):
		g.post(engine.Rewind())
	case inpututil.IsKeyJustPressed(ebiten.KeyS) && ctrl():
		g.save()
	case inpututil.IsKeyJustPressed(ebiten.KeyC) && ctrl():
		g.copySelected()
	case inpututil.IsKeyJustPressed(ebiten.KeyV) && ctrl():
		g.paste()
	case inpututil.IsKeyJustPressed(ebiten.KeyZ) && ctrl():
		g.post(engine.RevertPreset())
		g.say("preset reverted")
	case inpututil.IsKeyJustPressed(ebiten.KeyM):
		g.toggleMode()
	case inpututil.IsKeyJustPressed(ebiten.KeyA):
		g.addSection()
	case inpututil.IsKeyJustPressed(ebiten.KeyP):
		g.nextPreset()
	case inpututil.IsKeyJustPressed(ebiten.KeyT):
		g.tool = 1 - g.tool
		g.say("tool: " + g.tool.String())
	case inpututil.IsKeyJustPressed(ebiten.KeyK):
		if ids := assets.StickerIDs(); len(ids) > 0 {
			g.sticker = (g.sticker + 1) % len(ids)
			g.say("sticker: " + ids[g.sticker])
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyBracketLeft):
		g.nudgeDuration(-1)
	case inpututil.IsKeyJustPressed(ebiten.KeyBracketRight):
		g.nudgeDuration(1)
	case inpututil.IsKeyJustPressed(ebiten.KeyDelete), inpututil.IsKeyJustPressed(ebiten.KeyBackspace):
		g.deleteSelection()
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape):
		g.selected = ""
	}
}

// handleTyping edits the selected text item.
func (g *Game) handleTyping() {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		g.selected = ""
		return
	}
	it, _ := g.session.Item(g.selected)
	content := it.Content
	if inpututil.IsKeyJustPressed(ebiten.KeyBackspace) && content != "" {
		_, size := utf8.DecodeLastRuneInString(content)
		content = content[:len(content)-size]
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyDelete) {
		g.deleteSelection()
		return
	}
	content += string(ebiten.AppendInputChars(nil))
	if content != it.Content {
		g.post(engine.SetItemContent(it.ID, content))
	}
}

func (g *Game) handleMouse() {
	mx, my := ebiten.CursorPosition()
	p := image.Pt(mx, my)
	overUI := g.toolbar != nil && p.In(g.toolbar.GetWidget().Rect)
	sections := g.session.Sections()
	track := render.NewTrack(g.width, g.height, g.session.TotalDuration())

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) && !overUI && g.building() {
		switch {
		case track.Contains(p):
			if i, ok := track.BoundaryAt(float64(mx), sections, edgeTolerance); ok {
				g.dragEdge = i
			} else if id, ok := track.ItemAt(p, g.session.Items()); ok {
				g.selected = id
			} else {
				g.post(engine.Seek(track.Time(float64(mx))))
			}
		default:
			if id, ok := g.itemAt(p); ok {
				g.selected = id
				g.dragItem = true
			} else {
				g.placeAt(p)
			}
		}
	}

	if g.dragEdge >= 0 && ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		t := track.Time(float64(mx))
		if g.dragEdge == len(sections)-1 {
			g.post(engine.ExtendLastEdge(t))
		} else {
			g.post(engine.ResizeBoundary(g.dragEdge, t))
		}
	}

	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		if g.dragItem {
			if it, ok := g.session.Item(g.selected); ok {
				g.post(engine.MoveItem(it.ID, it.Timestamp, g.normalize(p)))
			}
		}
		g.dragItem = false
		g.dragEdge = -1
	}
}

func (g *Game) normalize(p image.Point) overlay.Position {
	w, h := float64(g.width), g.stageHeight()
	if w <= 0 || h <= 0 {
		return overlay.Position{}
	}
	return overlay.Position{X: float64(p.X) / w, Y: float64(p.Y) / h}.Clamped()
}

// itemAt finds the topmost visible overlay under p.
func (g *Game) itemAt(p image.Point) (string, bool) {
	overlays := g.world.Snapshot().Overlays
	w, h := float64(g.width), g.stageHeight()
	for i := len(overlays) - 1; i >= 0; i-- {
		o := overlays[i]
		scale := o.Scale
		if scale <= 0 {
			scale = 1
		}
		if math.Hypot(o.X*w-float64(p.X), o.Y*h-float64(p.Y)) <= hitRadius*scale {
			return o.ID, true
		}
	}
	return "", false
}

func (g *Game) placeAt(p image.Point) {
	req := overlay.PlaceRequest{
		Timestamp: g.world.Clock().CurrentTime(),
		Position:  g.normalize(p),
	}
	switch g.tool {
	case toolText:
		req.Kind, req.Content = overlay.KindText, "text"
	default:
		ids := assets.StickerIDs()
		if len(ids) == 0 {
			return
		}
		req.Kind, req.Content = overlay.KindSticker, ids[g.sticker%len(ids)]
	}
	g.post(engine.PlaceItem(req))
}

func (g *Game) toggleMode() {
	next := overlay.ModePresentation
	if g.session.Mode() == overlay.ModePresentation {
		next = overlay.ModeBuild
	}
	g.selected = ""
	g.post(engine.SetMode(next))
}

func (g *Game) addSection() {
	scenes := g.catalog.SceneIDs()
	if len(scenes) == 0 {
		g.post(engine.AddSection(""))
		return
	}
	scene := scenes[g.scene%len(scenes)]
	g.scene++
	g.post(engine.AddSection(scene))
}

func (g *Game) nextPreset() {
	journeys := g.catalog.Journeys()
	if len(journeys) == 0 {
		return
	}
	j := journeys[g.preset%len(journeys)]
	g.preset++
	sections, err := g.catalog.Sections(j.ID, g.session.TotalDuration())
	if err != nil {
		g.say(err.Error())
		return
	}
	g.post(engine.ApplyPreset(sections))
	g.say("preset: " + j.Name)
}

func (g *Game) nudgeDuration(delta float64) {
	it, ok := g.session.Item(g.selected)
	if !ok {
		return
	}
	d := it.Duration
	if d <= 0 {
		d = it.End(g.session.TotalDuration()) - it.Timestamp
	}
	g.post(engine.ResizeItem(it.ID, math.Max(0, d+delta)))
}

func (g *Game) deleteSelection() {
	if g.selected != "" {
		g.post(engine.RemoveItem(g.selected))
		g.selected = ""
		return
	}
	if len(g.session.Sections()) > 0 && g.building() {
		g.post(engine.RemoveSection(g.world.Snapshot().CurrentSectionIndex))
	}
}

func (g *Game) save() {
	if g.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := g.store.Save(ctx, g.session.Document()); err != nil {
		log.Error().Str("component", "game").Err(err).Msg("save")
		g.say("save failed: " + err.Error())
		return
	}
	g.say("saved " + g.session.ID)
}

func (g *Game) copySelected() {
	it, ok := g.session.Item(g.selected)
	if !ok {
		return
	}
	if err := g.clip.Copy(it); err != nil {
		g.say(err.Error())
		return
	}
	g.say("copied")
}

func (g *Game) paste() {
	req, err := g.clip.Paste(g.world.Clock().CurrentTime())
	if err != nil {
		g.say(err.Error())
		return
	}
	g.post(engine.PlaceItem(req))
}
