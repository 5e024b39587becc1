// Package render draws a journey frame with ebiten: parallax scenery, the
// traveller sprite, overlays and, in build mode, the timeline track.
package render

import (
	"fmt"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/colornames"
	"golang.org/x/image/font/basicfont"

	"github.com/milk9111/listeningjourney/assets"
	"github.com/milk9111/listeningjourney/common"
	"github.com/milk9111/listeningjourney/decor"
	"github.com/milk9111/listeningjourney/engine"
	"github.com/milk9111/listeningjourney/overlay"
	"github.com/milk9111/listeningjourney/presets"
	"github.com/milk9111/listeningjourney/timeline"
)

const (
	groundFraction = 0.22
	columnStep     = 4
	spriteX        = 0.25
)

var (
	hudColor      = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	shadowColor   = color.RGBA{A: 0xa0}
	trackBg       = color.RGBA{R: 0x16, G: 0x18, B: 0x20, A: 0xf0}
	playheadColor = color.RGBA{R: 0xff, G: 0x4d, B: 0x4d, A: 0xff}
)

// View is what one call to Draw needs. The frame comes from the engine, the
// sections and items from the session it runs.
type View struct {
	Frame     engine.FrameState
	Sections  []timeline.Section
	Items     []overlay.Item
	Selected  string
	ShowTrack bool
}

type Renderer struct {
	catalog *presets.Catalog
	face    text.Face
	tufts   []decor.Tuft
	stars   []decor.Star
}

func New(catalog *presets.Catalog) *Renderer {
	return &Renderer{
		catalog: catalog,
		face:    text.NewGoXFace(basicfont.Face7x13),
		tufts:   decor.Tufts(decor.TuftSeed, decor.DefaultTufts),
		stars:   decor.Stars(decor.StarSeed, decor.DefaultStars),
	}
}

// StageHeight is the part of a screen of height h above the track.
func StageHeight(h int, showTrack bool) float64 {
	if showTrack {
		return float64(h - TrackHeight)
	}
	return float64(h)
}

func (r *Renderer) Draw(screen *ebiten.Image, v View) {
	w := float64(screen.Bounds().Dx())
	stageH := StageHeight(screen.Bounds().Dy(), v.ShowTrack)
	groundY := stageH * (1 - groundFraction)

	var sec timeline.Section
	if v.Frame.Section != nil {
		sec = *v.Frame.Section
	}
	scene, _ := r.scene(sec.Scene)
	night := sec.NightMode || sec.Sky == "night"

	sky := hexOr(scene.Sky, colornames.Skyblue)
	if night {
		sky = hexOr(scene.NightSky, colornames.Midnightblue)
	}
	vector.FillRect(screen, 0, 0, float32(w), float32(stageH), sky, false)
	if night {
		r.drawStars(screen, w, groundY)
	}

	offset := v.Frame.ScrollOffset
	for _, layer := range scene.Layers {
		r.drawLayer(screen, layer, offset, w, groundY, stageH)
	}

	ground := hexOr(scene.GroundColor, colornames.Olivedrab)
	vector.FillRect(screen, 0, float32(groundY), float32(w), float32(stageH-groundY), ground, false)
	r.drawTufts(screen, ground, offset, w, groundY)
	r.drawWeather(screen, sec.Weather, v.Frame.CurrentTime, w, groundY)

	r.drawSprite(screen, v.Frame.Sprite, w*spriteX, groundY)
	r.drawOverlays(screen, v, w, stageH)

	if v.ShowTrack {
		r.drawTrack(screen, v)
	}
	r.drawHUD(screen, v.Frame)
}

func (r *Renderer) scene(id string) (presets.SceneSpec, bool) {
	if r.catalog == nil {
		return presets.SceneSpec{}, false
	}
	return r.catalog.Scene(id)
}

func (r *Renderer) drawLayer(screen *ebiten.Image, layer presets.LayerSpec, offset, w, groundY, stageH float64) {
	c := hexOr(layer.Color, colornames.Gray)
	maxH := layer.Height * stageH
	for _, tile := range decor.TileOffsets(offset, layer.Speed) {
		x0 := tile * w
		if x0 >= w || x0+w <= 0 {
			continue
		}
		for px := 0.0; px < w; px += columnStep {
			x := x0 + px
			if x+columnStep < 0 || x > w {
				continue
			}
			h := Silhouette(layer.Shape, px/w) * maxH
			vector.FillRect(screen, float32(x), float32(groundY-h), columnStep+1, float32(h), c, false)
		}
	}
}

func (r *Renderer) drawStars(screen *ebiten.Image, w, groundY float64) {
	for _, s := range r.stars {
		c := withAlpha(colornames.White, s.Brightness)
		vector.FillCircle(screen, float32(s.X*w), float32(s.Y*groundY), float32(s.Size), c, true)
	}
}

func (r *Renderer) drawTufts(screen *ebiten.Image, ground color.RGBA, offset, w, groundY float64) {
	c := color.RGBA{R: ground.R / 2, G: ground.G * 3 / 4, B: ground.B / 2, A: 0xff}
	maxH := 18.0
	for _, tile := range decor.TileOffsets(offset, 1) {
		for _, t := range r.tufts {
			x := (tile + t.X) * w
			if x < -10 || x > w+10 {
				continue
			}
			h := t.Height * maxH
			for b := 0; b < t.Blades; b++ {
				lean := float64(b) - float64(t.Blades-1)/2
				vector.StrokeLine(screen, float32(x+lean*2), float32(groundY), float32(x+lean*4), float32(groundY-h), 1.5, c, true)
			}
		}
	}
}

// drawWeather reuses the star field as particle seeds so rain and snow fall
// the same way on every run.
func (r *Renderer) drawWeather(screen *ebiten.Image, weather string, t, w, groundY float64) {
	var speed, length float64
	switch weather {
	case "rain", "storm":
		speed, length = 1.4, 10
	case "snow":
		speed, length = 0.15, 0
	default:
		return
	}
	for i, s := range r.stars {
		x := common.Fract(s.X+float64(i%7)*0.013) * w
		y := common.Fract(s.Y+t*speed*s.Brightness) * groundY
		if length > 0 {
			vector.StrokeLine(screen, float32(x), float32(y), float32(x-2), float32(y+length), 1, colornames.Lightsteelblue, true)
		} else {
			vector.FillCircle(screen, float32(x+math.Sin(t+float64(i))*3), float32(y), float32(s.Size), colornames.White, true)
		}
	}
}

func (r *Renderer) drawSprite(screen *ebiten.Image, sp timeline.Sprite, x, groundY float64) {
	scale := sp.Scale
	if scale <= 0 {
		scale = 1
	}
	swing := math.Sin(2 * math.Pi * sp.Phase)
	lift := 0.0
	switch sp.Movement {
	case timeline.MovementFly, timeline.MovementGlide:
		lift = 40 + 6*swing
	case timeline.MovementSwim:
		lift = 8 + 3*swing
	case timeline.MovementSkip, timeline.MovementRun:
		lift = 4 * math.Abs(swing)
	}

	body := 12 * scale
	hipY := groundY - 14*scale - lift
	bodyY := hipY - body
	legColor := colornames.Saddlebrown

	if lift < 20 {
		vector.StrokeLine(screen, float32(x), float32(hipY), float32(x+swing*7*scale), float32(groundY-lift), 3, legColor, true)
		vector.StrokeLine(screen, float32(x), float32(hipY), float32(x-swing*7*scale), float32(groundY-lift), 3, legColor, true)
	} else {
		vector.StrokeLine(screen, float32(x-body*1.6), float32(bodyY-swing*8), float32(x), float32(bodyY), 3, colornames.White, true)
		vector.StrokeLine(screen, float32(x+body*1.6), float32(bodyY-swing*8), float32(x), float32(bodyY), 3, colornames.White, true)
	}
	vector.FillCircle(screen, float32(x), float32(bodyY), float32(body), colornames.Coral, true)
	vector.FillCircle(screen, float32(x+body*0.6), float32(bodyY-body*1.1), float32(body*0.55), colornames.Peachpuff, true)
}

func (r *Renderer) drawOverlays(screen *ebiten.Image, v View, w, stageH float64) {
	for _, p := range v.Frame.Overlays {
		x, y := p.X*w, p.Y*stageH
		scale := p.Scale
		if scale <= 0 {
			scale = 1
		}
		var bw, bh float64
		switch p.Kind {
		case overlay.KindSticker:
			bw, bh = r.drawSticker(screen, p.Content, x, y, scale)
		case overlay.KindText:
			bw, bh = r.drawText(screen, p.Content, x, y, scale)
		}
		if p.ID == v.Selected && v.Selected != "" {
			vector.StrokeRect(screen, float32(x-bw/2-3), float32(y-bh/2-3), float32(bw+6), float32(bh+6), 1, colornames.Yellow, false)
		}
	}
}

func (r *Renderer) drawSticker(screen *ebiten.Image, id string, x, y, scale float64) (float64, float64) {
	img, err := assets.Sticker(id)
	if err != nil {
		rad := 14 * scale
		vector.FillCircle(screen, float32(x), float32(y), float32(rad), colornames.Gold, true)
		return 2 * rad, 2 * rad
	}
	b := img.Bounds()
	s := 1.5 * scale
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(-float64(b.Dx())/2, -float64(b.Dy())/2)
	op.GeoM.Scale(s, s)
	op.GeoM.Translate(x, y)
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(img, op)
	return float64(b.Dx()) * s, float64(b.Dy()) * s
}

func (r *Renderer) drawText(screen *ebiten.Image, s string, x, y, scale float64) (float64, float64) {
	tw, th := text.Measure(s, r.face, 0)
	tw, th = tw*scale*1.5, th*scale*1.5
	for _, d := range [][2]float64{{1, 1}, {0, 0}} {
		op := &text.DrawOptions{}
		op.GeoM.Scale(scale*1.5, scale*1.5)
		op.GeoM.Translate(x-tw/2+d[0], y-th/2+d[1])
		if d[0] != 0 {
			op.ColorScale.ScaleWithColor(shadowColor)
		} else {
			op.ColorScale.ScaleWithColor(hudColor)
		}
		text.Draw(screen, s, r.face, op)
	}
	return tw, th
}

func (r *Renderer) drawTrack(screen *ebiten.Image, v View) {
	b := screen.Bounds()
	tr := NewTrack(b.Dx(), b.Dy(), v.Frame.TotalDuration)
	vector.FillRect(screen, 0, float32(tr.Bounds.Min.Y), float32(b.Dx()), TrackHeight, trackBg, false)

	top := float32(tr.Bounds.Min.Y + 4)
	for _, s := range v.Sections {
		span := tr.Section(s)
		c := hexOr(s.Color, colornames.Slategray)
		vector.FillRect(screen, float32(span.X0), top, float32(span.X1-span.X0), sectionStrip-4, c, false)
		vector.StrokeLine(screen, float32(span.X1), top, float32(span.X1), top+sectionStrip-4, 2, colornames.White, false)
		label := s.Label
		if s.Scene != "" {
			label += " " + s.Scene
		}
		op := &text.DrawOptions{}
		op.GeoM.Translate(span.X0+4, float64(top)+6)
		op.ColorScale.ScaleWithColor(colornames.Black)
		text.Draw(screen, label, r.face, op)
	}

	for _, l := range overlay.AssignLanes(v.Items, v.Frame.TotalDuration) {
		x0, x1 := tr.X(l.Start), tr.X(l.End)
		if x1-x0 < 4 {
			x1 = x0 + 4
		}
		c := colornames.Lightskyblue
		if l.ItemID == v.Selected {
			c = colornames.Yellow
		}
		vector.FillRect(screen, float32(x0), float32(tr.LaneY(l.Lane)), float32(x1-x0), laneHeight-2, c, false)
	}

	px := float32(tr.X(v.Frame.CurrentTime))
	vector.StrokeLine(screen, px, float32(tr.Bounds.Min.Y), px, float32(tr.Bounds.Max.Y), 2, playheadColor, false)
}

func (r *Renderer) drawHUD(screen *ebiten.Image, f engine.FrameState) {
	line := fmt.Sprintf("%s / %s  %s  %s", Clock(f.CurrentTime), Clock(f.TotalDuration), f.Status, f.Mode)
	if f.Error != "" {
		line += "  " + f.Error
	}
	op := &text.DrawOptions{}
	op.GeoM.Translate(10, 8)
	op.ColorScale.ScaleWithColor(hudColor)
	text.Draw(screen, line, r.face, op)
}

// Clock formats seconds as m:ss.
func Clock(sec float64) string {
	if sec < 0 || math.IsNaN(sec) {
		sec = 0
	}
	s := int(sec)
	return fmt.Sprintf("%d:%02d", s/60, s%60)
}

// Caption draws a short message centred under the HUD line.
func (r *Renderer) Caption(screen *ebiten.Image, msg string) {
	w, _ := text.Measure(msg, r.face, 0)
	x := (float64(screen.Bounds().Dx()) - w) / 2
	vector.FillRect(screen, float32(x-6), 26, float32(w+12), 20, shadowColor, false)
	op := &text.DrawOptions{}
	op.GeoM.Translate(x, 30)
	op.ColorScale.ScaleWithColor(hudColor)
	text.Draw(screen, msg, r.face, op)
}
