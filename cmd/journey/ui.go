package main

import (
	"image/color"

	"github.com/ebitenui/ebitenui"
	imageui "github.com/ebitenui/ebitenui/image"
	"github.com/ebitenui/ebitenui/widget"
	ebtext "github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/basicfont"

	"github.com/milk9111/listeningjourney/engine"
)

// newToolbar builds the row of transport and editing buttons in the top
// right corner. The container is returned so clicks on it can be told apart
// from clicks on the stage.
func newToolbar(g *Game) (*ebitenui.UI, *widget.Container) {
	var face ebtext.Face = ebtext.NewGoXFace(basicfont.Face7x13)
	look := &widget.ButtonImage{
		Idle:    imageui.NewNineSliceColor(color.NRGBA{R: 0x2a, G: 0x2e, B: 0x3a, A: 0xff}),
		Hover:   imageui.NewNineSliceColor(color.NRGBA{R: 0x3a, G: 0x40, B: 0x52, A: 0xff}),
		Pressed: imageui.NewNineSliceColor(color.NRGBA{R: 0x50, G: 0x58, B: 0x70, A: 0xff}),
	}
	labels := &widget.ButtonTextColor{Idle: color.NRGBA{R: 0xee, G: 0xee, B: 0xf4, A: 0xff}}

	actions := []struct {
		label string
		run   func()
	}{
		{"Play/Pause", func() { g.post(engine.TogglePlay()) }},
		{"Rewind", func() { g.post(engine.Rewind()) }},
		{"Mode", g.toggleMode},
		{"+Section", g.addSection},
		{"Preset", g.nextPreset},
		{"Save", g.save},
	}

	bar := widget.NewContainer(
		widget.ContainerOpts.BackgroundImage(imageui.NewNineSliceColor(color.NRGBA{A: 160})),
		widget.ContainerOpts.Layout(widget.NewRowLayout(
			widget.RowLayoutOpts.Direction(widget.DirectionHorizontal),
			widget.RowLayoutOpts.Spacing(6),
			widget.RowLayoutOpts.Padding(&widget.Insets{Top: 6, Bottom: 6, Left: 6, Right: 6}),
		)),
		widget.ContainerOpts.WidgetOpts(
			widget.WidgetOpts.LayoutData(widget.AnchorLayoutData{HorizontalPosition: widget.AnchorLayoutPositionEnd, VerticalPosition: widget.AnchorLayoutPositionStart}),
		),
	)
	for _, a := range actions {
		run := a.run
		bar.AddChild(widget.NewButton(
			widget.ButtonOpts.Image(look),
			widget.ButtonOpts.Text(a.label, &face, labels),
			widget.ButtonOpts.WidgetOpts(widget.WidgetOpts.MinSize(80, 24)),
			widget.ButtonOpts.ClickedHandler(func(*widget.ButtonClickedEventArgs) { run() }),
		))
	}

	root := widget.NewContainer(
		widget.ContainerOpts.Layout(widget.NewAnchorLayout()),
	)
	root.AddChild(bar)

	return &ebitenui.UI{Container: root}, bar
}
