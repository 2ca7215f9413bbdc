// overlay opens a procedurally generated sprite sheet in a loom document
// and draws the resolved trim boxes, pivot crosses, and empty-frame
// markers on top of it. Click a frame to override its pivot, then undo
// and redo the edits from the keyboard.
//
// Controls:
//
//	left click   set a pivot override at the cursor
//	right click  clear the pivot override under the cursor
//	tab          cycle the pivot strategy
//	b            bake the current analysis of every frame into overrides
//	z / y        undo / redo
//	+ / -        zoom (eased)
package main

import (
	"fmt"
	"image"
	"image/color"
	"log"
	"math"
	"math/rand/v2"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/phanxgames/loom"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

const (
	screenW = 960
	screenH = 640

	tileSize  = 32
	sheetCols = 8
	sheetRows = 6
)

var (
	trimColor  = color.RGBA{R: 0x00, G: 0xd8, B: 0xff, A: 0xff}
	pivotColor = color.RGBA{R: 0xff, G: 0x5c, B: 0xb8, A: 0xff}
	emptyColor = color.RGBA{R: 0x60, G: 0x60, B: 0x60, A: 0xff}
	gridColor  = color.RGBA{R: 0x30, G: 0x30, B: 0x40, A: 0xff}
)

type game struct {
	doc     *loom.Document
	sheetID string
	grid    loom.SheetGrid
	sheet   *ebiten.Image
	sheetW  int
	sheetH  int

	strategy loom.PivotStrategy

	zoom     float64
	zoomTo   float64
	zoomAnim *gween.Tween
}

func main() {
	src := makeSheet()
	bounds := src.Bounds()

	doc := loom.NewDocument()
	sheetID := loom.NewSheetID()
	doc.Cache.EnsurePixels(sheetID, src)

	g := &game{
		doc:     doc,
		sheetID: sheetID,
		grid:    loom.SheetGrid{TileWidth: tileSize, TileHeight: tileSize},
		sheet:   ebiten.NewImageFromImage(src),
		sheetW:  bounds.Dx(),
		sheetH:  bounds.Dy(),
		zoom:    3,
		zoomTo:  3,
	}

	for _, w := range g.grid.Validate(g.sheetW, g.sheetH) {
		log.Printf("grid warning: %s", w)
	}

	ebiten.SetWindowSize(screenW, screenH)
	ebiten.SetWindowTitle("Loom — Analysis Overlay")
	if err := ebiten.RunGame(g); err != nil {
		log.Fatal(err)
	}
}

// makeSheet draws a sheet of random blobs with a sprinkling of fully
// transparent frames, so every overlay state shows up somewhere.
func makeSheet() *image.RGBA {
	w, h := sheetCols*tileSize, sheetRows*tileSize
	img := image.NewRGBA(image.Rect(0, 0, w, h))

	for row := 0; row < sheetRows; row++ {
		for col := 0; col < sheetCols; col++ {
			if rand.IntN(6) == 0 {
				continue // leave this frame empty
			}
			cx := float64(col*tileSize) + tileSize/2 + (rand.Float64()-0.5)*8
			cy := float64(row*tileSize) + tileSize/2 + (rand.Float64()-0.5)*8
			r := 4 + rand.Float64()*9
			tint := color.RGBA{
				R: uint8(120 + rand.IntN(120)),
				G: uint8(120 + rand.IntN(120)),
				B: uint8(120 + rand.IntN(120)),
				A: 0xff,
			}
			x0, y0 := col*tileSize, row*tileSize
			for y := y0; y < y0+tileSize; y++ {
				for x := x0; x < x0+tileSize; x++ {
					dx, dy := float64(x)+0.5-cx, float64(y)+0.5-cy
					if math.Hypot(dx, dy) <= r {
						img.SetRGBA(x, y, tint)
					}
				}
			}
		}
	}
	return img
}

func (g *game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		g.strategy = (g.strategy + 1) % 4
		g.doc.Cache.InvalidatePivots(g.sheetID)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyZ) {
		g.doc.History.Undo()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyY) {
		g.doc.History.Redo()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyB) {
		frames := make([]int, g.grid.FrameCount(g.sheetW, g.sheetH))
		for i := range frames {
			frames[i] = i
		}
		g.doc.History.Push(g.doc.BakeAnalysisCommand(g.sheetID, frames, g.frameRect, g.strategy))
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEqual) || inpututil.IsKeyJustPressed(ebiten.KeyKPAdd) {
		g.retarget(g.zoomTo * 1.5)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyMinus) || inpututil.IsKeyJustPressed(ebiten.KeyKPSubtract) {
		g.retarget(g.zoomTo / 1.5)
	}
	if g.zoomAnim != nil {
		v, done := g.zoomAnim.Update(1.0 / 60.0)
		g.zoom = float64(v)
		if done {
			g.zoomAnim = nil
		}
	}

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		if frame, p, ok := g.pick(); ok {
			g.doc.History.Push(g.doc.SetPivotCommand(g.sheetID, frame, p))
		}
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight) {
		if frame, _, ok := g.pick(); ok {
			g.doc.History.Push(g.doc.ClearPivotCommand(g.sheetID, frame))
		}
	}
	return nil
}

// retarget starts an eased zoom toward the new level, keeping the
// current in-flight value as the starting point.
func (g *game) retarget(to float64) {
	to = min(max(to, 0.5), 16)
	g.zoomTo = to
	g.zoomAnim = gween.New(float32(g.zoom), float32(to), 0.25, ease.OutQuad)
}

func (g *game) frameRect(index int) loom.Rect {
	return g.grid.FrameRect(index, g.sheetW)
}

// pick maps the cursor to a frame index and a sheet-space pixel.
func (g *game) pick() (frame int, p loom.Point, ok bool) {
	mx, my := ebiten.CursorPosition()
	ox, oy := g.origin()
	sx := int(math.Floor((float64(mx) - ox) / g.zoom))
	sy := int(math.Floor((float64(my) - oy) / g.zoom))
	if sx < 0 || sy < 0 || sx >= g.sheetW || sy >= g.sheetH {
		return 0, loom.Point{}, false
	}
	col, row := sx/tileSize, sy/tileSize
	return row*sheetCols + col, loom.Point{X: sx, Y: sy}, true
}

// origin returns the screen position of the sheet's top-left corner.
func (g *game) origin() (float64, float64) {
	return (screenW - float64(g.sheetW)*g.zoom) / 2, (screenH - float64(g.sheetH)*g.zoom) / 2
}

func (g *game) Draw(screen *ebiten.Image) {
	ox, oy := g.origin()

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(g.zoom, g.zoom)
	op.GeoM.Translate(ox, oy)
	screen.DrawImage(g.sheet, op)

	toScreen := func(x, y int) (float32, float32) {
		return float32(ox + float64(x)*g.zoom), float32(oy + float64(y)*g.zoom)
	}

	total := g.grid.FrameCount(g.sheetW, g.sheetH)
	for i := 0; i < total; i++ {
		fr := g.frameRect(i)
		x0, y0 := toScreen(fr.X, fr.Y)
		x1, y1 := toScreen(fr.X+fr.W, fr.Y+fr.H)
		vector.StrokeRect(screen, x0, y0, x1-x0, y1-y0, 1, gridColor, false)

		res := g.doc.Resolve(g.sheetID, i, fr, g.strategy)

		if res.TrimSource == loom.SourceFallback {
			// No opaque pixels and no override: mark the frame empty.
			cx, cy := toScreen(fr.X+fr.W/2, fr.Y+fr.H/2)
			vector.StrokeLine(screen, cx-4, cy, cx+4, cy, 1, emptyColor, false)
			vector.StrokeLine(screen, cx, cy-4, cx, cy+4, 1, emptyColor, false)
		} else {
			tx0, ty0 := toScreen(res.Trim.X, res.Trim.Y)
			tx1, ty1 := toScreen(res.Trim.X+res.Trim.W, res.Trim.Y+res.Trim.H)
			vector.StrokeRect(screen, tx0, ty0, tx1-tx0, ty1-ty0, 1, trimColor, false)
		}

		px, py := toScreen(res.Pivot.X, res.Pivot.Y)
		vector.StrokeLine(screen, px-5, py, px+5, py, 1, pivotColor, false)
		vector.StrokeLine(screen, px, py-5, px, py+5, 1, pivotColor, false)
	}

	st := g.doc.Cache.Stats()
	ov := g.doc.Overrides.Stats(g.sheetID)
	msg := fmt.Sprintf(
		"strategy: %s   zoom: %.1fx\ncached frames: %d   overrides: %d\nundo: %s   redo: %s",
		g.strategy, g.zoom, st.CachedFrames, ov.Entries,
		labelOr(g.doc.History.UndoLabel()), labelOr(g.doc.History.RedoLabel()),
	)
	ebitenutil.DebugPrintAt(screen, msg, 8, 8)
}

func labelOr(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenW, screenH
}
