package ui

import (
	"image"
	"image/color"
	"image/draw"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	"github.com/tartampluch/go-lifeweeks/internal/config"
	"github.com/tartampluch/go-lifeweeks/internal/render"
)

// LifeGrid draws one square per week, 52 per row, and reports the week under
// the pointer.
type LifeGrid struct {
	widget.BaseWidget

	mu    sync.RWMutex
	sheet render.Sheet
	zoom  float64
	hover int

	// OnHover receives the hovered week-index, or -1 when the pointer leaves.
	OnHover func(index int)
	// OnTapped receives the tapped week-index.
	OnTapped func(index int)

	raster *canvas.Raster
}

// NewLifeGrid creates an empty grid.
func NewLifeGrid() *LifeGrid {
	g := &LifeGrid{zoom: config.DefaultZoom, hover: -1}
	g.raster = canvas.NewRaster(g.draw)
	g.ExtendBaseWidget(g)
	return g
}

// CreateRenderer implements fyne.Widget.
func (g *LifeGrid) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(g.raster)
}

// SetSheet replaces what the grid shows and resizes it for zoom.
func (g *LifeGrid) SetSheet(s render.Sheet, zoom float64) {
	g.mu.Lock()
	g.sheet = s
	g.zoom = zoom
	size := g.sizeLocked()
	g.mu.Unlock()

	g.raster.SetMinSize(size)
	g.Refresh()
}

// Sheet returns the sheet currently drawn.
func (g *LifeGrid) Sheet() render.Sheet {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.sheet
}

func (g *LifeGrid) pitchLocked() float32 {
	return float32(float64(config.CellSize+config.CellGap) * g.zoom)
}

func (g *LifeGrid) sizeLocked() fyne.Size {
	p := g.pitchLocked()
	return fyne.NewSize(p*config.WeeksPerRow, p*float32(g.sheet.Rows()))
}

// IndexAt maps a position inside the widget to a week-index, or -1 outside the horizon.
func (g *LifeGrid) IndexAt(pos fyne.Position) int {
	g.mu.RLock()
	defer g.mu.RUnlock()

	p := g.pitchLocked()
	if p <= 0 || pos.X < 0 || pos.Y < 0 {
		return -1
	}
	col, row := int(pos.X/p), int(pos.Y/p)
	if col >= config.WeeksPerRow {
		return -1
	}
	index := row*config.WeeksPerRow + col
	if index >= g.sheet.Horizon {
		return -1
	}
	return index
}

// Tapped implements fyne.Tappable.
func (g *LifeGrid) Tapped(ev *fyne.PointEvent) {
	if index := g.IndexAt(ev.Position); index >= 0 && g.OnTapped != nil {
		g.OnTapped(index)
	}
}

// MouseIn implements desktop.Hoverable.
func (g *LifeGrid) MouseIn(ev *desktop.MouseEvent) {
	g.MouseMoved(ev)
}

// MouseMoved implements desktop.Hoverable.
func (g *LifeGrid) MouseMoved(ev *desktop.MouseEvent) {
	g.setHover(g.IndexAt(ev.Position))
}

// MouseOut implements desktop.Hoverable.
func (g *LifeGrid) MouseOut() {
	g.setHover(-1)
}

func (g *LifeGrid) setHover(index int) {
	g.mu.Lock()
	changed := g.hover != index
	g.hover = index
	g.mu.Unlock()

	if changed && g.OnHover != nil {
		g.OnHover(index)
	}
}

// draw paints the cells into a w*h pixel image. The pitch is derived from the
// pixel width so the grid stays sharp on scaled displays.
func (g *LifeGrid) draw(w, h int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))

	g.mu.RLock()
	s := g.sheet
	g.mu.RUnlock()

	draw.Draw(img, img.Bounds(), &image.Uniform{C: s.Palette.Card}, image.Point{}, draw.Src)

	rows := s.Rows()
	if rows == 0 || w == 0 {
		return img
	}

	pitch := float64(w) / config.WeeksPerRow
	edge := pitch * float64(config.CellSize) / float64(config.CellSize+config.CellGap)
	dot := edge * config.MilestoneDotShare

	for index := 0; index < s.Horizon; index++ {
		x := float64(index%config.WeeksPerRow) * pitch
		y := float64(index/config.WeeksPerRow) * pitch
		c := s.Cell(index)

		fillRect(img, x, y, edge, c.Fill)
		if c.Dot {
			inset := (edge - dot) / 2
			fillRect(img, x+inset, y+inset, dot, s.Palette.Milestone)
		}
	}
	return img
}

func fillRect(img draw.Image, x, y, edge float64, c color.Color) {
	r := image.Rect(int(x), int(y), int(x+edge+0.5), int(y+edge+0.5))
	draw.Draw(img, r, &image.Uniform{C: c}, image.Point{}, draw.Src)
}
