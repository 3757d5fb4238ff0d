// Package render draws a life grid outside of the desktop window: as colored
// text for terminals and as a printable PDF.
package render

import (
	"image/color"
	"time"

	"github.com/tartampluch/go-lifeweeks/internal/config"
	"github.com/tartampluch/go-lifeweeks/internal/engine"
	"github.com/tartampluch/go-lifeweeks/internal/theme"
)

// Sheet is everything needed to draw one grid.
type Sheet struct {
	Title          string
	Birth          time.Time
	Horizon        int
	Metrics        engine.Metrics
	Palette        theme.Palette
	ShowMilestones bool
}

// Rows is the number of 52-week rows needed for the horizon.
func (s Sheet) Rows() int {
	if s.Horizon <= 0 {
		return 0
	}
	return (s.Horizon + config.WeeksPerRow - 1) / config.WeeksPerRow
}

// Cell is the resolved look of one week.
type Cell struct {
	Glyph string
	Fill  color.NRGBA
	// Dot marks a visible milestone.
	Dot bool
}

// Cell resolves the week at index. The present week keeps its own color even
// when a milestone falls on it.
func (s Sheet) Cell(index int) Cell {
	_, milestone := s.Metrics.Milestones[index]
	dot := s.ShowMilestones && milestone

	switch s.Metrics.CellStatus(index) {
	case engine.CellPresent:
		return Cell{Glyph: config.GlyphPresent, Fill: s.Palette.Present, Dot: dot}
	case engine.CellPast:
		if dot {
			return Cell{Glyph: config.GlyphMilestone, Fill: s.Palette.Past, Dot: true}
		}
		return Cell{Glyph: config.GlyphPast, Fill: s.Palette.Past}
	default:
		if dot {
			return Cell{Glyph: config.GlyphMilestone, Fill: s.Palette.Future, Dot: true}
		}
		return Cell{Glyph: config.GlyphFuture, Fill: s.Palette.Future}
	}
}

// Legend returns the milestones to list under the grid.
func (s Sheet) Legend() []engine.ResolvedMilestone {
	if !s.ShowMilestones {
		return nil
	}
	return s.Metrics.Legend()
}
