package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/tartampluch/go-lifeweeks/internal/config"
	"github.com/tartampluch/go-lifeweeks/internal/engine"
	"github.com/tartampluch/go-lifeweeks/internal/theme"
)

// Text writes the grid as one line of glyphs per year of age.
// Colors are only emitted when w is a color-capable terminal.
func Text(w io.Writer, s Sheet) error {
	r := lipgloss.NewRenderer(w)
	p := s.Palette

	title := r.NewStyle().Bold(true).Foreground(lipgloss.Color(theme.Hex(p.Accent)))
	muted := r.NewStyle().Foreground(lipgloss.Color(theme.Hex(p.Muted)))
	styles := map[string]lipgloss.Style{
		config.GlyphPast:      r.NewStyle().Foreground(lipgloss.Color(theme.Hex(p.Past))),
		config.GlyphPresent:   r.NewStyle().Foreground(lipgloss.Color(theme.Hex(p.Present))).Bold(true),
		config.GlyphFuture:    r.NewStyle().Foreground(lipgloss.Color(theme.Hex(p.Future))),
		config.GlyphMilestone: r.NewStyle().Foreground(lipgloss.Color(theme.Hex(p.Milestone))),
	}

	var b strings.Builder
	if s.Title != "" {
		b.WriteString(title.Render(s.Title))
		b.WriteString("\n")
	}
	b.WriteString(muted.Render(summary(s)))
	b.WriteString("\n\n")

	for row := 0; row < s.Rows(); row++ {
		b.WriteString(muted.Render(fmt.Sprintf(config.TextRowLabel, row)))
		for col := 0; col < config.WeeksPerRow; col++ {
			index := row*config.WeeksPerRow + col
			if index >= s.Horizon {
				break
			}
			c := s.Cell(index)
			b.WriteString(styles[c.Glyph].Render(c.Glyph))
		}
		b.WriteString("\n")
	}

	if legend := s.Legend(); len(legend) > 0 {
		b.WriteString("\n")
		dot := styles[config.GlyphMilestone].Render(config.GlyphMilestone)
		for _, rm := range legend {
			fmt.Fprintf(&b, config.TextLegendItem+"\n",
				dot, rm.Name, rm.Index+1, engine.FormatDate(engine.MilestoneDate(s.Birth, rm)))
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// summary is the one-line state of the grid, shared by the text and PDF output.
func summary(s Sheet) string {
	m := s.Metrics
	switch {
	case m.IsFutureDob:
		return config.TextFutureDOB
	case m.CurrentWeekIndex < 0:
		return config.TextNoDOB
	}
	line := fmt.Sprintf(config.TextSummary, m.WeeksLived, m.WeeksRemaining, m.PercentageComplete, m.DaysToNextBirthday)
	if m.IsBeyondExpectancy {
		line += " · " + config.TextBeyond
	}
	return line
}
