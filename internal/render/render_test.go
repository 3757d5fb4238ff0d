package render

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-lifeweeks/internal/config"
	"github.com/tartampluch/go-lifeweeks/internal/engine"
	"github.com/tartampluch/go-lifeweeks/internal/theme"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

var today = time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)

func sheetFor(t *testing.T, dob string, horizon int, show bool) Sheet {
	t.Helper()
	calc := engine.NewCalculator(fixedClock{today})
	var birth time.Time
	if dob != "" {
		var err error
		birth, err = engine.ParseDate(dob)
		require.NoError(t, err)
	}
	return Sheet{
		Title:          "Life in Weeks",
		Birth:          birth,
		Horizon:        horizon,
		Metrics:        calc.Compute(birth, horizon, nil),
		Palette:        theme.Get("burkeman"),
		ShowMilestones: show,
	}
}

func textLines(t *testing.T, s Sheet) []string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Text(&buf, s))
	return strings.Split(strings.TrimRight(ansi.Strip(buf.String()), "\n"), "\n")
}

func TestSheet_Rows(t *testing.T) {
	assert.Equal(t, 0, Sheet{Horizon: 0}.Rows())
	assert.Equal(t, 1, Sheet{Horizon: 1}.Rows())
	assert.Equal(t, 58, Sheet{Horizon: 3000}.Rows())
	assert.Equal(t, 80, Sheet{Horizon: 4160}.Rows())
	assert.Equal(t, 100, Sheet{Horizon: 5200}.Rows())
}

func TestText_Grid(t *testing.T) {
	s := sheetFor(t, "2024-06-01", 3000, false)
	lines := textLines(t, s)

	require.Len(t, lines, 3+58)
	assert.Equal(t, "Life in Weeks", lines[0])
	assert.Contains(t, lines[1], "Weeks lived: 2")

	first := lines[3]
	assert.True(t, strings.HasPrefix(first, "  0 "+strings.Repeat(config.GlyphPast, 2)+config.GlyphPresent+config.GlyphFuture))
	assert.Equal(t, config.WeeksPerRow, len([]rune(strings.TrimPrefix(first, "  0 "))))

	last := lines[len(lines)-1]
	assert.Equal(t, 3000-57*config.WeeksPerRow, len([]rune(strings.TrimPrefix(last, " 57 "))))
}

func TestText_Milestones(t *testing.T) {
	s := sheetFor(t, "2024-06-01", 3000, true)
	lines := textLines(t, s)

	// Next birthday (2025-06-01) opens the second row.
	assert.True(t, strings.HasPrefix(lines[4], "  1 "+config.GlyphMilestone))

	joined := strings.Join(lines, "\n")
	assert.Contains(t, joined, config.NextBirthdayName+" (week 53, 2025-06-01)")
	assert.Contains(t, joined, "1000th Week (week 1000, ")

	hidden := strings.Join(textLines(t, sheetFor(t, "2024-06-01", 3000, false)), "\n")
	assert.NotContains(t, hidden, config.GlyphMilestone)
	assert.NotContains(t, hidden, config.NextBirthdayName)
}

func TestText_States(t *testing.T) {
	assert.Equal(t, config.TextNoDOB, textLines(t, sheetFor(t, "", 3000, true))[1])
	assert.Equal(t, config.TextFutureDOB, textLines(t, sheetFor(t, "2030-01-01", 3000, true))[1])

	beyond := textLines(t, sheetFor(t, "1900-01-01", 3000, false))
	assert.Contains(t, beyond[1], config.TextBeyond)
	assert.NotContains(t, strings.Join(beyond[3:], ""), config.GlyphFuture, "Every week is lived")
}

func TestPDF_Document(t *testing.T) {
	created := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	for _, dob := range []string{"", "1994-06-15", "1900-01-01"} {
		var buf bytes.Buffer
		err := PDF(&buf, sheetFor(t, dob, 5200, true), created)

		require.NoError(t, err, dob)
		assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")), dob)
		assert.Contains(t, buf.String(), "%%EOF", dob)
	}
}

func TestSheet_Cell(t *testing.T) {
	s := sheetFor(t, "2024-06-01", 3000, true)
	p := s.Palette

	assert.Equal(t, Cell{Glyph: config.GlyphPast, Fill: p.Past}, s.Cell(0))
	assert.Equal(t, Cell{Glyph: config.GlyphPresent, Fill: p.Present}, s.Cell(2))
	assert.Equal(t, Cell{Glyph: config.GlyphFuture, Fill: p.Future}, s.Cell(3))
	assert.Equal(t, Cell{Glyph: config.GlyphMilestone, Fill: p.Future, Dot: true}, s.Cell(52))

	s.ShowMilestones = false
	assert.Equal(t, Cell{Glyph: config.GlyphFuture, Fill: p.Future}, s.Cell(52))
	assert.Empty(t, s.Legend())
}
