package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	fynetheme "fyne.io/fyne/v2/theme"
	"github.com/tartampluch/go-lifeweeks/internal/theme"
)

const hoverAlpha = 0x40

// paletteTheme paints the Fyne widgets with a grid palette.
type paletteTheme struct {
	palette theme.Palette
}

var _ fyne.Theme = (*paletteTheme)(nil)

func newPaletteTheme(p theme.Palette) *paletteTheme {
	return &paletteTheme{palette: p}
}

func (t *paletteTheme) Color(name fyne.ThemeColorName, _ fyne.ThemeVariant) color.Color {
	p := t.palette
	switch name {
	case fynetheme.ColorNameBackground:
		return p.Page
	case fynetheme.ColorNameForeground:
		return p.Text
	case fynetheme.ColorNamePrimary, fynetheme.ColorNameFocus:
		return p.Accent
	case fynetheme.ColorNameHover, fynetheme.ColorNameSelection:
		c := p.AccentHover
		c.A = hoverAlpha
		return c
	case fynetheme.ColorNameButton, fynetheme.ColorNameInputBackground,
		fynetheme.ColorNameMenuBackground, fynetheme.ColorNameOverlayBackground,
		fynetheme.ColorNameHeaderBackground:
		return p.Card
	case fynetheme.ColorNamePlaceHolder, fynetheme.ColorNameDisabled:
		return p.Muted
	case fynetheme.ColorNameSeparator, fynetheme.ColorNameInputBorder:
		return p.Border
	}
	return fynetheme.DefaultTheme().Color(name, t.variant())
}

func (t *paletteTheme) variant() fyne.ThemeVariant {
	if t.palette.Dark {
		return fynetheme.VariantDark
	}
	return fynetheme.VariantLight
}

func (t *paletteTheme) Font(style fyne.TextStyle) fyne.Resource {
	return fynetheme.DefaultTheme().Font(style)
}

func (t *paletteTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return fynetheme.DefaultTheme().Icon(name)
}

func (t *paletteTheme) Size(name fyne.ThemeSizeName) float32 {
	return fynetheme.DefaultTheme().Size(name)
}
