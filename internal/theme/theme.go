// Package theme holds the color palettes of the life grid.
package theme

import (
	"image/color"
	"log/slog"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/tartampluch/go-lifeweeks/internal/config"
)

// Palette is a resolved set of colors. Colors are parsed once at init.
type Palette struct {
	Name  string
	Label string
	Dark  bool

	Page        color.NRGBA
	Card        color.NRGBA
	Text        color.NRGBA
	Muted       color.NRGBA
	Past        color.NRGBA
	Present     color.NRGBA
	Future      color.NRGBA
	Accent      color.NRGBA
	AccentHover color.NRGBA
	Milestone   color.NRGBA
	Border      color.NRGBA
}

type paletteDef struct {
	name, label string
	dark        bool
	// page, card, text, muted, past, present, future, accent, accent hover, milestone, border
	hex [11]string
}

var paletteDefs = []paletteDef{
	{
		name:  "classic",
		label: "Classic",
		hex: [11]string{
			"#f8fafc", "#ffffff", "#1e293b", "#64748b", "#334155", "#ef4444",
			"#e2e8f0", "#0f172a", "#334155", "#f59e0b", "#cbd5e1",
		},
	},
	{
		name:  "burkeman",
		label: "Four Thousand Weeks",
		hex: [11]string{
			"#f0f9ff", "#ffffff", "#0c4a6e", "#0369a1", "#0ea5e9", "#facc15",
			"#e0f2fe", "#0284c7", "#0369a1", "#1e293b", "#bae6fd",
		},
	},
	{
		name:  "midnight",
		label: "Midnight",
		dark:  true,
		hex: [11]string{
			"#0f172a", "#1e293b", "#f1f5f9", "#94a3b8", "#6366f1", "#f472b6",
			"#334155", "#818cf8", "#6366f1", "#fbbf24", "#475569",
		},
	},
}

var (
	palettes = map[string]Palette{}
	names    []string
)

func init() {
	for _, s := range paletteDefs {
		var c [11]color.NRGBA
		for i, h := range s.hex {
			c[i] = mustHex(h)
		}
		palettes[s.name] = Palette{
			Name: s.name, Label: s.label, Dark: s.dark,
			Page: c[0], Card: c[1], Text: c[2], Muted: c[3],
			Past: c[4], Present: c[5], Future: c[6],
			Accent: c[7], AccentHover: c[8], Milestone: c[9], Border: c[10],
		}
		names = append(names, s.name)
	}
}

func mustHex(h string) color.NRGBA {
	c, err := colorful.Hex(h)
	if err != nil {
		panic(err)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 0xff}
}

// Names lists the available palettes in display order.
func Names() []string {
	return append([]string(nil), names...)
}

// Lookup returns the palette registered under name.
func Lookup(name string) (Palette, bool) {
	p, ok := palettes[name]
	return p, ok
}

// Get returns the palette registered under name, or the default palette.
func Get(name string) Palette {
	if p, ok := palettes[name]; ok {
		return p
	}
	slog.Debug("Unknown theme, using default",
		config.LogKeyComponent, config.CompRender,
		config.LogKeyName, name,
	)
	return palettes[config.DefaultTheme]
}

// Hex formats c as #rrggbb.
func Hex(c color.Color) string {
	cf, _ := colorful.MakeColor(c)
	return cf.Hex()
}

// Labels maps each palette name to its display label.
func Labels() map[string]string {
	out := make(map[string]string, len(palettes))
	for name, p := range palettes {
		out[name] = p.Label
	}
	return out
}
