package audit

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/raysh454/miru/internal/snapshot"
)

// color is a parsed CSS color. Channels are 0..255, alpha 0..1.
type color struct {
	r, g, b float64
	a       float64
}

var (
	white = color{255, 255, 255, 1}
	black = color{0, 0, 0, 1}
)

func (c color) String() string {
	return fmt.Sprintf("rgb(%d, %d, %d)", int(math.Round(c.r)), int(math.Round(c.g)), int(math.Round(c.b)))
}

// namedColors is the small keyword set the engine understands. Computed
// styles normally arrive as rgb()/rgba(), so this only matters for inline
// styles in static snapshots.
var namedColors = map[string]color{
	"black":       {0, 0, 0, 1},
	"white":       {255, 255, 255, 1},
	"red":         {255, 0, 0, 1},
	"green":       {0, 128, 0, 1},
	"blue":        {0, 0, 255, 1},
	"yellow":      {255, 255, 0, 1},
	"orange":      {255, 165, 0, 1},
	"purple":      {128, 0, 128, 1},
	"gray":        {128, 128, 128, 1},
	"grey":        {128, 128, 128, 1},
	"silver":      {192, 192, 192, 1},
	"brown":       {165, 42, 42, 1},
	"pink":        {255, 192, 203, 1},
	"cyan":        {0, 255, 255, 1},
	"aqua":        {0, 255, 255, 1},
	"magenta":     {255, 0, 255, 1},
	"fuchsia":     {255, 0, 255, 1},
	"teal":        {0, 128, 128, 1},
	"navy":        {0, 0, 128, 1},
	"maroon":      {128, 0, 0, 1},
	"olive":       {128, 128, 0, 1},
	"lime":        {0, 255, 0, 1},
	"transparent": {0, 0, 0, 0},
}

// parseColor understands rgb()/rgba() (comma and slash separated), hex
// (#rgb, #rrggbb, longer forms with the alpha nibbles ignored) and the named
// set. Alpha is only read from rgb()/rgba() functions; every other parseable
// form is opaque.
func parseColor(s string) (color, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return color{}, false
	}

	if c, ok := namedColors[s]; ok {
		return c, true
	}

	if strings.HasPrefix(s, "#") {
		return parseHex(s[1:])
	}

	if strings.HasPrefix(s, "rgb(") || strings.HasPrefix(s, "rgba(") {
		open := strings.IndexByte(s, '(')
		end := strings.LastIndexByte(s, ')')
		if end <= open {
			return color{}, false
		}
		return parseRGBFunc(s[open+1 : end])
	}

	return color{}, false
}

func parseHex(hex string) (color, bool) {
	switch len(hex) {
	case 3, 4:
		hex = expandShortHex(hex[:3])
	case 6:
	case 8:
		hex = hex[:6]
	default:
		return color{}, false
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color{}, false
	}
	return color{
		r: float64(v >> 16 & 0xff),
		g: float64(v >> 8 & 0xff),
		b: float64(v & 0xff),
		a: 1,
	}, true
}

func expandShortHex(hex string) string {
	var b strings.Builder
	for _, c := range hex {
		b.WriteRune(c)
		b.WriteRune(c)
	}
	return b.String()
}

func parseRGBFunc(inner string) (color, bool) {
	inner = strings.ReplaceAll(inner, "/", " ")
	parts := strings.FieldsFunc(inner, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	if len(parts) != 3 && len(parts) != 4 {
		return color{}, false
	}

	var chans [3]float64
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseFloat(strings.TrimSuffix(parts[i], "%"), 64)
		if err != nil {
			return color{}, false
		}
		if strings.HasSuffix(parts[i], "%") {
			v = v * 255 / 100
		}
		chans[i] = clamp(v, 0, 255)
	}

	alpha := 1.0
	if len(parts) == 4 {
		v, err := strconv.ParseFloat(strings.TrimSuffix(parts[3], "%"), 64)
		if err != nil {
			return color{}, false
		}
		if strings.HasSuffix(parts[3], "%") {
			v /= 100
		}
		alpha = clamp(v, 0, 1)
	}

	return color{r: chans[0], g: chans[1], b: chans[2], a: alpha}, true
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}

// resolveBackground walks from the element up to (not including) the
// document element and returns the first background that is effectively
// painted: parseable, not the transparent keyword, alpha above 0.1. The
// accepted color is flattened to opaque; if nothing paints, the page is
// assumed white.
func resolveBackground(el *snapshot.Element) color {
	for cur := el; cur != nil && cur.Parent != nil; cur = cur.Parent {
		bg := strings.TrimSpace(cur.Style.BackgroundColor)
		if bg == "" || strings.EqualFold(bg, "transparent") {
			continue
		}
		c, ok := parseColor(bg)
		if !ok || c.a <= 0.1 {
			continue
		}
		c.a = 1
		return c
	}
	return white
}
