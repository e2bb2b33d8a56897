package audit

import (
	"math"

	"github.com/raysh454/miru/internal/snapshot"
)

// WCAG 2.x thresholds. Text is "large" at 24px, or at 18.66px (the 18pt
// conversion) when bold.
const (
	largeSizePx     = 24.0
	largeBoldSizePx = 18.66
	boldWeight      = 700

	aaNormal  = 4.5
	aaLarge   = 3.0
	aaaNormal = 7.0
	aaaLarge  = 4.5
)

// ContrastSample is one piece of text to evaluate: resolved colors plus the
// font metrics that decide which thresholds apply.
type ContrastSample struct {
	Foreground string
	Background string
	FontSize   float64
	FontWeight int
}

// ContrastResult is the evaluator's verdict for one sample.
type ContrastResult struct {
	// Ratio is the contrast ratio, 1..21.
	Ratio float64

	// Large reports whether the large-text thresholds applied.
	Large bool

	RequiredAA  float64
	RequiredAAA float64
	PassAA      bool
	PassAAA     bool

	// Foreground/Background echo the resolved colors as rgb() strings.
	Foreground string
	Background string

	// SuggestedForeground/SuggestedBackground each satisfy RequiredAA
	// against the opposite original color. Empty when the sample passes.
	SuggestedForeground string
	SuggestedBackground string
}

// EvaluateContrast measures one sample. It returns false when the
// foreground color cannot be parsed; the background falls back to white via
// the resolver before this is called, so an unparseable background here
// fails the same way.
func EvaluateContrast(sample ContrastSample) (*ContrastResult, bool) {
	fg, ok := parseColor(sample.Foreground)
	if !ok {
		return nil, false
	}
	bg, ok := parseColor(sample.Background)
	if !ok {
		return nil, false
	}

	ratio := contrastRatio(fg, bg)
	large := isLargeText(sample.FontSize, sample.FontWeight)

	requiredAA, requiredAAA := aaNormal, aaaNormal
	if large {
		requiredAA, requiredAAA = aaLarge, aaaLarge
	}

	res := &ContrastResult{
		Ratio:       ratio,
		Large:       large,
		RequiredAA:  requiredAA,
		RequiredAAA: requiredAAA,
		PassAA:      ratio >= requiredAA,
		PassAAA:     ratio >= requiredAAA,
		Foreground:  fg.String(),
		Background:  bg.String(),
	}
	if !res.PassAA {
		res.SuggestedForeground = suggestAdjusted(fg, bg, requiredAA).String()
		res.SuggestedBackground = suggestAdjusted(bg, fg, requiredAA).String()
	}
	return res, true
}

func isLargeText(sizePx float64, weight int) bool {
	return sizePx >= largeSizePx || (sizePx >= largeBoldSizePx && weight >= boldWeight)
}

// relativeLuminance implements the WCAG 2.x formula.
func relativeLuminance(c color) float64 {
	lin := func(ch float64) float64 {
		ch /= 255
		if ch <= 0.03928 {
			return ch / 12.92
		}
		return math.Pow((ch+0.055)/1.055, 2.4)
	}
	return 0.2126*lin(c.r) + 0.7152*lin(c.g) + 0.0722*lin(c.b)
}

func contrastRatio(a, b color) float64 {
	la := relativeLuminance(a)
	lb := relativeLuminance(b)
	if la < lb {
		la, lb = lb, la
	}
	return (la + 0.05) / (lb + 0.05)
}

// suggestAdjusted moves `adjust` toward black or white in 10% steps until
// the pair meets the required ratio, picking whichever extreme achieves the
// higher ratio against the fixed color. The extreme itself is returned if
// even it falls short, which can only happen against a mid-luminance color
// with a requirement above its best achievable ratio.
func suggestAdjusted(adjust, against color, required float64) color {
	target := black
	if contrastRatio(white, against) > contrastRatio(black, against) {
		target = white
	}
	adjusted := adjust
	for step := 1; step <= 10; step++ {
		if contrastRatio(adjusted, against) >= required {
			return adjusted
		}
		t := float64(step) / 10
		adjusted = color{
			r: adjust.r + (target.r-adjust.r)*t,
			g: adjust.g + (target.g-adjust.g)*t,
			b: adjust.b + (target.b-adjust.b)*t,
			a: 1,
		}
	}
	return adjusted
}

// evaluateElement runs the contrast evaluator over one element, resolving
// its effective background from the ancestor chain.
func evaluateElement(el *snapshot.Element) (*ContrastResult, bool) {
	if el == nil {
		return nil, false
	}
	bg := resolveBackground(el)
	return EvaluateContrast(ContrastSample{
		Foreground: el.Style.Color,
		Background: bg.String(),
		FontSize:   el.Style.FontSize,
		FontWeight: el.Style.FontWeight,
	})
}
