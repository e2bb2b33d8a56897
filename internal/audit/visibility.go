package audit

import (
	"strconv"
	"strings"

	"github.com/raysh454/miru/internal/snapshot"
)

// Visible reports whether an element is rendered inside the viewport: a
// bounding box not collapsed in both dimensions, display not none,
// visibility not hidden, opacity not zero, and the box intersecting the
// viewport. Anything the snapshot cannot answer counts as not visible.
func Visible(doc *snapshot.Document, el *snapshot.Element) bool {
	if doc == nil || el == nil {
		return false
	}

	// Only a fully degenerate box hides an element; a box collapsed in one
	// dimension can still be rendered.
	box := el.Box
	if box.Width <= 0 && box.Height <= 0 {
		return false
	}

	style := el.Style
	if strings.EqualFold(style.Display, "none") {
		return false
	}
	if strings.EqualFold(style.Visibility, "hidden") {
		return false
	}
	if opacityIsZero(style.Opacity) {
		return false
	}

	vw := float64(doc.Viewport.Width)
	vh := float64(doc.Viewport.Height)
	if box.X >= vw || box.Right() <= 0 {
		return false
	}
	if box.Y >= vh || box.Bottom() <= 0 {
		return false
	}
	return true
}

// opacityIsZero treats only a parseable zero as hiding; an unreadable
// opacity string counts as fully opaque.
func opacityIsZero(opacity string) bool {
	opacity = strings.TrimSpace(opacity)
	if opacity == "" {
		return false
	}
	v, err := strconv.ParseFloat(opacity, 64)
	if err != nil {
		return false
	}
	return v == 0
}
