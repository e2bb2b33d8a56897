// Package snapshot models a captured page: the element tree together with
// the computed-style subset, geometry and text the audit engine needs. Two
// sources produce snapshots (a headless-browser capture and a static HTML
// parse); the engine only ever sees this package's types.
package snapshot

import (
	"strings"
	"time"
)

// Viewport is the visible area of the capture in CSS pixels.
type Viewport struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Rect is an element's bounding box in viewport coordinates.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.Width }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Style is the computed-style subset captured per element. Color values stay
// raw strings as the browser reported them; the engine parses them itself.
type Style struct {
	Display         string  `json:"display"`
	Visibility      string  `json:"visibility"`
	Opacity         string  `json:"opacity"`
	Color           string  `json:"color"`
	BackgroundColor string  `json:"background_color"`
	FontSize        float64 `json:"font_size"`
	FontWeight      int     `json:"font_weight"`
	PointerEvents   string  `json:"pointer_events"`
}

// Element is one captured DOM element.
type Element struct {
	// Tag is the lower-cased element name.
	Tag string

	// Attrs holds the element's attributes, keys lower-cased. Never nil.
	Attrs map[string]string

	// Style is the captured computed-style subset.
	Style Style

	// Box is the bounding box in viewport coordinates.
	Box Rect

	// Text is the trimmed, whitespace-collapsed text content (the element's
	// own text plus descendants), capped at capture time.
	Text string

	// Markup is the serialized markup of the element, truncated at capture
	// time. Used for finding snippets.
	Markup string

	// Clickable reports a click handler on the element.
	Clickable bool

	Parent   *Element
	Children []*Element

	index int
}

// Attr returns the named attribute (name lower-cased) and whether it exists.
func (e *Element) Attr(name string) (string, bool) {
	if e == nil || e.Attrs == nil {
		return "", false
	}
	v, ok := e.Attrs[strings.ToLower(name)]
	return v, ok
}

// HasAttr reports whether the attribute exists, regardless of its value.
func (e *Element) HasAttr(name string) bool {
	_, ok := e.Attr(name)
	return ok
}

// TextContent returns the captured text content.
func (e *Element) TextContent() string {
	if e == nil {
		return ""
	}
	return e.Text
}

// Index is the element's position in document order.
func (e *Element) Index() int {
	if e == nil {
		return -1
	}
	return e.index
}

// Document is one captured page.
type Document struct {
	// URL the capture was taken from.
	URL string

	// CapturedAt is when the source produced the snapshot (UTC).
	CapturedAt time.Time

	// Viewport of the capture.
	Viewport Viewport

	root *Element
	all  []*Element
}

// NewDocument assembles a Document from an element tree. It fixes up parent
// pointers and assigns document order, so builders only need to fill
// Children. A nil root yields an empty document.
func NewDocument(url string, viewport Viewport, root *Element) *Document {
	d := &Document{
		URL:        url,
		CapturedAt: time.Now().UTC(),
		Viewport:   viewport,
		root:       root,
	}
	var walk func(e *Element, parent *Element)
	walk = func(e *Element, parent *Element) {
		if e == nil {
			return
		}
		if e.Attrs == nil {
			e.Attrs = map[string]string{}
		}
		e.Parent = parent
		e.index = len(d.all)
		d.all = append(d.all, e)
		for _, c := range e.Children {
			walk(c, e)
		}
	}
	walk(root, nil)
	return d
}

// Root returns the document element, nil for an empty document.
func (d *Document) Root() *Element {
	if d == nil {
		return nil
	}
	return d.root
}

// All returns every element in document order. Callers must not modify the
// returned slice.
func (d *Document) All() []*Element {
	if d == nil {
		return nil
	}
	return d.all
}

// Len returns the number of captured elements.
func (d *Document) Len() int {
	if d == nil {
		return 0
	}
	return len(d.all)
}

// Body returns the first body element, nil if the page has none.
func (d *Document) Body() *Element {
	for _, e := range d.All() {
		if e.Tag == "body" {
			return e
		}
	}
	return nil
}

// ElementsByTag returns all elements with the given tag in document order.
func (d *Document) ElementsByTag(tag string) []*Element {
	tag = strings.ToLower(tag)
	var out []*Element
	for _, e := range d.All() {
		if e.Tag == tag {
			out = append(out, e)
		}
	}
	return out
}

// Lang returns the document element's lang attribute.
func (d *Document) Lang() (string, bool) {
	return d.Root().Attr("lang")
}
