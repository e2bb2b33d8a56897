package snapshot

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Wire format shared by the browser capture script and snapshot fixtures.
// Nodes arrive flat in document order; parent is an index into the same
// slice, -1 for the document element.

type capturedPage struct {
	URL      string         `json:"url"`
	Viewport Viewport       `json:"viewport"`
	Nodes    []capturedNode `json:"nodes"`
}

type capturedNode struct {
	Tag       string            `json:"tag"`
	Parent    int               `json:"parent"`
	Attrs     map[string]string `json:"attrs,omitempty"`
	Style     capturedStyle     `json:"style"`
	Box       [4]float64        `json:"box"`
	Text      string            `json:"text,omitempty"`
	Markup    string            `json:"markup,omitempty"`
	Clickable bool              `json:"clickable,omitempty"`
}

type capturedStyle struct {
	Display         string  `json:"display"`
	Visibility      string  `json:"visibility"`
	Opacity         string  `json:"opacity"`
	Color           string  `json:"color"`
	BackgroundColor string  `json:"backgroundColor"`
	FontSize        float64 `json:"fontSize"`
	FontWeight      float64 `json:"fontWeight"`
	PointerEvents   string  `json:"pointerEvents"`
}

// Decode turns a serialized capture into a Document.
func Decode(data []byte) (*Document, error) {
	var page capturedPage
	if err := json.Unmarshal(data, &page); err != nil {
		return nil, fmt.Errorf("decode capture: %w", err)
	}
	return fromCaptured(&page)
}

func fromCaptured(page *capturedPage) (*Document, error) {
	if len(page.Nodes) == 0 {
		return NewDocument(page.URL, page.Viewport, nil), nil
	}

	elements := make([]*Element, len(page.Nodes))
	for i, n := range page.Nodes {
		attrs := make(map[string]string, len(n.Attrs))
		for k, v := range n.Attrs {
			attrs[strings.ToLower(k)] = v
		}
		elements[i] = &Element{
			Tag:   strings.ToLower(n.Tag),
			Attrs: attrs,
			Style: Style{
				Display:         n.Style.Display,
				Visibility:      n.Style.Visibility,
				Opacity:         n.Style.Opacity,
				Color:           n.Style.Color,
				BackgroundColor: n.Style.BackgroundColor,
				FontSize:        n.Style.FontSize,
				FontWeight:      int(n.Style.FontWeight),
				PointerEvents:   n.Style.PointerEvents,
			},
			Box:       Rect{X: n.Box[0], Y: n.Box[1], Width: n.Box[2], Height: n.Box[3]},
			Text:      n.Text,
			Markup:    n.Markup,
			Clickable: n.Clickable,
		}
	}

	var root *Element
	rootIdx := -1
	for i, n := range page.Nodes {
		if n.Parent < 0 {
			if root != nil {
				return nil, fmt.Errorf("capture has multiple roots (nodes %d and %d)", rootIdx, i)
			}
			root = elements[i]
			rootIdx = i
			continue
		}
		if n.Parent >= len(elements) || n.Parent == i {
			return nil, fmt.Errorf("capture node %d has invalid parent %d", i, n.Parent)
		}
		parent := elements[n.Parent]
		parent.Children = append(parent.Children, elements[i])
	}
	if root == nil {
		return nil, fmt.Errorf("capture has no root node")
	}

	return NewDocument(page.URL, page.Viewport, root), nil
}
