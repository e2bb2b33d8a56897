package snapshot_test

import (
	"strconv"
	"strings"
	"testing"

	"github.com/raysh454/miru/internal/snapshot"
)

const captureFixture = `{
	"url": "https://example.org/",
	"viewport": {"width": 1280, "height": 800},
	"nodes": [
		{
			"tag": "HTML",
			"parent": -1,
			"attrs": {"Lang": "en"},
			"style": {"display": "block", "visibility": "visible", "opacity": "1",
				"color": "rgb(0, 0, 0)", "backgroundColor": "rgb(255, 255, 255)",
				"fontSize": 16, "fontWeight": 400, "pointerEvents": "auto"},
			"box": [0, 0, 1280, 2400]
		},
		{
			"tag": "body",
			"parent": 0,
			"style": {"display": "block", "visibility": "visible", "opacity": "1",
				"color": "rgb(0, 0, 0)", "backgroundColor": "rgba(0, 0, 0, 0)",
				"fontSize": 16, "fontWeight": 400, "pointerEvents": "auto"},
			"box": [0, 0, 1280, 2400]
		},
		{
			"tag": "p",
			"parent": 1,
			"attrs": {"id": "intro"},
			"style": {"display": "block", "visibility": "visible", "opacity": "0.9",
				"color": "rgb(51, 51, 51)", "backgroundColor": "rgba(0, 0, 0, 0)",
				"fontSize": 18.5, "fontWeight": 700, "pointerEvents": "auto"},
			"box": [8, 120, 500, 24],
			"text": "Hello",
			"markup": "<p id=\"intro\">Hello</p>",
			"clickable": true
		}
	]
}`

func TestDecode_RebuildsTree(t *testing.T) {
	t.Parallel()

	doc, err := snapshot.Decode([]byte(captureFixture))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if doc.URL != "https://example.org/" {
		t.Errorf("url = %q", doc.URL)
	}
	if doc.Viewport != (snapshot.Viewport{Width: 1280, Height: 800}) {
		t.Errorf("viewport = %+v", doc.Viewport)
	}
	if doc.Len() != 3 {
		t.Fatalf("len = %d, want 3", doc.Len())
	}

	root := doc.Root()
	if root.Tag != "html" {
		t.Errorf("root tag = %q, want lower-cased html", root.Tag)
	}
	if lang, ok := root.Attr("lang"); !ok || lang != "en" {
		t.Errorf("lang = %q (%v), attribute keys should be lower-cased", lang, ok)
	}

	body := doc.Body()
	if body == nil || body.Parent != root {
		t.Fatalf("body not linked under root: %+v", body)
	}

	ps := doc.ElementsByTag("p")
	if len(ps) != 1 {
		t.Fatalf("expected 1 p, got %d", len(ps))
	}
	p := ps[0]
	if p.Parent != body {
		t.Error("p not linked under body")
	}
	if p.Box != (snapshot.Rect{X: 8, Y: 120, Width: 500, Height: 24}) {
		t.Errorf("p box = %+v", p.Box)
	}
	if p.Style.Opacity != "0.9" || p.Style.Color != "rgb(51, 51, 51)" {
		t.Errorf("p style = %+v", p.Style)
	}
	if p.Style.FontSize != 18.5 || p.Style.FontWeight != 700 {
		t.Errorf("p font = %v/%d", p.Style.FontSize, p.Style.FontWeight)
	}
	if p.TextContent() != "Hello" || !p.Clickable {
		t.Errorf("p content = %q clickable=%v", p.TextContent(), p.Clickable)
	}
	if p.Index() != 2 {
		t.Errorf("p index = %d, want document order 2", p.Index())
	}
}

func TestDecode_EmptyCapture(t *testing.T) {
	t.Parallel()

	doc, err := snapshot.Decode([]byte(`{"url": "https://example.org/", "viewport": {"width": 800, "height": 600}, "nodes": []}`))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if doc.Len() != 0 || doc.Root() != nil {
		t.Errorf("expected an empty document, got %d elements", doc.Len())
	}
}

func TestDecode_RejectsBrokenCaptures(t *testing.T) {
	t.Parallel()

	node := func(tag string, parent int) string {
		return `{"tag": "` + tag + `", "parent": ` + strconv.Itoa(parent) + `, "style": {}, "box": [0,0,0,0]}`
	}
	page := func(nodes ...string) string {
		return `{"url": "u", "viewport": {"width": 1, "height": 1}, "nodes": [` + strings.Join(nodes, ",") + `]}`
	}

	tests := []struct {
		name    string
		payload string
		wantErr string
	}{
		{
			name:    "malformed json",
			payload: `{"nodes": [`,
			wantErr: "decode capture",
		},
		{
			name:    "multiple roots",
			payload: page(node("html", -1), node("html", -1)),
			wantErr: "multiple roots",
		},
		{
			name:    "parent index out of range",
			payload: page(node("html", -1), node("body", 7)),
			wantErr: "invalid parent",
		},
		{
			name:    "node is its own parent",
			payload: page(node("html", -1), node("body", 1)),
			wantErr: "invalid parent",
		},
		{
			name:    "no root",
			payload: page(node("html", 1), node("body", 0)),
			wantErr: "no root",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := snapshot.Decode([]byte(tc.payload))
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("error %q does not mention %q", err, tc.wantErr)
			}
		})
	}
}
