package snapshot

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/raysh454/miru/internal/logging"
	"github.com/raysh454/miru/internal/webclient"
)

// StaticSource fetches HTML over plain HTTP and builds a snapshot without a
// browser. Computed style is approximated from inline style attributes over
// per-tag defaults with inheritance for color, font and visibility; geometry
// is synthesized (every rendered element spans the viewport, display:none
// subtrees get zero boxes). It over-approximates visibility compared to a
// real layout, which is the useful direction for fixtures and tests.
type StaticSource struct {
	cfg    *Config
	logger logging.Logger
	client webclient.WebClient
}

// NewStaticSource creates a static source. client may be nil, in which case
// a default net/http backed client with the configured fetch timeout is
// constructed.
func NewStaticSource(cfg *Config, logger logging.Logger, client webclient.WebClient) (*StaticSource, error) {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	componentLogger := logger.With(logging.Field{Key: "component", Value: "snapshot.static"})

	if client == nil {
		c, err := webclient.NewNetHTTPClient(&webclient.Config{Timeout: cfg.FetchTimeout}, logger, nil)
		if err != nil {
			return nil, fmt.Errorf("create web client: %w", err)
		}
		client = c
	}

	return &StaticSource{cfg: cfg, logger: componentLogger, client: client}, nil
}

// Capture fetches the page and parses it into a Document.
func (s *StaticSource) Capture(ctx context.Context, url string) (*Document, error) {
	resp, err := s.client.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}

	doc, err := ParseHTML(url, resp.Body, s.cfg)
	if err != nil {
		return nil, err
	}

	s.logger.Info("captured static snapshot",
		logging.Field{Key: "url", Value: url},
		logging.Field{Key: "elements", Value: doc.Len()})
	return doc, nil
}

func (s *StaticSource) Close() error {
	return s.client.Close()
}

// ParseHTML builds a Document from raw HTML. Exposed so fixtures and tests
// can construct snapshots without a network round trip.
func ParseHTML(url string, body []byte, cfg *Config) (*Document, error) {
	cfg = cfg.withDefaults()

	gq, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	vp := Viewport{Width: cfg.ViewportWidth, Height: cfg.ViewportHeight}
	htmlSel := gq.Find("html").First()
	if htmlSel.Length() == 0 {
		return NewDocument(url, vp, nil), nil
	}

	root := buildElement(htmlSel, rootStyleContext(), cfg, vp)
	return NewDocument(url, vp, root), nil
}

// styleContext carries the inherited style properties down the tree.
type styleContext struct {
	color         string
	fontSize      float64
	fontWeight    int
	visibility    string
	pointerEvents string
	hidden        bool
}

func rootStyleContext() styleContext {
	return styleContext{
		color:         "rgb(0, 0, 0)",
		fontSize:      16,
		fontWeight:    400,
		visibility:    "visible",
		pointerEvents: "auto",
	}
}

func buildElement(sel *goquery.Selection, parent styleContext, cfg *Config, vp Viewport) *Element {
	if len(sel.Nodes) == 0 {
		return nil
	}
	node := sel.Nodes[0]
	tag := strings.ToLower(node.Data)

	attrs := make(map[string]string, len(node.Attr))
	for _, a := range node.Attr {
		attrs[strings.ToLower(a.Key)] = a.Val
	}

	style, ctx := computeStyle(tag, attrs["style"], parent)

	var box Rect
	if !ctx.hidden {
		box = Rect{Width: float64(vp.Width), Height: float64(vp.Height)}
	}

	text := truncateRunes(collapseWhitespace(sel.Text()), cfg.MaxTextLength)

	markup, err := goquery.OuterHtml(sel)
	if err != nil {
		markup = "<" + tag + ">"
	}
	markup = truncateRunes(strings.TrimSpace(markup), cfg.MaxMarkupLength)

	_, clickable := attrs["onclick"]

	el := &Element{
		Tag:       tag,
		Attrs:     attrs,
		Style:     style,
		Box:       box,
		Text:      text,
		Markup:    markup,
		Clickable: clickable,
	}

	sel.Children().Each(func(_ int, child *goquery.Selection) {
		if c := buildElement(child, ctx, cfg, vp); c != nil {
			el.Children = append(el.Children, c)
		}
	})
	return el
}

// computeStyle resolves the style approximation for one element: per-tag
// defaults, inherited values, then inline declarations in that order.
func computeStyle(tag, inline string, parent styleContext) (Style, styleContext) {
	style := Style{
		Display:         defaultDisplay(tag),
		Visibility:      parent.visibility,
		Opacity:         "1",
		Color:           parent.color,
		BackgroundColor: "rgba(0, 0, 0, 0)",
		FontSize:        parent.fontSize,
		FontWeight:      parent.fontWeight,
		PointerEvents:   parent.pointerEvents,
	}
	if size, ok := headingSizes[tag]; ok {
		style.FontSize = size
	}
	if boldTags[tag] {
		style.FontWeight = 700
	}

	for _, decl := range strings.Split(inline, ";") {
		prop, value, found := strings.Cut(decl, ":")
		if !found {
			continue
		}
		prop = strings.ToLower(strings.TrimSpace(prop))
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		switch prop {
		case "display":
			style.Display = strings.ToLower(value)
		case "visibility":
			style.Visibility = strings.ToLower(value)
		case "opacity":
			style.Opacity = value
		case "color":
			style.Color = value
		case "background-color", "background":
			style.BackgroundColor = value
		case "font-size":
			if px, ok := parseFontSize(value); ok {
				style.FontSize = px
			}
		case "font-weight":
			if w, ok := parseFontWeight(value); ok {
				style.FontWeight = w
			}
		case "pointer-events":
			style.PointerEvents = strings.ToLower(value)
		}
	}

	ctx := styleContext{
		color:         style.Color,
		fontSize:      style.FontSize,
		fontWeight:    style.FontWeight,
		visibility:    style.Visibility,
		pointerEvents: style.PointerEvents,
		hidden:        parent.hidden || style.Display == "none",
	}
	return style, ctx
}

func parseFontSize(value string) (float64, bool) {
	value = strings.ToLower(strings.TrimSpace(value))
	switch {
	case strings.HasSuffix(value, "px"):
		value = strings.TrimSuffix(value, "px")
	case strings.HasSuffix(value, "pt"):
		pt, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(value, "pt")), 64)
		if err != nil {
			return 0, false
		}
		return pt * 96 / 72, true
	}
	px, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || px <= 0 {
		return 0, false
	}
	return px, true
}

func parseFontWeight(value string) (int, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "normal":
		return 400, true
	case "bold":
		return 700, true
	}
	w, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || w <= 0 {
		return 0, false
	}
	return w, true
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncateRunes(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

// Tags the UA stylesheet renders as block or hides entirely. Everything else
// is treated as inline.
var blockTags = map[string]bool{
	"html": true, "body": true, "div": true, "p": true, "h1": true,
	"h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"ul": true, "ol": true, "li": true, "table": true, "form": true,
	"section": true, "article": true, "header": true, "footer": true,
	"nav": true, "aside": true, "main": true, "figure": true,
	"figcaption": true, "blockquote": true, "pre": true, "hr": true,
	"fieldset": true, "address": true, "dl": true, "dt": true, "dd": true,
}

var hiddenTags = map[string]bool{
	"head": true, "script": true, "style": true, "meta": true,
	"link": true, "title": true, "noscript": true, "template": true,
	"base": true,
}

var headingSizes = map[string]float64{
	"h1": 32, "h2": 24, "h3": 18.72, "h4": 16, "h5": 13.28, "h6": 10.72,
}

var boldTags = map[string]bool{
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"b": true, "strong": true, "th": true,
}

func defaultDisplay(tag string) string {
	switch {
	case hiddenTags[tag]:
		return "none"
	case blockTags[tag]:
		return "block"
	default:
		return "inline"
	}
}
