package audit

import (
	"strings"

	"github.com/raysh454/miru/internal/report"
	"github.com/raysh454/miru/internal/snapshot"
)

// selectorUnknown is used when no usable locator can be derived.
const selectorUnknown = "unknown"

const maxSnippetLen = 100

// selectorFor derives a best-effort locator: id first, then the first class,
// then the tag name. Attribute values that would not survive in a selector
// (whitespace, quotes, angle brackets) are skipped rather than escaped.
func selectorFor(el *snapshot.Element) string {
	if el == nil {
		return selectorUnknown
	}
	if id, ok := el.Attr("id"); ok {
		id = strings.TrimSpace(id)
		if id != "" && !strings.ContainsAny(id, " \t\n\r\"'<>") {
			return "#" + id
		}
	}
	if class, ok := el.Attr("class"); ok {
		if fields := strings.Fields(class); len(fields) > 0 {
			first := fields[0]
			if !strings.ContainsAny(first, "\"'<>") {
				return "." + first
			}
		}
	}
	if el.Tag != "" {
		return el.Tag
	}
	return selectorUnknown
}

// snippetFor returns the element's serialized markup truncated for a
// finding. Falls back to a bare tag when the snapshot carried no markup.
func snippetFor(el *snapshot.Element) string {
	if el == nil {
		return ""
	}
	markup := el.Markup
	if markup == "" {
		if el.Tag == "" {
			return ""
		}
		markup = "<" + el.Tag + ">"
	}
	runes := []rune(markup)
	if len(runes) > maxSnippetLen {
		markup = string(runes[:maxSnippetLen])
	}
	return markup
}

// attachElement fills the element reference of a finding. Snippet and
// selector are set together or not at all; selector derivation failures
// still attach, with the sentinel value.
func attachElement(f report.Finding, el *snapshot.Element) report.Finding {
	snippet := snippetFor(el)
	if snippet == "" {
		return f
	}
	f.ElementSnippet = snippet
	f.Selector = selectorFor(el)
	return f
}
