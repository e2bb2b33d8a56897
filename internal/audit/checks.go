package audit

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/raysh454/miru/internal/report"
	"github.com/raysh454/miru/internal/snapshot"
)

// ─── images ────────────────────────────────────────────────────────────

// checkImages flags visible images with no alt attribute at all. An empty
// alt is the marker for decorative images and is left alone.
func (a *Auditor) checkImages(doc *snapshot.Document) []report.Finding {
	var out []report.Finding
	for _, img := range doc.ElementsByTag("img") {
		if !Visible(doc, img) {
			continue
		}
		if img.HasAttr("alt") {
			continue
		}
		out = append(out, attachElement(report.Finding{
			Severity: report.SeverityError,
			Category: report.CategoryImages,
			Message:  "Image has no alt attribute",
		}, img))
	}
	return out
}

// ─── headings ──────────────────────────────────────────────────────────

var headingTags = []string{"h1", "h2", "h3", "h4", "h5", "h6"}

// checkHeadings emits a single page-level warning when the document has no
// heading elements at all. The finding carries no element reference.
func (a *Auditor) checkHeadings(doc *snapshot.Document) []report.Finding {
	for _, tag := range headingTags {
		if len(doc.ElementsByTag(tag)) > 0 {
			return nil
		}
	}
	return []report.Finding{{
		Severity: report.SeverityWarning,
		Category: report.CategoryHeadings,
		Message:  "Page has no heading elements (h1-h6)",
	}}
}

// ─── contrast ──────────────────────────────────────────────────────────

// checkContrast samples visible text-bearing elements under body in
// document order and flags those falling short of their AA requirement.
// Collection stops at MaxTextCandidates and evaluation at
// MaxContrastChecks, so a huge page cannot stall the audit.
func (a *Auditor) checkContrast(doc *snapshot.Document) []report.Finding {
	body := doc.Body()
	if body == nil {
		return nil
	}

	candidates := a.collectTextCandidates(doc, body)

	var out []report.Finding
	evaluated := 0
	for _, el := range candidates {
		if evaluated >= a.cfg.MaxContrastChecks {
			break
		}
		evaluated++

		res, ok := evaluateElement(el)
		if !ok || res.PassAA {
			continue
		}
		out = append(out, attachElement(report.Finding{
			Severity: report.SeverityError,
			Category: report.CategoryContrast,
			Message: fmt.Sprintf("Text contrast %.2f:1 is below the required %.1f:1",
				res.Ratio, res.RequiredAA),
			Details: &report.ContrastDetails{
				Ratio:               round2(res.Ratio),
				Required:            res.RequiredAA,
				FontSize:            el.Style.FontSize,
				FontWeight:          el.Style.FontWeight,
				Foreground:          res.Foreground,
				Background:          res.Background,
				SuggestedForeground: res.SuggestedForeground,
				SuggestedBackground: res.SuggestedBackground,
			},
		}, el))
	}
	return out
}

// collectTextCandidates walks the body subtree in document order and keeps
// visible elements whose trimmed text content is non-empty. Containers
// count alongside leaves: their text content includes descendants.
func (a *Auditor) collectTextCandidates(doc *snapshot.Document, body *snapshot.Element) []*snapshot.Element {
	var candidates []*snapshot.Element
	var walk func(el *snapshot.Element)
	walk = func(el *snapshot.Element) {
		for _, child := range el.Children {
			if len(candidates) >= a.cfg.MaxTextCandidates {
				return
			}
			if Visible(doc, child) && strings.TrimSpace(child.TextContent()) != "" {
				candidates = append(candidates, child)
			}
			walk(child)
		}
	}
	walk(body)
	return candidates
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ─── aria ──────────────────────────────────────────────────────────────

// checkARIA covers two rules: elements whose only label is an aria-label
// (no text content, no labeled image below them), and role values outside
// the ARIA role table.
func (a *Auditor) checkARIA(doc *snapshot.Document) []report.Finding {
	var out []report.Finding
	for _, el := range doc.All() {
		if el.HasAttr("aria-label") &&
			Visible(doc, el) &&
			strings.TrimSpace(el.TextContent()) == "" &&
			!hasLabeledImage(el) {
			out = append(out, attachElement(report.Finding{
				Severity: report.SeverityWarning,
				Category: report.CategoryARIA,
				Message:  "Element relies on aria-label alone with no text content or labeled image",
			}, el))
		}

		if role, ok := el.Attr("role"); ok {
			normalized := strings.ToLower(strings.TrimSpace(role))
			if !validRoles[normalized] {
				out = append(out, attachElement(report.Finding{
					Severity: report.SeverityWarning,
					Category: report.CategoryARIA,
					Message:  fmt.Sprintf("Role %q is not a valid ARIA role", role),
				}, el))
			}
		}
	}
	return out
}

// hasLabeledImage reports an img descendant carrying an alt attribute.
func hasLabeledImage(el *snapshot.Element) bool {
	for _, child := range el.Children {
		if child.Tag == "img" && child.HasAttr("alt") {
			return true
		}
		if hasLabeledImage(child) {
			return true
		}
	}
	return false
}

// ─── keyboard ──────────────────────────────────────────────────────────

// checkKeyboard covers two rules: tabindex values below -1, and visible
// enabled interactive elements that declare no tabindex at all.
//
// TODO: native interactive tags are focusable by default, so the second
// rule over-reports; tighten it once per-element focusability is captured.
func (a *Auditor) checkKeyboard(doc *snapshot.Document) []report.Finding {
	var out []report.Finding
	for _, el := range doc.All() {
		if ti, ok := el.Attr("tabindex"); ok {
			if n, err := strconv.Atoi(strings.TrimSpace(ti)); err == nil && n < -1 {
				out = append(out, attachElement(report.Finding{
					Severity: report.SeverityError,
					Category: report.CategoryKeyboard,
					Message:  fmt.Sprintf("Tabindex %d is invalid; values below -1 break keyboard access", n),
				}, el))
			}
			continue
		}

		if !isInteractive(el) || !Visible(doc, el) {
			continue
		}
		if el.HasAttr("disabled") {
			continue
		}
		if strings.EqualFold(el.Style.PointerEvents, "none") {
			continue
		}
		out = append(out, attachElement(report.Finding{
			Severity: report.SeverityWarning,
			Category: report.CategoryKeyboard,
			Message:  "Interactive element declares no tabindex and may not be keyboard reachable",
		}, el))
	}
	return out
}

// isInteractive covers native interactive tags (anchors only when they
// carry an href) and anything with a click handler.
func isInteractive(el *snapshot.Element) bool {
	switch el.Tag {
	case "button", "input", "select", "textarea":
		return true
	case "a":
		return el.HasAttr("href")
	}
	return el.Clickable
}

// ─── semantics ─────────────────────────────────────────────────────────

// checkSemantics covers two rules: divs acting as buttons, and tables with
// none of the markers separating data tables from layout tables.
func (a *Auditor) checkSemantics(doc *snapshot.Document) []report.Finding {
	var out []report.Finding
	for _, el := range doc.All() {
		if el.Tag == "div" && Visible(doc, el) {
			role, _ := el.Attr("role")
			if el.Clickable || strings.EqualFold(strings.TrimSpace(role), "button") {
				out = append(out, attachElement(report.Finding{
					Severity: report.SeverityWarning,
					Category: report.CategorySemantics,
					Message:  "div is used as a button without native button semantics",
				}, el))
			}
		}

		if el.Tag == "table" &&
			!el.HasAttr("role") &&
			!el.HasAttr("summary") &&
			!hasDescendantTag(el, "th") {
			out = append(out, attachElement(report.Finding{
				Severity: report.SeverityWarning,
				Category: report.CategorySemantics,
				Message:  "Table appears to be used for layout (no role, summary, or th cells)",
			}, el))
		}
	}
	return out
}

func hasDescendantTag(el *snapshot.Element, tag string) bool {
	for _, child := range el.Children {
		if child.Tag == tag {
			return true
		}
		if hasDescendantTag(child, tag) {
			return true
		}
	}
	return false
}

// ─── language ──────────────────────────────────────────────────────────

// checkLanguage requires a lang attribute on the document element. A blank
// value counts as missing.
func (a *Auditor) checkLanguage(doc *snapshot.Document) []report.Finding {
	root := doc.Root()
	if root == nil {
		return []report.Finding{{
			Severity: report.SeverityError,
			Category: report.CategoryLanguage,
			Message:  "Document has no root element to declare a language on",
		}}
	}
	if lang, ok := doc.Lang(); ok && strings.TrimSpace(lang) != "" {
		return nil
	}
	return []report.Finding{attachElement(report.Finding{
		Severity: report.SeverityError,
		Category: report.CategoryLanguage,
		Message:  "Document has no lang attribute",
	}, root)}
}
