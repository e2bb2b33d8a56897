package report

import "time"

// Severity buckets a finding by how strongly it blocks assistive-technology
// users. Only two levels exist: failures of a hard requirement are errors,
// everything that needs human review is a warning.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Category names the audit area a finding belongs to. CategorySystem is
// reserved for faults of the audit run itself, never for page content.
type Category string

const (
	CategoryImages    Category = "images"
	CategoryHeadings  Category = "headings"
	CategoryContrast  Category = "contrast"
	CategoryARIA      Category = "aria"
	CategoryKeyboard  Category = "keyboard"
	CategorySemantics Category = "semantics"
	CategoryLanguage  Category = "language"
	CategorySystem    Category = "system"
)

// ContrastDetails carries the numbers behind a contrast finding so a reader
// can verify the failure and apply the suggested replacement colors.
type ContrastDetails struct {
	// Ratio is the measured contrast ratio (1..21).
	Ratio float64 `json:"ratio"`

	// Required is the WCAG AA threshold that applied to this text.
	Required float64 `json:"required"`

	// FontSize is the computed font size in CSS pixels.
	FontSize float64 `json:"font_size"`

	// FontWeight is the computed numeric font weight.
	FontWeight int `json:"font_weight"`

	// Foreground and Background are the resolved colors as rgb() strings.
	Foreground string `json:"foreground"`
	Background string `json:"background"`

	// SuggestedForeground/SuggestedBackground are replacement colors that
	// would satisfy the Required ratio while staying close to the originals.
	SuggestedForeground string `json:"suggested_foreground,omitempty"`
	SuggestedBackground string `json:"suggested_background,omitempty"`
}

// Finding is one observed accessibility problem.
//
// ElementSnippet and Selector reference the offending node and are either
// both set or both empty: page-level findings (e.g. a missing heading
// structure) carry neither.
type Finding struct {
	// Severity is "error" or "warning".
	Severity Severity `json:"severity"`

	// Category is the audit area, e.g. "contrast" or "aria".
	Category Category `json:"category"`

	// Message is a short human-readable description of the problem.
	Message string `json:"message"`

	// ElementSnippet is the serialized markup of the offending node,
	// truncated to 100 characters.
	ElementSnippet string `json:"element_snippet,omitempty"`

	// Selector is a best-effort CSS-ish locator for the offending node:
	// id, then first class, then tag name.
	Selector string `json:"selector,omitempty"`

	// Details is present on contrast findings only.
	Details *ContrastDetails `json:"details,omitempty"`
}

// HasElement reports whether the finding references a concrete node.
func (f Finding) HasElement() bool {
	return f.ElementSnippet != "" && f.Selector != ""
}

// Summary aggregates the findings of one report.
type Summary struct {
	Total        int `json:"total"`
	ErrorCount   int `json:"error_count"`
	WarningCount int `json:"warning_count"`
}

// Report is the canonical audit output for a single page.
// Example:
//
//	{
//	  "source_url": "https://example.org/",
//	  "generated_at": "2025-11-02T10:31:04Z",
//	  "findings": [
//	    {
//	      "severity": "error",
//	      "category": "images",
//	      "message": "Image has no alt attribute",
//	      "element_snippet": "<img src=\"hero.png\">",
//	      "selector": "#hero"
//	    }
//	  ],
//	  "summary": {"total": 1, "error_count": 1, "warning_count": 0}
//	}
type Report struct {
	// SourceURL is the audited page.
	SourceURL string `json:"source_url"`

	// GeneratedAt is when the audit produced this report (UTC).
	GeneratedAt time.Time `json:"generated_at"`

	// Findings in check order. Never nil; a clean page has an empty slice.
	Findings []Finding `json:"findings"`

	// Summary counts derived from Findings.
	Summary Summary `json:"summary"`
}

// New builds a Report over the given findings, stamping the generation time
// and computing the summary. A nil findings slice is normalized to empty so
// a clean page still serializes with "findings": [].
func New(sourceURL string, findings []Finding) *Report {
	if findings == nil {
		findings = []Finding{}
	}
	r := &Report{
		SourceURL:   sourceURL,
		GeneratedAt: time.Now().UTC(),
		Findings:    findings,
	}
	r.Summary = Summarize(findings)
	return r
}

// Summarize counts findings per severity.
func Summarize(findings []Finding) Summary {
	s := Summary{Total: len(findings)}
	for _, f := range findings {
		switch f.Severity {
		case SeverityError:
			s.ErrorCount++
		case SeverityWarning:
			s.WarningCount++
		}
	}
	return s
}
