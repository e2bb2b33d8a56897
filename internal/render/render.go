// Package render turns audit reports into their delivery formats. Every
// rendering is a pure function of the report, so the same report always
// produces the same bytes.
package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/raysh454/miru/internal/report"
)

// Format names one report rendering.
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
	FormatHTML Format = "html"
)

// ParseFormat maps a user-supplied format name to a Format. An empty name
// selects JSON.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "text", "txt":
		return FormatText, nil
	case "html":
		return FormatHTML, nil
	}
	return "", fmt.Errorf("unknown report format %q (want json, text or html)", s)
}

// ContentType returns the MIME type for the rendering.
func (f Format) ContentType() string {
	switch f {
	case FormatText:
		return "text/plain; charset=utf-8"
	case FormatHTML:
		return "text/html; charset=utf-8"
	default:
		return "application/json"
	}
}

// Render produces the report in the given format.
func Render(rep *report.Report, f Format) ([]byte, error) {
	switch f {
	case FormatJSON:
		return JSON(rep)
	case FormatText:
		return []byte(Text(rep)), nil
	case FormatHTML:
		return HTML(rep)
	}
	return nil, fmt.Errorf("unknown report format %q", f)
}

// JSON renders the canonical JSON form, indented for reading.
func JSON(rep *report.Report) ([]byte, error) {
	out, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("render json: %w", err)
	}
	return out, nil
}

// Text renders a plain-text report: a three-line header followed by one
// numbered block per finding.
func Text(rep *report.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Accessibility report for %s\n", rep.SourceURL)
	fmt.Fprintf(&b, "Generated at %s\n", rep.GeneratedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "Findings: %d (%d errors, %d warnings)\n",
		rep.Summary.Total, rep.Summary.ErrorCount, rep.Summary.WarningCount)

	if len(rep.Findings) == 0 {
		b.WriteString("\nNo findings.\n")
		return b.String()
	}

	for i, f := range rep.Findings {
		fmt.Fprintf(&b, "\n%3d. [%s] %s: %s\n", i+1, f.Severity, f.Category, f.Message)
		if f.Selector != "" {
			fmt.Fprintf(&b, "     selector: %s\n", f.Selector)
		}
		if f.ElementSnippet != "" {
			fmt.Fprintf(&b, "     snippet:  %s\n", f.ElementSnippet)
		}
		if d := f.Details; d != nil {
			fmt.Fprintf(&b, "     measured: %.2f:1 (required %.1f:1) at %gpx weight %d\n",
				d.Ratio, d.Required, d.FontSize, d.FontWeight)
			fmt.Fprintf(&b, "     colors:   %s on %s\n", d.Foreground, d.Background)
			if d.SuggestedForeground != "" {
				fmt.Fprintf(&b, "     try:      foreground %s\n", d.SuggestedForeground)
			}
			if d.SuggestedBackground != "" {
				fmt.Fprintf(&b, "     try:      background %s\n", d.SuggestedBackground)
			}
		}
	}
	return b.String()
}

// HTML renders a standalone page around the findings table.
func HTML(rep *report.Report) ([]byte, error) {
	var buf bytes.Buffer
	if err := reportTmpl.Execute(&buf, rep); err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}
	return buf.Bytes(), nil
}

var reportTmpl = template.Must(template.New("report").Parse(reportTemplate))

const reportTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Accessibility report</title>
<style>
  body { font-family: system-ui, -apple-system, sans-serif; max-width: 64rem; margin: 2rem auto; padding: 0 1rem; color: #1a1a1a; }
  h1 { font-size: 1.4rem; }
  .meta { color: #555; }
  .summary { font-weight: 600; }
  table { border-collapse: collapse; width: 100%; margin-top: 1rem; }
  th, td { border: 1px solid #ccc; padding: 0.4rem 0.6rem; text-align: left; vertical-align: top; font-size: 0.9rem; }
  th { background: #f4f4f4; }
  td.sev-error { color: #a40000; font-weight: 600; }
  td.sev-warning { color: #8a6d00; font-weight: 600; }
  code { background: #f4f4f4; padding: 0.1rem 0.3rem; word-break: break-all; }
  .clean { color: #1a7a1a; font-weight: 600; }
  .details { color: #555; font-size: 0.85rem; }
</style>
</head>
<body>
<h1>Accessibility report</h1>
<p class="meta">{{.SourceURL}} (generated {{.GeneratedAt.Format "2006-01-02 15:04:05 MST"}})</p>
<p class="summary">{{.Summary.Total}} findings: {{.Summary.ErrorCount}} errors, {{.Summary.WarningCount}} warnings</p>
{{if .Findings}}
<table>
<tr><th>#</th><th>Severity</th><th>Category</th><th>Message</th><th>Element</th></tr>
{{range $i, $f := .Findings}}
<tr>
<td>{{$i}}</td>
<td class="sev-{{$f.Severity}}">{{$f.Severity}}</td>
<td>{{$f.Category}}</td>
<td>{{$f.Message}}
{{if $f.Details}}<div class="details">measured {{printf "%.2f" $f.Details.Ratio}}:1, required {{printf "%.1f" $f.Details.Required}}:1, {{$f.Details.Foreground}} on {{$f.Details.Background}}{{if $f.Details.SuggestedForeground}}; try {{$f.Details.SuggestedForeground}}{{end}}{{if $f.Details.SuggestedBackground}} on {{$f.Details.SuggestedBackground}}{{end}}</div>{{end}}
</td>
<td>{{if $f.Selector}}<code>{{$f.Selector}}</code><br><code>{{$f.ElementSnippet}}</code>{{end}}</td>
</tr>
{{end}}
</table>
{{else}}
<p class="clean">No findings.</p>
{{end}}
</body>
</html>
`
