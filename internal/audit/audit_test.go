package audit_test

import (
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/raysh454/miru/internal/audit"
	"github.com/raysh454/miru/internal/report"
	"github.com/raysh454/miru/internal/snapshot"
)

// defectivePage trips the images, headings, keyboard, semantics and language
// checks at once.
const defectivePage = `<html><body>
	<img src="x.png">
	<div onclick="go()">Go</div>
</body></html>`

func TestAuditor_Run_FindingsFollowCheckOrder(t *testing.T) {
	t.Parallel()

	rep := audit.RunAudit(mustParse(t, defectivePage))

	order := map[report.Category]int{
		report.CategoryImages:    0,
		report.CategoryHeadings:  1,
		report.CategoryContrast:  2,
		report.CategoryARIA:      3,
		report.CategoryKeyboard:  4,
		report.CategorySemantics: 5,
		report.CategoryLanguage:  6,
	}

	prev := -1
	for i, f := range rep.Findings {
		idx, ok := order[f.Category]
		if !ok {
			t.Fatalf("finding %d has unexpected category %q", i, f.Category)
		}
		if idx < prev {
			t.Errorf("finding %d (%s) appears out of check order", i, f.Category)
		}
		prev = idx
	}

	for _, cat := range []report.Category{
		report.CategoryImages,
		report.CategoryHeadings,
		report.CategoryKeyboard,
		report.CategorySemantics,
		report.CategoryLanguage,
	} {
		if len(byCategory(rep, cat)) == 0 {
			t.Errorf("defective page produced no %s finding", cat)
		}
	}
}

func TestAuditor_Run_SummaryMatchesFindings(t *testing.T) {
	t.Parallel()

	rep := audit.RunAudit(mustParse(t, defectivePage))

	if rep.SourceURL != "https://fixture.test/" {
		t.Errorf("source url = %q", rep.SourceURL)
	}
	if rep.GeneratedAt.IsZero() {
		t.Error("report carries no generation time")
	}

	var errors, warnings int
	for _, f := range rep.Findings {
		switch f.Severity {
		case report.SeverityError:
			errors++
		case report.SeverityWarning:
			warnings++
		default:
			t.Errorf("finding has unknown severity %q", f.Severity)
		}
	}
	if rep.Summary.Total != len(rep.Findings) {
		t.Errorf("summary total = %d, findings = %d", rep.Summary.Total, len(rep.Findings))
	}
	if rep.Summary.ErrorCount != errors || rep.Summary.WarningCount != warnings {
		t.Errorf("summary counts %+v do not match findings (%d errors, %d warnings)",
			rep.Summary, errors, warnings)
	}
	if rep.Summary.ErrorCount+rep.Summary.WarningCount != rep.Summary.Total {
		t.Errorf("summary severities do not add up: %+v", rep.Summary)
	}
}

func TestAuditor_Run_ElementReferencesPaired(t *testing.T) {
	t.Parallel()

	rep := audit.RunAudit(mustParse(t, defectivePage))
	if len(rep.Findings) == 0 {
		t.Fatal("defective page produced no findings")
	}
	for i, f := range rep.Findings {
		if (f.ElementSnippet == "") != (f.Selector == "") {
			t.Errorf("finding %d (%s) has unpaired element reference: snippet %q, selector %q",
				i, f.Category, f.ElementSnippet, f.Selector)
		}
	}
}

func TestAuditor_Run_Idempotent(t *testing.T) {
	t.Parallel()

	doc := mustParse(t, defectivePage)
	a := audit.New(nil, nil)

	first := a.Run(doc)
	second := a.Run(doc)

	if !reflect.DeepEqual(first.Findings, second.Findings) {
		t.Errorf("repeated audits disagree:\nfirst:  %+v\nsecond: %+v", first.Findings, second.Findings)
	}
	if first.Summary != second.Summary {
		t.Errorf("repeated audits disagree on summary: %+v vs %+v", first.Summary, second.Summary)
	}
}

func TestAuditor_Run_ContrastEvaluationCapped(t *testing.T) {
	t.Parallel()

	var b strings.Builder
	b.WriteString(`<html lang="en"><body>`)
	for i := 0; i < 2000; i++ {
		fmt.Fprintf(&b, `<p style="color:#777777">Row %d</p>`, i)
	}
	b.WriteString(`</body></html>`)

	doc := mustParse(t, b.String())
	if doc.Len() < 2000 {
		t.Fatalf("fixture too small: %d elements", doc.Len())
	}

	got := byCategory(audit.RunAudit(doc), report.CategoryContrast)
	if len(got) != 1000 {
		t.Fatalf("expected the contrast check to stop at 1000 evaluations, got %d findings", len(got))
	}
}

func TestAuditor_Run_ContrastCapConfigurable(t *testing.T) {
	t.Parallel()

	var b strings.Builder
	b.WriteString(`<html lang="en"><body>`)
	for i := 0; i < 10; i++ {
		fmt.Fprintf(&b, `<p style="color:#777777">Row %d</p>`, i)
	}
	b.WriteString(`</body></html>`)

	a := audit.New(&audit.Config{MaxTextCandidates: 5, MaxContrastChecks: 2}, nil)
	got := byCategory(a.Run(mustParse(t, b.String())), report.CategoryContrast)
	if len(got) != 2 {
		t.Fatalf("expected 2 contrast findings under the lowered cap, got %d", len(got))
	}
}

func TestAuditor_Run_PanickingCheckIsolated(t *testing.T) {
	t.Parallel()

	emit := func(msg string) audit.CheckFunc {
		return func(_ *audit.Auditor, _ *snapshot.Document) []report.Finding {
			return []report.Finding{{
				Severity: report.SeverityWarning,
				Category: report.CategoryHeadings,
				Message:  msg,
			}}
		}
	}

	a := audit.NewWithChecks(nil, nil, []audit.Check{
		{Name: "first", Run: emit("before")},
		{Name: "explode", Run: func(_ *audit.Auditor, _ *snapshot.Document) []report.Finding {
			panic("boom")
		}},
		{Name: "last", Run: emit("after")},
	})

	rep := a.Run(mustParse(t, `<html lang="en"><body><h1>x</h1></body></html>`))
	if len(rep.Findings) != 3 {
		t.Fatalf("expected 3 findings, got %d: %+v", len(rep.Findings), rep.Findings)
	}

	if rep.Findings[0].Message != "before" || rep.Findings[2].Message != "after" {
		t.Errorf("surrounding checks did not run in order: %+v", rep.Findings)
	}

	sys := rep.Findings[1]
	if sys.Category != report.CategorySystem {
		t.Errorf("category = %q, want system", sys.Category)
	}
	if sys.Severity != report.SeverityError {
		t.Errorf("severity = %q, want error", sys.Severity)
	}
	if sys.Message != "explode check failed: boom" {
		t.Errorf("unexpected message %q", sys.Message)
	}
	if sys.HasElement() {
		t.Errorf("system finding should carry no element reference, got selector %q", sys.Selector)
	}
}

func TestAuditor_Run_NilSnapshot(t *testing.T) {
	t.Parallel()

	rep := audit.New(nil, nil).Run(nil)
	if rep == nil {
		t.Fatal("Run(nil) returned no report")
	}
	if len(rep.Findings) != 1 {
		t.Fatalf("expected a single system finding, got %d: %+v", len(rep.Findings), rep.Findings)
	}
	f := rep.Findings[0]
	if f.Category != report.CategorySystem || f.Severity != report.SeverityError {
		t.Errorf("unexpected finding %+v", f)
	}
	if rep.Summary.Total != 1 || rep.Summary.ErrorCount != 1 {
		t.Errorf("unexpected summary %+v", rep.Summary)
	}
}
