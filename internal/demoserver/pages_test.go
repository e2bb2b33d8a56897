package demoserver_test

import (
	"maps"
	"strings"
	"testing"

	"github.com/raysh454/miru/internal/audit"
	"github.com/raysh454/miru/internal/demoserver"
	"github.com/raysh454/miru/internal/report"
	"github.com/raysh454/miru/internal/snapshot"
)

// auditVersion parses one stored page version and runs the default checks
// over it.
func auditVersion(t *testing.T, page demoserver.PageDefinition, version int) *report.Report {
	t.Helper()
	pv, ok := page.Versions[version]
	if !ok {
		t.Fatalf("page %s has no version %d", page.Path, version)
	}
	doc, err := snapshot.ParseHTML("http://demo.local"+page.Path, []byte(pv.HTML), nil)
	if err != nil {
		t.Fatalf("ParseHTML(%s v%d) failed: %v", page.Path, version, err)
	}
	return audit.RunAudit(doc)
}

func maxVersion(page demoserver.PageDefinition) int {
	max := 0
	for v := range page.Versions {
		if v > max {
			max = v
		}
	}
	return max
}

func countCategories(rep *report.Report) map[report.Category]int {
	counts := make(map[report.Category]int)
	for _, f := range rep.Findings {
		counts[f.Category]++
	}
	return counts
}

func TestDefectivePages_FlagTheirCategories(t *testing.T) {
	t.Parallel()

	want := map[string]map[report.Category]int{
		"/gallery":   {report.CategoryImages: 2},
		"/article":   {report.CategoryHeadings: 1},
		"/pricing":   {report.CategoryContrast: 2},
		"/search":    {report.CategoryARIA: 2},
		"/tools":     {report.CategoryKeyboard: 2},
		"/dashboard": {report.CategorySemantics: 2, report.CategoryKeyboard: 1},
		"/welcome":   {report.CategoryLanguage: 1},
	}

	for _, page := range demoserver.GetAllPages() {
		wantCounts, ok := want[page.Path]
		if !ok {
			continue // the home page has no defective version
		}
		got := countCategories(auditVersion(t, page, 1))
		if !maps.Equal(got, wantCounts) {
			t.Errorf("%s v1 findings by category = %v, want %v", page.Path, got, wantCounts)
		}
	}
}

func TestRepairedPages_AuditClean(t *testing.T) {
	t.Parallel()

	for _, page := range demoserver.GetAllPages() {
		v := maxVersion(page)
		rep := auditVersion(t, page, v)
		if len(rep.Findings) != 0 {
			t.Errorf("%s v%d produced findings: %+v", page.Path, v, rep.Findings)
		}
	}
}

func TestHomePage_LinksEveryDemoPage(t *testing.T) {
	t.Parallel()

	pages := demoserver.GetAllPages()
	var home string
	for _, p := range pages {
		if p.Path == "/" {
			home = p.Versions[1].HTML
		}
	}
	if home == "" {
		t.Fatal("no home page definition")
	}
	for _, p := range pages {
		if p.Path == "/" {
			continue
		}
		if !strings.Contains(home, `href="`+p.Path+`"`) {
			t.Errorf("home page does not link %s", p.Path)
		}
	}
}
