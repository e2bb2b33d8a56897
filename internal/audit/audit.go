// Package audit is the accessibility engine: it takes a page snapshot and
// runs an ordered list of checks over it, producing a report.Report. The
// engine is synchronous and side-effect free; snapshot capture and report
// persistence live elsewhere.
package audit

import (
	"fmt"
	"time"

	"github.com/raysh454/miru/internal/logging"
	"github.com/raysh454/miru/internal/report"
	"github.com/raysh454/miru/internal/snapshot"
)

// CheckFunc inspects a snapshot and returns its findings. Implementations
// may assume a non-nil document with at least a root element.
type CheckFunc func(a *Auditor, doc *snapshot.Document) []report.Finding

// Check is one named entry of the engine's strategy list.
type Check struct {
	Name string
	Run  CheckFunc
}

// Auditor runs the check list over snapshots. Safe for concurrent use.
type Auditor struct {
	cfg    *Config
	logger logging.Logger
	checks []Check
}

// New constructs an auditor with the default check list. A nil cfg means
// defaults; a nil logger means silent.
func New(cfg *Config, logger logging.Logger) *Auditor {
	return NewWithChecks(cfg, logger, defaultChecks())
}

// NewWithChecks constructs an auditor with a custom check list. Checks run
// in slice order.
func NewWithChecks(cfg *Config, logger logging.Logger, checks []Check) *Auditor {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Auditor{
		cfg:    cfg.withDefaults(),
		logger: logger.With(logging.Field{Key: "component", Value: "audit"}),
		checks: checks,
	}
}

// defaultChecks returns the standard checks in their fixed run order.
func defaultChecks() []Check {
	return []Check{
		{Name: "images", Run: (*Auditor).checkImages},
		{Name: "headings", Run: (*Auditor).checkHeadings},
		{Name: "contrast", Run: (*Auditor).checkContrast},
		{Name: "aria", Run: (*Auditor).checkARIA},
		{Name: "keyboard", Run: (*Auditor).checkKeyboard},
		{Name: "semantics", Run: (*Auditor).checkSemantics},
		{Name: "language", Run: (*Auditor).checkLanguage},
	}
}

// Run audits one snapshot. It never fails: a fault inside a check degrades
// to a single system-category finding and the remaining checks still run.
// Auditing the same snapshot twice yields the same findings.
func (a *Auditor) Run(doc *snapshot.Document) *report.Report {
	start := time.Now()

	if doc == nil {
		rep := report.New("", []report.Finding{{
			Severity: report.SeverityError,
			Category: report.CategorySystem,
			Message:  "audit received no snapshot",
		}})
		a.logger.Error("audit ran without a snapshot")
		return rep
	}

	var findings []report.Finding
	for _, chk := range a.checks {
		findings = append(findings, a.runCheck(chk, doc)...)
	}

	rep := report.New(doc.URL, findings)
	a.logger.Info("audit complete",
		logging.Field{Key: "url", Value: doc.URL},
		logging.Field{Key: "findings", Value: rep.Summary.Total},
		logging.Field{Key: "errors", Value: rep.Summary.ErrorCount},
		logging.Field{Key: "warnings", Value: rep.Summary.WarningCount},
		logging.Field{Key: "duration_ms", Value: time.Since(start).Milliseconds()})
	return rep
}

// runCheck isolates one check: a panic becomes a system finding instead of
// aborting the run.
func (a *Auditor) runCheck(chk Check, doc *snapshot.Document) (out []report.Finding) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("check panicked",
				logging.Field{Key: "check", Value: chk.Name},
				logging.Field{Key: "panic", Value: fmt.Sprint(r)})
			out = []report.Finding{{
				Severity: report.SeverityError,
				Category: report.CategorySystem,
				Message:  fmt.Sprintf("%s check failed: %v", chk.Name, r),
			}}
		}
	}()
	return chk.Run(a, doc)
}

// RunAudit audits one snapshot with the default configuration and check
// list. This is the plain entry point for callers that do not need to hold
// an Auditor.
func RunAudit(doc *snapshot.Document) *report.Report {
	return New(nil, nil).Run(doc)
}
