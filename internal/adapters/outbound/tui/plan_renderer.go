package tui

import (
	"fmt"
	"strings"

	"github.com/imp-refactor/imp-refactor/internal/domain"
)

// PlanMode selects the header printed above each file of a plan.
type PlanMode int

const (
	PlanPreview PlanMode = iota
	PlanWrite
	PlanInteractive
)

func (m PlanMode) header() string {
	switch m {
	case PlanWrite:
		return "Updating:"
	case PlanInteractive:
		return "File:"
	default:
		return "Would update:"
	}
}

// RenderPlan formats every file of a fix plan.
func RenderPlan(plan *domain.FixPlan, mode PlanMode) string {
	var b strings.Builder

	if plan.ChangeCount() == 0 {
		b.WriteString(infoTagStyle.Render("info:") + " No changes to apply\n")
		return b.String()
	}

	renderIssues(&b, "Errors", errorTagStyle.Render("error"), plan.FileErrors)

	for _, fp := range plan.Files {
		b.WriteString(RenderFilePlan(fp, plan.RegistryName, mode))
		b.WriteString("\n")
	}

	if mode == PlanPreview {
		b.WriteString(infoTagStyle.Render("hint:") + " Use --write to apply changes\n")
	}
	return b.String()
}

// RenderFilePlan formats the changes for one file as
// `  <line>:<col>: <root>.<old> -> <root>.<new>`.
func RenderFilePlan(fp domain.FilePlan, rootName string, mode PlanMode) string {
	var b strings.Builder
	b.WriteString(warnTagStyle.Render(mode.header()) + " " + fp.Path + "\n")
	for _, c := range fp.Changes {
		loc := padRight(fmt.Sprintf("%d:%d:", c.Reference.Line, c.Reference.Column), 8)
		fmt.Fprintf(&b, "  %s %s -> %s\n",
			dimStyle.Render(loc),
			failStyle.Render(rootName+"."+c.Reference.Path),
			passStyle.Render(rootName+"."+c.NewPath),
		)
	}
	return b.String()
}

// RenderPlanSummary is printed before an interactive session starts.
func RenderPlanSummary(plan *domain.FixPlan) string {
	return fmt.Sprintf("\n%s %d change(s) in %d file(s)\n\n",
		headerStyle.Render("Found"), plan.ChangeCount(), len(plan.Files))
}

// RenderApplyReport formats the outcome of a write run.
func RenderApplyReport(report *domain.ApplyReport) string {
	var b strings.Builder

	renderIssues(&b, "Failed", errorTagStyle.Render("error"), report.Failed)

	for _, f := range report.Applied {
		line := fmt.Sprintf("  %s %s  %s", passStyle.Render("✓"), f.Path,
			dimStyle.Render(fmt.Sprintf("%d change(s)", f.Applied)))
		if f.Skipped > 0 {
			line += "  " + warnStyle.Render(fmt.Sprintf("%d out of range", f.Skipped))
		}
		b.WriteString(line + "\n")
	}

	if report.Aborted {
		b.WriteString("\n" + infoTagStyle.Render("info:") + " Aborted\n")
	}

	b.WriteString("  " + separatorLine + "\n")
	fmt.Fprintf(&b, "%s Applied %d change(s) in %d file(s), skipped %d file(s)\n",
		passStyle.Bold(true).Render("Done:"),
		report.AppliedChanges, len(report.Applied), len(report.SkippedFiles))
	return b.String()
}
