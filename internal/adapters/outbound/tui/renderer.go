package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/imp-refactor/imp-refactor/internal/domain"
)

// ── warm palette ──
var (
	accent  = lipgloss.Color("#D97706") // amber
	fg      = lipgloss.Color("#E8E6E3") // warm light gray
	dim     = lipgloss.Color("#6B7280") // muted gray
	faint   = lipgloss.Color("#3F3F46") // very dim
	success = lipgloss.Color("#22C55E") // green
	danger  = lipgloss.Color("#EF4444") // red
	warning = lipgloss.Color("#F59E0B") // amber-yellow
	info    = lipgloss.Color("#8B949E") // soft blue-gray
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			Align(lipgloss.Center)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(0, 4).
			Align(lipgloss.Center).
			Width(68)

	dimStyle      = lipgloss.NewStyle().Foreground(dim)
	faintStyle    = lipgloss.NewStyle().Foreground(faint)
	passStyle     = lipgloss.NewStyle().Foreground(success)
	failStyle     = lipgloss.NewStyle().Foreground(danger)
	warnStyle     = lipgloss.NewStyle().Foreground(warning)
	errorTagStyle = lipgloss.NewStyle().Foreground(danger).Bold(true)
	warnTagStyle  = lipgloss.NewStyle().Foreground(warning).Bold(true)
	infoTagStyle  = lipgloss.NewStyle().Foreground(info).Bold(true)
	fileStyle     = lipgloss.NewStyle().Foreground(dim)
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(fg)
	separatorLine = faintStyle.Render(strings.Repeat("─", 64))
)

// FormatBroken renders one broken reference as a single uncoloured line:
//
//	<file>:<line>:<col> <oldPath>  -> <suggestion>
//	<file>:<line>:<col> <oldPath>  (<reason>)
func FormatBroken(b domain.BrokenReference) string {
	loc := fmt.Sprintf("%s:%d:%d %s", b.File, b.Line, b.Column, b.Path)
	if b.HasSuggestion() {
		return loc + "  -> " + b.Suggestion
	}
	return loc + "  (" + reasonOf(b) + ")"
}

// RenderDetection formats a detection run for the terminal. With verbose
// set the diagnostics counters are printed before the findings.
func RenderDetection(result *domain.DetectionResult, verbose bool) string {
	var b strings.Builder
	d := result.Diagnostics

	if verbose {
		title := headerStyle.Render("imp-refactor")
		subtitle := dimStyle.Render("registry: " + registryLabel(result.RegistryName, result.GitRef))
		stats := fmt.Sprintf("%d files  ·  %d refs  ·  %d valid  ·  %d broken",
			d.FilesScanned, d.TotalRefs, d.ValidRefs, d.BrokenRefs)
		suggestions := fmt.Sprintf("%d suggestions  ·  %d unsuggestable", d.SuggestionsFound, d.Unsuggestable)
		b.WriteString(boxStyle.Render(title + "\n" + subtitle + "\n\n" + stats + "\n" + dimStyle.Render(suggestions)))
		b.WriteString("\n\n")
	}

	renderIssues(&b, "Errors", errorTagStyle.Render("error"), result.FileErrors)
	renderIssues(&b, "Warnings", warnTagStyle.Render("warn "), result.Warnings)

	if len(result.Broken) == 0 {
		b.WriteString(passStyle.Render("ok:") + " No broken references found\n")
		return b.String()
	}

	fmt.Fprintf(&b, "%s %d broken reference(s):\n\n", failStyle.Bold(true).Render("Found"), len(result.Broken))
	for _, br := range result.Broken {
		b.WriteString("  " + styleBroken(br) + "\n")
	}
	b.WriteString("\n")
	return b.String()
}

func styleBroken(b domain.BrokenReference) string {
	loc := dimStyle.Render(fmt.Sprintf("%s:%d:%d", b.File, b.Line, b.Column))
	line := loc + " " + failStyle.Render(b.Path)
	if b.HasSuggestion() {
		return line + "  " + passStyle.Render("-> "+b.Suggestion)
	}
	return line + "  " + dimStyle.Render("("+reasonOf(b)+")")
}

func renderIssues(b *strings.Builder, title, tag string, issues []domain.FileIssue) {
	if len(issues) == 0 {
		return
	}
	fmt.Fprintf(b, "  %s %s\n", titleStyle.Render(title), dimStyle.Render(fmt.Sprintf("(%d)", len(issues))))
	for _, issue := range issues {
		fmt.Fprintf(b, "    %s %s\n", tag, fileStyle.Render(issue.File))
		fmt.Fprintf(b, "          %s\n", dimStyle.Render(issue.Message))
	}
	b.WriteString("\n")
}

func reasonOf(b domain.BrokenReference) string {
	if b.Reason == "" {
		return "no suggestion"
	}
	return b.Reason
}

func registryLabel(name, gitRef string) string {
	if gitRef == "" {
		return name
	}
	return name + " @ " + gitRef
}

// RenderFileList formats the output of `scan`.
func RenderFileList(files []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Would scan %d files:\n", len(files))
	for _, f := range files {
		b.WriteString("  " + f + "\n")
	}
	return b.String()
}

// RenderHistory formats the apply log for terminal output.
func RenderHistory(entries []domain.ApplyEntry) string {
	if len(entries) == 0 {
		return "  " + dimStyle.Render("No apply history found.") + "\n"
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString("  " + titleStyle.Render("Apply History") + "\n")
	b.WriteString("  " + faintStyle.Render(strings.Repeat("─", 50)) + "\n\n")

	for _, e := range entries {
		hash := e.CommitHash
		if len(hash) > 7 {
			hash = hash[:7]
		}
		if hash == "" {
			hash = "·······"
		}
		ts := e.Timestamp
		if len(ts) > 19 {
			ts = ts[:19]
		}

		fmt.Fprintf(&b, "  %s  %s  %s  %s\n",
			dimStyle.Render(ts),
			faintStyle.Render(hash),
			titleStyle.Render(registryLabel(e.RegistryName, e.GitRef)),
			passStyle.Render(fmt.Sprintf("%d change(s) in %d file(s)", e.ChangeCount(), len(e.Files))),
		)
	}

	return b.String()
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
