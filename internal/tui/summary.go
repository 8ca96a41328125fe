package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Summary describes one finished conversion.
type Summary struct {
	SessionID  string
	Document   string
	Digest     string
	Classes    map[string]int
	Records    int
	Passes     int
	Converged  bool
	Unresolved int
	Outputs    []string
}

// RenderSummary formats s. Styled output uses a bordered box; plain output
// is one "label: value" line per entry.
func RenderSummary(s Summary, styled bool) string {
	rows := summaryRows(s)

	if !styled {
		var b strings.Builder
		for _, r := range rows {
			fmt.Fprintf(&b, "%-12s %s\n", r[0]+":", r[1])
		}
		for _, o := range s.Outputs {
			fmt.Fprintf(&b, "%s\n", o)
		}
		return b.String()
	}

	lines := []string{TitleStyle.Render("Conversion summary"), ""}
	for _, r := range rows {
		lines = append(lines, LabelStyle.Render(fmt.Sprintf("%-12s", r[0]))+" "+ValueStyle.Render(r[1]))
	}
	if len(s.Outputs) > 0 {
		lines = append(lines, "")
		for _, o := range s.Outputs {
			lines = append(lines, SuccessStyle.Render(SymbolCheck)+" "+o)
		}
	}
	if !s.Converged {
		lines = append(lines, "", WarningStyle.Render(SymbolWarning+" resolution stopped at the pass cap"))
	}
	return BoxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...)) + "\n"
}

func summaryRows(s Summary) [][2]string {
	short := s.Digest
	if len(short) > 12 {
		short = short[:12]
	}
	converged := "yes"
	if !s.Converged {
		converged = "no"
	}
	return [][2]string{
		{"Session", s.SessionID},
		{"Document", s.Document},
		{"SHA-256", short},
		{"Classes", formatClasses(s.Classes)},
		{"Records", fmt.Sprint(s.Records)},
		{"Passes", fmt.Sprintf("%d (converged: %s)", s.Passes, converged)},
		{"Unresolved", fmt.Sprint(s.Unresolved)},
	}
}

// formatClasses lists classes by name with their counts ("Bay=1, Breaker=2").
func formatClasses(classes map[string]int) string {
	if len(classes) == 0 {
		return "none"
	}
	names := make([]string, 0, len(classes))
	for name := range classes {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s=%d", name, classes[name])
	}
	return strings.Join(parts, ", ")
}
