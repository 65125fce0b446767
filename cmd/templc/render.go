package main

import (
	"fmt"
	"strings"

	"doctemplates/cmd/templc/macro"

	"github.com/charmbracelet/lipgloss"
)

var (
	styleHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99"))

	styleName = lipgloss.NewStyle().
			Bold(true)

	styleDim = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

// templateSummary is one row of the template listing.
type templateSummary struct {
	name       string
	params     int
	levelDelta int
	uses       int // number of recorded parameter occurrences
}

func summarize(table macro.Table) []templateSummary {
	names := table.Names()
	out := make([]templateSummary, len(names))
	for i, name := range names {
		c := table[name]
		uses := 0
		for _, paths := range c.UsePaths() {
			uses += len(paths)
		}
		out[i] = templateSummary{
			name:       string(name),
			params:     c.ParamCount(),
			levelDelta: c.NestedLevelDelta(),
			uses:       uses,
		}
	}
	return out
}

// summaryColumns is the header shared by the list command and the browser.
var summaryColumns = []string{"NAME", "PARAMS", "LEVEL", "USES"}

func (s templateSummary) cells() []string {
	return []string{s.name, fmt.Sprint(s.params), fmt.Sprintf("+%d", s.levelDelta), fmt.Sprint(s.uses)}
}

// renderList prints the summaries as aligned columns under a styled header.
func renderList(rows []templateSummary) string {
	if len(rows) == 0 {
		return "no templates found"
	}
	widths := make([]int, len(summaryColumns))
	for i, h := range summaryColumns {
		widths[i] = len(h)
	}
	for _, r := range rows {
		for i, c := range r.cells() {
			if n := lipgloss.Width(c); n > widths[i] {
				widths[i] = n
			}
		}
	}

	var b strings.Builder
	for i, h := range summaryColumns {
		b.WriteString(styleHeader.Width(widths[i] + 2).Render(h))
	}
	b.WriteString("\n")
	for _, r := range rows {
		for i, c := range r.cells() {
			style := lipgloss.NewStyle()
			if i == 0 {
				style = styleName
			}
			b.WriteString(style.Width(widths[i] + 2).Render(c))
		}
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// renderDetail describes one compiled template: its slots, its body and where
// each slot occurs. src supplies the parameter names and may be zero.
func renderDetail(c *macro.CompiledTemplate, src macro.Template) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  params=%d  level=+%d\n", c.Name(), c.ParamCount(), c.NestedLevelDelta())
	b.WriteString(macro.SynopsisList(c.Body()))
	b.WriteString("\n")

	if c.ParamCount() == 0 {
		return strings.TrimSuffix(b.String(), "\n")
	}
	b.WriteString("use paths\n")
	paths := c.UsePaths()
	for slot := 0; slot < c.ParamCount(); slot++ {
		fmt.Fprintf(&b, "  #%d", slot)
		if name := paramName(src, slot); name != "" {
			b.WriteString(" " + name)
		}
		if len(paths[slot]) == 0 {
			b.WriteString("  unused\n")
			continue
		}
		for _, p := range paths[slot] {
			fmt.Fprintf(&b, "  %v", []int(p))
		}
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func paramName(src macro.Template, slot int) string {
	if slot < len(src.Params) {
		return string(src.Params[slot])
	}
	return ""
}
