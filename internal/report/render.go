package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/olekukonko/tablewriter"
	"github.com/redactyl/licensebanner/internal/types"
)

const separator = "\n\n---\n\n"

func textList(deps []types.Dependency) string {
	blocks := make([]string, 0, len(deps))
	for _, d := range deps {
		blocks = append(blocks, textBlock(d))
	}
	return strings.Join(blocks, separator)
}

func textGrouped(deps []types.Dependency) string {
	var b strings.Builder
	for i, g := range GroupByLicense(deps) {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "License: %s (%d)\n", g.License, len(g.Dependencies))
		b.WriteString(strings.Repeat("=", len(g.License)+len(strconv.Itoa(len(g.Dependencies)))+12))
		b.WriteString("\n\n")
		b.WriteString(textList(g.Dependencies))
	}
	return b.String()
}

func textBlock(d types.Dependency) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Name: %s\n", d.Name)
	fmt.Fprintf(&b, "Version: %s\n", d.Version)
	fmt.Fprintf(&b, "License: %s\n", d.License())
	fmt.Fprintf(&b, "Private: %t\n", d.Private)
	if d.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", d.Description)
	}
	if d.Repository != "" {
		fmt.Fprintf(&b, "Repository: %s\n", d.Repository)
	}
	if d.Homepage != "" {
		fmt.Fprintf(&b, "Homepage: %s\n", d.Homepage)
	}
	if d.Author != "" {
		fmt.Fprintf(&b, "Author: %s\n", d.Author)
	}
	if len(d.Contributors) > 0 {
		b.WriteString("Contributors:\n")
		for _, p := range d.Contributors {
			fmt.Fprintf(&b, "  %s\n", p)
		}
	}
	if d.LicenseText != "" {
		b.WriteString("License Copyright:\n===\n\n")
		b.WriteString(strings.TrimSpace(d.LicenseText))
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}

func writeTable(w io.Writer, deps []types.Dependency) error {
	table := tablewriter.NewWriter(w)
	table.Header("Name", "Version", "License", "Repository")
	for _, d := range deps {
		lic := d.License()
		if lic == "" {
			lic = UnknownLicense
		}
		if err := table.Append(d.Name, d.Version, lic, d.Repository); err != nil {
			return err
		}
	}
	return table.Render()
}

// SummaryOptions tune PrintSummary.
type SummaryOptions struct {
	NoColor    bool
	Violations []Violation
}

var (
	headStyle    = lipgloss.NewStyle().Bold(true)
	licenseStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	unknownStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	badStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// PrintSummary writes a terminal summary of deps grouped by license.
func PrintSummary(w io.Writer, deps []types.Dependency, opts SummaryOptions) {
	render := func(s lipgloss.Style, text string) string {
		if opts.NoColor {
			return text
		}
		return s.Render(text)
	}
	if len(deps) == 0 {
		fmt.Fprintln(w, "No third-party dependencies found ✅")
		return
	}

	groups := GroupByLicense(deps)
	fmt.Fprintln(w, render(headStyle, fmt.Sprintf("Dependencies: %d", len(deps))))
	unknown := 0
	for _, g := range groups {
		style := licenseStyle
		if g.License == UnknownLicense {
			style = unknownStyle
			unknown = len(g.Dependencies)
		}
		fmt.Fprintf(w, "\n%s %s\n", render(style, g.License), render(dimStyle, fmt.Sprintf("(%d)", len(g.Dependencies))))
		for _, d := range g.Dependencies {
			fmt.Fprintf(w, "  %s %s\n", d.Name, render(dimStyle, d.Version))
		}
	}

	if len(opts.Violations) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, render(badStyle, fmt.Sprintf("Policy violations: %d", len(opts.Violations))))
		for _, v := range opts.Violations {
			fmt.Fprintf(w, "  %s\n", v)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Licenses: %d (unknown: %d)\n", len(groups)-boolToInt(unknown > 0), unknown)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
