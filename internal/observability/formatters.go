// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/dumpstat/internal/records"
	"github.com/jonathan/dumpstat/internal/report"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 10
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintParseStats outputs the counters of a parse run.
func (p *Printer) PrintParseStats(stats records.Stats) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Files:      %d\n", stats.Files))
	sb.WriteString(fmt.Sprintf("Blocks:     %d\n", stats.Blocks))
	sb.WriteString(fmt.Sprintf("Records:    %d\n", stats.Records))
	sb.WriteString(fmt.Sprintf("Rejected:   %d\n", stats.Rejected))
	sb.WriteString(fmt.Sprintf("Collisions: %d", stats.Collisions))

	p.printBox("PARSED RECORDS", sb.String())
}

// PrintReport outputs the first rows of the size report, sizes in GiB.
func (p *Printer) PrintReport(rows []report.Row) {
	if len(rows) == 0 {
		p.printBox("SIZE REPORT", "No projects found")
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-28s %12s %12s\n", "Project", "FS (GiB)", "Index (GiB)"))

	count := min(len(rows), maxItemsToShow)
	for i := 0; i < count; i++ {
		r := rows[i]
		sb.WriteString(fmt.Sprintf("%-28s %12s %12s", truncate(r.Project, 28), size(r.FSTotalSize), size(r.IndexSize)))
		if i < count-1 {
			sb.WriteString("\n")
		}
	}
	if len(rows) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more projects", len(rows)-maxItemsToShow))
	}

	p.printBox("SIZE REPORT", sb.String())
}

func size(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.3f", *v)
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
