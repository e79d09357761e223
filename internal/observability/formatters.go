// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/jonathan/founder-scout/internal/dedupe"
	"github.com/jonathan/founder-scout/internal/pipeline"
	"github.com/jonathan/founder-scout/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxCellWidth truncates long cells such as bios and URLs
	maxCellWidth = 48
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

func (p *Printer) newTable(headers ...string) table.Writer {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.SetOutputMirror(p.out)
	row := make(table.Row, len(headers))
	for i, h := range headers {
		row[i] = h
	}
	tw.AppendHeader(row)
	return tw
}

// PrintSummary outputs run totals followed by one row per organization.
func (p *Printer) PrintSummary(s *pipeline.Summary) {
	if s == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Processed:         %d\n", s.Processed))
	sb.WriteString(fmt.Sprintf("Skipped:           %d\n", s.Skipped))
	sb.WriteString(fmt.Sprintf("Failed:            %d\n", s.Failed))
	sb.WriteString(fmt.Sprintf("Founders found:    %d\n", s.FoundersFound))
	sb.WriteString(fmt.Sprintf("Inserted/updated:  %d/%d (%d unchanged)\n", s.Inserted, s.Updated, s.Unchanged))
	sb.WriteString(fmt.Sprintf("Strategy failures: %d", s.StrategyFailures))
	p.printBox("EXTRACTION RUN", sb.String())

	if len(s.Results) == 0 {
		return
	}
	tw := p.newTable("Organization", "Status", "Founders", "New", "Updated", "Sources", "Reason")
	for _, r := range s.Results {
		tw.AppendRow(table.Row{
			truncate(r.Organization.DisplayName(), 30),
			string(r.Status),
			len(r.Drafts),
			r.Inserted,
			r.Updated,
			formatSources(r.Sources),
			truncate(r.Reason, maxCellWidth),
		})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
	})
	tw.Render()
}

// PrintFounders outputs reconciled founders, one row each.
func (p *Printer) PrintFounders(founders []types.FounderRecord) {
	if len(founders) == 0 {
		p.printBox("FOUNDERS", "No founders found")
		return
	}
	tw := p.newTable("Name", "Role", "LinkedIn", "Twitter", "Profile")
	for _, f := range founders {
		tw.AppendRow(table.Row{
			f.Name,
			f.Role,
			truncate(f.LinkedInURL, maxCellWidth),
			truncate(f.TwitterURL, maxCellWidth),
			truncate(f.ProfileURL, maxCellWidth),
		})
	}
	tw.Render()
}

// PrintCandidates outputs raw candidates with the strategy that produced them.
func (p *Printer) PrintCandidates(candidates []types.PersonCandidate) {
	if len(candidates) == 0 {
		return
	}
	tw := p.newTable("Strategy", "Name", "Role", "Context")
	for _, c := range candidates {
		tw.AppendRow(table.Row{c.SourceStrategy.String(), c.Name, c.Role, truncate(c.SectionContext, maxCellWidth)})
	}
	tw.Render()
}

// PrintDedupeReport outputs the merge groups and which rows survive.
func (p *Printer) PrintDedupeReport(report *dedupe.Report) {
	if report == nil {
		return
	}
	title := "ORGANIZATION DEDUPLICATION"
	if report.DryRun {
		title += " (dry run)"
	}
	p.printBox(title, fmt.Sprintf("Groups: %d\nRows removed: %d", len(report.Groups), report.Removed))
	if len(report.Groups) == 0 {
		return
	}

	tw := p.newTable("Match", "Key", "Keep", "Discard")
	for _, g := range report.Groups {
		discard := make([]string, 0, len(g.Discard))
		for _, d := range g.Discard {
			discard = append(discard, d.ID.String())
		}
		tw.AppendRow(table.Row{
			string(g.Match),
			truncate(g.Key, maxCellWidth),
			g.Keep.ID.String(),
			strings.Join(discard, "\n"),
		})
	}
	tw.Render()
}

func formatSources(sources map[types.Strategy]int) string {
	if len(sources) == 0 {
		return "-"
	}
	keys := make([]types.Strategy, 0, len(sources))
	for k := range sources {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d", k, sources[k]))
	}
	return strings.Join(parts, " ")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
