package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"

	"github.com/JonMunkholm/leaddist/internal/core"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)

// writeFileLine prints "name  FORMAT  size".
func writeFileLine(w io.Writer, name string, format core.Format, size int) {
	fmt.Fprintf(w, "%s  %s  %s\n", titleStyle.Render(name), format, humanize.Bytes(uint64(size)))
}

// writeCheckReport prints accepted/rejected counts and one line per rejection.
func writeCheckReport(w io.Writer, result core.ValidationResult) {
	fmt.Fprintf(w, "%s %s\n", okStyle.Render("accepted:"), humanize.Comma(int64(len(result.Accepted))))
	fmt.Fprintf(w, "%s %s\n", warnStyle.Render("rejected:"), humanize.Comma(int64(len(result.Rejected))))
	if len(result.Rejected) == 0 {
		return
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Row", "Reason", "FirstName", "Phone")
	for _, r := range result.Rejected {
		t.Row(strconv.Itoa(r.Row), r.Error, r.RawFields["FirstName"], r.RawFields["Phone"])
	}
	fmt.Fprintln(w, t.Render())
}

// writePlanReport prints the per-agent split of a recorded plan.
func writePlanReport(w io.Writer, out *core.Outcome) {
	s := out.Summary
	fmt.Fprintf(w, "%s %s\n", titleStyle.Render("distribution"), out.ID)
	fmt.Fprintf(w, "%s records to %d agents, %s skipped\n",
		humanize.Comma(int64(s.TotalRecords)), s.AgentsUsed, humanize.Comma(int64(s.SkippedCount)))

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Agent", "ID", "Records")
	for _, a := range s.RecordsPerAgent {
		t.Row(a.AgentName, a.AgentID, humanize.Comma(int64(a.RecordCount)))
	}
	fmt.Fprintln(w, t.Render())
}
