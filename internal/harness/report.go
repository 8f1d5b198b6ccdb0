package harness

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

const pathSeparator = " → "

// WriteReport renders the per-run table and the summary to w.
func WriteReport(w io.Writer, r *Report) {
	runs := table.NewWriter()
	runs.SetOutputMirror(w)
	runs.SetStyle(table.StyleLight)
	runs.SetTitle("Batch %s", r.RunID)
	runs.AppendHeader(table.Row{"#", "Outcome", "Length", "Path"})
	runs.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, WidthMax: 100},
	})
	for _, run := range r.Runs {
		runs.AppendRow(runRow(run))
	}
	runs.Render()

	fmt.Fprintln(w)
	WriteSummary(w, r.TargetTitle, r.Stats)
}

// WriteSummary renders the summary statistics and the most visited articles.
func WriteSummary(w io.Writer, targetTitle string, s Stats) {
	if targetTitle == "" {
		targetTitle = "target"
	}

	summary := table.NewWriter()
	summary.SetOutputMirror(w)
	summary.SetStyle(table.StyleLight)
	summary.SetTitle("Summary")
	summary.AppendRows([]table.Row{
		{"Paths tested", s.Total},
		{"Failed traversals", s.Failed},
		{"Reached " + targetTitle, fmt.Sprintf("%d (%.2f%%)", s.Reached, s.SuccessRate)},
	})
	if s.Reached > 0 {
		summary.AppendRows([]table.Row{
			{"Average path length", fmt.Sprintf("%.2f articles", s.AverageLength)},
			{"Shortest path", fmt.Sprintf("%d articles", s.Shortest)},
			{"Longest path", fmt.Sprintf("%d articles", s.Longest)},
		})
	}
	summary.Render()

	if len(s.TopArticles) == 0 {
		return
	}
	fmt.Fprintln(w)

	top := table.NewWriter()
	top.SetOutputMirror(w)
	top.SetStyle(table.StyleLight)
	top.SetTitle("Most common articles in paths")
	top.AppendHeader(table.Row{"#", "Article", "Paths"})
	for i, a := range s.TopArticles {
		top.AppendRow(table.Row{i + 1, a.Title, a.Count})
	}
	top.Render()
}

func runRow(run Run) table.Row {
	if run.Result == nil {
		return table.Row{run.Index, "error", 0, errorText(run.Err)}
	}
	outcome := string(run.Result.Outcome)
	path := strings.Join(run.Result.Path, pathSeparator)
	if run.Err != nil {
		path += " (" + errorText(run.Err) + ")"
	}
	return table.Row{run.Index, outcome, len(run.Result.Path), path}
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
