package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/nguyentantai21042004/wisdomflow/internal/domain"
	"github.com/nguyentantai21042004/wisdomflow/internal/pipeline"
)

// printSummary renders the per-unit outcome tables and the run tally.
func printSummary(st *pipeline.State) {
	if len(st.AcquireResults) > 0 {
		tw := table.NewWriter()
		tw.SetStyle(table.StyleRounded)
		tw.AppendHeader(table.Row{"Source", "Status", "Detail"})
		for _, r := range st.AcquireResults {
			tw.AppendRow(table.Row{r.Title, r.Status, acquireDetail(r)})
		}
		fmt.Println(tw.Render())
	}

	if len(st.RefineResults) > 0 {
		tw := table.NewWriter()
		tw.SetStyle(table.StyleRounded)
		tw.AppendHeader(table.Row{"Task", "Status", "Detail"})
		for _, r := range st.RefineResults {
			tw.AppendRow(table.Row{r.TaskID, r.Status, refineDetail(r)})
		}
		fmt.Println(tw.Render())
	}

	sum := st.Summary
	fmt.Printf("Acquired %d/%d sources (%d skipped, %d failed); refined %d/%d documents (%d skipped, %d failed).\n",
		sum.SourcesAcquired, sum.SourcesTotal, sum.SourcesSkipped, sum.SourcesFailed,
		sum.TasksRefined, sum.TasksTotal, sum.TasksSkipped, sum.TasksFailed)
}

func acquireDetail(r domain.AcquireResult) string {
	if r.Err != "" {
		return r.Err
	}
	return r.TranscriptFile
}

func refineDetail(r domain.RefineResult) string {
	if r.Err != "" {
		return r.Err
	}
	return r.OutputFile
}
