package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
)

// renderReport writes a pass/fail table and returns the number of failures.
func renderReport(out io.Writer, results []result) int {
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Model", "Result", "Status", "First byte", "Total", "Bytes", "Error"})
	table.SetAutoWrapText(false)

	failed := 0
	for _, r := range results {
		verdict := "PASS"
		if !r.ok() {
			verdict = "FAIL"
			failed++
		}
		table.Append([]string{
			r.Model,
			verdict,
			strconv.Itoa(r.StatusCode),
			formatDuration(r.FirstByte),
			formatDuration(r.Duration),
			strconv.Itoa(r.Bytes),
			truncate(r.Error, 80),
		})
	}
	table.SetFooter([]string{"", fmt.Sprintf("%d/%d", len(results)-failed, len(results)), "", "", "", "", ""})
	table.Render()
	return failed
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	return d.Round(time.Millisecond).String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
