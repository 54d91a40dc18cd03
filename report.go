package main

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"estate_e2e/models"
)

func printRuns(out io.Writer, runs []models.SuiteRun) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTARTED\tSTATUS\tFILTER\tPASS\tFAIL\tSKIP")
	for _, r := range runs {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%d\t%d\n",
			r.ID, r.StartedAt.Local().Format("2006-01-02 15:04"), r.Status, r.Filter, r.Passed, r.Failed, r.Skipped)
	}
	w.Flush()
}

// printCounts lists scenario counts, highest first.
func printCounts(out io.Writer, counts map[string]int) {
	if len(counts) == 0 {
		fmt.Fprintln(out, "  none")
		return
	}
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] > counts[names[j]]
		}
		return names[i] < names[j]
	})
	for _, name := range names {
		fmt.Fprintf(out, "  %-40s %d\n", name, counts[name])
	}
}
