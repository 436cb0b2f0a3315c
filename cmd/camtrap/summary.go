package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"camtrap/internal/stage"
)

type counterView struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

type reportView struct {
	Stage    string        `json:"stage"`
	Counters []counterView `json:"counters"`
	Outputs  []string      `json:"outputs,omitempty"`
}

func viewReports(reports []stage.Report) []reportView {
	views := make([]reportView, 0, len(reports))
	for _, r := range reports {
		view := reportView{Stage: r.Stage, Counters: []counterView{}, Outputs: r.Outputs}
		for _, c := range r.Counters {
			view.Counters = append(view.Counters, counterView(c))
		}
		views = append(views, view)
	}
	return views
}

// printReports writes stage summaries to stdout, as a table or JSON.
func printReports(cmd *cobra.Command, asJSON bool, reports ...stage.Report) error {
	if asJSON {
		return writeJSON(cmd, viewReports(reports))
	}

	var rows [][]string
	var outputs []string
	for _, r := range reports {
		if len(r.Counters) == 0 {
			rows = append(rows, []string{r.Stage, "-", ""})
		}
		for _, c := range r.Counters {
			rows = append(rows, []string{r.Stage, c.Name, strconv.Itoa(c.Value)})
		}
		outputs = append(outputs, r.Outputs...)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, renderTable([]string{"Stage", "Counter", "Value"}, rows, []columnAlignment{alignLeft, alignLeft, alignRight}))
	for _, path := range outputs {
		fmt.Fprintf(out, "Wrote %s\n", path)
	}
	return nil
}
