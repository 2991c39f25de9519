package commands

import (
	"strconv"

	"slugsched-backend/lib/serviceutil"
	"slugsched-backend/services/profmatch"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var matchDryRun *bool

func init() {
	matchDryRun = matchCmd.Flags().Bool("dry-run", false, "Score and report matches without writing links.")
	rootCmd.AddCommand(matchCmd)
}

var matchCmd = &cobra.Command{
	Use:   "match [--dry-run]",
	Short: "Matches scraped professors against the ratings directory.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := readConfig()

		store, database := openStore(cfg)
		defer database.Close()

		resolver := profmatch.NewResolver(store, newRmpClient(cfg))
		decisions, err := resolver.ResolveAll(cmd.Context(), profmatch.ResolveOptions{
			DryRun: *matchDryRun,
		})
		if err != nil {
			serviceutil.Fatal("matching failed", err)
		}

		t := newTable()
		t.AppendHeader(table.Row{"Professor", "Action", "Candidate", "Score"})

		for _, d := range decisions {
			candidate := ""
			score := ""
			if d.Candidate != nil {
				candidate = d.Candidate.LastName + ", " + d.Candidate.FirstName +
					" (" + strconv.FormatInt(d.Candidate.LegacyID, 10) + ")"
				score = strconv.Itoa(d.Score)
			}
			t.AppendRow(table.Row{d.Professor, string(d.Action), candidate, score})
		}

		t.Render()
	},
}
