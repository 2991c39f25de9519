package commands

import (
	"slugsched-backend/lib/serviceutil"
	"slugsched-backend/services/profmatch"

	"github.com/spf13/cobra"
)

var ratingsRefreshAll *bool

func init() {
	ratingsRefreshAll = ratingsCmd.Flags().Bool("refresh-all", false, "Refetch ratings for every linked professor, not just those missing them.")
	rootCmd.AddCommand(ratingsCmd)
}

var ratingsCmd = &cobra.Command{
	Use:   "ratings [--refresh-all]",
	Short: "Fetches rating summaries for linked professors into the database.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := readConfig()

		store, database := openStore(cfg)
		defer database.Close()

		resolver := profmatch.NewResolver(store, newRmpClient(cfg))
		err := resolver.FetchRatings(cmd.Context(), profmatch.FetchRatingsOptions{
			RefreshAll: *ratingsRefreshAll,
		})
		if err != nil {
			serviceutil.Fatal("fetching ratings failed", err)
		}
	},
}
