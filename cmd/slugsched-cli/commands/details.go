package commands

import (
	"log/slog"
	"time"

	"slugsched-backend/lib/serviceutil"
	"slugsched-backend/services/catalog"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(detailsCmd)
}

var detailsCmd = &cobra.Command{
	Use:   "details",
	Short: "Visits detail pages for scraped courses and links discussion/lab sections to their lectures.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := readConfig()

		store, database := openStore(cfg)
		defer database.Close()

		client := newPortalClient(cmd.Context(), cfg)
		scraper := catalog.NewScraper(store, client, cfg.School)

		t1 := time.Now()
		err := scraper.LinkSubsections(cmd.Context())
		if err != nil {
			serviceutil.Fatal("linking subsections failed", err)
		}
		t2 := time.Now()

		slog.Info("detail pass time", "seconds", t2.Sub(t1).Seconds())
	},
}
