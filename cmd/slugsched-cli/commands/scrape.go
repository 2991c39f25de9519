package commands

import (
	"log/slog"
	"time"

	"slugsched-backend/lib/serviceutil"
	"slugsched-backend/services/catalog"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(scrapeCmd)
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrapes the current term's course listings into the database.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := readConfig()

		store, database := openStore(cfg)
		defer database.Close()

		client := newPortalClient(cmd.Context(), cfg)
		scraper := catalog.NewScraper(store, client, cfg.School)

		t1 := time.Now()
		err := scraper.Run(cmd.Context())
		if err != nil {
			serviceutil.Fatal("scrape failed", err)
		}
		t2 := time.Now()

		slog.Info("scraping time", "seconds", t2.Sub(t1).Seconds())
	},
}
