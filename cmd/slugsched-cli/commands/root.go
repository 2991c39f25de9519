package commands

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"slugsched-backend/lib/configutil"
	"slugsched-backend/lib/scrapers/classsearch"
	"slugsched-backend/lib/scrapers/rmp"
	"slugsched-backend/lib/serviceutil"
	"slugsched-backend/lib/sqliteutil"
	"slugsched-backend/services/catalog"
	"slugsched-backend/services/catalog/db"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

type Config struct {
	School   string            `json:"school"`
	Database sqliteutil.Config `json:"database"`
	Portal   struct {
		BaseUrl string `json:"base_url"`
	} `json:"portal"`
	Rmp struct {
		SchoolID   string `json:"school_id"`
		ThrottleMs int    `json:"throttle_ms"`
	} `json:"rmp"`
}

var rootCmd = &cobra.Command{
	Use:   "slugsched-cli",
	Short: "slugsched-cli scrapes the class search portal and links instructors to their ratings.",
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func readConfig() Config {
	cfg, err := configutil.ReadConfig[Config]("config.json5")
	if err != nil {
		serviceutil.Fatal("failed to read config", err)
	}
	return cfg
}

func openStore(cfg Config) (catalog.Store, *sql.DB) {
	database, err := sqliteutil.OpenDB(db.Schema, cfg.Database)
	if err != nil {
		serviceutil.Fatal("failed to open db", err)
	}
	return catalog.NewStore(database), database
}

func newPortalClient(ctx context.Context, cfg Config) *classsearch.Client {
	client, err := classsearch.NewClient(ctx, classsearch.ClientOptions{
		BaseUrl: cfg.Portal.BaseUrl,
	})
	if err != nil {
		serviceutil.Fatal("failed to initialize class search client", err)
	}
	return client
}

func newRmpClient(cfg Config) *rmp.Client {
	return rmp.NewClient(rmp.ClientOptions{
		SchoolID: cfg.Rmp.SchoolID,
		Throttle: time.Duration(cfg.Rmp.ThrottleMs) * time.Millisecond,
	})
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}
