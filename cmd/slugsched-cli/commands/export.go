package commands

import (
	"slugsched-backend/lib/serviceutil"
	"slugsched-backend/services/profmatch"

	"github.com/spf13/cobra"
)

var (
	exportIDsPath   *string
	syncIDsPath     *string
	syncRatingsPath *string
)

func init() {
	exportIDsPath = exportCmd.Flags().String("out", "rmp_ids.json", "Path to write the name-to-id map to.")
	syncIDsPath = syncCmd.Flags().String("ids", "rmp_ids.json", "Path to the name-to-id map to read.")
	syncRatingsPath = syncCmd.Flags().String("out", "rmp_ratings.json", "Path to write the ratings file to.")
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(syncCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export [--out <path>]",
	Short: "Writes the professor-name to directory-id map as a JSON file.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := readConfig()

		store, database := openStore(cfg)
		defer database.Close()

		resolver := profmatch.NewResolver(store, newRmpClient(cfg))
		err := resolver.ExportIDMap(cmd.Context(), *exportIDsPath)
		if err != nil {
			serviceutil.Fatal("exporting id map failed", err)
		}
	},
}

var syncCmd = &cobra.Command{
	Use:   "sync [--ids <path>] [--out <path>]",
	Short: "Refreshes the ratings JSON file from an exported id map.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := readConfig()

		store, database := openStore(cfg)
		defer database.Close()

		resolver := profmatch.NewResolver(store, newRmpClient(cfg))
		err := resolver.SyncRatingsFile(cmd.Context(), *syncIDsPath, *syncRatingsPath)
		if err != nil {
			serviceutil.Fatal("syncing ratings file failed", err)
		}
	},
}
