package main

import (
	"github.com/spf13/cobra"

	"github.com/mind-engage/mindengage-adaptive/internal/config"
)

var rootCmd = &cobra.Command{
	Use:           "adaptived",
	Short:         "Adaptive learning backend",
	Long:          "adaptived grades student work, tracks topic mastery and plans learning paths over an HTTP API.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().String("db-driver", "", "Database driver: sqlite|postgres (overrides DB_DRIVER)")
	rootCmd.PersistentFlags().String("db-dsn", "", "Database DSN (overrides DB_DSN)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(addUserCmd)
}

// loadConfig reads dotenv + environment, then applies flag overrides.
func loadConfig(cmd *cobra.Command) config.Config {
	cfg := config.Load()
	if v, _ := cmd.Flags().GetString("db-driver"); v != "" {
		cfg.DBDriver = v
	}
	if v, _ := cmd.Flags().GetString("db-dsn"); v != "" {
		cfg.DBDSN = v
	}
	return cfg
}
