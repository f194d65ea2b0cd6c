package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/resale-geojoin/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "resale-geojoin",
	Short: "Attach building coordinates to resale transactions by postal code",
	Long:  "Dissolves building footprints into one representative point per postal code, joins the points onto resale transactions and writes CSV, GeoJSON and optional database outputs.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
