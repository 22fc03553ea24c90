package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/pit-fundamentals/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "pit-fundamentals",
	Short: "Point-in-time fundamental snapshot engine",
	Long:  "Builds point-in-time fundamental statement snapshots from SEC XBRL filings, as they would have been known as of a given cutoff date.",
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
