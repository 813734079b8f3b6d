package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/scopecraft/presales-cli/internal/config"
)

var cfg *config.Config

var (
	rootConfigFile string
	rootPolicyFile string
)

var rootCmd = &cobra.Command{
	Use:   "presales-cli",
	Short: "Presales estimation and financial modeling",
	Long:  "Scores scope items, normalizes effort against reference history, runs the cost and profitability model, goal-seeks pricing dials, and lays effort out on a timeline.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(rootConfigFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if rootPolicyFile != "" {
			cfg.Policy.Pack = rootPolicyFile
		}

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

func init() {
	rootCmd.PersistentFlags().StringVar(&rootConfigFile, "config", "", "config file (default ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&rootPolicyFile, "policy", "", "policy pack file (overrides config)")
}
