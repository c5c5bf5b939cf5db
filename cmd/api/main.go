package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fkhayef/splitsettle/internal/config"
	"github.com/fkhayef/splitsettle/pkg/logging"
)

// @title           SplitSettle API
// @version         1.0
// @description     Group debt settlement: balances, settlement plans and split bill payments.
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := &config.Config{}

	root := &cobra.Command{
		Use:           "splitsettle",
		Short:         "Group debt settlement service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load()
			if err != nil {
				return err
			}
			*cfg = *loaded
			logging.SetupWithLevel(logging.ParseLevel(cfg.LogLevel))
			return nil
		},
	}

	root.AddCommand(
		newServeCmd(cfg),
		newMigrateCmd(cfg),
		newPlanCmd(cfg),
	)
	return root
}
