package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/fkhayef/splitsettle/internal/config"
	"github.com/fkhayef/splitsettle/internal/ledger"
	"github.com/fkhayef/splitsettle/internal/money"
	"github.com/fkhayef/splitsettle/internal/planner"
)

func newPlanCmd(cfg *config.Config) *cobra.Command {
	var (
		verify bool
		asJSON bool
		file   string
	)

	cmd := &cobra.Command{
		Use:   "plan [group-id]",
		Short: "Print the settlement plan of a group, or of balances read from a JSON file",
		Example: `  splitsettle plan 3f2a... --verify
  splitsettle plan --file balances.json   # {"alice": 200, "bob": -100, "carol": -100}`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			codec := money.NewCodec(cfg.CurrencyExponent)

			var (
				balances ledger.Balances
				plan     []planner.Transaction
				err      error
			)
			switch {
			case file != "":
				balances, err = readBalances(file)
				if err != nil {
					return err
				}
				plan, err = planner.Plan(balances)
			case len(args) == 1:
				balances, plan, err = groupPlan(cmd, cfg, args[0])
			default:
				return errors.New("either a group id or --file is required")
			}
			if err != nil {
				return err
			}

			if verify {
				if err := verifyPlan(balances, plan); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(plan)
			}
			printPlan(out, codec, balances.Sorted(), plan)
			if verify {
				fmt.Fprintln(out, "verified: plan settles every balance")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&verify, "verify", false, "check that applying the plan zeroes every balance")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the plan as JSON")
	cmd.Flags().StringVar(&file, "file", "", "plan balances from a JSON object of user id to minor units")
	return cmd
}

func groupPlan(cmd *cobra.Command, cfg *config.Config, groupID string) (ledger.Balances, []planner.Transaction, error) {
	ctx := cmd.Context()
	db, err := openDatabase(ctx, cfg, false)
	if err != nil {
		return nil, nil, err
	}
	defer db.Close()

	a, err := newApp(ctx, cfg, db)
	if err != nil {
		return nil, nil, err
	}
	defer a.Close()

	groupBalances, err := a.settlement.GetGroupBalances(ctx, groupID)
	if err != nil {
		return nil, nil, err
	}

	// Plan from the same snapshot that is printed and verified.
	balances := make(ledger.Balances, len(groupBalances.Balances))
	for _, e := range groupBalances.Balances {
		balances[e.UserID] = e.Balance
	}
	plan, err := planner.Plan(balances)
	if err != nil {
		return nil, nil, err
	}
	return balances, plan, nil
}

func readBalances(path string) (ledger.Balances, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read balances: %w", err)
	}
	var balances ledger.Balances
	if err := json.Unmarshal(data, &balances); err != nil {
		return nil, fmt.Errorf("failed to parse balances: %w", err)
	}
	return balances, nil
}

func verifyPlan(balances ledger.Balances, plan []planner.Transaction) error {
	after, err := planner.Apply(balances, plan)
	if err != nil {
		return err
	}
	if !planner.Settled(after) {
		return fmt.Errorf("%w: plan leaves balances %v", ledger.ErrLedgerInconsistency, after)
	}
	return nil
}

func printPlan(w io.Writer, codec money.Codec, entries []ledger.Entry, plan []planner.Transaction) {
	fmt.Fprintln(w, "Balances:")
	for _, e := range entries {
		fmt.Fprintf(w, "  %-24s %12s\n", e.UserID, codec.Format(e.Balance))
	}
	if len(plan) == 0 {
		fmt.Fprintln(w, "Nothing to settle.")
		return
	}
	fmt.Fprintln(w, "Payments:")
	for _, tx := range plan {
		fmt.Fprintf(w, "  %s -> %s  %s\n", tx.From, tx.To, codec.Format(tx.Amount))
	}
}
