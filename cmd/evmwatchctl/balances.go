package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ethpandaops/evmstate/store"
)

var balancesCmd = &cobra.Command{
	Use:   "balances <addr> <lo> <hi>",
	Short: "Dense fill-forward balance series for a watched address",
	Args:  argsExact(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, err := parseAddress(args[0])
		if err != nil {
			return err
		}
		lo, hi, err := parseRange(args[1], args[2])
		if err != nil {
			return err
		}

		st, closeFn, err := openStore()
		if err != nil {
			return err
		}
		defer closeFn()

		res, err := st.GetBalancesInRange(addr, lo, hi)
		if err != nil {
			return err
		}
		printQueryResult(res)
		return nil
	},
}

func parseRange(loArg, hiArg string) (uint64, uint64, error) {
	lo, err := parseBlock(loArg)
	if err != nil {
		return 0, 0, err
	}
	hi, err := parseBlock(hiArg)
	if err != nil {
		return 0, 0, err
	}
	if lo > hi {
		return 0, 0, usageErrorf("lo (%d) must not exceed hi (%d)", lo, hi)
	}
	return lo, hi, nil
}

func printQueryResult(res *store.QueryResult) {
	if res.Message != "" {
		fmt.Println("note:", res.Message)
	}
	for _, p := range res.Data {
		fmt.Printf("%d\t%s\n", p.Block, p.Balance.Dec())
	}
}

func init() {
	rootCmd.AddCommand(balancesCmd)
}
