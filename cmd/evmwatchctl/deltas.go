package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ethpandaops/evmstate/store"
)

var deltasDense bool

var deltasCmd = &cobra.Command{
	Use:   "deltas <addr> <lo> <hi>",
	Short: "Per-block delta series for a watched address",
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

		res, err := st.GetDeltasInRange(addr, lo, hi, deltasDense)
		if err != nil {
			return err
		}
		printDeltaResult(res)
		return nil
	},
}

func printDeltaResult(res *store.DeltaResult) {
	if res.Message != "" {
		fmt.Println("note:", res.Message)
	}
	for _, p := range res.Data {
		fmt.Printf("%d\t+%s\t-%s\ttxs=%d\n", p.Block, p.DeltaPlus.Dec(), p.DeltaMinus.Dec(), p.TxCount)
	}
}

func init() {
	deltasCmd.Flags().BoolVar(&deltasDense, "dense", false, "Zero-fill blocks with no recorded delta")
	rootCmd.AddCommand(deltasCmd)
}
