package main

import (
	"github.com/spf13/cobra"

	"github.com/ethpandaops/evmstate/store"
)

var erc20DeltasDense bool

var erc20BalancesCmd = &cobra.Command{
	Use:   "erc20-balances <token> <owner> <lo> <hi>",
	Short: "Dense fill-forward ERC20 balance series for a watched (token, owner) pair",
	Args:  argsExact(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		to, err := parseTokenOwner(args[0], args[1])
		if err != nil {
			return err
		}
		lo, hi, err := parseRange(args[2], args[3])
		if err != nil {
			return err
		}

		st, closeFn, err := openStore()
		if err != nil {
			return err
		}
		defer closeFn()

		res, err := st.GetErc20BalancesInRange(to, lo, hi)
		if err != nil {
			return err
		}
		printQueryResult(res)
		return nil
	},
}

var erc20DeltasCmd = &cobra.Command{
	Use:   "erc20-deltas <token> <owner> <lo> <hi>",
	Short: "Per-block ERC20 delta series for a watched (token, owner) pair",
	Args:  argsExact(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		to, err := parseTokenOwner(args[0], args[1])
		if err != nil {
			return err
		}
		lo, hi, err := parseRange(args[2], args[3])
		if err != nil {
			return err
		}

		st, closeFn, err := openStore()
		if err != nil {
			return err
		}
		defer closeFn()

		res, err := st.GetErc20DeltasInRange(to, lo, hi, erc20DeltasDense)
		if err != nil {
			return err
		}
		printDeltaResult(res)
		return nil
	},
}

func parseTokenOwner(tokenArg, ownerArg string) (store.TokenOwner, error) {
	token, err := parseAddress(tokenArg)
	if err != nil {
		return store.TokenOwner{}, err
	}
	owner, err := parseAddress(ownerArg)
	if err != nil {
		return store.TokenOwner{}, err
	}
	return store.TokenOwner{Token: token, Owner: owner}, nil
}

func init() {
	erc20DeltasCmd.Flags().BoolVar(&erc20DeltasDense, "dense", false, "Zero-fill blocks with no recorded delta")
	rootCmd.AddCommand(erc20BalancesCmd, erc20DeltasCmd)
}
