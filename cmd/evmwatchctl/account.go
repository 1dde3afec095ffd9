package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ethpandaops/evmstate/store/codec"
)

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Get or put an account's nonce/balance/code-hash record",
}

var accountGetCmd = &cobra.Command{
	Use:   "get <addr>",
	Args:  argsExact(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, err := parseAddress(args[0])
		if err != nil {
			return err
		}

		st, closeFn, err := openStore()
		if err != nil {
			return err
		}
		defer closeFn()

		rec, ok, err := st.GetAccount(addr)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("(no account record)")
			return nil
		}
		fmt.Printf("nonce: %d\nbalance: %s\ncodeHash: %x\n", rec.Nonce, rec.Balance.Dec(), rec.CodeHash)
		return nil
	},
}

var accountPutCmd = &cobra.Command{
	Use:   "put <addr> <nonce> <balance> [codeHash]",
	Args:  argsRange(3, 4),
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, err := parseAddress(args[0])
		if err != nil {
			return err
		}
		nonce, err := parseBlock(args[1])
		if err != nil {
			return err
		}
		balance, err := parseU256(args[2])
		if err != nil {
			return err
		}

		rec := &codec.AccountRecord{Nonce: nonce, Balance: balance}
		if len(args) == 4 {
			codeHash, err := parseHash32(args[3])
			if err != nil {
				return err
			}
			rec.CodeHash = codeHash
		}

		st, closeFn, err := openStore()
		if err != nil {
			return err
		}
		defer closeFn()

		return st.PutAccount(addr, rec)
	},
}

func init() {
	rootCmd.AddCommand(accountCmd)
	accountCmd.AddCommand(accountGetCmd, accountPutCmd)
}
