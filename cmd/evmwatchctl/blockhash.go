package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var blockHashCmd = &cobra.Command{
	Use:   "block-hash",
	Short: "Get or put a block number's canonical hash",
}

var blockHashGetCmd = &cobra.Command{
	Use:   "get <block>",
	Args:  argsExact(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		block, err := parseBlock(args[0])
		if err != nil {
			return err
		}

		st, closeFn, err := openStore()
		if err != nil {
			return err
		}
		defer closeFn()

		hash, ok, err := st.GetBlockHash(block)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("(no block hash)")
			return nil
		}
		fmt.Printf("0x%x\n", hash)
		return nil
	},
}

var blockHashPutCmd = &cobra.Command{
	Use:   "put <block> <hash>",
	Args:  argsExact(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		block, err := parseBlock(args[0])
		if err != nil {
			return err
		}
		hash, err := parseHash32(args[1])
		if err != nil {
			return err
		}

		st, closeFn, err := openStore()
		if err != nil {
			return err
		}
		defer closeFn()

		return st.PutBlockHash(block, hash)
	},
}

func init() {
	rootCmd.AddCommand(blockHashCmd)
	blockHashCmd.AddCommand(blockHashGetCmd, blockHashPutCmd)
}
