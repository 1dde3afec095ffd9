package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ethpandaops/evmstate/store/codec"
)

var headerCmd = &cobra.Command{
	Use:   "header",
	Short: "Get or put a block's header record",
}

var headerGetCmd = &cobra.Command{
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

		rec, ok, err := st.GetHeader(block)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("(no header)")
			return nil
		}
		fmt.Printf("number: %d\nhash: %x\nparentHash: %x\nbaseFee: %s\ntimestamp: %d\n",
			rec.Number, rec.Hash, rec.ParentHash, rec.BaseFee.Dec(), rec.Timestamp)
		return nil
	},
}

var headerPutCmd = &cobra.Command{
	Use:   "put <block> <hash> <parentHash> <timestamp> [baseFee]",
	Args:  argsRange(4, 5),
	RunE: func(cmd *cobra.Command, args []string) error {
		block, err := parseBlock(args[0])
		if err != nil {
			return err
		}
		hash, err := parseHash32(args[1])
		if err != nil {
			return err
		}
		parentHash, err := parseHash32(args[2])
		if err != nil {
			return err
		}
		timestamp, err := parseBlock(args[3])
		if err != nil {
			return err
		}

		rec := &codec.HeaderRecord{Number: block, Hash: hash, ParentHash: parentHash, Timestamp: timestamp}
		if len(args) == 5 {
			baseFee, err := parseU256(args[4])
			if err != nil {
				return err
			}
			rec.BaseFee = baseFee
		}

		st, closeFn, err := openStore()
		if err != nil {
			return err
		}
		defer closeFn()

		return st.PutHeader(block, rec)
	},
}

func init() {
	rootCmd.AddCommand(headerCmd)
	headerCmd.AddCommand(headerGetCmd, headerPutCmd)
}
