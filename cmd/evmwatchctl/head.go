package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var headCmd = &cobra.Command{
	Use:   "head",
	Short: "Get or set the store's head block",
}

var headGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the current head block",
	Args:  argsExact(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, closeFn, err := openStore()
		if err != nil {
			return err
		}
		defer closeFn()

		head, ok, err := st.GetHead()
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("(no head)")
			return nil
		}
		fmt.Println(head)
		return nil
	},
}

var headSetCmd = &cobra.Command{
	Use:   "set <block>",
	Short: "Force the store's head block",
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

		return st.SetHead(block)
	},
}

func init() {
	rootCmd.AddCommand(headCmd)
	headCmd.AddCommand(headGetCmd, headSetCmd)
}
