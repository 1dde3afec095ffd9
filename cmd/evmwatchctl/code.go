package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var codeCmd = &cobra.Command{
	Use:   "code",
	Short: "Get or put contract bytecode by its keccak code hash",
}

var codeGetCmd = &cobra.Command{
	Use:   "get <codeHash>",
	Args:  argsExact(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hash, err := parseHash32(args[0])
		if err != nil {
			return err
		}

		st, closeFn, err := openStore()
		if err != nil {
			return err
		}
		defer closeFn()

		code, ok, err := st.GetCode(hash)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("(no code)")
			return nil
		}
		fmt.Printf("0x%x\n", code)
		return nil
	},
}

var codePutCmd = &cobra.Command{
	Use:   "put <codeHash> <hexBytecode>",
	Args:  argsExact(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		hash, err := parseHash32(args[0])
		if err != nil {
			return err
		}
		code, err := parseBytes(args[1])
		if err != nil {
			return err
		}

		st, closeFn, err := openStore()
		if err != nil {
			return err
		}
		defer closeFn()

		return st.PutCode(hash, code)
	},
}

func init() {
	rootCmd.AddCommand(codeCmd)
	codeCmd.AddCommand(codeGetCmd, codePutCmd)
}
