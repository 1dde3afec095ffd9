package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var storageCmd = &cobra.Command{
	Use:   "storage",
	Short: "Get or put a contract storage slot",
}

var storageGetCmd = &cobra.Command{
	Use:   "get <addr> <slot>",
	Args:  argsExact(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, err := parseAddress(args[0])
		if err != nil {
			return err
		}
		slot, err := parseHash32(args[1])
		if err != nil {
			return err
		}

		st, closeFn, err := openStore()
		if err != nil {
			return err
		}
		defer closeFn()

		v, err := st.GetStorage(addr, slot)
		if err != nil {
			return err
		}
		fmt.Println(v.Dec())
		return nil
	},
}

var storagePutCmd = &cobra.Command{
	Use:   "put <addr> <slot> <value>",
	Args:  argsExact(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, err := parseAddress(args[0])
		if err != nil {
			return err
		}
		slot, err := parseHash32(args[1])
		if err != nil {
			return err
		}
		value, err := parseU256(args[2])
		if err != nil {
			return err
		}

		st, closeFn, err := openStore()
		if err != nil {
			return err
		}
		defer closeFn()

		return st.PutStorage(addr, slot, value)
	},
}

func init() {
	rootCmd.AddCommand(storageCmd)
	storageCmd.AddCommand(storageGetCmd, storagePutCmd)
}
