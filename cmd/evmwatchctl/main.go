// Command evmwatchctl is the operator-facing command surface of
// spec.md §6: direct get/put access to the store's typed records plus
// the fill-forward balance/delta queries, grounded on the teacher's
// dora-utils root+subcommand cobra layout.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// exit codes per spec.md §6.
const (
	exitOK    = 0
	exitUsage = 2
	exitRun   = 1
)

var storePath string

var rootCmd = &cobra.Command{
	Use:   "evmwatchctl",
	Short: "evmwatch store inspection and maintenance utility",
	Long:  "Direct read/write access to an evmwatch store: head, accounts, code, storage, headers, and balance/delta range queries.",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&storePath, "store", "./data/evmwatch", "Path to the pebble store directory")
}

func main() {
	rootCmd.SilenceUsage = true
	if err := rootCmd.Execute(); err != nil {
		if _, ok := err.(*usageError); ok {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(exitUsage)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitRun)
	}
}

// usageError marks an error as a CLI usage mistake (bad args, malformed
// hex) rather than a runtime failure, so main can map it to exit code 2.
type usageError struct{ err error }

func (e *usageError) Error() string { return e.err.Error() }

func usageErrorf(format string, args ...interface{}) error {
	return &usageError{err: fmt.Errorf(format, args...)}
}
