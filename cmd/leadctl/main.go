/*
Package main provides leadctl, the operator CLI for checking and previewing
the relay's message templates.
*/
package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "leadctl",
		Short: "Operator tooling for the lead relay",
		Long: `leadctl inspects the relay configuration the API server would load.

Example:
  leadctl templates check --dir ./templates
  leadctl templates preview --purpose email-order`,
		SilenceUsage: true,
	}
	root.AddCommand(newTemplatesCmd(), newSubmitCmd())
	return root
}
