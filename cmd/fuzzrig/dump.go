package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"fuzzrig/internal/harness"
)

var dumpShowInput bool

func init() {
	dumpCmd.Flags().BoolVar(&dumpShowInput, "input", false, "also hex-dump the raw structured input")
}

var moduleHeader = color.New(color.FgCyan, color.Bold)

var dumpCmd = &cobra.Command{
	Use:   "dump <bundle>",
	Short: "Print the contents of a reproducer bundle",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		bundle, err := harness.ReadRepro(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		fmt.Fprintf(out, "id:      %s\n", bundle.ID)
		fmt.Fprintf(out, "created: %s\n", bundle.CreatedAt.Format("2006-01-02 15:04:05 MST"))
		fmt.Fprintf(out, "reason:  %s\n", bundle.Reason)
		fmt.Fprintf(out, "input:   %d bytes, %d module(s)\n", len(bundle.Input), len(bundle.Modules))

		if dumpShowInput {
			fmt.Fprintf(out, "\n%x\n", bundle.Input)
		}
		for _, mod := range bundle.Modules {
			fmt.Fprintf(out, "\n%s\n%s\n", moduleHeader.Sprintf("-- %s", mod.Name), mod.Source)
		}
		return nil
	},
}
