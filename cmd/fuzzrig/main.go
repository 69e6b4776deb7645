package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"fuzzrig/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "fuzzrig",
	Short: "Structured-input fuzzing harness tooling",
	Long:  `fuzzrig drives a guest toolchain through a fixed pipeline of fuzzing stages and manages the reproducer bundles that come out of it`,
}

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(corpusCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log every iteration")

	cobra.OnInitialize(func() {
		mode, _ := rootCmd.PersistentFlags().GetString("color")
		applyColorMode(mode)
	})

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func applyColorMode(mode string) {
	switch strings.TrimSpace(strings.ToLower(mode)) {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	default:
		color.NoColor = !isTerminal(os.Stdout)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func quiet(cmd *cobra.Command) bool {
	q, _ := cmd.Flags().GetBool("quiet")
	return q
}

func verbose(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("verbose")
	return v
}

func infof(cmd *cobra.Command, format string, args ...any) {
	if !quiet(cmd) {
		fmt.Fprintf(cmd.OutOrStdout(), format, args...)
	}
}
