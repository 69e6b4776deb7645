package main

import (
	"fmt"
	"sort"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"fuzzrig/internal/harness"
)

var corpusCmd = &cobra.Command{
	Use:   "corpus <dir>...",
	Short: "Summarize a directory of reproducer bundles",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, err := collectBundlePaths(args)
		if err != nil {
			return err
		}

		var (
			inputBytes int
			modules    int
			broken     int
			reasons    = map[string]int{}
		)
		for _, path := range paths {
			bundle, err := harness.ReadRepro(path)
			if err != nil {
				broken++
				continue
			}
			inputBytes += len(bundle.Input)
			modules += len(bundle.Modules)
			reasons[bundle.Reason]++
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, summaryTitleStyle.Render(fmt.Sprintf("%d bundle(s)", len(paths))))
		fmt.Fprintf(out, "input bytes: %d\n", inputBytes)
		fmt.Fprintf(out, "modules:     %d\n", modules)
		if broken > 0 {
			fmt.Fprintln(out, summaryBadStyle.Render(fmt.Sprintf("unreadable:  %d", broken)))
		}

		names := make([]string, 0, len(reasons))
		for r := range reasons {
			names = append(names, r)
		}
		sort.Strings(names)
		if len(names) > 0 {
			fmt.Fprintln(out, lipgloss.NewStyle().Bold(true).Render("reasons:"))
			for _, r := range names {
				fmt.Fprintf(out, "  %4d  %s\n", reasons[r], r)
			}
		}
		return nil
	},
}
