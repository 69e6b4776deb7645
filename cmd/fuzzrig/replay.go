package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"fuzzrig/internal/guestsim"
	"fuzzrig/internal/harness"
	"fuzzrig/internal/report"
)

var (
	replayConfig   string
	replayJobs     int
	replaySelftest bool
)

func init() {
	replayCmd.Flags().StringVarP(&replayConfig, "config", "c", "", "harness configuration file (TOML)")
	replayCmd.Flags().IntVarP(&replayJobs, "jobs", "j", runtime.NumCPU(), "parallel replay workers")
	replayCmd.Flags().BoolVar(&replaySelftest, "selftest", false, "replay a built-in input set instead of bundles")
}

var replayCmd = &cobra.Command{
	Use:   "replay [bundle|dir]...",
	Short: "Replay reproducer bundles through the harness",
	Long: `Replay runs persisted reproducer bundles through a fresh harness over the
bundled toolchain simulation and reports which ones still reach a fatal
failure. Directories are scanned for *.mp bundles.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := harness.DefaultConfig()
		if replayConfig != "" {
			loaded, err := harness.LoadConfig(replayConfig)
			if err != nil {
				return err
			}
			cfg = loaded
		}

		if replaySelftest {
			return runSelftest(cmd, cfg)
		}
		if len(args) == 0 {
			return fmt.Errorf("nothing to replay: pass bundle files or directories, or --selftest")
		}

		paths, err := collectBundlePaths(args)
		if err != nil {
			return err
		}
		if len(paths) == 0 {
			return fmt.Errorf("no %s bundles found under %s", harness.ReproExt, strings.Join(args, ", "))
		}
		return runReplay(cmd, cfg, paths)
	},
}

// replayTally accumulates results across workers.
type replayTally struct {
	mu       sync.Mutex
	replayed int
	fatals   []string
}

func (t *replayTally) record(path string, reports []string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.replayed++
	for _, r := range reports {
		t.fatals = append(t.fatals, filepath.Base(path)+": "+r)
	}
}

func runReplay(cmd *cobra.Command, cfg harness.Config, paths []string) error {
	log := report.NewLogger(verbose(cmd))
	jobs := replayJobs
	if jobs < 1 {
		jobs = 1
	}

	work := make(chan string)
	tally := &replayTally{}

	g, gctx := errgroup.WithContext(context.Background())
	for i := 0; i < jobs; i++ {
		g.Go(func() error {
			// One harness per worker: the frontend and the execution
			// runtime are not safe to share.
			sink := &report.RecordingSink{}
			h, err := harness.New(cfg, guestsim.New(), sink, log)
			if err != nil {
				return err
			}
			defer h.Close()

			for path := range work {
				bundle, err := harness.ReadRepro(path)
				if err != nil {
					return err
				}
				before := len(sink.Reports)
				h.RunIteration(bundle.Input)
				tally.record(path, sink.Reports[before:])
				log.Debug().Str("bundle", path).Msg("replayed")
			}
			return nil
		})
	}
	g.Go(func() error {
		defer close(work)
		for _, p := range paths {
			// A worker error cancels gctx; without this select the
			// producer would block forever once the receivers are gone.
			select {
			case work <- p:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	printReplaySummary(cmd, tally)
	if len(tally.fatals) > 0 {
		return fmt.Errorf("%d bundle(s) still fatal", len(tally.fatals))
	}
	return nil
}

// selftestInputs are a fixed input set covering every stage and failure
// tier, so a plain `fuzzrig replay --selftest` proves the harness wiring
// end to end.
var selftestInputs = []struct {
	name  string
	input string
}{
	{"clean", "print hi\nlocal a\nvec v\nalloc 64"},
	{"parse-error", "err broken\nlocal a"},
	{"analyzer-panic", "boom"},
	{"multi-module", "global shared\n---\nuse module0"},
	{"timeout", "loop"},
}

func runSelftest(cmd *cobra.Command, cfg harness.Config) error {
	sink := &report.RecordingSink{}
	h, err := harness.New(cfg, guestsim.New(), sink, report.NewLogger(verbose(cmd)))
	if err != nil {
		return err
	}
	defer h.Close()

	for _, tc := range selftestInputs {
		result := h.RunIteration([]byte(tc.input))
		infof(cmd, "%-14s modules=%d artifact=%v\n", tc.name, len(result.Modules), result.Artifact != nil)
	}
	if len(sink.Reports) > 0 {
		return fmt.Errorf("selftest hit fatal failures: %s", strings.Join(sink.Reports, "; "))
	}
	if verbose(cmd) {
		infof(cmd, "last input %s\n", h.Timer().Summary())
	}
	infof(cmd, "selftest ok: %d inputs, no fatal failures\n", len(selftestInputs))
	return nil
}

func collectBundlePaths(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		matches, err := filepath.Glob(filepath.Join(arg, "*"+harness.ReproExt))
		if err != nil {
			return nil, err
		}
		paths = append(paths, matches...)
	}
	sort.Strings(paths)
	return paths, nil
}

var (
	summaryTitleStyle = lipgloss.NewStyle().Bold(true)
	summaryOkStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	summaryBadStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
)

func printReplaySummary(cmd *cobra.Command, tally *replayTally) {
	if quiet(cmd) {
		return
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, summaryTitleStyle.Render(fmt.Sprintf("replayed %d bundle(s)", tally.replayed)))
	if len(tally.fatals) == 0 {
		fmt.Fprintln(out, summaryOkStyle.Render("no fatal failures reproduced"))
		return
	}
	for _, f := range tally.fatals {
		fmt.Fprintln(out, summaryBadStyle.Render("FATAL ")+f)
	}
}
