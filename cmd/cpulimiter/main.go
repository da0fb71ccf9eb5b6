package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/ja7ad/cpulimiter/internal/harness"
	"github.com/ja7ad/cpulimiter/pkg/quitflag"
	"github.com/spf13/cobra"
)

var version = "dev"

type opts struct {
	pid     int
	exe     string
	limit   float64
	verbose bool
	lazy    bool
	lazySet bool
	include bool
}

func main() {
	var o opts

	root := &cobra.Command{
		Use:   "cpulimiter [OPTIONS] [COMMAND [ARGS...]]",
		Short: "Limit a process (and optionally its descendants) to a fraction of CPU",
		Long: `cpulimiter throttles a target process to a user-specified fraction of total
CPU capacity by alternating stop/continue signals over dynamically-sized
time slots, converging the group's measured usage toward the requested
limit regardless of machine load.

* GitHub: https://github.com/ja7ad/cpulimiter

Examples:
  cpulimiter --limit=40 --pid=1234
  cpulimiter --limit=50 --include-children -- make -j8
  cpulimiter --limit=25 --exe=myworker`,
		RunE: func(cmd *cobra.Command, args []string) error {
			o.lazySet = cmd.Flags().Changed("lazy")
			return run(o, args)
		},
	}

	root.Flags().IntVarP(&o.pid, "pid", "p", 0, "attach to an existing PID (implies lazy)")
	root.Flags().StringVarP(&o.exe, "exe", "e", "", "locate by executable name or absolute path")
	root.Flags().Float64VarP(&o.limit, "limit", "l", 0, "required; percent of total CPU capacity in (0, 100*NCPU]")
	root.Flags().BoolVarP(&o.verbose, "verbose", "v", false, "emit periodic control statistics to standard output")
	root.Flags().BoolVarP(&o.lazy, "lazy", "z", false, "exit when target is gone or cannot be found")
	root.Flags().BoolVarP(&o.include, "include-children", "i", false, "also limit descendants")

	var showVersion bool
	root.Flags().BoolVarP(&showVersion, "version", "V", false, "print version and exit")
	root.PreRunE = func(cmd *cobra.Command, args []string) error {
		if showVersion {
			fmt.Println("cpulimiter", version)
			os.Exit(harness.ExitOK)
		}
		return nil
	}

	if err := root.Execute(); err != nil {
		slog.Error(err.Error())
		os.Exit(harness.ExitFailure)
	}
}

func run(o opts, args []string) error {
	targets := 0
	if o.pid > 0 {
		targets++
	}
	if o.exe != "" {
		targets++
	}
	if len(args) > 0 {
		targets++
	}
	if targets != 1 {
		return fmt.Errorf("exactly one of --pid, --exe, or a COMMAND must be given (got %d)", targets)
	}
	maxLimit := 100 * float64(runtime.NumCPU())
	if o.limit <= 0 || o.limit > maxLimit {
		return fmt.Errorf("--limit is required and must be in (0, %.0f]", maxLimit)
	}

	cfg := harness.Config{
		LimitCores:         o.limit / 100,
		IncludeDescendants: o.include,
		Verbose:            o.verbose,
		Lazy:               o.lazy,
	}

	switch {
	case o.pid > 0:
		cfg.Mode = harness.Locate
		cfg.PID = o.pid
		if !o.lazySet {
			cfg.Lazy = true
		}
	case o.exe != "":
		cfg.Mode = harness.Locate
		cfg.ExeName = o.exe
	default:
		cfg.Mode = harness.Spawn
		cfg.Command = args
		if !o.lazySet {
			cfg.Lazy = true
		}
	}

	quitflag.Install()

	// Cancellation flows through the quit latch, not context cancellation,
	// per the controller's async-signal-safety requirement; the background
	// context here carries no deadline of its own.
	code := harness.Run(context.Background(), cfg)
	if code != harness.ExitOK {
		os.Exit(code)
	}
	return nil
}
