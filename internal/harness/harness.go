// Package harness translates validated CLI configuration into either a
// spawn-then-limit or a locate-then-limit run, and reports a process exit
// code. It is deliberately thin: argument parsing lives in cmd/cpulimiter,
// and the only printing here is diagnostics and the verbose per-cycle table
// (verbose.go).
package harness

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/ja7ad/cpulimiter/pkg/clock"
	"github.com/ja7ad/cpulimiter/pkg/finder"
	"github.com/ja7ad/cpulimiter/pkg/limiter"
	"github.com/ja7ad/cpulimiter/pkg/quitflag"
	"github.com/ja7ad/cpulimiter/pkg/stats"
)

// Mode selects which half of §4.H the harness runs.
type Mode int

const (
	Spawn Mode = iota
	Locate
)

// searchRetryInterval is the spec'd inter-search delay for locate-then-limit.
const searchRetryInterval = 2 * time.Second

// Config is the harness's fully validated input; cmd/cpulimiter is
// responsible for producing one of these from flags.
type Config struct {
	Mode Mode

	// Locate mode.
	PID     int
	ExeName string

	// Spawn mode.
	Command []string

	LimitCores         float64
	IncludeDescendants bool
	Lazy               bool
	Verbose            bool
}

// Run dispatches to Spawn or Locate and returns a process exit code.
func Run(ctx context.Context, cfg Config) int {
	switch cfg.Mode {
	case Spawn:
		return runSpawn(ctx, cfg)
	default:
		return runLocate(ctx, cfg)
	}
}

func runSpawn(ctx context.Context, cfg Config) int {
	if len(cfg.Command) == 0 {
		fmt.Fprintln(os.Stderr, "cpulimiter: no command to spawn")
		return ExitFailure
	}

	cmd := exec.Command(cfg.Command[0], cfg.Command[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	// Start() itself is the readiness barrier: os/exec already runs its own
	// internal pipe handshake between the forked child and this goroutine,
	// blocking until the child has either exec'd successfully or reported
	// why it couldn't. By the time Start() returns without error, Setpgid
	// has taken effect and the child is running the target command, so
	// there is nothing left for a second, hand-rolled pipe to synchronize.
	if err := cmd.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "cpulimiter: spawning command: %v\n", err)
		return ExitFailure
	}

	pid := cmd.Process.Pid

	limitCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	limitErr := limiter.Limit(limitCtx, limiter.Config{
		TargetPID:          pid,
		LimitCores:         cfg.LimitCores,
		IncludeDescendants: cfg.IncludeDescendants,
		Verbose:            cfg.Verbose,
		OnCycle:            verboseHook(cfg.Verbose),
	})
	if limitErr != nil {
		fmt.Fprintf(os.Stderr, "cpulimiter: %v\n", limitErr)
	}

	if quitflag.IsSet() {
		_ = syscall.Kill(-pid, syscall.SIGTERM)
	}

	waitErr := cmd.Wait()
	return exitStatus(waitErr)
}

func runLocate(ctx context.Context, cfg Config) int {
	self := os.Getpid()

	for {
		if quitflag.IsSet() {
			return ExitOK
		}

		var pid int
		if cfg.PID > 0 {
			pid = finder.FindByPID(cfg.PID)
		} else {
			pid = finder.FindByName(cfg.ExeName)
		}

		if pid == 0 {
			fmt.Fprintln(os.Stdout, "cpulimiter: target process not found")
			if cfg.Lazy || quitflag.IsSet() {
				return ExitOK
			}
			clock.Sleep(searchRetryInterval)
			continue
		}
		if pid < 0 {
			fmt.Fprintln(os.Stderr, "cpulimiter: target process found but permission denied")
			return ExitFailure
		}
		if pid == self {
			fmt.Fprintln(os.Stderr, "cpulimiter: refusing to limit myself")
			return ExitFailure
		}

		err := limiter.Limit(ctx, limiter.Config{
			TargetPID:          pid,
			LimitCores:         cfg.LimitCores,
			IncludeDescendants: cfg.IncludeDescendants,
			Verbose:            cfg.Verbose,
			OnCycle:            verboseHook(cfg.Verbose),
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "cpulimiter: %v\n", err)
			return ExitFailure
		}

		if cfg.Lazy || quitflag.IsSet() {
			return ExitOK
		}
		clock.Sleep(searchRetryInterval)
	}
}

// verboseHook returns an OnCycle callback that prints a tabwriter row per
// cycle when verbose is set, nil otherwise so the controller skips the call
// entirely on the hot path.
func verboseHook(verbose bool) func(limiter.CycleStats) {
	if !verbose {
		return nil
	}
	acc := stats.New(nil)
	printer := newVerbosePrinter()
	return func(cs limiter.CycleStats) {
		avg := acc.Apply(stats.Sample{
			Cycle:       cs.Cycle,
			WorkingRate: cs.WorkingRate,
			Usage:       cs.Usage,
			LiveCount:   cs.LiveCount,
			SlotMS:      cs.SlotMS,
		})
		printer.row(cs, avg)
	}
}
