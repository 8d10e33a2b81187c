package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"odometer/internal/config"
	"odometer/internal/odometer"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:       "run up|down",
	Short:     "Run the odometer to 999999 or 000000 without a window",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"up", "down"},
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := parseDirection(args[0])
		if err != nil {
			return err
		}
		return runHeadless(cmd.Context(), cmd.OutOrStdout(), cfg, dir)
	},
}

func parseDirection(arg string) (odometer.Direction, error) {
	switch arg {
	case "up":
		return odometer.Up, nil
	case "down":
		return odometer.Down, nil
	default:
		return odometer.Up, fmt.Errorf("unknown direction %q, want up or down", arg)
	}
}

// runHeadless performs one run on the calling goroutine and prints the result
func runHeadless(ctx context.Context, out io.Writer, cfg config.Config, dir odometer.Direction) error {
	log, logFile, err := buildLogger(cfg, os.Stderr)
	if err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	c := newCore(runCtx, cfg, log, logFile)
	defer c.close()

	c.shutdown.Listen(cancel)

	result, err := c.runService.Run(runCtx, dir, nil)
	if err != nil {
		return fmt.Errorf("run %s: %w", dir, err)
	}

	fmt.Fprintf(out, "%0*d\n", odometer.Columns, result.Snapshot.Value)
	fmt.Fprintln(out, result.Snapshot.Totals)
	fmt.Fprintf(out, "%d ticks in %s", result.Ticks, result.Duration.Round(time.Millisecond))
	if result.Cancelled {
		fmt.Fprint(out, " (cancelled)")
	}
	fmt.Fprintln(out)

	return nil
}
