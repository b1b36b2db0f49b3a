package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/nstehr/grimoire/sim"
)

func newSimulateCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "simulate <scenario.lua>...",
		Short: "Replay scripted snapshots through the engine and check the expected casts",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			failed := 0
			for _, path := range args {
				sc, err := sim.LoadFile(path)
				if err != nil {
					return err
				}
				for _, v := range sc.Violations {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: setting reset to default: %s\n", sc.Name, v)
				}
				trace, err := sim.Run(sc)
				if err != nil {
					return fmt.Errorf("%s: %w", sc.Name, err)
				}
				if asJSON {
					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					if err := enc.Encode(trace); err != nil {
						return err
					}
				} else {
					printTrace(cmd.OutOrStdout(), trace)
				}
				if len(trace.Mismatches()) > 0 {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d scenarios did not match their expectations", failed, len(args))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print traces as JSON")
	return cmd
}

func printTrace(w io.Writer, t *sim.Trace) {
	fmt.Fprintf(w, "== %s (%s)\n", t.Scenario, t.Spec)
	for _, f := range t.Frames {
		mark := " "
		if f.Mismatch {
			mark = "!"
		}
		outcome := f.Reason
		if f.Acted {
			outcome = fmt.Sprintf("%s -> %s %s", f.Rule, f.Command.Kind, f.Command.Spell)
			if f.Command.Target != "" {
				outcome += " @" + f.Command.Target
			}
		}
		line := fmt.Sprintf("%s %4d %8s  %s", mark, f.Tick, f.At, outcome)
		if f.Mismatch {
			line += fmt.Sprintf("  (expected %s)", f.Expect)
		}
		fmt.Fprintln(w, line)
	}
	for _, d := range t.Diagnostics {
		fmt.Fprintf(w, "  disabled %s in %s at tick %d after %d failures: %s\n", d.Rule, d.Phase, d.Tick, d.Failures, d.Error)
	}
}
