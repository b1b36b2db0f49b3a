package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nstehr/grimoire/rules"
)

func newRulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rules <affliction|destruction|demonology>",
		Short: "Compile and print the rotation for a specialization",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := rules.ParseSpec(args[0])
			if err != nil {
				return err
			}
			settings, err := loadSettings()
			if err != nil {
				return err
			}
			rot, err := rules.CompileRotation(spec, settings)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, p := range []*rules.Phase{rot.Combat, rot.Resting} {
				printPhase(w, p)
			}
			return w.Flush()
		},
	}
}

func printPhase(w io.Writer, p *rules.Phase) {
	fmt.Fprintf(w, "# %s\n", p.Name)
	if p.HoldSrc != "" {
		fmt.Fprintf(w, "hold\t\t\t%s\n", p.HoldSrc)
	}
	for _, h := range p.Prepare {
		fmt.Fprintf(w, "hook\t%s\t\t\n", h.Name)
	}
	for _, r := range p.Rules {
		spell := string(r.Spell)
		if r.Resolve != nil {
			spell = "(resolved)"
		}
		cond := r.ConditionSrc
		if cond == "" {
			cond = "true"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", r.Priority, r.Name, spell, cond)
	}
	fmt.Fprintln(w)
}
