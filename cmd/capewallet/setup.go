package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yourorg/capezk/pkg/prover"
)

func newSetupCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Run (or reuse) the Groth16 setup of the record-opening circuit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			g, err := prover.SetupOrLoad(a.cfg.KeyDir, a.log)
			if err != nil {
				return err
			}
			sum, err := g.CircuitDigest()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "circuit hash: %x\n", sum[:4])
			fmt.Fprintf(cmd.OutOrStdout(), "keys in %s (%s)\n", a.cfg.KeyDir, elapsed(cmd))
			return nil
		},
	}
}
