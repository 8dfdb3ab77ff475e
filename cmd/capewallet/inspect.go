package main

import (
	"fmt"
	"path/filepath"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"github.com/yourorg/capezk/pkg/localchain"
)

func newInspectCmd(a *app) *cobra.Command {
	var (
		snapshot string
		dump     bool
	)
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print the registry and ERC20 balances of a saved chain",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if snapshot == "" {
				snapshot = filepath.Join(a.cfg.OutDir, "chain.json")
			}
			chain, err := localchain.LoadFromFile(snapshot)
			if err != nil {
				return err
			}
			assets, err := chain.WrappedAssets(cmd.Context())
			if err != nil {
				return err
			}
			balances := chain.Balances()

			out := cmd.OutOrStdout()
			if dump {
				fmt.Fprint(out, spew.Sdump(assets, balances))
				return nil
			}
			fmt.Fprintf(out, "height %d\n", chain.Height())
			fmt.Fprintln(out, "registry:")
			for _, wa := range assets {
				fmt.Fprintf(out, "  %s  erc20 %s  sponsor %s\n", wa.Definition.Code, wa.Erc20Code, wa.Sponsor)
			}
			fmt.Fprintln(out, "erc20 balances:")
			for _, b := range balances {
				fmt.Fprintf(out, "  %s  %s  %d\n", b.Code, b.Holder, b.Amount)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&snapshot, "snapshot", "", "chain.json (default in out dir)")
	cmd.Flags().BoolVar(&dump, "dump", false, "Dump full Go values")
	return cmd
}
