package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/yourorg/capezk/pkg/prover"
)

func newVerifyCmd(a *app) *cobra.Command {
	var proofPath, publicPath, vkPath string

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify an exported burn proof",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if vkPath == "" {
				vkPath = filepath.Join(a.cfg.KeyDir, prover.VerifyingKeyFile)
			}
			if proofPath == "" {
				proofPath = filepath.Join(a.cfg.OutDir, "burn_proof.bin")
			}
			if publicPath == "" {
				publicPath = filepath.Join(a.cfg.OutDir, "burn_public.json")
			}

			v, err := prover.LoadVerifier(vkPath, a.log)
			if err != nil {
				return err
			}
			proof, err := os.ReadFile(proofPath)
			if err != nil {
				return err
			}
			pub, err := prover.ReadPublicInputs(publicPath)
			if err != nil {
				return err
			}
			if err := v.VerifyPublic(proof, pub); err != nil {
				return fmt.Errorf("verification failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "proof verified: %d of %s\n", pub.Amount, pub.AssetCode)
			return nil
		},
	}

	cmd.Flags().StringVar(&proofPath, "proof", "", "burn_proof.bin (default in out dir)")
	cmd.Flags().StringVar(&publicPath, "public", "", "burn_public.json (default in out dir)")
	cmd.Flags().StringVar(&vkPath, "vk", "", "record_vk.bin (default in key dir)")
	return cmd
}
