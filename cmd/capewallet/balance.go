package main

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/yourorg/capezk/pkg/erc20"
	"github.com/yourorg/capezk/pkg/ledger"
)

func newBalanceCmd(a *app) *cobra.Command {
	var (
		tokenS    string
		holderS   string
		slotIndex uint64
		proofAt   uint64
	)
	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Read an ERC20 balance via balanceOf and via raw storage",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.cfg.RequireRPC(); err != nil {
				return err
			}
			if !common.IsHexAddress(tokenS) || !common.IsHexAddress(holderS) {
				return fmt.Errorf("--token and --holder must be hex addresses")
			}
			token := ledger.HexToErc20Code(tokenS)
			holder := ledger.HexToEthereumAddr(holderS)

			ctx := cmd.Context()
			cli, err := erc20.Dial(ctx, a.cfg.RPCURL)
			if err != nil {
				return err
			}
			defer cli.Close()

			bal, err := cli.BalanceOf(ctx, token, holder)
			if err != nil {
				return err
			}
			decimals, err := cli.Decimals(ctx, token)
			if err != nil {
				return err
			}
			raw, err := cli.StorageBalance(ctx, token, holder, slotIndex)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "token:    %s (decimals %d)\n", token, decimals)
			fmt.Fprintf(out, "holder:   %s\n", holder)
			fmt.Fprintf(out, "balanceOf: %s\n", bal)
			fmt.Fprintf(out, "storage[%d]: %s\n", slotIndex, raw)
			if bal.Cmp(raw) != 0 {
				a.log.Warn().Uint64("slot", slotIndex).Msg("storage balance differs from balanceOf; wrong mapping index?")
			}
			if proofAt == 0 {
				return nil
			}

			p, err := cli.BalanceProof(ctx, token, holder, slotIndex, proofAt)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "state root @%d: %s\n", p.Block, p.StateRoot)
			fmt.Fprintf(out, "storage hash: %s\n", p.StorageHash)
			fmt.Fprintf(out, "proof nodes: account %d, storage %d\n", len(p.AccountProof), len(p.StorageProof[0].Proof))
			fmt.Fprintf(out, "proven balance: %s\n", p.Balance())
			return nil
		},
	}
	cmd.Flags().StringVar(&tokenS, "token", "", "ERC20 contract address")
	cmd.Flags().StringVar(&holderS, "holder", "", "Holder address")
	cmd.Flags().Uint64Var(&slotIndex, "slot", 0, "Storage index of the balances mapping")
	cmd.Flags().Uint64Var(&proofAt, "proof-block", 0, "Also fetch an eth_getProof storage proof at this block")
	_ = cmd.MarkFlagRequired("token")
	_ = cmd.MarkFlagRequired("holder")
	return cmd
}
