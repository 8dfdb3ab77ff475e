package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/yourorg/capezk/internal/metrics"
	"github.com/yourorg/capezk/pkg/aap"
	"github.com/yourorg/capezk/pkg/cape"
	"github.com/yourorg/capezk/pkg/ledger"
	"github.com/yourorg/capezk/pkg/localchain"
	"github.com/yourorg/capezk/pkg/prover"
	"github.com/yourorg/capezk/pkg/wallet"
)

var (
	demoToken   = ledger.HexToErc20Code("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	demoSponsor = ledger.HexToEthereumAddr("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	demoSrc     = ledger.HexToEthereumAddr("0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC")
	demoDst     = ledger.HexToEthereumAddr("0x90F79bf6EB2c4f870365E785982E1f101E93b906")
)

// capturingChain remembers the last transaction submitted, so the burn
// proof can be exported.
type capturingChain struct {
	*localchain.Chain
	last *ledger.Transaction
}

func (c *capturingChain) Submit(ctx context.Context, t ledger.Transition, info *wallet.TransactionInfo) error {
	if err := c.Chain.Submit(ctx, t, info); err != nil {
		return err
	}
	c.last = t.Transaction
	return nil
}

type scenarioReport struct {
	Asset           aap.AssetDefinition        `json:"asset"`
	WrapAmount      uint64                     `json:"wrap_amount"`
	SrcAfterWrap    uint64                     `json:"src_balance_after_wrap"`
	ShieldedBalance uint64                     `json:"shielded_balance_after_commit"`
	Burn            *wallet.TransactionReceipt `json:"burn"`
	DstAfterBurn    uint64                     `json:"dst_balance_after_commit"`
	FeeChange       uint64                     `json:"fee_change"`
	Wraps           []wallet.PendingWrap       `json:"wraps"`
}

func newScenarioCmd(a *app) *cobra.Command {
	var (
		amount uint64
		fee    uint64
		prove  bool
	)
	cmd := &cobra.Command{
		Use:   "scenario",
		Short: "Run sponsor, wrap and burn end to end against an in-process chain",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if amount == 0 {
				return errors.New("--amount must be positive")
			}
			return runScenario(cmd, a, amount, fee, prove)
		},
	}
	cmd.Flags().Uint64Var(&amount, "amount", 100, "Token units to wrap and burn")
	cmd.Flags().Uint64Var(&fee, "fee", 1, "Native fee paid by the burn")
	cmd.Flags().BoolVar(&prove, "prove", false, "Attach and verify Groth16 proofs")
	return cmd
}

func runScenario(cmd *cobra.Command, a *app, amount, fee uint64, prove bool) error {
	ctx := cmd.Context()
	if err := os.MkdirAll(a.cfg.OutDir, 0o755); err != nil {
		return err
	}

	chainOpts := []localchain.Option{localchain.WithLogger(a.log)}
	reg := prometheus.NewRegistry()
	walletOpts := []cape.Option{cape.WithLogger(a.log), cape.WithMetrics(metrics.New(reg))}
	var p *prover.Groth16
	if prove {
		var err error
		p, err = prover.SetupOrLoad(a.cfg.KeyDir, a.log)
		if err != nil {
			return err
		}
		chainOpts = append(chainOpts, localchain.WithVerifier(p))
		walletOpts = append(walletOpts, cape.WithProver(p))
	}

	chain := &capturingChain{Chain: localchain.New(chainOpts...)}
	w := cape.New(chain, walletOpts...)

	user, err := w.GenerateUserKey(ctx)
	if err != nil {
		return err
	}
	feeRecord, uid, err := chain.GrantNative(ctx, user, fee*10+1)
	if err != nil {
		return err
	}
	if err := w.ImportRecord(ctx, feeRecord, uid); err != nil {
		return err
	}
	chain.Mint(demoToken, demoSrc, amount)

	def, err := w.Sponsor(ctx, demoToken, demoSponsor, aap.AssetPolicy{})
	if err != nil {
		return err
	}
	if _, err := w.Sponsor(ctx, demoToken, demoSponsor, aap.AssetPolicy{}); !errors.Is(err, cape.ErrAssetAlreadyRegistered) {
		return fmt.Errorf("duplicate sponsor not rejected: %v", err)
	}

	report := scenarioReport{Asset: def, WrapAmount: amount}
	if err := w.Wrap(ctx, demoSrc, def, user.Address, amount); err != nil {
		return err
	}
	report.SrcAfterWrap = chain.Erc20Balance(demoToken, demoSrc)
	if err := commitAndApply(ctx, chain.Chain, w); err != nil {
		return err
	}
	if report.ShieldedBalance, err = w.Balance(ctx, user.Address, def.Code); err != nil {
		return err
	}

	if report.Burn, err = w.Burn(ctx, user.Address, demoDst, def.Code, amount, fee); err != nil {
		return err
	}
	burnTxn := chain.last
	if err := commitAndApply(ctx, chain.Chain, w); err != nil {
		return err
	}
	report.DstAfterBurn = chain.Erc20Balance(demoToken, demoDst)
	if report.FeeChange, err = w.Balance(ctx, user.Address, aap.NativeAssetCode()); err != nil {
		return err
	}
	if report.Wraps, err = w.PendingWraps(ctx); err != nil {
		return err
	}

	if prove && burnTxn != nil {
		pub, err := prover.BurnPublicInputs(burnTxn)
		if err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(a.cfg.OutDir, "burn_proof.bin"), burnTxn.Note.Proof, 0o644); err != nil {
			return err
		}
		if err := prover.WritePublicInputs(filepath.Join(a.cfg.OutDir, "burn_public.json"), pub); err != nil {
			return err
		}
	}
	if err := chain.SaveToFile(filepath.Join(a.cfg.OutDir, "chain.json")); err != nil {
		return err
	}
	if err := prometheus.WriteToTextfile(filepath.Join(a.cfg.OutDir, "metrics.prom"), reg); err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return err
	}
	a.log.Info().Dur("elapsed", elapsed(cmd)).Msg("scenario done")
	return nil
}

func commitAndApply[B cape.Backend](ctx context.Context, chain *localchain.Chain, w *cape.Wallet[B]) error {
	block, err := chain.CommitBlock(ctx)
	if err != nil {
		return err
	}
	if len(block.Rejected) > 0 {
		r := block.Rejected[0]
		return fmt.Errorf("transaction %s rejected: %s", r.Hash, r.Reason)
	}
	return w.HandleBlock(ctx, block)
}
