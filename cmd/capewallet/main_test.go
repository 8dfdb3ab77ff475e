package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs(args)
	require.NoError(t, cmd.ExecuteContext(context.Background()))
	return out.String()
}

func TestScenarioAndInspect(t *testing.T) {
	dir := t.TempDir()
	common := []string{"--env", filepath.Join(dir, "none.env"), "--out-dir", dir, "--key-dir", dir, "--log-level", "error"}

	out := run(t, append([]string{"scenario", "--amount", "250", "--fee", "2"}, common...)...)
	var report scenarioReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.EqualValues(t, 250, report.WrapAmount)
	require.Zero(t, report.SrcAfterWrap)
	require.EqualValues(t, 250, report.ShieldedBalance)
	require.EqualValues(t, 250, report.DstAfterBurn)
	require.EqualValues(t, 19, report.FeeChange)
	require.NotNil(t, report.Burn)
	require.Len(t, report.Wraps, 1)
	require.FileExists(t, filepath.Join(dir, "chain.json"))
	require.FileExists(t, filepath.Join(dir, "metrics.prom"))

	out = run(t, append([]string{"inspect"}, common...)...)
	require.Contains(t, out, "height 2")
	require.Contains(t, out, demoToken.String())
	require.Contains(t, out, demoDst.String())
}

func TestScenarioProveThenVerify(t *testing.T) {
	if testing.Short() {
		t.Skip("groth16 setup")
	}
	dir := t.TempDir()
	common := []string{"--env", filepath.Join(dir, "none.env"), "--out-dir", dir, "--key-dir", dir, "--log-level", "error"}

	run(t, append([]string{"scenario", "--prove"}, common...)...)
	require.FileExists(t, filepath.Join(dir, "burn_proof.bin"))

	out := run(t, append([]string{"verify"}, common...)...)
	require.Contains(t, out, "proof verified: 100")
}
