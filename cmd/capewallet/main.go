package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/yourorg/capezk/internal/config"
	"github.com/yourorg/capezk/internal/logging"
)

// contextKey is a custom type for context keys to avoid conflicts
type contextKey string

const startTimeKey contextKey = "start"

// app carries what every subcommand needs once flags and env are resolved.
type app struct {
	cfg config.Config
	log zerolog.Logger
}

func main() {
	ctx := context.WithValue(context.Background(), startTimeKey, time.Now())
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		log.Fatal(err)
	}
}

func newRootCmd() *cobra.Command {
	var (
		envFile  string
		rpcURL   string
		keyDir   string
		outDir   string
		logLevel string
		a        app
	)

	rootCmd := &cobra.Command{
		Use:           "capewallet",
		Short:         "Bridge ERC20 tokens to and from shielded CAPE assets",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			var files []string
			if envFile != "" {
				files = append(files, envFile)
			}
			cfg, err := config.FromEnv(files...)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("rpc") {
				cfg.RPCURL = rpcURL
			}
			if flags.Changed("key-dir") {
				cfg.KeyDir = keyDir
			}
			if flags.Changed("out-dir") {
				cfg.OutDir = outDir
			}
			if flags.Changed("log-level") {
				cfg.LogLevel = logLevel
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			l, err := logging.New(cfg.LogLevel, logging.Console(os.Stderr))
			if err != nil {
				return err
			}
			a.cfg, a.log = cfg, l
			return nil
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&envFile, "env", "", "dotenv file (default .env)")
	pf.StringVar(&rpcURL, "rpc", "", "Ethereum JSON-RPC URL (env "+config.EnvRPCURL+")")
	pf.StringVar(&keyDir, "key-dir", "", "Groth16 key cache directory (env "+config.EnvKeyDir+")")
	pf.StringVar(&outDir, "out-dir", "", "Output directory (env "+config.EnvOutDir+")")
	pf.StringVar(&logLevel, "log-level", "", "Log level (env "+config.EnvLogLevel+")")

	rootCmd.AddCommand(
		newScenarioCmd(&a),
		newBalanceCmd(&a),
		newSetupCmd(&a),
		newVerifyCmd(&a),
		newInspectCmd(&a),
	)
	return rootCmd
}

func elapsed(cmd *cobra.Command) time.Duration {
	start, ok := cmd.Context().Value(startTimeKey).(time.Time)
	if !ok {
		return 0
	}
	return time.Since(start)
}
