package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	root := &cobra.Command{
		Use:          "classifier",
		Short:        "Classify EVM call traces into protocol actions",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Trace a block range over RPC and classify every call",
		RunE:  runClassifier,
	}

	runCmd.Flags().String("rpc", "", "RPC URL with the trace_ namespace enabled")
	runCmd.Flags().Uint64("from", 0, "start block (inclusive)")
	runCmd.Flags().Uint64("to", 0, "end block (inclusive), 0 means latest")
	runCmd.Flags().StringSlice("address", nil, "only classify calls to these contracts (comma-separated)")
	runCmd.Flags().Uint64("batch-size", 100, "blocks per stored batch")
	runCmd.Flags().String("out", "./data/actions.jsonl", "output JSONL path")
	runCmd.Flags().String("checkpoint", "./data/checkpoint.json", "checkpoint file path")
	runCmd.Flags().Bool("checkpoint-enabled", true, "enable checkpointing")
	runCmd.Flags().String("state-name", "classifier", "indexer_state row used as checkpoint when --pg-dsn is set")
	runCmd.Flags().Int("max-retries", 5, "maximum retry attempts")
	runCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	runCmd.Flags().String("metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9090)")
	runCmd.Flags().String("pg-dsn", "", "Postgres DSN; actions are also written to the actions table")
	addABIFlags(runCmd)
	runCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(runCmd)

	classifyCmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify call traces from a JSONL file",
		RunE:  runClassify,
	}

	classifyCmd.Flags().String("in", "", "input call trace JSONL")
	classifyCmd.Flags().String("out", "./data/actions.jsonl", "output actions JSONL")
	classifyCmd.Flags().String("errors", "./data/classify_errors.jsonl", "unreadable input lines JSONL")
	classifyCmd.Flags().Int("batch-size", 1000, "traces per classification batch")
	classifyCmd.Flags().String("pg-dsn", "", "Postgres DSN, used with --abi-from-db")
	addABIFlags(classifyCmd)
	classifyCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(classifyCmd)

	selectorsCmd := &cobra.Command{
		Use:   "selectors",
		Short: "Print the built-in interface registry",
		RunE:  runSelectors,
	}
	selectorsCmd.Flags().Bool("mapped-only", false, "only list functions that map to an action")

	root.AddCommand(selectorsCmd)

	aggregateCmd := &cobra.Command{
		Use:   "aggregate",
		Short: "Aggregate actions into per-token flow windows",
		RunE:  runAggregate,
	}

	aggregateCmd.Flags().String("rpc", "", "RPC URL used to read token decimals")
	aggregateCmd.Flags().String("in", "", "input actions JSONL")
	aggregateCmd.Flags().Uint64("window", 300, "window size in blocks")
	aggregateCmd.Flags().String("pg-dsn", "", "Postgres DSN")
	aggregateCmd.Flags().Int("batch-size", 1000, "batch size for DB writes")
	aggregateCmd.Flags().String("state-file", "", "optional local state file for progress tracking")
	aggregateCmd.Flags().String("state-name", "aggregate", "indexer_state row used when no state file is given")
	aggregateCmd.Flags().Uint64("recompute-from", 0, "recompute from this block")
	aggregateCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(aggregateCmd)

	importABICmd := &cobra.Command{
		Use:   "import-abi",
		Short: "Store a contract ABI document in Postgres for --abi-from-db",
		RunE:  runImportABI,
	}

	importABICmd.Flags().String("pg-dsn", "", "Postgres DSN")
	importABICmd.Flags().String("address", "", "contract address")
	importABICmd.Flags().String("file", "", "ABI JSON file (bare array or artifact)")
	importABICmd.Flags().String("name", "", "interface name, defaults to the file name")
	importABICmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(importABICmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func addABIFlags(cmd *cobra.Command) {
	cmd.Flags().String("abi-dir", "", "directory of <address>.json ABI documents")
	cmd.Flags().String("abi", "", "extra address=path ABI documents (comma-separated)")
	cmd.Flags().Bool("abi-from-db", false, "load ABI documents from the contract_abis table")
	cmd.Flags().Int("workers", 0, "classification workers, 0 means GOMAXPROCS")
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
