package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"actionScope/internal/chain"
	"actionScope/internal/config"
	"actionScope/internal/indexer"
	"actionScope/internal/metrics"
	"actionScope/internal/storage"
)

func runClassifier(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.RPCURL == "" {
		return fmt.Errorf("rpc url is required")
	}
	addresses, err := indexer.ParseAddresses(cfg.Addresses)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg.PGDSN)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	classifier, err := newClassifier(ctx, cfg.ABI, store, logger)
	if err != nil {
		return err
	}

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	sinks := storage.Multi{storage.NewJsonlStorage(cfg.Out)}
	var checkpoint indexer.CheckpointStore
	if cfg.CheckpointEnabled {
		checkpoint = &indexer.FileCheckpoint{Path: cfg.Checkpoint}
	}
	if store != nil {
		sinks = append(sinks, store)
		if cfg.CheckpointEnabled {
			checkpoint = &indexer.DBCheckpoint{Store: store, Name: cfg.StateName}
		}
	}

	var recorder *metrics.Recorder
	if cfg.MetricsAddr != "" {
		recorder = metrics.New()
	}

	runner := indexer.NewRunner(indexer.RunConfig{
		FromBlock:    cfg.FromBlock,
		ToBlock:      cfg.ToBlock,
		Addresses:    addresses,
		BatchSize:    cfg.BatchSize,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
	}, chainClient, classifier, sinks, checkpoint, recorder, logger)

	logger.Info("classifier start",
		zap.String("rpc", cfg.RPCURL),
		zap.Uint64("from", cfg.FromBlock),
		zap.Uint64("to", cfg.ToBlock),
		zap.Int("addresses", len(addresses)),
		zap.Uint64("batch_size", cfg.BatchSize),
		zap.String("out", cfg.Out),
		zap.Bool("postgres", store != nil),
		zap.Bool("checkpoint_enabled", cfg.CheckpointEnabled),
		zap.String("metrics_addr", cfg.MetricsAddr),
	)

	if recorder == nil {
		return runner.Run(ctx)
	}

	g, gctx := errgroup.WithContext(ctx)
	serveCtx, stopServe := context.WithCancel(gctx)
	g.Go(func() error {
		return metrics.Serve(serveCtx, cfg.MetricsAddr, recorder.Gatherer(), logger)
	})
	g.Go(func() error {
		defer stopServe()
		return runner.Run(gctx)
	})
	return g.Wait()
}
