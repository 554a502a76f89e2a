package indexer

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"actionScope/internal/metrics"
	"actionScope/internal/model"
	"actionScope/internal/storage"
)

// TraceSource supplies call traces per block. *chain.Client satisfies it.
type TraceSource interface {
	LatestBlockNumber(ctx context.Context) (uint64, error)
	TraceBlock(ctx context.Context, number uint64) ([]model.CallTrace, error)
}

// BatchClassifier turns an ordered trace batch into an equally ordered action batch.
// *classify.Classifier satisfies it.
type BatchClassifier interface {
	ClassifyBatch(ctx context.Context, traces []model.CallTrace) ([]model.Action, error)
}

// RunConfig holds runtime settings for the runner.
type RunConfig struct {
	FromBlock    uint64
	ToBlock      uint64
	Addresses    []common.Address
	BatchSize    uint64
	MaxRetries   int
	RetryBackoff time.Duration
}

// Runner traces blocks, classifies every trace and writes the actions to storage.
type Runner struct {
	cfg        RunConfig
	source     TraceSource
	classifier BatchClassifier
	storage    storage.Storage
	checkpoint CheckpointStore
	metrics    *metrics.Recorder
	logger     *zap.Logger
	filter     map[common.Address]struct{}
}

// NewRunner builds a Runner with its dependencies. checkpoint and recorder may be nil.
func NewRunner(
	cfg RunConfig,
	source TraceSource,
	classifier BatchClassifier,
	sink storage.Storage,
	checkpoint CheckpointStore,
	recorder *metrics.Recorder,
	logger *zap.Logger,
) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	var filter map[common.Address]struct{}
	if len(cfg.Addresses) > 0 {
		filter = make(map[common.Address]struct{}, len(cfg.Addresses))
		for _, addr := range cfg.Addresses {
			filter[addr] = struct{}{}
		}
	}
	return &Runner{
		cfg:        cfg,
		source:     source,
		classifier: classifier,
		storage:    sink,
		checkpoint: checkpoint,
		metrics:    recorder,
		logger:     logger,
		filter:     filter,
	}
}

// Run processes [FromBlock, ToBlock], resuming after the stored checkpoint. A ToBlock of
// zero means the latest block.
func (r *Runner) Run(ctx context.Context) error {
	if r.source == nil {
		return fmt.Errorf("trace source is nil")
	}
	if r.classifier == nil {
		return fmt.Errorf("classifier is nil")
	}
	if r.storage == nil {
		return fmt.Errorf("storage is nil")
	}
	if r.cfg.BatchSize == 0 {
		return fmt.Errorf("batch size must be greater than zero")
	}

	from := r.cfg.FromBlock
	to := r.cfg.ToBlock
	if to == 0 {
		var latest uint64
		err := withRetry(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, func(ctx context.Context) error {
			var err error
			latest, err = r.source.LatestBlockNumber(ctx)
			return err
		})
		if err != nil {
			return fmt.Errorf("get latest block: %w", err)
		}
		to = latest
	}

	if r.checkpoint != nil {
		last, ok, err := r.checkpoint.Load(ctx)
		if err != nil {
			return err
		}
		if ok && last >= from {
			from = last + 1
			r.logger.Info("resume from checkpoint", zap.Uint64("last_processed", last), zap.Uint64("from", from))
		}
	}

	if from > to {
		r.logger.Info("nothing to sync", zap.Uint64("from", from), zap.Uint64("to", to))
		return nil
	}

	ranges, err := SplitRange(from, to, r.cfg.BatchSize)
	if err != nil {
		return err
	}

	for _, blockRange := range ranges {
		if err := r.runRange(ctx, blockRange); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) runRange(ctx context.Context, blockRange BlockRange) error {
	actions := make([]model.Action, 0, blockRange.Len())
	var traced int
	for number := blockRange.From; number <= blockRange.To; number++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		start := time.Now()
		traces, err := r.traceBlockWithRetry(ctx, number)
		if err != nil {
			return err
		}
		traces = r.filterTraces(traces)
		traced += len(traces)

		blockActions, err := r.classifier.ClassifyBatch(ctx, traces)
		if err != nil {
			return fmt.Errorf("classify block %d: %w", number, err)
		}
		actions = append(actions, blockActions...)
		r.metrics.ObserveBlock(time.Since(start))
	}

	if err := r.storage.PutActionBatch(ctx, actions); err != nil {
		return fmt.Errorf("store actions: %w", err)
	}
	r.metrics.ObserveActions(actions)

	if r.checkpoint != nil {
		if err := r.checkpoint.Save(ctx, blockRange.To); err != nil {
			return err
		}
	}
	r.metrics.SetLastBlock(blockRange.To)

	r.logger.Info("batch complete",
		zap.Uint64("from", blockRange.From),
		zap.Uint64("to", blockRange.To),
		zap.Uint64("blocks", blockRange.Len()),
		zap.Int("traces", traced),
		zap.Int("actions", len(actions)),
		zap.Int("unclassified", countUnclassified(actions)),
	)
	return nil
}

func (r *Runner) traceBlockWithRetry(ctx context.Context, number uint64) ([]model.CallTrace, error) {
	var traces []model.CallTrace
	err := withRetry(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, func(ctx context.Context) error {
		var err error
		traces, err = r.source.TraceBlock(ctx, number)
		if err != nil {
			r.logger.Warn("trace block failed", zap.Error(err), zap.Uint64("block", number))
		}
		return err
	})
	return traces, err
}

// filterTraces keeps traces sent to the configured addresses, preserving order.
func (r *Runner) filterTraces(traces []model.CallTrace) []model.CallTrace {
	if r.filter == nil {
		return traces
	}
	out := traces[:0]
	for _, trace := range traces {
		if _, ok := r.filter[trace.To]; ok {
			out = append(out, trace)
		}
	}
	return out
}

func countUnclassified(actions []model.Action) int {
	var n int
	for _, action := range actions {
		if action.Kind == model.KindUnclassified {
			n++
		}
	}
	return n
}
