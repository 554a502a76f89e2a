package aggregate

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"actionScope/internal/indexer"
	"actionScope/internal/model"
	"actionScope/internal/tokens"
)

// Config controls aggregation behavior.
type Config struct {
	WindowBlocks  uint64
	BatchSize     int
	RecomputeFrom uint64
	StateStore    indexer.CheckpointStore
}

// FlowStore persists token flow windows. *postgres.Store satisfies it.
type FlowStore interface {
	UpsertFlowWindows(ctx context.Context, windows []model.TokenFlowWindow) error
}

// MetaSource resolves token metadata. *tokens.Cache satisfies it.
type MetaSource interface {
	Meta(ctx context.Context, token common.Address) (model.TokenMeta, error)
}

// Aggregator folds action records into per-token flow windows.
type Aggregator struct {
	cfg          Config
	store        FlowStore
	meta         MetaSource
	logger       *zap.Logger
	accumulators map[common.Address]*Accumulator
}

func NewAggregator(cfg Config, store FlowStore, meta MetaSource, logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{
		cfg:          cfg,
		store:        store,
		meta:         meta,
		logger:       logger,
		accumulators: make(map[common.Address]*Accumulator),
	}
}

// Run executes aggregation over an action JSONL file.
func (a *Aggregator) Run(ctx context.Context, inputPath string) error {
	if a.store == nil {
		return fmt.Errorf("store is nil")
	}
	if a.meta == nil {
		return fmt.Errorf("token metadata source is nil")
	}
	if a.cfg.WindowBlocks == 0 {
		return fmt.Errorf("window blocks must be > 0")
	}
	if a.cfg.BatchSize <= 0 {
		a.cfg.BatchSize = 1000
	}

	startBlock, resume, err := a.loadStartBlock(ctx)
	if err != nil {
		return err
	}

	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)

	batch := make([]model.TokenFlowWindow, 0, a.cfg.BatchSize)
	maxBlock := startBlock
	var total, folded, skipped, failed, windows int

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		total++

		var action model.Action
		if err := json.Unmarshal(line, &action); err != nil {
			failed++
			a.logger.Warn("decode action", zap.Int("line", total), zap.Error(err))
			continue
		}

		if resume && action.BlockNumber <= startBlock {
			skipped++
			continue
		}
		if action.BlockNumber > maxBlock {
			maxBlock = action.BlockNumber
		}

		token, ok := tokenOf(action)
		if !ok {
			skipped++
			continue
		}

		start := windowStart(action.BlockNumber, a.cfg.WindowBlocks)
		acc := a.accumulators[token]
		if acc != nil && acc.WindowStart != start {
			window, err := a.flushAccumulator(ctx, acc)
			if err != nil {
				return err
			}
			batch = append(batch, window)
			windows++
			acc = nil
		}
		if acc == nil {
			acc = NewAccumulator(token, action.BlockNumber, start, start+a.cfg.WindowBlocks-1)
			a.accumulators[token] = acc
		}
		acc.AddAction(action)
		folded++

		if len(batch) >= a.cfg.BatchSize {
			if err := a.store.UpsertFlowWindows(ctx, batch); err != nil {
				return err
			}
			batch = batch[:0]
			if err := a.saveState(ctx, maxBlock); err != nil {
				return err
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan input: %w", err)
	}

	// Open windows are written as partial rows but stay out of the checkpoint, so the
	// next run rebuilds them from their first block.
	openStart, hasOpen := minOpenWindowStart(a.accumulators)
	for _, token := range a.openTokens() {
		window, err := a.flushAccumulator(ctx, a.accumulators[token])
		if err != nil {
			return err
		}
		batch = append(batch, window)
		windows++
	}
	a.accumulators = make(map[common.Address]*Accumulator)

	if len(batch) > 0 {
		if err := a.store.UpsertFlowWindows(ctx, batch); err != nil {
			return err
		}
	}
	if err := a.saveCheckpoint(ctx, maxBlock, openStart, hasOpen); err != nil {
		return err
	}

	a.logger.Info("aggregate complete",
		zap.Int("total", total),
		zap.Int("folded", folded),
		zap.Int("skipped", skipped),
		zap.Int("failed", failed),
		zap.Int("windows", windows),
	)
	return nil
}

// loadStartBlock returns the last block already aggregated, if any.
func (a *Aggregator) loadStartBlock(ctx context.Context) (uint64, bool, error) {
	if a.cfg.RecomputeFrom > 0 {
		return a.cfg.RecomputeFrom - 1, true, nil
	}
	if a.cfg.StateStore == nil {
		return 0, false, nil
	}
	return a.cfg.StateStore.Load(ctx)
}

// saveState stores the last block whose windows are all closed. With windows still
// open, that is the block before the earliest open window.
func (a *Aggregator) saveState(ctx context.Context, maxBlock uint64) error {
	openStart, hasOpen := minOpenWindowStart(a.accumulators)
	return a.saveCheckpoint(ctx, maxBlock, openStart, hasOpen)
}

func (a *Aggregator) saveCheckpoint(ctx context.Context, maxBlock, openStart uint64, hasOpen bool) error {
	if a.cfg.StateStore == nil {
		return nil
	}
	safe := maxBlock
	if hasOpen {
		if openStart == 0 {
			return nil
		}
		safe = openStart - 1
	}
	return a.cfg.StateStore.Save(ctx, safe)
}

func (a *Aggregator) flushAccumulator(ctx context.Context, acc *Accumulator) (model.TokenFlowWindow, error) {
	meta, err := a.meta.Meta(ctx, acc.Token)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return model.TokenFlowWindow{}, ctxErr
		}
		a.logger.Warn("token metadata", zap.String("token", acc.Token.Hex()), zap.Error(err))
	}

	return model.TokenFlowWindow{
		Token:            acc.Token.Hex(),
		Symbol:           meta.Symbol,
		Decimals:         meta.Decimals,
		WindowSizeBlocks: a.cfg.WindowBlocks,
		WindowStart:      acc.WindowStart,
		WindowEnd:        acc.WindowEnd,
		TransferCount:    acc.TransferCount,
		DepositCount:     acc.DepositCount,
		WithdrawalCount:  acc.WithdrawalCount,
		TransferVolume:   tokens.FormatAmount(acc.TransferVolume, meta.Decimals),
		DepositVolume:    tokens.FormatAmount(acc.DepositVolume, meta.Decimals),
		WithdrawalVolume: tokens.FormatAmount(acc.WithdrawalVolume, meta.Decimals),
		FirstBlock:       acc.FirstBlock,
		LastBlock:        acc.LastBlock,
	}, nil
}

// openTokens lists tokens with an open window in a stable order.
func (a *Aggregator) openTokens() []common.Address {
	out := make([]common.Address, 0, len(a.accumulators))
	for token := range a.accumulators {
		out = append(out, token)
	}
	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i][:], out[j][:]) < 0
	})
	return out
}

func windowStart(block uint64, windowBlocks uint64) uint64 {
	return block - (block % windowBlocks)
}

func minOpenWindowStart(acc map[common.Address]*Accumulator) (uint64, bool) {
	var earliest uint64
	var found bool
	for _, entry := range acc {
		if entry == nil {
			continue
		}
		if !found || entry.WindowStart < earliest {
			earliest = entry.WindowStart
			found = true
		}
	}
	return earliest, found
}
