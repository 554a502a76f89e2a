package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"actionScope/internal/config"
	"actionScope/internal/indexer"
	"actionScope/internal/model"
)

// maxErrorInput bounds how much of an unreadable line is copied into the errors file.
const maxErrorInput = 512

func runClassify(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadClassify(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.In == "" {
		return fmt.Errorf("input path is required")
	}
	if cfg.Out == "" {
		return fmt.Errorf("output path is required")
	}
	if cfg.Errors == "" {
		return fmt.Errorf("errors path is required")
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

	inputFile, err := os.Open(cfg.In)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer inputFile.Close()

	outWriter, err := newJSONLWriter(cfg.Out, false)
	if err != nil {
		return err
	}
	defer outWriter.Close()

	errWriter, err := newJSONLWriter(cfg.Errors, false)
	if err != nil {
		return err
	}
	defer errWriter.Close()

	logger.Info("classify start",
		zap.String("in", cfg.In),
		zap.String("out", cfg.Out),
		zap.String("errors", cfg.Errors),
		zap.Int("batch_size", cfg.BatchSize),
	)

	stats, err := classifyStream(ctx, classifier, inputFile, outWriter, errWriter, cfg.BatchSize)
	if err != nil {
		return err
	}
	if err := outWriter.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	if err := errWriter.Close(); err != nil {
		return fmt.Errorf("close errors output: %w", err)
	}

	logger.Info("classify complete",
		zap.Int("total", stats.total),
		zap.Int("classified", stats.classified),
		zap.Int("unclassified", stats.unclassified),
		zap.Int("failed", stats.failed),
	)
	return nil
}

type classifyStats struct {
	total        int
	classified   int
	unclassified int
	failed       int
}

// classifyStream reads CallTrace JSON lines, classifies them in batches and writes one
// action per trace in input order. Unreadable lines go to errWriter.
func classifyStream(ctx context.Context, classifier indexer.BatchClassifier, in io.Reader, out, errWriter *jsonlWriter, batchSize int) (classifyStats, error) {
	if batchSize <= 0 {
		batchSize = 1000
	}

	scanner := bufio.NewScanner(in)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)

	var stats classifyStats
	batch := make([]model.CallTrace, 0, batchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		actions, err := classifier.ClassifyBatch(ctx, batch)
		if err != nil {
			return err
		}
		for i := range actions {
			if actions[i].Kind == model.KindUnclassified {
				stats.unclassified++
			} else {
				stats.classified++
			}
			if err := out.Write(&actions[i]); err != nil {
				return err
			}
		}
		batch = batch[:0]
		return nil
	}

	var lineNo int
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		stats.total++

		var trace model.CallTrace
		if err := json.Unmarshal(line, &trace); err != nil {
			stats.failed++
			input := string(line)
			if len(input) > maxErrorInput {
				input = input[:maxErrorInput]
			}
			if err := errWriter.Write(model.DecodeError{Line: lineNo, Input: input, Error: err.Error()}); err != nil {
				return stats, err
			}
			continue
		}

		batch = append(batch, trace)
		if len(batch) >= batchSize {
			if err := flush(); err != nil {
				return stats, err
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return stats, fmt.Errorf("scan input: %w", err)
	}
	if err := flush(); err != nil {
		return stats, err
	}
	return stats, nil
}

type jsonlWriter struct {
	file   *os.File
	writer *bufio.Writer
}

func newJSONLWriter(path string, appendMode bool) (*jsonlWriter, error) {
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create dir: %w", err)
		}
	}

	flags := os.O_CREATE | os.O_WRONLY
	if appendMode {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}

	file, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}

	return &jsonlWriter{
		file:   file,
		writer: bufio.NewWriter(file),
	}, nil
}

func (w *jsonlWriter) Write(value interface{}) error {
	line, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if _, err := w.writer.Write(line); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	if err := w.writer.WriteByte('\n'); err != nil {
		return fmt.Errorf("write newline: %w", err)
	}
	return nil
}

// Close flushes buffered lines and closes the file. Calls after the first are no-ops,
// so a deferred Close can back up an explicit one.
func (w *jsonlWriter) Close() error {
	if w == nil || w.file == nil {
		return nil
	}
	file := w.file
	w.file = nil
	if err := w.writer.Flush(); err != nil {
		file.Close()
		return fmt.Errorf("flush: %w", err)
	}
	return file.Close()
}
