package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"actionScope/internal/classify"
	"actionScope/internal/config"
	"actionScope/internal/registry"
	"actionScope/internal/resolver"
	"actionScope/internal/storage/postgres"
)

// newClassifier loads every configured ABI document source and builds the classifier.
// Later sources win for the same address: directory, then explicit files, then the database.
func newClassifier(ctx context.Context, sources config.ABISources, store *postgres.Store, logger *zap.Logger) (*classify.Classifier, error) {
	reg, err := registry.Default()
	if err != nil {
		return nil, fmt.Errorf("build registry: %w", err)
	}

	docs, err := resolver.LoadDir(sources.Dir, logger)
	if err != nil {
		return nil, err
	}
	fileDocs, err := resolver.LoadFiles(sources.Files)
	if err != nil {
		return nil, err
	}
	docs = append(docs, fileDocs...)

	if sources.FromDB {
		if store == nil {
			return nil, fmt.Errorf("abi-from-db requires pg-dsn")
		}
		rows, err := store.LoadContractABIs(ctx)
		if err != nil {
			return nil, err
		}
		dbDocs, err := resolver.FromContractABIs(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, dbDocs...)
	}

	res, err := resolver.New(docs...)
	if err != nil {
		return nil, err
	}
	logger.Info("abi documents loaded", zap.Int("contracts", res.Len()))

	return classify.New(reg, res, classify.WithWorkers(sources.Workers), classify.WithLogger(logger))
}

func openStore(ctx context.Context, dsn string) (*postgres.Store, error) {
	if dsn == "" {
		return nil, nil
	}
	store, err := postgres.NewStore(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := store.EnsureSchema(ctx); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}
