package storage

import (
	"context"

	"actionScope/internal/model"
)

// Storage defines a sink for classified actions.
type Storage interface {
	PutActionBatch(ctx context.Context, actions []model.Action) error
}

// Multi writes every batch to each sink in order and stops at the first error.
type Multi []Storage

func (m Multi) PutActionBatch(ctx context.Context, actions []model.Action) error {
	for _, sink := range m {
		if err := sink.PutActionBatch(ctx, actions); err != nil {
			return err
		}
	}
	return nil
}
