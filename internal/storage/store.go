package storage

import (
	"context"

	"alphachip/internal/model"
)

// Store defines persistence for trained model slots and chip design runs.
type Store interface {
	Init(ctx context.Context) error
	SaveModel(ctx context.Context, snapshot model.ModelSnapshot) error
	GetModel(ctx context.Context, slot string) (model.ModelSnapshot, bool, error)
	SaveChipState(ctx context.Context, runID string, state model.ChipState) error
	GetChipState(ctx context.Context, runID string) (model.ChipState, bool, error)
	SaveRewardHistory(ctx context.Context, runID string, history []float64) error
	GetRewardHistory(ctx context.Context, runID string) ([]float64, bool, error)
}
