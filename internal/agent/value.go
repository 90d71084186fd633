// Package agent implements the two competing learners that drive chip
// optimization: a value-based agent trained by experience replay and an
// actor-critic-style agent trained by advantage estimates.
package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"alphachip/internal/chip"
	"alphachip/internal/model"
	"alphachip/internal/nn"
	"alphachip/internal/replay"
	"alphachip/internal/storage"
)

// Persistent model slot names.
const (
	ValueAgentSlot  = "chip-design-agent"
	PolicyAgentSlot = "alphachip-model"
)

const (
	gamma = 0.99

	defaultBatchSize    = 32
	defaultLearningRate = 0.001
)

// FallbackAction is returned whenever inference fails. Optimization must
// always produce some action, and tightening connections is safe from any
// state.
const FallbackAction = model.ActionOptimizeConnections

type ValueAgentConfig struct {
	BufferCapacity int
	BatchSize      int
	LearningRate   float64
	Seed           int64
	Store          storage.Store
	Logger         *slog.Logger
}

// ValueAgent learns per-action expected returns over the narrow action set.
// Action selection is purely exploitative arg-max: no exploration noise is
// injected.
type ValueAgent struct {
	net    *nn.Network
	buffer *replay.Buffer
	batch  int
	store  storage.Store
	logger *slog.Logger
}

func NewValueAgent(cfg ValueAgentConfig) (*ValueAgent, error) {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.LearningRate <= 0 {
		cfg.LearningRate = defaultLearningRate
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	net, err := nn.New([]nn.LayerSpec{
		{Inputs: chip.NarrowWidth, Outputs: 128, Activation: nn.ActivationReLU},
		{Inputs: 128, Outputs: 64, Activation: nn.ActivationReLU},
		{Inputs: 64, Outputs: model.NarrowActionCount, Activation: nn.ActivationLinear},
	}, cfg.LearningRate, cfg.Seed)
	if err != nil {
		return nil, fmt.Errorf("build value network: %w", err)
	}

	return &ValueAgent{
		net:    net,
		buffer: replay.NewWithSeed(cfg.BufferCapacity, cfg.Seed),
		batch:  cfg.BatchSize,
		store:  cfg.Store,
		logger: cfg.Logger,
	}, nil
}

func (a *ValueAgent) BufferLen() int {
	return a.buffer.Len()
}

// NextAction encodes the state and returns the arg-max action. Encoding
// failures propagate; inference failures fall back to FallbackAction.
func (a *ValueAgent) NextAction(state model.ChipState) (model.Action, error) {
	vec, err := chip.EncodeNarrow(state)
	if err != nil {
		return 0, err
	}

	q, err := a.net.Forward(vec)
	if err != nil {
		a.logger.Warn("value inference failed, using fallback action", "error", err)
		return FallbackAction, nil
	}
	return model.NarrowActions()[nn.ArgMax(q)], nil
}

// Train records the transition and, once the buffer holds a full batch,
// performs one TD-target regression step over a uniformly sampled batch.
// While the buffer is under-filled the call is a no-op returning zero loss;
// the transition is still recorded.
func (a *ValueAgent) Train(state model.ChipState, action model.Action, reward float64, next model.ChipState) (float64, error) {
	if int(action) < 0 || int(action) >= model.NarrowActionCount {
		return 0, fmt.Errorf("%w: %s outside value agent set", model.ErrUnknownAction, action)
	}

	a.buffer.Add(model.Transition{State: state, Action: action, Reward: reward, NextState: next})
	if a.buffer.Len() < a.batch {
		return 0, nil
	}

	batch := a.buffer.Sample(a.batch)
	total := 0.0
	for _, tr := range batch {
		vec, err := chip.EncodeNarrow(tr.State)
		if err != nil {
			return 0, err
		}
		nextVec, err := chip.EncodeNarrow(tr.NextState)
		if err != nil {
			return 0, err
		}

		q, err := a.net.Forward(vec)
		if err != nil {
			a.skipTraining(err)
			return 0, nil
		}
		nextQ, err := a.net.Forward(nextVec)
		if err != nil {
			a.skipTraining(err)
			return 0, nil
		}

		// TD target replaces only the taken action's slot, so the loss
		// pressures nothing else.
		target := append([]float64(nil), q...)
		target[int(tr.Action)] = tr.Reward + gamma*nn.Max(nextQ)

		loss, err := a.net.Step(vec, target)
		if err != nil {
			a.skipTraining(err)
			return 0, nil
		}
		total += loss
	}
	return total / float64(len(batch)), nil
}

func (a *ValueAgent) skipTraining(err error) {
	a.logger.Warn("value training step skipped", "error", err)
}

// Save persists the network into the agent's model slot. Save failures
// propagate.
func (a *ValueAgent) Save(ctx context.Context) error {
	return saveModel(ctx, a.store, ValueAgentSlot, a.net)
}

// Load restores the network from the agent's model slot. A missing or corrupt
// slot is logged and leaves the initialized in-memory model untouched.
func (a *ValueAgent) Load(ctx context.Context) error {
	return loadModel(ctx, a.store, ValueAgentSlot, a.net, a.logger)
}

func saveModel(ctx context.Context, store storage.Store, slot string, net *nn.Network) error {
	if store == nil {
		return &storage.PersistenceError{Op: "save", Slot: slot, Err: errors.New("no store configured")}
	}
	snapshot := model.ModelSnapshot{
		VersionedRecord: storage.Stamp(),
		Slot:            slot,
		Layers:          net.Snapshot(),
	}
	if err := store.SaveModel(ctx, snapshot); err != nil {
		return &storage.PersistenceError{Op: "save", Slot: slot, Err: err}
	}
	return nil
}

func loadModel(ctx context.Context, store storage.Store, slot string, net *nn.Network, logger *slog.Logger) error {
	if store == nil {
		logger.Warn("model load skipped, no store configured", "slot", slot)
		return nil
	}
	snapshot, ok, err := store.GetModel(ctx, slot)
	if err != nil {
		logger.Warn("model load failed, keeping in-memory weights", "slot", slot, "error", err)
		return nil
	}
	if !ok {
		logger.Warn("no saved model in slot, keeping in-memory weights", "slot", slot)
		return nil
	}
	if err := net.Restore(snapshot.Layers); err != nil {
		logger.Warn("saved model is incompatible, keeping in-memory weights", "slot", slot, "error", err)
		return nil
	}
	return nil
}
