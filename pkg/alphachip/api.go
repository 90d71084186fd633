// Package alphachip is the public entry point for embedding the chip
// optimization engine: store selection, agent construction and run
// lifecycle in one client.
package alphachip

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"alphachip/internal/agent"
	"alphachip/internal/chip"
	"alphachip/internal/design"
	"alphachip/internal/model"
	"alphachip/internal/platform"
	"alphachip/internal/quantum"
	"alphachip/internal/storage"
)

const (
	defaultDBPath     = "alphachip.db"
	defaultIterations = 100
)

// AgentKind selects which learner drives a run.
const (
	AgentValue  = "value"
	AgentPolicy = "policy"
)

type Options struct {
	StoreKind string
	DBPath    string
	Logger    *slog.Logger
}

type Client struct {
	store  storage.Store
	logger *slog.Logger
}

func New(ctx context.Context, opts Options) (*Client, error) {
	if opts.DBPath == "" {
		opts.DBPath = defaultDBPath
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	store, err := storage.NewStore(opts.StoreKind, opts.DBPath)
	if err != nil {
		return nil, err
	}
	if err := store.Init(ctx); err != nil {
		return nil, fmt.Errorf("initialize store: %w", err)
	}

	return &Client{store: store, logger: opts.Logger}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

type RunRequest struct {
	RunID          string
	Agent          string
	Iterations     int
	Interval       time.Duration
	Seed           int64
	BatchSize      int
	BufferCapacity int
	LearningRate   float64
	InitialMetrics *model.PerformanceMetrics
	LoadModel      bool
	SaveModel      bool
	Observer       platform.Observer
}

type RunResult struct {
	RunID         string          `json:"run_id"`
	Agent         string          `json:"agent"`
	Iterations    int             `json:"iterations"`
	FinalReward   float64         `json:"final_reward"`
	RewardHistory []float64       `json:"reward_history"`
	FinalState    model.ChipState `json:"final_state"`
}

type persistentAgent interface {
	platform.Agent
	Save(ctx context.Context) error
	Load(ctx context.Context) error
}

// Run executes one optimization run to completion and persists its reward
// history and final layout under the run id.
func (c *Client) Run(ctx context.Context, req RunRequest) (RunResult, error) {
	if req.RunID == "" {
		return RunResult{}, fmt.Errorf("run id is required")
	}
	if req.Iterations <= 0 {
		req.Iterations = defaultIterations
	}

	learner, err := c.buildAgent(req)
	if err != nil {
		return RunResult{}, err
	}
	if req.LoadModel {
		if err := learner.Load(ctx); err != nil {
			return RunResult{}, err
		}
	}

	loop, err := platform.NewLoop(platform.LoopConfig{
		Agent:         learner,
		Engine:        design.NewEngine(req.Seed),
		Initial:       initialState(req.InitialMetrics),
		Interval:      req.Interval,
		MaxIterations: req.Iterations,
		Logger:        c.logger,
	})
	if err != nil {
		return RunResult{}, err
	}
	if req.Observer != nil {
		loop.AddObserver(req.Observer)
	}

	if err := loop.Start(ctx); err != nil {
		return RunResult{}, err
	}
	if err := loop.Wait(); err != nil {
		return RunResult{}, fmt.Errorf("run %s: %w", req.RunID, err)
	}

	final := loop.State()
	history := loop.History()
	if err := c.store.SaveChipState(ctx, req.RunID, final); err != nil {
		return RunResult{}, fmt.Errorf("persist chip state: %w", err)
	}
	if err := c.store.SaveRewardHistory(ctx, req.RunID, history); err != nil {
		return RunResult{}, fmt.Errorf("persist reward history: %w", err)
	}
	if req.SaveModel {
		if err := learner.Save(ctx); err != nil {
			return RunResult{}, err
		}
	}

	result := RunResult{
		RunID:         req.RunID,
		Agent:         req.Agent,
		Iterations:    loop.Iterations(),
		RewardHistory: history,
		FinalState:    final,
	}
	if len(history) > 0 {
		result.FinalReward = history[len(history)-1]
	}
	return result, nil
}

// RunSupervised executes a run under restart supervision: a failed run is
// retried from scratch with exponential backoff until it completes or the
// restart budget is exhausted.
func (c *Client) RunSupervised(ctx context.Context, req RunRequest, maxRestarts int) (RunResult, error) {
	if req.RunID == "" {
		return RunResult{}, fmt.Errorf("run id is required")
	}

	resultCh := make(chan RunResult, 1)
	failCh := make(chan error, 1)
	sup := platform.NewSupervisorWithHooks(
		platform.SupervisorPolicy{MaxRestarts: maxRestarts},
		platform.SupervisorHooks{
			OnRestart: func(name string, err error, restartCount int) {
				c.logger.Warn("restarting run", "run_id", name, "error", err, "restart", restartCount)
			},
			OnPermanentFailure: func(name string, err error, restartCount int) {
				failCh <- fmt.Errorf("run %s failed after %d restarts: %w", name, restartCount, err)
			},
		},
	)
	err := sup.Start(req.RunID, func(taskCtx context.Context) error {
		result, err := c.Run(taskCtx, req)
		if err != nil {
			return err
		}
		resultCh <- result
		return nil
	})
	if err != nil {
		return RunResult{}, err
	}
	defer sup.StopAll()

	select {
	case result := <-resultCh:
		return result, nil
	case err := <-failCh:
		return RunResult{}, err
	case <-ctx.Done():
		return RunResult{}, ctx.Err()
	}
}

func (c *Client) buildAgent(req RunRequest) (persistentAgent, error) {
	switch req.Agent {
	case "", AgentValue:
		return agent.NewValueAgent(agent.ValueAgentConfig{
			BufferCapacity: req.BufferCapacity,
			BatchSize:      req.BatchSize,
			LearningRate:   req.LearningRate,
			Seed:           req.Seed,
			Store:          c.store,
			Logger:         c.logger,
		})
	case AgentPolicy:
		return agent.NewPolicyAgent(agent.PolicyAgentConfig{
			LearningRate: req.LearningRate,
			Seed:         req.Seed,
			Store:        c.store,
			Logger:       c.logger,
		})
	default:
		return nil, fmt.Errorf("unsupported agent kind: %s", req.Agent)
	}
}

func initialState(metrics *model.PerformanceMetrics) model.ChipState {
	state := model.ChipState{
		VersionedRecord: storage.Stamp(),
		Metrics: model.PerformanceMetrics{
			PowerEfficiency:    75,
			AreaUtilization:    80,
			ThermalDissipation: 20,
			SignalIntegrity:    90,
		},
		QuantumCoherence:    0.5,
		ProcessingPower:     1.0,
		NetworkEfficiency:   0.5,
		EntanglementDegree:  0.5,
		HolographicFidelity: 0.5,
	}
	if metrics != nil {
		state.Metrics = chip.ClampMetrics(*metrics)
	}
	return state
}

// RewardHistory returns a stored run's per-iteration rewards.
func (c *Client) RewardHistory(ctx context.Context, runID string) ([]float64, bool, error) {
	return c.store.GetRewardHistory(ctx, runID)
}

// ChipState returns a stored run's final layout.
func (c *Client) ChipState(ctx context.Context, runID string) (model.ChipState, bool, error) {
	return c.store.GetChipState(ctx, runID)
}

// Model returns the raw snapshot stored in a slot.
func (c *Client) Model(ctx context.Context, slot string) (model.ModelSnapshot, bool, error) {
	return c.store.GetModel(ctx, slot)
}

// ExportProcessorState writes a fresh holographic processor snapshot to a
// JSON file.
func (c *Client) ExportProcessorState(path string, qubits int, seed int64) error {
	state := quantum.NewProcessor(qubits, seed).SaveState()
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ImportProcessorState reads a snapshot file back into a processor,
// rejecting malformed input.
func (c *Client) ImportProcessorState(path string) (*quantum.Processor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var state model.ProcessorState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("decode processor state: %w", err)
	}

	p := quantum.NewProcessor(0, 0)
	if err := p.LoadState(state); err != nil {
		return nil, err
	}
	return p, nil
}
