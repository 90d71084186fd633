package agent

import (
	"context"
	"fmt"
	"log/slog"

	"alphachip/internal/chip"
	"alphachip/internal/model"
	"alphachip/internal/nn"
	"alphachip/internal/storage"
)

type PolicyAgentConfig struct {
	LearningRate float64
	Seed         int64
	Store        storage.Store
	Logger       *slog.Logger
}

// PolicyAgent selects over the full action set from a softmax distribution.
// The single network head doubles, via mean reduction, as the critic value;
// both loss terms share one forward pass.
type PolicyAgent struct {
	net    *nn.Network
	store  storage.Store
	logger *slog.Logger
	state  model.ChipState
}

func NewPolicyAgent(cfg PolicyAgentConfig) (*PolicyAgent, error) {
	if cfg.LearningRate <= 0 {
		cfg.LearningRate = defaultLearningRate
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	net, err := nn.New([]nn.LayerSpec{
		{Inputs: chip.WideWidth, Outputs: 128, Activation: nn.ActivationReLU},
		{Inputs: 128, Outputs: 64, Activation: nn.ActivationReLU},
		{Inputs: 64, Outputs: model.WideActionCount, Activation: nn.ActivationSoftmax},
	}, cfg.LearningRate, cfg.Seed)
	if err != nil {
		return nil, fmt.Errorf("build policy network: %w", err)
	}

	return &PolicyAgent{net: net, store: cfg.Store, logger: cfg.Logger}, nil
}

// State returns the last design the agent observed.
func (a *PolicyAgent) State() model.ChipState {
	return a.state
}

// NextAction records the state as the agent's current design and returns the
// arg-max of the action distribution. Encoding failures propagate; any
// computation failure after that falls back to FallbackAction so the caller
// always receives an action.
func (a *PolicyAgent) NextAction(state model.ChipState) (model.Action, error) {
	a.state = state

	vec, err := chip.EncodeWide(state)
	if err != nil {
		return 0, err
	}

	probs, err := a.net.Forward(vec)
	if err != nil {
		a.logger.Warn("policy inference failed, using fallback action", "error", err)
		return FallbackAction, nil
	}
	return model.WideActions()[nn.ArgMax(probs)], nil
}

// CriticValue reduces the shared head to a scalar baseline.
func (a *PolicyAgent) CriticValue(state model.ChipState) (float64, error) {
	vec, err := chip.EncodeWide(state)
	if err != nil {
		return 0, err
	}
	probs, err := a.net.Forward(vec)
	if err != nil {
		return 0, err
	}
	return nn.Mean(probs), nil
}

// CalculateReward exposes the shared composite reward.
func (a *PolicyAgent) CalculateReward(state model.ChipState) float64 {
	return chip.Reward(state)
}

// Train satisfies the loop's agent contract by delegating to TrainPPO.
func (a *PolicyAgent) Train(state model.ChipState, action model.Action, reward float64, next model.ChipState) (float64, error) {
	return a.TrainPPO(state, action, reward, next)
}

// TrainPPO performs one advantage-weighted gradient step. The advantage is
// reward + γ·V(next) − V(state); actor loss is the taken action's probability
// scaled by −advantage, critic loss is advantage². Numerical failures are
// logged and the step is skipped with the model unchanged.
func (a *PolicyAgent) TrainPPO(state model.ChipState, action model.Action, reward float64, next model.ChipState) (float64, error) {
	if int(action) < 0 || int(action) >= model.WideActionCount {
		return 0, fmt.Errorf("%w: %s outside policy agent set", model.ErrUnknownAction, action)
	}

	vec, err := chip.EncodeWide(state)
	if err != nil {
		return 0, err
	}
	nextVec, err := chip.EncodeWide(next)
	if err != nil {
		return 0, err
	}

	probs, err := a.net.Forward(vec)
	if err != nil {
		a.skipTraining(err)
		return 0, nil
	}
	nextProbs, err := a.net.Forward(nextVec)
	if err != nil {
		a.skipTraining(err)
		return 0, nil
	}

	advantage := reward + gamma*nn.Mean(nextProbs) - nn.Mean(probs)
	actorLoss := -probs[int(action)] * advantage
	criticLoss := advantage * advantage

	// dL/dz for the softmax logits of the actor term: the advantage is
	// treated as a constant baseline signal.
	delta := make([]float64, len(probs))
	taken := probs[int(action)]
	for i := range delta {
		indicator := 0.0
		if i == int(action) {
			indicator = 1
		}
		delta[i] = -advantage * taken * (indicator - probs[i])
	}

	if err := a.net.StepGrad(vec, delta); err != nil {
		a.skipTraining(err)
		return 0, nil
	}
	return actorLoss + criticLoss, nil
}

func (a *PolicyAgent) skipTraining(err error) {
	a.logger.Warn("policy training step skipped", "error", err)
}

// Save persists the network into the agent's model slot.
func (a *PolicyAgent) Save(ctx context.Context) error {
	return saveModel(ctx, a.store, PolicyAgentSlot, a.net)
}

// Load restores the network from the agent's model slot, fail-soft.
func (a *PolicyAgent) Load(ctx context.Context) error {
	return loadModel(ctx, a.store, PolicyAgentSlot, a.net, a.logger)
}
