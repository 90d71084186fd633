package agent

import (
	"context"
	"errors"
	"math"
	"testing"

	"alphachip/internal/model"
	"alphachip/internal/storage"
)

func newTestPolicyAgent(t *testing.T, store storage.Store) *PolicyAgent {
	t.Helper()
	a, err := NewPolicyAgent(PolicyAgentConfig{
		Seed:   1,
		Store:  store,
		Logger: quietLogger(),
	})
	if err != nil {
		t.Fatalf("new policy agent: %v", err)
	}
	return a
}

// breakNetwork corrupts the agent's model so forward passes fail, simulating
// an internal computation fault.
func breakNetwork(t *testing.T, a *PolicyAgent) {
	t.Helper()
	snapshot := a.net.Snapshot()
	for i := range snapshot {
		snapshot[i].Activation = "corrupted"
	}
	if err := a.net.Restore(snapshot); err != nil {
		t.Fatalf("restore corrupted snapshot: %v", err)
	}
}

func TestPolicyAgentNextActionInWideSet(t *testing.T) {
	a := newTestPolicyAgent(t, nil)

	action, err := a.NextAction(testState(3))
	if err != nil {
		t.Fatalf("next action: %v", err)
	}
	found := false
	for _, known := range model.WideActions() {
		if action == known {
			found = true
		}
	}
	if !found {
		t.Fatalf("action outside wide set: %s", action)
	}
}

func TestPolicyAgentNextActionNeverRaises(t *testing.T) {
	a := newTestPolicyAgent(t, nil)
	breakNetwork(t, a)

	action, err := a.NextAction(testState(2))
	if err != nil {
		t.Fatalf("expected fallback, got error: %v", err)
	}
	if action != FallbackAction {
		t.Fatalf("expected fallback action %s, got %s", FallbackAction, action)
	}
}

func TestPolicyAgentRecordsObservedState(t *testing.T) {
	a := newTestPolicyAgent(t, nil)
	state := testState(4)

	if _, err := a.NextAction(state); err != nil {
		t.Fatalf("next action: %v", err)
	}
	if len(a.State().Components) != 4 {
		t.Fatalf("agent did not record observed state: %+v", a.State())
	}
}

func TestPolicyAgentTrainPPOReturnsSummedLoss(t *testing.T) {
	a := newTestPolicyAgent(t, nil)

	state := testState(1)
	next := testState(2)
	loss, err := a.TrainPPO(state, model.ActionAddProcessor, 0.9, next)
	if err != nil {
		t.Fatalf("train: %v", err)
	}
	if math.IsNaN(loss) || math.IsInf(loss, 0) {
		t.Fatalf("non-finite loss: %f", loss)
	}
}

func TestPolicyAgentTrainPPOSkipsOnFault(t *testing.T) {
	a := newTestPolicyAgent(t, nil)
	breakNetwork(t, a)

	loss, err := a.TrainPPO(testState(1), model.ActionAddProcessor, 0.5, testState(2))
	if err != nil {
		t.Fatalf("expected skipped training, got error: %v", err)
	}
	if loss != 0 {
		t.Fatalf("expected zero loss for skipped step, got %f", loss)
	}
}

func TestPolicyAgentTrainRejectsUnknownAction(t *testing.T) {
	a := newTestPolicyAgent(t, nil)

	_, err := a.TrainPPO(testState(1), model.Action(42), 0.5, testState(1))
	if !errors.Is(err, model.ErrUnknownAction) {
		t.Fatalf("expected ErrUnknownAction, got %v", err)
	}
}

func TestPolicyAgentRewardMatchesRewardModel(t *testing.T) {
	a := newTestPolicyAgent(t, nil)
	state := testState(2)

	// The agent's reward must stay consistent with the shared model:
	// 0.3·0.75 + 0.2·0.8 + 0.2·0.8 + 0.3·0.9 + 0.15·0.5
	want := 0.225 + 0.16 + 0.16 + 0.27 + 0.075
	got := a.CalculateReward(state)
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("reward drifted from shared model: got=%f want=%f", got, want)
	}
}

func TestPolicyAgentCriticValueIsMeanOfHead(t *testing.T) {
	a := newTestPolicyAgent(t, nil)

	v, err := a.CriticValue(testState(2))
	if err != nil {
		t.Fatalf("critic value: %v", err)
	}
	// Mean of a softmax head is 1/8 by construction; the critic is
	// deliberately degenerate.
	if math.Abs(v-1.0/8) > 1e-9 {
		t.Fatalf("unexpected critic value: %f", v)
	}
}

func TestPolicyAgentSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init store: %v", err)
	}

	a := newTestPolicyAgent(t, store)
	state := testState(5)
	want, err := a.NextAction(state)
	if err != nil {
		t.Fatalf("next action: %v", err)
	}
	if err := a.Save(ctx); err != nil {
		t.Fatalf("save: %v", err)
	}

	other, err := NewPolicyAgent(PolicyAgentConfig{Seed: 99, Store: store, Logger: quietLogger()})
	if err != nil {
		t.Fatalf("new policy agent: %v", err)
	}
	if err := other.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}

	got, err := other.NextAction(state)
	if err != nil {
		t.Fatalf("next action: %v", err)
	}
	if got != want {
		t.Fatalf("restored agent disagrees: got=%s want=%s", got, want)
	}
}
