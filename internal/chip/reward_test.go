package chip

import (
	"math"
	"testing"

	"alphachip/internal/model"
)

func TestRewardDeterministic(t *testing.T) {
	state := sampleState(3)
	first := Reward(state)
	second := Reward(state)
	if first != second {
		t.Fatalf("reward not deterministic: %f vs %f", first, second)
	}
}

func TestRewardComposite(t *testing.T) {
	state := sampleState(0)

	// 0.3*0.75 + 0.2*0.8 + 0.2*0.8 + 0.3*0.9 + 0.15*mean(0.5, 0.4, 0.7)
	want := 0.225 + 0.16 + 0.16 + 0.27 + 0.15*(1.6/3)
	got := Reward(state)
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("unexpected reward: got=%f want=%f", got, want)
	}
}

func TestRewardFavorsBetterMetrics(t *testing.T) {
	worse := sampleState(0)
	better := worse
	better.Metrics.PowerEfficiency = 95
	better.Metrics.ThermalDissipation = 5

	if Reward(better) <= Reward(worse) {
		t.Fatal("expected higher reward for better metrics")
	}
}

func TestNetworkScoreIgnoresDangling(t *testing.T) {
	state := sampleState(2)
	state.Components[0].ID = "a"
	state.Components[1].ID = "b"
	state.Connections = []model.Connection{
		{ID: "x", From: "a", To: "b", Weight: 0.8},
		{ID: "y", From: "a", To: "gone", Weight: 0.9},
	}

	got := NetworkScore(state)
	want := 0.8 / 2
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("unexpected network score: got=%f want=%f", got, want)
	}
}

func TestClampMetrics(t *testing.T) {
	m := ClampMetrics(model.PerformanceMetrics{
		PowerEfficiency:    120,
		AreaUtilization:    -5,
		ThermalDissipation: 50,
		SignalIntegrity:    100.2,
	})
	if m.PowerEfficiency != 100 || m.AreaUtilization != 0 || m.ThermalDissipation != 50 || m.SignalIntegrity != 100 {
		t.Fatalf("unexpected clamped metrics: %+v", m)
	}
}
