package nn

import (
	"math"
	"testing"
)

func TestApplyActivation(t *testing.T) {
	tests := []struct {
		name   string
		act    Activation
		in     []float64
		want   []float64
		hasErr bool
	}{
		{name: "linear", act: ActivationLinear, in: []float64{1.5, -2}, want: []float64{1.5, -2}},
		{name: "relu", act: ActivationReLU, in: []float64{-1, 0, 3}, want: []float64{0, 0, 3}},
		{name: "sigmoid-zero", act: ActivationSigmoid, in: []float64{0}, want: []float64{0.5}},
		{name: "tanh-zero", act: ActivationTanh, in: []float64{0}, want: []float64{0}},
		{name: "unknown", act: Activation("none"), in: []float64{1}, hasErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := applyActivation(tc.act, tc.in)
			if tc.hasErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			for i := range tc.want {
				if math.Abs(got[i]-tc.want[i]) > 1e-9 {
					t.Fatalf("value %d: got=%f want=%f", i, got[i], tc.want[i])
				}
			}
		})
	}
}

func TestSoftmaxNormalizes(t *testing.T) {
	out, err := applyActivation(ActivationSoftmax, []float64{1, 2, 3, 4})
	if err != nil {
		t.Fatalf("softmax: %v", err)
	}

	total := 0.0
	for _, v := range out {
		if v <= 0 {
			t.Fatalf("softmax produced non-positive probability: %f", v)
		}
		total += v
	}
	if math.Abs(total-1) > 1e-9 {
		t.Fatalf("softmax does not sum to 1: %f", total)
	}
	if ArgMax(out) != 3 {
		t.Fatalf("softmax changed ordering: argmax=%d", ArgMax(out))
	}
}

func TestSoftmaxLargeInputsStable(t *testing.T) {
	out, err := applyActivation(ActivationSoftmax, []float64{1000, 1001})
	if err != nil {
		t.Fatalf("softmax: %v", err)
	}
	for _, v := range out {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("softmax overflowed: %v", out)
		}
	}
}

func TestActivationDerivative(t *testing.T) {
	tests := []struct {
		name string
		act  Activation
		z    float64
		want float64
	}{
		{name: "linear", act: ActivationLinear, z: 5, want: 1},
		{name: "relu-positive", act: ActivationReLU, z: 2, want: 1},
		{name: "relu-negative", act: ActivationReLU, z: -2, want: 0},
		{name: "sigmoid-zero", act: ActivationSigmoid, z: 0, want: 0.25},
		{name: "tanh-zero", act: ActivationTanh, z: 0, want: 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := activationDerivative(tc.act, tc.z)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if math.Abs(got-tc.want) > 1e-9 {
				t.Fatalf("got=%f want=%f", got, tc.want)
			}
		})
	}
}

func TestArgMaxPrefersEarliestTie(t *testing.T) {
	if got := ArgMax([]float64{0.2, 0.5, 0.5, 0.1}); got != 1 {
		t.Fatalf("unexpected argmax: %d", got)
	}
}

func TestMean(t *testing.T) {
	if got := Mean([]float64{1, 2, 3}); math.Abs(got-2) > 1e-9 {
		t.Fatalf("unexpected mean: %f", got)
	}
	if got := Mean(nil); got != 0 {
		t.Fatalf("mean of empty should be 0, got %f", got)
	}
}
