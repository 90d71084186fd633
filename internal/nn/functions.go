package nn

import (
	"fmt"
	"math"
)

type Activation string

const (
	ActivationLinear  Activation = "linear"
	ActivationReLU    Activation = "relu"
	ActivationSigmoid Activation = "sigmoid"
	ActivationTanh    Activation = "tanh"
	ActivationSoftmax Activation = "softmax"
)

// applyActivation evaluates the activation over a whole layer. Softmax is the
// only vector-valued activation; the rest apply elementwise.
func applyActivation(name Activation, z []float64) ([]float64, error) {
	out := make([]float64, len(z))
	switch name {
	case ActivationLinear:
		copy(out, z)
	case ActivationReLU:
		for i, v := range z {
			if v > 0 {
				out[i] = v
			}
		}
	case ActivationSigmoid:
		for i, v := range z {
			out[i] = 1 / (1 + math.Exp(-v))
		}
	case ActivationTanh:
		for i, v := range z {
			out[i] = math.Tanh(v)
		}
	case ActivationSoftmax:
		max := math.Inf(-1)
		for _, v := range z {
			if v > max {
				max = v
			}
		}
		total := 0.0
		for i, v := range z {
			out[i] = math.Exp(v - max)
			total += out[i]
		}
		if total == 0 {
			return nil, fmt.Errorf("softmax: degenerate distribution")
		}
		for i := range out {
			out[i] /= total
		}
	default:
		return nil, fmt.Errorf("unsupported activation: %s", name)
	}
	return out, nil
}

// activationDerivative evaluates d(act)/dz at pre-activation z. It covers the
// elementwise activations used in hidden layers; output-layer gradients are
// supplied by the caller as dL/dz directly.
func activationDerivative(name Activation, z float64) (float64, error) {
	switch name {
	case ActivationLinear:
		return 1, nil
	case ActivationReLU:
		if z > 0 {
			return 1, nil
		}
		return 0, nil
	case ActivationSigmoid:
		s := 1 / (1 + math.Exp(-z))
		return s * (1 - s), nil
	case ActivationTanh:
		y := math.Tanh(z)
		return 1 - y*y, nil
	default:
		return 0, fmt.Errorf("unsupported hidden activation: %s", name)
	}
}

// Mean averages a vector; a zero-length vector averages to 0.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total / float64(len(values))
}

// ArgMax returns the index of the largest value, preferring the earliest on
// ties.
func ArgMax(values []float64) int {
	best := 0
	for i, v := range values {
		if v > values[best] {
			best = i
		}
	}
	return best
}

// Max returns the largest value, or 0 for an empty vector.
func Max(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	max := values[0]
	for _, v := range values[1:] {
		if v > max {
			max = v
		}
	}
	return max
}
