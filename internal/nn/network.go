// Package nn implements the dense feed-forward function approximators behind
// both learning agents, including the backpropagation steps they train with.
package nn

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"alphachip/internal/model"
)

type LayerSpec struct {
	Inputs     int
	Outputs    int
	Activation Activation
}

type layer struct {
	weights    *mat.Dense // outputs × inputs
	biases     *mat.VecDense
	activation Activation
}

// Network is a chain of dense layers trained by stochastic gradient descent.
// It is not safe for concurrent use; the optimization loop is the single
// caller by construction.
type Network struct {
	layers []*layer
	lr     float64
}

// New builds a network from layer specs, validating that each layer's input
// width matches its predecessor's output width. Weights use scaled-normal
// initialization from the given seed so runs are reproducible.
func New(specs []LayerSpec, learningRate float64, seed int64) (*Network, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("at least one layer is required")
	}
	if learningRate <= 0 {
		return nil, fmt.Errorf("learning rate must be positive, got %f", learningRate)
	}

	rng := rand.New(rand.NewSource(seed))
	layers := make([]*layer, 0, len(specs))
	for i, spec := range specs {
		if spec.Inputs <= 0 || spec.Outputs <= 0 {
			return nil, fmt.Errorf("layer %d: widths must be positive", i)
		}
		if i > 0 && spec.Inputs != specs[i-1].Outputs {
			return nil, fmt.Errorf("layer %d: input width %d does not match previous output width %d",
				i, spec.Inputs, specs[i-1].Outputs)
		}

		scale := math.Sqrt(2 / float64(spec.Inputs))
		weights := make([]float64, spec.Outputs*spec.Inputs)
		for j := range weights {
			weights[j] = rng.NormFloat64() * scale
		}
		layers = append(layers, &layer{
			weights:    mat.NewDense(spec.Outputs, spec.Inputs, weights),
			biases:     mat.NewVecDense(spec.Outputs, nil),
			activation: spec.Activation,
		})
	}
	return &Network{layers: layers, lr: learningRate}, nil
}

func (n *Network) InputWidth() int {
	_, cols := n.layers[0].weights.Dims()
	return cols
}

func (n *Network) OutputWidth() int {
	rows, _ := n.layers[len(n.layers)-1].weights.Dims()
	return rows
}

type forwardPass struct {
	inputs  []*mat.VecDense // input vector fed to each layer
	preacts []*mat.VecDense // z = W·x + b per layer
	output  []float64
}

func (n *Network) forward(input []float64) (*forwardPass, error) {
	if len(input) != n.InputWidth() {
		return nil, &InferenceError{
			Op:  "forward",
			Err: fmt.Errorf("input width %d, network expects %d", len(input), n.InputWidth()),
		}
	}

	pass := &forwardPass{
		inputs:  make([]*mat.VecDense, len(n.layers)),
		preacts: make([]*mat.VecDense, len(n.layers)),
	}

	current := mat.NewVecDense(len(input), append([]float64(nil), input...))
	for i, l := range n.layers {
		rows, _ := l.weights.Dims()
		z := mat.NewVecDense(rows, nil)
		z.MulVec(l.weights, current)
		z.AddVec(z, l.biases)

		pass.inputs[i] = current
		pass.preacts[i] = z

		activated, err := applyActivation(l.activation, z.RawVector().Data)
		if err != nil {
			return nil, &InferenceError{Op: "forward", Err: err}
		}
		current = mat.NewVecDense(len(activated), activated)
	}

	pass.output = current.RawVector().Data
	return pass, nil
}

// Forward runs one inference pass and returns the output activations.
func (n *Network) Forward(input []float64) ([]float64, error) {
	pass, err := n.forward(input)
	if err != nil {
		return nil, err
	}
	return append([]float64(nil), pass.output...), nil
}

// Step performs one mean-squared-error gradient step against target. The
// output layer must be linear; the MSE gradient is applied directly as the
// output delta. Returns the pre-step loss.
func (n *Network) Step(input, target []float64) (float64, error) {
	if len(target) != n.OutputWidth() {
		return 0, &TrainingError{
			Op:  "step",
			Err: fmt.Errorf("target width %d, network outputs %d", len(target), n.OutputWidth()),
		}
	}

	pass, err := n.forward(input)
	if err != nil {
		return 0, &TrainingError{Op: "step", Err: err}
	}

	loss := 0.0
	delta := make([]float64, len(target))
	for i, y := range pass.output {
		diff := y - target[i]
		loss += diff * diff
		delta[i] = 2 * diff / float64(len(target))
	}
	loss /= float64(len(target))

	if err := n.backward(pass, delta); err != nil {
		return 0, err
	}
	return loss, nil
}

// StepGrad performs one gradient step from a caller-supplied output delta,
// interpreted as dL/dz at the output layer. This is the entry point for
// losses the network does not know how to differentiate itself, such as the
// policy agent's advantage-weighted objective.
func (n *Network) StepGrad(input, outputDelta []float64) error {
	if len(outputDelta) != n.OutputWidth() {
		return &TrainingError{
			Op:  "step-grad",
			Err: fmt.Errorf("delta width %d, network outputs %d", len(outputDelta), n.OutputWidth()),
		}
	}

	pass, err := n.forward(input)
	if err != nil {
		return &TrainingError{Op: "step-grad", Err: err}
	}
	return n.backward(pass, outputDelta)
}

// backward propagates delta (dL/dz at the output layer) down the chain and
// applies one SGD update per layer.
func (n *Network) backward(pass *forwardPass, outputDelta []float64) error {
	delta := mat.NewVecDense(len(outputDelta), append([]float64(nil), outputDelta...))

	for i := len(n.layers) - 1; i >= 0; i-- {
		l := n.layers[i]

		var prevDelta *mat.VecDense
		if i > 0 {
			_, cols := l.weights.Dims()
			back := mat.NewVecDense(cols, nil)
			back.MulVec(l.weights.T(), delta)

			prev := pass.preacts[i-1]
			prevDelta = mat.NewVecDense(cols, nil)
			for j := 0; j < cols; j++ {
				d, err := activationDerivative(n.layers[i-1].activation, prev.AtVec(j))
				if err != nil {
					return &TrainingError{Op: "backward", Err: err}
				}
				prevDelta.SetVec(j, back.AtVec(j)*d)
			}
		}

		l.weights.RankOne(l.weights, -n.lr, delta, pass.inputs[i])
		l.biases.AddScaledVec(l.biases, -n.lr, delta)

		delta = prevDelta
	}
	return nil
}

// Snapshot captures the network weights for persistence.
func (n *Network) Snapshot() []model.LayerSnapshot {
	out := make([]model.LayerSnapshot, len(n.layers))
	for i, l := range n.layers {
		rows, cols := l.weights.Dims()
		out[i] = model.LayerSnapshot{
			Inputs:     cols,
			Outputs:    rows,
			Activation: string(l.activation),
			Weights:    append([]float64(nil), l.weights.RawMatrix().Data...),
			Biases:     append([]float64(nil), l.biases.RawVector().Data...),
		}
	}
	return out
}

// Restore replaces the network weights from a snapshot. The snapshot must
// match the network's architecture exactly; on mismatch the network is left
// untouched.
func (n *Network) Restore(snapshot []model.LayerSnapshot) error {
	if len(snapshot) != len(n.layers) {
		return fmt.Errorf("snapshot has %d layers, network has %d", len(snapshot), len(n.layers))
	}
	for i, ls := range snapshot {
		rows, cols := n.layers[i].weights.Dims()
		if ls.Outputs != rows || ls.Inputs != cols {
			return fmt.Errorf("layer %d: snapshot is %dx%d, network is %dx%d", i, ls.Outputs, ls.Inputs, rows, cols)
		}
		if len(ls.Weights) != rows*cols || len(ls.Biases) != rows {
			return fmt.Errorf("layer %d: snapshot payload sizes do not match declared dimensions", i)
		}
	}
	for i, ls := range snapshot {
		rows, cols := n.layers[i].weights.Dims()
		n.layers[i].weights = mat.NewDense(rows, cols, append([]float64(nil), ls.Weights...))
		n.layers[i].biases = mat.NewVecDense(rows, append([]float64(nil), ls.Biases...))
		n.layers[i].activation = Activation(ls.Activation)
	}
	return nil
}
