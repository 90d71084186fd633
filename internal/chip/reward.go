package chip

import "alphachip/internal/model"

// Composite reward weights. Power and signal dominate; the quantum bonus is a
// small additive term over the three auxiliary quality scalars.
const (
	powerWeight   = 0.3
	areaWeight    = 0.2
	thermalWeight = 0.2
	signalWeight  = 0.3
	quantumWeight = 0.15
)

// Reward scores a state's desirability. It is pure and deterministic: the
// same state always yields the same value. Output is unbounded above 1;
// callers must not assume a [0, 1] range.
func Reward(state model.ChipState) float64 {
	m := state.Metrics
	base := powerWeight*m.PowerEfficiency/100 +
		areaWeight*m.AreaUtilization/100 +
		thermalWeight*(1-m.ThermalDissipation/100) +
		signalWeight*m.SignalIntegrity/100

	bonus := quantumWeight * (state.QuantumCoherence + state.EntanglementDegree + state.HolographicFidelity) / 3
	return base + bonus
}
