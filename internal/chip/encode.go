package chip

import "alphachip/internal/model"

// Fixed encoding widths per agent. The encoding is order-dependent and
// zero-padded so identical states always produce identical vectors.
const (
	NarrowWidth = 10
	WideWidth   = 30

	componentWindow  = 5
	connectionWindow = 5
	countScale       = 10.0
)

// EncodeNarrow vectorizes a state for the value agent: component count,
// normalized metrics, then the auxiliary quality scalars.
func EncodeNarrow(state model.ChipState) ([]float64, error) {
	features, err := baseFeatures(state)
	if err != nil {
		return nil, err
	}
	return fit(features, NarrowWidth), nil
}

// EncodeWide vectorizes a state for the policy agent: the narrow features
// followed by a window of per-component geometry and connection weights, in
// original collection order.
func EncodeWide(state model.ChipState) ([]float64, error) {
	features, err := baseFeatures(state)
	if err != nil {
		return nil, err
	}

	for i, c := range state.Components {
		if i >= componentWindow {
			break
		}
		features = append(features, c.Position.X, c.Position.Y, c.Position.Z, c.Efficiency, c.Temperature)
	}
	for i, conn := range state.Connections {
		if i >= connectionWindow {
			break
		}
		features = append(features, conn.Weight)
	}
	return fit(features, WideWidth), nil
}

func baseFeatures(state model.ChipState) ([]float64, error) {
	m := state.Metrics
	features := []float64{
		float64(len(state.Components)) / countScale,
		m.PowerEfficiency / 100,
		m.AreaUtilization / 100,
		m.ThermalDissipation / 100,
		m.SignalIntegrity / 100,
		state.QuantumCoherence,
		state.ProcessingPower,
		state.NetworkEfficiency,
		state.EntanglementDegree,
		state.HolographicFidelity,
	}

	names := [...]string{
		"component_count", "power_efficiency", "area_utilization", "thermal_dissipation",
		"signal_integrity", "quantum_coherence", "processing_power", "network_efficiency",
		"entanglement_degree", "holographic_fidelity",
	}
	for i, v := range features {
		if !finite(v) {
			return nil, &EncodingError{Field: names[i], Value: v}
		}
	}
	return features, nil
}

func fit(features []float64, width int) []float64 {
	out := make([]float64, width)
	copy(out, features)
	return out
}
