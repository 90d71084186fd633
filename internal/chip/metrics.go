package chip

import (
	"math"

	"alphachip/internal/model"
)

// Sat clamps value to [min, max].
func Sat(value, max, min float64) float64 {
	if value > max {
		return max
	}
	if value < min {
		return min
	}
	return value
}

// SatPercent clamps a metric percentage to [0, 100].
func SatPercent(value float64) float64 {
	return Sat(value, 100, 0)
}

// SatUnit clamps a quality scalar to [0, 1].
func SatUnit(value float64) float64 {
	return Sat(value, 1, 0)
}

// ClampMetrics re-clamps every performance metric after an update.
func ClampMetrics(m model.PerformanceMetrics) model.PerformanceMetrics {
	return model.PerformanceMetrics{
		PowerEfficiency:    SatPercent(m.PowerEfficiency),
		AreaUtilization:    SatPercent(m.AreaUtilization),
		ThermalDissipation: SatPercent(m.ThermalDissipation),
		SignalIntegrity:    SatPercent(m.SignalIntegrity),
	}
}

// NetworkScore averages connection weights over live endpoints. A connection
// whose endpoint no longer exists counts as weight 0 rather than failing.
func NetworkScore(state model.ChipState) float64 {
	if len(state.Connections) == 0 {
		return 0
	}
	live := make(map[string]bool, len(state.Components))
	for _, c := range state.Components {
		live[c.ID] = true
	}
	total := 0.0
	for _, conn := range state.Connections {
		if !live[conn.From] || !live[conn.To] {
			continue
		}
		total += conn.Weight
	}
	return total / float64(len(state.Connections))
}

// MeanEfficiency averages component efficiency, ignoring dangling wiring.
func MeanEfficiency(state model.ChipState) float64 {
	if len(state.Components) == 0 {
		return 0
	}
	total := 0.0
	for _, c := range state.Components {
		total += c.Efficiency
	}
	return total / float64(len(state.Components))
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
