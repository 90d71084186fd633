package model

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

type ComponentType string

const (
	ComponentProcessor   ComponentType = "processor"
	ComponentMemory      ComponentType = "memory"
	ComponentQuantumUnit ComponentType = "quantum-unit"
	ComponentOpticalUnit ComponentType = "optical-unit"
)

type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

type Component struct {
	ID          string        `json:"id"`
	Type        ComponentType `json:"type"`
	Position    Position      `json:"position"`
	Connections []string      `json:"connections,omitempty"`
	Efficiency  float64       `json:"efficiency"`
	Temperature float64       `json:"temperature"`
	Load        float64       `json:"load"`
}

type Connection struct {
	ID     string  `json:"id"`
	From   string  `json:"from"`
	To     string  `json:"to"`
	Weight float64 `json:"weight"`
}

// PerformanceMetrics are percentages, clamped to [0, 100] after every update.
type PerformanceMetrics struct {
	PowerEfficiency    float64 `json:"power_efficiency"`
	AreaUtilization    float64 `json:"area_utilization"`
	ThermalDissipation float64 `json:"thermal_dissipation"`
	SignalIntegrity    float64 `json:"signal_integrity"`
}

// ChipState is one immutable design snapshot. Loop iterations never mutate a
// published snapshot; they derive the successor through Clone.
type ChipState struct {
	VersionedRecord
	Components          []Component        `json:"components"`
	Connections         []Connection       `json:"connections"`
	Metrics             PerformanceMetrics `json:"metrics"`
	QuantumCoherence    float64            `json:"quantum_coherence"`
	ProcessingPower     float64            `json:"processing_power"`
	NetworkEfficiency   float64            `json:"network_efficiency"`
	EntanglementDegree  float64            `json:"entanglement_degree"`
	HolographicFidelity float64            `json:"holographic_fidelity"`
}

// Clone deep-copies the state so the successor never aliases the predecessor's
// containers.
func (s ChipState) Clone() ChipState {
	out := s
	out.Components = make([]Component, len(s.Components))
	for i, c := range s.Components {
		out.Components[i] = c
		out.Components[i].Connections = append([]string(nil), c.Connections...)
	}
	out.Connections = append([]Connection(nil), s.Connections...)
	return out
}

// Transition is one (state, action, reward, next-state) record. Transitions
// are value objects; once stored in a replay buffer they are never mutated.
type Transition struct {
	State     ChipState `json:"state"`
	Action    Action    `json:"action"`
	Reward    float64   `json:"reward"`
	NextState ChipState `json:"next_state"`
}

// LayerSnapshot is one dense layer's weights in row-major order.
type LayerSnapshot struct {
	Inputs     int       `json:"inputs"`
	Outputs    int       `json:"outputs"`
	Activation string    `json:"activation"`
	Weights    []float64 `json:"weights"`
	Biases     []float64 `json:"biases"`
}

// ModelSnapshot is a trained network captured against a named slot.
type ModelSnapshot struct {
	VersionedRecord
	Slot   string          `json:"slot"`
	Layers []LayerSnapshot `json:"layers"`
}

type Amplitude struct {
	Re float64 `json:"re"`
	Im float64 `json:"im"`
}

type ProcessorMetrics struct {
	Efficiency      float64 `json:"efficiency"`
	ProcessingPower float64 `json:"processing_power"`
}

// ProcessorState is the holographic processor's exportable snapshot. It must
// round-trip through JSON without loss beyond float formatting.
type ProcessorState struct {
	VersionedRecord
	Wavefunction        []Amplitude      `json:"wavefunction"`
	Coherence           float64          `json:"coherence"`
	Entanglement        float64          `json:"entanglement"`
	InterferencePattern []float64        `json:"interference_pattern"`
	HologramPlate       []float64        `json:"hologram_plate"`
	Metrics             ProcessorMetrics `json:"metrics"`
}
