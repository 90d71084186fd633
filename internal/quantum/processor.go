// Package quantum models the holographic processor whose state the engine
// can export and re-import. The physics is not simulated faithfully; the
// wavefunction, interference pattern and hologram plate are feature carriers
// for the optimizer and for external visualization.
package quantum

import (
	"math"
	"math/rand"

	"alphachip/internal/model"
	"alphachip/internal/storage"
)

const (
	defaultQubits = 6
	plateSize     = 64

	decoherenceRate = 0.995
)

type Processor struct {
	wavefunction []model.Amplitude
	coherence    float64
	entanglement float64
	interference []float64
	hologram     []float64
	metrics      model.ProcessorMetrics
}

// NewProcessor builds a processor with a uniform superposition over 2^qubits
// basis states and seeded interference and hologram plates.
func NewProcessor(qubits int, seed int64) *Processor {
	if qubits <= 0 {
		qubits = defaultQubits
	}
	rng := rand.New(rand.NewSource(seed))

	states := 1 << qubits
	amp := 1 / math.Sqrt(float64(states))
	wavefunction := make([]model.Amplitude, states)
	for i := range wavefunction {
		phase := rng.Float64() * 2 * math.Pi
		wavefunction[i] = model.Amplitude{Re: amp * math.Cos(phase), Im: amp * math.Sin(phase)}
	}

	interference := make([]float64, plateSize)
	hologram := make([]float64, plateSize)
	for i := 0; i < plateSize; i++ {
		interference[i] = rng.Float64()
		hologram[i] = rng.Float64()
	}

	return &Processor{
		wavefunction: wavefunction,
		coherence:    1.0,
		entanglement: rng.Float64() * 0.5,
		interference: interference,
		hologram:     hologram,
		metrics: model.ProcessorMetrics{
			Efficiency:      85 + rng.Float64()*10,
			ProcessingPower: 1.0,
		},
	}
}

func (p *Processor) Coherence() float64 {
	return p.coherence
}

func (p *Processor) Entanglement() float64 {
	return p.entanglement
}

func (p *Processor) Metrics() model.ProcessorMetrics {
	return p.metrics
}

// Evolve applies one phase rotation across the wavefunction and decays
// coherence, imprinting the resulting intensities on the hologram plate.
func (p *Processor) Evolve(phase float64) {
	cos, sin := math.Cos(phase), math.Sin(phase)
	for i, a := range p.wavefunction {
		p.wavefunction[i] = model.Amplitude{
			Re: a.Re*cos - a.Im*sin,
			Im: a.Re*sin + a.Im*cos,
		}
	}
	p.coherence *= decoherenceRate

	for i := range p.hologram {
		a := p.wavefunction[i%len(p.wavefunction)]
		intensity := a.Re*a.Re + a.Im*a.Im
		p.hologram[i] = 0.9*p.hologram[i] + 0.1*intensity
	}
}

// SaveState exports a snapshot representable as JSON.
func (p *Processor) SaveState() model.ProcessorState {
	return model.ProcessorState{
		VersionedRecord:     storage.Stamp(),
		Wavefunction:        append([]model.Amplitude(nil), p.wavefunction...),
		Coherence:           p.coherence,
		Entanglement:        p.entanglement,
		InterferencePattern: append([]float64(nil), p.interference...),
		HologramPlate:       append([]float64(nil), p.hologram...),
		Metrics:             p.metrics,
	}
}

// LoadState is SaveState's exact inverse. Malformed snapshots are rejected
// with a LoadError before any field is applied, so a failed load never leaves
// the processor partially updated.
func (p *Processor) LoadState(state model.ProcessorState) error {
	if err := validate(state); err != nil {
		return err
	}

	p.wavefunction = append([]model.Amplitude(nil), state.Wavefunction...)
	p.coherence = state.Coherence
	p.entanglement = state.Entanglement
	p.interference = append([]float64(nil), state.InterferencePattern...)
	p.hologram = append([]float64(nil), state.HologramPlate...)
	p.metrics = state.Metrics
	return nil
}

func validate(state model.ProcessorState) error {
	if len(state.Wavefunction) == 0 {
		return &LoadError{Field: "wavefunction"}
	}
	if len(state.InterferencePattern) == 0 {
		return &LoadError{Field: "interference_pattern"}
	}
	if len(state.HologramPlate) == 0 {
		return &LoadError{Field: "hologram_plate"}
	}
	for _, a := range state.Wavefunction {
		if !finite(a.Re) || !finite(a.Im) {
			return &LoadError{Field: "wavefunction"}
		}
	}
	if !finite(state.Coherence) || !finite(state.Entanglement) {
		return &LoadError{Field: "coherence"}
	}
	if !finite(state.Metrics.Efficiency) || !finite(state.Metrics.ProcessingPower) {
		return &LoadError{Field: "metrics"}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
