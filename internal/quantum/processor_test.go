package quantum

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"alphachip/internal/model"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	p := NewProcessor(4, 1)
	saved := p.SaveState()

	restored := NewProcessor(4, 99)
	if err := restored.LoadState(saved); err != nil {
		t.Fatalf("load: %v", err)
	}

	got := restored.SaveState()
	if len(got.Wavefunction) != len(saved.Wavefunction) {
		t.Fatalf("wavefunction length mismatch: %d vs %d", len(got.Wavefunction), len(saved.Wavefunction))
	}
	for i := range saved.Wavefunction {
		if math.Abs(got.Wavefunction[i].Re-saved.Wavefunction[i].Re) > 1e-6 ||
			math.Abs(got.Wavefunction[i].Im-saved.Wavefunction[i].Im) > 1e-6 {
			t.Fatalf("wavefunction differs at %d", i)
		}
	}
	for i := range saved.InterferencePattern {
		if math.Abs(got.InterferencePattern[i]-saved.InterferencePattern[i]) > 1e-6 {
			t.Fatalf("interference pattern differs at %d", i)
		}
	}
	for i := range saved.HologramPlate {
		if math.Abs(got.HologramPlate[i]-saved.HologramPlate[i]) > 1e-6 {
			t.Fatalf("hologram plate differs at %d", i)
		}
	}
}

func TestSaveStateSurvivesJSON(t *testing.T) {
	p := NewProcessor(3, 7)
	saved := p.SaveState()

	data, err := json.Marshal(saved)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded model.ProcessorState
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	restored := NewProcessor(3, 8)
	if err := restored.LoadState(decoded); err != nil {
		t.Fatalf("load decoded: %v", err)
	}
	got := restored.SaveState()
	for i := range saved.Wavefunction {
		if math.Abs(got.Wavefunction[i].Re-saved.Wavefunction[i].Re) > 1e-6 {
			t.Fatalf("wavefunction lost precision through JSON at %d", i)
		}
	}
}

func TestLoadStateRejectsMalformed(t *testing.T) {
	valid := NewProcessor(3, 1).SaveState()

	tests := []struct {
		name   string
		mutate func(*model.ProcessorState)
	}{
		{name: "missing-wavefunction", mutate: func(s *model.ProcessorState) { s.Wavefunction = nil }},
		{name: "missing-interference", mutate: func(s *model.ProcessorState) { s.InterferencePattern = nil }},
		{name: "missing-hologram", mutate: func(s *model.ProcessorState) { s.HologramPlate = nil }},
		{name: "nan-amplitude", mutate: func(s *model.ProcessorState) { s.Wavefunction[0].Re = math.NaN() }},
		{name: "nan-coherence", mutate: func(s *model.ProcessorState) { s.Coherence = math.NaN() }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := NewProcessor(3, 2)
			before := p.SaveState()

			bad := valid
			bad.Wavefunction = append([]model.Amplitude(nil), valid.Wavefunction...)
			bad.InterferencePattern = append([]float64(nil), valid.InterferencePattern...)
			bad.HologramPlate = append([]float64(nil), valid.HologramPlate...)
			tc.mutate(&bad)

			err := p.LoadState(bad)
			var loadErr *LoadError
			if !errors.As(err, &loadErr) {
				t.Fatalf("expected *LoadError, got %v", err)
			}

			// The failed load must not partially apply.
			after := p.SaveState()
			if after.Coherence != before.Coherence || len(after.Wavefunction) != len(before.Wavefunction) {
				t.Fatal("failed load mutated processor state")
			}
		})
	}
}

func TestEvolveDecaysCoherence(t *testing.T) {
	p := NewProcessor(4, 5)
	before := p.Coherence()
	for i := 0; i < 10; i++ {
		p.Evolve(0.1)
	}
	if p.Coherence() >= before {
		t.Fatalf("coherence did not decay: %f -> %f", before, p.Coherence())
	}
}

func TestEvolvePreservesNorm(t *testing.T) {
	p := NewProcessor(4, 5)
	norm := func(st model.ProcessorState) float64 {
		total := 0.0
		for _, a := range st.Wavefunction {
			total += a.Re*a.Re + a.Im*a.Im
		}
		return total
	}

	before := norm(p.SaveState())
	p.Evolve(0.7)
	after := norm(p.SaveState())
	if math.Abs(before-after) > 1e-9 {
		t.Fatalf("phase rotation changed the norm: %f -> %f", before, after)
	}
}
