// Package design applies structural edit actions to chip states. It is the
// environment the learning agents act against: every action maps to a pure
// transition handler producing a fresh snapshot.
package design

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"

	"alphachip/internal/chip"
	"alphachip/internal/model"
)

// Placement and measurement ranges for freshly fabricated components.
const (
	placementSpan   = 100.0
	efficiencyFloor = 75.0
	efficiencySpan  = 25.0
	ambientTemp     = 20.0
	tempSpan        = 40.0

	signalStep = 0.05
	powerStep  = 0.03
	weightStep = 0.1

	jitterTemp = 0.5
	jitterLoad = 0.02
)

type handler func(e *Engine, state model.ChipState) model.ChipState

// Engine owns the action dispatch table. The table is keyed by the full
// action set; Apply fails with ErrUnknownAction on anything outside it, so no
// action is ever silently ignored.
type Engine struct {
	rng      *rand.Rand
	handlers map[model.Action]handler
}

func NewEngine(seed int64) *Engine {
	return &Engine{
		rng:      rand.New(rand.NewSource(seed)),
		handlers: buildHandlers(),
	}
}

func buildHandlers() map[model.Action]handler {
	return map[model.Action]handler{
		model.ActionAddProcessor: func(e *Engine, s model.ChipState) model.ChipState {
			return e.addComponent(s, model.ComponentProcessor)
		},
		model.ActionAddMemory: func(e *Engine, s model.ChipState) model.ChipState {
			return e.addComponent(s, model.ComponentMemory)
		},
		model.ActionAddQuantumUnit: func(e *Engine, s model.ChipState) model.ChipState {
			return e.addComponent(s, model.ComponentQuantumUnit)
		},
		model.ActionAddOpticalUnit: func(e *Engine, s model.ChipState) model.ChipState {
			return e.addComponent(s, model.ComponentOpticalUnit)
		},
		model.ActionOptimizeConnections: (*Engine).optimizeConnections,
		model.ActionRemoveComponent:     (*Engine).removeComponent,
		model.ActionRebalanceLoad:       (*Engine).rebalanceLoad,
		model.ActionCoolHotspots:        (*Engine).coolHotspots,
	}
}

// Apply produces the successor state for one action. The input state is never
// mutated; the successor is derived from a deep copy with per-step
// measurement jitter, and its metrics are re-clamped before return.
func (e *Engine) Apply(state model.ChipState, action model.Action) (model.ChipState, error) {
	h, ok := e.handlers[action]
	if !ok {
		return model.ChipState{}, fmt.Errorf("%w: %s", model.ErrUnknownAction, action)
	}

	next := state.Clone()
	e.jitter(&next)
	next = h(e, next)

	next.Metrics = chip.ClampMetrics(next.Metrics)
	next.QuantumCoherence = chip.SatUnit(next.QuantumCoherence)
	next.EntanglementDegree = chip.SatUnit(next.EntanglementDegree)
	next.HolographicFidelity = chip.SatUnit(next.HolographicFidelity)
	if len(next.Connections) > 0 {
		next.NetworkEfficiency = chip.SatUnit(chip.NetworkScore(next))
	}
	return next, nil
}

func (e *Engine) addComponent(s model.ChipState, typ model.ComponentType) model.ChipState {
	comp := model.Component{
		ID:   uuid.NewString(),
		Type: typ,
		Position: model.Position{
			X: e.rng.Float64() * placementSpan,
			Y: e.rng.Float64() * placementSpan,
			Z: e.rng.Float64() * placementSpan,
		},
		Efficiency:  efficiencyFloor + e.rng.Float64()*efficiencySpan,
		Temperature: ambientTemp + e.rng.Float64()*tempSpan,
		Load:        e.rng.Float64(),
	}

	if len(s.Components) > 0 {
		peer := &s.Components[e.rng.Intn(len(s.Components))]
		comp.Connections = append(comp.Connections, peer.ID)
		peer.Connections = append(peer.Connections, comp.ID)
		s.Connections = append(s.Connections, model.Connection{
			ID:     uuid.NewString(),
			From:   comp.ID,
			To:     peer.ID,
			Weight: 0.5 + e.rng.Float64()*0.5,
		})
	}
	s.Components = append(s.Components, comp)

	s.Metrics.AreaUtilization += 0.5 + e.rng.Float64()
	s.ProcessingPower += 0.05
	switch typ {
	case model.ComponentQuantumUnit:
		s.QuantumCoherence += 0.02
		s.EntanglementDegree += 0.02
	case model.ComponentOpticalUnit:
		s.HolographicFidelity += 0.02
	}
	return s
}

// optimizeConnections moves signal integrity and power efficiency toward 100
// by small monotone increments and pulls connection weights toward 1.
func (e *Engine) optimizeConnections(s model.ChipState) model.ChipState {
	s.Metrics.SignalIntegrity += (100 - s.Metrics.SignalIntegrity) * signalStep
	s.Metrics.PowerEfficiency += (100 - s.Metrics.PowerEfficiency) * powerStep
	for i := range s.Connections {
		s.Connections[i].Weight += (1 - s.Connections[i].Weight) * weightStep
	}
	return s
}

// removeComponent drops the least-efficient component and prunes its wiring.
// An empty design is left untouched.
func (e *Engine) removeComponent(s model.ChipState) model.ChipState {
	if len(s.Components) == 0 {
		return s
	}

	worst := 0
	for i, c := range s.Components {
		if c.Efficiency < s.Components[worst].Efficiency {
			worst = i
		}
	}
	removedID := s.Components[worst].ID
	s.Components = append(s.Components[:worst], s.Components[worst+1:]...)

	kept := s.Connections[:0]
	for _, conn := range s.Connections {
		if conn.From == removedID || conn.To == removedID {
			continue
		}
		kept = append(kept, conn)
	}
	s.Connections = kept

	for i := range s.Components {
		neighbors := s.Components[i].Connections[:0]
		for _, id := range s.Components[i].Connections {
			if id != removedID {
				neighbors = append(neighbors, id)
			}
		}
		s.Components[i].Connections = neighbors
	}

	s.Metrics.AreaUtilization -= 0.5
	s.ProcessingPower -= 0.05
	if s.ProcessingPower < 0 {
		s.ProcessingPower = 0
	}
	return s
}

// rebalanceLoad pulls every component's load toward the mean.
func (e *Engine) rebalanceLoad(s model.ChipState) model.ChipState {
	if len(s.Components) == 0 {
		return s
	}
	mean := 0.0
	for _, c := range s.Components {
		mean += c.Load
	}
	mean /= float64(len(s.Components))
	for i := range s.Components {
		s.Components[i].Load += (mean - s.Components[i].Load) * 0.5
	}
	s.Metrics.PowerEfficiency += 0.2
	return s
}

// coolHotspots relaxes component temperatures toward ambient and lowers
// thermal dissipation.
func (e *Engine) coolHotspots(s model.ChipState) model.ChipState {
	for i := range s.Components {
		s.Components[i].Temperature += (ambientTemp - s.Components[i].Temperature) * 0.1
	}
	s.Metrics.ThermalDissipation -= s.Metrics.ThermalDissipation * 0.05
	return s
}

// jitter applies per-step measurement noise to temperatures and loads.
// Efficiency is left alone so component ratings stay within their fabricated
// range.
func (e *Engine) jitter(s *model.ChipState) {
	for i := range s.Components {
		s.Components[i].Temperature += (e.rng.Float64()*2 - 1) * jitterTemp
		s.Components[i].Load = chip.SatUnit(s.Components[i].Load + (e.rng.Float64()*2-1)*jitterLoad)
	}
}
