package model

import (
	"errors"
	"fmt"
)

// Action is one discrete structural edit. The value agent selects from the
// narrow set; the policy agent selects from the full set of eight.
type Action int

const (
	ActionAddProcessor Action = iota
	ActionAddMemory
	ActionOptimizeConnections
	ActionRemoveComponent
	ActionAddQuantumUnit
	ActionAddOpticalUnit
	ActionRebalanceLoad
	ActionCoolHotspots
)

const (
	NarrowActionCount = 4
	WideActionCount   = 8
)

// ErrUnknownAction marks an action outside the receiver's closed set. It is a
// contract violation between collaborators and is never swallowed.
var ErrUnknownAction = errors.New("unknown action")

var actionNames = map[Action]string{
	ActionAddProcessor:        "add-processor",
	ActionAddMemory:           "add-memory",
	ActionOptimizeConnections: "optimize-connections",
	ActionRemoveComponent:     "remove-component",
	ActionAddQuantumUnit:      "add-quantum-unit",
	ActionAddOpticalUnit:      "add-optical-unit",
	ActionRebalanceLoad:       "rebalance-load",
	ActionCoolHotspots:        "cool-hotspots",
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return fmt.Sprintf("action(%d)", int(a))
}

// NarrowActions returns the value agent's action set in index order.
func NarrowActions() []Action {
	return []Action{ActionAddProcessor, ActionAddMemory, ActionOptimizeConnections, ActionRemoveComponent}
}

// WideActions returns the policy agent's action set in index order.
func WideActions() []Action {
	return []Action{
		ActionAddProcessor, ActionAddMemory, ActionOptimizeConnections, ActionRemoveComponent,
		ActionAddQuantumUnit, ActionAddOpticalUnit, ActionRebalanceLoad, ActionCoolHotspots,
	}
}

// ParseAction maps a symbolic name back to its Action.
func ParseAction(name string) (Action, error) {
	for action, known := range actionNames {
		if known == name {
			return action, nil
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownAction, name)
}
