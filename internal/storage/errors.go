package storage

import "fmt"

// PersistenceError marks a snapshot save or load failure. Loads are fail-soft
// at the agent level; saves propagate to the caller.
type PersistenceError struct {
	Op   string
	Slot string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s %s: %v", e.Op, e.Slot, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
