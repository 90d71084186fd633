package quantum

import "fmt"

// LoadError marks a processor snapshot missing a required field.
type LoadError struct {
	Field string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load processor state: missing or invalid field %s", e.Field)
}
