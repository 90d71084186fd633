package chip

import "fmt"

// EncodingError marks a state that cannot be vectorized. It indicates a
// contract violation between collaborators and must abort the iteration.
type EncodingError struct {
	Field string
	Value float64
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("encode chip state: field %s holds non-finite value %v", e.Field, e.Value)
}
