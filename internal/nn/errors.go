package nn

import "fmt"

// InferenceError marks a forward-pass failure such as a shape mismatch.
type InferenceError struct {
	Op  string
	Err error
}

func (e *InferenceError) Error() string {
	return fmt.Sprintf("inference %s: %v", e.Op, e.Err)
}

func (e *InferenceError) Unwrap() error {
	return e.Err
}

// TrainingError marks a failure during gradient computation or application.
type TrainingError struct {
	Op  string
	Err error
}

func (e *TrainingError) Error() string {
	return fmt.Sprintf("training %s: %v", e.Op, e.Err)
}

func (e *TrainingError) Unwrap() error {
	return e.Err
}
