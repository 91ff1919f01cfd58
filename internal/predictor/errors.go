package predictor

import "fmt"

// ErrUnavailable means the model could not be reached or loaded, or did not
// answer before the deadline. It is never retried automatically.
type ErrUnavailable struct {
	Predictor string
	Err       error
}

func (e *ErrUnavailable) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("predictor %s unavailable: %v", e.Predictor, e.Err)
	}
	return fmt.Sprintf("predictor %s unavailable", e.Predictor)
}

func (e *ErrUnavailable) Unwrap() error { return e.Err }

// ErrPrediction means the model was reached but failed on a structurally
// valid input.
type ErrPrediction struct {
	Predictor string
	Err       error
}

func (e *ErrPrediction) Error() string {
	return fmt.Sprintf("predictor %s failed: %v", e.Predictor, e.Err)
}

func (e *ErrPrediction) Unwrap() error { return e.Err }
