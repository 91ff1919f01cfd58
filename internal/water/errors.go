package water

import (
	"fmt"
	"strings"
)

// ErrValidation reports a measurement outside its physical range.
type ErrValidation struct {
	Field   Feature
	Value   float64
	Allowed Range
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("%s %g outside allowed range %s", e.Field, e.Value, e.Allowed)
}

// ErrSchema reports a positional vector whose feature names or arity do not
// match the canonical order.
type ErrSchema struct {
	Got  []string
	Want []string
}

func (e *ErrSchema) Error() string {
	return fmt.Sprintf("feature order [%s] does not match canonical [%s]",
		strings.Join(e.Got, ", "), strings.Join(e.Want, ", "))
}
