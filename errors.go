package qheom

import (
	"fmt"

	"github.com/pkg/errors"
)

// ConfigurationError reports an invalid or missing configuration field.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// UnsupportedModelError reports a dynamics or interaction model that has no implementation.
type UnsupportedModelError struct {
	Model string
}

func (e *UnsupportedModelError) Error() string {
	return fmt.Sprintf("unsupported model %q", e.Model)
}

// NumericalInstabilityError reports a density matrix that stopped being Hermitian, trace one or finite.
type NumericalInstabilityError struct {
	Step   int
	Time   float64
	Reason string
}

func (e *NumericalInstabilityError) Error() string {
	return fmt.Sprintf("numerical instability at step %d (t=%g s): %s", e.Step, e.Time, e.Reason)
}

func configErrorf(field, format string, args ...any) error {
	return errors.WithStack(&ConfigurationError{Field: field, Reason: fmt.Sprintf(format, args...)})
}

func unsupported(model fmt.Stringer) error {
	return errors.WithStack(&UnsupportedModelError{Model: model.String()})
}
