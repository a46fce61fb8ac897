package forecast

import (
	"errors"
	"fmt"
)

// Error kinds. Match them with errors.Is.
var (
	// ErrInsufficientData means the series is shorter than MinDataPoints.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrInvalidValues means the series holds NaN, infinite or negative values,
	// or its timestamps do not line up with its values.
	ErrInvalidValues = errors.New("invalid values")
	// ErrInvalidOptions means the forecasting options are out of range.
	ErrInvalidOptions = errors.New("invalid options")
	// ErrComputationFailure wraps any other numerical failure.
	ErrComputationFailure = errors.New("computation failure")
)

// Error is returned by every engine operation. Kind is one of the sentinel
// errors above; Err carries the originating cause, if any.
type Error struct {
	Kind error
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	s := e.Op + ": " + e.Kind.Error()
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newError(kind error, op string, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Op: op, Msg: fmt.Sprintf(format, args...)}
}

func computationFailure(op string, err error) *Error {
	var fe *Error
	if errors.As(err, &fe) {
		return fe
	}
	return &Error{Kind: ErrComputationFailure, Op: op, Err: err}
}
