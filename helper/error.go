package helper

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds raised by builders and value constructors.
var (
	// ErrNullArgument marks a required argument, or an element of a required
	// collection argument, that is absent.
	ErrNullArgument = errors.New("null argument")
	// ErrInvalidArgument marks a violated structural or business-rule invariant.
	ErrInvalidArgument = errors.New("invalid argument")
)

// Error wraps an original error with the trace of operations it passed through.
type Error struct {
	Original error    `json:"original"`
	Trace    []string `json:"trace"`
}

// NewError wraps err with the given trace step.
// If err already is an Error the step is appended to its trace.
func NewError(trace string, err error) error {
	var e Error
	if errors.As(err, &e) {
		e.Trace = append(append([]string{}, e.Trace...), trace)
		return e
	}
	return Error{
		Original: err,
		Trace:    []string{trace},
	}
}

// Error prints the trace from the outermost step to the innermost one.
func (e Error) Error() string {
	steps := make([]string, len(e.Trace))
	for i, t := range e.Trace {
		steps[len(e.Trace)-1-i] = t
	}
	if e.Original == nil {
		return strings.Join(steps, ": ")
	}
	return fmt.Sprintf("%s: %s", strings.Join(steps, ": "), e.Original.Error())
}

func (e Error) Unwrap() error {
	return e.Original
}

// NullArgument reports an absent argument named what.
func NullArgument(trace string, what string) error {
	return NewError(trace, fmt.Errorf("%w: %s is required", ErrNullArgument, what))
}

// InvalidArgument reports a violated invariant.
func InvalidArgument(trace string, format string, args ...any) error {
	return NewError(trace, fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...)))
}
