// Package linkerr defines the error taxonomy shared by the framer, data-link,
// and transport layers.
//
// Only synchronous entry points (datalink.New, Send, PortRegister) return one
// of these as an error value. Everything recoverable inside the stack — CRC failures,
// NACKs, duplicate deliveries, window overruns — is counted, not returned;
// see the Stats types in pkg/datalink and internal/framer.
package linkerr

import "fmt"

// Kind classifies an Error. The zero Kind is never produced by this package.
type Kind int

const (
	// ParameterInvalid: port id out of range, misconfigured sizes, nil
	// callback where one is required.
	ParameterInvalid Kind = iota + 1
	// NotEnoughMemory: send buffer full, no free TX slot.
	NotEnoughMemory
	// NotFound: query operation for an absent port or metadata.
	NotFound
	// Timeout: per-message, once all MaxRetries transmissions of a frame
	// have timed out.
	Timeout
	// Aborted: upper layer requested a close while an operation was in flight.
	Aborted
)

func (k Kind) String() string {
	switch k {
	case ParameterInvalid:
		return "parameter invalid"
	case NotEnoughMemory:
		return "not enough memory"
	case NotFound:
		return "not found"
	case Timeout:
		return "timeout"
	case Aborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Error wraps a Kind with the operation that produced it and, optionally, an
// underlying cause.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error with the same Kind, so callers can
// write errors.Is(err, linkerr.NotEnoughMemory) style checks via New(kind, "", nil).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// New constructs an *Error for the given kind and operation.
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}
