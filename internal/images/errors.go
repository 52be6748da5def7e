package images

import (
	"errors"
)

// Kind classifies a service failure; the HTTP adapter maps it to a status code.
type Kind int

const (
	KindUnknown    Kind = iota
	KindValidation      // malformed or out-of-range client input
	KindBadRequest      // required path parameter missing
	KindTooLarge        // declared size above the configured ceiling
	KindNotFound        // record or object absent
	KindStorage         // metadata or object store call failed
)

// Error is returned by every Service operation. Msg is safe to show to
// clients; Err holds the underlying cause, if any.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Op + ": " + e.Msg + ": " + e.Err.Error()
	}
	return e.Op + ": " + e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind of err, or KindUnknown if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func newError(kind Kind, op, msg string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Msg: msg, Err: cause}
}
