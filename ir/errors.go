package ir

import (
	"fmt"

	"tlog.app/go/errors"
	"tlog.app/go/loc"
)

// Error kinds. They are raised as panics carrying an *Error: they signal
// defects in the producer or in a pass, not conditions a caller handles.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotImplemented  = errors.New("not implemented")
	ErrLogic           = errors.New("logic error")
)

// Error is the panic value raised by IR assertions.
type Error struct {
	Kind error
	Msg  string
	At   loc.PC
}

func (e *Error) Error() string {
	return fmt.Sprintf("%v: %s (%v)", e.Kind, e.Msg, e.At)
}

func (e *Error) Unwrap() error { return e.Kind }

func throw(kind error, format string, args ...any) {
	panic(&Error{
		Kind: kind,
		Msg:  fmt.Sprintf(format, args...),
		At:   loc.Caller(1),
	})
}

func assertf(cond bool, format string, args ...any) {
	if !cond {
		throw(ErrLogic, format, args...)
	}
}

// Throw raises an IR error of the given kind from outside the package.
func Throw(kind error, format string, args ...any) {
	throw(kind, format, args...)
}

// Recover converts an IR panic into *errp. Any other panic is re-raised.
// It must be called directly by defer.
func Recover(errp *error) {
	p := recover()
	if p == nil {
		return
	}

	e, ok := p.(*Error)
	if !ok {
		panic(p)
	}

	*errp = e
}
