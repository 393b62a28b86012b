package gateway

import (
	"errors"
	"fmt"

	"github.com/existflow/dayboard/internal/model"
)

// ErrNotFound is returned by backends when the target row does not exist
var ErrNotFound = errors.New("not found")

// Kind classifies gateway failures
type Kind int

const (
	KindTransient  Kind = iota + 1 // network or storage failure
	KindValidation                 // rejected before any remote call
	KindMalformed                  // remote row failed to parse
	KindNotFound                   // target row is gone
)

func (k Kind) String() string {
	switch k {
	case KindTransient:
		return "transient"
	case KindValidation:
		return "validation"
	case KindMalformed:
		return "malformed"
	case KindNotFound:
		return "not found"
	default:
		return "unknown"
	}
}

// Error is the typed failure returned by every gateway call
type Error struct {
	Op   string
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of err, or 0 when err is not a gateway error
func KindOf(err error) Kind {
	var gerr *Error
	if errors.As(err, &gerr) {
		return gerr.Kind
	}
	return 0
}

// IsTransient reports whether err is an I/O failure worth showing as a notice
func IsTransient(err error) bool {
	return KindOf(err) == KindTransient
}

// IsValidation reports whether err was caught before reaching the backend
func IsValidation(err error) bool {
	return KindOf(err) == KindValidation
}

// IsNotFound reports whether the target row did not exist
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

// IsMalformed reports whether a remote row failed to parse
func IsMalformed(err error) bool {
	return KindOf(err) == KindMalformed
}

func validationErr(op string, err error) error {
	return &Error{Op: op, Kind: KindValidation, Err: err}
}

func malformedErr(op string, err error) error {
	return &Error{Op: op, Kind: KindMalformed, Err: err}
}

// wrap classifies a backend error
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var gerr *Error
	if errors.As(err, &gerr) {
		return &Error{Op: op, Kind: gerr.Kind, Err: gerr.Err}
	}
	var verr *model.ValidationError
	switch {
	case errors.As(err, &verr):
		return &Error{Op: op, Kind: KindValidation, Err: err}
	case errors.Is(err, ErrNotFound):
		return &Error{Op: op, Kind: KindNotFound, Err: err}
	default:
		return &Error{Op: op, Kind: KindTransient, Err: err}
	}
}
