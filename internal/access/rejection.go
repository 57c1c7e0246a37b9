package access

import (
	"errors"
	"fmt"
)

// Kind classifies a Rejection.
type Kind int

const (
	// KindForbidden means the actor may not perform the exact operation attempted.
	KindForbidden Kind = iota + 1
	// KindValidation means the operation is permitted but a field value is malformed.
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindForbidden:
		return "forbidden"
	case KindValidation:
		return "validation"
	default:
		return "unknown"
	}
}

// Rejection is the only error the engine returns. Reason is short and safe
// to show to clients verbatim.
type Rejection struct {
	Kind   Kind
	Reason string
}

func (r *Rejection) Error() string {
	return r.Reason
}

// Forbidden returns a rejection of kind KindForbidden.
func Forbidden(reason string) error {
	return &Rejection{Kind: KindForbidden, Reason: reason}
}

// Invalid returns a rejection of kind KindValidation.
func Invalid(format string, args ...any) error {
	return &Rejection{Kind: KindValidation, Reason: fmt.Sprintf(format, args...)}
}

// IsForbidden reports whether err is (or wraps) a forbidden rejection.
func IsForbidden(err error) bool {
	return kindOf(err) == KindForbidden
}

// IsInvalid reports whether err is (or wraps) a validation rejection.
func IsInvalid(err error) bool {
	return kindOf(err) == KindValidation
}

func kindOf(err error) Kind {
	var r *Rejection
	if errors.As(err, &r) {
		return r.Kind
	}
	return 0
}
