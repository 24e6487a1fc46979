package stub

import (
	"errors"
	"fmt"
)

var (
	// ErrRegistration is matched by every RegistrationError.
	ErrRegistration = errors.New("stub registration failed")

	// ErrUnmatched is matched by every UnmatchedError.
	ErrUnmatched = errors.New("no stub matched the request")
)

// RegistrationErrorKind classifies a RegistrationError.
type RegistrationErrorKind string

const (
	// KindMissingField means the strictness requires a field the pattern did not set.
	KindMissingField RegistrationErrorKind = "missing_field"
	// KindUnnecessaryField means the pattern set a field the strictness ignores.
	KindUnnecessaryField RegistrationErrorKind = "unnecessary_field"
	// KindInvalidField means a field value could not be used, e.g. an unparsable URL.
	KindInvalidField RegistrationErrorKind = "invalid_field"
)

// RegistrationError reports a pattern inconsistent with the client strictness.
type RegistrationError struct {
	Kind       RegistrationErrorKind
	Field      Field
	Strictness Strictness
	Err        error
}

func (e *RegistrationError) Error() string {
	switch e.Kind {
	case KindMissingField:
		return fmt.Sprintf("stub has no %s even though strictness %s requires it", e.Field, e.Strictness)
	case KindUnnecessaryField:
		return fmt.Sprintf("stub sets %s even though strictness %s does not match on it; remove the field or use a stricter strictness", e.Field, e.Strictness)
	default:
		return fmt.Sprintf("stub has an invalid %s: %v", e.Field, e.Err)
	}
}

// Is reports whether target is ErrRegistration.
func (e *RegistrationError) Is(target error) bool {
	return target == ErrRegistration
}

func (e *RegistrationError) Unwrap() error {
	return e.Err
}

// UnmatchedError is returned for requests no stub matches under DefaultError.
type UnmatchedError struct {
	Method string
	URL    string
}

func (e *UnmatchedError) Error() string {
	return fmt.Sprintf("requested %s %s without having provided a stub for it", e.Method, e.URL)
}

// Is reports whether target is ErrUnmatched.
func (e *UnmatchedError) Is(target error) bool {
	return target == ErrUnmatched
}
