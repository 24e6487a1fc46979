package replay

import (
	"errors"
	"fmt"
)

// ErrPolicyViolation is matched by every PolicyViolationError.
var ErrPolicyViolation = errors.New("record mode policy violation")

// Reason describes why a PolicyViolationError was raised.
type Reason string

const (
	// ReasonMiss means no replayable entry existed and live calls are disabled.
	ReasonMiss Reason = "miss"
	// ReasonForceRecord means force-record was requested in OnlyReplay mode.
	ReasonForceRecord Reason = "force_record"
)

// PolicyViolationError is returned when the record mode forbids an action.
type PolicyViolationError struct {
	Reason Reason
	URL    string
	Path   string
}

func (e *PolicyViolationError) Error() string {
	switch e.Reason {
	case ReasonForceRecord:
		return "cannot force recording: client is in only-replay mode"
	default:
		return fmt.Sprintf("no replay entry for %s at %s and live requests are disabled (only-replay mode)", e.URL, e.Path)
	}
}

// Is reports whether target is ErrPolicyViolation.
func (e *PolicyViolationError) Is(target error) bool {
	return target == ErrPolicyViolation
}

// IOError reports a filesystem failure while reading or writing an entry.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("failed to %s replay file %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// SerializationError reports a document that could not be encoded or decoded.
type SerializationError struct {
	Path string
	Err  error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("invalid replay file %s: %v", e.Path, e.Err)
}

func (e *SerializationError) Unwrap() error {
	return e.Err
}
