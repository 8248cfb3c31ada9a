package session

import (
	"errors"
	"fmt"
)

// State identifies where a Manager is in its lifecycle.
type State int

const (
	// Uninitialized is the state of a freshly constructed Manager.
	Uninitialized State = iota

	// Initializing covers the configure, load and self-test sequence.
	Initializing

	// Ready means the self-test dispatch succeeded; sends are accepted.
	Ready

	// Failed means initialization did not complete. The manager stays usable
	// for diagnostic inspection and may be re-initialized.
	Failed
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Initializing:
		return "initializing"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// NotReadyError reports a send attempted while the session is not Ready.
// The attempt has no side effects: nothing is dispatched and nothing is
// appended to the ledger.
type NotReadyError struct {
	State State
}

// Error implements the error interface.
func (e *NotReadyError) Error() string {
	return fmt.Sprintf("trigger session not ready (state: %s)", e.State)
}

// IsNotReady reports whether err is a session-not-ready failure.
// Uses errors.As to handle wrapped errors.
func IsNotReady(err error) bool {
	var nr *NotReadyError
	return errors.As(err, &nr)
}
