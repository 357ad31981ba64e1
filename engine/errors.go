// ABOUTME: Error taxonomy for the mutation engine
// ABOUTME: Defines NotFound, validation, transient, and partial-failure errors
package engine

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a referenced contact or activity does not
// exist in the caller's owner scope.
var ErrNotFound = errors.New("not found")

// ValidationError rejects a mutation before any write is attempted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// TransientError wraps a store failure that happened before any write
// succeeded. The whole mutation is safe to retry.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("store error during %s: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// PartialFailureError signals that the activity write succeeded but the
// contact rollup write did not. The contact's derived fields are stale;
// the caller should re-invoke RepairRollup rather than retry the whole
// mutation.
type PartialFailureError struct {
	OwnerID    string
	ActivityID uuid.UUID
	ContactID  uuid.UUID
	Err        error
}

func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("activity %s written but rollup for contact %s failed: %v",
		e.ActivityID, e.ContactID, e.Err)
}

func (e *PartialFailureError) Unwrap() error { return e.Err }
