// Package workflow holds the return-request state machine as a pure
// transition table. Services compute the target state here and then
// persist it with a compare-and-swap on the status column, so the
// legality check and the write are never separated by other writers.
package workflow

import (
	"github.com/greenbush/returns-api/internal/domain/enum"
	"github.com/greenbush/returns-api/pkg/apperror"
)

// Event is a requested workflow action on a return request
type Event string

const (
	EventApprove            Event = "approve"
	EventReject             Event = "reject"
	EventMarkReceived       Event = "mark_received"
	EventStartInspection    Event = "start_inspection"
	EventCompleteInspection Event = "complete_inspection"
	EventResolve            Event = "resolve"
	EventClose              Event = "close"
	EventCancel             Event = "cancel"
)

var transitions = map[enum.ReturnStatus]map[Event]enum.ReturnStatus{
	enum.ReturnStatusPendingApproval: {
		EventApprove: enum.ReturnStatusApproved,
		EventReject:  enum.ReturnStatusRejected,
		EventCancel:  enum.ReturnStatusCancelled,
	},
	enum.ReturnStatusApproved: {
		EventMarkReceived: enum.ReturnStatusReceived,
		EventCancel:       enum.ReturnStatusCancelled,
	},
	enum.ReturnStatusReceived: {
		EventStartInspection:    enum.ReturnStatusInspecting,
		EventCompleteInspection: enum.ReturnStatusInspected,
		EventCancel:             enum.ReturnStatusCancelled,
	},
	enum.ReturnStatusInspecting: {
		EventCompleteInspection: enum.ReturnStatusInspected,
		EventCancel:             enum.ReturnStatusCancelled,
	},
	enum.ReturnStatusInspected: {
		EventResolve: enum.ReturnStatusResolved,
		EventCancel:  enum.ReturnStatusCancelled,
	},
	enum.ReturnStatusResolved: {
		EventClose: enum.ReturnStatusClosed,
	},
}

// Next returns the state reached by applying ev to current. An illegal
// pair yields an invalid-transition error; a resolve attempted on an
// already-resolved or closed request yields an already-resolved error
// so callers can distinguish the idempotency violation.
func Next(current enum.ReturnStatus, ev Event) (enum.ReturnStatus, error) {
	if ev == EventResolve && (current == enum.ReturnStatusResolved || current == enum.ReturnStatusClosed) {
		return current, apperror.NewAlreadyResolvedError("return request is already resolved")
	}

	if targets, ok := transitions[current]; ok {
		if next, ok := targets[ev]; ok {
			return next, nil
		}
	}

	return current, apperror.NewInvalidTransitionError(
		"cannot " + string(ev) + " a return request in status " + current.String())
}

// CancelRequiresElevation reports whether cancelling from the given
// status needs an elevated operator. Anyone may cancel a request that
// is still pending approval; later pre-resolution cancellation is
// restricted to managers.
func CancelRequiresElevation(current enum.ReturnStatus) bool {
	return current != enum.ReturnStatusPendingApproval
}
