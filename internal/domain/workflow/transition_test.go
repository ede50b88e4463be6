package workflow

import (
	"testing"

	"github.com/greenbush/returns-api/internal/domain/enum"
	"github.com/greenbush/returns-api/pkg/apperror"
	"github.com/stretchr/testify/assert"
)

func TestNext_LegalTransitions(t *testing.T) {
	tests := []struct {
		name    string
		current enum.ReturnStatus
		event   Event
		want    enum.ReturnStatus
	}{
		{"approve pending", enum.ReturnStatusPendingApproval, EventApprove, enum.ReturnStatusApproved},
		{"reject pending", enum.ReturnStatusPendingApproval, EventReject, enum.ReturnStatusRejected},
		{"cancel pending", enum.ReturnStatusPendingApproval, EventCancel, enum.ReturnStatusCancelled},
		{"receive approved", enum.ReturnStatusApproved, EventMarkReceived, enum.ReturnStatusReceived},
		{"cancel approved", enum.ReturnStatusApproved, EventCancel, enum.ReturnStatusCancelled},
		{"start inspection", enum.ReturnStatusReceived, EventStartInspection, enum.ReturnStatusInspecting},
		{"complete inspection from received", enum.ReturnStatusReceived, EventCompleteInspection, enum.ReturnStatusInspected},
		{"complete inspection from inspecting", enum.ReturnStatusInspecting, EventCompleteInspection, enum.ReturnStatusInspected},
		{"resolve inspected", enum.ReturnStatusInspected, EventResolve, enum.ReturnStatusResolved},
		{"cancel inspected", enum.ReturnStatusInspected, EventCancel, enum.ReturnStatusCancelled},
		{"close resolved", enum.ReturnStatusResolved, EventClose, enum.ReturnStatusClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Next(tt.current, tt.event)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNext_IllegalTransitions(t *testing.T) {
	tests := []struct {
		name    string
		current enum.ReturnStatus
		event   Event
	}{
		{"approve approved", enum.ReturnStatusApproved, EventApprove},
		{"approve rejected", enum.ReturnStatusRejected, EventApprove},
		{"receive pending", enum.ReturnStatusPendingApproval, EventMarkReceived},
		{"resolve pending", enum.ReturnStatusPendingApproval, EventResolve},
		{"resolve received", enum.ReturnStatusReceived, EventResolve},
		{"close inspected", enum.ReturnStatusInspected, EventClose},
		{"cancel resolved", enum.ReturnStatusResolved, EventCancel},
		{"cancel closed", enum.ReturnStatusClosed, EventCancel},
		{"anything from cancelled", enum.ReturnStatusCancelled, EventApprove},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Next(tt.current, tt.event)
			assert.Error(t, err)
			assert.True(t, apperror.IsKind(err, apperror.KindInvalidTransition))
		})
	}
}

func TestNext_ResolveAlreadyResolved(t *testing.T) {
	for _, status := range []enum.ReturnStatus{enum.ReturnStatusResolved, enum.ReturnStatusClosed} {
		_, err := Next(status, EventResolve)
		assert.Error(t, err)
		assert.True(t, apperror.IsKind(err, apperror.KindAlreadyResolved),
			"resolve from %s should report already resolved", status)
	}
}

func TestCancelRequiresElevation(t *testing.T) {
	assert.False(t, CancelRequiresElevation(enum.ReturnStatusPendingApproval))
	assert.True(t, CancelRequiresElevation(enum.ReturnStatusApproved))
	assert.True(t, CancelRequiresElevation(enum.ReturnStatusReceived))
	assert.True(t, CancelRequiresElevation(enum.ReturnStatusInspecting))
	assert.True(t, CancelRequiresElevation(enum.ReturnStatusInspected))
}
