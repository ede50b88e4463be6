package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// ReturnStatus represents the workflow status of a return request
type ReturnStatus int

const (
	ReturnStatusPendingApproval ReturnStatus = 0
	ReturnStatusApproved        ReturnStatus = 1
	ReturnStatusRejected        ReturnStatus = 2
	ReturnStatusReceived        ReturnStatus = 3
	ReturnStatusInspecting      ReturnStatus = 4
	ReturnStatusInspected       ReturnStatus = 5
	ReturnStatusResolved        ReturnStatus = 6
	ReturnStatusClosed          ReturnStatus = 7
	ReturnStatusCancelled       ReturnStatus = 8
)

var returnStatusNames = [...]string{
	"pending_approval",
	"approved",
	"rejected",
	"received",
	"inspecting",
	"inspected",
	"resolved",
	"closed",
	"cancelled",
}

func (s ReturnStatus) String() string {
	if s < 0 || int(s) >= len(returnStatusNames) {
		return fmt.Sprintf("unknown(%d)", int(s))
	}
	return returnStatusNames[s]
}

// IsTerminal reports whether no further workflow transition is possible
func (s ReturnStatus) IsTerminal() bool {
	return s == ReturnStatusRejected || s == ReturnStatusClosed || s == ReturnStatusCancelled
}

// ParseReturnStatus converts a status name to its enum value
func ParseReturnStatus(name string) (ReturnStatus, error) {
	for i, n := range returnStatusNames {
		if n == name {
			return ReturnStatus(i), nil
		}
	}
	return 0, fmt.Errorf("unknown return status %q", name)
}

func (s ReturnStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *ReturnStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = ReturnStatus(i)
		return nil
	}
	parsed, err := ParseReturnStatus(str)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s ReturnStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *ReturnStatus) Scan(value interface{}) error {
	if value == nil {
		*s = ReturnStatusPendingApproval
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = ReturnStatus(v)
	case int:
		*s = ReturnStatus(v)
	}
	return nil
}
