package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// InspectionResult is the finding recorded when inspection completes
type InspectionResult int

const (
	InspectionResultConfirmedDefective InspectionResult = 0
	InspectionResultCustomerError      InspectionResult = 1
	InspectionResultAcceptable         InspectionResult = 2
	InspectionResultPartialDefect      InspectionResult = 3
)

var inspectionResultNames = [...]string{"confirmed_defective", "customer_error", "acceptable", "partial_defect"}

func (r InspectionResult) String() string {
	if r < 0 || int(r) >= len(inspectionResultNames) {
		return fmt.Sprintf("unknown(%d)", int(r))
	}
	return inspectionResultNames[r]
}

// ParseInspectionResult converts a result name to its enum value
func ParseInspectionResult(name string) (InspectionResult, error) {
	for i, n := range inspectionResultNames {
		if n == name {
			return InspectionResult(i), nil
		}
	}
	return 0, fmt.Errorf("unknown inspection result %q", name)
}

func (r InspectionResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

func (r *InspectionResult) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*r = InspectionResult(i)
		return nil
	}
	parsed, err := ParseInspectionResult(str)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

func (r InspectionResult) Value() (driver.Value, error) {
	return int64(r), nil
}

func (r *InspectionResult) Scan(value interface{}) error {
	if value == nil {
		*r = InspectionResultConfirmedDefective
		return nil
	}
	switch v := value.(type) {
	case int64:
		*r = InspectionResult(v)
	case int:
		*r = InspectionResult(v)
	}
	return nil
}
