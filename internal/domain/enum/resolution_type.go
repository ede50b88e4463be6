package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// ResolutionType is the terminal business outcome of an inspected return
type ResolutionType int

const (
	ResolutionTypeRefund      ResolutionType = 0
	ResolutionTypeReplacement ResolutionType = 1
	ResolutionTypeStoreCredit ResolutionType = 2
)

var resolutionTypeNames = [...]string{"refund", "replacement", "store_credit"}

func (t ResolutionType) String() string {
	if t < 0 || int(t) >= len(resolutionTypeNames) {
		return fmt.Sprintf("unknown(%d)", int(t))
	}
	return resolutionTypeNames[t]
}

// ParseResolutionType converts a resolution name to its enum value
func ParseResolutionType(name string) (ResolutionType, error) {
	for i, n := range resolutionTypeNames {
		if n == name {
			return ResolutionType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown resolution type %q", name)
}

func (t ResolutionType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *ResolutionType) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*t = ResolutionType(i)
		return nil
	}
	parsed, err := ParseResolutionType(str)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t ResolutionType) Value() (driver.Value, error) {
	return int64(t), nil
}

func (t *ResolutionType) Scan(value interface{}) error {
	if value == nil {
		*t = ResolutionTypeRefund
		return nil
	}
	switch v := value.(type) {
	case int64:
		*t = ResolutionType(v)
	case int:
		*t = ResolutionType(v)
	}
	return nil
}
