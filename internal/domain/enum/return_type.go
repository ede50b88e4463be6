package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// ReturnType classifies why a return request exists
type ReturnType int

const (
	ReturnTypeCustomerReturn ReturnType = 0
	ReturnTypeSupplierReturn ReturnType = 1
	ReturnTypeInternalDamage ReturnType = 2
	ReturnTypeRecall         ReturnType = 3
)

var returnTypeNames = [...]string{"customer_return", "supplier_return", "internal_damage", "recall"}

func (t ReturnType) String() string {
	if t < 0 || int(t) >= len(returnTypeNames) {
		return fmt.Sprintf("unknown(%d)", int(t))
	}
	return returnTypeNames[t]
}

// ParseReturnType converts a type name to its enum value
func ParseReturnType(name string) (ReturnType, error) {
	for i, n := range returnTypeNames {
		if n == name {
			return ReturnType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown return type %q", name)
}

func (t ReturnType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *ReturnType) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*t = ReturnType(i)
		return nil
	}
	parsed, err := ParseReturnType(str)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t ReturnType) Value() (driver.Value, error) {
	return int64(t), nil
}

func (t *ReturnType) Scan(value interface{}) error {
	if value == nil {
		*t = ReturnTypeCustomerReturn
		return nil
	}
	switch v := value.(type) {
	case int64:
		*t = ReturnType(v)
	case int:
		*t = ReturnType(v)
	}
	return nil
}
