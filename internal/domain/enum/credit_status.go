package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// CreditStatus is derived from a store credit's balance and lifecycle:
// active while untouched, partially_used once some balance is applied,
// fully_used at zero, expired or voided terminally.
type CreditStatus int

const (
	CreditStatusActive        CreditStatus = 0
	CreditStatusPartiallyUsed CreditStatus = 1
	CreditStatusFullyUsed     CreditStatus = 2
	CreditStatusExpired       CreditStatus = 3
	CreditStatusVoided        CreditStatus = 4
)

var creditStatusNames = [...]string{"active", "partially_used", "fully_used", "expired", "voided"}

func (s CreditStatus) String() string {
	if s < 0 || int(s) >= len(creditStatusNames) {
		return fmt.Sprintf("unknown(%d)", int(s))
	}
	return creditStatusNames[s]
}

// IsApplicable reports whether balance may still be applied from this status
func (s CreditStatus) IsApplicable() bool {
	return s == CreditStatusActive || s == CreditStatusPartiallyUsed
}

// ParseCreditStatus converts a status name to its enum value
func ParseCreditStatus(name string) (CreditStatus, error) {
	for i, n := range creditStatusNames {
		if n == name {
			return CreditStatus(i), nil
		}
	}
	return 0, fmt.Errorf("unknown credit status %q", name)
}

func (s CreditStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *CreditStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = CreditStatus(i)
		return nil
	}
	parsed, err := ParseCreditStatus(str)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s CreditStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *CreditStatus) Scan(value interface{}) error {
	if value == nil {
		*s = CreditStatusActive
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = CreditStatus(v)
	case int:
		*s = CreditStatus(v)
	}
	return nil
}
