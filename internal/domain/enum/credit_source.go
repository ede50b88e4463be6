package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// CreditSource records why a store credit was issued
type CreditSource int

const (
	CreditSourceRMARefund    CreditSource = 0
	CreditSourcePromotional  CreditSource = 1
	CreditSourceCompensation CreditSource = 2
	CreditSourceLoyalty      CreditSource = 3
	CreditSourceManual       CreditSource = 4
)

var creditSourceNames = [...]string{"rma_refund", "promotional", "compensation", "loyalty", "manual"}

func (s CreditSource) String() string {
	if s < 0 || int(s) >= len(creditSourceNames) {
		return fmt.Sprintf("unknown(%d)", int(s))
	}
	return creditSourceNames[s]
}

// ParseCreditSource converts a source name to its enum value
func ParseCreditSource(name string) (CreditSource, error) {
	for i, n := range creditSourceNames {
		if n == name {
			return CreditSource(i), nil
		}
	}
	return 0, fmt.Errorf("unknown credit source %q", name)
}

func (s CreditSource) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *CreditSource) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = CreditSource(i)
		return nil
	}
	parsed, err := ParseCreditSource(str)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s CreditSource) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *CreditSource) Scan(value interface{}) error {
	if value == nil {
		*s = CreditSourceManual
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = CreditSource(v)
	case int:
		*s = CreditSource(v)
	}
	return nil
}
