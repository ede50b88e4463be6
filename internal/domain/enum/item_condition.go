package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// ItemCondition describes the reported condition of a returned line
type ItemCondition int

const (
	ItemConditionDefective    ItemCondition = 0
	ItemConditionDamaged      ItemCondition = 1
	ItemConditionUnopened     ItemCondition = 2
	ItemConditionExpired      ItemCondition = 3
	ItemConditionWrongProduct ItemCondition = 4
)

var itemConditionNames = [...]string{"defective", "damaged", "unopened", "expired", "wrong_product"}

func (c ItemCondition) String() string {
	if c < 0 || int(c) >= len(itemConditionNames) {
		return fmt.Sprintf("unknown(%d)", int(c))
	}
	return itemConditionNames[c]
}

// ParseItemCondition converts a condition name to its enum value
func ParseItemCondition(name string) (ItemCondition, error) {
	for i, n := range itemConditionNames {
		if n == name {
			return ItemCondition(i), nil
		}
	}
	return 0, fmt.Errorf("unknown item condition %q", name)
}

func (c ItemCondition) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *ItemCondition) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*c = ItemCondition(i)
		return nil
	}
	parsed, err := ParseItemCondition(str)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func (c ItemCondition) Value() (driver.Value, error) {
	return int64(c), nil
}

func (c *ItemCondition) Scan(value interface{}) error {
	if value == nil {
		*c = ItemConditionDefective
		return nil
	}
	switch v := value.(type) {
	case int64:
		*c = ItemCondition(v)
	case int:
		*c = ItemCondition(v)
	}
	return nil
}
