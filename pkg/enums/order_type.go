package enums

import "fmt"

// OrderType separates plain inquiries from composed custom bouquets.
type OrderType string

const (
	OrderTypeInquiry       OrderType = "inquiry"
	OrderTypeCustomBouquet OrderType = "custom_bouquet"
)

var validOrderTypes = []OrderType{OrderTypeInquiry, OrderTypeCustomBouquet}

func (t OrderType) String() string {
	return string(t)
}

func (t OrderType) IsValid() bool {
	for _, candidate := range validOrderTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseOrderType converts raw input into an OrderType.
func ParseOrderType(value string) (OrderType, error) {
	for _, candidate := range validOrderTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order type %q", value)
}
