package enums

import "fmt"

// FlowerAvailability is the storefront badge for a catalog bouquet.
type FlowerAvailability string

const (
	FlowerAvailabilityInStock    FlowerAvailability = "in_stock"
	FlowerAvailabilityLimited    FlowerAvailability = "limited"
	FlowerAvailabilityOutOfStock FlowerAvailability = "out_of_stock"
)

var validFlowerAvailabilities = []FlowerAvailability{
	FlowerAvailabilityInStock,
	FlowerAvailabilityLimited,
	FlowerAvailabilityOutOfStock,
}

func (a FlowerAvailability) String() string {
	return string(a)
}

func (a FlowerAvailability) IsValid() bool {
	for _, candidate := range validFlowerAvailabilities {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseFlowerAvailability converts raw input into a FlowerAvailability.
func ParseFlowerAvailability(value string) (FlowerAvailability, error) {
	for _, candidate := range validFlowerAvailabilities {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid flower availability %q", value)
}
