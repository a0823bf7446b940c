package enums

import "fmt"

// BouquetSize is the size tier a customer picks in the composer.
type BouquetSize string

const (
	BouquetSizeSmall  BouquetSize = "small"
	BouquetSizeMedium BouquetSize = "medium"
	BouquetSizeLarge  BouquetSize = "large"
)

var validBouquetSizes = []BouquetSize{BouquetSizeSmall, BouquetSizeMedium, BouquetSizeLarge}

func (s BouquetSize) String() string {
	return string(s)
}

func (s BouquetSize) IsValid() bool {
	for _, candidate := range validBouquetSizes {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseBouquetSize converts raw input into a BouquetSize.
func ParseBouquetSize(value string) (BouquetSize, error) {
	for _, candidate := range validBouquetSizes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid bouquet size %q", value)
}
