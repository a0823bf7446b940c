package bouquet

import (
	"github.com/bloomstack/bloomstack-backend/pkg/enums"
	pkgerrors "github.com/bloomstack/bloomstack-backend/pkg/errors"
)

// SizeTier bounds the stem count of a composed bouquet. TypicalStems is a
// hint for the storefront slider, not a constraint.
type SizeTier struct {
	Size         enums.BouquetSize `json:"size"`
	MinStems     int               `json:"min_stems"`
	MaxStems     int               `json:"max_stems"`
	TypicalStems int               `json:"typical_stems"`
}

var sizeTiers = []SizeTier{
	{Size: enums.BouquetSizeSmall, MinStems: 5, MaxStems: 15, TypicalStems: 10},
	{Size: enums.BouquetSizeMedium, MinStems: 16, MaxStems: 30, TypicalStems: 20},
	{Size: enums.BouquetSizeLarge, MinStems: 31, MaxStems: 50, TypicalStems: 40},
}

// Tiers returns the composer size tiers in ascending order.
func Tiers() []SizeTier {
	out := make([]SizeTier, len(sizeTiers))
	copy(out, sizeTiers)
	return out
}

// TierFor resolves the tier for a bouquet size.
func TierFor(size enums.BouquetSize) (SizeTier, error) {
	for _, tier := range sizeTiers {
		if tier.Size == size {
			return tier, nil
		}
	}
	return SizeTier{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid bouquet size")
}
