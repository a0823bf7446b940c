package enums

import "fmt"

// PlanSlug identifies one of the seeded plan tiers.
type PlanSlug string

const (
	PlanSlugFree    PlanSlug = "free"
	PlanSlugBasic   PlanSlug = "basic"
	PlanSlugPremium PlanSlug = "premium"
)

var validPlanSlugs = []PlanSlug{PlanSlugFree, PlanSlugBasic, PlanSlugPremium}

func (s PlanSlug) String() string {
	return string(s)
}

func (s PlanSlug) IsValid() bool {
	for _, candidate := range validPlanSlugs {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParsePlanSlug converts raw input into a PlanSlug.
func ParsePlanSlug(value string) (PlanSlug, error) {
	for _, candidate := range validPlanSlugs {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid plan slug %q", value)
}
