package bouquet

import "github.com/shopspring/decimal"

// QuoteLine is one stock flower selection priced per stem.
type QuoteLine struct {
	PricePerStem decimal.Decimal
	Quantity     int
}

// Quote totals a selection: the sum of quantity times per-stem price for
// every line, plus the flat wrapping price.
func Quote(lines []QuoteLine, wrappingPrice decimal.Decimal) decimal.Decimal {
	total := wrappingPrice
	for _, line := range lines {
		total = total.Add(line.PricePerStem.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return total
}
