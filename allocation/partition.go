package allocation

import "github.com/shopspring/decimal"

// balanceTolerance is how far a percentage sum may drift from 100 and still count as balanced.
var balanceTolerance = decimal.RequireFromString("0.01")

// Bucket is one named slot of a partition.
type Bucket struct {
	Name       string  `json:"name"`
	Amount     int64   `json:"amount"`
	Percentage float64 `json:"percentage"`
}

// Partition is an ordered list of buckets. Order decides which bucket absorbs rounding.
type Partition []Bucket

// Names returns the bucket names in order.
func (p Partition) Names() []string {
	names := make([]string, len(p))
	for i, b := range p {
		names[i] = b.Name
	}
	return names
}

// Amounts returns the bucket amounts keyed by name.
func (p Partition) Amounts() map[string]int64 {
	amounts := make(map[string]int64, len(p))
	for _, b := range p {
		amounts[b.Name] = b.Amount
	}
	return amounts
}

// Percentages returns the bucket percentages keyed by name.
func (p Partition) Percentages() map[string]float64 {
	pcts := make(map[string]float64, len(p))
	for _, b := range p {
		pcts[b.Name] = b.Percentage
	}
	return pcts
}

// Sum is the total amount held by the partition.
func (p Partition) Sum() int64 {
	var sum int64
	for _, b := range p {
		sum += b.Amount
	}
	return sum
}

// Totals are the derived figures shown under an allocation table.
type Totals struct {
	PercentageSum float64 `json:"percentage_sum"`
	Balanced      bool    `json:"balanced"`
	Allocated     int64   `json:"allocated"`
	Remainder     int64   `json:"remainder"`
	OverAllocated bool    `json:"over_allocated"`
}

// Summarize derives the totals of p against target. Nothing is stored.
func Summarize(target int64, p Partition) Totals {
	pctSum := decimal.Zero
	for _, b := range p {
		pctSum = pctSum.Add(decimal.NewFromFloat(b.Percentage))
	}
	allocated := p.Sum()
	remainder := target - allocated

	return Totals{
		PercentageSum: round2(pctSum).InexactFloat64(),
		Balanced:      pctSum.Sub(hundred).Abs().LessThan(balanceTolerance),
		Allocated:     allocated,
		Remainder:     remainder,
		OverAllocated: remainder < 0,
	}
}
