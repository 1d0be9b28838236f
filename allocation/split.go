// Package allocation splits a budget total into named buckets (quarters or regions).
//
// Amounts are integers in the smallest currency unit. Every split assigns the
// rounding remainder to the last bucket in iteration order, so the buckets of a
// partition always sum exactly to the total.
package allocation

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrInvalidArgument is returned for negative totals, empty bucket lists, zero
// bucket counts and amounts that do not fit in an int64.
var ErrInvalidArgument = errors.New("invalid argument")

// QuarterNames is the bucket order used when splitting a yearly budget.
var QuarterNames = []string{"q1", "q2", "q3", "q4"}

var hundred = decimal.NewFromInt(100)

// EqualSplit divides total into count parts. All parts but the last are
// total/count; the last one takes what is left.
func EqualSplit(total int64, count int) ([]int64, error) {
	if count <= 0 {
		return nil, fmt.Errorf("%w: bucket count must be positive, got %d", ErrInvalidArgument, count)
	}
	if total < 0 {
		return nil, fmt.Errorf("%w: total must not be negative, got %d", ErrInvalidArgument, total)
	}

	base := total / int64(count)
	amounts := make([]int64, count)
	for i := 0; i < count-1; i++ {
		amounts[i] = base
	}
	amounts[count-1] = total - base*int64(count-1)
	return amounts, nil
}

// EqualPartition splits total evenly over the named buckets and gives every
// bucket the same rounded percentage share.
func EqualPartition(total int64, names []string) (Partition, error) {
	if err := checkNames(names); err != nil {
		return nil, err
	}
	amounts, err := EqualSplit(total, len(names))
	if err != nil {
		return nil, err
	}

	share := round2(hundred.Div(decimal.NewFromInt(int64(len(names)))))
	p := make(Partition, len(names))
	for i, name := range names {
		p[i] = Bucket{Name: name, Amount: amounts[i], Percentage: share.InexactFloat64()}
	}
	return p, nil
}

// SplitQuarters splits a yearly total over q1..q4.
func SplitQuarters(total int64) (map[string]int64, error) {
	amounts, err := EqualSplit(total, len(QuarterNames))
	if err != nil {
		return nil, err
	}
	quarters := make(map[string]int64, len(QuarterNames))
	for i, name := range QuarterNames {
		quarters[name] = amounts[i]
	}
	return quarters, nil
}

// PercentageSplit applies percentages to total over the buckets in order.
//
// Buckets with a positive percentage are kept. When the kept percentages leave
// something below 100, the rest is shared evenly (rounded to two decimals) among
// the buckets without a positive percentage. Sets above 100 are left as given.
// Every bucket but the last gets floor(total*pct/100); the last one gets the
// remainder.
func PercentageSplit(total int64, percentages map[string]float64, order []string) (map[string]int64, map[string]float64, error) {
	if total < 0 {
		return nil, nil, fmt.Errorf("%w: total must not be negative, got %d", ErrInvalidArgument, total)
	}
	if err := checkNames(order); err != nil {
		return nil, nil, err
	}

	pcts := make(map[string]decimal.Decimal, len(order))
	filled := decimal.Zero
	var empty []string
	for _, name := range order {
		pct := decimal.NewFromFloat(percentages[name])
		pcts[name] = pct
		if pct.IsPositive() {
			filled = filled.Add(pct)
		} else {
			empty = append(empty, name)
		}
	}

	remaining := hundred.Sub(filled)
	if len(empty) > 0 && remaining.IsPositive() {
		share := round2(remaining.Div(decimal.NewFromInt(int64(len(empty)))))
		for _, name := range empty {
			pcts[name] = share
		}
	}

	amounts := make(map[string]int64, len(order))
	outPcts := make(map[string]float64, len(order))
	totalDec := decimal.NewFromInt(total)
	allocated := decimal.Zero
	last := len(order) - 1
	for i, name := range order {
		outPcts[name] = pcts[name].InexactFloat64()
		if i == last {
			break
		}
		amount := totalDec.Mul(pcts[name]).Shift(-2).Floor()
		v, err := toInt64(amount, name)
		if err != nil {
			return nil, nil, err
		}
		amounts[name] = v
		allocated = allocated.Add(amount)
	}
	rest, err := toInt64(totalDec.Sub(allocated), order[last])
	if err != nil {
		return nil, nil, err
	}
	amounts[order[last]] = rest

	return amounts, outPcts, nil
}

// PercentagePartition is PercentageSplit returned as an ordered partition.
func PercentagePartition(total int64, percentages map[string]float64, order []string) (Partition, error) {
	amounts, pcts, err := PercentageSplit(total, percentages, order)
	if err != nil {
		return nil, err
	}
	p := make(Partition, len(order))
	for i, name := range order {
		p[i] = Bucket{Name: name, Amount: amounts[name], Percentage: pcts[name]}
	}
	return p, nil
}

// Reset returns a zeroed partition over names.
func Reset(names []string) Partition {
	p := make(Partition, len(names))
	for i, name := range names {
		p[i] = Bucket{Name: name}
	}
	return p
}

// ReleaseAmount is the part of base released by releasePercent, floored.
func ReleaseAmount(base int64, releasePercent float64) (int64, error) {
	if base < 0 {
		return 0, fmt.Errorf("%w: base amount must not be negative, got %d", ErrInvalidArgument, base)
	}
	if releasePercent < 0 {
		return 0, fmt.Errorf("%w: release percent must not be negative, got %v", ErrInvalidArgument, releasePercent)
	}
	return toInt64(decimal.NewFromInt(base).Mul(decimal.NewFromFloat(releasePercent)).Shift(-2).Floor(), "release")
}

// toInt64 converts a whole amount, rejecting values IntPart would wrap.
func toInt64(d decimal.Decimal, bucket string) (int64, error) {
	if !d.BigInt().IsInt64() {
		return 0, fmt.Errorf("%w: amount for %q overflows int64", ErrInvalidArgument, bucket)
	}
	return d.IntPart(), nil
}

func checkNames(names []string) error {
	if len(names) == 0 {
		return fmt.Errorf("%w: at least one bucket is required", ErrInvalidArgument)
	}
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if _, ok := seen[name]; ok {
			return fmt.Errorf("%w: duplicate bucket %q", ErrInvalidArgument, name)
		}
		seen[name] = struct{}{}
	}
	return nil
}

func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
