package prediction

import (
	"errors"
	"fmt"
	"math"
)

// ErrBucketUndefined is returned when a weighted sum falls in a gap of a
// breakpoint table that has no fallback bucket.
var ErrBucketUndefined = errors.New("quartile bucket undefined")

// Range is an interval on the real line. Unbounded ends use math.Inf.
type Range struct {
	Min          float64
	Max          float64
	MinInclusive bool
	MaxInclusive bool
}

// Below is (-inf, x).
func Below(x float64) Range {
	return Range{Min: math.Inf(-1), Max: x}
}

// AtMost is (-inf, x].
func AtMost(x float64) Range {
	return Range{Min: math.Inf(-1), Max: x, MaxInclusive: true}
}

// Between is [a, b].
func Between(a, b float64) Range {
	return Range{Min: a, Max: b, MinInclusive: true, MaxInclusive: true}
}

// From is [a, b).
func From(a, b float64) Range {
	return Range{Min: a, Max: b, MinInclusive: true}
}

// Above is (x, +inf).
func Above(x float64) Range {
	return Range{Min: x, Max: math.Inf(1)}
}

// AtLeast is [x, +inf).
func AtLeast(x float64) Range {
	return Range{Min: x, Max: math.Inf(1), MinInclusive: true}
}

// Contains reports whether v lies in r. NaN is never contained.
func (r Range) Contains(v float64) bool {
	if math.IsNaN(v) {
		return false
	}
	if v < r.Min || (v == r.Min && !r.MinInclusive) {
		return false
	}
	if v > r.Max || (v == r.Max && !r.MaxInclusive) {
		return false
	}
	return true
}

func (r Range) String() string {
	lo, hi := "(", ")"
	if r.MinInclusive {
		lo = "["
	}
	if r.MaxInclusive {
		hi = "]"
	}
	return fmt.Sprintf("%s%g, %g%s", lo, r.Min, r.Max, hi)
}

// BucketTable maps a weighted sum to a quartile bucket. Ranges[i] is bucket i.
// Fallback is used when no range matches; a negative Fallback makes the gap an
// error.
type BucketTable struct {
	Ranges   []Range
	Fallback int
}

// Bucket returns the index of the first range containing sum.
func (t BucketTable) Bucket(sum float64) (int, error) {
	for i, r := range t.Ranges {
		if r.Contains(sum) {
			return i, nil
		}
	}
	if t.Fallback >= 0 {
		return t.Fallback, nil
	}
	return 0, fmt.Errorf("%w: sum %g", ErrBucketUndefined, sum)
}

// Total reports whether every sum maps to a bucket.
func (t BucketTable) Total() bool {
	return t.Fallback >= 0 || contiguous(t.Ranges)
}

// contiguous reports whether ordered ranges cover the whole real line.
func contiguous(rs []Range) bool {
	if len(rs) == 0 || !math.IsInf(rs[0].Min, -1) {
		return false
	}
	for i := 1; i < len(rs); i++ {
		prev, cur := rs[i-1], rs[i]
		if prev.Max != cur.Min || (!prev.MaxInclusive && !cur.MinInclusive) {
			return false
		}
	}
	return math.IsInf(rs[len(rs)-1].Max, 1)
}

var (
	// CoffeeBuckets leaves (2678.75, 2701.25), (4614.5, 4628.5) and
	// (8002, 8061] uncovered.
	CoffeeBuckets = BucketTable{
		Ranges: []Range{
			Below(2678.75),
			Between(2701.25, 4614.50),
			Between(4628.50, 8002.00),
			Above(8061.00),
		},
		Fallback: -1,
	}

	// MaizeBuckets sends anything unmatched, including the non-integer gaps
	// between breakpoints, to the top bucket. 1381 itself is bucket 0.
	MaizeBuckets = BucketTable{
		Ranges: []Range{
			AtMost(1381),
			Between(1382, 2880),
			Between(2881, 5970),
		},
		Fallback: 3,
	}
)

var bucketTables = map[string]BucketTable{
	CropCafe: CoffeeBuckets,
	CropMaiz: MaizeBuckets,
}

// FilterValue is the weighted sum hectare + harvested + soldPrice +
// harvestLoss + harvested. Harvested counts twice and the additions happen in
// exactly this order.
func FilterValue(hectare, harvested, soldPrice, harvestLoss float64) float64 {
	return hectare + harvested + soldPrice + harvestLoss + harvested
}

// QuartileBucket computes the weighted sum for crop and maps it through the
// crop's breakpoint table.
func QuartileBucket(crop string, hectare, harvested, soldPrice, harvestLoss float64) (int, error) {
	table, ok := bucketTables[crop]
	if !ok {
		return 0, fmt.Errorf("no quartile table for crop %q", crop)
	}
	return table.Bucket(FilterValue(hectare, harvested, soldPrice, harvestLoss))
}
