// Package interval provides half-open genomic interval operations.
package interval

import "sort"

// Interval is a half-open coordinate range [Start, End).
// Start <= End; a zero-length interval is allowed but never produced
// by Subtract.
type Interval struct {
	Start int64
	End   int64
}

// Len returns the number of bases covered by the interval.
func (iv Interval) Len() int64 {
	return iv.End - iv.Start
}

// Overlaps reports whether a and b share at least one base.
// Half-open semantics: touching endpoints do not overlap.
func Overlaps(a, b Interval) bool {
	return a.Start < b.End && b.Start < a.End
}

// Sort orders intervals by (Start, End) ascending, in place.
func Sort(ivs []Interval) {
	sort.Slice(ivs, func(i, j int) bool {
		if ivs[i].Start != ivs[j].Start {
			return ivs[i].Start < ivs[j].Start
		}
		return ivs[i].End < ivs[j].End
	})
}

// Subtract returns the parts of a not covered by any interval in bs.
// The result is sorted by start and contains no zero-length fragments.
// bs may be unsorted and may overlap; the input slices are not modified.
func Subtract(a Interval, bs []Interval) []Interval {
	if a.Len() <= 0 {
		return nil
	}
	if len(bs) == 0 {
		return []Interval{a}
	}

	sorted := make([]Interval, len(bs))
	copy(sorted, bs)
	Sort(sorted)

	var out []Interval
	cur := a.Start
	for _, b := range sorted {
		if b.End <= cur {
			continue
		}
		if b.Start >= a.End {
			break
		}
		if b.Start > cur {
			out = append(out, Interval{Start: cur, End: min64(b.Start, a.End)})
		}
		if b.End > cur {
			cur = b.End
		}
	}
	if cur < a.End {
		out = append(out, Interval{Start: cur, End: a.End})
	}
	return out
}

// SubtractAll applies Subtract to every interval in as and returns the
// concatenated, sorted result.
func SubtractAll(as, bs []Interval) []Interval {
	var out []Interval
	for _, a := range as {
		out = append(out, Subtract(a, bs)...)
	}
	Sort(out)
	return out
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
