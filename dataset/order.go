package dataset

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// CompareValues is a total order over attribute values and labels. Values
// are compared by their fmt.Sprint text, then by dynamic type name, so that
// 1 (int) and "1" (string) are distinct but ordered deterministically. It
// returns -1, 0 or +1.
//
// The order is textual: 10 sorts before 9. It exists for reproducible
// iteration and tie-breaking, not for numeric comparison.
func CompareValues(a, b any) int {
	a, b = unsignedZero(a), unsignedZero(b)
	if c := strings.Compare(fmt.Sprint(a), fmt.Sprint(b)); c != 0 {
		return c
	}
	return strings.Compare(fmt.Sprintf("%T", a), fmt.Sprintf("%T", b))
}

// unsignedZero maps -0 to +0. The two are the same map key but print
// differently.
func unsignedZero(v any) any {
	switch x := v.(type) {
	case float64:
		if x == 0 {
			return float64(0)
		}
	case float32:
		if x == 0 {
			return float32(0)
		}
	}
	return v
}

// IsNaN reports whether v is a floating-point NaN. NaN is never equal to
// itself, so it cannot serve as a category.
func IsNaN(v any) bool {
	switch x := v.(type) {
	case float64:
		return math.IsNaN(x)
	case float32:
		return math.IsNaN(float64(x))
	}
	return false
}

// CanonicalValue turns a float cell into a usable category: NaN becomes
// nil and -0 becomes +0. Other values are returned unchanged.
func CanonicalValue(v any) any {
	if IsNaN(v) {
		return nil
	}
	return unsignedZero(v)
}

// SortValues sorts vs in place by CompareValues.
func SortValues(vs []any) {
	sort.SliceStable(vs, func(i, j int) bool {
		return CompareValues(vs[i], vs[j]) < 0
	})
}

// Distinct returns the distinct values of vs sorted by CompareValues.
func Distinct(vs []any) []any {
	seen := make(map[any]struct{}, len(vs))
	var out []any
	for _, v := range vs {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	SortValues(out)
	return out
}
