package listquery

import (
	"math"
	"sort"
)

// Group is one bucket of a distribution.
type Group[K comparable] struct {
	Key   K   `json:"key"`
	Count int `json:"count"`
}

// GroupCount counts records per key. Groups come back in order of each key's
// first occurrence.
func GroupCount[T any, K comparable](records []T, key func(T) K) []Group[K] {
	index := make(map[K]int)
	groups := make([]Group[K], 0)
	for _, r := range records {
		k := key(r)
		if i, ok := index[k]; ok {
			groups[i].Count++
			continue
		}
		index[k] = len(groups)
		groups = append(groups, Group[K]{Key: k, Count: 1})
	}
	return groups
}

// SortByCountDesc returns a copy of groups ordered by descending count. Ties
// keep their first-seen order.
func SortByCountDesc[K comparable](groups []Group[K]) []Group[K] {
	out := make([]Group[K], len(groups))
	copy(out, groups)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out
}

// Distinct returns each key once, in first-seen order.
func Distinct[T any](records []T, key func(T) string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, r := range records {
		k := key(r)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

// Count returns how many records satisfy pred.
func Count[T any](records []T, pred func(T) bool) int {
	n := 0
	for _, r := range records {
		if pred(r) {
			n++
		}
	}
	return n
}

// Mean is the arithmetic mean of value over records, or 0 for no records.
func Mean[T any](records []T, value func(T) float64) float64 {
	if len(records) == 0 {
		return 0
	}
	var sum float64
	for _, r := range records {
		sum += value(r)
	}
	return sum / float64(len(records))
}

// Percent is part/total*100, or 0 when total is not positive.
func Percent(part, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

// Round1 rounds x to one decimal place, halves away from zero.
func Round1(x float64) float64 {
	return math.Round(x*10) / 10
}

// Bucket1 truncates x down to one decimal place (4.57 -> 4.5).
func Bucket1(x float64) float64 {
	return math.Floor(x*10) / 10
}
