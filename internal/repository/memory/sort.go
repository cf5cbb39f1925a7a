package memory

import "sort"

func sortByOrder[T any](items []T, id func(T) string, order map[string]int64) {
	sort.SliceStable(items, func(i, j int) bool {
		return order[id(items[i])] < order[id(items[j])]
	})
}
