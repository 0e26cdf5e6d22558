package collection

import "github.com/mmcdole/cinelist/internal/domain"

// DistinctIDs flattens every list and returns each referenced movie ID once,
// in first-discovery order: lists in name-sequence order, stubs in list order.
// Lists present in the mapping but missing from the sequence are visited last.
func DistinctIDs(c domain.Collection) []int {
	seen := make(map[int]bool)
	var ids []int

	visit := func(stubs []domain.MovieStub) {
		for _, stub := range stubs {
			if seen[stub.ID] {
				continue
			}
			seen[stub.ID] = true
			ids = append(ids, stub.ID)
		}
	}

	named := make(map[string]bool, len(c.Names))
	for _, name := range c.Names {
		named[name] = true
		visit(c.Lists[name])
	}
	for _, name := range sortedKeys(c.Lists) {
		if !named[name] {
			visit(c.Lists[name])
		}
	}
	return ids
}
