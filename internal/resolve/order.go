package resolve

import (
	"sort"

	"relation-labels/internal/record"
)

// orderByIdentifiers restores caller-specified order after a batched fetch.
// Batch fetches by identifier set do not guarantee order, so wherever order
// is semantically meaningful (junction-table sort fields, configured FK list
// order) the fetched records are re-sequenced against the original id list.
//
// The id list may contain ids absent from the batch and is not assumed
// unique; for duplicate ids the later position wins. Records whose id does
// not appear in the list are dropped.
func orderByIdentifiers(records []record.Record, ids []int64) []record.Record {
	position := make(map[int64]int, len(ids))
	for i, id := range ids {
		position[id] = i
	}

	byPosition := make(map[int]record.Record, len(records))
	for _, rec := range records {
		if pos, ok := position[rec.UID]; ok {
			byPosition[pos] = rec
		}
	}

	positions := make([]int, 0, len(byPosition))
	for pos := range byPosition {
		positions = append(positions, pos)
	}
	sort.Ints(positions)

	ordered := make([]record.Record, 0, len(positions))
	for _, pos := range positions {
		ordered = append(ordered, byPosition[pos])
	}
	return ordered
}
