package resolve

import (
	"testing"

	"relation-labels/internal/record"

	"github.com/stretchr/testify/assert"
)

func rec(uid int64) record.Record {
	return record.New("t", uid, nil)
}

func uids(records []record.Record) []int64 {
	out := make([]int64, len(records))
	for i, r := range records {
		out[i] = r.UID
	}
	return out
}

func TestOrderByIdentifiers(t *testing.T) {
	tests := []struct {
		name     string
		batch    []int64
		ids      []int64
		expected []int64
	}{
		{
			name:     "restores scrambled batch",
			batch:    []int64{8, 5, 3},
			ids:      []int64{5, 3, 8},
			expected: []int64{5, 3, 8},
		},
		{
			name:     "ids missing from batch are skipped",
			batch:    []int64{5, 8},
			ids:      []int64{5, 3, 8},
			expected: []int64{5, 8},
		},
		{
			name:     "records absent from id list are dropped",
			batch:    []int64{5, 99, 8},
			ids:      []int64{5, 8},
			expected: []int64{5, 8},
		},
		{
			name:     "duplicate id keeps later position",
			batch:    []int64{5, 3},
			ids:      []int64{5, 3, 5},
			expected: []int64{3, 5},
		},
		{
			name:     "empty id list",
			batch:    []int64{1, 2},
			ids:      nil,
			expected: []int64{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			batch := make([]record.Record, len(tt.batch))
			for i, id := range tt.batch {
				batch[i] = rec(id)
			}
			ordered := orderByIdentifiers(batch, tt.ids)
			assert.Equal(t, tt.expected, uids(ordered))
		})
	}
}
