package sqlstore

import (
	"fmt"

	"relation-labels/internal/record"
)

// scanRecords drains rows into generic records. Every selected column lands
// in the field bag under its column name; the uid column additionally becomes
// the record identity.
func scanRecords(rows Rows, table, uidColumn string) ([]record.Record, error) {
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("reading columns for %s: %w", table, err)
	}

	var records []record.Record
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, fmt.Errorf("scanning %s row: %w", table, err)
		}

		fields := make(map[string]any, len(columns))
		for i, col := range columns {
			fields[col] = values[i]
		}
		uid, _ := record.AsInt64(fields[uidColumn])
		records = append(records, record.New(table, uid, fields))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s rows: %w", table, err)
	}
	return records, nil
}
