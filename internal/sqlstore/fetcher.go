package sqlstore

import (
	"context"
	"fmt"
	"strings"

	"relation-labels/internal/record"

	sq "github.com/Masterminds/squirrel"
)

// uidColumn is the identity column shared by all record tables.
const uidColumn = "uid"

// RecordFetcher batch-loads records by identifier set. One query per call;
// callers needing a specific order restore it themselves, since IN lookups do
// not guarantee one.
type RecordFetcher struct {
	exec QueryExecutor
}

// NewRecordFetcher creates a fetcher on the given executor.
func NewRecordFetcher(exec QueryExecutor) *RecordFetcher {
	return &RecordFetcher{exec: exec}
}

// FetchByIDs implements resolve.RecordFetcher. extraFilter is appended as an
// additional WHERE condition; a leading "AND" from host configuration is
// tolerated and stripped.
func (f *RecordFetcher) FetchByIDs(ctx context.Context, table string, ids []int64, extraFilter string) ([]record.Record, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	builder := sq.Select("*").
		From(quoteIdentifier(table)).
		Where(sq.Eq{quoteIdentifier(uidColumn): ids})
	if filter := normalizeFilter(extraFilter); filter != "" {
		builder = builder.Where(sq.Expr(filter))
	}

	query, args, err := builder.PlaceholderFormat(sq.Question).ToSql()
	if err != nil {
		return nil, fmt.Errorf("building fetch query for %s: %w", table, err)
	}

	rows, err := f.exec.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("fetching from %s: %w", table, err)
	}
	return scanRecords(rows, table, uidColumn)
}

func normalizeFilter(filter string) string {
	filter = strings.TrimSpace(filter)
	upper := strings.ToUpper(filter)
	if strings.HasPrefix(upper, "AND ") {
		filter = strings.TrimSpace(filter[4:])
	}
	return filter
}
