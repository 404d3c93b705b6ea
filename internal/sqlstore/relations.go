package sqlstore

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"relation-labels/internal/metadata"
	"relation-labels/internal/record"

	sq "github.com/Masterminds/squirrel"
)

// RelationHandler resolves the ordered foreign uid list for a relation:
// many-to-many relations are read from the junction table, foreign-key list
// fields are parsed from the raw field value.
type RelationHandler struct {
	exec QueryExecutor
}

// NewRelationHandler creates a relation handler on the given executor.
func NewRelationHandler(exec QueryExecutor) *RelationHandler {
	return &RelationHandler{exec: exec}
}

// ForeignKeys implements resolve.RelationHandler.
func (h *RelationHandler) ForeignKeys(ctx context.Context, cfg metadata.FieldConfig, localUID int64, rawValue any) ([]int64, error) {
	switch cfg.Kind {
	case metadata.ManyToMany:
		return h.junctionKeys(ctx, cfg, localUID)
	case metadata.OneToMany:
		return ParseKeyList(record.AsString(rawValue)), nil
	default:
		return nil, nil
	}
}

// junctionKeys lists the foreign uids associated with localUID in the
// junction table, ordered by the configured sort field when one is set.
func (h *RelationHandler) junctionKeys(ctx context.Context, cfg metadata.FieldConfig, localUID int64) ([]int64, error) {
	builder := sq.Select(quoteIdentifier(cfg.ForeignColumn)).
		From(quoteIdentifier(cfg.JunctionTable)).
		Where(sq.Eq{quoteIdentifier(cfg.LocalColumn): localUID})
	if cfg.SortField != "" {
		builder = builder.OrderBy(quoteIdentifier(cfg.SortField) + " ASC")
	}

	query, args, err := builder.PlaceholderFormat(sq.Question).ToSql()
	if err != nil {
		return nil, fmt.Errorf("building junction query for %s: %w", cfg.JunctionTable, err)
	}

	rows, err := h.exec.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying junction table %s: %w", cfg.JunctionTable, err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning junction row from %s: %w", cfg.JunctionTable, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating junction rows from %s: %w", cfg.JunctionTable, err)
	}
	return ids, nil
}

// ParseKeyList parses a delimited foreign-key list as stored in group-style
// fields: comma-separated uids, each entry optionally carrying a table-name
// prefix ("tt_content_12"). Entries that yield no uid are skipped.
func ParseKeyList(raw string) []int64 {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		entry := strings.TrimSpace(part)
		if entry == "" {
			continue
		}
		if id, err := strconv.ParseInt(entry, 10, 64); err == nil {
			ids = append(ids, id)
			continue
		}
		// Prefixed entry: the uid follows the last underscore.
		if idx := strings.LastIndex(entry, "_"); idx >= 0 && idx < len(entry)-1 {
			if id, err := strconv.ParseInt(entry[idx+1:], 10, 64); err == nil {
				ids = append(ids, id)
			}
		}
	}
	if len(ids) == 0 {
		return nil
	}
	return ids
}
