// Package resolve implements the recursive relation-resolution engine. Given
// a source record and an option set, it follows the relation metadata of one
// field to the related records, across a junction table or a foreign-key
// list. It restores caller-specified order after the batched fetch, recurses
// along a dot-path when the label field is itself relational, applies the
// language overlay, and serializes the collected label values.
//
// All collaborators are injected at construction; the resolver keeps no
// state between calls and is safe for concurrent use.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"relation-labels/internal/logging"
	"relation-labels/internal/metadata"
	"relation-labels/internal/record"

	"go.opentelemetry.io/otel/attribute"
)

// ErrMissingLocalField is returned when the options do not name the field to
// resolve.
var ErrMissingLocalField = errors.New("resolve: localField is required")

// RelationHandler turns relation metadata plus a source record key (and, for
// foreign-key list fields, the raw field value) into the ordered list of
// foreign record uids. Order reflects the junction sort field or the
// configured list order; the list may be empty.
type RelationHandler interface {
	ForeignKeys(ctx context.Context, cfg metadata.FieldConfig, localUID int64, rawValue any) ([]int64, error)
}

// RecordFetcher batch-loads records by identifier set. Result order is not
// guaranteed; the resolver restores it.
type RecordFetcher interface {
	FetchByIDs(ctx context.Context, table string, ids []int64, extraFilter string) ([]record.Record, error)
}

// Overlayer returns the language-localized variant of a record, or the
// record unchanged when no overlay exists.
type Overlayer interface {
	Overlay(ctx context.Context, rec record.Record, languageID int64) (record.Record, error)
}

// TransformFunc post-processes each resolved value before it is emitted,
// comparable to a templating wrap filter.
type TransformFunc func(value string) string

// Option customizes a Resolver.
type Option func(*Resolver)

// WithTransform replaces the value transform hook. Passing nil makes every
// value resolve to the empty string, mirroring a host template with no wrap
// configured.
func WithTransform(fn TransformFunc) Option {
	return func(r *Resolver) { r.transform = fn }
}

// WithMetrics attaches resolver metrics.
func WithMetrics(m *Metrics) Option {
	return func(r *Resolver) { r.metrics = m }
}

// Resolver orchestrates relation resolution over its injected collaborators.
type Resolver struct {
	meta      metadata.Provider
	relations RelationHandler
	fetcher   RecordFetcher
	overlays  Overlayer
	transform TransformFunc
	metrics   *Metrics
}

// New creates a resolver. The default transform trims surrounding whitespace
// and otherwise passes values through.
func New(meta metadata.Provider, relations RelationHandler, fetcher RecordFetcher, overlays Overlayer, opts ...Option) *Resolver {
	r := &Resolver{
		meta:      meta,
		relations: relations,
		fetcher:   fetcher,
		overlays:  overlays,
		transform: strings.TrimSpace,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve resolves the relation encoded in source's configured field into
// label values. A field without relation metadata resolves to an empty
// result, never an error. Storage failures are propagated unwrapped of any
// retry logic; the operation is read-only and idempotent, so retrying is the
// caller's prerogative.
func (r *Resolver) Resolve(ctx context.Context, opts Options, source record.Record) (result Result, err error) {
	if opts.LocalField == "" {
		return Result{}, ErrMissingLocalField
	}

	rc := newResolution(opts)
	outcome := ""
	ctx, span := startResolveSpan(ctx, "resolve.field",
		attribute.String("resolve.table", source.Table),
		attribute.String("resolve.field", rc.localField),
	)
	defer func() {
		finishResolveSpan(span, err, outcome)
		span.End()
	}()

	cfg, ok := r.meta.FieldConfig(source.Table, rc.localField)
	if !ok {
		outcome = outcomeNoMetadata
		r.metrics.recordResolution(source.Table, metadata.RelationNone.String(), outcomeNoMetadata, 0)
		logging.FromContext(ctx).Debug("no relation metadata for field",
			slog.String("table", source.Table),
			slog.String("field", rc.localField),
		)
		return Result{multi: opts.MultiValue, glue: rc.glue}, nil
	}
	span.SetAttributes(
		attribute.String("resolve.kind", cfg.Kind.String()),
		attribute.String("resolve.foreign_table", cfg.ForeignTable),
	)

	// The option-level sort field overrides the descriptor's; cfg is a copy,
	// the provider's descriptor stays untouched.
	if rc.sortField != "" {
		cfg.SortField = rc.sortField
	}

	var values []string
	switch cfg.Kind {
	case metadata.ManyToMany:
		values, err = r.resolveManyToMany(ctx, rc, cfg, source)
	case metadata.OneToMany:
		values, err = r.resolveForeignTable(ctx, rc, cfg, source.UID, source.Fields[rc.localField])
	default:
		values = nil
	}
	if err != nil {
		r.metrics.recordResolution(source.Table, cfg.Kind.String(), outcomeError, 0)
		return Result{}, err
	}

	// The many-to-many path keeps empty label values unless the caller asked
	// for their removal explicitly; the foreign-table path filters inline.
	if cfg.Kind == metadata.ManyToMany && rc.removeEmptyExplicit && rc.removeEmpty {
		values = dropEmpty(values)
	}
	if rc.removeDuplicates {
		values = dedupe(values)
	}

	outcome = outcomeResolved
	if len(values) == 0 {
		outcome = outcomeEmpty
	}
	r.metrics.recordResolution(source.Table, cfg.Kind.String(), outcome, len(values))

	return Result{values: values, multi: opts.MultiValue, glue: rc.glue}, nil
}

// resolveManyToMany walks a junction-table relation: list the ordered foreign
// uids, batch-fetch the records, restore order, then collect one label per
// record, recursing through the foreign-table path when the label field is
// itself relational.
func (r *Resolver) resolveManyToMany(ctx context.Context, rc resolution, cfg metadata.FieldConfig, source record.Record) ([]string, error) {
	labelField := rc.labelField(r.meta, cfg.ForeignTable)

	ids, err := r.relations.ForeignKeys(ctx, cfg, source.UID, nil)
	if err != nil {
		return nil, fmt.Errorf("listing junction keys for %s.%s: %w", cfg.LocalTable, cfg.LocalField, err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	records, err := r.fetchOrdered(ctx, cfg.ForeignTable, ids, rc.extraFilter)
	if err != nil {
		return nil, err
	}

	values := make([]string, 0, len(records))
	for _, rec := range records {
		if nested, ok := r.meta.FieldConfig(cfg.ForeignTable, labelField); ok && rc.canRecurse() {
			// Every foreign record is expanded and the expansions are
			// flattened in order. Returning after the first expansion would
			// silently drop the remaining records.
			expanded, err := r.resolveForeignTable(ctx, rc.narrow(labelField), nested, rec.UID, rec.Fields[labelField])
			if err != nil {
				return nil, err
			}
			values = append(values, expanded...)
			continue
		}

		if rc.languageID != 0 {
			rec, err = r.overlays.Overlay(ctx, rec, rc.languageID)
			if err != nil {
				return nil, fmt.Errorf("overlaying %s record %d: %w", rec.Table, rec.UID, err)
			}
		}
		values = append(values, rec.String(labelField))
	}
	return values, nil
}

// resolveForeignTable walks a foreign-key list relation: parse the raw field
// value into ordered uids, batch-fetch, restore order, then resolve one value
// per record.
func (r *Resolver) resolveForeignTable(ctx context.Context, rc resolution, cfg metadata.FieldConfig, localUID int64, rawValue any) ([]string, error) {
	labelField := rc.labelField(r.meta, cfg.ForeignTable)

	ids, err := r.relations.ForeignKeys(ctx, cfg, localUID, rawValue)
	if err != nil {
		return nil, fmt.Errorf("resolving foreign keys for %s.%s: %w", cfg.LocalTable, cfg.LocalField, err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	records, err := r.fetchOrdered(ctx, cfg.ForeignTable, ids, rc.extraFilter)
	if err != nil {
		return nil, err
	}

	values := make([]string, 0, len(records))
	for _, rec := range records {
		value, err := r.resolveValue(ctx, rc, rec, labelField)
		if err != nil {
			return nil, err
		}
		if value == "" && rc.removeEmpty {
			continue
		}
		values = append(values, value)
	}
	return values, nil
}

// resolveValue produces one resolved string for a fetched record. When the
// label field is itself relational and segments remain on the dot-path, it
// recurses one level and takes the last element of the recursive sequence;
// that last-element contract is part of the established output format for
// chained label paths.
func (r *Resolver) resolveValue(ctx context.Context, rc resolution, rec record.Record, labelField string) (string, error) {
	var err error
	if rc.languageID != 0 {
		rec, err = r.overlays.Overlay(ctx, rec, rc.languageID)
		if err != nil {
			return "", fmt.Errorf("overlaying %s record %d: %w", rec.Table, rec.UID, err)
		}
	}

	value := rec.String(labelField)

	if nested, ok := r.meta.FieldConfig(rec.Table, labelField); ok && rc.canRecurse() {
		expanded, err := r.resolveForeignTable(ctx, rc.narrow(labelField), nested, rec.UID, rec.Fields[labelField])
		if err != nil {
			return "", err
		}
		value = ""
		if len(expanded) > 0 {
			value = expanded[len(expanded)-1]
		}
	}

	if r.transform == nil {
		return "", nil
	}
	return r.transform(value), nil
}

// fetchOrdered issues the single batched fetch for one resolution level and
// restores the relation handler's order. One fetch per level, never one per
// record.
func (r *Resolver) fetchOrdered(ctx context.Context, table string, ids []int64, extraFilter string) ([]record.Record, error) {
	r.metrics.recordFetchBatch(table)
	records, err := r.fetcher.FetchByIDs(ctx, table, ids, extraFilter)
	if err != nil {
		return nil, fmt.Errorf("fetching %s records: %w", table, err)
	}
	return orderByIdentifiers(records, ids), nil
}
