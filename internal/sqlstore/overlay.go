package sqlstore

import (
	"context"
	"fmt"

	"relation-labels/internal/record"

	sq "github.com/Masterminds/squirrel"
)

// OverlayConfig names the columns linking a localized row to its
// default-language parent.
type OverlayConfig struct {
	LanguageColumn string `mapstructure:"language_column"`
	ParentColumn   string `mapstructure:"parent_column"`
}

// DefaultOverlayConfig returns the conventional overlay column names.
func DefaultOverlayConfig() OverlayConfig {
	return OverlayConfig{
		LanguageColumn: "sys_language_uid",
		ParentColumn:   "l10n_parent",
	}
}

// Overlayer looks up the language-localized variant of a record. A record
// without a localized row is returned unchanged.
type Overlayer struct {
	exec QueryExecutor
	cfg  OverlayConfig
}

// NewOverlayer creates an overlayer on the given executor. Zero-value config
// fields fall back to the conventional column names.
func NewOverlayer(exec QueryExecutor, cfg OverlayConfig) *Overlayer {
	defaults := DefaultOverlayConfig()
	if cfg.LanguageColumn == "" {
		cfg.LanguageColumn = defaults.LanguageColumn
	}
	if cfg.ParentColumn == "" {
		cfg.ParentColumn = defaults.ParentColumn
	}
	return &Overlayer{exec: exec, cfg: cfg}
}

// Overlay implements resolve.Overlayer. Localized field values replace the
// parent's; the record identity and the overlay linkage columns are kept from
// the original so follow-up relations keep operating on the parent uid.
func (o *Overlayer) Overlay(ctx context.Context, rec record.Record, languageID int64) (record.Record, error) {
	if languageID == 0 {
		return rec, nil
	}

	query, args, err := sq.Select("*").
		From(quoteIdentifier(rec.Table)).
		Where(sq.Eq{quoteIdentifier(o.cfg.ParentColumn): rec.UID}).
		Where(sq.Eq{quoteIdentifier(o.cfg.LanguageColumn): languageID}).
		Limit(1).
		PlaceholderFormat(sq.Question).
		ToSql()
	if err != nil {
		return record.Record{}, fmt.Errorf("building overlay query for %s: %w", rec.Table, err)
	}

	rows, err := o.exec.QueryContext(ctx, query, args...)
	if err != nil {
		return record.Record{}, fmt.Errorf("querying overlay for %s record %d: %w", rec.Table, rec.UID, err)
	}
	localized, err := scanRecords(rows, rec.Table, uidColumn)
	if err != nil {
		return record.Record{}, err
	}
	if len(localized) == 0 {
		return rec, nil
	}

	merged := rec.Clone()
	for field, value := range localized[0].Fields {
		if field == uidColumn || field == o.cfg.ParentColumn || field == o.cfg.LanguageColumn {
			continue
		}
		if value == nil {
			continue
		}
		merged.Fields[field] = value
	}
	return merged, nil
}
