// Package metadata exposes the relation shape of (table, field) pairs: whether
// a field relates records many-to-many through a junction table or carries a
// foreign-key list directly, plus each table's default label field. The
// resolver consumes this through the Provider interface; the shipped
// implementation is a static provider built from the configuration file.
package metadata

import (
	"fmt"

	"relation-labels/internal/naming"
)

// RelationKind classifies how a field relates records to a foreign table.
type RelationKind int

const (
	// RelationNone indicates the field carries no relation.
	RelationNone RelationKind = iota
	// OneToMany indicates the field itself stores a delimited list of
	// foreign record uids.
	OneToMany
	// ManyToMany indicates the relation is stored in a junction table.
	ManyToMany
)

// String returns a human-readable representation of the relation kind.
func (k RelationKind) String() string {
	switch k {
	case RelationNone:
		return "none"
	case OneToMany:
		return "one_to_many"
	case ManyToMany:
		return "many_to_many"
	default:
		return "unknown"
	}
}

// Default junction table column names, following the uid_local/uid_foreign
// convention.
const (
	DefaultLocalColumn   = "uid_local"
	DefaultForeignColumn = "uid_foreign"
)

// FieldConfig describes the relation encoded in one field of one table.
// Immutable once loaded; providers hand out copies.
type FieldConfig struct {
	// LocalTable and LocalField identify the field the config belongs to.
	LocalTable string
	LocalField string
	// Kind selects the resolution path.
	Kind RelationKind
	// ForeignTable is the table holding the related records.
	ForeignTable string
	// JunctionTable stores the associations for ManyToMany relations.
	JunctionTable string
	// LocalColumn and ForeignColumn name the junction table columns pointing
	// at the local and foreign record respectively.
	LocalColumn   string
	ForeignColumn string
	// SortField optionally names the junction table column defining the
	// order of foreign records.
	SortField string
}

// Provider exposes relation metadata to the resolver.
type Provider interface {
	// FieldConfig returns the relation config for (table, field). The second
	// return is false when the field carries no relation; that is not an
	// error condition.
	FieldConfig(table, field string) (FieldConfig, bool)
	// LabelField returns the table's default label field.
	LabelField(table string) string
}

// FieldSpec is the configuration-file shape of a relation declaration.
type FieldSpec struct {
	Kind          string `mapstructure:"kind"`
	ForeignTable  string `mapstructure:"foreign_table"`
	JunctionTable string `mapstructure:"junction_table"`
	LocalColumn   string `mapstructure:"local_column"`
	ForeignColumn string `mapstructure:"foreign_column"`
	SortField     string `mapstructure:"sort_field"`
}

// TableSpec is the configuration-file shape of one table's metadata.
type TableSpec struct {
	LabelField string               `mapstructure:"label_field"`
	Fields     map[string]FieldSpec `mapstructure:"fields"`
}

// StaticProvider serves relation metadata from an in-memory table map built
// at startup. Lookups return copies, so configs stay immutable.
type StaticProvider struct {
	labelFields map[string]string
	fields      map[string]map[string]FieldConfig
}

// NewStaticProvider builds a provider from configuration specs. Missing
// junction tables and junction columns are defaulted by convention via the
// namer; unknown kinds are rejected.
func NewStaticProvider(specs map[string]TableSpec, namer *naming.Namer) (*StaticProvider, error) {
	if namer == nil {
		namer = naming.New(naming.DefaultConfig())
	}

	p := &StaticProvider{
		labelFields: make(map[string]string, len(specs)),
		fields:      make(map[string]map[string]FieldConfig, len(specs)),
	}

	for table, spec := range specs {
		if spec.LabelField != "" {
			p.labelFields[table] = spec.LabelField
		}
		if len(spec.Fields) == 0 {
			continue
		}
		p.fields[table] = make(map[string]FieldConfig, len(spec.Fields))
		for field, fs := range spec.Fields {
			cfg, err := buildFieldConfig(table, field, fs, namer)
			if err != nil {
				return nil, err
			}
			p.fields[table][field] = cfg
		}
	}

	return p, nil
}

func buildFieldConfig(table, field string, fs FieldSpec, namer *naming.Namer) (FieldConfig, error) {
	if fs.ForeignTable == "" {
		return FieldConfig{}, fmt.Errorf("metadata for %s.%s: foreign_table is required", table, field)
	}

	cfg := FieldConfig{
		LocalTable:   table,
		LocalField:   field,
		ForeignTable: fs.ForeignTable,
		SortField:    fs.SortField,
	}

	switch fs.Kind {
	case "many_to_many", "mm":
		cfg.Kind = ManyToMany
		cfg.JunctionTable = fs.JunctionTable
		if cfg.JunctionTable == "" {
			cfg.JunctionTable = namer.JunctionTable(table, fs.ForeignTable)
		}
		cfg.LocalColumn = fs.LocalColumn
		if cfg.LocalColumn == "" {
			cfg.LocalColumn = DefaultLocalColumn
		}
		cfg.ForeignColumn = fs.ForeignColumn
		if cfg.ForeignColumn == "" {
			cfg.ForeignColumn = DefaultForeignColumn
		}
	case "one_to_many", "list", "":
		cfg.Kind = OneToMany
	default:
		return FieldConfig{}, fmt.Errorf("metadata for %s.%s: unknown relation kind %q", table, field, fs.Kind)
	}

	return cfg, nil
}

// FieldConfig implements Provider.
func (p *StaticProvider) FieldConfig(table, field string) (FieldConfig, bool) {
	cfg, ok := p.fields[table][field]
	return cfg, ok
}

// LabelField implements Provider. Tables without configured metadata fall
// back to the conventional label field.
func (p *StaticProvider) LabelField(table string) string {
	if label, ok := p.labelFields[table]; ok {
		return label
	}
	return naming.DefaultLabelField
}
