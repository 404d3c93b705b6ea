// Package naming provides naming conventions for relation metadata:
// junction-table names derived from the participating tables and the default
// label-field fallback, with per-deployment overrides for irregular nouns.
package naming

import (
	"fmt"

	"github.com/jinzhu/inflection"
)

// DefaultLabelField is used when a table's metadata does not name a label field.
const DefaultLabelField = "title"

// junctionSuffix terminates conventional many-to-many junction table names.
const junctionSuffix = "_mm"

// Config holds naming customization options.
type Config struct {
	// SingularOverrides maps plural -> custom singular.
	// Example: {"people": "person", "media": "medium"}
	SingularOverrides map[string]string `mapstructure:"singular_overrides"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{SingularOverrides: make(map[string]string)}
}

// Namer derives conventional names, consulting overrides before falling back
// to the inflection library.
type Namer struct {
	config Config
}

// New creates a Namer with the given configuration.
func New(cfg Config) *Namer {
	return &Namer{config: cfg}
}

// Singularize converts a plural word to its singular form.
func (n *Namer) Singularize(word string) string {
	if override, ok := n.config.SingularOverrides[word]; ok {
		return override
	}
	return inflection.Singular(word)
}

// JunctionTable returns the conventional junction table name for a
// many-to-many relation: <local>_<singular(foreign)>_mm, e.g. pages +
// categories -> pages_category_mm. Used when metadata omits the junction
// table explicitly.
func (n *Namer) JunctionTable(localTable, foreignTable string) string {
	return fmt.Sprintf("%s_%s%s", localTable, n.Singularize(foreignTable), junctionSuffix)
}
