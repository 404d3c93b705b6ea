package resolve

import (
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// DefaultGlue joins values in single-value mode when no glue is configured.
const DefaultGlue = ", "

// Options is the caller-facing configuration surface for one resolution.
// It mirrors the option names used by host templates, so it can be decoded
// from a loosely-typed map via DecodeOptions.
//
// The tri-state booleans are pointers: nil means "not configured", which
// matters for removeEmptyValues because the many-to-many path only honors it
// when the caller set it explicitly.
type Options struct {
	// LocalField is the field on the source record to resolve. Required.
	LocalField string `mapstructure:"localField"`
	// ForeignLabelField is a dot-path naming the label field to use; a
	// multi-segment path enables recursion across relations.
	ForeignLabelField string `mapstructure:"foreignLabelField"`
	// MultiValue returns the ordered value list instead of a joined string.
	MultiValue bool `mapstructure:"multiValue"`
	// SingleValueGlue joins values in single-value mode. Externally supplied
	// values wrapped in pipe characters have the pipes stripped.
	SingleValueGlue string `mapstructure:"singleValueGlue"`
	// RelationTableSortingField overrides the junction table sort column.
	RelationTableSortingField string `mapstructure:"relationTableSortingField"`
	// EnableRecursiveValueResolution allows recursion when the label field is
	// itself relational. Defaults to true.
	EnableRecursiveValueResolution *bool `mapstructure:"enableRecursiveValueResolution"`
	// RemoveEmptyValues drops empty resolved values. Defaults to true.
	RemoveEmptyValues *bool `mapstructure:"removeEmptyValues"`
	// RemoveDuplicateValues deduplicates, first occurrence wins.
	RemoveDuplicateValues bool `mapstructure:"removeDuplicateValues"`
	// AdditionalWhereClause is an extra filter passed to the record fetcher.
	AdditionalWhereClause string `mapstructure:"additionalWhereClause"`
	// LanguageID selects the language overlay; 0 is the default language.
	LanguageID int64 `mapstructure:"languageId"`
}

// DecodeOptions decodes an option map as supplied by a host template or API
// request into Options. Input is weakly typed: "1", "true" and 1 all count as
// boolean true, matching what string-based host configuration delivers.
func DecodeOptions(raw map[string]any) (Options, error) {
	var opts Options
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &opts,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return Options{}, fmt.Errorf("building options decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return Options{}, fmt.Errorf("decoding resolve options: %w", err)
	}
	return opts, nil
}

// resolution is the per-call context threaded through the recursive paths.
// It is always passed by value: a callee narrows its own copy and the
// caller's context is never touched, so no backup/restore step exists.
type resolution struct {
	localField          string
	labelPath           []string
	recursionEnabled    bool
	removeEmpty         bool
	removeEmptyExplicit bool
	removeDuplicates    bool
	languageID          int64
	extraFilter         string
	sortField           string
	glue                string
}

func newResolution(opts Options) resolution {
	rc := resolution{
		localField:       opts.LocalField,
		recursionEnabled: true,
		removeEmpty:      true,
		removeDuplicates: opts.RemoveDuplicateValues,
		languageID:       opts.LanguageID,
		extraFilter:      opts.AdditionalWhereClause,
		sortField:        opts.RelationTableSortingField,
		glue:             stripGlue(opts.SingleValueGlue),
	}
	if opts.ForeignLabelField != "" {
		rc.labelPath = strings.Split(opts.ForeignLabelField, ".")
	}
	if opts.EnableRecursiveValueResolution != nil {
		rc.recursionEnabled = *opts.EnableRecursiveValueResolution
	}
	if opts.RemoveEmptyValues != nil {
		rc.removeEmpty = *opts.RemoveEmptyValues
		rc.removeEmptyExplicit = true
	}
	return rc
}

// labelField returns the label field to resolve on foreignTable: the head of
// the remaining dot-path when one is present, otherwise the table's default
// label field.
func (rc resolution) labelField(meta labelFieldSource, foreignTable string) string {
	if len(rc.labelPath) > 0 {
		return rc.labelPath[0]
	}
	return meta.LabelField(foreignTable)
}

// canRecurse reports whether a relational label field should be followed.
// Recursion needs at least one path segment beyond the current one; an
// exhausted dot-path stops recursion rather than erroring.
func (rc resolution) canRecurse() bool {
	return rc.recursionEnabled && len(rc.labelPath) >= 2
}

// narrow returns the context for one recursion level deeper: the label field
// becomes the new local field and the consumed path segment is dropped.
// The receiver is a value, so the caller's context is unchanged.
func (rc resolution) narrow(labelField string) resolution {
	rc.localField = labelField
	if len(rc.labelPath) > 0 {
		rc.labelPath = rc.labelPath[1:]
	}
	return rc
}

type labelFieldSource interface {
	LabelField(table string) string
}

// stripGlue normalizes the configured glue: values arriving from host
// templates are wrapped in pipe characters ("|, |"), which are not part of
// the delimiter.
func stripGlue(glue string) string {
	if glue == "" {
		return DefaultGlue
	}
	if len(glue) >= 2 && strings.HasPrefix(glue, "|") && strings.HasSuffix(glue, "|") {
		glue = glue[1 : len(glue)-1]
	}
	return glue
}
