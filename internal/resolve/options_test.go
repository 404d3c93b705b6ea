package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeOptionsDefaults(t *testing.T) {
	opts, err := DecodeOptions(map[string]any{"localField": "category"})
	require.NoError(t, err)

	assert.Equal(t, "category", opts.LocalField)
	assert.False(t, opts.MultiValue)
	assert.Nil(t, opts.RemoveEmptyValues)
	assert.Nil(t, opts.EnableRecursiveValueResolution)
	assert.Zero(t, opts.LanguageID)

	rc := newResolution(opts)
	assert.True(t, rc.removeEmpty)
	assert.False(t, rc.removeEmptyExplicit)
	assert.True(t, rc.recursionEnabled)
	assert.Equal(t, DefaultGlue, rc.glue)
	assert.Empty(t, rc.labelPath)
}

func TestDecodeOptionsWeakTyping(t *testing.T) {
	opts, err := DecodeOptions(map[string]any{
		"localField":            "tags",
		"multiValue":            "1",
		"removeEmptyValues":     "0",
		"removeDuplicateValues": "true",
		"languageId":            "3",
	})
	require.NoError(t, err)

	assert.True(t, opts.MultiValue)
	require.NotNil(t, opts.RemoveEmptyValues)
	assert.False(t, *opts.RemoveEmptyValues)
	assert.True(t, opts.RemoveDuplicateValues)
	assert.Equal(t, int64(3), opts.LanguageID)

	rc := newResolution(opts)
	assert.False(t, rc.removeEmpty)
	assert.True(t, rc.removeEmptyExplicit)
}

func TestDecodeOptionsRejectsBadInput(t *testing.T) {
	_, err := DecodeOptions(map[string]any{"languageId": "not-a-number"})
	require.Error(t, err)
}

func TestStripGlue(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"default", "", ", "},
		{"pipe wrapped", "|, |", ", "},
		{"pipe wrapped slash", "| / |", " / "},
		{"pipe wrapped empty", "||", ""},
		{"plain", "; ", "; "},
		{"single pipe stays", "|", "|"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, stripGlue(tt.input))
		})
	}
}

func TestResolutionNarrowLeavesCallerUntouched(t *testing.T) {
	parent := newResolution(Options{LocalField: "related", ForeignLabelField: "author.name"})
	child := parent.narrow("author")

	assert.Equal(t, "author", child.localField)
	assert.Equal(t, []string{"name"}, child.labelPath)
	assert.Equal(t, "related", parent.localField)
	assert.Equal(t, []string{"author", "name"}, parent.labelPath)
}

func TestResolutionCanRecurse(t *testing.T) {
	rc := newResolution(Options{LocalField: "f", ForeignLabelField: "a.b"})
	assert.True(t, rc.canRecurse())

	narrowed := rc.narrow("a")
	assert.False(t, narrowed.canRecurse(), "single remaining segment terminates recursion")

	disabled := newResolution(Options{
		LocalField:                     "f",
		ForeignLabelField:              "a.b",
		EnableRecursiveValueResolution: boolPtr(false),
	})
	assert.False(t, disabled.canRecurse())
}
