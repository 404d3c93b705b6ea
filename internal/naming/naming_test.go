package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJunctionTable(t *testing.T) {
	tests := []struct {
		name      string
		overrides map[string]string
		local     string
		foreign   string
		expected  string
	}{
		{
			name:     "regular plural",
			local:    "pages",
			foreign:  "categories",
			expected: "pages_category_mm",
		},
		{
			name:     "already singular",
			local:    "tt_content",
			foreign:  "tag",
			expected: "tt_content_tag_mm",
		},
		{
			name:      "singular override",
			overrides: map[string]string{"media": "medium"},
			local:     "articles",
			foreign:   "media",
			expected:  "articles_medium_mm",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := New(Config{SingularOverrides: tt.overrides})
			assert.Equal(t, tt.expected, n.JunctionTable(tt.local, tt.foreign))
		})
	}
}

func TestSingularizeFallsBackToInflection(t *testing.T) {
	n := New(DefaultConfig())
	assert.Equal(t, "person", n.Singularize("people"))
	assert.Equal(t, "category", n.Singularize("categories"))
}
