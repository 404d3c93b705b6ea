package resolve

import "strings"

// Result holds the resolved label values in caller-specified order. In
// single-value mode String renders the final output; in multi-value mode the
// caller serializes Values in its own transport format.
type Result struct {
	values []string
	multi  bool
	glue   string
}

// Values returns the ordered resolved values.
func (r Result) Values() []string {
	return r.values
}

// Multi reports whether the caller requested multi-value output.
func (r Result) Multi() bool {
	return r.multi
}

// String joins the values with the configured glue.
func (r Result) String() string {
	return strings.Join(r.values, r.glue)
}

// Empty reports whether resolution produced no values.
func (r Result) Empty() bool {
	return len(r.values) == 0
}

// dropEmpty removes values equal to the empty string, preserving order.
func dropEmpty(values []string) []string {
	out := values[:0]
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// dedupe removes duplicate values, keeping the first occurrence and its
// position.
func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := values[:0]
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
