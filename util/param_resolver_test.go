package util

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveInputParams(t *testing.T) {
	values := map[string]any{
		"firstName": "Darin",
		"count":     float64(3),
		"person": map[string]any{
			"id": float64(17),
		},
	}

	for scenario, tc := range map[string]struct {
		params   map[string]any
		expected map[string]any
	}{
		"plain values pass through": {
			params:   map[string]any{"a": "b", "n": 1, "flag": true},
			expected: map[string]any{"a": "b", "n": 1, "flag": true},
		},
		"embedded token": {
			params:   map[string]any{"greeting": "Hello {$.firstName}!"},
			expected: map[string]any{"greeting": "Hello Darin!"},
		},
		"single token keeps type": {
			params:   map[string]any{"n": "{$.count}", "id": "{$.person.id}"},
			expected: map[string]any{"n": float64(3), "id": float64(17)},
		},
		"unknown token left alone": {
			params:   map[string]any{"x": "{$.missing}", "y": "a {$.missing} b"},
			expected: map[string]any{"x": "{$.missing}", "y": "a {$.missing} b"},
		},
		"non path braces left alone": {
			params:   map[string]any{"x": "{literal}"},
			expected: map[string]any{"x": "{literal}"},
		},
		"nested maps and lists": {
			params: map[string]any{
				"inner": map[string]any{"name": "{$.firstName}"},
				"list":  []any{"{$.firstName}", map[string]any{"id": "{$.person.id}"}, 5},
			},
			expected: map[string]any{
				"inner": map[string]any{"name": "Darin"},
				"list":  []any{"Darin", map[string]any{"id": float64(17)}, 5},
			},
		},
	} {
		t.Run(scenario, func(t *testing.T) {
			require.Equal(t, tc.expected, ResolveInputParams(values, tc.params))
		})
	}
}
