package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		input   string
		want    bool
	}{
		{
			name:    "prefix wildcard matches family",
			pattern: "c5*",
			input:   "c5.large",
			want:    true,
		},
		{
			name:    "prefix wildcard crosses attribute letters",
			pattern: "c5*",
			input:   "c5n.xlarge",
			want:    true,
		},
		{
			name:    "prefix wildcard crosses the dot",
			pattern: "c5*",
			input:   "c5a.2xlarge",
			want:    true,
		},
		{
			name:    "anchored at the start",
			pattern: "c5*",
			input:   "mc5.large",
			want:    false,
		},
		{
			name:    "dot is a literal",
			pattern: "m5a.*",
			input:   "m5a.large",
			want:    true,
		},
		{
			name:    "dot literal does not match a different family",
			pattern: "m5a.*",
			input:   "m5n.large",
			want:    false,
		},
		{
			name:    "inner wildcard matches anywhere",
			pattern: "*3*",
			input:   "c3.large",
			want:    true,
		},
		{
			name:    "inner wildcard matches digit in size",
			pattern: "*3*",
			input:   "m5.3xlarge",
			want:    true,
		},
		{
			name:    "inner wildcard requires the literal",
			pattern: "*3*",
			input:   "m5.large",
			want:    false,
		},
		{
			name:    "exact name without wildcards",
			pattern: "m5.large",
			input:   "m5.large",
			want:    true,
		},
		{
			name:    "exact name is full-anchored",
			pattern: "m5.large",
			input:   "m5.large2",
			want:    false,
		},
		{
			name:    "case-insensitive",
			pattern: "C5*",
			input:   "c5.Large",
			want:    true,
		},
		{
			name:    "multiple wildcards",
			pattern: "c*n.*large",
			input:   "c5n.xlarge",
			want:    true,
		},
		{
			name:    "star matches empty run",
			pattern: "c5*.large",
			input:   "c5.large",
			want:    true,
		},
		{
			name:    "empty pattern matches nothing non-empty",
			pattern: "",
			input:   "c5.large",
			want:    false,
		},
		{
			name:    "lone star matches everything",
			pattern: "*",
			input:   "anything.at.all",
			want:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Match(tt.pattern, tt.input))
		})
	}
}

func TestMatchAny(t *testing.T) {
	patterns := []string{"c5*", "m5a.*"}

	assert.True(t, MatchAny(patterns, "c5.large"))
	assert.True(t, MatchAny(patterns, "m5a.large"))
	assert.False(t, MatchAny(patterns, "m5n.large"))
	assert.False(t, MatchAny(nil, "c5.large"))
}
