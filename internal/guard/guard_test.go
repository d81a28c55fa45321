package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsManaged(t *testing.T) {
	tests := []struct {
		name string
		tags map[string]string
		want bool
	}{
		{
			name: "opted in",
			tags: map[string]string{"Flexible": "true"},
			want: true,
		},
		{
			name: "explicitly false",
			tags: map[string]string{"Flexible": "false"},
			want: false,
		},
		{
			name: "value comparison is case-sensitive",
			tags: map[string]string{"Flexible": "True"},
			want: false,
		},
		{
			name: "tag absent",
			tags: map[string]string{"Name": "web-1"},
			want: false,
		},
		{
			name: "nil tag set",
			tags: nil,
			want: false,
		},
		{
			name: "empty value",
			tags: map[string]string{"Flexible": ""},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsManaged(tt.tags))
		})
	}
}

func TestOriginalType(t *testing.T) {
	typ, ok := OriginalType(map[string]string{"OriginalType": "c5.large"})
	assert.True(t, ok)
	assert.Equal(t, "c5.large", typ)

	_, ok = OriginalType(map[string]string{"Flexible": "true"})
	assert.False(t, ok)

	_, ok = OriginalType(map[string]string{"OriginalType": ""})
	assert.False(t, ok)

	_, ok = OriginalType(nil)
	assert.False(t, ok)
}
