package schema

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseTag(t *testing.T) {
	tests := []struct {
		tag   string
		want  tagOptions
		fails bool
	}{
		{"0", tagOptions{index: 0}, false},
		{"12", tagOptions{index: 12}, false},
		{" 3 ", tagOptions{index: 3}, false},
		{"3,ambient", tagOptions{index: 3, ambient: true}, false},
		{"4,codec=levels", tagOptions{index: 4, codec: "levels"}, false},
		{"4,codec=levels,ambient", tagOptions{index: 4, codec: "levels", ambient: true}, false},
		{"5,", tagOptions{index: 5}, false},
		{"", tagOptions{}, true},
		{",ambient", tagOptions{}, true},
		{"-1", tagOptions{}, true},
		{"65535", tagOptions{index: 65535}, false},
		{"65536", tagOptions{}, true},
		{"2000000000", tagOptions{}, true},
		{"a", tagOptions{}, true},
		{"1.5", tagOptions{}, true},
		{"1,omitempty", tagOptions{}, true},
		{"1,codec=", tagOptions{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			got, err := parseTag(tt.tag)
			if tt.fails {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}
