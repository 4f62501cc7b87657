package filesize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	cases := []struct {
		input string
		want  int64
		ok    bool
	}{
		{"2.5 MB", 2621440, true},
		{"2.5MB", 2621440, true},
		{"1 GB", 1073741824, true},
		{"512", 524288, true}, // bare numbers default to KB
		{"0.5 KB", 512, true},
		{"", 0, false},
		{"abc", 0, false},
		{"10 TB", 0, false},
		{"-3 MB", 0, false},
	}

	for _, tc := range cases {
		got, ok := Parse(tc.input)
		assert.Equal(t, tc.ok, ok, "input %q", tc.input)
		assert.Equal(t, tc.want, got, "input %q", tc.input)
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "2.5 MB", Format(2621440))
	assert.Equal(t, "1.0 GB", Format(1073741824))
	assert.Equal(t, "512 B", Format(512))
	assert.Equal(t, "1.5 KB", Format(1536))
}
