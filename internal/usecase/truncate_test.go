package usecase

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncateUTF8(t *testing.T) {
	cases := []struct {
		in   string
		max  int
		want string
	}{
		{"abc", 5, "abc"},
		{"abcdef", 3, "abc"},
		{"aé", 2, "a"},
		{"日本語", 7, "日本"},
		{"日本語", 2, ""},
	}
	for _, c := range cases {
		got := truncateUTF8(c.in, c.max)
		assert.Equal(t, c.want, got, "in=%q max=%d", c.in, c.max)
		assert.True(t, utf8.ValidString(got))
	}
}
