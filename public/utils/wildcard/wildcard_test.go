package wildcard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPattern_IsMatch(t *testing.T) {
	cases := []struct {
		pattern string
		input   string
		match   bool
	}{
		{"*", "", true},
		{"*", "anything", true},
		{"h?llo", "hello", true},
		{"h?llo", "hllo", false},
		{"h*llo", "heeeello", true},
		{"h*llo", "hello world", false},
		{"h[ae]llo", "hallo", true},
		{"h[ae]llo", "hillo", false},
		{"h[^e]llo", "hallo", true},
		{"h[^e]llo", "hello", false},
		{"h[a-b]llo", "hbllo", true},
		{"h[a-b]llo", "hcllo", false},
		{"user:*:name", "user:42:name", true},
		{"user:*:name", "user:42:age", false},
		{"a/*", "a/b/c", true},
		{`h\*llo`, "h*llo", true},
		{`h\*llo`, "hello", false},
		{"h[ello", "hello", false},
		{"**a", "bba", true},
	}
	for _, c := range cases {
		assert.Equal(t, c.match, CompilePattern(c.pattern).IsMatch(c.input), "%q ~ %q", c.pattern, c.input)
	}
}

func TestPattern_LiteralPrefix(t *testing.T) {
	assert.Equal(t, "user:", CompilePattern("user:*").LiteralPrefix())
	assert.Equal(t, "", CompilePattern("*").LiteralPrefix())
	assert.Equal(t, "a", CompilePattern("a?c").LiteralPrefix())
	assert.Equal(t, "k", CompilePattern("k[12]").LiteralPrefix())
	assert.Equal(t, "", CompilePattern(`\*x`).LiteralPrefix())
	assert.Equal(t, "exact", CompilePattern("exact").LiteralPrefix())
}
