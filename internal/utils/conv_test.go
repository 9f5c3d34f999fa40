package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 800))
	assert.Equal(t, "abc...", Truncate("abcdef", 3))

	long := strings.Repeat("é", 801)
	got := Truncate(long, 800)
	assert.Equal(t, strings.Repeat("é", 800)+"...", got)

	assert.Equal(t, "abcdef", Truncate("abcdef", 0))
}

func TestCut(t *testing.T) {
	assert.Equal(t, "abc", Cut("abcdef", 3))
	assert.Equal(t, "ab", Cut("ab", 3))
}

func TestSanitizeID(t *testing.T) {
	assert.Equal(t, "gh_vercel_next_js", SanitizeID("gh_vercel_next.js"))
	assert.Equal(t, "gh_a_b_c", SanitizeID("gh_a/b-c"))
}
