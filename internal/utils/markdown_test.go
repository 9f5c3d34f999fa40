package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTMLToText(t *testing.T) {
	in := `I built this over the weekend.<p>It uses <a href="https://x.dev">x</a> &amp; <i>y</i>.<script>alert(1)</script>`
	got := HTMLToText(in)
	assert.Equal(t, "I built this over the weekend.\nIt uses x & y.", got)
	assert.Empty(t, HTMLToText("   "))
}

func TestMarkdownToText(t *testing.T) {
	in := "# Title\n\nSome **bold** and `code`.\n\n- one\n- two\n"
	got := MarkdownToText(in)
	assert.Contains(t, got, "Title")
	assert.Contains(t, got, "Some bold and code.")
	assert.NotContains(t, got, "**")
	assert.NotContains(t, got, "<")
}
