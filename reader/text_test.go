package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlainText(t *testing.T) {
	got := plainText(`<h1>Title</h1><p>Hello <em>there</em>,
	world.</p><script>alert(1)</script><ul><li>a</li><li>b</li></ul>`)
	assert.Equal(t, "Title\n\nHello there, world.\n\n- a\n\n- b", got)
}

func TestSnippet(t *testing.T) {
	assert.Equal(t, "short", snippet("<p>short</p>", 150))
	assert.Equal(t, "héllo...", snippet("<p>héllo wörld</p>", 5))
}

func TestWrap(t *testing.T) {
	lines := wrap("the quick brown fox jumps\n\nover", 10)
	assert.Equal(t, []string{"the quick", "brown fox", "jumps", "", "over"}, lines)

	long := strings.Repeat("x", 15)
	assert.Equal(t, []string{long}, wrap(long, 10), "long words are not split")
	assert.Empty(t, wrap("", 10))
}
