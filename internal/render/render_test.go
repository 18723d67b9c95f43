package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageUsesTemplate(t *testing.T) {
	r, err := New("<main>{{CONTENT}}</main>")
	require.NoError(t, err)

	page, err := r.Page("# Title\n\nSome *text*.\n\n[View original paper](https://arxiv.org/abs/1)")
	require.NoError(t, err)

	assert.Contains(t, page, "<main>")
	assert.Contains(t, page, `<h1 id="title">Title</h1>`)
	assert.Contains(t, page, "<em>text</em>")
	assert.Contains(t, page, `<a href="https://arxiv.org/abs/1">View original paper</a>`)
	assert.NotContains(t, page, ContentPlaceholder)
}

func TestFragmentTablesAndCode(t *testing.T) {
	r, err := New("")
	require.NoError(t, err)

	out, err := r.Fragment("| a | b |\n|---|---|\n| 1 | 2 |\n\n```go\nfmt.Println(1)\n```\n")
	require.NoError(t, err)

	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, "<td>1</td>")
	assert.Contains(t, out, `<code class="language-go">`)
}

func TestFragmentHardWrapsAndRawHTML(t *testing.T) {
	r, err := New("")
	require.NoError(t, err)

	out, err := r.Fragment("line one\nline two\n\n<div class=\"note\">kept</div>\n")
	require.NoError(t, err)

	assert.Contains(t, out, "line one<br>")
	assert.Contains(t, out, `<div class="note">kept</div>`)
}

func TestNewRejectsTemplateWithoutPlaceholder(t *testing.T) {
	_, err := New("<html></html>")
	require.Error(t, err)
	assert.Contains(t, err.Error(), ContentPlaceholder)
}
