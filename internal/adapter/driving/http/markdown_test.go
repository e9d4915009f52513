package httphandler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderMarkdown(t *testing.T) {
	assert.Equal(t, "", RenderMarkdown(""))

	out := RenderMarkdown("a `quick` **note**")
	assert.Contains(t, out, "<code>quick</code>")
	assert.Contains(t, out, "<strong>note</strong>")
}

func TestRenderMarkdown_SanitizesScript(t *testing.T) {
	out := RenderMarkdown(`hello <script>alert("x")</script>`)
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "hello")
}
