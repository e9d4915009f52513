package application

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "a\nb", Normalize("a\r\nb"))
	assert.Equal(t, "a\nb", Normalize("a\rb"))
	assert.Equal(t, "a\nb", Normalize("\n  a\nb\t\n"))
	assert.Equal(t, "", Normalize("  \r\n \t"))
}

func TestSplitLines(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, SplitLines("a\nb\nc"))
	assert.Equal(t, []string{"a", "b", "c"}, SplitLines("a\r\nb\rc"))
	assert.Equal(t, []string{""}, SplitLines(""))
}
