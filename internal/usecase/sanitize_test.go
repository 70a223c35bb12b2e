package usecase

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanTextEmpty(t *testing.T) {
	assert.Equal(t, "", CleanText(""))
}

func TestCleanTextDoublesQuotes(t *testing.T) {
	assert.Equal(t, "O''Brien", CleanText("O'Brien"))
	assert.Equal(t, `said ""hi""`, CleanText(`said "hi"`))
}

func TestCleanTextCollapsesWhitespaceControls(t *testing.T) {
	assert.Equal(t, "a b c d", CleanText("a\nb\rc\td"))
}

func TestCleanTextStripsControlChars(t *testing.T) {
	assert.Equal(t, "ab", CleanText("a\x00\x1f\x7fb"))
}

func TestCleanTextTruncatesLongInput(t *testing.T) {
	in := strings.Repeat("x", 1500)
	out := CleanText(in)

	assert.Equal(t, 1003, len(out))
	assert.True(t, strings.HasSuffix(out, "..."))
}

func TestCleanTextTruncationIsRuneSafe(t *testing.T) {
	in := strings.Repeat("é", 1200)
	out := CleanText(in)

	assert.Equal(t, strings.Repeat("é", 1000)+"...", out)
}

func TestCleanTextTrimsEdges(t *testing.T) {
	assert.Equal(t, "middle", CleanText("  middle \n"))
}
