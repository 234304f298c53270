package ragcore

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func makeLines(n int) string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = "line content number"
	}
	return strings.Join(lines, "\n")
}

func TestChunker_EmptyText(t *testing.T) {
	c, err := NewChunker()
	require.NoError(t, err)
	require.Empty(t, c.Split(""))
	require.Empty(t, c.Split("   \n\t  "))
}

func TestChunker_DenseZeroBasedIndices(t *testing.T) {
	c, err := NewChunker(WithMaxLines(10), WithOverlapLines(2))
	require.NoError(t, err)

	chunks := c.Split(makeLines(35))
	require.NotEmpty(t, chunks)
	for i, ch := range chunks {
		require.Equal(t, i, ch.Index)
	}
}

func TestChunker_RespectsMaxChunkSize(t *testing.T) {
	c, err := NewChunker(WithMaxLines(500), WithOverlapLines(0), WithMaxChunkSize(50))
	require.NoError(t, err)

	longLine := strings.Repeat("word ", 100)
	chunks := c.Split(longLine)
	require.NotEmpty(t, chunks)
	for _, ch := range chunks {
		require.LessOrEqual(t, len(ch.Content), 50) // the cut-point search only ever moves back from the cap
	}
}

func TestChunker_Determinism(t *testing.T) {
	c, err := NewChunker(WithMaxLines(20), WithOverlapLines(5))
	require.NoError(t, err)

	text := makeLines(60)
	first := c.Split(text)
	second := c.Split(text)
	require.Equal(t, first, second)
}

func TestChunker_OverlapProducesMoreThanOneWindow(t *testing.T) {
	c, err := NewChunker(WithMaxLines(10), WithOverlapLines(5))
	require.NoError(t, err)

	chunks := c.Split(makeLines(25))
	require.Greater(t, len(chunks), 1)
}

func TestNewChunker_RejectsInvalidConfig(t *testing.T) {
	_, err := NewChunker(WithMaxLines(0))
	require.Error(t, err)

	_, err = NewChunker(WithMaxLines(10), WithOverlapLines(10))
	require.Error(t, err)

	_, err = NewChunker(WithMaxLines(10), WithOverlapLines(-1))
	require.Error(t, err)

	_, err = NewChunker(WithMaxChunkSize(0))
	require.Error(t, err)
}

func TestChunker_SubdivideTriggersOnAbnormallyLongSingleLine(t *testing.T) {
	c, err := NewChunker(WithMaxLines(3), WithOverlapLines(0), WithMaxChunkSize(100))
	require.NoError(t, err)

	longLine := strings.Repeat("a", 85) // > 0.8 * maxChunkSize, even though the window fits under the cap
	window := longLine + "\nb\nc"
	require.LessOrEqual(t, len(window), 100)

	require.True(t, c.needsSubdivision(window))

	pieces := c.subdivide(window)
	require.Equal(t, []string{window}, pieces)
}

func TestChunker_SplitSubdividesWindowWithAbnormallyLongLine(t *testing.T) {
	c, err := NewChunker(WithMaxLines(3), WithOverlapLines(0), WithMaxChunkSize(100))
	require.NoError(t, err)

	longLine := strings.Repeat("a", 85)
	chunks := c.Split(longLine + "\nb\nc")
	require.NotEmpty(t, chunks)
	for _, ch := range chunks {
		require.LessOrEqual(t, len(ch.Content), 100)
	}
}

func TestFindCutPoint_PrefersWhitespaceBoundary(t *testing.T) {
	s := "aaaaaaaaaa bbbbbbbbbb"
	cut := findCutPoint(s, 12) // the space at index 10 lies in the trailing 20% of [0, 12)
	require.LessOrEqual(t, cut, 12)
	if cut < len(s) {
		require.Contains(t, []byte{' ', '\n', '\t', '.', ',', ';', '!', '?'}, s[cut-1])
	}
}
