package ragcore

import (
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// Chunk is one window of a source document: its text, its dense position in
// the document's chunk sequence, and the line range it was drawn from.
type Chunk struct {
	Content    string
	Index      int
	StartLine  int
	EndLine    int
}

const (
	defaultMaxLines     = 150
	defaultOverlapLines = 30
	defaultMaxChunkSize = 10000
)

// ChunkerOption configures NewChunker.
type ChunkerOption func(*chunkerConfig)

type chunkerConfig struct {
	maxLines     int
	overlapLines int
	maxChunkSize int
	estimator    *TokenEstimator
}

// WithMaxLines sets the window size, in lines, of each chunk (default 150).
func WithMaxLines(n int) ChunkerOption {
	return func(c *chunkerConfig) { c.maxLines = n }
}

// WithOverlapLines sets how many trailing lines of a window are repeated at
// the start of the next window (default 30).
func WithOverlapLines(n int) ChunkerOption {
	return func(c *chunkerConfig) { c.overlapLines = n }
}

// WithMaxChunkSize caps the character length of any single chunk (default
// 10000); oversized windows are subdivided.
func WithMaxChunkSize(n int) ChunkerOption {
	return func(c *chunkerConfig) { c.maxChunkSize = n }
}

// WithTokenEstimator attaches an optional diagnostic token counter to the
// chunker, used only for progress reporting and logging, never for chunk
// boundary decisions.
func WithTokenEstimator(e *TokenEstimator) ChunkerOption {
	return func(c *chunkerConfig) { c.estimator = e }
}

// Chunker splits a document's text into overlapping, line-bounded windows,
// subdividing any window that exceeds maxChunkSize characters. See spec §4.2.
type Chunker struct {
	maxLines     int
	overlapLines int
	maxChunkSize int
	estimator    *TokenEstimator
}

// NewChunker validates its configuration and builds a Chunker.
// maxLines must be > 0 and overlapLines must be in [0, maxLines).
func NewChunker(opts ...ChunkerOption) (*Chunker, error) {
	cfg := &chunkerConfig{
		maxLines:     defaultMaxLines,
		overlapLines: defaultOverlapLines,
		maxChunkSize: defaultMaxChunkSize,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.maxLines <= 0 {
		return nil, NewConfigurationError("Chunker", "maxLines must be greater than zero")
	}
	if cfg.overlapLines < 0 || cfg.overlapLines >= cfg.maxLines {
		return nil, NewConfigurationError("Chunker", "overlapLines must be in [0, maxLines)")
	}
	if cfg.maxChunkSize <= 0 {
		return nil, NewConfigurationError("Chunker", "maxChunkSize must be greater than zero")
	}

	return &Chunker{
		maxLines:     cfg.maxLines,
		overlapLines: cfg.overlapLines,
		maxChunkSize: cfg.maxChunkSize,
		estimator:    cfg.estimator,
	}, nil
}

// Split breaks text into a dense, 0-indexed sequence of Chunks. An empty
// document (after trimming) yields zero chunks. Split is deterministic: the
// same text always yields the same chunks in the same order.
func (c *Chunker) Split(text string) []Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	lines := strings.Split(text, "\n")
	stride := c.maxLines - c.overlapLines

	var windows []Chunk
	for start := 0; start < len(lines); start += stride {
		end := start + c.maxLines
		if end > len(lines) {
			end = len(lines)
		}
		content := strings.TrimSpace(strings.Join(lines[start:end], "\n"))
		if content != "" {
			windows = append(windows, Chunk{Content: content, StartLine: start, EndLine: end - 1})
		}
		if end == len(lines) {
			break
		}
	}

	var out []Chunk
	for _, w := range windows {
		for _, piece := range c.subdivide(w.Content) {
			out = append(out, Chunk{Content: piece, StartLine: w.StartLine, EndLine: w.EndLine})
		}
	}

	for i := range out {
		out[i].Index = i
	}
	return out
}

// EstimateTokens reports the diagnostic token count of a chunk's content, or
// 0 if no TokenEstimator was configured. It never influences chunk
// boundaries.
func (c *Chunker) EstimateTokens(content string) int {
	if c.estimator == nil {
		return 0
	}
	return c.estimator.Count(content)
}

// needsSubdivision reports whether content must go through the character
// split: either its total length exceeds maxChunkSize, or any single line
// within it exceeds 0.8 * maxChunkSize (spec §4.2 step 4's second trigger —
// a window can sit under the overall cap yet still contain one abnormally
// long line).
func (c *Chunker) needsSubdivision(content string) bool {
	if len(content) > c.maxChunkSize {
		return true
	}
	threshold := (c.maxChunkSize * 4) / 5
	for _, line := range strings.Split(content, "\n") {
		if len(line) > threshold {
			return true
		}
	}
	return false
}

// subdivide splits content into pieces no longer than maxChunkSize
// characters, preferring to cut at whitespace or punctuation found in the
// trailing 20% of the window so pieces don't split mid-word.
func (c *Chunker) subdivide(content string) []string {
	if !c.needsSubdivision(content) {
		return []string{content}
	}

	var pieces []string
	remaining := content
	for c.needsSubdivision(remaining) {
		cut := findCutPoint(remaining, c.maxChunkSize)
		piece := strings.TrimSpace(remaining[:cut])
		if piece != "" {
			pieces = append(pieces, piece)
		}
		remaining = strings.TrimSpace(remaining[cut:])
	}
	if remaining != "" {
		pieces = append(pieces, remaining)
	}
	return pieces
}

// findCutPoint searches backward from limit for a whitespace or punctuation
// boundary within the trailing 20% of [0, limit). If none is found, it falls
// back to a hard cut at limit.
func findCutPoint(s string, limit int) int {
	if limit >= len(s) {
		return len(s)
	}
	searchFloor := limit - limit/5
	if searchFloor < 0 {
		searchFloor = 0
	}
	for i := limit; i > searchFloor; i-- {
		switch s[i-1] {
		case ' ', '\n', '\t', '.', ',', ';', '!', '?':
			return i
		}
	}
	return limit
}

// TokenEstimator is an optional diagnostic wrapper around tiktoken-go,
// reporting token counts for progress and logging purposes only. It is
// never consulted to decide chunk boundaries (see spec §4.2's non-goal on
// token-based chunking).
type TokenEstimator struct {
	encoding *tiktoken.Tiktoken
}

// NewTokenEstimator builds a TokenEstimator for the given model name (e.g.
// "gpt-4", "text-embedding-3-small").
func NewTokenEstimator(model string) (*TokenEstimator, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		return nil, NewConfigurationError("TokenEstimator", "unknown model encoding: "+err.Error())
	}
	return &TokenEstimator{encoding: enc}, nil
}

// Count returns the number of tokens text would encode to.
func (t *TokenEstimator) Count(text string) int {
	if t == nil || t.encoding == nil {
		return 0
	}
	return len(t.encoding.Encode(text, nil, nil))
}
