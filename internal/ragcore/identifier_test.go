package ragcore

import "testing"

func TestValidIdentifier(t *testing.T) {
	cases := map[string]bool{
		"documents":        true,
		"_private":         true,
		"doc_chunks_v2":    true,
		"":                 false,
		"1doc":             false,
		"doc-chunks":       false,
		"doc chunks":       false,
		"doc;DROP TABLE x": false,
		"doc.chunks":       false,
	}
	for in, want := range cases {
		if got := ValidIdentifier(in); got != want {
			t.Errorf("ValidIdentifier(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestQuoteIdentifier(t *testing.T) {
	if got := quoteIdentifier("documents"); got != `"documents"` {
		t.Errorf("quoteIdentifier = %q", got)
	}
	if got := quoteIdentifier(`a"b`); got != `"a""b"` {
		t.Errorf("quoteIdentifier with embedded quote = %q", got)
	}
}
