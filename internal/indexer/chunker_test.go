package indexer

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestChunker_Chunk(t *testing.T) {
	c := NewChunker(800)
	text := strings.Repeat("a", 50) + "\n\n" + strings.Repeat("b", 1000)
	chunks := c.Chunk(text)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	wantLens := []int{50, 800, 200}
	for i, ch := range chunks {
		if ch.Index != i {
			t.Errorf("chunk %d Index=%d", i, ch.Index)
		}
		if len(ch.Text) != wantLens[i] {
			t.Errorf("chunk %d length=%d, want %d", i, len(ch.Text), wantLens[i])
		}
	}
}

func TestChunker_ChunkEmpty(t *testing.T) {
	c := NewChunker(5)
	if chunks := c.Chunk("   \n\t  \n\n \n\n"); chunks != nil {
		t.Errorf("blank text should return nil, got %v", chunks)
	}
}

func TestChunker_Split(t *testing.T) {
	tests := []struct {
		name     string
		maxChars int
		text     string
		want     []string
	}{
		{"single paragraph", 10, "hello", []string{"hello"}},
		{"trims paragraphs", 10, "  hi  \n\n\tthere\n", []string{"hi", "there"}},
		{"drops blank paragraphs", 10, "a\n\n   \n\nb", []string{"a", "b"}},
		{"exact multiple has no empty remainder", 3, "abcdef", []string{"abc", "def"}},
		{"splits long paragraph", 4, "abcdefghij", []string{"abcd", "efgh", "ij"}},
		{"single newline stays inside paragraph", 20, "line1\nline2", []string{"line1\nline2"}},
		{"crlf blank lines split", 20, "one\r\n\r\ntwo", []string{"one", "two"}},
		{"runes not bytes", 2, "日本語", []string{"日本", "語"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewChunker(tt.maxChars).Split(tt.text)
			if len(got) != len(tt.want) {
				t.Fatalf("Split() = %q, want %q", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("chunk %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestChunker_RoundTrip(t *testing.T) {
	paras := []string{
		strings.Repeat("x", 17),
		strings.Repeat("lorem ipsum ", 40),
		"short",
		strings.Repeat("é", 33),
	}
	text := strings.Join(paras, "\n\n\n\n")
	const max = 16
	chunks := NewChunker(max).Split(text)

	var rebuilt strings.Builder
	for _, ch := range chunks {
		if ch == "" {
			t.Fatal("empty chunk emitted")
		}
		if n := utf8.RuneCountInString(ch); n > max {
			t.Fatalf("chunk exceeds max: %d runes", n)
		}
		rebuilt.WriteString(ch)
	}
	var want strings.Builder
	for _, p := range paras {
		want.WriteString(strings.TrimSpace(p))
	}
	if rebuilt.String() != want.String() {
		t.Error("concatenated chunks do not reproduce the non-blank content")
	}
}

func TestNewChunker_nonPositiveFallsBack(t *testing.T) {
	if got := NewChunker(0).MaxChars(); got != DefaultMaxChars {
		t.Errorf("MaxChars() = %d, want %d", got, DefaultMaxChars)
	}
	if got := NewChunker(-3).MaxChars(); got != DefaultMaxChars {
		t.Errorf("MaxChars() = %d, want %d", got, DefaultMaxChars)
	}
}
