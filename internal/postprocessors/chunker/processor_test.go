package chunker

import (
	"strings"
	"testing"

	"github.com/custodia-labs/pdfchat/internal/core/domain"
)

func meta() map[string]string {
	return map[string]string{domain.MetaSource: "doc.pdf"}
}

func TestNew(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		p := New()
		if p.chunkSize != DefaultChunkSize {
			t.Errorf("expected chunkSize %d, got %d", DefaultChunkSize, p.chunkSize)
		}
		if p.overlap != DefaultChunkOverlap {
			t.Errorf("expected overlap %d, got %d", DefaultChunkOverlap, p.overlap)
		}
	})

	t.Run("custom chunk size", func(t *testing.T) {
		p := New(WithChunkSize(500))
		if p.ChunkSize() != 500 {
			t.Errorf("expected chunkSize 500, got %d", p.ChunkSize())
		}
	})

	t.Run("custom overlap", func(t *testing.T) {
		p := New(WithOverlap(100))
		if p.Overlap() != 100 {
			t.Errorf("expected overlap 100, got %d", p.Overlap())
		}
	})

	t.Run("overlap exceeds chunk size", func(t *testing.T) {
		p := New(WithChunkSize(100), WithOverlap(150))
		if p.overlap >= p.chunkSize {
			t.Error("overlap should be reduced when it exceeds chunk size")
		}
	})

	t.Run("zero values ignored", func(t *testing.T) {
		p := New(WithChunkSize(0), WithOverlap(-1))
		if p.chunkSize != DefaultChunkSize {
			t.Errorf("expected default chunkSize, got %d", p.chunkSize)
		}
		if p.overlap != DefaultChunkOverlap {
			t.Errorf("expected default overlap, got %d", p.overlap)
		}
	})
}

func TestProcessor_Name(t *testing.T) {
	p := New()
	if p.Name() != "chunker" {
		t.Errorf("expected name 'chunker', got '%s'", p.Name())
	}
}

func TestProcessor_Chunk_EmptyContent(t *testing.T) {
	p := New()

	chunks, err := p.Chunk("", meta())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 0 {
		t.Errorf("expected 0 chunks for empty content, got %d", len(chunks))
	}
}

func TestProcessor_Chunk_RequiresSource(t *testing.T) {
	p := New()

	if _, err := p.Chunk("text", map[string]string{}); err == nil {
		t.Fatal("expected error without source metadata")
	}
	if _, err := p.Chunk("text", map[string]string{domain.MetaSource: "a.pdf", domain.MetaPageNumber: "x"}); err == nil {
		t.Fatal("expected error for non-numeric page number")
	}
}

func TestProcessor_Chunk_SmallContent(t *testing.T) {
	p := New(WithChunkSize(100), WithOverlap(20))
	text := "This is a small piece of content."

	md := meta()
	md[domain.MetaPageNumber] = "3"
	chunks, err := p.Chunk(text, md)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk for small content, got %d", len(chunks))
	}

	c := chunks[0]
	if c.Content != text {
		t.Errorf("expected content to match text")
	}
	if c.StartOffset != 0 || c.EndOffset != len(text) {
		t.Errorf("expected offsets [0,%d), got [%d,%d)", len(text), c.StartOffset, c.EndOffset)
	}
	if c.ChunkIndex != 0 {
		t.Errorf("expected index 0, got %d", c.ChunkIndex)
	}
	if c.PageNumber != 3 {
		t.Errorf("expected page 3, got %d", c.PageNumber)
	}
	if c.SourceDocument != "doc.pdf" {
		t.Errorf("expected source doc.pdf, got %q", c.SourceDocument)
	}
	if c.Metadata[domain.MetaChunkIndex] != "0" {
		t.Errorf("expected chunk_index metadata 0, got %q", c.Metadata[domain.MetaChunkIndex])
	}
}

func TestProcessor_Chunk_ExactlyChunkSize(t *testing.T) {
	p := New(WithChunkSize(50), WithOverlap(10))

	chunks, err := p.Chunk(strings.Repeat("a", 50), meta())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 1 {
		t.Errorf("expected 1 chunk, got %d", len(chunks))
	}
}

func TestProcessor_Chunk_LargeContent(t *testing.T) {
	p := New(WithChunkSize(100), WithOverlap(20))

	chunks, err := p.Chunk(strings.Repeat("x", 250), meta())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 0-100, 80-180, 160-250
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}

	seenIDs := make(map[string]bool)
	for i, chunk := range chunks {
		if seenIDs[chunk.ID] {
			t.Errorf("duplicate chunk ID: %s", chunk.ID)
		}
		seenIDs[chunk.ID] = true
		if chunk.ChunkIndex != i {
			t.Errorf("expected index %d, got %d", i, chunk.ChunkIndex)
		}
	}

	if len(chunks[0].Content) != 100 {
		t.Errorf("expected first chunk size 100, got %d", len(chunks[0].Content))
	}
	if chunks[1].StartOffset != 80 || chunks[2].StartOffset != 160 {
		t.Errorf("unexpected starts %d, %d", chunks[1].StartOffset, chunks[2].StartOffset)
	}
}

func TestProcessor_Chunk_OverlapContent(t *testing.T) {
	p := New(WithChunkSize(10), WithOverlap(3))

	chunks, err := p.Chunk("0123456789ABCDEFGHIJ", meta())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"0123456789", "789ABCDEFG", "EFGHIJ"}
	if len(chunks) != len(want) {
		t.Fatalf("expected %d chunks, got %d", len(want), len(chunks))
	}
	for i, w := range want {
		if chunks[i].Content != w {
			t.Errorf("chunk %d: expected %q, got %q", i, w, chunks[i].Content)
		}
	}
}

func TestProcessor_Chunk_SentenceBoundaries(t *testing.T) {
	p := New(WithChunkSize(20), WithOverlap(5))
	text := "Sentence one. Sentence two. Sentence three."

	chunks, err := p.Chunk(text, meta())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	if chunks[0].Content != "Sentence one." {
		t.Errorf("expected first chunk to end at the first sentence, got %q", chunks[0].Content)
	}
	if chunks[1].Content != "one. Sentence two." {
		t.Errorf("expected second chunk to end at the second sentence, got %q", chunks[1].Content)
	}
	last := chunks[len(chunks)-1]
	if !strings.HasSuffix(last.Content, "three.") || last.EndOffset != len(text) {
		t.Errorf("expected last chunk to reach end of text, got %q", last.Content)
	}

	assertInvariants(t, p, text, chunks)
}

func TestProcessor_Chunk_PunctuationWithoutSpaceIsNotBoundary(t *testing.T) {
	p := New(WithChunkSize(20), WithOverlap(0))
	text := "version 1.2.3 is out and more text follows"

	chunks, err := p.Chunk(text, meta())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks[0].Content) != 20 {
		t.Errorf("expected hard cut at 20, got %q", chunks[0].Content)
	}
	assertInvariants(t, p, text, chunks)
}

func TestProcessor_Chunk_Invariants(t *testing.T) {
	texts := []string{
		strings.Repeat("The quick brown fox jumps over the lazy dog. ", 80),
		strings.Repeat("Wait! Really? Yes. ", 200),
		strings.Repeat("no punctuation at all here ", 150),
		strings.Repeat("Ünïcödé tëxt wïth äccents. ", 120),
		strings.Repeat("a.", 700),
	}
	configs := [][2]int{{1000, 200}, {100, 30}, {37, 11}, {20, 5}, {64, 40}}

	for _, text := range texts {
		for _, cfg := range configs {
			p := New(WithChunkSize(cfg[0]), WithOverlap(cfg[1]))
			chunks, err := p.Chunk(text, meta())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			assertInvariants(t, p, text, chunks)
		}
	}
}

func TestProcessor_Chunk_MetadataCopied(t *testing.T) {
	p := New(WithChunkSize(10), WithOverlap(2))
	md := map[string]string{domain.MetaSource: "doc.pdf", domain.MetaFilePath: "/tmp/doc.pdf"}

	chunks, err := p.Chunk("abcdefghijklmnopqrstuvwxyz", md)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, c := range chunks {
		if c.Metadata[domain.MetaFilePath] != "/tmp/doc.pdf" {
			t.Errorf("expected file_path to be copied")
		}
	}
	if _, ok := md[domain.MetaChunkIndex]; ok {
		t.Error("input metadata must not be modified")
	}
}

func assertInvariants(t *testing.T, p *Processor, text string, chunks []domain.TextChunk) {
	t.Helper()

	if len(chunks) == 0 {
		t.Fatal("expected chunks")
	}
	if chunks[0].StartOffset != 0 {
		t.Errorf("first chunk must start at 0, got %d", chunks[0].StartOffset)
	}
	if chunks[len(chunks)-1].EndOffset != len(text) {
		t.Errorf("last chunk must end at %d, got %d", len(text), chunks[len(chunks)-1].EndOffset)
	}
	for i, c := range chunks {
		if c.ChunkIndex != i {
			t.Errorf("chunk %d has index %d", i, c.ChunkIndex)
		}
		if c.StartOffset < 0 || c.StartOffset >= c.EndOffset || c.EndOffset > len(text) {
			t.Errorf("chunk %d has bad offsets [%d,%d)", i, c.StartOffset, c.EndOffset)
			continue
		}
		if c.Content != text[c.StartOffset:c.EndOffset] {
			t.Errorf("chunk %d content does not match offsets", i)
		}
		if len(c.Content) > p.chunkSize {
			t.Errorf("chunk %d exceeds size: %d", i, len(c.Content))
		}
		if i == 0 {
			continue
		}
		prev := chunks[i-1]
		if c.StartOffset > prev.EndOffset {
			t.Errorf("gap between chunk %d and %d", i-1, i)
		}
		if c.StartOffset <= prev.StartOffset {
			t.Errorf("chunk %d does not advance", i)
		}
		if overlap := prev.EndOffset - c.StartOffset; overlap > p.overlap {
			t.Errorf("chunk %d overlaps previous by %d > %d", i, overlap, p.overlap)
		}
	}
}
