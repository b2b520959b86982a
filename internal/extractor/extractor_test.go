package extractor

import (
	"errors"
	"strings"
	"testing"
)

func TestFilterBlocksDropsShortBlocks(t *testing.T) {
	short := "12345"
	long := strings.Repeat("x", 50)
	pageText := short + "\n\n" + long

	blocks := filterBlocks(pageText)

	if len(blocks) != 1 {
		t.Fatalf("got %d blocks, want 1", len(blocks))
	}
	if blocks[0] != long {
		t.Errorf("kept block %q, want the 50-char block", blocks[0])
	}
}

func TestFilterBlocksStripsNullBytes(t *testing.T) {
	block := "Subjects were \x00randomized 1:1 to drug A vs placebo."

	blocks := filterBlocks(block)

	if len(blocks) != 1 {
		t.Fatalf("got %d blocks, want 1", len(blocks))
	}
	if strings.Contains(blocks[0], "\x00") {
		t.Errorf("null byte survived filtering: %q", blocks[0])
	}
}

func TestFilterBlocksBoundary(t *testing.T) {
	exactly20 := strings.Repeat("a", 20)
	exactly21 := strings.Repeat("a", 21)

	if got := filterBlocks(exactly20); len(got) != 0 {
		t.Errorf("20-rune block should be dropped, got %v", got)
	}
	if got := filterBlocks(exactly21); len(got) != 1 {
		t.Errorf("21-rune block should be kept, got %v", got)
	}
}

func TestFilterBlocksCountsRunesNotBytes(t *testing.T) {
	// 8 CJK characters is 24 bytes; byte length would keep it, rune
	// length drops it as the heading noise it is.
	heading := "临床研究设计摘要"
	if got := filterBlocks(heading); len(got) != 0 {
		t.Errorf("short CJK heading should be dropped, got %v", got)
	}
}

func TestExtractRejectsEmptyInput(t *testing.T) {
	_, err := New().Extract(nil, nil)

	var extractionErr *ExtractionError
	if !errors.As(err, &extractionErr) {
		t.Fatalf("expected ExtractionError, got %v", err)
	}
}

func TestExtractRejectsGarbage(t *testing.T) {
	_, err := New().Extract([]byte("this is not a pdf at all"), nil)

	var extractionErr *ExtractionError
	if !errors.As(err, &extractionErr) {
		t.Fatalf("expected ExtractionError, got %v", err)
	}
}
