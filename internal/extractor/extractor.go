// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package extractor

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/gen2brain/go-fitz"
)

const (
	// Blocks at or below this rune count are discarded as noise
	// (headers, footers, page numbers).
	minBlockRunes = 20

	defaultWindowSize      = 1 * 1024 * 1024  // 1MB parse windows
	defaultWindowThreshold = 64 * 1024 * 1024 // windowed parsing above 64MB
)

// ExtractionError indicates the byte content could not be parsed as a
// document.
type ExtractionError struct {
	Reason string
	Err    error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extraction failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("extraction failed: %s", e.Reason)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// ProgressFunc reports a fraction complete in [0,1]. Progress is advisory;
// a nil observer is valid.
type ProgressFunc func(fraction float64)

// Extractor pulls text blocks from PDF bytes using go-fitz (MuPDF).
type Extractor struct {
	windowSize      int
	windowThreshold int
}

// New creates an extractor with default window settings.
func New() *Extractor {
	return &Extractor{
		windowSize:      defaultWindowSize,
		windowThreshold: defaultWindowThreshold,
	}
}

// Extract returns the newline-joined sequence of retained text blocks in
// document order. Empty output is a valid result; callers treat it as
// nothing usable extracted. Inputs above the window threshold are parsed in
// fixed-size byte windows to bound peak memory, at a small risk of broken
// page boundaries.
func (e *Extractor) Extract(data []byte, progress ProgressFunc) (string, error) {
	if len(data) == 0 {
		return "", &ExtractionError{Reason: "empty input"}
	}

	if len(data) > e.windowThreshold {
		return e.extractWindowed(data, progress)
	}

	blocks, err := extractBlocks(data)
	if err != nil {
		return "", err
	}
	if progress != nil {
		progress(1.0)
	}
	return strings.Join(blocks, "\n"), nil
}

// extractWindowed parses each byte window independently and concatenates
// the results in original order.
func (e *Extractor) extractWindowed(data []byte, progress ProgressFunc) (string, error) {
	var blocks []string

	for start := 0; start < len(data); start += e.windowSize {
		end := start + e.windowSize
		if end > len(data) {
			end = len(data)
		}

		windowBlocks, err := extractBlocks(data[start:end])
		if err != nil {
			// A window that straddles a structure boundary may not parse
			// on its own; keep going with the remaining windows.
			continue
		}
		blocks = append(blocks, windowBlocks...)

		if progress != nil {
			progress(float64(end) / float64(len(data)))
		}
	}

	return strings.Join(blocks, "\n"), nil
}

// extractBlocks opens the bytes as a PDF and returns the filtered text
// blocks from every page.
func extractBlocks(data []byte) ([]string, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, &ExtractionError{Reason: "failed to open PDF", Err: err}
	}
	defer doc.Close()

	var blocks []string
	numPages := doc.NumPage()

	for i := 0; i < numPages; i++ {
		pageText, err := doc.Text(i)
		if err != nil {
			// Skip unreadable pages, keep the rest
			continue
		}
		blocks = append(blocks, filterBlocks(pageText)...)
	}

	return blocks, nil
}

// filterBlocks splits page text into blocks and keeps only the ones that
// look like body text: null bytes stripped, short blocks dropped.
func filterBlocks(pageText string) []string {
	var kept []string
	for _, block := range strings.Split(pageText, "\n\n") {
		clean := strings.TrimSpace(strings.ReplaceAll(block, "\x00", ""))
		if clean == "" {
			continue
		}
		if utf8.RuneCountInString(clean) <= minBlockRunes {
			continue
		}
		kept = append(kept, clean)
	}
	return kept
}
