// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch

// Package report turns the model's markdown-table output into export
// artifacts. The input contract is an ordered list of field/value pairs;
// the builders never inspect the analysis text beyond that.
package report

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Artifact names as stored in history records and served for download.
const (
	ArtifactCSV   = "CSV"
	ArtifactPPT   = "PPT"
	ArtifactWord  = "Word"
	ArtifactExcel = "Excel"
)

// Row is one extracted field/value pair.
type Row struct {
	Field string
	Value string
}

// notesPattern matches the supplementary-notes tail the model sometimes
// appends after the table.
var notesPattern = regexp.MustCompile(`(?s)补充说明[：:]\s*(.*?)(\n\n|\z)`)

// ParseRows pulls the data rows out of a markdown table, skipping the
// header and separator lines.
func ParseRows(analysis string) []Row {
	var rows []Row
	for _, line := range strings.Split(analysis, "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.Contains(trimmed, "|") {
			continue
		}
		if strings.HasPrefix(trimmed, "|---") || strings.HasPrefix(trimmed, "| ---") {
			continue
		}
		if strings.HasPrefix(strings.ToLower(trimmed), "| 要素") || strings.HasPrefix(trimmed, "|要素") {
			continue
		}

		parts := strings.Split(strings.Trim(trimmed, "|"), "|")
		if len(parts) < 2 {
			continue
		}
		field := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(strings.Join(parts[1:], "|"))
		if field == "" {
			continue
		}
		if strings.Trim(field, "-: ") == "" {
			// Separator row variants like |:---|---:|
			continue
		}
		rows = append(rows, Row{Field: field, Value: value})
	}
	return rows
}

// ExtractNotes returns the supplementary notes section, or "" when absent.
func ExtractNotes(analysis string) string {
	match := notesPattern.FindStringSubmatch(analysis)
	if match == nil {
		return ""
	}
	return strings.TrimSpace(match[1])
}

// Materializer builds the export artifacts for one processed document.
type Materializer struct {
	teamName string
	logo     []byte // optional PNG shown on the PPT cover
	now      func() time.Time
}

// NewMaterializer creates a materializer. logo may be nil.
func NewMaterializer(teamName string, logo []byte) *Materializer {
	return &Materializer{
		teamName: teamName,
		logo:     logo,
		now:      time.Now,
	}
}

// Build renders every artifact from the analysis text. An analysis with no
// parseable rows is rejected so callers never persist empty exports.
func (m *Materializer) Build(sourceName, analysis string) (map[string][]byte, error) {
	rows := ParseRows(analysis)
	if len(rows) == 0 {
		return nil, fmt.Errorf("no extractable rows in analysis output")
	}
	notes := ExtractNotes(analysis)

	csvBytes, err := buildCSV(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to build CSV: %w", err)
	}

	xlsxBytes, err := buildXLSX(rows, sourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to build Excel workbook: %w", err)
	}

	pptxBytes, err := buildPPTX(m.teamName, sourceName, rows, notes, m.logo)
	if err != nil {
		return nil, fmt.Errorf("failed to build slide deck: %w", err)
	}

	docxBytes, err := buildDOCX(m.teamName, sourceName, rows, m.now())
	if err != nil {
		return nil, fmt.Errorf("failed to build document: %w", err)
	}

	return map[string][]byte{
		ArtifactCSV:   csvBytes,
		ArtifactExcel: xlsxBytes,
		ArtifactPPT:   pptxBytes,
		ArtifactWord:  docxBytes,
	}, nil
}
