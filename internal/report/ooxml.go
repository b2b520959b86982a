// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package report

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
)

// The slide deck and document artifacts are written as OOXML packages
// directly: the ecosystem has solid readers for these formats but no
// maintained writer for presentations, and the document needs nothing a
// zip of hand-assembled parts cannot express.

const xmlDecl = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"

type ooxmlPart struct {
	name string
	data []byte
}

// writePackage assembles the parts into a zip archive in order.
func writePackage(parts []ooxmlPart) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, part := range parts {
		w, err := zw.Create(part.name)
		if err != nil {
			return nil, fmt.Errorf("failed to create part %s: %w", part.name, err)
		}
		if _, err := w.Write(part.data); err != nil {
			return nil, fmt.Errorf("failed to write part %s: %w", part.name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize package: %w", err)
	}
	return buf.Bytes(), nil
}

// xmlEscape escapes text for embedding in an XML element.
func xmlEscape(s string) string {
	var buf bytes.Buffer
	if err := xml.EscapeText(&buf, []byte(s)); err != nil {
		return ""
	}
	return buf.String()
}

// emu converts inches to English Metric Units.
func emu(inches float64) int64 {
	return int64(inches * 914400)
}
