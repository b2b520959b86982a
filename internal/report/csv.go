// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package report

import (
	"bytes"
	"encoding/csv"
)

// buildCSV renders the rows as a two-column table with the fixed
// `要素,内容` header.
func buildCSV(rows []Row) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"要素", "内容"}); err != nil {
		return nil, err
	}
	for _, row := range rows {
		if err := w.Write([]string{row.Field, row.Value}); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
