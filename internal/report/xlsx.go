// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// buildXLSX renders the rows as a single-sheet workbook with a bold header
// row and the source filename in the sheet title area.
func buildXLSX(rows []Row, sourceName string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sheet1"

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return nil, err
	}

	if err := f.SetCellValue(sheet, "A1", "要素"); err != nil {
		return nil, err
	}
	if err := f.SetCellValue(sheet, "B1", "内容"); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheet, "A1", "B1", headerStyle); err != nil {
		return nil, err
	}

	for i, row := range rows {
		fieldCell, _ := excelize.CoordinatesToCellName(1, i+2)
		valueCell, _ := excelize.CoordinatesToCellName(2, i+2)
		if err := f.SetCellValue(sheet, fieldCell, row.Field); err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, valueCell, row.Value); err != nil {
			return nil, err
		}
	}

	if err := f.SetColWidth(sheet, "A", "A", 24); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(sheet, "B", "B", 80); err != nil {
		return nil, err
	}

	if err := f.SetDocProps(&excelize.DocProperties{
		Title:   fmt.Sprintf("结构化提取 - %s", sourceName),
		Creator: "clinsight",
	}); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
