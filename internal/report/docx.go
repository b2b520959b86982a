// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package report

import (
	"fmt"
	"strings"
	"time"
)

const nsW = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

// buildDOCX renders the report document: centered title, source line, a
// bordered field/value table, and the export timestamp.
func buildDOCX(teamName, sourceName string, rows []Row, exportedAt time.Time) ([]byte, error) {
	var body strings.Builder

	title := fmt.Sprintf("%s · 临床研究结构化提取报告", teamName)
	body.WriteString(centeredPara(title, `<w:b/><w:sz w:val="48"/><w:szCs w:val="48"/>`))
	body.WriteString(centeredPara("来源文献："+sourceName, `<w:i/><w:sz w:val="24"/><w:szCs w:val="24"/>`))
	body.WriteString(`<w:p/>`)

	body.WriteString(`<w:tbl><w:tblPr><w:tblW w:w="0" w:type="auto"/>` + tableBorders() + `</w:tblPr>`)
	body.WriteString(`<w:tblGrid><w:gridCol w:w="2500"/><w:gridCol w:w="6800"/></w:tblGrid>`)
	for _, row := range rows {
		body.WriteString(`<w:tr>`)
		body.WriteString(tableCell(row.Field, 2500))
		body.WriteString(tableCell(row.Value, 6800))
		body.WriteString(`</w:tr>`)
	}
	body.WriteString(`</w:tbl>`)

	stamp := fmt.Sprintf("导出时间：%s", exportedAt.Format("2006-01-02 15:04:05"))
	body.WriteString(`<w:p><w:r><w:t xml:space="preserve">` + xmlEscape(stamp) + `</w:t></w:r></w:p>`)

	// A4 portrait
	body.WriteString(`<w:sectPr><w:pgSz w:w="11906" w:h="16838"/></w:sectPr>`)

	document := xmlDecl + fmt.Sprintf(`<w:document xmlns:w=%q><w:body>`, nsW) + body.String() + `</w:body></w:document>`

	parts := []ooxmlPart{
		{"[Content_Types].xml", []byte(xmlDecl +
			`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
			`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
			`<Default Extension="xml" ContentType="application/xml"/>` +
			`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
			`</Types>`)},
		{"_rels/.rels", []byte(xmlDecl +
			`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
			`<Relationship Id="rId1" Type="` + relTypeOfficeDoc + `" Target="word/document.xml"/>` +
			`</Relationships>`)},
		{"word/document.xml", []byte(document)},
	}

	return writePackage(parts)
}

func centeredPara(text, runProps string) string {
	return `<w:p><w:pPr><w:jc w:val="center"/></w:pPr>` +
		`<w:r><w:rPr>` + runProps + `</w:rPr>` +
		`<w:t xml:space="preserve">` + xmlEscape(text) + `</w:t></w:r></w:p>`
}

// tableCell renders one cell: 11pt text, 1.5 line spacing, 6pt after.
func tableCell(text string, width int) string {
	return fmt.Sprintf(`<w:tc><w:tcPr><w:tcW w:w="%d" w:type="dxa"/></w:tcPr>`, width) +
		`<w:p><w:pPr><w:spacing w:line="360" w:lineRule="auto" w:after="120"/><w:jc w:val="left"/></w:pPr>` +
		`<w:r><w:rPr><w:sz w:val="22"/><w:szCs w:val="22"/></w:rPr>` +
		`<w:t xml:space="preserve">` + xmlEscape(text) + `</w:t></w:r></w:p></w:tc>`
}

func tableBorders() string {
	border := `w:val="single" w:sz="4" w:space="0" w:color="auto"`
	return `<w:tblBorders>` +
		`<w:top ` + border + `/><w:left ` + border + `/><w:bottom ` + border + `/><w:right ` + border + `/>` +
		`<w:insideH ` + border + `/><w:insideV ` + border + `/>` +
		`</w:tblBorders>`
}
