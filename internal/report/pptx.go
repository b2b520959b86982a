// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package report

import (
	"fmt"
	"strings"
)

const (
	nsA = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsR = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsP = "http://schemas.openxmlformats.org/presentationml/2006/main"

	relTypeOfficeDoc   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"
	relTypeSlide       = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide"
	relTypeSlideMaster = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideMaster"
	relTypeSlideLayout = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideLayout"
	relTypeTheme       = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/theme"
	relTypeImage       = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"

	titleColor = "003366"
	deckFont   = "微软雅黑"
)

// slidePara is one paragraph of a text shape.
type slidePara struct {
	text  string
	align string // "l", "ctr", "r"
	size  int    // hundredths of a point
	bold  bool
	color string // srgb hex, "" for default
}

// buildPPTX assembles the deck: cover slide, one content slide per row,
// and an optional supplementary-notes slide. 16:9 at 13.33in x 7.5in.
func buildPPTX(teamName, sourceName string, rows []Row, notes string, logo []byte) ([]byte, error) {
	var slides []string

	slides = append(slides, coverSlideXML(sourceName, logo != nil))

	for i, row := range rows {
		footer := fmt.Sprintf("%s · 结构化助手 · 第 %d 页", teamName, i+1)
		slides = append(slides, contentSlideXML(row.Field, row.Value, footer))
	}

	if notes != "" {
		footer := fmt.Sprintf("%s · 结构化助手 · 补充说明页", teamName)
		slides = append(slides, contentSlideXML("补充说明", notes, footer))
	}

	return assembleDeck(slides, logo)
}

func assembleDeck(slides []string, logo []byte) ([]byte, error) {
	var parts []ooxmlPart

	parts = append(parts, ooxmlPart{"[Content_Types].xml", []byte(deckContentTypes(len(slides), logo != nil))})
	parts = append(parts, ooxmlPart{"_rels/.rels", []byte(xmlDecl +
		`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
		`<Relationship Id="rId1" Type="` + relTypeOfficeDoc + `" Target="ppt/presentation.xml"/>` +
		`</Relationships>`)})

	parts = append(parts, ooxmlPart{"ppt/presentation.xml", []byte(presentationXML(len(slides)))})
	parts = append(parts, ooxmlPart{"ppt/_rels/presentation.xml.rels", []byte(presentationRelsXML(len(slides)))})

	parts = append(parts, ooxmlPart{"ppt/slideMasters/slideMaster1.xml", []byte(slideMasterXML())})
	parts = append(parts, ooxmlPart{"ppt/slideMasters/_rels/slideMaster1.xml.rels", []byte(xmlDecl +
		`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
		`<Relationship Id="rId1" Type="` + relTypeSlideLayout + `" Target="../slideLayouts/slideLayout1.xml"/>` +
		`<Relationship Id="rId2" Type="` + relTypeTheme + `" Target="../theme/theme1.xml"/>` +
		`</Relationships>`)})

	parts = append(parts, ooxmlPart{"ppt/slideLayouts/slideLayout1.xml", []byte(slideLayoutXML())})
	parts = append(parts, ooxmlPart{"ppt/slideLayouts/_rels/slideLayout1.xml.rels", []byte(xmlDecl +
		`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
		`<Relationship Id="rId1" Type="` + relTypeSlideMaster + `" Target="../slideMasters/slideMaster1.xml"/>` +
		`</Relationships>`)})

	parts = append(parts, ooxmlPart{"ppt/theme/theme1.xml", []byte(themeXML())})

	for i, slide := range slides {
		name := fmt.Sprintf("ppt/slides/slide%d.xml", i+1)
		parts = append(parts, ooxmlPart{name, []byte(slide)})

		rels := xmlDecl +
			`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
			`<Relationship Id="rId1" Type="` + relTypeSlideLayout + `" Target="../slideLayouts/slideLayout1.xml"/>`
		// The cover slide carries the logo image.
		if i == 0 && logo != nil {
			rels += `<Relationship Id="rId2" Type="` + relTypeImage + `" Target="../media/image1.png"/>`
		}
		rels += `</Relationships>`
		parts = append(parts, ooxmlPart{fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", i+1), []byte(rels)})
	}

	if logo != nil {
		parts = append(parts, ooxmlPart{"ppt/media/image1.png", logo})
	}

	return writePackage(parts)
}

func deckContentTypes(slideCount int, hasLogo bool) string {
	var b strings.Builder
	b.WriteString(xmlDecl)
	b.WriteString(`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">`)
	b.WriteString(`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>`)
	b.WriteString(`<Default Extension="xml" ContentType="application/xml"/>`)
	if hasLogo {
		b.WriteString(`<Default Extension="png" ContentType="image/png"/>`)
	}
	b.WriteString(`<Override PartName="/ppt/presentation.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml"/>`)
	b.WriteString(`<Override PartName="/ppt/slideMasters/slideMaster1.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slideMaster+xml"/>`)
	b.WriteString(`<Override PartName="/ppt/slideLayouts/slideLayout1.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slideLayout+xml"/>`)
	b.WriteString(`<Override PartName="/ppt/theme/theme1.xml" ContentType="application/vnd.openxmlformats-officedocument.theme+xml"/>`)
	for i := 1; i <= slideCount; i++ {
		fmt.Fprintf(&b, `<Override PartName="/ppt/slides/slide%d.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slide+xml"/>`, i)
	}
	b.WriteString(`</Types>`)
	return b.String()
}

func presentationXML(slideCount int) string {
	var b strings.Builder
	b.WriteString(xmlDecl)
	fmt.Fprintf(&b, `<p:presentation xmlns:a=%q xmlns:r=%q xmlns:p=%q>`, nsA, nsR, nsP)
	b.WriteString(`<p:sldMasterIdLst><p:sldMasterId id="2147483648" r:id="rId1"/></p:sldMasterIdLst>`)
	b.WriteString(`<p:sldIdLst>`)
	for i := 1; i <= slideCount; i++ {
		fmt.Fprintf(&b, `<p:sldId id="%d" r:id="rId%d"/>`, 255+i, i+1)
	}
	b.WriteString(`</p:sldIdLst>`)
	// 13.33in x 7.5in
	fmt.Fprintf(&b, `<p:sldSz cx="%d" cy="%d"/>`, emu(13.33), emu(7.5))
	fmt.Fprintf(&b, `<p:notesSz cx="%d" cy="%d"/>`, emu(7.5), emu(10))
	b.WriteString(`</p:presentation>`)
	return b.String()
}

func presentationRelsXML(slideCount int) string {
	var b strings.Builder
	b.WriteString(xmlDecl)
	b.WriteString(`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	fmt.Fprintf(&b, `<Relationship Id="rId1" Type="%s" Target="slideMasters/slideMaster1.xml"/>`, relTypeSlideMaster)
	for i := 1; i <= slideCount; i++ {
		fmt.Fprintf(&b, `<Relationship Id="rId%d" Type="%s" Target="slides/slide%d.xml"/>`, i+1, relTypeSlide, i)
	}
	b.WriteString(`</Relationships>`)
	return b.String()
}

func emptySpTree() string {
	return `<p:spTree><p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr><p:grpSpPr/></p:spTree>`
}

func slideMasterXML() string {
	return xmlDecl + fmt.Sprintf(`<p:sldMaster xmlns:a=%q xmlns:r=%q xmlns:p=%q>`, nsA, nsR, nsP) +
		`<p:cSld>` + emptySpTree() + `</p:cSld>` +
		`<p:clrMap bg1="lt1" tx1="dk1" bg2="lt2" tx2="dk2" accent1="accent1" accent2="accent2" accent3="accent3" accent4="accent4" accent5="accent5" accent6="accent6" hlink="hlink" folHlink="folHlink"/>` +
		`<p:sldLayoutIdLst><p:sldLayoutId id="2147483649" r:id="rId1"/></p:sldLayoutIdLst>` +
		`</p:sldMaster>`
}

func slideLayoutXML() string {
	return xmlDecl + fmt.Sprintf(`<p:sldLayout xmlns:a=%q xmlns:r=%q xmlns:p=%q type="blank">`, nsA, nsR, nsP) +
		`<p:cSld>` + emptySpTree() + `</p:cSld>` +
		`<p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr>` +
		`</p:sldLayout>`
}

// themeXML is the minimum theme PowerPoint accepts: a color scheme, a font
// scheme, and a format scheme with the required three entries each.
func themeXML() string {
	fill := `<a:solidFill><a:schemeClr val="phClr"/></a:solidFill>`
	line := `<a:ln w="9525" cap="flat" cmpd="sng" algn="ctr"><a:solidFill><a:schemeClr val="phClr"/></a:solidFill><a:prstDash val="solid"/></a:ln>`
	effect := `<a:effectStyle><a:effectLst/></a:effectStyle>`

	return xmlDecl + fmt.Sprintf(`<a:theme xmlns:a=%q name="clinsight">`, nsA) +
		`<a:themeElements>` +
		`<a:clrScheme name="clinsight">` +
		`<a:dk1><a:sysClr val="windowText" lastClr="000000"/></a:dk1>` +
		`<a:lt1><a:sysClr val="window" lastClr="FFFFFF"/></a:lt1>` +
		`<a:dk2><a:srgbClr val="1F497D"/></a:dk2>` +
		`<a:lt2><a:srgbClr val="EEECE1"/></a:lt2>` +
		`<a:accent1><a:srgbClr val="4F81BD"/></a:accent1>` +
		`<a:accent2><a:srgbClr val="C0504D"/></a:accent2>` +
		`<a:accent3><a:srgbClr val="9BBB59"/></a:accent3>` +
		`<a:accent4><a:srgbClr val="8064A2"/></a:accent4>` +
		`<a:accent5><a:srgbClr val="4BACC6"/></a:accent5>` +
		`<a:accent6><a:srgbClr val="F79646"/></a:accent6>` +
		`<a:hlink><a:srgbClr val="0000FF"/></a:hlink>` +
		`<a:folHlink><a:srgbClr val="800080"/></a:folHlink>` +
		`</a:clrScheme>` +
		`<a:fontScheme name="clinsight">` +
		`<a:majorFont><a:latin typeface="Calibri"/><a:ea typeface="` + deckFont + `"/><a:cs typeface=""/></a:majorFont>` +
		`<a:minorFont><a:latin typeface="Calibri"/><a:ea typeface="` + deckFont + `"/><a:cs typeface=""/></a:minorFont>` +
		`</a:fontScheme>` +
		`<a:fmtScheme name="clinsight">` +
		`<a:fillStyleLst>` + fill + fill + fill + `</a:fillStyleLst>` +
		`<a:lnStyleLst>` + line + line + line + `</a:lnStyleLst>` +
		`<a:effectStyleLst>` + effect + effect + effect + `</a:effectStyleLst>` +
		`<a:bgFillStyleLst>` + fill + fill + fill + `</a:bgFillStyleLst>` +
		`</a:fmtScheme>` +
		`</a:themeElements>` +
		`</a:theme>`
}

// coverSlideXML renders the title, optional logo, and the source filename.
func coverSlideXML(sourceName string, hasLogo bool) string {
	var shapes strings.Builder

	shapes.WriteString(textShape(2, "Title", emu(1), emu(0.8), emu(11), emu(1.5), []slidePara{
		{text: "研究设计提取报告", align: "ctr", size: 4200, bold: true, color: titleColor},
	}))

	if hasLogo {
		shapes.WriteString(pictureShape(3, "Logo", "rId2", emu(4.8), emu(2.0), emu(2.0), emu(0.6)))
	}

	shapes.WriteString(textShape(4, "Source", emu(1), emu(4.0), emu(11), emu(0.8), []slidePara{
		{text: "源文件：  " + sourceName, align: "ctr", size: 2000},
	}))

	return slideXML(shapes.String())
}

// contentSlideXML renders one field as title plus its value as body text,
// with a right-aligned footer. Values use 「；」 as an intra-cell line break.
func contentSlideXML(title, value, footer string) string {
	var body []slidePara
	for _, line := range strings.Split(strings.ReplaceAll(value, "；", "\n"), "\n") {
		body = append(body, slidePara{text: line, align: "l", size: 1800})
	}

	var shapes strings.Builder
	shapes.WriteString(textShape(2, "Title", emu(0.5), emu(0.3), emu(12.33), emu(1.2), []slidePara{
		{text: title, align: "l", size: 3200, bold: true, color: titleColor},
	}))
	shapes.WriteString(textShape(3, "Body", emu(0.5), emu(1.6), emu(12.33), emu(5.0), body))
	shapes.WriteString(textShape(4, "Footer", emu(0.5), emu(6.9), emu(12), emu(0.5), []slidePara{
		{text: footer, align: "r", size: 1000},
	}))

	return slideXML(shapes.String())
}

func slideXML(shapes string) string {
	return xmlDecl + fmt.Sprintf(`<p:sld xmlns:a=%q xmlns:r=%q xmlns:p=%q>`, nsA, nsR, nsP) +
		`<p:cSld><p:spTree>` +
		`<p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr><p:grpSpPr/>` +
		shapes +
		`</p:spTree></p:cSld>` +
		`<p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr>` +
		`</p:sld>`
}

func textShape(id int, name string, x, y, cx, cy int64, paras []slidePara) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<p:sp><p:nvSpPr><p:cNvPr id="%d" name="%s"/><p:cNvSpPr/><p:nvPr/></p:nvSpPr>`, id, name)
	fmt.Fprintf(&b, `<p:spPr><a:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></a:xfrm><a:prstGeom prst="rect"><a:avLst/></a:prstGeom></p:spPr>`, x, y, cx, cy)
	b.WriteString(`<p:txBody><a:bodyPr wrap="square"/><a:lstStyle/>`)
	for _, p := range paras {
		b.WriteString(paragraphXML(p))
	}
	b.WriteString(`</p:txBody></p:sp>`)
	return b.String()
}

func paragraphXML(p slidePara) string {
	var b strings.Builder
	b.WriteString(`<a:p>`)
	if p.align != "" && p.align != "l" {
		fmt.Fprintf(&b, `<a:pPr algn="%s"/>`, p.align)
	}
	fmt.Fprintf(&b, `<a:r><a:rPr lang="zh-CN" sz="%d"`, p.size)
	if p.bold {
		b.WriteString(` b="1"`)
	}
	b.WriteString(`>`)
	if p.color != "" {
		fmt.Fprintf(&b, `<a:solidFill><a:srgbClr val="%s"/></a:solidFill>`, p.color)
	}
	fmt.Fprintf(&b, `<a:latin typeface="%s"/><a:ea typeface="%s"/>`, deckFont, deckFont)
	b.WriteString(`</a:rPr>`)
	fmt.Fprintf(&b, `<a:t>%s</a:t></a:r></a:p>`, xmlEscape(p.text))
	return b.String()
}

func pictureShape(id int, name, relID string, x, y, cx, cy int64) string {
	return fmt.Sprintf(`<p:pic><p:nvPicPr><p:cNvPr id="%d" name="%s"/><p:cNvPicPr/><p:nvPr/></p:nvPicPr>`+
		`<p:blipFill><a:blip r:embed="%s"/><a:stretch><a:fillRect/></a:stretch></p:blipFill>`+
		`<p:spPr><a:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></a:xfrm><a:prstGeom prst="rect"><a:avLst/></a:prstGeom></p:spPr></p:pic>`,
		id, name, relID, x, y, cx, cy)
}
