// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package rendition

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strings"

	"github.com/poiesic/docpipe/core"
)

// emuPerInch converts template slide units (inches) to English Metric Units,
// the coordinate space of OOXML drawings.
const emuPerInch = 914400

// shape is one positioned text frame on the slide.
type shape struct {
	key        string
	label      string
	position   core.PositionConfig
	branding   core.BrandingConfig
	paragraphs []paragraph
}

// paragraph is one line of shape text, optionally bulleted.
type paragraph struct {
	text   string
	bullet bool
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// writeDeck assembles the single-slide .pptx archive. Parts are written in a
// fixed order with zero timestamps, so identical inputs produce identical
// bytes.
func writeDeck(cfg *core.TemplateConfig, shapes []shape) ([]byte, error) {
	var buf bytes.Buffer
	archive := zip.NewWriter(&buf)

	parts := []struct {
		name    string
		content string
	}{
		{"[Content_Types].xml", contentTypesXML},
		{"_rels/.rels", rootRelsXML},
		{"ppt/presentation.xml", presentationXML(cfg)},
		{"ppt/_rels/presentation.xml.rels", presentationRelsXML},
		{"ppt/slideMasters/slideMaster1.xml", slideMasterXML},
		{"ppt/slideMasters/_rels/slideMaster1.xml.rels", slideMasterRelsXML},
		{"ppt/slideLayouts/slideLayout1.xml", slideLayoutXML},
		{"ppt/slideLayouts/_rels/slideLayout1.xml.rels", slideLayoutRelsXML},
		{"ppt/theme/theme1.xml", themeXML(cfg.Branding)},
		{"ppt/slides/slide1.xml", slideXML(cfg, shapes)},
		{"ppt/slides/_rels/slide1.xml.rels", slideRelsXML},
	}

	for _, part := range parts {
		writer, err := archive.CreateHeader(&zip.FileHeader{
			Name:   part.name,
			Method: zip.Deflate,
		})
		if err != nil {
			return nil, err
		}
		if _, err := writer.Write([]byte(part.content)); err != nil {
			return nil, err
		}
	}

	if err := archive.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func toEMU(inches float64) int64 {
	return int64(inches * emuPerInch)
}

// presentationXML declares the slide size and the master/slide lists.
func presentationXML(cfg *core.TemplateConfig) string {
	return xmlHeader + fmt.Sprintf(
		`<p:presentation %s><p:sldMasterIdLst><p:sldMasterId id="2147483648" r:id="rId1"/></p:sldMasterIdLst>`+
			`<p:sldIdLst><p:sldId id="256" r:id="rId2"/></p:sldIdLst>`+
			`<p:sldSz cx="%d" cy="%d"/><p:notesSz cx="6858000" cy="9144000"/></p:presentation>`,
		drawingNamespaces, toEMU(cfg.SlideWidth), toEMU(cfg.SlideHeight))
}

// slideXML renders every shape into the slide's shape tree.
func slideXML(cfg *core.TemplateConfig, shapes []shape) string {
	var body strings.Builder
	body.WriteString(xmlHeader)
	body.WriteString(`<p:sld ` + drawingNamespaces + `><p:cSld><p:spTree>`)
	body.WriteString(`<p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr>`)
	body.WriteString(`<p:grpSpPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="0" cy="0"/>` +
		`<a:chOff x="0" y="0"/><a:chExt cx="0" cy="0"/></a:xfrm></p:grpSpPr>`)

	// Shape ids start at 2; id 1 is the group shape.
	for i, s := range shapes {
		body.WriteString(shapeXML(i+2, s))
	}
	if cfg.FooterText != "" {
		body.WriteString(footerXML(len(shapes)+2, cfg))
	}

	body.WriteString(`</p:spTree></p:cSld><p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr></p:sld>`)
	return body.String()
}

// shapeXML renders one positioned text frame: a heading run with the section
// label followed by the content paragraphs.
func shapeXML(id int, s shape) string {
	branding := s.branding
	headingColor := colorOrDefault(branding.PrimaryColor, defaultPrimaryColor)
	bodyColor := colorOrDefault(branding.SecondaryColor, defaultSecondaryColor)
	headingFont := fontOrDefault(branding.HeadingFontFamily, fontOrDefault(branding.FontFamily, defaultFontFamily))
	bodyFont := fontOrDefault(branding.FontFamily, defaultFontFamily)
	headingSize := sizeOrDefault(branding.HeadingFontSize, defaultHeadingFontSize)
	bodySize := sizeOrDefault(branding.BodyFontSize, defaultBodyFontSize)
	bulletSize := sizeOrDefault(branding.BulletFontSize, bodySize)

	var body strings.Builder
	fmt.Fprintf(&body,
		`<p:sp><p:nvSpPr><p:cNvPr id="%d" name="%s"/><p:cNvSpPr txBox="1"/><p:nvPr/></p:nvSpPr>`,
		id, xmlEscaper.Replace(s.key))
	fmt.Fprintf(&body,
		`<p:spPr><a:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></a:xfrm>`+
			`<a:prstGeom prst="rect"><a:avLst/></a:prstGeom></p:spPr>`,
		toEMU(s.position.X), toEMU(s.position.Y), toEMU(s.position.Width), toEMU(s.position.Height))
	body.WriteString(`<p:txBody><a:bodyPr wrap="square"/><a:lstStyle/>`)

	if s.label != "" {
		fmt.Fprintf(&body,
			`<a:p><a:pPr><a:buNone/></a:pPr><a:r><a:rPr lang="en-US" sz="%d" b="1">`+
				`<a:solidFill><a:srgbClr val="%s"/></a:solidFill><a:latin typeface="%s"/></a:rPr>`+
				`<a:t>%s</a:t></a:r></a:p>`,
			headingSize*100, headingColor, xmlEscaper.Replace(headingFont), xmlEscaper.Replace(s.label))
	}

	for _, para := range s.paragraphs {
		size := bodySize
		props := `<a:pPr><a:buNone/></a:pPr>`
		if para.bullet {
			size = bulletSize
			props = `<a:pPr><a:buChar char="&#8226;"/></a:pPr>`
		}
		fmt.Fprintf(&body,
			`<a:p>%s<a:r><a:rPr lang="en-US" sz="%d">`+
				`<a:solidFill><a:srgbClr val="%s"/></a:solidFill><a:latin typeface="%s"/></a:rPr>`+
				`<a:t>%s</a:t></a:r></a:p>`,
			props, size*100, bodyColor, xmlEscaper.Replace(bodyFont), xmlEscaper.Replace(para.text))
	}

	body.WriteString(`</p:txBody></p:sp>`)
	return body.String()
}

// footerXML renders the template footer along the bottom edge.
func footerXML(id int, cfg *core.TemplateConfig) string {
	footer := shape{
		key: "footer",
		position: core.PositionConfig{
			X:      0.25,
			Y:      cfg.SlideHeight - 0.4,
			Width:  cfg.SlideWidth - 0.5,
			Height: 0.3,
		},
		branding:   cfg.Branding,
		paragraphs: []paragraph{{text: cfg.FooterText}},
	}
	return shapeXML(id, footer)
}

func colorOrDefault(color, fallback string) string {
	color = strings.TrimPrefix(strings.TrimSpace(color), "#")
	if len(color) != 6 {
		return fallback
	}
	return strings.ToUpper(color)
}

func fontOrDefault(font, fallback string) string {
	if font == "" {
		return fallback
	}
	return font
}

func sizeOrDefault(size, fallback int) int {
	if size <= 0 {
		return fallback
	}
	return size
}

const xmlHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\r\n"

const drawingNamespaces = `xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" ` +
	`xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" ` +
	`xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"`

const clrMapAttrs = `bg1="lt1" tx1="dk1" bg2="lt2" tx2="dk2" accent1="accent1" accent2="accent2" ` +
	`accent3="accent3" accent4="accent4" accent5="accent5" accent6="accent6" hlink="hlink" folHlink="folHlink"`

const contentTypesXML = xmlHeader +
	`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
	`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
	`<Default Extension="xml" ContentType="application/xml"/>` +
	`<Override PartName="/ppt/presentation.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml"/>` +
	`<Override PartName="/ppt/slideMasters/slideMaster1.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slideMaster+xml"/>` +
	`<Override PartName="/ppt/slideLayouts/slideLayout1.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slideLayout+xml"/>` +
	`<Override PartName="/ppt/slides/slide1.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slide+xml"/>` +
	`<Override PartName="/ppt/theme/theme1.xml" ContentType="application/vnd.openxmlformats-officedocument.theme+xml"/>` +
	`</Types>`

const rootRelsXML = xmlHeader +
	`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="ppt/presentation.xml"/>` +
	`</Relationships>`

const presentationRelsXML = xmlHeader +
	`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideMaster" Target="slideMasters/slideMaster1.xml"/>` +
	`<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide" Target="slides/slide1.xml"/>` +
	`<Relationship Id="rId3" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/theme" Target="theme/theme1.xml"/>` +
	`</Relationships>`

const slideMasterXML = xmlHeader +
	`<p:sldMaster ` + drawingNamespaces + `><p:cSld><p:spTree>` +
	`<p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr>` +
	`<p:grpSpPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="0" cy="0"/>` +
	`<a:chOff x="0" y="0"/><a:chExt cx="0" cy="0"/></a:xfrm></p:grpSpPr>` +
	`</p:spTree></p:cSld><p:clrMap ` + clrMapAttrs + `/>` +
	`<p:sldLayoutIdLst><p:sldLayoutId id="2147483649" r:id="rId1"/></p:sldLayoutIdLst>` +
	`</p:sldMaster>`

const slideMasterRelsXML = xmlHeader +
	`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideLayout" Target="../slideLayouts/slideLayout1.xml"/>` +
	`<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/theme" Target="../theme/theme1.xml"/>` +
	`</Relationships>`

const slideLayoutXML = xmlHeader +
	`<p:sldLayout ` + drawingNamespaces + ` type="blank"><p:cSld><p:spTree>` +
	`<p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr>` +
	`<p:grpSpPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="0" cy="0"/>` +
	`<a:chOff x="0" y="0"/><a:chExt cx="0" cy="0"/></a:xfrm></p:grpSpPr>` +
	`</p:spTree></p:cSld><p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr></p:sldLayout>`

const slideLayoutRelsXML = xmlHeader +
	`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideMaster" Target="../slideMasters/slideMaster1.xml"/>` +
	`</Relationships>`

const slideRelsXML = xmlHeader +
	`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideLayout" Target="../slideLayouts/slideLayout1.xml"/>` +
	`</Relationships>`

// themeXML carries the minimum theme a reader expects: a color scheme seeded
// from branding, a font scheme, and an empty-but-present format scheme.
func themeXML(branding core.BrandingConfig) string {
	primary := colorOrDefault(branding.PrimaryColor, defaultPrimaryColor)
	accent := colorOrDefault(branding.AccentColor, primary)
	font := fontOrDefault(branding.FontFamily, defaultFontFamily)

	return xmlHeader + fmt.Sprintf(
		`<a:theme xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" name="docpipe">`+
			`<a:themeElements><a:clrScheme name="docpipe">`+
			`<a:dk1><a:srgbClr val="000000"/></a:dk1><a:lt1><a:srgbClr val="FFFFFF"/></a:lt1>`+
			`<a:dk2><a:srgbClr val="%s"/></a:dk2><a:lt2><a:srgbClr val="F2F2F2"/></a:lt2>`+
			`<a:accent1><a:srgbClr val="%s"/></a:accent1><a:accent2><a:srgbClr val="%s"/></a:accent2>`+
			`<a:accent3><a:srgbClr val="A5A5A5"/></a:accent3><a:accent4><a:srgbClr val="FFC000"/></a:accent4>`+
			`<a:accent5><a:srgbClr val="5B9BD5"/></a:accent5><a:accent6><a:srgbClr val="70AD47"/></a:accent6>`+
			`<a:hlink><a:srgbClr val="0563C1"/></a:hlink><a:folHlink><a:srgbClr val="954F72"/></a:folHlink>`+
			`</a:clrScheme>`+
			`<a:fontScheme name="docpipe">`+
			`<a:majorFont><a:latin typeface="%s"/><a:ea typeface=""/><a:cs typeface=""/></a:majorFont>`+
			`<a:minorFont><a:latin typeface="%s"/><a:ea typeface=""/><a:cs typeface=""/></a:minorFont>`+
			`</a:fontScheme>`+
			`<a:fmtScheme name="docpipe">`+
			`<a:fillStyleLst><a:solidFill><a:schemeClr val="phClr"/></a:solidFill>`+
			`<a:solidFill><a:schemeClr val="phClr"/></a:solidFill>`+
			`<a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:fillStyleLst>`+
			`<a:lnStyleLst><a:ln><a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:ln>`+
			`<a:ln><a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:ln>`+
			`<a:ln><a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:ln></a:lnStyleLst>`+
			`<a:effectStyleLst><a:effectStyle><a:effectLst/></a:effectStyle>`+
			`<a:effectStyle><a:effectLst/></a:effectStyle>`+
			`<a:effectStyle><a:effectLst/></a:effectStyle></a:effectStyleLst>`+
			`<a:bgFillStyleLst><a:solidFill><a:schemeClr val="phClr"/></a:solidFill>`+
			`<a:solidFill><a:schemeClr val="phClr"/></a:solidFill>`+
			`<a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:bgFillStyleLst>`+
			`</a:fmtScheme></a:themeElements></a:theme>`,
		primary, primary, accent,
		xmlEscaper.Replace(font), xmlEscaper.Replace(font))
}
