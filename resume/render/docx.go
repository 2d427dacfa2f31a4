package render

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"resume-builder/resume/model"
)

// A4 in twips.
const (
	pageWidthTwips  = 11906
	pageHeightTwips = 16838
)

const documentXMLPath = "word/document.xml"

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/><Default Extension="xml" ContentType="application/xml"/><Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/><Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/><Override PartName="/docProps/core.xml" ContentType="application/vnd.openxmlformats-package.core-properties+xml"/></Types>`

const packageRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/><Relationship Id="rId2" Type="http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties" Target="docProps/core.xml"/></Relationships>`

const documentRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/></Relationships>`

// RenderDOCX renders a layout tree as a Word document. Regions and sections are
// marked with bookmarks named region_<name> and section_<name> so the document
// structure can be checked against the tree.
func RenderDOCX(tree LayoutTree) ([]byte, error) {
	w := newDocxWriter(tree)
	documentXML := w.document()
	if err := validateDocumentXMLStructure(documentXML); err != nil {
		return nil, err
	}

	parts := []struct {
		name    string
		content string
	}{
		{"[Content_Types].xml", contentTypesXML},
		{"_rels/.rels", packageRelsXML},
		{documentXMLPath, documentXML},
		{"word/_rels/document.xml.rels", documentRelsXML},
		{"word/styles.xml", stylesXML(tree.Theme)},
		{"docProps/core.xml", coreXML(tree)},
	}

	var out bytes.Buffer
	zw := zip.NewWriter(&out)
	for _, p := range parts {
		if err := writeZipFile(zw, p.name, []byte(p.content)); err != nil {
			_ = zw.Close()
			return nil, fmt.Errorf("write %s: %w", p.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func writeZipFile(writer *zip.Writer, name string, content []byte) error {
	header := &zip.FileHeader{
		Name:     normalizeZipName(name),
		Method:   zip.Deflate,
		Modified: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	dst, err := writer.CreateHeader(header)
	if err != nil {
		return err
	}
	_, err = dst.Write(content)
	return err
}

func normalizeZipName(name string) string {
	return strings.ReplaceAll(name, "\\", "/")
}

type docxWriter struct {
	tree       LayoutTree
	styles     map[string]RunStyle
	buf        strings.Builder
	bookmarkID int
	textWidth  int
}

func newDocxWriter(tree LayoutTree) *docxWriter {
	margin := twips(float64(tree.Theme.Margins))
	return &docxWriter{
		tree:      tree,
		styles:    StyleMap(tree.Theme),
		textWidth: pageWidthTwips - 2*margin,
	}
}

func (w *docxWriter) document() string {
	w.buf.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n")
	w.buf.WriteString(`<w:document xmlns:w="` + wmlNamespace + `" xmlns:r="` + relNamespace + `"><w:body>` + "\n")

	regions := w.tree.Regions
	if isColumnLayout(w.tree.Layout) && len(regions) == 2 {
		w.columns(regions[0], regions[1])
	} else {
		for _, r := range regions {
			if r.Name == RegionGrid {
				w.grid(r)
				continue
			}
			w.regionMarker(r.Name)
			for _, b := range r.Blocks {
				w.block(b)
			}
		}
	}

	margin := twips(float64(w.tree.Theme.Margins))
	fmt.Fprintf(&w.buf, `<w:sectPr><w:pgSz w:w="%d" w:h="%d"/><w:pgMar w:top="%d" w:right="%d" w:bottom="%d" w:left="%d" w:header="0" w:footer="0" w:gutter="0"/></w:sectPr>`,
		pageWidthTwips, pageHeightTwips, margin, margin, margin, margin)
	w.buf.WriteString("\n</w:body></w:document>")
	return w.buf.String()
}

func isColumnLayout(l model.Layout) bool {
	return l == model.LayoutTwoColumn || l == model.LayoutTwoColumnEqual
}

// columns lays two regions side by side in a borderless one-row table.
func (w *docxWriter) columns(left, right Region) {
	first := widthTwips(left.Width, w.textWidth, w.textWidth/2)
	second := w.textWidth - first

	w.tableStart([]int{first, second})
	w.buf.WriteString("<w:tr>")
	for i, r := range []Region{left, right} {
		width := first
		if i == 1 {
			width = second
		}
		fill := ""
		if r.Name == RegionSidebar {
			fill = docxColor(w.tree.Theme.Colors.SidebarBg)
		}
		w.cellStart(width, fill)
		w.regionMarker(r.Name)
		for _, b := range r.Blocks {
			w.block(b)
		}
		w.buf.WriteString("</w:tc>")
	}
	w.buf.WriteString("</w:tr></w:tbl>\n")
	w.emptyParagraph()
}

// grid lays blocks row by row across a fixed number of columns.
func (w *docxWriter) grid(r Region) {
	cols := r.Columns
	if cols < 1 {
		cols = 1
	}
	w.regionMarker(r.Name)
	cell := w.textWidth / cols
	widths := make([]int, cols)
	for i := range widths {
		widths[i] = cell
	}

	w.tableStart(widths)
	for start := 0; start < len(r.Blocks); start += cols {
		w.buf.WriteString("<w:tr>")
		for i := 0; i < cols; i++ {
			w.cellStart(cell, "")
			if idx := start + i; idx < len(r.Blocks) {
				w.block(r.Blocks[idx])
			} else {
				w.emptyParagraph()
			}
			w.buf.WriteString("</w:tc>")
		}
		w.buf.WriteString("</w:tr>")
	}
	w.buf.WriteString("</w:tbl>\n")
	w.emptyParagraph()
}

func (w *docxWriter) tableStart(widths []int) {
	total := 0
	for _, v := range widths {
		total += v
	}
	fmt.Fprintf(&w.buf, `<w:tbl><w:tblPr><w:tblW w:w="%d" w:type="dxa"/><w:tblBorders><w:top w:val="nil"/><w:left w:val="nil"/><w:bottom w:val="nil"/><w:right w:val="nil"/><w:insideH w:val="nil"/><w:insideV w:val="nil"/></w:tblBorders><w:tblLayout w:type="fixed"/></w:tblPr><w:tblGrid>`, total)
	for _, v := range widths {
		fmt.Fprintf(&w.buf, `<w:gridCol w:w="%d"/>`, v)
	}
	w.buf.WriteString("</w:tblGrid>")
}

func (w *docxWriter) cellStart(width int, fill string) {
	fmt.Fprintf(&w.buf, `<w:tc><w:tcPr><w:tcW w:w="%d" w:type="dxa"/>`, width)
	if fill != "" {
		fmt.Fprintf(&w.buf, `<w:shd w:val="clear" w:color="auto" w:fill="%s"/>`, fill)
	}
	w.buf.WriteString("</w:tcPr>")
}

func (w *docxWriter) regionMarker(name string) {
	w.buf.WriteString(`<w:p><w:pPr><w:spacing w:before="0" w:after="0"/></w:pPr>`)
	w.bookmark("region_" + name)
	w.buf.WriteString("</w:p>\n")
}

func (w *docxWriter) bookmark(name string) {
	id := w.bookmarkID
	w.bookmarkID++
	fmt.Fprintf(&w.buf, `<w:bookmarkStart w:id="%d" w:name="%s"/><w:bookmarkEnd w:id="%d"/>`, id, escapeXML(name), id)
}

func (w *docxWriter) emptyParagraph() {
	w.buf.WriteString("<w:p/>\n")
}

func (w *docxWriter) block(b Block) {
	if b.Contact != nil {
		w.contact(b.Section, b.Contact)
		return
	}

	spacing := w.spacingTwips(16)
	fmt.Fprintf(&w.buf, `<w:p><w:pPr><w:keepNext/><w:pBdr><w:bottom w:val="single" w:sz="8" w:space="1" w:color="%s"/></w:pBdr><w:spacing w:before="%d" w:after="%d"/></w:pPr>`,
		docxColor(w.tree.Theme.Colors.Primary), spacing, spacing/2)
	w.bookmark("section_" + b.Section)
	w.run(b.Heading, w.styles[styleHeading])
	w.buf.WriteString("</w:p>\n")

	for _, it := range b.Items {
		w.item(it)
	}
}

func (w *docxWriter) contact(section string, c *Contact) {
	w.buf.WriteString(`<w:p><w:pPr><w:spacing w:after="60"/></w:pPr>`)
	w.bookmark("section_" + section)
	w.run(c.Name, w.styles[styleName])
	w.buf.WriteString("</w:p>\n")

	parts := []string{c.Email, c.Phone, c.Location, c.LinkedIn, c.Website}
	parts = append(parts, c.Links...)
	if line := strings.Join(nonEmpty(parts), " | "); line != "" {
		w.paragraph(w.spacingTwips(12), 0, func() { w.run(line, w.styles[styleContact]) })
	}
}

func (w *docxWriter) item(it Item) {
	after := w.spacingTwips(4)
	if it.Title != "" || it.Meta != "" {
		w.paragraph(after, 0, func() {
			if it.Title != "" {
				w.run(it.Title, w.styles[styleTitle])
			}
			if it.Meta != "" {
				if it.Title != "" {
					w.run("  ", w.styles[styleMeta])
				}
				w.run(it.Meta, w.styles[styleMeta])
			}
			if w.tree.ShowSkillLevels && it.Level > 0 {
				w.run("  "+levelDots(it.Level), w.styles[styleLink])
			}
		})
	}
	if it.Subtitle != "" {
		w.paragraph(after, 0, func() { w.run(it.Subtitle, w.styles[styleSubtitle]) })
	}
	if it.Body != "" {
		w.paragraph(after, 0, func() { w.run(it.Body, w.styles[styleBody]) })
	}
	if it.Link != "" {
		w.paragraph(after, 0, func() { w.run(it.Link, w.styles[styleLink]) })
	}
	for _, bullet := range it.Bullets {
		w.paragraph(after/2, 360, func() { w.run("• "+bullet, w.styles[styleBody]) })
	}
}

func (w *docxWriter) paragraph(after, indent int, body func()) {
	fmt.Fprintf(&w.buf, `<w:p><w:pPr><w:spacing w:after="%d"/>`, after)
	if indent > 0 {
		fmt.Fprintf(&w.buf, `<w:ind w:left="%d"/>`, indent)
	}
	w.buf.WriteString("</w:pPr>")
	body()
	w.buf.WriteString("</w:p>\n")
}

// run writes one text run; newlines become line breaks inside the run.
func (w *docxWriter) run(text string, style RunStyle) {
	w.buf.WriteString("<w:r><w:rPr>")
	if style.Bold {
		w.buf.WriteString("<w:b/>")
	}
	if style.Italic {
		w.buf.WriteString("<w:i/>")
	}
	if style.Color != "" {
		fmt.Fprintf(&w.buf, `<w:color w:val="%s"/>`, style.Color)
	}
	if style.Size > 0 {
		fmt.Fprintf(&w.buf, `<w:sz w:val="%d"/><w:szCs w:val="%d"/>`, style.Size, style.Size)
	}
	w.buf.WriteString("</w:rPr>")
	for i, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if i > 0 {
			w.buf.WriteString("<w:br/>")
		}
		w.buf.WriteString(`<w:t xml:space="preserve">` + escapeXML(line) + "</w:t>")
	}
	w.buf.WriteString("</w:r>")
}

func (w *docxWriter) spacingTwips(px float64) int {
	return twips(px * w.tree.Theme.SpacingScale)
}

func levelDots(level int) string {
	if level > 5 {
		level = 5
	}
	return strings.Repeat("●", level) + strings.Repeat("○", 5-level)
}

// widthTwips converts a CSS width ("30%", "240px") into twips of the text width.
func widthTwips(width string, total, def int) int {
	width = strings.TrimSpace(width)
	var v int
	switch {
	case strings.HasSuffix(width, "%"):
		pct, err := strconv.ParseFloat(strings.TrimSuffix(width, "%"), 64)
		if err != nil || pct <= 0 || pct >= 100 {
			return def
		}
		v = int(math.Round(float64(total) * pct / 100))
	case strings.HasSuffix(width, "px"):
		px, err := strconv.ParseFloat(strings.TrimSuffix(width, "px"), 64)
		if err != nil || px <= 0 {
			return def
		}
		v = twips(px)
	default:
		return def
	}
	if v <= 0 || v >= total {
		return def
	}
	return v
}

func stylesXML(th Theme) string {
	font := escapeXML(th.Font)
	body := halfPoints(th.Sizes.Body)
	line := int(math.Round(240 * th.LineHeight))
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:styles xmlns:w="%s"><w:docDefaults><w:rPrDefault><w:rPr><w:rFonts w:ascii="%s" w:hAnsi="%s" w:eastAsia="%s" w:cs="%s"/><w:color w:val="%s"/><w:sz w:val="%d"/><w:szCs w:val="%d"/></w:rPr></w:rPrDefault><w:pPrDefault><w:pPr><w:spacing w:after="0" w:line="%d" w:lineRule="auto"/></w:pPr></w:pPrDefault></w:docDefaults><w:style w:type="paragraph" w:default="1" w:styleId="Normal"><w:name w:val="Normal"/><w:qFormat/></w:style></w:styles>`,
		wmlNamespace, font, font, font, font, docxColor(th.Colors.Text), body, body, line)
}

func coreXML(tree LayoutTree) string {
	creator := ""
	for _, r := range tree.Regions {
		for _, b := range r.Blocks {
			if b.Contact != nil {
				creator = b.Contact.Name
			}
		}
	}
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" xmlns:dc="http://purl.org/dc/elements/1.1/"><dc:title>%s</dc:title><dc:creator>%s</dc:creator></cp:coreProperties>`,
		escapeXML(tree.Title), escapeXML(creator))
}

// DOCXDocumentXML returns word/document.xml from a DOCX archive.
func DOCXDocumentXML(data []byte) (string, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}
	for _, f := range reader.File {
		if normalizeZipName(f.Name) != documentXMLPath {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", err
		}
		defer rc.Close()
		raw, err := io.ReadAll(rc)
		if err != nil {
			return "", err
		}
		return string(raw), nil
	}
	return "", fmt.Errorf("docx has no %s", documentXMLPath)
}

// DOCXText extracts the plain text of a DOCX archive, one paragraph per line.
func DOCXText(data []byte) (string, error) {
	doc, err := DOCXDocumentXML(data)
	if err != nil {
		return "", err
	}
	return documentText(doc)
}

// DOCXStructure rebuilds the region/section skeleton of a rendered document from
// its bookmarks, in the same form as LayoutTree.Structure.
func DOCXStructure(data []byte) (string, error) {
	doc, err := DOCXDocumentXML(data)
	if err != nil {
		return "", err
	}
	names, err := bookmarkNames(doc)
	if err != nil {
		return "", err
	}
	var lines []string
	var current []string
	region := ""
	flush := func() {
		if region != "" {
			lines = append(lines, region+": "+strings.Join(current, " "))
		}
	}
	for _, n := range names {
		switch {
		case strings.HasPrefix(n, "region_"):
			flush()
			region = strings.TrimPrefix(n, "region_")
			current = nil
		case strings.HasPrefix(n, "section_"):
			current = append(current, strings.TrimPrefix(n, "section_"))
		}
	}
	flush()
	return strings.Join(lines, "\n"), nil
}
