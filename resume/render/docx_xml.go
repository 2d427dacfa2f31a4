package render

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

const (
	wmlNamespace = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	relNamespace = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
)

// validateDocumentXMLStructure rejects document.xml that Word refuses to open:
// malformed XML, nested paragraphs and run properties after run text.
func validateDocumentXMLStructure(xmlText string) error {
	decoder := xml.NewDecoder(strings.NewReader(xmlText))
	var stack []xml.Name
	type runState struct {
		seenText bool
	}
	var runs []runState

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("document.xml parse failed: %w\n%s", err, firstLines(xmlText, 5))
		}
		switch t := token.(type) {
		case xml.StartElement:
			stack = append(stack, t.Name)
			if isWmlElement(t.Name, "p") {
				for i := len(stack) - 2; i >= 0; i-- {
					if isWmlElement(stack[i], "tc") {
						break
					}
					if isWmlElement(stack[i], "p") {
						return fmt.Errorf("document.xml has nested <w:p>\n%s", firstLines(xmlText, 5))
					}
				}
			}
			if isWmlElement(t.Name, "r") {
				runs = append(runs, runState{})
			}
			if isWmlElement(t.Name, "t") && len(runs) > 0 {
				runs[len(runs)-1].seenText = true
			}
			if isWmlElement(t.Name, "rPr") && len(runs) > 0 && runs[len(runs)-1].seenText {
				return fmt.Errorf("document.xml has <w:rPr> after <w:t> in a run\n%s", firstLines(xmlText, 5))
			}
		case xml.EndElement:
			if isWmlElement(t.Name, "r") && len(runs) > 0 {
				runs = runs[:len(runs)-1]
			}
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}
	if len(stack) != 0 {
		return fmt.Errorf("document.xml has %d unclosed elements", len(stack))
	}
	return nil
}

func isWmlElement(name xml.Name, local string) bool {
	return name.Local == local && name.Space == wmlNamespace
}

// bookmarkNames lists w:bookmarkStart names in document order.
func bookmarkNames(xmlText string) ([]string, error) {
	decoder := xml.NewDecoder(strings.NewReader(xmlText))
	var names []string
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			return names, nil
		}
		if err != nil {
			return nil, err
		}
		start, ok := token.(xml.StartElement)
		if !ok || !isWmlElement(start.Name, "bookmarkStart") {
			continue
		}
		for _, attr := range start.Attr {
			if attr.Name.Local == "name" {
				names = append(names, attr.Value)
			}
		}
	}
}

// documentText concatenates w:t contents, one paragraph per line.
func documentText(xmlText string) (string, error) {
	decoder := xml.NewDecoder(strings.NewReader(xmlText))
	var b strings.Builder
	inText := false
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			return strings.TrimSpace(b.String()), nil
		}
		if err != nil {
			return "", err
		}
		switch t := token.(type) {
		case xml.StartElement:
			if isWmlElement(t.Name, "t") {
				inText = true
			}
			if isWmlElement(t.Name, "br") || isWmlElement(t.Name, "tab") {
				b.WriteByte(' ')
			}
		case xml.EndElement:
			if isWmlElement(t.Name, "t") {
				inText = false
			}
			if isWmlElement(t.Name, "p") {
				b.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}
}

func firstLines(text string, count int) string {
	if count <= 0 {
		return ""
	}
	lines := strings.Split(text, "\n")
	if len(lines) > count {
		lines = lines[:count]
	}
	return strings.Join(lines, "\n")
}

func escapeXML(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
