package render

import (
	"strings"
	"testing"

	"resume-builder/resume/model"
)

func TestHTMLAndDOCXShareStructure(t *testing.T) {
	templates := map[string]model.Template{
		"default":    model.DefaultTemplate(),
		"two-column": twoColumnTemplate(),
	}
	for tmplName, tmpl := range templates {
		for _, layout := range append([]model.Layout{""}, model.Layouts...) {
			tree := Resolve(sampleContent(), model.Customization{Layout: string(layout)}, tmpl, Options{Title: "Backend"})
			want := tree.Structure()

			markup, _, err := RenderHTML(tree)
			if err != nil {
				t.Fatalf("%s/%s: render html: %v", tmplName, layout, err)
			}
			htmlStructure, err := HTMLStructure(markup)
			if err != nil {
				t.Fatalf("%s/%s: parse html: %v", tmplName, layout, err)
			}
			if htmlStructure != want {
				t.Fatalf("%s/%s: html structure\n%s\nwant\n%s", tmplName, layout, htmlStructure, want)
			}

			docx, err := RenderDOCX(tree)
			if err != nil {
				t.Fatalf("%s/%s: render docx: %v", tmplName, layout, err)
			}
			docxStructure, err := DOCXStructure(docx)
			if err != nil {
				t.Fatalf("%s/%s: read docx: %v", tmplName, layout, err)
			}
			if docxStructure != want {
				t.Fatalf("%s/%s: docx structure\n%s\nwant\n%s", tmplName, layout, docxStructure, want)
			}
		}
	}
}

func TestRenderHTMLEscapesContent(t *testing.T) {
	content := sampleContent()
	content.Personal.FullName = `<script>alert(1)</script>`
	content.Personal.Photo = "javascript:alert(1)"
	tree := Resolve(content, model.Customization{}, model.DefaultTemplate(), Options{})

	markup, css, err := RenderHTML(tree)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(markup, "<script>") {
		t.Fatalf("markup not escaped")
	}
	if strings.Contains(markup, "javascript:") {
		t.Fatalf("unsafe photo url rendered")
	}
	if !strings.Contains(css, "font-size:14px") {
		t.Fatalf("stylesheet missing body size: %s", css)
	}
}

func TestRenderHTMLIncludesDataPhoto(t *testing.T) {
	content := sampleContent()
	content.Personal.Photo = "data:image/png;base64,AAAA"
	tree := Resolve(content, model.Customization{}, model.DefaultTemplate(), Options{})

	markup, _, err := RenderHTML(tree)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(markup, `src="data:image/png;base64,AAAA"`) {
		t.Fatalf("photo missing from markup")
	}
}

func TestDocumentWrapsMarkup(t *testing.T) {
	page := Document("<div>hi</div>", "body{color:red}</style><script>")
	if !strings.HasPrefix(page, "<!DOCTYPE html>") {
		t.Fatalf("missing doctype")
	}
	if strings.Contains(page, "</style><script>") {
		t.Fatalf("stylesheet can close the style element")
	}
	if !strings.Contains(page, "<div>hi</div>") {
		t.Fatalf("markup missing")
	}
}

func TestRenderDOCXContainsContent(t *testing.T) {
	content := sampleContent()
	content.Personal.FullName = "Ada & <Byron>"
	tree := Resolve(content, model.Customization{Layout: "infographic"}, model.DefaultTemplate(), Options{Title: "CV"})

	docx, err := RenderDOCX(tree)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	text, err := DOCXText(docx)
	if err != nil {
		t.Fatalf("text: %v", err)
	}
	for _, want := range []string{"Ada & <Byron>", "Engineer", "Analytical Co", "Wrote the first program", "Mathematics", "●●●●●"} {
		if !strings.Contains(text, want) {
			t.Fatalf("docx text missing %q:\n%s", want, text)
		}
	}

	doc, err := DOCXDocumentXML(docx)
	if err != nil {
		t.Fatalf("document.xml: %v", err)
	}
	if err := validateDocumentXMLStructure(doc); err != nil {
		t.Fatalf("invalid document.xml: %v", err)
	}
}

func TestValidateDocumentXMLStructureRejectsBrokenRuns(t *testing.T) {
	cases := map[string]string{
		"nested paragraph": `<w:document xmlns:w="` + wmlNamespace + `"><w:body><w:p><w:p/></w:p></w:body></w:document>`,
		"rPr after text":   `<w:document xmlns:w="` + wmlNamespace + `"><w:body><w:p><w:r><w:t>x</w:t><w:rPr/></w:r></w:p></w:body></w:document>`,
		"unclosed":         `<w:document xmlns:w="` + wmlNamespace + `"><w:body><w:p>`,
	}
	for name, doc := range cases {
		if err := validateDocumentXMLStructure(doc); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestWidthTwips(t *testing.T) {
	if got := widthTwips("30%", 10000, 5000); got != 3000 {
		t.Fatalf("percent: got %d", got)
	}
	if got := widthTwips("100px", 10000, 5000); got != 1500 {
		t.Fatalf("px: got %d", got)
	}
	if got := widthTwips("auto", 10000, 5000); got != 5000 {
		t.Fatalf("fallback: got %d", got)
	}
}
