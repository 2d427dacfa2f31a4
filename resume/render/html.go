package render

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
)

const resetCSS = `*{margin:0;padding:0;box-sizing:border-box}html,body{background:#fff}body{-webkit-print-color-adjust:exact;print-color-adjust:exact}@page{size:A4;margin:0}`

var markupTemplate = template.Must(template.New("resume").Funcs(template.FuncMap{
	"photoURL": photoURL,
}).Parse(`<div class="resume layout-{{.Layout}}" data-layout="{{.Layout}}">
{{- range .Regions}}
<div class="region region-{{.Name}}" data-region="{{.Name}}">
{{- range .Blocks}}
<section class="section section-{{.Section}}" data-section="{{.Section}}">
{{- with .Contact}}
<header class="contact">
{{- with photoURL .Photo}}<img class="photo" src="{{.}}" alt="">{{end}}
<h1 class="name">{{.Name}}</h1>
<div class="contact-line">
{{- if .Email}}<span>{{.Email}}</span>{{end}}
{{- if .Phone}}<span>{{.Phone}}</span>{{end}}
{{- if .Location}}<span>{{.Location}}</span>{{end}}
{{- if .LinkedIn}}<span>{{.LinkedIn}}</span>{{end}}
{{- if .Website}}<span>{{.Website}}</span>{{end}}
{{- range .Links}}<span>{{.}}</span>{{end}}
</div>
</header>
{{- end}}
{{- if .Heading}}
<h2 class="section-heading">{{.Heading}}</h2>
{{- end}}
{{- range .Items}}
<div class="entry"{{if .ID}} data-entry="{{.ID}}"{{end}}>
{{- if or .Title .Meta}}<div class="entry-header"><span class="entry-title">{{.Title}}</span>{{if .Meta}}<span class="entry-meta">{{.Meta}}</span>{{end}}</div>{{end}}
{{- if .Subtitle}}<div class="entry-subtitle">{{.Subtitle}}</div>{{end}}
{{- if .Body}}<p class="entry-body">{{.Body}}</p>{{end}}
{{- if .Link}}<div class="entry-link">{{.Link}}</div>{{end}}
{{- if .Bullets}}<ul class="entry-bullets">{{range .Bullets}}<li>{{.}}</li>{{end}}</ul>{{end}}
{{- if and $.ShowSkillLevels .Level}}<div class="level"><span class="level-fill level-{{.Level}}"></span></div>{{end}}
</div>
{{- end}}
</section>
{{- end}}
</div>
{{- end}}
</div>`))

// RenderHTML renders a layout tree into static markup and its stylesheet.
func RenderHTML(tree LayoutTree) (string, string, error) {
	var buf bytes.Buffer
	if err := markupTemplate.Execute(&buf, tree); err != nil {
		return "", "", fmt.Errorf("render html: %w", err)
	}
	return buf.String(), Stylesheet(tree), nil
}

// Document wraps markup and stylesheet into a standalone page for the PDF engine.
func Document(markup, css string) string {
	var b strings.Builder
	b.WriteString(`<!DOCTYPE html><html><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1">`)
	b.WriteString("<style>" + resetCSS + "</style>")
	b.WriteString("<style>" + strings.ReplaceAll(css, "</style", "<\\/style") + "</style>")
	b.WriteString("</head><body>")
	b.WriteString(markup)
	b.WriteString("</body></html>")
	return b.String()
}

// Stylesheet derives the CSS for a tree from its theme.
func Stylesheet(tree LayoutTree) string {
	th := tree.Theme
	sp := func(px float64) string { return fmt.Sprintf("%.1fpx", px*th.SpacingScale) }
	var b strings.Builder
	fmt.Fprintf(&b, ".resume{font-family:'%s',sans-serif;font-size:%dpx;line-height:%.2f;color:%s;background:%s;padding:%dpx;display:flex;flex-wrap:wrap;gap:%s}",
		th.Font, th.Sizes.Body, th.LineHeight, th.Colors.Text, th.Colors.Background, th.Margins, sp(20))
	fmt.Fprintf(&b, ".region{flex:1 1 100%%;min-width:0}")
	fmt.Fprintf(&b, ".section{margin-bottom:%s}", sp(float64(th.Spacing)))
	fmt.Fprintf(&b, ".name{font-family:'%s',sans-serif;font-size:%dpx;font-weight:700;color:%s}", th.HeadingFont, th.Sizes.Name, th.Colors.Primary)
	fmt.Fprintf(&b, ".contact-line{font-size:%dpx;color:%s;display:flex;flex-wrap:wrap;gap:%s}", th.Sizes.Small, th.Colors.TextLight, sp(12))
	fmt.Fprintf(&b, ".section-heading{font-family:'%s',sans-serif;font-size:%dpx;font-weight:700;color:%s;border-bottom:2px solid %s;margin-bottom:%s}",
		th.HeadingFont, th.Sizes.Heading, th.Colors.Primary, th.Colors.Secondary, sp(10))
	fmt.Fprintf(&b, ".entry{margin-bottom:%s}", sp(12))
	fmt.Fprintf(&b, ".entry-header{display:flex;justify-content:space-between;gap:8px}")
	fmt.Fprintf(&b, ".entry-title{font-size:%dpx;font-weight:600}", th.Sizes.Subheading)
	fmt.Fprintf(&b, ".entry-meta{font-size:%dpx;color:%s}", th.Sizes.Small, th.Colors.TextLight)
	fmt.Fprintf(&b, ".entry-subtitle{font-size:%dpx;color:%s}", th.Sizes.Large, th.Colors.Secondary)
	fmt.Fprintf(&b, ".entry-link{font-size:%dpx;color:%s}", th.Sizes.Small, th.Colors.Primary)
	fmt.Fprintf(&b, ".entry-bullets{padding-left:18px}")
	fmt.Fprintf(&b, ".photo{width:96px;height:96px;object-fit:cover;border-radius:%s}", photoRadius(th.PhotoStyle))
	fmt.Fprintf(&b, ".level{height:6px;background:%s;border-radius:3px}.level-fill{display:block;height:100%%;background:%s;border-radius:3px}",
		th.Colors.SidebarBg, th.Colors.Primary)
	for lvl := 1; lvl <= 5; lvl++ {
		fmt.Fprintf(&b, ".level-%d{width:%d%%}", lvl, lvl*20)
	}
	for _, r := range tree.Regions {
		switch {
		case r.Width != "":
			fmt.Fprintf(&b, ".region-%s{flex:0 0 calc(%s - %s)}", r.Name, cssValue(r.Width), sp(10))
		case r.Columns > 0:
			fmt.Fprintf(&b, ".region-%s{display:grid;grid-template-columns:repeat(%d,1fr);gap:%s}", r.Name, r.Columns, sp(16))
		}
	}
	fmt.Fprintf(&b, ".region-sidebar{background:%s;padding:%s}", th.Colors.SidebarBg, sp(16))
	fmt.Fprintf(&b, ".region-timeline .entry{border-left:2px solid %s;padding-left:%s}", th.Colors.Primary, sp(12))
	fmt.Fprintf(&b, ".region-blocks .section{border:1px solid %s;border-radius:8px;padding:%s}", th.Colors.SidebarBg, sp(16))
	fmt.Fprintf(&b, ".region-header{border-bottom:3px solid %s}", th.Colors.Primary)
	fmt.Fprintf(&b, "h1,h2,.entry-title{page-break-after:avoid;break-after:avoid}.entry{page-break-inside:avoid;break-inside:avoid}")
	return b.String()
}

func photoRadius(style string) string {
	switch style {
	case "rounded":
		return "12px"
	case "square":
		return "0"
	default:
		return "50%"
	}
}

// cssValue keeps only characters valid in a simple length.
func cssValue(v string) string {
	var b strings.Builder
	for _, r := range v {
		if (r >= '0' && r <= '9') || r == '.' || r == '%' || (r >= 'a' && r <= 'z') {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "50%"
	}
	return b.String()
}

// photoURL admits inline images and https sources only.
func photoURL(src string) template.URL {
	s := strings.TrimSpace(src)
	switch {
	case strings.HasPrefix(s, "data:image/"), strings.HasPrefix(s, "https://"):
		return template.URL(s)
	default:
		return ""
	}
}
