package render

import (
	"strings"

	"golang.org/x/net/html"
)

// HTMLStructure rebuilds the region/section skeleton of rendered markup from its
// data-region and data-section attributes, in the same form as LayoutTree.Structure.
func HTMLStructure(markup string) (string, error) {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return "", err
	}
	var lines []string
	var walk func(n *html.Node, sections *[]string)
	walk = func(n *html.Node, sections *[]string) {
		if n.Type == html.ElementNode {
			if r := attr(n, "data-region"); r != "" {
				var inner []string
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					walk(c, &inner)
				}
				lines = append(lines, r+": "+strings.Join(inner, " "))
				return
			}
			if s := attr(n, "data-section"); s != "" && sections != nil {
				*sections = append(*sections, s)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, sections)
		}
	}
	walk(doc, nil)
	return strings.Join(lines, "\n"), nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
