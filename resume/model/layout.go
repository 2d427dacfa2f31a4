package model

import "strings"

// Layout is a structural arrangement of the resume sections.
type Layout string

// Layout variants. The set is closed; anything else resolves to LayoutSingleColumn.
const (
	LayoutSingleColumn   Layout = "single-column"
	LayoutTwoColumn      Layout = "two-column"
	LayoutTwoColumnEqual Layout = "two-column-equal"
	LayoutTimeline       Layout = "timeline"
	LayoutModernBlocks   Layout = "modern-blocks"
	LayoutInfographic    Layout = "infographic"
	LayoutGrid           Layout = "grid"
)

// Layouts lists every variant.
var Layouts = []Layout{
	LayoutSingleColumn,
	LayoutTwoColumn,
	LayoutTwoColumnEqual,
	LayoutTimeline,
	LayoutModernBlocks,
	LayoutInfographic,
	LayoutGrid,
}

var layoutAliases = map[string]Layout{
	"modern":            LayoutTwoColumn,
	"academic":          LayoutSingleColumn,
	"traditional":       LayoutSingleColumn,
	"minimal":           LayoutSingleColumn,
	"creative-grid":     LayoutGrid,
	"portfolio-style":   LayoutGrid,
	"dynamic":           LayoutModernBlocks,
	"marketing-focused": LayoutInfographic,
	"data-focused":      LayoutInfographic,
}

// ParseLayout resolves a stored layout name, including legacy aliases.
// ok is false when the name is neither a variant nor an alias.
func ParseLayout(raw string) (Layout, bool) {
	name := strings.ToLower(strings.TrimSpace(raw))
	for _, l := range Layouts {
		if string(l) == name {
			return l, true
		}
	}
	if l, found := layoutAliases[name]; found {
		return l, true
	}
	return LayoutSingleColumn, false
}
