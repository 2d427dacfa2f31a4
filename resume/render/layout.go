package render

import (
	"fmt"
	"math"
	"strings"

	"resume-builder/resume/model"
)

// Region names.
const (
	RegionHeader   = "header"
	RegionSidebar  = "sidebar"
	RegionMain     = "main"
	RegionLeft     = "left"
	RegionRight    = "right"
	RegionTimeline = "timeline"
	RegionBlocks   = "blocks"
	RegionGrid     = "grid"
)

// Sections placed in the sidebar of a two-column layout when the template does not say.
var defaultSidebarSections = map[string]bool{
	model.SectionPersonal:     true,
	model.SectionSkills:       true,
	model.SectionCertificates: true,
}

// Options carries request-scoped inputs to Resolve.
type Options struct {
	// SectionOrder overrides every stored order when non-empty.
	SectionOrder []string
	Title        string
}

// LayoutTree is the structural result both renderers consume.
type LayoutTree struct {
	Title           string       `json:"title,omitempty"`
	Layout          model.Layout `json:"layout"`
	Theme           Theme        `json:"theme"`
	ShowSkillLevels bool         `json:"showSkillLevels"`
	Regions         []Region     `json:"regions"`
}

// Region is one structural area of a layout.
type Region struct {
	Name    string  `json:"name"`
	Width   string  `json:"width,omitempty"`
	Columns int     `json:"columns,omitempty"`
	Blocks  []Block `json:"blocks"`
}

// Block is one rendered section.
type Block struct {
	Section string   `json:"section"`
	Heading string   `json:"heading,omitempty"`
	Contact *Contact `json:"contact,omitempty"`
	Items   []Item   `json:"items,omitempty"`
}

// Contact is the personal block.
type Contact struct {
	Name     string   `json:"name"`
	Email    string   `json:"email,omitempty"`
	Phone    string   `json:"phone,omitempty"`
	Location string   `json:"location,omitempty"`
	LinkedIn string   `json:"linkedin,omitempty"`
	Website  string   `json:"website,omitempty"`
	Links    []string `json:"links,omitempty"`
	Photo    string   `json:"photo,omitempty"`
}

// Item is a single entry inside a section.
type Item struct {
	ID       string   `json:"id,omitempty"`
	Title    string   `json:"title,omitempty"`
	Subtitle string   `json:"subtitle,omitempty"`
	Meta     string   `json:"meta,omitempty"`
	Body     string   `json:"body,omitempty"`
	Link     string   `json:"link,omitempty"`
	Bullets  []string `json:"bullets,omitempty"`
	Level    int      `json:"level,omitempty"`
}

// Resolve maps content, customization and template to a layout tree. It is pure.
func Resolve(content model.Content, custom model.Customization, tmpl model.Template, opts Options) LayoutTree {
	theme := resolveTheme(custom, tmpl)
	layout := resolveLayout(custom, tmpl)

	var blocks []Block
	for _, name := range resolveOrder(opts, custom, tmpl) {
		if !tmpl.Sections.IsVisible(name) || !content.HasSection(name) {
			continue
		}
		blocks = append(blocks, buildBlock(name, content, theme))
	}

	return LayoutTree{
		Title:           opts.Title,
		Layout:          layout,
		Theme:           theme,
		ShowSkillLevels: layout == model.LayoutInfographic,
		Regions:         arrange(layout, blocks, tmpl),
	}
}

func resolveLayout(c model.Customization, t model.Template) model.Layout {
	for _, raw := range []string{c.Layout, t.Layout.Type} {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		l, _ := model.ParseLayout(raw)
		return l
	}
	return model.LayoutSingleColumn
}

// resolveOrder returns every canonical section exactly once: the override (request,
// then stored) first, then the template order, then any canonical leftovers.
func resolveOrder(opts Options, c model.Customization, t model.Template) []string {
	override := opts.SectionOrder
	if len(override) == 0 {
		override = c.SectionOrder
	}
	var order []string
	order = append(order, override...)
	order = append(order, t.Sections.Order...)
	order = append(order, model.CanonicalSections...)
	return model.NormalizeSectionOrder(order)
}

func arrange(layout model.Layout, blocks []Block, t model.Template) []Region {
	var regions []Region
	switch layout {
	case model.LayoutTwoColumn:
		sidebar, main := splitBy(blocks, func(b Block) bool { return inSidebar(b.Section, t) })
		regions = []Region{
			{Name: RegionSidebar, Width: columnWidth(t, 0, "30%"), Blocks: sidebar},
			{Name: RegionMain, Width: columnWidth(t, 1, "70%"), Blocks: main},
		}
	case model.LayoutTwoColumnEqual:
		half := int(math.Ceil(float64(len(blocks)) / 2))
		regions = []Region{
			{Name: RegionLeft, Width: "50%", Blocks: blocks[:half]},
			{Name: RegionRight, Width: "50%", Blocks: blocks[half:]},
		}
	case model.LayoutTimeline:
		header, rest := splitBy(blocks, isPersonal)
		timeline, main := splitBy(rest, func(b Block) bool {
			return b.Section == model.SectionExperience || b.Section == model.SectionEducation
		})
		regions = []Region{
			{Name: RegionHeader, Blocks: header},
			{Name: RegionTimeline, Blocks: timeline},
			{Name: RegionMain, Blocks: main},
		}
	case model.LayoutModernBlocks:
		header, rest := splitBy(blocks, isPersonal)
		regions = []Region{
			{Name: RegionHeader, Blocks: header},
			{Name: RegionBlocks, Blocks: rest},
		}
	case model.LayoutInfographic:
		header, rest := splitBy(blocks, isPersonal)
		regions = []Region{
			{Name: RegionHeader, Blocks: header},
			{Name: RegionMain, Blocks: rest},
		}
	case model.LayoutGrid:
		header, rest := splitBy(blocks, isPersonal)
		cols := t.Layout.Columns.Count
		if cols < 2 {
			cols = 2
		}
		regions = []Region{
			{Name: RegionHeader, Blocks: header},
			{Name: RegionGrid, Columns: cols, Blocks: rest},
		}
	default:
		regions = []Region{{Name: RegionMain, Blocks: blocks}}
	}

	out := regions[:0]
	for _, r := range regions {
		if len(r.Blocks) > 0 {
			out = append(out, r)
		}
	}
	return out
}

func inSidebar(section string, t model.Template) bool {
	if len(t.Sections.Config) == 0 {
		return defaultSidebarSections[section]
	}
	return t.Sections.Config[section].Position == RegionSidebar
}

func columnWidth(t model.Template, idx int, def string) string {
	if idx < len(t.Layout.Columns.Widths) {
		if w := strings.TrimSpace(t.Layout.Columns.Widths[idx]); w != "" {
			return w
		}
	}
	return def
}

func isPersonal(b Block) bool { return b.Section == model.SectionPersonal }

func splitBy(blocks []Block, pred func(Block) bool) (yes, no []Block) {
	for _, b := range blocks {
		if pred(b) {
			yes = append(yes, b)
		} else {
			no = append(no, b)
		}
	}
	return yes, no
}

// Sections lists the section names in render order across all regions.
func (t LayoutTree) Sections() []string {
	var out []string
	for _, r := range t.Regions {
		for _, b := range r.Blocks {
			out = append(out, b.Section)
		}
	}
	return out
}

// Structure is the region/section skeleton both renderers must reproduce, one
// region per line: "name: section section ...".
func (t LayoutTree) Structure() string {
	lines := make([]string, 0, len(t.Regions))
	for _, r := range t.Regions {
		names := make([]string, 0, len(r.Blocks))
		for _, b := range r.Blocks {
			names = append(names, b.Section)
		}
		lines = append(lines, r.Name+": "+strings.Join(names, " "))
	}
	return strings.Join(lines, "\n")
}

// Outline is the canonical fingerprint of a tree used by golden fixtures.
func (t LayoutTree) Outline() string {
	th := t.Theme
	var b strings.Builder
	fmt.Fprintf(&b, "layout %s\n", t.Layout)
	fmt.Fprintf(&b, "font %s heading-font %s\n", th.Font, th.HeadingFont)
	fmt.Fprintf(&b, "sizes body=%d name=%d heading=%d subheading=%d small=%d large=%d xlarge=%d\n",
		th.Sizes.Body, th.Sizes.Name, th.Sizes.Heading, th.Sizes.Subheading, th.Sizes.Small, th.Sizes.Large, th.Sizes.XLarge)
	fmt.Fprintf(&b, "colors primary=%s secondary=%s text=%s text-light=%s background=%s sidebar=%s\n",
		th.Colors.Primary, th.Colors.Secondary, th.Colors.Text, th.Colors.TextLight, th.Colors.Background, th.Colors.SidebarBg)
	fmt.Fprintf(&b, "spacing %d scale=%.2f line-height=%.2f margins=%d\n", th.Spacing, th.SpacingScale, th.LineHeight, th.Margins)
	fmt.Fprintf(&b, "photo %s %s show=%t\n", th.PhotoStyle, th.PhotoPosition, th.ShowPhoto)
	for _, r := range t.Regions {
		var geometry string
		switch {
		case r.Width != "":
			geometry = " width=" + r.Width
		case r.Columns > 0:
			geometry = fmt.Sprintf(" columns=%d", r.Columns)
		}
		fmt.Fprintf(&b, "region %s%s\n", r.Name, geometry)
		for _, blk := range r.Blocks {
			fmt.Fprintf(&b, "  %s items=%d\n", blk.Section, len(blk.Items))
		}
	}
	return b.String()
}
