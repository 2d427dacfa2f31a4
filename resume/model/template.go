package model

// Template is a read-only layout and style preset referenced by documents.
type Template struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Category    string           `json:"category,omitempty"`
	Color       string           `json:"color,omitempty"`
	Gradient    string           `json:"gradient,omitempty"`
	Layout      TemplateLayout   `json:"layout"`
	Sections    TemplateSections `json:"sections"`
	Typography  Typography       `json:"typography"`
	Colors      Palette          `json:"colors"`
	Features    Features         `json:"features"`
	PhotoConfig PhotoConfig      `json:"photoConfig"`
	IsPremium   bool             `json:"isPremium,omitempty"`
}

// TemplateLayout declares the default variant and column geometry.
type TemplateLayout struct {
	Type    string  `json:"type"`
	Columns Columns `json:"columns"`
}

// Columns is the column geometry for multi-column variants.
type Columns struct {
	Count  int      `json:"count,omitempty"`
	Widths []string `json:"widths,omitempty"`
	Gap    string   `json:"gap,omitempty"`
}

// TemplateSections declares default order, visibility and placement of sections.
type TemplateSections struct {
	Order   []string                 `json:"order,omitempty"`
	Visible map[string]bool          `json:"visible,omitempty"`
	Config  map[string]SectionConfig `json:"config,omitempty"`
}

// IsVisible reports whether a section renders. Sections without an entry are visible.
func (s TemplateSections) IsVisible(name string) bool {
	if v, ok := s.Visible[name]; ok {
		return v
	}
	return true
}

// SectionConfig places a section inside multi-region variants.
type SectionConfig struct {
	Position string `json:"position,omitempty"`
}

// Typography carries the template's font defaults.
type Typography struct {
	FontFamily  string `json:"fontFamily,omitempty"`
	HeadingFont string `json:"headingFont,omitempty"`
	BaseSize    int    `json:"baseSize,omitempty"`
}

// Palette is a named color set.
type Palette struct {
	Primary    string `json:"primary,omitempty"`
	Secondary  string `json:"secondary,omitempty"`
	Text       string `json:"text,omitempty"`
	TextLight  string `json:"textLight,omitempty"`
	Background string `json:"background,omitempty"`
	SidebarBg  string `json:"sidebarBg,omitempty"`
}

// Features are template capability flags.
type Features struct {
	HasPhoto    bool `json:"hasPhoto"`
	HasIcons    bool `json:"hasIcons"`
	ATSFriendly bool `json:"atsFriendly"`
	MultiPage   bool `json:"multiPage"`
}

// PhotoConfig is the template's default photo presentation.
type PhotoConfig struct {
	Style    string `json:"style,omitempty"`
	Position string `json:"position,omitempty"`
	Size     int    `json:"size,omitempty"`
}

// DefaultTemplate is used whenever a document has no template or its template
// no longer resolves.
func DefaultTemplate() Template {
	return Template{
		ID:       "default",
		Name:     "Classic",
		Category: "professional",
		Color:    DefaultPrimaryColor,
		Layout:   TemplateLayout{Type: string(LayoutSingleColumn)},
		Sections: TemplateSections{
			Order: append([]string(nil), CanonicalSections...),
		},
		Typography: Typography{FontFamily: DefaultFont, BaseSize: DefaultFontSize},
		Colors: Palette{
			Primary:    DefaultPrimaryColor,
			Secondary:  DefaultAccentColor,
			Text:       "#111827",
			TextLight:  "#6B7280",
			Background: "#FFFFFF",
			SidebarBg:  "#F3F4F6",
		},
		Features:    Features{HasPhoto: true, ATSFriendly: true},
		PhotoConfig: PhotoConfig{Style: DefaultPhotoStyle, Position: DefaultPhotoPos},
	}
}
