package render

import (
	"math"
	"strings"
	"unicode"

	"resume-builder/resume/model"
)

// Reference sizes at a 14px body; every size scales by base/14.
const referenceBody = 14

var referenceSizes = FontSizes{
	Body:       14,
	Name:       36,
	Heading:    20,
	Subheading: 17,
	Small:      13,
	Large:      16,
	XLarge:     24,
}

// Fallback palette when neither customization nor template provide a color.
const (
	fallbackText       = "#111827"
	fallbackTextLight  = "#6B7280"
	fallbackBackground = "#FFFFFF"
	fallbackSidebarBg  = "#F3F4F6"
)

var schemePrimary = map[string]string{
	"blue":   "#3B82F6",
	"purple": "#8B5CF6",
	"green":  "#10B981",
	"red":    "#EF4444",
	"orange": "#F59E0B",
	"teal":   "#14B8A6",
	"pink":   "#EC4899",
	"gray":   "#6B7280",
}

var schemeSecondary = map[string]string{
	"blue":   "#1E40AF",
	"purple": "#6D28D9",
	"green":  "#059669",
	"red":    "#DC2626",
	"orange": "#D97706",
	"teal":   "#0D9488",
	"pink":   "#DB2777",
	"gray":   "#4B5563",
}

// FontSizes are resolved typographic sizes in px.
type FontSizes struct {
	Body       int `json:"body"`
	Name       int `json:"name"`
	Heading    int `json:"heading"`
	Subheading int `json:"subheading"`
	Small      int `json:"small"`
	Large      int `json:"large"`
	XLarge     int `json:"xlarge"`
}

// ScaleFontSizes derives every size from the body size. Results round half away from zero.
func ScaleFontSizes(base int) FontSizes {
	if base <= 0 {
		base = model.DefaultFontSize
	}
	scale := func(ref int) int {
		return int(math.Round(float64(ref) * float64(base) / referenceBody))
	}
	return FontSizes{
		Body:       base,
		Name:       scale(referenceSizes.Name),
		Heading:    scale(referenceSizes.Heading),
		Subheading: scale(referenceSizes.Subheading),
		Small:      scale(referenceSizes.Small),
		Large:      scale(referenceSizes.Large),
		XLarge:     scale(referenceSizes.XLarge),
	}
}

// Theme is the fully resolved presentation of a layout tree.
type Theme struct {
	Font          string        `json:"font"`
	HeadingFont   string        `json:"headingFont"`
	Sizes         FontSizes     `json:"sizes"`
	Colors        model.Palette `json:"colors"`
	Spacing       int           `json:"spacing"`
	SpacingScale  float64       `json:"spacingScale"`
	LineHeight    float64       `json:"lineHeight"`
	Margins       int           `json:"margins"`
	PhotoStyle    string        `json:"photoStyle"`
	PhotoPosition string        `json:"photoPosition"`
	ShowPhoto     bool          `json:"showPhoto"`
}

func resolveTheme(c model.Customization, t model.Template) Theme {
	font := firstNonEmpty(sanitizeFont(c.Font), sanitizeFont(t.Typography.FontFamily), model.DefaultFont)
	headingFont := firstNonEmpty(sanitizeFont(c.Font), sanitizeFont(t.Typography.HeadingFont), font)

	base := int(c.FontSize)
	if base == 0 {
		base = t.Typography.BaseSize
	}

	spacing := c.Spacing.Value(model.DefaultSpacing)
	lineHeight := c.LineHeight
	if lineHeight == 0 {
		lineHeight = model.DefaultLineHeight
	}
	margins := c.Margins
	if margins == 0 {
		margins = model.DefaultMargins
	}

	scheme := strings.ToLower(strings.TrimSpace(c.ColorScheme))
	colors := model.Palette{
		Primary:    firstNonEmpty(c.PrimaryColor, schemePrimary[scheme], t.Colors.Primary, t.Color, model.DefaultPrimaryColor),
		Secondary:  firstNonEmpty(c.AccentColor, schemeSecondary[scheme], t.Colors.Secondary, model.DefaultAccentColor),
		Text:       firstNonEmpty(t.Colors.Text, fallbackText),
		TextLight:  firstNonEmpty(t.Colors.TextLight, fallbackTextLight),
		Background: firstNonEmpty(t.Colors.Background, fallbackBackground),
		SidebarBg:  firstNonEmpty(t.Colors.SidebarBg, fallbackSidebarBg),
	}

	return Theme{
		Font:          font,
		HeadingFont:   headingFont,
		Sizes:         ScaleFontSizes(base),
		Colors:        colors,
		Spacing:       spacing,
		SpacingScale:  float64(spacing) / float64(model.DefaultSpacing),
		LineHeight:    lineHeight,
		Margins:       margins,
		PhotoStyle:    firstNonEmpty(c.PhotoStyle, t.PhotoConfig.Style, model.DefaultPhotoStyle),
		PhotoPosition: firstNonEmpty(c.PhotoPosition, t.PhotoConfig.Position, model.DefaultPhotoPos),
		ShowPhoto:     t.Features.HasPhoto,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// sanitizeFont keeps font family names safe to embed in CSS and OOXML attributes.
func sanitizeFont(name string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '-' {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
