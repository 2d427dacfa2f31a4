package model

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Hard-coded fallbacks applied when neither customization nor template set a value.
const (
	DefaultFont         = "Inter"
	DefaultFontSize     = 14
	DefaultPrimaryColor = "#3B82F6"
	DefaultAccentColor  = "#1E40AF"
	DefaultColorScheme  = "blue"
	DefaultSpacing      = 20
	DefaultLineHeight   = 1.6
	DefaultMargins      = 40
	DefaultPhotoStyle   = "circle"
	DefaultPhotoPos     = "header"
)

// Customization holds presentation parameters. Zero values mean "unset" so that
// template defaults can apply during layout resolution. Spacing is a pointer
// because 0 is a valid explicit spacing.
type Customization struct {
	Font          string   `json:"font,omitempty"`
	FontSize      FontSize `json:"fontSize,omitempty" validate:"omitempty,min=12,max=18"`
	PrimaryColor  string   `json:"primaryColor,omitempty" validate:"omitempty,hexcolor6"`
	AccentColor   string   `json:"accentColor,omitempty" validate:"omitempty,hexcolor6"`
	ColorScheme   string   `json:"colorScheme,omitempty" validate:"omitempty,oneof=blue purple green red orange teal pink gray"`
	Spacing       *Spacing `json:"spacing,omitempty" validate:"omitempty,min=0,max=40"`
	LineHeight    float64  `json:"lineHeight,omitempty" validate:"omitempty,min=1.3,max=2"`
	Margins       int      `json:"margins,omitempty" validate:"omitempty,min=10,max=60"`
	PhotoStyle    string   `json:"photoStyle,omitempty" validate:"omitempty,oneof=circle rounded square"`
	PhotoPosition string   `json:"photoPosition,omitempty" validate:"omitempty,oneof=header sidebar"`
	Layout        string   `json:"layout,omitempty" validate:"omitempty,layout"`
	SectionOrder  []string `json:"sectionOrder,omitempty" validate:"omitempty,dive,section"`
}

// DefaultCustomization returns the customization new documents start from in the editor.
func DefaultCustomization() Customization {
	return Customization{
		Font:          DefaultFont,
		FontSize:      DefaultFontSize,
		PrimaryColor:  DefaultPrimaryColor,
		AccentColor:   DefaultAccentColor,
		ColorScheme:   DefaultColorScheme,
		Spacing:       SpacingOf(DefaultSpacing),
		LineHeight:    DefaultLineHeight,
		Margins:       DefaultMargins,
		PhotoStyle:    DefaultPhotoStyle,
		PhotoPosition: DefaultPhotoPos,
	}
}

// Merge overlays the set fields of patch onto c.
func (c Customization) Merge(patch Customization) Customization {
	if patch.Font != "" {
		c.Font = patch.Font
	}
	if patch.FontSize != 0 {
		c.FontSize = patch.FontSize
	}
	if patch.PrimaryColor != "" {
		c.PrimaryColor = patch.PrimaryColor
	}
	if patch.AccentColor != "" {
		c.AccentColor = patch.AccentColor
	}
	if patch.ColorScheme != "" {
		c.ColorScheme = patch.ColorScheme
	}
	if patch.Spacing != nil {
		c.Spacing = SpacingOf(int(*patch.Spacing))
	}
	if patch.LineHeight != 0 {
		c.LineHeight = patch.LineHeight
	}
	if patch.Margins != 0 {
		c.Margins = patch.Margins
	}
	if patch.PhotoStyle != "" {
		c.PhotoStyle = patch.PhotoStyle
	}
	if patch.PhotoPosition != "" {
		c.PhotoPosition = patch.PhotoPosition
	}
	if patch.Layout != "" {
		c.Layout = patch.Layout
	}
	if patch.SectionOrder != nil {
		c.SectionOrder = append([]string(nil), patch.SectionOrder...)
	}
	return c
}

// FontSize is a numeric body size. Documents written before the numeric scale
// stored small, medium or large; those decode to 12, 14 and 16.
type FontSize int

// UnmarshalJSON accepts a number, a numeric string or a legacy size name.
func (f *FontSize) UnmarshalJSON(data []byte) error {
	v, err := decodeFlexible(data)
	if err != nil {
		return err
	}
	*f = FontSize(NormalizeFontSize(v))
	return nil
}

// Spacing is a numeric spacing value. Legacy documents stored compact, normal or
// relaxed; those decode to 15, 20 and 25.
type Spacing int

// SpacingOf returns an explicitly set spacing.
func SpacingOf(n int) *Spacing {
	s := Spacing(n)
	return &s
}

// Value reports the spacing, or def when it is unset.
func (s *Spacing) Value(def int) int {
	if s == nil {
		return def
	}
	return int(*s)
}

// UnmarshalJSON accepts a number, a numeric string or a legacy spacing name.
func (s *Spacing) UnmarshalJSON(data []byte) error {
	v, err := decodeFlexible(data)
	if err != nil {
		return err
	}
	*s = Spacing(NormalizeSpacing(v))
	return nil
}

// NormalizeFontSize maps a stored font size of any historical shape to a number.
// nil stays unset; unknown names fall back to the default body size.
func NormalizeFontSize(raw any) int {
	switch v := raw.(type) {
	case nil:
		return 0
	case float64:
		return int(math.Round(v))
	case int:
		return v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "":
			return 0
		case "small":
			return 12
		case "medium":
			return 14
		case "large":
			return 16
		}
		if n, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return int(math.Round(n))
		}
	}
	return DefaultFontSize
}

// NormalizeSpacing maps a stored spacing of any historical shape to a number.
// Names it does not know, including the empty string, fall back to the default.
func NormalizeSpacing(raw any) int {
	switch v := raw.(type) {
	case nil:
		return DefaultSpacing
	case float64:
		return int(math.Round(v))
	case int:
		return v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "compact":
			return 15
		case "normal":
			return 20
		case "relaxed":
			return 25
		}
		if n, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return int(math.Round(n))
		}
	}
	return DefaultSpacing
}

func decodeFlexible(data []byte) (any, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}
