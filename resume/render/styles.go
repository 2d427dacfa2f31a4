package render

import (
	"math"
	"strings"
)

// RunStyle captures the inline run formatting of a DOCX text run.
type RunStyle struct {
	Bold   bool
	Italic bool
	Size   int // half-points
	Color  string
}

// Run style keys.
const (
	styleName     = "name"
	styleHeading  = "sectionHeading"
	styleTitle    = "title"
	styleSubtitle = "subtitle"
	styleMeta     = "meta"
	styleBody     = "body"
	styleContact  = "contact"
	styleLink     = "link"
)

// StyleMap derives run formatting for each resume element from the theme so
// the document matches the HTML renderer's typography.
func StyleMap(th Theme) map[string]RunStyle {
	return map[string]RunStyle{
		styleName:     {Bold: true, Size: halfPoints(th.Sizes.Name), Color: docxColor(th.Colors.Primary)},
		styleHeading:  {Bold: true, Size: halfPoints(th.Sizes.Heading), Color: docxColor(th.Colors.Primary)},
		styleTitle:    {Bold: true, Size: halfPoints(th.Sizes.Subheading), Color: docxColor(th.Colors.Text)},
		styleSubtitle: {Size: halfPoints(th.Sizes.Large), Color: docxColor(th.Colors.Secondary)},
		styleMeta:     {Italic: true, Size: halfPoints(th.Sizes.Small), Color: docxColor(th.Colors.TextLight)},
		styleBody:     {Size: halfPoints(th.Sizes.Body), Color: docxColor(th.Colors.Text)},
		styleContact:  {Size: halfPoints(th.Sizes.Small), Color: docxColor(th.Colors.TextLight)},
		styleLink:     {Size: halfPoints(th.Sizes.Small), Color: docxColor(th.Colors.Primary)},
	}
}

// halfPoints converts CSS px to OOXML half-points (1px = 0.75pt).
func halfPoints(px int) int {
	return int(math.Round(float64(px) * 1.5))
}

// twips converts CSS px to twentieths of a point.
func twips(px float64) int {
	return int(math.Round(px * 15))
}

func docxColor(hex string) string {
	c := strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(hex), "#"))
	if len(c) != 6 {
		return "000000"
	}
	for _, r := range c {
		if !((r >= '0' && r <= '9') || (r >= 'A' && r <= 'F')) {
			return "000000"
		}
	}
	return c
}
