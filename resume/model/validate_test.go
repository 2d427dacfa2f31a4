package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCustomizationRanges(t *testing.T) {
	require.NoError(t, ValidateCustomization(DefaultCustomization()))
	require.NoError(t, ValidateCustomization(Customization{}))
	require.NoError(t, ValidateCustomization(Customization{Spacing: SpacingOf(0)}))

	tests := []struct {
		name  string
		c     Customization
		field string
	}{
		{name: "font too small", c: Customization{FontSize: 11}, field: "fontSize"},
		{name: "font too large", c: Customization{FontSize: 19}, field: "fontSize"},
		{name: "spacing too large", c: Customization{Spacing: SpacingOf(41)}, field: "spacing"},
		{name: "line height low", c: Customization{LineHeight: 1.2}, field: "lineHeight"},
		{name: "margins high", c: Customization{Margins: 61}, field: "margins"},
		{name: "short color", c: Customization{PrimaryColor: "#FFF"}, field: "primaryColor"},
		{name: "named color", c: Customization{AccentColor: "blue"}, field: "accentColor"},
		{name: "photo style", c: Customization{PhotoStyle: "hexagon"}, field: "photoStyle"},
		{name: "layout", c: Customization{Layout: "zigzag"}, field: "layout"},
		{name: "section order", c: Customization{SectionOrder: []string{"hobbies"}}, field: "sectionOrder[0]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCustomization(tt.c)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalid))
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			require.NotEmpty(t, verr.Fields)
			assert.Equal(t, tt.field, verr.Fields[0].Field)
		})
	}
}

func TestValidateCustomizationAcceptsLegacyLayout(t *testing.T) {
	assert.NoError(t, ValidateCustomization(Customization{Layout: "portfolio-style"}))
}

func TestValidateContent(t *testing.T) {
	c := Content{
		Personal: Personal{FullName: "Jane Doe", Email: "jane@example.com"},
		Sections: Sections{
			Experience: []Experience{{ID: "e1", StartDate: "2020-01", EndDate: "Present"}},
			SkillsWithProficiency: []SkillWithProficiency{
				{ID: "s1", Name: "Go", Category: SkillTechnical, Proficiency: 5},
			},
		},
	}
	require.NoError(t, ValidateContent(c))

	bad := c
	bad.Experience = []Experience{{ID: "e1", StartDate: "Jan 2020"}}
	assert.ErrorIs(t, ValidateContent(bad), ErrInvalid)

	bad = c
	bad.SkillsWithProficiency = []SkillWithProficiency{{ID: "s1", Name: "Go", Category: SkillTool, Proficiency: 6}}
	assert.ErrorIs(t, ValidateContent(bad), ErrInvalid)

	bad = c
	bad.Projects = []Project{{ID: "p1"}, {ID: "p1"}}
	err := ValidateContent(bad)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "unique_id", verr.Fields[0].Rule)
}

func TestNormalizeAssignsIDsAndSkillDefaults(t *testing.T) {
	c := Content{Sections: Sections{
		Experience:            []Experience{{ID: "keep"}, {}},
		SkillsWithProficiency: []SkillWithProficiency{{Name: "SQL"}},
	}}
	c.Normalize()
	assert.Equal(t, "keep", c.Experience[0].ID)
	assert.NotEmpty(t, c.Experience[1].ID)
	assert.Equal(t, SkillTechnical, c.SkillsWithProficiency[0].Category)
	assert.Equal(t, DefaultProficiency, c.SkillsWithProficiency[0].Proficiency)
	assert.NoError(t, ValidateContent(c))
}
