package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSections() Content {
	return Content{Sections: Sections{
		Experience:   []Experience{{ID: "a", Company: "A"}, {ID: "b", Company: "B"}, {ID: "c", Company: "C"}},
		Education:    []Education{{ID: "x"}, {ID: "y"}},
		Projects:     []Project{{ID: "p1"}, {ID: "p2"}},
		Certificates: []Certificate{{ID: "c1"}, {ID: "c2"}},
		Activities:   []Activity{{ID: "t1"}, {ID: "t2"}},
	}}
}

func TestReorderSectionIsPermutation(t *testing.T) {
	c := sampleSections()
	require.NoError(t, c.ReorderSection(SectionExperience, []string{"c", "a", "b"}))
	assert.Equal(t, []string{"c", "a", "b"}, []string{c.Experience[0].ID, c.Experience[1].ID, c.Experience[2].ID})
	assert.Equal(t, "C", c.Experience[0].Company)

	for _, section := range []string{SectionEducation, SectionProjects, SectionCertificates, SectionActivities} {
		before := sectionIDs(c, section)
		reversed := []string{before[1], before[0]}
		require.NoError(t, c.ReorderSection(section, reversed), section)
		after := sectionIDs(c, section)
		assert.ElementsMatch(t, before, after, section)
		assert.Equal(t, reversed, after, section)
	}
}

func TestReorderSectionRejectsNonPermutation(t *testing.T) {
	tests := []struct {
		name string
		ids  []string
	}{
		{name: "missing", ids: []string{"a", "b"}},
		{name: "unknown", ids: []string{"a", "b", "z"}},
		{name: "repeated", ids: []string{"a", "a", "b"}},
		{name: "extra", ids: []string{"a", "b", "c", "d"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := sampleSections()
			err := c.ReorderSection(SectionExperience, tt.ids)
			assert.ErrorIs(t, err, ErrInvalid)
			assert.Equal(t, []string{"a", "b", "c"}, sectionIDs(c, SectionExperience))
		})
	}
}

func TestReorderSectionUnknownSection(t *testing.T) {
	c := sampleSections()
	assert.ErrorIs(t, c.ReorderSection(SectionPersonal, nil), ErrInvalid)
}

func TestMove(t *testing.T) {
	got, err := Move([]string{"a", "b", "c", "d"}, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c", "a", "d"}, got)

	got, err = Move([]string{"a", "b", "c"}, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a", "b"}, got)

	_, err = Move([]string{"a"}, 0, 3)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestMoveEntryKeepsPermutation(t *testing.T) {
	c := Content{Sections: Sections{Projects: []Project{{ID: "p1"}, {ID: "p2"}, {ID: "p3"}}}}
	require.NoError(t, c.MoveEntry(SectionProjects, 2, 0))
	assert.Equal(t, []Project{{ID: "p3"}, {ID: "p1"}, {ID: "p2"}}, c.Projects)

	assert.ErrorIs(t, c.MoveEntry(SectionProjects, 0, 3), ErrInvalid)
	assert.ErrorIs(t, c.MoveEntry(SectionPersonal, 0, 0), ErrInvalid)
	assert.Len(t, c.Projects, 3)
}

func TestNormalizeSectionOrder(t *testing.T) {
	got := NormalizeSectionOrder([]string{"skills", "hobbies", "skills", "personal"})
	assert.Equal(t, []string{"skills", "personal"}, got)
}

func sectionIDs(c Content, section string) []string {
	var out []string
	switch section {
	case SectionExperience:
		for _, e := range c.Experience {
			out = append(out, e.ID)
		}
	case SectionEducation:
		for _, e := range c.Education {
			out = append(out, e.ID)
		}
	case SectionProjects:
		for _, e := range c.Projects {
			out = append(out, e.ID)
		}
	case SectionCertificates:
		for _, e := range c.Certificates {
			out = append(out, e.ID)
		}
	case SectionActivities:
		for _, e := range c.Activities {
			out = append(out, e.ID)
		}
	}
	return out
}
