package render

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"resume-builder/resume/model"
)

func sampleContent() model.Content {
	c := model.Content{
		Personal: model.Personal{
			FullName: "Ada Lovelace",
			Email:    "ada@example.com",
			Phone:    "+44 20 0000",
			Location: "London",
			Summary:  "Analyst of engines.",
		},
	}
	c.Experience = []model.Experience{
		{ID: "e1", JobTitle: "Engineer", Company: "Analytical Co", StartDate: "1842-01", Current: true,
			Achievements: []string{"Wrote the first program"},
			Metrics:      []model.Metric{{Type: "percentage", Value: "40", Description: "faster"}}},
		{ID: "e2", JobTitle: "Translator", Company: "Taylor", StartDate: "1840", EndDate: "1842"},
	}
	c.Education = []model.Education{{ID: "ed1", Degree: "Mathematics", School: "Home", GPA: "4.0"}}
	c.SkillsWithProficiency = []model.SkillWithProficiency{
		{ID: "s1", Name: "Mathematics", Category: model.SkillTechnical, Proficiency: 5},
		{ID: "s2", Name: "Writing", Category: model.SkillSoft, Proficiency: 4},
		{ID: "s3", Name: "French", Category: model.SkillLanguage, Proficiency: 3},
	}
	c.Projects = []model.Project{{ID: "p1", Name: "Notes", Technologies: "Bernoulli numbers"}}
	c.Certificates = []model.Certificate{{ID: "c1", Name: "Royal Society", Date: "1843"}}
	return c
}

func twoColumnTemplate() model.Template {
	return model.Template{
		ID:   "modern",
		Name: "Modern",
		Layout: model.TemplateLayout{
			Type:    string(model.LayoutTwoColumn),
			Columns: model.Columns{Count: 2, Widths: []string{"35%", "65%"}},
		},
		Typography: model.Typography{FontFamily: "Georgia", HeadingFont: "Playfair Display"},
	}
}

func readGolden(t *testing.T, name string) string {
	t.Helper()
	raw, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("read golden %s: %v", name, err)
	}
	return strings.ReplaceAll(string(raw), "\r\n", "\n")
}
