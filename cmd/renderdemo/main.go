package main

// Render a sample resume with a built-in template:
//   go run ./cmd/renderdemo -template modern -out ./out

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"resume-builder/internal/templates"
	"resume-builder/resume/model"
	"resume-builder/resume/render"
)

func main() {
	outDir := flag.String("out", "./out", "output directory")
	templateID := flag.String("template", "modern", "built-in template id")
	flag.Parse()

	tmpl, ok := builtin(*templateID)
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown template %q\n", *templateID)
		os.Exit(1)
	}

	content := sampleContent()
	tree := render.Resolve(content, model.DefaultCustomization(), tmpl, render.Options{Title: "Backend Engineer"})

	docxBytes, err := render.RenderDOCX(tree)
	if err != nil {
		fmt.Fprintf(os.Stderr, "render docx failed: %v\n", err)
		os.Exit(1)
	}
	markup, css, err := render.RenderHTML(tree)
	if err != nil {
		fmt.Fprintf(os.Stderr, "render html failed: %v\n", err)
		os.Exit(1)
	}

	base := render.FileName(content.Personal.FullName, tree.Title, "")
	if err := writeOutputs(*outDir, base, tree, docxBytes, render.Document(markup, css)); err != nil {
		fmt.Fprintf(os.Stderr, "write failed: %v\n", err)
		os.Exit(1)
	}

	if err := validateParity(docxBytes, markup); err != nil {
		fmt.Fprintf(os.Stderr, "render validation failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("OK: wrote %s.{docx,html,json} to %s\n", base, *outDir)
}

func builtin(id string) (model.Template, bool) {
	for _, t := range templates.Builtins() {
		if t.ID == id {
			return t, true
		}
	}
	return model.Template{}, false
}

func writeOutputs(dir, base string, tree render.LayoutTree, docxBytes []byte, html string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, base+".docx"), docxBytes, 0o644); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, base+".html"), []byte(html), 0o644); err != nil {
		return err
	}
	payload, err := json.MarshalIndent(tree, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, base+".json"), payload, 0o644)
}

// validateParity checks both renderings walk the same section outline.
func validateParity(docxBytes []byte, markup string) error {
	docxOutline, err := render.DOCXStructure(docxBytes)
	if err != nil {
		return fmt.Errorf("docx structure: %w", err)
	}
	htmlOutline, err := render.HTMLStructure(markup)
	if err != nil {
		return fmt.Errorf("html structure: %w", err)
	}
	if docxOutline != htmlOutline {
		return fmt.Errorf("outlines differ:\ndocx:\n%s\nhtml:\n%s", docxOutline, htmlOutline)
	}
	return nil
}

func sampleContent() model.Content {
	c := model.Content{
		Personal: model.Personal{
			FullName: "Jordan Lee",
			Email:    "jordan.lee@example.com",
			Phone:    "+1-555-0102",
			Location: "Austin, TX",
			LinkedIn: "https://www.linkedin.com/in/jordanlee",
			Website:  "https://github.com/jordanlee",
			Summary:  "Backend engineer with 8+ years of experience building resilient APIs and data services.",
		},
	}
	c.Experience = []model.Experience{
		{
			ID:        "exp_1",
			JobTitle:  "Senior Backend Engineer",
			Company:   "Acme Logistics",
			Location:  "Austin, TX",
			StartDate: "2021-04",
			Current:   true,
			Achievements: []string{
				"Designed a routing service that reduced shipment latency.",
				"Implemented distributed tracing across 40 services.",
			},
			Metrics: []model.Metric{{Type: "percentage", Value: "18", Description: "lower shipment latency"}},
		},
		{
			ID:          "exp_2",
			JobTitle:    "Backend Engineer",
			Company:     "Blue Harbor Systems",
			Location:    "Seattle, WA",
			StartDate:   "2018-01",
			EndDate:     "2021-03",
			Description: "Built event-driven ingestion pipelines for compliance data feeds.",
		},
	}
	c.Education = []model.Education{
		{ID: "edu_1", Degree: "B.S. Computer Science", School: "University of Texas", EndDate: "2017"},
	}
	c.SkillsWithProficiency = []model.SkillWithProficiency{
		{ID: "s1", Name: "Go", Category: model.SkillTechnical, Proficiency: 5},
		{ID: "s2", Name: "PostgreSQL", Category: model.SkillTechnical, Proficiency: 4},
		{ID: "s3", Name: "Terraform", Category: model.SkillTool, Proficiency: 3},
		{ID: "s4", Name: "Mentoring", Category: model.SkillSoft, Proficiency: 4},
	}
	c.Projects = []model.Project{
		{ID: "p1", Name: "Open telemetry exporter", Technologies: "Go, gRPC", Link: "https://github.com/jordanlee/otel-exporter"},
	}
	return c
}
