package render

import (
	"fmt"
	"strings"

	"resume-builder/resume/model"
)

var sectionHeadings = map[string]string{
	model.SectionSummary:      "Professional Summary",
	model.SectionExperience:   "Experience",
	model.SectionEducation:    "Education",
	model.SectionSkills:       "Skills",
	model.SectionProjects:     "Projects",
	model.SectionCertificates: "Certificates",
	model.SectionActivities:   "Activities",
}

// Heading returns the display heading for a section.
func Heading(section string) string {
	return sectionHeadings[section]
}

func buildBlock(section string, c model.Content, theme Theme) Block {
	b := Block{Section: section, Heading: sectionHeadings[section]}
	switch section {
	case model.SectionPersonal:
		p := c.Personal
		contact := &Contact{
			Name:     firstNonEmpty(p.FullName, "Your Name"),
			Email:    p.Email,
			Phone:    p.Phone,
			Location: p.Location,
			LinkedIn: p.LinkedIn,
			Website:  p.Website,
			Links:    p.Links,
		}
		if theme.ShowPhoto {
			contact.Photo = p.Photo
		}
		b.Contact = contact
	case model.SectionSummary:
		b.Items = []Item{{Body: strings.TrimSpace(c.Personal.Summary)}}
	case model.SectionExperience:
		for _, e := range c.Experience {
			end := e.EndDate
			if e.Current {
				end = "Present"
			}
			bullets := append([]string(nil), nonEmpty(e.Achievements)...)
			for _, m := range e.Metrics {
				if s := formatMetric(m); s != "" {
					bullets = append(bullets, s)
				}
			}
			b.Items = append(b.Items, Item{
				ID:       e.ID,
				Title:    e.JobTitle,
				Subtitle: e.Company,
				Meta:     joinMeta(e.Location, dateRange(e.StartDate, end)),
				Body:     e.Description,
				Bullets:  bullets,
			})
		}
	case model.SectionEducation:
		for _, e := range c.Education {
			item := Item{
				ID:       e.ID,
				Title:    e.Degree,
				Subtitle: e.School,
				Meta:     joinMeta(e.Location, dateRange(e.StartDate, e.EndDate)),
				Body:     e.Description,
			}
			if strings.TrimSpace(e.GPA) != "" {
				item.Bullets = []string{"GPA: " + strings.TrimSpace(e.GPA)}
			}
			b.Items = append(b.Items, item)
		}
	case model.SectionSkills:
		b.Items = skillItems(c)
	case model.SectionProjects:
		for _, p := range c.Projects {
			b.Items = append(b.Items, Item{
				ID:       p.ID,
				Title:    p.Name,
				Subtitle: p.Technologies,
				Meta:     dateRange(p.StartDate, p.EndDate),
				Body:     p.Description,
				Link:     p.Link,
			})
		}
	case model.SectionCertificates:
		for _, cert := range c.Certificates {
			b.Items = append(b.Items, Item{
				ID:       cert.ID,
				Title:    cert.Name,
				Subtitle: cert.Issuer,
				Meta:     cert.Date,
				Body:     cert.Description,
				Link:     cert.Link,
			})
		}
	case model.SectionActivities:
		for _, a := range c.Activities {
			b.Items = append(b.Items, Item{
				ID:       a.ID,
				Title:    a.Title,
				Subtitle: a.Organization,
				Meta:     dateRange(a.StartDate, a.EndDate),
				Body:     a.Description,
			})
		}
	}
	return b
}

// skillItems prefers rated skills; legacy groups render as one item per group.
func skillItems(c model.Content) []Item {
	var out []Item
	if len(c.SkillsWithProficiency) > 0 {
		for _, s := range c.SkillsWithProficiency {
			out = append(out, Item{ID: s.ID, Title: s.Name, Subtitle: s.Category, Level: s.Proficiency})
		}
		return out
	}
	groups := []struct {
		title  string
		values []string
	}{
		{"Technical", c.Skills.Technical},
		{"Soft Skills", c.Skills.Soft},
		{"Languages", c.Skills.Languages},
	}
	for _, g := range groups {
		values := nonEmpty(g.values)
		if len(values) == 0 {
			continue
		}
		out = append(out, Item{Title: g.title, Body: strings.Join(values, ", ")})
	}
	return out
}

func formatMetric(m model.Metric) string {
	value := strings.TrimSpace(m.Value)
	if value == "" {
		return ""
	}
	switch m.Type {
	case "percentage":
		if !strings.HasSuffix(value, "%") {
			value += "%"
		}
	case "currency":
		if !strings.HasPrefix(value, "$") {
			value = "$" + value
		}
	}
	if d := strings.TrimSpace(m.Description); d != "" {
		return fmt.Sprintf("%s %s", value, d)
	}
	return value
}

func dateRange(start, end string) string {
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	switch {
	case start != "" && end != "":
		return start + " – " + end
	case start != "":
		return start
	default:
		return end
	}
}

func joinMeta(parts ...string) string {
	return strings.Join(nonEmpty(parts), " | ")
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			out = append(out, s)
		}
	}
	return out
}
