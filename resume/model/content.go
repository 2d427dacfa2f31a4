package model

import (
	"strings"

	"github.com/google/uuid"
)

// Section names in canonical order.
const (
	SectionPersonal     = "personal"
	SectionSummary      = "summary"
	SectionExperience   = "experience"
	SectionEducation    = "education"
	SectionSkills       = "skills"
	SectionProjects     = "projects"
	SectionCertificates = "certificates"
	SectionActivities   = "activities"
)

// CanonicalSections lists every renderable section in default order.
var CanonicalSections = []string{
	SectionPersonal,
	SectionSummary,
	SectionExperience,
	SectionEducation,
	SectionSkills,
	SectionProjects,
	SectionCertificates,
	SectionActivities,
}

// IsSection reports whether name is a known section.
func IsSection(name string) bool {
	for _, s := range CanonicalSections {
		if s == name {
			return true
		}
	}
	return false
}

// Personal is the identifying subtree. It is the encryption boundary.
type Personal struct {
	FullName string   `json:"fullName"`
	Email    string   `json:"email" validate:"omitempty,email"`
	Phone    string   `json:"phone"`
	Location string   `json:"location"`
	LinkedIn string   `json:"linkedin"`
	Website  string   `json:"website"`
	Summary  string   `json:"summary"`
	Photo    string   `json:"photo,omitempty"`
	Links    []string `json:"links,omitempty"`
}

// IsZero reports whether no personal field carries a value.
func (p Personal) IsZero() bool {
	return p.FullName == "" && p.Email == "" && p.Phone == "" && p.Location == "" &&
		p.LinkedIn == "" && p.Website == "" && p.Summary == "" && p.Photo == "" && len(p.Links) == 0
}

// Metric quantifies an achievement.
type Metric struct {
	Type        string `json:"type" validate:"omitempty,oneof=percentage number currency time"`
	Value       string `json:"value"`
	Description string `json:"description"`
}

// Experience is a work history entry.
type Experience struct {
	ID           string   `json:"id"`
	JobTitle     string   `json:"jobTitle"`
	Company      string   `json:"company"`
	Location     string   `json:"location"`
	StartDate    string   `json:"startDate" validate:"resumedate"`
	EndDate      string   `json:"endDate" validate:"resumedate"`
	Current      bool     `json:"current"`
	Description  string   `json:"description"`
	Achievements []string `json:"achievements,omitempty"`
	Metrics      []Metric `json:"metrics,omitempty" validate:"dive"`
}

// Education is an education entry.
type Education struct {
	ID          string `json:"id"`
	Degree      string `json:"degree"`
	School      string `json:"school"`
	Location    string `json:"location"`
	StartDate   string `json:"startDate" validate:"resumedate"`
	EndDate     string `json:"endDate" validate:"resumedate"`
	GPA         string `json:"gpa"`
	Description string `json:"description"`
}

// Project is a notable project.
type Project struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Technologies string `json:"technologies"`
	Link         string `json:"link"`
	StartDate    string `json:"startDate" validate:"resumedate"`
	EndDate      string `json:"endDate" validate:"resumedate"`
}

// Certificate is a certification entry.
type Certificate struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Issuer      string `json:"issuer"`
	Date        string `json:"date" validate:"resumedate"`
	Link        string `json:"link"`
	Description string `json:"description"`
}

// Activity is a volunteering or extracurricular entry.
type Activity struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Organization string `json:"organization"`
	StartDate    string `json:"startDate" validate:"resumedate"`
	EndDate      string `json:"endDate" validate:"resumedate"`
	Description  string `json:"description"`
}

// Skills is the legacy grouped skills shape.
type Skills struct {
	Technical []string `json:"technical"`
	Soft      []string `json:"soft"`
	Languages []string `json:"languages"`
}

// IsEmpty reports whether every group is empty.
func (s Skills) IsEmpty() bool {
	return len(s.Technical) == 0 && len(s.Soft) == 0 && len(s.Languages) == 0
}

// Skill categories.
const (
	SkillTechnical = "technical"
	SkillSoft      = "soft"
	SkillLanguage  = "language"
	SkillTool      = "tool"

	DefaultProficiency = 3
)

// SkillWithProficiency is a rated skill.
type SkillWithProficiency struct {
	ID          string `json:"id"`
	Name        string `json:"name" validate:"required"`
	Category    string `json:"category" validate:"oneof=technical soft language tool"`
	Proficiency int    `json:"proficiency" validate:"min=1,max=5"`
}

// Sections holds everything outside the personal subtree. It is stored in plaintext.
type Sections struct {
	Experience            []Experience           `json:"experience" validate:"dive"`
	Education             []Education            `json:"education" validate:"dive"`
	Skills                Skills                 `json:"skills"`
	SkillsWithProficiency []SkillWithProficiency `json:"skillsWithProficiency" validate:"dive"`
	Projects              []Project              `json:"projects" validate:"dive"`
	Certificates          []Certificate          `json:"certificates" validate:"dive"`
	Activities            []Activity             `json:"activities" validate:"dive"`
}

// Content is the plaintext resume content handed to renderers and API responses.
type Content struct {
	Personal Personal `json:"personal"`
	Sections
}

// SealedContent is Content with the personal subtree replaced by ciphertext.
type SealedContent struct {
	Personal string `json:"personal"`
	Sections
}

// HasSection reports whether the named section carries any content.
func (c Content) HasSection(name string) bool {
	switch name {
	case SectionPersonal:
		return true
	case SectionSummary:
		return strings.TrimSpace(c.Personal.Summary) != ""
	case SectionExperience:
		return len(c.Experience) > 0
	case SectionEducation:
		return len(c.Education) > 0
	case SectionSkills:
		return len(c.SkillsWithProficiency) > 0 || !c.Skills.IsEmpty()
	case SectionProjects:
		return len(c.Projects) > 0
	case SectionCertificates:
		return len(c.Certificates) > 0
	case SectionActivities:
		return len(c.Activities) > 0
	}
	return false
}

// Normalize fills skill defaults and assigns identifiers to entries that arrived without one.
// Existing identifiers are never changed.
func (c *Content) Normalize() {
	for i := range c.Experience {
		ensureID(&c.Experience[i].ID)
	}
	for i := range c.Education {
		ensureID(&c.Education[i].ID)
	}
	for i := range c.Projects {
		ensureID(&c.Projects[i].ID)
	}
	for i := range c.Certificates {
		ensureID(&c.Certificates[i].ID)
	}
	for i := range c.Activities {
		ensureID(&c.Activities[i].ID)
	}
	for i := range c.SkillsWithProficiency {
		s := &c.SkillsWithProficiency[i]
		ensureID(&s.ID)
		if s.Category == "" {
			s.Category = SkillTechnical
		}
		if s.Proficiency == 0 {
			s.Proficiency = DefaultProficiency
		}
	}
}

func ensureID(id *string) {
	if strings.TrimSpace(*id) == "" {
		*id = uuid.NewString()
	}
}
