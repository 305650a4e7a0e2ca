package types

// ContactInfo holds the candidate's identification and contact channels.
// Optional fields are nil when no pattern matched.
type ContactInfo struct {
	FullName string  `json:"full_name" yaml:"full_name"`
	Email    *string `json:"email" yaml:"email,omitempty"`
	Phone    *string `json:"phone" yaml:"phone,omitempty"`
	Location *string `json:"location" yaml:"location,omitempty"`
	Website  *string `json:"website" yaml:"website,omitempty"`
	LinkedIn *string `json:"linkedin" yaml:"linkedin,omitempty"`
}

// ExperienceItem represents one work experience block
type ExperienceItem struct {
	Role       string   `json:"role" yaml:"role"`
	Company    *string  `json:"company" yaml:"company,omitempty"`
	StartDate  *string  `json:"start_date" yaml:"start_date,omitempty"` // free text, never parsed
	EndDate    *string  `json:"end_date" yaml:"end_date,omitempty"`
	Summary    *string  `json:"summary" yaml:"summary,omitempty"`
	Highlights []string `json:"highlights" yaml:"highlights"`
}

// EducationItem represents one education line
type EducationItem struct {
	Degree      string  `json:"degree" yaml:"degree"`
	Institution *string `json:"institution" yaml:"institution,omitempty"`
	StartDate   *string `json:"start_date" yaml:"start_date,omitempty"`
	EndDate     *string `json:"end_date" yaml:"end_date,omitempty"`
	Summary     *string `json:"summary" yaml:"summary,omitempty"`
}

// ProjectItem represents one project line
type ProjectItem struct {
	Name        string  `json:"name" yaml:"name"`
	Description *string `json:"description" yaml:"description,omitempty"`
	Link        *string `json:"link" yaml:"link,omitempty"`
}

// ResumeData is the structured résumé produced by one parse call
type ResumeData struct {
	Contact             ContactInfo      `json:"contact" yaml:"contact"`
	ProfessionalSummary *string          `json:"professional_summary" yaml:"professional_summary,omitempty"`
	Experiences         []ExperienceItem `json:"experiences" yaml:"experiences"`
	Educations          []EducationItem  `json:"educations" yaml:"educations"`
	Skills              []string         `json:"skills" yaml:"skills"`
	Projects            []ProjectItem    `json:"projects" yaml:"projects"`
}

// TemplateMetadata describes one entry of the template catalog
type TemplateMetadata struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description" yaml:"description"`
	Tags        []string `json:"tags" yaml:"tags"`
}

// TemplateList is the output of the templates listing
type TemplateList struct {
	Templates []TemplateMetadata `json:"templates" yaml:"templates"`
}

// RenderRequest asks for a résumé to be rendered with a catalog template
type RenderRequest struct {
	TemplateID string     `json:"template_id"`
	Format     string     `json:"format"`
	Resume     ResumeData `json:"resume"`
}

// EnsureLists replaces nil collections with empty ones so callers never
// observe a null list.
func (r *ResumeData) EnsureLists() {
	if r.Experiences == nil {
		r.Experiences = []ExperienceItem{}
	}
	if r.Educations == nil {
		r.Educations = []EducationItem{}
	}
	if r.Skills == nil {
		r.Skills = []string{}
	}
	if r.Projects == nil {
		r.Projects = []ProjectItem{}
	}
	for i := range r.Experiences {
		if r.Experiences[i].Highlights == nil {
			r.Experiences[i].Highlights = []string{}
		}
	}
}

// StringPtr returns a pointer to s, or nil when s is empty.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Deref returns the pointed-to string or "".
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
