package render

import (
	_ "embed"
	"fmt"
	"regexp"
	"strconv"

	"resumeforge/internal/errors"
	"resumeforge/internal/types"

	"gopkg.in/yaml.v3"
)

//go:embed templates.yaml
var builtinTemplates []byte

// Section identifiers used in a template's order list.
const (
	SectionSummary    = "summary"
	SectionExperience = "experience"
	SectionEducation  = "education"
	SectionSkills     = "skills"
	SectionProjects   = "projects"
)

// Layouts
const (
	LayoutStacked = "stacked"
	LayoutGrid    = "grid"
)

// Headings holds the section titles a template prints.
type Headings struct {
	Summary    string `yaml:"summary"`
	Experience string `yaml:"experience"`
	Education  string `yaml:"education"`
	Skills     string `yaml:"skills"`
	Projects   string `yaml:"projects"`
}

func (h Headings) title(section string) string {
	switch section {
	case SectionSummary:
		return h.Summary
	case SectionExperience:
		return h.Experience
	case SectionEducation:
		return h.Education
	case SectionSkills:
		return h.Skills
	case SectionProjects:
		return h.Projects
	}
	return ""
}

// Template is one visual layout of the catalog.
type Template struct {
	ID                 string   `yaml:"id"`
	Name               string   `yaml:"name"`
	Description        string   `yaml:"description"`
	Tags               []string `yaml:"tags"`
	Accent             string   `yaml:"accent"`
	Font               string   `yaml:"font"`
	Layout             string   `yaml:"layout"`
	CompanySeparator   string   `yaml:"companySeparator"`
	SkillSeparator     string   `yaml:"skillSeparator"`
	NumberedHighlights bool     `yaml:"numberedHighlights"`
	Headings           Headings `yaml:"headings"`
	Order              []string `yaml:"order"`
}

// Metadata returns the public description of the template.
func (t Template) Metadata() types.TemplateMetadata {
	tags := make([]string, len(t.Tags))
	copy(tags, t.Tags)
	return types.TemplateMetadata{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		Tags:        tags,
	}
}

// AccentRGB returns the accent color as 0-255 components.
func (t Template) AccentRGB() (r, g, b uint8) {
	v, err := strconv.ParseUint(t.Accent[1:], 16, 32)
	if err != nil {
		return 0, 0, 0
	}
	return uint8(v >> 16), uint8(v >> 8), uint8(v)
}

var hexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

func (t Template) validate() error {
	if t.ID == "" || t.Name == "" {
		return fmt.Errorf("template without id or name")
	}
	if !hexColor.MatchString(t.Accent) {
		return fmt.Errorf("template %s: accent %q is not a #RRGGBB color", t.ID, t.Accent)
	}
	if t.Layout != LayoutStacked && t.Layout != LayoutGrid {
		return fmt.Errorf("template %s: unknown layout %q", t.ID, t.Layout)
	}
	for _, section := range t.Order {
		if t.Headings.title(section) == "" {
			return fmt.Errorf("template %s: no heading for section %q", t.ID, section)
		}
	}
	return nil
}

// Catalog is the read-only, ordered set of templates.
type Catalog struct {
	templates []Template
	byID      map[string]int
}

// NewCatalog loads the built-in templates.
func NewCatalog() (*Catalog, error) {
	return LoadCatalog(builtinTemplates)
}

// LoadCatalog parses a templates YAML document.
func LoadCatalog(data []byte) (*Catalog, error) {
	var doc struct {
		Templates []Template `yaml:"templates"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig, "failed to parse template catalog", err)
	}

	c := &Catalog{byID: make(map[string]int, len(doc.Templates))}
	for _, tpl := range doc.Templates {
		if err := tpl.validate(); err != nil {
			return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig, "invalid template catalog", err)
		}
		if _, dup := c.byID[tpl.ID]; dup {
			return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
				fmt.Sprintf("duplicate template id %q", tpl.ID), nil)
		}
		c.byID[tpl.ID] = len(c.templates)
		c.templates = append(c.templates, tpl)
	}
	return c, nil
}

// Get looks a template up by id.
func (c *Catalog) Get(id string) (Template, error) {
	i, ok := c.byID[id]
	if !ok {
		return Template{}, errors.NewTemplateNotFoundError(id)
	}
	return c.templates[i], nil
}

// List returns template metadata in catalog order.
func (c *Catalog) List() types.TemplateList {
	list := types.TemplateList{Templates: make([]types.TemplateMetadata, 0, len(c.templates))}
	for _, tpl := range c.templates {
		list.Templates = append(list.Templates, tpl.Metadata())
	}
	return list
}

// IDs returns the template ids in catalog order.
func (c *Catalog) IDs() []string {
	ids := make([]string, len(c.templates))
	for i, tpl := range c.templates {
		ids[i] = tpl.ID
	}
	return ids
}
