package formatters

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"resumeforge/internal/types"

	"gopkg.in/yaml.v3"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	registry.RegisterFormatter("json", "any", &JSONFormatter{})
	registry.RegisterFormatter("yaml", "any", &YAMLFormatter{})
	registry.RegisterFormatter("text", "ResumeData", &ResumeTextFormatter{})
	registry.RegisterFormatter("markdown", "ResumeData", &ResumeMarkdownFormatter{})
	registry.RegisterFormatter("text", "TemplateList", &TemplateListTextFormatter{})
	registry.RegisterFormatter("markdown", "TemplateList", &TemplateListMarkdownFormatter{})

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	dataType := getDataType(data)

	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		// Fall back to generic formatter
		if formatter, exists := formatters["any"]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats, sorted
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	slices.Sort(formats)
	return formats
}

func getDataType(data any) string {
	switch data.(type) {
	case types.ResumeData:
		return "ResumeData"
	case types.TemplateList:
		return "TemplateList"
	default:
		return "any"
	}
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData) + "\n", nil
}

func (jf *JSONFormatter) SupportedType() string {
	return "any"
}

// YAMLFormatter handles YAML formatting for any data type
type YAMLFormatter struct{}

func (yf *YAMLFormatter) Format(data any) (string, error) {
	var sb strings.Builder
	encoder := yaml.NewEncoder(&sb)
	encoder.SetIndent(2)
	if err := encoder.Encode(data); err != nil {
		return "", err
	}
	if err := encoder.Close(); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func (yf *YAMLFormatter) SupportedType() string {
	return "any"
}

// ResumeTextFormatter handles plain text formatting for parsed résumés
type ResumeTextFormatter struct{}

func (rtf *ResumeTextFormatter) Format(data any) (string, error) {
	resume, ok := data.(types.ResumeData)
	if !ok {
		return "", fmt.Errorf("expected ResumeData, got %T", data)
	}

	var output strings.Builder

	output.WriteString("=== CONTACT ===\n")
	fmt.Fprintf(&output, "Name: %s\n", resume.Contact.FullName)
	writeTextField(&output, "Email", resume.Contact.Email)
	writeTextField(&output, "Phone", resume.Contact.Phone)
	writeTextField(&output, "Location", resume.Contact.Location)
	writeTextField(&output, "LinkedIn", resume.Contact.LinkedIn)
	writeTextField(&output, "Website", resume.Contact.Website)

	if resume.ProfessionalSummary != nil {
		output.WriteString("\n=== SUMMARY ===\n")
		output.WriteString(*resume.ProfessionalSummary)
		output.WriteString("\n")
	}

	if len(resume.Experiences) > 0 {
		output.WriteString("\n=== EXPERIENCE ===\n")
		for _, exp := range resume.Experiences {
			output.WriteString(exp.Role)
			if exp.Company != nil {
				fmt.Fprintf(&output, " @ %s", *exp.Company)
			}
			if period := period(exp.StartDate, exp.EndDate); period != "" {
				fmt.Fprintf(&output, " [%s]", period)
			}
			output.WriteString("\n")
			if exp.Summary != nil {
				fmt.Fprintf(&output, "  %s\n", *exp.Summary)
			}
			for _, highlight := range exp.Highlights {
				fmt.Fprintf(&output, "  - %s\n", highlight)
			}
		}
	}

	if len(resume.Educations) > 0 {
		output.WriteString("\n=== EDUCATION ===\n")
		for _, edu := range resume.Educations {
			output.WriteString(edu.Degree)
			if edu.Institution != nil {
				fmt.Fprintf(&output, " - %s", *edu.Institution)
			}
			if edu.Summary != nil {
				fmt.Fprintf(&output, " (%s)", *edu.Summary)
			}
			output.WriteString("\n")
		}
	}

	if len(resume.Skills) > 0 {
		output.WriteString("\n=== SKILLS ===\n")
		output.WriteString(strings.Join(resume.Skills, ", "))
		output.WriteString("\n")
	}

	if len(resume.Projects) > 0 {
		output.WriteString("\n=== PROJECTS ===\n")
		for _, project := range resume.Projects {
			output.WriteString(project.Name)
			if project.Description != nil {
				fmt.Fprintf(&output, ": %s", *project.Description)
			}
			if project.Link != nil {
				fmt.Fprintf(&output, " <%s>", *project.Link)
			}
			output.WriteString("\n")
		}
	}

	return output.String(), nil
}

func (rtf *ResumeTextFormatter) SupportedType() string {
	return "ResumeData"
}

// ResumeMarkdownFormatter handles markdown formatting for parsed résumés
type ResumeMarkdownFormatter struct{}

func (rmf *ResumeMarkdownFormatter) Format(data any) (string, error) {
	resume, ok := data.(types.ResumeData)
	if !ok {
		return "", fmt.Errorf("expected ResumeData, got %T", data)
	}

	var output strings.Builder

	fmt.Fprintf(&output, "# %s\n\n", resume.Contact.FullName)
	contact := []string{}
	for _, field := range []*string{resume.Contact.Email, resume.Contact.Phone, resume.Contact.Location, resume.Contact.LinkedIn, resume.Contact.Website} {
		if field != nil {
			contact = append(contact, *field)
		}
	}
	if len(contact) > 0 {
		output.WriteString(strings.Join(contact, " | "))
		output.WriteString("\n\n")
	}

	if resume.ProfessionalSummary != nil {
		output.WriteString("## Summary\n\n")
		output.WriteString(*resume.ProfessionalSummary)
		output.WriteString("\n\n")
	}

	if len(resume.Experiences) > 0 {
		output.WriteString("## Experience\n\n")
		for _, exp := range resume.Experiences {
			fmt.Fprintf(&output, "### %s", exp.Role)
			if exp.Company != nil {
				fmt.Fprintf(&output, " - %s", *exp.Company)
			}
			output.WriteString("\n\n")
			if period := period(exp.StartDate, exp.EndDate); period != "" {
				fmt.Fprintf(&output, "*%s*\n\n", period)
			}
			if exp.Summary != nil {
				fmt.Fprintf(&output, "%s\n\n", *exp.Summary)
			}
			for _, highlight := range exp.Highlights {
				fmt.Fprintf(&output, "- %s\n", highlight)
			}
			if len(exp.Highlights) > 0 {
				output.WriteString("\n")
			}
		}
	}

	if len(resume.Educations) > 0 {
		output.WriteString("## Education\n\n")
		for _, edu := range resume.Educations {
			fmt.Fprintf(&output, "- **%s**", edu.Degree)
			if edu.Institution != nil {
				fmt.Fprintf(&output, ", %s", *edu.Institution)
			}
			if edu.Summary != nil {
				fmt.Fprintf(&output, " (%s)", *edu.Summary)
			}
			output.WriteString("\n")
		}
		output.WriteString("\n")
	}

	if len(resume.Skills) > 0 {
		output.WriteString("## Skills\n\n")
		output.WriteString(strings.Join(resume.Skills, ", "))
		output.WriteString("\n\n")
	}

	if len(resume.Projects) > 0 {
		output.WriteString("## Projects\n\n")
		for _, project := range resume.Projects {
			name := project.Name
			if project.Link != nil {
				name = fmt.Sprintf("[%s](%s)", project.Name, *project.Link)
			}
			fmt.Fprintf(&output, "- **%s**", name)
			if project.Description != nil {
				fmt.Fprintf(&output, ": %s", *project.Description)
			}
			output.WriteString("\n")
		}
	}

	return strings.TrimRight(output.String(), "\n") + "\n", nil
}

func (rmf *ResumeMarkdownFormatter) SupportedType() string {
	return "ResumeData"
}

// TemplateListTextFormatter handles text formatting for the template catalog
type TemplateListTextFormatter struct{}

func (tltf *TemplateListTextFormatter) Format(data any) (string, error) {
	list, ok := data.(types.TemplateList)
	if !ok {
		return "", fmt.Errorf("expected TemplateList, got %T", data)
	}

	var output strings.Builder
	output.WriteString("=== TEMPLATES ===\n")
	for _, tpl := range list.Templates {
		fmt.Fprintf(&output, "\n%s - %s\n", tpl.ID, tpl.Name)
		fmt.Fprintf(&output, "  %s\n", tpl.Description)
		if len(tpl.Tags) > 0 {
			fmt.Fprintf(&output, "  Tags: %s\n", strings.Join(tpl.Tags, ", "))
		}
	}
	return output.String(), nil
}

func (tltf *TemplateListTextFormatter) SupportedType() string {
	return "TemplateList"
}

// TemplateListMarkdownFormatter handles markdown formatting for the template catalog
type TemplateListMarkdownFormatter struct{}

func (tlmf *TemplateListMarkdownFormatter) Format(data any) (string, error) {
	list, ok := data.(types.TemplateList)
	if !ok {
		return "", fmt.Errorf("expected TemplateList, got %T", data)
	}

	var output strings.Builder
	output.WriteString("| ID | Name | Description | Tags |\n")
	output.WriteString("|----|------|-------------|------|\n")
	for _, tpl := range list.Templates {
		fmt.Fprintf(&output, "| `%s` | %s | %s | %s |\n",
			tpl.ID, tpl.Name, tpl.Description, strings.Join(tpl.Tags, ", "))
	}
	return output.String(), nil
}

func (tlmf *TemplateListMarkdownFormatter) SupportedType() string {
	return "TemplateList"
}

func writeTextField(output *strings.Builder, label string, value *string) {
	if value != nil {
		fmt.Fprintf(output, "%s: %s\n", label, *value)
	}
}

// period joins start and end dates the way they were written
func period(start, end *string) string {
	switch {
	case start != nil && end != nil:
		return *start + " - " + *end
	case start != nil:
		return *start
	case end != nil:
		return *end
	}
	return ""
}

// Global formatter registry
var GlobalRegistry = NewFormatterRegistry()
