package parser

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Section identifies a résumé bucket
type Section string

const (
	SectionHeader     Section = "header"
	SectionExperience Section = "experience"
	SectionEducation  Section = "education"
	SectionSkills     Section = "skills"
	SectionProjects   Section = "projects"
	SectionSummary    Section = "summary"
)

// AllSections lists every bucket a segmentation result holds.
var AllSections = []Section{
	SectionHeader,
	SectionExperience,
	SectionEducation,
	SectionSkills,
	SectionProjects,
	SectionSummary,
}

type sectionKeywords struct {
	section  Section
	keywords []string
}

// sectionTable is matched in declaration order; the first section with a
// matching keyword wins.
var sectionTable = []sectionKeywords{
	{SectionExperience, []string{
		"experience", "experiência", "experiencia", "work history",
		"histórico profissional", "trajetória", "carreira",
	}},
	{SectionEducation, []string{
		"education", "formação", "formacao", "formação acadêmica",
		"formacao academica", "academic", "educação", "educacao",
	}},
	{SectionSkills, []string{"skills", "competências", "competencias", "habilidades"}},
	{SectionProjects, []string{"projects", "projetos", "realizações"}},
	{SectionSummary, []string{"summary", "resumo", "resumo profissional", "perfil", "objetivo"}},
}

// Keywords returns a copy of the keyword list for a section.
func Keywords(section Section) []string {
	for _, entry := range sectionTable {
		if entry.section == section {
			return append([]string(nil), entry.keywords...)
		}
	}
	return nil
}

// DetectSection reports which section a heading line opens, if any.
func DetectSection(line string) (Section, bool) {
	normalized := strings.ToLower(norm.NFC.String(line))
	for _, entry := range sectionTable {
		for _, keyword := range entry.keywords {
			if containsWord(normalized, keyword) {
				return entry.section, true
			}
		}
	}
	return "", false
}

// containsWord reports whether word occurs in s delimited by non-word runes
// or the string ends.
func containsWord(s, word string) bool {
	for offset := 0; offset <= len(s)-len(word); {
		idx := strings.Index(s[offset:], word)
		if idx < 0 {
			return false
		}
		start := offset + idx
		end := start + len(word)

		before, _ := utf8.DecodeLastRuneInString(s[:start])
		after, _ := utf8.DecodeRuneInString(s[end:])
		if (start == 0 || !isWordRune(before)) && (end == len(s) || !isWordRune(after)) {
			return true
		}

		_, size := utf8.DecodeRuneInString(s[start:])
		offset = start + size
	}
	return false
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
}

// Sections holds the paragraphs assigned to every bucket
type Sections struct {
	buckets map[Section][]Paragraph
}

// Paragraphs returns the paragraphs of a bucket in document order.
func (s Sections) Paragraphs(section Section) []Paragraph {
	return s.buckets[section]
}

// Lines returns the flattened lines of a bucket in document order.
func (s Sections) Lines(section Section) []string {
	return Lines(s.buckets[section])
}

// Segment assigns every content line to the bucket opened by the closest
// preceding heading. Heading lines are dropped; a heading in the middle of a
// paragraph splits it.
func Segment(paragraphs []Paragraph) Sections {
	buckets := make(map[Section][]Paragraph, len(AllSections))
	for _, section := range AllSections {
		buckets[section] = []Paragraph{}
	}

	current := SectionHeader
	for _, paragraph := range paragraphs {
		var run Paragraph
		for _, line := range paragraph {
			if section, ok := DetectSection(line); ok {
				if len(run) > 0 {
					buckets[current] = append(buckets[current], run)
					run = nil
				}
				current = section
				continue
			}
			run = append(run, line)
		}
		if len(run) > 0 {
			buckets[current] = append(buckets[current], run)
		}
	}

	return Sections{buckets: buckets}
}
