package render

import (
	"strconv"
	"strings"

	"resumeforge/internal/types"
)

type blockKind int

const (
	blockParagraph blockKind = iota
	blockEntry
	blockBullet
	blockRow
	blockBreak
)

// block is one printable unit. Entries print Strong in bold followed by
// Text; rows are two-column cells Strong | Text. A break is an empty
// paragraph that keeps consecutive entries apart.
type block struct {
	kind   blockKind
	strong string
	text   string
	number int
}

type section struct {
	id     string
	title  string
	blocks []block
}

// document is the format-neutral layout every renderer draws.
type document struct {
	tpl      Template
	name     string
	contact  string
	sections []section
}

const openEnded = "Atual"

func buildDocument(data types.ResumeData, tpl Template) document {
	doc := document{
		tpl:     tpl,
		name:    data.Contact.FullName,
		contact: contactLine(data.Contact),
	}
	for _, id := range tpl.Order {
		var blocks []block
		switch id {
		case SectionSummary:
			if s := types.Deref(data.ProfessionalSummary); s != "" {
				blocks = []block{{kind: blockParagraph, text: s}}
			}
		case SectionExperience:
			blocks = experienceBlocks(data.Experiences, tpl)
		case SectionEducation:
			blocks = educationBlocks(data.Educations, tpl)
		case SectionSkills:
			if len(data.Skills) > 0 {
				blocks = []block{{kind: blockParagraph, text: strings.Join(data.Skills, tpl.SkillSeparator)}}
			}
		case SectionProjects:
			blocks = projectBlocks(data.Projects)
		}
		if len(blocks) > 0 {
			doc.sections = append(doc.sections, section{id: id, title: tpl.Headings.title(id), blocks: blocks})
		}
	}
	return doc
}

func contactLine(c types.ContactInfo) string {
	var parts []string
	for _, p := range []*string{c.Email, c.Phone, c.Location, c.LinkedIn, c.Website} {
		if v := types.Deref(p); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " | ")
}

func timeframe(start, end *string) string {
	endText := types.Deref(end)
	if endText == "" {
		endText = openEnded
	}
	return types.Deref(start) + " - " + endText
}

// experienceBlocks writes stacked entries as "Company - Role (dates)" headers
// followed by the summary and highlights; the grid layout keys each row on
// the role joined to the company with the template separator.
func experienceBlocks(items []types.ExperienceItem, tpl Template) []block {
	var blocks []block
	for _, exp := range items {
		hasDates := exp.StartDate != nil || exp.EndDate != nil

		if tpl.Layout == LayoutGrid {
			key := exp.Role
			if c := types.Deref(exp.Company); c != "" {
				key += tpl.CompanySeparator + c
			}
			frame := timeframe(exp.StartDate, exp.EndDate)
			details := strings.Join(exp.Highlights, "; ")
			if details == "" {
				details = frame
			}
			blocks = append(blocks, block{kind: blockRow, strong: key, text: frame + " | " + details})
			continue
		}

		if len(blocks) > 0 {
			blocks = append(blocks, block{kind: blockBreak})
		}
		header := exp.Role
		if c := types.Deref(exp.Company); c != "" {
			header = c + " - " + exp.Role
		}
		var dates string
		if hasDates {
			dates = " (" + timeframe(exp.StartDate, exp.EndDate) + ")"
		}
		blocks = append(blocks, block{kind: blockEntry, strong: header, text: dates})
		if s := types.Deref(exp.Summary); s != "" {
			blocks = append(blocks, block{kind: blockParagraph, text: s})
		}
		for i, h := range exp.Highlights {
			b := block{kind: blockBullet, text: h}
			if tpl.NumberedHighlights {
				b.number = i + 1
			}
			blocks = append(blocks, b)
		}
	}
	return blocks
}

func educationBlocks(items []types.EducationItem, tpl Template) []block {
	var blocks []block
	for _, edu := range items {
		if tpl.Layout == LayoutGrid {
			details := types.Deref(edu.Institution)
			if s := types.Deref(edu.Summary); s != "" {
				details += " | " + s
			}
			blocks = append(blocks, block{kind: blockRow, strong: edu.Degree, text: details})
			continue
		}

		var rest strings.Builder
		if inst := types.Deref(edu.Institution); inst != "" {
			rest.WriteString(" - " + inst)
		}
		if edu.StartDate != nil || edu.EndDate != nil {
			rest.WriteString(" [" + timeframe(edu.StartDate, edu.EndDate) + "]")
		}
		if s := types.Deref(edu.Summary); s != "" {
			rest.WriteString(" (" + s + ")")
		}
		blocks = append(blocks, block{kind: blockEntry, strong: edu.Degree, text: rest.String()})
	}
	return blocks
}

func projectBlocks(items []types.ProjectItem) []block {
	var blocks []block
	for _, p := range items {
		var rest strings.Builder
		if link := types.Deref(p.Link); link != "" {
			rest.WriteString(" - " + link)
		}
		if d := types.Deref(p.Description); d != "" {
			rest.WriteString(": " + d)
		}
		blocks = append(blocks, block{kind: blockEntry, strong: p.Name, text: rest.String()})
	}
	return blocks
}

// plain is the block as a single line of text.
func (b block) plain() string {
	switch b.kind {
	case blockEntry:
		return b.strong + b.text
	case blockBullet:
		return b.marker() + b.text
	case blockRow:
		return b.strong + ": " + b.text
	}
	return b.text
}

func (b block) marker() string {
	if b.number > 0 {
		return strconv.Itoa(b.number) + ". "
	}
	return "- "
}
