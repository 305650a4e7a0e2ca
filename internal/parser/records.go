package parser

import (
	"regexp"
	"strings"

	"resumeforge/internal/types"
)

var (
	educationSeparators = regexp.MustCompile(` - | – |,`)
	projectSeparators   = regexp.MustCompile(` - | – |:|,`)
)

// splitFragments splits a line on a separator pattern and keeps the trimmed,
// non-empty fragments.
func splitFragments(line string, separators *regexp.Regexp) []string {
	var fragments []string
	for _, part := range separators.Split(line, -1) {
		if part = strings.TrimSpace(part); part != "" {
			fragments = append(fragments, part)
		}
	}
	return fragments
}

// ExtractEducation reads one education entry per line: degree, institution,
// then everything else as summary.
func ExtractEducation(lines []string) []types.EducationItem {
	items := []types.EducationItem{}
	for _, line := range lines {
		parts := splitFragments(line, educationSeparators)
		if len(parts) == 0 {
			continue
		}
		item := types.EducationItem{Degree: parts[0]}
		if len(parts) > 1 {
			item.Institution = &parts[1]
		}
		if len(parts) > 2 {
			item.Summary = types.StringPtr(strings.Join(parts[2:], ", "))
		}
		items = append(items, item)
	}
	return items
}

// ExtractSkills splits the skills bucket. Semicolons take precedence over
// commas; without either, every line is one skill.
func ExtractSkills(lines []string) []string {
	blob := strings.Join(lines, " ")

	for _, separator := range []string{";", ","} {
		if strings.Contains(blob, separator) {
			skills := []string{}
			for _, skill := range strings.Split(blob, separator) {
				if skill = strings.TrimSpace(skill); skill != "" {
					skills = append(skills, skill)
				}
			}
			return skills
		}
	}

	skills := []string{}
	for _, line := range lines {
		if skill := stripBullet(line); skill != "" {
			skills = append(skills, skill)
		}
	}
	return skills
}

// ExtractProjects reads one project per line. The link is searched on the
// unsplit line since the separators also cut URLs apart.
func ExtractProjects(lines []string) []types.ProjectItem {
	items := []types.ProjectItem{}
	for _, line := range lines {
		parts := splitFragments(line, projectSeparators)
		if len(parts) == 0 {
			continue
		}
		item := types.ProjectItem{Name: parts[0]}
		if len(parts) > 1 {
			item.Description = types.StringPtr(strings.Join(parts[1:], ", "))
		}
		item.Link = types.StringPtr(urlPattern.FindString(line))
		items = append(items, item)
	}
	return items
}
