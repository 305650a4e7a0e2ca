package parser

import (
	"regexp"
	"strings"

	"resumeforge/internal/types"
)

var (
	dateRangePattern = regexp.MustCompile(`(?i)(\d{4}|[\p{L}\p{N}_]+\s\d{4}).*(\d{4}|presente|atual|present)`)
	dateSplitPattern = regexp.MustCompile(`-|–`)
)

// ExtractExperience turns each paragraph of the experience bucket into one
// experience entry. Blocks whose role would be empty are omitted.
func ExtractExperience(paragraphs []Paragraph) []types.ExperienceItem {
	items := []types.ExperienceItem{}
	for _, block := range paragraphs {
		if item, ok := experienceFromBlock(block); ok {
			items = append(items, item)
		}
	}
	return items
}

// experienceFromBlock splits "company - role" on the raw header first; the
// date range is searched on the same raw header and only fills the dates and
// scrubs highlight lines, so the role keeps any date text it contained.
func experienceFromBlock(block Paragraph) (types.ExperienceItem, bool) {
	if len(block) == 0 {
		return types.ExperienceItem{}, false
	}
	header := block[0]
	rest := block[1:]

	item := types.ExperienceItem{Role: header, Highlights: []string{}}
	if company, role, found := strings.Cut(header, "-"); found {
		item.Company = types.StringPtr(strings.TrimSpace(company))
		item.Role = role
	}
	item.Role = strings.TrimSpace(item.Role)
	if item.Role == "" {
		return types.ExperienceItem{}, false
	}

	if dateText := dateRangePattern.FindString(header); dateText != "" {
		item.StartDate, item.EndDate = splitDateRange(dateText)
		rest = withoutLinesContaining(rest, dateText)
	}

	for _, line := range rest {
		if highlight := stripBullet(line); highlight != "" {
			item.Highlights = append(item.Highlights, highlight)
		}
	}
	return item, true
}

// splitDateRange yields start and end only when the date text holds exactly
// one range separator.
func splitDateRange(dateText string) (*string, *string) {
	parts := dateSplitPattern.Split(dateText, -1)
	if len(parts) != 2 {
		return nil, nil
	}
	return types.StringPtr(strings.TrimSpace(parts[0])), types.StringPtr(strings.TrimSpace(parts[1]))
}

func withoutLinesContaining(lines []string, text string) []string {
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if !strings.Contains(line, text) {
			kept = append(kept, line)
		}
	}
	return kept
}

// stripBullet removes "- " bullet markers and surrounding whitespace.
func stripBullet(line string) string {
	return strings.Trim(strings.TrimSpace(line), "- ")
}
