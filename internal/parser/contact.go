package parser

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"resumeforge/internal/types"
)

// PlaceholderName is used when the header bucket is empty.
const PlaceholderName = "Name not identified"

var (
	emailPattern    = regexp.MustCompile(`[\p{L}\p{N}_.\-+]+@[\p{L}\p{N}_\-]+\.[\p{L}\p{N}_.\-]+`)
	phonePattern    = regexp.MustCompile(`(?:\+?\d{1,3}[\s-]?)?(?:\(?\d{2,3}\)?[\s-]?)?\d{4,5}[\s-]?\d{4}`)
	linkedinPattern = regexp.MustCompile(`(?i)linkedin\.com/\S+`)
	urlPattern      = regexp.MustCompile(`https?://\S+`)
)

// ContactOptions tunes contact extraction
type ContactOptions struct {
	// SuppressLinkedInWebsite skips LinkedIn URLs when filling the website
	// field so the two fields never capture the same profile.
	SuppressLinkedInWebsite bool
}

type contactRule struct {
	field   string
	extract func(blob string, opts ContactOptions) *string
	assign  func(c *types.ContactInfo, value *string)
}

var contactRules = []contactRule{
	{
		field:   "email",
		extract: firstMatch(emailPattern),
		assign:  func(c *types.ContactInfo, v *string) { c.Email = v },
	},
	{
		field:   "phone",
		extract: firstMatch(phonePattern),
		assign:  func(c *types.ContactInfo, v *string) { c.Phone = v },
	},
	{
		field:   "linkedin",
		extract: firstMatch(linkedinPattern),
		assign:  func(c *types.ContactInfo, v *string) { c.LinkedIn = v },
	},
	{
		field:   "website",
		extract: websiteMatch,
		assign:  func(c *types.ContactInfo, v *string) { c.Website = v },
	},
	{
		field:   "location",
		extract: lastCommaFragment,
		assign:  func(c *types.ContactInfo, v *string) { c.Location = v },
	},
}

func firstMatch(pattern *regexp.Regexp) func(string, ContactOptions) *string {
	return func(blob string, _ ContactOptions) *string {
		return types.StringPtr(pattern.FindString(blob))
	}
}

func websiteMatch(blob string, opts ContactOptions) *string {
	for _, match := range urlPattern.FindAllString(blob, -1) {
		if opts.SuppressLinkedInWebsite && linkedinPattern.MatchString(match) {
			continue
		}
		return &match
	}
	return nil
}

// lastCommaFragment takes the last comma-separated fragment longer than two
// characters. Location is conventionally written last.
func lastCommaFragment(blob string, _ ContactOptions) *string {
	if !strings.Contains(blob, ",") {
		return nil
	}
	var location *string
	for _, part := range strings.Split(blob, ",") {
		part = strings.TrimSpace(part)
		if utf8.RuneCountInString(part) > 2 {
			location = &part
		}
	}
	return location
}

// MatchContactField runs the single rule named field against a contact
// blob. Unknown fields never match.
func MatchContactField(field, blob string, opts ContactOptions) *string {
	for _, rule := range contactRules {
		if rule.field == field {
			return rule.extract(blob, opts)
		}
	}
	return nil
}

// ExtractContact reads the header bucket: first line is the name, the rest
// is scanned for contact fields.
func ExtractContact(lines []string, opts ContactOptions) types.ContactInfo {
	if len(lines) == 0 {
		return types.ContactInfo{FullName: PlaceholderName}
	}

	contact := types.ContactInfo{FullName: lines[0]}
	blob := strings.Join(lines[1:], " ")
	for _, rule := range contactRules {
		rule.assign(&contact, rule.extract(blob, opts))
	}
	return contact
}
