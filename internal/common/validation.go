package common

import (
	"fmt"
	"slices"
	"strings"

	"resumeforge/internal/errors"
	"resumeforge/internal/formatters"
)

// ValidateOutputFormat checks format against the configured formats that
// have a registered formatter.
func ValidateOutputFormat(format string, supportedFormats []string) error {
	available := GetSupportedFormats(supportedFormats)
	if slices.Contains(available, format) {
		return nil
	}

	return errors.NewValidationError(errors.ErrCodeInvalidFormat,
		fmt.Sprintf("unsupported output format '%s', use one of: %s", format, strings.Join(available, ", ")), nil).
		WithContext("format", format)
}

// GetSupportedFormats returns the configured formats that can actually be
// produced, in configuration order. An empty configuration allows every
// registered formatter.
func GetSupportedFormats(supportedFormats []string) []string {
	registered := formatters.GlobalRegistry.GetSupportedFormats()
	if len(supportedFormats) == 0 {
		return registered
	}

	formats := make([]string, 0, len(supportedFormats))
	for _, format := range supportedFormats {
		if slices.Contains(registered, format) && !slices.Contains(formats, format) {
			formats = append(formats, format)
		}
	}
	return formats
}
