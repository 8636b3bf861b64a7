// utils/validator.go - Input validation
package utils

import (
	"regexp"
	"strings"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// ValidateEmail checks if email is valid
func ValidateEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// SanitizeInput removes potentially harmful characters
func SanitizeInput(input string) string {
	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")

	// Remove leading/trailing spaces
	return strings.TrimSpace(input)
}

// SafeFilename flattens path separators so an uploaded name can never
// leave its submission directory.
func SafeFilename(name string) string {
	safe := SanitizeInput(name)
	safe = strings.NewReplacer("/", "_", "\\", "_").Replace(safe)
	if safe == "" || safe == "." || safe == ".." {
		return "document.pdf"
	}
	return safe
}
