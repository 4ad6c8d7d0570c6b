// Package validation checks user supplied drug names before they reach openFDA.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/giygas/druglabel-checker/interfaces"
)

const (
	maxNameLength  = 100
	maxNameWords   = 8
	maxRepeatedRun = 10
)

// ErrInvalidDrugName is wrapped by every validation failure.
var ErrInvalidDrugName = errors.New("invalid drug name")

// Pre-compiled once and reused for all validations
var (
	// Letters in any script, digits, spaces and the punctuation found in
	// product names. Quotes, colons and backslashes would alter the search
	// expression sent upstream.
	nameRegex = regexp.MustCompile(`^[\p{L}\p{M}\p{N}\s\-\.\+',/()%&]+$`)

	// Substring checks are cheaper than regex for these
	dangerousPatterns = []string{
		"<script", "javascript:", "vbscript:", "onload=", "onerror=",
		"../", "..\\", "%2e%2e", "file://",
		"$(", "${", "--", "/*", "*/",
		"union select", "drop table",
	}
)

// Compile-time check to ensure NameValidator implements the interface
var _ interfaces.NameValidator = (*NameValidator)(nil)

// NameValidator validates drug names typed into the web page, API or TUI.
type NameValidator struct{}

// NewNameValidator creates a new name validator
func NewNameValidator() *NameValidator {
	return &NameValidator{}
}

// ValidateDrugName returns the trimmed name, or an error wrapping
// ErrInvalidDrugName.
func (v *NameValidator) ValidateDrugName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: name cannot be empty", ErrInvalidDrugName)
	}

	if !utf8.ValidString(name) {
		return "", fmt.Errorf("%w: name is not valid UTF-8", ErrInvalidDrugName)
	}

	if utf8.RuneCountInString(name) > maxNameLength {
		return "", fmt.Errorf("%w: name too long: maximum %d characters", ErrInvalidDrugName, maxNameLength)
	}

	// Many short words make for expensive upstream queries
	if len(strings.Fields(name)) > maxNameWords {
		return "", fmt.Errorf("%w: name too complex: maximum %d words allowed", ErrInvalidDrugName, maxNameWords)
	}

	lower := strings.ToLower(name)
	for _, pattern := range dangerousPatterns {
		if strings.Contains(lower, pattern) {
			return "", fmt.Errorf("%w: name contains potentially dangerous content", ErrInvalidDrugName)
		}
	}

	if !nameRegex.MatchString(name) {
		return "", fmt.Errorf("%w: name contains invalid characters. Only letters, digits, spaces and - . + ' , / ( ) %% & are allowed", ErrInvalidDrugName)
	}

	if hasExcessiveRepetition(name) {
		return "", fmt.Errorf("%w: name contains excessive character repetition", ErrInvalidDrugName)
	}

	return name, nil
}

// hasExcessiveRepetition reports a rune repeated more than maxRepeatedRun times in a row.
func hasExcessiveRepetition(input string) bool {
	var prev rune
	run := 0
	for i, r := range input {
		if i > 0 && r == prev {
			run++
		} else {
			run = 1
		}
		if run > maxRepeatedRun {
			return true
		}
		prev = r
	}
	return false
}
