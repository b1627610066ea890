package utils

import (
	"fmt"
	"html"
	"regexp"
	"strings"
)

// FieldValidationError represents a validation error for a specific field
type FieldValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FieldValidationErrors represents multiple field validation errors
type FieldValidationErrors []FieldValidationError

// Error implements the error interface
func (e FieldValidationErrors) Error() string {
	var messages []string
	for _, err := range e {
		messages = append(messages, fmt.Sprintf("%s: %s", err.Field, err.Message))
	}
	return strings.Join(messages, "; ")
}

// Fields lists the offending field names
func (e FieldValidationErrors) Fields() []string {
	fields := make([]string, 0, len(e))
	for _, err := range e {
		fields = append(fields, err.Field)
	}
	return fields
}

var (
	phoneRegex   = regexp.MustCompile(`^\+?[1-9]\d{7,14}$`)
	htmlTagRegex = regexp.MustCompile(`<[^>]*>`)
	nameRegex    = regexp.MustCompile(`[0-9!@#$%^&*()?":{}|<>]`)
)

// SanitizeText strips markup from free text submitted through public forms
func SanitizeText(input string) string {
	stripped := htmlTagRegex.ReplaceAllString(input, "")
	return strings.TrimSpace(html.UnescapeString(stripped))
}

// NormalizePhone removes formatting and checks the result looks like an E.164 number
func NormalizePhone(phone string) (string, error) {
	var b strings.Builder
	for i, r := range strings.TrimSpace(phone) {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '(' || r == ')' || r == '.':
		default:
			return "", fmt.Errorf("phone number contains %q", r)
		}
	}

	normalized := b.String()
	if !phoneRegex.MatchString(normalized) {
		return "", fmt.Errorf("phone number must have 8 to 15 digits")
	}
	return normalized, nil
}

// ValidateName checks a person's name
func ValidateName(name string) (bool, string) {
	if len([]rune(strings.TrimSpace(name))) < 2 {
		return false, "Name must be at least 2 characters long"
	}
	if nameRegex.MatchString(name) {
		return false, "Name cannot contain numbers or special characters"
	}
	return true, ""
}
