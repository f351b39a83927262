package utils

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	MinUsernameLength = 3
	MinPasswordLength = 8
)

// Each part excludes Unicode separators and the byte order mark as well as
// ASCII whitespace, which is all \s covers in RE2.
var emailRegex = regexp.MustCompile(`^[^\s\v\x{85}\p{Z}\x{FEFF}@]+@[^\s\v\x{85}\p{Z}\x{FEFF}@]+\.[^\s\v\x{85}\p{Z}\x{FEFF}@]+$`)

var (
	upperRegex = regexp.MustCompile(`[A-Z]`)
	lowerRegex = regexp.MustCompile(`[a-z]`)
	digitRegex = regexp.MustCompile(`[0-9]`)
)

// ValidateCredentials returns every rule the pair violates, in a fixed order.
// An empty slice means the credentials are acceptable.
func ValidateCredentials(username string, password string) []string {
	violations := make([]string, 0)

	if utf8.RuneCountInString(username) < MinUsernameLength {
		violations = append(violations, "Username must be at least 3 characters long")
	}

	if utf8.RuneCountInString(password) < MinPasswordLength {
		violations = append(violations, "Password must be at least 8 characters long")
	}

	if !upperRegex.MatchString(password) {
		violations = append(violations, "Password must contain at least one uppercase letter")
	}

	if !lowerRegex.MatchString(password) {
		violations = append(violations, "Password must contain at least one lowercase letter")
	}

	if !digitRegex.MatchString(password) {
		violations = append(violations, "Password must contain at least one number")
	}

	return violations
}

// IsValidEmail is a loose syntax check: one "@", a dot somewhere after it and no whitespace.
func IsValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

func EmailLocalPart(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}
