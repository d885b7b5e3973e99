// Package validation provides input validation utilities
package validation

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	MinPasswordLength = 6
	MaxPasswordLength = 128
	MinUsernameLength = 3
	MaxUsernameLength = 30
	MaxContentLength  = 500
	MaxTitleLength    = 200
	MaxNameLength     = 200
	MaxFullNameLength = 100
)

var usernamePattern = regexp.MustCompile(`^[a-z0-9_.-]+$`)

// NormalizeUsername lowercases and trims a username.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// NormalizeEmail lowercases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidatePassword checks the password length bounds.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters long", MinPasswordLength)
	}
	if len(password) > MaxPasswordLength {
		return fmt.Errorf("password must not exceed %d characters", MaxPasswordLength)
	}
	return nil
}

// ValidateUsername checks an already normalized username.
func ValidateUsername(username string) error {
	if len(username) < MinUsernameLength {
		return fmt.Errorf("username must be at least %d characters long", MinUsernameLength)
	}
	if len(username) > MaxUsernameLength {
		return fmt.Errorf("username must not exceed %d characters", MaxUsernameLength)
	}
	if !usernamePattern.MatchString(username) {
		return fmt.Errorf("username can only contain lowercase letters, numbers, dots, underscores and hyphens")
	}
	return nil
}

// ValidateEmail checks that email is a bare address.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email is required")
	}
	if len(email) > 254 {
		return fmt.Errorf("email must not exceed 254 characters")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndex(email, "@"):], ".") {
		return fmt.Errorf("invalid email format")
	}
	return nil
}

// ValidateContent checks comment and tweet bodies.
func ValidateContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("content is required")
	}
	if utf8.RuneCountInString(content) > MaxContentLength {
		return fmt.Errorf("content must not exceed %d characters", MaxContentLength)
	}
	return nil
}

// Required checks that a trimmed field is present and within max runes.
func Required(field, value string, max int) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", field)
	}
	if max > 0 && utf8.RuneCountInString(value) > max {
		return fmt.Errorf("%s must not exceed %d characters", field, max)
	}
	return nil
}

// ValidateDuration checks a media duration in seconds.
func ValidateDuration(seconds float64) error {
	if !(seconds > 0) {
		return fmt.Errorf("duration must be greater than zero")
	}
	return nil
}

// Errors collects field problems so a request reports all of them at once.
type Errors []string

// Add records err when it is non-nil.
func (e *Errors) Add(err error) {
	if err != nil {
		*e = append(*e, err.Error())
	}
}

// Empty reports whether no problems were recorded.
func (e Errors) Empty() bool {
	return len(e) == 0
}
