package common

import (
	"regexp"
	"sort"
	"strings"
)

var (
	emailRegex    = regexp.MustCompile(`^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}$`)
	usernameRegex = regexp.MustCompile(`^[a-z0-9_.]+$`)
)

// NormalizeUsername lowercases and trims; usernames are stored that way.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

func ValidateUsername(username string) error {
	username = NormalizeUsername(username)
	if len(username) < 3 || len(username) > 30 {
		return ValidationError("username must be between 3 and 30 characters")
	}
	if !usernameRegex.MatchString(username) {
		return ValidationError("username can only contain letters, numbers, dots and underscores")
	}
	return nil
}

func ValidatePassword(password string) error {
	if len(password) < 6 {
		return ValidationError("password must be at least 6 characters long")
	}
	if len(password) > 72 {
		return ValidationError("password must be at most 72 characters long")
	}
	return nil
}

func ValidateEmail(email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if !emailRegex.MatchString(email) {
		return ValidationError("invalid email format")
	}
	return nil
}

// RequireFields returns a single ValidationError listing every blank field.
func RequireFields(fields map[string]string) error {
	var missing []string
	for name, value := range fields {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name+" is required")
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return ValidationError("all fields are required", missing...)
}
