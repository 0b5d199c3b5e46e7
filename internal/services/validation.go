package services

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"inkwell/internal/apperror"
)

const (
	minPasswordLength = 6
	minUsernameLength = 7
	maxUsernameLength = 20
)

// Username and password rules. Each violation has its own error so clients can
// show the exact reason.
var (
	ErrPasswordTooShort = apperror.ValidationFailed("password", "Password must be at least 6 characters")
	ErrUsernameLength   = apperror.ValidationFailed("username", "Username must be between 7 and 20 characters")
	ErrUsernameSpaces   = apperror.ValidationFailed("username", "Username cannot contain spaces")
	ErrUsernameCase     = apperror.ValidationFailed("username", "Username must be lowercase")
	ErrUsernameCharset  = apperror.ValidationFailed("username", "Username can only contain letters and numbers")
)

// ValidatePassword checks the password length rule.
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < minPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}

// ValidateUsername checks the username rules in order and returns the first
// one that fails.
func ValidateUsername(username string) error {
	if n := utf8.RuneCountInString(username); n < minUsernameLength || n > maxUsernameLength {
		return ErrUsernameLength
	}
	if strings.Contains(username, " ") {
		return ErrUsernameSpaces
	}
	if username != strings.ToLower(username) {
		return ErrUsernameCase
	}
	for _, r := range username {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return ErrUsernameCharset
		}
	}
	return nil
}

// Slugify derives a post slug from its title: lowercased with spaces and
// hyphens removed.
func Slugify(title string) string {
	return strings.NewReplacer(" ", "", "-", "").Replace(strings.ToLower(title))
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
