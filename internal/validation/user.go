// Package validation provides input validation utilities
package validation

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Field limits.
const (
	UsernameMinLen = 3
	UsernameMaxLen = 30
	PasswordMinLen = 8
	// bcrypt ignores everything past 72 bytes.
	PasswordMaxLen = 72
	EmailMaxLen    = 254
	NameMaxLen     = 50
	BioMaxLen      = 500
	URLMaxLen      = 2048
)

var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9\-]+(\.[a-zA-Z0-9\-]+)*\.[a-zA-Z]{2,}$`)
)

// ValidatePassword checks the password length in bytes.
func ValidatePassword(password string) error {
	if len(password) < PasswordMinLen {
		return fmt.Errorf("password must be at least %d characters long", PasswordMinLen)
	}
	if len(password) > PasswordMaxLen {
		return fmt.Errorf("password must not exceed %d characters", PasswordMaxLen)
	}
	return nil
}

// ValidateUsername checks if a username meets requirements
func ValidateUsername(username string) error {
	if len(username) < UsernameMinLen {
		return fmt.Errorf("username must be at least %d characters long", UsernameMinLen)
	}
	if len(username) > UsernameMaxLen {
		return fmt.Errorf("username must not exceed %d characters", UsernameMaxLen)
	}
	if !usernameRegex.MatchString(username) {
		return errors.New("username can only contain letters, numbers, underscores, and hyphens")
	}
	if username[0] == '_' || username[0] == '-' || username[len(username)-1] == '_' || username[len(username)-1] == '-' {
		return errors.New("username cannot start or end with underscore or hyphen")
	}
	return nil
}

// ValidateEmail checks basic email format
func ValidateEmail(email string) error {
	if len(email) > EmailMaxLen {
		return fmt.Errorf("email must not exceed %d characters", EmailMaxLen)
	}
	if !emailRegex.MatchString(email) {
		return errors.New("invalid email format")
	}
	return nil
}

// ValidateName checks a first or last name. field is used in the message.
func ValidateName(field, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%s is required", field)
	}
	if utf8.RuneCountInString(name) > NameMaxLen {
		return fmt.Errorf("%s must not exceed %d characters", field, NameMaxLen)
	}
	return nil
}

// ValidateBio checks the profile bio length.
func ValidateBio(bio string) error {
	if utf8.RuneCountInString(bio) > BioMaxLen {
		return fmt.Errorf("bio must not exceed %d characters", BioMaxLen)
	}
	return nil
}

// ValidateURL accepts an empty string or an absolute http(s) URL.
func ValidateURL(field, raw string) error {
	if raw == "" {
		return nil
	}
	if len(raw) > URLMaxLen {
		return fmt.Errorf("%s must not exceed %d characters", field, URLMaxLen)
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%s must be an http or https URL", field)
	}
	return nil
}
