// Package validate provides small pure predicates for user-facing form
// fields. They run client side before a request is submitted; the server
// performs its own structural validation on request DTOs.
package validate

import (
	"regexp"
	"strings"
)

var (
	emailRegexp = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRegexp = regexp.MustCompile(`^\d{10,12}$`)
)

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 6

// IsEmail reports whether the value looks like an email address.
func IsEmail(value string) bool {
	return emailRegexp.MatchString(strings.TrimSpace(value))
}

// IsPhone reports whether the value is a 10 to 12 digit phone number.
func IsPhone(value string) bool {
	return phoneRegexp.MatchString(strings.TrimSpace(value))
}

// IsEmpty reports whether the value is blank after trimming whitespace.
func IsEmpty(value string) bool {
	return strings.TrimSpace(value) == ""
}

// MatchesConfirm reports whether a password and its confirmation agree.
func MatchesConfirm(password, confirm string) bool {
	return strings.TrimSpace(password) == strings.TrimSpace(confirm)
}

// HasMinLength reports whether the password meets the minimum length.
func HasMinLength(password string) bool {
	return len(strings.TrimSpace(password)) >= MinPasswordLength
}
