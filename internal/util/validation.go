package util

import (
	"regexp"
)

var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// IsValidEmail performs a shallow syntactic check. The billing provider has
// already verified the address; this only guards against garbage input.
func IsValidEmail(s string) bool {
	if s == "" || len(s) > 254 {
		return false
	}
	return emailRegex.MatchString(s)
}
