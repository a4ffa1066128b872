package util

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
)

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// MaskEmail redacts the local part of an email for log output.
func MaskEmail(email string) string {
	at := strings.Index(email, "@")
	if at <= 0 {
		return "****"
	}
	if at <= 2 {
		return "**" + email[at:]
	}
	return email[:2] + "***" + email[at:]
}
