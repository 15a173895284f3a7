package utils

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// NormalizeTeacherName trims and upper-cases a teacher name for storage.
func NormalizeTeacherName(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// NameKey folds a name for case-insensitive uniqueness comparison.
func NameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// CleanNames trims every entry and drops empties, preserving order.
func CleanNames(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n != "" {
			out = append(out, n)
		}
	}
	return out
}

// DuplicateKeys returns, in input order, the entries of names whose folded
// form collides with existing (a set of folded keys) or with an earlier
// entry of names itself.
func DuplicateKeys(existing map[string]bool, names []string) []string {
	seen := make(map[string]bool, len(names))
	var dups []string
	for _, n := range names {
		key := NameKey(n)
		if existing[key] || seen[key] {
			dups = append(dups, n)
			continue
		}
		seen[key] = true
	}
	return dups
}

// TruncateToDay drops the time-of-day component in the local zone.
func TruncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// HashPin hashes a kiosk PIN using bcrypt
func HashPin(pin string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

// CheckPin compares a PIN with its stored hash
func CheckPin(pin, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin))
}

// SanitizeString removes dangerous characters from string
func SanitizeString(input string) string {
	input = strings.ReplaceAll(input, "\x00", "")
	return strings.TrimSpace(input)
}
