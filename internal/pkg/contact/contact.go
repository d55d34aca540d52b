// Package contact canonicalizes and validates the email addresses and phone
// numbers verification codes are sent to. All functions are pure.
package contact

import (
	"regexp"
	"strings"

	"github.com/expertresume/notification-api/internal/domain"
)

// CountryPrefix is the dialing prefix assumed for bare 10-digit numbers.
const CountryPrefix = "91"

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// IsValidEmail performs a simple local@domain.tld shape check.
func IsValidEmail(s string) bool {
	return emailRe.MatchString(s)
}

// NormalizePhone strips everything but digits and removes the country prefix
// when it yields exactly 12 digits. The result must be exactly 10 digits.
func NormalizePhone(raw string) (string, error) {
	n := digitsOnly(raw)
	if strings.HasPrefix(n, CountryPrefix) && len(n) == 12 {
		n = n[2:]
	}
	if len(n) != 10 {
		return "", domain.Public("phone number must be exactly 10 digits", domain.ErrInvalidFormat)
	}
	return n, nil
}

// NormalizeForKey is the lenient variant used for key derivation: it applies
// the same digit stripping and prefix removal but never fails, so legacy
// records written from oddly-shaped input stay reachable.
func NormalizeForKey(raw string) string {
	n := digitsOnly(raw)
	if strings.HasPrefix(n, CountryPrefix) && len(n) == 12 {
		n = n[2:]
	}
	return n
}

// IsValidPhone accepts 10-digit mobile numbers starting 6-9, 12-digit numbers
// carrying the country prefix followed by 6-9, or the "+"-prefixed
// 13-character international form with the same digit constraints.
func IsValidPhone(s string) bool {
	n := digitsOnly(s)

	if len(n) == 10 && n[0] >= '6' && n[0] <= '9' {
		return true
	}
	if len(n) == 12 && strings.HasPrefix(n, CountryPrefix) && n[2] >= '6' && n[2] <= '9' {
		return true
	}
	if strings.HasPrefix(s, "+"+CountryPrefix) && len(n) == 12 && strings.HasPrefix(n, CountryPrefix) && n[2] >= '6' && n[2] <= '9' {
		return true
	}
	return false
}

// InternationalFormat returns the "+"-prefixed dialing form, adding the
// country prefix when absent.
func InternationalFormat(phone string) string {
	f := strings.ReplaceAll(phone, " ", "")
	if strings.HasPrefix(f, "+") {
		return "+" + digitsOnly(f)
	}
	f = digitsOnly(f)
	if strings.HasPrefix(f, CountryPrefix) && len(f) == 12 {
		return "+" + f
	}
	return "+" + CountryPrefix + f
}

func digitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
