package marketplace

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sudo-init-do/campusgigs/internal/apperr"
)

// AdminEmail is the single address with admin rights.
const AdminEmail = "souparno.cs24@bmsce.ac.in"

// MaxMessageLength bounds the note attached to a cart entry.
const MaxMessageLength = 50

// AllowedDomains lists the campus domains that may sign in and list services.
var AllowedDomains = []string{"bmsce.ac.in", "bmsca.org", "bmscl.ac.in"}

// NormalizeEmail trims and lower-cases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func domainOf(email string) string {
	i := strings.LastIndex(email, "@")
	if i < 0 {
		return ""
	}
	return strings.ToLower(email[i+1:])
}

// IsAllowedEmail reports whether email belongs to an allowed campus domain.
func IsAllowedEmail(email string) bool {
	d := domainOf(NormalizeEmail(email))
	for _, allowed := range AllowedDomains {
		if d == allowed {
			return true
		}
	}
	return false
}

func IsAdmin(email string) bool {
	return NormalizeEmail(email) == AdminEmail
}

// CanSignIn reports whether email may authenticate.
func CanSignIn(email string) bool {
	return IsAllowedEmail(email) || IsAdmin(email)
}

// LengthUnit is what a DescriptionPolicy counts.
type LengthUnit string

const (
	UnitWords LengthUnit = "words"
	UnitChars LengthUnit = "chars"
)

func (u LengthUnit) label() string {
	if u == UnitChars {
		return "characters"
	}
	return "words"
}

// DescriptionPolicy is the minimum length a listing description must reach.
type DescriptionPolicy struct {
	Unit LengthUnit
	Min  int
}

// DefaultDescriptionPolicy requires 100 words.
var DefaultDescriptionPolicy = DescriptionPolicy{Unit: UnitWords, Min: 100}

// ParseLengthUnit accepts "words", "chars" or "characters".
func ParseLengthUnit(s string) (LengthUnit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "words", "word":
		return UnitWords, nil
	case "chars", "char", "characters":
		return UnitChars, nil
	}
	return "", fmt.Errorf("unknown description unit %q", s)
}

// Measure returns the length of desc in the policy's unit.
func (p DescriptionPolicy) Measure(desc string) int {
	desc = strings.TrimSpace(desc)
	if p.Unit == UnitChars {
		return utf8.RuneCountInString(desc)
	}
	return len(strings.Fields(desc))
}

// Check returns a BadRequest citing the current count when desc is short.
func (p DescriptionPolicy) Check(desc string) error {
	n := p.Measure(desc)
	if n < p.Min {
		return apperr.BadRequest(fmt.Sprintf("Description must be at least %d %s (currently %d).", p.Min, p.Unit.label(), n))
	}
	return nil
}

// CheckMessage enforces the required, bounded note on a cart entry.
func CheckMessage(msg string) error {
	msg = strings.TrimSpace(msg)
	if msg == "" {
		return apperr.BadRequest("Message is required.")
	}
	if utf8.RuneCountInString(msg) > MaxMessageLength {
		return apperr.BadRequest(fmt.Sprintf("Message must be maximum %d characters.", MaxMessageLength))
	}
	return nil
}
