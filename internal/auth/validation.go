package auth

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"PlacementHub/internal/apperr"
)

var emailPattern = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,3})+$`)

const minPasswordLength = 6

// NormalizeEmail is the canonical form used as the key in every store.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ParseRole maps client input onto the closed role set. An empty role means
// student.
func ParseRole(raw string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case "", RoleStudent:
		return RoleStudent, nil
	case RoleRecruiter:
		return RoleRecruiter, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", apperr.Validation("Role must be one of student, recruiter or admin")
	}
}

// NewCandidate validates registration input and returns the payload stored
// with the pending registration.
func NewCandidate(name, password, role string) (Candidate, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Candidate{}, apperr.Validation("Name is required")
	}
	if err := validatePassword(password); err != nil {
		return Candidate{}, err
	}
	r, err := ParseRole(role)
	if err != nil {
		return Candidate{}, err
	}
	return Candidate{Name: name, Password: password, Role: r}, nil
}

// ValidateEmail checks the address format. Students must register with the
// institutional domain; other roles may use any address.
func ValidateEmail(email string, role Role, studentDomain string) error {
	if !emailPattern.MatchString(email) {
		return apperr.Validation("Invalid email address")
	}
	if role == RoleStudent && studentDomain != "" && !strings.HasSuffix(email, "@"+studentDomain) {
		return apperr.Validation("Invalid email. Students must use @" + studentDomain + " domain.")
	}
	return nil
}

func validatePassword(password string) error {
	if utf8.RuneCountInString(password) < minPasswordLength {
		return apperr.Validation("Password must be at least 6 characters")
	}
	return nil
}
