// Package validation evaluates the per-field rules of an employee record and
// reports failures as message keys.
package validation

import (
	"regexp"
	"time"
)

// Rules parameterizes the field checks.
type Rules struct {
	NameMinLength  int
	NameMaxLength  int
	NamePattern    *regexp.Regexp
	EmailMinLength int
	EmailMaxLength int
	PhoneMinLength int
	PhoneMaxLength int
	PhonePattern   *regexp.Regexp
	// BirthDateFloor is the earliest accepted date of birth.
	BirthDateFloor time.Time
	SalaryMin      float64
	SalaryMax      float64
}

var (
	defaultNamePattern  = regexp.MustCompile(`^[\p{L}\s'.-]+$`)
	defaultPhonePattern = regexp.MustCompile(`^[0-9\s()+-]+$`)
)

// DefaultRules returns the rules used when configuration leaves them out.
func DefaultRules() Rules {
	return Rules{
		NameMinLength:  2,
		NameMaxLength:  50,
		NamePattern:    defaultNamePattern,
		EmailMinLength: 5,
		EmailMaxLength: 100,
		PhoneMinLength: 10,
		PhoneMaxLength: 20,
		PhonePattern:   defaultPhonePattern,
		BirthDateFloor: time.Date(1925, time.January, 1, 0, 0, 0, 0, time.UTC),
		SalaryMin:      30000,
		SalaryMax:      200000,
	}
}
