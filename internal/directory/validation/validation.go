package validation

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	e "github.com/gartstein/directory/internal/directory/errors"
	"github.com/gartstein/directory/internal/directory/models"
	"github.com/go-playground/validator/v10"
)

// Field names used as keys of the result of Validate.
const (
	FieldFirstName        = "first_name"
	FieldLastName         = "last_name"
	FieldEmail            = "email"
	FieldPhone            = "phone"
	FieldDepartment       = "department"
	FieldPosition         = "position"
	FieldDateOfEmployment = "date_of_employment"
	FieldDateOfBirth      = "date_of_birth"
	FieldSalary           = "salary"
)

// Clock provides the current time.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// fieldRule binds one employee field to a validator tag chain and maps each
// tag to the message key reported when it fails.
type fieldRule struct {
	field string
	value func(models.Employee) (any, bool)
	tag   string
	keys  map[string]string
}

// Validator checks employee records against Rules and a Catalog.
type Validator struct {
	rules    Rules
	catalog  models.Catalog
	clock    Clock
	validate *validator.Validate
	fields   []fieldRule
}

// New constructs a Validator. A nil clock uses the wall clock.
func New(rules Rules, catalog models.Catalog, clock Clock) (*Validator, error) {
	if clock == nil {
		clock = realClock{}
	}
	v := &Validator{
		rules:    rules,
		catalog:  catalog,
		clock:    clock,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
	if err := v.registerTags(); err != nil {
		return nil, fmt.Errorf("register validation tags: %w", err)
	}
	v.fields = v.buildFieldRules()
	return v, nil
}

// Catalog returns the department and position lists the validator accepts.
func (v *Validator) Catalog() models.Catalog {
	return v.catalog
}

// Validate runs every field rule and returns the message key of the first
// failing check per field. The result is empty for a valid record.
func (v *Validator) Validate(emp models.Employee) map[string]string {
	failures := make(map[string]string)
	for _, r := range v.fields {
		value, present := r.value(emp)
		if !present {
			continue
		}
		err := v.validate.Var(value, r.tag)
		if err == nil {
			continue
		}
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) || len(verrs) == 0 {
			// InvalidValidationError only happens on a programming error.
			panic(fmt.Sprintf("validation: field %s: %v", r.field, err))
		}
		failures[r.field] = r.keys[verrs[0].Tag()]
	}
	return failures
}

func (v *Validator) registerTags() error {
	tags := map[string]validator.Func{
		"name_chars": func(fl validator.FieldLevel) bool {
			return v.rules.NamePattern == nil || v.rules.NamePattern.MatchString(fl.Field().String())
		},
		"phone_chars": func(fl validator.FieldLevel) bool {
			return v.rules.PhonePattern == nil || v.rules.PhonePattern.MatchString(fl.Field().String())
		},
		"department": func(fl validator.FieldLevel) bool {
			return v.catalog.HasDepartment(fl.Field().String())
		},
		"position": func(fl validator.FieldLevel) bool {
			return v.catalog.HasPosition(fl.Field().String())
		},
		"date_required": func(fl validator.FieldLevel) bool {
			t, ok := fl.Field().Interface().(time.Time)
			return ok && !t.IsZero()
		},
		"not_future": func(fl validator.FieldLevel) bool {
			t, ok := fl.Field().Interface().(time.Time)
			return ok && !models.NormalizeDate(t).After(models.NormalizeDate(v.clock.Now()))
		},
		"not_before_floor": func(fl validator.FieldLevel) bool {
			t, ok := fl.Field().Interface().(time.Time)
			return ok && !models.NormalizeDate(t).Before(models.NormalizeDate(v.rules.BirthDateFloor))
		},
	}
	for tag, fn := range tags {
		if err := v.validate.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("%s: %w", tag, err)
		}
	}
	return nil
}

func (v *Validator) buildFieldRules() []fieldRule {
	r := v.rules
	nameTag := fmt.Sprintf("required,min=%d,max=%d,name_chars", r.NameMinLength, r.NameMaxLength)

	return []fieldRule{
		{
			field: FieldFirstName,
			value: func(emp models.Employee) (any, bool) { return emp.FirstName, true },
			tag:   nameTag,
			keys: map[string]string{
				"required":   e.KeyFirstNameRequired,
				"min":        e.KeyFirstNameMinLength,
				"max":        e.KeyFirstNameMaxLength,
				"name_chars": e.KeyFirstNameInvalidCharacters,
			},
		},
		{
			field: FieldLastName,
			value: func(emp models.Employee) (any, bool) { return emp.LastName, true },
			tag:   nameTag,
			keys: map[string]string{
				"required":   e.KeyLastNameRequired,
				"min":        e.KeyLastNameMinLength,
				"max":        e.KeyLastNameMaxLength,
				"name_chars": e.KeyLastNameInvalidCharacters,
			},
		},
		{
			field: FieldEmail,
			value: func(emp models.Employee) (any, bool) { return emp.Email, true },
			tag:   fmt.Sprintf("required,min=%d,max=%d,email", r.EmailMinLength, r.EmailMaxLength),
			keys: map[string]string{
				"required": e.KeyEmailRequired,
				"min":      e.KeyEmailMinLength,
				"max":      e.KeyEmailMaxLength,
				"email":    e.KeyEmailInvalid,
			},
		},
		{
			field: FieldPhone,
			value: func(emp models.Employee) (any, bool) { return emp.Phone, true },
			tag:   fmt.Sprintf("required,phone_chars,min=%d,max=%d", r.PhoneMinLength, r.PhoneMaxLength),
			keys: map[string]string{
				"required":    e.KeyPhoneRequired,
				"phone_chars": e.KeyPhoneInvalid,
				"min":         e.KeyPhoneMinLength,
				"max":         e.KeyPhoneMaxLength,
			},
		},
		{
			field: FieldDepartment,
			value: func(emp models.Employee) (any, bool) { return emp.Department, true },
			tag:   "required,department",
			keys: map[string]string{
				"required":   e.KeyDepartmentRequired,
				"department": e.KeyDepartmentInvalid,
			},
		},
		{
			field: FieldPosition,
			value: func(emp models.Employee) (any, bool) { return emp.Position, true },
			tag:   "required,position",
			keys: map[string]string{
				"required": e.KeyPositionRequired,
				"position": e.KeyPositionInvalid,
			},
		},
		{
			field: FieldDateOfEmployment,
			value: func(emp models.Employee) (any, bool) { return emp.DateOfEmployment, true },
			tag:   "date_required,not_future",
			keys: map[string]string{
				"date_required": e.KeyDateOfEmploymentRequired,
				"not_future":    e.KeyDateOfEmploymentFuture,
			},
		},
		{
			field: FieldDateOfBirth,
			value: func(emp models.Employee) (any, bool) {
				if emp.DateOfBirth == nil {
					return nil, false
				}
				return *emp.DateOfBirth, true
			},
			tag: "not_future,not_before_floor",
			keys: map[string]string{
				"not_future":       e.KeyDateOfBirthFuture,
				"not_before_floor": e.KeyDateOfBirthTooEarly,
			},
		},
		{
			field: FieldSalary,
			value: func(emp models.Employee) (any, bool) {
				if emp.Salary == nil {
					return nil, false
				}
				return *emp.Salary, true
			},
			tag: "min=" + formatFloat(r.SalaryMin) + ",max=" + formatFloat(r.SalaryMax),
			keys: map[string]string{
				"min": e.KeySalaryMin,
				"max": e.KeySalaryMax,
			},
		},
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
