// Package models defines the core domain models of the employee directory:
// Employee, the EmployeeUpdate patch, the configurable Catalog of departments
// and positions, and the Change notifications published by the store.
package models

import (
	"slices"
	"time"
)

// Employee defines the domain model for a directory entry.
type Employee struct {
	// ID is assigned by the store on creation and never changes afterwards.
	ID        int64  `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	// Department must be one of Catalog.Departments.
	Department string `json:"department"`
	// Position must be one of Catalog.Positions.
	Position         string    `json:"position"`
	DateOfEmployment time.Time `json:"dateOfEmployment"`
	// DateOfBirth is optional. The store keeps it as a UTC calendar date.
	DateOfBirth *time.Time `json:"dateOfBirth"`
	// Salary is optional.
	Salary *float64 `json:"salary,omitempty"`
}

// EmployeeUpdate represents the fields that can be updated for an Employee.
// Pointer types are used to allow partial updates.
type EmployeeUpdate struct {
	FirstName        *string
	LastName         *string
	Email            *string
	Phone            *string
	Department       *string
	Position         *string
	DateOfEmployment *time.Time
	DateOfBirth      *time.Time
	Salary           *float64
	// ClearDateOfBirth unsets DateOfBirth. It wins over DateOfBirth.
	ClearDateOfBirth bool
	// ClearSalary unsets Salary. It wins over Salary.
	ClearSalary bool
}

// Clone returns a copy of e that shares no pointers with it.
func (e Employee) Clone() Employee {
	if e.DateOfBirth != nil {
		dob := *e.DateOfBirth
		e.DateOfBirth = &dob
	}
	if e.Salary != nil {
		salary := *e.Salary
		e.Salary = &salary
	}
	return e
}

// FullName joins first and last name with a single space.
func (e Employee) FullName() string {
	return e.FirstName + " " + e.LastName
}

// Merge returns a copy of e with the non-nil fields of u applied on top.
// The ID is never touched.
func (e Employee) Merge(u *EmployeeUpdate) Employee {
	out := e.Clone()
	if u == nil {
		return out
	}
	if u.FirstName != nil {
		out.FirstName = *u.FirstName
	}
	if u.LastName != nil {
		out.LastName = *u.LastName
	}
	if u.Email != nil {
		out.Email = *u.Email
	}
	if u.Phone != nil {
		out.Phone = *u.Phone
	}
	if u.Department != nil {
		out.Department = *u.Department
	}
	if u.Position != nil {
		out.Position = *u.Position
	}
	if u.DateOfEmployment != nil {
		out.DateOfEmployment = *u.DateOfEmployment
	}
	switch {
	case u.ClearDateOfBirth:
		out.DateOfBirth = nil
	case u.DateOfBirth != nil:
		dob := *u.DateOfBirth
		out.DateOfBirth = &dob
	}
	switch {
	case u.ClearSalary:
		out.Salary = nil
	case u.Salary != nil:
		salary := *u.Salary
		out.Salary = &salary
	}
	return out
}

// NormalizeDate truncates t to its UTC calendar date.
func NormalizeDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NormalizeDatePtr is NormalizeDate for optional dates. A nil or zero date
// normalizes to nil.
func NormalizeDatePtr(t *time.Time) *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	n := NormalizeDate(*t)
	return &n
}

// SameDate reports whether a and b fall on the same UTC calendar date.
// Two nil dates are equal.
func SameDate(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return NormalizeDate(*a).Equal(NormalizeDate(*b))
}

// Catalog holds the closed lists an employee's department and position are
// drawn from.
type Catalog struct {
	Departments []string `yaml:"departments" json:"departments"`
	Positions   []string `yaml:"positions" json:"positions"`
}

// DefaultCatalog returns the five-department catalog.
func DefaultCatalog() Catalog {
	return Catalog{
		Departments: []string{"Analytics", "Tech", "Marketing", "Sales", "HR"},
		Positions:   []string{"Junior", "Medior", "Senior", "Lead", "Manager"},
	}
}

// HasDepartment reports whether name is a configured department.
func (c Catalog) HasDepartment(name string) bool {
	return slices.Contains(c.Departments, name)
}

// HasPosition reports whether name is a configured position.
func (c Catalog) HasPosition(name string) bool {
	return slices.Contains(c.Positions, name)
}
