// Package models contains the persistence models of the directory,
// configured to work using GORM as the ORM.
package models

import "time"

// Employee is the row mirrored from the in-memory store. The ID is assigned
// by the store, so the column is not auto-incremented.
type Employee struct {
	ID               int64  `gorm:"primaryKey;autoIncrement:false"`
	FirstName        string `gorm:"size:50;not null;index:idx_employee_name"`
	LastName         string `gorm:"size:50;not null;index:idx_employee_name"`
	Email            string `gorm:"size:100;not null;index"`
	Phone            string `gorm:"size:20"`
	Department       string `gorm:"size:50"`
	Position         string `gorm:"size:50"`
	DateOfEmployment time.Time
	DateOfBirth      *time.Time
	Salary           *float64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// TableName pins the table name.
func (Employee) TableName() string {
	return "employees"
}
