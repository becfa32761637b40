package models

// ChangeType names the kind of mutation a Change describes.
type ChangeType string

const (
	EmployeeAdded   ChangeType = "added"
	EmployeeEdited  ChangeType = "edited"
	EmployeeRemoved ChangeType = "removed"
	// EmployeesCleared is published by RemoveAll. Change.Employee is nil.
	EmployeesCleared ChangeType = "cleared"
)

// Change is published to store subscribers after every mutation.
type Change struct {
	Type ChangeType
	// Employee is a copy of the affected record as it is after the change
	// (as it was before, for removals).
	Employee *Employee
	// Snapshot is the full collection after the change.
	Snapshot []Employee
}
