// Package rpc defines the directory.v1.EmployeeService wire contract: the
// request and response messages, a JSON codec, the gRPC service descriptor
// and a typed client. Messages travel as JSON under the "json" content
// subtype; dates are "2006-01-02" strings.
//
// NewEmployeeServiceClient sets the subtype on every call. Any other client
// must dial with grpc.WithDefaultCallOptions(grpc.CallContentSubtype(CodecName))
// or pass grpc.CallContentSubtype(CodecName) per call; without it grpc falls
// back to the protobuf codec, which cannot marshal these messages.
package rpc

// DateLayout is the wire format of every date field.
const DateLayout = "2006-01-02"

type Employee struct {
	ID               int64    `json:"id"`
	FirstName        string   `json:"firstName"`
	LastName         string   `json:"lastName"`
	Email            string   `json:"email"`
	Phone            string   `json:"phone"`
	Department       string   `json:"department"`
	Position         string   `json:"position"`
	DateOfEmployment string   `json:"dateOfEmployment"`
	DateOfBirth      string   `json:"dateOfBirth,omitempty"`
	Salary           *float64 `json:"salary,omitempty"`
}

// EmployeePatch is a partial update. Absent fields are left unchanged.
type EmployeePatch struct {
	FirstName        *string  `json:"firstName,omitempty"`
	LastName         *string  `json:"lastName,omitempty"`
	Email            *string  `json:"email,omitempty"`
	Phone            *string  `json:"phone,omitempty"`
	Department       *string  `json:"department,omitempty"`
	Position         *string  `json:"position,omitempty"`
	DateOfEmployment *string  `json:"dateOfEmployment,omitempty"`
	DateOfBirth      *string  `json:"dateOfBirth,omitempty"`
	Salary           *float64 `json:"salary,omitempty"`
	ClearDateOfBirth bool     `json:"clearDateOfBirth,omitempty"`
	ClearSalary      bool     `json:"clearSalary,omitempty"`
}

type CreateEmployeeRequest struct {
	Employee *Employee `json:"employee"`
}

type CreateEmployeeResponse struct {
	Employee *Employee `json:"employee"`
}

type GetEmployeeRequest struct {
	ID int64 `json:"id"`
}

type GetEmployeeResponse struct {
	Employee *Employee `json:"employee"`
}

type UpdateEmployeeRequest struct {
	ID    int64          `json:"id"`
	Patch *EmployeePatch `json:"patch"`
}

type UpdateEmployeeResponse struct {
	Employee *Employee `json:"employee"`
}

type DeleteEmployeeRequest struct {
	ID int64 `json:"id"`
}

type DeleteEmployeeResponse struct{}

type DeleteAllEmployeesRequest struct{}

type DeleteAllEmployeesResponse struct {
	Removed int `json:"removed"`
}

type ListEmployeesRequest struct {
	Query    string `json:"query,omitempty"`
	Page     int    `json:"page,omitempty"`
	PageSize int    `json:"pageSize,omitempty"`
	Sort     string `json:"sort,omitempty"`
	Order    string `json:"order,omitempty"`
}

type ListEmployeesResponse struct {
	Employees  []*Employee `json:"employees"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	Total      int         `json:"total"`
	TotalPages int         `json:"totalPages"`
}

// CheckEmployeeRequest runs the write gate without writing. ExcludeID is the
// record being edited, 0 when creating.
type CheckEmployeeRequest struct {
	Employee  *Employee `json:"employee"`
	ExcludeID int64     `json:"excludeId,omitempty"`
}

type CheckEmployeeResponse struct {
	Valid bool `json:"valid"`
	ValidationDetails
}

type GetCatalogRequest struct{}

type GetCatalogResponse struct {
	Departments []string `json:"departments"`
	Positions   []string `json:"positions"`
}

// ValidationDetails lists message keys: Fields maps a field name to its key,
// Conflicts holds uniqueness keys.
type ValidationDetails struct {
	Fields    map[string]string `json:"fields,omitempty"`
	Conflicts []string          `json:"conflicts,omitempty"`
}

// Empty reports whether d carries no key.
func (d *ValidationDetails) Empty() bool {
	return d == nil || (len(d.Fields) == 0 && len(d.Conflicts) == 0)
}
