package handlers

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strings"
	"time"

	e "github.com/gartstein/directory/internal/directory/errors"
	"github.com/gartstein/directory/internal/directory/models"
	"github.com/gartstein/directory/internal/directory/rpc"
	"github.com/gartstein/directory/internal/directory/validation"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// parseDate accepts a wire date ("2006-01-02") or a full RFC 3339 timestamp.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(rpc.DateLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(rpc.DateLayout)
}

// dateKeys maps a field name to the message key of its unparseable date.
type dateKeys map[string]string

// rpcToModel converts a wire Employee into the domain model. Unparseable
// dates are left zero and reported in the returned dateKeys, so the write
// gate still runs on the rest of the record.
func rpcToModel(in *rpc.Employee) (*models.Employee, dateKeys, error) {
	if in == nil {
		return nil, nil, fmt.Errorf("%w: employee data required", e.ErrInvalidInput)
	}

	emp := &models.Employee{
		ID:         in.ID,
		FirstName:  in.FirstName,
		LastName:   in.LastName,
		Email:      in.Email,
		Phone:      in.Phone,
		Department: in.Department,
		Position:   in.Position,
		Salary:     in.Salary,
	}

	bad := dateKeys{}
	if strings.TrimSpace(in.DateOfEmployment) != "" {
		t, err := parseDate(in.DateOfEmployment)
		if err != nil {
			bad[validation.FieldDateOfEmployment] = e.KeyDateOfEmploymentInvalid
		} else {
			emp.DateOfEmployment = models.NormalizeDate(t)
		}
	}
	if strings.TrimSpace(in.DateOfBirth) != "" {
		t, err := parseDate(in.DateOfBirth)
		if err != nil {
			bad[validation.FieldDateOfBirth] = e.KeyDateOfBirthInvalid
		} else {
			emp.DateOfBirth = models.NormalizeDatePtr(&t)
		}
	}
	return emp, bad, nil
}

// patchToUpdate converts a wire patch into an EmployeeUpdate. An empty
// DateOfBirth clears the field, the same as ClearDateOfBirth. Unparseable
// dates are left out of the update and reported in the returned dateKeys.
func patchToUpdate(p *rpc.EmployeePatch) (*models.EmployeeUpdate, dateKeys, error) {
	if p == nil {
		return nil, nil, fmt.Errorf("%w: update data required", e.ErrInvalidInput)
	}

	u := &models.EmployeeUpdate{
		FirstName:        p.FirstName,
		LastName:         p.LastName,
		Email:            p.Email,
		Phone:            p.Phone,
		Department:       p.Department,
		Position:         p.Position,
		Salary:           p.Salary,
		ClearDateOfBirth: p.ClearDateOfBirth,
		ClearSalary:      p.ClearSalary,
	}

	bad := dateKeys{}
	if p.DateOfEmployment != nil {
		t, err := parseDate(*p.DateOfEmployment)
		if err != nil {
			bad[validation.FieldDateOfEmployment] = e.KeyDateOfEmploymentInvalid
		} else {
			doe := models.NormalizeDate(t)
			u.DateOfEmployment = &doe
		}
	}
	if p.DateOfBirth != nil {
		if strings.TrimSpace(*p.DateOfBirth) == "" {
			u.ClearDateOfBirth = true
		} else if t, err := parseDate(*p.DateOfBirth); err != nil {
			bad[validation.FieldDateOfBirth] = e.KeyDateOfBirthInvalid
		} else {
			u.DateOfBirth = models.NormalizeDatePtr(&t)
		}
	}
	return u, bad, nil
}

// merge adds the date keys to the outcome of the write gate. A date key
// replaces whatever the field rules reported for the zero date. Errors other
// than a ValidationError are returned unchanged.
func (bad dateKeys) merge(gateErr error) error {
	if len(bad) == 0 {
		return gateErr
	}
	verr := &e.ValidationError{Fields: map[string]string{}}
	if gateErr != nil {
		prev, ok := e.AsValidation(gateErr)
		if !ok {
			return gateErr
		}
		maps.Copy(verr.Fields, prev.Fields)
		verr.Conflicts = prev.Conflicts
	}
	maps.Copy(verr.Fields, bad)
	return verr
}

// modelToRPC converts a domain Employee into its wire form.
func modelToRPC(emp *models.Employee) *rpc.Employee {
	out := &rpc.Employee{
		ID:               emp.ID,
		FirstName:        emp.FirstName,
		LastName:         emp.LastName,
		Email:            emp.Email,
		Phone:            emp.Phone,
		Department:       emp.Department,
		Position:         emp.Position,
		DateOfEmployment: formatDate(emp.DateOfEmployment),
	}
	if emp.DateOfBirth != nil {
		out.DateOfBirth = formatDate(*emp.DateOfBirth)
	}
	if emp.Salary != nil {
		salary := *emp.Salary
		out.Salary = &salary
	}
	return out
}

func validationDetails(verr *e.ValidationError) rpc.ValidationDetails {
	return rpc.ValidationDetails{Fields: verr.Fields, Conflicts: verr.Conflicts}
}

// mapServiceError maps domain errors to gRPC status codes. Write-gate
// rejections keep their message keys as status details.
func (h *EmployeeHandler) mapServiceError(err error) error {
	if verr, ok := e.AsValidation(err); ok {
		code := codes.InvalidArgument
		if len(verr.Fields) == 0 {
			code = codes.AlreadyExists
		}
		return rpc.ValidationStatus(code, verr.Error(), validationDetails(verr)).Err()
	}

	switch {
	case errors.Is(err, e.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, e.ErrDuplicate):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, e.ErrInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		h.logger.Error("Internal server error", zap.Error(err))
		return status.Error(codes.Internal, fmt.Sprintf("internal server error: %v", err))
	}
}
