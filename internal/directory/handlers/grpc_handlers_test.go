package handlers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gartstein/directory/internal/directory/controller"
	e "github.com/gartstein/directory/internal/directory/errors"
	"github.com/gartstein/directory/internal/directory/models"
	"github.com/gartstein/directory/internal/directory/rpc"
	"github.com/gartstein/directory/internal/directory/search"
	"github.com/gartstein/directory/internal/directory/store"
	"github.com/gartstein/directory/internal/directory/validation"
	"github.com/gartstein/directory/internal/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// mockEmployeeController is a simple mock implementation of EmployeeController.
type mockEmployeeController struct {
	createFunc    func(ctx context.Context, emp *models.Employee) (*models.Employee, error)
	getFunc       func(ctx context.Context, id int64) (*models.Employee, error)
	updateFunc    func(ctx context.Context, id int64, update *models.EmployeeUpdate) (*models.Employee, error)
	deleteFunc    func(ctx context.Context, id int64) error
	deleteAllFunc func(ctx context.Context) (int, error)
	listFunc      func(ctx context.Context, q controller.ListQuery) (search.Page, error)
	checkFunc     func(ctx context.Context, candidate *models.Employee, excludeID int64) error
	catalog       models.Catalog
}

func (m *mockEmployeeController) CreateEmployee(ctx context.Context, emp *models.Employee) (*models.Employee, error) {
	return m.createFunc(ctx, emp)
}

func (m *mockEmployeeController) GetEmployee(ctx context.Context, id int64) (*models.Employee, error) {
	return m.getFunc(ctx, id)
}

func (m *mockEmployeeController) UpdateEmployee(ctx context.Context, id int64, update *models.EmployeeUpdate) (*models.Employee, error) {
	return m.updateFunc(ctx, id, update)
}

func (m *mockEmployeeController) DeleteEmployee(ctx context.Context, id int64) error {
	return m.deleteFunc(ctx, id)
}

func (m *mockEmployeeController) DeleteAllEmployees(ctx context.Context) (int, error) {
	return m.deleteAllFunc(ctx)
}

func (m *mockEmployeeController) ListEmployees(ctx context.Context, q controller.ListQuery) (search.Page, error) {
	return m.listFunc(ctx, q)
}

func (m *mockEmployeeController) CheckEmployee(ctx context.Context, candidate *models.Employee, excludeID int64) error {
	return m.checkFunc(ctx, candidate, excludeID)
}

func (m *mockEmployeeController) Catalog() models.Catalog {
	return m.catalog
}

func wireEmployee() *rpc.Employee {
	return &rpc.Employee{
		FirstName:        "John",
		LastName:         "Doe",
		Email:            "john@example.com",
		Phone:            "555 123 4567",
		Department:       "Tech",
		Position:         "Senior",
		DateOfEmployment: "2022-01-15",
		DateOfBirth:      "1990-03-15",
	}
}

func TestCreateEmployee(t *testing.T) {
	tests := []struct {
		name     string
		req      *rpc.CreateEmployeeRequest
		mockFunc func(ctx context.Context, emp *models.Employee) (*models.Employee, error)
		wantCode codes.Code
		wantID   int64
	}{
		{
			name: "success",
			req:  &rpc.CreateEmployeeRequest{Employee: wireEmployee()},
			mockFunc: func(_ context.Context, emp *models.Employee) (*models.Employee, error) {
				out := emp.Clone()
				out.ID = 3
				return &out, nil
			},
			wantCode: codes.OK,
			wantID:   3,
		},
		{
			name:     "nil employee",
			req:      &rpc.CreateEmployeeRequest{},
			wantCode: codes.InvalidArgument,
		},
		{
			name: "malformed date",
			req: &rpc.CreateEmployeeRequest{Employee: func() *rpc.Employee {
				emp := wireEmployee()
				emp.DateOfEmployment = "15/01/2022"
				return emp
			}()},
			wantCode: codes.InvalidArgument,
		},
		{
			name: "field violations",
			req:  &rpc.CreateEmployeeRequest{Employee: wireEmployee()},
			mockFunc: func(context.Context, *models.Employee) (*models.Employee, error) {
				return nil, &e.ValidationError{
					Fields:    map[string]string{"first_name": e.KeyFirstNameMinLength},
					Conflicts: []string{e.KeyEmailExists},
				}
			},
			wantCode: codes.InvalidArgument,
		},
		{
			name: "conflicts only",
			req:  &rpc.CreateEmployeeRequest{Employee: wireEmployee()},
			mockFunc: func(context.Context, *models.Employee) (*models.Employee, error) {
				return nil, &e.ValidationError{Conflicts: []string{e.KeyNameExists}}
			},
			wantCode: codes.AlreadyExists,
		},
		{
			name: "internal error",
			req:  &rpc.CreateEmployeeRequest{Employee: wireEmployee()},
			mockFunc: func(context.Context, *models.Employee) (*models.Employee, error) {
				return nil, errors.New("boom")
			},
			wantCode: codes.Internal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewEmployeeHandler(&mockEmployeeController{
				createFunc: tt.mockFunc,
				checkFunc:  func(context.Context, *models.Employee, int64) error { return nil },
			}, zaptest.NewLogger(t))

			resp, err := handler.CreateEmployee(context.Background(), tt.req)

			assert.Equal(t, tt.wantCode, status.Code(err))
			if tt.wantCode == codes.OK {
				require.NoError(t, err)
				assert.Equal(t, tt.wantID, resp.Employee.ID)
				assert.Equal(t, "2022-01-15", resp.Employee.DateOfEmployment)
				assert.Equal(t, "1990-03-15", resp.Employee.DateOfBirth)
			}
		})
	}
}

func TestCreateEmployeeKeepsMessageKeys(t *testing.T) {
	handler := NewEmployeeHandler(&mockEmployeeController{
		createFunc: func(context.Context, *models.Employee) (*models.Employee, error) {
			return nil, &e.ValidationError{
				Fields:    map[string]string{"phone": e.KeyPhoneInvalid},
				Conflicts: []string{e.KeyNameExists, e.KeyEmailExists},
			}
		},
	}, zaptest.NewLogger(t))

	_, err := handler.CreateEmployee(context.Background(), &rpc.CreateEmployeeRequest{Employee: wireEmployee()})

	details := rpc.ValidationFromStatus(status.Convert(err))
	require.NotNil(t, details)
	assert.Equal(t, map[string]string{"phone": e.KeyPhoneInvalid}, details.Fields)
	assert.Equal(t, []string{e.KeyNameExists, e.KeyEmailExists}, details.Conflicts)
}

func TestGetEmployee(t *testing.T) {
	ctrl := &mockEmployeeController{
		getFunc: func(_ context.Context, id int64) (*models.Employee, error) {
			if id == 1 {
				return &models.Employee{ID: 1, FirstName: "Ada"}, nil
			}
			return nil, e.ErrNotFound
		},
	}
	handler := NewEmployeeHandler(ctrl, zaptest.NewLogger(t))

	resp, err := handler.GetEmployee(context.Background(), &rpc.GetEmployeeRequest{ID: 1})
	require.NoError(t, err)
	assert.Equal(t, "Ada", resp.Employee.FirstName)
	assert.Empty(t, resp.Employee.DateOfBirth)

	_, err = handler.GetEmployee(context.Background(), &rpc.GetEmployeeRequest{ID: 2})
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = handler.GetEmployee(context.Background(), &rpc.GetEmployeeRequest{ID: 0})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestUpdateEmployee(t *testing.T) {
	var gotID int64
	var gotUpdate *models.EmployeeUpdate
	ctrl := &mockEmployeeController{
		updateFunc: func(_ context.Context, id int64, update *models.EmployeeUpdate) (*models.Employee, error) {
			gotID, gotUpdate = id, update
			return &models.Employee{ID: id, Email: "new@example.com"}, nil
		},
		getFunc: func(_ context.Context, id int64) (*models.Employee, error) {
			return &models.Employee{ID: id, FirstName: "John"}, nil
		},
		checkFunc: func(context.Context, *models.Employee, int64) error { return nil },
	}
	handler := NewEmployeeHandler(ctrl, zaptest.NewLogger(t))

	resp, err := handler.UpdateEmployee(context.Background(), &rpc.UpdateEmployeeRequest{
		ID: 5,
		Patch: &rpc.EmployeePatch{
			Email:            utils.Ptr("new@example.com"),
			DateOfEmployment: utils.Ptr("2021-07-01"),
			DateOfBirth:      utils.Ptr(""),
			ClearSalary:      true,
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", resp.Employee.Email)

	assert.Equal(t, int64(5), gotID)
	require.NotNil(t, gotUpdate.Email)
	assert.Equal(t, "new@example.com", *gotUpdate.Email)
	require.NotNil(t, gotUpdate.DateOfEmployment)
	assert.True(t, gotUpdate.DateOfEmployment.Equal(time.Date(2021, time.July, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, gotUpdate.ClearDateOfBirth, "empty birth date clears the field")
	assert.True(t, gotUpdate.ClearSalary)
	assert.Nil(t, gotUpdate.FirstName)

	t.Run("missing patch", func(t *testing.T) {
		_, err := handler.UpdateEmployee(context.Background(), &rpc.UpdateEmployeeRequest{ID: 5})
		assert.Equal(t, codes.InvalidArgument, status.Code(err))
	})

	t.Run("malformed birth date", func(t *testing.T) {
		_, err := handler.UpdateEmployee(context.Background(), &rpc.UpdateEmployeeRequest{
			ID:    5,
			Patch: &rpc.EmployeePatch{DateOfBirth: utils.Ptr("yesterday")},
		})
		details := rpc.ValidationFromStatus(status.Convert(err))
		require.NotNil(t, details)
		assert.Equal(t, e.KeyDateOfBirthInvalid, details.Fields["date_of_birth"])
	})
}

func TestDeleteEmployees(t *testing.T) {
	ctrl := &mockEmployeeController{
		deleteFunc: func(_ context.Context, id int64) error {
			if id != 1 {
				return e.ErrNotFound
			}
			return nil
		},
		deleteAllFunc: func(context.Context) (int, error) { return 4, nil },
	}
	handler := NewEmployeeHandler(ctrl, zaptest.NewLogger(t))

	_, err := handler.DeleteEmployee(context.Background(), &rpc.DeleteEmployeeRequest{ID: 1})
	assert.NoError(t, err)

	_, err = handler.DeleteEmployee(context.Background(), &rpc.DeleteEmployeeRequest{ID: 2})
	assert.Equal(t, codes.NotFound, status.Code(err))

	resp, err := handler.DeleteAllEmployees(context.Background(), &rpc.DeleteAllEmployeesRequest{})
	require.NoError(t, err)
	assert.Equal(t, 4, resp.Removed)
}

func TestListEmployees(t *testing.T) {
	var got controller.ListQuery
	ctrl := &mockEmployeeController{
		listFunc: func(_ context.Context, q controller.ListQuery) (search.Page, error) {
			got = q
			return search.Page{
				Items:      []models.Employee{{ID: 1}, {ID: 2}},
				Number:     2,
				Size:       2,
				Total:      5,
				TotalPages: 3,
			}, nil
		},
	}
	handler := NewEmployeeHandler(ctrl, zaptest.NewLogger(t))

	resp, err := handler.ListEmployees(context.Background(), &rpc.ListEmployeesRequest{
		Query:    "ayse",
		Page:     2,
		PageSize: 500,
		Sort:     "last_name",
		Order:    "DESC",
	})
	require.NoError(t, err)

	assert.Equal(t, controller.ListQuery{
		Query:    "ayse",
		Page:     2,
		PageSize: maxPageSize,
		Sort:     search.SortByLastName,
		Order:    search.Desc,
	}, got)
	assert.Len(t, resp.Employees, 2)
	assert.Equal(t, 2, resp.Page)
	assert.Equal(t, 5, resp.Total)
	assert.Equal(t, 3, resp.TotalPages)

	_, err = handler.ListEmployees(context.Background(), &rpc.ListEmployeesRequest{PageSize: -1})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestCheckEmployee(t *testing.T) {
	tests := []struct {
		name      string
		req       *rpc.CheckEmployeeRequest
		checkErr  error
		wantValid bool
		wantCode  codes.Code
		wantKeys  []string
	}{
		{
			name:      "valid",
			req:       &rpc.CheckEmployeeRequest{Employee: wireEmployee()},
			wantValid: true,
		},
		{
			name:     "conflicts are data",
			req:      &rpc.CheckEmployeeRequest{Employee: wireEmployee(), ExcludeID: 3},
			checkErr: &e.ValidationError{Conflicts: []string{e.KeyEmailExists}},
			wantKeys: []string{e.KeyEmailExists},
		},
		{
			name: "malformed date is data",
			req: &rpc.CheckEmployeeRequest{Employee: func() *rpc.Employee {
				emp := wireEmployee()
				emp.DateOfBirth = "soon"
				return emp
			}()},
			wantKeys: []string{e.KeyDateOfBirthInvalid},
		},
		{
			name:     "cancelled",
			req:      &rpc.CheckEmployeeRequest{Employee: wireEmployee()},
			checkErr: context.Canceled,
			wantCode: codes.Canceled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotExclude int64
			handler := NewEmployeeHandler(&mockEmployeeController{
				checkFunc: func(_ context.Context, _ *models.Employee, excludeID int64) error {
					gotExclude = excludeID
					return tt.checkErr
				},
			}, zaptest.NewLogger(t))

			resp, err := handler.CheckEmployee(context.Background(), tt.req)
			if tt.wantCode != codes.OK {
				assert.Equal(t, tt.wantCode, status.Code(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantValid, resp.Valid)
			assert.Equal(t, tt.req.ExcludeID, gotExclude)

			var keys []string
			for _, k := range resp.Fields {
				keys = append(keys, k)
			}
			keys = append(keys, resp.Conflicts...)
			assert.Equal(t, tt.wantKeys, keys)
		})
	}
}

func TestGetCatalog(t *testing.T) {
	handler := NewEmployeeHandler(&mockEmployeeController{catalog: models.DefaultCatalog()}, zaptest.NewLogger(t))

	resp, err := handler.GetCatalog(context.Background(), &rpc.GetCatalogRequest{})
	require.NoError(t, err)
	assert.Equal(t, models.DefaultCatalog().Departments, resp.Departments)
	assert.Equal(t, models.DefaultCatalog().Positions, resp.Positions)
}

// newGatedHandler serves a real controller over a store holding wireEmployee.
func newGatedHandler(t *testing.T) (*EmployeeHandler, *store.Store) {
	t.Helper()
	logger := zaptest.NewLogger(t)
	st := store.NewStore(logger)
	v, err := validation.New(validation.DefaultRules(), models.DefaultCatalog(), nil)
	require.NoError(t, err)
	service := controller.NewEmployeeService(st, v, logger)
	handler := NewEmployeeHandler(service, logger)

	_, err = handler.CreateEmployee(context.Background(), &rpc.CreateEmployeeRequest{Employee: wireEmployee()})
	require.NoError(t, err)
	return handler, st
}

func badDateCandidate() *rpc.Employee {
	emp := wireEmployee()
	emp.FirstName = "J"
	emp.DateOfBirth = "not-a-date"
	return emp
}

func TestBadDateAccumulatesWithOtherViolations(t *testing.T) {
	wantFields := map[string]string{
		"first_name":    e.KeyFirstNameMinLength,
		"date_of_birth": e.KeyDateOfBirthInvalid,
	}

	t.Run("check", func(t *testing.T) {
		handler, _ := newGatedHandler(t)

		resp, err := handler.CheckEmployee(context.Background(), &rpc.CheckEmployeeRequest{Employee: badDateCandidate()})
		require.NoError(t, err)
		assert.False(t, resp.Valid)
		assert.Equal(t, wantFields, resp.Fields)
		assert.Equal(t, []string{e.KeyEmailExists}, resp.Conflicts)
	})

	t.Run("create", func(t *testing.T) {
		handler, st := newGatedHandler(t)

		_, err := handler.CreateEmployee(context.Background(), &rpc.CreateEmployeeRequest{Employee: badDateCandidate()})
		assert.Equal(t, codes.InvalidArgument, status.Code(err))
		details := rpc.ValidationFromStatus(status.Convert(err))
		require.NotNil(t, details)
		assert.Equal(t, wantFields, details.Fields)
		assert.Equal(t, []string{e.KeyEmailExists}, details.Conflicts)
		assert.Equal(t, 1, st.Len())
	})

	t.Run("update", func(t *testing.T) {
		handler, _ := newGatedHandler(t)
		created, err := handler.CreateEmployee(context.Background(), &rpc.CreateEmployeeRequest{Employee: &rpc.Employee{
			FirstName:        "Jane",
			LastName:         "Roe",
			Email:            "jane@example.com",
			Phone:            "555 765 4321",
			Department:       "HR",
			Position:         "Lead",
			DateOfEmployment: "2020-06-01",
		}})
		require.NoError(t, err)

		_, err = handler.UpdateEmployee(context.Background(), &rpc.UpdateEmployeeRequest{
			ID: created.Employee.ID,
			Patch: &rpc.EmployeePatch{
				FirstName:   utils.Ptr("J"),
				Email:       utils.Ptr("john@example.com"),
				DateOfBirth: utils.Ptr("not-a-date"),
			},
		})
		details := rpc.ValidationFromStatus(status.Convert(err))
		require.NotNil(t, details)
		assert.Equal(t, wantFields, details.Fields)
		assert.Equal(t, []string{e.KeyEmailExists}, details.Conflicts)

		got, err := handler.GetEmployee(context.Background(), &rpc.GetEmployeeRequest{ID: created.Employee.ID})
		require.NoError(t, err)
		assert.Equal(t, "Jane", got.Employee.FirstName)
	})

	t.Run("update of unknown id", func(t *testing.T) {
		handler, _ := newGatedHandler(t)
		_, err := handler.UpdateEmployee(context.Background(), &rpc.UpdateEmployeeRequest{
			ID:    42,
			Patch: &rpc.EmployeePatch{DateOfBirth: utils.Ptr("not-a-date")},
		})
		assert.Equal(t, codes.NotFound, status.Code(err))
	})
}
