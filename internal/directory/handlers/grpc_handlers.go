package handlers

import (
	"context"

	"github.com/gartstein/directory/internal/directory/controller"
	e "github.com/gartstein/directory/internal/directory/errors"
	"github.com/gartstein/directory/internal/directory/models"
	"github.com/gartstein/directory/internal/directory/rpc"
	"github.com/gartstein/directory/internal/directory/search"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// maxPageSize bounds the page size a caller may request.
const maxPageSize = 100

// EmployeeHandler provides the EmployeeService methods, mapping requests to
// an EmployeeController.
type EmployeeHandler struct {
	service EmployeeController
	logger  *zap.Logger
}

var _ rpc.EmployeeServiceServer = (*EmployeeHandler)(nil)

// NewEmployeeHandler constructs a new EmployeeHandler with the given service and logger.
func NewEmployeeHandler(service EmployeeController, logger *zap.Logger) *EmployeeHandler {
	return &EmployeeHandler{
		service: service,
		logger:  logger.Named("grpc_handler"),
	}
}

// CreateEmployee adds a new employee once it passed the write gate.
func (h *EmployeeHandler) CreateEmployee(ctx context.Context, req *rpc.CreateEmployeeRequest) (*rpc.CreateEmployeeResponse, error) {
	emp, bad, err := rpcToModel(req.Employee)
	if err != nil {
		return nil, h.mapServiceError(err)
	}
	if len(bad) > 0 {
		return nil, h.mapServiceError(bad.merge(h.service.CheckEmployee(ctx, emp, 0)))
	}

	created, err := h.service.CreateEmployee(ctx, emp)
	if err != nil {
		h.logger.Debug("Create employee rejected", zap.Error(err))
		return nil, h.mapServiceError(err)
	}
	return &rpc.CreateEmployeeResponse{Employee: modelToRPC(created)}, nil
}

// GetEmployee fetches an employee by ID, returning NotFound if absent.
func (h *EmployeeHandler) GetEmployee(ctx context.Context, req *rpc.GetEmployeeRequest) (*rpc.GetEmployeeResponse, error) {
	if req.ID <= 0 {
		return nil, status.Error(codes.InvalidArgument, "invalid employee ID")
	}

	emp, err := h.service.GetEmployee(ctx, req.ID)
	if err != nil {
		return nil, h.mapServiceError(err)
	}
	return &rpc.GetEmployeeResponse{Employee: modelToRPC(emp)}, nil
}

// UpdateEmployee applies a partial update to an existing employee.
func (h *EmployeeHandler) UpdateEmployee(ctx context.Context, req *rpc.UpdateEmployeeRequest) (*rpc.UpdateEmployeeResponse, error) {
	if req.ID <= 0 {
		return nil, status.Error(codes.InvalidArgument, "invalid employee ID")
	}

	update, bad, err := patchToUpdate(req.Patch)
	if err != nil {
		return nil, h.mapServiceError(err)
	}
	if len(bad) > 0 {
		return nil, h.mapServiceError(h.rejectUpdate(ctx, req.ID, update, bad))
	}

	updated, err := h.service.UpdateEmployee(ctx, req.ID, update)
	if err != nil {
		h.logger.Debug("Update employee rejected", zap.Int64("employee_id", req.ID), zap.Error(err))
		return nil, h.mapServiceError(err)
	}
	return &rpc.UpdateEmployeeResponse{Employee: modelToRPC(updated)}, nil
}

// DeleteEmployee removes an employee given its ID.
func (h *EmployeeHandler) DeleteEmployee(ctx context.Context, req *rpc.DeleteEmployeeRequest) (*rpc.DeleteEmployeeResponse, error) {
	if req.ID <= 0 {
		return nil, status.Error(codes.InvalidArgument, "invalid employee ID")
	}

	if err := h.service.DeleteEmployee(ctx, req.ID); err != nil {
		return nil, h.mapServiceError(err)
	}
	return &rpc.DeleteEmployeeResponse{}, nil
}

// DeleteAllEmployees empties the directory.
func (h *EmployeeHandler) DeleteAllEmployees(ctx context.Context, _ *rpc.DeleteAllEmployeesRequest) (*rpc.DeleteAllEmployeesResponse, error) {
	n, err := h.service.DeleteAllEmployees(ctx)
	if err != nil {
		return nil, h.mapServiceError(err)
	}
	return &rpc.DeleteAllEmployeesResponse{Removed: n}, nil
}

// ListEmployees returns one page of the employees matching the query.
func (h *EmployeeHandler) ListEmployees(ctx context.Context, req *rpc.ListEmployeesRequest) (*rpc.ListEmployeesResponse, error) {
	if req.PageSize < 0 {
		return nil, status.Error(codes.InvalidArgument, "page size must not be negative")
	}

	page, err := h.service.ListEmployees(ctx, controller.ListQuery{
		Query:    req.Query,
		Page:     req.Page,
		PageSize: min(req.PageSize, maxPageSize),
		Sort:     search.ParseSortField(req.Sort),
		Order:    search.ParseOrder(req.Order),
	})
	if err != nil {
		return nil, h.mapServiceError(err)
	}

	resp := &rpc.ListEmployeesResponse{
		Employees:  make([]*rpc.Employee, 0, len(page.Items)),
		Page:       page.Number,
		PageSize:   page.Size,
		Total:      page.Total,
		TotalPages: page.TotalPages,
	}
	for i := range page.Items {
		resp.Employees = append(resp.Employees, modelToRPC(&page.Items[i]))
	}
	return resp, nil
}

// CheckEmployee runs the write gate without writing. Rule violations are
// part of a successful response; only other failures are errors.
func (h *EmployeeHandler) CheckEmployee(ctx context.Context, req *rpc.CheckEmployeeRequest) (*rpc.CheckEmployeeResponse, error) {
	if req.ExcludeID < 0 {
		return nil, status.Error(codes.InvalidArgument, "invalid exclude ID")
	}

	emp, bad, err := rpcToModel(req.Employee)
	if err != nil {
		return nil, h.mapServiceError(err)
	}
	err = bad.merge(h.service.CheckEmployee(ctx, emp, req.ExcludeID))
	if err == nil {
		return &rpc.CheckEmployeeResponse{Valid: true}, nil
	}
	if verr, ok := e.AsValidation(err); ok {
		return &rpc.CheckEmployeeResponse{ValidationDetails: validationDetails(verr)}, nil
	}
	return nil, h.mapServiceError(err)
}

// rejectUpdate runs the write gate on the merged record of an update that
// carried unparseable dates and returns every violation found.
func (h *EmployeeHandler) rejectUpdate(ctx context.Context, id int64, update *models.EmployeeUpdate, bad dateKeys) error {
	existing, err := h.service.GetEmployee(ctx, id)
	if err != nil {
		return err
	}
	candidate := existing.Merge(update)
	return bad.merge(h.service.CheckEmployee(ctx, &candidate, id))
}

// GetCatalog returns the configured departments and positions.
func (h *EmployeeHandler) GetCatalog(_ context.Context, _ *rpc.GetCatalogRequest) (*rpc.GetCatalogResponse, error) {
	catalog := h.service.Catalog()
	return &rpc.GetCatalogResponse{
		Departments: catalog.Departments,
		Positions:   catalog.Positions,
	}, nil
}
