package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gartstein/directory/internal/directory/auth"
	"github.com/gartstein/directory/internal/directory/rpc"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// gateway serves the REST routes by calling the EmployeeServiceServer
// in-process.
type gateway struct {
	server    rpc.EmployeeServiceServer
	marshaler runtime.Marshaler
	logger    *zap.Logger
}

// errorBody is the JSON error payload. Validation failures add the message
// keys next to the status.
type errorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	*rpc.ValidationDetails
}

// RegisterHTTPGateway builds the REST routes on a grpc-gateway ServeMux and
// wraps them with the auth middleware.
func (s *Server) RegisterHTTPGateway(h rpc.EmployeeServiceServer, jwtSecret string) error {
	g := &gateway{
		server:    h,
		marshaler: &runtime.JSONBuiltin{},
		logger:    s.logger.Named("gateway"),
	}
	mux := runtime.NewServeMux()

	routes := []struct {
		method  string
		pattern string
		handler runtime.HandlerFunc
	}{
		{http.MethodGet, "/v1/employees", g.listEmployees},
		{http.MethodPost, "/v1/employees", g.createEmployee},
		{http.MethodDelete, "/v1/employees", g.deleteAllEmployees},
		{http.MethodPost, "/v1/employees/validate", g.checkEmployee},
		{http.MethodGet, "/v1/employees/{id}", g.getEmployee},
		{http.MethodPatch, "/v1/employees/{id}", g.updateEmployee},
		{http.MethodDelete, "/v1/employees/{id}", g.deleteEmployee},
		{http.MethodGet, "/v1/catalog", g.getCatalog},
	}
	for _, r := range routes {
		if err := mux.HandlePath(r.method, r.pattern, r.handler); err != nil {
			return err
		}
	}

	s.httpServer.Handler = auth.HTTPMiddleware(mux, jwtSecret)
	s.httpServer.Addr = s.httpEndpoint
	return nil
}

func (g *gateway) listEmployees(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	q := r.URL.Query()
	req := &rpc.ListEmployeesRequest{
		Query: q.Get("q"),
		Sort:  q.Get("sort"),
		Order: q.Get("order"),
	}
	var err error
	if req.Page, err = intParam(q.Get("page")); err != nil {
		g.writeError(w, status.Error(codes.InvalidArgument, "invalid page"))
		return
	}
	if req.PageSize, err = intParam(q.Get("page_size")); err != nil {
		g.writeError(w, status.Error(codes.InvalidArgument, "invalid page_size"))
		return
	}
	respond(r.Context(), g, w, req, g.server.ListEmployees)
}

func (g *gateway) createEmployee(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	req := &rpc.CreateEmployeeRequest{Employee: &rpc.Employee{}}
	if !g.decode(w, r, req.Employee) {
		return
	}
	respond(r.Context(), g, w, req, g.server.CreateEmployee)
}

func (g *gateway) deleteAllEmployees(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	respond(r.Context(), g, w, &rpc.DeleteAllEmployeesRequest{}, g.server.DeleteAllEmployees)
}

func (g *gateway) checkEmployee(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	req := &rpc.CheckEmployeeRequest{Employee: &rpc.Employee{}}
	if raw := r.URL.Query().Get("exclude_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			g.writeError(w, status.Error(codes.InvalidArgument, "invalid exclude_id"))
			return
		}
		req.ExcludeID = id
	}
	if !g.decode(w, r, req.Employee) {
		return
	}
	respond(r.Context(), g, w, req, g.server.CheckEmployee)
}

func (g *gateway) getEmployee(w http.ResponseWriter, r *http.Request, params map[string]string) {
	id, ok := g.pathID(w, params)
	if !ok {
		return
	}
	respond(r.Context(), g, w, &rpc.GetEmployeeRequest{ID: id}, g.server.GetEmployee)
}

func (g *gateway) updateEmployee(w http.ResponseWriter, r *http.Request, params map[string]string) {
	id, ok := g.pathID(w, params)
	if !ok {
		return
	}
	req := &rpc.UpdateEmployeeRequest{ID: id, Patch: &rpc.EmployeePatch{}}
	if !g.decode(w, r, req.Patch) {
		return
	}
	respond(r.Context(), g, w, req, g.server.UpdateEmployee)
}

func (g *gateway) deleteEmployee(w http.ResponseWriter, r *http.Request, params map[string]string) {
	id, ok := g.pathID(w, params)
	if !ok {
		return
	}
	respond(r.Context(), g, w, &rpc.DeleteEmployeeRequest{ID: id}, g.server.DeleteEmployee)
}

func (g *gateway) getCatalog(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	respond(r.Context(), g, w, &rpc.GetCatalogRequest{}, g.server.GetCatalog)
}

// respond invokes call and writes its response or error.
func respond[Req, Resp any](ctx context.Context, g *gateway, w http.ResponseWriter, req *Req, call func(context.Context, *Req) (*Resp, error)) {
	resp, err := call(ctx, req)
	if err != nil {
		g.writeError(w, err)
		return
	}
	g.write(w, http.StatusOK, resp)
}

func (g *gateway) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := g.marshaler.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		g.writeError(w, status.Errorf(codes.InvalidArgument, "malformed request body: %v", err))
		return false
	}
	return true
}

func (g *gateway) pathID(w http.ResponseWriter, params map[string]string) (int64, bool) {
	id, err := strconv.ParseInt(params["id"], 10, 64)
	if err != nil || id <= 0 {
		g.writeError(w, status.Error(codes.InvalidArgument, "invalid employee ID"))
		return 0, false
	}
	return id, true
}

func (g *gateway) writeError(w http.ResponseWriter, err error) {
	st := status.Convert(err)
	g.write(w, runtime.HTTPStatusFromCode(st.Code()), &errorBody{
		Code:              int(st.Code()),
		Message:           st.Message(),
		ValidationDetails: rpc.ValidationFromStatus(st),
	})
}

func (g *gateway) write(w http.ResponseWriter, code int, v any) {
	body, err := g.marshaler.Marshal(v)
	if err != nil {
		g.logger.Error("Failed to marshal response", zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", g.marshaler.ContentType(v))
	w.WriteHeader(code)
	if _, err := w.Write(body); err != nil {
		g.logger.Debug("Failed to write response", zap.Error(err))
	}
}

func intParam(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
