package rpc

import (
	"context"

	"google.golang.org/grpc"
)

const ServiceName = "directory.v1.EmployeeService"

// Full method names, as seen by interceptors.
const (
	CreateEmployeeMethod     = "/" + ServiceName + "/CreateEmployee"
	GetEmployeeMethod        = "/" + ServiceName + "/GetEmployee"
	UpdateEmployeeMethod     = "/" + ServiceName + "/UpdateEmployee"
	DeleteEmployeeMethod     = "/" + ServiceName + "/DeleteEmployee"
	DeleteAllEmployeesMethod = "/" + ServiceName + "/DeleteAllEmployees"
	ListEmployeesMethod      = "/" + ServiceName + "/ListEmployees"
	CheckEmployeeMethod      = "/" + ServiceName + "/CheckEmployee"
	GetCatalogMethod         = "/" + ServiceName + "/GetCatalog"
)

// EmployeeServiceServer is the server API for the employee service.
type EmployeeServiceServer interface {
	CreateEmployee(context.Context, *CreateEmployeeRequest) (*CreateEmployeeResponse, error)
	GetEmployee(context.Context, *GetEmployeeRequest) (*GetEmployeeResponse, error)
	UpdateEmployee(context.Context, *UpdateEmployeeRequest) (*UpdateEmployeeResponse, error)
	DeleteEmployee(context.Context, *DeleteEmployeeRequest) (*DeleteEmployeeResponse, error)
	DeleteAllEmployees(context.Context, *DeleteAllEmployeesRequest) (*DeleteAllEmployeesResponse, error)
	ListEmployees(context.Context, *ListEmployeesRequest) (*ListEmployeesResponse, error)
	CheckEmployee(context.Context, *CheckEmployeeRequest) (*CheckEmployeeResponse, error)
	GetCatalog(context.Context, *GetCatalogRequest) (*GetCatalogResponse, error)
}

// EmployeeServiceDesc describes the service for grpc.Server.RegisterService.
var EmployeeServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*EmployeeServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CreateEmployee", Handler: unaryHandler(CreateEmployeeMethod, EmployeeServiceServer.CreateEmployee)},
		{MethodName: "GetEmployee", Handler: unaryHandler(GetEmployeeMethod, EmployeeServiceServer.GetEmployee)},
		{MethodName: "UpdateEmployee", Handler: unaryHandler(UpdateEmployeeMethod, EmployeeServiceServer.UpdateEmployee)},
		{MethodName: "DeleteEmployee", Handler: unaryHandler(DeleteEmployeeMethod, EmployeeServiceServer.DeleteEmployee)},
		{MethodName: "DeleteAllEmployees", Handler: unaryHandler(DeleteAllEmployeesMethod, EmployeeServiceServer.DeleteAllEmployees)},
		{MethodName: "ListEmployees", Handler: unaryHandler(ListEmployeesMethod, EmployeeServiceServer.ListEmployees)},
		{MethodName: "CheckEmployee", Handler: unaryHandler(CheckEmployeeMethod, EmployeeServiceServer.CheckEmployee)},
		{MethodName: "GetCatalog", Handler: unaryHandler(GetCatalogMethod, EmployeeServiceServer.GetCatalog)},
	},
	Streams: []grpc.StreamDesc{},
}

func RegisterEmployeeServiceServer(s grpc.ServiceRegistrar, srv EmployeeServiceServer) {
	s.RegisterService(&EmployeeServiceDesc, srv)
}

// unaryHandler adapts a typed server method to grpc.MethodHandler, running
// the server's interceptor chain when one is installed.
func unaryHandler[Req, Resp any](
	fullMethod string,
	call func(EmployeeServiceServer, context.Context, *Req) (*Resp, error),
) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(EmployeeServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(EmployeeServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}
