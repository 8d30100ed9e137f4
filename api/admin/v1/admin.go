// Package adminv1 defines cognisecure.admin.v1.AdminService.
package adminv1

import (
	"context"

	"google.golang.org/grpc"

	"github.com/Reyansh-Niranjan/CogniSecure/api/codec"
)

// SetOfficerActiveRequest activates or deactivates an officer.
type SetOfficerActiveRequest struct {
	OfficerId string `json:"officer_id"`
	Active    bool   `json:"active"`
}

// SetOfficerActiveResponse echoes the new state.
type SetOfficerActiveResponse struct {
	OfficerId string `json:"officer_id"`
	Active    bool   `json:"active"`
}

const AdminService_SetOfficerActive_FullMethodName = "/cognisecure.admin.v1.AdminService/SetOfficerActive"

// AdminServiceServer is the server API for AdminService.
type AdminServiceServer interface {
	SetOfficerActive(context.Context, *SetOfficerActiveRequest) (*SetOfficerActiveResponse, error)
}

// RegisterAdminServiceServer registers srv on s.
func RegisterAdminServiceServer(s grpc.ServiceRegistrar, srv AdminServiceServer) {
	s.RegisterService(&AdminService_ServiceDesc, srv)
}

func _AdminService_SetOfficerActive_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(SetOfficerActiveRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AdminServiceServer).SetOfficerActive(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: AdminService_SetOfficerActive_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(AdminServiceServer).SetOfficerActive(ctx, req.(*SetOfficerActiveRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// AdminService_ServiceDesc is the grpc.ServiceDesc for AdminService.
var AdminService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "cognisecure.admin.v1.AdminService",
	HandlerType: (*AdminServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "SetOfficerActive", Handler: _AdminService_SetOfficerActive_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "cognisecure/admin/v1/admin",
}

// AdminServiceClient is the client API for AdminService.
type AdminServiceClient interface {
	SetOfficerActive(ctx context.Context, in *SetOfficerActiveRequest, opts ...grpc.CallOption) (*SetOfficerActiveResponse, error)
}

type adminServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewAdminServiceClient returns a client over cc.
func NewAdminServiceClient(cc grpc.ClientConnInterface) AdminServiceClient {
	return &adminServiceClient{cc}
}

func (c *adminServiceClient) SetOfficerActive(ctx context.Context, in *SetOfficerActiveRequest, opts ...grpc.CallOption) (*SetOfficerActiveResponse, error) {
	out := new(SetOfficerActiveResponse)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(codec.Name)}, opts...)
	if err := c.cc.Invoke(ctx, AdminService_SetOfficerActive_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
